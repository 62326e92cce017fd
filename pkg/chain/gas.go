package chain

import "math/big"

const (
	txGas                 = 21000
	txGasContractCreation = 53000
	txDataZeroGas         = 4
	txDataNonZeroGas      = 16

	defaultDeployGas = 1_000_000
	defaultCallGas   = 30_000

	// DefaultGasPrice matches ganache's 20 gwei default.
	DefaultGasPrice = 20_000_000_000
	// DefaultBlockGasLimit matches ganache's default block gas limit.
	DefaultBlockGasLimit = 6_721_975
)

// IntrinsicGas is the cost of a transaction before execution.
func IntrinsicGas(data []byte, create bool) uint64 {
	gas := uint64(txGas)
	if create {
		gas = txGasContractCreation
	}
	for _, b := range data {
		if b == 0 {
			gas += txDataZeroGas
		} else {
			gas += txDataNonZeroGas
		}
	}
	return gas
}

func fee(gas uint64, price *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gas), price)
}
