package chain

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Receipt statuses.
const (
	StatusFailed  uint64 = 0
	StatusSuccess uint64 = 1
)

// Message is a transaction request before it is mined. A nil To deploys a contract.
type Message struct {
	From     common.Address
	To       *common.Address
	Value    *big.Int
	Data     []byte
	Gas      uint64
	GasPrice *big.Int
	// Nonce is checked against the sender's nonce when set.
	Nonce *uint64
}

// Transaction is a mined transaction.
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	To          *common.Address
	Nonce       uint64
	Value       *big.Int
	Data        []byte
	Gas         uint64
	GasPrice    *big.Int
	BlockNumber uint64
	BlockHash   common.Hash
	Index       uint

	// Signed is set when the transaction arrived signed.
	Signed *types.Transaction
}

// Receipt is the outcome of a mined transaction.
type Receipt struct {
	TxHash          common.Hash
	TxIndex         uint
	BlockNumber     uint64
	BlockHash       common.Hash
	From            common.Address
	To              *common.Address
	ContractAddress *common.Address
	GasUsed         uint64
	GasPrice        *big.Int
	Status          uint64
	Logs            []*types.Log
	// Err is the revert reason of a failed transaction.
	Err error
}

// Block is an automined block holding the transactions sent while it was pending.
type Block struct {
	Number       uint64
	Hash         common.Hash
	ParentHash   common.Hash
	Time         time.Time
	GasLimit     uint64
	GasUsed      uint64
	Transactions []common.Hash
}

func blockHash(parent common.Hash, number uint64, ts time.Time, txs []common.Hash) common.Hash {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], number)
	binary.BigEndian.PutUint64(buf[8:], uint64(ts.Unix()))
	parts := [][]byte{parent.Bytes(), buf[:]}
	for _, h := range txs {
		parts = append(parts, h.Bytes())
	}
	return crypto.Keccak256Hash(parts...)
}

func messageHash(msg Message, nonce uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	to := []byte{}
	if msg.To != nil {
		to = msg.To.Bytes()
	}
	value := []byte{}
	if msg.Value != nil {
		value = msg.Value.Bytes()
	}
	return crypto.Keccak256Hash(msg.From.Bytes(), buf[:], to, value, msg.Data)
}
