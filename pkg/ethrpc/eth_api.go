package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

// EthAPI implements the eth_* JSON-RPC namespace. The chain keeps no
// historical state, so state queries answer from the latest block whatever
// block they name.
type EthAPI struct {
	server *Server
}

// NewEthAPI creates a new EthAPI instance
func NewEthAPI(server *Server) *EthAPI {
	return &EthAPI{server: server}
}

// Accounts returns the unlocked accounts
func (api *EthAPI) Accounts() []common.Address {
	return api.server.keyring.Addresses()
}

// ChainId returns the chain ID (EIP-155)
func (api *EthAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(api.server.chain.ChainID())
}

// BlockNumber returns the latest block number
func (api *EthAPI) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(api.server.chain.BlockNumber())
}

// GasPrice returns the gas price charged for transactions without one
func (api *EthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(api.server.chain.GasPrice())
}

// Syncing returns false (always synced)
func (api *EthAPI) Syncing() (interface{}, error) {
	return false, nil
}

// Mining returns true, the chain mines every transaction as it arrives
func (api *EthAPI) Mining() bool {
	return true
}

// GetBalance returns the ether balance of an address
func (api *EthAPI) GetBalance(ctx context.Context, address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) *hexutil.Big {
	return (*hexutil.Big)(api.server.chain.BalanceAt(address))
}

// GetTransactionCount returns the nonce for an address
func (api *EthAPI) GetTransactionCount(ctx context.Context, address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) hexutil.Uint64 {
	return hexutil.Uint64(api.server.chain.NonceAt(address))
}

// GetCode returns the code at an address
func (api *EthAPI) GetCode(ctx context.Context, address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) hexutil.Bytes {
	code := api.server.chain.CodeAt(address)
	if code == nil {
		return hexutil.Bytes{}
	}
	return code
}

func (api *EthAPI) message(args CallArgs) chain.Message {
	msg := chain.Message{
		To:   args.To,
		Data: args.GetData(),
	}
	if args.From != nil {
		msg.From = *args.From
	}
	if args.Value != nil {
		msg.Value = args.Value.ToInt()
	}
	if args.Gas != nil {
		msg.Gas = uint64(*args.Gas)
	}
	if args.GasPrice != nil {
		msg.GasPrice = args.GasPrice.ToInt()
	}
	return msg
}

// Call executes a call without creating a transaction
func (api *EthAPI) Call(ctx context.Context, args CallArgs, blockNrOrHash *rpc.BlockNumberOrHash) (_ hexutil.Bytes, err error) {
	defer api.server.track("eth_call", &err)
	if args.To == nil {
		return nil, errors.New("eth_call requires a destination address")
	}
	out, err := api.server.chain.Call(ctx, api.message(args))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates gas for a transaction
func (api *EthAPI) EstimateGas(ctx context.Context, args CallArgs, blockNrOrHash *rpc.BlockNumberOrHash) (_ hexutil.Uint64, err error) {
	defer api.server.track("eth_estimateGas", &err)
	gas, err := api.server.chain.EstimateGas(ctx, api.message(args))
	return hexutil.Uint64(gas), err
}

// SendTransaction signs a transaction with an unlocked account and mines it.
// A transaction that reverts is still mined; the revert is returned as the error.
func (api *EthAPI) SendTransaction(ctx context.Context, args CallArgs) (_ common.Hash, err error) {
	defer api.server.track("eth_sendTransaction", &err)
	if args.From == nil {
		return common.Hash{}, errors.New("from address is required")
	}
	from := *args.From
	if !api.server.keyring.Has(from) {
		return common.Hash{}, fmt.Errorf("sender account %s not recognized", from.Hex())
	}

	msg := api.message(args)
	if msg.GasPrice == nil {
		msg.GasPrice = api.server.chain.GasPrice()
	}
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}

	api.server.sendMu.Lock()
	defer api.server.sendMu.Unlock()

	nonce := api.server.chain.NonceAt(from)
	if args.Nonce != nil {
		nonce = uint64(*args.Nonce)
	}
	if msg.Gas == 0 {
		msg.Gas, err = api.server.chain.EstimateGas(ctx, msg)
		if err != nil {
			// Mine it anyway so the sender sees the failed receipt, as ganache does.
			msg.Gas = api.server.chain.LatestBlock().GasLimit
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       msg.To,
		Value:    msg.Value,
		Gas:      msg.Gas,
		GasPrice: msg.GasPrice,
		Data:     msg.Data,
	})
	signed, err := api.server.keyring.SignTx(from, tx, api.server.chain.ChainID())
	if err != nil {
		return common.Hash{}, err
	}
	return api.submit(ctx, signed)
}

// SendRawTransaction submits a signed transaction
func (api *EthAPI) SendRawTransaction(ctx context.Context, data hexutil.Bytes) (_ common.Hash, err error) {
	defer api.server.track("eth_sendRawTransaction", &err)
	var tx types.Transaction
	if err := tx.UnmarshalBinary(data); err != nil {
		api.server.logger.Warn("Failed to decode transaction", zap.Error(err))
		return common.Hash{}, fmt.Errorf("invalid transaction: %w", err)
	}
	if tx.Protected() && tx.ChainId().Cmp(api.server.chain.ChainID()) != 0 {
		return common.Hash{}, fmt.Errorf("invalid chain id %s", tx.ChainId())
	}
	return api.submit(ctx, &tx)
}

func (api *EthAPI) submit(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	receipt, err := api.server.chain.SendTransaction(ctx, tx)
	if receipt == nil {
		return common.Hash{}, err
	}
	fields := []zap.Field{
		zap.String("hash", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber),
		zap.Uint64("gas_used", receipt.GasUsed),
	}
	if receipt.ContractAddress != nil {
		fields = append(fields, zap.String("contract", receipt.ContractAddress.Hex()))
	}
	if err != nil {
		api.server.logger.Info("Transaction reverted", append(fields, zap.Error(err))...)
		return tx.Hash(), err
	}
	api.server.logger.Info("Transaction mined", fields...)
	return tx.Hash(), nil
}

// GetTransactionReceipt returns the receipt for a transaction
func (api *EthAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*RPCReceipt, error) {
	tx, ok := api.server.chain.TransactionByHash(hash)
	if !ok {
		return nil, nil
	}
	r, ok := api.server.chain.ReceiptByHash(hash)
	if !ok {
		return nil, nil
	}
	return newRPCReceipt(tx, r), nil
}

// GetTransactionByHash returns a transaction by hash
func (api *EthAPI) GetTransactionByHash(ctx context.Context, hash common.Hash) (*RPCTransaction, error) {
	tx, ok := api.server.chain.TransactionByHash(hash)
	if !ok {
		return nil, nil
	}
	return newRPCTransaction(tx, api.server.chain.ChainID()), nil
}

// GetBlockByNumber returns a block by number or tag
func (api *EthAPI) GetBlockByNumber(ctx context.Context, number BlockTag, fullTx bool) (*RPCBlock, error) {
	var (
		b  *chain.Block
		ok = true
	)
	if number.Latest {
		b = api.server.chain.LatestBlock()
	} else {
		b, ok = api.server.chain.BlockByNumber(number.Number)
	}
	if !ok {
		return nil, nil
	}
	return api.rpcBlock(b, fullTx), nil
}

// GetBlockByHash returns a block by hash
func (api *EthAPI) GetBlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*RPCBlock, error) {
	b, ok := api.server.chain.BlockByHash(hash)
	if !ok {
		return nil, nil
	}
	return api.rpcBlock(b, fullTx), nil
}

// GetLogs returns logs matching the filter criteria
func (api *EthAPI) GetLogs(ctx context.Context, query FilterQuery) (_ []*types.Log, err error) {
	defer api.server.track("eth_getLogs", &err)
	q := chain.LogQuery{}
	if query.BlockHash != nil {
		b, ok := api.server.chain.BlockByHash(*query.BlockHash)
		if !ok {
			return nil, fmt.Errorf("unknown block %s", query.BlockHash.Hex())
		}
		q.FromBlock, q.ToBlock = &b.Number, &b.Number
	} else {
		if query.FromBlock != nil && !query.FromBlock.Latest {
			q.FromBlock = &query.FromBlock.Number
		}
		if query.FromBlock != nil && query.FromBlock.Latest {
			head := api.server.chain.BlockNumber()
			q.FromBlock = &head
		}
		if query.ToBlock != nil && !query.ToBlock.Latest {
			q.ToBlock = &query.ToBlock.Number
		}
	}

	if q.Addresses, err = parseAddresses(query.Address); err != nil {
		return nil, err
	}
	if q.Topics, err = parseTopics(query.Topics); err != nil {
		return nil, err
	}

	logs := api.server.chain.Logs(q)
	if logs == nil {
		logs = make([]*types.Log, 0)
	}
	return logs, nil
}

func (api *EthAPI) rpcBlock(b *chain.Block, fullTx bool) *RPCBlock {
	var (
		logs []*types.Log
		txs  = make([]interface{}, 0, len(b.Transactions))
	)
	for i, h := range b.Transactions {
		if r, ok := api.server.chain.ReceiptByHash(h); ok {
			logs = append(logs, r.Logs...)
		}
		if !fullTx {
			txs = append(txs, h)
			continue
		}
		if tx, ok := api.server.chain.TransactionByHash(h); ok {
			rtx := newRPCTransaction(tx, api.server.chain.ChainID())
			idx := hexutil.Uint(i)
			rtx.TransactionIndex = &idx
			txs = append(txs, rtx)
		}
	}

	txRoot, receiptRoot := types.EmptyTxsHash, types.EmptyReceiptsHash
	if len(b.Transactions) > 0 {
		parts := make([][]byte, len(b.Transactions))
		for i, h := range b.Transactions {
			parts[i] = h.Bytes()
		}
		txRoot = crypto.Keccak256Hash(parts...)
		receiptRoot = crypto.Keccak256Hash(append(parts, b.Hash.Bytes())...)
	}

	return &RPCBlock{
		Number:           hexutil.Uint64(b.Number),
		Hash:             b.Hash,
		ParentHash:       b.ParentHash,
		Nonce:            types.BlockNonce{},
		Sha3Uncles:       types.EmptyUncleHash,
		LogsBloom:        types.CreateBloom(&types.Receipt{Logs: logs}),
		TransactionsRoot: txRoot,
		ReceiptsRoot:     receiptRoot,
		Miner:            common.Address{},
		Difficulty:       (*hexutil.Big)(big.NewInt(0)),
		TotalDifficulty:  (*hexutil.Big)(big.NewInt(0)),
		ExtraData:        []byte{},
		Size:             hexutil.Uint64(0),
		GasLimit:         hexutil.Uint64(b.GasLimit),
		GasUsed:          hexutil.Uint64(b.GasUsed),
		Timestamp:        hexutil.Uint64(b.Time.Unix()),
		Transactions:     txs,
		Uncles:           []common.Hash{},
	}
}

func newRPCReceipt(tx *chain.Transaction, r *chain.Receipt) *RPCReceipt {
	logs := r.Logs
	if logs == nil {
		logs = make([]*types.Log, 0)
	}
	var txType uint64
	if tx.Signed != nil {
		txType = uint64(tx.Signed.Type())
	}
	return &RPCReceipt{
		TransactionHash:   r.TxHash,
		TransactionIndex:  hexutil.Uint(r.TxIndex),
		BlockHash:         r.BlockHash,
		BlockNumber:       hexutil.Uint64(r.BlockNumber),
		From:              r.From,
		To:                r.To,
		CumulativeGasUsed: hexutil.Uint64(r.GasUsed),
		GasUsed:           hexutil.Uint64(r.GasUsed),
		ContractAddress:   r.ContractAddress,
		Logs:              logs,
		LogsBloom:         types.CreateBloom(&types.Receipt{Logs: logs}),
		Status:            hexutil.Uint64(r.Status),
		EffectiveGasPrice: bigOrNil(r.GasPrice),
		Type:              hexutil.Uint64(txType),
	}
}

func newRPCTransaction(tx *chain.Transaction, chainID *big.Int) *RPCTransaction {
	blockHash := tx.BlockHash
	blockNum := hexutil.Uint64(tx.BlockNumber)
	index := hexutil.Uint(tx.Index)
	out := &RPCTransaction{
		Hash:             tx.Hash,
		Nonce:            hexutil.Uint64(tx.Nonce),
		BlockHash:        &blockHash,
		BlockNumber:      &blockNum,
		TransactionIndex: &index,
		From:             tx.From,
		To:               tx.To,
		Value:            bigOrNil(tx.Value),
		GasPrice:         bigOrNil(tx.GasPrice),
		Gas:              hexutil.Uint64(tx.Gas),
		Input:            tx.Data,
		V:                (*hexutil.Big)(new(big.Int)),
		R:                (*hexutil.Big)(new(big.Int)),
		S:                (*hexutil.Big)(new(big.Int)),
	}
	if tx.Signed != nil {
		v, r, s := tx.Signed.RawSignatureValues()
		out.V, out.R, out.S = (*hexutil.Big)(v), (*hexutil.Big)(r), (*hexutil.Big)(s)
		out.Type = hexutil.Uint64(tx.Signed.Type())
		if tx.Signed.Protected() {
			out.ChainID = (*hexutil.Big)(chainID)
		}
	}
	return out
}
