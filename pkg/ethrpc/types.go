package ethrpc

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// CallArgs represents the arguments to eth_call, eth_estimateGas and
// eth_sendTransaction
type CallArgs struct {
	From                 *common.Address `json:"from"`
	To                   *common.Address `json:"to"`
	Gas                  *hexutil.Uint64 `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas"`
	Value                *hexutil.Big    `json:"value"`
	Nonce                *hexutil.Uint64 `json:"nonce"`
	Data                 *hexutil.Bytes  `json:"data"`
	Input                *hexutil.Bytes  `json:"input"`
}

// GetData returns the input data, preferring 'input' over 'data'
func (args *CallArgs) GetData() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// RPCReceipt represents a transaction receipt in JSON-RPC format
type RPCReceipt struct {
	TransactionHash   common.Hash     `json:"transactionHash"`
	TransactionIndex  hexutil.Uint    `json:"transactionIndex"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Logs              []*types.Log    `json:"logs"`
	LogsBloom         types.Bloom     `json:"logsBloom"`
	Status            hexutil.Uint64  `json:"status"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	Type              hexutil.Uint64  `json:"type"`
}

// RPCTransaction represents a transaction in JSON-RPC format
type RPCTransaction struct {
	Hash             common.Hash     `json:"hash"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	BlockHash        *common.Hash    `json:"blockHash"`
	BlockNumber      *hexutil.Uint64 `json:"blockNumber"`
	TransactionIndex *hexutil.Uint   `json:"transactionIndex"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Value            *hexutil.Big    `json:"value"`
	GasPrice         *hexutil.Big    `json:"gasPrice"`
	Gas              hexutil.Uint64  `json:"gas"`
	Input            hexutil.Bytes   `json:"input"`
	V                *hexutil.Big    `json:"v"`
	R                *hexutil.Big    `json:"r"`
	S                *hexutil.Big    `json:"s"`
	Type             hexutil.Uint64  `json:"type"`
	ChainID          *hexutil.Big    `json:"chainId,omitempty"`
}

// RPCBlock represents a block in JSON-RPC format
type RPCBlock struct {
	Number           hexutil.Uint64   `json:"number"`
	Hash             common.Hash      `json:"hash"`
	ParentHash       common.Hash      `json:"parentHash"`
	Nonce            types.BlockNonce `json:"nonce"`
	MixHash          common.Hash      `json:"mixHash"`
	Sha3Uncles       common.Hash      `json:"sha3Uncles"`
	LogsBloom        types.Bloom      `json:"logsBloom"`
	TransactionsRoot common.Hash      `json:"transactionsRoot"`
	StateRoot        common.Hash      `json:"stateRoot"`
	ReceiptsRoot     common.Hash      `json:"receiptsRoot"`
	Miner            common.Address   `json:"miner"`
	Difficulty       *hexutil.Big     `json:"difficulty"`
	TotalDifficulty  *hexutil.Big     `json:"totalDifficulty"`
	ExtraData        hexutil.Bytes    `json:"extraData"`
	Size             hexutil.Uint64   `json:"size"`
	GasLimit         hexutil.Uint64   `json:"gasLimit"`
	GasUsed          hexutil.Uint64   `json:"gasUsed"`
	Timestamp        hexutil.Uint64   `json:"timestamp"`
	Transactions     []interface{}    `json:"transactions"`
	Uncles           []common.Hash    `json:"uncles"`
}

// FilterQuery represents the filter for eth_getLogs. Address is a single
// address or an array; each topic position is null, a topic or an array of
// alternatives.
type FilterQuery struct {
	BlockHash *common.Hash  `json:"blockHash,omitempty"`
	FromBlock *BlockTag     `json:"fromBlock,omitempty"`
	ToBlock   *BlockTag     `json:"toBlock,omitempty"`
	Address   interface{}   `json:"address,omitempty"`
	Topics    []interface{} `json:"topics,omitempty"`
}

// BlockTag is a block number or one of latest, pending, earliest, safe and
// finalized. Tags other than earliest resolve to the latest block.
type BlockTag struct {
	Number uint64
	Latest bool
}

// UnmarshalJSON accepts a hex quantity or a tag name.
func (b *BlockTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid block tag: %w", err)
	}
	switch s {
	case "latest", "pending", "safe", "finalized":
		*b = BlockTag{Latest: true}
		return nil
	case "earliest":
		*b = BlockTag{}
		return nil
	}
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return fmt.Errorf("invalid block number %q: %w", s, err)
	}
	*b = BlockTag{Number: n}
	return nil
}

// Seconds is an evm_increaseTime argument: a JSON number or a hex quantity.
type Seconds uint64

// UnmarshalJSON accepts 3600, "3600" and "0xe10".
func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if strings.HasPrefix(raw, "0x") {
		n, err := hexutil.DecodeUint64(raw)
		if err != nil {
			return err
		}
		*s = Seconds(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f >= math.MaxUint64 {
		return fmt.Errorf("invalid seconds %s", raw)
	}
	*s = Seconds(f)
	return nil
}

func parseAddresses(v interface{}) ([]common.Address, error) {
	switch a := v.(type) {
	case nil:
		return nil, nil
	case string:
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address %q", a)
		}
		return []common.Address{common.HexToAddress(a)}, nil
	case []interface{}:
		out := make([]common.Address, 0, len(a))
		for _, item := range a {
			addrs, err := parseAddresses(item)
			if err != nil {
				return nil, err
			}
			out = append(out, addrs...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid address filter %v", v)
	}
}

func parseTopics(topics []interface{}) ([][]common.Hash, error) {
	out := make([][]common.Hash, len(topics))
	for i, t := range topics {
		switch v := t.(type) {
		case nil:
		case string:
			h, err := parseHash(v)
			if err != nil {
				return nil, err
			}
			out[i] = []common.Hash{h}
		case []interface{}:
			for _, alt := range v {
				s, ok := alt.(string)
				if !ok {
					return nil, fmt.Errorf("invalid topic %v", alt)
				}
				h, err := parseHash(s)
				if err != nil {
					return nil, err
				}
				out[i] = append(out[i], h)
			}
		default:
			return nil, fmt.Errorf("invalid topic %v", t)
		}
	}
	return out, nil
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid topic %q", s)
	}
	return common.BytesToHash(b), nil
}

func bigOrNil(v *big.Int) *hexutil.Big {
	if v == nil {
		return nil
	}
	return (*hexutil.Big)(v)
}
