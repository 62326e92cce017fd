package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const maxCallDepth = 16

// Env is the execution context handed to a contract: who is calling, with how
// much ether, at what time, and the world state the call may mutate.
type Env struct {
	Sender common.Address
	Self   common.Address
	Value  *big.Int

	state *State
	now   time.Time
	block uint64
	logs  *[]*types.Log
	depth int
}

// NewEnv builds a standalone execution context over state. The chain builds
// its own environments; this is for driving contracts directly.
func NewEnv(state *State, sender, self common.Address, value *big.Int, now time.Time) *Env {
	if value == nil {
		value = new(big.Int)
	}
	logs := make([]*types.Log, 0)
	return &Env{Sender: sender, Self: self, Value: value, state: state, now: now, logs: &logs}
}

// Now returns the timestamp of the block being executed.
func (e *Env) Now() time.Time {
	return e.now
}

// BlockNumber returns the number of the block being executed.
func (e *Env) BlockNumber() uint64 {
	return e.block
}

// State exposes the world state the call executes against.
func (e *Env) State() *State {
	return e.state
}

// Contract returns the contract deployed at addr.
func (e *Env) Contract(addr common.Address) (Contract, error) {
	c, ok := e.state.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, addr.Hex())
	}
	return c, nil
}

// Call returns the environment for a nested call from the current contract to
// another one. The callee sees the current contract as its sender.
func (e *Env) Call(to common.Address) (*Env, error) {
	if e.depth+1 > maxCallDepth {
		return nil, fmt.Errorf("max call depth %d exceeded", maxCallDepth)
	}
	return &Env{
		Sender: e.Self,
		Self:   to,
		Value:  new(big.Int),
		state:  e.state,
		now:    e.now,
		block:  e.block,
		logs:   e.logs,
		depth:  e.depth + 1,
	}, nil
}

// Balance returns the ether balance of addr.
func (e *Env) Balance(addr common.Address) *big.Int {
	return e.state.Balance(addr)
}

// SendEther moves ether held by the executing contract to another account.
func (e *Env) SendEther(to common.Address, amount *big.Int) error {
	return e.state.TransferEther(e.Self, to, amount)
}

// Emit appends a log for ev emitted by the executing contract. args follow the
// event's input order; indexed arguments become topics.
func (e *Env) Emit(ev abi.Event, args ...any) error {
	if len(args) != len(ev.Inputs) {
		return fmt.Errorf("event %s: expected %d args, got %d", ev.Name, len(ev.Inputs), len(args))
	}
	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		topic, err := topicFor(args[i])
		if err != nil {
			return fmt.Errorf("event %s: %w", ev.Name, err)
		}
		topics = append(topics, topic)
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("event %s: %w", ev.Name, err)
	}
	*e.logs = append(*e.logs, &types.Log{
		Address: e.Self,
		Topics:  topics,
		Data:    packed,
	})
	return nil
}

func topicFor(v any) (common.Hash, error) {
	switch t := v.(type) {
	case common.Address:
		return common.BytesToHash(t.Bytes()), nil
	case *big.Int:
		return common.BigToHash(t), nil
	case common.Hash:
		return t, nil
	case bool:
		if t {
			return common.BigToHash(big.NewInt(1)), nil
		}
		return common.Hash{}, nil
	case uint8:
		return common.BigToHash(big.NewInt(int64(t))), nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported indexed type %T", v)
	}
}
