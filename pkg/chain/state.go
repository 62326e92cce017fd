package chain

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Account is an externally owned or contract account in the world state.
type Account struct {
	Balance *big.Int
	Nonce   uint64
}

// State is the world state of the chain: ether ledger, nonces and contract storage.
// A State is owned by exactly one goroutine at a time; the Chain hands out
// private copies to transactions and swaps them in on success.
type State struct {
	accounts  map[common.Address]*Account
	contracts map[common.Address]Contract
}

// NewState returns an empty world state.
func NewState() *State {
	return &State{
		accounts:  make(map[common.Address]*Account),
		contracts: make(map[common.Address]Contract),
	}
}

// Clone deep copies the state, including every contract's storage.
func (s *State) Clone() *State {
	out := &State{
		accounts:  make(map[common.Address]*Account, len(s.accounts)),
		contracts: make(map[common.Address]Contract, len(s.contracts)),
	}
	for addr, acc := range s.accounts {
		out.accounts[addr] = &Account{Balance: new(big.Int).Set(acc.Balance), Nonce: acc.Nonce}
	}
	for addr, c := range s.contracts {
		out.contracts[addr] = c.Clone()
	}
	return out
}

func (s *State) account(addr common.Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &Account{Balance: new(big.Int)}
		s.accounts[addr] = acc
	}
	return acc
}

// Balance returns a copy of the ether balance of addr.
func (s *State) Balance(addr common.Address) *big.Int {
	if acc, ok := s.accounts[addr]; ok {
		return new(big.Int).Set(acc.Balance)
	}
	return new(big.Int)
}

// Nonce returns the transaction count of addr.
func (s *State) Nonce(addr common.Address) uint64 {
	if acc, ok := s.accounts[addr]; ok {
		return acc.Nonce
	}
	return 0
}

// AddBalance credits addr with amount wei.
func (s *State) AddBalance(addr common.Address, amount *big.Int) {
	acc := s.account(addr)
	acc.Balance.Add(acc.Balance, amount)
}

// SubBalance debits addr, failing with ErrInsufficientFunds instead of going negative.
func (s *State) SubBalance(addr common.Address, amount *big.Int) error {
	acc := s.account(addr)
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	acc.Balance.Sub(acc.Balance, amount)
	return nil
}

// TransferEther moves amount wei between two accounts.
func (s *State) TransferEther(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	s.AddBalance(to, amount)
	return nil
}

func (s *State) incrementNonce(addr common.Address) {
	s.account(addr).Nonce++
}

// Contract returns the contract deployed at addr, if any.
func (s *State) Contract(addr common.Address) (Contract, bool) {
	c, ok := s.contracts[addr]
	return c, ok
}

func (s *State) setContract(addr common.Address, c Contract) {
	s.contracts[addr] = c
	s.account(addr)
}

// Addresses lists every known account in a stable order.
func (s *State) Addresses() []common.Address {
	out := make([]common.Address, 0, len(s.accounts))
	for addr := range s.accounts {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
