package crowdfund

import (
	"fmt"
	"math/big"
)

// Pool is a capped token allocation. Remaining never goes negative and the
// amount delivered from a pool never exceeds its cap.
type Pool struct {
	Name      string   `json:"name"`
	Cap       *big.Int `json:"cap"`
	Remaining *big.Int `json:"remaining"`
}

func newPool(name string, capacity *big.Int) *Pool {
	return &Pool{Name: name, Cap: new(big.Int).Set(capacity), Remaining: new(big.Int).Set(capacity)}
}

// Delivered is the amount taken from the pool so far.
func (p *Pool) Delivered() *big.Int {
	return new(big.Int).Sub(p.Cap, p.Remaining)
}

// Take removes v from the pool, failing with ErrPoolExhausted without
// modifying the pool when v exceeds what remains.
func (p *Pool) Take(v *big.Int) error {
	if v.Cmp(p.Remaining) > 0 {
		return fmt.Errorf("%w: %s pool has %s, requested %s", ErrPoolExhausted, p.Name, p.Remaining, v)
	}
	p.Remaining.Sub(p.Remaining, v)
	return nil
}

// Drain empties the pool and returns what was left.
func (p *Pool) Drain() *big.Int {
	left := new(big.Int).Set(p.Remaining)
	p.Remaining.SetInt64(0)
	return left
}

// Absorb moves the undelivered part of other into p. other keeps only what it
// already delivered as its cap.
func (p *Pool) Absorb(other *Pool) {
	left := other.Drain()
	other.Cap.Sub(other.Cap, left)
	p.Cap.Add(p.Cap, left)
	p.Remaining.Add(p.Remaining, left)
}

func (p *Pool) clone() *Pool {
	return &Pool{Name: p.Name, Cap: new(big.Int).Set(p.Cap), Remaining: new(big.Int).Set(p.Remaining)}
}
