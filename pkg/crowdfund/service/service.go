// Package service exposes the read-only crowdfund queries and the chain admin
// operations (snapshot, revert, time travel, mining) to the REST API.
package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

// Service defines the interface for crowdfund queries and chain administration.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --with-expecter
type Service interface {
	Status(ctx context.Context) (*Status, error)
	Holder(ctx context.Context, addr common.Address) (*Holder, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*Allowance, error)

	Snapshot(ctx context.Context) (*SnapshotResponse, error)
	Revert(ctx context.Context, id uint64) (*RevertResponse, error)
	IncreaseTime(ctx context.Context, d time.Duration) (*TimeResponse, error)
	Mine(ctx context.Context) (*MineResponse, error)
}

// Status summarizes the crowdfund. Token amounts are whole RED as decimal strings.
type Status struct {
	Phase                string         `json:"phase"`
	Symbol               string         `json:"symbol"`
	Token                common.Address `json:"token"`
	Crowdfund            common.Address `json:"crowdfund"`
	Wallet               common.Address `json:"wallet"`
	IsOpen               bool           `json:"isOpen"`
	IsEarlyBirdsStage    bool           `json:"isEarlyBirdsStage"`
	IsPreSaleStage       bool           `json:"isPreSaleStage"`
	TotalSupply          string         `json:"totalSupply"`
	CrowdfundBalance     string         `json:"crowdfundBalance"`
	AngelAmountRemaining string         `json:"angelAmountRemaining"`
	StartsAt             int64          `json:"startsAt"`
	EndsAt               int64          `json:"endsAt"`
	ChainTime            int64          `json:"chainTime"`
	BlockNumber          uint64         `json:"blockNumber"`
}

// Holder is the token position of one account.
type Holder struct {
	Address       common.Address `json:"address"`
	Balance       string         `json:"balance"`
	LockedBalance string         `json:"lockedBalance"`
	AngelAmount   string         `json:"angelAmount"`
	Whitelisted   bool           `json:"whitelisted"`
	Ether         string         `json:"ether"`
}

// Allowance is what spender may still move on behalf of owner.
type Allowance struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

// SnapshotResponse carries the id of a new snapshot.
type SnapshotResponse struct {
	ID uint64 `json:"id"`
}

// RevertResponse reports whether the snapshot existed.
type RevertResponse struct {
	Reverted bool `json:"reverted"`
}

// TimeResponse reports the total clock adjustment and the resulting chain time.
type TimeResponse struct {
	OffsetSeconds int64 `json:"offsetSeconds"`
	ChainTime     int64 `json:"chainTime"`
}

// MineResponse describes a mined block.
type MineResponse struct {
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`
}

type crowdfundService struct {
	chain     *chain.Chain
	token     *chain.BoundContract
	crowdfund *chain.BoundContract
}

// NewService creates the service over the deployed token and crowdfund.
func NewService(c *chain.Chain, token, crowdfund *chain.BoundContract) Service {
	return &crowdfundService{
		chain:     c,
		token:     token,
		crowdfund: crowdfund,
	}
}

func (s *crowdfundService) Status(ctx context.Context) (*Status, error) {
	var (
		st  = &Status{Token: s.token.Address, Crowdfund: s.crowdfund.Address}
		err error
	)

	phase, err := call[uint8](ctx, s.token, "phase")
	if err != nil {
		return nil, toServiceError(err)
	}
	st.Phase = crowdfund.Phase(phase).String()

	if st.Symbol, err = call[string](ctx, s.token, "symbol"); err != nil {
		return nil, toServiceError(err)
	}
	if st.Wallet, err = call[common.Address](ctx, s.crowdfund, "wallet"); err != nil {
		return nil, toServiceError(err)
	}
	if st.IsOpen, err = call[bool](ctx, s.crowdfund, "isOpen"); err != nil {
		return nil, toServiceError(err)
	}
	if st.IsEarlyBirdsStage, err = call[bool](ctx, s.crowdfund, "isEarlyBirdsStage"); err != nil {
		return nil, toServiceError(err)
	}
	if st.IsPreSaleStage, err = call[bool](ctx, s.crowdfund, "isPreSaleStage"); err != nil {
		return nil, toServiceError(err)
	}

	amounts := []struct {
		dst    *string
		target *chain.BoundContract
		method string
		args   []any
	}{
		{&st.TotalSupply, s.token, "totalSupply", nil},
		{&st.CrowdfundBalance, s.token, "balanceOf", []any{s.crowdfund.Address}},
		{&st.AngelAmountRemaining, s.token, "angelAmountRemaining", nil},
	}
	for _, a := range amounts {
		v, err := call[*big.Int](ctx, a.target, a.method, a.args...)
		if err != nil {
			return nil, toServiceError(err)
		}
		*a.dst = units.FromWei(v)
	}

	startsAt, err := call[*big.Int](ctx, s.crowdfund, "startsAt")
	if err != nil {
		return nil, toServiceError(err)
	}
	endsAt, err := call[*big.Int](ctx, s.crowdfund, "endsAt")
	if err != nil {
		return nil, toServiceError(err)
	}
	st.StartsAt = startsAt.Int64()
	st.EndsAt = endsAt.Int64()
	st.ChainTime = s.chain.Now().Unix()
	st.BlockNumber = s.chain.BlockNumber()
	return st, nil
}

func (s *crowdfundService) Holder(ctx context.Context, addr common.Address) (*Holder, error) {
	balance, err := call[*big.Int](ctx, s.token, "balanceOf", addr)
	if err != nil {
		return nil, toServiceError(err)
	}
	locked, err := call[*big.Int](ctx, s.token, "lockedBalanceOf", addr)
	if err != nil {
		return nil, toServiceError(err)
	}
	angel, err := call[*big.Int](ctx, s.token, "angelAmountOf", addr)
	if err != nil {
		return nil, toServiceError(err)
	}
	whitelisted, err := call[bool](ctx, s.crowdfund, "whitelisted", addr)
	if err != nil {
		return nil, toServiceError(err)
	}
	return &Holder{
		Address:       addr,
		Balance:       units.FromWei(balance),
		LockedBalance: units.FromWei(locked),
		AngelAmount:   units.FromWei(angel),
		Whitelisted:   whitelisted,
		Ether:         units.FromWei(s.chain.BalanceAt(addr)),
	}, nil
}

func (s *crowdfundService) Allowance(ctx context.Context, owner, spender common.Address) (*Allowance, error) {
	v, err := call[*big.Int](ctx, s.token, "allowance", owner, spender)
	if err != nil {
		return nil, toServiceError(err)
	}
	return &Allowance{Owner: owner, Spender: spender, Amount: units.FromWei(v)}, nil
}

func (s *crowdfundService) Snapshot(ctx context.Context) (*SnapshotResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SnapshotResponse{ID: s.chain.Snapshot()}, nil
}

func (s *crowdfundService) Revert(ctx context.Context, id uint64) (*RevertResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RevertResponse{Reverted: s.chain.Revert(id)}, nil
}

func (s *crowdfundService) IncreaseTime(ctx context.Context, d time.Duration) (*TimeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d < 0 {
		return nil, toServiceError(fmt.Errorf("%w: time can only move forward", crowdfund.ErrInvalidArgument))
	}
	total := s.chain.IncreaseTime(d)
	return &TimeResponse{
		OffsetSeconds: int64(total / time.Second),
		ChainTime:     s.chain.Now().Unix(),
	}, nil
}

func (s *crowdfundService) Mine(ctx context.Context) (*MineResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := s.chain.Mine()
	return &MineResponse{BlockNumber: b.Number, Timestamp: b.Time.Unix()}, nil
}

// call invokes a single-result view method and asserts its Go type.
func call[T any](ctx context.Context, c *chain.BoundContract, method string, args ...any) (T, error) {
	var zero T
	out, err := c.Call(ctx, common.Address{}, method, args...)
	if err != nil {
		return zero, fmt.Errorf("%s.%s: %w", c.Artifact().Name, method, err)
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("%s.%s: expected 1 result, got %d", c.Artifact().Name, method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s.%s: unexpected result type %T", c.Artifact().Name, method, out[0])
	}
	return v, nil
}
