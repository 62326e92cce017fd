package crowdfund

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

// Angel is the allocation delivered to an angel investor and its unlock state.
type Angel struct {
	Amount          *big.Int `json:"amount"`
	PartialUnlocked bool     `json:"partialUnlocked"`
	FullUnlocked    bool     `json:"fullUnlocked"`
}

// Pools are the token allocations the supply is minted from.
type Pools struct {
	Angel      *Pool `json:"angel"`
	EarlyBird  *Pool `json:"earlyBird"`
	Public     *Pool `json:"public"`
	Marketing  *Pool `json:"marketing"`
	Team       *Pool `json:"team"`
	Foundation *Pool `json:"foundation"`
}

func newPools(p Params) Pools {
	return Pools{
		Angel:      newPool("angel", p.AngelPool),
		EarlyBird:  newPool("earlyBird", p.EarlyBirdPool),
		Public:     newPool("public", p.PublicPool),
		Marketing:  newPool("marketing", p.MarketingPool),
		Team:       newPool("team", p.TeamPool),
		Foundation: newPool("foundation", p.FoundationPool),
	}
}

func (p Pools) clone() Pools {
	return Pools{
		Angel:      p.Angel.clone(),
		EarlyBird:  p.EarlyBird.clone(),
		Public:     p.Public.clone(),
		Marketing:  p.Marketing.clone(),
		Team:       p.Team.clone(),
		Foundation: p.Foundation.clone(),
	}
}

// Token is the RED token contract. It owns the crowdfund phase, the pools and
// the token ledger. The deployer owns it; the crowdfund contract registered
// with SetCrowdfundAddress drives the sale.
type Token struct {
	Params Params `json:"params"`

	Owner      common.Address `json:"owner"`
	Crowdfund  common.Address `json:"crowdfund"`
	Foundation common.Address `json:"foundation"`
	Marketing  common.Address `json:"marketing"`
	Team       common.Address `json:"team"`

	Phase      Phase `json:"phase"`
	DeployedAt int64 `json:"deployedAt"`
	ClosedAt   int64 `json:"closedAt"`

	Pools             Pools `json:"pools"`
	MarketingReleased bool  `json:"marketingReleased"`
	TeamReleased      bool  `json:"teamReleased"`

	Supply     *big.Int                                       `json:"supply"`
	Balances   map[common.Address]*big.Int                    `json:"balances"`
	Allowances map[common.Address]map[common.Address]*big.Int `json:"allowances"`
	Angels     map[common.Address]*Angel                      `json:"angels"`
}

// NewToken creates the token owned by env.Sender.
func NewToken(env *chain.Env, params Params) (*Token, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &Token{
		Params:     params,
		Owner:      env.Sender,
		Phase:      NotStarted,
		DeployedAt: env.Now().Unix(),
		Pools:      newPools(params),
		Supply:     new(big.Int),
		Balances:   make(map[common.Address]*big.Int),
		Allowances: make(map[common.Address]map[common.Address]*big.Int),
		Angels:     make(map[common.Address]*Angel),
	}, nil
}

// Artifact implements chain.Contract.
func (t *Token) Artifact() string { return TokenName }

// Clone implements chain.Contract.
func (t *Token) Clone() chain.Contract {
	out := *t
	out.Pools = t.Pools.clone()
	out.Supply = new(big.Int).Set(t.Supply)
	out.Balances = make(map[common.Address]*big.Int, len(t.Balances))
	for a, v := range t.Balances {
		out.Balances[a] = new(big.Int).Set(v)
	}
	out.Allowances = make(map[common.Address]map[common.Address]*big.Int, len(t.Allowances))
	for owner, spenders := range t.Allowances {
		m := make(map[common.Address]*big.Int, len(spenders))
		for s, v := range spenders {
			m[s] = new(big.Int).Set(v)
		}
		out.Allowances[owner] = m
	}
	out.Angels = make(map[common.Address]*Angel, len(t.Angels))
	for a, angel := range t.Angels {
		cp := *angel
		cp.Amount = new(big.Int).Set(angel.Amount)
		out.Angels[a] = &cp
	}
	return &out
}

// BalanceOf returns the token balance of a.
func (t *Token) BalanceOf(a common.Address) *big.Int {
	if v, ok := t.Balances[a]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if v, ok := t.Allowances[owner][spender]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// AngelAmountOf returns the allocation delivered to angel.
func (t *Token) AngelAmountOf(angel common.Address) *big.Int {
	if a, ok := t.Angels[angel]; ok {
		return new(big.Int).Set(a.Amount)
	}
	return new(big.Int)
}

// LockedBalanceOf is the part of a's balance that cannot be transferred
// because of the angel lock.
func (t *Token) LockedBalanceOf(a common.Address) *big.Int {
	angel, ok := t.Angels[a]
	if !ok || angel.FullUnlocked {
		return new(big.Int)
	}
	if angel.PartialUnlocked {
		locked := new(big.Int).Mul(angel.Amount, big.NewInt(int64(100-t.Params.AngelPartialUnlockPercent)))
		return locked.Quo(locked, big.NewInt(100))
	}
	return new(big.Int).Set(angel.Amount)
}

func (t *Token) onlyOwner(env *chain.Env) error {
	if env.Sender != t.Owner {
		return fmt.Errorf("%w: %s is not the token owner", ErrUnauthorized, env.Sender.Hex())
	}
	return nil
}

func (t *Token) onlyCrowdfund(env *chain.Env) error {
	if t.Crowdfund == (common.Address{}) || env.Sender != t.Crowdfund {
		return fmt.Errorf("%w: %s is not the crowdfund contract", ErrUnauthorized, env.Sender.Hex())
	}
	return nil
}

func (t *Token) advance(env *chain.Env, op Operation) error {
	next, err := t.Phase.Next(op)
	if err != nil {
		return err
	}
	t.Phase = next
	return env.Emit(tokenABI.Events["PhaseChanged"], uint8(next))
}

func (t *Token) mint(env *chain.Env, pool *Pool, to common.Address, v *big.Int) error {
	if err := pool.Take(v); err != nil {
		return err
	}
	t.credit(to, v)
	t.Supply.Add(t.Supply, v)
	return env.Emit(tokenABI.Events["Transfer"], common.Address{}, to, v)
}

func (t *Token) credit(a common.Address, v *big.Int) {
	bal, ok := t.Balances[a]
	if !ok {
		bal = new(big.Int)
		t.Balances[a] = bal
	}
	bal.Add(bal, v)
}

// move transfers v between holders, applying the general and angel locks.
func (t *Token) move(env *chain.Env, from, to common.Address, v *big.Int) error {
	if t.Phase != Closed {
		return ErrTransfersLocked
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", ErrInvalidArgument)
	}
	bal := t.BalanceOf(from)
	if bal.Cmp(v) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), bal, v)
	}
	free := new(big.Int).Sub(bal, t.LockedBalanceOf(from))
	if free.Cmp(v) < 0 {
		return fmt.Errorf("%w: %s can transfer at most %s", ErrLockedBalance, from.Hex(), free)
	}
	t.transfer(from, to, v)
	return env.Emit(tokenABI.Events["Transfer"], from, to, v)
}

func (t *Token) transfer(from, to common.Address, v *big.Int) {
	t.Balances[from] = new(big.Int).Sub(t.BalanceOf(from), v)
	t.credit(to, v)
}

func nonZero(a common.Address, what string) error {
	if a == (common.Address{}) {
		return fmt.Errorf("%w: %s is the zero address", ErrInvalidArgument, what)
	}
	return nil
}

// SetCrowdfundAddress registers the crowdfund contract. It can be called once,
// before the sale starts.
func (t *Token) SetCrowdfundAddress(env *chain.Env, a common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if t.Phase != NotStarted {
		return fmt.Errorf("%w: crowdfund already started", ErrInvalidState)
	}
	if t.Crowdfund != (common.Address{}) {
		return fmt.Errorf("%w: crowdfund address already set", ErrInvalidState)
	}
	if err := nonZero(a, "crowdfund"); err != nil {
		return err
	}
	t.Crowdfund = a
	return nil
}

// SetFoundationAddress sets the account receiving the foundation pool and the
// unsold sale supply.
func (t *Token) SetFoundationAddress(env *chain.Env, a common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if err := nonZero(a, "foundation"); err != nil {
		return err
	}
	t.Foundation = a
	return nil
}

// SetMarketingAddress sets the account receiving the marketing pool.
func (t *Token) SetMarketingAddress(env *chain.Env, a common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if err := nonZero(a, "marketing"); err != nil {
		return err
	}
	t.Marketing = a
	return nil
}

// ChangeRedTeamAddress sets the account receiving the team pool.
func (t *Token) ChangeRedTeamAddress(env *chain.Env, a common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if err := nonZero(a, "team"); err != nil {
		return err
	}
	t.Team = a
	return nil
}

// DeliverAngelsREDAccounts mints angel allocations from the angel pool. The
// whole batch fails when it exceeds what remains in the pool.
func (t *Token) DeliverAngelsREDAccounts(env *chain.Env, angels []common.Address, amounts []*big.Int) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if len(angels) != len(amounts) {
		return fmt.Errorf("%w: %d angels but %d amounts", ErrInvalidArgument, len(angels), len(amounts))
	}
	total := new(big.Int)
	for i, a := range angels {
		if err := nonZero(a, "angel"); err != nil {
			return err
		}
		total.Add(total, amounts[i])
	}
	if total.Cmp(t.Pools.Angel.Remaining) > 0 {
		return fmt.Errorf("%w: angel pool has %s, requested %s", ErrPoolExhausted, t.Pools.Angel.Remaining, total)
	}
	for i, a := range angels {
		if err := t.mint(env, t.Pools.Angel, a, amounts[i]); err != nil {
			return err
		}
		angel, ok := t.Angels[a]
		if !ok {
			angel = &Angel{Amount: new(big.Int)}
			t.Angels[a] = angel
		}
		angel.Amount.Add(angel.Amount, amounts[i])
		if err := env.Emit(tokenABI.Events["AngelDelivered"], a, amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

// StartCrowdfund opens the early birds round and mints the early bird pool to
// the crowdfund contract.
func (t *Token) StartCrowdfund(env *chain.Env) error {
	if err := t.onlyCrowdfund(env); err != nil {
		return err
	}
	if err := t.advance(env, OpOpen); err != nil {
		return err
	}
	return t.mintSaleSupply(env, t.Pools.EarlyBird)
}

// mintSaleSupply mints pool to the crowdfund contract. Its Remaining keeps
// counting the unsold part held by the crowdfund.
func (t *Token) mintSaleSupply(env *chain.Env, pool *Pool) error {
	v := new(big.Int).Set(pool.Remaining)
	t.credit(t.Crowdfund, v)
	t.Supply.Add(t.Supply, v)
	return env.Emit(tokenABI.Events["Transfer"], common.Address{}, t.Crowdfund, v)
}

// FinalizeEarlyBirds ends the early birds round. The public pool is minted to
// the crowdfund and absorbs the unsold early bird supply.
func (t *Token) FinalizeEarlyBirds(env *chain.Env) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if err := t.advance(env, OpFinalizeEarlyBirds); err != nil {
		return err
	}
	if err := t.mintSaleSupply(env, t.Pools.Public); err != nil {
		return err
	}
	t.Pools.Public.Absorb(t.Pools.EarlyBird)
	return nil
}

// activePool is the pool purchases are taken from in the current phase.
func (t *Token) activePool() (*Pool, error) {
	switch t.Phase {
	case EarlyBirds:
		return t.Pools.EarlyBird, nil
	case Open:
		return t.Pools.Public, nil
	default:
		return nil, fmt.Errorf("%w: crowdfund is %s", ErrPhaseClosed, t.Phase)
	}
}

// TransferFromCrowdfund delivers purchased tokens from the crowdfund balance.
func (t *Token) TransferFromCrowdfund(env *chain.Env, to common.Address, v *big.Int) error {
	if err := t.onlyCrowdfund(env); err != nil {
		return err
	}
	pool, err := t.activePool()
	if err != nil {
		return err
	}
	if err := nonZero(to, "buyer"); err != nil {
		return err
	}
	if v.Sign() <= 0 {
		return fmt.Errorf("%w: nothing to deliver", ErrInvalidArgument)
	}
	if err := pool.Take(v); err != nil {
		return err
	}
	t.transfer(t.Crowdfund, to, v)
	return env.Emit(tokenABI.Events["Transfer"], t.Crowdfund, to, v)
}

// FinalizeCrowdfund closes the sale. The foundation receives the unsold sale
// supply and the foundation pool.
func (t *Token) FinalizeCrowdfund(env *chain.Env) error {
	if err := t.onlyCrowdfund(env); err != nil {
		return err
	}
	if err := t.advance(env, OpClose); err != nil {
		return err
	}
	if err := nonZero(t.Foundation, "foundation"); err != nil {
		return err
	}
	unsold := t.Pools.EarlyBird.Drain()
	unsold.Add(unsold, t.Pools.Public.Drain())
	if unsold.Sign() > 0 {
		t.transfer(t.Crowdfund, t.Foundation, unsold)
		if err := env.Emit(tokenABI.Events["Transfer"], t.Crowdfund, t.Foundation, unsold); err != nil {
			return err
		}
	}
	if err := t.mint(env, t.Pools.Foundation, t.Foundation, new(big.Int).Set(t.Pools.Foundation.Remaining)); err != nil {
		return err
	}
	t.ClosedAt = env.Now().Unix()
	return nil
}

// ReleaseMarketingTokens mints the marketing pool to the marketing address.
func (t *Token) ReleaseMarketingTokens(env *chain.Env) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if t.MarketingReleased {
		return fmt.Errorf("%w: marketing tokens already released", ErrInvalidState)
	}
	if err := nonZero(t.Marketing, "marketing"); err != nil {
		return err
	}
	if err := t.mint(env, t.Pools.Marketing, t.Marketing, new(big.Int).Set(t.Pools.Marketing.Remaining)); err != nil {
		return err
	}
	t.MarketingReleased = true
	return nil
}

// TeamReleaseAt is when the team pool can be released.
func (t *Token) TeamReleaseAt() time.Time {
	return time.Unix(t.DeployedAt, 0).Add(t.Params.TeamReleaseDelay)
}

// ReleaseRedTeamTokens mints the team pool to the team address once the
// release delay after deployment has passed.
func (t *Token) ReleaseRedTeamTokens(env *chain.Env) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if t.TeamReleased {
		return fmt.Errorf("%w: team tokens already released", ErrInvalidState)
	}
	if env.Now().Before(t.TeamReleaseAt()) {
		return fmt.Errorf("%w: team tokens unlock at %s", ErrTooEarly, t.TeamReleaseAt().UTC().Format(time.RFC3339))
	}
	if err := nonZero(t.Team, "team"); err != nil {
		return err
	}
	if err := t.mint(env, t.Pools.Team, t.Team, new(big.Int).Set(t.Pools.Team.Remaining)); err != nil {
		return err
	}
	t.TeamReleased = true
	return nil
}

func (t *Token) angels(list []common.Address) ([]*Angel, error) {
	out := make([]*Angel, 0, len(list))
	for _, a := range list {
		angel, ok := t.Angels[a]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an angel", ErrInvalidArgument, a.Hex())
		}
		out = append(out, angel)
	}
	return out, nil
}

// PartialUnlockAngelsAccounts makes the partial unlock share of each angel's
// allocation transferable.
func (t *Token) PartialUnlockAngelsAccounts(env *chain.Env, list []common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if t.Phase != Closed {
		return fmt.Errorf("%w: angels unlock after the crowdfund closes", ErrInvalidState)
	}
	angels, err := t.angels(list)
	if err != nil {
		return err
	}
	for _, a := range angels {
		a.PartialUnlocked = true
	}
	return nil
}

// AngelFullUnlockAt is when angel allocations can be fully unlocked.
func (t *Token) AngelFullUnlockAt() time.Time {
	return time.Unix(t.ClosedAt, 0).Add(t.Params.AngelFullUnlockDelay)
}

// FullUnlockAngelsAccounts lifts the angel lock once the full unlock delay
// after close has passed.
func (t *Token) FullUnlockAngelsAccounts(env *chain.Env, list []common.Address) error {
	if err := t.onlyOwner(env); err != nil {
		return err
	}
	if t.Phase != Closed {
		return fmt.Errorf("%w: angels unlock after the crowdfund closes", ErrInvalidState)
	}
	if env.Now().Before(t.AngelFullUnlockAt()) {
		return fmt.Errorf("%w: angels fully unlock at %s", ErrTooEarly, t.AngelFullUnlockAt().UTC().Format(time.RFC3339))
	}
	angels, err := t.angels(list)
	if err != nil {
		return err
	}
	for _, a := range angels {
		a.FullUnlocked = true
	}
	return nil
}

// Transfer moves v tokens from the sender to to.
func (t *Token) Transfer(env *chain.Env, to common.Address, v *big.Int) error {
	return t.move(env, env.Sender, to, v)
}

// TransferFrom moves v tokens from from to to using the sender's allowance.
func (t *Token) TransferFrom(env *chain.Env, from, to common.Address, v *big.Int) error {
	if t.Phase != Closed {
		return ErrTransfersLocked
	}
	allowed := t.Allowance(from, env.Sender)
	if allowed.Cmp(v) < 0 {
		return fmt.Errorf("%w: %s may spend %s of %s", ErrInsufficientAllowance, env.Sender.Hex(), allowed, from.Hex())
	}
	if err := t.move(env, from, to, v); err != nil {
		return err
	}
	t.setAllowance(from, env.Sender, allowed.Sub(allowed, v))
	return nil
}

// Approve sets the amount spender may transfer on behalf of the sender.
func (t *Token) Approve(env *chain.Env, spender common.Address, v *big.Int) error {
	if err := nonZero(spender, "spender"); err != nil {
		return err
	}
	t.setAllowance(env.Sender, spender, v)
	return env.Emit(tokenABI.Events["Approval"], env.Sender, spender, v)
}

func (t *Token) setAllowance(owner, spender common.Address, v *big.Int) {
	spenders, ok := t.Allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*big.Int)
		t.Allowances[owner] = spenders
	}
	spenders[spender] = new(big.Int).Set(v)
}
