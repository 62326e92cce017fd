package crowdfund

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

// Crowdfund is the RED sale contract. It accepts ether, prices it at the rate
// of the current round and has the token deliver from the sale supply.
// Proceeds are forwarded to the wallet immediately.
type Crowdfund struct {
	Owner  common.Address `json:"owner"`
	Token  common.Address `json:"token"`
	Wallet common.Address `json:"wallet"`

	Whitelist map[common.Address]bool `json:"whitelist"`

	StartsAt    int64 `json:"startsAt"`
	OpenedAt    int64 `json:"openedAt"`
	EndsAt      int64 `json:"endsAt"`
	ICODuration int64 `json:"icoDuration"`

	EarlyBirdsRate *big.Int `json:"earlyBirdsRate"`
	OpenRate       *big.Int `json:"openRate"`
}

// NewCrowdfund creates the sale contract for the token at tokenAddr. The
// deployer owns it and initially receives the proceeds.
func NewCrowdfund(env *chain.Env, tokenAddr common.Address) (*Crowdfund, error) {
	if err := nonZero(tokenAddr, "token"); err != nil {
		return nil, err
	}
	tok, err := tokenAt(env, tokenAddr)
	if err != nil {
		return nil, err
	}
	return &Crowdfund{
		Owner:          env.Sender,
		Token:          tokenAddr,
		Wallet:         env.Sender,
		Whitelist:      make(map[common.Address]bool),
		ICODuration:    int64(tok.Params.ICODuration / time.Second),
		EarlyBirdsRate: new(big.Int).Set(tok.Params.EarlyBirdsRate),
		OpenRate:       new(big.Int).Set(tok.Params.OpenRate),
	}, nil
}

// Artifact implements chain.Contract.
func (c *Crowdfund) Artifact() string { return CrowdfundName }

// Clone implements chain.Contract.
func (c *Crowdfund) Clone() chain.Contract {
	out := *c
	out.Whitelist = make(map[common.Address]bool, len(c.Whitelist))
	for a, ok := range c.Whitelist {
		out.Whitelist[a] = ok
	}
	out.EarlyBirdsRate = new(big.Int).Set(c.EarlyBirdsRate)
	out.OpenRate = new(big.Int).Set(c.OpenRate)
	return &out
}

func tokenAt(env *chain.Env, addr common.Address) (*Token, error) {
	contract, err := env.Contract(addr)
	if err != nil {
		return nil, err
	}
	tok, ok := contract.(*Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a %s contract", ErrInvalidArgument, addr.Hex(), TokenName)
	}
	return tok, nil
}

// token returns the token contract and the environment for calling it from
// this contract.
func (c *Crowdfund) token(env *chain.Env) (*Token, *chain.Env, error) {
	tok, err := tokenAt(env, c.Token)
	if err != nil {
		return nil, nil, err
	}
	callEnv, err := env.Call(c.Token)
	if err != nil {
		return nil, nil, err
	}
	return tok, callEnv, nil
}

func (c *Crowdfund) onlyOwner(env *chain.Env) error {
	if env.Sender != c.Owner {
		return fmt.Errorf("%w: %s is not the crowdfund owner", ErrUnauthorized, env.Sender.Hex())
	}
	return nil
}

// Phase returns the sale phase kept by the token.
func (c *Crowdfund) Phase(env *chain.Env) (Phase, error) {
	tok, err := tokenAt(env, c.Token)
	if err != nil {
		return NotStarted, err
	}
	return tok.Phase, nil
}

// OpenCrowdfund starts the early birds round.
func (c *Crowdfund) OpenCrowdfund(env *chain.Env) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	tok, callEnv, err := c.token(env)
	if err != nil {
		return err
	}
	if tok.Phase != NotStarted {
		return fmt.Errorf("%w: crowdfund is %s", ErrInvalidState, tok.Phase)
	}
	now := env.Now().Unix()
	if c.StartsAt != 0 && now < c.StartsAt {
		return fmt.Errorf("%w: crowdfund opens at %s", ErrTooEarly, time.Unix(c.StartsAt, 0).UTC().Format(time.RFC3339))
	}
	if err := tok.StartCrowdfund(callEnv); err != nil {
		return err
	}
	c.OpenedAt = now
	c.EndsAt = now + c.ICODuration
	return nil
}

// CloseCrowdfund ends the sale once the ICO duration has passed since opening.
func (c *Crowdfund) CloseCrowdfund(env *chain.Env) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	tok, callEnv, err := c.token(env)
	if err != nil {
		return err
	}
	if tok.Phase != Open {
		return fmt.Errorf("%w: crowdfund is %s", ErrInvalidState, tok.Phase)
	}
	if env.Now().Unix() < c.OpenedAt+c.ICODuration {
		return fmt.Errorf("%w: crowdfund can close at %s", ErrTooEarly,
			time.Unix(c.OpenedAt+c.ICODuration, 0).UTC().Format(time.RFC3339))
	}
	return tok.FinalizeCrowdfund(callEnv)
}

// WhitelistAccounts allows accounts to buy during the early birds round.
func (c *Crowdfund) WhitelistAccounts(env *chain.Env, accounts []common.Address) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	for _, a := range accounts {
		if err := nonZero(a, "account"); err != nil {
			return err
		}
	}
	for _, a := range accounts {
		c.Whitelist[a] = true
	}
	return nil
}

// ChangeWalletAddress sets the account receiving sale proceeds.
func (c *Crowdfund) ChangeWalletAddress(env *chain.Env, wallet common.Address) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	if err := nonZero(wallet, "wallet"); err != nil {
		return err
	}
	c.Wallet = wallet
	return nil
}

// SetICOPeriod sets the earliest time the crowdfund can be opened.
func (c *Crowdfund) SetICOPeriod(env *chain.Env, startsAt *big.Int) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	tok, err := tokenAt(env, c.Token)
	if err != nil {
		return err
	}
	if tok.Phase != NotStarted {
		return fmt.Errorf("%w: crowdfund is %s", ErrInvalidState, tok.Phase)
	}
	if !startsAt.IsInt64() || startsAt.Sign() < 0 {
		return fmt.Errorf("%w: start time %s", ErrInvalidArgument, startsAt)
	}
	c.StartsAt = startsAt.Int64()
	c.EndsAt = c.StartsAt + c.ICODuration
	return nil
}

// Rate returns the RED per ETH price in phase p.
func (c *Crowdfund) Rate(p Phase) *big.Int {
	if p == EarlyBirds {
		return new(big.Int).Set(c.EarlyBirdsRate)
	}
	return new(big.Int).Set(c.OpenRate)
}

// Buy sells tokens for the ether attached to the call.
func (c *Crowdfund) Buy(env *chain.Env) error {
	tok, callEnv, err := c.token(env)
	if err != nil {
		return err
	}
	if !tok.Phase.Selling() {
		return fmt.Errorf("%w: crowdfund is %s", ErrPhaseClosed, tok.Phase)
	}
	if tok.Phase == EarlyBirds && !c.Whitelist[env.Sender] {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, env.Sender.Hex())
	}
	if env.Value.Sign() <= 0 {
		return fmt.Errorf("%w: no ether sent", ErrInvalidArgument)
	}

	tokens := new(big.Int).Mul(env.Value, c.Rate(tok.Phase))
	buyer := env.Sender
	if err := tok.TransferFromCrowdfund(callEnv, buyer, tokens); err != nil {
		return err
	}
	if err := env.SendEther(c.Wallet, env.Value); err != nil {
		return err
	}
	return env.Emit(crowdfundABI.Events["Purchase"], buyer, new(big.Int).Set(env.Value), tokens)
}

// Receive implements chain.Receiver: plain ether transfers buy tokens.
func (c *Crowdfund) Receive(env *chain.Env) error {
	return c.Buy(env)
}
