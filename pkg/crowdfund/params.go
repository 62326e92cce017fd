package crowdfund

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainsafe/red-crowdfund/pkg/units"
)

const day = 24 * time.Hour

// Params are the token economics and schedule the contracts are deployed with.
// Pool sizes are in base units; rates are RED per ETH.
type Params struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`

	AngelPool      *big.Int `json:"angelPool"`
	EarlyBirdPool  *big.Int `json:"earlyBirdPool"`
	PublicPool     *big.Int `json:"publicPool"`
	MarketingPool  *big.Int `json:"marketingPool"`
	TeamPool       *big.Int `json:"teamPool"`
	FoundationPool *big.Int `json:"foundationPool"`

	EarlyBirdsRate *big.Int `json:"earlyBirdsRate"`
	OpenRate       *big.Int `json:"openRate"`

	ICODuration          time.Duration `json:"icoDuration"`
	AngelFullUnlockDelay time.Duration `json:"angelFullUnlockDelay"`
	TeamReleaseDelay     time.Duration `json:"teamReleaseDelay"`
	// AngelPartialUnlockPercent is the share of an angel allocation that
	// becomes transferable after a partial unlock.
	AngelPartialUnlockPercent uint64 `json:"angelPartialUnlockPercent"`
}

// DefaultParams returns the RED token economics.
func DefaultParams() Params {
	return Params{
		Name:                      "Red Community Token",
		Symbol:                    "RED",
		Decimals:                  units.Decimals,
		AngelPool:                 units.Ether(20_000_000),
		EarlyBirdPool:             units.Ether(48_000_000),
		PublicPool:                units.Ether(12_000_000),
		MarketingPool:             units.Ether(20_000_000),
		TeamPool:                  units.Ether(30_000_000),
		FoundationPool:            units.Ether(70_000_000),
		EarlyBirdsRate:            big.NewInt(2750),
		OpenRate:                  big.NewInt(2500),
		ICODuration:               4 * 7 * day,
		AngelFullUnlockDelay:      90 * day,
		TeamReleaseDelay:          275 * day,
		AngelPartialUnlockPercent: 20,
	}
}

// MaxSupply is the sum of every pool.
func (p Params) MaxSupply() *big.Int {
	total := new(big.Int)
	for _, v := range p.pools() {
		total.Add(total, v)
	}
	return total
}

func (p Params) pools() []*big.Int {
	return []*big.Int{p.AngelPool, p.EarlyBirdPool, p.PublicPool, p.MarketingPool, p.TeamPool, p.FoundationPool}
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	if p.Symbol == "" {
		return errors.New("symbol is required")
	}
	for _, v := range p.pools() {
		if v == nil || v.Sign() < 0 {
			return errors.New("pool sizes must be set and non-negative")
		}
	}
	if p.EarlyBirdsRate == nil || p.EarlyBirdsRate.Sign() <= 0 {
		return fmt.Errorf("early birds rate must be positive")
	}
	if p.OpenRate == nil || p.OpenRate.Sign() <= 0 {
		return fmt.Errorf("open rate must be positive")
	}
	if p.ICODuration <= 0 {
		return fmt.Errorf("ico duration must be positive")
	}
	if p.AngelPartialUnlockPercent > 100 {
		return fmt.Errorf("angel partial unlock percent %d exceeds 100", p.AngelPartialUnlockPercent)
	}
	return nil
}
