package crowdfund

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

const (
	tokenDeployGas     = 1_600_000
	crowdfundDeployGas = 1_200_000
)

// NewRegistry returns the deployable RED artifacts. Tokens deployed from the
// registry use params.
func NewRegistry(params Params) (chain.Registry, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid token params: %w", err)
	}
	token, err := chain.NewArtifact(TokenName, TokenABI,
		func(env *chain.Env, _ []any) (chain.Contract, error) {
			return NewToken(env, params)
		},
		restoreToken)
	if err != nil {
		return nil, err
	}
	token.DeployGas = tokenDeployGas

	crowdfund, err := chain.NewArtifact(CrowdfundName, CrowdfundABI,
		func(env *chain.Env, args []any) (chain.Contract, error) {
			return NewCrowdfund(env, args[0].(common.Address))
		},
		restoreCrowdfund)
	if err != nil {
		return nil, err
	}
	crowdfund.DeployGas = crowdfundDeployGas

	return chain.NewRegistry(token, crowdfund), nil
}

func restoreToken(raw json.RawMessage) (chain.Contract, error) {
	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", TokenName, err)
	}
	if t.Supply == nil {
		t.Supply = new(big.Int)
	}
	if t.Balances == nil {
		t.Balances = make(map[common.Address]*big.Int)
	}
	if t.Allowances == nil {
		t.Allowances = make(map[common.Address]map[common.Address]*big.Int)
	}
	if t.Angels == nil {
		t.Angels = make(map[common.Address]*Angel)
	}
	if t.Pools.Angel == nil {
		t.Pools = newPools(t.Params)
	}
	return &t, nil
}

func restoreCrowdfund(raw json.RawMessage) (chain.Contract, error) {
	var c Crowdfund
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CrowdfundName, err)
	}
	if c.Whitelist == nil {
		c.Whitelist = make(map[common.Address]bool)
	}
	if c.EarlyBirdsRate == nil || c.OpenRate == nil {
		defaults := DefaultParams()
		c.EarlyBirdsRate, c.OpenRate = defaults.EarlyBirdsRate, defaults.OpenRate
	}
	return &c, nil
}
