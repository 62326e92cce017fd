package crowdfund

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

func result(v ...any) ([]any, error) { return v, nil }

func done(err error) ([]any, error) { return nil, err }

func success(err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	return []any{true}, nil
}

func unixBig(ts int64) *big.Int { return big.NewInt(ts) }

// Invoke implements chain.Contract.
func (t *Token) Invoke(env *chain.Env, method string, args []any) ([]any, error) {
	switch method {
	case "name":
		return result(t.Params.Name)
	case "symbol":
		return result(t.Params.Symbol)
	case "decimals":
		return result(t.Params.Decimals)
	case "totalSupply":
		return result(new(big.Int).Set(t.Supply))
	case "maxSupply":
		return result(t.Params.MaxSupply())
	case "owner":
		return result(t.Owner)
	case "balanceOf":
		return result(t.BalanceOf(args[0].(common.Address)))
	case "allowance":
		return result(t.Allowance(args[0].(common.Address), args[1].(common.Address)))
	case "lockedBalanceOf":
		return result(t.LockedBalanceOf(args[0].(common.Address)))
	case "angelAmountRemaining":
		return result(new(big.Int).Set(t.Pools.Angel.Remaining))
	case "angelAmountOf":
		return result(t.AngelAmountOf(args[0].(common.Address)))
	case "phase":
		return result(uint8(t.Phase))
	case "isEarlyBirdsStage":
		return result(t.Phase == EarlyBirds)
	case "isOpen":
		return result(t.Phase.Selling())
	case "isClosed":
		return result(t.Phase == Closed)
	case "crowdfundAddress":
		return result(t.Crowdfund)
	case "foundationAddress":
		return result(t.Foundation)
	case "marketingAddress":
		return result(t.Marketing)
	case "redTeamAddress":
		return result(t.Team)
	case "setCrowdfundAddress":
		return done(t.SetCrowdfundAddress(env, args[0].(common.Address)))
	case "setFoundationAddress":
		return done(t.SetFoundationAddress(env, args[0].(common.Address)))
	case "setMarketingAddress":
		return done(t.SetMarketingAddress(env, args[0].(common.Address)))
	case "changeRedTeamAddress":
		return done(t.ChangeRedTeamAddress(env, args[0].(common.Address)))
	case "deliverAngelsREDAccounts":
		return done(t.DeliverAngelsREDAccounts(env, args[0].([]common.Address), args[1].([]*big.Int)))
	case "finalizeEarlyBirds":
		return done(t.FinalizeEarlyBirds(env))
	case "releaseMarketingTokens":
		return done(t.ReleaseMarketingTokens(env))
	case "releaseRedTeamTokens":
		return done(t.ReleaseRedTeamTokens(env))
	case "partialUnlockAngelsAccounts":
		return done(t.PartialUnlockAngelsAccounts(env, args[0].([]common.Address)))
	case "fullUnlockAngelsAccounts":
		return done(t.FullUnlockAngelsAccounts(env, args[0].([]common.Address)))
	case "transfer":
		return success(t.Transfer(env, args[0].(common.Address), args[1].(*big.Int)))
	case "transferFrom":
		return success(t.TransferFrom(env, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)))
	case "approve":
		return success(t.Approve(env, args[0].(common.Address), args[1].(*big.Int)))
	case "startCrowdfund":
		return done(t.StartCrowdfund(env))
	case "transferFromCrowdfund":
		return success(t.TransferFromCrowdfund(env, args[0].(common.Address), args[1].(*big.Int)))
	case "finalizeCrowdfund":
		return done(t.FinalizeCrowdfund(env))
	default:
		return nil, fmt.Errorf("%s: unknown method %q", TokenName, method)
	}
}

// Invoke implements chain.Contract.
func (c *Crowdfund) Invoke(env *chain.Env, method string, args []any) ([]any, error) {
	switch method {
	case "RED":
		return result(c.Token)
	case "owner":
		return result(c.Owner)
	case "wallet":
		return result(c.Wallet)
	case "isOpen":
		p, err := c.Phase(env)
		if err != nil {
			return nil, err
		}
		return result(p.Selling())
	case "isEarlyBirdsStage", "isPreSaleStage":
		p, err := c.Phase(env)
		if err != nil {
			return nil, err
		}
		return result(p == EarlyBirds)
	case "whitelisted":
		return result(c.Whitelist[args[0].(common.Address)])
	case "startsAt":
		return result(unixBig(c.StartsAt))
	case "openedAt":
		return result(unixBig(c.OpenedAt))
	case "endsAt":
		return result(unixBig(c.EndsAt))
	case "icoDuration":
		return result(unixBig(c.ICODuration))
	case "earlyBirdsRate":
		return result(new(big.Int).Set(c.EarlyBirdsRate))
	case "openRate":
		return result(new(big.Int).Set(c.OpenRate))
	case "openCrowdfund":
		return done(c.OpenCrowdfund(env))
	case "closeCrowdfund":
		return done(c.CloseCrowdfund(env))
	case "whitelistAccounts":
		return done(c.WhitelistAccounts(env, args[0].([]common.Address)))
	case "changeWalletAddress":
		return done(c.ChangeWalletAddress(env, args[0].(common.Address)))
	case "setICOPeriod":
		return done(c.SetICOPeriod(env, args[0].(*big.Int)))
	case "buy":
		return done(c.Buy(env))
	default:
		return nil, fmt.Errorf("%s: unknown method %q", CrowdfundName, method)
	}
}
