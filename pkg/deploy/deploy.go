// Package deploy deploys the RED token and crowdfund onto a chain, configures
// them with the deployment cast, and publishes their artifacts.
package deploy

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

// DeployGasLimit is the gas limit sent with each contract creation.
const DeployGasLimit = 3_000_000

// Result holds the deployed contracts and what deploying them cost.
type Result struct {
	Token     *chain.BoundContract
	Crowdfund *chain.BoundContract
	// ICOStart is the start time handed to setICOPeriod.
	ICOStart time.Time
	Receipts []*chain.Receipt
}

// GasUsed is the total gas of every deployment transaction.
func (r *Result) GasUsed() uint64 {
	var total uint64
	for _, rc := range r.Receipts {
		total += rc.GasUsed
	}
	return total
}

// Cost is the total fee paid by the deployer, in wei.
func (r *Result) Cost() *big.Int {
	total := new(big.Int)
	for _, rc := range r.Receipts {
		total.Add(total, new(big.Int).Mul(new(big.Int).SetUint64(rc.GasUsed), rc.GasPrice))
	}
	return total
}

// CostUSD prices the deployment at usdPerEth.
func (r *Result) CostUSD(usdPerEth decimal.Decimal) decimal.Decimal {
	eth := decimal.RequireFromString(units.FromWei(r.Cost()))
	return eth.Mul(usdPerEth)
}

// Descriptors describes the deployed contracts for persistence.
func (r *Result) Descriptors(from common.Address) []*artifact.Descriptor {
	return []*artifact.Descriptor{
		artifact.New(r.Token.Artifact(), r.Token.Address, from, DeployGasLimit),
		artifact.New(r.Crowdfund.Artifact(), r.Crowdfund.Address, from, DeployGasLimit),
	}
}

// Base deploys REDToken and REDCrowdfund from the deployer and wires them
// together: crowdfund, foundation, marketing and team addresses on the token,
// the proceeds wallet and the ICO start on the crowdfund. The ICO starts at the
// current chain time unless WithICOStart says otherwise.
//
// When an artifact store is configured both descriptors are saved to it.
func Base(ctx context.Context, c *chain.Chain, registry chain.Registry, accounts Accounts, opts ...Option) (*Result, error) {
	s := applyOptions(opts)

	tokenArt, err := registry.Lookup(crowdfund.TokenName)
	if err != nil {
		return nil, err
	}
	crowdfundArt, err := registry.Lookup(crowdfund.CrowdfundName)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	deployer := accounts.Deployer

	res.Token, err = s.deploy(ctx, c, res, tokenArt, deployer)
	if err != nil {
		return nil, err
	}
	res.Crowdfund, err = s.deploy(ctx, c, res, crowdfundArt, deployer, res.Token.Address)
	if err != nil {
		return nil, err
	}

	res.ICOStart = s.icoStart
	if res.ICOStart.IsZero() {
		res.ICOStart = c.Now()
	}

	steps := []struct {
		contract *chain.BoundContract
		method   string
		args     []any
	}{
		{res.Token, "setCrowdfundAddress", []any{res.Crowdfund.Address}},
		{res.Token, "setFoundationAddress", []any{accounts.Foundation}},
		{res.Token, "setMarketingAddress", []any{accounts.Biz}},
		{res.Token, "changeRedTeamAddress", []any{accounts.Team}},
		{res.Crowdfund, "changeWalletAddress", []any{accounts.Wallet}},
		{res.Crowdfund, "setICOPeriod", []any{big.NewInt(res.ICOStart.Unix())}},
	}
	for _, step := range steps {
		receipt, err := step.contract.Transact(ctx, deployer, step.method, step.args...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", step.contract.Artifact().Name, step.method, err)
		}
		res.Receipts = append(res.Receipts, receipt)
	}

	if s.store != nil {
		for _, d := range res.Descriptors(deployer) {
			if err := s.store.Save(ctx, d); err != nil {
				return nil, fmt.Errorf("save %s artifact: %w", d.Name, err)
			}
			s.logger.Info("Contract artifact saved",
				zap.String("name", d.Name),
				zap.String("address", d.Address.Hex()))
		}
	}

	s.logger.Info("Contracts deployed",
		zap.String("token", res.Token.Address.Hex()),
		zap.String("crowdfund", res.Crowdfund.Address.Hex()),
		zap.Time("ico_start", res.ICOStart),
		zap.Uint64("gas_used", res.GasUsed()),
		zap.String("cost_eth", units.FromWei(res.Cost())))
	return res, nil
}

func (s settings) deploy(ctx context.Context, c *chain.Chain, res *Result, art *chain.Artifact, from common.Address, args ...any) (*chain.BoundContract, error) {
	data, err := art.DeployData(args...)
	if err != nil {
		return nil, err
	}
	receipt, err := c.SendMessage(ctx, chain.Message{From: from, Data: data, Gas: DeployGasLimit})
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", art.Name, err)
	}
	res.Receipts = append(res.Receipts, receipt)
	s.logger.Debug("Contract created",
		zap.String("name", art.Name),
		zap.String("address", receipt.ContractAddress.Hex()),
		zap.Uint64("gas_used", receipt.GasUsed))
	return chain.Bind(c, art, *receipt.ContractAddress), nil
}
