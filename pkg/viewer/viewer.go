// Package viewer reads the deployed RED contracts over JSON-RPC using the
// persisted artifacts, without any access to the chain process.
package viewer

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

// Client talks to REDToken and REDCrowdfund through an RPC endpoint.
type Client struct {
	client    *ethclient.Client
	logger    *zap.Logger
	token     *bind.BoundContract
	crowdfund *bind.BoundContract

	TokenAddress     common.Address
	CrowdfundAddress common.Address
}

// Dial connects to rpcURL and binds the contracts described by the
// artifacts under artifacts.
func Dial(ctx context.Context, rpcURL string, artifacts artifact.Reader, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	c, err := NewClient(ctx, client, artifacts, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// NewClient binds the contracts over an existing connection.
func NewClient(ctx context.Context, client *ethclient.Client, artifacts artifact.Reader, logger *zap.Logger) (*Client, error) {
	bindOne := func(name string) (*bind.BoundContract, common.Address, error) {
		d, err := artifacts.Load(ctx, name)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("load %s artifact: %w", name, err)
		}
		parsed, err := d.ABI()
		if err != nil {
			return nil, common.Address{}, err
		}
		return bind.NewBoundContract(d.Address, parsed, client, client, client), d.Address, nil
	}

	token, tokenAddr, err := bindOne(crowdfund.TokenName)
	if err != nil {
		return nil, err
	}
	fund, fundAddr, err := bindOne(crowdfund.CrowdfundName)
	if err != nil {
		return nil, err
	}

	logger.Debug("Contracts bound",
		zap.String("token", tokenAddr.Hex()),
		zap.String("crowdfund", fundAddr.Hex()))

	return &Client{
		client:           client,
		logger:           logger,
		token:            token,
		crowdfund:        fund,
		TokenAddress:     tokenAddr,
		CrowdfundAddress: fundAddr,
	}, nil
}

// Close closes the RPC connection.
func (c *Client) Close() {
	c.client.Close()
}

// Overview is what the viewer prints about the crowdfund.
type Overview struct {
	Symbol               string
	Name                 string
	Phase                crowdfund.Phase
	Wallet               common.Address
	IsOpen               bool
	IsEarlyBirdsStage    bool
	IsPreSaleStage       bool
	TotalSupply          *big.Int
	AngelAmountRemaining *big.Int
	StartsAt             time.Time
	EndsAt               time.Time
}

// Holding is the RED position of one account.
type Holding struct {
	Address common.Address
	Balance *big.Int
	Locked  *big.Int
	Ether   *big.Int
}

func call[T any](ctx context.Context, bc *bind.BoundContract, method string, args ...any) (T, error) {
	var zero T
	var out []any
	if err := bc.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("%s: expected 1 result, got %d", method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

// Overview reads the token and crowdfund state.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var (
		o   Overview
		err error
	)
	if o.Symbol, err = call[string](ctx, c.token, "symbol"); err != nil {
		return nil, err
	}
	if o.Name, err = call[string](ctx, c.token, "name"); err != nil {
		return nil, err
	}
	phase, err := call[uint8](ctx, c.token, "phase")
	if err != nil {
		return nil, err
	}
	o.Phase = crowdfund.Phase(phase)
	if o.TotalSupply, err = call[*big.Int](ctx, c.token, "totalSupply"); err != nil {
		return nil, err
	}
	if o.AngelAmountRemaining, err = call[*big.Int](ctx, c.token, "angelAmountRemaining"); err != nil {
		return nil, err
	}
	if o.Wallet, err = call[common.Address](ctx, c.crowdfund, "wallet"); err != nil {
		return nil, err
	}
	if o.IsOpen, err = call[bool](ctx, c.crowdfund, "isOpen"); err != nil {
		return nil, err
	}
	if o.IsEarlyBirdsStage, err = call[bool](ctx, c.crowdfund, "isEarlyBirdsStage"); err != nil {
		return nil, err
	}
	if o.IsPreSaleStage, err = call[bool](ctx, c.crowdfund, "isPreSaleStage"); err != nil {
		return nil, err
	}
	startsAt, err := call[*big.Int](ctx, c.crowdfund, "startsAt")
	if err != nil {
		return nil, err
	}
	endsAt, err := call[*big.Int](ctx, c.crowdfund, "endsAt")
	if err != nil {
		return nil, err
	}
	o.StartsAt = time.Unix(startsAt.Int64(), 0).UTC()
	o.EndsAt = time.Unix(endsAt.Int64(), 0).UTC()
	return &o, nil
}

// Holding reads the RED and ether balance of addr.
func (c *Client) Holding(ctx context.Context, addr common.Address) (*Holding, error) {
	balance, err := call[*big.Int](ctx, c.token, "balanceOf", addr)
	if err != nil {
		return nil, err
	}
	locked, err := call[*big.Int](ctx, c.token, "lockedBalanceOf", addr)
	if err != nil {
		return nil, err
	}
	eth, err := c.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", addr.Hex(), err)
	}
	return &Holding{Address: addr, Balance: balance, Locked: locked, Ether: eth}, nil
}

// Print writes o in the viewer's plain text layout.
func (o *Overview) Print(w io.Writer) {
	fmt.Fprintf(w, "Token:                  %s (%s)\n", o.Name, o.Symbol)
	fmt.Fprintf(w, "Phase:                  %s\n", o.Phase)
	fmt.Fprintf(w, "Total supply:           %s %s\n", units.FromWei(o.TotalSupply), o.Symbol)
	fmt.Fprintf(w, "Angel amount remaining: %s %s\n", units.FromWei(o.AngelAmountRemaining), o.Symbol)
	fmt.Fprintf(w, "Wallet:                 %s\n", o.Wallet.Hex())
	fmt.Fprintf(w, "Open:                   %t\n", o.IsOpen)
	fmt.Fprintf(w, "Early birds stage:      %t\n", o.IsEarlyBirdsStage)
	fmt.Fprintf(w, "Pre-sale stage:         %t\n", o.IsPreSaleStage)
	if o.StartsAt.Unix() > 0 {
		fmt.Fprintf(w, "Starts at:              %s\n", o.StartsAt.Format(time.RFC3339))
	}
	if o.EndsAt.Unix() > 0 {
		fmt.Fprintf(w, "Ends at:                %s\n", o.EndsAt.Format(time.RFC3339))
	}
}

// Print writes h as one line.
func (h *Holding) Print(w io.Writer, symbol string) {
	fmt.Fprintf(w, "%s  %s %s (locked %s)  %s ETH\n",
		h.Address.Hex(), units.FromWei(h.Balance), symbol, units.FromWei(h.Locked), units.FromWei(h.Ether))
}
