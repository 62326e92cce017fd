package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BoundContract is a deployed contract paired with its artifact, for sending
// ABI calls to it from unlocked accounts.
type BoundContract struct {
	Address  common.Address
	artifact *Artifact
	chain    *Chain
}

// Bind returns a handle to the contract at addr.
func Bind(c *Chain, art *Artifact, addr common.Address) *BoundContract {
	return &BoundContract{Address: addr, artifact: art, chain: c}
}

// Deploy deploys art from an unlocked account and binds the new contract.
func Deploy(ctx context.Context, c *Chain, art *Artifact, from common.Address, args ...any) (*BoundContract, *Receipt, error) {
	data, err := art.DeployData(args...)
	if err != nil {
		return nil, nil, err
	}
	receipt, err := c.SendMessage(ctx, Message{From: from, Data: data})
	if err != nil {
		return nil, receipt, fmt.Errorf("deploy %s: %w", art.Name, err)
	}
	return Bind(c, art, *receipt.ContractAddress), receipt, nil
}

// Artifact returns the artifact the contract was bound with.
func (b *BoundContract) Artifact() *Artifact {
	return b.artifact
}

// Transact sends a transaction calling method.
func (b *BoundContract) Transact(ctx context.Context, from common.Address, method string, args ...any) (*Receipt, error) {
	return b.TransactValue(ctx, from, nil, method, args...)
}

// TransactValue sends a transaction calling method with value wei attached.
func (b *BoundContract) TransactValue(ctx context.Context, from common.Address, value *big.Int, method string, args ...any) (*Receipt, error) {
	data, err := b.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", b.artifact.Name, method, err)
	}
	to := b.Address
	return b.chain.SendMessage(ctx, Message{From: from, To: &to, Value: value, Data: data})
}

// Call executes a read-only call to method and returns the decoded results.
func (b *BoundContract) Call(ctx context.Context, from common.Address, method string, args ...any) ([]any, error) {
	data, err := b.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", b.artifact.Name, method, err)
	}
	to := b.Address
	out, err := b.chain.Call(ctx, Message{From: from, To: &to, Data: data})
	if err != nil {
		return nil, err
	}
	return b.artifact.ABI.Unpack(method, out)
}
