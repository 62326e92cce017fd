// Package chainstore journals deployments and mined transactions of the
// development chain to postgres.
package chainstore

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
)

// ErrDeploymentNotFound is returned when a deployment lookup finds no record.
var ErrDeploymentNotFound = errors.New("deployment not found")

// Deployment is one run of the deployment script.
type Deployment struct {
	ID        uuid.UUID
	ChainID   uint64
	Deployer  common.Address
	Token     common.Address
	Crowdfund common.Address
	ICOStart  time.Time
	GasUsed   uint64
	// CostWei is the fee paid by the deployer, as a decimal string.
	CostWei   string
	Artifacts []*artifact.Descriptor
	CreatedAt time.Time
}

// TxRecord is a mined transaction with its outcome.
type TxRecord struct {
	Hash            common.Hash
	BlockNumber     uint64
	BlockHash       common.Hash
	From            common.Address
	To              *common.Address
	ContractAddress *common.Address
	Nonce           uint64
	ValueWei        string
	Method          string
	GasUsed         uint64
	Status          uint64
	Error           string
	LogCount        int
	MinedAt         time.Time
}

// DeploymentStore persists deployments and their artifacts.
type DeploymentStore interface {
	SaveDeployment(ctx context.Context, d *Deployment) error
	GetDeployment(ctx context.Context, id uuid.UUID) (*Deployment, error)
	LatestDeployment(ctx context.Context, chainID uint64) (*Deployment, error)
}

// TransactionStore persists mined transactions.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *TxRecord) error
	ListTransactions(ctx context.Context, opts ...QueryOption) ([]*TxRecord, error)
}

// Store defines the interface for the chain journal
type Store interface {
	DeploymentStore
	TransactionStore
}

// QueryOptions defines options for querying transactions
type QueryOptions struct {
	Address *common.Address
	Status  *uint64
	Limit   int
}

// QueryOption is a functional option for querying transactions
type QueryOption func(*QueryOptions)

// WithAddress matches transactions sent from or to addr
func WithAddress(addr common.Address) QueryOption {
	return func(opts *QueryOptions) {
		opts.Address = &addr
	}
}

// WithStatus matches transactions with the given receipt status
func WithStatus(status uint64) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithLimit caps the number of returned transactions
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}
