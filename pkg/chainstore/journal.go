package chainstore

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/deploy"
)

const (
	// DefaultQueueSize is how many mined transactions may wait for the database.
	DefaultQueueSize = 1024
	saveTimeout      = 5 * time.Second
)

// ChainReader is the part of the chain the journal reads from.
type ChainReader interface {
	ArtifactAt(addr common.Address) (*chain.Artifact, bool)
	BlockByNumber(number uint64) (*chain.Block, bool)
}

// Journal records mined transactions in a TransactionStore. It implements
// chain.Observer; records are queued and written by Run so mining never waits
// for the database. When the queue is full records are dropped.
type Journal struct {
	store  TransactionStore
	chain  ChainReader
	queue  chan *TxRecord
	logger *zap.Logger
}

// NewJournal creates a journal writing to store.
func NewJournal(store TransactionStore, c ChainReader, queueSize int, logger *zap.Logger) *Journal {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Journal{
		store:  store,
		chain:  c,
		queue:  make(chan *TxRecord, queueSize),
		logger: logger,
	}
}

// TransactionMined implements chain.Observer.
func (j *Journal) TransactionMined(_ context.Context, tx *chain.Transaction, receipt *chain.Receipt) {
	rec := j.record(tx, receipt)
	select {
	case j.queue <- rec:
	default:
		metrics.ErrorsTotal.WithLabelValues("journal", "queue_full").Inc()
		j.logger.Warn("journal queue full, dropping transaction", zap.String("tx_hash", rec.Hash.Hex()))
	}
}

// Run writes queued records until ctx is canceled, then flushes what is left.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-j.queue:
			j.save(rec)
		case <-ctx.Done():
			j.flush()
			return nil
		}
	}
}

func (j *Journal) flush() {
	for {
		select {
		case rec := <-j.queue:
			j.save(rec)
		default:
			return
		}
	}
}

// save uses its own deadline so records queued before shutdown still land.
func (j *Journal) save(rec *TxRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := j.store.SaveTransaction(ctx, rec); err != nil {
		metrics.ErrorsTotal.WithLabelValues("journal", "save").Inc()
		j.logger.Error("failed to journal transaction", zap.String("tx_hash", rec.Hash.Hex()), zap.Error(err))
	}
}

func (j *Journal) record(tx *chain.Transaction, receipt *chain.Receipt) *TxRecord {
	rec := &TxRecord{
		Hash:            tx.Hash,
		BlockNumber:     receipt.BlockNumber,
		BlockHash:       receipt.BlockHash,
		From:            tx.From,
		To:              tx.To,
		ContractAddress: receipt.ContractAddress,
		Nonce:           tx.Nonce,
		ValueWei:        "0",
		Method:          j.method(tx),
		GasUsed:         receipt.GasUsed,
		Status:          receipt.Status,
		LogCount:        len(receipt.Logs),
	}
	if tx.Value != nil {
		rec.ValueWei = tx.Value.String()
	}
	if receipt.Err != nil {
		rec.Error = receipt.Err.Error()
	}
	if b, ok := j.chain.BlockByNumber(receipt.BlockNumber); ok {
		rec.MinedAt = b.Time
	}
	return rec
}

// method names the call a transaction made.
func (j *Journal) method(tx *chain.Transaction) string {
	if tx.To == nil {
		return "deploy"
	}
	art, ok := j.chain.ArtifactAt(*tx.To)
	if !ok {
		return "transfer"
	}
	if len(tx.Data) < 4 {
		return "receive"
	}
	m, err := art.ABI.MethodById(tx.Data[:4])
	if err != nil {
		return "unknown"
	}
	return m.Name
}

// NewDeployment describes a finished deployment for SaveDeployment.
func NewDeployment(chainID uint64, deployer common.Address, res *deploy.Result) *Deployment {
	return &Deployment{
		ID:        uuid.New(),
		ChainID:   chainID,
		Deployer:  deployer,
		Token:     res.Token.Address,
		Crowdfund: res.Crowdfund.Address,
		ICOStart:  res.ICOStart,
		GasUsed:   res.GasUsed(),
		CostWei:   res.Cost().String(),
		Artifacts: res.Descriptors(deployer),
	}
}
