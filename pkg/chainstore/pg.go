package chainstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// defaultListLimit caps ListTransactions when no limit is given.
const defaultListLimit = 100

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the chain journal
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) SaveDeployment(ctx context.Context, d *Deployment) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	dao := toDeploymentDao(d)

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(dao).Exec(ctx); err != nil {
			return fmt.Errorf("failed to save deployment: %w", err)
		}
		if len(dao.Artifacts) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&dao.Artifacts).Exec(ctx); err != nil {
			return fmt.Errorf("failed to save artifacts: %w", err)
		}
		return nil
	})
}

func (s *pgStore) GetDeployment(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	dao := new(DeploymentDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Artifacts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("a.name ASC")
		}).
		Where("d.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	}
	return toDeployment(dao), nil
}

func (s *pgStore) LatestDeployment(ctx context.Context, chainID uint64) (*Deployment, error) {
	dao := new(DeploymentDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Artifacts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("a.name ASC")
		}).
		Where("d.chain_id = ?", int64(chainID)).
		Order("d.created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("failed to get latest deployment: %w", err)
	}
	return toDeployment(dao), nil
}

// SaveTransaction upserts by hash. A transaction re-mined after a revert
// replaces the earlier record.
func (s *pgStore) SaveTransaction(ctx context.Context, tx *TxRecord) error {
	dao := toTransactionDao(tx)
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (tx_hash) DO UPDATE").
		Set("block_number = EXCLUDED.block_number").
		Set("block_hash = EXCLUDED.block_hash").
		Set("gas_used = EXCLUDED.gas_used").
		Set("status = EXCLUDED.status").
		Set("error_message = EXCLUDED.error_message").
		Set("log_count = EXCLUDED.log_count").
		Set("contract_address = EXCLUDED.contract_address").
		Set("mined_at = EXCLUDED.mined_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (s *pgStore) ListTransactions(ctx context.Context, opts ...QueryOption) ([]*TxRecord, error) {
	options := &QueryOptions{Limit: defaultListLimit}
	for _, opt := range opts {
		opt(options)
	}

	var daos []TransactionDao
	query := s.db.NewSelect().Model(&daos)

	if options.Address != nil {
		addr := options.Address.Hex()
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("t.from_address = ?", addr).
				WhereOr("t.to_address = ?", addr).
				WhereOr("t.contract_address = ?", addr)
		})
	}
	if options.Status != nil {
		query = query.Where("t.status = ?", int16(*options.Status))
	}
	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}

	if err := query.Order("t.block_number ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	out := make([]*TxRecord, len(daos))
	for i := range daos {
		out[i] = toTxRecord(&daos[i])
	}
	return out, nil
}
