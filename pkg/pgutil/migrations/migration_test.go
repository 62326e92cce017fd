package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/pgutil"
)

type ledgerDao struct {
	bun.BaseModel `bun:"table:ledger_entries"`
	ID            int64  `bun:",pk,autoincrement"`
	Holder        string `bun:",notnull,type:varchar(42)"`
	Amount        string `bun:",type:numeric(78,0)"`
}

func TestConnectDB_InvalidHost(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "invalid-host-that-does-not-exist",
		Port:     5432,
		User:     "test",
		Password: "test",
		Database: "test",
		SSLMode:  "disable",
	}

	db, err := pgutil.ConnectDB(context.Background(), cfg)
	if err == nil {
		_ = db.Close()
		t.Error("ConnectDB() should fail with invalid host")
	}
}

func TestModelIndexName(t *testing.T) {
	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector()), pgdialect.New())
	defer db.Close()

	_, err := ModelIndexName(db, nil, "holder")
	if err == nil {
		t.Fatal("expected error for nil model")
	}

	name, err := ModelIndexName(db, &ledgerDao{}, "holder")
	if err != nil {
		t.Fatalf("ModelIndexName() failed: %v", err)
	}
	if name != "idx_ledger_entries_holder" {
		t.Errorf("ModelIndexName() = %q", name)
	}
}

func TestSchemaHelpers(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := CreateSchema(ctx, db, &ledgerDao{}); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "ledger_entries")

	// idempotent
	if err := CreateSchema(ctx, db, &ledgerDao{}); err != nil {
		t.Fatalf("CreateSchema() second call failed: %v", err)
	}

	if err := CreateModelIndexes(ctx, db, &ledgerDao{}, "holder"); err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_ledger_entries_holder")

	if err := DropModelIndexes(ctx, db, &ledgerDao{}, "holder"); err != nil {
		t.Fatalf("DropModelIndexes() failed: %v", err)
	}
	if err := DropTables(ctx, db, &ledgerDao{}); err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "ledger_entries")
}

func TestRun(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	logger := zap.NewNop()

	ms := migrate.NewMigrations()
	ms.Add(migrate.Migration{
		Name: "20180108000000",
		Up: func(ctx context.Context, db *bun.DB) error {
			return CreateSchema(ctx, db, &ledgerDao{})
		},
		Down: func(ctx context.Context, db *bun.DB) error {
			return DropTables(ctx, db, &ledgerDao{})
		},
	})
	migrator := migrate.NewMigrator(db, ms)

	for _, cmd := range []string{"init", "up", "status"} {
		if err := Run(ctx, migrator, logger, cmd); err != nil {
			t.Fatalf("Run(%s) failed: %v", cmd, err)
		}
	}
	pgutil.AssertTableExists(t, db, "ledger_entries")

	if err := Run(ctx, migrator, logger, "down"); err != nil {
		t.Fatalf("Run(down) failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "ledger_entries")

	if err := Run(ctx, migrator, logger, "sideways"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
