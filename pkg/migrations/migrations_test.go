package migrations

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/red-crowdfund/pkg/chainstore"
	"github.com/chainsafe/red-crowdfund/pkg/migrations/chaindb"
	"github.com/chainsafe/red-crowdfund/pkg/pgutil"
)

func TestChainDBMigrations_Apply(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, chaindb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Fatal("expected migrations to run, but none were applied")
	}

	for _, table := range []string{"deployments", "artifacts", "transactions", "bun_migrations"} {
		pgutil.AssertTableExists(t, db, table)
	}
	for _, idx := range []string{
		"idx_deployments_chain_id",
		"idx_artifacts_address",
		"idx_transactions_from_address",
		"idx_transactions_to_address",
		"idx_transactions_block_number",
	} {
		pgutil.AssertIndexExists(t, db, idx)
	}
}

func TestChainDBMigrations_Idempotency(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, chaindb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Errorf("second Migrate() applied %s, want nothing", group)
	}
}

func TestChainDBMigrations_Rollback(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, chaindb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Fatal("expected a group to roll back")
	}

	for _, table := range []string{"deployments", "artifacts", "transactions"} {
		pgutil.AssertTableNotExists(t, db, table)
	}
}

func TestChainDBMigrations_ArtifactsCascade(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, chaindb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	id := uuid.New()
	dep := &chainstore.DeploymentDao{
		ID:               id,
		ChainID:          1337,
		Deployer:         "0x627306090abaB3A6e1400e9345bC60c78a8BEf57",
		TokenAddress:     "0x345cA3e014Aaf5dcA488057592ee47305D9B3e10",
		CrowdfundAddress: "0xf25186B5081Ff5cE73482AD761DB0eB0d25abfBF",
		ICOStart:         time.Unix(1515405600, 0).UTC(),
		GasUsed:          5_000_000,
		CostWei:          "100000000000000000",
	}
	if _, err := db.NewInsert().Model(dep).Exec(ctx); err != nil {
		t.Fatalf("insert deployment: %v", err)
	}
	art := &chainstore.ArtifactDao{
		DeploymentID:  id,
		Name:          "RED",
		Address:       dep.TokenAddress,
		JSONInterface: json.RawMessage(`[]`),
		FromAddress:   dep.Deployer,
		Gas:           3_000_000,
	}
	if _, err := db.NewInsert().Model(art).Exec(ctx); err != nil {
		t.Fatalf("insert artifact: %v", err)
	}
	pgutil.AssertRowCount(t, db, "artifacts", 1)

	if _, err := db.NewDelete().Model((*chainstore.DeploymentDao)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		t.Fatalf("delete deployment: %v", err)
	}
	pgutil.AssertRowCount(t, db, "artifacts", 0)
}
