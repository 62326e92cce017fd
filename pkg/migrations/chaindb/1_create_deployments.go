package chaindb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/red-crowdfund/pkg/chainstore"
	mghelper "github.com/chainsafe/red-crowdfund/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating deployments table...")
		if err := mghelper.CreateSchema(ctx, db, &chainstore.DeploymentDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &chainstore.DeploymentDao{}, "chain_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping deployments table...")
		return mghelper.DropTables(ctx, db, &chainstore.DeploymentDao{})
	})
}
