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
		log.Println("creating transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &chainstore.TransactionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &chainstore.TransactionDao{},
			"from_address", "to_address", "block_number")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping transactions table...")
		return mghelper.DropTables(ctx, db, &chainstore.TransactionDao{})
	})
}
