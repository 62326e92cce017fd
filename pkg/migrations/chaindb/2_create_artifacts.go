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
		log.Println("creating artifacts table...")
		_, err := db.NewCreateTable().
			Model(&chainstore.ArtifactDao{}).
			IfNotExists().
			ForeignKey(`("deployment_id") REFERENCES "deployments" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &chainstore.ArtifactDao{}, "address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping artifacts table...")
		return mghelper.DropTables(ctx, db, &chainstore.ArtifactDao{})
	})
}
