// Command migrate manages the chain journal schema.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/migrations/chaindb"
	"github.com/chainsafe/red-crowdfund/pkg/pgutil"
	mghelper "github.com/chainsafe/red-crowdfund/pkg/pgutil/migrations"
)

func main() {
	app := &cli.App{
		Name:      "migrate",
		Usage:     "apply or roll back the chain journal migrations",
		ArgsUsage: "<" + strings.Join(mghelper.Commands, "|") + ">",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"REDCHAIN_CONFIG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.ShowAppHelp(cctx)
	}

	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := pgutil.ConnectDB(cctx.Context, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Running chain journal migrations", zap.String("database", cfg.Database.Database))
	return mghelper.Run(cctx.Context, migrate.NewMigrator(db, chaindb.Migrations), logger, cctx.Args().First())
}
