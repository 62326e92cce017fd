package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/app/devchain"
	"github.com/chainsafe/red-crowdfund/pkg/auth"
	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/deploy"
	"github.com/chainsafe/red-crowdfund/pkg/keys"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "start the chain and serve JSON-RPC and the REST API",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-deploy",
			Usage: "start without deploying the contracts",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "override server.port",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "override chain.data_dir",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cctx.IsSet("port") {
			cfg.Server.Port = cctx.Int("port")
		}
		if cctx.IsSet("data-dir") {
			cfg.Chain.DataDir = cctx.String("data-dir")
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		return devchain.NewServer(cfg, devchain.NoDeploy(cctx.Bool("no-deploy"))).Run()
	},
}

var accountsCmd = &cli.Command{
	Name:  "accounts",
	Usage: "print the funded accounts, their private keys and the mnemonic",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		kr, err := keys.NewKeyring(cfg.Chain.Mnemonic, cfg.Chain.HDPath, cfg.Chain.Accounts)
		if err != nil {
			return err
		}
		accounts, err := deploy.AccountsFrom(kr.Addresses())
		if err != nil {
			return err
		}
		devchain.PrintAccounts(cctx.App.Writer, kr, accounts.Roles(), cfg.Chain.DefaultBalance)
		return nil
	},
}

var deployCmd = &cli.Command{
	Name:  "deploy",
	Usage: "deploy the contracts on a fresh chain and write their artifacts",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "artifact directory; overrides artifacts.dir",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if out := cctx.String("out"); out != "" {
			cfg.Artifacts.Dir = out
		}
		// a throwaway chain: nothing is persisted besides the artifacts
		cfg.Chain.DataDir = ""
		cfg.Database.Enabled = false
		cfg.Crowdfund.Deploy = true

		logger, err := config.NewLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		node, err := devchain.NewNode(cctx.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer node.Close()

		devchain.PrintDeployment(cctx.App.Writer, node.Deployment)
		logger.Info("Artifacts written", zap.String("dir", node.Artifacts.Dir()))
		return nil
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "issue an admin JWT for the REST admin endpoints",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "subject",
			Value: "admin",
			Usage: "token subject",
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "token lifetime; defaults to auth.token_ttl",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		ttl := cfg.Auth.TokenTTL
		if cctx.IsSet("ttl") {
			ttl = cctx.Duration("ttl")
		}
		if ttl <= 0 {
			return fmt.Errorf("token ttl must be positive")
		}
		token, err := issueToken(cfg, cctx.String("subject"), ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, token)
		return nil
	},
}

func loadConfig(cctx *cli.Context) (*config.DevChainConfig, error) {
	cfg, err := config.Load(cctx.String(configFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func issueToken(cfg *config.DevChainConfig, subject string, ttl time.Duration) (string, error) {
	if cfg.Auth.JWTSecret == "" {
		return "", fmt.Errorf("auth.jwt_secret is not set (env %s)", config.EnvJWTSecret)
	}
	v := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	return v.IssueToken(subject, ttl)
}
