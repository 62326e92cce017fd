package devchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/red-crowdfund/pkg/app"
	apphttp "github.com/chainsafe/red-crowdfund/pkg/app/http"
	"github.com/chainsafe/red-crowdfund/pkg/app/health"
	"github.com/chainsafe/red-crowdfund/pkg/autosave"
	"github.com/chainsafe/red-crowdfund/pkg/config"
)

// Server runs the development chain process.
type Server struct {
	cfg      *config.DevChainConfig
	noDeploy bool
	out      io.Writer
}

var _ app.Runner = (*Server)(nil)

// ServerOption configures a Server.
type ServerOption func(*Server)

// NoDeploy skips the contract deployment on start.
func NoDeploy(skip bool) ServerOption {
	return func(s *Server) { s.noDeploy = skip }
}

// WithOutput sets where the accounts banner is printed.
func WithOutput(w io.Writer) ServerOption {
	return func(s *Server) { s.out = w }
}

// NewServer initializes the dev chain runner.
func NewServer(cfg *config.DevChainConfig, opts ...ServerOption) *Server {
	s := &Server{cfg: cfg, out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the chain and blocks until SIGINT or SIGTERM.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("dev chain config is nil")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(s.cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return s.run(ctx, logger)
}

func (s *Server) run(ctx context.Context, logger *zap.Logger) error {
	cfg := s.cfg
	logger.Info("Starting dev chain",
		zap.Uint64("chain_id", cfg.Chain.ChainID),
		zap.String("address", cfg.Server.Address()))

	var opts []NodeOption
	if s.noDeploy {
		opts = append(opts, WithoutDeploy())
	}
	node, err := NewNode(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer node.Close()

	PrintAccounts(s.out, node.Keyring, node.Accounts.Roles(), cfg.Chain.DefaultBalance)
	if node.Deployment != nil {
		PrintDeployment(s.out, node.Deployment)
	}

	var saver *autosave.Saver
	if path := node.StatePath(); path != "" {
		saver = autosave.New(node.Chain, path, logger.Named("autosave"))
		if cfg.Chain.AutosaveInterval > 0 {
			saver.Start(cfg.Chain.AutosaveInterval)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return node.RunJournal(gctx) })

	if cfg.Monitoring.GRPCHealthPort > 0 {
		hs := health.NewServer(logger.Named("health"))
		hs.SetServing(true)
		g.Go(func() error { return hs.ListenAndServe(gctx, cfg.Server.Host, cfg.Monitoring.GRPCHealthPort) })
	}

	g.Go(func() error {
		return apphttp.ServeAndWait(gctx, node.Handler(), logger, &cfg.Server)
	})

	err = g.Wait()

	// Save after the HTTP server stopped accepting transactions.
	if saver != nil {
		saver.Stop()
	}
	return err
}
