// Package devchain assembles the development chain, the RED contracts and
// every HTTP surface in front of them.
package devchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/auth"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/chainstore"
	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund/service"
	"github.com/chainsafe/red-crowdfund/pkg/deploy"
	"github.com/chainsafe/red-crowdfund/pkg/ethrpc"
	"github.com/chainsafe/red-crowdfund/pkg/keys"
	"github.com/chainsafe/red-crowdfund/pkg/pgutil"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

const (
	// StateFile is the chain dump written inside the data dir.
	StateFile = "chain.json"

	defaultRequestTimeout = 60 * time.Second
)

// Node is a running development chain with the RED contracts.
type Node struct {
	cfg    *config.DevChainConfig
	logger *zap.Logger

	Chain     *chain.Chain
	Keyring   *keys.Keyring
	Accounts  deploy.Accounts
	Artifacts *artifact.FileStore

	// Deployment is set when contracts were deployed by this node.
	Deployment *deploy.Result
	// Token and Crowdfund are nil when no contracts are known.
	Token     *chain.BoundContract
	Crowdfund *chain.BoundContract

	// Loaded reports that the chain was restored from the data dir.
	Loaded bool

	db      *bun.DB
	journal *chainstore.Journal
	rpc     *ethrpc.Server
}

// NodeOption configures NewNode.
type NodeOption func(*nodeSettings)

type nodeSettings struct {
	noDeploy bool
	clock    *chain.Clock
}

// WithoutDeploy starts the chain without deploying the contracts. Contracts
// named by the artifact dir are bound when present on chain.
func WithoutDeploy() NodeOption {
	return func(s *nodeSettings) { s.noDeploy = true }
}

// WithClock overrides the clock built from the chain config.
func WithClock(c *chain.Clock) NodeOption {
	return func(s *nodeSettings) { s.clock = c }
}

// NewNode builds the chain described by cfg, restoring it from the data dir
// when a dump exists, and deploys the contracts unless disabled.
func NewNode(ctx context.Context, cfg *config.DevChainConfig, logger *zap.Logger, opts ...NodeOption) (*Node, error) {
	var s nodeSettings
	for _, opt := range opts {
		opt(&s)
	}

	kr, err := keys.NewKeyring(cfg.Chain.Mnemonic, cfg.Chain.HDPath, cfg.Chain.Accounts)
	if err != nil {
		return nil, fmt.Errorf("derive accounts: %w", err)
	}
	accounts, err := deploy.AccountsFrom(kr.Addresses())
	if err != nil {
		return nil, err
	}

	params, err := crowdfundParams(&cfg.Crowdfund)
	if err != nil {
		return nil, err
	}
	registry, err := crowdfund.NewRegistry(params)
	if err != nil {
		return nil, fmt.Errorf("build contract registry: %w", err)
	}

	genesis, err := genesisFor(&cfg.Chain, kr.Addresses())
	if err != nil {
		return nil, err
	}
	gasPrice, ok := new(big.Int).SetString(cfg.Chain.GasPrice, 10)
	if !ok {
		return nil, fmt.Errorf("invalid gas price %q", cfg.Chain.GasPrice)
	}
	clock := s.clock
	if clock == nil {
		if cfg.Chain.Realtime {
			clock = chain.NewRealtimeClock(genesis.Time)
		} else {
			clock = chain.NewClock(genesis.Time)
		}
	}

	c := chain.New(new(big.Int).SetUint64(cfg.Chain.ChainID), registry, genesis,
		chain.WithLogger(logger.Named("chain")),
		chain.WithClock(clock),
		chain.WithGasPrice(gasPrice),
		chain.WithBlockGasLimit(cfg.Chain.BlockGasLimit),
	)

	n := &Node{
		cfg:       cfg,
		logger:    logger,
		Chain:     c,
		Keyring:   kr,
		Accounts:  accounts,
		Artifacts: artifact.NewFileStore(cfg.Artifacts.Dir),
	}

	if err := n.restore(); err != nil {
		return nil, err
	}
	if err := n.openJournal(ctx); err != nil {
		return nil, err
	}

	switch {
	case cfg.Crowdfund.Deploy && !s.noDeploy && !n.Loaded:
		if err := n.deploy(ctx); err != nil {
			n.Close()
			return nil, err
		}
	default:
		n.bindFromArtifacts(ctx)
	}

	n.observePhase(ctx)

	n.rpc, err = ethrpc.NewServer(c, kr, logger.Named("jsonrpc"))
	if err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func crowdfundParams(cfg *config.CrowdfundConfig) (crowdfund.Params, error) {
	p := crowdfund.DefaultParams()
	p.EarlyBirdsRate = new(big.Int).SetUint64(cfg.EarlyBirdsRate)
	p.OpenRate = new(big.Int).SetUint64(cfg.OpenRate)
	p.ICODuration = cfg.ICODuration
	p.AngelPartialUnlockPercent = cfg.AngelPartialUnlockPercent
	p.AngelFullUnlockDelay = cfg.AngelFullUnlockDelay
	p.TeamReleaseDelay = cfg.TeamReleaseDelay

	pools := []struct {
		name  string
		value string
		dst   **big.Int
	}{
		{"angel", cfg.Pools.Angel, &p.AngelPool},
		{"early_bird", cfg.Pools.EarlyBird, &p.EarlyBirdPool},
		{"public", cfg.Pools.Public, &p.PublicPool},
		{"marketing", cfg.Pools.Marketing, &p.MarketingPool},
		{"team", cfg.Pools.Team, &p.TeamPool},
		{"foundation", cfg.Pools.Foundation, &p.FoundationPool},
	}
	for _, pool := range pools {
		v, err := units.ToWei(pool.value)
		if err != nil {
			return crowdfund.Params{}, fmt.Errorf("invalid %s pool: %w", pool.name, err)
		}
		*pool.dst = v
	}
	if err := p.Validate(); err != nil {
		return crowdfund.Params{}, fmt.Errorf("invalid crowdfund config: %w", err)
	}
	return p, nil
}

func genesisFor(cfg *config.ChainConfig, addrs []common.Address) (chain.Genesis, error) {
	balance, err := units.ToWei(cfg.DefaultBalance)
	if err != nil {
		return chain.Genesis{}, fmt.Errorf("invalid default balance: %w", err)
	}
	alloc := make(map[common.Address]*big.Int, len(addrs))
	for _, a := range addrs {
		alloc[a] = new(big.Int).Set(balance)
	}
	t := time.Now()
	if cfg.GenesisTime != 0 {
		t = time.Unix(cfg.GenesisTime, 0)
	}
	return chain.Genesis{Time: t, Alloc: alloc}, nil
}

// StatePath is where the chain dump lives, or "" without a data dir.
func (n *Node) StatePath() string {
	if n.cfg.Chain.DataDir == "" {
		return ""
	}
	return filepath.Join(n.cfg.Chain.DataDir, StateFile)
}

func (n *Node) restore() error {
	path := n.StatePath()
	if path == "" {
		return nil
	}
	err := n.Chain.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		n.logger.Info("No saved chain state, starting from genesis", zap.String("path", path))
		return nil
	case err != nil:
		return fmt.Errorf("load chain state: %w", err)
	}
	n.Loaded = true
	n.logger.Info("Chain state restored",
		zap.String("path", path),
		zap.Uint64("block", n.Chain.BlockNumber()))
	return nil
}

func (n *Node) openJournal(ctx context.Context) error {
	if !n.cfg.Database.Enabled {
		return nil
	}
	db, err := pgutil.ConnectDB(ctx, &n.cfg.Database)
	if err != nil {
		return err
	}
	n.logger.Info("Connected to database",
		zap.String("host", n.cfg.Database.Host),
		zap.String("database", n.cfg.Database.Database))

	n.db = db
	n.journal = chainstore.NewJournal(chainstore.NewStore(db), n.Chain, chainstore.DefaultQueueSize, n.logger.Named("journal"))
	n.Chain.AddObserver(n.journal)
	return nil
}

func (n *Node) deploy(ctx context.Context) error {
	opts := []deploy.Option{
		deploy.WithLogger(n.logger.Named("deploy")),
		deploy.WithArtifactStore(n.Artifacts),
	}
	if n.cfg.Crowdfund.ICOStart != 0 {
		opts = append(opts, deploy.WithICOStart(time.Unix(n.cfg.Crowdfund.ICOStart, 0)))
	}
	res, err := deploy.Base(ctx, n.Chain, n.Chain.Registry(), n.Accounts, opts...)
	if err != nil {
		return fmt.Errorf("deploy contracts: %w", err)
	}
	n.Deployment = res
	n.Token, n.Crowdfund = res.Token, res.Crowdfund

	n.checkCost(res)

	if n.db != nil {
		d := chainstore.NewDeployment(n.cfg.Chain.ChainID, n.Accounts.Deployer, res)
		if err := chainstore.NewStore(n.db).SaveDeployment(ctx, d); err != nil {
			n.logger.Error("Failed to journal deployment", zap.Error(err))
		}
	}
	return nil
}

func (n *Node) checkCost(res *deploy.Result) {
	if n.cfg.Crowdfund.MaxDeployCostUSD == "" {
		return
	}
	rate, err := decimal.NewFromString(n.cfg.Crowdfund.USDPerEth)
	if err != nil {
		n.logger.Warn("Skipping deployment cost check: invalid usd_per_eth",
			zap.String("usd_per_eth", n.cfg.Crowdfund.USDPerEth), zap.Error(err))
		return
	}
	limit, err := decimal.NewFromString(n.cfg.Crowdfund.MaxDeployCostUSD)
	if err != nil {
		n.logger.Warn("Skipping deployment cost check: invalid max_deploy_cost_usd",
			zap.String("max_deploy_cost_usd", n.cfg.Crowdfund.MaxDeployCostUSD), zap.Error(err))
		return
	}
	cost := res.CostUSD(rate)
	fields := []zap.Field{
		zap.String("cost_usd", cost.StringFixed(2)),
		zap.String("limit_usd", limit.String()),
		zap.Uint64("gas_used", res.GasUsed()),
	}
	if cost.GreaterThan(limit) {
		n.logger.Warn("Deployment cost exceeds limit", fields...)
		return
	}
	n.logger.Info("Deployment cost", fields...)
}

// bindFromArtifacts binds the contracts named in the artifact dir when the
// chain has code at their addresses.
func (n *Node) bindFromArtifacts(ctx context.Context) {
	bind := func(name string) *chain.BoundContract {
		d, err := n.Artifacts.Load(ctx, name)
		if err != nil {
			n.logger.Info("Contract artifact unavailable", zap.String("name", name), zap.Error(err))
			return nil
		}
		art, ok := n.Chain.ArtifactAt(d.Address)
		if !ok || art.Name != name {
			n.logger.Warn("Artifact address holds no matching contract",
				zap.String("name", name), zap.String("address", d.Address.Hex()))
			return nil
		}
		return chain.Bind(n.Chain, art, d.Address)
	}
	token, fund := bind(crowdfund.TokenName), bind(crowdfund.CrowdfundName)
	if token == nil || fund == nil {
		return
	}
	n.Token, n.Crowdfund = token, fund
	n.logger.Info("Bound existing contracts",
		zap.String("token", token.Address.Hex()),
		zap.String("crowdfund", fund.Address.Hex()))
}

func (n *Node) observePhase(ctx context.Context) {
	phase := crowdfund.NotStarted
	var read crowdfund.PhaseReader
	if n.Token != nil {
		read = crowdfund.TokenPhase(n.Token)
		if p, err := read(ctx); err == nil {
			phase = p
		}
	}
	n.Chain.AddObserver(crowdfund.NewMetricsObserver(phase, read, n.logger.Named("metrics")))
}

// Service returns the query service, or nil when no contracts are bound.
func (n *Node) Service() service.Service {
	if n.Token == nil || n.Crowdfund == nil {
		return nil
	}
	return service.NewLog(service.NewService(n.Chain, n.Token, n.Crowdfund), n.logger.Named("service"))
}

// JWT returns the validator for admin tokens. It is unconfigured without a
// secret.
func (n *Node) JWT() *auth.JWTValidator {
	return auth.NewJWTValidator(n.cfg.Auth.JWTSecret, n.cfg.Auth.JWTIssuer)
}

// Handler routes JSON-RPC at /, the REST API under /api/v1, and the health,
// metrics and artifact endpoints.
func (n *Node) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if n.cfg.Monitoring.AccessLogEnabled {
		r.Use(middleware.Logger)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if n.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if n.cfg.Artifacts.Serve {
		r.Handle("/artifacts", http.RedirectHandler("/artifacts/", http.StatusMovedPermanently))
		r.Handle("/artifacts/*", artifact.NewHandler(n.Artifacts, n.logger.Named("artifacts")))
	}

	if svc := n.Service(); svc != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))
			service.RegisterRoutes(r, svc, n.adminAuth(), n.logger)
		})
	}

	r.Handle("/", n.rpc)
	return r
}

func (n *Node) adminAuth() func(http.Handler) http.Handler {
	validator := n.JWT()
	var admins []common.Address
	if n.cfg.Auth.AllowDeployer {
		admins = append(admins, n.Accounts.Deployer)
	}
	if !validator.IsConfigured() && len(admins) == 0 {
		return nil
	}
	return auth.NewAdmin(validator, admins, n.logger.Named("auth")).Middleware
}

// RunJournal writes journaled transactions until ctx is canceled. It returns
// at once when the journal is disabled.
func (n *Node) RunJournal(ctx context.Context) error {
	if n.journal == nil {
		return nil
	}
	return n.journal.Run(ctx)
}

// Close releases the RPC server and the database.
func (n *Node) Close() {
	if n.rpc != nil {
		n.rpc.Stop()
	}
	if n.db != nil {
		_ = n.db.Close()
	}
}
