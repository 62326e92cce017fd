// Package ethrpc serves the development chain over Ethereum JSON-RPC, with the
// eth, net and web3 namespaces wallets and web3 libraries expect plus the evm
// namespace test harnesses use for snapshots and time travel.
package ethrpc

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/keys"
)

// ClientVersion is reported by web3_clientVersion.
const ClientVersion = "redchain/v1.0.0"

// Server handles Ethereum JSON-RPC requests against a chain.
type Server struct {
	chain   *chain.Chain
	keyring *keys.Keyring
	logger  *zap.Logger

	// sendMu orders nonce assignment for eth_sendTransaction.
	sendMu    sync.Mutex
	rpcServer *rpc.Server
}

// NewServer creates a JSON-RPC server. Transactions sent with
// eth_sendTransaction are signed with the keyring's accounts.
func NewServer(c *chain.Chain, kr *keys.Keyring, logger *zap.Logger) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("nil chain")
	}
	if kr == nil {
		return nil, fmt.Errorf("nil keyring")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		chain:     c,
		keyring:   kr,
		logger:    logger,
		rpcServer: rpc.NewServer(),
	}

	apis := map[string]any{
		"eth":  NewEthAPI(s),
		"net":  NewNetAPI(s),
		"web3": NewWeb3API(),
		"evm":  NewEvmAPI(s),
	}
	for namespace, api := range apis {
		if err := s.rpcServer.RegisterName(namespace, api); err != nil {
			return nil, fmt.Errorf("failed to register %s API: %w", namespace, err)
		}
	}

	logger.Info("Ethereum JSON-RPC server initialized",
		zap.String("chain_id", c.ChainID().String()),
		zap.Int("accounts", len(kr.Addresses())))

	return s, nil
}

// ServeHTTP handles HTTP requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.rpcServer.ServeHTTP(w, r)
}

// Stop closes the underlying RPC server.
func (s *Server) Stop() {
	s.rpcServer.Stop()
}

// track records the outcome of a JSON-RPC method. It is deferred with a
// pointer to the method's named error result.
func (s *Server) track(method string, err *error) {
	status := "success"
	if *err != nil {
		status = "error"
		s.logger.Debug("JSON-RPC method failed", zap.String("method", method), zap.Error(*err))
	}
	metrics.RequestsTotal.WithLabelValues("jsonrpc", method, status).Inc()
}
