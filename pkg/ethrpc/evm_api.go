package ethrpc

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

// EvmAPI implements the evm_* namespace of ganache: snapshots, time travel
// and manual mining.
type EvmAPI struct {
	server *Server
}

// NewEvmAPI creates a new EvmAPI instance
func NewEvmAPI(server *Server) *EvmAPI {
	return &EvmAPI{server: server}
}

// Snapshot records the chain state and returns the snapshot id
func (api *EvmAPI) Snapshot() hexutil.Uint64 {
	id := api.server.chain.Snapshot()
	api.server.logger.Debug("Snapshot taken", zap.Uint64("id", id))
	return hexutil.Uint64(id)
}

// Revert restores the state recorded by a snapshot. The snapshot and any
// taken after it can no longer be used.
func (api *EvmAPI) Revert(id hexutil.Uint64) bool {
	ok := api.server.chain.Revert(uint64(id))
	if !ok {
		api.server.logger.Warn("Unknown snapshot", zap.Uint64("id", uint64(id)))
	}
	return ok
}

// IncreaseTime moves the chain clock forward and returns the total
// adjustment in seconds
func (api *EvmAPI) IncreaseTime(seconds Seconds) (uint64, error) {
	d, err := chain.SecondsToDuration(uint64(seconds))
	if err != nil {
		return 0, err
	}
	total := api.server.chain.IncreaseTime(d)
	api.server.logger.Debug("Chain time increased",
		zap.Uint64("seconds", uint64(seconds)),
		zap.Duration("total", total))
	return uint64(total / time.Second), nil
}

// Mine mines an empty block
func (api *EvmAPI) Mine() string {
	api.server.chain.Mine()
	return "0x0"
}
