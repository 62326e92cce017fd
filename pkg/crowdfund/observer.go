package crowdfund

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

// PhaseReader reads the current phase from the chain.
type PhaseReader func(ctx context.Context) (Phase, error)

// TokenPhase reads phase() from a bound REDToken.
func TokenPhase(token *chain.BoundContract) PhaseReader {
	return func(ctx context.Context) (Phase, error) {
		out, err := token.Call(ctx, common.Address{}, "phase")
		if err != nil {
			return NotStarted, err
		}
		if len(out) != 1 {
			return NotStarted, fmt.Errorf("phase() returned %d values", len(out))
		}
		p, ok := out[0].(uint8)
		if !ok {
			return NotStarted, fmt.Errorf("unexpected phase() result %T", out[0])
		}
		return Phase(p), nil
	}
}

// MetricsObserver turns PhaseChanged and Purchase events of mined
// transactions into crowdfund metrics. Purchases are attributed to the round
// that was active when they were mined.
type MetricsObserver struct {
	mu     sync.Mutex
	phase  Phase
	read   PhaseReader
	logger *zap.Logger
}

// NewMetricsObserver starts counting from phase. After a snapshot revert the
// phase is read again with read; a nil read keeps the last phase seen.
func NewMetricsObserver(phase Phase, read PhaseReader, logger *zap.Logger) *MetricsObserver {
	metrics.CrowdfundPhase.Set(float64(phase))
	return &MetricsObserver{phase: phase, read: read, logger: logger}
}

// Reverted implements chain.RevertObserver.
func (o *MetricsObserver) Reverted(ctx context.Context, id uint64) {
	if o.read == nil {
		return
	}
	p, err := o.read(ctx)
	if err != nil {
		o.logger.Warn("failed to read phase after revert", zap.Uint64("snapshot", id), zap.Error(err))
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = p
	metrics.CrowdfundPhase.Set(float64(p))
}

// Phase is the last phase seen.
func (o *MetricsObserver) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// TransactionMined implements chain.Observer.
func (o *MetricsObserver) TransactionMined(_ context.Context, _ *chain.Transaction, receipt *chain.Receipt) {
	if receipt.Status != chain.StatusSuccess {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 {
			continue
		}
		switch l.Topics[0] {
		case tokenABI.Events["PhaseChanged"].ID:
			o.phaseChanged(l)
		case crowdfundABI.Events["Purchase"].ID:
			o.purchase(l)
		}
	}
}

func (o *MetricsObserver) phaseChanged(l *types.Log) {
	out, err := tokenABI.Unpack("PhaseChanged", l.Data)
	if err != nil || len(out) != 1 {
		o.logger.Warn("undecodable PhaseChanged event", zap.Stringer("tx", l.TxHash), zap.Error(err))
		return
	}
	p, ok := out[0].(uint8)
	if !ok {
		return
	}
	o.phase = Phase(p)
	metrics.CrowdfundPhase.Set(float64(p))
}

func (o *MetricsObserver) purchase(l *types.Log) {
	out, err := crowdfundABI.Unpack("Purchase", l.Data)
	if err != nil || len(out) != 2 {
		o.logger.Warn("undecodable Purchase event", zap.Stringer("tx", l.TxHash), zap.Error(err))
		return
	}
	value, _ := out[0].(*big.Int)
	tokens, _ := out[1].(*big.Int)
	round := o.phase.String()

	metrics.PurchasesTotal.WithLabelValues(round).Inc()
	metrics.TokensSold.WithLabelValues(round).Add(wholeUnits(tokens))
	metrics.EtherRaised.Add(wholeUnits(value))
}

func wholeUnits(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	return decimal.RequireFromString(units.FromWei(v)).InexactFloat64()
}
