package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts mined transactions by kind and status
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redchain_transactions_total",
			Help: "Total number of mined transactions",
		},
		[]string{"kind", "status"},
	)

	// GasUsed tracks gas charged per mined transaction
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redchain_gas_used",
			Help:    "Gas used by mined transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 500000, 1000000, 2000000},
		},
		[]string{"kind"},
	)

	// BlockHeight tracks the latest block number
	BlockHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "redchain_block_height",
			Help: "Latest mined block number",
		},
	)

	// TimeOffsetSeconds tracks how far the chain clock was moved forward
	TimeOffsetSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "redchain_time_offset_seconds",
			Help: "Total evm_increaseTime adjustment in seconds",
		},
	)

	// SnapshotsTotal counts snapshot and revert operations
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redchain_snapshots_total",
			Help: "Total number of snapshot operations",
		},
		[]string{"operation"},
	)

	// CrowdfundPhase tracks the current crowdfund phase as its numeric value
	CrowdfundPhase = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "red_crowdfund_phase",
			Help: "Current crowdfund phase (0 not started, 1 early birds, 2 open, 3 closed)",
		},
	)

	// PurchasesTotal counts token purchases by sale round
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "red_crowdfund_purchases_total",
			Help: "Total number of token purchases",
		},
		[]string{"round"},
	)

	// TokensSold tracks RED sold per round, in whole tokens
	TokensSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "red_crowdfund_tokens_sold",
			Help: "RED sold by sale round",
		},
		[]string{"round"},
	)

	// EtherRaised tracks ether forwarded to the crowdfund wallet
	EtherRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "red_crowdfund_ether_raised",
			Help: "Ether forwarded to the crowdfund wallet",
		},
	)

	// RequestsTotal counts API requests by interface and outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redchain_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"interface", "method", "status"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redchain_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
