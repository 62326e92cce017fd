package chain

import (
	"math/big"

	"go.uber.org/zap"
)

// Option configures a Chain using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger        *zap.Logger
	clock         *Clock
	gasPrice      *big.Int
	blockGasLimit uint64
	observers     []Observer
}

// WithLogger sets the chain logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock replaces the default frozen clock started at the genesis time.
func WithClock(c *Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithGasPrice sets the price charged for transactions that do not carry one.
func WithGasPrice(p *big.Int) Option {
	return func(s *settings) { s.gasPrice = p }
}

// WithBlockGasLimit sets the gas limit reported on mined blocks.
func WithBlockGasLimit(limit uint64) Option {
	return func(s *settings) { s.blockGasLimit = limit }
}

// WithObserver registers an observer notified about every mined transaction.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observers = append(s.observers, o) }
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger:        zap.NewNop(),
		gasPrice:      big.NewInt(DefaultGasPrice),
		blockGasLimit: DefaultBlockGasLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
