package deploy

import (
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
)

// Option configures Base.
type Option func(*settings)

type settings struct {
	logger   *zap.Logger
	store    artifact.Store
	icoStart time.Time
}

// WithLogger sets the deployment logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithArtifactStore saves the contract descriptors after deployment.
func WithArtifactStore(store artifact.Store) Option {
	return func(s *settings) { s.store = store }
}

// WithICOStart overrides the ICO start time, which defaults to the chain time
// at deployment.
func WithICOStart(t time.Time) Option {
	return func(s *settings) { s.icoStart = t }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
