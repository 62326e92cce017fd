// Package autosave periodically writes the chain state to disk.
package autosave

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
)

// Chain is the part of the chain that can be persisted.
type Chain interface {
	Revision() uint64
	Save(path string) error
}

// Saver writes the chain to path whenever it changed since the last save.
type Saver struct {
	chain  Chain
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	saved uint64
	dirty bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Saver for c. The current revision counts as unsaved so the
// first SaveIfChanged always writes.
func New(c Chain, path string, logger *zap.Logger) *Saver {
	return &Saver{
		chain:  c,
		path:   path,
		logger: logger,
		dirty:  true,
		stopCh: make(chan struct{}),
	}
}

// SaveIfChanged saves the chain when its revision moved. It reports whether
// a save happened.
func (s *Saver) SaveIfChanged() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.chain.Revision()
	if !s.dirty && rev == s.saved {
		return false, nil
	}
	if err := s.chain.Save(s.path); err != nil {
		metrics.ErrorsTotal.WithLabelValues("autosave", "save").Inc()
		return false, err
	}
	s.saved = rev
	s.dirty = false
	return true, nil
}

// Start saves every interval until Stop is called.
func (s *Saver) Start(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("Started chain autosave", zap.String("path", s.path), zap.Duration("interval", interval))
		for {
			select {
			case <-ticker.C:
				s.save()
			case <-s.stopCh:
				s.logger.Info("Stopping chain autosave")
				return
			}
		}
	}()
}

// Stop ends the periodic saves and writes any pending change.
func (s *Saver) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.save()
}

func (s *Saver) save() {
	saved, err := s.SaveIfChanged()
	if err != nil {
		s.logger.Error("Chain autosave failed", zap.String("path", s.path), zap.Error(err))
		return
	}
	if saved {
		s.logger.Debug("Chain state saved", zap.String("path", s.path))
	}
}
