package autosave

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChain struct {
	rev   atomic.Uint64
	saves atomic.Int32
	err   error
}

func (f *fakeChain) Revision() uint64 { return f.rev.Load() }

func (f *fakeChain) Save(string) error {
	if f.err != nil {
		return f.err
	}
	f.saves.Add(1)
	return nil
}

func TestSaveIfChanged(t *testing.T) {
	c := &fakeChain{}
	s := New(c, "chain.json", zap.NewNop())

	saved, err := s.SaveIfChanged()
	require.NoError(t, err)
	assert.True(t, saved, "first save always writes")

	saved, err = s.SaveIfChanged()
	require.NoError(t, err)
	assert.False(t, saved)

	c.rev.Add(1)
	saved, err = s.SaveIfChanged()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int32(2), c.saves.Load())
}

func TestSaveIfChanged_Error(t *testing.T) {
	c := &fakeChain{err: errors.New("disk full")}
	s := New(c, "chain.json", zap.NewNop())

	_, err := s.SaveIfChanged()
	require.Error(t, err)

	c.err = nil
	saved, err := s.SaveIfChanged()
	require.NoError(t, err)
	assert.True(t, saved, "failed save leaves the state dirty")
}

func TestStartStop(t *testing.T) {
	c := &fakeChain{}
	s := New(c, "chain.json", zap.NewNop())
	s.Start(10 * time.Millisecond)

	require.Eventually(t, func() bool { return c.saves.Load() >= 1 }, time.Second, 5*time.Millisecond)

	c.rev.Add(1)
	s.Stop()
	assert.GreaterOrEqual(t, c.saves.Load(), int32(2))
}
