package chain

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// MaxIncreaseSeconds is the largest step, in seconds, a time.Duration can hold.
const MaxIncreaseSeconds = math.MaxInt64 / int64(time.Second)

// ErrTimeOverflow is returned for time increases the clock cannot represent.
var ErrTimeOverflow = errors.New("time increase out of range")

// SecondsToDuration converts an evm_increaseTime argument to a Duration.
func SecondsToDuration(seconds uint64) (time.Duration, error) {
	if seconds > uint64(MaxIncreaseSeconds) {
		return 0, fmt.Errorf("%w: %d seconds exceeds %d", ErrTimeOverflow, seconds, MaxIncreaseSeconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Clock is the chain's source of block time. It starts at a genesis time and
// can be moved forward with Increase, like ganache's evm_increaseTime.
//
// A frozen clock only moves when told to; a realtime clock also follows the
// wall clock from the moment it was created.
type Clock struct {
	mu       sync.RWMutex
	genesis  time.Time
	offset   time.Duration
	realtime bool
	started  time.Time
	wall     func() time.Time
}

// NewClock returns a frozen clock starting at genesis.
func NewClock(genesis time.Time) *Clock {
	return &Clock{genesis: genesis.UTC().Truncate(time.Second), wall: time.Now}
}

// NewRealtimeClock returns a clock that starts at genesis and advances with wall time.
func NewRealtimeClock(genesis time.Time) *Clock {
	c := NewClock(genesis)
	c.realtime = true
	c.started = c.wall()
	return c
}

// Now returns the current chain time with second precision.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.genesis.Add(c.offset)
	if c.realtime {
		now = now.Add(c.wall().Sub(c.started))
	}
	return now.Truncate(time.Second)
}

// Genesis returns the chain start time.
func (c *Clock) Genesis() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genesis
}

// Increase moves the clock forward by d and returns the total adjustment.
// Negative durations are ignored and the adjustment saturates at the
// largest Duration, so the clock never runs backwards.
func (c *Clock) Increase(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case d <= 0:
	case d > math.MaxInt64-c.offset:
		c.offset = math.MaxInt64
	default:
		c.offset += d
	}
	return c.offset
}

// Offset returns the total adjustment applied with Increase.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

func (c *Clock) setOffset(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = d
}

func (c *Clock) restore(genesis time.Time, offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genesis = genesis.UTC().Truncate(time.Second)
	c.offset = offset
}
