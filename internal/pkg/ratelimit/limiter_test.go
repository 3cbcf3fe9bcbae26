package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCheck_AllowsUpToMaxThenRejects(t *testing.T) {
	clock := newClock()
	l := New(WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		assert.False(t, l.Check("1.2.3.4", 5, time.Minute), "request %d should pass", i+1)
	}
	assert.True(t, l.Check("1.2.3.4", 5, time.Minute))
	assert.True(t, l.Check("1.2.3.4", 5, time.Minute))
}

func TestCheck_WindowResetBehavesAsFresh(t *testing.T) {
	clock := newClock()
	l := New(WithClock(clock.Now))

	for i := 0; i < 6; i++ {
		l.Check("ip", 5, time.Minute)
	}
	require.True(t, l.Check("ip", 5, time.Minute))

	clock.Advance(time.Minute + time.Millisecond)

	for i := 0; i < 5; i++ {
		assert.False(t, l.Check("ip", 5, time.Minute))
	}
	assert.True(t, l.Check("ip", 5, time.Minute))
}

func TestCheck_IdentifiersAreIndependent(t *testing.T) {
	l := New(WithClock(newClock().Now))

	assert.False(t, l.Check("a", 1, time.Minute))
	assert.True(t, l.Check("a", 1, time.Minute))
	assert.False(t, l.Check("b", 1, time.Minute))
}

func TestCheck_NonPositiveArgsUseDefaults(t *testing.T) {
	l := New(WithClock(newClock().Now))

	for i := 0; i < DefaultMaxRequests; i++ {
		assert.False(t, l.Check("ip", 0, 0))
	}
	assert.True(t, l.Check("ip", 0, 0))
	assert.Equal(t, 60, l.ResetTimeSeconds("ip"))
}

func TestRemaining(t *testing.T) {
	clock := newClock()
	l := New(WithClock(clock.Now))

	assert.Equal(t, 5, l.Remaining("ip", 5))

	l.Check("ip", 5, time.Minute)
	l.Check("ip", 5, time.Minute)
	assert.Equal(t, 3, l.Remaining("ip", 5))

	for i := 0; i < 10; i++ {
		l.Check("ip", 5, time.Minute)
	}
	assert.Equal(t, 0, l.Remaining("ip", 5))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 5, l.Remaining("ip", 5))
}

func TestResetTimeSeconds(t *testing.T) {
	clock := newClock()
	l := New(WithClock(clock.Now))

	assert.Equal(t, 0, l.ResetTimeSeconds("ip"))

	l.Check("ip", 5, time.Minute)
	assert.Equal(t, 60, l.ResetTimeSeconds("ip"))

	clock.Advance(20*time.Second + 500*time.Millisecond)
	assert.Equal(t, 40, l.ResetTimeSeconds("ip"))

	clock.Advance(time.Minute)
	assert.Equal(t, 0, l.ResetTimeSeconds("ip"))
}

func TestCleanupSweepsExpiredEntries(t *testing.T) {
	clock := newClock()
	l := New(WithClock(clock.Now), WithCleanupEvery(3))

	l.Check("a", 5, time.Second)
	l.Check("b", 5, time.Second)
	require.Equal(t, 2, l.Len())

	clock.Advance(2 * time.Second)
	// third check triggers the sweep before "c" is recorded
	l.Check("c", 5, time.Second)

	assert.Equal(t, 1, l.Len())
}

func TestCheck_ConcurrentIncrementsAreCounted(t *testing.T) {
	l := New()

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	exceeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("shared", 10, time.Hour) {
				mu.Lock()
				exceeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers-10, exceeded)
}

func TestIndependentLimiters(t *testing.T) {
	a := New()
	b := New()

	for i := 0; i < 3; i++ {
		a.Check(fmt.Sprintf("ip-%d", i), 5, time.Minute)
	}
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 0, b.Len())
}
