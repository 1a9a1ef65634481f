package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func TestStepClock_FirstReadingIsStart(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)
	assert.Equal(t, epoch, clock.Peek())
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_NowAdvances(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch.Add(time.Second), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Second), clock.Now())
	assert.Equal(t, epoch.Add(3*time.Second), clock.Peek())
}

func TestStepClock_DefaultStep(t *testing.T) {
	clock := NewStepClock(epoch, 0)
	clock.Now()
	assert.Equal(t, epoch.Add(time.Nanosecond), clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(epoch, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(epoch, time.Nanosecond)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]time.Time, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]time.Time, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, rs := range results {
		for _, ts := range rs {
			n := ts.UnixNano()
			require.False(t, seen[n], "duplicate reading %d", n)
			seen[n] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestStepClock_Deterministic(t *testing.T) {
	c1 := NewStepClock(epoch, time.Millisecond)
	c2 := NewStepClock(epoch, time.Millisecond)
	for i := 0; i < 100; i++ {
		assert.Equal(t, c1.Now(), c2.Now())
	}
}
