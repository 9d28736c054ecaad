package clock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestManualFiresInTimeOrder(t *testing.T) {
	m := NewManual()
	var got []string

	m.Every(2*time.Second, func() { got = append(got, "slow") })
	m.Every(time.Second, func() { got = append(got, "fast") })

	m.Seconds(4)

	assert.Equal(t, []string{"fast", "slow", "fast", "fast", "slow", "fast"}, got)
}

func TestManualStopFromCallback(t *testing.T) {
	m := NewManual()
	count := 0
	var stop func()
	stop = m.Every(time.Second, func() {
		count++
		if count == 3 {
			stop()
		}
	})

	m.Seconds(10)

	assert.Equal(t, 3, count)
	assert.Equal(t, 0, m.Active())
}

func TestManualPartialAdvance(t *testing.T) {
	m := NewManual()
	count := 0
	m.Every(time.Second, func() { count++ })

	m.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, count)
	m.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, count)
}

func TestCountdownRestartDropsOldTicks(t *testing.T) {
	m := NewManual()
	var mu sync.Mutex
	c := NewCountdown(m, &mu)

	first, second := 0, 0

	mu.Lock()
	c.Start(func() { first++ })
	mu.Unlock()

	m.Seconds(2)

	mu.Lock()
	c.Start(func() { second++ })
	mu.Unlock()

	m.Seconds(3)

	assert.Equal(t, 2, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, 1, m.Active())
}

func TestCountdownStop(t *testing.T) {
	m := NewManual()
	var mu sync.Mutex
	c := NewCountdown(m, &mu)
	ticks := 0

	mu.Lock()
	c.Start(func() {
		ticks++
		if ticks == 2 {
			c.Stop()
		}
	})
	assert.True(t, c.Running())
	mu.Unlock()

	m.Seconds(5)

	assert.Equal(t, 2, ticks)
	assert.False(t, c.Running())
	assert.Equal(t, 0, m.Active())
}

func TestRealSchedulerStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks atomic.Int32
	stop := Real{}.Every(5*time.Millisecond, func() { ticks.Add(1) })

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	stop()
	stop()
}
