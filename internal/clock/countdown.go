package clock

import (
	"sync"
	"time"
)

// Tick is the countdown resolution
const Tick = time.Second

// Countdown is a restartable tick driver. Ticks run with lock held, the same
// lock the owner holds when it calls Start and Stop, so a tick that raced a
// Stop or restart sees a newer generation and is dropped
type Countdown struct {
	sched Scheduler
	lock  sync.Locker

	gen  uint64
	stop func()
}

// NewCountdown creates a stopped countdown
func NewCountdown(sched Scheduler, lock sync.Locker) *Countdown {
	return &Countdown{sched: sched, lock: lock}
}

// Start (re)starts delivering one tick per second to fn. Caller must hold lock
func (c *Countdown) Start(fn func()) {
	c.Stop()
	c.gen++
	gen := c.gen
	c.stop = c.sched.Every(Tick, func() {
		c.lock.Lock()
		defer c.lock.Unlock()
		if c.gen != gen || c.stop == nil {
			return
		}
		fn()
	})
}

// Stop halts ticking. Caller must hold lock
func (c *Countdown) Stop() {
	if c.stop == nil {
		return
	}
	c.stop()
	c.stop = nil
	c.gen++
}

// Running reports whether the countdown is ticking. Caller must hold lock
func (c *Countdown) Running() bool {
	return c.stop != nil
}
