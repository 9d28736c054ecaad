// Package clock provides the tick sources that drive game countdowns
package clock

import (
	"sync"
	"time"
)

// Scheduler calls fn every interval until the returned stop func is called
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Real is a Scheduler backed by time.Ticker, one goroutine per registration
type Real struct{}

// Every implements Scheduler
func (Real) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
