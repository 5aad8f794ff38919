package ilock

import (
	"sync"
	"time"
)

// Clock supplies the current timestamp in unix seconds.
type Clock interface {
	Now() uint64
}

type ClockFunc func() uint64

func (clockFunc ClockFunc) Now() uint64 {
	return clockFunc()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock for tests and simulations.
type ManualClock struct {
	mutex sync.Mutex
	now   uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (clock *ManualClock) Now() uint64 {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.now
}

func (clock *ManualClock) Set(now uint64) {
	clock.mutex.Lock()
	clock.now = now
	clock.mutex.Unlock()
}

// Advance moves the clock forward by seconds and returns the new time.
func (clock *ManualClock) Advance(seconds uint64) uint64 {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.now += seconds
	return clock.now
}
