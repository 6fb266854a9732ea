package state

import (
	"context"
	"time"
)

// WaitResult describes why Event.Wait returned.
type WaitResult int

const (
	WaitTimeout WaitResult = iota
	WaitSignaled
	WaitCancelled
)

func (r WaitResult) String() string {
	switch r {
	case WaitSignaled:
		return "signaled"
	case WaitCancelled:
		return "cancelled"
	default:
		return "timeout"
	}
}

// Event is a single-slot wake signal. A Signal with no waiter is kept until
// the next Wait; repeated signals before that collapse into one.
type Event struct {
	ch chan struct{}
}

// NewEvent returns an unsignaled event.
func NewEvent() *Event {
	return &Event{ch: make(chan struct{}, 1)}
}

// Signal marks the event. It never blocks.
func (e *Event) Signal() {
	select {
	case e.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the event is signaled, d elapses, or ctx is done.
func (e *Event) Wait(ctx context.Context, d time.Duration) WaitResult {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return WaitCancelled
	case <-e.ch:
		return WaitSignaled
	case <-timer.C:
		return WaitTimeout
	}
}
