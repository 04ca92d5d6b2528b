package music

import (
	"context"
	"time"
)

// PollState is the lifecycle of a remote generation task.
type PollState int

const (
	PollPending PollState = iota
	PollSucceeded
	PollFailed
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollSucceeded:
		return "succeeded"
	case PollFailed:
		return "failed"
	case PollTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Waiter blocks between poll attempts. Tests swap in a fake clock.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerWaiter sleeps on a real timer and wakes early on cancellation.
type TimerWaiter struct{}

func (TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// statusToState maps the provider's task status string.
func statusToState(status string) PollState {
	switch status {
	case "Success":
		return PollSucceeded
	case "Failed":
		return PollFailed
	default:
		return PollPending
	}
}
