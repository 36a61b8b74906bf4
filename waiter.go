package smcore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NoTimeout disables the wait budget: the waiter polls until a goal or
// failure condition is reached (or the context is canceled).
const NoTimeout time.Duration = -1

// failureKeyword is the substring (case-insensitive) that marks a status
// value as a failure state.
const failureKeyword = "failed"

// Waiter polls a resource's status field until a goal condition or a failure
// condition is met. One waiter shape serves both flavors: Wait succeeds on
// any terminal state, WaitForStatus on one specific state.
//
// Cancellation is timeout-based: elapsed time is checked between polls, and
// a call already in flight is never interrupted.
type Waiter struct {
	// ResourceType names the resource in waiter errors.
	ResourceType string

	// Refresh re-reads the resource from the service.
	Refresh func(ctx context.Context) error

	// Status reads the current status value off the refreshed object,
	// following the resource's status chain.
	Status func() string

	// FailureReason, if non-nil, reads the resource's failure-reason field
	// for FailedStatusError. Left nil when the shape exposes none.
	FailureReason func() string

	// TerminalStates are the states after which no transition is expected.
	TerminalStates []string

	// Poll is the delay between polls. Defaults to 5 seconds.
	Poll time.Duration

	// Timeout is the wait budget. NoTimeout (the NewWaiter default)
	// disables it; an explicit zero times out after the first poll.
	Timeout time.Duration

	// Logger, if set, receives poll progress at debug level.
	Logger *slog.Logger

	// test seams
	sleep func(time.Duration)
	now   func() time.Time
}

// NewWaiter returns a waiter with the default poll interval and no timeout.
func NewWaiter(resourceType string) *Waiter {
	return &Waiter{
		ResourceType: resourceType,
		Poll:         5 * time.Second,
		Timeout:      NoTimeout,
	}
}

func (w *Waiter) init() {
	if w.sleep == nil {
		w.sleep = time.Sleep
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.Logger == nil {
		w.Logger = slog.Default()
	}
	if w.Poll <= 0 {
		w.Poll = 5 * time.Second
	}
}

// Wait blocks until the status reaches any terminal state. A status matching
// the failure keyword yields a FailedStatusError carrying the resource's
// failure reason, even when that state is itself terminal.
func (w *Waiter) Wait(ctx context.Context) error {
	return w.poll(ctx, func(status string) (bool, error) {
		if err := w.checkFailed(status); err != nil {
			return false, err
		}
		for _, s := range w.TerminalStates {
			if s == status {
				return true, nil
			}
		}
		return false, nil
	})
}

// WaitForStatus blocks until the status equals the caller's target. The
// target is checked first, so waiting for a failure state explicitly is
// possible; the failure and timeout branches are otherwise identical to
// Wait.
func (w *Waiter) WaitForStatus(ctx context.Context, target string) error {
	return w.poll(ctx, func(status string) (bool, error) {
		if status == target {
			return true, nil
		}
		return false, w.checkFailed(status)
	})
}

func (w *Waiter) checkFailed(status string) error {
	if !strings.Contains(strings.ToLower(status), failureKeyword) {
		return nil
	}
	return &FailedStatusError{
		WaiterError: WaiterError{ResourceType: w.ResourceType, Status: status},
		Reason:      w.failureReason(),
	}
}

func (w *Waiter) poll(ctx context.Context, evaluate func(status string) (bool, error)) error {
	w.init()
	start := w.now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Refresh(ctx); err != nil {
			return err
		}
		status := w.Status()
		w.Logger.Debug("polled resource status",
			slog.String("resource", w.ResourceType),
			slog.String("status", status))

		done, err := evaluate(status)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if w.Timeout >= 0 && w.now().Sub(start) >= w.Timeout {
			return &TimeoutExceededError{
				WaiterError: WaiterError{ResourceType: w.ResourceType, Status: status},
			}
		}
		w.sleep(w.Poll)
	}
}

func (w *Waiter) failureReason() string {
	if w.FailureReason == nil {
		return "(Unknown)"
	}
	if r := w.FailureReason(); r != "" {
		return r
	}
	return "(Unknown)"
}

// String implements fmt.Stringer for debug logging.
func (w *Waiter) String() string {
	return fmt.Sprintf("Waiter(%s, poll=%s)", w.ResourceType, w.Poll)
}
