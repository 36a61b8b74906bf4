package smcore

import (
	"errors"
	"fmt"
)

// ShapeError is returned when the codec encounters a shape kind or kind
// combination it has no decode rule for (e.g. a list of lists, or a map with
// non-string keys). It signals that the codec needs extending and is never
// silently coerced.
type ShapeError struct {
	ShapeName string
	Detail    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape %q: %s", e.ShapeName, e.Detail)
}

// ThrottlingError marks a transient throttling response from the service.
// Client handles wrap throttling-class transport failures in this type;
// the resource iterator retries them with exponential backoff before
// letting them propagate.
type ThrottlingError struct {
	Err error
}

func (e *ThrottlingError) Error() string {
	if e.Err == nil {
		return "request throttled"
	}
	return fmt.Sprintf("request throttled: %v", e.Err)
}

func (e *ThrottlingError) Unwrap() error { return e.Err }

// IsThrottling reports whether err is (or wraps) a ThrottlingError.
func IsThrottling(err error) bool {
	var te *ThrottlingError
	return errors.As(err, &te)
}

// WaiterError is the common shape of waiter failures: the resource type being
// waited on and the last status observed before the waiter gave up.
type WaiterError struct {
	ResourceType string
	Status       string
}

func (e *WaiterError) Error() string {
	return fmt.Sprintf("error while waiting for %s, final resource status %q", e.ResourceType, e.Status)
}

// FailedStatusError is returned when a resource reaches a declared failure
// state. Reason carries the resource's failure-reason field when the shape
// exposes one, or "(Unknown)" otherwise.
type FailedStatusError struct {
	WaiterError
	Reason string
}

func (e *FailedStatusError) Error() string {
	return fmt.Sprintf("unexpected failed state while waiting for %s, final resource status %q, failure reason: %s",
		e.ResourceType, e.Status, e.Reason)
}

// TimeoutExceededError is returned when a wait budget is exhausted before the
// resource reaches the goal state.
type TimeoutExceededError struct {
	WaiterError
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("timeout exceeded while waiting for %s, final resource status %q", e.ResourceType, e.Status)
}
