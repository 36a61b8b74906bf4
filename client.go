package smcore

import "context"

// ClientHandle issues a single control-plane call: a named operation with a
// wire-keyed request body, returning the wire-keyed response body. Transport,
// authentication, and HTTP-level retries live behind this interface; the
// runtime treats a handle as a long-lived, read-only collaborator and never
// pools or rate-limits it.
//
// Implementations must return a *ThrottlingError (possibly wrapped) for
// throttling-class failures so the iterator's backoff can recognize them.
// Operations with no response body return a nil or empty map.
type ClientHandle interface {
	Call(ctx context.Context, operation string, input map[string]any) (map[string]any, error)
}

// ClientFunc adapts a function to the ClientHandle interface.
type ClientFunc func(ctx context.Context, operation string, input map[string]any) (map[string]any, error)

func (f ClientFunc) Call(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
	return f(ctx, operation, input)
}
