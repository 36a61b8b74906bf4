package smcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrIteratorExhausted is returned by Next once the final page has been
// drained. The iterator is single-pass: create a new one to re-scan.
var ErrIteratorExhausted = errors.New("smcore: resource iterator exhausted")

const (
	// maxThrottleRetries is the number of times a throttled list or refresh
	// call is retried before the error propagates.
	maxThrottleRetries = 5

	// baseThrottleDelay is the first backoff delay; it doubles on every
	// subsequent retry.
	baseThrottleDelay = time.Second
)

// Refreshable is implemented by generated resource objects: a refresh
// replaces the object's fields with the service's current view of the
// resource.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// wire key of the continuation cursor in list requests and responses.
const nextTokenKey = "NextToken"

// IteratorConfig wires a ResourceIterator to a resource's list operation.
type IteratorConfig[T Refreshable] struct {
	// Client issues the list calls.
	Client ClientHandle

	// Codec decodes summary items into resource objects.
	Codec *Codec

	// Operation is the list operation name, e.g. "ListTrainingJobs".
	Operation string

	// Input is the serialized list request body. The continuation cursor is
	// injected on top of it between pages.
	Input map[string]any

	// SummariesKey locates the summary array in the list response.
	SummariesKey string

	// ResourceShape is the structure shape the summaries are decoded
	// against: the resource's describe-output shape. Summary members that
	// are not part of it are ignored.
	ResourceShape string

	// KeyMapping optionally renames summary wire keys whose names differ
	// from the resource's identifying members (wire key -> wire key).
	KeyMapping map[string]string

	// New constructs an empty resource object for each summary.
	New func() T

	// Logger, if set, receives retry warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// ResourceIterator lazily pages through a list operation, yielding fully
// refreshed resource objects one at a time. It is single-threaded and
// single-pass; the only suspension points are the backoff sleeps of the
// throttling retry.
type ResourceIterator[T Refreshable] struct {
	cfg IteratorConfig[T]

	page      []map[string]any
	index     int
	nextToken *string
	started   bool

	// sleep is swapped out by tests to observe the backoff schedule.
	sleep func(time.Duration)
}

// NewResourceIterator returns an iterator over the configured list operation.
// No call is issued until the first Next.
func NewResourceIterator[T Refreshable](cfg IteratorConfig[T]) *ResourceIterator[T] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ResourceIterator[T]{cfg: cfg, sleep: time.Sleep}
}

// Next returns the next resource in the sequence, fetching a new page when
// the buffer is drained. It returns ErrIteratorExhausted once the last page
// has been consumed.
func (it *ResourceIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if it.index < len(it.page) {
			summary := it.page[it.index]
			it.index++
			obj, err := it.decode(ctx, summary)
			if err != nil {
				return zero, err
			}
			return obj, nil
		}
		if it.started && it.nextToken == nil {
			return zero, ErrIteratorExhausted
		}
		if err := it.fetch(ctx); err != nil {
			return zero, err
		}
		// An empty page ends the sequence even if a cursor came back.
		if len(it.page) == 0 {
			return zero, ErrIteratorExhausted
		}
	}
}

// All drains the remaining sequence into a slice.
func (it *ResourceIterator[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	for {
		obj, err := it.Next(ctx)
		if errors.Is(err, ErrIteratorExhausted) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
}

func (it *ResourceIterator[T]) fetch(ctx context.Context) error {
	input := make(map[string]any, len(it.cfg.Input)+1)
	for k, v := range it.cfg.Input {
		input[k] = v
	}
	if it.nextToken != nil {
		input[nextTokenKey] = *it.nextToken
	}

	var resp map[string]any
	err := it.withThrottlingRetry(ctx, "list", func() error {
		var callErr error
		resp, callErr = it.cfg.Client.Call(ctx, it.cfg.Operation, input)
		return callErr
	})
	if err != nil {
		return err
	}
	it.started = true
	it.index = 0
	it.page = it.page[:0]

	if items, ok := resp[it.cfg.SummariesKey].([]any); ok {
		for _, item := range items {
			summary, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("list %s: summary item is %T, not an object", it.cfg.Operation, item)
			}
			it.page = append(it.page, summary)
		}
	}
	it.nextToken = nil
	if tok, ok := resp[nextTokenKey].(string); ok && tok != "" {
		it.nextToken = &tok
	}
	return nil
}

// decode turns a summary item into a typed object and immediately refreshes
// it: summaries are intentionally partial, so the full resource is fetched
// before it is yielded.
func (it *ResourceIterator[T]) decode(ctx context.Context, summary map[string]any) (T, error) {
	var zero T
	if len(it.cfg.KeyMapping) > 0 {
		remapped := make(map[string]any, len(summary))
		for k, v := range summary {
			if mapped, ok := it.cfg.KeyMapping[k]; ok {
				k = mapped
			}
			remapped[k] = v
		}
		summary = remapped
	}

	obj := it.cfg.New()
	if _, err := it.cfg.Codec.Transform(summary, it.cfg.ResourceShape, obj); err != nil {
		return zero, fmt.Errorf("decode %s summary: %w", it.cfg.ResourceShape, err)
	}
	if err := it.withThrottlingRetry(ctx, "refresh", func() error { return obj.Refresh(ctx) }); err != nil {
		return zero, err
	}
	return obj, nil
}

// withThrottlingRetry runs fn, retrying throttling-class errors with an
// exponential backoff that starts at one delay unit and doubles per attempt,
// up to maxThrottleRetries retries. Any other error propagates on first
// occurrence.
func (it *ResourceIterator[T]) withThrottlingRetry(ctx context.Context, what string, fn func() error) error {
	delay := baseThrottleDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !IsThrottling(err) {
			return err
		}
		if attempt >= maxThrottleRetries {
			return err
		}
		it.cfg.Logger.Warn("throttled, backing off",
			slog.String("call", what),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		it.sleep(delay)
		delay *= 2
	}
}
