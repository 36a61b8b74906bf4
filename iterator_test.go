package smcore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listService fakes the list + describe pair a resource iterator drives: a
// fixed sequence of list pages, with full describe responses looked up by
// resource name.
type listService struct {
	pages         []map[string]any
	listCalls     int
	describeCalls int
}

func (s *listService) Call(_ context.Context, operation string, input map[string]any) (map[string]any, error) {
	switch operation {
	case "ListTrainingJobs":
		if s.listCalls >= len(s.pages) {
			return nil, fmt.Errorf("unexpected list call %d", s.listCalls)
		}
		page := s.pages[s.listCalls]
		s.listCalls++
		return page, nil
	case "DescribeTrainingJob":
		s.describeCalls++
		name := input["TrainingJobName"].(string)
		return map[string]any{
			"TrainingJobName":   name,
			"TrainingJobStatus": "Completed",
		}, nil
	default:
		return nil, fmt.Errorf("unexpected operation %s", operation)
	}
}

func summaryPage(token string, names ...string) map[string]any {
	summaries := make([]any, 0, len(names))
	for _, n := range names {
		summaries = append(summaries, map[string]any{
			"TrainingJobName": n,
			"CreationTime":    "2024-03-19T11:57:07Z",
		})
	}
	page := map[string]any{"TrainingJobSummaries": summaries}
	if token != "" {
		page["NextToken"] = token
	}
	return page
}

func trainingJobIterator(client ClientHandle) *ResourceIterator[*trainingJob] {
	codec := testCodec()
	return NewResourceIterator(IteratorConfig[*trainingJob]{
		Client:        client,
		Codec:         codec,
		Operation:     "ListTrainingJobs",
		Input:         map[string]any{},
		SummariesKey:  "TrainingJobSummaries",
		ResourceShape: "DescribeTrainingJobResponse",
		New:           func() *trainingJob { return &trainingJob{client: client, codec: codec} },
	})
}

func TestIteratorPaginates(t *testing.T) {
	svc := &listService{pages: []map[string]any{
		summaryPage("page-2", "job-a", "job-b"),
		summaryPage("", "job-c", "job-d"),
	}}
	it := trainingJobIterator(svc)

	jobs, err := it.All(context.Background())
	require.NoError(t, err)

	require.Len(t, jobs, 4)
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.TrainingJobName
		// Each yielded object went through a full refresh, not just the
		// partial summary decode.
		require.NotNil(t, j.TrainingJobStatus)
		assert.Equal(t, "Completed", *j.TrainingJobStatus)
	}
	assert.Equal(t, []string{"job-a", "job-b", "job-c", "job-d"}, names)
	assert.Equal(t, 2, svc.listCalls)
	assert.Equal(t, 4, svc.describeCalls)

	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, ErrIteratorExhausted)
}

func TestIteratorSendsContinuationCursor(t *testing.T) {
	var tokens []any
	client := ClientFunc(func(_ context.Context, operation string, input map[string]any) (map[string]any, error) {
		if operation == "DescribeTrainingJob" {
			return map[string]any{"TrainingJobName": input["TrainingJobName"]}, nil
		}
		tokens = append(tokens, input[nextTokenKey])
		if len(tokens) == 1 {
			return summaryPage("cursor-1", "job-a"), nil
		}
		return summaryPage("", "job-b"), nil
	})
	it := trainingJobIterator(client)

	_, err := it.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "cursor-1"}, tokens)
}

func TestIteratorEmptyPageEndsSequence(t *testing.T) {
	// Cursor present but no summaries: the sequence still ends here.
	svc := &listService{pages: []map[string]any{
		{"TrainingJobSummaries": []any{}, "NextToken": "cursor"},
	}}
	it := trainingJobIterator(svc)

	jobs, err := it.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, svc.listCalls)
}

func TestIteratorKeyMapping(t *testing.T) {
	client := ClientFunc(func(_ context.Context, operation string, input map[string]any) (map[string]any, error) {
		if operation == "DescribeTrainingJob" {
			return map[string]any{"TrainingJobName": input["TrainingJobName"]}, nil
		}
		// The summary uses a different key than the describe shape.
		return map[string]any{
			"TrainingJobSummaries": []any{
				map[string]any{"JobName": "job-x"},
			},
		}, nil
	})
	codec := testCodec()
	it := NewResourceIterator(IteratorConfig[*trainingJob]{
		Client:        client,
		Codec:         codec,
		Operation:     "ListTrainingJobs",
		SummariesKey:  "TrainingJobSummaries",
		ResourceShape: "DescribeTrainingJobResponse",
		KeyMapping:    map[string]string{"JobName": "TrainingJobName"},
		New:           func() *trainingJob { return &trainingJob{client: client, codec: codec} },
	})

	jobs, err := it.All(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-x", jobs[0].TrainingJobName)
}

func TestIteratorRetriesThrottling(t *testing.T) {
	throttles := 3
	svc := &listService{pages: []map[string]any{summaryPage("", "job-a")}}
	client := ClientFunc(func(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
		if operation == "ListTrainingJobs" && throttles > 0 {
			throttles--
			return nil, &ThrottlingError{Err: errors.New("rate exceeded")}
		}
		return svc.Call(ctx, operation, input)
	})
	it := trainingJobIterator(client)

	var slept []time.Duration
	it.sleep = func(d time.Duration) { slept = append(slept, d) }

	jobs, err := it.All(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, slept)
}

func TestIteratorThrottlingBudgetExhausted(t *testing.T) {
	client := ClientFunc(func(context.Context, string, map[string]any) (map[string]any, error) {
		return nil, &ThrottlingError{Err: errors.New("rate exceeded")}
	})
	it := trainingJobIterator(client)

	var slept []time.Duration
	it.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := it.Next(context.Background())
	assert.True(t, IsThrottling(err))
	// 5 retries means 6 calls and 5 backoff sleeps; the 6th throttle is
	// not retried.
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
	}, slept)
}

func TestIteratorNonThrottlingErrorPropagates(t *testing.T) {
	client := ClientFunc(func(context.Context, string, map[string]any) (map[string]any, error) {
		return nil, errors.New("access denied")
	})
	it := trainingJobIterator(client)

	var slept []time.Duration
	it.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := it.Next(context.Background())
	require.EqualError(t, err, "access denied")
	assert.Empty(t, slept)
}
