package smcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusScript feeds a waiter a fixed status sequence, one entry per refresh.
type statusScript struct {
	states   []string
	current  string
	refreshes int
}

func (s *statusScript) refresh(context.Context) error {
	s.current = s.states[min(s.refreshes, len(s.states)-1)]
	s.refreshes++
	return nil
}

func scriptedWaiter(states []string, terminal ...string) (*Waiter, *statusScript) {
	script := &statusScript{states: states}
	w := NewWaiter("TrainingJob")
	w.Refresh = script.refresh
	w.Status = func() string { return script.current }
	w.TerminalStates = terminal
	w.Poll = time.Second
	w.sleep = func(time.Duration) {}
	return w, script
}

func TestWaitForStatusReachesTarget(t *testing.T) {
	w, script := scriptedWaiter([]string{"Pending", "Pending", "InService"})

	err := w.WaitForStatus(context.Background(), "InService")
	require.NoError(t, err)
	assert.Equal(t, 3, script.refreshes)
}

func TestWaitReachesTerminalState(t *testing.T) {
	w, script := scriptedWaiter([]string{"InProgress", "Completed"}, "Completed", "Failed", "Stopped")

	require.NoError(t, w.Wait(context.Background()))
	assert.Equal(t, 2, script.refreshes)
}

func TestWaitFailedStateRaisesFailedStatusError(t *testing.T) {
	w, _ := scriptedWaiter([]string{"Pending", "Failed"}, "Completed", "Failed")
	w.FailureReason = func() string { return "AlgorithmError: exit 1" }

	err := w.Wait(context.Background())
	var fse *FailedStatusError
	require.ErrorAs(t, err, &fse)
	assert.Equal(t, "Failed", fse.Status)
	assert.Equal(t, "AlgorithmError: exit 1", fse.Reason)
	assert.Equal(t, "TrainingJob", fse.ResourceType)
}

func TestWaitFailureReasonDefaultsToUnknown(t *testing.T) {
	w, _ := scriptedWaiter([]string{"Failed"}, "Completed", "Failed")

	err := w.Wait(context.Background())
	var fse *FailedStatusError
	require.ErrorAs(t, err, &fse)
	assert.Equal(t, "(Unknown)", fse.Reason)
}

func TestWaitZeroTimeoutRaisesTimeoutExceeded(t *testing.T) {
	w, _ := scriptedWaiter([]string{"Pending"}, "Completed")
	w.Timeout = 0

	err := w.Wait(context.Background())
	var te *TimeoutExceededError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Pending", te.Status)
}

func TestWaitForStatusZeroTimeout(t *testing.T) {
	w, _ := scriptedWaiter([]string{"Pending"})
	w.Timeout = 0

	err := w.WaitForStatus(context.Background(), "InService")
	var te *TimeoutExceededError
	require.ErrorAs(t, err, &te)
}

func TestWaitTimeoutBudget(t *testing.T) {
	w, _ := scriptedWaiter([]string{"Pending"}, "Completed")
	w.Timeout = 10 * time.Second

	// Drive a fake clock forward by the poll interval on every sleep.
	now := time.Unix(0, 0)
	w.now = func() time.Time { return now }
	w.sleep = func(d time.Duration) { now = now.Add(d) }

	err := w.Wait(context.Background())
	var te *TimeoutExceededError
	require.ErrorAs(t, err, &te)
}

func TestWaitForStatusCanTargetFailedState(t *testing.T) {
	// Target is checked before the failure keyword, so waiting for an
	// explicit failure state succeeds instead of raising.
	w, _ := scriptedWaiter([]string{"Pending", "Failed"})

	require.NoError(t, w.WaitForStatus(context.Background(), "Failed"))
}

func TestWaitRefreshErrorPropagates(t *testing.T) {
	w := NewWaiter("TrainingJob")
	w.Refresh = func(context.Context) error { return assert.AnError }
	w.Status = func() string { return "" }
	w.sleep = func(time.Duration) {}

	require.ErrorIs(t, w.Wait(context.Background()), assert.AnError)
}
