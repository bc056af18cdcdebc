package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sarproc/hyp3-go/pkg/models"
)

// scriptedFetch returns the queued statuses one per call, sticking at the
// last one, and counts calls
type scriptedFetch struct {
	statuses map[string][]models.Status
	calls    int
}

func (s *scriptedFetch) fetch(ctx context.Context, jobID string) (models.Job, error) {
	s.calls++
	script := s.statuses[jobID]
	status := script[0]
	if len(script) > 1 {
		s.statuses[jobID] = script[1:]
	}
	return models.Job{JobID: jobID, Status: status}, nil
}

func TestWatch_JobCompletesOnSecondRefresh(t *testing.T) {
	fetcher := &scriptedFetch{statuses: map[string][]models.Status{
		"abc": {models.StatusRunning, models.StatusSucceeded},
	}}

	var observations []int
	opts := Options{
		Timeout:  20 * time.Millisecond,
		Interval: 10 * time.Millisecond,
		Observer: func(completed, total int, remaining time.Duration) {
			observations = append(observations, completed)
			if total != 1 {
				t.Errorf("Expected total 1 for a single job, got %d", total)
			}
		},
	}

	result, err := Watch(context.Background(), models.Job{JobID: "abc", Status: models.StatusPending}, fetcher.fetch, opts)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	job, ok := result.(models.Job)
	if !ok {
		t.Fatalf("Expected a Job result, got %T", result)
	}
	if job.Status != models.StatusSucceeded {
		t.Errorf("Expected the SUCCEEDED snapshot, got %s", job.Status)
	}
	if fetcher.calls != 2 {
		t.Errorf("Expected 2 refresh calls, got %d", fetcher.calls)
	}
	if len(observations) != 2 || observations[0] != 0 || observations[1] != 1 {
		t.Errorf("Unexpected progress observations: %v", observations)
	}
}

func TestWatch_BatchTimesOut(t *testing.T) {
	fetcher := &scriptedFetch{statuses: map[string][]models.Status{
		"a": {models.StatusRunning},
		"b": {models.StatusRunning},
	}}
	batch := models.NewBatch(
		models.Job{JobID: "a", Status: models.StatusPending},
		models.Job{JobID: "b", Status: models.StatusPending},
	)

	// timeout == interval allows exactly one refresh
	opts := Options{Timeout: 10 * time.Millisecond, Interval: 10 * time.Millisecond}

	_, err := Watch(context.Background(), batch, fetcher.fetch, opts)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected *TimeoutError, got %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("Expected one refresh of each of 2 jobs, got %d calls", fetcher.calls)
	}

	last, ok := timeoutErr.Last.(models.Batch)
	if !ok {
		t.Fatalf("Expected the last snapshot to be a Batch, got %T", timeoutErr.Last)
	}
	counts := last.StatusCounts()
	if counts[models.StatusRunning] != 2 {
		t.Errorf("Expected 2 RUNNING jobs in the last snapshot, got %v", counts)
	}
	if counts[models.StatusPending] != 0 || counts[models.StatusSucceeded] != 0 || counts[models.StatusFailed] != 0 {
		t.Errorf("Expected all other statuses at zero, got %v", counts)
	}
}

func TestWatch_RemainingBudgetObservations(t *testing.T) {
	fetcher := &scriptedFetch{statuses: map[string][]models.Status{
		"abc": {models.StatusRunning, models.StatusRunning, models.StatusSucceeded},
	}}

	var remainders []time.Duration
	opts := Options{
		Timeout:  30 * time.Millisecond,
		Interval: 10 * time.Millisecond,
		Observer: func(completed, total int, remaining time.Duration) {
			remainders = append(remainders, remaining)
		},
	}

	_, err := Watch(context.Background(), models.Job{JobID: "abc", Status: models.StatusPending}, fetcher.fetch, opts)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	want := []time.Duration{30 * time.Millisecond, 20 * time.Millisecond, 10 * time.Millisecond}
	if len(remainders) != len(want) {
		t.Fatalf("Expected %d observations, got %v", len(want), remainders)
	}
	for i := range want {
		if remainders[i] != want[i] {
			t.Errorf("Observation %d: remaining = %v, want %v", i, remainders[i], want[i])
		}
	}
}

func TestWatch_RefreshErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(ctx context.Context, jobID string) (models.Job, error) {
		return models.Job{}, boom
	}

	opts := Options{Timeout: 50 * time.Millisecond, Interval: 10 * time.Millisecond}
	_, err := Watch(context.Background(), models.Job{JobID: "abc"}, fetch, opts)
	if !errors.Is(err, boom) {
		t.Errorf("Expected the refresh error to propagate, got %v", err)
	}
}

func TestWatch_InvalidOptions(t *testing.T) {
	fetch := func(ctx context.Context, jobID string) (models.Job, error) {
		t.Error("fetch should not be called")
		return models.Job{}, nil
	}

	if _, err := Watch(context.Background(), models.Job{JobID: "abc"}, fetch, Options{Timeout: time.Second}); err == nil {
		t.Error("Expected an error for a zero interval")
	}
	if _, err := Watch(context.Background(), models.Job{JobID: "abc"}, fetch, Options{Timeout: -time.Second, Interval: time.Second}); err == nil {
		t.Error("Expected an error for a negative timeout")
	}
}

func TestWatch_ContextCancellation(t *testing.T) {
	fetcher := &scriptedFetch{statuses: map[string][]models.Status{
		"abc": {models.StatusRunning},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	opts := Options{Timeout: time.Hour, Interval: time.Minute}
	start := time.Now()
	_, err := Watch(ctx, models.Job{JobID: "abc", Status: models.StatusPending}, fetcher.fetch, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Cancellation should short-circuit the interval wait")
	}
}
