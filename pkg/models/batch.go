package models

import (
	"context"
	"fmt"
)

// Batch is an immutable ordered collection of job snapshots. Order is the
// order the API returned the jobs in, which can carry meaning (submission
// order), so it is always preserved. Jobs are not deduplicated by ID.
type Batch struct {
	jobs []Job
}

// NewBatch builds a batch from the given jobs, preserving their order
func NewBatch(jobs ...Job) Batch {
	copied := make([]Job, len(jobs))
	copy(copied, jobs)
	return Batch{jobs: copied}
}

// Jobs returns a copy of the contained job snapshots
func (b Batch) Jobs() []Job {
	copied := make([]Job, len(b.jobs))
	copy(copied, b.jobs)
	return copied
}

// Count returns the number of jobs in the batch
func (b Batch) Count() int {
	return len(b.jobs)
}

// Combine returns a new batch holding b's jobs followed by other's jobs.
// Neither operand is modified.
func (b Batch) Combine(other Batch) Batch {
	combined := make([]Job, 0, len(b.jobs)+len(other.jobs))
	combined = append(combined, b.jobs...)
	combined = append(combined, other.jobs...)
	return Batch{jobs: combined}
}

// Complete reports whether every job in the batch is terminal. An empty
// batch is complete: there is nothing left to wait for.
func (b Batch) Complete() bool {
	for _, job := range b.jobs {
		if !job.Complete() {
			return false
		}
	}
	return true
}

// StatusCounts tallies jobs by status for the current snapshot. Every
// recognized status is present in the result, zero when absent.
func (b Batch) StatusCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, job := range b.jobs {
		counts[job.Status]++
	}
	return counts
}

// CompletedCount returns how many jobs are in a terminal state
func (b Batch) CompletedCount() int {
	completed := 0
	for _, job := range b.jobs {
		if job.Complete() {
			completed++
		}
	}
	return completed
}

// Refresh re-fetches every job and returns a new batch in the original
// order. Any single fetch failure fails the whole refresh.
func (b Batch) Refresh(ctx context.Context, fetch FetchFunc) (Watchable, error) {
	fresh := make([]Job, 0, len(b.jobs))
	for _, job := range b.jobs {
		updated, err := fetch(ctx, job.JobID)
		if err != nil {
			return nil, fmt.Errorf("refreshing job %s: %w", job.JobID, err)
		}
		fresh = append(fresh, updated)
	}
	return Batch{jobs: fresh}, nil
}

func (b Batch) String() string {
	return fmt.Sprintf("Batch of %d jobs", len(b.jobs))
}
