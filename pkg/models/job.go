package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Status represents the remote status of a job
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Statuses lists every recognized status in a stable order
var Statuses = []Status{StatusPending, StatusRunning, StatusSucceeded, StatusFailed}

// Valid reports whether s is one of the recognized status codes
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions can occur from s
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// FileRef describes an output file of a finished job
type FileRef struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

// Job is a snapshot of one remote unit of work. A refresh produces a new
// Job value; a snapshot is never mutated in place, so past observations
// stay valid.
type Job struct {
	JobID         string                 `json:"job_id"`
	Status        Status                 `json:"status_code"`
	Name          string                 `json:"name,omitempty"`
	RequestTime   time.Time              `json:"request_time,omitempty"`
	JobType       string                 `json:"job_type,omitempty"`
	JobParameters map[string]interface{} `json:"job_parameters,omitempty"`
	// Files and Logs are only populated once the job is terminal.
	Files []FileRef `json:"files,omitempty"`
	Logs  []string  `json:"logs,omitempty"`
}

// ParseError indicates a malformed or incomplete raw job record
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid job record: %s", e.Reason)
}

// ParseJob parses a raw job record as returned by the API. It fails with
// *ParseError if job_id or status_code is absent, or if status_code is not
// a recognized value.
func ParseJob(data []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, &ParseError{Reason: err.Error()}
	}
	if job.JobID == "" {
		return Job{}, &ParseError{Reason: "missing job_id"}
	}
	if job.Status == "" {
		return Job{}, &ParseError{Reason: "missing status_code"}
	}
	if !job.Status.Valid() {
		return Job{}, &ParseError{Reason: fmt.Sprintf("unrecognized status_code %q", job.Status)}
	}
	return job, nil
}

// Complete reports whether the job reached a terminal state
func (j Job) Complete() bool {
	return j.Status.Terminal()
}

// Succeeded reports whether the job finished successfully
func (j Job) Succeeded() bool {
	return j.Status == StatusSucceeded
}

// Failed reports whether the job finished unsuccessfully
func (j Job) Failed() bool {
	return j.Status == StatusFailed
}

// SameJob reports whether two snapshots describe the same logical job.
// Identity is the job ID; the snapshots may differ in status.
func SameJob(a, b Job) bool {
	return a.JobID == b.JobID
}

func (j Job) String() string {
	return fmt.Sprintf("Job %s (%s)", j.JobID, j.Status)
}

// FetchFunc retrieves the current snapshot of a job by ID
type FetchFunc func(ctx context.Context, jobID string) (Job, error)

// Watchable is a poll target: a single Job or a Batch. Refresh returns a
// new snapshot of the same kind; the receiver is left untouched.
type Watchable interface {
	Refresh(ctx context.Context, fetch FetchFunc) (Watchable, error)
	Complete() bool
	CompletedCount() int
	Count() int
}

// Refresh re-fetches the job by its ID
func (j Job) Refresh(ctx context.Context, fetch FetchFunc) (Watchable, error) {
	fresh, err := fetch(ctx, j.JobID)
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

// CompletedCount is 1 if the job is terminal, else 0
func (j Job) CompletedCount() int {
	if j.Complete() {
		return 1
	}
	return 0
}

// Count is always 1 for a single job
func (j Job) Count() int {
	return 1
}
