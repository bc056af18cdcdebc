package models

import (
	"context"
	"errors"
	"testing"
)

func TestParseJob(t *testing.T) {
	record := []byte(`{
		"job_id": "27324a8f-c9b6-4e00-a167-a5e7f70d5c22",
		"status_code": "RUNNING",
		"name": "test-job",
		"request_time": "2024-05-01T12:00:00Z",
		"job_type": "RTC_GAMMA",
		"job_parameters": {"granules": ["S1A_IW_SLC"]}
	}`)

	job, err := ParseJob(record)
	if err != nil {
		t.Fatalf("Expected record to parse, got error: %v", err)
	}
	if job.JobID != "27324a8f-c9b6-4e00-a167-a5e7f70d5c22" {
		t.Errorf("Unexpected job ID: %s", job.JobID)
	}
	if job.Status != StatusRunning {
		t.Errorf("Expected status RUNNING, got %s", job.Status)
	}
	if job.JobType != "RTC_GAMMA" {
		t.Errorf("Unexpected job type: %s", job.JobType)
	}
	if job.Complete() {
		t.Error("RUNNING job should not be complete")
	}
}

func TestParseJob_TerminalWithFiles(t *testing.T) {
	record := []byte(`{
		"job_id": "abc",
		"status_code": "SUCCEEDED",
		"files": [{"filename": "product.zip", "url": "https://example.com/product.zip", "size": 1024}],
		"logs": ["https://example.com/product.log"]
	}`)

	job, err := ParseJob(record)
	if err != nil {
		t.Fatalf("Expected record to parse, got error: %v", err)
	}
	if !job.Succeeded() {
		t.Error("Expected job to be succeeded")
	}
	if len(job.Files) != 1 || job.Files[0].Filename != "product.zip" {
		t.Errorf("Unexpected files: %+v", job.Files)
	}
}

func TestParseJob_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		record string
	}{
		{"missing job_id", `{"status_code": "PENDING"}`},
		{"missing status_code", `{"job_id": "abc"}`},
		{"unrecognized status_code", `{"job_id": "abc", "status_code": "EXPLODED"}`},
		{"lowercase status_code", `{"job_id": "abc", "status_code": "succeeded"}`},
		{"not json", `]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJob([]byte(tc.record))
			if err == nil {
				t.Fatal("Expected a parse error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestJobPredicates(t *testing.T) {
	cases := []struct {
		status    Status
		complete  bool
		succeeded bool
		failed    bool
	}{
		{StatusPending, false, false, false},
		{StatusRunning, false, false, false},
		{StatusSucceeded, true, true, false},
		{StatusFailed, true, false, true},
	}

	for _, tc := range cases {
		job := Job{JobID: "abc", Status: tc.status}
		if job.Complete() != tc.complete {
			t.Errorf("%s: Complete() = %v, want %v", tc.status, job.Complete(), tc.complete)
		}
		if job.Succeeded() != tc.succeeded {
			t.Errorf("%s: Succeeded() = %v, want %v", tc.status, job.Succeeded(), tc.succeeded)
		}
		if job.Failed() != tc.failed {
			t.Errorf("%s: Failed() = %v, want %v", tc.status, job.Failed(), tc.failed)
		}
	}
}

func TestSameJob(t *testing.T) {
	before := Job{JobID: "abc", Status: StatusRunning}
	after := Job{JobID: "abc", Status: StatusSucceeded}
	other := Job{JobID: "def", Status: StatusSucceeded}

	if !SameJob(before, after) {
		t.Error("Snapshots with the same ID should be the same logical job")
	}
	if SameJob(before, other) {
		t.Error("Different IDs should not be the same logical job")
	}
}

func TestJobRefresh_SnapshotNotMutated(t *testing.T) {
	original := Job{JobID: "abc", Status: StatusRunning}
	fetch := func(ctx context.Context, jobID string) (Job, error) {
		return Job{JobID: jobID, Status: StatusSucceeded}, nil
	}

	refreshed, err := original.Refresh(context.Background(), fetch)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if original.Status != StatusRunning {
		t.Error("Refresh must not mutate the original snapshot")
	}
	job, ok := refreshed.(Job)
	if !ok {
		t.Fatalf("Refreshing a Job should yield a Job, got %T", refreshed)
	}
	if job.Status != StatusSucceeded {
		t.Errorf("Expected refreshed status SUCCEEDED, got %s", job.Status)
	}
}
