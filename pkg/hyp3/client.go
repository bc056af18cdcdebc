// Package hyp3 is a client for a HyP3-style batch-processing API: submit
// asynchronous jobs, query them, and poll until they complete.
package hyp3

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sarproc/hyp3-go/pkg/logging"
	"github.com/sarproc/hyp3-go/pkg/models"
)

// Version is reported in the User-Agent header
const Version = "0.1.0"

const (
	// ProdURL is the production API endpoint
	ProdURL = "https://hyp3-api.asf.alaska.edu"
	// TestURL is the test API endpoint
	TestURL = "https://hyp3-test-api.asf.alaska.edu"
)

// MetricsRecorder is an interface for recording client operation metrics
type MetricsRecorder interface {
	RecordAPIRequest(operation, outcome string)
}

// Client manages communication with the batch-processing API
type Client struct {
	apiURL     string
	httpClient *http.Client
	apiKey     string
	userAgent  string
	logger     *logging.Logger
	metrics    MetricsRecorder
}

// NewClient creates a new API client
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "hyp3-go/" + Version,
		logger:    logging.NewLogger(logging.WARN, false),
	}
}

// NewClientWithTLS creates a new API client with TLS support
func NewClientWithTLS(apiURL string, tlsConfig *tls.Config) *Client {
	c := NewClient(apiURL)
	c.httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}
	return c
}

// SetAPIKey sets the API key for authentication
func (c *Client) SetAPIKey(apiKey string) {
	c.apiKey = apiKey
}

// SetLogger replaces the client's logger
func (c *Client) SetLogger(logger *logging.Logger) {
	c.logger = logger
}

// SetMetricsRecorder sets the metrics recorder for the client
func (c *Client) SetMetricsRecorder(recorder MetricsRecorder) {
	c.metrics = recorder
}

// URL returns the configured API endpoint
func (c *Client) URL() string {
	return c.apiURL
}

func (c *Client) record(operation string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordAPIRequest(operation, outcome)
}

// do performs one API request and returns the response body. Non-2xx
// responses become a *ServiceError carrying the remote detail message.
// There is no retry here; transient failures propagate to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
		}
	}

	return data, nil
}

// errorDetail extracts the remote "detail" message from an error body
func errorDetail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(data))
}

// SearchParams filter a job search. Zero values mean "no filter".
type SearchParams struct {
	Name   string
	Start  time.Time
	End    time.Time
	Status models.Status
}

// FindJobs gets a batch of jobs matching the provided search criteria.
// Finding zero jobs is not an error: an empty batch is returned and a
// warning is logged.
func (c *Client) FindJobs(ctx context.Context, params SearchParams) (models.Batch, error) {
	query := url.Values{}
	if params.Name != "" {
		query.Set("name", params.Name)
	}
	if !params.Start.IsZero() {
		query.Set("start", params.Start.UTC().Format(time.RFC3339))
	}
	if !params.End.IsZero() {
		query.Set("end", params.End.UTC().Format(time.RFC3339))
	}
	if params.Status != "" {
		query.Set("status_code", string(params.Status))
	}

	data, err := c.do(ctx, http.MethodGet, "/jobs", query, nil)
	c.record("find_jobs", err)
	if err != nil {
		return models.Batch{}, err
	}

	var response struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return models.Batch{}, &models.ParseError{Reason: err.Error()}
	}

	jobs := make([]models.Job, 0, len(response.Jobs))
	for _, record := range response.Jobs {
		job, err := models.ParseJob(record)
		if err != nil {
			return models.Batch{}, err
		}
		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		c.logger.Warn("found zero jobs")
	}
	return models.NewBatch(jobs...), nil
}

// GetJob gets one job by its ID. An unknown ID yields a *NotFoundError.
func (c *Client) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	data, err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, nil)
	c.record("get_job", err)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return models.Job{}, &NotFoundError{JobID: jobID, Service: svcErr}
		}
		return models.Job{}, err
	}
	return models.ParseJob(data)
}

// MyInfo returns the calling user's account information
func (c *Client) MyInfo(ctx context.Context) (UserInfo, error) {
	data, err := c.do(ctx, http.MethodGet, "/user", nil, nil)
	c.record("user_info", err)
	if err != nil {
		return UserInfo{}, err
	}
	var info UserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return UserInfo{}, fmt.Errorf("failed to parse user info: %w", err)
	}
	return info, nil
}

// CheckQuota returns the number of jobs left in the user's quota
func (c *Client) CheckQuota(ctx context.Context) (int, error) {
	info, err := c.MyInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.Quota.Remaining, nil
}

// UserInfo describes the calling user's account
type UserInfo struct {
	UserID string `json:"user_id"`
	Quota  Quota  `json:"quota"`
}

// Quota tracks the user's monthly job allowance
type Quota struct {
	MaxJobsPerMonth int `json:"max_jobs_per_month"`
	Remaining       int `json:"remaining"`
}
