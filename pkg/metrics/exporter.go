// Package metrics exposes client-side operation counters in Prometheus
// text format, for long-running watch sessions that want observability.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ClientExporter records and exports metrics for API client operations
type ClientExporter struct {
	startTime time.Time

	mu              sync.RWMutex
	apiRequests     map[string]int64 // "operation|outcome" -> count
	watchIterations int64
	lastCompleted   int
	lastTotal       int
}

// NewClientExporter creates a new exporter
func NewClientExporter() *ClientExporter {
	return &ClientExporter{
		startTime:   time.Now(),
		apiRequests: make(map[string]int64),
	}
}

// RecordAPIRequest counts one API call by operation and outcome
func (e *ClientExporter) RecordAPIRequest(operation, outcome string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apiRequests[operation+"|"+outcome]++
}

// RecordWatchIteration counts one poll-loop iteration and remembers the
// latest progress observation
func (e *ClientExporter) RecordWatchIteration(completed, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watchIterations++
	e.lastCompleted = completed
	e.lastTotal = total
}

// ServeHTTP serves Prometheus-compatible metrics
func (e *ClientExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	e.mu.RLock()
	requests := make(map[string]int64, len(e.apiRequests))
	for k, v := range e.apiRequests {
		requests[k] = v
	}
	iterations := e.watchIterations
	completed := e.lastCompleted
	total := e.lastTotal
	e.mu.RUnlock()

	fmt.Fprintf(w, "# HELP hyp3_client_uptime_seconds Time since the client exporter started\n")
	fmt.Fprintf(w, "# TYPE hyp3_client_uptime_seconds gauge\n")
	fmt.Fprintf(w, "hyp3_client_uptime_seconds %d\n", int64(time.Since(e.startTime).Seconds()))

	fmt.Fprintf(w, "\n# HELP hyp3_client_api_requests_total API requests by operation and outcome\n")
	fmt.Fprintf(w, "# TYPE hyp3_client_api_requests_total counter\n")
	keys := make([]string, 0, len(requests))
	for k := range requests {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		operation, outcome, _ := strings.Cut(k, "|")
		fmt.Fprintf(w, "hyp3_client_api_requests_total{operation=%q,outcome=%q} %d\n", operation, outcome, requests[k])
	}

	fmt.Fprintf(w, "\n# HELP hyp3_client_watch_iterations_total Poll-loop iterations performed\n")
	fmt.Fprintf(w, "# TYPE hyp3_client_watch_iterations_total counter\n")
	fmt.Fprintf(w, "hyp3_client_watch_iterations_total %d\n", iterations)

	fmt.Fprintf(w, "\n# HELP hyp3_client_watch_jobs_completed Jobs complete in the last observation\n")
	fmt.Fprintf(w, "# TYPE hyp3_client_watch_jobs_completed gauge\n")
	fmt.Fprintf(w, "hyp3_client_watch_jobs_completed %d\n", completed)

	fmt.Fprintf(w, "\n# HELP hyp3_client_watch_jobs_total Jobs being watched in the last observation\n")
	fmt.Fprintf(w, "# TYPE hyp3_client_watch_jobs_total gauge\n")
	fmt.Fprintf(w, "hyp3_client_watch_jobs_total %d\n", total)

	// Append metrics from the default Prometheus registry (process and Go
	// runtime collectors) so one endpoint serves everything.
	fmt.Fprintf(w, "\n")
	families, err := promclient.DefaultGatherer.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}
	w.Write(buf.Bytes())
}
