package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExporterServesCounters(t *testing.T) {
	exporter := NewClientExporter()
	exporter.RecordAPIRequest("get_job", "ok")
	exporter.RecordAPIRequest("get_job", "ok")
	exporter.RecordAPIRequest("submit_jobs", "error")
	exporter.RecordWatchIteration(3, 5)

	recorder := httptest.NewRecorder()
	exporter.ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body := recorder.Body.String()

	for _, want := range []string{
		`hyp3_client_api_requests_total{operation="get_job",outcome="ok"} 2`,
		`hyp3_client_api_requests_total{operation="submit_jobs",outcome="error"} 1`,
		"hyp3_client_watch_iterations_total 1",
		"hyp3_client_watch_jobs_completed 3",
		"hyp3_client_watch_jobs_total 5",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Missing %q in metrics output", want)
		}
	}

	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/plain") {
		t.Errorf("Unexpected content type: %s", contentType)
	}
}
