// Package apitest runs an in-memory stand-in for the batch-processing API
// so client code can be tested against real HTTP round trips.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sarproc/hyp3-go/pkg/models"
)

// Server is a fake API backed by an in-memory job table. Job statuses can
// be scripted to advance on successive fetches, which is how tests drive
// the poll loop.
type Server struct {
	HTTP *httptest.Server

	mu       sync.Mutex
	jobs     map[string]models.Job
	order    []string
	scripts  map[string][]models.Status
	quota    int
	apiKey   string
	requests int
}

// NewServer starts a fake API server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		jobs:    make(map[string]models.Job),
		scripts: make(map[string][]models.Status),
		quota:   250,
	}

	r := mux.NewRouter()
	r.HandleFunc("/jobs", s.submitJobs).Methods("POST")
	r.HandleFunc("/jobs", s.listJobs).Methods("GET")
	r.HandleFunc("/jobs/{id}", s.getJob).Methods("GET")
	r.HandleFunc("/user", s.userInfo).Methods("GET")

	s.HTTP = httptest.NewServer(s.authenticated(r))
	return s
}

// Close shuts the server down
func (s *Server) Close() {
	s.HTTP.Close()
}

// URL returns the server's base URL
func (s *Server) URL() string {
	return s.HTTP.URL
}

// RequireAPIKey makes the server reject requests without the given bearer key
func (s *Server) RequireAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// AddJob seeds a job into the table
func (s *Server) AddJob(job models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.JobID]; !exists {
		s.order = append(s.order, job.JobID)
	}
	s.jobs[job.JobID] = job
}

// ScriptStatuses queues statuses that successive fetches of the job will
// observe, one per fetch, sticking at the last one.
func (s *Server) ScriptStatuses(jobID string, statuses ...models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[jobID] = statuses
}

// SetQuota sets the remaining quota reported by /user
func (s *Server) SetQuota(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = remaining
}

// Requests returns how many requests the server has handled
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		key := s.apiKey
		s.mu.Unlock()

		if key != "" && r.Header.Get("Authorization") != "Bearer "+key {
			writeError(w, http.StatusUnauthorized, "invalid authorization")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) submitJobs(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Jobs []struct {
			JobType       string                 `json:"job_type"`
			Name          string                 `json:"name"`
			JobParameters map[string]interface{} `json:"job_parameters"`
		} `json:"jobs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	created := make([]models.Job, 0, len(request.Jobs))
	for _, spec := range request.Jobs {
		job := models.Job{
			JobID:         uuid.New().String(),
			Status:        models.StatusPending,
			Name:          spec.Name,
			RequestTime:   time.Now().UTC(),
			JobType:       spec.JobType,
			JobParameters: spec.JobParameters,
		}
		s.jobs[job.JobID] = job
		s.order = append(s.order, job.JobID)
		created = append(created, job)
	}
	s.quota -= len(created)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": created})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	status := r.URL.Query().Get("status_code")

	s.mu.Lock()
	matched := make([]models.Job, 0, len(s.order))
	for _, id := range s.order {
		job := s.jobs[id]
		if name != "" && job.Name != name {
			continue
		}
		if status != "" && string(job.Status) != status {
			continue
		}
		matched = append(matched, job)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": matched})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		if script := s.scripts[id]; len(script) > 0 {
			job.Status = script[0]
			if len(script) > 1 {
				s.scripts[id] = script[1:]
			}
			s.jobs[id] = job
		}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) userInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	remaining := s.quota
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": "apitest",
		"quota": map[string]interface{}{
			"max_jobs_per_month": 250,
			"remaining":          remaining,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
