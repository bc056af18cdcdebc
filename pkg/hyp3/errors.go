package hyp3

import "fmt"

// ServiceError is a transport or HTTP failure reported by the remote API.
// Detail carries the remote-provided error message when one was available.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// NotFoundError reports an unknown job ID. It unwraps to the underlying
// *ServiceError so callers can match either type.
type NotFoundError struct {
	JobID   string
	Service *ServiceError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %s not found", e.JobID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Service
}
