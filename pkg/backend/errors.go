package backend

import "fmt"

// APIError carries the upstream status and message for a failed backend call.
// It satisfies pkg/errors.UpstreamReporter so request logs keep the upstream
// context.
type APIError struct {
	Status   int
	Method   string
	Path     string
	Message  string
	Fallback string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *APIError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.Status
}

func (e *APIError) Endpoint() string {
	if e == nil {
		return ""
	}
	return e.Method + " " + e.Path
}

// UpstreamMessage returns the backend's message field verbatim, or the
// configured fallback when the body carried none.
func (e *APIError) UpstreamMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Fallback
}
