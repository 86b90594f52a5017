package errors

const (
	HttpInternalError     = "internal_error"
	HttpInvalidQueryError = "invalid_query"
	HttpUnknownScreen     = "unknown_screen"
	HttpPrimaryFetchError = "primary_fetch_failed"
	HttpNoSnapshotError   = "no_snapshot"
)

// ErrorResponse is the error response body for query and refresh errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
