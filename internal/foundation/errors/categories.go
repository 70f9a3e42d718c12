package errors

// ErrorCategory classifies an error for exit codes, status codes and
// logging.
type ErrorCategory string

const (
	// Caller input: documents, selections, entity data, request bodies.
	CategoryValidation ErrorCategory = "validation"
	CategoryConfig     ErrorCategory = "config"
	CategoryNotFound   ErrorCategory = "not_found"
	// CategoryConflict is a stale revision on save.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryNetwork covers the event bus and listener sockets.
	CategoryNetwork    ErrorCategory = "network"
	CategoryStorage    ErrorCategory = "storage"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity selects the log level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// RetryStrategy tells callers whether repeating the operation can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext is structured detail attached to an error. It is reported
// as the details of HTTP error payloads.
type ErrorContext map[string]any

// String returns the value of key when it is a string.
func (c ErrorContext) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
