package ottomatch

import "fmt"

// Machine-readable error codes carried in the service error envelope.
const (
	CodeBadRequest           = "bad_request"
	CodeInvalidArgument      = "invalid_argument"
	CodeNotFound             = "not_found"
	CodeUnauthorized         = "unauthorized"
	CodeRateLimited          = "rate_limited"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeSearchUnavailable    = "search_unavailable"
	CodeInternalError        = "internal_error"
)

// APIError is a non-2xx server response. Code is empty when the body
// was not the standard error envelope.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // machine-readable code, e.g. "not_found"
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("ottomatch: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ottomatch: %s (%s, http %d)", e.Message, e.Code, e.Status)
}
