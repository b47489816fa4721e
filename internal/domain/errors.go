package domain

import "fmt"

// Broker error codes. All are terminal, non-retryable classification codes:
// nothing in this layer retries automatically, the next poll tick or a manual
// refresh is the only recovery path.
const (
	ErrCodeAuthFailed    = "AUTH_FAILED"
	ErrCodeNotApplicable = "NOT_APPLICABLE"
	ErrCodeNotConnected  = "NOT_CONNECTED"
	ErrCodeNotSupported  = "NOT_SUPPORTED"
)

// BrokerError is a classified broker failure
type BrokerError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *BrokerError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBrokerError creates a classified broker error
func NewBrokerError(code, format string, args ...interface{}) *BrokerError {
	return &BrokerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode extracts the classification code from an error, or "" if the
// error is not a BrokerError
func ErrorCode(err error) string {
	if be, ok := err.(*BrokerError); ok {
		return be.Code
	}
	return ""
}
