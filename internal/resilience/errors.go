package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError marks an error as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient failure patterns
// (timeouts, connection resets, locked databases).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped driver errors.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"database is locked",
		"database table is locked",
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"too many connections",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
