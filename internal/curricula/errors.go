package curricula

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeAnalysis   = "ANALYSIS_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)

const maxErrorMessageLen = 500

// sanitizeError collapses an error into a single log-safe line.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return msg
}
