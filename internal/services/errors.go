package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalService marks failures returned by a remote collaborator.
	ErrExternalService = errors.New("external service error")
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or invalid configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that returned no result.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks calls that exceeded their deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures expected to succeed on retry.
	ErrTransient = errors.New("transient failure")
	// ErrInsufficientCredits marks a metered operation rejected for balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a classified error is worth retrying with the
// same input. Validation, configuration, not-found, and credit failures are
// terminal; everything else is assumed transient.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientCredits):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
