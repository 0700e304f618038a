/*
errors.go - Centralized error types for the leave scheduling core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborating layers (API, stores) wrap these errors with transport or
  persistence context.

ERROR CATEGORIES:
  1. Validation errors - caller-supplied data is malformed
  2. Concurrency errors - optimistic version check failed at commit
  3. Lookup errors - referenced request no longer exists
  4. Configuration errors - fleet sizing not usable; fatal at startup

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, leave.ErrVersionConflict) {
        // refresh snapshot and re-validate
    }

SEE ALSO:
  - reschedule.go: distinguishes validation rejection from commit failure
  - store.go: store implementations return these sentinels
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all caller-input failures.
	ErrValidation = errors.New("validation failed")

	// ErrVersionConflict is returned when an optimistic version check detects
	// a concurrent modification at commit time.
	ErrVersionConflict = errors.New("concurrent modification detected")

	// ErrNotFound is returned when a referenced leave request doesn't exist.
	ErrNotFound = errors.New("leave request not found")

	// ErrConfiguration indicates unusable fleet sizing. Fatal at startup,
	// never something a single evaluation should recover from.
	ErrConfiguration = errors.New("invalid fleet configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a specific malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigurationError reports why the fleet configuration is unusable.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid fleet configuration: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the operation might succeed against a refreshed
// snapshot.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing request.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
