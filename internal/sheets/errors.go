package sheets

import (
	"errors"
	"fmt"
)

// ErrMirrorNotConfigured is returned when a mirror is requested without its
// endpoint or spreadsheet.
var ErrMirrorNotConfigured = errors.New("spreadsheet mirror not configured")

// MirrorError reports a failed push to a spreadsheet. Local data is never
// affected by it.
type MirrorError struct {
	// Op is the operation that failed (e.g., "Replace").
	Op string

	// StatusCode is the HTTP status when the remote side answered, 0 otherwise.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *MirrorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sheets: %s failed (status: %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sheets: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *MirrorError) Unwrap() error {
	return e.Err
}

// NewMirrorError creates a new MirrorError.
func NewMirrorError(op string, statusCode int, err error) *MirrorError {
	return &MirrorError{
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsMirrorError reports whether err is a *MirrorError and returns it.
func IsMirrorError(err error) (*MirrorError, bool) {
	var mirrorErr *MirrorError
	if errors.As(err, &mirrorErr) {
		return mirrorErr, true
	}
	return nil, false
}
