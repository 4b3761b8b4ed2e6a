package invoice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common invoice errors
var (
	// ErrInvoiceNotFound is returned when no invoice matches the requested
	// identifier or invoice number.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrEmptyInvoiceNumber is returned when a lookup is attempted with a blank number.
	ErrEmptyInvoiceNumber = errors.New("invoice number is required")

	// ErrInvalidPaymentAmount is returned for zero or negative payments.
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")

	// ErrPaymentExceedsDue is returned when a payment is larger than the amount still due.
	ErrPaymentExceedsDue = errors.New("payment amount exceeds due amount")

	// ErrValidationFailed is matched by every *ValidationError.
	ErrValidationFailed = errors.New("invoice validation failed")

	// ErrUnknownPreset is returned when a preset name is not in the catalogue.
	ErrUnknownPreset = errors.New("unknown item preset")
)

// ValidationError collects the fields that block an invoice from being saved.
// Keys follow the form field paths: "client.name", "items[0].description".
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	keys := e.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("invoice validation failed: %s", strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidationFailed) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Keys returns the failing field paths in sorted order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PaymentError wraps a rejected payment with the invoice it targeted.
type PaymentError struct {
	// Op is the operation that failed (e.g., "ApplyPayment", "ClearDue").
	Op string

	// InvoiceNumber is the number the payment was addressed to.
	InvoiceNumber string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.InvoiceNumber != "" {
		return fmt.Sprintf("invoice: %s failed (invoice: %s): %v", e.Op, e.InvoiceNumber, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError.
func NewPaymentError(op, invoiceNumber string, err error) *PaymentError {
	return &PaymentError{
		Op:            op,
		InvoiceNumber: invoiceNumber,
		Err:           err,
	}
}
