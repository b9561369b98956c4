// Package errors provides the typed errors used throughout tillsync.
// Every failure that reaches the user is one of these types, so callers can
// check categories programmatically with errors.Is while still getting a
// displayable message.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are aliases for the standard library equivalents so callers
// don't need a second errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the tillsync system.
var (
	// ErrParse indicates a source document violated a structural assumption.
	ErrParse = errors.New("parse failed")

	// ErrUnresolvedProduct indicates a purchase name unknown to the catalog.
	// Recoverable: the reconciliation loop prompts for a catalog edit.
	ErrUnresolvedProduct = errors.New("product not in catalog")

	// ErrNoConversion indicates no applicable unit conversion was found.
	ErrNoConversion = errors.New("no unit conversion")

	// ErrSubmission indicates the catalog rejected a purchase write.
	ErrSubmission = errors.New("purchase submission rejected")

	// ErrConfig indicates missing or invalid configuration.
	ErrConfig = errors.New("configuration invalid")

	// ErrCanceled indicates a run was aborted before completion, e.g. the
	// prompt input ended without an operator acknowledgment.
	ErrCanceled = errors.New("operation canceled")
)

// ParseError represents a malformed or structurally unexpected source
// document. Fatal: the run aborts before any catalog mutation.
type ParseError struct {
	Format  string // "mime", "html", "json", "pdf-text"
	Source  string // file name or store id, when known
	Line    int    // 1-based line number for line-oriented sources
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s %s line %d: %s", e.Format, e.Source, e.Line, e.Message)
	}
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NewParseError creates a new ParseError.
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{Format: format, Source: source, Message: message, Err: err}
}

// UnresolvedProductError reports purchase names absent from the catalog's
// alias table. The reconciliation loop turns this into a human prompt rather
// than a failure.
type UnresolvedProductError struct {
	Names []string
}

// Error implements the error interface.
func (e *UnresolvedProductError) Error() string {
	return fmt.Sprintf("%d products not in catalog: %v", len(e.Names), e.Names)
}

// Is implements errors.Is support.
func (e *UnresolvedProductError) Is(target error) bool { return target == ErrUnresolvedProduct }

// UnitConversionError reports that no conversion factor exists between a
// purchase unit and a stock unit for a product. Fatal.
type UnitConversionError struct {
	FromUnitID int
	ToUnitID   int
	ProductID  int
}

// Error implements the error interface.
func (e *UnitConversionError) Error() string {
	return fmt.Sprintf("no conversion found from unit %d to unit %d for product %d",
		e.FromUnitID, e.ToUnitID, e.ProductID)
}

// Is implements errors.Is support.
func (e *UnitConversionError) Is(target error) bool { return target == ErrNoConversion }

// SubmissionError reports a rejected purchase write. Submissions are
// sequential and not rolled back, so it also records how many items of the
// batch were already committed before the failure.
type SubmissionError struct {
	Item       string // purchase name of the failing item
	StatusCode int
	Submitted  int // items successfully recorded before this one
	Err        error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submitting %q failed (status %d); %d earlier items were already recorded and are not rolled back",
			e.Item, e.StatusCode, e.Submitted)
	}
	return fmt.Sprintf("submitting %q failed; %d earlier items were already recorded and are not rolled back",
		e.Item, e.Submitted)
}

// Unwrap implements errors.Unwrap.
func (e *SubmissionError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

// ConfigError represents a configuration error, raised before any network
// call is made.
type ConfigError struct {
	Key     string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string, err error) *ConfigError {
	return &ConfigError{Key: key, Message: message, Err: err}
}

// APIError represents a failed call to the catalog API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog API error at %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog API error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error { return e.Err }

// Helper functions for error checking

// IsParse checks if an error is a parse error.
func IsParse(err error) bool { return errors.Is(err, ErrParse) }

// IsUnresolvedProduct checks if an error reports unknown products.
func IsUnresolvedProduct(err error) bool { return errors.Is(err, ErrUnresolvedProduct) }

// IsNoConversion checks if an error is a unit conversion failure.
func IsNoConversion(err error) bool { return errors.Is(err, ErrNoConversion) }

// IsSubmission checks if an error is a rejected purchase write.
func IsSubmission(err error) bool { return errors.Is(err, ErrSubmission) }

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool { return errors.Is(err, ErrConfig) }

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError.
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// WrapAPI wraps an error as an APIError.
func WrapAPI(endpoint string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: err.Error(), Err: err}
}
