// Package errors provides typed domain errors for curve construction.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInstrument indicates an instrument validation error
	TypeInstrument Type = "INSTRUMENT_ERROR"

	// TypeCurve indicates a curve construction error
	TypeCurve Type = "CURVE_ERROR"

	// TypeOutOfBounds indicates a curve query outside the pillar range
	// with extrapolation disabled
	TypeOutOfBounds Type = "OUT_OF_BOUNDS"

	// TypeBootstrap indicates a bootstrap solver failure
	TypeBootstrap Type = "BOOTSTRAP_ERROR"

	// TypeSensitivity indicates a sensitivity computation error
	TypeSensitivity Type = "SENSITIVITY_ERROR"

	// TypeMarketData indicates a market data sourcing error
	TypeMarketData Type = "MARKET_DATA_ERROR"

	// TypeStore indicates a snapshot store error
	TypeStore Type = "STORE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a missing resource
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with numeric context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error. Values are typically the numbers
// involved in the failure (indices, residuals, maturities).
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type. It unwraps nested
// causes so a wrapped bootstrap failure still reports as one.
func IsType(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == t {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Instrument creates an instrument validation error
func Instrument(message string) *Error {
	return New(TypeInstrument, message)
}

// Instrumentf creates a formatted instrument validation error
func Instrumentf(format string, args ...interface{}) *Error {
	return Newf(TypeInstrument, format, args...)
}

// Curve creates a curve construction error
func Curve(message string) *Error {
	return New(TypeCurve, message)
}

// Curvef creates a formatted curve construction error
func Curvef(format string, args ...interface{}) *Error {
	return Newf(TypeCurve, format, args...)
}

// OutOfBounds creates an out-of-range curve query error
func OutOfBounds(t, tMin, tMax float64) *Error {
	return Newf(TypeOutOfBounds, "time %g outside pillar range [%g, %g] and extrapolation is disabled", t, tMin, tMax).
		WithContext("t", t).
		WithContext("t_min", tMin).
		WithContext("t_max", tMax)
}

// Bootstrap creates a bootstrap solver error
func Bootstrap(message string) *Error {
	return New(TypeBootstrap, message)
}

// Bootstrapf creates a formatted bootstrap solver error
func Bootstrapf(format string, args ...interface{}) *Error {
	return Newf(TypeBootstrap, format, args...)
}

// Sensitivity wraps an error from the sensitivity engine
func Sensitivity(message string, cause error) *Error {
	return Wrap(TypeSensitivity, message, cause)
}

// MarketData wraps a market data sourcing error
func MarketData(message string, cause error) *Error {
	return Wrap(TypeMarketData, message, cause)
}

// Store wraps a snapshot store error
func Store(message string, cause error) *Error {
	return Wrap(TypeStore, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}
