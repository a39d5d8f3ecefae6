package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/meenmo/curvelib/errors"
)

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.Instrumentf("instrument %d: rate %g out of range", 3, -0.5)
	msg := err.Error()
	if !strings.Contains(msg, "INSTRUMENT_ERROR") {
		t.Fatalf("message missing type: %q", msg)
	}
	if !strings.Contains(msg, "instrument 3") {
		t.Fatalf("message missing detail: %q", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := errors.MarketData("fetch quotes", cause)
	if !stderrors.Is(err, cause) {
		t.Fatalf("wrapped cause not reachable via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Fatalf("Unwrap returned %v, want %v", err.Unwrap(), cause)
	}
}

func TestIsTypeUnwrapsNestedErrors(t *testing.T) {
	t.Parallel()

	inner := errors.Bootstrap("newton did not converge").
		WithContext("instrument_index", 2).
		WithContext("residual", 1.3e-9)
	outer := fmt.Errorf("building JPY curve: %w", inner)

	if !errors.IsType(outer, errors.TypeBootstrap) {
		t.Fatalf("IsType failed to find bootstrap error through wrapping")
	}
	if errors.IsType(outer, errors.TypeCurve) {
		t.Fatalf("IsType matched wrong type")
	}
	if errors.IsType(nil, errors.TypeBootstrap) {
		t.Fatalf("IsType matched nil error")
	}
}

func TestOutOfBoundsContext(t *testing.T) {
	t.Parallel()

	err := errors.OutOfBounds(12.5, 0.25, 10)
	if err.Type != errors.TypeOutOfBounds {
		t.Fatalf("wrong type: %s", err.Type)
	}
	if got := err.Context["t"]; got != 12.5 {
		t.Fatalf("context t = %v, want 12.5", got)
	}
	if !strings.Contains(err.Error(), "extrapolation is disabled") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	err := errors.NotFound("snapshot", "jpy-ois-2026-08-21")
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %s", err.Type)
	}
}
