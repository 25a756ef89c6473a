package harness

import (
	"fmt"
	"strings"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// AssertionError is returned when a check fails.
type AssertionError struct {
	Check    string // Check name for categorization
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
	return buf.String()
}

func describe(out outcome) string {
	if out.err != nil {
		return fmt.Sprintf("error %s at %s", out.err.Kind, out.err.Path)
	}
	return fmt.Sprintf("%q", out.canonical)
}

// checkExpect compares the outcome with the vector's expectation.
func checkExpect(e Expect, out outcome) error {
	if e.Error != nil {
		want := fmt.Sprintf("error %s", e.Error.Kind)
		if e.Error.Path != "" {
			want += " at " + e.Error.Path
		}
		if out.err == nil || out.err.Kind != e.Error.Kind ||
			(e.Error.Path != "" && out.err.Path.String() != e.Error.Path) {
			return &AssertionError{Check: "expect", Expected: want, Actual: describe(out)}
		}
		return nil
	}

	if out.err != nil || out.canonical != *e.Canonical {
		return &AssertionError{Check: "expect", Expected: fmt.Sprintf("%q", *e.Canonical), Actual: describe(out)}
	}
	if e.SHA256 != "" {
		if got := canon.ContentHash([]byte(out.canonical)); got != e.SHA256 {
			return &AssertionError{Check: "sha256", Expected: e.SHA256, Actual: got}
		}
	}
	return nil
}

// checkIdempotent verifies that successful output is itself canonical.
func checkIdempotent(out outcome, p profile.Profile) error {
	if out.err != nil {
		return nil
	}
	if !canon.IsCanonicalForm(out.canonical, p) {
		return &AssertionError{Check: "idempotence", Expected: "output to re-emit unchanged", Actual: fmt.Sprintf("%q changed", out.canonical)}
	}
	return nil
}

// checkValidatorAgrees verifies that Explain reports the emission outcome.
func checkValidatorAgrees(val value.Value, p profile.Profile, out outcome) error {
	got := canon.Explain(val, p)
	switch {
	case got == nil && out.err == nil:
		return nil
	case got == nil:
		return &AssertionError{Check: "validator", Expected: describe(out), Actual: "valid"}
	case out.err == nil:
		return &AssertionError{Check: "validator", Expected: "valid", Actual: describe(outcome{err: got})}
	case got.Kind != out.err.Kind || got.Path.String() != out.err.Path.String():
		return &AssertionError{Check: "validator", Expected: describe(out), Actual: describe(outcome{err: got})}
	}
	return nil
}
