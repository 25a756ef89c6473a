package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/ingest"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Runner executes suites.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner that logs vector outcomes at debug level.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Run executes suite with logging suppressed.
func Run(suite *Suite) *Result {
	return NewRunner(nil).Run(suite)
}

// Run executes every vector in order. A failing vector never stops the run.
func (r *Runner) Run(suite *Suite) *Result {
	result := NewResult(suite.Name)
	for _, v := range suite.Vectors {
		vr := r.runVector(suite, v)
		r.logger.Debug("vector finished",
			"suite", suite.Name,
			"vector", v.Name,
			"pass", vr.Pass,
		)
		result.Add(vr)
	}
	return result
}

// outcome is what canonicalizing one input produced.
type outcome struct {
	canonical string
	err       *canonerr.Error
}

func (r *Runner) runVector(suite *Suite, v Vector) VectorResult {
	vr := VectorResult{Name: v.Name, Pass: true}

	p, err := suite.resolveProfile(v)
	if err != nil {
		vr.AddError(fmt.Sprintf("profile: %v", err))
		return vr
	}
	vr.Profile = p.Name

	val, out, err := canonicalize(v, p)
	if err != nil {
		vr.AddError(err.Error())
		return vr
	}
	vr.Canonical = out.canonical
	if out.err != nil {
		vr.ErrorKind = string(out.err.Kind)
		vr.ErrorPath = out.err.Path.String()
	}

	checks := []error{checkExpect(v.Expect, out)}
	if val != nil {
		checks = append(checks,
			checkIdempotent(out, p),
			checkValidatorAgrees(val, p, out),
		)
	}
	for _, err := range checks {
		if err != nil {
			vr.AddError(err.Error())
		}
	}
	return vr
}

// canonicalize decodes and renders the vector input. Structured errors from
// either step become part of the outcome; anything else (syntax errors, bad
// format names) is returned as err. val is nil when decoding failed.
func canonicalize(v Vector, p profile.Profile) (value.Value, outcome, error) {
	format, err := v.format()
	if err != nil {
		return nil, outcome{}, err
	}

	val, err := ingest.Decode(format, []byte(v.Input), ingest.Options{KeywordizeKeys: !v.StringKeys})
	if err != nil {
		var ce *canonerr.Error
		if errors.As(err, &ce) {
			return nil, outcome{err: ce}, nil
		}
		return nil, outcome{}, fmt.Errorf("decode: %w", err)
	}

	text, err := canon.String(val, p)
	if err != nil {
		var ce *canonerr.Error
		if errors.As(err, &ce) {
			return val, outcome{err: ce}, nil
		}
		return val, outcome{}, fmt.Errorf("canonicalize: %w", err)
	}
	return val, outcome{canonical: text}, nil
}
