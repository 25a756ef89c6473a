package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Snapshot renders a result as canonical EDN, so snapshots are themselves
// byte-stable regardless of how the result was assembled.
func Snapshot(r *Result) ([]byte, error) {
	vectors := make(value.Vector, len(r.Vectors))
	for i, v := range r.Vectors {
		entries := []value.Entry{
			value.E(value.Kw("name"), value.String(v.Name)),
			value.E(value.Kw("profile"), value.String(v.Profile)),
			value.E(value.Kw("pass"), value.Bool(v.Pass)),
		}
		if v.ErrorKind != "" {
			entries = append(entries,
				value.E(value.Kw("error"), value.Kw(v.ErrorKind)),
				value.E(value.Kw("path"), value.String(v.ErrorPath)),
			)
		} else {
			entries = append(entries, value.E(value.Kw("canonical"), value.String(v.Canonical)))
		}
		vectors[i] = value.NewMap(entries...)
	}

	return canon.Bytes(value.NewMap(
		value.E(value.Kw("suite"), value.String(r.Suite)),
		value.E(value.Kw("pass"), value.Bool(r.Pass)),
		value.E(value.Kw("vectors"), vectors),
	), profile.Rich)
}

// RunWithGolden executes a suite and compares its snapshot against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result := Run(suite)
	snap, err := Snapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, suite.Name, snap)
	return result, nil
}
