package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/ingest"
	"github.com/franks42/canonical-edn/profile"
)

// Suite is a named collection of conformance vectors.
type Suite struct {
	// Name uniquely identifies this suite. It also names the golden snapshot.
	Name string `yaml:"name"`

	// Description explains what this suite covers.
	Description string `yaml:"description"`

	// Profile is the default profile for vectors: a built-in name or a path
	// to a profile YAML file relative to the suite file. Empty means rich.
	Profile string `yaml:"profile,omitempty"`

	// Vectors lists the cases to run, in order.
	Vectors []Vector `yaml:"vectors"`

	// baseDir resolves relative profile paths.
	baseDir string
}

// Vector is one input with its expected outcome.
type Vector struct {
	// Name identifies the vector within the suite.
	Name string `yaml:"name"`

	// Format of Input: edn (default), json, yaml or cue.
	Format string `yaml:"format,omitempty"`

	// Input is the source document.
	Input string `yaml:"input"`

	// Profile overrides the suite profile for this vector.
	Profile string `yaml:"profile,omitempty"`

	// StringKeys keeps JSON/YAML/CUE object keys as strings.
	StringKeys bool `yaml:"string_keys,omitempty"`

	// Expect is the required outcome.
	Expect Expect `yaml:"expect"`
}

// Expect holds exactly one of Canonical or Error.
type Expect struct {
	// Canonical is the exact canonical text.
	Canonical *string `yaml:"canonical,omitempty"`

	// SHA256 optionally pins the hex digest of the canonical bytes.
	SHA256 string `yaml:"sha256,omitempty"`

	// Error is the expected failure.
	Error *ExpectError `yaml:"error,omitempty"`
}

// ExpectError matches a canonerr.Error. An empty Path is not checked.
type ExpectError struct {
	Kind canonerr.Kind `yaml:"kind"`
	Path string        `yaml:"path,omitempty"`
}

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return ParseSuite(data, filepath.Dir(path))
}

// ParseSuite parses suite YAML. Relative profile paths resolve against
// baseDir.
func ParseSuite(data []byte, baseDir string) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	suite.baseDir = baseDir

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// resolveProfile returns the effective profile for v.
func (s *Suite) resolveProfile(v Vector) (profile.Profile, error) {
	ref := v.Profile
	if ref == "" {
		ref = s.Profile
	}
	if _, builtin := profile.Lookup(ref); !builtin && ref != "" && !filepath.IsAbs(ref) && s.baseDir != "" {
		ref = filepath.Join(s.baseDir, ref)
	}
	return profile.Resolve(ref)
}

func (v Vector) format() (ingest.Format, error) {
	if v.Format == "" {
		return ingest.FormatEDN, nil
	}
	return ingest.ParseFormat(v.Format)
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Vectors) == 0 {
		return fmt.Errorf("vectors list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Vectors))
	for i, v := range s.Vectors {
		if v.Name == "" {
			return fmt.Errorf("vectors[%d]: name is required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("vectors[%d]: duplicate name %q", i, v.Name)
		}
		seen[v.Name] = true

		if _, err := v.format(); err != nil {
			return fmt.Errorf("vectors[%d]: %w", i, err)
		}
		if err := validateExpect(i, v.Expect); err != nil {
			return err
		}
	}
	return nil
}

func validateExpect(index int, e Expect) error {
	switch {
	case e.Canonical == nil && e.Error == nil:
		return fmt.Errorf("vectors[%d].expect: one of canonical or error is required", index)
	case e.Canonical != nil && e.Error != nil:
		return fmt.Errorf("vectors[%d].expect: canonical and error are mutually exclusive", index)
	case e.Error != nil:
		if !knownKind(e.Error.Kind) {
			return fmt.Errorf("vectors[%d].expect.error: unknown kind %q", index, e.Error.Kind)
		}
		if e.SHA256 != "" {
			return fmt.Errorf("vectors[%d].expect: sha256 requires canonical", index)
		}
	}
	return nil
}

func knownKind(k canonerr.Kind) bool {
	for _, known := range canonerr.Kinds {
		if k == known {
			return true
		}
	}
	return false
}
