// Package profile defines the named variants of the type universe and
// encoding rules.
//
// A profile selects which value kinds are accepted and how text is normalized
// before rendering. The encoding carries no version marker, so any protocol
// signing canonical output must bind the profile name into the signed payload
// itself (see canon.Bind).
package profile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/franks42/canonical-edn/value"
)

// Profile selects the accepted type universe and text normalization.
type Profile struct {
	// Name identifies the profile in diagnostics and profile bindings.
	Name string `yaml:"name" json:"name"`

	// AllowBytes enables the #bytes extension type.
	AllowBytes bool `yaml:"allow_bytes" json:"allow_bytes"`

	// AllowSymbols enables Symbol values.
	AllowSymbols bool `yaml:"allow_symbols" json:"allow_symbols"`

	// NormalizeNFC applies Unicode NFC to string, keyword and symbol text
	// before rendering.
	NormalizeNFC bool `yaml:"normalize_nfc" json:"normalize_nfc"`
}

// Built-in profiles.
var (
	// Portable excludes the optional #bytes extension.
	Portable = Profile{Name: "portable", AllowSymbols: true}

	// Rich accepts the full value universe.
	Rich = Profile{Name: "rich", AllowBytes: true, AllowSymbols: true}

	// Default is used when no profile is given.
	Default = Rich
)

// Builtins lists the built-in profiles by name.
var Builtins = map[string]Profile{
	Portable.Name: Portable,
	Rich.Name:     Rich,
}

// Accepts reports whether values of kind k are part of this profile.
func (p Profile) Accepts(k value.Kind) bool {
	switch k {
	case value.KindBytes:
		return p.AllowBytes
	case value.KindSymbol:
		return p.AllowSymbols
	default:
		return true
	}
}

// Lookup returns the built-in profile with the given name.
func Lookup(name string) (Profile, bool) {
	p, ok := Builtins[name]
	return p, ok
}

// Parse decodes a profile from YAML. Unknown fields are rejected so typos do
// not silently widen or narrow the accepted universe.
func Parse(data []byte) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Profile{}, fmt.Errorf("invalid profile: name is required")
	}
	if _, clash := Builtins[p.Name]; clash {
		return Profile{}, fmt.Errorf("invalid profile: name %q is reserved for a built-in profile", p.Name)
	}
	return p, nil
}

// Load reads and parses a profile YAML file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Parse(data)
}

// Resolve returns the built-in profile named ref, or loads ref as a YAML file
// path. An empty ref yields Default.
func Resolve(ref string) (Profile, error) {
	if ref == "" {
		return Default, nil
	}
	if p, ok := Lookup(ref); ok {
		return p, nil
	}
	return Load(ref)
}
