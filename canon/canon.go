// Package canon canonicalizes values into byte-exact EDN text suitable for
// signing, verification, and content addressing.
//
// Every entry point accepts either a value.Value or a plain Go value that
// value.FromGo understands, plus a profile selecting the accepted type
// universe. Output is a pure function of (input, profile): no state is shared
// between calls and every function is safe for concurrent use.
//
// The text carries no version marker. Protocols that sign canonical bytes
// must bind the profile name into the signed payload themselves; Bind builds
// the conventional envelope for that.
package canon

import (
	"bytes"
	"errors"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/emit"
	"github.com/franks42/canonical-edn/internal/reader"
	"github.com/franks42/canonical-edn/internal/validate"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Envelope keys used by Bind.
var (
	ProfileKey = value.NsKw("canonical-edn", "profile")
	ValueKey   = value.NsKw("canonical-edn", "value")
)

// Bytes returns the canonical UTF-8 encoding of x under p.
func Bytes(x any, p profile.Profile) ([]byte, error) {
	v, err := value.FromGo(x)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := emit.Emit(&buf, v, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the canonical text of x under p.
func String(x any, p profile.Profile) (string, error) {
	v, err := value.FromGo(x)
	if err != nil {
		return "", err
	}
	return emit.String(v, p)
}

// MustString is like String but panics on error.
// Use only in tests or when the input is known to be valid.
func MustString(x any, p profile.Profile) string {
	s, err := String(x, p)
	if err != nil {
		panic(err)
	}
	return s
}

// IsValid reports whether x canonicalizes under p.
func IsValid(x any, p profile.Profile) bool {
	return Explain(x, p) == nil
}

// Explain returns the first violation in x under p, or nil when x is valid.
// The violation is the same one Bytes would fail with.
func Explain(x any, p profile.Profile) *canonerr.Error {
	v, err := value.FromGo(x)
	if err != nil {
		return asCanonError(err)
	}
	return validate.Explain(v, p)
}

// AssertValid returns the first violation in x as an error, or nil.
func AssertValid(x any, p profile.Profile) error {
	if ce := Explain(x, p); ce != nil {
		return ce
	}
	return nil
}

// IsCanonicalForm reports whether text reads as a single value whose
// canonical rendering under p is exactly text.
func IsCanonicalForm(text string, p profile.Profile) bool {
	v, err := reader.ReadString(text)
	if err != nil {
		return false
	}
	out, err := emit.String(v, p)
	return err == nil && out == text
}

// Bind wraps x in the profile-binding envelope
// {:canonical-edn/profile "<name>" :canonical-edn/value x}.
func Bind(x any, p profile.Profile) (value.Map, error) {
	v, err := value.FromGo(x)
	if err != nil {
		return nil, err
	}
	return value.NewMap(
		value.E(ProfileKey, value.String(p.Name)),
		value.E(ValueKey, v),
	), nil
}

// BoundBytes returns the canonical bytes of Bind(x, p).
func BoundBytes(x any, p profile.Profile) ([]byte, error) {
	env, err := Bind(x, p)
	if err != nil {
		return nil, err
	}
	return Bytes(env, p)
}

func asCanonError(err error) *canonerr.Error {
	var ce *canonerr.Error
	if errors.As(err, &ce) {
		return ce
	}
	return canonerr.UnsupportedType(nil, "%v", err)
}
