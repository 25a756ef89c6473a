// Package validate checks a value against the supported type universe
// without producing output.
//
// The walk visits values in the same order emission does (sequence order,
// rank order inside sets and maps), so Explain reports the same first
// violation that canonicalization would fail with. Calling it is never
// required for correctness; emission re-checks everything as it renders.
package validate

import (
	"bytes"
	"errors"
	"math"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/emit"
	"github.com/franks42/canonical-edn/internal/rank"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Validator walks values under one profile.
type Validator struct {
	profile profile.Profile
	emitter *emit.Emitter
}

// New creates a Validator for p.
func New(p profile.Profile) *Validator {
	return &Validator{profile: p, emitter: emit.New(p)}
}

// IsValid reports whether v canonicalizes under p.
func IsValid(v value.Value, p profile.Profile) bool {
	return New(p).Explain(v) == nil
}

// Explain returns the first violation in v under p, or nil.
func Explain(v value.Value, p profile.Profile) *canonerr.Error {
	return New(p).Explain(v)
}

// IsValid reports whether v canonicalizes.
func (c *Validator) IsValid(v value.Value) bool {
	return c.Explain(v) == nil
}

// Explain returns the first violation found depth-first, or nil.
func (c *Validator) Explain(v value.Value) *canonerr.Error {
	err := c.walk(c.emitter.Normalize(v))
	if err == nil {
		return nil
	}
	var ce *canonerr.Error
	if errors.As(err, &ce) {
		return ce
	}
	return canonerr.UnsupportedType(v, "%v", err)
}

func (c *Validator) walk(v value.Value) error {
	if v != nil && !c.profile.Accepts(v.Kind()) {
		return canonerr.UnsupportedType(v, "%s is not accepted by profile %q", v.Kind(), c.profile.Name)
	}

	switch x := v.(type) {
	case nil, value.Nil, value.Bool, value.Int, value.UUID, value.Bytes:
		return nil
	case value.Double:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return canonerr.InvalidNumber(float64(x))
		}
		return nil
	case value.String:
		if off := value.InvalidTextOffset(string(x)); off >= 0 {
			return canonerr.InvalidUnicode(x, off)
		}
		return nil
	case value.Keyword, value.Symbol, value.Inst:
		// Leaf rules (name spelling, instant range) live with the renderer.
		return c.emitter.Emit(&bytes.Buffer{}, x)
	case value.List:
		return c.walkSeq(x)
	case value.Vector:
		return c.walkSeq(x)
	case value.Set:
		return c.walkSet(x)
	case value.Map:
		return c.walkMap(x)
	default:
		return canonerr.UnsupportedType(v, "unsupported type %T", v)
	}
}

func (c *Validator) walkSeq(elems []value.Value) error {
	for i, el := range elems {
		if err := c.walk(el); err != nil {
			return canonerr.WithPrefix(err, i)
		}
	}
	return nil
}

func (c *Validator) walkSet(s value.Set) error {
	seen := make(map[string]struct{}, len(s))
	for i, el := range rank.Sorted(s) {
		if err := c.walk(el); err != nil {
			return canonerr.WithPrefix(err, i)
		}
		text, err := c.emitter.String(el)
		if err != nil {
			return canonerr.WithPrefix(err, i)
		}
		if _, dup := seen[text]; dup {
			return canonerr.WithPrefix(canonerr.DuplicateElement(el, text), i)
		}
		seen[text] = struct{}{}
	}
	return nil
}

func (c *Validator) walkMap(m value.Map) error {
	seen := make(map[string]struct{}, len(m))
	for i, entry := range rank.SortedEntries(m) {
		if err := c.walk(entry.Key); err != nil {
			return canonerr.WithPrefix(err, i)
		}
		key, err := c.emitter.String(entry.Key)
		if err != nil {
			return canonerr.WithPrefix(err, i)
		}
		if _, dup := seen[key]; dup {
			return canonerr.WithPrefix(canonerr.DuplicateKey(entry.Key, key), i)
		}
		seen[key] = struct{}{}

		if err := c.walk(entry.Val); err != nil {
			return canonerr.WithPrefix(err, key)
		}
	}
	return nil
}
