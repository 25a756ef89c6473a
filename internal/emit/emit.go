// Package emit renders values to canonical text.
//
// Emission is a recursive type dispatch over the closed value universe that
// appends to a single caller-owned buffer. Sets and maps are sorted by rank
// before rendering and rejected when two members share a canonical form. Any
// error aborts the call; the buffer is restored to its length on entry, so no
// partial output is ever observable. Under a normalizing profile the whole
// tree is normalized first so ordering sees the written text.
package emit

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/numfmt"
	"github.com/franks42/canonical-edn/internal/rank"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

// Emitter renders values under one profile. It holds no mutable state and is
// safe for concurrent use.
type Emitter struct {
	profile profile.Profile
	numbers numfmt.Formatter
}

// New creates an Emitter for p using the reference number formatter.
func New(p profile.Profile) *Emitter {
	return &Emitter{profile: p, numbers: numfmt.ECMAScript{}}
}

// Emit appends the canonical text of v to buf under profile p.
func Emit(buf *bytes.Buffer, v value.Value, p profile.Profile) error {
	return New(p).Emit(buf, v)
}

// String returns the canonical text of v under profile p.
func String(v value.Value, p profile.Profile) (string, error) {
	return New(p).String(v)
}

// Emit appends the canonical text of v to buf. On error buf is left as it was
// on entry.
func (e *Emitter) Emit(buf *bytes.Buffer, v value.Value) error {
	start := buf.Len()
	if err := e.emit(buf, e.Normalize(v)); err != nil {
		buf.Truncate(start)
		return err
	}
	return nil
}

// String returns the canonical text of v.
func (e *Emitter) String(v value.Value) (string, error) {
	var buf bytes.Buffer
	if err := e.emit(&buf, e.Normalize(v)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Emitter) emit(buf *bytes.Buffer, v value.Value) error {
	if v != nil && !e.profile.Accepts(v.Kind()) {
		return canonerr.UnsupportedType(v, "%s is not accepted by profile %q", v.Kind(), e.profile.Name)
	}

	switch x := v.(type) {
	case nil, value.Nil:
		buf.WriteString("nil")
	case value.Bool:
		if x {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.Int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case value.Double:
		s, err := e.numbers.FormatDouble(float64(x))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case value.String:
		return e.writeString(buf, x, string(x))
	case value.Keyword:
		buf.WriteByte(':')
		return e.writeNamed(buf, x, x.Namespace, x.Name, false)
	case value.Symbol:
		return e.writeNamed(buf, x, x.Namespace, x.Name, true)
	case value.List:
		return e.emitSeq(buf, "(", ")", x)
	case value.Vector:
		return e.emitSeq(buf, "[", "]", x)
	case value.Set:
		return e.emitSet(buf, x)
	case value.Map:
		return e.emitMap(buf, x)
	case value.Inst:
		return writeInst(buf, x)
	case value.UUID:
		buf.WriteString(`#uuid "`)
		buf.WriteString(uuid.UUID(x).String())
		buf.WriteByte('"')
	case value.Bytes:
		buf.WriteString(`#bytes "`)
		buf.WriteString(hex.EncodeToString(x))
		buf.WriteByte('"')
	default:
		return canonerr.UnsupportedType(v, "unsupported type %T", v)
	}
	return nil
}

func (e *Emitter) emitSeq(buf *bytes.Buffer, open, closer string, elems []value.Value) error {
	buf.WriteString(open)
	for i, el := range elems {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if err := e.emit(buf, el); err != nil {
			return canonerr.WithPrefix(err, i)
		}
	}
	buf.WriteString(closer)
	return nil
}

// emitSet renders elements in rank order. Each element is rendered in place
// and its text compared against those already written.
func (e *Emitter) emitSet(buf *bytes.Buffer, s value.Set) error {
	sorted := rank.Sorted(s)
	seen := make(map[string]struct{}, len(sorted))

	buf.WriteString("#{")
	for i, el := range sorted {
		if i > 0 {
			buf.WriteByte(' ')
		}
		start := buf.Len()
		if err := e.emit(buf, el); err != nil {
			return canonerr.WithPrefix(err, i)
		}
		text := string(buf.Bytes()[start:])
		if _, dup := seen[text]; dup {
			return canonerr.WithPrefix(canonerr.DuplicateElement(el, text), i)
		}
		seen[text] = struct{}{}
	}
	buf.WriteByte('}')
	return nil
}

// emitMap renders entries in key rank order. Errors inside a value are
// located by the canonical text of its key; errors inside a key by the
// entry's sorted position.
func (e *Emitter) emitMap(buf *bytes.Buffer, m value.Map) error {
	sorted := rank.SortedEntries(m)
	seen := make(map[string]struct{}, len(sorted))

	buf.WriteByte('{')
	for i, entry := range sorted {
		if i > 0 {
			buf.WriteByte(' ')
		}
		start := buf.Len()
		if err := e.emit(buf, entry.Key); err != nil {
			return canonerr.WithPrefix(err, i)
		}
		key := string(buf.Bytes()[start:])
		if _, dup := seen[key]; dup {
			return canonerr.WithPrefix(canonerr.DuplicateKey(entry.Key, key), i)
		}
		seen[key] = struct{}{}

		buf.WriteByte(' ')
		if err := e.emit(buf, entry.Val); err != nil {
			return canonerr.WithPrefix(err, key)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeInst renders #inst "YYYY-MM-DDTHH:MM:SS.nnnnnnnnnZ" from the epoch
// offset. Years outside 0000-9999 have no RFC 3339 spelling.
func writeInst(buf *bytes.Buffer, x value.Inst) error {
	if x.Nsec < 0 || x.Nsec >= 1e9 {
		return canonerr.InvalidTagForm(x, "inst nanoseconds %d out of range [0, 1e9)", x.Nsec)
	}
	t := time.Unix(x.Sec, 0).UTC()
	year, month, day := t.Date()
	if year < 0 || year > 9999 {
		return canonerr.InvalidTagForm(x, "inst year %d outside 0000-9999", year)
	}
	hour, minute, sec := t.Clock()

	buf.WriteString(`#inst "`)
	writePadded(buf, year, 4)
	buf.WriteByte('-')
	writePadded(buf, int(month), 2)
	buf.WriteByte('-')
	writePadded(buf, day, 2)
	buf.WriteByte('T')
	writePadded(buf, hour, 2)
	buf.WriteByte(':')
	writePadded(buf, minute, 2)
	buf.WriteByte(':')
	writePadded(buf, sec, 2)
	buf.WriteByte('.')
	writePadded(buf, int(x.Nsec), 9)
	buf.WriteString(`Z"`)
	return nil
}

// writePadded writes a non-negative n zero-padded to width digits.
func writePadded(buf *bytes.Buffer, n, width int) {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		buf.WriteByte('0')
	}
	buf.WriteString(s)
}
