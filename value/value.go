// Package value defines the closed value universe accepted by the
// canonicalizer.
//
// Value is a sealed interface: only the types declared here implement it, so a
// type switch over Value is exhaustive by construction. Host Go values enter the
// universe through FromGo.
package value

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindKeyword
	KindSymbol
	KindList
	KindVector
	KindSet
	KindMap
	KindInst
	KindUUID
	KindBytes
)

var kindNames = [...]string{
	KindNil:     "nil",
	KindBool:    "boolean",
	KindInt:     "integer",
	KindDouble:  "double",
	KindString:  "string",
	KindKeyword: "keyword",
	KindSymbol:  "symbol",
	KindList:    "list",
	KindVector:  "vector",
	KindSet:     "set",
	KindMap:     "map",
	KindInst:    "inst",
	KindUUID:    "uuid",
	KindBytes:   "bytes",
}

// String returns the lowercase label of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsExtension reports whether k is one of the tagged extension types.
func (k Kind) IsExtension() bool {
	return k == KindInst || k == KindUUID || k == KindBytes
}

// Value is a member of the closed value universe.
type Value interface {
	Kind() Kind
	value() // Sealed
}

// KindOf returns the kind of v. A nil interface is treated as Nil.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNil
	}
	return v.Kind()
}

// TypeName returns the diagnostic label for v's kind.
func TypeName(v Value) string {
	return KindOf(v).String()
}

// Nil is the absent value.
type Nil struct{}

func (Nil) Kind() Kind { return KindNil }
func (Nil) value()     {}

// Bool is a boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// Int is a signed 64-bit integer.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

// Double is an IEEE-754 binary64 value. NaN and infinities can be constructed
// but are rejected at canonicalization.
type Double float64

func (Double) Kind() Kind { return KindDouble }
func (Double) value()     {}

// String is a Unicode string held as UTF-8.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Keyword is a symbolic token rendered with a leading colon.
// An empty Namespace means the keyword is unqualified.
type Keyword struct {
	Namespace string
	Name      string
}

func (Keyword) Kind() Kind { return KindKeyword }
func (Keyword) value()     {}

// Symbol has the same shape as Keyword but renders without a sigil.
type Symbol struct {
	Namespace string
	Name      string
}

func (Symbol) Kind() Kind { return KindSymbol }
func (Symbol) value()     {}

// List is an ordered sequence rendered in parentheses.
type List []Value

func (List) Kind() Kind { return KindList }
func (List) value()     {}

// Vector is an ordered sequence rendered in brackets.
type Vector []Value

func (Vector) Kind() Kind { return KindVector }
func (Vector) value()     {}

// Set is an unordered collection. Order of the slice is irrelevant to the
// canonical form; elements must be distinct after canonicalization.
type Set []Value

func (Set) Kind() Kind { return KindSet }
func (Set) value()     {}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key Value
	Val Value
}

// Map is an unordered collection of entries. Held as a slice so that inputs
// carrying duplicate keys survive construction and are rejected at emission.
type Map []Entry

func (Map) Kind() Kind { return KindMap }
func (Map) value()     {}

// Inst is a point in time as an offset from the Unix epoch.
// Nsec must lie in [0, 1e9).
type Inst struct {
	Sec  int64
	Nsec int32
}

func (Inst) Kind() Kind { return KindInst }
func (Inst) value()     {}

// UUID is a 128-bit identifier.
type UUID uuid.UUID

func (UUID) Kind() Kind { return KindUUID }
func (UUID) value()     {}

// Bytes is a raw octet sequence.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (Bytes) value()     {}

// Kw creates an unqualified keyword.
func Kw(name string) Keyword {
	return Keyword{Name: name}
}

// NsKw creates a namespaced keyword.
func NsKw(ns, name string) Keyword {
	return Keyword{Namespace: ns, Name: name}
}

// Sym creates an unqualified symbol.
func Sym(name string) Symbol {
	return Symbol{Name: name}
}

// NsSym creates a namespaced symbol.
func NsSym(ns, name string) Symbol {
	return Symbol{Namespace: ns, Name: name}
}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// NewVector creates a Vector from values.
func NewVector(vals ...Value) Vector {
	return Vector(vals)
}

// NewSet creates a Set from values.
func NewSet(vals ...Value) Set {
	return Set(vals)
}

// E is a shorthand for Entry.
// Example: NewMap(E(Kw("a"), Int(1)), E(Kw("b"), Int(2)))
func E(key, val Value) Entry {
	return Entry{Key: key, Val: val}
}

// NewMap creates a Map from entries.
func NewMap(entries ...Entry) Map {
	return Map(entries)
}

// InstFromTime converts t to an Inst. Location is discarded.
func InstFromTime(t time.Time) Inst {
	return Inst{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}

// Time returns the instant as a UTC time.Time.
func (i Inst) Time() time.Time {
	return time.Unix(i.Sec, int64(i.Nsec)).UTC()
}

// NewUUID wraps a google/uuid value.
func NewUUID(u uuid.UUID) UUID {
	return UUID(u)
}

// ParseUUID parses the textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}
	return UUID(u), nil
}

// MapLike is implemented by record-like host types that want to be
// canonicalized as maps. Type identity is erased; only the entries survive.
type MapLike interface {
	CanonEntries() ([]Entry, error)
}
