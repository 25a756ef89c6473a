// Package canonerr defines the structured errors raised while canonicalizing.
//
// Every failure is fatal to the call that produced it. Callers branch on Kind
// (via errors.As or the Is/KindOf helpers) rather than matching error strings;
// Message is for humans and may evolve.
package canonerr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the category of a canonicalization failure.
type Kind string

const (
	// KindUnsupportedType indicates a value outside the closed value universe,
	// or one the active profile does not accept.
	KindUnsupportedType Kind = "UnsupportedType"

	// KindInvalidNumber indicates a NaN or infinite double.
	KindInvalidNumber Kind = "InvalidNumber"

	// KindOutOfRange indicates an integer outside signed 64-bit bounds.
	KindOutOfRange Kind = "OutOfRange"

	// KindDuplicateKey indicates two map keys with the same canonical form.
	KindDuplicateKey Kind = "DuplicateKey"

	// KindDuplicateElement indicates two set elements with the same canonical form.
	KindDuplicateElement Kind = "DuplicateElement"

	// KindInvalidUnicode indicates an unpaired surrogate or malformed UTF-8.
	KindInvalidUnicode Kind = "InvalidUnicode"

	// KindInvalidTagForm indicates a malformed extension-type payload.
	KindInvalidTagForm Kind = "InvalidTagForm"
)

// Kinds lists every error kind in declaration order.
var Kinds = []Kind{
	KindUnsupportedType,
	KindInvalidNumber,
	KindOutOfRange,
	KindDuplicateKey,
	KindDuplicateElement,
	KindInvalidUnicode,
	KindInvalidTagForm,
}

// Path locates a value inside the structure being canonicalized.
// Segments are int indices (sequence position, or sorted position inside a
// set or map) or strings holding the canonical text of a map key.
type Path []any

// String renders the path in vector notation, e.g. [:a 0 "x"].
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, seg := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s := seg.(type) {
		case int:
			sb.WriteString(strconv.Itoa(s))
		case string:
			sb.WriteString(s)
		default:
			fmt.Fprint(&sb, s)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// Error is the structured error returned by every canonicalization component.
type Error struct {
	// Kind is the stable discriminator.
	Kind Kind

	// Value is the offending value (a value.Value or a host value).
	Value any

	// Path locates Value within the top-level input. Empty for the root.
	Path Path

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithPrefix returns err with seg prepended to its path when err is a *Error.
// Other errors are returned unchanged. The receiver is copied, never mutated.
func WithPrefix(err error, seg any) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Path = make(Path, 0, len(e.Path)+1)
	cp.Path = append(cp.Path, seg)
	cp.Path = append(cp.Path, e.Path...)
	return &cp
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of a structured error, or "" for other errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UnsupportedType creates an error for a value outside the supported universe.
func UnsupportedType(v any, format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedType, Value: v, Message: fmt.Sprintf(format, args...)}
}

// InvalidNumber creates an error for a NaN or infinite double.
func InvalidNumber(v any) *Error {
	return &Error{Kind: KindInvalidNumber, Value: v, Message: fmt.Sprintf("%v is not a finite number", v)}
}

// OutOfRange creates an error for an integer outside int64 bounds.
func OutOfRange(v any) *Error {
	return &Error{Kind: KindOutOfRange, Value: v, Message: fmt.Sprintf("integer %v exceeds signed 64-bit range", v)}
}

// DuplicateKey creates an error for a repeated map key. canonical is the
// shared canonical text of the colliding keys.
func DuplicateKey(v any, canonical string) *Error {
	return &Error{Kind: KindDuplicateKey, Value: v, Message: "duplicate map key " + canonical}
}

// DuplicateElement creates an error for a repeated set element.
func DuplicateElement(v any, canonical string) *Error {
	return &Error{Kind: KindDuplicateElement, Value: v, Message: "duplicate set element " + canonical}
}

// InvalidUnicode creates an error for text that is not a sequence of Unicode
// scalar values.
func InvalidUnicode(v any, offset int) *Error {
	return &Error{Kind: KindInvalidUnicode, Value: v, Message: fmt.Sprintf("invalid UTF-8 or unpaired surrogate at byte %d", offset)}
}

// InvalidTagForm creates an error for a malformed extension-type payload.
func InvalidTagForm(v any, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTagForm, Value: v, Message: fmt.Sprintf(format, args...)}
}
