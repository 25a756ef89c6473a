package emit

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/franks42/canonical-edn/value"
)

// Normalize returns v with the profile's text normalization applied to every
// string, keyword and symbol, so that sets and maps rank on the text that will
// be written. Without NormalizeNFC it returns v unchanged. Text that is not
// valid UTF-8 is left alone for the renderer to reject.
func (e *Emitter) Normalize(v value.Value) value.Value {
	if !e.profile.NormalizeNFC {
		return v
	}
	return normalizeNFC(v)
}

func normalizeNFC(v value.Value) value.Value {
	switch x := v.(type) {
	case value.String:
		return value.String(nfc(string(x)))
	case value.Keyword:
		return value.Keyword{Namespace: nfc(x.Namespace), Name: nfc(x.Name)}
	case value.Symbol:
		return value.Symbol{Namespace: nfc(x.Namespace), Name: nfc(x.Name)}
	case value.List:
		return value.List(normalizeAll(x))
	case value.Vector:
		return value.Vector(normalizeAll(x))
	case value.Set:
		return value.Set(normalizeAll(x))
	case value.Map:
		out := make(value.Map, len(x))
		for i, entry := range x {
			out[i] = value.Entry{Key: normalizeNFC(entry.Key), Val: normalizeNFC(entry.Val)}
		}
		return out
	default:
		return v
	}
}

func normalizeAll(elems []value.Value) []value.Value {
	if elems == nil {
		return nil
	}
	out := make([]value.Value, len(elems))
	for i, el := range elems {
		out[i] = normalizeNFC(el)
	}
	return out
}

func nfc(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	return norm.NFC.String(s)
}
