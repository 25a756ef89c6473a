package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/value"
)

// DecodeJSON parses a single JSON document token by token.
//
// Numbers without a fraction or exponent become Int (OutOfRange when they do
// not fit int64); all others become Double. Object members are kept in source
// order including repeats. Invalid UTF-8 and unpaired surrogate escapes are
// InvalidUnicode.
func DecodeJSON(data []byte, opts Options) (value.Value, error) {
	if err := checkJSONText(data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec, opts)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("invalid JSON: trailing data")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, opts Options) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return value.Nil{}, nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		return jsonNumber(t)
	case json.Delim:
		switch t {
		case '[':
			var out value.Vector
			for i := 0; dec.More(); i++ {
				elem, err := decodeJSONValue(dec, opts)
				if err != nil {
					return nil, canonerr.WithPrefix(err, i)
				}
				out = append(out, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("invalid JSON: %w", err)
			}
			if out == nil {
				out = value.Vector{}
			}
			return out, nil
		case '{':
			out := value.Map{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("invalid JSON: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid JSON: object key %v is not a string", keyTok)
				}
				val, err := decodeJSONValue(dec, opts)
				if err != nil {
					return nil, canonerr.WithPrefix(err, keyPath(key, opts))
				}
				out = append(out, value.Entry{Key: mapKey(key, opts), Val: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("invalid JSON: %w", err)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("invalid JSON: unexpected token %v", tok)
}

func jsonNumber(n json.Number) (value.Value, error) {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("invalid JSON number %s: %w", s, err)
		}
		return value.Double(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, canonerr.OutOfRange(s)
		}
		return nil, fmt.Errorf("invalid JSON number %s: %w", s, err)
	}
	return value.Int(i), nil
}

// checkJSONText rejects text that encoding/json would silently replace with
// U+FFFD: invalid UTF-8 anywhere in the document and \u escapes inside
// strings that do not form a Unicode scalar value.
func checkJSONText(data []byte) error {
	if off := value.InvalidTextOffset(string(data)); off >= 0 {
		return canonerr.InvalidUnicode(data[off], off)
	}

	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			inString = c == '"'
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			r, ok := hexEscape(data, i)
			if !ok || !utf16.IsSurrogate(r) {
				i++
				continue
			}
			if lo, ok := hexEscape(data, i+6); r < 0xdc00 && ok && lo >= 0xdc00 && lo <= 0xdfff {
				i += 11
				continue
			}
			return canonerr.InvalidUnicode(string(data[i:i+6]), i)
		}
	}
	return nil
}

// hexEscape decodes a \uXXXX escape starting at data[i].
func hexEscape(data []byte, i int) (rune, bool) {
	if i+6 > len(data) || data[i] != '\\' || data[i+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(string(data[i+2:i+6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
