// Package ingest decodes host data formats into values.
//
// Each decoder preserves the integer/double distinction of its source and
// keeps duplicate map keys so emission can reject them, rather than letting a
// host map silently keep the last one.
package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/franks42/canonical-edn/internal/reader"
	"github.com/franks42/canonical-edn/value"
)

// Format names an input notation.
type Format string

const (
	FormatEDN  Format = "edn"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Formats lists the supported input formats.
var Formats = []Format{FormatEDN, FormatJSON, FormatYAML, FormatCUE}

// Options controls decoding.
type Options struct {
	// KeywordizeKeys turns string map keys into keywords. Ignored for EDN,
	// which spells keywords explicitly.
	KeywordizeKeys bool
}

// DefaultOptions keywordizes string keys, matching how structured records
// are usually canonicalized.
var DefaultOptions = Options{KeywordizeKeys: true}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown input format %q: must be one of %v", s, Formats)
}

// FormatForPath infers a format from a file extension, defaulting to EDN.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return FormatEDN
	}
}

// Decode parses data in the given format.
func Decode(format Format, data []byte, opts Options) (value.Value, error) {
	switch format {
	case FormatEDN:
		return reader.Read(data)
	case FormatJSON:
		return DecodeJSON(data, opts)
	case FormatYAML:
		return DecodeYAML(data, opts)
	case FormatCUE:
		return DecodeCUE(data, opts)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func mapKey(s string, opts Options) value.Value {
	if opts.KeywordizeKeys {
		return value.Kw(s)
	}
	return value.String(s)
}

// keyPath is the error path segment for a string key: its canonical text.
func keyPath(s string, opts Options) string {
	if opts.KeywordizeKeys {
		return ":" + s
	}
	return strconv.Quote(s)
}
