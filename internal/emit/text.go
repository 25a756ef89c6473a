package emit

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/value"
)

const hexDigits = "0123456789abcdef"

// writeString renders a quoted string. Only ", \, newline, carriage return
// and tab get short escapes; remaining C0 controls and DEL use \u00xx;
// everything else, including all non-ASCII text, is written as literal UTF-8.
func (e *Emitter) writeString(buf *bytes.Buffer, v value.Value, s string) error {
	if off := value.InvalidTextOffset(s); off >= 0 {
		return canonerr.InvalidUnicode(v, off)
	}

	buf.WriteByte('"')
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' && c != 0x7f {
			continue
		}
		buf.WriteString(s[last:i])
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		}
		last = i + 1
	}
	buf.WriteString(s[last:])
	buf.WriteByte('"')
	return nil
}

// writeNamed renders [namespace/]name for keywords and symbols after checking
// that both parts read back as the same token.
func (e *Emitter) writeNamed(buf *bytes.Buffer, v value.Value, ns, name string, symbol bool) error {
	for _, part := range []string{ns, name} {
		if off := value.InvalidTextOffset(part); off >= 0 {
			return canonerr.InvalidUnicode(v, off)
		}
	}

	if ns != "" {
		if reason := checkSymbolic(ns, true); reason != "" {
			return canonerr.UnsupportedType(v, "%s namespace %q %s", v.Kind(), ns, reason)
		}
	}
	// A lone "/" is a legal unqualified name.
	if ns != "" || name != "/" {
		if reason := checkSymbolic(name, symbol); reason != "" {
			return canonerr.UnsupportedType(v, "%s name %q %s", v.Kind(), name, reason)
		}
	}
	if symbol && ns == "" && (name == "nil" || name == "true" || name == "false") {
		return canonerr.UnsupportedType(v, "symbol %q would read back as a literal", name)
	}

	if ns != "" {
		buf.WriteString(ns)
		buf.WriteByte('/')
	}
	buf.WriteString(name)
	return nil
}

// checkSymbolic returns a reason why s cannot be spelled as a keyword or
// symbol part, or "". Leading-character rules are stricter for symbols and
// namespaces, which would otherwise read back as numbers or other forms.
func checkSymbolic(s string, leadRules bool) string {
	if s == "" {
		return "is empty"
	}
	if strings.IndexFunc(s, isDelimiter) >= 0 {
		return "contains whitespace or a delimiter"
	}
	first, size := utf8.DecodeRuneInString(s)
	if first == ':' {
		return "starts with ':'"
	}
	if !leadRules {
		return ""
	}
	if unicode.IsDigit(first) || first == '#' || first == '\'' {
		return "starts with a character that cannot begin a symbol"
	}
	if (first == '+' || first == '-' || first == '.') && len(s) > size {
		if second, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsDigit(second) {
			return "would read back as a number"
		}
	}
	return ""
}

func isDelimiter(r rune) bool {
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return true
	}
	switch r {
	case '(', ')', '[', ']', '{', '}', '"', '\\', ';', ',', '/', '@', '^', '`', '~':
		return true
	}
	return false
}
