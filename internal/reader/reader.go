// Package reader parses EDN text into values.
//
// The reader accepts the notation the canonicalizer emits plus the usual
// relaxations of hand-written EDN: arbitrary whitespace, commas, comments,
// #_ discards, escape sequences and non-UTC instants. Forms outside the value
// universe (ratios, big decimals, regexes, characters, unknown tags) fail
// with the same structured errors emission uses; grammar violations fail with
// *SyntaxError.
package reader

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/value"
)

// SyntaxError reports malformed EDN text.
type SyntaxError struct {
	Offset  int // Byte offset into the input
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// IsSyntaxError reports whether err is (or wraps) a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// Read parses exactly one form from data. Surrounding whitespace and
// comments are allowed; any other trailing content is an error.
func Read(data []byte) (value.Value, error) {
	return ReadString(string(data))
}

// ReadString is Read over a string.
func ReadString(s string) (value.Value, error) {
	p := &parser{src: s}
	if err := p.skip(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, p.errorf("empty input")
	}
	v, err := p.form()
	if err != nil {
		return nil, err
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected trailing content %q", p.src[p.pos:min(p.pos+16, len(p.src))])
	}
	return v, nil
}

// ReadAll parses every top-level form in data.
func ReadAll(data []byte) ([]value.Value, error) {
	p := &parser{src: string(data)}
	var out []value.Value
	for {
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() {
			return out, nil
		}
		v, err := p.form()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

// skip consumes whitespace, commas, line comments and #_ discards.
func (p *parser) skip() error {
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		switch {
		case r == ',' || unicode.IsSpace(r):
			p.pos += size
		case r == ';':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		case r == '#' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '_':
			p.pos += 2
			if err := p.skip(); err != nil {
				return err
			}
			if p.eof() {
				return p.errorf("discard without a form")
			}
			if _, err := p.form(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func isTerminator(r rune) bool {
	if r == ',' || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '(', ')', '[', ']', '{', '}', '"', ';':
		return true
	}
	return false
}

// token reads a run of non-terminating characters.
func (p *parser) token() string {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if isTerminator(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *parser) form() (value.Value, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		elems, err := p.until(')')
		if err != nil {
			return nil, err
		}
		return value.List(elems), nil
	case c == '[':
		p.pos++
		elems, err := p.until(']')
		if err != nil {
			return nil, err
		}
		return value.Vector(elems), nil
	case c == '{':
		p.pos++
		return p.mapForm()
	case c == ')' || c == ']' || c == '}':
		return nil, p.errorf("unexpected %q", c)
	case c == '"':
		s, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	case c == ':':
		return p.keyword()
	case c == '#':
		return p.dispatch()
	case c == '\\':
		start := p.pos
		p.pos++
		tok := p.token()
		return nil, canonerr.UnsupportedType(p.src[start:p.pos], "character literal \\%s is not supported", tok)
	case isDigit(c) || ((c == '+' || c == '-') && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1])):
		return p.number()
	default:
		return p.symbol()
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// until reads forms up to the closing delimiter.
func (p *parser) until(closer byte) ([]value.Value, error) {
	elems := []value.Value{}
	for {
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, p.errorf("unterminated collection, expected %q", closer)
		}
		if p.peek() == closer {
			p.pos++
			return elems, nil
		}
		v, err := p.form()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

func (p *parser) mapForm() (value.Value, error) {
	start := p.pos
	forms, err := p.until('}')
	if err != nil {
		return nil, err
	}
	if len(forms)%2 != 0 {
		return nil, &SyntaxError{Offset: start, Message: "map literal must contain an even number of forms"}
	}
	m := make(value.Map, 0, len(forms)/2)
	for i := 0; i < len(forms); i += 2 {
		m = append(m, value.Entry{Key: forms[i], Val: forms[i+1]})
	}
	return m, nil
}

func (p *parser) number() (value.Value, error) {
	start := p.pos
	tok := p.token()
	switch {
	case strings.ContainsRune(tok, '/'):
		return nil, canonerr.UnsupportedType(tok, "ratio %s is not supported", tok)
	case strings.HasSuffix(tok, "M"):
		return nil, canonerr.UnsupportedType(tok, "arbitrary-precision decimal %s is not supported", tok)
	case strings.ContainsAny(tok, "xXpP_"):
		return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid number %q", tok)}
	case strings.HasSuffix(tok, "N"):
		n, ok := new(big.Int).SetString(strings.TrimSuffix(tok, "N"), 10)
		if !ok {
			return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid integer %q", tok)}
		}
		if !n.IsInt64() {
			return nil, canonerr.OutOfRange(n.String())
		}
		return value.Int(n.Int64()), nil
	case strings.ContainsAny(tok, ".eE"):
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid number %q", tok)}
		}
		return value.Double(f), nil
	default:
		n, err := strconv.ParseInt(tok, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil, canonerr.OutOfRange(tok)
		}
		if err != nil {
			return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid integer %q", tok)}
		}
		return value.Int(n), nil
	}
}

func (p *parser) keyword() (value.Value, error) {
	start := p.pos
	p.pos++ // ':'
	tok := p.token()
	if tok == "" || strings.HasPrefix(tok, ":") {
		return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid keyword :%s", tok)}
	}
	ns, name := splitNamed(tok)
	if name == "" {
		return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid keyword :%s", tok)}
	}
	return value.Keyword{Namespace: ns, Name: name}, nil
}

func (p *parser) symbol() (value.Value, error) {
	start := p.pos
	tok := p.token()
	if tok == "" {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	switch tok {
	case "nil":
		return value.Nil{}, nil
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	}
	ns, name := splitNamed(tok)
	if name == "" {
		return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid symbol %s", tok)}
	}
	return value.Symbol{Namespace: ns, Name: name}, nil
}

// splitNamed splits ns/name at the first slash. A lone "/" is a name.
func splitNamed(tok string) (ns, name string) {
	if tok == "/" {
		return "", tok
	}
	if before, after, ok := strings.Cut(tok, "/"); ok {
		return before, after
	}
	return "", tok
}

func (p *parser) dispatch() (value.Value, error) {
	start := p.pos
	p.pos++ // '#'
	if p.eof() {
		return nil, p.errorf("unexpected end of input after #")
	}
	switch p.peek() {
	case '{':
		p.pos++
		elems, err := p.until('}')
		if err != nil {
			return nil, err
		}
		return value.Set(elems), nil
	case '#':
		p.pos++
		tok := p.token()
		switch tok {
		case "NaN":
			return value.Double(math.NaN()), nil
		case "Inf":
			return value.Double(math.Inf(1)), nil
		case "-Inf":
			return value.Double(math.Inf(-1)), nil
		}
		return nil, &SyntaxError{Offset: start, Message: fmt.Sprintf("unknown symbolic value ##%s", tok)}
	case '"':
		s, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		return nil, canonerr.UnsupportedType(s, "regex #%q is not supported", s)
	}

	tag := p.token()
	if tag == "" {
		return nil, &SyntaxError{Offset: start, Message: "invalid dispatch character"}
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, p.errorf("tag #%s without a value", tag)
	}
	payload, err := p.form()
	if err != nil {
		return nil, err
	}
	return tagged(tag, payload)
}

// tagged builds an extension value from its tag and payload.
func tagged(tag string, payload value.Value) (value.Value, error) {
	switch tag {
	case "inst", "uuid", "bytes":
	default:
		return nil, canonerr.UnsupportedType(payload, "tag #%s is not supported", tag)
	}
	s, ok := payload.(value.String)
	if !ok {
		return nil, canonerr.InvalidTagForm(payload, "#%s payload must be a string, got %s", tag, value.KindOf(payload))
	}

	switch tag {
	case "inst":
		t, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return nil, canonerr.InvalidTagForm(s, "#inst %q is not an RFC 3339 timestamp", string(s))
		}
		return value.InstFromTime(t), nil
	case "uuid":
		u, err := uuid.Parse(string(s))
		if err != nil || len(s) != 36 {
			return nil, canonerr.InvalidTagForm(s, "#uuid %q is not an 8-4-4-4-12 hex UUID", string(s))
		}
		return value.UUID(u), nil
	default:
		b, err := hex.DecodeString(string(s))
		if err != nil {
			return nil, canonerr.InvalidTagForm(s, "#bytes %q is not an even-length hex string", string(s))
		}
		return value.Bytes(b), nil
	}
}

// stringLit reads a quoted string, decoding escapes. A \u escape naming a
// lone surrogate fails with InvalidUnicode.
func (p *parser) stringLit() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		if p.eof() {
			return "", &SyntaxError{Offset: start, Message: "unterminated string"}
		}
		c := p.peek()
		switch c {
		case '"':
			p.pos++
			s := sb.String()
			if off := value.InvalidTextOffset(s); off >= 0 {
				return "", canonerr.InvalidUnicode(s, off)
			}
			return s, nil
		case '\\':
			if err := p.escape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) escape(sb *strings.Builder) error {
	start := p.pos
	p.pos++ // backslash
	if p.eof() {
		return &SyntaxError{Offset: start, Message: "unterminated escape"}
	}
	c := p.peek()
	p.pos++
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'u':
		r, err := p.hex4(start)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			lo, ok := p.lowSurrogate()
			if r >= 0xdc00 || !ok {
				return canonerr.InvalidUnicode(p.src[start:p.pos], sb.Len())
			}
			r = utf16.DecodeRune(r, lo)
		}
		sb.WriteRune(r)
	default:
		return &SyntaxError{Offset: start, Message: fmt.Sprintf("unknown escape \\%c", c)}
	}
	return nil
}

func (p *parser) hex4(start int) (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, &SyntaxError{Offset: start, Message: "truncated \\u escape"}
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid \\u escape %q", p.src[p.pos:p.pos+4])}
	}
	p.pos += 4
	return rune(n), nil
}

// lowSurrogate consumes a following \uDC00-\uDFFF escape if present.
func (p *parser) lowSurrogate() (rune, bool) {
	if p.pos+6 > len(p.src) || p.src[p.pos] != '\\' || p.src[p.pos+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
	if err != nil || n < 0xdc00 || n > 0xdfff {
		return 0, false
	}
	p.pos += 6
	return rune(n), true
}
