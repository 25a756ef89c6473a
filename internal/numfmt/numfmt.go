// Package numfmt formats IEEE-754 doubles as the shortest decimal string that
// round-trips, laid out per the ECMAScript Number::toString algorithm.
//
// strconv supplies the shortest round-trip digit string and its decimal
// exponent; the notation policy (fixed vs. exponential, exponent spelling) is
// applied here so output never depends on a host float printer.
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"github.com/franks42/canonical-edn/canonerr"
)

// Formatter converts a double to its canonical text.
type Formatter interface {
	FormatDouble(f float64) (string, error)
}

// ECMAScript is the reference Formatter. The zero value is ready to use.
type ECMAScript struct{}

// FormatDouble implements Formatter.
func (ECMAScript) FormatDouble(f float64) (string, error) {
	return FormatDouble(f)
}

// FormatDouble returns the canonical text of f.
//
// NaN and infinities fail with InvalidNumber. Negative zero renders as "0.0".
// Results that would read as an integer get a ".0" suffix so a whole double
// never collides with an integer; exponential forms are left unchanged.
func FormatDouble(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", canonerr.InvalidNumber(f)
	}
	if f == 0 {
		return "0.0", nil
	}
	s := ToECMAScript(f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

// ToECMAScript returns the ECMAScript Number::toString rendering of a finite,
// non-zero f, without the integer-distinguishing suffix.
func ToECMAScript(f float64) string {
	var sb strings.Builder
	if f < 0 {
		sb.WriteByte('-')
		f = -f
	}
	digits, n := decompose(f)
	k := len(digits)

	switch {
	case k <= n && n <= 21:
		// Integer: digits followed by n-k zeros.
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		// Fixed with the point inside the digits.
		sb.WriteString(digits[:n])
		sb.WriteByte('.')
		sb.WriteString(digits[n:])
	case -6 < n && n <= 0:
		// Fixed with leading zeros after the point.
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -n))
		sb.WriteString(digits)
	default:
		sb.WriteByte(digits[0])
		if k > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteByte('e')
		e := n - 1
		if e >= 0 {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('-')
			e = -e
		}
		sb.WriteString(strconv.Itoa(e))
	}
	return sb.String()
}

// decompose returns the shortest round-trip significand digits of a positive
// finite f and the exponent n such that f = 0.digits × 10^n.
func decompose(f float64) (digits string, n int) {
	// Format 'e' with precision -1 yields d[.ddd]e±XX with the minimal digit
	// count that parses back to f.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	digits = strings.Replace(mant, ".", "", 1)
	digits = strings.TrimRight(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return digits, e + 1
}
