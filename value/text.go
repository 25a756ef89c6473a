package value

import "unicode/utf8"

// InvalidTextOffset returns the byte offset of the first position at which s
// is not a sequence of Unicode scalar values, or -1 when s is valid.
// Surrogate code points encoded as UTF-8 are invalid UTF-8 and are reported.
func InvalidTextOffset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
