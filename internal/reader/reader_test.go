package reader

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/internal/emit"
	"github.com/franks42/canonical-edn/profile"
	"github.com/franks42/canonical-edn/value"
)

func canonical(t *testing.T, v value.Value) string {
	t.Helper()
	s, err := emit.String(v, profile.Rich)
	require.NoError(t, err)
	return s
}

func TestRead_Canonicalizes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"nil", "nil"},
		{" true ", "true"},
		{"false ; trailing comment", "false"},
		{"42", "42"},
		{"-0", "0"},
		{"+7", "7"},
		{"12N", "12"},
		{"1.0", "1.0"},
		{"1e3", "1000.0"},
		{"-0.0", "0.0"},
		{"2.5E-8", "2.5e-8"},
		{`"aA\/\b"`, `"aA/\u0008"`},
		{`"😀"`, `"😀"`},
		{":kw", ":kw"},
		{":ns/kw", ":ns/kw"},
		{"sym", "sym"},
		{"/", "/"},
		{"[:/ /]", "[:/ /]"},
		{"ns/sym", "ns/sym"},
		{"+", "+"},
		{"(1, 2,3)", "(1 2 3)"},
		{"[3 2 1]", "[3 2 1]"},
		{"#{3 2 1}", "#{1 2 3}"},
		{"{:b 1, :a 2}", "{:a 2 :b 1}"},
		{"[1 #_ 2 3]", "[1 3]"},
		{"#_ #_ 1 2 3", "3"},
		{"[]", "[]"},
		{"()", "()"},
		{"{}", "{}"},
		{"#{}", "#{}"},
		{`#inst "2024-01-01T00:00:00+02:00"`, `#inst "2023-12-31T22:00:00.000000000Z"`},
		{`#inst "1985-04-12T23:20:50.52Z"`, `#inst "1985-04-12T23:20:50.520000000Z"`},
		{`#uuid "F81D4FAE-7DEC-11D0-A765-00A0C91E6BF6"`, `#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`},
		{`#bytes "CAFE"`, `#bytes "cafe"`},
		{"[\n  {:a [1 2.50]}\n]", "[{:a [1 2.5]}]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ReadString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, canonical(t, v))
		})
	}
}

func TestRead_ListAndVectorStayDistinct(t *testing.T) {
	l, err := ReadString("(1)")
	require.NoError(t, err)
	v, err := ReadString("[1]")
	require.NoError(t, err)
	assert.IsType(t, value.List{}, l)
	assert.IsType(t, value.Vector{}, v)
}

func TestRead_SymbolicDoubles(t *testing.T) {
	v, err := ReadString("[##NaN ##Inf ##-Inf 1e400]")
	require.NoError(t, err)
	vec := v.(value.Vector)
	require.Len(t, vec, 4)
	assert.True(t, math.IsNaN(float64(vec[0].(value.Double))))
	assert.True(t, math.IsInf(float64(vec[1].(value.Double)), 1))
	assert.True(t, math.IsInf(float64(vec[2].(value.Double)), -1))
	assert.True(t, math.IsInf(float64(vec[3].(value.Double)), 1))
}

func TestRead_DuplicatesSurviveReading(t *testing.T) {
	v, err := ReadString("{:a 1 :a 2}")
	require.NoError(t, err)
	assert.Len(t, v.(value.Map), 2)

	_, err = emit.String(v, profile.Rich)
	assert.True(t, canonerr.Is(err, canonerr.KindDuplicateKey))
}

func TestRead_ValueErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind canonerr.Kind
	}{
		{"9223372036854775808", canonerr.KindOutOfRange},
		{"-9223372036854775809", canonerr.KindOutOfRange},
		{"99999999999999999999N", canonerr.KindOutOfRange},
		{"1/2", canonerr.KindUnsupportedType},
		{"1.5M", canonerr.KindUnsupportedType},
		{`\a`, canonerr.KindUnsupportedType},
		{`#"re"`, canonerr.KindUnsupportedType},
		{"#point [1 2]", canonerr.KindUnsupportedType},
		{"#inst 1", canonerr.KindInvalidTagForm},
		{`#inst "yesterday"`, canonerr.KindInvalidTagForm},
		{`#uuid "f81d4fae7dec11d0a76500a0c91e6bf6"`, canonerr.KindInvalidTagForm},
		{`#bytes "abc"`, canonerr.KindInvalidTagForm},
		{`"\ud800"`, canonerr.KindInvalidUnicode},
		{`"\udc00\ud800"`, canonerr.KindInvalidUnicode},
		{"\"\xff\"", canonerr.KindInvalidUnicode},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ReadString(tt.in)
			require.Error(t, err)
			assert.False(t, IsSyntaxError(err))
			assert.Equal(t, tt.kind, canonerr.KindOf(err))
		})
	}
}

func TestRead_SyntaxErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"   ; only a comment",
		"(",
		"[1 2",
		")",
		"{:a}",
		"1 2",
		`"open`,
		`"\q"`,
		`"\u12"`,
		"0x1F",
		"1e",
		":",
		"::a",
		"##Foo",
		"#",
		"#_",
		"#inst",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ReadString(in)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err), "%v", err)
		})
	}
}

func TestSyntaxError_ReportsOffset(t *testing.T) {
	_, err := ReadString("[1 2 }")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 5, se.Offset)
	assert.Contains(t, se.Error(), "offset 5")
}

func TestReadAll(t *testing.T) {
	vals, err := ReadAll([]byte("1 :a ; comment\n [2] #_ 9"))
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, value.Int(1), vals[0])
	assert.Equal(t, value.Kw("a"), vals[1])

	vals, err = ReadAll([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, vals)
}

// TestRead_RoundTripsCanonicalText checks that reading canonical text and
// emitting it again reproduces the same bytes.
func TestRead_RoundTripsCanonicalText(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		v := randomValue(rng, 3)
		text, err := emit.String(v, profile.Rich)
		if err != nil {
			continue
		}
		back, err := ReadString(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, canonical(t, back))
	}
}

func randomValue(rng *rand.Rand, depth int) value.Value {
	n := 11
	if depth > 0 {
		n = 15
	}
	switch rng.Intn(n) {
	case 0:
		return value.Nil{}
	case 1:
		return value.Bool(rng.Intn(2) == 0)
	case 2:
		return value.Int(rng.Int63() - rng.Int63())
	case 3:
		return value.Double(math.Float64frombits(rng.Uint64() & 0x7fefffffffffffff))
	case 4:
		runes := []rune{'a', '"', '\\', '\n', '\x01', 'é', '😀', '\x7f', ' '}
		s := make([]rune, rng.Intn(5))
		for i := range s {
			s[i] = runes[rng.Intn(len(runes))]
		}
		return value.String(string(s))
	case 5:
		return value.NsKw([]string{"", "ns", "a.b"}[rng.Intn(3)], []string{"x", "y-z", "1", "?"}[rng.Intn(4)])
	case 6:
		return value.NsSym([]string{"", "ns"}[rng.Intn(2)], []string{"x", "+", "->y", "a.b"}[rng.Intn(4)])
	case 7:
		return value.Inst{Sec: rng.Int63n(1<<35) - 1<<34, Nsec: int32(rng.Intn(1e9))}
	case 8:
		var u value.UUID
		rng.Read(u[:])
		return u
	case 9:
		b := make(value.Bytes, rng.Intn(4))
		rng.Read(b)
		return b
	case 10:
		return value.Double(float64(rng.Intn(100)))
	case 11:
		return value.NewList(elems(rng, depth)...)
	case 12:
		return value.NewVector(elems(rng, depth)...)
	case 13:
		return value.NewSet(elems(rng, depth)...)
	default:
		keys := elems(rng, depth)
		m := make(value.Map, len(keys))
		for i, k := range keys {
			m[i] = value.E(k, randomValue(rng, depth-1))
		}
		return m
	}
}

func elems(rng *rand.Rand, depth int) []value.Value {
	out := make([]value.Value, rng.Intn(4))
	for i := range out {
		out[i] = randomValue(rng, depth-1)
	}
	return out
}
