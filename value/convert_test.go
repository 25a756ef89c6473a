package value

import (
	"math"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franks42/canonical-edn/canonerr"
)

type point struct {
	X, Y int
}

type tagged struct {
	ID      string  `edn:"id"`
	Score   float64 `edn:",omitempty"`
	Secret  string  `edn:"-"`
	Comment string  `edn:"note,omitempty"`
	hidden  int
}

type opaque struct {
	n int
}

type stamp time.Time

type pair [2]string

func (p pair) CanonEntries() ([]Entry, error) {
	return []Entry{E(Kw("left"), String(p[0])), E(Kw("right"), String(p[1]))}, nil
}

func TestFromGo_Scalars(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	id := uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	var nilPtr *int
	seven := 7

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Nil{}},
		{"nil pointer", nilPtr, Nil{}},
		{"pointer", &seven, Int(7)},
		{"bool", true, Bool(true)},
		{"int", -3, Int(-3)},
		{"int8", int8(-8), Int(-8)},
		{"uint16", uint16(65535), Int(65535)},
		{"max uint64 in range", uint64(math.MaxInt64), Int(math.MaxInt64)},
		{"float32", float32(0.5), Double(0.5)},
		{"float64", 2.25, Double(2.25)},
		{"string", "s", String("s")},
		{"bytes", []byte{1, 2}, Bytes{1, 2}},
		{"byte array", [3]byte{4, 5, 6}, Bytes{4, 5, 6}},
		{"time", now, Inst{Sec: now.Unix(), Nsec: 10}},
		{"time alias", stamp(now), Inst{Sec: now.Unix(), Nsec: 10}},
		{"uuid", id, UUID(id)},
		{"big int", big.NewInt(-42), Int(-42)},
		{"value passes through", Kw("k"), Kw("k")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGo_Collections(t *testing.T) {
	got, err := FromGo([]any{1, "a", []int{2}})
	require.NoError(t, err)
	assert.Equal(t, Vector{Int(1), String("a"), Vector{Int(2)}}, got)

	got, err = FromGo(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Kw("a"), Int(1)), E(Kw("b"), Int(2))}, got)

	got, err = FromGo(map[int]string{2: "two", 1: "one"})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Int(1), String("one")), E(Int(2), String("two"))}, got)

	got, err = FromGo(point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Kw("x"), Int(1)), E(Kw("y"), Int(2))}, got)

	got, err = FromGo(pair{"l", "r"})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Kw("left"), String("l")), E(Kw("right"), String("r"))}, got)

	var nilSlice []int
	got, err = FromGo(nilSlice)
	require.NoError(t, err)
	assert.Equal(t, Nil{}, got)

	var nilAny []any
	got, err = FromGo(nilAny)
	require.NoError(t, err)
	assert.Equal(t, Nil{}, got, "[]any takes the same nil rule as other slices")

	got, err = FromGo([]any{})
	require.NoError(t, err)
	assert.Equal(t, Vector{}, got)
}

func TestFromGo_StructTags(t *testing.T) {
	got, err := FromGo(tagged{ID: "x", Secret: "s", hidden: 1})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Kw("id"), String("x"))}, got)

	got, err = FromGo(tagged{ID: "x", Score: 1.5, Comment: "c"})
	require.NoError(t, err)
	assert.Equal(t, Map{E(Kw("id"), String("x")), E(Kw("score"), Double(1.5)), E(Kw("note"), String("c"))}, got)
}

func TestFromGo_Errors(t *testing.T) {
	huge, _ := new(big.Int).SetString("100000000000000000000", 10)

	tests := []struct {
		name string
		in   any
		kind canonerr.Kind
		path string
	}{
		{"uint64 overflow", uint64(math.MaxUint64), canonerr.KindOutOfRange, "[]"},
		{"uint overflow", uint(math.MaxUint64), canonerr.KindOutOfRange, "[]"},
		{"big int overflow", huge, canonerr.KindOutOfRange, "[]"},
		{"ratio", big.NewRat(1, 3), canonerr.KindUnsupportedType, "[]"},
		{"big float", big.NewFloat(1.5), canonerr.KindUnsupportedType, "[]"},
		{"regex", regexp.MustCompile("a+"), canonerr.KindUnsupportedType, "[]"},
		{"complex", complex(1, 2), canonerr.KindUnsupportedType, "[]"},
		{"channel", make(chan int), canonerr.KindUnsupportedType, "[]"},
		{"func", func() {}, canonerr.KindUnsupportedType, "[]"},
		{"opaque struct", opaque{n: 1}, canonerr.KindUnsupportedType, "[]"},
		{"nested in slice", []any{1, complex(0, 1)}, canonerr.KindUnsupportedType, "[1]"},
		{"nested in map", map[string]any{"k": []any{big.NewRat(1, 2)}}, canonerr.KindUnsupportedType, "[:k 0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromGo(tt.in)
			require.Error(t, err)
			var ce *canonerr.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.path, ce.Path.String())
		})
	}
}

func TestMustFromGoPanics(t *testing.T) {
	assert.Panics(t, func() { MustFromGo(complex(1, 1)) })
	assert.Equal(t, Int(1), MustFromGo(1))
}

func TestKinds(t *testing.T) {
	assert.Equal(t, "nil", TypeName(nil))
	assert.Equal(t, "keyword", TypeName(Kw("a")))
	assert.Equal(t, "map", TypeName(NewMap()))
	assert.True(t, KindInst.IsExtension())
	assert.False(t, KindMap.IsExtension())
}

func TestInvalidTextOffset(t *testing.T) {
	assert.Equal(t, -1, InvalidTextOffset(""))
	assert.Equal(t, -1, InvalidTextOffset("héllo 😀"))
	assert.Equal(t, 2, InvalidTextOffset("ab\xffcd"))
	assert.Equal(t, 0, InvalidTextOffset("\xed\xa0\x80"))
	assert.Equal(t, -1, InvalidTextOffset("�"))
}

func TestParseUUID(t *testing.T) {
	u, err := ParseUUID("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	require.NoError(t, err)
	assert.Equal(t, "f81d4fae-7dec-11d0-a765-00a0c91e6bf6", uuid.UUID(u).String())

	_, err = ParseUUID("nope")
	assert.Error(t, err)
}

func TestInstTime(t *testing.T) {
	in := time.Date(1969, 7, 20, 20, 17, 40, 123, time.FixedZone("EDT", -4*3600))
	assert.True(t, in.Equal(InstFromTime(in).Time()))
	assert.Equal(t, time.UTC, InstFromTime(in).Time().Location())
}
