// Package rank implements the total order over the closed value universe.
//
// Values are ordered first by type priority, then by a type-specific
// tie-break. Compare is a pure function and safe for concurrent use; it is
// used directly as a sort comparator for set elements and map keys.
package rank

import (
	"bytes"
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/franks42/canonical-edn/value"
)

// Type priorities. Different priorities never compare equal.
const (
	PriorityNil       = 0
	PriorityBoolean   = 1
	PriorityNumber    = 2
	PriorityString    = 3
	PriorityKeyword   = 4
	PrioritySymbol    = 5
	PrioritySequence  = 6
	PriorityVector    = 7
	PrioritySet       = 8
	PriorityMap       = 9
	PriorityExtension = 10
)

// Priority returns the type priority of v.
func Priority(v value.Value) int {
	switch value.KindOf(v) {
	case value.KindNil:
		return PriorityNil
	case value.KindBool:
		return PriorityBoolean
	case value.KindInt, value.KindDouble:
		return PriorityNumber
	case value.KindString:
		return PriorityString
	case value.KindKeyword:
		return PriorityKeyword
	case value.KindSymbol:
		return PrioritySymbol
	case value.KindList:
		return PrioritySequence
	case value.KindVector:
		return PriorityVector
	case value.KindSet:
		return PrioritySet
	case value.KindMap:
		return PriorityMap
	default:
		return PriorityExtension
	}
}

// ExtensionLabel returns the tag label used to sub-order extension types.
// Labels sort alphabetically: bytes < inst < uuid.
func ExtensionLabel(k value.Kind) string {
	switch k {
	case value.KindBytes:
		return "bytes"
	case value.KindInst:
		return "inst"
	case value.KindUUID:
		return "uuid"
	default:
		return ""
	}
}

// Compare returns -1, 0 or +1 as a sorts before, equal to, or after b.
func Compare(a, b value.Value) int {
	if a == nil {
		a = value.Nil{}
	}
	if b == nil {
		b = value.Nil{}
	}
	if pa, pb := Priority(a), Priority(b); pa != pb {
		return cmp.Compare(pa, pb)
	}

	switch x := a.(type) {
	case value.Nil:
		return 0
	case value.Bool:
		return compareBool(bool(x), bool(b.(value.Bool)))
	case value.Int, value.Double:
		return compareNumber(a, b)
	case value.String:
		return strings.Compare(string(x), string(b.(value.String)))
	case value.Keyword:
		y := b.(value.Keyword)
		return compareNamed(x.Namespace, x.Name, y.Namespace, y.Name)
	case value.Symbol:
		y := b.(value.Symbol)
		return compareNamed(x.Namespace, x.Name, y.Namespace, y.Name)
	case value.List:
		return compareSeq(x, b.(value.List))
	case value.Vector:
		return compareSeq(x, b.(value.Vector))
	case value.Set:
		return compareSet(x, b.(value.Set))
	case value.Map:
		return compareMap(x, b.(value.Map))
	default:
		return compareExtension(a, b)
	}
}

// Sorted returns a rank-sorted copy of vals. The input is not modified.
func Sorted(vals []value.Value) []value.Value {
	out := slices.Clone(vals)
	slices.SortStableFunc(out, Compare)
	return out
}

// SortedEntries returns a copy of m with entries sorted by key rank.
func SortedEntries(m value.Map) value.Map {
	out := slices.Clone(m)
	slices.SortStableFunc(out, func(a, b value.Entry) int {
		return Compare(a.Key, b.Key)
	})
	return out
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareNumber orders by mathematical value across Int and Double. At equal
// magnitude an Int sorts before a Double. NaN sorts below every other number.
func compareNumber(a, b value.Value) int {
	switch x := a.(type) {
	case value.Int:
		switch y := b.(type) {
		case value.Int:
			return cmp.Compare(x, y)
		case value.Double:
			if c := compareIntDouble(int64(x), float64(y)); c != 0 {
				return c
			}
			return -1
		}
	case value.Double:
		switch y := b.(type) {
		case value.Double:
			return compareDouble(float64(x), float64(y))
		case value.Int:
			if c := compareIntDouble(int64(y), float64(x)); c != 0 {
				return -c
			}
			return 1
		}
	}
	return 0
}

// compareDouble treats -0 as equal to +0 and places NaN first.
func compareDouble(a, b float64) int {
	return cmp.Compare(a, b)
}

// compareIntDouble compares i and f exactly, without rounding i to float64.
func compareIntDouble(i int64, f float64) int {
	if math.IsNaN(f) {
		return 1
	}
	// 2^63 is exactly representable; every int64 is below it.
	if f >= math.Exp2(63) {
		return -1
	}
	if f < -math.Exp2(63) {
		return 1
	}
	// |f| < 2^63 so truncation to int64 is exact.
	t := math.Trunc(f)
	ti := int64(t)
	if i != ti {
		return cmp.Compare(i, ti)
	}
	frac := f - t
	switch {
	case frac > 0:
		return -1
	case frac < 0:
		return 1
	default:
		return 0
	}
}

// compareNamed orders keywords and symbols: no namespace before any
// namespace, then namespace, then name.
func compareNamed(ans, aname, bns, bname string) int {
	switch {
	case ans == "" && bns != "":
		return -1
	case ans != "" && bns == "":
		return 1
	}
	if c := strings.Compare(ans, bns); c != 0 {
		return c
	}
	return strings.Compare(aname, bname)
}

func compareSeq[S ~[]value.Value](a, b S) int {
	if sameBacking(a, b) {
		return 0
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareSet(a, b value.Set) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	if sameBacking(a, b) {
		return 0
	}
	return compareSeq(Sorted(a), Sorted(b))
}

func compareMap(a, b value.Map) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	if len(a) == 0 || &a[0] == &b[0] {
		return 0
	}
	sa, sb := SortedEntries(a), SortedEntries(b)
	for i := range sa {
		if c := Compare(sa[i].Key, sb[i].Key); c != 0 {
			return c
		}
	}
	for i := range sa {
		if c := Compare(sa[i].Val, sb[i].Val); c != 0 {
			return c
		}
	}
	return 0
}

func compareExtension(a, b value.Value) int {
	ka, kb := value.KindOf(a), value.KindOf(b)
	if c := strings.Compare(ExtensionLabel(ka), ExtensionLabel(kb)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case value.Inst:
		y := b.(value.Inst)
		if c := cmp.Compare(x.Sec, y.Sec); c != 0 {
			return c
		}
		return cmp.Compare(x.Nsec, y.Nsec)
	case value.UUID:
		y := b.(value.UUID)
		return bytes.Compare(x[:], y[:])
	case value.Bytes:
		return bytes.Compare(x, b.(value.Bytes))
	}
	return 0
}

// sameBacking reports whether a and b are the same slice, which lets
// Compare skip the element walk.
func sameBacking[S ~[]value.Value](a, b S) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}
