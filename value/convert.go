package value

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/franks42/canonical-edn/canonerr"
)

var timeType = reflect.TypeOf(time.Time{})

// FromGo converts a host Go value into the closed value universe.
//
// Conversion rules:
//   - nil and nil pointers become Nil
//   - every integer width becomes Int; uint values above MaxInt64 and *big.Int
//     values outside int64 fail with OutOfRange
//   - float32/float64 become Double (finiteness is checked at emission)
//   - string becomes String, []byte becomes Bytes
//   - time.Time becomes Inst, uuid.UUID becomes UUID
//   - slices and arrays become Vector, except byte arrays which become Bytes
//   - maps become Map; string-typed keys become keywords
//   - structs become Map keyed by keyword (exported fields only, `edn` tag
//     renames, `edn:"-"` skips, `,omitempty` drops zero values)
//   - MapLike values become Map from their entries
//
// Everything else (ratios, big decimals, regexes, complex numbers, channels,
// functions, structs with no exported fields) fails with UnsupportedType.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return v, nil
	case MapLike:
		entries, err := v.CanonEntries()
		if err != nil {
			return nil, err
		}
		return Map(entries), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, canonerr.OutOfRange(v)
		}
		return Int(v), nil
	case float64:
		return Double(v), nil
	case float32:
		return Double(v), nil
	case []byte:
		return Bytes(slices.Clone(v)), nil
	case time.Time:
		return InstFromTime(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case *big.Int:
		if v == nil {
			return Nil{}, nil
		}
		if !v.IsInt64() {
			return nil, canonerr.OutOfRange(v.String())
		}
		return Int(v.Int64()), nil
	case *big.Rat:
		return nil, canonerr.UnsupportedType(v, "ratio %s is not supported", v.String())
	case *big.Float:
		return nil, canonerr.UnsupportedType(v, "arbitrary-precision decimal is not supported")
	case *regexp.Regexp:
		return nil, canonerr.UnsupportedType(v, "regex %q is not supported", v.String())
	case []any:
		if v == nil {
			return Nil{}, nil
		}
		return fromSlice(reflect.ValueOf(v))
	case map[string]any:
		return fromStringMap(v)
	}
	return fromReflect(reflect.ValueOf(x))
}

// MustFromGo is like FromGo but panics on error.
// Use only in tests or with literal inputs known to be valid.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

func fromStringMap(m map[string]any) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make(Map, 0, len(m))
	for _, k := range keys {
		val, err := FromGo(m[k])
		if err != nil {
			return nil, canonerr.WithPrefix(err, ":"+k)
		}
		out = append(out, Entry{Key: Kw(k), Val: val})
	}
	return out, nil
}

func fromSlice(rv reflect.Value) (Value, error) {
	out := make(Vector, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := FromGo(rv.Index(i).Interface())
		if err != nil {
			return nil, canonerr.WithPrefix(err, i)
		}
		out[i] = elem
	}
	return out, nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Nil{}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Nil{}, nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, canonerr.OutOfRange(u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Nil{}, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(slices.Clone(rv.Bytes())), nil
		}
		return fromSlice(rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		return fromSlice(rv)
	case reflect.Map:
		return fromMap(rv)
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return InstFromTime(rv.Convert(timeType).Interface().(time.Time)), nil
		}
		return fromStruct(rv)
	default:
		return nil, canonerr.UnsupportedType(rv.Interface(), "unsupported type %s", rv.Type())
	}
}

func fromMap(rv reflect.Value) (Value, error) {
	if rv.IsNil() {
		return Nil{}, nil
	}
	keys := rv.MapKeys()
	// Iteration order only affects which error is reported first; sort so
	// that choice is deterministic.
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprintf("%T:%v", a.Interface(), a.Interface()), fmt.Sprintf("%T:%v", b.Interface(), b.Interface()))
	})

	stringKeys := rv.Type().Key().Kind() == reflect.String
	out := make(Map, 0, len(keys))
	for i, k := range keys {
		var key Value
		var seg any = i
		if stringKeys {
			key = Kw(k.String())
			seg = ":" + k.String()
		} else {
			var err error
			key, err = FromGo(k.Interface())
			if err != nil {
				return nil, canonerr.WithPrefix(err, i)
			}
		}
		val, err := FromGo(rv.MapIndex(k).Interface())
		if err != nil {
			return nil, canonerr.WithPrefix(err, seg)
		}
		out = append(out, Entry{Key: key, Val: val})
	}
	return out, nil
}

func fromStruct(rv reflect.Value) (Value, error) {
	t := rv.Type()
	out := make(Map, 0, t.NumField())
	exported := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		exported++
		name, omitEmpty, skip := parseTag(f)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		val, err := FromGo(fv.Interface())
		if err != nil {
			return nil, canonerr.WithPrefix(err, ":"+name)
		}
		out = append(out, Entry{Key: Kw(name), Val: val})
	}
	if exported == 0 {
		return nil, canonerr.UnsupportedType(rv.Interface(), "opaque type %s has no exported fields", t)
	}
	return out, nil
}

// parseTag reads the `edn` struct tag. Untagged fields use the lowercased
// field name.
func parseTag(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := f.Tag.Lookup("edn")
	if !ok {
		return strings.ToLower(f.Name), false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name, opts == "omitempty", false
}
