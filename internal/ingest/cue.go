package ingest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/value"
)

// DecodeCUE evaluates a CUE document and converts its concrete result.
// Struct fields arrive in declaration order; definitions and hidden fields
// are skipped because Fields only yields regular fields.
func DecodeCUE(data []byte, opts Options) (value.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}
	return cueValue(v, opts)
}

func cueValue(v cue.Value, opts Options) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Nil{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE bool: %w", err)
		}
		return value.Bool(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, canonerr.OutOfRange(fmt.Sprint(v))
		}
		return value.Int(i), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, canonerr.InvalidNumber(fmt.Sprint(v))
		}
		return value.Double(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE string: %w", err)
		}
		return value.String(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE bytes: %w", err)
		}
		return value.Bytes(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE list: %w", err)
		}
		out := value.Vector{}
		for i := 0; iter.Next(); i++ {
			elem, err := cueValue(iter.Value(), opts)
			if err != nil {
				return nil, canonerr.WithPrefix(err, i)
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE struct: %w", err)
		}
		out := value.Map{}
		for iter.Next() {
			label := iter.Label()
			elem, err := cueValue(iter.Value(), opts)
			if err != nil {
				return nil, canonerr.WithPrefix(err, keyPath(label, opts))
			}
			out = append(out, value.Entry{Key: mapKey(label, opts), Val: elem})
		}
		return out, nil
	default:
		return nil, canonerr.UnsupportedType(fmt.Sprint(v), "CUE value of kind %s is not concrete data", v.Kind())
	}
}
