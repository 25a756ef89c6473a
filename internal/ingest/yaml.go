package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/franks42/canonical-edn/canonerr"
	"github.com/franks42/canonical-edn/value"
)

// maxAliasDepth bounds alias expansion so a self-referencing document fails
// instead of recursing forever.
const maxAliasDepth = 64

// DecodeYAML parses a single YAML document through the node tree so scalar
// tags decide the value kind and mapping keys keep their source order.
func DecodeYAML(data []byte, opts Options) (value.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return value.Nil{}, nil
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML: expected a single document")
	}

	d := yamlDecoder{opts: opts}
	return d.node(&doc)
}

type yamlDecoder struct {
	opts  Options
	depth int
}

func (d *yamlDecoder) node(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Nil{}, nil
		}
		return d.node(n.Content[0])
	case yaml.AliasNode:
		if d.depth >= maxAliasDepth {
			return nil, fmt.Errorf("invalid YAML: alias nesting exceeds %d at line %d", maxAliasDepth, n.Line)
		}
		d.depth++
		defer func() { d.depth-- }()
		return d.node(n.Alias)
	case yaml.SequenceNode:
		if tag := n.ShortTag(); tag != "!!seq" {
			return nil, canonerr.UnsupportedType(tag, "unsupported YAML tag %s at line %d", tag, n.Line)
		}
		out := make(value.Vector, 0, len(n.Content))
		for i, child := range n.Content {
			v, err := d.node(child)
			if err != nil {
				return nil, canonerr.WithPrefix(err, i)
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		if tag := n.ShortTag(); tag != "!!map" {
			return nil, canonerr.UnsupportedType(tag, "unsupported YAML tag %s at line %d", tag, n.Line)
		}
		out := make(value.Map, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.ShortTag() == "!!merge" {
				return nil, fmt.Errorf("invalid YAML: merge keys are not supported (line %d)", keyNode.Line)
			}
			key, err := d.key(keyNode)
			if err != nil {
				return nil, err
			}
			val, err := d.node(valNode)
			if err != nil {
				seg := keyNode.Value
				if keyNode.ShortTag() == "!!str" {
					seg = keyPath(keyNode.Value, d.opts)
				}
				return nil, canonerr.WithPrefix(err, seg)
			}
			out = append(out, value.Entry{Key: key, Val: val})
		}
		return out, nil
	case yaml.ScalarNode:
		return d.scalar(n)
	default:
		return nil, fmt.Errorf("invalid YAML: unexpected node kind %d at line %d", n.Kind, n.Line)
	}
}

func (d *yamlDecoder) key(n *yaml.Node) (value.Value, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" {
		return mapKey(n.Value, d.opts), nil
	}
	return d.node(n)
}

func (d *yamlDecoder) scalar(n *yaml.Node) (value.Value, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return value.Nil{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("invalid YAML boolean at line %d: %w", n.Line, err)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, canonerr.OutOfRange(n.Value)
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid YAML float at line %d: %w", n.Line, err)
		}
		return value.Double(f), nil
	case "!!str":
		return value.String(n.Value), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, canonerr.InvalidTagForm(n.Value, "invalid timestamp: %v", err)
		}
		return value.InstFromTime(t), nil
	case "!!binary":
		raw := strings.Join(strings.Fields(n.Value), "")
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, canonerr.InvalidTagForm(n.Value, "invalid base64 payload: %v", err)
		}
		return value.Bytes(b), nil
	default:
		return nil, canonerr.UnsupportedType(n.Value, "unsupported YAML tag %s at line %d", tag, n.Line)
	}
}
