package scene

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Decoder builds a component from its authored payload.
type Decoder func(node *yaml.Node) (any, error)

// Decoders maps component kinds found in scene files to decoders.
type Decoders struct {
	m map[string]Decoder
}

// NewDecoders returns decoders for the built-in kinds: transform, visibility,
// tags and extras.
func NewDecoders() *Decoders {
	d := &Decoders{m: make(map[string]Decoder)}
	d.Register("transform", decodeTransform)
	d.Register("visibility", decodeVisibility)
	d.Register("tags", DecodeAs[Tags]())
	d.Register("extras", DecodeAs[Extras]())
	return d
}

// Register makes fn handle kind, replacing any previous decoder.
func (d *Decoders) Register(kind string, fn Decoder) {
	d.m[kind] = fn
}

// DecodeAs decodes the payload straight into a T.
func DecodeAs[T any]() Decoder {
	return func(node *yaml.Node) (any, error) {
		var out T
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func decodeTransform(node *yaml.Node) (any, error) {
	t := IdentityTransform()
	if err := node.Decode(&t); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeVisibility(node *yaml.Node) (any, error) {
	var s string
	if err := node.Decode(&s); err != nil {
		return nil, err
	}
	switch s {
	case "visible", "inherited":
		return Visibility{Visible: true}, nil
	case "hidden":
		return Visibility{Visible: false}, nil
	default:
		return nil, fmt.Errorf("unknown visibility %q", s)
	}
}

// decodeNode decodes every component of n. Kinds without a decoder are
// gathered into one Extras component. Failures are returned per kind and do
// not stop the other components.
func (d *Decoders) decodeNode(n *Node) ([]any, map[string]error) {
	kinds := make([]string, 0, len(n.Components))
	for k := range n.Components {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var (
		out    []any
		extras Extras
		errs   map[string]error
	)
	for _, kind := range kinds {
		raw := n.Components[kind]
		dec, ok := d.m[kind]
		if !ok {
			var v any
			if err := raw.Decode(&v); err != nil {
				errs = addErr(errs, kind, err)
				continue
			}
			if extras == nil {
				extras = Extras{}
			}
			extras[kind] = v
			continue
		}
		c, err := dec(&raw)
		if err != nil {
			errs = addErr(errs, kind, err)
			continue
		}
		if e, ok := c.(Extras); ok {
			if extras == nil {
				extras = Extras{}
			}
			for k, v := range e {
				extras[k] = v
			}
			continue
		}
		out = append(out, c)
	}
	if extras != nil {
		out = append(out, extras)
	}
	return out, errs
}

func addErr(m map[string]error, kind string, err error) map[string]error {
	if m == nil {
		m = make(map[string]error)
	}
	m[kind] = err
	return m
}
