// Package node implements the generic tree-of-nodes view the rest of the
// loader pipeline consumes. It is the only package that knows how to talk
// to the YAML tokenizer; everything downstream sees Kind/Scalar/Elements/
// Fields and never touches a yaml.Node again.
package node

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the three shapes a configuration value can take.
type Kind int

const (
	// Null is the shape of an absent or explicitly null value.
	Null Kind = iota
	Scalar
	Sequence
	Mapping
)

// Node is an untyped configuration value: a scalar string, an ordered
// sequence of nodes, or an ordered mapping from string keys to nodes.
// Mapping key order is preserved from the source document because the
// Query Resolver's glob-matching order guarantee depends on declaration
// order (spec.md §4.6 step 3).
type Node struct {
	Kind     Kind
	Scalar   string
	Elements []*Node
	Keys     []string
	Fields   map[string]*Node

	Line int // 1-based source line, for diagnostics; 0 if synthesized
}

// Parse decodes a YAML document into a Node tree.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(doc.Content) == 0 {
		return &Node{Kind: Mapping, Fields: map[string]*Node{}}, nil
	}

	return fromYAML(doc.Content[0]), nil
}

func fromYAML(n *yaml.Node) *Node {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Node{Kind: Null, Line: n.Line}
		}

		return fromYAML(n.Content[0])

	case yaml.SequenceNode:
		elems := make([]*Node, len(n.Content))
		for i, c := range n.Content {
			elems[i] = fromYAML(c)
		}

		return &Node{Kind: Sequence, Elements: elems, Line: n.Line}

	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		fields := make(map[string]*Node, len(n.Content)/2)

		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			keys = append(keys, key)
			fields[key] = fromYAML(n.Content[i+1])
		}

		return &Node{Kind: Mapping, Keys: keys, Fields: fields, Line: n.Line}

	case yaml.AliasNode:
		return fromYAML(n.Alias)

	default: // ScalarNode
		if n.Tag == "!!null" {
			return &Node{Kind: Null, Line: n.Line}
		}

		return &Node{Kind: Scalar, Scalar: n.Value, Line: n.Line}
	}
}

// IsScalar reports whether n is a Scalar (or Null, which coerces to "").
func (n *Node) IsScalar() bool {
	return n == nil || n.Kind == Scalar || n.Kind == Null
}

// String returns n's scalar value. Null nodes yield "".
func (n *Node) String() string {
	if n == nil {
		return ""
	}

	return n.Scalar
}

// AsList promotes a bare scalar to a one-element list, per the Loader's
// string-to-list promotion rule (spec.md §4.1). A Null node promotes to an
// empty list. A Sequence is returned as-is.
func (n *Node) AsList() []*Node {
	switch {
	case n == nil || n.Kind == Null:
		return nil
	case n.Kind == Scalar:
		return []*Node{n}
	default:
		return n.Elements
	}
}

// AsStringList is AsList followed by taking each element's scalar value.
func (n *Node) AsStringList() []string {
	elems := n.AsList()
	out := make([]string, 0, len(elems))

	for _, e := range elems {
		out = append(out, e.String())
	}

	return out
}

// Field looks up a mapping key. Returns nil, false for anything but a
// Mapping node, or when the key is absent.
func (n *Node) Field(key string) (*Node, bool) {
	if n == nil || n.Kind != Mapping {
		return nil, false
	}

	v, ok := n.Fields[key]

	return v, ok
}

// UnknownFields returns the mapping keys of n that are not in known.
func (n *Node) UnknownFields(known map[string]bool) []string {
	if n == nil || n.Kind != Mapping {
		return nil
	}

	var out []string

	for _, k := range n.Keys {
		if !known[k] {
			out = append(out, k)
		}
	}

	return out
}
