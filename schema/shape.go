// Package schema models the declarative service description that drives both
// code generation and the runtime codec: a graph of shapes (scalars,
// structures, lists, maps) and the operations that consume and produce them.
package schema

import "fmt"

// Kind classifies a shape node.
type Kind string

const (
	KindStructure Kind = "structure"
	KindList      Kind = "list"
	KindMap       Kind = "map"

	// Scalar kinds, named as they appear in the service description.
	KindString    Kind = "string"
	KindBoolean   Kind = "boolean"
	KindInteger   Kind = "integer"
	KindLong      Kind = "long"
	KindFloat     Kind = "float"
	KindDouble    Kind = "double"
	KindTimestamp Kind = "timestamp"
	KindBlob      Kind = "blob"
)

// IsScalar reports whether the kind is a leaf value kind (anything that is
// not a structure, list, or map).
func (k Kind) IsScalar() bool {
	switch k {
	case KindStructure, KindList, KindMap:
		return false
	}
	return true
}

// Member is one named member of a structure shape, referencing its target
// shape by name.
type Member struct {
	// Name is the canonical (wire) member name, e.g. "TrainingJobName".
	Name string

	// Target is the name of the shape this member resolves to.
	Target string

	// Documentation is the member's doc string from the service
	// description, if any.
	Documentation string
}

// Shape is one node in the shape graph.
type Shape struct {
	Name string
	Kind Kind

	// Members holds the ordered members of a structure shape.
	// Order matches the service description document.
	Members []Member

	// Required lists the member names that must be present, in the order
	// declared by the service description. Structure shapes only.
	Required []string

	// MemberTarget is the item shape name of a list shape.
	MemberTarget string

	// KeyTarget and ValueTarget are the key and value shape names of a map
	// shape. Key shapes must resolve to the string kind.
	KeyTarget, ValueTarget string

	// Enum lists the declared values of an enumerated string shape.
	Enum []string

	Documentation string
}

// Member returns the structure member with the given name, or nil.
func (s *Shape) Member(name string) *Member {
	for i := range s.Members {
		if s.Members[i].Name == name {
			return &s.Members[i]
		}
	}
	return nil
}

// IsRequired reports whether the named member appears in the shape's
// required list.
func (s *Shape) IsRequired(member string) bool {
	for _, r := range s.Required {
		if r == member {
			return true
		}
	}
	return false
}

// UnknownShapeError is returned when a shape name does not resolve.
// It indicates a corrupt or incompatible service description and is
// always fatal.
type UnknownShapeError struct {
	Name string
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown shape %q", e.Name)
}

// Graph is the resolved shape graph. It is a pure read model: built once by
// Load and shared by the generator and the runtime codec.
type Graph struct {
	shapes map[string]*Shape
	order  []string
}

// NewGraph builds a graph from the given shapes. Later shapes with duplicate
// names overwrite earlier ones.
func NewGraph(shapes []*Shape) *Graph {
	g := &Graph{shapes: make(map[string]*Shape, len(shapes))}
	for _, s := range shapes {
		if _, ok := g.shapes[s.Name]; !ok {
			g.order = append(g.order, s.Name)
		}
		g.shapes[s.Name] = s
	}
	return g
}

// Resolve returns the shape with the given name.
func (g *Graph) Resolve(name string) (*Shape, error) {
	s, ok := g.shapes[name]
	if !ok {
		return nil, &UnknownShapeError{Name: name}
	}
	return s, nil
}

// RequiredMembers returns the ordered required member names of a structure
// shape, taken directly from its required list.
func (g *Graph) RequiredMembers(name string) ([]string, error) {
	s, err := g.Resolve(name)
	if err != nil {
		return nil, err
	}
	if s.Kind != KindStructure {
		return nil, fmt.Errorf("shape %q is %s, not a structure", name, s.Kind)
	}
	out := make([]string, len(s.Required))
	copy(out, s.Required)
	return out, nil
}

// Names returns all shape names in description order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of shapes in the graph.
func (g *Graph) Len() int { return len(g.shapes) }

// Validate checks the structural invariants of the graph: every member,
// list item, and map key/value reference resolves, and map keys resolve to
// string-kind shapes. It returns all problems found, not just the first.
func (g *Graph) Validate() []error {
	var errs []error
	for _, name := range g.order {
		s := g.shapes[name]
		switch s.Kind {
		case KindStructure:
			for _, m := range s.Members {
				if _, ok := g.shapes[m.Target]; !ok {
					errs = append(errs, fmt.Errorf("shape %q member %q: %w", name, m.Name, &UnknownShapeError{Name: m.Target}))
				}
			}
			for _, r := range s.Required {
				if s.Member(r) == nil {
					errs = append(errs, fmt.Errorf("shape %q requires unknown member %q", name, r))
				}
			}
		case KindList:
			if _, ok := g.shapes[s.MemberTarget]; !ok {
				errs = append(errs, fmt.Errorf("list shape %q: %w", name, &UnknownShapeError{Name: s.MemberTarget}))
			}
		case KindMap:
			key, ok := g.shapes[s.KeyTarget]
			if !ok {
				errs = append(errs, fmt.Errorf("map shape %q key: %w", name, &UnknownShapeError{Name: s.KeyTarget}))
			} else if key.Kind != KindString {
				errs = append(errs, fmt.Errorf("map shape %q has %s key; only string keys are supported", name, key.Kind))
			}
			if _, ok := g.shapes[s.ValueTarget]; !ok {
				errs = append(errs, fmt.Errorf("map shape %q value: %w", name, &UnknownShapeError{Name: s.ValueTarget}))
			}
		}
	}
	return errs
}
