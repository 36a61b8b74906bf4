package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Metadata is the service description header.
type Metadata struct {
	APIVersion      string `json:"apiVersion"`
	Protocol        string `json:"protocol"`
	ServiceFullName string `json:"serviceFullName"`
	ServiceID       string `json:"serviceId"`
	UID             string `json:"uid"`
}

// Operation is a named remote action. Output is empty for fire-and-forget
// actions. Operations are immutable once loaded.
type Operation struct {
	Name          string
	Input         string
	Output        string
	Documentation string
}

// Service is a fully loaded service description: metadata, the shape graph,
// and the operation set.
type Service struct {
	Metadata   Metadata
	Graph      *Graph
	operations map[string]Operation
	opOrder    []string
}

// Operation returns the named operation.
func (s *Service) Operation(name string) (Operation, bool) {
	op, ok := s.operations[name]
	return op, ok
}

// OperationNames returns all operation names in description order.
func (s *Service) OperationNames() []string {
	out := make([]string, len(s.opOrder))
	copy(out, s.opOrder)
	return out
}

type shapeDoc struct {
	Type          string   `json:"type"`
	Required      []string `json:"required"`
	Member        *shapeRef `json:"member"`
	Key           *shapeRef `json:"key"`
	Value         *shapeRef `json:"value"`
	Enum          []string `json:"enum"`
	Documentation string   `json:"documentation"`
}

type shapeRef struct {
	Shape         string `json:"shape"`
	Documentation string `json:"documentation"`
}

type operationDoc struct {
	Input         *shapeRef `json:"input"`
	Output        *shapeRef `json:"output"`
	Documentation string    `json:"documentation"`
}

type serviceDoc struct {
	Metadata   Metadata        `json:"metadata"`
	Operations json.RawMessage `json:"operations"`
	Shapes     json.RawMessage `json:"shapes"`
}

// LoadFile reads a service description document from disk.
func LoadFile(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open service description: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a service description document. The declaration order of
// shapes, structure members, and operations is preserved, since downstream
// consumers (required-first field ordering, deterministic emission) depend
// on it. Only the json protocol is supported.
func Load(r io.Reader) (*Service, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read service description: %w", err)
	}

	var doc serviceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse service description: %w", err)
	}
	if doc.Metadata.Protocol != "json" {
		return nil, fmt.Errorf("protocol %q not supported", doc.Metadata.Protocol)
	}

	shapeNames, shapeRaws, err := orderedObject(doc.Shapes)
	if err != nil {
		return nil, fmt.Errorf("parse shapes: %w", err)
	}

	shapes := make([]*Shape, 0, len(shapeNames))
	for _, name := range shapeNames {
		var sd shapeDoc
		if err := json.Unmarshal(shapeRaws[name], &sd); err != nil {
			return nil, fmt.Errorf("parse shape %q: %w", name, err)
		}
		s := &Shape{
			Name:          name,
			Kind:          Kind(sd.Type),
			Required:      sd.Required,
			Enum:          sd.Enum,
			Documentation: sd.Documentation,
		}
		switch s.Kind {
		case KindStructure:
			memberNames, memberRaws, err := orderedObject(memberField(shapeRaws[name]))
			if err != nil {
				return nil, fmt.Errorf("parse members of shape %q: %w", name, err)
			}
			for _, mn := range memberNames {
				var ref shapeRef
				if err := json.Unmarshal(memberRaws[mn], &ref); err != nil {
					return nil, fmt.Errorf("parse member %q of shape %q: %w", mn, name, err)
				}
				s.Members = append(s.Members, Member{
					Name:          mn,
					Target:        ref.Shape,
					Documentation: ref.Documentation,
				})
			}
		case KindList:
			if sd.Member == nil {
				return nil, fmt.Errorf("list shape %q has no member", name)
			}
			s.MemberTarget = sd.Member.Shape
		case KindMap:
			if sd.Key == nil || sd.Value == nil {
				return nil, fmt.Errorf("map shape %q is missing key or value", name)
			}
			s.KeyTarget = sd.Key.Shape
			s.ValueTarget = sd.Value.Shape
		}
		shapes = append(shapes, s)
	}

	opNames, opRaws, err := orderedObject(doc.Operations)
	if err != nil {
		return nil, fmt.Errorf("parse operations: %w", err)
	}
	svc := &Service{
		Metadata:   doc.Metadata,
		Graph:      NewGraph(shapes),
		operations: make(map[string]Operation, len(opNames)),
		opOrder:    opNames,
	}
	for _, name := range opNames {
		var od operationDoc
		if err := json.Unmarshal(opRaws[name], &od); err != nil {
			return nil, fmt.Errorf("parse operation %q: %w", name, err)
		}
		op := Operation{Name: name, Documentation: od.Documentation}
		if od.Input != nil {
			op.Input = od.Input.Shape
		}
		if od.Output != nil {
			op.Output = od.Output.Shape
		}
		svc.operations[name] = op
	}

	if errs := svc.Graph.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid shape graph: %w", errs[0])
	}
	for _, name := range opNames {
		op := svc.operations[name]
		if op.Input != "" {
			if _, err := svc.Graph.Resolve(op.Input); err != nil {
				return nil, fmt.Errorf("operation %q input: %w", name, err)
			}
		}
		if op.Output != "" {
			if _, err := svc.Graph.Resolve(op.Output); err != nil {
				return nil, fmt.Errorf("operation %q output: %w", name, err)
			}
		}
	}
	return svc, nil
}

// memberField extracts the raw "members" object from a structure shape
// document. Returns nil when absent (a structure with no members is legal).
func memberField(raw json.RawMessage) json.RawMessage {
	var probe struct {
		Members json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	return probe.Members
}

// orderedObject decodes a JSON object into its raw values while preserving
// key declaration order, which encoding/json maps discard.
func orderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var names []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		names = append(names, key)
		// Skip the value; it was already captured in the map decode above.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, nil, err
		}
	}
	return names, values, nil
}
