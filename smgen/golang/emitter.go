package golang

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	smcore "github.com/aws/sagemaker-core-sub001"
	"github.com/aws/sagemaker-core-sub001/schema"
	"github.com/aws/sagemaker-core-sub001/smgen/ir"
)

// fileHeader goes at the top of every emitted source file.
const fileHeader = "// Code generated by smcore-gen. DO NOT EDIT.\n\n"

// Emitter renders plan entries to Go source. One emitter serves one
// generation pass; it accumulates warnings across files.
type Emitter struct {
	plan  *ir.Plan
	svc   *schema.Service
	graph *schema.Graph
	cfg   Config

	// resourceShapes maps a describe-output shape name to the resource whose
	// struct represents it. Those shapes get no separate data struct; the
	// registry constructs the resource instead.
	resourceShapes map[string]string

	warnings []ir.Warning
}

// NewEmitter builds an emitter over an extracted plan and its service
// description.
func NewEmitter(in *Input, cfg Config) *Emitter {
	e := &Emitter{
		plan:           in.Plan,
		svc:            in.Service,
		graph:          in.Service.Graph,
		cfg:            cfg.withDefaults(),
		resourceShapes: make(map[string]string),
	}
	for i := range in.Plan.Resources {
		r := &in.Plan.Resources[i]
		if op, ok := in.Service.Operation(r.DescribeOperation); ok && op.Output != "" {
			e.resourceShapes[op.Output] = r.Name
		}
	}
	return e
}

// Warnings returns everything accumulated so far.
func (e *Emitter) Warnings() []ir.Warning { return e.warnings }

func (e *Emitter) warn(code, msg, resource string) {
	e.warnings = append(e.warnings, ir.Warning{Code: code, Message: msg, Resource: resource})
}

// field is one emitted struct field.
type field struct {
	Name     string
	GoType   string
	Required bool
	Doc      string
}

// fieldsOf returns the emitted fields of a structure shape, required members
// first in their declared order, then the optional members in member order.
func (e *Emitter) fieldsOf(s *schema.Shape) ([]field, error) {
	var required, optional []field
	for _, name := range s.Required {
		m := s.Member(name)
		if m == nil {
			continue
		}
		f, err := e.fieldFor(s, *m, true)
		if err != nil {
			return nil, err
		}
		required = append(required, f)
	}
	for _, m := range s.Members {
		if s.IsRequired(m.Name) {
			continue
		}
		f, err := e.fieldFor(s, m, false)
		if err != nil {
			return nil, err
		}
		optional = append(optional, f)
	}
	return append(required, optional...), nil
}

func (e *Emitter) fieldFor(s *schema.Shape, m schema.Member, required bool) (field, error) {
	target, err := e.graph.Resolve(m.Target)
	if err != nil {
		return field{}, fmt.Errorf("shape %q member %q: %w", s.Name, m.Name, err)
	}
	typ, err := e.goType(target, required)
	if err != nil {
		return field{}, fmt.Errorf("shape %q member %q: %w", s.Name, m.Name, err)
	}
	return field{Name: m.Name, GoType: typ, Required: required, Doc: firstSentence(m.Documentation)}, nil
}

// goType maps a shape to its Go field type. Optional scalars become
// pointers so that unset is representable; structures are always pointers
// (the codec constructs them through the registry); slices, maps, and blobs
// are nil-able on their own.
func (e *Emitter) goType(target *schema.Shape, required bool) (string, error) {
	switch target.Kind {
	case schema.KindString:
		return ptrIf(!required, "string"), nil
	case schema.KindBoolean:
		return ptrIf(!required, "bool"), nil
	case schema.KindInteger, schema.KindLong:
		return ptrIf(!required, "int64"), nil
	case schema.KindFloat, schema.KindDouble:
		return ptrIf(!required, "float64"), nil
	case schema.KindTimestamp:
		return ptrIf(!required, "time.Time"), nil
	case schema.KindBlob:
		return "[]byte", nil
	case schema.KindStructure:
		return "*" + e.structName(target.Name), nil
	case schema.KindList:
		item, err := e.graph.Resolve(target.MemberTarget)
		if err != nil {
			return "", err
		}
		it, err := e.goType(item, true)
		if err != nil {
			return "", err
		}
		return "[]" + it, nil
	case schema.KindMap:
		value, err := e.graph.Resolve(target.ValueTarget)
		if err != nil {
			return "", err
		}
		vt, err := e.goType(value, true)
		if err != nil {
			return "", err
		}
		return "map[string]" + vt, nil
	}
	return "", fmt.Errorf("shape %q: no Go type for kind %q", target.Name, target.Kind)
}

// structName is the Go type a structure shape renders to: the resource name
// for describe-output shapes, the shape name for everything else.
func (e *Emitter) structName(shapeName string) string {
	if resource, ok := e.resourceShapes[shapeName]; ok {
		return resource
	}
	return shapeName
}

// memberIsPtr reports whether the emitted field for shape.member is a
// pointer, which decides whether generated accessors need a nil check.
func (e *Emitter) memberIsPtr(shapeName, member string) bool {
	s, err := e.graph.Resolve(shapeName)
	if err != nil {
		return false
	}
	m := s.Member(member)
	if m == nil {
		return false
	}
	target, err := e.graph.Resolve(m.Target)
	if err != nil {
		return false
	}
	if target.Kind == schema.KindStructure {
		return true
	}
	if target.Kind.IsScalar() && target.Kind != schema.KindBlob {
		return !s.IsRequired(member)
	}
	return false
}

// EmitTypesFile renders the data structs for every structure shape that is
// not represented by a resource struct.
func (e *Emitter) EmitTypesFile() ([]byte, error) {
	var body bytes.Buffer
	for _, name := range e.graph.Names() {
		s, _ := e.graph.Resolve(name)
		if s.Kind != schema.KindStructure {
			continue
		}
		if _, ok := e.resourceShapes[name]; ok {
			continue
		}
		if err := e.emitStruct(&body, s, name, nil); err != nil {
			return nil, err
		}
	}
	return e.assemble(body.Bytes(), `"time"`), nil
}

// emitStruct writes one struct declaration. extra fields (the resource
// plumbing) go last.
func (e *Emitter) emitStruct(buf *bytes.Buffer, s *schema.Shape, typeName string, extra []string) error {
	fields, err := e.fieldsOf(s)
	if err != nil {
		return err
	}
	if doc := firstSentence(s.Documentation); doc != "" {
		fmt.Fprintf(buf, "// %s %s\n", typeName, doc)
	}
	fmt.Fprintf(buf, "type %s struct {\n", typeName)
	for _, f := range fields {
		if f.Required {
			fmt.Fprintf(buf, "\t%s %s `validate:\"required\"`\n", f.Name, f.GoType)
		} else {
			fmt.Fprintf(buf, "\t%s %s\n", f.Name, f.GoType)
		}
	}
	for _, line := range extra {
		if line == "" {
			buf.WriteString("\n")
			continue
		}
		fmt.Fprintf(buf, "\t%s\n", line)
	}
	buf.WriteString("}\n\n")
	return nil
}

// EmitRegistryFile renders the shape-name to constructor table consumed by
// the runtime codec.
func (e *Emitter) EmitRegistryFile() ([]byte, error) {
	var body bytes.Buffer
	body.WriteString("// NewRegistry returns the constructor registry covering every generated\n")
	body.WriteString("// shape. Describe-output shapes construct their resource type so decoded\n")
	body.WriteString("// payloads land on resource objects directly.\n")
	body.WriteString("func NewRegistry() *smcore.Registry {\n")
	body.WriteString("\tr := smcore.NewRegistry()\n")
	for _, name := range e.graph.Names() {
		s, _ := e.graph.Resolve(name)
		if s.Kind != schema.KindStructure {
			continue
		}
		fmt.Fprintf(&body, "\tr.Register(%q, func() any { return &%s{} })\n", name, e.structName(name))
	}
	body.WriteString("\treturn r\n}\n")
	return e.assemble(body.Bytes()), nil
}

// EmitConfigSchemaFile renders the configuration schema: the attribute paths
// of each resource that runtime default-resolution may fill.
func (e *Emitter) EmitConfigSchemaFile() ([]byte, error) {
	var body bytes.Buffer
	body.WriteString("// ConfigSchema lists the attributes of each resource that may be filled\n")
	body.WriteString("// from layered defaults when left unset at call time.\n")
	body.WriteString("func ConfigSchema() smcore.ConfigurationSchema {\n")
	body.WriteString("\treturn smcore.ConfigurationSchema{\n")
	for i := range e.plan.Resources {
		r := &e.plan.Resources[i]
		attrs := e.configurableAttributes(r)
		if len(attrs) == 0 {
			continue
		}
		fmt.Fprintf(&body, "\t\t%q: {\n", r.Name)
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a := attrs[k]
			if a.Items != nil {
				fmt.Fprintf(&body, "\t\t\t%q: {Type: %q, Items: &smcore.AttributeSchema{Type: %q}},\n", k, a.Type, a.Items.Type)
			} else {
				fmt.Fprintf(&body, "\t\t\t%q: {Type: %q},\n", k, a.Type)
			}
		}
		body.WriteString("\t\t},\n")
	}
	body.WriteString("\t}\n}\n")
	return e.assemble(body.Bytes()), nil
}

// configurableAttributes walks the create-input shape of a resource for
// scalar and scalar-list members whose snake_case name contains a
// configurable substring.
func (e *Emitter) configurableAttributes(r *ir.Resource) map[string]smcore.AttributeSchema {
	create := r.Method("Create")
	if create == nil || create.Input == "" {
		return nil
	}
	s, err := e.graph.Resolve(create.Input)
	if err != nil {
		return nil
	}
	out := make(map[string]smcore.AttributeSchema)
	e.collectConfigurable(s, "", out, map[string]bool{})
	return out
}

func (e *Emitter) collectConfigurable(s *schema.Shape, prefix string, out map[string]smcore.AttributeSchema, seen map[string]bool) {
	if seen[s.Name] {
		return
	}
	seen[s.Name] = true
	for _, m := range s.Members {
		target, err := e.graph.Resolve(m.Target)
		if err != nil {
			continue
		}
		attr := smcore.PascalToSnake(m.Name)
		path := attr
		if prefix != "" {
			path = prefix + "." + attr
		}
		switch {
		case target.Kind.IsScalar():
			if e.isConfigurable(attr) {
				out[path] = smcore.AttributeSchema{Type: jsonSchemaType(target.Kind)}
			}
		case target.Kind == schema.KindList:
			item, err := e.graph.Resolve(target.MemberTarget)
			if err != nil || !item.Kind.IsScalar() {
				continue
			}
			if e.isConfigurable(attr) {
				out[path] = smcore.AttributeSchema{
					Type:  "array",
					Items: &smcore.AttributeSchema{Type: jsonSchemaType(item.Kind)},
				}
			}
		case target.Kind == schema.KindStructure:
			e.collectConfigurable(target, path, out, seen)
		}
	}
}

func (e *Emitter) isConfigurable(attr string) bool {
	for _, sub := range e.cfg.ConfigurableSubstrings {
		if strings.Contains(attr, sub) {
			return true
		}
	}
	return false
}

func jsonSchemaType(k schema.Kind) string {
	switch k {
	case schema.KindString, schema.KindTimestamp, schema.KindBlob:
		return "string"
	case schema.KindBoolean:
		return "boolean"
	case schema.KindInteger, schema.KindLong:
		return "integer"
	case schema.KindFloat, schema.KindDouble:
		return "number"
	}
	return "string"
}

// assemble prefixes a file body with the header, package clause, and import
// block. extraImports are raw import lines (quotes included); unused entries
// are pruned by the formatting pass.
func (e *Emitter) assemble(body []byte, extraImports ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	fmt.Fprintf(&buf, "package %s\n\n", e.cfg.PackageName)
	buf.WriteString("import (\n")
	buf.WriteString("\t\"context\"\n")
	for _, imp := range extraImports {
		fmt.Fprintf(&buf, "\t%s\n", imp)
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "\tsmcore %q\n", e.cfg.RuntimeImport)
	buf.WriteString(")\n\n")
	buf.Write(body)
	return buf.Bytes()
}

// firstSentence trims a description to its first sentence for doc comments.
func firstSentence(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	if idx := strings.Index(doc, ". "); idx >= 0 {
		doc = doc[:idx+1]
	}
	return strings.Join(strings.Fields(doc), " ")
}

func ptrIf(ptr bool, t string) string {
	if ptr {
		return "*" + t
	}
	return t
}
