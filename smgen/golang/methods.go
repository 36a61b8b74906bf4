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

// EmitResourceFile renders one resource: its struct, the class methods it
// hangs off the Client, and its instance methods.
func (e *Emitter) EmitResourceFile(r *ir.Resource) ([]byte, error) {
	describeOut := e.describeOutputShape(r)
	if describeOut == nil {
		return nil, fmt.Errorf("resource %s: describe operation %s has no output shape", r.Name, r.DescribeOperation)
	}

	var body bytes.Buffer
	if err := e.emitStruct(&body, describeOut, r.Name, []string{
		"",
		"client smcore.ClientHandle",
		"codec  *smcore.Codec",
	}); err != nil {
		return nil, err
	}

	fmt.Fprintf(&body, "func (c *Client) new%s() *%s {\n", r.Name, r.Name)
	fmt.Fprintf(&body, "\treturn &%s{client: c.handle, codec: c.codec}\n}\n\n", r.Name)

	e.emitGetName(&body, r, describeOut)

	for _, m := range r.ClassMethods {
		switch m.Kind {
		case ir.KindGet:
			e.emitGet(&body, r, m)
		case ir.KindGetAll:
			e.emitGetAll(&body, r, m)
		default:
			e.emitCreateLike(&body, r, m)
		}
	}
	for _, m := range r.InstanceMethods {
		switch m.Kind {
		case ir.KindRefresh:
			e.emitRefresh(&body, r, m)
		case ir.KindWait, ir.KindWaitForStatus:
			// Emitted together after the loop.
		default:
			e.emitInstanceOp(&body, r, m)
		}
	}
	if r.Waitable() {
		e.emitWaiters(&body, r)
	}
	for _, m := range r.AdditionalMethods {
		e.emitAdditional(&body, m)
	}

	return e.assemble(body.Bytes(), `"time"`), nil
}

func (e *Emitter) describeOutputShape(r *ir.Resource) *schema.Shape {
	op, ok := e.svc.Operation(r.DescribeOperation)
	if !ok || op.Output == "" {
		return nil
	}
	s, err := e.graph.Resolve(op.Output)
	if err != nil {
		return nil
	}
	return s
}

// identityMembers are the required members of the describe input: the
// attributes that identify one instance of the resource.
func (e *Emitter) identityMembers(r *ir.Resource) []string {
	op, ok := e.svc.Operation(r.DescribeOperation)
	if !ok {
		return nil
	}
	required, err := e.graph.RequiredMembers(op.Input)
	if err != nil {
		return nil
	}
	return required
}

func (e *Emitter) emitGetName(buf *bytes.Buffer, r *ir.Resource, out *schema.Shape) {
	if r.IdentifierMember == "" {
		return
	}
	buf.WriteString("// GetName returns the resource's identifying attribute.\n")
	fmt.Fprintf(buf, "func (r *%s) GetName() string {\n", r.Name)
	if e.memberIsPtr(out.Name, r.IdentifierMember) {
		fmt.Fprintf(buf, "\tif r.%s == nil {\n\t\treturn \"\"\n\t}\n", r.IdentifierMember)
		fmt.Fprintf(buf, "\treturn *r.%s\n}\n\n", r.IdentifierMember)
	} else {
		fmt.Fprintf(buf, "\treturn r.%s\n}\n\n", r.IdentifierMember)
	}
}

func (e *Emitter) emitGet(buf *bytes.Buffer, r *ir.Resource, m ir.Method) {
	input := e.structName(m.Input)
	fmt.Fprintf(buf, "// Get%s fetches the resource and decodes it into a typed object.\n", r.Name)
	fmt.Fprintf(buf, "func (c *Client) Get%s(ctx context.Context, input *%s) (*%s, error) {\n", r.Name, input, r.Name)
	buf.WriteString("\tif err := smcore.ValidateInput(input); err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\tbody, err := c.codec.Serialize(input, %q)\n", m.Input)
	buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\tresp, err := c.handle.Call(ctx, %q, body)\n", m.Operation)
	buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\tobj, err := c.codec.Transform(resp, %q, c.new%s())\n", m.Output, r.Name)
	buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\treturn obj.(*%s), nil\n}\n\n", r.Name)
}

// emitCreateLike renders Create and its sibling verbs (Add, Start, Register,
// Import): serialize, apply defaults (create only), call, then resolve the
// new object's identity and refresh it into a full resource.
func (e *Emitter) emitCreateLike(buf *bytes.Buffer, r *ir.Resource, m ir.Method) {
	input := e.structName(m.Input)
	inputShape, err := e.graph.Resolve(m.Input)
	if err != nil {
		e.warn("bad_input_shape", fmt.Sprintf("%s: %v", m.Operation, err), r.Name)
		return
	}

	identity := e.identityMembers(r)
	var assigns []string
	fromResponse := false
	unresolved := false
	for _, member := range identity {
		im := inputShape.Member(member)
		if im == nil {
			if m.Output != "" {
				fromResponse = true
			} else {
				unresolved = true
			}
			continue
		}
		outPtr := e.memberIsPtr(e.describeOutputShape(r).Name, member)
		inPtr := !inputShape.IsRequired(member)
		switch {
		case !inPtr && !outPtr:
			assigns = append(assigns, fmt.Sprintf("\tobj.%s = input.%s\n", member, member))
		case !inPtr && outPtr:
			assigns = append(assigns, fmt.Sprintf("\tobj.%s = &input.%s\n", member, member))
		case inPtr && !outPtr:
			assigns = append(assigns, fmt.Sprintf("\tif input.%s != nil {\n\t\tobj.%s = *input.%s\n\t}\n", member, member, member))
		default:
			assigns = append(assigns, fmt.Sprintf("\tobj.%s = input.%s\n", member, member))
		}
	}
	if unresolved {
		e.warn("create_identifier_unresolved",
			fmt.Sprintf("%s cannot resolve the resource identity from its input or output; the created object is returned unrefreshed", m.Operation),
			r.Name)
	}

	fmt.Fprintf(buf, "// %s%s invokes %s and returns the resulting resource.\n", m.Name, r.Name, m.Operation)
	fmt.Fprintf(buf, "func (c *Client) %s%s(ctx context.Context, input *%s) (*%s, error) {\n", m.Name, r.Name, input, r.Name)
	buf.WriteString("\tif err := smcore.ValidateInput(input); err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\tbody, err := c.codec.Serialize(input, %q)\n", m.Input)
	buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	if m.Kind == ir.KindCreate {
		fmt.Fprintf(buf, "\tbody = c.defaults.ApplyWire(%q, body)\n", r.Name)
	}
	if fromResponse {
		fmt.Fprintf(buf, "\tresp, err := c.handle.Call(ctx, %q, body)\n", m.Operation)
	} else {
		fmt.Fprintf(buf, "\t_, err = c.handle.Call(ctx, %q, body)\n", m.Operation)
	}
	buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(buf, "\tobj := c.new%s()\n", r.Name)
	for _, a := range assigns {
		buf.WriteString(a)
	}
	if fromResponse {
		// Identity members missing from the request come back in the
		// response (arn-identified resources).
		fmt.Fprintf(buf, "\tif _, err := c.codec.Transform(resp, %q, obj); err != nil {\n\t\treturn nil, err\n\t}\n", m.Output)
	}
	if !unresolved {
		buf.WriteString("\tif err := obj.Refresh(ctx); err != nil {\n\t\treturn nil, err\n\t}\n")
	}
	buf.WriteString("\treturn obj, nil\n}\n\n")
}

func (e *Emitter) emitGetAll(buf *bytes.Buffer, r *ir.Resource, m ir.Method) {
	if r.List == nil {
		return
	}
	input := e.structName(m.Input)
	name := "GetAll" + strings.TrimPrefix(m.Operation, "List")
	describeOut := e.describeOutputShape(r)

	fmt.Fprintf(buf, "// %s returns a lazy iterator over every %s visible to the caller.\n", name, r.Name)
	fmt.Fprintf(buf, "// A nil input lists without filters.\n")
	fmt.Fprintf(buf, "func (c *Client) %s(input *%s) (*smcore.ResourceIterator[*%s], error) {\n", name, input, r.Name)
	buf.WriteString("\tvar body map[string]any\n")
	buf.WriteString("\tif input != nil {\n")
	fmt.Fprintf(buf, "\t\tb, err := c.codec.Serialize(input, %q)\n", m.Input)
	buf.WriteString("\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n")
	buf.WriteString("\t\tbody = b\n\t}\n")
	buf.WriteString("\tdelete(body, \"NextToken\")\n")
	buf.WriteString("\tdelete(body, \"MaxResults\")\n")
	fmt.Fprintf(buf, "\treturn smcore.NewResourceIterator(smcore.IteratorConfig[*%s]{\n", r.Name)
	buf.WriteString("\t\tClient:        c.handle,\n")
	buf.WriteString("\t\tCodec:         c.codec,\n")
	fmt.Fprintf(buf, "\t\tOperation:     %q,\n", m.Operation)
	buf.WriteString("\t\tInput:         body,\n")
	fmt.Fprintf(buf, "\t\tSummariesKey:  %q,\n", r.List.SummariesKey)
	fmt.Fprintf(buf, "\t\tResourceShape: %q,\n", describeOut.Name)
	if len(r.List.KeyMapping) > 0 {
		buf.WriteString("\t\tKeyMapping: map[string]string{\n")
		keys := make([]string, 0, len(r.List.KeyMapping))
		for k := range r.List.KeyMapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(buf, "\t\t\t%q: %q,\n", k, r.List.KeyMapping[k])
		}
		buf.WriteString("\t\t},\n")
	}
	fmt.Fprintf(buf, "\t\tNew:           func() *%s { return c.new%s() },\n", r.Name, r.Name)
	buf.WriteString("\t}), nil\n}\n\n")
}

func (e *Emitter) emitRefresh(buf *bytes.Buffer, r *ir.Resource, m ir.Method) {
	fmt.Fprintf(buf, "// Refresh replaces the object's attributes with the service's current view\n// of the resource. Members absent from the response keep their values.\n")
	fmt.Fprintf(buf, "func (r *%s) Refresh(ctx context.Context) error {\n", r.Name)
	buf.WriteString("\tbody := map[string]any{}\n")
	e.emitIdentityOverlay(buf, r)
	fmt.Fprintf(buf, "\tresp, err := r.client.Call(ctx, %q, body)\n", m.Operation)
	buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(buf, "\t_, err = r.codec.Transform(resp, %q, r)\n", m.Output)
	buf.WriteString("\treturn err\n}\n\n")
}

// emitIdentityOverlay writes the object's identifying attributes into the
// request body, which is how instance methods drop those attributes from
// their argument lists.
func (e *Emitter) emitIdentityOverlay(buf *bytes.Buffer, r *ir.Resource) {
	out := e.describeOutputShape(r)
	for _, member := range e.identityMembers(r) {
		if out.Member(member) == nil {
			continue
		}
		if e.memberIsPtr(out.Name, member) {
			fmt.Fprintf(buf, "\tif r.%s != nil {\n\t\tbody[%q] = *r.%s\n\t}\n", member, member, member)
		} else {
			fmt.Fprintf(buf, "\tbody[%q] = r.%s\n", member, member)
		}
	}
}

// emitInstanceOp renders Update, Delete, Stop, and Deregister. The
// identifying attributes never appear in the argument list; they are
// overlaid from the object itself.
func (e *Emitter) emitInstanceOp(buf *bytes.Buffer, r *ir.Resource, m ir.Method) {
	inputShape, err := e.graph.Resolve(m.Input)
	if err != nil {
		e.warn("bad_input_shape", fmt.Sprintf("%s: %v", m.Operation, err), r.Name)
		return
	}
	identity := make(map[string]bool)
	for _, member := range e.identityMembers(r) {
		identity[member] = true
	}
	hasExtras := false
	for _, member := range inputShape.Members {
		if !identity[member.Name] {
			hasExtras = true
			break
		}
	}

	if hasExtras {
		input := e.structName(m.Input)
		fmt.Fprintf(buf, "// %s invokes %s. The identifying attributes come from the object itself\n// and are ignored on the input.\n", m.Name, m.Operation)
		fmt.Fprintf(buf, "func (r *%s) %s(ctx context.Context, input *%s) error {\n", r.Name, m.Name, input)
		fmt.Fprintf(buf, "\tbody, err := r.codec.Serialize(input, %q)\n", m.Input)
		buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	} else {
		fmt.Fprintf(buf, "// %s invokes %s on this resource.\n", m.Name, m.Operation)
		fmt.Fprintf(buf, "func (r *%s) %s(ctx context.Context) error {\n", r.Name, m.Name)
		buf.WriteString("\tbody := map[string]any{}\n")
	}
	e.emitIdentityOverlay(buf, r)
	fmt.Fprintf(buf, "\t_, err %s r.client.Call(ctx, %q, body)\n", callAssign(hasExtras), m.Operation)
	if m.Returns == ir.ReturnResource {
		buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
		buf.WriteString("\treturn r.Refresh(ctx)\n}\n\n")
	} else {
		buf.WriteString("\treturn err\n}\n\n")
	}
}

// callAssign picks = or := depending on whether err is already declared.
func callAssign(errDeclared bool) string {
	if errDeclared {
		return "="
	}
	return ":="
}

func (e *Emitter) emitWaiters(buf *bytes.Buffer, r *ir.Resource) {
	out := e.describeOutputShape(r)

	fmt.Fprintf(buf, "// Wait blocks until the resource reaches a terminal state, polling through\n// Refresh. A state matching the failure keyword raises FailedStatusError.\n")
	fmt.Fprintf(buf, "func (r *%s) Wait(ctx context.Context) error {\n\treturn r.waiter().Wait(ctx)\n}\n\n", r.Name)
	fmt.Fprintf(buf, "// WaitForStatus blocks until the resource reaches the target status.\n")
	fmt.Fprintf(buf, "func (r *%s) WaitForStatus(ctx context.Context, target string) error {\n\treturn r.waiter().WaitForStatus(ctx, target)\n}\n\n", r.Name)

	fmt.Fprintf(buf, "func (r *%s) waiter() *smcore.Waiter {\n", r.Name)
	fmt.Fprintf(buf, "\tw := smcore.NewWaiter(%q)\n", r.Name)
	buf.WriteString("\tw.Refresh = r.Refresh\n")
	buf.WriteString("\tw.Status = func() string {\n")
	e.emitStatusAccessor(buf, r, out)
	buf.WriteString("\t}\n")
	if len(r.TerminalStates) > 0 {
		fmt.Fprintf(buf, "\tw.TerminalStates = []string{%s}\n", quoteJoin(r.TerminalStates))
	}
	if r.FailureReasonMember != "" {
		buf.WriteString("\tw.FailureReason = func() string {\n")
		if e.memberIsPtr(out.Name, r.FailureReasonMember) {
			fmt.Fprintf(buf, "\t\tif r.%s == nil {\n\t\t\treturn \"\"\n\t\t}\n", r.FailureReasonMember)
			fmt.Fprintf(buf, "\t\treturn *r.%s\n", r.FailureReasonMember)
		} else {
			fmt.Fprintf(buf, "\t\treturn r.%s\n", r.FailureReasonMember)
		}
		buf.WriteString("\t}\n")
	}
	buf.WriteString("\treturn w\n}\n\n")
}

// emitStatusAccessor writes the body of the status closure, nil-checking
// each pointer segment along the status chain.
func (e *Emitter) emitStatusAccessor(buf *bytes.Buffer, r *ir.Resource, out *schema.Shape) {
	expr := "r"
	shapeName := out.Name
	var conds []string
	for i, seg := range r.StatusPath {
		expr += "." + seg
		last := i == len(r.StatusPath)-1
		if e.memberIsPtr(shapeName, seg) {
			conds = append(conds, expr+" == nil")
		}
		if !last {
			s, _ := e.graph.Resolve(shapeName)
			if m := s.Member(seg); m != nil {
				shapeName = m.Target
			}
		}
	}
	deref := ""
	if e.memberIsPtr(shapeName, r.StatusPath[len(r.StatusPath)-1]) {
		deref = "*"
	}
	if len(conds) > 0 {
		fmt.Fprintf(buf, "\t\tif %s {\n\t\t\treturn \"\"\n\t\t}\n", strings.Join(conds, " || "))
	}
	fmt.Fprintf(buf, "\t\treturn %s%s\n", deref, expr)
}

// emitAdditional renders an ad hoc operation generically from its signature.
func (e *Emitter) emitAdditional(buf *bytes.Buffer, m ir.Method) {
	inputType := ""
	if m.Input != "" {
		inputType = e.structName(m.Input)
	}
	fmt.Fprintf(buf, "// %s invokes the %s operation.\n", m.Name, m.Operation)
	switch {
	case m.Output != "" && inputType != "":
		outType := e.structName(m.Output)
		fmt.Fprintf(buf, "func (c *Client) %s(ctx context.Context, input *%s) (*%s, error) {\n", m.Name, inputType, outType)
		buf.WriteString("\tif err := smcore.ValidateInput(input); err != nil {\n\t\treturn nil, err\n\t}\n")
		fmt.Fprintf(buf, "\tbody, err := c.codec.Serialize(input, %q)\n", m.Input)
		buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		fmt.Fprintf(buf, "\tresp, err := c.handle.Call(ctx, %q, body)\n", m.Operation)
		buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		fmt.Fprintf(buf, "\tout, err := c.codec.Transform(resp, %q, nil)\n", m.Output)
		buf.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		fmt.Fprintf(buf, "\treturn out.(*%s), nil\n}\n\n", outType)
	case inputType != "":
		fmt.Fprintf(buf, "func (c *Client) %s(ctx context.Context, input *%s) error {\n", m.Name, inputType)
		buf.WriteString("\tif err := smcore.ValidateInput(input); err != nil {\n\t\treturn err\n\t}\n")
		fmt.Fprintf(buf, "\tbody, err := c.codec.Serialize(input, %q)\n", m.Input)
		buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
		fmt.Fprintf(buf, "\t_, err = c.handle.Call(ctx, %q, body)\n", m.Operation)
		buf.WriteString("\treturn err\n}\n\n")
	default:
		fmt.Fprintf(buf, "func (c *Client) %s(ctx context.Context) error {\n", m.Name)
		fmt.Fprintf(buf, "\t_, err := c.handle.Call(ctx, %q, map[string]any{})\n", m.Operation)
		buf.WriteString("\treturn err\n}\n\n")
	}
}

// EmitClientFile renders the Client type that the class methods hang off,
// bootstrapped from the embedded service description.
func (e *Emitter) EmitClientFile() []byte {
	var body bytes.Buffer

	body.WriteString("//go:embed service_description.json\n")
	body.WriteString("var serviceDescription []byte\n\n")

	body.WriteString("// Client binds the generated resource classes to a transport and the\n")
	body.WriteString("// layered defaults configuration.\n")
	body.WriteString("type Client struct {\n")
	body.WriteString("\thandle   smcore.ClientHandle\n")
	body.WriteString("\tcodec    *smcore.Codec\n")
	body.WriteString("\tdefaults *smcore.DefaultsResolver\n")
	body.WriteString("}\n\n")

	body.WriteString("// NewClient builds a client over the given transport. defaultsPath\n")
	body.WriteString("// optionally points at a defaults configuration document; when empty the\n")
	fmt.Fprintf(&body, "// %s environment variable is consulted. A missing or\n", smcore.DefaultsConfigEnv)
	body.WriteString("// malformed document leaves defaults resolution empty rather than failing.\n")
	body.WriteString("func NewClient(handle smcore.ClientHandle, defaultsPath string) (*Client, error) {\n")
	body.WriteString("\tsvc, err := schema.Load(bytes.NewReader(serviceDescription))\n")
	body.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	body.WriteString("\tcfg, err := smcore.LoadDefaultsConfig(defaultsPath)\n")
	body.WriteString("\tif err != nil {\n")
	body.WriteString("\t\tslog.Debug(\"defaults configuration unavailable\", slog.String(\"error\", err.Error()))\n")
	body.WriteString("\t}\n")
	body.WriteString("\treturn &Client{\n")
	body.WriteString("\t\thandle:   handle,\n")
	body.WriteString("\t\tcodec:    smcore.NewCodec(svc.Graph, NewRegistry()),\n")
	body.WriteString("\t\tdefaults: smcore.NewDefaultsResolver(cfg, ConfigSchema(), nil),\n")
	body.WriteString("\t}, nil\n}\n")

	return e.assemble(body.Bytes(),
		`"bytes"`,
		`_ "embed"`,
		`"log/slog"`,
		fmt.Sprintf("%q", e.cfg.RuntimeImport+"/schema"),
	)
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
