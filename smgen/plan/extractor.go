// Package plan mines a service description into a resource plan: it groups
// operations under inferred resource names, classifies each action into a
// lifecycle role, and derives the status machinery each resource needs for
// its wait methods.
package plan

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/sagemaker-core-sub001/schema"
	"github.com/aws/sagemaker-core-sub001/smgen/ir"
)

// discoveryVerbs are the operation prefixes whose suffix names a resource.
// Describe/List/Update/Delete alone do not establish a resource; they attach
// to resources discovered through these verbs.
var discoveryVerbs = []string{"Create", "Add", "Start", "Register", "Import"}

// classVerbs maps a lowercased action verb to its class-level method kind.
var classVerbs = map[string]ir.MethodKind{
	"create":   ir.KindCreate,
	"add":      ir.KindAdd,
	"start":    ir.KindStart,
	"register": ir.KindRegister,
	"import":   ir.KindImport,
}

// instanceVerbs maps a lowercased action verb to its instance-level method
// kind.
var instanceVerbs = map[string]ir.MethodKind{
	"update":     ir.KindUpdate,
	"delete":     ir.KindDelete,
	"stop":       ir.KindStop,
	"deregister": ir.KindDeregister,
}

// defaultTerminalKeywords mark a status value as terminal when it contains
// one of them, case-insensitively. Resources declare composed states like
// UpdateCompleted or CreateFailed, so this is a substring match.
var defaultTerminalKeywords = []string{
	"Completed", "Stopped", "Deleted", "Failed", "Succeeded", "InService", "Cancelled",
}

// defaultAdditionalMethods wires operations to resources they belong to but
// whose names do not follow the verb+resource convention.
var defaultAdditionalMethods = map[string][]string{
	"Cluster": {"DescribeClusterNode", "ListClusterNodes"},
}

// defaultSummaryKeyMappings renames summary members to describe-input members
// for list outputs whose summary shape uses shortened names.
var defaultSummaryKeyMappings = map[string]map[string]string{
	"MonitoringJobDefinitionSummary": {
		"JobDefinitionName": "MonitoringJobDefinitionName",
		"JobDefinitionArn":  "MonitoringJobDefinitionArn",
	},
}

// Options tunes the extractor. The zero value uses the built-in tables.
type Options struct {
	// ServiceID, when set, must match the description's metadata.
	ServiceID string

	// AdditionalMethods extends defaultAdditionalMethods (resource name to
	// operation names).
	AdditionalMethods map[string][]string

	// SummaryKeyMappings extends defaultSummaryKeyMappings (summary shape
	// name to wire-key rename table).
	SummaryKeyMappings map[string]map[string]string

	// TerminalKeywords replaces defaultTerminalKeywords when non-empty.
	TerminalKeywords []string

	// Logger receives skip notices. Defaults to slog.Default().
	Logger *slog.Logger
}

type extractor struct {
	svc  *schema.Service
	opts Options
	plan *ir.Plan
}

// Extract builds a resource plan from a loaded service description.
func Extract(svc *schema.Service, opts Options) (*ir.Plan, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.TerminalKeywords) == 0 {
		opts.TerminalKeywords = defaultTerminalKeywords
	}
	if opts.ServiceID != "" && svc.Metadata.ServiceID != opts.ServiceID {
		return nil, fmt.Errorf("service id %q not supported (expected %q)", svc.Metadata.ServiceID, opts.ServiceID)
	}

	e := &extractor{
		svc:  svc,
		opts: opts,
		plan: &ir.Plan{
			ServiceID:  svc.Metadata.ServiceID,
			APIVersion: svc.Metadata.APIVersion,
		},
	}
	e.run()
	return e.plan, nil
}

func (e *extractor) run() {
	remaining := make(map[string]bool)
	for _, name := range e.svc.OperationNames() {
		remaining[name] = true
	}

	resourceActions := make(map[string][]string)
	var resourceNames []string

	// Each discovery verb contributes resource names; longer names claim
	// their actions first so that a short name never swallows actions that
	// belong to a longer, more specific one (Model vs ModelPackage).
	for _, verb := range discoveryVerbs {
		var discovered []string
		for action := range remaining {
			if strings.HasPrefix(action, verb) {
				discovered = append(discovered, strings.TrimPrefix(action, verb))
			}
		}
		sort.Slice(discovered, func(i, j int) bool {
			if len(discovered[i]) != len(discovered[j]) {
				return len(discovered[i]) > len(discovered[j])
			}
			return discovered[i] < discovered[j]
		})
		for _, resource := range discovered {
			var claimed []string
			for action := range remaining {
				if strings.HasSuffix(action, resource) || (strings.HasPrefix(action, "List") && strings.HasSuffix(action, resource+"s")) {
					claimed = append(claimed, action)
				}
			}
			if len(claimed) == 0 {
				continue
			}
			sort.Strings(claimed)
			resourceActions[resource] = claimed
			resourceNames = append(resourceNames, resource)
			for _, a := range claimed {
				delete(remaining, a)
			}
		}
	}

	sort.Strings(resourceNames)
	for _, name := range resourceNames {
		if r, ok := e.buildResource(name, resourceActions[name]); ok {
			e.plan.Resources = append(e.plan.Resources, r)
		}
	}
}

func (e *extractor) buildResource(name string, actions []string) (ir.Resource, bool) {
	r := ir.Resource{Name: name, RawActions: actions}

	describe := "Describe" + name
	hasDescribe := false
	for _, a := range actions {
		if a == describe {
			hasDescribe = true
			break
		}
	}
	// Not every API grouping is a full CRUD resource; accept and move on.
	if !hasDescribe {
		e.opts.Logger.Info("skipping resource without a describe action",
			slog.String("resource", name))
		e.plan.AddWarning(ir.Warning{
			Code:     "no_describe_action",
			Message:  "resource has no " + describe + " operation and was skipped",
			Resource: name,
		})
		return r, false
	}
	r.DescribeOperation = describe

	for _, action := range actions {
		verb := e.actionVerb(action, name)
		op, _ := e.svc.Operation(action)

		switch {
		case verb == "describe":
			r.ClassMethods = append(r.ClassMethods, ir.Method{
				Name: "Get", Kind: ir.KindGet, Operation: action,
				Input: op.Input, Output: op.Output, Returns: ir.ReturnResource,
				Documentation: op.Documentation,
			})
			r.InstanceMethods = append(r.InstanceMethods, ir.Method{
				Name: "Refresh", Kind: ir.KindRefresh, Operation: action,
				Input: op.Input, Output: op.Output, Returns: ir.ReturnNone,
			})
		case verb == "list":
			if binding := e.buildListBinding(name, action); binding != nil {
				r.List = binding
				r.ClassMethods = append(r.ClassMethods, ir.Method{
					Name: "GetAll", Kind: ir.KindGetAll, Operation: action,
					Input: op.Input, Output: op.Output, Returns: ir.ReturnIterator,
					Documentation: op.Documentation,
				})
			}
		default:
			if kind, ok := classVerbs[verb]; ok {
				r.ClassMethods = append(r.ClassMethods, ir.Method{
					Name: kind.String(), Kind: kind, Operation: action,
					Input: op.Input, Output: op.Output, Returns: ir.ReturnResource,
					Documentation: op.Documentation,
				})
			} else if kind, ok := instanceVerbs[verb]; ok {
				returns := ir.ReturnNone
				if kind == ir.KindUpdate {
					returns = ir.ReturnResource
				}
				r.InstanceMethods = append(r.InstanceMethods, ir.Method{
					Name: kind.String(), Kind: kind, Operation: action,
					Input: op.Input, Output: op.Output, Returns: returns,
					Documentation: op.Documentation,
				})
			} else {
				r.AdditionalMethods = append(r.AdditionalMethods, e.additionalMethod(action, op))
			}
		}
	}

	wired := e.opts.AdditionalMethods[name]
	if wired == nil {
		wired = defaultAdditionalMethods[name]
	}
	for _, action := range wired {
		if r.Method(action) != nil {
			continue
		}
		op, ok := e.svc.Operation(action)
		if !ok {
			e.plan.AddWarning(ir.Warning{
				Code:     "unknown_additional_method",
				Message:  "wired additional method " + action + " is not a declared operation",
				Resource: name,
			})
			continue
		}
		r.AdditionalMethods = append(r.AdditionalMethods, e.additionalMethod(action, op))
	}

	e.deriveStatus(&r)
	e.deriveIdentity(&r)

	if r.Waitable() {
		r.InstanceMethods = append(r.InstanceMethods,
			ir.Method{Name: "Wait", Kind: ir.KindWait, Returns: ir.ReturnNone},
			ir.Method{Name: "WaitForStatus", Kind: ir.KindWaitForStatus, Returns: ir.ReturnNone},
		)
	}
	return r, true
}

// actionVerb returns the lowercased verb part of an action relative to its
// resource: "DescribeTrainingJob" -> "describe", "ListTrainingJobs" ->
// "list".
func (e *extractor) actionVerb(action, resource string) string {
	low := strings.ToLower(action)
	resLow := strings.ToLower(resource)
	if strings.HasPrefix(low, "list") && strings.HasSuffix(low, resLow+"s") {
		return "list"
	}
	if idx := strings.LastIndex(low, resLow); idx > 0 {
		return low[:idx]
	}
	return low
}

func (e *extractor) additionalMethod(action string, op schema.Operation) ir.Method {
	returns := ir.ReturnPayload
	if op.Output == "" {
		returns = ir.ReturnNone
	}
	return ir.Method{
		Name: action, Kind: ir.KindAdditional, Operation: action,
		Input: op.Input, Output: op.Output, Returns: returns,
		Documentation: op.Documentation,
	}
}

// buildListBinding inspects the list operation's output and decides whether
// GetAll can reconstruct resource objects from the summaries. It returns nil
// (with a warning) when the summary lacks the describe operation's required
// members and no rename table is known for it.
func (e *extractor) buildListBinding(resource, operation string) *ir.ListBinding {
	op, _ := e.svc.Operation(operation)
	if op.Output == "" {
		return nil
	}
	out, err := e.svc.Graph.Resolve(op.Output)
	if err != nil {
		return nil
	}

	var summariesKey, summariesShape string
	for _, m := range out.Members {
		if m.Name == "NextToken" {
			continue
		}
		summariesKey = m.Name
		summariesShape = m.Target
		break
	}
	if summariesKey == "" {
		return nil
	}
	listShape, err := e.svc.Graph.Resolve(summariesShape)
	if err != nil || listShape.Kind != schema.KindList {
		return nil
	}
	summaryShape, err := e.svc.Graph.Resolve(listShape.MemberTarget)
	if err != nil {
		return nil
	}

	binding := &ir.ListBinding{
		Operation:    operation,
		SummariesKey: summariesKey,
		SummaryShape: summaryShape.Name,
	}

	describeOp, _ := e.svc.Operation("Describe" + resource)
	required, err := e.svc.Graph.RequiredMembers(describeOp.Input)
	if err != nil {
		return nil
	}
	covered := false
	for _, req := range required {
		if summaryShape.Member(req) != nil {
			covered = true
			break
		}
	}
	if covered || len(required) == 0 {
		return binding
	}

	mapping := e.opts.SummaryKeyMappings[summaryShape.Name]
	if mapping == nil {
		mapping = defaultSummaryKeyMappings[summaryShape.Name]
	}
	if mapping == nil {
		e.opts.Logger.Warn("summaries cannot reconstruct resource instances; GetAll needs a key mapping",
			slog.String("resource", resource),
			slog.String("summary_shape", summaryShape.Name))
		e.plan.AddWarning(ir.Warning{
			Code:     "summary_missing_identifiers",
			Message:  "summary shape " + summaryShape.Name + " lacks the required describe members; GetAll was not generated",
			Resource: resource,
		})
		return nil
	}
	binding.KeyMapping = mapping
	return binding
}

// deriveStatus walks the describe output for the resource's status member:
// <Resource>Status or Status at the top level, any *Status member as a
// fallback, then one level down through structure members. The declared enum
// of the matched member supplies the state set.
func (e *extractor) deriveStatus(r *ir.Resource) {
	op, _ := e.svc.Operation(r.DescribeOperation)
	if op.Output == "" {
		return
	}
	out, err := e.svc.Graph.Resolve(op.Output)
	if err != nil {
		return
	}

	if m := e.statusMember(out, r.Name); m != nil {
		e.bindStatus(r, []string{m.Name}, m.Target)
		return
	}
	for _, m := range out.Members {
		nested, err := e.svc.Graph.Resolve(m.Target)
		if err != nil || nested.Kind != schema.KindStructure {
			continue
		}
		if sm := e.statusMember(nested, r.Name); sm != nil {
			e.bindStatus(r, []string{m.Name, sm.Name}, sm.Target)
			return
		}
	}
}

// statusMember finds the status member of a structure shape, preferring the
// exact conventional names over the generic *Status suffix.
func (e *extractor) statusMember(s *schema.Shape, resource string) *schema.Member {
	if m := s.Member(resource + "Status"); m != nil {
		return m
	}
	if m := s.Member("Status"); m != nil {
		return m
	}
	for i := range s.Members {
		if strings.HasSuffix(s.Members[i].Name, "Status") {
			return &s.Members[i]
		}
	}
	return nil
}

func (e *extractor) bindStatus(r *ir.Resource, path []string, target string) {
	statusShape, err := e.svc.Graph.Resolve(target)
	if err != nil || len(statusShape.Enum) == 0 {
		return
	}
	r.StatusPath = path
	r.States = append([]string(nil), statusShape.Enum...)
	for _, state := range r.States {
		for _, kw := range e.opts.TerminalKeywords {
			if strings.Contains(strings.ToLower(state), strings.ToLower(kw)) {
				r.TerminalStates = append(r.TerminalStates, state)
				break
			}
		}
	}
}

// deriveIdentity records the identifying and failure-reason members of the
// describe output, used by GetName accessors and waiter error detail.
func (e *extractor) deriveIdentity(r *ir.Resource) {
	op, _ := e.svc.Operation(r.DescribeOperation)
	if op.Output == "" {
		return
	}
	out, err := e.svc.Graph.Resolve(op.Output)
	if err != nil {
		return
	}
	for _, suffix := range []string{"Name", "Arn", "Id"} {
		if m := out.Member(r.Name + suffix); m != nil {
			r.IdentifierMember = m.Name
			break
		}
	}
	for _, m := range out.Members {
		if strings.Contains(m.Name, "FailureReason") || strings.Contains(m.Name, "StatusMessage") {
			r.FailureReasonMember = m.Name
			break
		}
	}
}
