package ir

// ListBinding wires a resource's GetAll method to its list operation.
type ListBinding struct {
	// Operation is the list operation name, e.g. "ListTrainingJobs".
	Operation string

	// SummariesKey is the member of the list output shape holding the summary
	// array (the first member that is not the continuation cursor).
	SummariesKey string

	// SummaryShape is the structure shape of one summary item.
	SummaryShape string

	// KeyMapping renames summary wire keys to the resource's identifying
	// member names when the two disagree. Nil when the summary already
	// carries the describe operation's required members.
	KeyMapping map[string]string
}

// Resource is one planned resource class: the actions grouped under an
// inferred resource name, classified into lifecycle roles, plus the status
// machinery derived from its describe operation.
type Resource struct {
	// Name is the resource name, e.g. "TrainingJob".
	Name string

	// IdentifierMember is the member of the describe output that identifies
	// the resource (<Name>Name, <Name>Arn, or <Name>Id), if present.
	IdentifierMember string

	// DescribeOperation is the Describe<Name> operation backing Get and
	// Refresh.
	DescribeOperation string

	ClassMethods      []Method
	InstanceMethods   []Method
	AdditionalMethods []Method

	// RawActions lists every operation name grouped under this resource,
	// sorted, before classification.
	RawActions []string

	// StatusPath is the ordered member path from the describe output to the
	// resource's status value. Empty when the resource has no status member.
	StatusPath []string

	// States are the declared enum values of the status member; the subset in
	// TerminalStates contains a terminal keyword.
	States         []string
	TerminalStates []string

	// FailureReasonMember names the describe-output member carrying failure
	// detail (FailureReason or StatusMessage), if any.
	FailureReasonMember string

	// List is set when the resource has a usable GetAll binding.
	List *ListBinding

	Documentation string
}

// Waitable reports whether the resource gets Wait and WaitForStatus methods.
func (r *Resource) Waitable() bool {
	return len(r.StatusPath) > 0 && len(r.States) > 0
}

// Method returns the named method across all three method lists, or nil.
func (r *Resource) Method(name string) *Method {
	for _, ms := range [][]Method{r.ClassMethods, r.InstanceMethods, r.AdditionalMethods} {
		for i := range ms {
			if ms[i].Name == name {
				return &ms[i]
			}
		}
	}
	return nil
}

// Plan is a complete extracted resource plan for one service.
type Plan struct {
	// ServiceID and APIVersion come from the service description metadata.
	ServiceID  string
	APIVersion string

	// Resources are ordered by name.
	Resources []Resource

	// Warnings are the non-fatal issues hit during extraction.
	Warnings []Warning
}

// FindResource returns the named resource, or nil.
func (p *Plan) FindResource(name string) *Resource {
	for i := range p.Resources {
		if p.Resources[i].Name == name {
			return &p.Resources[i]
		}
	}
	return nil
}

// AddWarning appends a warning to the plan.
func (p *Plan) AddWarning(w Warning) {
	p.Warnings = append(p.Warnings, w)
}

// Validate checks the structural invariants of a plan and returns all
// problems found. A valid plan has unique resource names, a describe
// operation behind every Get, and terminal states drawn from the declared
// state set.
func (p *Plan) Validate() []error {
	var errs []error

	seen := make(map[string]bool, len(p.Resources))
	for i := range p.Resources {
		r := &p.Resources[i]
		if seen[r.Name] {
			errs = append(errs, &PlanError{Resource: r.Name, Detail: "duplicate resource name"})
			continue
		}
		seen[r.Name] = true

		if r.Method("Get") != nil && r.DescribeOperation == "" {
			errs = append(errs, &PlanError{Resource: r.Name, Detail: "Get method without a describe operation"})
		}
		states := make(map[string]bool, len(r.States))
		for _, s := range r.States {
			states[s] = true
		}
		for _, t := range r.TerminalStates {
			if !states[t] {
				errs = append(errs, &PlanError{Resource: r.Name, Detail: "terminal state " + t + " not in declared states"})
			}
		}
		if r.List != nil && r.List.Operation == "" {
			errs = append(errs, &PlanError{Resource: r.Name, Detail: "list binding without an operation"})
		}
	}
	return errs
}

// PlanError is a structural problem in an extracted plan.
type PlanError struct {
	Resource string
	Detail   string
}

func (e *PlanError) Error() string {
	return "plan: resource " + e.Resource + ": " + e.Detail
}
