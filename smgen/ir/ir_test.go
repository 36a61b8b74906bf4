package ir

import "testing"

func TestMethodKindString(t *testing.T) {
	tests := []struct {
		kind MethodKind
		want string
	}{
		{KindCreate, "Create"},
		{KindGet, "Get"},
		{KindGetAll, "GetAll"},
		{KindRefresh, "Refresh"},
		{KindWaitForStatus, "WaitForStatus"},
		{KindAdditional, "Additional"},
		{MethodKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("MethodKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMethodKindIsClassMethod(t *testing.T) {
	class := []MethodKind{KindCreate, KindAdd, KindStart, KindRegister, KindImport, KindGet, KindGetAll}
	instance := []MethodKind{KindRefresh, KindUpdate, KindDelete, KindStop, KindDeregister, KindWait, KindWaitForStatus, KindAdditional}
	for _, k := range class {
		if !k.IsClassMethod() {
			t.Errorf("%s should be a class method", k)
		}
	}
	for _, k := range instance {
		if k.IsClassMethod() {
			t.Errorf("%s should not be a class method", k)
		}
	}
}

func TestResourceWaitable(t *testing.T) {
	r := &Resource{Name: "TrainingJob"}
	if r.Waitable() {
		t.Error("resource with no status path should not be waitable")
	}
	r.StatusPath = []string{"TrainingJobStatus"}
	if r.Waitable() {
		t.Error("resource with no declared states should not be waitable")
	}
	r.States = []string{"InProgress", "Completed"}
	if !r.Waitable() {
		t.Error("resource with status path and states should be waitable")
	}
}

func TestResourceMethodLookup(t *testing.T) {
	r := &Resource{
		Name:              "Cluster",
		ClassMethods:      []Method{{Name: "Create", Kind: KindCreate}, {Name: "Get", Kind: KindGet}},
		InstanceMethods:   []Method{{Name: "Delete", Kind: KindDelete}},
		AdditionalMethods: []Method{{Name: "DescribeClusterNode", Kind: KindAdditional}},
	}
	for _, name := range []string{"Create", "Get", "Delete", "DescribeClusterNode"} {
		if r.Method(name) == nil {
			t.Errorf("Method(%q) = nil", name)
		}
	}
	if r.Method("Stop") != nil {
		t.Error("Method(Stop) should be nil")
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr int
	}{
		{
			name: "valid",
			plan: Plan{Resources: []Resource{{
				Name:              "TrainingJob",
				DescribeOperation: "DescribeTrainingJob",
				ClassMethods:      []Method{{Name: "Get", Kind: KindGet, Operation: "DescribeTrainingJob"}},
				States:            []string{"InProgress", "Completed", "Failed"},
				TerminalStates:    []string{"Completed", "Failed"},
				List:              &ListBinding{Operation: "ListTrainingJobs"},
			}}},
			wantErr: 0,
		},
		{
			name: "duplicate resource",
			plan: Plan{Resources: []Resource{
				{Name: "Endpoint"},
				{Name: "Endpoint"},
			}},
			wantErr: 1,
		},
		{
			name: "get without describe",
			plan: Plan{Resources: []Resource{{
				Name:         "Endpoint",
				ClassMethods: []Method{{Name: "Get", Kind: KindGet}},
			}}},
			wantErr: 1,
		},
		{
			name: "terminal state not declared",
			plan: Plan{Resources: []Resource{{
				Name:           "Endpoint",
				States:         []string{"Creating"},
				TerminalStates: []string{"InService"},
			}}},
			wantErr: 1,
		},
		{
			name: "list binding without operation",
			plan: Plan{Resources: []Resource{{
				Name: "Endpoint",
				List: &ListBinding{SummariesKey: "Endpoints"},
			}}},
			wantErr: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.plan.Validate()
			if len(errs) != tt.wantErr {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErr, errs)
			}
		})
	}
}

func TestPlanFindResource(t *testing.T) {
	p := Plan{Resources: []Resource{{Name: "Model"}, {Name: "Endpoint"}}}
	if p.FindResource("Model") == nil {
		t.Error("FindResource(Model) = nil")
	}
	if p.FindResource("Cluster") != nil {
		t.Error("FindResource(Cluster) should be nil")
	}
}
