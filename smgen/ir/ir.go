// Package ir defines the intermediate representation of a resource plan: the
// typed description of the resource classes, lifecycle methods, and status
// machinery that the extractor mines out of a service description and the
// synthesizer renders to Go source.
package ir

// MethodKind identifies the lifecycle role of a generated method.
type MethodKind int

const (
	// Class-level roles: invoked without an existing resource object.
	KindCreate MethodKind = iota
	KindAdd
	KindStart
	KindRegister
	KindImport
	KindGet
	KindGetAll

	// Instance-level roles: invoked on a resource object.
	KindRefresh
	KindUpdate
	KindDelete
	KindStop
	KindDeregister
	KindWait
	KindWaitForStatus

	// KindAdditional is any operation that matched a resource but none of the
	// lifecycle vocabularies; it is generated generically from its signature.
	KindAdditional
)

// String returns the method name the kind renders to.
func (k MethodKind) String() string {
	switch k {
	case KindCreate:
		return "Create"
	case KindAdd:
		return "Add"
	case KindStart:
		return "Start"
	case KindRegister:
		return "Register"
	case KindImport:
		return "Import"
	case KindGet:
		return "Get"
	case KindGetAll:
		return "GetAll"
	case KindRefresh:
		return "Refresh"
	case KindUpdate:
		return "Update"
	case KindDelete:
		return "Delete"
	case KindStop:
		return "Stop"
	case KindDeregister:
		return "Deregister"
	case KindWait:
		return "Wait"
	case KindWaitForStatus:
		return "WaitForStatus"
	case KindAdditional:
		return "Additional"
	default:
		return "Unknown"
	}
}

// IsClassMethod reports whether the kind is invoked without an existing
// resource object.
func (k MethodKind) IsClassMethod() bool {
	switch k {
	case KindCreate, KindAdd, KindStart, KindRegister, KindImport, KindGet, KindGetAll:
		return true
	}
	return false
}

// ReturnKind classifies what a generated method hands back to the caller.
type ReturnKind int

const (
	// ReturnNone: the method returns only an error.
	ReturnNone ReturnKind = iota

	// ReturnResource: the method returns the enclosing resource type.
	ReturnResource

	// ReturnIterator: the method returns a lazy resource sequence.
	ReturnIterator

	// ReturnPayload: the method returns the operation's raw decoded output.
	// Used for additional methods whose output is not the resource itself.
	ReturnPayload
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnNone:
		return "None"
	case ReturnResource:
		return "Resource"
	case ReturnIterator:
		return "Iterator"
	case ReturnPayload:
		return "Payload"
	default:
		return "Unknown"
	}
}

// Method is one generated method, bound to the remote operation it invokes.
// Wait and WaitForStatus have no operation of their own; they poll through
// Refresh.
type Method struct {
	// Name is the Go method name, e.g. "Create" or, for additional methods,
	// the operation name itself, e.g. "DescribeClusterNode".
	Name string

	Kind MethodKind

	// Operation is the remote operation name. Empty for wait methods.
	Operation string

	// Input and Output are the operation's shape names. Output is empty for
	// fire-and-forget operations.
	Input  string
	Output string

	Returns ReturnKind

	Documentation string
}

// Warning is a non-fatal issue found while extracting or rendering the plan.
type Warning struct {
	// Code is a machine-readable identifier, e.g. "no_describe_action".
	Code string

	// Message is the human-readable description.
	Message string

	// Resource is the resource that triggered the warning, if any.
	Resource string
}
