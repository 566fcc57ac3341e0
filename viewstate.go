package mvi

// StateKind is the coarse presentation status of a view
type StateKind int

const (
	StateNormal StateKind = iota
	StateLoading
	StateEmpty
	StateFailure
)

func (k StateKind) String() string {
	switch k {
	case StateNormal:
		return "normal"
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ViewState is a closed set of mutually exclusive presentation states.
// Only the failure state carries a message. The zero value is Normal.
//
// ViewState is ordinary ViewModel content: reducers compute it like any
// other field.
type ViewState struct {
	kind    StateKind
	message string
}

// Normal returns the state of a view showing its content
func Normal() ViewState { return ViewState{kind: StateNormal} }

// Loading returns the loading state
func Loading() ViewState { return ViewState{kind: StateLoading} }

// Empty returns the state of a view with nothing to show
func Empty() ViewState { return ViewState{kind: StateEmpty} }

// Failure returns the failure state carrying message
func Failure(message string) ViewState {
	return ViewState{kind: StateFailure, message: message}
}

// FailureFrom returns the failure state for err
func FailureFrom(err error) ViewState {
	if err == nil {
		return Failure("")
	}
	return Failure(err.Error())
}

// Kind returns the variant of the state
func (s ViewState) Kind() StateKind { return s.kind }

// Message returns the failure message, or "" for other states
func (s ViewState) Message() string { return s.message }

// IsNormal reports whether the view shows its content
func (s ViewState) IsNormal() bool { return s.kind == StateNormal }

// IsLoading reports whether the view is waiting for content
func (s ViewState) IsLoading() bool { return s.kind == StateLoading }

// IsEmpty reports whether the view has nothing to show
func (s ViewState) IsEmpty() bool { return s.kind == StateEmpty }

// IsFailure reports whether the view shows an error
func (s ViewState) IsFailure() bool { return s.kind == StateFailure }

// Equal compares kind and failure message
func (s ViewState) Equal(other ViewState) bool {
	return s == other
}

func (s ViewState) String() string {
	if s.kind == StateFailure {
		return "failure(" + s.message + ")"
	}
	return s.kind.String()
}
