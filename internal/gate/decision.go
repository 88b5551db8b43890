package gate

import "fmt"

// DecisionKind tags the outcome of evaluating a navigation request.
type DecisionKind int

const (
	// DecisionProceed lets the navigation continue to its target.
	DecisionProceed DecisionKind = iota
	// DecisionRedirect sends the navigation to Decision.Path instead.
	DecisionRedirect
	// DecisionCancel abandons the navigation.
	DecisionCancel
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionProceed:
		return "proceed"
	case DecisionRedirect:
		return "redirect"
	case DecisionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the value a Request's continuation is resolved with.
type Decision struct {
	Kind DecisionKind
	// Path is set only for DecisionRedirect.
	Path string
}

// Proceed returns a decision that lets the navigation through.
func Proceed() Decision { return Decision{Kind: DecisionProceed} }

// Redirect returns a decision that reroutes the navigation to path.
func Redirect(path string) Decision { return Decision{Kind: DecisionRedirect, Path: path} }

// Cancel returns a decision that abandons the navigation.
func Cancel() Decision { return Decision{Kind: DecisionCancel} }

func (d Decision) String() string {
	if d.Kind == DecisionRedirect {
		return "redirect(" + d.Path + ")"
	}
	return d.Kind.String()
}
