package interceptor

// Eligibility says whether calls are intercepted. It is declared on a
// controller or service and may be overridden per method.
type Eligibility uint8

const (
	// Inherited defers to the enclosing declaration.
	Inherited Eligibility = iota
	// Enabled turns logging on.
	Enabled
	// Disabled turns logging off.
	Disabled
)

// ResolveEligibility reports whether a method is logged. A method-level
// declaration overrides the class level; Inherited on both means disabled.
func ResolveEligibility(method, class Eligibility) bool {
	if method != Inherited {
		return method == Enabled
	}
	return class == Enabled
}

func (e Eligibility) String() string {
	switch e {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "inherited"
	}
}
