package interceptor

// Call describes one intercepted invocation. Boundaries build a Call per
// invocation; the interceptor only reads it.
type Call struct {
	// Name is the method name logged as "<Name>()".
	Name string

	// Params are the call's arguments in declaration order.
	Params []Param

	// Returns is the declared return type. When it is unresolved the
	// post-execution records are skipped.
	Returns ReturnType

	// Policy says whether arguments and results are structured payloads.
	Policy ContentPolicy
}

// Param is a named argument value.
type Param struct {
	Name  string
	Value any

	// Payload marks the argument that carries the full request body. Only
	// payload arguments are serialized as JSON.
	Payload bool
}

type returnKind uint8

const (
	returnUnresolved returnKind = iota
	returnVoid
	returnTyped
)

// ReturnType is the declared result type of a call. The zero value is
// unresolved.
type ReturnType struct {
	kind returnKind
	name string
}

// Void marks a call that returns no value.
func Void() ReturnType {
	return ReturnType{kind: returnVoid, name: "void"}
}

// Typed marks a call returning a value of the named type. An empty name
// means the runtime type of the result is used when serializing.
func Typed(name string) ReturnType {
	return ReturnType{kind: returnTyped, name: name}
}

// Resolved reports whether the return type is known.
func (r ReturnType) Resolved() bool {
	return r.kind != returnUnresolved
}

// IsVoid reports whether the call returns no value.
func (r ReturnType) IsVoid() bool {
	return r.kind == returnVoid
}

// Name returns the declared type name, "void" for void calls and "" when
// unresolved or untyped.
func (r ReturnType) Name() string {
	return r.name
}

func (r ReturnType) String() string {
	switch r.kind {
	case returnVoid:
		return "void"
	case returnTyped:
		if r.name == "" {
			return "typed"
		}
		return r.name
	default:
		return "unresolved"
	}
}
