package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Access flags describing the intercepted member.
const (
	AccessStatic Access = 1 << iota
	AccessConstructor
)

// Access is a bit set of member flags supplied by the interceptor.
type Access uint8

// Call is the raw data an interceptor hands to the engine for one invocation of a
// mocked member.
type Call struct {
	// Target is the mock instance, or nil for package-level functions.
	Target           any
	Access           Access
	ClassDesc        string
	NameAndDesc      string
	GenericSignature string
	Args             []any
	// ReturnType is the declared result type; nil for members without a result.
	ReturnType reflect.Type
	// Caller is the frame that invoked the mocked member.
	Caller Caller
}

// Invocation describes one intercepted call. It is immutable once built, apart from
// the matcher set attached while recording.
type Invocation struct {
	target           any
	access           Access
	classDesc        string
	nameAndDesc      string
	genericSignature string
	returnType       reflect.Type
	caller           Caller
	matchInstance    bool

	Arguments Arguments
}

// NewInvocation builds the descriptor for call against the effective target, which
// may differ from call.Target when instance pinning substituted it.
func NewInvocation(call Call, target any, matchInstance bool) *Invocation {
	values := make([]any, len(call.Args))
	copy(values, call.Args)

	return &Invocation{
		target:           target,
		access:           call.Access,
		classDesc:        call.ClassDesc,
		nameAndDesc:      call.NameAndDesc,
		genericSignature: call.GenericSignature,
		returnType:       call.ReturnType,
		caller:           call.Caller,
		matchInstance:    matchInstance,
		Arguments:        Arguments{Values: values},
	}
}

// CallerFunction returns the frame that performed the invocation.
func (inv *Invocation) CallerFunction() Caller {
	return inv.caller
}

// ClassDesc returns the declaring type descriptor.
func (inv *Invocation) ClassDesc() string {
	return inv.classDesc
}

// DefaultValue returns the placeholder result for the member's declared type: nil when
// there is no result, the zero value otherwise.
func (inv *Invocation) DefaultValue() any {
	return zeroValue(inv.returnType)
}

// GenericSignature returns the optional generic signature of the member.
func (inv *Invocation) GenericSignature() string {
	return inv.genericSignature
}

// IsConstructor reports whether the member is a constructor.
func (inv *Invocation) IsConstructor() bool {
	return inv.access&AccessConstructor != 0 || strings.HasPrefix(inv.nameAndDesc, "<init>")
}

// IsStatic reports whether the member is package-level rather than bound to an instance.
func (inv *Invocation) IsStatic() bool {
	return inv.access&AccessStatic != 0 || inv.target == nil
}

// MatchInstance reports whether the invocation is pinned to its target instance.
func (inv *Invocation) MatchInstance() bool {
	return inv.matchInstance
}

// Matches reports whether call is an invocation this descriptor was recorded for.
// The returned error explains the first difference found.
func (inv *Invocation) Matches(call Call) error {
	if call.ClassDesc != inv.classDesc || call.NameAndDesc != inv.nameAndDesc {
		//nolint:err113 // match error with dynamic context
		return fmt.Errorf("expected %s.%s, got %s.%s", inv.classDesc, inv.nameAndDesc, call.ClassDesc, call.NameAndDesc)
	}

	if inv.matchInstance && !sameInstance(inv.target, call.Target) {
		//nolint:err113 // match error with dynamic context
		return fmt.Errorf("expected call on instance %p, got %p", inv.target, call.Target)
	}

	return inv.Arguments.Match(call.Args)
}

// NameAndDesc returns the member name and signature.
func (inv *Invocation) NameAndDesc() string {
	return inv.nameAndDesc
}

// String renders the invocation for diagnostics.
func (inv *Invocation) String() string {
	return renderCall(inv.classDesc, inv.nameAndDesc, inv.Arguments.Values, inv.matchInstance, inv.target)
}

// Target returns the effective target instance.
func (inv *Invocation) Target() any {
	return inv.target
}

// renderCall formats a member invocation the same way for recorded and actual calls so
// the two can be diffed.
func renderCall(classDesc, nameAndDesc string, args []any, pinned bool, target any) string {
	var builder strings.Builder

	builder.WriteString(classDesc)
	builder.WriteString(".")
	builder.WriteString(nameAndDesc)

	if pinned {
		fmt.Fprintf(&builder, " on instance %p", target)
	}

	for i, arg := range args {
		fmt.Fprintf(&builder, "\n   arg %d: %#v", i, arg)
	}

	return builder.String()
}

// sameInstance compares two mock targets by identity. Pointer-like values compare by
// address, other comparable values by ==.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		if !va.Type().Comparable() {
			return false
		}

		return a == b
	}
}

func zeroValue(typ reflect.Type) any {
	if typ == nil {
		return nil
	}

	return reflect.Zero(typ).Interface()
}
