package core

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// MemberRule marks members as non-strict. An empty ClassDesc matches any type; Member
// is compared with the member name, without its signature.
type MemberRule struct {
	ClassDesc string `yaml:"class"`
	Member    string `yaml:"member"`
}

// NonStrictPolicy answers whether an invocation is non-strict regardless of the
// recording block it was declared in.
type NonStrictPolicy struct {
	classes   map[string]bool
	instances []any
	members   []MemberRule
}

// AddClass marks every member of classDesc as non-strict.
func (p *NonStrictPolicy) AddClass(classDesc string) {
	if p.classes == nil {
		p.classes = make(map[string]bool)
	}

	p.classes[classDesc] = true
}

// AddInstance marks every member of one mock instance as non-strict.
func (p *NonStrictPolicy) AddInstance(mock any) {
	for _, known := range p.instances {
		if sameInstance(known, mock) {
			return
		}
	}

	p.instances = append(p.instances, mock)
}

// AddMember marks matching members as non-strict.
func (p *NonStrictPolicy) AddMember(rule MemberRule) {
	p.members = append(p.members, rule)
}

// IsNonStrictInvocation reports whether an invocation on (target, classDesc,
// nameAndDesc) is non-strict. Members fmt calls implicitly (String, GoString, Error)
// are always non-strict.
func (p *NonStrictPolicy) IsNonStrictInvocation(target any, classDesc, nameAndDesc string) bool {
	name := memberName(nameAndDesc)

	if implicitMembers[name] || p.classes[classDesc] {
		return true
	}

	if target != nil {
		for _, known := range p.instances {
			if sameInstance(known, target) {
				return true
			}
		}
	}

	for _, rule := range p.members {
		if (rule.ClassDesc == "" || rule.ClassDesc == classDesc) && rule.Member == name {
			return true
		}
	}

	return false
}

// StrictMocks is the set of mocks whose unexpected invocations fail during replay. An
// entry is either one instance or every instance of a class descriptor.
type StrictMocks struct {
	instances []any
	classes   []string
}

// Add registers target when classDesc is empty, otherwise the class descriptor. Adding
// the same instance or class twice has no effect.
func (s *StrictMocks) Add(target any, classDesc string) {
	if classDesc == "" {
		if target == nil {
			return
		}

		for _, known := range s.instances {
			if sameInstance(known, target) {
				return
			}
		}

		s.instances = append(s.instances, target)

		return
	}

	for _, known := range s.classes {
		if known == classDesc {
			return
		}
	}

	s.classes = append(s.classes, classDesc)
}

// Contains reports whether target, or its class descriptor, is registered as strict.
func (s *StrictMocks) Contains(target any, classDesc string) bool {
	for _, known := range s.classes {
		if known == classDesc {
			return true
		}
	}

	if target == nil {
		return false
	}

	for _, known := range s.instances {
		if sameInstance(known, target) {
			return true
		}
	}

	return false
}

// Len returns the number of distinct registrations.
func (s *StrictMocks) Len() int {
	return len(s.instances) + len(s.classes)
}

// TestReporter is the minimal interface imprecord needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// TestRun is the state of one executing test: its expectations, the strict-mocks
// registry and the non-strict policy. It is created at test start and discarded at
// test end; it is not safe for concurrent use.
type TestRun struct {
	ID     uuid.UUID
	State  ExecutionState
	Strict StrictMocks
	Policy NonStrictPolicy
	// ResolveMockedType returns the mocked type of a mock instance.
	ResolveMockedType TypeResolver
}

// NewTestRun creates an empty test run.
func NewTestRun() *TestRun {
	return &TestRun{
		ID:                uuid.New(),
		ResolveMockedType: DefaultTypeResolver,
	}
}

// AddStrictMock registers target, or its class when classDesc is not empty, as strict
// for the rest of the test.
func (r *TestRun) AddStrictMock(target any, classDesc string) {
	r.Strict.Add(target, classDesc)
}

// IsNonStrictInvocation consults the run's non-strict policy.
func (r *TestRun) IsNonStrictInvocation(target any, classDesc, nameAndDesc string) bool {
	return r.Policy.IsNonStrictInvocation(target, classDesc, nameAndDesc)
}

// Reset discards the run's expectations and strict-mock registrations.
func (r *TestRun) Reset() {
	r.State.Reset()
	r.Strict = StrictMocks{}
}

// MockedType is implemented by mocks that know which type they stand in for.
type MockedType interface {
	MockedType() reflect.Type
}

// TypeResolver returns the mocked type of a mock instance.
type TypeResolver func(mock any) reflect.Type

// DefaultTypeResolver asks the mock for its MockedType, falling back to its dynamic type.
func DefaultTypeResolver(mock any) reflect.Type {
	if typed, ok := mock.(MockedType); ok {
		return typed.MockedType()
	}

	return reflect.TypeOf(mock)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // fixed set of members fmt invokes implicitly
	implicitMembers = map[string]bool{"String": true, "GoString": true, "Error": true}
)

// isInstance reports whether value is usable where typ is expected.
func isInstance(typ reflect.Type, value any) bool {
	if typ == nil || value == nil {
		return false
	}

	valueType := reflect.TypeOf(value)

	if typ.Kind() == reflect.Interface {
		return valueType.Implements(typ)
	}

	return valueType.AssignableTo(typ)
}

func memberName(nameAndDesc string) string {
	if idx := strings.IndexAny(nameAndDesc, "( "); idx >= 0 {
		return nameAndDesc[:idx]
	}

	return nameAndDesc
}
