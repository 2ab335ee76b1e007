package core_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/imprecord/internal/core"
)

func TestCallerAt(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	caller := core.CallerAt(0)

	g.Expect(caller.Function).To(HaveSuffix("core_test.TestCallerAt"))
	g.Expect(caller.File).To(HaveSuffix("caller_test.go"))
	g.Expect(caller.String()).To(ContainSubstring("caller_test.go:"))
	g.Expect(core.Caller{}.String()).To(Equal("<unknown caller>"))
}

func TestDeclaredIn(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	accept := core.DeclaredIn("pkg.TestX.func1")

	g.Expect(accept(core.Caller{Function: "pkg.TestX.func1"})).To(BeTrue())
	g.Expect(accept(core.Caller{Function: "pkg.TestX.func1.2"})).To(BeTrue())
	g.Expect(accept(core.Caller{Function: "pkg.TestX.func10"})).To(BeFalse())
	g.Expect(accept(core.Caller{Function: "pkg.TestX"})).To(BeFalse())
	g.Expect(core.DeclaredIn("")(core.Caller{})).To(BeFalse())
}

func TestInvocation_Rendering(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := &greeterMock{}
	inv := core.NewInvocation(greetCall(mock, "bob"), mock, true)

	rendered := inv.String()
	g.Expect(rendered).To(HavePrefix("core_test.greeter.Greet(string) string on instance 0x"))
	g.Expect(strings.Count(rendered, "\n")).To(Equal(1))
	g.Expect(inv.IsConstructor()).To(BeFalse())
	g.Expect(inv.IsStatic()).To(BeFalse())

	ctor := core.NewInvocation(core.Call{ClassDesc: "pkg.T", NameAndDesc: "<init>()"}, nil, false)
	g.Expect(ctor.IsConstructor()).To(BeTrue())
	g.Expect(ctor.IsStatic()).To(BeTrue())
}

func TestInvocation_ArgumentsAreCopied(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	call := greetCall(nil, "bob")
	inv := core.NewInvocation(call, nil, false)
	call.Args[0] = "mallory"

	g.Expect(inv.Arguments.Values).To(Equal([]any{"bob"}))
}

func TestInvocation_MatchesMember(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	inv := core.NewInvocation(greetCall(nil, "bob"), nil, false)

	other := greetCall(nil, "bob")
	other.NameAndDesc = "Wave(string) string"

	g.Expect(inv.Matches(other)).To(MatchError(ContainSubstring("Wave")))
	g.Expect(inv.Matches(core.Call{ClassDesc: "core_test.greeter", NameAndDesc: "Greet(string) string"})).
		To(MatchError(ContainSubstring("expected 1 args, got 0")))
}
