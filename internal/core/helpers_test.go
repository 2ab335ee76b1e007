package core_test

import (
	"fmt"
	"reflect"

	"github.com/toejough/imprecord/internal/core"
)

// fakeReporter records Fatalf messages instead of stopping the test.
type fakeReporter struct {
	failures []string
}

func (f *fakeReporter) Fatalf(format string, args ...any) {
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func (f *fakeReporter) Helper() {}

// greeter is the interface the mocks in these tests stand in for.
type greeter interface {
	Greet(name string) string
}

// greeterMock is a minimal hand-written mock forwarding to a Run.
type greeterMock struct {
	run *core.Run
}

func (m *greeterMock) Greet(name string) string {
	value, _ := m.run.Invoke(core.Call{
		Target:      m,
		ClassDesc:   "core_test.greeter",
		NameAndDesc: "Greet(string) string",
		Args:        []any{name},
		ReturnType:  reflect.TypeFor[string](),
	}).(string)

	return value
}

func (m *greeterMock) MockedType() reflect.Type {
	return reflect.TypeFor[greeter]()
}

// unexported variables.
var (
	_ greeter         = (*greeterMock)(nil)
	_ core.MockedType = (*greeterMock)(nil)
)

// acceptAll is a recording context that admits every caller.
func acceptAll(core.Caller) bool { return true }

// greetCall builds the intercepted call for greeter.Greet on target.
func greetCall(target any, name string) core.Call {
	return core.Call{
		Target:      target,
		ClassDesc:   "core_test.greeter",
		NameAndDesc: "Greet(string) string",
		Args:        []any{name},
		ReturnType:  reflect.TypeFor[string](),
	}
}

// recordingPhase opens a record phase that accepts every caller.
func recordingPhase(run *core.TestRun, nonStrict bool, iterations int) *core.RecordPhase {
	return core.NewRecordPhase(run, core.PhaseConfig{
		NonStrict:        nonStrict,
		Iterations:       iterations,
		RecordingContext: acceptAll,
	})
}
