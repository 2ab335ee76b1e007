// Package imprecord provides record-and-replay expectations for Go mocks.
// A test declares expected invocations inside an expectations block, the code under
// test then calls the mocks, and Verify checks the declared invocation counts.
//
// This is the public API entry point. Implementation lives in internal/core.
package imprecord

import (
	"io"

	"github.com/toejough/imprecord/internal/core"
)

// Access flags describing an intercepted member.
const (
	AccessStatic      = core.AccessStatic
	AccessConstructor = core.AccessConstructor
)

// Unbounded marks an upper invocation limit with no maximum.
const Unbounded = core.Unbounded

// Errors reported by the engine. Match them with errors.Is.
var (
	ErrIllegalRecordingContext = core.ErrIllegalRecordingContext
	ErrInvalidLimits           = core.ErrInvalidLimits
	ErrMatcherCount            = core.ErrMatcherCount
	ErrMissingInvocation       = core.ErrMissingInvocation
	ErrNoCurrentExpectation    = core.ErrNoCurrentExpectation
	ErrNotRecording            = core.ErrNotRecording
	ErrUnexpectedInvocation    = core.ErrUnexpectedInvocation
)

// Access is a bit set of member flags.
type Access = core.Access

// Call is the data a mocked member hands to Run.Invoke.
type Call = core.Call

// Caller identifies the stack frame that invoked a mocked member.
type Caller = core.Caller

// Config holds run-wide defaults and non-strict rules.
type Config = core.Config

// Delegate is a result computed from the actual arguments at replay time.
type Delegate = core.Delegate

// Expectation is one recorded invocation with its results and constraints.
type Expectation = core.Expectation

// Matcher defines the interface for flexible argument matching.
type Matcher = core.Matcher

// MemberRule marks members as non-strict.
type MemberRule = core.MemberRule

// MockedType is implemented by mocks that know which type they stand in for.
type MockedType = core.MockedType

// Panic is a result that makes the mocked member panic with Value.
type Panic = core.Panic

// PhaseOption configures an expectations block.
type PhaseOption = core.PhaseOption

// Recorder declares results, constraints and matchers inside an expectations block.
type Recorder = core.Recorder

// Run coordinates the record and replay phases of one test.
type Run = core.Run

// TestReporter is the minimal interface imprecord needs from test frameworks.
type TestReporter = core.TestReporter

// CallerAt resolves the frame skip levels above its own caller.
func CallerAt(skip int) Caller {
	return core.CallerAt(skip + 1)
}

// Iterations declares that the code under test runs the recorded calls n times.
func Iterations(n int) PhaseOption {
	return core.Iterations(n)
}

// LoadConfig parses a YAML run-policy document.
func LoadConfig(r io.Reader) (Config, error) {
	return core.LoadConfig(r)
}

// LoadConfigFile loads a YAML run-policy file.
func LoadConfigFile(path string) (Config, error) {
	return core.LoadConfigFile(path)
}

// MatchValue checks if actual matches expected.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// NewRun creates a run that is not tracked by the per-test registry.
func NewRun(t TestReporter, config Config) *Run {
	return core.NewRun(t, config)
}

// NonStrict makes every expectation recorded in the block non-strict.
func NonStrict() PhaseOption {
	return core.NonStrict()
}
