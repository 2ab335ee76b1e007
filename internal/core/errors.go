package core

import "errors"

// Sentinel errors. Callers match them with errors.Is; the engine wraps them with
// the invocation that triggered the failure.
var (
	// ErrIllegalRecordingContext is returned when a mocked member is invoked during
	// recording from outside an expectations block.
	ErrIllegalRecordingContext = errors.New("illegal recording context")
	// ErrInvalidLimits is returned when invocation-count bounds are inconsistent.
	ErrInvalidLimits = errors.New("invalid invocation count limits")
	// ErrMatcherCount is returned when an argument matcher set does not line up
	// with the recorded arguments.
	ErrMatcherCount = errors.New("argument matcher count mismatch")
	// ErrMissingInvocation is reported when an expectation was matched fewer times
	// than its lower bound.
	ErrMissingInvocation = errors.New("missing invocation")
	// ErrNoCurrentExpectation is returned when results or constraints are declared
	// before any invocation was recorded.
	ErrNoCurrentExpectation = errors.New("no current expectation")
	// ErrNotRecording is returned when a recorder is used after its block ended.
	ErrNotRecording = errors.New("not recording")
	// ErrUnexpectedInvocation is reported when a call matches no expectation it is
	// allowed to match.
	ErrUnexpectedInvocation = errors.New("unexpected invocation")
)
