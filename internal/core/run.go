package core

import (
	"fmt"
	"reflect"
)

// NonStrict makes every expectation recorded in the block non-strict.
func NonStrict() PhaseOption {
	return func(config *PhaseConfig) {
		config.NonStrict = true
	}
}

// Iterations declares that the code under test runs the recorded calls n times.
// Non-strict bounds are scaled by n; strict blocks are recorded n times.
func Iterations(n int) PhaseOption {
	return func(config *PhaseConfig) {
		config.Iterations = n
	}
}

// PhaseOption configures an expectations block.
type PhaseOption func(*PhaseConfig)

// Recorder is handed to an expectations block to declare results, constraints and
// matchers for the invocations recorded in it. Failures are reported to the test.
type Recorder struct {
	t     TestReporter
	phase *RecordPhase
	open  bool
}

// Limits bounds how many times the last recorded invocation may occur. Use Unbounded
// for no maximum.
func (r *Recorder) Limits(minInvocations, maxInvocations int) *Recorder {
	r.t.Helper()

	r.do(func() error { return r.phase.HandleInvocationCountConstraint(minInvocations, maxInvocations) })

	return r
}

// MaxTimes allows the last recorded invocation at most n times.
func (r *Recorder) MaxTimes(n int) *Recorder {
	r.t.Helper()

	return r.Limits(0, n)
}

// Message replaces the default violation message of the last recorded invocation.
func (r *Recorder) Message(format string, args ...any) *Recorder {
	r.t.Helper()

	r.do(func() error { return r.phase.SetCustomErrorMessage(fmt.Sprintf(format, args...)) })

	return r
}

// MinTimes requires the last recorded invocation at least n times.
func (r *Recorder) MinTimes(n int) *Recorder {
	r.t.Helper()

	return r.Limits(n, Unbounded)
}

// OnInstance pins the next recorded invocation to mock instead of any instance of its
// type.
func (r *Recorder) OnInstance(mock any) *Recorder {
	r.t.Helper()
	r.do(func() error {
		r.phase.OnInstance(mock)

		return nil
	})

	return r
}

// Phase exposes the underlying record phase.
func (r *Recorder) Phase() *RecordPhase {
	return r.phase
}

// Result appends a stubbed result for the last recorded invocation. Successive calls
// build a sequence returned on successive matches.
func (r *Recorder) Result(value any) *Recorder {
	r.t.Helper()

	r.do(func() error { return r.phase.AddResult(value) })

	return r
}

// Returns stubs first and then each of rest, in order.
func (r *Recorder) Returns(first any, rest ...any) *Recorder {
	r.t.Helper()

	r.do(func() error { return r.phase.AddSequenceOfReturnValues(first, rest...) })

	return r
}

// Times requires the last recorded invocation exactly n times.
func (r *Recorder) Times(n int) *Recorder {
	r.t.Helper()

	return r.Limits(n, n)
}

// With sets the argument matchers for the next recorded invocation, one per argument.
// Values that are not matchers leave their slot to equality with the recorded value.
func (r *Recorder) With(matchers ...any) *Recorder {
	r.t.Helper()

	slots := make([]Matcher, len(matchers))

	for i, candidate := range matchers {
		if matcher, ok := candidate.(Matcher); ok {
			slots[i] = matcher
		}
	}

	r.do(func() error {
		r.phase.WithMatchers(slots...)

		return nil
	})

	return r
}

// do runs one declaration step, reporting its failure or the block having ended.
func (r *Recorder) do(step func() error) {
	r.t.Helper()

	err := ErrNotRecording
	if r.open {
		err = step()
	}

	if err != nil {
		r.t.Fatalf("%v", err)
	}
}

// Run coordinates the record and replay phases of one test. Mocks hand their
// intercepted calls to Invoke; the test declares expectations with Expectations and
// checks them with Verify.
type Run struct {
	t       TestReporter
	config  Config
	testRun *TestRun

	recording *RecordPhase
	replay    *ReplayPhase
}

// NewRun creates a run reporting to t, with config's defaults and non-strict rules.
func NewRun(t TestReporter, config Config) *Run {
	testRun := NewTestRun()
	config.Apply(testRun)

	return &Run{
		t:       t,
		config:  config,
		testRun: testRun,
		replay:  NewReplayPhase(testRun),
	}
}

// Expectations runs block as a record phase. Mocked members invoked directly from
// block, or from closures declared in it, are recorded as expectations. After block
// returns the run replays.
func (r *Run) Expectations(block func(rec *Recorder), opts ...PhaseOption) {
	r.t.Helper()

	config := PhaseConfig{
		NonStrict:        r.config.NonStrict,
		Iterations:       r.config.Iterations,
		RecordingContext: DeclaredIn(FunctionName(reflect.ValueOf(block).Pointer())),
	}

	for _, opt := range opts {
		opt(&config)
	}

	phase := NewRecordPhase(r.testRun, config)
	recorder := &Recorder{t: r.t, phase: phase, open: true}

	// Strict repetition is expressed by recording the block once per iteration.
	passes := 1
	if !phase.Config().NonStrict {
		passes = phase.Config().Iterations
	}

	r.recording = phase

	defer func() {
		recorder.open = false
		r.recording = nil
	}()

	for range passes {
		block(recorder)
	}
}

// HandleInvocation routes call to the active phase.
func (r *Run) HandleInvocation(call Call) (any, error) {
	if r.recording != nil {
		return r.recording.HandleInvocation(call)
	}

	return r.replay.HandleInvocation(call)
}

// Invoke is called by a mocked member with its intercepted call and returns the value
// the member should return. It must be called directly from the mocked member so the
// caller can be resolved; mocks that add their own layers set call.Caller themselves.
// Failures are reported to the test.
func (r *Run) Invoke(call Call) any {
	r.t.Helper()

	if call.Caller == (Caller{}) {
		call.Caller = CallerAt(2)
	}

	value, err := r.HandleInvocation(call)
	if err != nil {
		r.t.Fatalf("%v", err)
	}

	return value
}

// NonStrict marks mocks as non-strict for the rest of the test: their invocations are
// optional and unordered, whichever block records them.
func (r *Run) NonStrict(mocks ...any) {
	for _, mock := range mocks {
		r.testRun.Policy.AddInstance(mock)
	}
}

// TestRun exposes the run's state.
func (r *Run) TestRun() *TestRun {
	return r.testRun
}

// Check returns the verification result without reporting it.
func (r *Run) Check() error {
	return r.replay.Verify()
}

// Verify reports unexpected invocations and unmet constraints to the test.
func (r *Run) Verify() {
	r.t.Helper()

	err := r.Check()
	if err != nil {
		r.t.Fatalf("verification failed for run %s:\n%v", r.testRun.ID, err)
	}
}
