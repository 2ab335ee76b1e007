package core

import "fmt"

// PhaseConfig configures one record block.
type PhaseConfig struct {
	// NonStrict makes every expectation recorded in the block non-strict.
	NonStrict bool
	// Iterations is how many times the replayed code is expected to run the recorded
	// calls. Values below 1 count as 1.
	Iterations int
	// RecordingContext reports whether a caller may record expectations. Nil rejects
	// every caller.
	RecordingContext func(Caller) bool
}

// RecordPhase turns intercepted calls into expectations during a record block. It
// holds the single-use pending instance and matcher slots and the current
// expectation; it is not safe for concurrent use.
type RecordPhase struct {
	run    *TestRun
	config PhaseConfig

	currentExpectation  *Expectation
	nextInstanceToMatch any
	argMatchers         []Matcher
	matchInstance       bool
}

// NewRecordPhase opens a record block on run. Opening a block does not touch the
// run's state.
func NewRecordPhase(run *TestRun, config PhaseConfig) *RecordPhase {
	if config.Iterations < 1 {
		config.Iterations = 1
	}

	return &RecordPhase{run: run, config: config}
}

// AddResult appends a result to the current expectation.
func (p *RecordPhase) AddResult(value any) error {
	current, err := p.current()
	if err != nil {
		return err
	}

	current.AddResult(value)

	return nil
}

// AddSequenceOfReturnValues appends first and then each of rest to the current
// expectation.
func (p *RecordPhase) AddSequenceOfReturnValues(first any, rest ...any) error {
	current, err := p.current()
	if err != nil {
		return err
	}

	current.AddSequenceOfReturnValues(first, rest)

	return nil
}

// Config returns the block's configuration.
func (p *RecordPhase) Config() PhaseConfig {
	return p.config
}

// CurrentExpectation returns the most recently recorded expectation, or nil.
func (p *RecordPhase) CurrentExpectation() *Expectation {
	return p.currentExpectation
}

// HandleInvocation records call as a new expectation and returns the placeholder
// value for the recording call site. On error nothing is registered.
func (p *RecordPhase) HandleInvocation(call Call) (any, error) {
	target := p.configureMatchingOnMockInstanceIfSpecified(call.Target)
	invocation := NewInvocation(call, target, p.matchInstance)

	if accept := p.config.RecordingContext; accept == nil || !accept(invocation.CallerFunction()) {
		kind := "method"
		if invocation.IsConstructor() {
			kind = "constructor"
		}

		p.argMatchers = nil

		return nil, fmt.Errorf(
			"%w: attempted to record invocation to mocked %s from outside expectation block (caller %s): %s",
			ErrIllegalRecordingContext, kind, invocation.CallerFunction(), invocation,
		)
	}

	if p.argMatchers != nil {
		matchers := p.argMatchers
		p.argMatchers = nil

		err := invocation.Arguments.SetMatchers(matchers)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, invocation)
		}
	}

	nonStrict := p.config.NonStrict ||
		p.run.IsNonStrictInvocation(target, call.ClassDesc, call.NameAndDesc)

	if !nonStrict {
		classDesc := call.ClassDesc
		if p.matchInstance {
			classDesc = ""
		}

		p.run.AddStrictMock(target, classDesc)
	}

	p.currentExpectation = NewExpectation(invocation, nonStrict)
	p.run.State.AddExpectation(p.currentExpectation, nonStrict)

	return invocation.DefaultValue(), nil
}

// HandleInvocationCountConstraint sets the bounds of the current expectation. In a
// non-strict block with more than one iteration both bounds are multiplied by the
// iteration count.
func (p *RecordPhase) HandleInvocationCountConstraint(minInvocations, maxInvocations int) error {
	current, err := p.current()
	if err != nil {
		return err
	}

	limits := Constraints{MinInvocations: minInvocations, MaxInvocations: maxInvocations}

	if p.config.Iterations > 1 && p.config.NonStrict {
		limits.Scale(p.config.Iterations)
	}

	err = current.Constraints.SetLimits(limits.MinInvocations, limits.MaxInvocations)
	if err != nil {
		return fmt.Errorf("%w: %s", err, current.Invocation)
	}

	return nil
}

// OnInstance pins the next recorded invocation to mock.
func (p *RecordPhase) OnInstance(mock any) {
	p.nextInstanceToMatch = mock
}

// SetCustomErrorMessage sets the violation message of the current expectation.
func (p *RecordPhase) SetCustomErrorMessage(message string) error {
	current, err := p.current()
	if err != nil {
		return err
	}

	current.SetCustomErrorMessage(message)

	return nil
}

// WithMatchers sets the argument matchers consumed by the next recorded invocation.
// Nil entries match by equality with the recorded argument.
func (p *RecordPhase) WithMatchers(matchers ...Matcher) {
	p.argMatchers = append([]Matcher{}, matchers...)
}

// configureMatchingOnMockInstanceIfSpecified resolves instance pinning for a call on
// mock. The pending instance is consumed whenever it was compared with a target.
func (p *RecordPhase) configureMatchingOnMockInstanceIfSpecified(mock any) any {
	p.matchInstance = false

	if mock == nil || p.nextInstanceToMatch == nil {
		return mock
	}

	specified := p.nextInstanceToMatch
	p.nextInstanceToMatch = nil

	if !sameInstance(mock, specified) {
		mockedType := p.run.ResolveMockedType(mock)

		if !isInstance(mockedType, specified) {
			return mock
		}
	}

	p.matchInstance = true

	return specified
}

func (p *RecordPhase) current() (*Expectation, error) {
	if p.currentExpectation == nil {
		return nil, ErrNoCurrentExpectation
	}

	return p.currentExpectation, nil
}
