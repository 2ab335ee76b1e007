package core

import "fmt"

// Expectation is one recorded invocation together with its stubbed results, its
// invocation-count constraints, and an optional custom failure message.
type Expectation struct {
	// ID is the 1-based declaration index within the test run.
	ID            int
	Invocation    *Invocation
	Results       Results
	Constraints   Constraints
	CustomMessage string
	// NonStrict is false for ordered expectations that must occur.
	NonStrict bool
}

// NewExpectation creates the expectation for inv with default constraints for its
// strictness.
func NewExpectation(inv *Invocation, nonStrict bool) *Expectation {
	return &Expectation{
		Invocation:  inv,
		Constraints: NewConstraints(nonStrict),
		NonStrict:   nonStrict,
	}
}

// AddResult appends one stubbed result.
func (e *Expectation) AddResult(value any) {
	e.Results.Add(value)
}

// AddSequenceOfReturnValues appends first followed by each of rest.
func (e *Expectation) AddSequenceOfReturnValues(first any, rest []any) {
	e.Results.AddSequence(first, rest)
}

// Produce answers a matched call: the next stubbed result, or the invocation's
// default value when none was recorded. A Delegate payload is called with args; a
// Panic payload panics.
func (e *Expectation) Produce(args []any) any {
	payload, ok := e.Results.Next()
	if !ok {
		return e.Invocation.DefaultValue()
	}

	switch value := payload.(type) {
	case Delegate:
		return value(args)
	case Panic:
		panic(value.Value)
	default:
		return payload
	}
}

// SetCustomErrorMessage sets the message reported instead of the default when this
// expectation's constraints are violated.
func (e *Expectation) SetCustomErrorMessage(message string) {
	e.CustomMessage = message
}

// String renders the expectation for diagnostics.
func (e *Expectation) String() string {
	kind := "strict"
	if e.NonStrict {
		kind = "non-strict"
	}

	return fmt.Sprintf("#%d %s [%s] %s", e.ID, kind, e.Constraints.String(), e.Invocation)
}

// Verify checks the expectation's constraints.
func (e *Expectation) Verify() error {
	return e.Constraints.Verify(e.Invocation, e.CustomMessage)
}
