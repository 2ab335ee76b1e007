package core

import (
	"errors"
	"fmt"

	"github.com/akedrou/textdiff"
)

// ReplayPhase answers intercepted calls from the expectations recorded on a test run.
// Strict expectations are consumed in declaration order; non-strict ones are looked
// up by match.
type ReplayPhase struct {
	run         *TestRun
	strictIndex int
	unexpected  []error
}

// NewReplayPhase starts replaying run's expectations.
func NewReplayPhase(run *TestRun) *ReplayPhase {
	return &ReplayPhase{run: run}
}

// HandleInvocation matches call against the recorded expectations and returns the
// value the mocked member should produce.
func (p *ReplayPhase) HandleInvocation(call Call) (any, error) {
	if expectation := p.matchStrict(call); expectation != nil {
		expectation.Constraints.IncrementInvocationCount()

		return expectation.Produce(call.Args), nil
	}

	if expectation := p.matchNonStrict(call); expectation != nil {
		expectation.Constraints.IncrementInvocationCount()

		if expectation.Constraints.MaxInvocations != Unbounded &&
			expectation.Constraints.InvocationCount > expectation.Constraints.MaxInvocations {
			return zeroValue(call.ReturnType), fmt.Errorf("%w: %s",
				ErrUnexpectedInvocation,
				describeViolation(expectation.CustomMessage, "expected at most %d, got %d: %s",
					expectation.Constraints.MaxInvocations, expectation.Constraints.InvocationCount,
					expectation.Invocation))
		}

		return expectation.Produce(call.Args), nil
	}

	if p.run.Strict.Contains(call.Target, call.ClassDesc) {
		err := p.unexpectedInvocation(call)
		p.unexpected = append(p.unexpected, err)

		return zeroValue(call.ReturnType), err
	}

	return zeroValue(call.ReturnType), nil
}

// Verify reports every unexpected invocation seen so far and every expectation whose
// constraints are not met, joined into one error.
func (p *ReplayPhase) Verify() error {
	errs := append([]error(nil), p.unexpected...)

	for _, expectation := range p.run.State.All() {
		err := expectation.Verify()
		if err != nil {
			errs = append(errs, fmt.Errorf("expectation #%d: %w", expectation.ID, err))
		}
	}

	return errors.Join(errs...)
}

// closestExpectation picks the expectation to diff an unexpected call against: the next
// pending strict expectation, else the last one recorded for the same member.
func (p *ReplayPhase) closestExpectation(call Call) *Expectation {
	strict := p.run.State.Strict()

	for _, expectation := range strict[min(p.strictIndex, len(strict)):] {
		if !expectation.Constraints.IsSatisfied() {
			return expectation
		}
	}

	var closest *Expectation

	for _, expectation := range p.run.State.All() {
		if expectation.Invocation.ClassDesc() == call.ClassDesc &&
			expectation.Invocation.NameAndDesc() == call.NameAndDesc {
			closest = expectation
		}
	}

	return closest
}

// matchNonStrict returns the first matching non-strict expectation with room for
// another call, else the last matching one.
func (p *ReplayPhase) matchNonStrict(call Call) *Expectation {
	var last *Expectation

	for _, expectation := range p.run.State.NonStrict() {
		if expectation.Invocation.Matches(call) != nil {
			continue
		}

		if !expectation.Constraints.IsExhausted() {
			return expectation
		}

		last = expectation
	}

	return last
}

// matchStrict walks the strict expectations from the cursor. Satisfied expectations may
// be passed over; the first unsatisfied one that does not match stops the walk.
func (p *ReplayPhase) matchStrict(call Call) *Expectation {
	strict := p.run.State.Strict()

	for index := p.strictIndex; index < len(strict); index++ {
		expectation := strict[index]

		if expectation.Invocation.Matches(call) == nil && !expectation.Constraints.IsExhausted() {
			p.strictIndex = index

			return expectation
		}

		if !expectation.Constraints.IsSatisfied() {
			return nil
		}
	}

	return nil
}

func (p *ReplayPhase) unexpectedInvocation(call Call) error {
	actual := renderCall(call.ClassDesc, call.NameAndDesc, call.Args, false, call.Target)

	closest := p.closestExpectation(call)
	if closest == nil {
		return fmt.Errorf("%w: %s", ErrUnexpectedInvocation, actual)
	}

	expected := renderCall(closest.Invocation.ClassDesc(), closest.Invocation.NameAndDesc(),
		closest.Invocation.Arguments.Values, false, nil)
	diff := textdiff.Unified(fmt.Sprintf("expectation #%d", closest.ID), "actual", expected+"\n", actual+"\n")

	return fmt.Errorf("%w: %s\n%s", ErrUnexpectedInvocation, actual, diff)
}
