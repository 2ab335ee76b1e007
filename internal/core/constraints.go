package core

import "fmt"

// Unbounded marks an upper invocation limit with no maximum.
const Unbounded = -1

// Constraints tracks the invocation-count bounds of one expectation and how many
// times it has been matched during replay.
type Constraints struct {
	MinInvocations  int
	MaxInvocations  int
	InvocationCount int
}

// NewConstraints returns the default bounds: exactly once for strict expectations,
// any number of times for non-strict ones.
func NewConstraints(nonStrict bool) Constraints {
	if nonStrict {
		return Constraints{MinInvocations: 0, MaxInvocations: Unbounded}
	}

	return Constraints{MinInvocations: 1, MaxInvocations: 1}
}

// IncrementInvocationCount records one more matched invocation.
func (c *Constraints) IncrementInvocationCount() {
	c.InvocationCount++
}

// IsExhausted reports whether another match would exceed the upper bound.
func (c *Constraints) IsExhausted() bool {
	return c.MaxInvocations != Unbounded && c.InvocationCount >= c.MaxInvocations
}

// IsSatisfied reports whether the lower bound has been reached.
func (c *Constraints) IsSatisfied() bool {
	return c.InvocationCount >= c.MinInvocations
}

// Scale multiplies both bounds by iterations. An unbounded maximum stays unbounded.
func (c *Constraints) Scale(iterations int) {
	c.MinInvocations *= iterations

	if c.MaxInvocations != Unbounded {
		c.MaxInvocations *= iterations
	}
}

// SetLimits replaces the bounds. Use Unbounded for upper to allow any number of calls.
func (c *Constraints) SetLimits(lower, upper int) error {
	if lower < 0 {
		return fmt.Errorf("%w: negative minimum %d", ErrInvalidLimits, lower)
	}

	if upper != Unbounded && upper < 0 {
		return fmt.Errorf("%w: negative maximum %d", ErrInvalidLimits, upper)
	}

	if upper != Unbounded && lower > upper {
		return fmt.Errorf("%w: minimum %d exceeds maximum %d", ErrInvalidLimits, lower, upper)
	}

	c.MinInvocations = lower
	c.MaxInvocations = upper

	return nil
}

// String renders the bounds, e.g. "2..2" or "0..*".
func (c *Constraints) String() string {
	if c.MaxInvocations == Unbounded {
		return fmt.Sprintf("%d..*", c.MinInvocations)
	}

	return fmt.Sprintf("%d..%d", c.MinInvocations, c.MaxInvocations)
}

// Verify checks the recorded invocation count against the bounds. A non-empty
// customMessage replaces the default description.
func (c *Constraints) Verify(inv *Invocation, customMessage string) error {
	switch {
	case !c.IsSatisfied():
		return fmt.Errorf("%w: %s", ErrMissingInvocation,
			describeViolation(customMessage, "expected at least %d, got %d: %s", c.MinInvocations, c.InvocationCount, inv))
	case c.MaxInvocations != Unbounded && c.InvocationCount > c.MaxInvocations:
		return fmt.Errorf("%w: %s", ErrUnexpectedInvocation,
			describeViolation(customMessage, "expected at most %d, got %d: %s", c.MaxInvocations, c.InvocationCount, inv))
	default:
		return nil
	}
}

func describeViolation(customMessage, format string, args ...any) string {
	if customMessage != "" {
		return customMessage
	}

	return fmt.Sprintf(format, args...)
}
