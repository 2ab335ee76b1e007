package core

// ExecutionState is the expectation store of one test run, partitioned by strictness.
type ExecutionState struct {
	all       []*Expectation
	strict    []*Expectation
	nonStrict []*Expectation
}

// AddExpectation registers e, assigning its ID from the declaration order.
func (s *ExecutionState) AddExpectation(e *Expectation, nonStrict bool) {
	s.all = append(s.all, e)
	e.ID = len(s.all)

	if nonStrict {
		s.nonStrict = append(s.nonStrict, e)
	} else {
		s.strict = append(s.strict, e)
	}
}

// All returns every registered expectation in declaration order.
func (s *ExecutionState) All() []*Expectation {
	return append([]*Expectation(nil), s.all...)
}

// Len returns the number of registered expectations.
func (s *ExecutionState) Len() int {
	return len(s.all)
}

// NonStrict returns the order-insensitive expectations in declaration order.
func (s *ExecutionState) NonStrict() []*Expectation {
	return append([]*Expectation(nil), s.nonStrict...)
}

// Reset discards all expectations.
func (s *ExecutionState) Reset() {
	s.all, s.strict, s.nonStrict = nil, nil, nil
}

// Strict returns the ordered expectations in declaration order.
func (s *ExecutionState) Strict() []*Expectation {
	return append([]*Expectation(nil), s.strict...)
}
