package core

// Result kinds.
const (
	// ReturnValue is the first (or only) recorded result.
	ReturnValue ResultKind = iota
	// SequenceElement is a result recorded after the first.
	SequenceElement
)

// Delegate is a result payload computed from the actual arguments at replay time.
type Delegate func(args []any) any

// Panic is a result payload that makes the mocked member panic with Value.
type Panic struct {
	Value any
}

// Result is one stubbed result. Payload is opaque to storage; replay interprets the
// Delegate and Panic payloads.
type Result struct {
	Kind    ResultKind
	Payload any
}

// ResultKind distinguishes the first recorded result from the rest of a sequence.
type ResultKind int

// Results holds the stubbed results of one expectation, consumed front to back across
// successive matches. The last result keeps answering once the rest are consumed.
type Results struct {
	results []Result
	next    int
}

// Add appends one result. The first call sets the single result; later calls turn the
// strategy into a sequence.
func (r *Results) Add(value any) {
	kind := SequenceElement
	if len(r.results) == 0 {
		kind = ReturnValue
	}

	r.results = append(r.results, Result{Kind: kind, Payload: value})
}

// AddSequence is equivalent to Add(first) followed by Add for each of rest, in order.
func (r *Results) AddSequence(first any, rest []any) {
	r.Add(first)

	for _, value := range rest {
		r.Add(value)
	}
}

// All returns the recorded results in order.
func (r *Results) All() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)

	return out
}

// IsSequence reports whether more than one result was recorded.
func (r *Results) IsSequence() bool {
	return len(r.results) > 1
}

// Len returns the number of recorded results.
func (r *Results) Len() int {
	return len(r.results)
}

// Next returns the payload for the next match. It reports false when no result was
// recorded.
func (r *Results) Next() (any, bool) {
	if len(r.results) == 0 {
		return nil, false
	}

	result := r.results[r.next]

	if r.next < len(r.results)-1 {
		r.next++
	}

	return result.Payload, true
}
