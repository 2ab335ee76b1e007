package core

import (
	"fmt"
	"reflect"
)

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// Arguments holds the recorded argument values of an invocation and, optionally, one
// matcher per position. A nil matcher slot means the position matches by equality
// with the recorded value.
type Arguments struct {
	Values   []any
	Matchers []Matcher
}

// HasMatchers reports whether a matcher set is attached.
func (a *Arguments) HasMatchers() bool {
	return a.Matchers != nil
}

// Match checks actual against the recorded arguments, returning an error describing
// the first position that does not match.
func (a *Arguments) Match(actual []any) error {
	if len(actual) != len(a.Values) {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("expected %d args, got %d", len(a.Values), len(actual))
	}

	for index, recorded := range a.Values {
		var expected any = recorded

		if a.Matchers != nil && a.Matchers[index] != nil {
			expected = a.Matchers[index]
		}

		ok, msg := MatchValue(actual[index], expected)
		if !ok {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("arg %d: %s", index, msg)
		}
	}

	return nil
}

// SetMatchers attaches a matcher set. It must have exactly one slot per argument.
func (a *Arguments) SetMatchers(matchers []Matcher) error {
	if len(matchers) != len(a.Values) {
		return fmt.Errorf("%w: %d matchers for %d arguments", ErrMatcherCount, len(matchers), len(a.Values))
	}

	a.Matchers = matchers

	return nil
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			msg := matcher.FailureMessage(actual)
			if msg == "" {
				msg = fmt.Sprintf("matcher failed for value %#v", actual)
			}

			return false, msg
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}
