// Package match provides argument matchers for imprecord's Recorder.With.
// Gomega matchers can be mixed freely with the ones here. Import it by name when
// gomega is dot-imported, since both declare Satisfy:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    "github.com/toejough/imprecord/match"
//	)
//
//	run.Expectations(func(rec *imprecord.Recorder) {
//	    rec.With(BeNumerically(">", 0), match.BeAny)
//	    store.Put(0, nil)
//	    rec.Result(nil)
//	})
package match

import (
	"errors"
	"fmt"
	"reflect"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny is a matcher that matches any argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// BeInstanceOf returns a matcher accepting arguments whose dynamic type is usable as T.
// A nil argument matches only when T is an interface, pointer, slice, map, chan or
// func type.
func BeInstanceOf[T any]() Matcher {
	return instanceOfMatcher{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// BeSameInstanceAs returns a matcher accepting only the very instance given, compared
// by identity rather than by value.
func BeSameInstanceAs(instance any) Matcher {
	return sameInstanceMatcher{instance: instance}
}

// Satisfy returns a matcher that uses a predicate function to check an argument.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not.
//
// Example:
//
//	rec.With(Satisfy(func(id string) error {
//	    if !strings.HasPrefix(id, "user-") { return fmt.Errorf("not a user id: %q", id) }
//	    return nil
//	}))
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// anyMatcher is the implementation of the BeAny matcher.
type anyMatcher struct{}

// FailureMessage returns an empty string since BeAny always matches.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

// Match always returns true - matches any value.
func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

type instanceOfMatcher struct {
	typ reflect.Type
}

func (m instanceOfMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected an instance of %v, got %T", m.typ, actual)
}

func (m instanceOfMatcher) Match(actual any) (bool, error) {
	if actual == nil {
		switch m.typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return true, nil
		default:
			return false, nil
		}
	}

	return reflect.TypeOf(actual).AssignableTo(m.typ), nil
}

type sameInstanceMatcher struct {
	instance any
}

func (m sameInstanceMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected the instance %p, got %p (%T)", m.instance, actual, actual)
}

func (m sameInstanceMatcher) Match(actual any) (bool, error) {
	if m.instance == nil || actual == nil {
		return m.instance == nil && actual == nil, nil
	}

	expected, got := reflect.ValueOf(m.instance), reflect.ValueOf(actual)
	if expected.Type() != got.Type() {
		return false, nil
	}

	switch expected.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return expected.Pointer() == got.Pointer(), nil
	default:
		return false, fmt.Errorf("%w: %T has no identity to compare", errTypeMismatch, m.instance)
	}
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("argument %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("argument %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}
