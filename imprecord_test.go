package imprecord_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/imprecord"
	"github.com/toejough/imprecord/match"
)

// Store is the dependency the code under test talks to.
type Store interface {
	Get(key string) (string, error)
	Put(key, value string) error
}

// StoreMock is a hand-written mock of Store.
type StoreMock struct {
	run *imprecord.Run
}

func (m *StoreMock) Get(key string) (string, error) {
	result, _ := m.run.Invoke(imprecord.Call{
		Target:      m,
		ClassDesc:   "imprecord_test.Store",
		NameAndDesc: "Get(string) (string, error)",
		Args:        []any{key},
		ReturnType:  reflect.TypeFor[getResult](),
	}).(getResult)

	return result.Value, result.Err
}

func (m *StoreMock) MockedType() reflect.Type {
	return reflect.TypeFor[Store]()
}

func (m *StoreMock) Put(key, value string) error {
	err, _ := m.run.Invoke(imprecord.Call{
		Target:      m,
		ClassDesc:   "imprecord_test.Store",
		NameAndDesc: "Put(string, string) error",
		Args:        []any{key, value},
		ReturnType:  reflect.TypeFor[error](),
	}).(error)

	return err
}

// mockT captures failures without stopping the test.
type mockT struct {
	failures []string
}

func (m *mockT) Fatalf(format string, args ...any) {
	m.failures = append(m.failures, fmt.Sprintf(format, args...))
}

func (m *mockT) Helper() {}

// getResult carries Get's two results as one stubbed value.
type getResult struct {
	Value string
	Err   error
}

// unexported variables.
var (
	_ Store                  = (*StoreMock)(nil)
	_ imprecord.MockedType   = (*StoreMock)(nil)
	_ imprecord.TestReporter = (*mockT)(nil)
)

// copyKey is the code under test.
func copyKey(store Store, from, to string) error {
	value, err := store.Get(from)
	if err != nil {
		return fmt.Errorf("get %s: %w", from, err)
	}

	return store.Put(to, value)
}

func TestCopyKey_StrictOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := imprecord.GetOrCreateRun(t)
	store := &StoreMock{run: run}

	run.Expectations(func(rec *imprecord.Recorder) {
		store.Get("a")
		rec.Result(getResult{Value: "1"})
		store.Put("b", "1")
	})

	g.Expect(copyKey(store, "a", "b")).To(Succeed())

	imprecord.Verify(t)
}

func TestCopyKey_ErrorFromStore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := imprecord.GetOrCreateRun(t)
	store := &StoreMock{run: run}
	errMissing := errors.New("missing")

	run.Expectations(func(rec *imprecord.Recorder) {
		store.Get("a")
		rec.Result(getResult{Err: errMissing})
	})

	g.Expect(copyKey(store, "a", "b")).To(MatchError(errMissing))

	run.Verify()
}

func TestCopyKey_NonStrictMatchers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := imprecord.GetOrCreateRun(t)
	store := &StoreMock{run: run}

	run.Expectations(func(rec *imprecord.Recorder) {
		rec.With(match.BeAny)
		store.Get("")
		rec.Returns(getResult{Value: "1"}, getResult{Value: "2"})

		rec.With(HavePrefix("copy-"), match.Satisfy(func(v string) error {
			if v == "" {
				return errors.New("empty value")
			}

			return nil
		}))
		store.Put("", "")
		rec.Times(2)
	}, imprecord.NonStrict())

	g.Expect(copyKey(store, "x", "copy-x")).To(Succeed())
	g.Expect(copyKey(store, "y", "copy-y")).To(Succeed())

	value, err := store.Get("z")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(value).To(Equal("2"))

	run.Verify()
}

func TestCopyKey_UnexpectedOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &mockT{}
	run := imprecord.NewRun(reporter, imprecord.Config{})
	store := &StoreMock{run: run}

	run.Expectations(func(rec *imprecord.Recorder) {
		store.Put("b", "1")
		store.Get("a")
	})

	err := copyKey(store, "a", "b")

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reporter.failures).NotTo(BeEmpty())
	g.Expect(reporter.failures[0]).To(ContainSubstring("unexpected invocation"))
	g.Expect(run.Check()).To(MatchError(imprecord.ErrUnexpectedInvocation))
	g.Expect(run.Check()).To(MatchError(imprecord.ErrMissingInvocation))
}

func TestRecording_FromHelperIsRejected(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &mockT{}
	run := imprecord.NewRun(reporter, imprecord.Config{})
	store := &StoreMock{run: run}

	run.Expectations(func(*imprecord.Recorder) {
		_ = copyKey(store, "a", "b")
	})

	g.Expect(reporter.failures).NotTo(BeEmpty())
	g.Expect(reporter.failures[0]).To(ContainSubstring(imprecord.ErrIllegalRecordingContext.Error()))
	g.Expect(run.TestRun().State.Len()).To(Equal(0))
}

func TestOnInstance(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := imprecord.GetOrCreateRun(t)
	primary, replica := &StoreMock{run: run}, &StoreMock{run: run}

	run.Expectations(func(rec *imprecord.Recorder) {
		rec.OnInstance(replica)
		primary.Get("a")
		rec.Result(getResult{Value: "from replica"})
	}, imprecord.NonStrict())

	g.Expect(primary.Get("a")).To(BeEmpty(), "calls on other instances are not matched")
	g.Expect(replica.Get("a")).To(Equal("from replica"))
	run.Verify()
}

func TestCallerAt(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(imprecord.CallerAt(0).Function).To(HaveSuffix("imprecord_test.TestCallerAt"))
}
