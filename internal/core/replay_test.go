package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/imprecord/internal/core"
)

func TestReplay_NonStrictBounds(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := core.NewTestRun()
	mock := &greeterMock{}

	phase := recordingPhase(run, true, 1)
	_, err := phase.HandleInvocation(greetCall(mock, "1"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(phase.HandleInvocationCountConstraint(2, 2)).To(Succeed())
	g.Expect(phase.AddResult("x")).To(Succeed())

	replay := core.NewReplayPhase(run)

	for range 2 {
		value, err := replay.HandleInvocation(greetCall(mock, "1"))
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(value).To(Equal("x"))
	}

	g.Expect(replay.Verify()).To(Succeed())

	_, err = replay.HandleInvocation(greetCall(mock, "1"))
	g.Expect(err).To(MatchError(core.ErrUnexpectedInvocation))
	g.Expect(replay.Verify()).To(MatchError(core.ErrUnexpectedInvocation))
}

func TestReplay_StrictOrder(t *testing.T) {
	t.Parallel()

	record := func(g Gomega) (*core.TestRun, *greeterMock) {
		run := core.NewTestRun()
		mock := &greeterMock{}
		phase := recordingPhase(run, false, 1)

		for _, name := range []string{"a", "b"} {
			_, err := phase.HandleInvocation(greetCall(mock, name))
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(phase.AddResult("hi " + name)).To(Succeed())
		}

		return run, mock
	}

	t.Run("in order", func(t *testing.T) {
		t.Parallel()
		g := NewWithT(t)

		run, mock := record(g)
		replay := core.NewReplayPhase(run)

		g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("hi a"))
		g.Expect(replay.HandleInvocation(greetCall(mock, "b"))).To(Equal("hi b"))
		g.Expect(replay.Verify()).To(Succeed())
	})

	t.Run("out of order", func(t *testing.T) {
		t.Parallel()
		g := NewWithT(t)

		run, mock := record(g)
		replay := core.NewReplayPhase(run)

		value, err := replay.HandleInvocation(greetCall(mock, "b"))

		g.Expect(value).To(Equal(""))
		g.Expect(err).To(MatchError(core.ErrUnexpectedInvocation))
		g.Expect(err.Error()).To(ContainSubstring("expectation #1"))
		g.Expect(err.Error()).To(ContainSubstring(`-   arg 0: "a"`))
		g.Expect(err.Error()).To(ContainSubstring(`+   arg 0: "b"`))

		verifyErr := replay.Verify()
		g.Expect(verifyErr).To(MatchError(core.ErrUnexpectedInvocation))
		g.Expect(verifyErr).To(MatchError(core.ErrMissingInvocation))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		g := NewWithT(t)

		run, mock := record(g)
		replay := core.NewReplayPhase(run)

		g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("hi a"))

		err := replay.Verify()
		g.Expect(err).To(MatchError(core.ErrMissingInvocation))
		g.Expect(err.Error()).To(ContainSubstring("expectation #2"))
	})

	t.Run("exhausted strict expectation rejects another call", func(t *testing.T) {
		t.Parallel()
		g := NewWithT(t)

		run, mock := record(g)
		replay := core.NewReplayPhase(run)

		g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("hi a"))

		_, err := replay.HandleInvocation(greetCall(mock, "a"))
		g.Expect(err).To(MatchError(core.ErrUnexpectedInvocation))
	})
}

func TestReplay_SkipsSatisfiedStrictExpectations(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := core.NewTestRun()
	mock := &greeterMock{}
	phase := recordingPhase(run, false, 1)

	_, err := phase.HandleInvocation(greetCall(mock, "a"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(phase.HandleInvocationCountConstraint(0, 1)).To(Succeed())

	_, err = phase.HandleInvocation(greetCall(mock, "b"))
	g.Expect(err).NotTo(HaveOccurred())

	replay := core.NewReplayPhase(run)

	_, err = replay.HandleInvocation(greetCall(mock, "b"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(replay.Verify()).To(Succeed())
}

func TestReplay_UnrecordedCalls(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := core.NewTestRun()
	strictMock, looseMock := &greeterMock{}, &greeterMock{}

	phase := recordingPhase(run, false, 1)
	phase.OnInstance(strictMock)

	_, err := phase.HandleInvocation(greetCall(strictMock, "a"))
	g.Expect(err).NotTo(HaveOccurred())

	replay := core.NewReplayPhase(run)

	value, err := replay.HandleInvocation(greetCall(looseMock, "z"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(value).To(Equal(""))

	_, err = replay.HandleInvocation(greetCall(strictMock, "z"))
	g.Expect(err).To(MatchError(core.ErrUnexpectedInvocation))
}

func TestReplay_NonStrictLookup(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	run := core.NewTestRun()
	mock := &greeterMock{}
	phase := recordingPhase(run, true, 1)

	_, err := phase.HandleInvocation(greetCall(mock, "a"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(phase.AddResult("first")).To(Succeed())
	g.Expect(phase.HandleInvocationCountConstraint(0, 1)).To(Succeed())

	_, err = phase.HandleInvocation(greetCall(mock, "a"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(phase.AddResult("second")).To(Succeed())

	phase.WithMatchers(Not(Equal("a")))

	_, err = phase.HandleInvocation(greetCall(mock, "ignored"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(phase.AddResult("other")).To(Succeed())

	replay := core.NewReplayPhase(run)

	g.Expect(replay.HandleInvocation(greetCall(mock, "z"))).To(Equal("other"))
	g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("first"))
	g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("second"))
	g.Expect(replay.HandleInvocation(greetCall(mock, "a"))).To(Equal("second"))
	g.Expect(replay.Verify()).To(Succeed())
}
