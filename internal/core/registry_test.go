package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/imprecord/internal/core"
)

func TestGetOrCreateRun_SameT_ReturnsSameRun(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	noEnv := func(string) string { return "" }

	run1 := core.GetOrCreateRun(t, noEnv)
	run2 := core.GetOrCreateRun(t, noEnv)

	g.Expect(run1).To(BeIdenticalTo(run2), "same t should return same Run")

	found, ok := core.LookupRun(t)
	g.Expect(ok).To(BeTrue())
	g.Expect(found).To(BeIdenticalTo(run1))
}

func TestGetOrCreateRun_CleanupDiscardsRun(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var (
		sub *testing.T
		run *core.Run
	)

	t.Run("subtest", func(t *testing.T) {
		sub = t
		run = core.GetOrCreateRun(t, func(string) string { return "" })
		mock := &greeterMock{run: run}

		run.Expectations(func(rec *core.Recorder) {
			mock.Greet("a")
			rec.MinTimes(0)
		})
	})

	_, ok := core.LookupRun(sub)
	g.Expect(ok).To(BeFalse())
	g.Expect(run.TestRun().State.Len()).To(Equal(0))
	g.Expect(run.TestRun().Strict.Len()).To(Equal(0))
}
