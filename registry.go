package imprecord

import (
	"os"

	"github.com/toejough/imprecord/internal/core"
)

// ConfigEnvVar names the environment variable holding the path of the run-policy file.
const ConfigEnvVar = core.ConfigEnvVar

// GetOrCreateRun returns the Run for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Run instance.
// This enables mocks built in helpers to share the test's expectations.
//
// A new Run starts from the policy file named by IMPRECORD_CONFIG, if set.
func GetOrCreateRun(t TestReporter) *Run {
	return core.GetOrCreateRun(t, os.Getenv)
}

// Verify reports the unmet expectations of the Run registered under t.
// If no Run has been created for t yet, Verify returns immediately.
func Verify(t TestReporter) {
	t.Helper()

	if run, ok := core.LookupRun(t); ok {
		run.Verify()
	}
}
