package core

import (
	"fmt"
	"sync"
)

// ConfigEnvVar names the environment variable holding the path of the run-policy file.
const ConfigEnvVar = "IMPRECORD_CONFIG"

// DefaultConfig returns the process-wide default config, loaded on first use from the
// file named by ConfigEnvVar as returned by getEnv. With no file configured it is the
// zero Config.
func DefaultConfig(getEnv func(string) string) (Config, error) {
	defaultConfigOnce.Do(func() {
		path := getEnv(ConfigEnvVar)
		if path == "" {
			return
		}

		defaultConfig, errDefaultConfig = LoadConfigFile(path)
		if errDefaultConfig != nil {
			errDefaultConfig = fmt.Errorf("%s=%s: %w", ConfigEnvVar, path, errDefaultConfig)
		}
	})

	return defaultConfig, errDefaultConfig
}

// GetOrCreateRun returns the Run for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Run instance, so mocks
// created in helpers share the test's expectations.
//
// If the TestReporter supports Cleanup (like *testing.T), the Run is
// automatically removed from the registry when the test completes, and its state is
// discarded.
func GetOrCreateRun(t TestReporter, getEnv func(string) string) *Run {
	registryMu.Lock()
	defer registryMu.Unlock()

	if run, ok := registry[t]; ok {
		return run
	}

	config, err := DefaultConfig(getEnv)
	if err != nil {
		t.Helper()
		t.Fatalf("%v", err)
	}

	run := NewRun(t, config)
	registry[t] = run

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()

			run.testRun.Reset()
		})
	}

	return run
}

// LookupRun returns the Run registered for t, if any.
func LookupRun(t TestReporter) (*Run, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	run, ok := registry[t]

	return run, ok
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Run)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
	//nolint:gochecknoglobals // loaded once per process
	defaultConfigOnce sync.Once
	//nolint:gochecknoglobals // loaded once per process
	defaultConfig Config
	//nolint:gochecknoglobals // loaded once per process
	errDefaultConfig error
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}
