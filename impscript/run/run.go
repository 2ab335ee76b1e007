// Package run implements the main logic for the impscript tool in a testable way.
package run

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/alexflint/go-arg"
	"github.com/toejough/imprecord"
)

// Interfaces - Public

// FileSystem interface for mocking.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// Structs - Private

// checkCmd runs one scenario file.
type checkCmd struct {
	Scenario string `arg:"positional,required" help:"path to the scenario YAML file"`
	Config   string `arg:"--config"            help:"run-policy YAML file (defaults to $IMPRECORD_CONFIG)"`
}

// cliArgs defines the command-line arguments for impscript.
type cliArgs struct {
	Check *checkCmd `arg:"subcommand:check" help:"record and replay a scenario, then verify it"`
}

// reporter collects the failures the engine reports while a scenario runs.
type reporter struct {
	failures []string
}

// Fatalf records a failure without stopping the scenario.
func (r *reporter) Fatalf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// Helper is a no-op.
func (r *reporter) Helper() {}

// take returns the failures reported since the last call.
func (r *reporter) take() []string {
	failures := r.failures
	r.failures = nil

	return failures
}

// Functions - Public

// Run executes the impscript tool logic. It takes command-line arguments, an environment variable getter, a
// FileSystem for reading the scenario and policy files, and the writer results are printed to. It returns an error
// if the arguments or files are invalid, or if the scenario fails verification.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, stdout io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	if parsed.Check == nil {
		return errNoCommand
	}

	configPath := parsed.Check.Config
	if configPath == "" {
		configPath = getEnv(imprecord.ConfigEnvVar)
	}

	config, err := loadPolicy(configPath, fileSys)
	if err != nil {
		return err
	}

	data, err := fileSys.ReadFile(parsed.Check.Scenario)
	if err != nil {
		return fmt.Errorf("failed to read scenario: %w", err)
	}

	scenario, err := LoadScenario(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", parsed.Check.Scenario, err)
	}

	return Check(scenario, config, stdout)
}

// Check records scenario's expectations on a fresh run, replays its calls, and
// verifies the result, printing each step to out.
func Check(scenario Scenario, config imprecord.Config, out io.Writer) error {
	if scenario.NonStrict {
		config.NonStrict = true
	}

	if scenario.Iterations > 0 {
		config.Iterations = scenario.Iterations
	}

	rep := &reporter{}
	run := imprecord.NewRun(rep, config)
	instances := newInstances()
	failed := false

	for _, group := range groupByStrictness(scenario.Record) {
		record(run, group, instances)
	}

	state := run.TestRun().State
	fmt.Fprintf(out, "record: %d expectations (%d strict, %d non-strict)\n",
		state.Len(), len(state.Strict()), len(state.NonStrict()))

	for _, failure := range rep.take() {
		failed = true

		fmt.Fprintf(out, "record: FAILED: %s\n", failure)
	}

	for i, step := range scenario.Replay {
		value, err := replay(run, step, instances)
		if err != nil {
			failed = true

			fmt.Fprintf(out, "replay %d: %s -> FAILED: %v\n", i+1, step, err)

			continue
		}

		fmt.Fprintf(out, "replay %d: %s -> %#v\n", i+1, step, value)
	}

	err := run.Check()
	if err != nil {
		fmt.Fprintf(out, "verify: FAILED\n%v\n", err)

		return fmt.Errorf("%w: %w", errScenarioFailed, err)
	}

	fmt.Fprintln(out, "verify: ok")

	if failed {
		return errScenarioFailed
	}

	return nil
}

// Functions - Private

// loadPolicy loads the run-policy file at path, or returns the zero config when path is empty.
func loadPolicy(path string, fileSys FileSystem) (imprecord.Config, error) {
	if path == "" {
		return imprecord.Config{}, nil
	}

	data, err := fileSys.ReadFile(path)
	if err != nil {
		return imprecord.Config{}, fmt.Errorf("failed to read policy %s: %w", path, err)
	}

	config, err := imprecord.LoadConfig(bytes.NewReader(data))
	if err != nil {
		return imprecord.Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "impscript"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// record runs one expectations block for a group of entries sharing a strictness.
func record(run *imprecord.Run, group recordGroup, instances *instances) {
	var opts []imprecord.PhaseOption
	if group.nonStrict {
		opts = append(opts, imprecord.NonStrict())
	}

	run.Expectations(func(rec *imprecord.Recorder) {
		for _, entry := range group.entries {
			if entry.OnInstance != "" {
				rec.OnInstance(instances.get(entry.OnInstance))
			}

			if len(entry.Matchers) > 0 {
				rec.With(entry.matchers()...)
			}

			call := entry.call(instances)
			call.Caller = imprecord.CallerAt(0)
			run.Invoke(call)

			declare(rec, entry)
		}
	}, opts...)
}

// replay hands one scripted call to the run, turning a stubbed panic into an error.
func replay(run *imprecord.Run, step Step, instances *instances) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", errPanicked, recovered)
		}
	}()

	return run.HandleInvocation(step.call(instances))
}

// unexported variables.
var (
	errNoCommand      = errors.New("no command given (try: impscript check <scenario.yaml>)")
	errPanicked       = errors.New("mocked member panicked")
	errScenarioFailed = errors.New("scenario failed")
)
