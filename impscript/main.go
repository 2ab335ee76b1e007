// impscript runs an imprecord scenario file through the expectation engine.
// A scenario lists the invocations to record and the calls to replay against them;
// impscript prints each replayed result and the verification outcome:
//
//	impscript check scenario.yaml
//
// The run-policy file named by IMPRECORD_CONFIG, or by --config, supplies the
// defaults and non-strict rules. The exit status is non-zero when the scenario fails.
package main

import (
	"fmt"
	"os"

	"github.com/toejough/imprecord/impscript/run"
)

// main is the entry point of the impscript tool.
func main() {
	if os.Args == nil {
		return
	}

	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements run.FileSystem using os package.
type realFileSystem struct{}

// ReadFile reads the file named by name and returns the contents.
func (fs *realFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}

	return data, nil
}
