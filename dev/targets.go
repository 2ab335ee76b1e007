//go:build targ

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/file"
	"github.com/toejough/targ/sh"
)

// Check runs all checks & fixes on the code, in order of correctness.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,          // clean up the module dependencies
		CheckCoverage, // does our code work?
		Scenarios,     // does the CLI still drive the engine?
		ReorderDecls,  // linter will yell about declaration order if not correct
		Lint,
	)
}

// CheckCoverage checks that function coverage meets the minimum threshold.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	linesAndCoverage := []lineAndCoverage{}

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "main.go") || strings.Contains(line, "total:") {
			continue
		}

		percent, err := strconv.ParseFloat(coveragePercent.FindString(line), 64)
		if err != nil {
			return err
		}

		linesAndCoverage = append(linesAndCoverage, lineAndCoverage{line, percent})
	}

	if len(linesAndCoverage) == 0 {
		return errors.New("no coverage data")
	}

	slices.SortStableFunc(linesAndCoverage, func(a, b lineAndCoverage) int {
		switch {
		case a.coverage < b.coverage:
			return -1
		case a.coverage > b.coverage:
			return 1
		default:
			return 0
		}
	})

	for _, lc := range linesAndCoverage {
		fmt.Println(lc.line)
	}

	const coverage = 80.0

	if lowest := linesAndCoverage[0]; lowest.coverage < coverage {
		return fmt.Errorf("function coverage was less than the limit of %.1f:\n  %s", coverage, lowest.line)
	}

	return nil
}

// CheckForFail runs all checks on the code for determining whether any fail.
func CheckForFail() error {
	fmt.Println("Checking...")

	// Checks from fastest to slowest
	return targ.Deps(
		ReorderDeclsCheck,
		LintForFail,
		TestForFail,
		Scenarios,
		CheckCoverage,
	)
}

// Clean cleans up the dev env.
func Clean() {
	fmt.Println("Cleaning...")
	os.Remove("coverage.out")
}

// Lint lints the codebase.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run")
}

// LintForFail lints the codebase purely to find out whether anything fails.
func LintForFail() error {
	fmt.Println("Linting to check for overall pass/fail...")

	return sh.Run(
		"golangci-lint", "run",
		"--fix=false",
		"--max-issues-per-linter=1",
		"--max-same-issues=1",
		"--allow-parallel-runners",
	)
}

// Mutate runs the mutation tests.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run(
		"go",
		"test",
		"-timeout=6000s",
		"-tags=mutation",
		"-ooze.v",
		".",
		"-run=TestMutation",
	)
}

// ReorderDecls reorders declarations in Go files per conventions.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	reorderedCount := 0

	err := eachSourceFile(func(path, content, reordered string) error {
		if content == reordered {
			return nil
		}

		if err := os.WriteFile(path, []byte(reordered), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("  Reordered: %s\n", path)
		reorderedCount++

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reordered %d file(s).\n", reorderedCount)

	return nil
}

// ReorderDeclsCheck checks which files need reordering without modifying them.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	outOfOrderFiles := 0

	err := eachSourceFile(func(path, content, reordered string) error {
		if content == reordered {
			return nil
		}

		outOfOrderFiles++

		diff := textdiff.Unified(path+" (current)", path+" (reordered)", content, reordered)
		fmt.Printf("\n%s\n", diff)

		return nil
	})
	if err != nil {
		return err
	}

	if outOfOrderFiles > 0 {
		fmt.Printf("\n%d file(s) need reordering. Run 'targ reorder-decls' to fix.\n", outOfOrderFiles)

		return fmt.Errorf("%d file(s) need reordering", outOfOrderFiles)
	}

	fmt.Println("All files are correctly ordered.")

	return nil
}

// Scenarios runs every impscript scenario under testdata through the CLI.
func Scenarios() error {
	fmt.Println("Running scenarios...")

	scenarios, err := filepath.Glob("impscript/run/testdata/*.yaml")
	if err != nil {
		return fmt.Errorf("failed to find scenarios: %w", err)
	}

	for _, scenario := range scenarios {
		if err := sh.Run("go", "run", "./impscript", "check", scenario); err != nil {
			return fmt.Errorf("scenario %s: %w", scenario, err)
		}
	}

	return nil
}

// Test runs the unit tests.
func Test() error {
	fmt.Println("Running unit tests...")

	// Use -count=1 to disable caching so coverage is regenerated
	return sh.Run(
		"go",
		"test",
		"-timeout=2m",
		"-race",
		"-count=1",
		"-coverprofile=coverage.out",
		"-coverpkg=./...",
		"-cover",
		"./...",
	)
}

// TestForFail runs the unit tests purely to find out whether any fail.
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")

	return sh.Run(
		"go",
		"test",
		"-timeout=10s",
		"./...",
		"-failfast",
	)
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// Watch re-runs Check whenever files change.
func Watch(ctx context.Context) error {
	fmt.Println("Watching...")

	return file.Watch(ctx, []string{"**/*.go", "**/*.yaml"}, file.WatchOptions{}, func(changes file.ChangeSet) error {
		if !hasRelevantChanges(changes) {
			return nil
		}

		fmt.Println("Change detected...")

		targ.ResetDeps() // Clear execution cache so targets run again

		err := Check()
		if err != nil {
			fmt.Println("continuing to watch after check failure (see errors above)")
		} else {
			fmt.Println("continuing to watch after all checks passed!")
		}

		return nil // Don't stop watching on error
	})
}

type lineAndCoverage struct {
	line     string
	coverage float64
}

// unexported variables.
var coveragePercent = regexp.MustCompile(`\d+\.\d`)

// eachSourceFile hands every non-hidden Go file, with its reordered content, to visit.
func eachSourceFile(visit func(path, content, reordered string) error) error {
	return filepath.WalkDir(".", func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("unable to walk %s: %w", path, err)
		}

		if entry.IsDir() {
			if path != "." && (strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "_")) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			return nil
		}

		return visit(path, string(content), reordered)
	})
}

// hasRelevantChanges returns true if the changeset contains files we care about.
// Filters out the coverage output Check() itself creates.
func hasRelevantChanges(changes file.ChangeSet) bool {
	allFiles := append(append(changes.Added, changes.Removed...), changes.Modified...)

	for _, f := range allFiles {
		if !strings.HasSuffix(f, "coverage.out") {
			return true
		}
	}

	return false
}

func output(command string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}
