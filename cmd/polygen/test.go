package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/polygen/polygen/backend"
	"github.com/polygen/polygen/internal/runner"
)

func newTestCmd() *cobra.Command {
	var backendName, suiteDir string
	var watch bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the backend equivalency test suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(backendName, suiteDir, watch)
		},
	}

	cmd.Flags().StringVarP(&backendName, "backend", "b", "", "backend to test (required)")
	cmd.Flags().StringVar(&suiteDir, "suite", "testdata/equivalency", "directory of grammar/input/expected fixtures")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run the suite whenever a grammar or skeleton file changes")
	cmd.MarkFlagRequired("backend")

	return cmd
}

func runTest(backendName, suiteDir string, watch bool) error {
	r, ok := backendRunners[backendName]
	if !ok {
		return fmt.Errorf("no runner registered for backend %q", backendName)
	}

	cases, err := loadSuite(suiteDir)
	if err != nil {
		return fmt.Errorf("load suite %s: %w", suiteDir, err)
	}

	workDir, err := os.MkdirTemp("", "polygen-test-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	h := runner.NewHarness(workDir)
	run := func() {
		results := h.RunAll(map[string]backend.Runner{backendName: r}, cases)
		reportResults(results)
	}
	run()

	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.WithField("suite", suiteDir).Info("watching for changes")
	return h.Watch(ctx, []string{suiteDir}, 300*time.Millisecond, run)
}

func reportResults(results []runner.Result) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			log.WithError(r.Err).WithField("case", r.Case.Name).Error("test errored")
			failed++
			continue
		}
		if !r.Passed {
			log.WithFields(map[string]interface{}{"case": r.Case.Name, "got": r.Output, "want": r.Case.Expected}).Error("test failed")
			failed++
			continue
		}
		log.WithField("case", r.Case.Name).Info("test passed")
	}
	log.WithFields(map[string]interface{}{"total": len(results), "failed": failed}).Info("equivalency suite finished")
}

// backendRunners is the set of backend.Runner implementations this
// binary knows how to drive; none is built out yet (spec §1's test
// harness is named, not its concrete per-language runners).
var backendRunners = map[string]backend.Runner{}

func loadSuite(dir string) ([]runner.Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cases []runner.Case
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := dir + "/" + name
		grammarFile := base + "/grammar.peg"
		inputFile := base + "/input.txt"
		expectedFile := base + "/expected.txt"

		expected, err := os.ReadFile(expectedFile)
		if err != nil {
			continue
		}
		cases = append(cases, runner.Case{
			Name:        name,
			GrammarFile: grammarFile,
			InputFile:   inputFile,
			Expected:    string(expected),
		})
	}
	return cases, nil
}
