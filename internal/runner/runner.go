// Package runner drives the backend equivalency test suite `polygen
// test` runs: for each backend runner and fixture case, compile in a
// fresh work directory, execute against the case's input and compare
// the output. The harness itself does not generate parser source.
// Grounded on the original's generator/runner.py RunnerBase
// (setup/run/setdown lifecycle, DEPENDENCIES preflight) recast onto
// this module's own backend.Runner interface, plus a --watch loop
// shaped after mercator-hq-jupiter's pkg/policy/manager/watcher.go.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/polygen/polygen/backend"
)

// Case is one equivalency fixture: a grammar, an input file to feed
// the generated parser, and the output it must produce.
type Case struct {
	Name        string
	GrammarFile string
	InputFile   string
	Expected    string
}

// Result is one Case's outcome against one backend.
type Result struct {
	Case     Case
	Backend  string
	Passed   bool
	Output   string
	ExitCode int
	Err      error
}

// Harness runs a Suite of Cases against a set of backend.Runners, each
// working directory named with a fresh uuid so parallel runs across
// backends never collide on disk.
type Harness struct {
	WorkRoot string
	Log      *logrus.Logger
}

func NewHarness(workRoot string) *Harness {
	return &Harness{WorkRoot: workRoot, Log: logrus.StandardLogger()}
}

// RunOne creates a fresh, empty uuid-named work directory, passes it to
// r.Compile, then executes one case against one backend, per
// RunnerBase's setup/run/setdown lifecycle (here: Compile/Run/Cleanup).
// It writes no generated source into the directory and does not read
// c.GrammarFile.
func (h *Harness) RunOne(backendName string, r backend.Runner, c Case) Result {
	dir := filepath.Join(h.WorkRoot, backendName+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Case: c, Backend: backendName, Err: fmt.Errorf("create work dir: %w", err)}
	}
	defer func() {
		if err := r.Cleanup(); err != nil {
			h.Log.WithError(err).WithField("dir", dir).Warn("runner cleanup failed")
		}
	}()

	h.Log.WithFields(logrus.Fields{"backend": backendName, "case": c.Name, "dir": dir}).Info("compiling generated parser")
	if err := r.Compile(dir); err != nil {
		return Result{Case: c, Backend: backendName, Err: fmt.Errorf("compile: %w", err)}
	}

	stdout, exitCode, err := r.Run(c.InputFile)
	if err != nil {
		return Result{Case: c, Backend: backendName, ExitCode: exitCode, Err: fmt.Errorf("run: %w", err)}
	}

	return Result{
		Case:     c,
		Backend:  backendName,
		Passed:   stdout == c.Expected,
		Output:   stdout,
		ExitCode: exitCode,
	}
}

// RunAll runs every case against every backend and returns every
// result in backend-major, case-minor order.
func (h *Harness) RunAll(backends map[string]backend.Runner, cases []Case) []Result {
	var results []Result
	for name, r := range backends {
		for _, c := range cases {
			results = append(results, h.RunOne(name, r, c))
		}
	}
	return results
}

// Watch re-runs onChange whenever a file under any of paths is written,
// debouncing rapid bursts (an editor's save-then-reformat, a grammar
// file and its included sub-grammar both touched by one commit) into a
// single re-run. Every directory under paths that exists when Watch
// starts is watched. Blocks until ctx is cancelled.
func (h *Harness) Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		err := filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || path == p {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.Log.WithField("path", event.Name).Debug("grammar or skeleton changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { fire <- struct{}{} })

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			h.Log.WithError(err).Warn("watcher error")

		case <-fire:
			onChange()
		}
	}
}
