/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Instrumentation-verification suite for the canary target. Runs a
fixed table of scenarios covering every input source, every classification
branch, both failure branches, and the debug echo, asserting exact stdout,
stderr expectations, and exit codes. A coverage-instrumented build of the
canary passing this suite is confirmed to route distinct input classes through
distinct code paths.
*/

package verify

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
)

// Input modes a scenario can exercise.
const (
	inputArgument    = "argument"
	inputFile        = "file"
	inputEmptyFile   = "empty-file"
	inputMissingFile = "missing-file"
	inputStdin       = "stdin"
	inputShape       = "shape" // raw argument shape, input on stdin
)

// Scenario is one verifiable property of the canary.
type Scenario struct {
	Name    string
	Mode    string
	Data    []byte   // input bytes for argument/file/stdin modes
	RawArgs []string // extra args for shape mode
	Debug   bool     // set AFL_DEBUG for this run

	WantStdout string // exact stdout line, "" for no stdout at all
	WantExit   int
	WantStderr string // required stderr substring, "" to skip the check
}

// Result is the outcome of running one scenario.
type Result struct {
	Scenario Scenario
	Passed   bool
	Reason   string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// DefaultScenarios returns the verification table. Every classification
// branch is exercised through every source kind, plus the two failure
// branches, the unrecognized-shape fallthrough, and the debug echo on
// the argument, file, and stdin sources.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name: "argument starting with zero", Mode: inputArgument, Data: []byte("0abc"),
			WantStdout: dispatcher.MessageZero, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "argument starting with one", Mode: inputArgument, Data: []byte("1"),
			WantStdout: dispatcher.MessageOne, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "argument starting with other byte", Mode: inputArgument, Data: []byte("x1"),
			WantStdout: dispatcher.MessageOther, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "empty argument", Mode: inputArgument, Data: nil,
			WantStdout: dispatcher.MessageOther, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "file with zero input", Mode: inputFile, Data: []byte("0000"),
			WantStdout: dispatcher.MessageZero, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "empty file", Mode: inputEmptyFile,
			WantStdout: dispatcher.MessageNoInput, WantExit: dispatcher.ExitNoInput,
		},
		{
			Name: "missing file", Mode: inputMissingFile,
			WantStdout: "", WantExit: dispatcher.ExitOpenFailure,
			WantStderr: "unable to open",
		},
		{
			Name: "empty stdin", Mode: inputStdin, Data: nil,
			WantStdout: dispatcher.MessageNoInput, WantExit: dispatcher.ExitNoInput,
		},
		{
			Name: "stdin starting with one", Mode: inputStdin, Data: []byte("1abc"),
			WantStdout: dispatcher.MessageOne, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "stdin longer than the buffer", Mode: inputStdin, Data: []byte("0123456789"),
			WantStdout: dispatcher.MessageZero, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "unrecognized shape falls through to stdin", Mode: inputShape,
			RawArgs: []string{"--bogus", "extra"}, Data: []byte("1"),
			WantStdout: dispatcher.MessageOne, WantExit: dispatcher.ExitSuccess,
		},
		{
			Name: "debug echo on argument source", Mode: inputArgument, Data: []byte("1abc"), Debug: true,
			WantStdout: dispatcher.MessageOne, WantExit: dispatcher.ExitSuccess,
			WantStderr: "test-instr: 1abc",
		},
		{
			Name: "debug echo on stdin source", Mode: inputStdin, Data: []byte("0"), Debug: true,
			WantStdout: dispatcher.MessageZero, WantExit: dispatcher.ExitSuccess,
			WantStderr: "test-instr: 0",
		},
		{
			Name: "debug echo on file source", Mode: inputFile, Data: []byte("0file"), Debug: true,
			WantStdout: dispatcher.MessageZero, WantExit: dispatcher.ExitSuccess,
			WantStderr: "test-instr: 0file",
		},
	}
}

// Verifier runs scenarios against a built canary binary.
type Verifier struct {
	TargetPath string
	Timeout    time.Duration
}

// NewVerifier creates a verifier for the given canary binary.
func NewVerifier(targetPath string) *Verifier {
	return &Verifier{
		TargetPath: targetPath,
		Timeout:    5 * time.Second,
	}
}

// Run executes every scenario and returns the results in table order.
func (v *Verifier) Run(scenarios []Scenario) ([]Result, error) {
	if _, err := os.Stat(v.TargetPath); err != nil {
		return nil, fmt.Errorf("canary binary not found: %w", err)
	}

	workdir, err := os.MkdirTemp("", "verify")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workdir)

	results := make([]Result, 0, len(scenarios))
	for i, scenario := range scenarios {
		results = append(results, v.runScenario(workdir, i, scenario))
	}
	return results, nil
}

// runScenario executes one scenario and checks its expectations.
func (v *Verifier) runScenario(workdir string, index int, scenario Scenario) Result {
	args, stdin, err := v.buildInvocation(workdir, index, scenario)
	if err != nil {
		return Result{Scenario: scenario, Passed: false, Reason: err.Error()}
	}

	cmd := exec.Command(v.TargetPath, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	} else {
		cmd.Stdin = bytes.NewReader(nil) // immediate end-of-input
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	env := os.Environ()
	if scenario.Debug {
		env = append(env, dispatcher.DebugEnvVar+"=1")
	}
	cmd.Env = env

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Scenario: scenario,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
	}
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			result.Reason = "failed to run canary: " + runErr.Error()
			return result
		}
	}
	result.ExitCode = cmd.ProcessState.ExitCode()

	result.Passed, result.Reason = check(scenario, result)
	return result
}

// buildInvocation translates a scenario into canary arguments, stdin
// bytes, and any files it needs.
func (v *Verifier) buildInvocation(workdir string, index int, scenario Scenario) ([]string, []byte, error) {
	switch scenario.Mode {
	case inputArgument:
		return []string{string(scenario.Data)}, nil, nil

	case inputFile, inputEmptyFile:
		path := filepath.Join(workdir, fmt.Sprintf("input_%d", index))
		data := scenario.Data
		if scenario.Mode == inputEmptyFile {
			data = nil
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to write input file: %w", err)
		}
		return []string{"-f", path}, nil, nil

	case inputMissingFile:
		return []string{"-f", filepath.Join(workdir, "no-such-file")}, nil, nil

	case inputStdin:
		return nil, scenario.Data, nil

	case inputShape:
		return scenario.RawArgs, scenario.Data, nil

	default:
		return nil, nil, fmt.Errorf("unknown scenario mode: %s", scenario.Mode)
	}
}

// check compares a run against the scenario's expectations.
func check(scenario Scenario, result Result) (bool, string) {
	wantStdout := scenario.WantStdout
	if wantStdout != "" {
		wantStdout += "\n"
	}
	if result.Stdout != wantStdout {
		return false, fmt.Sprintf("stdout = %q, want %q", result.Stdout, wantStdout)
	}

	if result.ExitCode != scenario.WantExit {
		return false, fmt.Sprintf("exit code = %d, want %d", result.ExitCode, scenario.WantExit)
	}

	if scenario.WantStderr != "" && !strings.Contains(result.Stderr, scenario.WantStderr) {
		return false, fmt.Sprintf("stderr %q does not contain %q", result.Stderr, scenario.WantStderr)
	}

	return true, ""
}

// Summary counts passed and failed results.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
