/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: executor.go
Description: Process executor for the instrumentation-verification harness.
Runs the canary target in any of its three input modes (literal argument,
-f file, or standard input), captures output, exit code, and terminating
signal, and enforces a per-run timeout. Handles process creation, monitoring,
and cleanup.
*/

package execution

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// Input modes the canary accepts. They correspond one-to-one with the
// dispatcher's source kinds.
const (
	ModeArgument = "argument"
	ModeFile     = "file"
	ModeStdin    = "stdin"
)

// ProcessExecutor implements the Executor interface by spawning the
// canary binary once per test case.
type ProcessExecutor struct {
	config *interfaces.HarnessConfig

	mu         sync.Mutex
	childProcs []*os.Process
}

// NewProcessExecutor creates a new process executor instance.
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{}
}

// Initialize sets up the executor with the given configuration.
func (e *ProcessExecutor) Initialize(config *interfaces.HarnessConfig) error {
	if config == nil {
		return fmt.Errorf("executor config is nil")
	}
	if config.TargetPath == "" {
		return fmt.Errorf("target path is required")
	}
	switch config.InputMode {
	case "", ModeArgument, ModeFile, ModeStdin:
	default:
		return fmt.Errorf("unsupported input mode: %s", config.InputMode)
	}
	e.config = config
	return nil
}

// Execute runs one test case through the canary and collects the result.
// The input mode decides how the test data reaches the target: as a
// literal argument, through a temp file passed with -f, or on stdin.
func (e *ProcessExecutor) Execute(testCase *interfaces.TestCase) (*interfaces.ExecutionResult, error) {
	if e.config == nil {
		return nil, fmt.Errorf("executor not initialized")
	}

	mode := e.config.InputMode
	if mode == "" {
		mode = ModeStdin
	}

	result := &interfaces.ExecutionResult{
		TestCaseID: testCase.ID,
		InputMode:  mode,
		Status:     interfaces.StatusSuccess,
	}

	var cmd *exec.Cmd
	switch mode {
	case ModeArgument:
		cmd = exec.Command(e.config.TargetPath, string(testCase.Data))

	case ModeFile:
		tmpfile, err := os.CreateTemp("", "harness-input")
		if err != nil {
			return nil, fmt.Errorf("failed to create input file: %w", err)
		}
		defer os.Remove(tmpfile.Name())
		if _, err := tmpfile.Write(testCase.Data); err != nil {
			tmpfile.Close()
			return nil, fmt.Errorf("failed to write input file: %w", err)
		}
		tmpfile.Close()
		cmd = exec.Command(e.config.TargetPath, "-f", tmpfile.Name())

	default:
		cmd = exec.Command(e.config.TargetPath)
		cmd.Stdin = bytes.NewReader(testCase.Data)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	cmd.Env = append(os.Environ(), e.config.TargetEnv...)
	if e.config.DebugTarget {
		cmd.Env = append(cmd.Env, dispatcher.DebugEnvVar+"=1")
	}

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		result.Status = interfaces.StatusError
		result.Error = []byte("failed to start process: " + err.Error())
		return result, err
	}
	e.track(cmd.Process)
	defer e.untrack(cmd.Process)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	select {
	case errWait := <-done:
		result.Duration = time.Since(startTime)
		result.ExitCode = cmd.ProcessState.ExitCode()
		if ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			result.Signal = int(ws.Signal())
			result.Status = interfaces.StatusCrash
		}
		_ = errWait // non-zero exits are expected canary branches, not errors

	case <-time.After(timeout):
		cmd.Process.Kill()
		<-done
		result.Status = interfaces.StatusTimeout
		result.Duration = timeout
	}

	result.Output = outBuf.Bytes()
	result.Error = append(result.Error, errBuf.Bytes()...)
	return result, nil
}

// ExecuteMissingFile runs the canary with -f pointing at a path that does
// not exist, exercising the open-failure branch. The path is placed in a
// fresh temp directory so nothing can race it into existence.
func (e *ProcessExecutor) ExecuteMissingFile(testCase *interfaces.TestCase) (*interfaces.ExecutionResult, error) {
	if e.config == nil {
		return nil, fmt.Errorf("executor not initialized")
	}

	dir, err := os.MkdirTemp("", "harness-missing")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	missing := filepath.Join(dir, "no-such-input")
	cmd := exec.Command(e.config.TargetPath, "-f", missing)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	cmd.Env = append(os.Environ(), e.config.TargetEnv...)

	result := &interfaces.ExecutionResult{
		TestCaseID: testCase.ID,
		InputMode:  ModeFile,
	}

	startTime := time.Now()
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			result.Status = interfaces.StatusError
			result.Error = []byte(err.Error())
			return result, err
		}
	}
	result.Duration = time.Since(startTime)
	result.ExitCode = cmd.ProcessState.ExitCode()
	result.Output = outBuf.Bytes()
	result.Error = errBuf.Bytes()
	return result, nil
}

// track remembers a child process so Cleanup can kill stragglers.
func (e *ProcessExecutor) track(p *os.Process) {
	e.mu.Lock()
	e.childProcs = append(e.childProcs, p)
	e.mu.Unlock()
}

// untrack forgets a child process once it has been reaped.
func (e *ProcessExecutor) untrack(p *os.Process) {
	e.mu.Lock()
	for i, child := range e.childProcs {
		if child.Pid == p.Pid {
			e.childProcs = append(e.childProcs[:i], e.childProcs[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
}

// Cleanup kills any child processes still tracked.
func (e *ProcessExecutor) Cleanup() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.childProcs {
		if p != nil {
			p.Kill()
		}
	}
	e.childProcs = nil
	return nil
}
