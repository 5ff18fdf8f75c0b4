/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for the instrumentation-verification harness.
Defines the core contracts used across all packages to break import cycles and
enable proper modular design.
*/

package interfaces

import (
	"time"
)

// TestCase represents a single input fed to the canary target
type TestCase struct {
	ID         string
	Data       []byte
	ParentID   string
	Generation int
	CreatedAt  time.Time
	Executions int64
	Energy     int
	Cycles     int
	Branches   *BranchSet
	Metadata   map[string]interface{}
}

// BranchSet represents the canary branches a test case has reached.
// The canary exposes its code paths only through its fixed output lines
// and exit statuses, so a branch identifier is the unit of coverage.
type BranchSet struct {
	Branches  map[string]int
	Timestamp time.Time
}

// ExecutionResult represents the result of one canary run
type ExecutionResult struct {
	TestCaseID string
	InputMode  string
	ExitCode   int
	Signal     int
	Duration   time.Duration
	Output     []byte
	Error      []byte
	Status     ExecutionStatus
	Branch     string
	Novelty    int
}

// ExecutionStatus represents the status of an execution
type ExecutionStatus int

const (
	StatusSuccess ExecutionStatus = iota
	StatusNoInput
	StatusOpenFailure
	StatusError
	StatusCrash
	StatusTimeout
)

// String returns a short name for the status.
func (s ExecutionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoInput:
		return "no-input"
	case StatusOpenFailure:
		return "open-failure"
	case StatusError:
		return "error"
	case StatusCrash:
		return "crash"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// HarnessConfig represents the configuration for the harness
type HarnessConfig struct {
	TargetPath    string
	TargetEnv     []string
	InputMode     string // "argument", "file", or "stdin"
	Timeout       time.Duration
	Duration      time.Duration
	CorpusDir     string
	OutputDir     string
	ArtifactDir   string
	MaxCorpusSize int
	MaxHavoc      int
	EnergyCap     int
	DebugTarget   bool // pass AFL_DEBUG through to the canary
	LogLevel      string
	JSONLogs      bool
}

// Executor runs the canary target on one test case
type Executor interface {
	Initialize(config *HarnessConfig) error
	Execute(testCase *TestCase) (*ExecutionResult, error)
	Cleanup() error
}

// Analyzer interprets execution results as branch coverage
type Analyzer interface {
	Analyze(result *ExecutionResult) error
	IsInteresting(result *ExecutionResult) bool
	Reset() error
}

// Mutator derives variant test cases from an existing one
type Mutator interface {
	Mutate(testCase *TestCase) ([]*TestCase, error)
	Name() string
	Description() string
	Deterministic() bool
}

// Scheduler selects the next test case to mutate and accounts for
// execution outcomes
type Scheduler interface {
	Add(tc *TestCase)
	Next() *TestCase
	Report(tc *TestCase, result *ExecutionResult)
	Size() int
	IsEmpty() bool
}
