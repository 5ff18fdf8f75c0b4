/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer.go
Description: Branch analyzer for the instrumentation-verification harness. Maps
a canary execution's output line and exit status onto a branch identifier and
tracks cumulative branch coverage. A run is interesting when it reaches a branch
the harness has not observed before, which is exactly the signal coverage
instrumentation is expected to reproduce.
*/

package analysis

import (
	"strings"
	"time"

	"github.com/yae-miko-0627/fuzz-project/pkg/coverage"
	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// BranchAnalyzer implements the Analyzer interface over the canary's
// externally visible behavior.
type BranchAnalyzer struct {
	cumulative *coverage.Map
}

// NewBranchAnalyzer creates a new branch analyzer instance.
func NewBranchAnalyzer() *BranchAnalyzer {
	return &BranchAnalyzer{
		cumulative: coverage.NewMap(),
	}
}

// Analyze classifies the result into a branch, updates the result's
// status, novelty and branch fields, and folds the branch into the
// cumulative map.
func (a *BranchAnalyzer) Analyze(result *interfaces.ExecutionResult) error {
	branch, status := ClassifyResult(result)
	result.Branch = branch
	if result.Status != interfaces.StatusTimeout && result.Status != interfaces.StatusError {
		result.Status = status
	}

	// A run that never produced an observation carries no branch and
	// must not move the cumulative map.
	if branch == "" {
		result.Novelty = 0
		return nil
	}

	if a.cumulative.Record(branch) {
		result.Novelty = 1
	} else {
		result.Novelty = 0
	}
	return nil
}

// IsInteresting reports whether the result reached a previously unseen
// branch. Analyze must have run first.
func (a *BranchAnalyzer) IsInteresting(result *interfaces.ExecutionResult) bool {
	return result.Novelty > 0
}

// Coverage returns the cumulative branch coverage map.
func (a *BranchAnalyzer) Coverage() *coverage.Map {
	return a.cumulative
}

// BranchSet returns the cumulative coverage as a BranchSet for attaching
// to test cases.
func (a *BranchAnalyzer) BranchSet() *interfaces.BranchSet {
	return &interfaces.BranchSet{
		Branches:  a.cumulative.Snapshot(),
		Timestamp: time.Now(),
	}
}

// Reset clears the cumulative coverage.
func (a *BranchAnalyzer) Reset() error {
	a.cumulative = coverage.NewMap()
	return nil
}

// ClassifyResult maps one execution onto a branch identifier and status.
// A timed-out or failed run yields no branch at all: the target never
// reached an observable code path, so classifying it would forge
// coverage. Otherwise abnormal termination (a signal) takes precedence,
// then the exit code, then the output line. Unrecognized output on a
// zero exit still lands in a classification branch by exit code so the
// mapping stays total.
func ClassifyResult(result *interfaces.ExecutionResult) (string, interfaces.ExecutionStatus) {
	if result.Status == interfaces.StatusTimeout || result.Status == interfaces.StatusError {
		return "", result.Status
	}

	if result.Signal != 0 {
		return coverage.BranchCrash, interfaces.StatusCrash
	}

	switch result.ExitCode {
	case dispatcher.ExitNoInput:
		return coverage.BranchNoInput, interfaces.StatusNoInput
	case dispatcher.ExitOpenFailure:
		return coverage.BranchOpenFailure, interfaces.StatusOpenFailure
	}

	switch strings.TrimRight(string(result.Output), "\n") {
	case dispatcher.MessageZero:
		return coverage.BranchZero, interfaces.StatusSuccess
	case dispatcher.MessageOne:
		return coverage.BranchOne, interfaces.StatusSuccess
	case dispatcher.MessageNoInput:
		return coverage.BranchNoInput, interfaces.StatusNoInput
	default:
		return coverage.BranchOther, interfaces.StatusSuccess
	}
}
