/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer_test.go
Description: Unit tests for the branch analyzer. Tests execution-to-branch
classification, novelty tracking across a sequence of runs, and coverage reset.
*/

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yae-miko-0627/fuzz-project/pkg/analysis"
	"github.com/yae-miko-0627/fuzz-project/pkg/coverage"
	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// TestClassifyResult tests the execution-to-branch mapping
func TestClassifyResult(t *testing.T) {
	tests := []struct {
		name       string
		result     interfaces.ExecutionResult
		wantBranch string
		wantStatus interfaces.ExecutionStatus
	}{
		{
			name:       "zero line",
			result:     interfaces.ExecutionResult{Output: []byte(dispatcher.MessageZero + "\n")},
			wantBranch: coverage.BranchZero,
			wantStatus: interfaces.StatusSuccess,
		},
		{
			name:       "one line",
			result:     interfaces.ExecutionResult{Output: []byte(dispatcher.MessageOne + "\n")},
			wantBranch: coverage.BranchOne,
			wantStatus: interfaces.StatusSuccess,
		},
		{
			name:       "other line",
			result:     interfaces.ExecutionResult{Output: []byte(dispatcher.MessageOther + "\n")},
			wantBranch: coverage.BranchOther,
			wantStatus: interfaces.StatusSuccess,
		},
		{
			name:       "no input exit code",
			result:     interfaces.ExecutionResult{ExitCode: dispatcher.ExitNoInput, Output: []byte(dispatcher.MessageNoInput + "\n")},
			wantBranch: coverage.BranchNoInput,
			wantStatus: interfaces.StatusNoInput,
		},
		{
			name:       "open failure exit code",
			result:     interfaces.ExecutionResult{ExitCode: dispatcher.ExitOpenFailure},
			wantBranch: coverage.BranchOpenFailure,
			wantStatus: interfaces.StatusOpenFailure,
		},
		{
			name:       "signal beats exit code",
			result:     interfaces.ExecutionResult{Signal: 11, ExitCode: dispatcher.ExitNoInput},
			wantBranch: coverage.BranchCrash,
			wantStatus: interfaces.StatusCrash,
		},
		{
			name:       "unrecognized output stays total",
			result:     interfaces.ExecutionResult{Output: []byte("garbage\n")},
			wantBranch: coverage.BranchOther,
			wantStatus: interfaces.StatusSuccess,
		},
		{
			name:       "timeout yields no branch",
			result:     interfaces.ExecutionResult{Status: interfaces.StatusTimeout},
			wantBranch: "",
			wantStatus: interfaces.StatusTimeout,
		},
		{
			name:       "execution error yields no branch",
			result:     interfaces.ExecutionResult{Status: interfaces.StatusError},
			wantBranch: "",
			wantStatus: interfaces.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branch, status := analysis.ClassifyResult(&tt.result)
			assert.Equal(t, tt.wantBranch, branch)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

// TestAnalyzeNovelty tests that only first observations are interesting
func TestAnalyzeNovelty(t *testing.T) {
	analyzer := analysis.NewBranchAnalyzer()

	first := &interfaces.ExecutionResult{Output: []byte(dispatcher.MessageZero + "\n")}
	require.NoError(t, analyzer.Analyze(first))
	assert.Equal(t, coverage.BranchZero, first.Branch)
	assert.Equal(t, 1, first.Novelty)
	assert.True(t, analyzer.IsInteresting(first))

	repeat := &interfaces.ExecutionResult{Output: []byte(dispatcher.MessageZero + "\n")}
	require.NoError(t, analyzer.Analyze(repeat))
	assert.Equal(t, 0, repeat.Novelty)
	assert.False(t, analyzer.IsInteresting(repeat))

	novel := &interfaces.ExecutionResult{Output: []byte(dispatcher.MessageOne + "\n")}
	require.NoError(t, analyzer.Analyze(novel))
	assert.Equal(t, 1, novel.Novelty)

	assert.Equal(t, 2, analyzer.Coverage().Count())
}

// TestAnalyzeTimeoutEarnsNoCoverage tests that a timed-out run keeps its
// status, reaches no branch, and leaves the cumulative map untouched. The
// executor's deadline path reports no exit code or signal, so without the
// status check a hang would masquerade as a reached code path.
func TestAnalyzeTimeoutEarnsNoCoverage(t *testing.T) {
	analyzer := analysis.NewBranchAnalyzer()

	result := &interfaces.ExecutionResult{Status: interfaces.StatusTimeout}
	require.NoError(t, analyzer.Analyze(result))
	assert.Equal(t, interfaces.StatusTimeout, result.Status)
	assert.Empty(t, result.Branch)
	assert.Equal(t, 0, result.Novelty)
	assert.False(t, analyzer.IsInteresting(result))
	assert.Equal(t, 0, analyzer.Coverage().Count())
	assert.False(t, analyzer.Coverage().Contains(coverage.BranchOther))
}

// TestBranchSetSnapshot tests the coverage snapshot attached to test cases
func TestBranchSetSnapshot(t *testing.T) {
	analyzer := analysis.NewBranchAnalyzer()
	require.NoError(t, analyzer.Analyze(&interfaces.ExecutionResult{
		Output: []byte(dispatcher.MessageOther + "\n"),
	}))

	set := analyzer.BranchSet()
	assert.Equal(t, 1, set.Branches[coverage.BranchOther])
	assert.False(t, set.Timestamp.IsZero())
}

// TestReset tests that reset clears cumulative coverage
func TestReset(t *testing.T) {
	analyzer := analysis.NewBranchAnalyzer()
	require.NoError(t, analyzer.Analyze(&interfaces.ExecutionResult{
		Output: []byte(dispatcher.MessageZero + "\n"),
	}))
	require.NoError(t, analyzer.Reset())

	assert.Equal(t, 0, analyzer.Coverage().Count())

	again := &interfaces.ExecutionResult{Output: []byte(dispatcher.MessageZero + "\n")}
	require.NoError(t, analyzer.Analyze(again))
	assert.Equal(t, 1, again.Novelty)
}
