/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Fuzzing engine for the instrumentation-verification harness.
Drives the canary target through a deterministic mutation stage followed by an
energy-budgeted havoc/splice stage, records branch coverage per run, and saves
inputs that reached novel branches. The loop is time-bounded and cancelable.
*/

package core

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
	"github.com/yae-miko-0627/fuzz-project/pkg/logging"
	"github.com/yae-miko-0627/fuzz-project/pkg/monitoring"
	"github.com/yae-miko-0627/fuzz-project/pkg/strategies"
)

// havocBias is the probability of choosing havoc over splice in the
// nondeterministic stage.
const havocBias = 0.7

// Engine wires the scheduler, mutators, executor, and analyzer into one
// fuzzing loop over the canary target.
type Engine struct {
	config    *interfaces.HarnessConfig
	corpus    *Corpus
	scheduler interfaces.Scheduler
	executor  interfaces.Executor
	analyzer  interfaces.Analyzer
	monitor   *monitoring.Monitor
	events    *logging.Logger
	logger    *logrus.Logger
	stats     *HarnessStats

	detMutators []interfaces.Mutator
	havoc       interfaces.Mutator
	splice      *strategies.SpliceMutator
}

// NewEngine creates a new engine instance. Run events (executions, novel
// branches, crashes) are emitted through the harness logger's event
// helpers; a nil logger gets a plain console-only fallback.
func NewEngine(events *logging.Logger) *Engine {
	if events == nil {
		events, _ = logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.LogLevelInfo,
			Format: logging.LogFormatText,
		})
	}
	return &Engine{
		corpus: NewCorpus(),
		events: events,
		logger: events.GetLogger(),
		stats:  &HarnessStats{},
	}
}

// SetExecutor sets the executor used to run the canary.
func (e *Engine) SetExecutor(executor interfaces.Executor) { e.executor = executor }

// SetAnalyzer sets the analyzer used to classify runs into branches.
func (e *Engine) SetAnalyzer(analyzer interfaces.Analyzer) { e.analyzer = analyzer }

// SetMonitor sets the run monitor; optional.
func (e *Engine) SetMonitor(monitor *monitoring.Monitor) { e.monitor = monitor }

// SetMutators configures the deterministic stage plus the havoc and
// splice mutators used in the nondeterministic stage.
func (e *Engine) SetMutators(det []interfaces.Mutator, havoc interfaces.Mutator, splice *strategies.SpliceMutator) {
	e.detMutators = det
	e.havoc = havoc
	e.splice = splice
}

// Initialize validates the configuration, initializes the executor, and
// loads seed inputs from the corpus directory.
func (e *Engine) Initialize(config *interfaces.HarnessConfig) error {
	if config == nil {
		return fmt.Errorf("engine config is nil")
	}
	if e.executor == nil || e.analyzer == nil {
		return fmt.Errorf("executor and analyzer must be set before Initialize")
	}
	if e.scheduler == nil {
		e.scheduler = NewEnergyScheduler(config.EnergyCap)
	}
	e.config = config
	e.corpus.SetMaxSize(config.MaxCorpusSize)

	if err := e.executor.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize executor: %w", err)
	}

	if config.CorpusDir != "" {
		if err := e.loadSeeds(config.CorpusDir); err != nil {
			return err
		}
	}
	return nil
}

// SetScheduler overrides the default energy scheduler.
func (e *Engine) SetScheduler(s interfaces.Scheduler) { e.scheduler = s }

// AddSeed inserts a seed input into the corpus and scheduler.
func (e *Engine) AddSeed(data []byte) *interfaces.TestCase {
	tc := &interfaces.TestCase{
		ID:         uuid.New().String(),
		Data:       data,
		Generation: 0,
		CreatedAt:  time.Now(),
		Energy:     1,
		Metadata:   map[string]interface{}{"seed": true},
	}
	e.corpus.Add(tc)
	e.scheduler.Add(tc)
	e.logger.WithFields(logrus.Fields{
		"id":  tc.ID,
		"len": len(data),
	}).Debug("Seed added")
	return tc
}

// loadSeeds reads every regular file in the corpus directory as a seed.
func (e *Engine) loadSeeds(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read corpus directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.logger.WithError(err).WithField("file", entry.Name()).Warn("Skipping unreadable seed")
			continue
		}
		e.AddSeed(data)
		loaded++
	}

	e.logger.WithFields(logrus.Fields{
		"dir":   dir,
		"seeds": loaded,
	}).Info("Seed corpus loaded")
	return nil
}

// Run executes the fuzzing loop until the context is canceled or the
// configured duration elapses. Each iteration takes one candidate through
// the deterministic mutators, then spends its energy budget on havoc and
// splice variants.
func (e *Engine) Run(ctx context.Context) error {
	if e.config == nil {
		return fmt.Errorf("engine not initialized")
	}
	if e.scheduler.IsEmpty() {
		return fmt.Errorf("no seeds available; add seeds or point --corpus at a non-empty directory")
	}

	e.stats.StartTime = time.Now()
	deadline := time.Now().Add(e.config.Duration)

	e.logger.WithFields(logrus.Fields{
		"target":   e.config.TargetPath,
		"mode":     e.config.InputMode,
		"duration": e.config.Duration,
	}).Info("Fuzzing session started")

	for {
		if err := e.checkDone(ctx, deadline); err != nil {
			return nil
		}

		cand := e.scheduler.Next()
		if cand == nil {
			return nil
		}

		if e.splice != nil {
			e.splice.SetCorpus(e.corpus.GetAll())
		}

		// Deterministic stage: enumerate every variant of every
		// deterministic mutator.
		for _, mutator := range e.detMutators {
			variants, err := mutator.Mutate(cand)
			if err != nil {
				e.logger.WithError(err).WithField("mutator", mutator.Name()).Warn("Mutation failed")
				continue
			}
			for _, variant := range variants {
				e.runOne(cand, variant)
				if e.checkDone(ctx, deadline) != nil {
					return nil
				}
			}
		}

		// Nondeterministic stage: spend the candidate's energy on havoc
		// and splice attempts.
		attempts := cand.Energy
		if attempts < 1 {
			attempts = 1
		}
		for i := 0; i < attempts; i++ {
			mutator := interfaces.Mutator(e.havoc)
			if e.splice != nil && rand.Float64() >= havocBias {
				mutator = e.splice
			}
			if mutator == nil {
				break
			}

			variants, err := mutator.Mutate(cand)
			if err != nil || len(variants) == 0 {
				continue
			}
			e.runOne(cand, variants[0])
			if e.checkDone(ctx, deadline) != nil {
				return nil
			}
		}
	}
}

// checkDone returns a non-nil error when the loop should stop.
func (e *Engine) checkDone(ctx context.Context, deadline time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if e.config.Duration > 0 && time.Now().After(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

// runOne executes a single variant, analyzes the result, updates energy
// accounting and statistics, and promotes branch-novel variants into the
// corpus.
func (e *Engine) runOne(parent, variant *interfaces.TestCase) {
	result, err := e.executor.Execute(variant)
	if err != nil {
		e.logger.WithError(err).Debug("Execution failed")
		return
	}

	if err := e.analyzer.Analyze(result); err != nil {
		e.logger.WithError(err).Debug("Analysis failed")
		return
	}

	e.stats.IncrementExecutions()
	e.events.LogExecution(variant.ID, result.Branch, result.Duration, result.Status.String())

	switch result.Status {
	case interfaces.StatusCrash:
		e.stats.IncrementCrashes()
		e.events.LogCrash(variant.ID, result.Signal)
	case interfaces.StatusTimeout:
		e.stats.IncrementTimeouts()
	case interfaces.StatusNoInput:
		e.stats.IncrementNoInputs()
	}

	if result.Novelty > 0 {
		e.stats.AddNovelBranches(int64(result.Novelty))
		variant.Branches = &interfaces.BranchSet{
			Branches:  map[string]int{result.Branch: 1},
			Timestamp: time.Now(),
		}
		e.corpus.Add(variant)
		e.scheduler.Add(variant)
		e.events.LogBranch(variant.ID, result.Branch, int(e.stats.Snapshot().NovelBranches))
	}

	e.scheduler.Report(parent, result)

	if e.monitor != nil {
		e.monitor.Record(variant, result)
	}
}

// GetStats returns the engine's statistics counters.
func (e *Engine) GetStats() *HarnessStats { return e.stats }

// Corpus returns the engine's corpus.
func (e *Engine) Corpus() *Corpus { return e.corpus }

// Cleanup releases executor resources.
func (e *Engine) Cleanup() error {
	if e.executor != nil {
		return e.executor.Cleanup()
	}
	return nil
}
