/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fuzz.go
Description: Fuzz command implementation for the harness. Wires the executor,
analyzer, mutators, and monitor into the engine, runs a time-bounded session
against the canary, and exports the run records and coverage curve.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yae-miko-0627/fuzz-project/pkg/analysis"
	"github.com/yae-miko-0627/fuzz-project/pkg/core"
	"github.com/yae-miko-0627/fuzz-project/pkg/coverage"
	"github.com/yae-miko-0627/fuzz-project/pkg/execution"
	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
	"github.com/yae-miko-0627/fuzz-project/pkg/logging"
	"github.com/yae-miko-0627/fuzz-project/pkg/monitoring"
	"github.com/yae-miko-0627/fuzz-project/pkg/strategies"
	"github.com/yae-miko-0627/fuzz-project/pkg/utils"
)

// defaultSeeds covers each classification branch when no corpus
// directory is supplied.
var defaultSeeds = [][]byte{
	[]byte("0"),
	[]byte("1"),
	[]byte("hello"),
}

// RunFuzz executes a fuzzing session against the canary.
func RunFuzz(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Harness - Starting Fuzzing Session")
	fmt.Println("=====================================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	config := createHarnessConfig()
	if err := validateHarnessConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	engine := core.NewEngine(logger)
	analyzer := analysis.NewBranchAnalyzer()
	monitor := monitoring.NewMonitor(config.ArtifactDir)

	engine.SetExecutor(execution.NewProcessExecutor())
	engine.SetAnalyzer(analyzer)
	engine.SetMonitor(monitor)
	engine.SetMutators(createDeterministicMutators(), createHavocMutator(), strategies.NewSpliceMutator())

	if err := engine.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Cleanup()

	if config.CorpusDir == "" {
		for _, seed := range defaultSeeds {
			engine.AddSeed(seed)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Received shutdown signal, stopping harness...")
		cancel()
	}()

	go reportStats(ctx, engine, analyzer, logger)

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("fuzzing session failed: %w", err)
	}

	printFinalStats(engine, analyzer)

	if path, err := monitor.Export(filepath.Join(config.OutputDir, "run_records.json")); err == nil {
		fmt.Printf("Run records: %s\n", path)
	}
	curvePath := filepath.Join(config.OutputDir, "coverage_curve.csv")
	if err := utils.WriteCoverageCurveCSV(curvePath, monitor.Curve()); err == nil {
		fmt.Printf("Coverage curve: %s\n", curvePath)
	}
	if path, err := utils.WriteMetricsResult(config.OutputDir, "session", engine.GetStats().Snapshot()); err == nil {
		fmt.Printf("Session metrics: %s\n", path)
	}

	fmt.Println("\n✨ Fuzzing session completed!")
	return nil
}

// createDeterministicMutators builds the deterministic stage.
func createDeterministicMutators() []interfaces.Mutator {
	maxBits := viper.GetInt("max_bits")
	maxPositions := viper.GetInt("max_positions")

	return []interfaces.Mutator{
		strategies.NewBitFlipMutator(maxBits),
		strategies.NewArithmeticMutator(maxPositions),
		strategies.NewInterestingValuesMutator(maxPositions),
	}
}

// createHavocMutator builds the randomized stage.
func createHavocMutator() interfaces.Mutator {
	return strategies.NewHavocMutator(viper.GetInt("havoc_rounds"), 8)
}

// validateHarnessConfig validates the harness configuration.
func validateHarnessConfig(config *interfaces.HarnessConfig) error {
	if config.TargetPath == "" {
		return fmt.Errorf("canary binary is required")
	}
	if _, err := os.Stat(config.TargetPath); os.IsNotExist(err) {
		return fmt.Errorf("canary binary not found: %s", config.TargetPath)
	}
	if config.CorpusDir != "" {
		if _, err := os.Stat(config.CorpusDir); os.IsNotExist(err) {
			return fmt.Errorf("corpus directory not found: %s", config.CorpusDir)
		}
	}
	return nil
}

// reportStats periodically reports session statistics.
func reportStats(ctx context.Context, engine *core.Engine, analyzer *analysis.BranchAnalyzer, logger *logging.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := engine.GetStats().Snapshot()
			rate := engine.GetStats().ExecutionsPerSecond()
			fmt.Printf("\r🔄 Executions: %d | Branches: %d/%d | Crashes: %d | Rate: %.1f/sec",
				stats.Executions, analyzer.Coverage().Count(), len(coverage.KnownBranches),
				stats.Crashes, rate)
			logger.LogStats(stats.Executions, int64(analyzer.Coverage().Count()), rate)
		}
	}
}

// printFinalStats prints the session summary.
func printFinalStats(engine *core.Engine, analyzer *analysis.BranchAnalyzer) {
	stats := engine.GetStats().Snapshot()
	duration := time.Since(stats.StartTime)

	fmt.Println("\n📊 Final Statistics")
	fmt.Println("==================")
	fmt.Printf("Total Runtime: %v\n", duration)
	fmt.Printf("Total Executions: %d\n", stats.Executions)
	fmt.Printf("Crashes: %d\n", stats.Crashes)
	fmt.Printf("Timeouts: %d\n", stats.Timeouts)
	fmt.Printf("No-input Runs: %d\n", stats.NoInputs)
	fmt.Printf("Corpus Size: %d\n", engine.Corpus().Size())
	fmt.Printf("Average Rate: %.1f executions/sec\n", float64(stats.Executions)/duration.Seconds())

	fmt.Println("\nBranches reached:")
	coverageMap := analyzer.Coverage()
	for _, branch := range coverageMap.Branches() {
		fmt.Printf("  %-14s %d hits\n", branch, coverageMap.Hits(branch))
	}
}

// createHarnessConfig creates the harness configuration from viper.
func createHarnessConfig() *interfaces.HarnessConfig {
	outputDir := viper.GetString("output_dir")
	artifactDir := viper.GetString("artifact_dir")
	if artifactDir == "" {
		artifactDir = filepath.Join(outputDir, "artifacts")
	}

	return &interfaces.HarnessConfig{
		TargetPath:    viper.GetString("target_path"),
		TargetEnv:     viper.GetStringSlice("target_env"),
		InputMode:     viper.GetString("input_mode"),
		Timeout:       viper.GetDuration("timeout"),
		Duration:      viper.GetDuration("duration"),
		CorpusDir:     viper.GetString("corpus_dir"),
		OutputDir:     outputDir,
		ArtifactDir:   artifactDir,
		MaxCorpusSize: viper.GetInt("max_corpus_size"),
		EnergyCap:     viper.GetInt("energy_cap"),
		DebugTarget:   viper.GetBool("debug_target"),
		LogLevel:      viper.GetString("log_level"),
		JSONLogs:      viper.GetBool("json_logs"),
	}
}
