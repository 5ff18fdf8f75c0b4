/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the instrumentation-verification
harness. Provides the verify, fuzz, list-mutators, and check commands with
configuration management and structured logging around the test-instr canary.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yae-miko-0627/fuzz-project/cmd/harness/commands"
)

var (
	// Configuration
	configFile string
	logLevel   string
	jsonLogs   bool
	logDir     string

	// Target configuration
	targetPath  string
	targetEnv   []string
	inputMode   string
	debugTarget bool

	// Execution configuration
	timeout  time.Duration
	duration time.Duration

	// Corpus configuration
	corpusDir     string
	outputDir     string
	artifactDir   string
	maxCorpusSize int

	// Mutation configuration
	maxBits      int
	maxPositions int
	havocRounds  int
	energyCap    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "harness",
		Short: "Instrumentation-verification harness for the test-instr canary",
		Long: `A harness around the test-instr canary target. The canary classifies the
first byte of its input and prints one of three fixed lines; this harness
verifies that distinct input classes reach distinct code paths and can fuzz
the canary to confirm a coverage-instrumented build distinguishes them.`,
		Version: "1.0.0",
	}

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&targetPath, "target", "./test-instr", "Path to the canary binary")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("target_path", rootCmd.PersistentFlags().Lookup("target"))

	// Verify command
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the canary's branch behavior",
		Long: `Run the verification suite against a built canary binary. Each scenario
feeds one input class through one input source and asserts the exact output
line, exit code, and error-stream expectations.`,
		RunE: commands.RunVerify,
	}
	rootCmd.AddCommand(verifyCmd)

	// Fuzz command
	fuzzCmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Fuzz the canary target",
		Long: `Run a time-bounded fuzzing session against the canary. Seeds are taken
through deterministic mutators first, then energy-scheduled havoc and splice
stages, while branch coverage of the canary's output classes is tracked.`,
		RunE: commands.RunFuzz,
	}

	fuzzCmd.Flags().StringSliceVar(&targetEnv, "env", []string{}, "Extra environment variables for the canary")
	fuzzCmd.Flags().StringVar(&inputMode, "input-mode", "stdin", "How inputs reach the canary (argument, file, stdin)")
	fuzzCmd.Flags().BoolVar(&debugTarget, "debug-target", false, "Pass AFL_DEBUG through to the canary")
	fuzzCmd.Flags().DurationVar(&timeout, "timeout", time.Second, "Maximum execution time per run")
	fuzzCmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "Total fuzzing session duration")
	fuzzCmd.Flags().StringVar(&corpusDir, "corpus", "", "Directory containing seed corpus (optional)")
	fuzzCmd.Flags().StringVar(&outputDir, "output", "./harness_output", "Directory for session output")
	fuzzCmd.Flags().StringVar(&artifactDir, "artifacts", "", "Directory for branch-novel inputs (default <output>/artifacts)")
	fuzzCmd.Flags().IntVar(&maxCorpusSize, "max-corpus-size", 10000, "Maximum number of test cases in corpus")
	fuzzCmd.Flags().IntVar(&maxBits, "max-bits", 64, "Bit budget for the deterministic bit-flip stage")
	fuzzCmd.Flags().IntVar(&maxPositions, "max-positions", 32, "Position budget for arithmetic and interesting-value stages")
	fuzzCmd.Flags().IntVar(&havocRounds, "havoc-rounds", 20, "Variants per havoc invocation")
	fuzzCmd.Flags().IntVar(&energyCap, "energy-cap", 20, "Upper bound on per-candidate energy")

	viper.BindPFlag("target_env", fuzzCmd.Flags().Lookup("env"))
	viper.BindPFlag("input_mode", fuzzCmd.Flags().Lookup("input-mode"))
	viper.BindPFlag("debug_target", fuzzCmd.Flags().Lookup("debug-target"))
	viper.BindPFlag("timeout", fuzzCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("duration", fuzzCmd.Flags().Lookup("duration"))
	viper.BindPFlag("corpus_dir", fuzzCmd.Flags().Lookup("corpus"))
	viper.BindPFlag("output_dir", fuzzCmd.Flags().Lookup("output"))
	viper.BindPFlag("artifact_dir", fuzzCmd.Flags().Lookup("artifacts"))
	viper.BindPFlag("max_corpus_size", fuzzCmd.Flags().Lookup("max-corpus-size"))
	viper.BindPFlag("max_bits", fuzzCmd.Flags().Lookup("max-bits"))
	viper.BindPFlag("max_positions", fuzzCmd.Flags().Lookup("max-positions"))
	viper.BindPFlag("havoc_rounds", fuzzCmd.Flags().Lookup("havoc-rounds"))
	viper.BindPFlag("energy_cap", fuzzCmd.Flags().Lookup("energy-cap"))

	rootCmd.AddCommand(fuzzCmd)

	// List-mutators command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "list-mutators",
		Short: "List available mutators and their capabilities",
		Run:   commands.ListMutators,
	})

	// Check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks for system validation",
		Long: `Validate that the canary binary exists and is executable, that the seed
corpus is readable, and that the output and log directories are writable.
Useful for CI integration.`,
		RunE: commands.PerformSelfCheck,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
