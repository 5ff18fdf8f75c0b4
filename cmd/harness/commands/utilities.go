/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Utility commands for the harness. Provides list-mutators and check
functionality for inspecting the mutation pipeline and validating the
environment before a fuzzing run.
*/

package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
	"github.com/yae-miko-0627/fuzz-project/pkg/strategies"
)

// availableMutators builds one instance of every mutator the fuzz
// command can drive, including the composite that batches the
// deterministic stage.
func availableMutators() []interfaces.Mutator {
	deterministic := []interfaces.Mutator{
		strategies.NewBitFlipMutator(0),
		strategies.NewArithmeticMutator(0),
		strategies.NewInterestingValuesMutator(0),
	}

	mutators := append([]interfaces.Mutator{}, deterministic...)
	return append(mutators,
		strategies.NewByteSubstitutionMutator(0.1),
		strategies.NewHavocMutator(0, 0),
		strategies.NewSpliceMutator(),
		strategies.NewCompositeMutator(deterministic),
	)
}

// ListMutators lists every mutator the fuzz command can drive, with its
// deterministic/nondeterministic role in the pipeline.
func ListMutators(cmd *cobra.Command, args []string) {
	fmt.Println("🧬 Harness - Available Mutators")
	fmt.Println("===============================")
	fmt.Println()

	for i, mutator := range availableMutators() {
		stage := "havoc stage"
		if mutator.Deterministic() {
			stage = "deterministic stage"
		}
		fmt.Printf("%d. %s (%s)\n", i+1, mutator.Name(), stage)
		fmt.Printf("   %s\n", mutator.Description())
		fmt.Println()
	}

	fmt.Println("✨ Deterministic mutators run once per corpus entry;")
	fmt.Println("   havoc and splice run as many times as the entry's energy allows")
}

// PerformSelfCheck validates the environment before a fuzzing run.
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Harness - Environment Self-Check")
	fmt.Println("===================================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	checks := []struct {
		name     string
		function func() error
	}{
		{"Target Binary", checkTargetBinary},
		{"Corpus Directory", checkCorpusDirectory},
		{"Output Directories", checkOutputDirectories},
		{"Disk Space", checkDiskSpace},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Printf("🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
		} else {
			fmt.Println("✅ PASSED")
			passed++
		}
	}

	fmt.Println()
	fmt.Printf("📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Println("✨ All checks passed! Ready to fuzz.")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Please address the issues before fuzzing.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

// checkTargetBinary validates that the configured target exists and is
// executable.
func checkTargetBinary() error {
	target := viper.GetString("target_path")
	if target == "" {
		return fmt.Errorf("target path not configured (--target)")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("target not found: %s", target)
	}
	if info.IsDir() {
		return fmt.Errorf("target is a directory: %s", target)
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("target is not executable: %s", target)
	}

	return nil
}

// checkCorpusDirectory validates the seed corpus directory when one is
// configured. An empty setting is fine: the fuzz command falls back to its
// built-in seeds.
func checkCorpusDirectory() error {
	corpusDir := viper.GetString("corpus_dir")
	if corpusDir == "" {
		return nil
	}

	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return fmt.Errorf("cannot read corpus directory: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("corpus directory is empty: %s", corpusDir)
	}

	return nil
}

// checkOutputDirectories validates that output and artifact locations are
// writable.
func checkOutputDirectories() error {
	for _, key := range []string{"output_dir", "artifact_dir"} {
		dir := viper.GetString(key)
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create %s %s: %w", key, dir, err)
		}
		tmp, err := os.CreateTemp(dir, ".harness_write_*")
		if err != nil {
			return fmt.Errorf("cannot write to %s: %w", dir, err)
		}
		tmp.Close()
		os.Remove(tmp.Name())
	}

	return nil
}

// checkDiskSpace validates available disk space for artifacts and logs.
func checkDiskSpace() error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(".", &stat); err != nil {
		return fmt.Errorf("failed to check filesystem: %w", err)
	}

	availableMB := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024)
	if availableMB < 64 {
		return fmt.Errorf("low disk space: %d MB available", availableMB)
	}

	return nil
}
