/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Verify command implementation for the harness. Runs the scenario
table against a built canary binary and prints a colored pass/fail report with
per-scenario diagnostics for anything that diverged.
*/

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yae-miko-0627/fuzz-project/pkg/verify"
)

var (
	passColor   = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	detailColor = color.New(color.Faint)
	headerColor = color.New(color.FgCyan, color.Bold)
)

// RunVerify executes the verification suite against the canary.
func RunVerify(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	target := viper.GetString("target_path")
	logger.GetLogger().WithField("target", target).Info("Verification started")

	verifier := verify.NewVerifier(target)
	results, err := verifier.Run(verify.DefaultScenarios())
	if err != nil {
		return fmt.Errorf("verification could not run: %w", err)
	}

	headerColor.Println("Instrumentation verification report")
	headerColor.Println("===================================")
	for _, result := range results {
		if result.Passed {
			passColor.Printf("  ✓ %s", result.Scenario.Name)
			detailColor.Printf("  (%v)\n", result.Duration)
		} else {
			failColor.Printf("  ✗ %s\n", result.Scenario.Name)
			detailColor.Printf("      %s\n", result.Reason)
		}
	}

	passed, failed := verify.Summary(results)
	fmt.Println()
	if failed > 0 {
		failColor.Printf("%d of %d scenarios failed\n", failed, passed+failed)
		return fmt.Errorf("verification failed")
	}
	passColor.Printf("All %d scenarios passed\n", passed)
	logger.GetLogger().WithField("scenarios", passed).Info("Verification completed")
	return nil
}
