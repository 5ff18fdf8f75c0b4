/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify_test.go
Description: Unit tests for the verification suite. Runs the full scenario
table against a shell-script stand-in for the canary, and checks the failure
reporting paths with deliberately wrong expectations.
*/

package verify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
	"github.com/yae-miko-0627/fuzz-project/pkg/verify"
)

// canaryScript mirrors the canary's externally observable contract so the
// suite can be tested without a compiled target binary.
const canaryScript = `#!/bin/sh
if [ "$#" -eq 1 ]; then
	buf="$1"
	have_input=1
elif [ "$#" -ge 2 ] && [ "$1" = "-f" ]; then
	if [ ! -e "$2" ]; then
		echo "Error: unable to open $2" >&2
		exit 255
	fi
	buf=$(head -c 7 "$2")
	[ -s "$2" ] && have_input=1 || have_input=0
else
	buf=$(head -c 7)
	[ -n "$buf" ] && have_input=1 || have_input=0
fi
if [ "$have_input" -eq 0 ]; then
	echo "Hum?"
	exit 1
fi
if [ -n "${AFL_DEBUG+x}" ]; then
	printf 'test-instr: %s\n' "$buf" >&2
fi
case "$buf" in
0*) echo "Looks like a zero to me!" ;;
1*) echo "Pretty sure that is a one!" ;;
*) echo "Neither one or zero? How quaint!" ;;
esac
exit 0
`

func writeCanaryScript(t *testing.T) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "test-instr.sh")
	require.NoError(t, os.WriteFile(path, []byte(canaryScript), 0755))
	return path
}

// TestDefaultScenariosPass tests the full table against a conforming target
func TestDefaultScenariosPass(t *testing.T) {
	verifier := verify.NewVerifier(writeCanaryScript(t))

	results, err := verifier.Run(verify.DefaultScenarios())
	require.NoError(t, err)

	for _, result := range results {
		assert.True(t, result.Passed, "%s: %s", result.Scenario.Name, result.Reason)
	}

	passed, failed := verify.Summary(results)
	assert.Equal(t, len(verify.DefaultScenarios()), passed)
	assert.Zero(t, failed)
}

// TestScenarioTableShape tests that the table covers every branch and source
func TestScenarioTableShape(t *testing.T) {
	scenarios := verify.DefaultScenarios()
	require.NotEmpty(t, scenarios)

	stdoutLines := make(map[string]bool)
	exits := make(map[int]bool)
	debugModes := make(map[string]bool)
	for _, s := range scenarios {
		stdoutLines[s.WantStdout] = true
		exits[s.WantExit] = true
		if s.Debug {
			debugModes[s.Mode] = true
		}
	}

	for _, line := range []string{
		dispatcher.MessageZero,
		dispatcher.MessageOne,
		dispatcher.MessageOther,
		dispatcher.MessageNoInput,
	} {
		assert.True(t, stdoutLines[line], "missing scenario for %q", line)
	}
	assert.True(t, exits[dispatcher.ExitSuccess])
	assert.True(t, exits[dispatcher.ExitNoInput])
	assert.True(t, exits[dispatcher.ExitOpenFailure])
	for _, mode := range []string{"argument", "file", "stdin"} {
		assert.True(t, debugModes[mode], "missing debug echo scenario for %s source", mode)
	}
}

// TestFailureReporting tests that divergence is reported with a reason
func TestFailureReporting(t *testing.T) {
	verifier := verify.NewVerifier(writeCanaryScript(t))

	wrong := []verify.Scenario{{
		Name:       "expects the wrong line",
		Mode:       "argument",
		Data:       []byte("0"),
		WantStdout: dispatcher.MessageOne,
		WantExit:   dispatcher.ExitSuccess,
	}}

	results, err := verifier.Run(wrong)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Reason, "stdout")

	passed, failed := verify.Summary(results)
	assert.Zero(t, passed)
	assert.Equal(t, 1, failed)
}

// TestMissingTarget tests that a missing binary fails up front
func TestMissingTarget(t *testing.T) {
	verifier := verify.NewVerifier(filepath.Join(t.TempDir(), "absent"))
	_, err := verifier.Run(verify.DefaultScenarios())
	assert.Error(t, err)
}
