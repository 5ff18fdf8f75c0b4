/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Unit tests for the logging system. Tests configuration
validation, file output, the harness formatter's event prefixes, and the
structured event helpers.
*/

package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yae-miko-0627/fuzz-project/pkg/logging"
)

// TestLoggerConfigValidate tests configuration validation
func TestLoggerConfigValidate(t *testing.T) {
	valid := logging.LoggerConfig{
		Level:    logging.LogLevelInfo,
		Format:   logging.LogFormatJSON,
		MaxFiles: 5,
		MaxSize:  1024,
	}
	assert.NoError(t, valid.Validate())

	badFiles := valid
	badFiles.MaxFiles = 0
	assert.Error(t, badFiles.Validate())

	badSize := valid
	badSize.MaxSize = 0
	assert.Error(t, badSize.Validate())

	badFormat := valid
	badFormat.Format = "yaml"
	assert.Error(t, badFormat.Validate())

	badLevel := valid
	badLevel.Level = "loudest"
	assert.Error(t, badLevel.Validate())
}

// TestNewLoggerDefaults tests the nil-config defaults
func TestNewLoggerDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(cwd)

	logger, err := logging.NewLogger(nil)
	require.NoError(t, err)
	defer logger.Close()

	assert.NotNil(t, logger.GetLogger())
}

// TestLoggerFileOutput tests that log lines reach the timestamped file
func TestLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevelDebug,
		Format:    logging.LogFormatJSON,
		OutputDir: dir,
		MaxFiles:  3,
		MaxSize:   1024 * 1024,
	})
	require.NoError(t, err)

	logger.LogExecution("tc-1", "zero", time.Millisecond, "success")
	logger.LogBranch("tc-1", "zero", 1)
	logger.LogCrash("tc-2", 11)
	logger.LogStats(10, 2, 5.0)
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "harness_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Novel branch reached")
	assert.Contains(t, content, "Crash detected")
	assert.Contains(t, content, "tc-1")
}

// TestHarnessFormatterPrefixes tests event prefixes and field rendering
func TestHarnessFormatterPrefixes(t *testing.T) {
	formatter := &logging.HarnessFormatter{Timestamp: false, Colors: false}

	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Novel branch reached",
		Data: logrus.Fields{
			"branch":       "one",
			"test_case_id": "0123456789abcdef",
		},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "BRANCH")
	assert.Contains(t, line, "branch=one")
	assert.Contains(t, line, "01234567", "test case IDs are shortened")
	assert.NotContains(t, line, "0123456789abcdef")
}
