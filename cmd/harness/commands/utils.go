/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the harness commands. Provides common
configuration loading and logging setup used across all command
implementations.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/yae-miko-0627/fuzz-project/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("HARNESS")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the harness logger from the shared flags. Log lines
// go to the console and a timestamped file under the log directory. The
// returned logger carries the run-event helpers the engine reports through.
func SetupLogging() (*logging.Logger, error) {
	format := logging.LogFormatCustom
	if viper.GetBool("json_logs") {
		format = logging.LogFormatJSON
	}

	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    format,
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024,
		Timestamp: true,
		Colors:    !viper.GetBool("json_logs"),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return logging.NewLogger(config)
}
