/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing session metrics to the metrics directory.
Handles timestamped, type-specific naming, ensures directories exist, and
exports the coverage-over-time curve as CSV for plotting and analysis.
*/

package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yae-miko-0627/fuzz-project/pkg/monitoring"
)

// WriteMetricsResult writes a result under baseDir/metrics with timestamp and type
func WriteMetricsResult(baseDir, metricsType string, result interface{}) (string, error) {
	metricsDir := filepath.Join(baseDir, "metrics", metricsType)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.json", timestamp, metricsType)
	filePath := filepath.Join(metricsDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}

	return filePath, nil
}

// WriteCoverageCurveCSV exports a coverage-over-time curve as CSV with
// columns time_sec,cumulative_coverage.
func WriteCoverageCurveCSV(path string, curve []monitoring.CurvePoint) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create curve directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create curve file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time_sec", "cumulative_coverage"}); err != nil {
		return err
	}
	for _, point := range curve {
		record := []string{
			strconv.FormatFloat(point.ElapsedSec, 'f', 6, 64),
			strconv.Itoa(point.CumCoverage),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
