/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: monitor.go
Description: Run monitoring for the instrumentation-verification harness.
Maintains the per-run history (status, branch, novelty, cumulative coverage),
saves inputs that reached novel branches as artifacts, and exposes the
coverage-over-time curve used to evaluate a session.
*/

package monitoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// RunRecord captures the outcome of one canary execution.
type RunRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	TestCaseID   string    `json:"test_case_id"`
	Branch       string    `json:"branch"`
	Status       string    `json:"status"`
	WallTime     float64   `json:"wall_time_sec"`
	Novelty      int       `json:"novelty"`
	CumCoverage  int       `json:"cum_coverage"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
}

// CurvePoint is one sample of the coverage-over-time curve.
type CurvePoint struct {
	ElapsedSec  float64
	CumCoverage int
}

// Monitor maintains run history and saves novel-branch artifacts.
type Monitor struct {
	mu          sync.Mutex
	records     []RunRecord
	cumCoverage int
	artifactDir string
}

// NewMonitor creates a monitor. artifactDir may be empty to disable
// artifact saving; otherwise it is created on first use.
func NewMonitor(artifactDir string) *Monitor {
	return &Monitor{artifactDir: artifactDir}
}

// Record appends a run record, updating cumulative coverage from the
// result's novelty. Inputs that reached a novel branch are written to the
// artifact directory so the session's discoveries survive it.
func (m *Monitor) Record(tc *interfaces.TestCase, result *interfaces.ExecutionResult) RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cumCoverage += result.Novelty
	rec := RunRecord{
		Timestamp:   time.Now(),
		TestCaseID:  tc.ID,
		Branch:      result.Branch,
		Status:      result.Status.String(),
		WallTime:    result.Duration.Seconds(),
		Novelty:     result.Novelty,
		CumCoverage: m.cumCoverage,
	}

	if result.Novelty > 0 && m.artifactDir != "" {
		if path, err := m.saveArtifact(tc, result); err == nil {
			rec.ArtifactPath = path
		}
	}

	m.records = append(m.records, rec)
	return rec
}

// saveArtifact writes the input that reached a novel branch. Callers must
// hold the lock.
func (m *Monitor) saveArtifact(tc *interfaces.TestCase, result *interfaces.ExecutionResult) (string, error) {
	if err := os.MkdirAll(m.artifactDir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("branch_%s_%d.bin", result.Branch, time.Now().UnixMilli())
	path := filepath.Join(m.artifactDir, name)
	if err := os.WriteFile(path, tc.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Records returns a copy of the run history.
func (m *Monitor) Records() []RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RunRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Curve converts the run history into a coverage-over-time curve,
// measured from the first record.
func (m *Monitor) Curve() []CurvePoint {
	records := m.Records()
	if len(records) == 0 {
		return nil
	}

	start := records[0].Timestamp
	curve := make([]CurvePoint, 0, len(records))
	for _, rec := range records {
		curve = append(curve, CurvePoint{
			ElapsedSec:  rec.Timestamp.Sub(start).Seconds(),
			CumCoverage: rec.CumCoverage,
		})
	}
	return curve
}

// Export writes the run history as indented JSON and returns the path.
func (m *Monitor) Export(path string) (string, error) {
	records := m.Records()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run records: %w", err)
	}
	return path, nil
}
