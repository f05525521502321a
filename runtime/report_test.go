package runtime

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/selva-k-r/dbt-docgen/metrics"
	"github.com/selva-k-r/dbt-docgen/schema"
	"github.com/selva-k-r/dbt-docgen/types"
)

func sampleResult() *RunResult {
	return &RunResult{
		Outcomes: []types.ModelOutcome{
			{Model: "customers", Status: types.OutcomeSuccess, DurationMs: 120},
			{Model: "orders", Status: types.OutcomeSuccess, DurationMs: 90},
		},
		RewriteStats: schema.Stats{FilesScanned: 2, FilesChanged: 1, EntriesUpdated: 2},
		Duration:     3 * time.Second,
	}
}

func TestBuildRunReport_Success(t *testing.T) {
	c := metrics.NewCollector("run-1", "jaffle_shop", "gpt-3.5-turbo")
	report := BuildRunReport(sampleResult(), c.Snapshot(), "run-1", "jaffle_shop", 0)

	if !report.Succeeded {
		t.Error("report should mark success")
	}
	if report.RunID != "run-1" || report.Project != "jaffle_shop" {
		t.Errorf("identity = %q/%q", report.RunID, report.Project)
	}
	if report.Version != types.Version {
		t.Errorf("Version = %q", report.Version)
	}
	if report.DurationMs != 3000 {
		t.Errorf("DurationMs = %d", report.DurationMs)
	}
	if report.Rewrite == nil || report.Rewrite.FilesChanged != 1 {
		t.Errorf("Rewrite = %+v", report.Rewrite)
	}
	if len(report.Models) != 2 {
		t.Errorf("Models = %+v", report.Models)
	}
}

func TestBuildRunReport_RewriteSkipped(t *testing.T) {
	result := &RunResult{
		Outcomes: []types.ModelOutcome{
			{Model: "orders", Status: types.OutcomeGenerationFailed, Message: "status 500"},
		},
		RewriteSkipped: true,
	}

	report := BuildRunReport(result, metrics.Snapshot{}, "run-1", "p", 1)

	if report.Succeeded {
		t.Error("report should mark failure")
	}
	if !report.RewriteSkipped {
		t.Error("RewriteSkipped should be set")
	}
	if report.Rewrite != nil {
		t.Error("Rewrite stats should be omitted when skipped")
	}
	if report.ExitCode != 1 {
		t.Errorf("ExitCode = %d", report.ExitCode)
	}
}

func TestWriteRunReport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := BuildRunReport(sampleResult(), metrics.Snapshot{RunID: "run-1"}, "run-1", "p", 0)

	if err := WriteRunReport(report, path); err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var parsed RunReport
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if parsed.RunID != "run-1" || len(parsed.Models) != 2 {
		t.Errorf("parsed report = %+v", parsed)
	}
}

func TestWriteRunReport_BadPath(t *testing.T) {
	report := BuildRunReport(sampleResult(), metrics.Snapshot{}, "run-1", "p", 0)
	err := WriteRunReport(report, filepath.Join(t.TempDir(), "missing", "report.json"))
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestRunResult_Succeeded(t *testing.T) {
	ok := &RunResult{Outcomes: []types.ModelOutcome{{Model: "a", Status: types.OutcomeSuccess}}}
	if !ok.Succeeded() {
		t.Error("all-success result should succeed")
	}

	skipped := &RunResult{
		Outcomes:       []types.ModelOutcome{{Model: "a", Status: types.OutcomeSuccess}},
		RewriteSkipped: true,
	}
	if skipped.Succeeded() {
		t.Error("rewrite-skipped result should not succeed")
	}
}
