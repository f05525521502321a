package runtime

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/selva-k-r/dbt-docgen/iox"
	"github.com/selva-k-r/dbt-docgen/metrics"
	"github.com/selva-k-r/dbt-docgen/types"
)

// RunReport is the structured JSON report written by --report.
type RunReport struct {
	RunID      string `json:"run_id"`
	Project    string `json:"project"`
	Version    string `json:"version"`
	Succeeded  bool   `json:"succeeded"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`

	Models         []types.ModelOutcome `json:"models"`
	RewriteSkipped bool                 `json:"rewrite_skipped"`
	Rewrite        *ReportRewrite       `json:"rewrite,omitempty"`
	Metrics        *metrics.Snapshot    `json:"metrics"`
}

// ReportRewrite holds schema rewrite stats in the report.
type ReportRewrite struct {
	FilesScanned   int `json:"files_scanned"`
	FilesChanged   int `json:"files_changed"`
	EntriesUpdated int `json:"entries_updated"`
}

// BuildRunReport composes a RunReport from a run result and metrics
// snapshot. The exitCode is the process exit code that will be returned
// to the caller.
func BuildRunReport(result *RunResult, snap metrics.Snapshot, runID, project string, exitCode int) *RunReport {
	report := &RunReport{
		RunID:          runID,
		Project:        project,
		Version:        types.Version,
		Succeeded:      result.Succeeded(),
		ExitCode:       exitCode,
		DurationMs:     result.Duration.Milliseconds(),
		Models:         result.Outcomes,
		RewriteSkipped: result.RewriteSkipped,
		Metrics:        &snap,
	}
	if !result.RewriteSkipped {
		report.Rewrite = &ReportRewrite{
			FilesScanned:   result.RewriteStats.FilesScanned,
			FilesChanged:   result.RewriteStats.FilesChanged,
			EntriesUpdated: result.RewriteStats.EntriesUpdated,
		}
	}
	return report
}

// WriteRunReport writes the report as indented JSON to path.
func WriteRunReport(report *RunReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer iox.DiscardClose(f)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// PrintRunSummary prints a human-readable run summary to stdout.
func PrintRunSummary(result *RunResult) {
	fmt.Printf("\n=== Documentation Run Summary ===\n")
	succeeded := 0
	for _, o := range result.Outcomes {
		if o.Status == types.OutcomeSuccess {
			succeeded++
		}
	}
	fmt.Printf("Models:   %d total, %d succeeded, %d failed\n",
		len(result.Outcomes), succeeded, len(result.Outcomes)-succeeded)

	if result.RewriteSkipped {
		fmt.Printf("Schema:   rewrite skipped (model failures)\n")
	} else {
		fmt.Printf("Schema:   %d files scanned, %d rewritten, %d entries updated\n",
			result.RewriteStats.FilesScanned, result.RewriteStats.FilesChanged, result.RewriteStats.EntriesUpdated)
	}
	fmt.Printf("Duration: %s\n", result.Duration)

	if failed := result.FailedModels(); len(failed) > 0 {
		fmt.Printf("\n--- Failed Models ---\n")
		for _, o := range failed {
			fmt.Printf("  %s: %s (%s)\n", o.Model, o.Status, o.Message)
		}
	}
}
