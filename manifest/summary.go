package manifest

import "github.com/selva-k-r/dbt-docgen/types"

// ModelSummary is the read-only listing view of a model.
type ModelSummary struct {
	Name            string `json:"name" yaml:"name"`
	Materialization string `json:"materialization" yaml:"materialization"`
	Columns         int    `json:"columns" yaml:"columns"`
	Documented      bool   `json:"documented" yaml:"documented"`
	Dependencies    int    `json:"dependencies" yaml:"dependencies"`
}

// Coverage aggregates documentation coverage across a set of models.
type Coverage struct {
	Models            int `json:"models" yaml:"models"`
	Documented        int `json:"documented" yaml:"documented"`
	Undocumented      int `json:"undocumented" yaml:"undocumented"`
	ColumnsTotal      int `json:"columns_total" yaml:"columns_total"`
	ColumnsDocumented int `json:"columns_documented" yaml:"columns_documented"`
}

// Summarize builds listing summaries from parsed model records.
// Input order is preserved.
func Summarize(records []types.ModelRecord) []ModelSummary {
	summaries := make([]ModelSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, ModelSummary{
			Name:            rec.Name,
			Materialization: rec.Materialization(),
			Columns:         len(rec.Columns),
			Documented:      rec.Description != "",
			Dependencies:    len(rec.DependsOn),
		})
	}
	return summaries
}

// ComputeCoverage aggregates coverage stats over model records.
func ComputeCoverage(records []types.ModelRecord) Coverage {
	var cov Coverage
	cov.Models = len(records)
	for _, rec := range records {
		if rec.Description != "" {
			cov.Documented++
		} else {
			cov.Undocumented++
		}
		cov.ColumnsTotal += len(rec.Columns)
		for _, col := range rec.Columns {
			if col.Description != "" {
				cov.ColumnsDocumented++
			}
		}
	}
	return cov
}
