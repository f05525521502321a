// Package llm issues documentation-generation requests to an
// OpenAI-compatible chat-completions endpoint.
//
// One request per model, one attempt, no retry. Every failure becomes a
// typed result consumed by the pipeline; nothing raises past this boundary.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/selva-k-r/dbt-docgen/types"
)

// BodyExcerptLimit bounds the compiled SQL prefix embedded in the prompt.
// Compiled model bodies can run to hundreds of kilobytes; the excerpt
// keeps request size and cost flat regardless of model complexity.
const BodyExcerptLimit = 1000

// systemPrompt sets the assistant persona for every generation request.
const systemPrompt = "You are a technical documentation expert specializing in data engineering and dbt."

// promptColumn is the per-column rendering embedded in the prompt.
type promptColumn struct {
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// BuildPrompt renders the generation request for one model: name, a
// truncated compiled-SQL excerpt, dependency leaf names, column metadata,
// tags, and the materialization setting.
func BuildPrompt(record *types.ModelRecord) string {
	columns := make(map[string]promptColumn, len(record.Columns))
	for name, col := range record.Columns {
		dataType := col.DataType
		if dataType == "" {
			dataType = "unknown"
		}
		columns[name] = promptColumn{DataType: dataType, Description: col.Description}
	}

	// json.Marshal sorts map keys, keeping the prompt deterministic for
	// identical input (the idempotence contract depends on this).
	columnJSON, err := json.MarshalIndent(columns, "", "  ")
	if err != nil {
		columnJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are a data documentation expert. Based on the following dbt model information from manifest.json, create comprehensive documentation in three sections:\n\n")
	b.WriteString("**MODEL CONTEXT:**\n")
	fmt.Fprintf(&b, "- Model Name: %s\n", record.Name)
	fmt.Fprintf(&b, "- Compiled SQL: %s\n", truncate(record.CompiledSQL, BodyExcerptLimit))
	fmt.Fprintf(&b, "- Dependencies: %s\n", strings.Join(record.DependencyLeaves(), ", "))
	fmt.Fprintf(&b, "- Column Metadata: %s\n", columnJSON)
	fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(record.Tags, ", "))
	fmt.Fprintf(&b, "- Materialization: %s\n", record.Materialization())
	b.WriteString(`
**GENERATE DOCUMENTATION:**

## Business Overview
Provide a clear, non-technical explanation of what this model does, its business purpose, and how stakeholders should interpret the data. Focus on business value and use cases.

## Technical Implementation
Explain the key transformations, joins, and business logic. Highlight any complex calculations, window functions, or data quality considerations. Mention materialization strategy and refresh patterns.

## Data Dictionary
Create a comprehensive table with:
- Column Name
- Data Type
- Business Description
- Source Table/Calculation
- Example Values (if applicable)
- Data Quality Notes

Keep language accessible while maintaining technical accuracy.
`)
	return b.String()
}

// truncate caps s at limit characters, marking the cut. The cut lands
// on a rune boundary so a multi-byte character is never split.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
