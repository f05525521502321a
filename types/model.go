// Package types defines core domain types for the dbt-docgen pipeline.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strings"
)

// DefaultMaterialization is assumed when a model config carries no
// materialized setting.
const DefaultMaterialization = "table"

// ColumnMeta is the structural metadata for one model column as recorded
// in the compiled manifest.
type ColumnMeta struct {
	// DataType is the column's declared data type ("unknown" when absent).
	DataType string `json:"data_type"`
	// Description is the existing column description, possibly empty.
	Description string `json:"description"`
}

// ModelRecord is a structural snapshot of one dbt model, extracted from
// manifest.json. Records are constructed once per run and held read-only
// through the pipeline; nothing mutates them in place.
type ModelRecord struct {
	// Name is the model name, unique across the record set for a run.
	Name string
	// UniqueID is the manifest node ID (e.g. "model.proj.orders").
	UniqueID string
	// Description is the existing model description, possibly empty.
	Description string
	// Columns maps column name to its metadata.
	Columns map[string]ColumnMeta
	// CompiledSQL is the compiled transformation logic. May be large;
	// only a bounded prefix ever reaches the generation request.
	CompiledSQL string
	// DependsOn lists upstream node IDs in manifest order.
	DependsOn []string
	// Tags are the model's labels.
	Tags []string
	// Config holds arbitrary build settings (materialization etc.).
	Config map[string]any
}

// Validate checks the record invariants required by the pipeline.
func (m *ModelRecord) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model record %q has empty name", m.UniqueID)
	}
	return nil
}

// DocBlockName returns the doc block identifier derived from the model
// name. Both the artifact filename and the doc() reference in schema
// files use this identity.
func (m *ModelRecord) DocBlockName() string {
	return m.Name + "_doc"
}

// Materialization returns the configured materialization strategy,
// defaulting to "table" when the config carries none.
func (m *ModelRecord) Materialization() string {
	if v, ok := m.Config["materialized"].(string); ok && v != "" {
		return v
	}
	return DefaultMaterialization
}

// DependencyLeaves returns the leaf names of DependsOn: the identifier
// after the last '.' of each upstream node ID.
func (m *ModelRecord) DependencyLeaves() []string {
	if len(m.DependsOn) == 0 {
		return nil
	}
	leaves := make([]string, 0, len(m.DependsOn))
	for _, dep := range m.DependsOn {
		if idx := strings.LastIndex(dep, "."); idx >= 0 {
			leaves = append(leaves, dep[idx+1:])
		} else {
			leaves = append(leaves, dep)
		}
	}
	return leaves
}
