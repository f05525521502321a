// Package manifest parses dbt's compiled manifest.json into model records.
//
// Only model nodes are extracted; sources, seeds, tests and other resource
// types are skipped. The parse is the read-side boundary of the pipeline:
// downstream packages consume []types.ModelRecord and never touch the
// manifest format.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/selva-k-r/dbt-docgen/types"
)

// resourceTypeModel is the manifest node kind this tool documents.
const resourceTypeModel = "model"

// node is the subset of a manifest node this tool reads.
type node struct {
	Name         string                `json:"name"`
	ResourceType string                `json:"resource_type"`
	Description  string                `json:"description"`
	Columns      map[string]nodeColumn `json:"columns"`
	CompiledCode string                `json:"compiled_code"`
	DependsOn    nodeDependsOn         `json:"depends_on"`
	Tags         []string              `json:"tags"`
	Config       map[string]any        `json:"config"`
}

type nodeColumn struct {
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

type nodeDependsOn struct {
	Nodes []string `json:"nodes"`
}

// document is the top-level manifest shape.
type document struct {
	Nodes map[string]node `json:"nodes"`
}

// Load reads and parses a manifest file into model records.
func Load(path string) ([]types.ModelRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse extracts model records from raw manifest JSON.
//
// Model names double as doc artifact identities and as the join key
// against schema file entries, so duplicates would make document writes
// ambiguous (last writer wins). Duplicates are rejected here rather than
// silently tolerated.
func Parse(data []byte) ([]types.ModelRecord, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}

	// Sort node IDs for deterministic record order; manifest maps have no
	// stable iteration order.
	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := make(map[string]string)
	var records []types.ModelRecord

	for _, id := range ids {
		n := doc.Nodes[id]
		if n.ResourceType != resourceTypeModel {
			continue
		}

		rec := types.ModelRecord{
			Name:        n.Name,
			UniqueID:    id,
			Description: n.Description,
			CompiledSQL: n.CompiledCode,
			DependsOn:   n.DependsOn.Nodes,
			Tags:        n.Tags,
			Config:      n.Config,
		}
		if len(n.Columns) > 0 {
			rec.Columns = make(map[string]types.ColumnMeta, len(n.Columns))
			for name, col := range n.Columns {
				rec.Columns[name] = types.ColumnMeta{
					DataType:    col.DataType,
					Description: col.Description,
				}
			}
		}

		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("manifest node %s: %w", id, err)
		}
		if prev, dup := seen[rec.Name]; dup {
			return nil, fmt.Errorf("duplicate model name %q (nodes %s and %s)", rec.Name, prev, id)
		}
		seen[rec.Name] = id

		records = append(records, rec)
	}

	return records, nil
}
