// Package schema rewrites dbt schema YAML files to reference generated
// doc blocks.
//
// Rewriting is surgical: files are parsed into yaml.v3 node trees, only
// the description of matching model entries changes, and key ordering is
// preserved. The rewrite runs once per pipeline, after every model has
// succeeded.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selva-k-r/dbt-docgen/iox"
	"github.com/selva-k-r/dbt-docgen/types"
)

// Stats summarizes one RewriteAll pass.
type Stats struct {
	// FilesScanned is the number of schema files discovered.
	FilesScanned int
	// FilesChanged is the number of files rewritten in place.
	FilesChanged int
	// EntriesUpdated is the number of model entries whose description
	// now references a doc block.
	EntriesUpdated int
}

// Rewriter updates description fields in schema files under the model
// paths.
type Rewriter struct {
	paths []string
}

// NewRewriter creates a rewriter scanning the given model path roots.
func NewRewriter(modelPaths []string) *Rewriter {
	return &Rewriter{paths: modelPaths}
}

// DocReference is the description expression pointing at a model's
// generated doc block.
func DocReference(record *types.ModelRecord) string {
	return fmt.Sprintf("{{ doc('%s') }}", record.DocBlockName())
}

// RewriteAll rewrites every discovered schema file whose model entries
// match a record by name.
//
// A failing file is recorded and the remaining files are still
// processed; the joined error reports every failure. Files rewritten
// before a failure stay rewritten; there is no rollback.
func (r *Rewriter) RewriteAll(records []types.ModelRecord) (Stats, error) {
	refs := make(map[string]string, len(records))
	for i := range records {
		refs[records[i].Name] = DocReference(&records[i])
	}

	files, err := r.discover()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{FilesScanned: len(files)}
	var errs []error
	for _, path := range files {
		updated, err := rewriteFile(path, refs)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if updated > 0 {
			stats.FilesChanged++
			stats.EntriesUpdated += updated
		}
	}

	return stats, errors.Join(errs...)
}

// discover walks each model path collecting .yml and .yaml files.
// Missing roots are skipped: a project may declare model paths that do
// not exist yet.
func (r *Rewriter) discover() ([]string, error) {
	var files []string
	for _, root := range r.paths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yml", ".yaml":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// rewriteFile parses one schema file, updates matching model entries,
// and writes it back only when something changed. Returns the number of
// entries updated.
//
// Multi-document files are decoded document by document and re-encoded
// in full, so documents without matches survive the rewrite.
func rewriteFile(path string, refs map[string]string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	var docs []*yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("parse: %w", err)
		}
		docs = append(docs, &doc)
	}

	updated := 0
	for _, doc := range docs {
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			continue
		}
		updated += updateModelEntries(doc.Content[0], refs)
	}
	if updated == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			iox.DiscardErr(enc.Close)
			return 0, fmt.Errorf("encode: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return updated, nil
}

// updateModelEntries walks the top-level models list and points each
// matching entry's description at its doc block. Non-matching entries
// are left untouched.
func updateModelEntries(root *yaml.Node, refs map[string]string) int {
	if root.Kind != yaml.MappingNode {
		return 0
	}

	modelsList := mappingValue(root, "models")
	if modelsList == nil || modelsList.Kind != yaml.SequenceNode {
		return 0
	}

	updated := 0
	for _, entry := range modelsList.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		nameNode := mappingValue(entry, "name")
		if nameNode == nil {
			continue
		}
		ref, ok := refs[nameNode.Value]
		if !ok {
			continue
		}

		if desc := mappingValue(entry, "description"); desc != nil {
			desc.SetString(ref)
		} else {
			appendMappingEntry(entry, "description", ref)
		}
		updated++
	}
	return updated
}

// mappingValue returns the value node for key within a mapping, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// appendMappingEntry adds a key/value scalar pair to a mapping node.
func appendMappingEntry(mapping *yaml.Node, key, value string) {
	keyNode := &yaml.Node{}
	keyNode.SetString(key)
	valueNode := &yaml.Node{}
	valueNode.SetString(value)
	mapping.Content = append(mapping.Content, keyNode, valueNode)
}
