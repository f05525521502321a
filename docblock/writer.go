// Package docblock persists generated documentation as dbt doc-block
// markdown files.
//
// One artifact per model lands at docs/<name>_doc.md, wrapping the
// generated text in {% docs %} / {% enddocs %} delimiters so schema files
// can reference it by identifier.
package docblock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/selva-k-r/dbt-docgen/types"
)

// Writer persists one generated document per model.
type Writer interface {
	// Write persists text as the doc-block artifact for record,
	// overwriting any previous artifact with the same identity.
	Write(record *types.ModelRecord, text string) error
}

// FileWriter writes doc-block artifacts under a docs directory.
type FileWriter struct {
	// Dir is the target directory, created on first write if absent.
	Dir string
}

// Verify FileWriter implements Writer.
var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates a writer targeting dir.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir}
}

// Write renders and persists the doc-block artifact for record.
// The directory create is idempotent; the file write is a deterministic
// overwrite, so re-running a pipeline regenerates identical artifacts.
func (w *FileWriter) Write(record *types.ModelRecord, text string) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create docs dir %s: %w", w.Dir, err)
	}

	path := filepath.Join(w.Dir, record.DocBlockName()+".md")
	if err := os.WriteFile(path, []byte(Render(record.DocBlockName(), text)), 0o644); err != nil {
		return fmt.Errorf("write doc block %s: %w", path, err)
	}
	return nil
}

// Render wraps text in the doc-block delimiter pair under the given
// block name. The leading newline matches dbt's conventional doc file
// layout.
func Render(blockName, text string) string {
	return fmt.Sprintf("\n{%% docs %s %%}\n%s\n{%% enddocs %%}\n", blockName, text)
}

// StubWriter records writes for testing.
type StubWriter struct {
	mu sync.Mutex

	// FailFor holds model names whose writes are scripted to fail.
	FailFor map[string]bool

	writes []StubWriteRecord
}

// StubWriteRecord is one recorded write.
type StubWriteRecord struct {
	Model string
	Text  string
}

// Verify StubWriter implements Writer.
var _ Writer = (*StubWriter)(nil)

// NewStubWriter creates a stub writer.
func NewStubWriter() *StubWriter {
	return &StubWriter{}
}

// Write implements Writer by recording the call.
func (w *StubWriter) Write(record *types.ModelRecord, text string) error {
	if w.FailFor[record.Name] {
		return fmt.Errorf("scripted write failure for %s", record.Name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, StubWriteRecord{Model: record.Name, Text: text})
	return nil
}

// Writes returns the recorded writes.
func (w *StubWriter) Writes() []StubWriteRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]StubWriteRecord, len(w.writes))
	copy(out, w.writes)
	return out
}
