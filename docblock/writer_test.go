package docblock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/selva-k-r/dbt-docgen/types"
)

func TestFileWriter_WritesDelimitedBlock(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(filepath.Join(dir, "docs"))
	rec := &types.ModelRecord{Name: "orders"}

	if err := w.Write(rec, "Orders model documentation."); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "docs", "orders_doc.md"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "{% docs orders_doc %}") {
		t.Errorf("missing opening delimiter: %s", content)
	}
	if !strings.Contains(content, "Orders model documentation.") {
		t.Errorf("missing generated text: %s", content)
	}
	if !strings.Contains(content, "{% enddocs %}") {
		t.Errorf("missing closing delimiter: %s", content)
	}
}

func TestFileWriter_CreatesDirIdempotently(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	w := NewFileWriter(dir)

	for i := 0; i < 2; i++ {
		if err := w.Write(&types.ModelRecord{Name: "orders"}, "text"); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
}

func TestFileWriter_OverwriteIsDeterministic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	w := NewFileWriter(dir)
	rec := &types.ModelRecord{Name: "orders"}
	path := filepath.Join(dir, "orders_doc.md")

	if err := w.Write(rec, "generated text"); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Write(rec, "generated text"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Error("rewriting identical text should produce byte-identical artifacts")
	}
}

func TestFileWriter_ReplacesStaleContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	w := NewFileWriter(dir)
	rec := &types.ModelRecord{Name: "orders"}

	if err := w.Write(rec, "old text"); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(rec, "new text"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "orders_doc.md"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "old text") {
		t.Error("stale content survived overwrite")
	}
}

func TestFileWriter_IOFailure(t *testing.T) {
	// A file where the directory should be forces MkdirAll to fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "docs")
	if err := os.WriteFile(blocker, []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewFileWriter(blocker)
	if err := w.Write(&types.ModelRecord{Name: "orders"}, "text"); err == nil {
		t.Error("expected error when docs dir cannot be created")
	}
}

func TestRender(t *testing.T) {
	got := Render("orders_doc", "body")
	want := "\n{% docs orders_doc %}\nbody\n{% enddocs %}\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestStubWriter_RecordsWrites(t *testing.T) {
	w := NewStubWriter()
	if err := w.Write(&types.ModelRecord{Name: "orders"}, "text"); err != nil {
		t.Fatal(err)
	}

	writes := w.Writes()
	if len(writes) != 1 || writes[0].Model != "orders" || writes[0].Text != "text" {
		t.Errorf("Writes() = %+v", writes)
	}
}

func TestStubWriter_ScriptedFailure(t *testing.T) {
	w := NewStubWriter()
	w.FailFor = map[string]bool{"orders": true}

	if err := w.Write(&types.ModelRecord{Name: "orders"}, "text"); err == nil {
		t.Error("expected scripted failure")
	}
	if len(w.Writes()) != 0 {
		t.Error("failed write should not be recorded")
	}
}
