package project

import (
	"os"
	"path/filepath"
	"testing"
)

// writeProjectFile writes a dbt_project.yml into dir.
func writeProjectFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
}

func TestLocate_InRoot(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: jaffle_shop\n")

	proj, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if proj.Name != "jaffle_shop" {
		t.Errorf("Name = %q, want jaffle_shop", proj.Name)
	}
	if proj.Root != dir {
		t.Errorf("Root = %q, want %q", proj.Root, dir)
	}
}

func TestLocate_WalksUpParents(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: jaffle_shop\n")

	nested := filepath.Join(root, "models", "staging")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	proj, err := Locate(nested)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if proj.Root != root {
		t.Errorf("Root = %q, want %q", proj.Root, root)
	}
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := Locate(dir); err == nil {
		t.Error("expected error when no dbt_project.yml exists")
	}
}

func TestLocate_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: jaffle_shop\n")

	proj, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if want := filepath.Join(dir, "target"); proj.TargetPath != want {
		t.Errorf("TargetPath = %q, want %q", proj.TargetPath, want)
	}
	if len(proj.ModelPaths) != 1 || proj.ModelPaths[0] != filepath.Join(dir, "models") {
		t.Errorf("ModelPaths = %v, want default models dir", proj.ModelPaths)
	}
}

func TestLocate_CustomPaths(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: jaffle_shop\ntarget-path: build\nmodel-paths: [transforms, marts]\n")

	proj, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if want := filepath.Join(dir, "build"); proj.TargetPath != want {
		t.Errorf("TargetPath = %q, want %q", proj.TargetPath, want)
	}
	if len(proj.ModelPaths) != 2 {
		t.Fatalf("ModelPaths = %v, want 2 entries", proj.ModelPaths)
	}
}

func TestLocate_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: [unclosed\n")

	if _, err := Locate(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestManifestPath_Missing(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: jaffle_shop\n")

	proj, err := Locate(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := proj.ManifestPath(); err == nil {
		t.Error("expected error for missing manifest.json")
	}
}

func TestManifestPath_Exists(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "name: jaffle_shop\n")

	targetDir := filepath.Join(dir, "target")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(targetDir, ManifestFile)
	if err := os.WriteFile(manifest, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	proj, err := Locate(dir)
	if err != nil {
		t.Fatal(err)
	}

	got, err := proj.ManifestPath()
	if err != nil {
		t.Fatalf("ManifestPath failed: %v", err)
	}
	if got != manifest {
		t.Errorf("ManifestPath = %q, want %q", got, manifest)
	}
}

func TestDocsDir(t *testing.T) {
	proj := &Project{Root: "/proj"}
	if got := proj.DocsDir(); got != filepath.Join("/proj", "docs") {
		t.Errorf("DocsDir = %q", got)
	}
}
