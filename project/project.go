// Package project locates a dbt project and resolves its compiled
// manifest path from dbt_project.yml.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the filename that marks a dbt project root.
const ProjectFile = "dbt_project.yml"

// ManifestFile is the compiled metadata artifact produced by dbt.
const ManifestFile = "manifest.json"

// projectConfig is the subset of dbt_project.yml this tool reads.
type projectConfig struct {
	Name       string   `yaml:"name"`
	TargetPath string   `yaml:"target-path"`
	ModelPaths []string `yaml:"model-paths"`
}

// Project describes a located dbt project.
type Project struct {
	// Root is the directory containing dbt_project.yml.
	Root string
	// Name is the project name from dbt_project.yml.
	Name string
	// TargetPath is the absolute compiled-artifacts directory.
	TargetPath string
	// ModelPaths are the absolute directories holding model schema files.
	ModelPaths []string
}

// Locate walks up from startDir looking for dbt_project.yml and loads the
// project settings from the first one found.
func Locate(startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolve start dir: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return load(dir, candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%s not found in %s or any parent directory", ProjectFile, startDir)
		}
		dir = parent
	}
}

// load parses dbt_project.yml and applies dbt's defaults.
func load(root, path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	targetPath := cfg.TargetPath
	if targetPath == "" {
		targetPath = "target"
	}

	modelPaths := cfg.ModelPaths
	if len(modelPaths) == 0 {
		modelPaths = []string{"models"}
	}

	proj := &Project{
		Root:       root,
		Name:       cfg.Name,
		TargetPath: filepath.Join(root, targetPath),
	}
	for _, p := range modelPaths {
		proj.ModelPaths = append(proj.ModelPaths, filepath.Join(root, p))
	}
	return proj, nil
}

// ManifestPath returns the path to the compiled manifest, verifying it
// exists. A missing manifest means dbt compile/run/build has not been
// executed yet.
func (p *Project) ManifestPath() (string, error) {
	path := filepath.Join(p.TargetPath, ManifestFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s not found at %s (run dbt compile, run, or build first)", ManifestFile, path)
		}
		return "", fmt.Errorf("cannot stat %s: %w", path, err)
	}
	return path, nil
}

// DocsDir returns the directory where doc-block artifacts are written.
func (p *Project) DocsDir() string {
	return filepath.Join(p.Root, "docs")
}
