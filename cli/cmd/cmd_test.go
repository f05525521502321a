package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/selva-k-r/dbt-docgen/cli/config"
	"github.com/selva-k-r/dbt-docgen/llm"
	"github.com/selva-k-r/dbt-docgen/project"
	"github.com/selva-k-r/dbt-docgen/runtime"
	"github.com/selva-k-r/dbt-docgen/types"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestFilterRecords(t *testing.T) {
	records := []types.ModelRecord{
		{Name: "stg_orders"},
		{Name: "fct_orders"},
		{Name: "dim_customers"},
	}

	t.Run("no selection keeps all", func(t *testing.T) {
		got, err := filterRecords(records, nil)
		if err != nil {
			t.Fatalf("filterRecords failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 records, got %d", len(got))
		}
	})

	t.Run("selection keeps named models", func(t *testing.T) {
		got, err := filterRecords(records, []string{"fct_orders"})
		if err != nil {
			t.Fatalf("filterRecords failed: %v", err)
		}
		if len(got) != 1 || got[0].Name != "fct_orders" {
			t.Errorf("expected [fct_orders], got %v", got)
		}
	})

	t.Run("unknown model is an error", func(t *testing.T) {
		_, err := filterRecords(records, []string{"fct_orderz"})
		if err == nil {
			t.Fatal("expected error for unknown model")
		}
	})
}

func TestResultExitCode(t *testing.T) {
	tests := []struct {
		name   string
		result *runtime.RunResult
		want   int
	}{
		{
			name: "all success",
			result: &runtime.RunResult{
				Outcomes: []types.ModelOutcome{
					{Model: "a", Status: types.OutcomeSuccess},
				},
			},
			want: exitSuccess,
		},
		{
			name: "model failure",
			result: &runtime.RunResult{
				Outcomes: []types.ModelOutcome{
					{Model: "a", Status: types.OutcomeSuccess},
					{Model: "b", Status: types.OutcomeGenerationFailed},
				},
				RewriteSkipped: true,
			},
			want: exitModelFailures,
		},
		{
			name: "rewrite failure",
			result: &runtime.RunResult{
				Outcomes: []types.ModelOutcome{
					{Model: "a", Status: types.OutcomeSuccess},
					{Model: "(schema rewrite)", Status: types.OutcomeRewriteFailed},
				},
			},
			want: exitRewriteFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resultExitCode(tt.result); got != tt.want {
				t.Errorf("resultExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveSettings_Precedence(t *testing.T) {
	proj := &project.Project{Root: "/proj", Name: "jaffle"}
	cfg := &config.Config{
		Model:    "gpt-4o-mini",
		Parallel: 3,
		Timeout:  config.Duration{Duration: 30 * time.Second},
		DocsDir:  "documentation",
	}

	var got settings
	app := &cli.App{
		Commands: []*cli.Command{{
			Name:  "generate",
			Flags: GenerateCommand().Flags,
			Action: func(c *cli.Context) error {
				got = resolveSettings(c, cfg, proj)
				return nil
			},
		}},
	}

	err := app.Run([]string{"dbt-docgen", "generate", "--model", "gpt-4o", "--api-key", "sk-test"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Flag beats config
	if got.model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o (flag wins)", got.model)
	}
	// Config fills unset flags
	if got.parallel != 3 {
		t.Errorf("parallel = %d, want 3 (from config)", got.parallel)
	}
	if got.timeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s (from config)", got.timeout)
	}
	// Relative docs dir is anchored at the project root
	if got.docsDir != filepath.Join("/proj", "documentation") {
		t.Errorf("docsDir = %q, want project-relative documentation", got.docsDir)
	}
}

func TestResolveSettings_Defaults(t *testing.T) {
	proj := &project.Project{Root: "/proj", Name: "jaffle"}

	var got settings
	app := &cli.App{
		Commands: []*cli.Command{{
			Name:  "generate",
			Flags: GenerateCommand().Flags,
			Action: func(c *cli.Context) error {
				got = resolveSettings(c, &config.Config{}, proj)
				return nil
			},
		}},
	}

	if err := app.Run([]string{"dbt-docgen", "generate"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.model != llm.DefaultModel {
		t.Errorf("model = %q, want default %q", got.model, llm.DefaultModel)
	}
	if got.docsDir != filepath.Join("/proj", "docs") {
		t.Errorf("docsDir = %q, want <root>/docs", got.docsDir)
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	writeProjectFile(t, dir)

	err := newTestApp().Run([]string{"dbt-docgen", "generate", "--project-dir", dir})

	assertExitCode(t, err, exitPrecondition)
}

func TestGenerate_MissingManifest(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	dir := t.TempDir()
	writeProjectFile(t, dir)

	err := newTestApp().Run([]string{"dbt-docgen", "generate", "--project-dir", dir})

	assertExitCode(t, err, exitPrecondition)
}

func TestGenerate_NoProject(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	err := newTestApp().Run([]string{"dbt-docgen", "generate", "--project-dir", t.TempDir()})

	assertExitCode(t, err, exitPrecondition)
}

// newTestApp creates a cli.App with GenerateCommand wired up and
// ExitErrHandler suppressed so tests can inspect exit errors directly.
func newTestApp() *cli.App {
	app := &cli.App{Commands: []*cli.Command{GenerateCommand()}}
	app.ExitErrHandler = func(c *cli.Context, err error) {} // suppress os.Exit
	return app
}

func writeProjectFile(t *testing.T, dir string) {
	t.Helper()
	content := "name: jaffle_shop\ntarget-path: target\nmodel-paths: [models]\n"
	if err := os.WriteFile(filepath.Join(dir, "dbt_project.yml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write dbt_project.yml: %v", err)
	}
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected exit error")
	}
	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("expected cli.ExitCoder, got %T: %v", err, err)
	}
	if coder.ExitCode() != want {
		t.Errorf("exit code = %d, want %d", coder.ExitCode(), want)
	}
}
