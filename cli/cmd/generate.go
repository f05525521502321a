package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/selva-k-r/dbt-docgen/cli/config"
	"github.com/selva-k-r/dbt-docgen/docblock"
	"github.com/selva-k-r/dbt-docgen/llm"
	"github.com/selva-k-r/dbt-docgen/log"
	"github.com/selva-k-r/dbt-docgen/manifest"
	"github.com/selva-k-r/dbt-docgen/metrics"
	"github.com/selva-k-r/dbt-docgen/project"
	"github.com/selva-k-r/dbt-docgen/runtime"
	"github.com/selva-k-r/dbt-docgen/schema"
	"github.com/selva-k-r/dbt-docgen/types"
)

// Exit codes for the generate command.
const (
	exitSuccess        = 0
	exitModelFailures  = 1
	exitPrecondition   = 2
	exitRewriteFailure = 3
)

// defaultConfigFile is probed at the project root when --config is not set.
const defaultConfigFile = "docgen.yaml"

// GenerateCommand returns the generate command.
// This is the only command that mutates the project.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate model documentation and update schema files",
		Flags: []cli.Flag{
			ProjectDirFlag,
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to docgen.yaml config file",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Generation API key",
				EnvVars: []string{
					"OPENAI_API_KEY",
				},
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Chat model selector",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Generation endpoint base URL",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Max concurrent generation calls",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request generation timeout",
			},
			&cli.StringSliceFlag{
				Name:    "select",
				Aliases: []string{"s"},
				Usage:   "Only generate for the named models (repeatable)",
			},
			&cli.StringFlag{
				Name:  "docs-dir",
				Usage: "Directory for doc block files (default: <project>/docs)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a JSON run report to this path",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress summary output",
			},
		},
		Action: generateAction,
	}
}

// settings holds the resolved generate configuration.
// Precedence: flag > config file > default.
type settings struct {
	apiKey   string
	model    string
	baseURL  string
	parallel int
	timeout  time.Duration
	docsDir  string
}

func generateAction(c *cli.Context) error {
	proj, err := project.Locate(c.String("project-dir"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("project lookup failed: %v", err), exitPrecondition)
	}

	cfg, err := loadConfig(c, proj)
	if err != nil {
		return cli.Exit(fmt.Sprintf("config load failed: %v", err), exitPrecondition)
	}

	st := resolveSettings(c, cfg, proj)
	if st.apiKey == "" {
		return cli.Exit("no API key: set --api-key or OPENAI_API_KEY", exitPrecondition)
	}

	manifestPath, err := proj.ManifestPath()
	if err != nil {
		return cli.Exit(fmt.Sprintf("%v (run `dbt compile` first)", err), exitPrecondition)
	}

	records, err := manifest.Load(manifestPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("manifest load failed: %v", err), exitPrecondition)
	}

	records, err = filterRecords(records, c.StringSlice("select"))
	if err != nil {
		return cli.Exit(err.Error(), exitPrecondition)
	}
	if len(records) == 0 {
		return cli.Exit("no models found in manifest", exitPrecondition)
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  st.apiKey,
		Model:   st.model,
		BaseURL: st.baseURL,
		Timeout: st.timeout,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("client setup failed: %v", err), exitPrecondition)
	}

	runID := uuid.NewString()
	logger := log.NewLogger(runID, proj.Name)
	if c.Bool("quiet") {
		logger = log.Nop()
	}
	collector := metrics.NewCollector(runID, proj.Name, st.model)

	pipeline := runtime.NewPipeline(runtime.PipelineConfig{
		Client:    client,
		Writer:    docblock.NewFileWriter(st.docsDir),
		Rewriter:  schema.NewRewriter(proj.ModelPaths),
		Parallel:  st.parallel,
		Logger:    logger,
		Collector: collector,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result := pipeline.Run(ctx, records)
	exitCode := resultExitCode(result)

	if reportPath := c.String("report"); reportPath != "" {
		report := runtime.BuildRunReport(result, collector.Snapshot(), runID, proj.Name, exitCode)
		if err := runtime.WriteRunReport(report, reportPath); err != nil {
			return cli.Exit(fmt.Sprintf("report write failed: %v", err), exitRewriteFailure)
		}
	}

	if !c.Bool("quiet") {
		runtime.PrintRunSummary(result)
	}

	return cli.Exit("", exitCode)
}

// loadConfig loads an explicit --config file, or probes for docgen.yaml at
// the project root. A missing explicit file is an error; a missing probed
// file is not.
func loadConfig(c *cli.Context, proj *project.Project) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}

	probed := filepath.Join(proj.Root, defaultConfigFile)
	if _, err := os.Stat(probed); err != nil {
		return &config.Config{}, nil
	}
	return config.Load(probed)
}

func resolveSettings(c *cli.Context, cfg *config.Config, proj *project.Project) settings {
	st := settings{
		apiKey:   c.String("api-key"),
		model:    c.String("model"),
		baseURL:  c.String("base-url"),
		parallel: c.Int("parallel"),
		timeout:  c.Duration("timeout"),
		docsDir:  c.String("docs-dir"),
	}

	if st.model == "" {
		st.model = cfg.Model
	}
	if st.model == "" {
		st.model = llm.DefaultModel
	}
	if st.baseURL == "" {
		st.baseURL = cfg.BaseURL
	}
	if st.parallel == 0 {
		st.parallel = cfg.Parallel
	}
	if st.timeout == 0 {
		st.timeout = cfg.Timeout.Duration
	}
	if st.docsDir == "" {
		st.docsDir = cfg.DocsDir
	}
	if st.docsDir == "" {
		st.docsDir = proj.DocsDir()
	} else if !filepath.IsAbs(st.docsDir) {
		st.docsDir = filepath.Join(proj.Root, st.docsDir)
	}

	return st
}

// filterRecords keeps only the selected models. Unknown names are an
// error so typos fail fast instead of silently generating nothing.
func filterRecords(records []types.ModelRecord, selected []string) ([]types.ModelRecord, error) {
	if len(selected) == 0 {
		return records, nil
	}

	byName := make(map[string]types.ModelRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	filtered := make([]types.ModelRecord, 0, len(selected))
	for _, name := range selected {
		rec, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown model: %s", name)
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

func resultExitCode(result *runtime.RunResult) int {
	for _, o := range result.Outcomes {
		if o.Status == types.OutcomeRewriteFailed {
			return exitRewriteFailure
		}
	}
	if len(result.FailedModels()) > 0 {
		return exitModelFailures
	}
	return exitSuccess
}
