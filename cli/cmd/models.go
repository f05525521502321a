package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/selva-k-r/dbt-docgen/cli/render"
	"github.com/selva-k-r/dbt-docgen/manifest"
	"github.com/selva-k-r/dbt-docgen/project"
)

// ModelsCommand returns the models command.
// Models is read-only: it inspects the compiled manifest without contacting
// the generation endpoint or touching any file.
func ModelsCommand() *cli.Command {
	flags := append([]cli.Flag{
		ProjectDirFlag,
		&cli.BoolFlag{
			Name:  "coverage",
			Usage: "Show documentation coverage stats instead of the listing",
		},
	}, ReadOnlyFlags()...)

	return &cli.Command{
		Name:   "models",
		Usage:  "List models from the compiled manifest",
		Flags:  flags,
		Action: modelsAction,
	}
}

func modelsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	proj, err := project.Locate(c.String("project-dir"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("project lookup failed: %v", err), exitPrecondition)
	}

	manifestPath, err := proj.ManifestPath()
	if err != nil {
		return cli.Exit(fmt.Sprintf("%v (run `dbt compile` first)", err), exitPrecondition)
	}

	records, err := manifest.Load(manifestPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("manifest load failed: %v", err), exitPrecondition)
	}

	if c.Bool("coverage") {
		cov := manifest.ComputeCoverage(records)
		if c.Bool("tui") {
			return r.RenderTUI("coverage", cov)
		}
		return r.Render(cov)
	}

	summaries := manifest.Summarize(records)
	if c.Bool("tui") {
		return r.RenderTUI("models", summaries)
	}
	return r.Render(summaries)
}
