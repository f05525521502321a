// Package runtime orchestrates the bounded-concurrency generation
// pipeline: fan-out across model records, a shared limiter on outbound
// generation calls, per-model failure isolation, and an all-or-nothing
// gate before schema files are rewritten.
package runtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/selva-k-r/dbt-docgen/docblock"
	"github.com/selva-k-r/dbt-docgen/llm"
	"github.com/selva-k-r/dbt-docgen/log"
	"github.com/selva-k-r/dbt-docgen/metrics"
	"github.com/selva-k-r/dbt-docgen/schema"
	"github.com/selva-k-r/dbt-docgen/types"
)

// DefaultParallel is the default capacity of the generation limiter.
const DefaultParallel = 5

// SchemaRewriter abstracts the schema rewrite step for testing.
type SchemaRewriter interface {
	RewriteAll(records []types.ModelRecord) (schema.Stats, error)
}

// PipelineConfig configures a pipeline run.
type PipelineConfig struct {
	// Client issues generation calls (required).
	Client llm.Client
	// Writer persists doc artifacts (required).
	Writer docblock.Writer
	// Rewriter updates schema files after an all-success run (required).
	Rewriter SchemaRewriter
	// Parallel caps concurrent generation calls (default 5).
	Parallel int
	// Logger receives structured progress logs. Nil means silent.
	Logger *log.Logger
	// Collector records run metrics. Nil-safe.
	Collector *metrics.Collector
}

// RunResult aggregates a pipeline run.
type RunResult struct {
	// Outcomes holds one entry per record, sorted by model name.
	Outcomes []types.ModelOutcome
	// RewriteStats is the schema rewrite summary (zero when skipped).
	RewriteStats schema.Stats
	// RewriteSkipped is true when model failures blocked the rewrite.
	RewriteSkipped bool
	// Duration is the total run wall time.
	Duration time.Duration
}

// Succeeded reports whether every unit and the rewrite succeeded.
func (r *RunResult) Succeeded() bool {
	return len(r.FailedModels()) == 0 && !r.RewriteSkipped
}

// FailedModels returns the outcomes that did not succeed.
func (r *RunResult) FailedModels() []types.ModelOutcome {
	var failed []types.ModelOutcome
	for _, o := range r.Outcomes {
		if o.Status != types.OutcomeSuccess {
			failed = append(failed, o)
		}
	}
	return failed
}

// Pipeline runs the generation fan-out for one set of records.
type Pipeline struct {
	config PipelineConfig
	logger *log.Logger
}

// NewPipeline creates a pipeline from the given config.
func NewPipeline(config PipelineConfig) *Pipeline {
	if config.Parallel <= 0 {
		config.Parallel = DefaultParallel
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{config: config, logger: logger}
}

// Run executes one unit of work per record, bounded by the limiter,
// waits for every unit, and rewrites the schema files once over the
// full record set only if all units succeeded.
//
// Units are isolated: a failing generation or write marks its own
// outcome and never aborts siblings. There is no early-abort path; the
// run always waits for every scheduled unit.
func (p *Pipeline) Run(ctx context.Context, records []types.ModelRecord) *RunResult {
	start := time.Now()

	// The limiter bounds how many generation calls are outstanding, not
	// their order of issue or completion.
	sem := make(chan struct{}, p.config.Parallel)

	var wg sync.WaitGroup
	var mu sync.Mutex
	outcomes := make([]types.ModelOutcome, 0, len(records))

	for i := range records {
		wg.Add(1)
		go func(rec *types.ModelRecord) {
			defer wg.Done()
			outcome := p.processModel(ctx, rec, sem)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(&records[i])
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Model < outcomes[j].Model })

	result := &RunResult{Outcomes: outcomes}

	if failed := result.FailedModels(); len(failed) > 0 {
		result.RewriteSkipped = true
		result.Duration = time.Since(start)
		p.logger.Error("models failed, schema rewrite skipped", map[string]any{
			"failed": len(failed),
			"total":  len(records),
		})
		return result
	}

	stats, err := p.config.Rewriter.RewriteAll(records)
	result.RewriteStats = stats
	p.config.Collector.AbsorbRewriteStats(stats.FilesScanned, stats.FilesChanged, stats.EntriesUpdated)
	if err != nil {
		p.logger.Error("schema rewrite failed", map[string]any{"error": err.Error()})
		result.Outcomes = append(result.Outcomes, types.ModelOutcome{
			Model:   "(schema rewrite)",
			Status:  types.OutcomeRewriteFailed,
			Message: err.Error(),
		})
	} else {
		p.logger.Info("schema rewrite complete", map[string]any{
			"files_scanned": stats.FilesScanned,
			"files_changed": stats.FilesChanged,
		})
	}

	result.Duration = time.Since(start)
	return result
}

// processModel is one unit of work: acquire a limiter slot, generate,
// then persist. The slot is released as soon as the generation call
// returns; the local file write does not hold it.
func (p *Pipeline) processModel(ctx context.Context, rec *types.ModelRecord, sem chan struct{}) types.ModelOutcome {
	unitStart := time.Now()
	p.config.Collector.IncModelStarted()

	sem <- struct{}{}
	p.config.Collector.GenerationStarted()
	genResult := p.config.Client.Generate(ctx, rec)
	p.config.Collector.GenerationFinished()
	<-sem

	if !genResult.OK() {
		p.config.Collector.IncGenerationFailure()
		p.logger.Warn("generation failed", map[string]any{
			"model":  rec.Name,
			"reason": genResult.Message,
		})
		return types.ModelOutcome{
			Model:      rec.Name,
			Status:     types.OutcomeGenerationFailed,
			Message:    genResult.Message,
			DurationMs: time.Since(unitStart).Milliseconds(),
		}
	}

	if err := p.config.Writer.Write(rec, genResult.Text); err != nil {
		p.config.Collector.IncWriteFailure()
		p.logger.Warn("doc write failed", map[string]any{
			"model": rec.Name,
			"error": err.Error(),
		})
		return types.ModelOutcome{
			Model:      rec.Name,
			Status:     types.OutcomeWriteFailed,
			Message:    err.Error(),
			DurationMs: time.Since(unitStart).Milliseconds(),
		}
	}

	p.config.Collector.IncModelSucceeded()
	p.config.Collector.AddDocWritten(int64(len(genResult.Text)))
	p.logger.Debug("doc block written", map[string]any{"model": rec.Name})

	return types.ModelOutcome{
		Model:      rec.Name,
		Status:     types.OutcomeSuccess,
		DurationMs: time.Since(unitStart).Milliseconds(),
	}
}
