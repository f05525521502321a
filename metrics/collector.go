// Package metrics provides per-run metrics collection for the
// generation pipeline.
//
// The Collector accumulates counters during a single run. It is a leaf
// package with no internal dependencies. Schema rewrite stats are
// absorbed at run completion rather than recorded live, avoiding
// double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of the run's metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation.
type Snapshot struct {
	// Generation lifecycle
	ModelsStarted      int64 `json:"models_started"`
	ModelsSucceeded    int64 `json:"models_succeeded"`
	GenerationFailures int64 `json:"generation_failures"`
	WriteFailures      int64 `json:"write_failures"`

	// Generation concurrency
	PeakInFlight int64 `json:"peak_in_flight"`

	// Doc artifacts
	DocsWritten int64 `json:"docs_written"`
	DocBytes    int64 `json:"doc_bytes"`

	// Schema rewrite (absorbed at run completion)
	SchemaFilesScanned int64 `json:"schema_files_scanned"`
	SchemaFilesChanged int64 `json:"schema_files_changed"`
	EntriesUpdated     int64 `json:"entries_updated"`

	// Dimensions (informational, set at construction)
	RunID   string `json:"run_id"`
	Project string `json:"project"`
	Model   string `json:"model"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All recording methods are nil-receiver
// safe so optional collectors need no guarding at call sites.
type Collector struct {
	mu sync.Mutex

	modelsStarted      int64
	modelsSucceeded    int64
	generationFailures int64
	writeFailures      int64

	inFlight     int64
	peakInFlight int64

	docsWritten int64
	docBytes    int64

	schemaFilesScanned int64
	schemaFilesChanged int64
	entriesUpdated     int64

	runID   string
	project string
	model   string
}

// NewCollector creates a Collector with dimension labels: the run ID,
// the dbt project name, and the generation model selector.
func NewCollector(runID, project, model string) *Collector {
	return &Collector{
		runID:   runID,
		project: project,
		model:   model,
	}
}

// IncModelStarted records one unit of work starting.
func (c *Collector) IncModelStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.modelsStarted++
	c.mu.Unlock()
}

// IncModelSucceeded records one unit completing successfully.
func (c *Collector) IncModelSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.modelsSucceeded++
	c.mu.Unlock()
}

// IncGenerationFailure records a failed generation call.
func (c *Collector) IncGenerationFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generationFailures++
	c.mu.Unlock()
}

// IncWriteFailure records a failed doc artifact write.
func (c *Collector) IncWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.writeFailures++
	c.mu.Unlock()
}

// GenerationStarted marks one generation call in flight and tracks the
// peak. Pair with GenerationFinished.
func (c *Collector) GenerationStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peakInFlight {
		c.peakInFlight = c.inFlight
	}
	c.mu.Unlock()
}

// GenerationFinished marks one generation call complete.
func (c *Collector) GenerationFinished() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

// AddDocWritten records one persisted doc artifact of the given size.
func (c *Collector) AddDocWritten(bytes int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.docsWritten++
	c.docBytes += bytes
	c.mu.Unlock()
}

// AbsorbRewriteStats records the schema rewrite totals at run
// completion.
func (c *Collector) AbsorbRewriteStats(scanned, changed, updated int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.schemaFilesScanned = int64(scanned)
	c.schemaFilesChanged = int64(changed)
	c.entriesUpdated = int64(updated)
	c.mu.Unlock()
}

// Snapshot returns an immutable view of the current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ModelsStarted:      c.modelsStarted,
		ModelsSucceeded:    c.modelsSucceeded,
		GenerationFailures: c.generationFailures,
		WriteFailures:      c.writeFailures,
		PeakInFlight:       c.peakInFlight,
		DocsWritten:        c.docsWritten,
		DocBytes:           c.docBytes,
		SchemaFilesScanned: c.schemaFilesScanned,
		SchemaFilesChanged: c.schemaFilesChanged,
		EntriesUpdated:     c.entriesUpdated,
		RunID:              c.runID,
		Project:            c.project,
		Model:              c.model,
	}
}
