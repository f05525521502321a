package types

// OutcomeStatus classifies the outcome of a unit of work or a whole run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates generation and write both succeeded.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeGenerationFailed indicates the generation call failed
	// (non-success response or transport error).
	OutcomeGenerationFailed OutcomeStatus = "generation_failed"
	// OutcomeWriteFailed indicates the doc artifact could not be persisted.
	OutcomeWriteFailed OutcomeStatus = "write_failed"
	// OutcomeRewriteFailed indicates all models succeeded but the schema
	// file rewrite did not complete cleanly.
	OutcomeRewriteFailed OutcomeStatus = "rewrite_failed"
)

// GenerationResult is the tagged outcome of one generation call.
// Either Success with text, or Failure with a diagnostic message.
// It lives only for the duration of one unit of work.
type GenerationResult struct {
	// Status is OutcomeSuccess or OutcomeGenerationFailed.
	Status OutcomeStatus
	// Text is the generated documentation (success only).
	Text string
	// Message is the failure diagnostic (failure only).
	Message string
}

// Success builds a successful generation result wrapping text.
func Success(text string) GenerationResult {
	return GenerationResult{Status: OutcomeSuccess, Text: text}
}

// Failure builds a failed generation result carrying a diagnostic.
func Failure(message string) GenerationResult {
	return GenerationResult{Status: OutcomeGenerationFailed, Message: message}
}

// OK reports whether the result is a success.
func (r GenerationResult) OK() bool {
	return r.Status == OutcomeSuccess
}

// ModelOutcome is the per-model outcome collected by the orchestrator.
type ModelOutcome struct {
	// Model is the model name.
	Model string `json:"model"`
	// Status is the unit's final status.
	Status OutcomeStatus `json:"status"`
	// Message is a human-readable diagnostic for failures.
	Message string `json:"message,omitempty"`
	// DurationMs is the unit's wall time in milliseconds, including the
	// wait for a limiter slot.
	DurationMs int64 `json:"duration_ms"`
}
