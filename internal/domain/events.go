package domain

import "context"

// Phase names an orchestrator pipeline phase for progress reporting.
type Phase string

// Pipeline phases, in execution order. Progress events are emitted on
// phase entry and exit; parse-phase events arrive in completion order, not
// submission order.
const (
	PhaseDiscovery Phase = "discovery"
	PhaseDownload  Phase = "download"
	PhaseExtract   Phase = "extract"
	PhaseParse     Phase = "parse"
	PhasePersist   Phase = "persist"
	PhaseComplete  Phase = "complete"
)

// ProgressEvent reports pipeline progress to subscribed listeners.
type ProgressEvent struct {
	Phase     Phase  `json:"phase"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	FileName  string `json:"file_name,omitempty"`
	Details   string `json:"details,omitempty"`
}

// EventSink receives pipeline notifications. Multiple independent listeners
// may subscribe; the orchestrator fans out to all of them. Implementations
// must not block: callbacks run on pipeline goroutines.
type EventSink interface {
	// Progress is called on phase entry/exit and per-file completion.
	Progress(ev ProgressEvent)
	// ArtifactProcessed is called once per successfully parsed report file.
	ArtifactProcessed(result FileProcessingResult)
	// Error is called for every typed error appended to the run's error list.
	Error(err IngestionError)
	// Warning is called for non-fatal conditions (skipped artifacts,
	// per-file parse failures inside archives, persistence failures).
	Warning(message, context string)
}

// NopSink is an EventSink that discards all notifications.
type NopSink struct{}

// Progress implements EventSink.
func (NopSink) Progress(ProgressEvent) {}

// ArtifactProcessed implements EventSink.
func (NopSink) ArtifactProcessed(FileProcessingResult) {}

// Error implements EventSink.
func (NopSink) Error(IngestionError) {}

// Warning implements EventSink.
func (NopSink) Warning(string, string) {}

// Compile-time interface check.
var _ EventSink = NopSink{}

// PersistenceContext correlates stored results to a repository record in the
// downstream store.
type PersistenceContext struct {
	RepositoryContext
	// RepositoryID is the store's own identifier for the repository.
	RepositoryID string `json:"repository_id"`
}

// Persister is the outbound persistence collaborator. Storage failures are
// treated as non-fatal warnings by the orchestrator: parsing, not storage,
// is this core's responsibility.
type Persister interface {
	SaveTestResults(ctx context.Context, suites *TestSuites, pctx PersistenceContext) error
}
