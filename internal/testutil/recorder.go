package testutil

import (
	"sync"

	"github.com/flakeradar/flakeradar/internal/domain"
)

// EventRecorder is a thread-safe domain.EventSink that records every
// notification for later assertions.
type EventRecorder struct {
	mu sync.Mutex

	ProgressEvents []domain.ProgressEvent
	Processed      []domain.FileProcessingResult
	Errors         []domain.IngestionError
	Warnings       []string
}

// Progress implements domain.EventSink.
func (r *EventRecorder) Progress(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ProgressEvents = append(r.ProgressEvents, ev)
}

// ArtifactProcessed implements domain.EventSink.
func (r *EventRecorder) ArtifactProcessed(result domain.FileProcessingResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Processed = append(r.Processed, result)
}

// Error implements domain.EventSink.
func (r *EventRecorder) Error(err domain.IngestionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// Warning implements domain.EventSink.
func (r *EventRecorder) Warning(message, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, message)
}

// PhasesSeen returns the distinct phases in first-seen order.
func (r *EventRecorder) PhasesSeen() []domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[domain.Phase]bool)
	var phases []domain.Phase
	for _, ev := range r.ProgressEvents {
		if !seen[ev.Phase] {
			seen[ev.Phase] = true
			phases = append(phases, ev.Phase)
		}
	}
	return phases
}

// Compile-time interface check.
var _ domain.EventSink = (*EventRecorder)(nil)
