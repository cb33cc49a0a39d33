package pipeline

import (
	"sync"

	"github.com/flakeradar/flakeradar/internal/domain"
)

// fanout publishes pipeline notifications to every subscribed sink. Sinks
// are independent: one listener's behavior never affects delivery to the
// others. Emission is serialized so listeners observe a consistent order.
type fanout struct {
	mu    sync.Mutex
	sinks []domain.EventSink
}

func newFanout(sinks ...domain.EventSink) *fanout {
	return &fanout{sinks: sinks}
}

// Subscribe adds a listener. Not safe to call once ingestion has started.
func (f *fanout) Subscribe(sink domain.EventSink) {
	f.sinks = append(f.sinks, sink)
}

// Progress implements domain.EventSink.
func (f *fanout) Progress(ev domain.ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sinks {
		s.Progress(ev)
	}
}

// ArtifactProcessed implements domain.EventSink.
func (f *fanout) ArtifactProcessed(result domain.FileProcessingResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sinks {
		s.ArtifactProcessed(result)
	}
}

// Error implements domain.EventSink.
func (f *fanout) Error(err domain.IngestionError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sinks {
		s.Error(err)
	}
}

// Warning implements domain.EventSink.
func (f *fanout) Warning(message, context string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sinks {
		s.Warning(message, context)
	}
}

// Compile-time interface check.
var _ domain.EventSink = (*fanout)(nil)
