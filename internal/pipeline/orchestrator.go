// Package pipeline orchestrates an ingestion run end to end: artifact
// filtering, bounded-concurrency download, archive extraction, parsing, and
// optional persistence. Failures are isolated at the narrowest scope: one
// bad artifact never aborts the batch, and every run returns a complete
// IngestionResult regardless of what went wrong inside it.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flakeradar/flakeradar/internal/archive"
	"github.com/flakeradar/flakeradar/internal/artifact"
	"github.com/flakeradar/flakeradar/internal/clock"
	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/download"
	"github.com/flakeradar/flakeradar/internal/errors"
	"github.com/flakeradar/flakeradar/internal/parser"
)

// ArtifactDownloader fetches one remote artifact to a local temporary file.
// This allows mocking in tests.
type ArtifactDownloader interface {
	Download(ctx context.Context, a domain.ArtifactSource) (string, error)
}

// ReportExtractor turns one downloaded file into report file paths plus
// non-fatal warnings. This allows mocking in tests.
type ReportExtractor interface {
	Extract(localPath, artifactName string) ([]string, []string, error)
}

// Orchestrator runs the ingestion pipeline. Construct with New, optionally
// attach listeners with Subscribe, then call Ingest. An Orchestrator is safe
// to reuse across runs but its sink set must not change once Ingest starts.
type Orchestrator struct {
	cfg        *config.IngestionConfig
	downloader ArtifactDownloader
	extractor  ReportExtractor
	persister  domain.Persister
	clock      clock.Clock
	events     *fanout
	log        zerolog.Logger
}

// New creates an Orchestrator with production collaborators, writing
// temporary files into tempDir (os.TempDir() when empty). The persister is
// optional; pass nil to skip the persist phase.
func New(cfg *config.IngestionConfig, tempDir string, persister domain.Persister, log zerolog.Logger) *Orchestrator {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Orchestrator{
		cfg:        cfg,
		downloader: download.New(cfg, tempDir, log),
		extractor:  archive.New(tempDir, log),
		persister:  persister,
		clock:      clock.RealClock{},
		events:     newFanout(),
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// NewWithDeps creates an Orchestrator with custom collaborators. Used for
// testing; nil fields fall back to the production defaults.
func NewWithDeps(cfg *config.IngestionConfig, tempDir string, dl ArtifactDownloader, ex ReportExtractor, persister domain.Persister, clk clock.Clock, log zerolog.Logger) *Orchestrator {
	o := New(cfg, tempDir, persister, log)
	if dl != nil {
		o.downloader = dl
	}
	if ex != nil {
		o.extractor = ex
	}
	if clk != nil {
		o.clock = clk
	}
	return o
}

// Subscribe attaches an event listener. Must be called before Ingest.
func (o *Orchestrator) Subscribe(sink domain.EventSink) {
	o.events.Subscribe(sink)
}

// IngestionParameters carries per-run inputs to Ingest. The zero value is
// valid: a fresh correlation ID is generated when none is supplied.
type IngestionParameters struct {
	// CorrelationID ties this run's logs and result together. Callers that
	// already track a request ID can pass it through here.
	CorrelationID string
}

// Ingest runs the full pipeline over the configured artifact batch and
// always returns a complete result: partial output survives every failure
// mode, including panics in collaborator code. The returned result's Success
// field is true only when at least one file parsed and zero errors were
// recorded.
func (o *Orchestrator) Ingest(ctx context.Context, params IngestionParameters) *domain.IngestionResult {
	start := o.clock.Now()
	correlationID := params.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	res := &domain.IngestionResult{CorrelationID: correlationID}
	log := o.log.With().Str("correlation_id", res.CorrelationID).Logger()

	agg := &aggregator{result: res, events: o.events, clock: o.clock}
	temps := &tempManager{}
	defer temps.cleanupAll(log)

	o.run(ctx, log, agg, temps)

	res.Stats.ProcessingTime = o.clock.Now().Sub(start)
	res.Stats.TotalFiles = res.Stats.ProcessedFiles + res.Stats.FailedFiles
	res.Success = len(res.Errors) == 0 && len(res.Results) > 0

	o.events.Progress(domain.ProgressEvent{
		Phase:     domain.PhaseComplete,
		Processed: res.Stats.ProcessedFiles,
		Total:     res.Stats.TotalFiles,
	})
	log.Info().
		Bool("success", res.Success).
		Int("processed_files", res.Stats.ProcessedFiles).
		Int("failed_files", res.Stats.FailedFiles).
		Int("total_tests", res.Stats.TotalTests).
		Dur("processing_time", res.Stats.ProcessingTime).
		Msg("ingestion complete")
	return res
}

// run executes the pipeline phases. A panic anywhere inside becomes a typed
// error on the result instead of unwinding past Ingest.
func (o *Orchestrator) run(ctx context.Context, log zerolog.Logger, agg *aggregator, temps *tempManager) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pipeline panicked")
			agg.addError(domain.IngestionError{
				Type:    domain.ErrTypeUnknown,
				Message: fmt.Sprintf("internal error: %v", r),
				Details: string(debug.Stack()),
			})
		}
	}()

	if o.cfg == nil {
		agg.addError(domain.IngestionError{
			Type:    domain.ErrTypeValidationFailed,
			Message: "configuration is nil",
			Cause:   errors.ErrConfigNil,
		})
		return
	}
	if err := config.Validate(o.cfg); err != nil {
		agg.addError(domain.IngestionError{
			Type:    domain.ErrTypeValidationFailed,
			Message: err.Error(),
			Cause:   err,
		})
		return
	}

	accepted := o.discover(agg)
	if len(accepted) == 0 {
		return
	}
	agg.setArtifactTotal(len(accepted))

	// Bounded worker pool: up to Concurrency artifacts in flight. Workers
	// never report errors to the group, so one artifact's failure cannot
	// cancel its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for _, a := range accepted {
		g.Go(func() error {
			defer agg.artifactDone()
			// Workers need their own recover: a panic on a pool goroutine
			// would otherwise crash the process past the run-level handler.
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("artifact", a.Name).Interface("panic", r).
						Msg("artifact pipeline panicked")
					agg.fileFailed()
					agg.addError(domain.IngestionError{
						Type:     domain.ErrTypeUnknown,
						Message:  fmt.Sprintf("internal error: %v", r),
						FileName: a.Name,
						Details:  string(debug.Stack()),
					})
				}
			}()
			o.processArtifact(gctx, log, a, agg, temps)
			return nil
		})
	}
	_ = g.Wait()

	o.persist(ctx, log, agg)
}

// discover validates and filters the configured artifact batch. Rejected
// artifacts become warnings, never errors.
func (o *Orchestrator) discover(agg *aggregator) []domain.ArtifactSource {
	o.events.Progress(domain.ProgressEvent{
		Phase: domain.PhaseDiscovery,
		Total: len(o.cfg.Artifacts),
	})

	accept := artifact.Filter(o.cfg)
	accepted := make([]domain.ArtifactSource, 0, len(o.cfg.Artifacts))
	for _, a := range o.cfg.Artifacts {
		ok, reason := accept(a)
		if !ok {
			agg.warn(reason, a.Name)
			continue
		}
		accepted = append(accepted, a)
	}

	o.events.Progress(domain.ProgressEvent{
		Phase:     domain.PhaseDiscovery,
		Processed: len(accepted),
		Total:     len(o.cfg.Artifacts),
	})
	return accepted
}

// processArtifact runs one artifact through download, extraction, and
// parsing. All outcomes are recorded on the aggregator; nothing escapes.
func (o *Orchestrator) processArtifact(ctx context.Context, log zerolog.Logger, a domain.ArtifactSource, agg *aggregator, temps *tempManager) {
	done, total := agg.artifactProgress()
	o.events.Progress(domain.ProgressEvent{Phase: domain.PhaseDownload, FileName: a.Name, Processed: done, Total: total})

	dlStart := o.clock.Now()
	localPath, err := o.downloader.Download(ctx, a)
	agg.addDownloadTime(o.clock.Now().Sub(dlStart))
	if err != nil {
		log.Warn().Str("artifact", a.Name).Err(err).Msg("artifact download failed")
		agg.fileFailed()
		agg.addError(classifyDownloadError(err, a.Name, o.clock))
		return
	}
	temps.register(localPath)

	done, total = agg.artifactProgress()
	o.events.Progress(domain.ProgressEvent{Phase: domain.PhaseExtract, FileName: a.Name, Processed: done, Total: total})

	paths, warnings, err := o.extractor.Extract(localPath, a.Name)
	for _, w := range warnings {
		agg.warn(w, a.Name)
	}
	if err != nil {
		log.Warn().Str("artifact", a.Name).Err(err).Msg("artifact extraction failed")
		agg.fileFailed()
		agg.addError(domain.IngestionError{
			Type:      domain.ErrTypeExtractionFailed,
			Message:   err.Error(),
			FileName:  a.Name,
			Cause:     err,
			Timestamp: o.clock.Now(),
		})
		return
	}
	for _, p := range paths {
		if p != localPath {
			temps.register(p)
		}
	}

	// Parse failures escalate to errors only when the whole artifact yielded
	// nothing; a broken file alongside parsed siblings in the same archive
	// stays a warning so partial archives still count as progress.
	var failed []domain.IngestionError
	succeeded := 0
	for _, p := range paths {
		result, perr := o.parseFile(p)
		if perr != nil {
			log.Warn().Str("artifact", a.Name).Str("file", filepath.Base(p)).
				Err(perr).Msg("report file failed to parse")
			agg.fileFailed()
			failed = append(failed, domain.IngestionError{
				Type:      domain.ErrTypeParsingFailed,
				Message:   perr.Error(),
				FileName:  filepath.Base(p),
				Cause:     perr,
				Timestamp: o.clock.Now(),
			})
			continue
		}
		succeeded++
		agg.addResult(result)
		done, total = agg.artifactProgress()
		o.events.Progress(domain.ProgressEvent{
			Phase:     domain.PhaseParse,
			FileName:  result.FileName,
			Details:   string(result.Format),
			Processed: done,
			Total:     total,
		})
	}

	for _, fe := range failed {
		if succeeded > 0 {
			agg.warn(fe.Message, fe.FileName)
		} else {
			agg.addError(fe)
		}
	}
}

// parseFile opens and parses one report file into a normalized result.
func (o *Orchestrator) parseFile(path string) (domain.FileProcessingResult, error) {
	f, err := os.Open(path) //nolint:gosec // path is derived, not user input
	if err != nil {
		return domain.FileProcessingResult{}, errors.Wrap(err, "opening report file")
	}
	defer f.Close() //nolint:errcheck // read-side close

	var size int64
	if fi, statErr := f.Stat(); statErr == nil {
		size = fi.Size()
	}

	opts := parser.Options{
		ExpectedFormat: o.cfg.ExpectedFormat,
		FormatConfig:   o.cfg.FormatConfig,
		FileName:       filepath.Base(path),
	}

	start := o.clock.Now()
	var pr *parser.Result
	if o.cfg.StreamingEnabled {
		pr, err = parser.Parse(f, opts)
	} else {
		// Buffered path: read the whole file up front. Output is identical
		// to the streaming path, only the memory profile differs.
		var data []byte
		data, err = io.ReadAll(f)
		if err != nil {
			return domain.FileProcessingResult{}, errors.Wrap(err, "reading report file")
		}
		pr, err = parser.ParseString(string(data), opts)
	}
	if err != nil {
		return domain.FileProcessingResult{}, err
	}

	return domain.FileProcessingResult{
		FileName:       filepath.Base(path),
		Format:         pr.Format,
		TestSuites:     pr.TestSuites,
		ProcessingTime: o.clock.Now().Sub(start),
		FileSizeBytes:  size,
		Warnings:       pr.Warnings,
	}, nil
}

// persist hands every parsed suite tree to the configured persister.
// Persistence failures are warnings: parsing, not storage, is this core's
// responsibility, and the caller still receives the full parsed output.
func (o *Orchestrator) persist(ctx context.Context, log zerolog.Logger, agg *aggregator) {
	if o.persister == nil {
		return
	}
	results := agg.snapshotResults()
	if len(results) == 0 {
		return
	}

	o.events.Progress(domain.ProgressEvent{
		Phase: domain.PhasePersist,
		Total: len(results),
	})
	pctx := domain.PersistenceContext{RepositoryContext: o.cfg.Repository}
	for i := range results {
		if err := o.persister.SaveTestResults(ctx, results[i].TestSuites, pctx); err != nil {
			log.Warn().Str("file", results[i].FileName).Err(err).Msg("persistence failed")
			agg.warn("failed to persist results: "+err.Error(), results[i].FileName)
		}
	}
}

// classifyDownloadError maps a downloader failure onto the ingestion error
// taxonomy using the transport classification when one is present.
func classifyDownloadError(err error, artifactName string, clk clock.Clock) domain.IngestionError {
	errType := domain.ErrTypeDownloadFailed

	var terr *download.TransportError
	switch {
	case stderrors.Is(err, errors.ErrFileTooLarge):
		errType = domain.ErrTypeFileTooLarge
	case stderrors.As(err, &terr) && terr.IsTimeout:
		errType = domain.ErrTypeTimeout
	case stderrors.As(err, &terr) && terr.IsNetworkFailure:
		errType = domain.ErrTypeNetworkError
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, errors.ErrTimeout):
		errType = domain.ErrTypeTimeout
	}

	return domain.IngestionError{
		Type:      errType,
		Message:   err.Error(),
		FileName:  artifactName,
		Cause:     err,
		Timestamp: clk.Now(),
	}
}

// aggregator serializes concurrent mutation of the shared IngestionResult
// and mirrors every mutation out to the event sinks.
type aggregator struct {
	mu             sync.Mutex
	result         *domain.IngestionResult
	events         *fanout
	clock          clock.Clock
	artifactsTotal int
	artifactsDone  int
}

func (g *aggregator) setArtifactTotal(n int) {
	g.mu.Lock()
	g.artifactsTotal = n
	g.mu.Unlock()
}

func (g *aggregator) artifactDone() {
	g.mu.Lock()
	g.artifactsDone++
	g.mu.Unlock()
}

// artifactProgress reports how many artifacts have finished out of the
// accepted batch, for per-phase progress events.
func (g *aggregator) artifactProgress() (done, total int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.artifactsDone, g.artifactsTotal
}

func (g *aggregator) addResult(r domain.FileProcessingResult) {
	g.mu.Lock()
	g.result.Results = append(g.result.Results, r)
	g.result.Stats.ProcessedFiles++
	if r.TestSuites != nil {
		g.result.Stats.TotalTests += r.TestSuites.Tests
		g.result.Stats.TotalFailures += r.TestSuites.Failures
		g.result.Stats.TotalErrors += r.TestSuites.Errors
		g.result.Stats.TotalSkipped += r.TestSuites.Skipped
	}
	g.mu.Unlock()
	g.events.ArtifactProcessed(r)
}

func (g *aggregator) addError(e domain.IngestionError) {
	if e.Timestamp.IsZero() {
		e.Timestamp = g.clock.Now()
	}
	g.mu.Lock()
	g.result.Errors = append(g.result.Errors, e)
	g.mu.Unlock()
	g.events.Error(e)
}

func (g *aggregator) warn(message, context string) {
	g.events.Warning(message, context)
}

func (g *aggregator) fileFailed() {
	g.mu.Lock()
	g.result.Stats.FailedFiles++
	g.mu.Unlock()
}

func (g *aggregator) addDownloadTime(d time.Duration) {
	g.mu.Lock()
	g.result.Stats.DownloadTime += d
	g.mu.Unlock()
}

func (g *aggregator) snapshotResults() []domain.FileProcessingResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.FileProcessingResult, len(g.result.Results))
	copy(out, g.result.Results)
	return out
}
