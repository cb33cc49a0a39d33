package download

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flakeradar/flakeradar/internal/clock"
	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/errors"
	"github.com/flakeradar/flakeradar/internal/logging"
)

// HTTPClient is the minimal HTTP surface the downloader needs.
// This allows mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches remote artifacts to temporary files with retry,
// backoff, size limiting, and an idle-transfer timeout.
type Downloader struct {
	client  HTTPClient
	clock   clock.Clock
	cfg     *config.IngestionConfig
	tempDir string
	log     zerolog.Logger
}

// New creates a Downloader writing into tempDir (os.TempDir() when empty).
func New(cfg *config.IngestionConfig, tempDir string, log zerolog.Logger) *Downloader {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Downloader{
		// No client-level timeout: the idle-timeout transform bounds the
		// transfer, and a total-duration cap would kill slow-but-live
		// large downloads.
		client:  &http.Client{},
		clock:   clock.RealClock{},
		cfg:     cfg,
		tempDir: tempDir,
		log:     log.With().Str("component", "download").Logger(),
	}
}

// NewWithDeps creates a Downloader with custom dependencies. Used for testing.
func NewWithDeps(cfg *config.IngestionConfig, tempDir string, client HTTPClient, clk clock.Clock, log zerolog.Logger) *Downloader {
	d := New(cfg, tempDir, log)
	if client != nil {
		d.client = client
	}
	if clk != nil {
		d.clock = clk
	}
	return d
}

// Download fetches one artifact and returns the temporary file path. On
// exhausting all retry attempts it returns the last error, annotated with
// the artifact name and wrapping errors.ErrDownloadFailed.
//
// The artifact's ExpiresAt is checked against the current time immediately
// before each attempt; an expired URL fails without consuming a network
// round trip and without retrying.
func (d *Downloader) Download(ctx context.Context, a domain.ArtifactSource) (string, error) {
	retry := d.cfg.Retry
	var lastErr error

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if a.ExpiresAt != nil && !d.clock.Now().Before(*a.ExpiresAt) {
			return "", fmt.Errorf("%w: artifact %q: %w (expired at %s)",
				errors.ErrDownloadFailed, a.Name, errors.ErrArtifactExpired,
				a.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
		}

		localPath, terr := d.attempt(ctx, a)
		if terr == nil {
			return localPath, nil
		}
		lastErr = terr

		d.log.Warn().
			Str("artifact", a.Name).
			Int("attempt", attempt).
			Err(terr).
			Msg("download attempt failed")

		if !terr.Retryable() || attempt == retry.MaxAttempts {
			break
		}

		delay := computeDelay(retry, attempt-1, terr.RetryAfterHint)
		if err := d.clock.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return "", fmt.Errorf("%w: artifact %q: %w", errors.ErrDownloadFailed, a.Name, lastErr)
}

// attempt performs a single fetch, streaming the body through the size
// limiter and idle-timeout guard into a fresh temporary file.
func (d *Downloader) attempt(ctx context.Context, a domain.ArtifactSource) (string, *TransportError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.ResolvedURL(), nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &TransportError{IsTimeout: true, Err: err}
		}
		return "", &TransportError{IsNetworkFailure: true, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return "", &TransportError{
			StatusCode:     resp.StatusCode,
			RetryAfterHint: parseRetryHint(resp.Header, d.clock.Now()),
			Err:            fmt.Errorf("GET %s: status %d", logging.RedactURL(a.ResolvedURL()), resp.StatusCode),
		}
	}

	localPath := d.tempPath(a)
	f, err := os.Create(localPath) //nolint:gosec // path is derived, not user input
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var body io.Reader = resp.Body
	body = newLimitedReader(body, d.cfg.MaxFileSizeBytes)
	body = newIdleTimeoutReader(body, d.cfg.Timeout)

	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(localPath)
		return "", classifyStreamError(copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(localPath)
		return "", &TransportError{Err: closeErr}
	}
	return localPath, nil
}

// classifyStreamError maps a mid-stream failure onto the transport taxonomy.
// Size violations are terminal: retrying an oversized artifact cannot help.
func classifyStreamError(err error) *TransportError {
	switch {
	case stderrors.Is(err, errors.ErrFileTooLarge):
		return &TransportError{Err: err}
	case stderrors.Is(err, errors.ErrTimeout):
		return &TransportError{IsTimeout: true, Err: err}
	default:
		return &TransportError{IsNetworkFailure: true, Err: err}
	}
}

// tempPath derives a collision-free temporary path: prefix + timestamp +
// sanitized artifact name + short uuid, preserving the source extension so
// the extractor can dispatch on it.
func (d *Downloader) tempPath(a domain.ArtifactSource) string {
	var ext string
	if u, err := url.Parse(a.ResolvedURL()); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(a.Name))
	}
	if ext == "" {
		ext = ".zip"
	}
	name := fmt.Sprintf("%s%d-%s-%s%s",
		constants.TempFilePrefix,
		d.clock.Now().UnixNano(),
		sanitizeName(a.Name),
		uuid.NewString()[:8],
		ext)
	return filepath.Join(d.tempDir, name)
}

// sanitizeName keeps a file-system-safe subset of an artifact name.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "artifact"
	}
	return b.String()
}
