// Package archive turns a downloaded artifact file into the set of report
// documents it contains. Dispatch is by file extension: bare XML documents
// pass through, zip archives are enumerated and only entries that look like
// test reports are extracted; anything else yields a warning.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/detect"
	"github.com/flakeradar/flakeradar/internal/errors"
)

// Extractor extracts report documents from downloaded artifact files into a
// temporary directory.
type Extractor struct {
	tempDir string
	log     zerolog.Logger
}

// New creates an Extractor writing into tempDir (os.TempDir() when empty).
func New(tempDir string, log zerolog.Logger) *Extractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Extractor{
		tempDir: tempDir,
		log:     log.With().Str("component", "archive").Logger(),
	}
}

// Extract returns the local paths of every report document contained in the
// downloaded file, plus warnings for anything skipped.
//
//   - .xml files pass through unchanged as a single-element result.
//   - .zip archives are enumerated; entries failing the report predicate
//     (binaries, logs, non-report XML) are skipped silently, matching
//     entries are extracted to fresh temporary paths.
//   - any other extension yields an empty result with a warning.
//
// Corrupt archives and extraction I/O failures return an error wrapping
// errors.ErrExtractionFailed, annotated with the artifact name.
func (e *Extractor) Extract(localPath, artifactName string) ([]string, []string, error) {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".xml":
		return []string{localPath}, nil, nil
	case ".zip":
		return e.extractZip(localPath, artifactName)
	default:
		warning := fmt.Sprintf("artifact %q: unsupported file extension %q",
			artifactName, filepath.Ext(localPath))
		return nil, []string{warning}, nil
	}
}

// extractZip enumerates archive entries, extracting those that look like
// XML test reports.
func (e *Extractor) extractZip(archivePath, artifactName string) ([]string, []string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: artifact %q: open zip archive: %w",
			errors.ErrExtractionFailed, artifactName, err)
	}
	defer r.Close() //nolint:errcheck // zip reader close

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !detect.LooksLikeReportPath(f.Name) {
			continue
		}
		outPath, err := e.extractEntry(f)
		if err != nil {
			// Partial extraction is useless to the parser; clean up what we
			// already wrote before failing the artifact.
			for _, p := range extracted {
				_ = os.Remove(p)
			}
			return nil, nil, fmt.Errorf("%w: artifact %q: entry %q: %w",
				errors.ErrExtractionFailed, artifactName, f.Name, err)
		}
		e.log.Debug().
			Str("artifact", artifactName).
			Str("entry", f.Name).
			Str("path", outPath).
			Msg("extracted report entry")
		extracted = append(extracted, outPath)
	}

	var warnings []string
	if len(extracted) == 0 {
		warnings = append(warnings,
			fmt.Sprintf("artifact %q: archive contains no report-like entries", artifactName))
	}
	return extracted, warnings, nil
}

// extractEntry copies one archive entry to a fresh temporary path. Entry
// names never influence the destination path beyond the base name, which
// also forecloses zip-slip traversal.
func (e *Extractor) extractEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close() //nolint:errcheck // entry reader close

	base := filepath.Base(filepath.Clean(f.Name))
	outPath := filepath.Join(e.tempDir,
		fmt.Sprintf("%s%s-%s", constants.TempFilePrefix, uuid.NewString()[:8], base))

	out, err := os.Create(outPath) //nolint:gosec // path is derived, not user input
	if err != nil {
		return "", err
	}

	_, copyErr := io.Copy(out, rc) //nolint:gosec // size bounded by download limiter
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(outPath)
		return "", copyErr
	}
	if closeErr != nil {
		_ = os.Remove(outPath)
		return "", closeErr
	}
	return outPath, nil
}
