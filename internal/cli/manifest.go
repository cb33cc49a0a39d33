package cli

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/errors"
)

// Manifest is the YAML batch description handed to the ingest command: the
// repository context plus the artifact list for one CI run. Settings like
// concurrency and retry policy live in the config file, not here.
type Manifest struct {
	Repository     domain.RepositoryContext `yaml:"repository"`
	Artifacts      []domain.ArtifactSource  `yaml:"artifacts"`
	ExpectedFormat domain.ReportFormat      `yaml:"expected_format,omitempty"`
	FormatConfig   map[string]string        `yaml:"format_config,omitempty"`
}

// LoadManifest reads and validates a manifest file. Unknown keys are
// rejected so a typo like "artifcts" fails loudly instead of producing an
// empty batch.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied manifest path
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: manifest %s is empty", errors.ErrManifestInvalid, path)
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrManifestInvalid, err)
	}

	if len(m.Artifacts) == 0 {
		return nil, fmt.Errorf("%w: manifest %s lists no artifacts", errors.ErrManifestInvalid, path)
	}
	if m.ExpectedFormat != "" && !m.ExpectedFormat.IsValid() {
		return nil, fmt.Errorf("%w: expected_format %q is not recognized",
			errors.ErrManifestInvalid, m.ExpectedFormat)
	}

	return &m, nil
}

// ApplyTo merges the manifest's batch description into cfg. Manifest values
// win over config-file values for the fields the manifest owns.
func (m *Manifest) ApplyTo(cfg *config.IngestionConfig) {
	cfg.Repository = m.Repository
	cfg.Artifacts = m.Artifacts
	if m.ExpectedFormat != "" {
		cfg.ExpectedFormat = m.ExpectedFormat
	}
	if len(m.FormatConfig) > 0 {
		cfg.FormatConfig = m.FormatConfig
	}
}
