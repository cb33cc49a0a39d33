package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frerrors "github.com/flakeradar/flakeradar/internal/errors"
)

// writeZip creates a zip file at path with the given name->content entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// TestExtract_XMLPassthrough tests bare XML documents pass through unchanged
func TestExtract_XMLPassthrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "results.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte("<testsuite/>"), 0o600))

	e := New(dir, zerolog.Nop())
	paths, warnings, err := e.Extract(xmlPath, "results.xml")

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{xmlPath}, paths)
}

// TestExtract_ZipFiltersEntries tests only report-like entries come out
func TestExtract_ZipFiltersEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "artifacts.zip")
	writeZip(t, zipPath, map[string]string{
		"surefire-reports/TEST-com.acme.WidgetTest.xml": "<testsuite name='w'/>",
		"build/test-results/test/TEST-AcmeTest.xml":     "<testsuite name='a'/>",
		"logs/run.log":      "noise",
		"bin/tool":          "\x00\x01binary",
		"coverage/pom.xml":  "<project/>",
		"junit-results.xml": "<testsuites/>",
	})

	e := New(dir, zerolog.Nop())
	paths, warnings, err := e.Extract(zipPath, "artifacts.zip")

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, paths, 3)
	for _, p := range paths {
		data, readErr := os.ReadFile(p)
		require.NoError(t, readErr)
		assert.NotEmpty(t, data)
	}
}

// TestExtract_UnsupportedExtension tests the warning path
func TestExtract_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tarPath := filepath.Join(dir, "artifacts.tar.gz")
	require.NoError(t, os.WriteFile(tarPath, []byte("not really"), 0o600))

	e := New(dir, zerolog.Nop())
	paths, warnings, err := e.Extract(tarPath, "artifacts.tar.gz")

	require.NoError(t, err)
	assert.Empty(t, paths)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unsupported file extension")
}

// TestExtract_CorruptZip tests the typed extraction failure
func TestExtract_CorruptZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("PK\x03\x04 this is not a zip"), 0o600))

	e := New(dir, zerolog.Nop())
	_, _, err := e.Extract(zipPath, "broken.zip")

	require.Error(t, err)
	require.ErrorIs(t, err, frerrors.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "broken.zip")
}

// TestExtract_EmptyArchiveWarns tests archives with no report entries
func TestExtract_EmptyArchiveWarns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "nothing.zip")
	writeZip(t, zipPath, map[string]string{"readme.md": "# hi"})

	e := New(dir, zerolog.Nop())
	paths, warnings, err := e.Extract(zipPath, "nothing.zip")

	require.NoError(t, err)
	assert.Empty(t, paths)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no report-like entries")
}

// TestExtract_ZipSlipEntryContained tests traversal names cannot escape the
// temp directory
func TestExtract_ZipSlipEntryContained(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{
		"../../outside-test-report.xml": "<testsuite/>",
	})

	e := New(dir, zerolog.Nop())
	paths, _, err := e.Extract(zipPath, "evil.zip")

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, dir, filepath.Dir(paths[0]), "extraction must stay inside the temp dir")
}
