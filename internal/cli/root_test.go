package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/testutil"
)

// executeCommand runs the CLI with the given args, capturing stdout/stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FLAKERADAR_HOME", t.TempDir())

	var buf bytes.Buffer
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeReport(t *testing.T, format domain.ReportFormat) string {
	t.Helper()
	doc := testutil.GenerateReport(format, testutil.ReportSpec{
		Suites:           2,
		CasesPerSuite:    5,
		FailuresPerSuite: 1,
	})
	path := filepath.Join(t.TempDir(), "TEST-report.xml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

// TestRootCmd_Help shows usage when invoked without a subcommand.
func TestRootCmd_Help(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "flakeradar ingests CI test-report artifacts")
	assert.Contains(t, out, "ingest")
	assert.Contains(t, out, "detect")
	assert.Contains(t, out, "parse")
}

// TestVersionCmd prints the build info line.
func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "flakeradar test (commit: none, built: unknown)")
}

// TestRootCmd_InvalidOutputFormat rejects unknown output formats up front.
func TestRootCmd_InvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "-o", "xml", "detect", "whatever.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

// TestDetectCmd_Surefire detects a generated surefire report.
func TestDetectCmd_Surefire(t *testing.T) {
	path := writeReport(t, domain.FormatSurefire)

	out, err := executeCommand(t, "detect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:     surefire")
	assert.Contains(t, out, "Confidence:")
	assert.Contains(t, out, "signal:")
}

// TestDetectCmd_JSONOutput emits the detection result as JSON.
func TestDetectCmd_JSONOutput(t *testing.T) {
	path := writeReport(t, domain.FormatPytest)

	out, err := executeCommand(t, "-o", "json", "detect", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"format": "pytest"`)
	assert.Contains(t, out, `"indicators"`)
}

// TestDetectCmd_MissingFile surfaces the open failure.
func TestDetectCmd_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "detect", filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
}

// TestParseCmd_Summary parses a report and prints the suite summary.
func TestParseCmd_Summary(t *testing.T) {
	path := writeReport(t, domain.FormatGradle)

	out, err := executeCommand(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Format: gradle")
	assert.Contains(t, out, "Suites: 2 (10 tests, 2 failures, 0 errors, 0 skipped)")
}

// TestParseCmd_ForcedFormat skips detection when --format is given.
func TestParseCmd_ForcedFormat(t *testing.T) {
	path := writeReport(t, domain.FormatSurefire)

	out, err := executeCommand(t, "parse", path, "--format", "generic")
	require.NoError(t, err)
	assert.Contains(t, out, "Format: generic")
	assert.Contains(t, out, "warning:")
}

// TestParseCmd_MalformedDocument fails with a parse error.
func TestParseCmd_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<testsuites><testsuite>"), 0o600))

	_, err := executeCommand(t, "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing failed")
}

// TestIngestCmd_EndToEnd downloads from a local server and reports success.
func TestIngestCmd_EndToEnd(t *testing.T) {
	doc := testutil.GenerateReport(domain.FormatSurefire, testutil.ReportSpec{
		Suites:        1,
		CasesPerSuite: 4,
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	manifest := fmt.Sprintf(`
repository:
  owner: flakeradar
  repo: demo
artifacts:
  - name: unit.xml
    url: %s/unit.xml
`, srv.URL)
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o600))

	out, err := executeCommand(t, "ingest", "--manifest", manifestPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingestion succeeded")
	assert.Contains(t, out, "4 total")
}

// TestIngestCmd_TerminalFailure exits non-zero when every artifact fails.
func TestIngestCmd_TerminalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	manifest := fmt.Sprintf(`
repository:
  owner: flakeradar
  repo: demo
artifacts:
  - name: gone.xml
    url: %s/gone.xml
`, srv.URL)
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o600))

	out, err := executeCommand(t, "ingest", "--manifest", manifestPath)
	require.Error(t, err)
	assert.Contains(t, out, "error [DOWNLOAD_FAILED]")
}

// TestIngestCmd_RequiresManifest enforces the required flag.
func TestIngestCmd_RequiresManifest(t *testing.T) {
	_, err := executeCommand(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest")
}
