package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakeradar/flakeradar/internal/domain"
	frerrors "github.com/flakeradar/flakeradar/internal/errors"
	"github.com/flakeradar/flakeradar/internal/testutil"
)

// TestParse_AllDialectsSyntheticCorpus tests that every dialect's synthetic
// document parses to N*M cases with per-status counts matching the generator
func TestParse_AllDialectsSyntheticCorpus(t *testing.T) {
	t.Parallel()

	spec := testutil.ReportSpec{
		Suites:           4,
		CasesPerSuite:    6,
		FailuresPerSuite: 2,
		ErrorsPerSuite:   1,
		SkippedPerSuite:  1,
	}

	for _, format := range domain.KnownFormats() {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			doc := testutil.GenerateReport(format, spec)
			result, err := ParseString(doc, Options{ExpectedFormat: format})

			require.NoError(t, err)
			assert.Equal(t, format, result.Format)
			assert.Equal(t, 24, result.TestSuites.Tests, "declared root counter")
			assert.Equal(t, 24, result.TestSuites.TotalCases(), "actual case count")
			assert.Equal(t, 8, result.TestSuites.Failures)
			assert.Equal(t, 4, result.TestSuites.Errors)
			assert.Equal(t, 4, result.TestSuites.Skipped)

			var failed, errored, skipped, passed int
			for _, suite := range result.TestSuites.Suites {
				for _, tc := range suite.TestCases {
					switch tc.Status {
					case domain.TestStatusFailed:
						failed++
					case domain.TestStatusError:
						errored++
					case domain.TestStatusSkipped:
						skipped++
					case domain.TestStatusPassed:
						passed++
					}
				}
			}
			assert.Equal(t, 8, failed)
			assert.Equal(t, 4, errored)
			assert.Equal(t, 4, skipped)
			assert.Equal(t, 8, passed)
		})
	}
}

// TestParse_BareSuiteRoot tests normalization of a single-suite document
func TestParse_BareSuiteRoot(t *testing.T) {
	t.Parallel()

	doc := testutil.GenerateReport(domain.FormatSurefire, testutil.ReportSpec{
		Suites:           1,
		CasesPerSuite:    3,
		FailuresPerSuite: 1,
		BareSuiteRoot:    true,
	})

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatSurefire})

	require.NoError(t, err)
	require.Len(t, result.TestSuites.Suites, 1)
	// Root counters are summed from the child suite when no <testsuites>
	// element exists.
	assert.Equal(t, 3, result.TestSuites.Tests)
	assert.Equal(t, 1, result.TestSuites.Failures)
}

// TestParse_StatusDerivedStructurally tests child elements, not attributes,
// decide case status
func TestParse_StatusDerivedStructurally(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="4">
  <testcase name="fails" time="0.1"><failure type="AssertionError" message="nope">trace</failure></testcase>
  <testcase name="errors" time="0.1"><error type="IOError" message="io"/></testcase>
  <testcase name="skips" time="0.1"><skipped message="later"/></testcase>
  <testcase name="passes" time="0.1"/>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	cases := result.TestSuites.Suites[0].TestCases
	require.Len(t, cases, 4)

	assert.Equal(t, domain.TestStatusFailed, cases[0].Status)
	require.NotNil(t, cases[0].Failure)
	assert.Equal(t, "AssertionError", cases[0].Failure.Type)
	assert.Equal(t, "nope", cases[0].Failure.Message)
	assert.Equal(t, "trace", cases[0].Failure.StackTrace)
	assert.Nil(t, cases[0].Error)
	assert.Nil(t, cases[0].Skipped)

	assert.Equal(t, domain.TestStatusError, cases[1].Status)
	require.NotNil(t, cases[1].Error)
	assert.Nil(t, cases[1].Failure)

	assert.Equal(t, domain.TestStatusSkipped, cases[2].Status)
	require.NotNil(t, cases[2].Skipped)
	assert.Equal(t, "later", cases[2].Skipped.Message)

	assert.Equal(t, domain.TestStatusPassed, cases[3].Status)
	assert.Nil(t, cases[3].Failure)
	assert.Nil(t, cases[3].Error)
	assert.Nil(t, cases[3].Skipped)
}

// TestParse_MalformedCountersCoercedToZero tests lenient attribute handling
func TestParse_MalformedCountersCoercedToZero(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="-5" failures="abc" errors="" time="-1.5">
  <testcase name="a" time="xyz"/>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	suite := result.TestSuites.Suites[0]
	assert.Equal(t, 0, suite.Tests)
	assert.Equal(t, 0, suite.Failures)
	assert.Equal(t, 0, suite.Errors)
	assert.InDelta(t, 0, suite.Time, 0.0001)
	assert.InDelta(t, 0, suite.TestCases[0].Time, 0.0001)
}

// TestParse_StrictModeRejectsNegativeCounters tests opt-in strict validation
func TestParse_StrictModeRejectsNegativeCounters(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="-5"><testcase name="a"/></testsuite>`

	_, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric, Strict: true})

	require.Error(t, err)
	require.ErrorIs(t, err, frerrors.ErrNegativeCount)
}

// TestParse_UnterminatedTag tests structural breakage raises a parse failure
func TestParse_UnterminatedTag(t *testing.T) {
	t.Parallel()

	doc := `<testsuites><testsuite name="s"><testcase name="a">`

	_, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.Error(t, err)
	require.ErrorIs(t, err, frerrors.ErrParsingFailed)
}

// TestParse_EmptyDocument tests the empty-input failure mode
func TestParse_EmptyDocument(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "   \n\t  "} {
		_, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

		require.Error(t, err)
		require.ErrorIs(t, err, frerrors.ErrParsingFailed)
		require.ErrorIs(t, err, frerrors.ErrEmptyDocument)
	}
}

// TestParse_CDATARoundTrip tests CDATA and escaped entities survive exactly
func TestParse_CDATARoundTrip(t *testing.T) {
	t.Parallel()

	stack := `expected <widget id="9"> but got & nothing
	at Widget.render (widget.ts:88)`
	doc := `<testsuite name="s" tests="2">
  <testcase name="cdata"><failure message="m"><![CDATA[` + stack + `]]></failure></testcase>
  <testcase name="escaped"><failure message="m">expected &lt;widget id=&quot;9&quot;&gt; but got &amp; nothing
	at Widget.render (widget.ts:88)</failure></testcase>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	cases := result.TestSuites.Suites[0].TestCases
	assert.Equal(t, stack, cases[0].Failure.StackTrace, "CDATA content must round-trip")
	assert.Equal(t, stack, cases[1].Failure.StackTrace, "escaped entities must decode to the same bytes")
}

// TestParse_UnicodeContent tests multi-byte scripts round-trip
func TestParse_UnicodeContent(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="ユニット" tests="1">
  <testcase name="проверка_виджета" classname="测试.Widget">
    <failure message="期望值不匹配">スタックトレース第1行
السطر الثاني</failure>
  </testcase>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	suite := result.TestSuites.Suites[0]
	assert.Equal(t, "ユニット", suite.Name)
	tc := suite.TestCases[0]
	assert.Equal(t, "проверка_виджета", tc.Name)
	assert.Equal(t, "测试.Widget", tc.ClassName)
	assert.Equal(t, "期望值不匹配", tc.Failure.Message)
	assert.Contains(t, tc.Failure.StackTrace, "スタックトレース第1行")
	assert.Contains(t, tc.Failure.StackTrace, "السطر الثاني")
}

// TestParse_SystemOutAndProperties tests suite- and case-level captures
func TestParse_SystemOutAndProperties(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="1" timestamp="2026-01-15T10:00:00">
  <properties>
    <property name="java.version" value="21"/>
    <property name="os.name" value="Linux"/>
  </properties>
  <testcase name="a">
    <system-out><![CDATA[case stdout]]></system-out>
    <system-err>case stderr</system-err>
  </testcase>
  <system-out>
    suite stdout
  </system-out>
  <system-err><![CDATA[suite stderr]]></system-err>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	suite := result.TestSuites.Suites[0]
	assert.Equal(t, "2026-01-15T10:00:00", suite.Timestamp)
	assert.Equal(t, map[string]string{"java.version": "21", "os.name": "Linux"}, suite.Properties)
	assert.Equal(t, "suite stdout", suite.SystemOut, "structural whitespace trimmed")
	assert.Equal(t, "suite stderr", suite.SystemErr)
	assert.Equal(t, "case stdout", suite.TestCases[0].SystemOut)
	assert.Equal(t, "case stderr", suite.TestCases[0].SystemErr)
}

// TestParse_GenericDialectWarning tests the generic-parser warning
func TestParse_GenericDialectWarning(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="1"><testcase name="a"/></testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "used generic parser; dialect-specific fields unavailable")
}

// TestParse_AutoDetectsWhenFormatOmitted tests detection integration
func TestParse_AutoDetectsWhenFormatOmitted(t *testing.T) {
	t.Parallel()

	doc := testutil.GenerateReport(domain.FormatSurefire, testutil.ReportSpec{
		Suites:        1,
		CasesPerSuite: 2,
	})

	result, err := ParseString(doc, Options{FileName: "surefire-reports/TEST-1.xml"})

	require.NoError(t, err)
	assert.Equal(t, domain.FormatSurefire, result.Format)
}

// TestParse_DeclaredCountsPreservedOnDivergence tests declared vs actual divergence
func TestParse_DeclaredCountsPreservedOnDivergence(t *testing.T) {
	t.Parallel()

	// Declares 10 tests but contains only 2.
	doc := `<testsuite name="s" tests="10" failures="3">
  <testcase name="a"/>
  <testcase name="b"/>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	suite := result.TestSuites.Suites[0]
	assert.Equal(t, 10, suite.Tests, "declared counter preserved")
	assert.Len(t, suite.TestCases, 2, "actual list reflects structure")
}

// TestParse_ClassNameAliases tests dialect attribute vocabulary
func TestParse_ClassNameAliases(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="1"><testcase name="a" file="src/widget.test.ts"/></testsuite>`

	jest, err := ParseString(doc, Options{ExpectedFormat: domain.FormatJest})
	require.NoError(t, err)
	assert.Equal(t, "src/widget.test.ts", jest.TestSuites.Suites[0].TestCases[0].ClassName)

	surefire, err := ParseString(doc, Options{ExpectedFormat: domain.FormatSurefire})
	require.NoError(t, err)
	assert.Empty(t, surefire.TestSuites.Suites[0].TestCases[0].ClassName,
		"surefire vocabulary does not read the file attribute")
}

// TestParse_FormatConfigClassNameOverride tests the classname_attr knob
func TestParse_FormatConfigClassNameOverride(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="1"><testcase name="a" spec="custom.Spec"/></testsuite>`

	result, err := ParseString(doc, Options{
		ExpectedFormat: domain.FormatGeneric,
		FormatConfig:   map[string]string{"classname_attr": "spec"},
	})

	require.NoError(t, err)
	assert.Equal(t, "custom.Spec", result.TestSuites.Suites[0].TestCases[0].ClassName)
}

// TestParse_NestedMarkupInsideSystemOut tests capture of descendant text only
func TestParse_NestedMarkupInsideSystemOut(t *testing.T) {
	t.Parallel()

	doc := `<testsuite name="s" tests="1">
  <testcase name="a"><system-out>before <b>bold</b> after</system-out></testcase>
</testsuite>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	assert.Equal(t, "before bold after", result.TestSuites.Suites[0].TestCases[0].SystemOut)
}

// TestParse_LargeDocumentStreams tests the parser handles very wide suites
func TestParse_LargeDocumentStreams(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(`<testsuites tests="20000"><testsuite name="big" tests="20000">`)
	for i := 0; i < 20000; i++ {
		b.WriteString(`<testcase name="c" time="0.001"/>`)
	}
	b.WriteString(`</testsuite></testsuites>`)

	result, err := Parse(strings.NewReader(b.String()), Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	assert.Equal(t, 20000, result.TestSuites.TotalCases())
}

// TestParse_AggregateRootWithoutCountersSumsChildren tests counter fallback
func TestParse_AggregateRootWithoutCountersSumsChildren(t *testing.T) {
	t.Parallel()

	doc := `<testsuites>
  <testsuite name="a" tests="2" failures="1"><testcase name="x"/><testcase name="y"><failure/></testcase></testsuite>
  <testsuite name="b" tests="3" errors="2"><testcase name="p"/><testcase name="q"><error/></testcase><testcase name="r"><error/></testcase></testsuite>
</testsuites>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	assert.Equal(t, 5, result.TestSuites.Tests)
	assert.Equal(t, 1, result.TestSuites.Failures)
	assert.Equal(t, 2, result.TestSuites.Errors)
}

// TestParse_NestedSuiteKeptOnOuter tests that a testsuite nested inside an
// open suite is ignored with a warning and its cases attach to the outer suite
func TestParse_NestedSuiteKeptOnOuter(t *testing.T) {
	t.Parallel()

	doc := `<testsuites>
  <testsuite name="outer" tests="3">
    <testcase name="a"/>
    <testsuite name="inner">
      <testcase name="b"/>
    </testsuite>
    <testcase name="c"/>
  </testsuite>
</testsuites>`

	result, err := ParseString(doc, Options{ExpectedFormat: domain.FormatGeneric})

	require.NoError(t, err)
	require.Len(t, result.TestSuites.Suites, 1)
	outer := result.TestSuites.Suites[0]
	assert.Equal(t, "outer", outer.Name)
	require.Len(t, outer.TestCases, 3)
	assert.Equal(t, "b", outer.TestCases[1].Name)
	assert.Equal(t, 3, result.TestSuites.Tests)
	assert.Contains(t, result.Warnings, "nested testsuite ignored")
}
