// Package testutil provides shared test helpers: synthetic report-document
// generators for every recognized dialect and an event recorder for
// pipeline tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/flakeradar/flakeradar/internal/domain"
)

// ReportSpec parameterizes a synthetic report document.
type ReportSpec struct {
	// Suites is the number of test suites (N).
	Suites int
	// CasesPerSuite is the number of cases in each suite (M).
	CasesPerSuite int
	// FailuresPerSuite, ErrorsPerSuite and SkippedPerSuite allocate that
	// many of each suite's cases to the respective outcome; the remainder
	// pass. Their sum must not exceed CasesPerSuite.
	FailuresPerSuite int
	ErrorsPerSuite   int
	SkippedPerSuite  int
	// BareSuiteRoot emits a single <testsuite> root instead of a
	// <testsuites> aggregate. Requires Suites == 1.
	BareSuiteRoot bool
}

// GenerateReport renders a synthetic document in the given dialect. The
// dialect only changes vocabulary details (class-name attribute, marker
// properties); the structure is the shared JUnit-style grammar.
func GenerateReport(format domain.ReportFormat, spec ReportSpec) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	totals := spec.Suites * spec.CasesPerSuite
	if !spec.BareSuiteRoot {
		fmt.Fprintf(&b, `<testsuites name="%s run" tests="%d" failures="%d" errors="%d" skipped="%d" time="%.3f">`+"\n",
			format, totals,
			spec.Suites*spec.FailuresPerSuite,
			spec.Suites*spec.ErrorsPerSuite,
			spec.Suites*spec.SkippedPerSuite,
			float64(totals)*0.01)
	}

	for s := 0; s < spec.Suites; s++ {
		writeSuite(&b, format, spec, s)
	}

	if !spec.BareSuiteRoot {
		b.WriteString("</testsuites>\n")
	}
	return b.String()
}

func writeSuite(b *strings.Builder, format domain.ReportFormat, spec ReportSpec, idx int) {
	fmt.Fprintf(b, `<testsuite name="suite-%d" tests="%d" failures="%d" errors="%d" skipped="%d" time="%.3f"`,
		idx, spec.CasesPerSuite, spec.FailuresPerSuite, spec.ErrorsPerSuite, spec.SkippedPerSuite,
		float64(spec.CasesPerSuite)*0.01)
	if format == domain.FormatSurefire || format == domain.FormatGradle {
		fmt.Fprintf(b, ` package="com.acme.pkg%d" hostname="ci-runner"`, idx)
	}
	b.WriteString(">\n")

	// Marker property so format detection has a content signal.
	fmt.Fprintf(b, `  <properties><property name="%s.marker" value="true"/></properties>`+"\n", format)

	classAttr := "classname"
	if format == domain.FormatJest || format == domain.FormatPytest {
		classAttr = "file"
	}

	caseNo := 0
	emit := func(body string) {
		fmt.Fprintf(b, `  <testcase name="case-%d" %s="suite-%d-class" time="0.010"`, caseNo, classAttr, idx)
		if body == "" {
			b.WriteString("/>\n")
		} else {
			b.WriteString(">\n" + body + "\n  </testcase>\n")
		}
		caseNo++
	}

	for i := 0; i < spec.FailuresPerSuite; i++ {
		emit(`    <failure type="AssertionError" message="expected true">stack line 1
stack line 2</failure>`)
	}
	for i := 0; i < spec.ErrorsPerSuite; i++ {
		emit(`    <error type="RuntimeError" message="boom"><![CDATA[raised at worker.go:42]]></error>`)
	}
	for i := 0; i < spec.SkippedPerSuite; i++ {
		emit(`    <skipped message="not supported on this platform"/>`)
	}
	passed := spec.CasesPerSuite - spec.FailuresPerSuite - spec.ErrorsPerSuite - spec.SkippedPerSuite
	for i := 0; i < passed; i++ {
		emit("")
	}

	b.WriteString("</testsuite>\n")
}
