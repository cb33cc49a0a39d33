// Package detect scores test-report documents against the recognized XML
// dialects using cheap keyword heuristics over a bounded content prefix and
// the file path. Detection never fails: absent evidence it falls back to the
// generic dialect with low confidence, and the dialect-agnostic grammar
// still parses the document downstream.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/domain"
)

// signal is one weighted heuristic indicator for a dialect.
type signal struct {
	keyword string
	weight  float64
}

// signature describes how one dialect is recognized. Content signals are
// matched against a lowercased document prefix; path signals against the
// lowercased file name. Content evidence is deliberately weighted above
// path evidence: paths are a cheaper, weaker signal.
type signature struct {
	format  domain.ReportFormat
	content []signal
	path    []signal
}

// signatures holds the per-dialect heuristic tables. Weights are tuned so
// that one strong content keyword plus a matching path clears 0.5, while a
// lone path match stays a weak (but floor-clearing) guess.
var signatures = []signature{
	{
		format: domain.FormatSurefire,
		content: []signal{
			{keyword: "surefire", weight: 0.5},
			{keyword: `<property name="java.`, weight: 0.25},
			{keyword: "maven", weight: 0.2},
		},
		path: []signal{
			{keyword: "surefire-reports", weight: 0.35},
			{keyword: "target/", weight: 0.1},
		},
	},
	{
		format: domain.FormatGradle,
		content: []signal{
			{keyword: "gradle", weight: 0.5},
			{keyword: `<property name="gradle.`, weight: 0.25},
		},
		path: []signal{
			{keyword: "build/test-results", weight: 0.35},
			{keyword: "gradle", weight: 0.2},
		},
	},
	{
		format: domain.FormatJest,
		content: []signal{
			{keyword: "jest", weight: 0.5},
			{keyword: "ts-jest", weight: 0.2},
			{keyword: ".test.js", weight: 0.2},
			{keyword: ".test.ts", weight: 0.2},
		},
		path: []signal{
			{keyword: "jest", weight: 0.3},
			{keyword: "__tests__", weight: 0.25},
		},
	},
	{
		format: domain.FormatPytest,
		content: []signal{
			{keyword: "pytest", weight: 0.5},
			{keyword: ".py", weight: 0.2},
			{keyword: "conftest", weight: 0.2},
		},
		path: []signal{
			{keyword: "pytest", weight: 0.3},
			{keyword: "tox", weight: 0.15},
		},
	},
	{
		format: domain.FormatPHPUnit,
		content: []signal{
			{keyword: "phpunit", weight: 0.5},
			{keyword: ".php", weight: 0.25},
		},
		path: []signal{
			{keyword: "phpunit", weight: 0.3},
		},
	},
}

// score is a dialect's accumulated evidence.
type score struct {
	format     domain.ReportFormat
	total      float64
	content    float64
	indicators []string
}

// Detect inspects a bounded prefix of document content plus a file name and
// returns the best-guess dialect with a confidence in [0,1] and the verbatim
// list of indicators that produced the score.
//
// Detect never fails. When no dialect clears the detection floor the result
// is FormatGeneric with confidence below 0.2, not an error: downstream
// parsing still succeeds using the dialect-agnostic grammar.
func Detect(contentPrefix []byte, fileName string) domain.FormatDetectionResult {
	if len(contentPrefix) > constants.DetectionPrefixBytes {
		contentPrefix = contentPrefix[:constants.DetectionPrefixBytes]
	}
	content := strings.ToLower(string(contentPrefix))
	path := strings.ToLower(fileName)

	scores := make([]score, 0, len(signatures))
	for _, sig := range signatures {
		s := score{format: sig.format}
		for _, cs := range sig.content {
			if strings.Contains(content, cs.keyword) {
				s.total += cs.weight
				s.content += cs.weight
				s.indicators = append(s.indicators,
					fmt.Sprintf("content keyword %q (+%.2f)", cs.keyword, cs.weight))
			}
		}
		for _, ps := range sig.path {
			if path != "" && strings.Contains(path, ps.keyword) {
				s.total += ps.weight
				s.indicators = append(s.indicators,
					fmt.Sprintf("path pattern %q (+%.2f)", ps.keyword, ps.weight))
			}
		}
		if s.total > 1 {
			s.total = 1
		}
		scores = append(scores, s)
	}

	// Highest total wins; ties break on content evidence, then on format
	// name for determinism.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].total != scores[j].total {
			return scores[i].total > scores[j].total
		}
		if scores[i].content != scores[j].content {
			return scores[i].content > scores[j].content
		}
		return scores[i].format < scores[j].format
	})

	best := scores[0]
	if best.total < constants.DetectionFloor {
		return domain.FormatDetectionResult{
			Format:     domain.FormatGeneric,
			Confidence: best.total,
			Indicators: []string{"no dialect signal cleared the detection floor"},
		}
	}

	return domain.FormatDetectionResult{
		Format:     best.format,
		Confidence: best.total,
		Indicators: best.indicators,
	}
}

// LooksLikeReportPath reports whether an archive entry path looks like an
// XML test report, using the same path heuristics the detector scores with.
// Shared with the archive extractor's entry filter.
func LooksLikeReportPath(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".xml") {
		return false
	}
	for _, sig := range signatures {
		for _, ps := range sig.path {
			if strings.Contains(lower, ps.keyword) {
				return true
			}
		}
	}
	// Generic report naming conventions.
	for _, hint := range []string{"test", "report", "junit", "result"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
