// Package parser implements the streaming multi-dialect XML test-report
// parser. It consumes a document through encoding/xml's token API over a
// stack of open elements, so memory use is bounded by tree depth rather than
// document size: artifacts can contain tens of thousands of test cases.
//
// All six dialects share one grammar; dialect differences are a
// configuration record (see dialect.go), not subtypes.
package parser

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/detect"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/errors"
)

// Options configures one parse.
type Options struct {
	// ExpectedFormat forces a dialect. When empty, the parser auto-detects
	// from a bounded content prefix and the file name.
	ExpectedFormat domain.ReportFormat

	// FormatConfig carries dialect-specific knobs (attribute aliases).
	FormatConfig map[string]string

	// FileName is used only as an auto-detection path signal.
	FileName string

	// Strict makes negative declared suite counters a validation error
	// instead of coercing them to zero.
	Strict bool
}

// Result is the outcome of parsing one report document.
type Result struct {
	Format     domain.ReportFormat
	TestSuites *domain.TestSuites
	Warnings   []string
}

// Parse consumes a report document from r and produces the normalized suite
// tree. It fails, wrapping errors.ErrParsingFailed, on unrecoverable
// structural breakage (unterminated tags, truncated stream, invalid control
// characters) or on an empty document. Malformed attributes never abort an
// otherwise-readable suite: counters that fail to parse as non-negative
// numbers become zero.
func Parse(r io.Reader, opts Options) (*Result, error) {
	br := bufio.NewReaderSize(r, constants.DetectionPrefixBytes)

	format := opts.ExpectedFormat
	if format == "" {
		prefix, _ := br.Peek(constants.DetectionPrefixBytes)
		format = detect.Detect(prefix, opts.FileName).Format
	}
	spec := dialectFor(format, opts.FormatConfig)

	st := &state{spec: spec, strict: opts.Strict}
	if err := st.run(xml.NewDecoder(br)); err != nil {
		return nil, err
	}

	result := &Result{
		Format:     spec.format,
		TestSuites: st.finalize(),
		Warnings:   st.warnings,
	}
	if spec.warning != "" {
		result.Warnings = append(result.Warnings, spec.warning)
	}
	return result, nil
}

// ParseString parses a fully buffered document. Used by callers with small
// in-memory documents; produces identical results to Parse.
func ParseString(doc string, opts Options) (*Result, error) {
	return Parse(strings.NewReader(doc), opts)
}

// state carries the element-stack traversal state for one document.
type state struct {
	spec   dialectSpec
	strict bool

	root         domain.TestSuites
	hasAggregate bool // document root is <testsuites>
	rootCounters bool // aggregate root declared at least one counter attribute
	suite        *domain.TestSuite
	testCase     *domain.TestCase
	nestedSuites int // open <testsuite> elements inside the current suite, ignored
	sawElement   bool
	sawSuiteElem bool
	warnings     []string

	// capture state for failure/error/skipped/system-out/system-err text
	capturing    bool
	captureElem  string
	captureDepth int
	captureText  strings.Builder
	captureDone  func(text string)
}

// run drives the token loop to EOF.
func (s *state) run(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: malformed xml: %w", errors.ErrParsingFailed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.sawElement = true
			if s.capturing {
				// Nested markup inside a captured element contributes only
				// its character data.
				s.captureDepth++
				continue
			}
			if err := s.startElement(t); err != nil {
				return err
			}
		case xml.EndElement:
			if s.capturing {
				if s.captureDepth > 0 {
					s.captureDepth--
					continue
				}
				if t.Name.Local == s.captureElem {
					s.captureDone(s.captureText.String())
					s.capturing = false
					s.captureText.Reset()
					s.captureDone = nil
				}
				continue
			}
			s.endElement(t)
		case xml.CharData:
			if s.capturing {
				s.captureText.Write(t)
			}
		}
	}

	if !s.sawElement {
		return fmt.Errorf("%w: %w", errors.ErrParsingFailed, errors.ErrEmptyDocument)
	}
	if !s.sawSuiteElem {
		s.warnings = append(s.warnings, "no test suites found in document")
	}
	return nil
}

func (s *state) startElement(se xml.StartElement) error {
	switch se.Name.Local {
	case "testsuites":
		s.hasAggregate = true
		s.root.Name = attrValue(se, "name")
		s.root.Timestamp = attrValue(se, "timestamp")
		var err error
		s.root.Tests, err = s.counter(se, &s.rootCounters, "tests")
		if err != nil {
			return err
		}
		if s.root.Failures, err = s.counter(se, &s.rootCounters, "failures"); err != nil {
			return err
		}
		if s.root.Errors, err = s.counter(se, &s.rootCounters, "errors"); err != nil {
			return err
		}
		if s.root.Skipped, err = s.counter(se, &s.rootCounters, "skipped"); err != nil {
			return err
		}
		s.root.Time = parseSeconds(attrValue(se, "time"))

	case "testsuite":
		if s.suite != nil {
			// A suite nested inside an open suite is outside the flat
			// grammar; keep the outer suite and let the nested cases
			// attach to it rather than dropping what was already parsed.
			s.warnings = append(s.warnings, "nested testsuite ignored")
			s.nestedSuites++
			return nil
		}
		s.sawSuiteElem = true
		suite := &domain.TestSuite{
			Name:      attrValue(se, "name"),
			ID:        attrValue(se, "id"),
			Timestamp: attrValue(se, "timestamp"),
			Time:      parseSeconds(attrValue(se, "time")),
		}
		if s.spec.hasSuiteMetadata {
			suite.Package = attrValue(se, "package")
			suite.Hostname = attrValue(se, "hostname")
		}
		var present bool
		var err error
		if suite.Tests, err = s.counter(se, &present, "tests"); err != nil {
			return err
		}
		if suite.Failures, err = s.counter(se, &present, "failures"); err != nil {
			return err
		}
		if suite.Errors, err = s.counter(se, &present, "errors"); err != nil {
			return err
		}
		if suite.Skipped, err = s.counter(se, &present, "skipped"); err != nil {
			return err
		}
		s.suite = suite

	case "testcase":
		if s.suite == nil {
			// A case outside any suite is structurally homeless; skip it.
			s.warnings = append(s.warnings, "testcase outside testsuite ignored")
			return nil
		}
		s.testCase = &domain.TestCase{
			Name:      attrValue(se, "name"),
			ClassName: attrFirst(se, s.spec.classNameAliases),
			Time:      parseSeconds(attrValue(se, "time")),
		}

	case "failure", "error":
		if s.testCase == nil {
			return nil
		}
		detail := &domain.FailureDetail{
			Type:    attrValue(se, "type"),
			Message: attrValue(se, "message"),
		}
		tc, kind := s.testCase, se.Name.Local
		s.beginCapture(se.Name.Local, func(text string) {
			detail.StackTrace = strings.TrimSpace(text)
			if kind == "failure" && tc.Failure == nil {
				tc.Failure = detail
			} else if kind == "error" && tc.Error == nil {
				tc.Error = detail
			}
		})

	case "skipped":
		if s.testCase == nil {
			return nil
		}
		tc := s.testCase
		msg := attrValue(se, "message")
		s.beginCapture("skipped", func(text string) {
			if tc.Skipped == nil {
				if msg == "" {
					msg = strings.TrimSpace(text)
				}
				tc.Skipped = &domain.SkipDetail{Message: msg}
			}
		})

	case "system-out":
		s.beginCapture("system-out", s.sinkSystemText(false))

	case "system-err":
		s.beginCapture("system-err", s.sinkSystemText(true))

	case "property":
		if s.suite != nil {
			name := attrValue(se, "name")
			if name != "" {
				if s.suite.Properties == nil {
					s.suite.Properties = make(map[string]string)
				}
				s.suite.Properties[name] = attrValue(se, "value")
			}
		}
	}
	return nil
}

func (s *state) endElement(ee xml.EndElement) {
	switch ee.Name.Local {
	case "testcase":
		if s.testCase == nil || s.suite == nil {
			return
		}
		s.testCase.Status = deriveStatus(s.testCase)
		s.suite.TestCases = append(s.suite.TestCases, *s.testCase)
		s.testCase = nil

	case "testsuite":
		if s.nestedSuites > 0 {
			s.nestedSuites--
			return
		}
		if s.suite == nil {
			return
		}
		s.root.Suites = append(s.root.Suites, *s.suite)
		s.suite = nil
	}
}

// beginCapture starts accumulating descendant character data (including
// CDATA, entities decoded) until the matching end element.
func (s *state) beginCapture(elem string, done func(text string)) {
	s.capturing = true
	s.captureElem = elem
	s.captureDepth = 0
	s.captureText.Reset()
	s.captureDone = done
}

// sinkSystemText routes captured system output to the open test case when
// one exists, otherwise to the open suite.
func (s *state) sinkSystemText(isErr bool) func(string) {
	tc, suite := s.testCase, s.suite
	return func(text string) {
		text = strings.TrimSpace(text)
		switch {
		case tc != nil && isErr:
			tc.SystemErr = text
		case tc != nil:
			tc.SystemOut = text
		case suite != nil && isErr:
			suite.SystemErr = text
		case suite != nil:
			suite.SystemOut = text
		}
	}
}

// counter parses one non-negative integer attribute leniently: missing,
// non-numeric, or negative values become 0. In strict mode a value that
// parsed to a negative number is a validation error instead. present is set
// when the attribute exists at all, regardless of parse outcome.
func (s *state) counter(se xml.StartElement, present *bool, name string) (int, error) {
	raw, ok := attrLookup(se, name)
	if !ok {
		return 0, nil
	}
	*present = true
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	if v < 0 {
		if s.strict {
			return 0, errors.Wrapf(errors.ErrNegativeCount, "attribute %s=%q", name, raw)
		}
		return 0, nil
	}
	return v, nil
}

// finalize produces the root aggregate: counters come from the
// <testsuites> element when it declared any, otherwise they are summed
// across child suites (covering both the bare-suite root and an aggregate
// root with no counter attributes).
func (s *state) finalize() *domain.TestSuites {
	root := s.root
	if !s.hasAggregate || !s.rootCounters {
		root.Tests, root.Failures, root.Errors, root.Skipped = 0, 0, 0, 0
		var totalTime float64
		for i := range root.Suites {
			root.Tests += root.Suites[i].Tests
			root.Failures += root.Suites[i].Failures
			root.Errors += root.Suites[i].Errors
			root.Skipped += root.Suites[i].Skipped
			totalTime += root.Suites[i].Time
		}
		if root.Time == 0 {
			root.Time = totalTime
		}
	}
	return &root
}

// deriveStatus computes a case's outcome structurally: a failure child beats
// an error child beats a skipped child; none means passed. The losing
// details are cleared so exactly one detail stays populated, consistent
// with the status.
func deriveStatus(tc *domain.TestCase) domain.TestStatus {
	switch {
	case tc.Failure != nil:
		tc.Error, tc.Skipped = nil, nil
		return domain.TestStatusFailed
	case tc.Error != nil:
		tc.Skipped = nil
		return domain.TestStatusError
	case tc.Skipped != nil:
		return domain.TestStatusSkipped
	default:
		return domain.TestStatusPassed
	}
}

// attrLookup returns the raw value of a named attribute.
func attrLookup(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// attrValue returns a named attribute's value or "".
func attrValue(se xml.StartElement, name string) string {
	v, _ := attrLookup(se, name)
	return v
}

// attrFirst returns the first present attribute among the given aliases.
func attrFirst(se xml.StartElement, names []string) string {
	for _, n := range names {
		if v, ok := attrLookup(se, n); ok {
			return v
		}
	}
	return ""
}

// parseSeconds parses a duration attribute as non-negative seconds,
// defaulting to 0 for missing, malformed, or negative values.
func parseSeconds(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
