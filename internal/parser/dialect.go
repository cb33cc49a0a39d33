package parser

import "github.com/flakeradar/flakeradar/internal/domain"

// dialectSpec is the configuration record that drives the shared grammar for
// one dialect. The dialects differ only in attribute vocabulary and a few
// optional fields, not in control flow, so one parser handles all of them.
type dialectSpec struct {
	format domain.ReportFormat

	// classNameAliases lists the test-case attributes consulted, in order,
	// for the owning class/module/file name.
	classNameAliases []string

	// hasSuiteMetadata marks dialects whose suites declare package and
	// hostname attributes (Surefire's vocabulary).
	hasSuiteMetadata bool

	// warning, when non-empty, is appended once to the parse result's
	// warning list.
	warning string
}

// dialects maps each recognized format to its grammar configuration.
var dialects = map[domain.ReportFormat]dialectSpec{
	domain.FormatSurefire: {
		format:           domain.FormatSurefire,
		classNameAliases: []string{"classname", "class"},
		hasSuiteMetadata: true,
	},
	domain.FormatGradle: {
		format:           domain.FormatGradle,
		classNameAliases: []string{"classname", "class"},
		hasSuiteMetadata: true,
	},
	domain.FormatJest: {
		format:           domain.FormatJest,
		classNameAliases: []string{"classname", "file"},
	},
	domain.FormatPytest: {
		format:           domain.FormatPytest,
		classNameAliases: []string{"classname", "file"},
	},
	domain.FormatPHPUnit: {
		format:           domain.FormatPHPUnit,
		classNameAliases: []string{"classname", "class", "file"},
	},
	domain.FormatGeneric: {
		format:           domain.FormatGeneric,
		classNameAliases: []string{"classname", "class", "file"},
		warning:          "used generic parser; dialect-specific fields unavailable",
	},
}

// dialectFor resolves the grammar configuration for a format, falling back
// to generic for unknown names. The optional formatConfig can extend the
// class-name alias list via the "classname_attr" key.
func dialectFor(format domain.ReportFormat, formatConfig map[string]string) dialectSpec {
	spec, ok := dialects[format]
	if !ok {
		spec = dialects[domain.FormatGeneric]
	}
	if extra := formatConfig["classname_attr"]; extra != "" {
		aliases := make([]string, 0, len(spec.classNameAliases)+1)
		aliases = append(aliases, extra)
		aliases = append(aliases, spec.classNameAliases...)
		spec.classNameAliases = aliases
	}
	return spec
}
