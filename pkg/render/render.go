package render

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/report"
)

// Output formats.
const (
	FormatSimple  = "simple"
	FormatVerbose = "verbose"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
)

// Formats lists every supported format, in help-text order.
var Formats = []string{FormatSimple, FormatVerbose, FormatJSON, FormatYAML, FormatDOT, FormatSVG}

// UpToDate is printed by text formats for a report without diffs.
const UpToDate = "All crates are up to date."

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %v)", format, Formats)
	}
	return nil
}

// Options configures text output.
type Options struct {
	// Flat merges all targets into one deduplicated list.
	Flat bool
	// ComparisonLinks renders diff.rs links instead of repository links.
	ComparisonLinks bool
}

// Text writes rep in the simple or verbose style.
func Text(w io.Writer, rep *report.Report, format string, opts Options) error {
	p := &printer{w: w, opts: opts, styles: newStyles(lipgloss.NewRenderer(w))}
	if rep.Empty() {
		p.line(UpToDate)
		return p.err
	}
	switch format {
	case FormatSimple:
		p.simple(rep)
	case FormatVerbose:
		p.verbose(rep)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "%q is not a text format", format)
	}
	return p.err
}

// printer accumulates the first write error so rendering code can ignore
// errors line by line.
type printer struct {
	w      io.Writer
	opts   Options
	styles styles
	err    error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) { p.printf("%s\n", s) }
