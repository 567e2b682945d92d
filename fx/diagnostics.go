package fx

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/gogpu/reshadefx/lexer"
)

// Severity distinguishes errors from warnings.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Stage is the pipeline stage that produced a diagnostic.
type Stage uint8

const (
	StagePreprocessor Stage = iota
	StageParser
	StageRegistry // merging descriptors of several effects
)

// Diagnostic is one located compiler message.
type Diagnostic struct {
	Severity Severity
	Stage    Stage
	Code     int
	Location lexer.Location
	Message  string
}

// String formats the diagnostic as "file(line, col): error X3000: message".
// Preprocessor messages read "preprocessor error" and carry no code.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Location.String())
	sb.WriteString(": ")
	if d.Stage == StagePreprocessor {
		sb.WriteString("preprocessor ")
	}
	sb.WriteString(d.Severity.String())
	if d.Code != 0 {
		fmt.Fprintf(&sb, " X%d", d.Code)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Diagnostics is an ordered list of compiler messages.
type Diagnostics []Diagnostic

// Add appends a diagnostic.
func (dl *Diagnostics) Add(d Diagnostic) {
	*dl = append(*dl, d)
}

// Errorf appends an error with a formatted message.
func (dl *Diagnostics) Errorf(stage Stage, loc lexer.Location, code int, format string, args ...any) {
	dl.Add(Diagnostic{Severity: SeverityError, Stage: stage, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Warningf appends a warning with a formatted message.
func (dl *Diagnostics) Warningf(stage Stage, loc lexer.Location, code int, format string, args ...any) {
	dl.Add(Diagnostic{Severity: SeverityWarning, Stage: stage, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic is an error.
func (dl Diagnostics) HasErrors() bool {
	for _, d := range dl {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the errors.
func (dl Diagnostics) Errors() Diagnostics {
	return dl.filter(SeverityError)
}

// Warnings returns only the warnings.
func (dl Diagnostics) Warnings() Diagnostics {
	return dl.filter(SeverityWarning)
}

func (dl Diagnostics) filter(s Severity) Diagnostics {
	var out Diagnostics
	for _, d := range dl {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// String returns one formatted line per diagnostic.
func (dl Diagnostics) String() string {
	var sb strings.Builder
	for _, d := range dl {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Error implements the error interface.
func (dl Diagnostics) Error() string {
	errs := dl.Errors()
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].String()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].String(), len(errs)-1)
}

// FormatAll returns every diagnostic followed by the offending source line
// and a caret under the column. sources maps source names to their text;
// diagnostics in unknown sources are printed without context.
func (dl Diagnostics) FormatAll(sources map[string]string) string {
	var sb strings.Builder
	for i, d := range dl {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.String())
		sb.WriteByte('\n')
		if line, col, ok := contextLine(sources, d.Location); ok {
			fmt.Fprintf(&sb, "%4d| %s\n", d.Location.Line, line)
			fmt.Fprintf(&sb, "    | %s^\n", strings.Repeat(" ", col-1))
		}
	}
	return sb.String()
}

func contextLine(sources map[string]string, loc lexer.Location) (string, int, bool) {
	text, ok := sources[loc.Source]
	if !ok || loc.Line < 1 {
		return "", 0, false
	}
	lines := strings.Split(text, "\n")
	if loc.Line > len(lines) {
		return "", 0, false
	}
	line := strings.TrimRight(lines[loc.Line-1], "\r")
	col := min(max(loc.Column, 1), len(line)+1)
	return line, col, true
}

var (
	errorFmt   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningFmt = color.New(color.FgYellow).SprintFunc()
)

// FormatColored returns the diagnostics with errors in red and warnings in
// yellow. Coloring follows color.NoColor.
func (dl Diagnostics) FormatColored() string {
	var sb strings.Builder
	for _, d := range dl {
		if d.Severity == SeverityError {
			sb.WriteString(errorFmt(d.String()))
		} else {
			sb.WriteString(warningFmt(d.String()))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
