package fx

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/lexer"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "parser error",
			diag: Diagnostic{Severity: SeverityError, Stage: StageParser, Code: 3004, Location: lexer.Location{Source: "a.fx", Line: 3, Column: 5}, Message: "undeclared identifier 'x'"},
			want: "a.fx(3, 5): error X3004: undeclared identifier 'x'",
		},
		{
			name: "parser warning without code",
			diag: Diagnostic{Severity: SeverityWarning, Stage: StageParser, Location: lexer.Location{Source: "a.fx", Line: 1, Column: 1}, Message: "unknown attribute"},
			want: "a.fx(1, 1): warning: unknown attribute",
		},
		{
			name: "preprocessor warning",
			diag: Diagnostic{Severity: SeverityWarning, Stage: StagePreprocessor, Location: lexer.Location{Source: "b.fx", Line: 2, Column: 9}, Message: "unknown pragma ignored"},
			want: "b.fx(2, 9): preprocessor warning: unknown pragma ignored",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestDiagnosticsFiltering(t *testing.T) {
	var dl Diagnostics
	assert.False(t, dl.HasErrors())
	assert.Equal(t, "no errors", dl.Error())

	loc := lexer.Location{Source: "a.fx", Line: 1, Column: 1}
	dl.Warningf(StageParser, loc, 5000, "double literal truncated to float literal")
	assert.False(t, dl.HasErrors())

	dl.Errorf(StageParser, loc, 3000, "syntax error: unexpected '%s'", "}")
	dl.Errorf(StageParser, loc, 3004, "undeclared identifier '%s'", "y")
	require.True(t, dl.HasErrors())
	assert.Len(t, dl.Errors(), 2)
	assert.Len(t, dl.Warnings(), 1)
	assert.Equal(t, "a.fx(1, 1): error X3000: syntax error: unexpected '}' (and 1 more errors)", dl.Error())
	assert.Equal(t,
		"a.fx(1, 1): warning X5000: double literal truncated to float literal\n"+
			"a.fx(1, 1): error X3000: syntax error: unexpected '}'\n"+
			"a.fx(1, 1): error X3004: undeclared identifier 'y'\n",
		dl.String())
}

func TestDiagnosticsFormatAll(t *testing.T) {
	dl := Diagnostics{
		{Severity: SeverityError, Stage: StageParser, Code: 3000, Location: lexer.Location{Source: "a.fx", Line: 2, Column: 3}, Message: "syntax error"},
		{Severity: SeverityError, Stage: StageParser, Code: 3000, Location: lexer.Location{Source: "missing.fx", Line: 1, Column: 1}, Message: "other"},
	}

	got := dl.FormatAll(map[string]string{"a.fx": "a\n  bad x\n"})
	assert.Equal(t,
		"a.fx(2, 3): error X3000: syntax error\n"+
			"   2|   bad x\n"+
			"    |   ^\n"+
			"\n"+
			"missing.fx(1, 1): error X3000: other\n",
		got)
}

func TestDiagnosticsFormatColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	dl := Diagnostics{{Severity: SeverityWarning, Stage: StagePreprocessor, Location: lexer.Location{Source: "a.fx", Line: 1, Column: 1}, Message: "w"}}
	assert.Equal(t, "a.fx(1, 1): preprocessor warning: w\n", dl.FormatColored())
}
