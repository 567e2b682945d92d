package preprocessor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (*Preprocessor, bool) {
	t.Helper()
	p := New()
	ok := p.AppendString(source, "test.fx")
	return p, ok
}

func errorMessages(p *Preprocessor) []string {
	var out []string
	for _, d := range p.Diagnostics().Errors() {
		out = append(out, d.Message)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlainText(t *testing.T) {
	p, ok := run(t, "int a;\nfloat b;")
	require.True(t, ok)
	assert.Equal(t, "#line 1 \"test.fx\"\nint a;\nfloat b;\n", p.Output())
}

func TestConditionalSelectsElse(t *testing.T) {
	p, ok := run(t, "#if 1 == 2\nA\n#else\nB\n#endif\n")
	require.True(t, ok)
	assert.Contains(t, p.Output(), "\nB\n")
	assert.NotContains(t, p.Output(), "A")
}

func TestConditionalExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"1", true},
		{"0", false},
		{"1 + 2 * 3 == 7", true},
		{"(1 + 2) * 3 == 9", true},
		{"-1 < 0", true},
		{"2 - -1 == 3", true},
		{"1 - 1", false},
		{"1 << 4 == 16", true},
		{"5 % 3 == 2", true},
		{"!0", true},
		{"~0 == -1", true},
		{"(1 | 2) == 3", true},
		{"(6 & 3) == 2", true},
		{"(6 ^ 3) == 5", true},
		{"3 > 2 && 2 > 1", true},
		{"0 || 0", false},
		{"1 != 1 == 0", true},
		{"defined(FOO)", true},
		{"defined FOO && FOO == 1", true},
		{"defined(BAR)", false},
		{"!defined(BAR) && 1", true},
		{"UNDEFINED_NAME", false},
		{"TWICE(3) == 6", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p := New()
			require.True(t, p.AddMacroDefinition("FOO", "1"))
			require.True(t, p.DefineMacro("TWICE", Macro{
				FunctionLike: true,
				Parameters:   []string{"x"},
				Replacement: []MacroToken{
					{Kind: MacroText, Text: "("},
					{Kind: MacroArgument, Index: 0},
					{Kind: MacroText, Text: "*2)"},
				},
			}))
			ok := p.AppendString("#if "+tt.expr+"\nyes\n#else\nno\n#endif\n", "test.fx")
			require.True(t, ok, errorMessages(p))
			if tt.want {
				assert.Contains(t, p.Output(), "yes")
				assert.NotContains(t, p.Output(), "no")
			} else {
				assert.Contains(t, p.Output(), "no")
				assert.NotContains(t, p.Output(), "yes")
			}
		})
	}
}

func TestConditionalNesting(t *testing.T) {
	src := "#ifdef A\n#if 1\nalpha\n#endif\n#elif 1\nbeta\n#else\ngamma\n#endif\n#ifndef A\ndelta\n#endif\n"
	p, ok := run(t, src)
	require.True(t, ok)
	out := p.Output()
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "delta")
	assert.NotContains(t, out, "alpha")
	assert.NotContains(t, out, "gamma")
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"#if 1 / 0\n#endif\n", "division by zero in preprocessor expression"},
		{"#if 1 % 0\n#endif\n", "division by zero in preprocessor expression"},
		{"#if (1\n#endif\n", "unmatched '('"},
		{"#if 1)\n#endif\n", "unmatched ')'"},
		{"#if 1 +\n#endif\n", "invalid expression"},
		{"#if\n#endif\n", "invalid expression"},
		{"#if 1.5\n#endif\n", "invalid expression"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p, ok := run(t, tt.src)
			assert.False(t, ok)
			assert.Contains(t, errorMessages(p), tt.want)
		})
	}
}

func TestFunctionLikeMacro(t *testing.T) {
	p, ok := run(t, "#define SQ(x) ((x)*(x))\nint y = SQ(3);\n")
	require.True(t, ok)
	assert.Contains(t, p.Output(), "int y = ((3)*(3));")
}

func TestMacroExpansion(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"object", "#define N 4\nint a[N];\n", "int a[4];"},
		{"nested", "#define A B\n#define B 7\nint x = A;\n", "int x = 7;"},
		{"self reference", "#define X X + 1\nint x = X;\n", "int x = X + 1;"},
		{"stringize", "#define STR(x) #x\nSTR(hello world)\n", "\"hello world\""},
		{"stringize quotes", "#define STR(x) #x\nSTR(\"a\")\n", `"\"a\""`},
		{"concat", "#define CAT(a, b) a ## b\nCAT(foo, bar)\n", "foobar"},
		{"nested arguments", "#define ADD(a, b) (a + b)\nADD(ADD(1, 2), (3, 4))\n", "((1 + 2) + (3, 4))"},
		{"argument expansion", "#define ONE 1\n#define ID(x) x\nx = ID(ONE);\n", "x = 1;"},
		{"space before paren", "#define F (x)\nF\n", "(x)"},
		{"not invoked", "#define F(x) x\nint F;\n", "int F;"},
		{"continuation", "#define LONG 1 + \\\n2\nLONG\n", "1 + 2"},
		{"undef", "#define A 1\n#undef A\nint A;\n", "int A;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := run(t, tt.src)
			require.True(t, ok, errorMessages(p))
			assert.Contains(t, p.Output(), tt.want)
		})
	}
}

func TestMissingArguments(t *testing.T) {
	p, ok := run(t, "#define ADD(a, b) a + b\nADD(1)\n")
	assert.True(t, ok)
	require.Len(t, p.Diagnostics().Warnings(), 1)
	assert.Equal(t, "not enough arguments for function-like macro invocation 'ADD'", p.Diagnostics().Warnings()[0].Message)
}

func TestUnterminatedInvocation(t *testing.T) {
	p, ok := run(t, "#define F(x) x\nF(1, 2")
	assert.False(t, ok)
	assert.Contains(t, errorMessages(p), "unexpected end of input in invocation of macro 'F'")
}

func TestMacroRecursionLimit(t *testing.T) {
	src := "#define F(x) x\n" + strings.Repeat("F(", 300) + "1" + strings.Repeat(")", 300) + "\n"
	p, ok := run(t, src)
	assert.False(t, ok)
	assert.Contains(t, errorMessages(p), "macro recursion too high")
}

func TestMacroRecursionReportedOnce(t *testing.T) {
	for _, depth := range []int{300, 2000} {
		src := "#define F(x) x\nint a = " + strings.Repeat("F(", depth) + "1" + strings.Repeat(")", depth) + ";\nint b = F(2);\n"
		p, ok := run(t, src)
		assert.False(t, ok)

		errs := p.Diagnostics().Errors()
		require.Len(t, errs, 1, "depth %d", depth)
		assert.Equal(t, "macro recursion too high", errs[0].Message)
		assert.Equal(t, 2, errs[0].Location.Line)
		assert.Equal(t, 9, errs[0].Location.Column)
		assert.Contains(t, p.Output(), "int b = 2;")
	}
}

func TestBuiltinMacros(t *testing.T) {
	p, ok := run(t, "int a = __LINE__;\n\nint b = __LINE__;\nstring f = __FILE__;\nstring s = __FILE_STEM__;\n")
	require.True(t, ok)
	out := p.Output()
	assert.Contains(t, out, "int a = 1;")
	assert.Contains(t, out, "int b = 3;")
	assert.Contains(t, out, `string f = "test.fx";`)
	assert.Contains(t, out, `string s = "test";`)
}

func TestPredefinedMacros(t *testing.T) {
	p := New()
	require.True(t, p.AddMacroDefinition("WIDTH", "800"))
	assert.False(t, p.AddMacroDefinition("WIDTH", "600"))
	require.True(t, p.AppendString("int w = WIDTH;", ""))
	assert.Contains(t, p.Output(), "int w = 800;")
	assert.Contains(t, p.Output(), `#line 1 "unknown"`)
}

func TestDirectiveErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"#if 1\nA\n", "unterminated #if"},
		{"#if 0\n#else\n#else\n#endif\n", "#else is not allowed after #else"},
		{"#if 0\n#else\n#elif 1\n#endif\n", "#elif is not allowed after #else"},
		{"#endif\n", "missing #if for #endif"},
		{"#else\n", "missing #if for #else"},
		{"#foo\n", "unrecognized preprocessing directive 'foo'"},
		{"#error \"boom\"\n", "boom"},
		{"#define A 1\n#define A 2\n", "redefinition of 'A'"},
		{"#define V(...) x\n", "variadic macros are not supported"},
		{"#define C(a) a ##\n", "## cannot appear at end of macro text"},
		{"#define S(a) #b\n", "# must be followed by parameter name"},
		{"string s = \"open;\n", "unterminated string literal"},
		{"#include \"missing.fxh\"\n", "could not open included file 'missing.fxh'"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p, ok := run(t, tt.src)
			assert.False(t, ok)
			assert.Contains(t, errorMessages(p), tt.want)
		})
	}
}

func TestWarnings(t *testing.T) {
	p, ok := run(t, "#warning \"careful\"\n#pragma foo\n#define defined 1\n")
	require.True(t, ok)
	var msgs []string
	for _, d := range p.Diagnostics().Warnings() {
		msgs = append(msgs, d.Message)
	}
	assert.Equal(t, []string{"careful", "unknown pragma ignored", "macro name 'defined' is reserved"}, msgs)
}

func TestSkippedDirectivesAreIgnored(t *testing.T) {
	p, ok := run(t, "#if 0\n#error \"never\"\n#foo\n#endif\nok\n")
	require.True(t, ok)
	assert.Contains(t, p.Output(), "ok")
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	inc := writeFile(t, dir, "common.fxh", "int inc;\n")
	main := writeFile(t, dir, "main.fx", "#include \"common.fxh\"\nint main;\n")

	p := New()
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	require.True(t, ok, errorMessages(p))

	out := p.Output()
	assert.Contains(t, out, "#line 1 \""+inc+"\"\nint inc;\n")
	assert.Contains(t, out, "#line 1 \""+main+"\"")
	assert.Contains(t, out, "int main;")
	assert.Equal(t, []string{inc}, p.IncludedFiles())
}

func TestIncludePathAndMacroName(t *testing.T) {
	dir := t.TempDir()
	shared := t.TempDir()
	writeFile(t, shared, "shared.fxh", "int shared;\n")
	main := writeFile(t, dir, "main.fx", "#define HEADER \"shared.fxh\"\n#include HEADER\n")

	p := New()
	p.AddIncludePath(shared)
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	require.True(t, ok, errorMessages(p))
	assert.Contains(t, p.Output(), "int shared;")
}

func TestPragmaOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "once.fxh", "#pragma once\nint once;\n")
	main := writeFile(t, dir, "main.fx", "#include \"once.fxh\"\n#include \"once.fxh\"\n")

	p := New()
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	require.True(t, ok, errorMessages(p))
	assert.Equal(t, 1, strings.Count(p.Output(), "int once;"))
}

func TestRecursiveInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "self.fxh", "#include \"self.fxh\"\n")
	main := writeFile(t, dir, "main.fx", "#include \"self.fxh\"\n")

	p := New()
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, errorMessages(p), "recursive #include")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "present.fxh", "\n")
	main := writeFile(t, dir, "main.fx", "#if exists \"present.fxh\" && !exists(\"absent.fxh\")\nfound\n#endif\n")

	p := New()
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	require.True(t, ok, errorMessages(p))
	assert.Contains(t, p.Output(), "found")
}

func TestAppendFileMissing(t *testing.T) {
	_, err := New().AppendFile(filepath.Join(t.TempDir(), "nope.fx"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "preprocessor: "))
}

func TestBOMIsStripped(t *testing.T) {
	main := writeFile(t, t.TempDir(), "bom.fx", "\xef\xbb\xbfint a;\n")
	p := New()
	ok, err := p.AppendFile(main)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, p.Output(), "\nint a;\n")
}

func TestUsedMacrosAndPragmas(t *testing.T) {
	p := New()
	require.True(t, p.AddMacroDefinition("FOO", "1"))
	src := "#define F(x) x\n#ifdef FOO\n#endif\n#ifndef BAR\n#endif\n#ifdef F\n#endif\n#pragma reshade showfps on\n"
	require.True(t, p.AppendString(src, "test.fx"))

	assert.Equal(t, []Definition{{Name: "FOO", Value: "1"}}, p.UsedMacroDefinitions())
	assert.Equal(t, []Pragma{{Name: "showfps", Value: "on"}}, p.UsedPragmas())
}

func TestLineDirectivesTrackSkippedLines(t *testing.T) {
	p, ok := run(t, "a\n#if 0\nb\n#endif\nc\n")
	require.True(t, ok)
	assert.Equal(t, "#line 1 \"test.fx\"\na\n#line 5\nc\n", p.Output())
}

func TestMacroText(t *testing.T) {
	m := Macro{
		FunctionLike: true,
		Parameters:   []string{"a", "b"},
		Replacement: []MacroToken{
			{Kind: MacroArgument, Index: 0},
			{Kind: MacroConcat},
			{Kind: MacroStringize, Index: 1},
		},
	}
	assert.Equal(t, "a###b", m.Text())
}
