// Package preprocessor implements the C-style macro preprocessor that runs
// before the FX parser.
//
// Input is read through a stack of lexers: the bottom level is the file
// being preprocessed, included files and macro expansions are pushed on top
// and popped again once they run out of tokens. The output is plain text with
// #line directives so the parser reports locations in the original files.
package preprocessor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// maxRecursion bounds the number of nested macro expansions per token.
const maxRecursion = 256

var lexOptions = lexer.Options{IgnoreKeywords: true}

type input struct {
	name   string
	lex    *lexer.Lexer
	next   lexer.Token
	hidden map[string]bool

	// Argument levels report their end of file once as a token, so the
	// argument expansion loop knows where the argument stops.
	argument  bool
	exhausted bool
}

type ifLevel struct {
	value      bool
	skipping   bool
	directive  lexer.Token
	inputIndex int
}

// Pragma is a "#pragma reshade <name> <value>" directive.
type Pragma struct {
	Name  string
	Value string
}

// Definition is a macro name with its replacement text.
type Definition struct {
	Name  string
	Value string
}

// Preprocessor expands macros and directives of one or more source inputs
// into a single output text. It is not safe for concurrent use.
type Preprocessor struct {
	output  strings.Builder
	diags   fx.Diagnostics
	success bool

	stack        []*input
	nextIndex    int
	currentIndex int
	tok          lexer.Token
	raw          string
	outputLoc    lexer.Location

	recursion    int
	overflow     bool
	invocation   lexer.Location
	usedMacros   map[string]bool
	macros       map[string]*Macro
	ifStack      []ifLevel
	pragmas      []Pragma
	includePaths []string
	fileCache    map[string]string
}

// New returns an empty preprocessor.
func New() *Preprocessor {
	return &Preprocessor{
		usedMacros: make(map[string]bool),
		macros:     make(map[string]*Macro),
		fileCache:  make(map[string]string),
	}
}

// AddIncludePath appends a directory searched by #include after the
// directory of the including file.
func (p *Preprocessor) AddIncludePath(path string) {
	p.includePaths = append(p.includePaths, path)
}

// AddMacroDefinition predefines an object-like macro. It returns false if
// a macro with that name already exists.
func (p *Preprocessor) AddMacroDefinition(name, value string) bool {
	return p.DefineMacro(name, Macro{
		Replacement: []MacroToken{{Kind: MacroText, Text: value}},
		Predefined:  true,
	})
}

// DefineMacro adds a macro definition. It returns false if a macro with that
// name already exists.
func (p *Preprocessor) DefineMacro(name string, m Macro) bool {
	if _, ok := p.macros[name]; ok {
		return false
	}
	p.macros[name] = &m
	return true
}

// AppendFile preprocesses the file at path and appends the result to the
// output. The returned bool is false if the file produced errors.
func (p *Preprocessor) AppendFile(path string) (bool, error) {
	data, err := readFile(path)
	if err != nil {
		return false, fmt.Errorf("preprocessor: %w", err)
	}
	p.success = true
	p.push(data, path, false)
	p.parse()
	return p.success, nil
}

// AppendString preprocesses source as if it were read from a file called
// name and appends the result to the output.
func (p *Preprocessor) AppendString(source, name string) bool {
	if name == "" {
		name = "unknown"
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	p.success = true
	p.push(source, name, false)
	p.parse()
	return p.success
}

// Output returns the preprocessed text of everything appended so far.
func (p *Preprocessor) Output() string {
	return p.output.String()
}

// Diagnostics returns every error and warning reported so far.
func (p *Preprocessor) Diagnostics() fx.Diagnostics {
	return p.diags
}

// IncludedFiles returns the paths of all files pulled in with #include.
func (p *Preprocessor) IncludedFiles() []string {
	files := make([]string, 0, len(p.fileCache))
	for path := range p.fileCache {
		files = append(files, path)
	}
	slices.Sort(files)
	return files
}

// UsedMacroDefinitions returns the object-like macros that were tested by
// #ifdef or #ifndef, sorted by name.
func (p *Preprocessor) UsedMacroDefinitions() []Definition {
	var defs []Definition
	for name := range p.usedMacros {
		if m, ok := p.macros[name]; ok && !m.FunctionLike {
			defs = append(defs, Definition{Name: name, Value: m.Text()})
		}
	}
	slices.SortFunc(defs, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs
}

// UsedPragmas returns the "#pragma reshade" directives in source order.
func (p *Preprocessor) UsedPragmas() []Pragma {
	return p.pragmas
}

func (p *Preprocessor) error(loc lexer.Location, msg string) {
	p.diags.Errorf(fx.StagePreprocessor, loc, 0, "%s", msg)
	p.success = false
}

func (p *Preprocessor) warning(loc lexer.Location, msg string) {
	p.diags.Warningf(fx.StagePreprocessor, loc, 0, "%s", msg)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return string(data) + "\n", nil
}

func (p *Preprocessor) push(text, name string, argument bool) {
	start := p.tok.Location
	if name != "" {
		start = lexer.Location{Source: name, Line: 1, Column: 1}
	}

	level := &input{
		name:     name,
		lex:      lexer.New(text, lexOptions, start),
		next:     lexer.Token{Kind: lexer.TokenUnknown, Location: start},
		hidden:   make(map[string]bool),
		argument: argument,
	}
	if n := len(p.stack); n > 0 {
		for macro := range p.stack[n-1].hidden {
			level.hidden[macro] = true
		}
	}

	p.stack = append(p.stack, level)
	p.nextIndex = len(p.stack) - 1
	p.consume()
}

func (p *Preprocessor) peek(kind lexer.TokenKind) bool {
	if len(p.stack) == 0 {
		return kind == lexer.TokenEOF
	}
	return p.stack[p.nextIndex].next.Kind == kind
}

// consume advances to the next token. It returns false once the last token
// of the bottom input level has been consumed.
func (p *Preprocessor) consume() bool {
	p.currentIndex = p.nextIndex
	if len(p.stack) == 0 {
		return false
	}
	p.stack = p.stack[:p.currentIndex+1]

	in := p.stack[p.currentIndex]
	if in.name != "" && in.name != p.outputLoc.Source {
		line := in.next.Location.Line
		fmt.Fprintf(&p.output, "#line %d \"%s\"\n", line, in.name)
		p.outputLoc = lexer.Location{Source: in.name, Line: line - 1}
	}

	p.tok = in.next
	p.raw = in.lex.Raw(p.tok)
	in.next = in.lex.Lex()

	if p.tok.Kind == lexer.TokenStringLiteral && (len(p.raw) < 2 || p.raw[len(p.raw)-1] != '"') {
		p.error(p.tok.Location, "unterminated string literal")
	}

	return p.popFinished()
}

// popFinished moves the lookahead down the input stack past levels that have
// no tokens left. The bottom level is kept until its last token is consumed.
func (p *Preprocessor) popFinished() bool {
	for p.peek(lexer.TokenEOF) {
		for n := len(p.ifStack); n > 0 && p.ifStack[n-1].inputIndex >= p.nextIndex; n = len(p.ifStack) {
			p.error(p.ifStack[n-1].directive.Location, "unterminated #if")
			p.ifStack = p.ifStack[:n-1]
		}

		level := p.stack[p.nextIndex]
		if level.argument && !level.exhausted {
			level.exhausted = true
			return true
		}
		if p.nextIndex == 0 {
			p.stack = p.stack[:0]
			return false
		}
		p.nextIndex--
	}
	return true
}

// skipLine drops the rest of the line without reporting it.
func (p *Preprocessor) skipLine() {
	for !p.peek(lexer.TokenEndOfLine) && !p.peek(lexer.TokenEOF) {
		p.consume()
	}
}

func (p *Preprocessor) consumeUntil(kind lexer.TokenKind) {
	for !p.accept(kind) && !p.peek(lexer.TokenEOF) {
		p.consume()
	}
}

func (p *Preprocessor) accept(kind lexer.TokenKind) bool {
	for p.peek(lexer.TokenSpace) {
		p.consume()
	}
	if p.peek(kind) {
		p.consume()
		return true
	}
	return false
}

func (p *Preprocessor) expect(kind lexer.TokenKind) bool {
	if p.accept(kind) {
		return true
	}

	var actual lexer.Token
	var raw string
	if len(p.stack) > 0 {
		in := p.stack[p.nextIndex]
		actual = in.next
		raw = in.lex.Raw(actual)
	}
	actual.Location.Source = p.outputLoc.Source
	p.error(actual.Location, "syntax error: unexpected token '"+raw+"'")
	return false
}

// endDirective requires the end of the line after a directive.
func (p *Preprocessor) endDirective() {
	if !p.expect(lexer.TokenEndOfLine) {
		p.consumeUntil(lexer.TokenEndOfLine)
	}
}

func (p *Preprocessor) skipping() bool {
	return len(p.ifStack) > 0 && p.ifStack[len(p.ifStack)-1].skipping
}

func (p *Preprocessor) parse() {
	var line strings.Builder

	for p.consume() {
		p.recursion = 0

		switch p.tok.Kind {
		case lexer.TokenHashIf:
			p.parseIf()
			p.endDirective()
			continue
		case lexer.TokenHashIfdef:
			p.parseIfdef(true)
			p.endDirective()
			continue
		case lexer.TokenHashIfndef:
			p.parseIfdef(false)
			p.endDirective()
			continue
		case lexer.TokenHashElse:
			p.parseElse()
			p.endDirective()
			continue
		case lexer.TokenHashElif:
			p.parseElif()
			p.endDirective()
			continue
		case lexer.TokenHashEndif:
			p.parseEndif()
			p.endDirective()
			continue
		}

		if p.skipping() {
			continue
		}

		switch p.tok.Kind {
		case lexer.TokenHashDefine:
			p.parseDefine()
			p.endDirective()
			continue
		case lexer.TokenHashUndef:
			p.parseUndef()
			p.endDirective()
			continue
		case lexer.TokenHashError:
			p.parseMessage(true)
			p.endDirective()
			continue
		case lexer.TokenHashWarning:
			p.parseMessage(false)
			p.endDirective()
			continue
		case lexer.TokenHashPragma:
			p.parsePragma()
			p.endDirective()
			continue
		case lexer.TokenHashInclude:
			p.parseInclude()
			continue
		case lexer.TokenHashUnknown:
			p.error(p.tok.Location, "unrecognized preprocessing directive '"+p.tok.Literal+"'")
			p.consumeUntil(lexer.TokenEndOfLine)
			continue
		case lexer.TokenEndOfLine:
			p.flushLine(&line)
			continue
		case lexer.TokenIdentifier:
			if p.expandIdentifier() {
				continue
			}
		}

		line.WriteString(p.raw)
	}

	// The last token has been consumed without being processed.
	p.flushLine(&line)
}

// flushLine writes a finished output line, preceded by a #line directive if
// lines were skipped since the previous one.
func (p *Preprocessor) flushLine(line *strings.Builder) {
	if line.Len() == 0 {
		return
	}
	p.outputLoc.Line++
	if p.outputLoc.Line != p.tok.Location.Line {
		fmt.Fprintf(&p.output, "#line %d\n", p.tok.Location.Line)
		p.outputLoc.Line = p.tok.Location.Line
	}
	p.output.WriteString(line.String())
	p.output.WriteByte('\n')
	line.Reset()
}

// resolveInclude looks for name next to the current file, then in every
// include path. The first candidate is returned if none exists.
func (p *Preprocessor) resolveInclude(name string) string {
	candidate := filepath.Join(filepath.Dir(p.outputLoc.Source), name)
	if fileExists(candidate) {
		return candidate
	}
	for _, dir := range p.includePaths {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return candidate
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
