// Package parser implements the single pass FX parser. It checks types and
// resolves symbols while it reads, and drives an fx.Codegen with fully typed
// declarations, values and structured control flow.
package parser

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// maxErrors bounds the number of errors recorded for one input.
const maxErrors = 1000

// Options configures a Parser.
type Options struct {
	// NoShortCircuit evaluates both operands of &&, || and ?: instead of
	// branching around the one that is not needed.
	NoShortCircuit bool
}

// Parser reads preprocessed FX source. A Parser may be reused for several
// inputs but is not safe for concurrent use.
type Parser struct {
	opts Options
	cg   fx.Codegen

	lex  *lexer.Lexer
	tok  lexer.Token
	next lexer.Token

	backupNext   lexer.Token
	backupCursor lexer.Cursor

	symbols *SymbolTable
	diags   fx.Diagnostics
	errors  int

	upper cases.Caser
	fold  cases.Caser

	returnType      fx.Type
	breakTargets    []fx.ID
	continueTargets []fx.ID
}

// New returns a parser with the given options.
func New(opts Options) *Parser {
	return &Parser{
		opts:  opts,
		upper: cases.Upper(language.Und),
		fold:  cases.Fold(),
	}
}

// Diagnostics returns the errors and warnings of every Parse call so far.
func (p *Parser) Diagnostics() fx.Diagnostics {
	return p.diags
}

// Parse reads source and emits its contents through cg. It returns false if
// any error was reported. The caller collects the result with
// cg.WriteResult.
func (p *Parser) Parse(source string, cg fx.Codegen) bool {
	p.cg = cg
	p.lex = lexer.New(source, lexer.ParserOptions, lexer.Location{})
	p.symbols = NewSymbolTable()
	p.errors = 0
	p.breakTargets = p.breakTargets[:0]
	p.continueTargets = p.continueTargets[:0]

	p.consume()

	success := true
	for !p.peek(lexer.TokenEOF) {
		if !p.parseTop() {
			success = false
		}
	}
	return success && p.errors == 0
}

func (p *Parser) error(loc lexer.Location, code int, format string, args ...any) {
	p.errors++
	if p.errors > maxErrors {
		return
	}
	p.diags.Errorf(fx.StageParser, loc, code, format, args...)
}

func (p *Parser) warning(loc lexer.Location, code int, format string, args ...any) {
	p.diags.Warningf(fx.StageParser, loc, code, format, args...)
}

func (p *Parser) unexpected(tok lexer.Token) string {
	return fmt.Sprintf("syntax error: unexpected '%s'", tok.Kind)
}

// Token management

func (p *Parser) backup() {
	p.backupNext = p.next
	p.backupCursor = p.lex.Cursor()
}

// restore rewinds to the last backup. It may be called more than once for
// the same backup.
func (p *Parser) restore() {
	p.lex.Reset(p.backupCursor)
	p.next = p.backupNext
}

func (p *Parser) consume() {
	p.tok = p.next
	p.next = p.lex.Lex()
}

func (p *Parser) consumeUntil(kind lexer.TokenKind) {
	for !p.accept(kind) && !p.peek(lexer.TokenEOF) {
		p.consume()
	}
}

func (p *Parser) peek(kind lexer.TokenKind) bool {
	return p.next.Kind == kind
}

func (p *Parser) accept(kind lexer.TokenKind) bool {
	if p.peek(kind) {
		p.consume()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) bool {
	if !p.accept(kind) {
		p.error(p.next.Location, 3000, "syntax error: unexpected '%s', expected '%s'", p.next.Kind, kind)
		return false
	}
	return true
}

// currentScope is the scope new declarations go into.
func (p *Parser) currentScope() Scope {
	return p.symbols.Current()
}

// uniqueName prefixes name with its namespace path so that declarations in
// different namespaces do not collide in generated code.
func (p *Parser) uniqueName(prefix byte, name string) string {
	full := []byte(string(prefix) + p.currentScope().Name + name)
	for i, c := range full {
		if c == ':' {
			full[i] = '_'
		}
	}
	return string(full)
}

// acceptSymbol reads a possibly qualified identifier and looks it up. A
// leading "::" restricts the lookup to the global namespace.
func (p *Parser) acceptSymbol() (identifier string, scope Scope, sym Symbol, ok bool) {
	exclusive := p.accept(lexer.TokenColonColon)

	if exclusive {
		if !p.expect(lexer.TokenIdentifier) {
			return "", scope, sym, false
		}
	} else if !p.accept(lexer.TokenIdentifier) {
		p.error(p.next.Location, 3000, "%s", p.unexpected(p.next))
		return "", scope, sym, false
	}

	identifier = p.tok.Literal
	for p.accept(lexer.TokenColonColon) {
		if !p.expect(lexer.TokenIdentifier) {
			return "", scope, sym, false
		}
		identifier += "::" + p.tok.Literal
	}

	scope = globalScope
	if !exclusive {
		scope = p.currentScope()
	}
	return identifier, scope, p.symbols.Find(identifier, scope, exclusive), true
}

// Type parsing

var basicTypes = map[lexer.TokenKind]fx.Type{
	lexer.TokenVoid:     {Base: fx.TypeVoid},
	lexer.TokenString:   {Base: fx.TypeString},
	lexer.TokenTexture:  {Base: fx.TypeTexture},
	lexer.TokenSampler:  {Base: fx.TypeSampler},
	lexer.TokenBool:     fx.Matrix(fx.TypeBool, 1, 1),
	lexer.TokenBool2:    fx.Matrix(fx.TypeBool, 2, 1),
	lexer.TokenBool3:    fx.Matrix(fx.TypeBool, 3, 1),
	lexer.TokenBool4:    fx.Matrix(fx.TypeBool, 4, 1),
	lexer.TokenBool2x2:  fx.Matrix(fx.TypeBool, 2, 2),
	lexer.TokenBool3x3:  fx.Matrix(fx.TypeBool, 3, 3),
	lexer.TokenBool4x4:  fx.Matrix(fx.TypeBool, 4, 4),
	lexer.TokenInt:      fx.Matrix(fx.TypeInt, 1, 1),
	lexer.TokenInt2:     fx.Matrix(fx.TypeInt, 2, 1),
	lexer.TokenInt3:     fx.Matrix(fx.TypeInt, 3, 1),
	lexer.TokenInt4:     fx.Matrix(fx.TypeInt, 4, 1),
	lexer.TokenInt2x2:   fx.Matrix(fx.TypeInt, 2, 2),
	lexer.TokenInt3x3:   fx.Matrix(fx.TypeInt, 3, 3),
	lexer.TokenInt4x4:   fx.Matrix(fx.TypeInt, 4, 4),
	lexer.TokenUint:     fx.Matrix(fx.TypeUint, 1, 1),
	lexer.TokenUint2:    fx.Matrix(fx.TypeUint, 2, 1),
	lexer.TokenUint3:    fx.Matrix(fx.TypeUint, 3, 1),
	lexer.TokenUint4:    fx.Matrix(fx.TypeUint, 4, 1),
	lexer.TokenUint2x2:  fx.Matrix(fx.TypeUint, 2, 2),
	lexer.TokenUint3x3:  fx.Matrix(fx.TypeUint, 3, 3),
	lexer.TokenUint4x4:  fx.Matrix(fx.TypeUint, 4, 4),
	lexer.TokenFloat:    fx.Matrix(fx.TypeFloat, 1, 1),
	lexer.TokenFloat2:   fx.Matrix(fx.TypeFloat, 2, 1),
	lexer.TokenFloat3:   fx.Matrix(fx.TypeFloat, 3, 1),
	lexer.TokenFloat4:   fx.Matrix(fx.TypeFloat, 4, 1),
	lexer.TokenFloat2x2: fx.Matrix(fx.TypeFloat, 2, 2),
	lexer.TokenFloat3x3: fx.Matrix(fx.TypeFloat, 3, 3),
	lexer.TokenFloat4x4: fx.Matrix(fx.TypeFloat, 4, 4),
}

// acceptTypeClass reads a type name into t, keeping its qualifiers.
func (p *Parser) acceptTypeClass(t *fx.Type) bool {
	t.Rows, t.Cols = 0, 0

	switch {
	case p.peek(lexer.TokenIdentifier) || p.peek(lexer.TokenColonColon):
		// Only a structure name is a type; anything else is rolled back.
		p.backup()
		if _, _, sym, ok := p.acceptSymbol(); ok && sym.Kind == SymbolStructure {
			t.Base = fx.TypeStruct
			t.Definition = sym.ID
			return true
		}
		p.restore()
		return false

	case p.accept(lexer.TokenVector):
		t.Base, t.Rows, t.Cols = fx.TypeFloat, 4, 1
		if !p.accept(lexer.TokenLess) {
			return true
		}
		if !p.acceptTypeClass(t) {
			p.error(p.next.Location, 3000, "syntax error: unexpected '%s', expected vector element type", p.next.Kind)
			return false
		}
		if !t.IsScalar() {
			p.error(p.tok.Location, 3122, "vector element type must be a scalar type")
			return false
		}
		rows, ok := p.expectDimension(3052, "vector dimension must be between 1 and 4")
		if !ok {
			return false
		}
		t.Rows = rows
		return p.expect(lexer.TokenGreater)

	case p.accept(lexer.TokenMatrix):
		t.Base, t.Rows, t.Cols = fx.TypeFloat, 4, 4
		if !p.accept(lexer.TokenLess) {
			return true
		}
		if !p.acceptTypeClass(t) {
			p.error(p.next.Location, 3000, "syntax error: unexpected '%s', expected matrix element type", p.next.Kind)
			return false
		}
		if !t.IsScalar() {
			p.error(p.tok.Location, 3123, "matrix element type must be a scalar type")
			return false
		}
		rows, ok := p.expectDimension(3053, "matrix dimensions must be between 1 and 4")
		if !ok {
			return false
		}
		cols, ok := p.expectDimension(3053, "matrix dimensions must be between 1 and 4")
		if !ok {
			return false
		}
		t.Rows, t.Cols = rows, cols
		return p.expect(lexer.TokenGreater)
	}

	basic, ok := basicTypes[p.next.Kind]
	if !ok {
		return false
	}
	t.Base, t.Rows, t.Cols = basic.Base, basic.Rows, basic.Cols
	p.consume()
	return true
}

// expectDimension reads ", N" of a vector or matrix template.
func (p *Parser) expectDimension(code int, message string) (uint32, bool) {
	if !p.expect(lexer.TokenComma) || !p.expect(lexer.TokenIntLiteral) {
		return 0, false
	}
	if p.tok.Int < 1 || p.tok.Int > 4 {
		p.error(p.tok.Location, code, "%s", message)
		return 0, false
	}
	return uint32(p.tok.Int), true
}

var qualifierTokens = []struct {
	kind lexer.TokenKind
	q    fx.Qualifier
}{
	{lexer.TokenExtern, fx.QualifierExtern},
	{lexer.TokenStatic, fx.QualifierStatic},
	{lexer.TokenUniform, fx.QualifierUniform},
	{lexer.TokenVolatile, fx.QualifierVolatile},
	{lexer.TokenPrecise, fx.QualifierPrecise},
	{lexer.TokenIn, fx.QualifierIn},
	{lexer.TokenOut, fx.QualifierOut},
	{lexer.TokenInout, fx.QualifierInout},
	{lexer.TokenConst, fx.QualifierConst},
	{lexer.TokenLinear, fx.QualifierLinear},
	{lexer.TokenNoperspective, fx.QualifierNoperspective},
	{lexer.TokenCentroid, fx.QualifierCentroid},
	{lexer.TokenNointerpolation, fx.QualifierNointerpolation},
}

// acceptTypeQualifiers adds any number of qualifier keywords to t.
func (p *Parser) acceptTypeQualifiers(t *fx.Type) bool {
	found := false
	for {
		var q fx.Qualifier
		for _, qt := range qualifierTokens {
			if p.accept(qt.kind) {
				q |= qt.q
			}
		}
		if q == 0 {
			return found
		}
		if t.Qualifiers&q == q {
			p.warning(p.tok.Location, 3048, "duplicate usages specified")
		}
		t.Qualifiers |= q
		found = true
	}
}

func (p *Parser) parseType(t *fx.Type) bool {
	t.Qualifiers = 0
	p.acceptTypeQualifiers(t)

	if !p.acceptTypeClass(t) {
		return false
	}

	if t.IsIntegral() && (t.Has(fx.QualifierCentroid) || t.Has(fx.QualifierNoperspective)) {
		p.error(p.tok.Location, 4576, "signature specifies invalid interpolation mode for integer component type")
		return false
	}
	if t.Has(fx.QualifierCentroid) && !t.Has(fx.QualifierNoperspective) {
		t.Qualifiers |= fx.QualifierLinear
	}
	return true
}

// parseArraySize reads an optional [N] or [] suffix. An empty suffix sets
// the length to -1.
func (p *Parser) parseArraySize(t *fx.Type) bool {
	t.ArrayLength = 0

	if p.accept(lexer.TokenBracketOpen) {
		if p.accept(lexer.TokenBracketClose) {
			t.ArrayLength = -1
		} else {
			var exp fx.Expression
			if !p.parseExpression(&exp) || !p.expect(lexer.TokenBracketClose) {
				return false
			}
			if !exp.IsConstant || !exp.Type.IsScalar() || !exp.Type.IsIntegral() {
				p.error(exp.Location, 3058, "array dimensions must be literal scalar expressions")
				return false
			}
			if n := exp.Constant.Uint(0); n < 1 || n > 65536 {
				p.error(exp.Location, 3059, "array dimension must be between 1 and 65536")
				return false
			}
			t.ArrayLength = int(exp.Constant.Uint(0))
		}
	}

	if p.peek(lexer.TokenBracketOpen) {
		p.error(p.next.Location, 3119, "arrays cannot be multi-dimensional")
		return false
	}
	return true
}

// parseAnnotations reads an optional <name = value; ...> block.
func (p *Parser) parseAnnotations(annotations *[]fx.Annotation) bool {
	if !p.accept(lexer.TokenLess) {
		return true
	}

	success := true
	for !p.peek(lexer.TokenGreater) {
		var prefix fx.Type
		if p.acceptTypeClass(&prefix) {
			p.warning(p.tok.Location, 4717, "type prefixes for annotations are deprecated and ignored")
		}

		if !p.expect(lexer.TokenIdentifier) {
			p.consumeUntil(lexer.TokenGreater)
			return false
		}
		name := p.tok.Literal

		var exp fx.Expression
		if !p.expect(lexer.TokenEqual) || !p.parseExpressionMultary(&exp, 0) || !p.expect(lexer.TokenSemicolon) {
			p.consumeUntil(lexer.TokenGreater)
			return false
		}
		if exp.IsConstant {
			*annotations = append(*annotations, fx.Annotation{Type: exp.Type, Name: name, Value: exp.Constant})
		} else {
			success = false
			p.error(exp.Location, 3011, "value must be a literal expression")
		}
	}

	return p.expect(lexer.TokenGreater) && success
}

// parseTop reads one top level declaration.
func (p *Parser) parseTop() bool {
	switch {
	case p.accept(lexer.TokenNamespace):
		if !p.expect(lexer.TokenIdentifier) {
			return false
		}
		name := p.tok.Literal
		if !p.expect(lexer.TokenBraceOpen) {
			return false
		}

		p.symbols.EnterNamespace(name)
		success := true
		for !p.peek(lexer.TokenBraceClose) && !p.peek(lexer.TokenEOF) && success {
			success = p.parseTop()
		}
		p.symbols.LeaveNamespace()

		return p.expect(lexer.TokenBraceClose) && success

	case p.accept(lexer.TokenStruct):
		return p.parseStruct() && p.expect(lexer.TokenSemicolon)

	case p.accept(lexer.TokenTechnique):
		return p.parseTechnique()
	}

	var t fx.Type
	if !p.parseType(&t) {
		if p.accept(lexer.TokenSemicolon) {
			return true
		}
		p.consume()
		p.error(p.tok.Location, 3000, "%s", p.unexpected(p.tok))
		return false
	}

	if !p.expect(lexer.TokenIdentifier) {
		return false
	}

	if p.peek(lexer.TokenParenOpen) {
		name := p.tok.Literal
		if !p.parseFunction(t, name) {
			// Later references resolve to this placeholder instead of
			// reporting the name as undeclared.
			p.symbols.Insert(name, Symbol{Kind: SymbolFunction, ID: fx.InvalidID, Type: fx.Type{Base: fx.TypeFunction}}, true)
			return false
		}
		return true
	}

	for count := 0; count == 0 || !p.peek(lexer.TokenSemicolon); count++ {
		if count > 0 && !(p.expect(lexer.TokenComma) && p.expect(lexer.TokenIdentifier)) {
			return false
		}
		name := p.tok.Literal
		if !p.parseVariable(t, name, true) {
			p.symbols.Insert(name, Symbol{Kind: SymbolVariable, ID: fx.InvalidID, Type: t}, true)
			p.consumeUntil(lexer.TokenSemicolon)
			return false
		}
	}
	return p.expect(lexer.TokenSemicolon)
}
