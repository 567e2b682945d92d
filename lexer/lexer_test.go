package lexer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func lexAll(input string, opts Options) []Token {
	l := New(input, opts, Location{Source: "test.fx"})
	var tokens []Token
	for {
		tok := l.Lex()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerPunctuation(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"+ - * /", []TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenEOF}},
		{"( ) { } [ ]", []TokenKind{TokenParenOpen, TokenParenClose, TokenBraceOpen, TokenBraceClose, TokenBracketOpen, TokenBracketClose, TokenEOF}},
		{"== != <= >= && || << >>", []TokenKind{TokenEqualEqual, TokenExclaimEqual, TokenLessEqual, TokenGreaterEqual, TokenAmpersandAmpersand, TokenPipePipe, TokenLessLess, TokenGreaterGreater, TokenEOF}},
		{"<<= >>= += -= *= /= %= &= |= ^=", []TokenKind{TokenLessLessEqual, TokenGreaterGreaterEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual, TokenSlashEqual, TokenPercentEqual, TokenAmpersandEqual, TokenPipeEqual, TokenCaretEqual, TokenEOF}},
		{":: ... -> ++ --", []TokenKind{TokenColonColon, TokenEllipsis, TokenArrow, TokenPlusPlus, TokenMinusMinus, TokenEOF}},
		{"? : ; , . ~ !", []TokenKind{TokenQuestion, TokenColon, TokenSemicolon, TokenComma, TokenDot, TokenTilde, TokenExclaim, TokenEOF}},
		{"`", []TokenKind{TokenUnknown, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, kinds(lexAll(tt.input, ParserOptions)))
		})
	}
}

func TestLexerKeywords(t *testing.T) {
	tokens := lexAll("technique pass float4x4 dword3 sampler2D texture2D TRUE half foo", ParserOptions)
	assert.Equal(t, []TokenKind{
		TokenTechnique, TokenPass, TokenFloat4x4, TokenUint3, TokenSampler, TokenTexture,
		TokenTrueLiteral, TokenReserved, TokenIdentifier, TokenEOF,
	}, kinds(tokens))
	assert.Equal(t, "foo", tokens[8].Literal)

	opts := ParserOptions
	opts.IgnoreKeywords = true
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenIdentifier, TokenEOF}, kinds(lexAll("float while", opts)))
}

func TestLexerNumericLiterals(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
		uint  uint32
		float float32
	}{
		{"42", TokenIntLiteral, 42, 0},
		{"0x1F", TokenIntLiteral, 31, 0},
		{"017", TokenIntLiteral, 15, 0},
		{"0", TokenIntLiteral, 0, 0},
		{"3u", TokenUintLiteral, 3, 0},
		{"1.5f", TokenFloatLiteral, 0, 1.5},
		{"1.5", TokenFloatLiteral, 0, 1.5},
		{".25", TokenFloatLiteral, 0, 0.25},
		{"1e3", TokenFloatLiteral, 0, 1000},
		{"2.5e-1", TokenFloatLiteral, 0, 0.25},
		{"0.5", TokenFloatLiteral, 0, 0.5},
		{"2f", TokenFloatLiteral, 0, 2},
		{"4.0L", TokenDoubleLiteral, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := lexAll(tt.input, ParserOptions)
			assert.Equal(t, 2, len(tokens))
			tok := tokens[0]
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, len(tt.input), tok.Length)
			if tt.kind == TokenIntLiteral || tt.kind == TokenUintLiteral {
				assert.Equal(t, tt.uint, tok.Uint)
			} else {
				assert.Equal(t, tt.float, tok.Float)
			}
		})
	}
}

func TestLexerStringLiterals(t *testing.T) {
	tests := []struct {
		input  string
		escape bool
		want   string
	}{
		{`"hello"`, true, "hello"},
		{`"a\tb"`, true, "a\tb"},
		{`"a\tb"`, false, `a\tb`},
		{`"\x41\101"`, true, "AA"},
		{`"say \"hi\""`, true, `say "hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opts := ParserOptions
			opts.EscapeStringLiterals = tt.escape
			tokens := lexAll(tt.input, opts)
			assert.Equal(t, TokenStringLiteral, tokens[0].Kind)
			assert.Equal(t, tt.want, tokens[0].Literal)
		})
	}

	l := New("\"open\nx", ParserOptions, Location{})
	tok := l.Lex()
	assert.Equal(t, TokenStringLiteral, tok.Kind)
	assert.Equal(t, `"open`, l.Raw(tok))
}

func TestLexerLocations(t *testing.T) {
	tokens := lexAll("a\n  bb c\n\nd", ParserOptions)
	assert.Equal(t, 5, len(tokens))
	assert.Equal(t, Location{Source: "test.fx", Line: 1, Column: 1}, tokens[0].Location)
	assert.Equal(t, Location{Source: "test.fx", Line: 2, Column: 3}, tokens[1].Location)
	assert.Equal(t, Location{Source: "test.fx", Line: 2, Column: 6}, tokens[2].Location)
	assert.Equal(t, Location{Source: "test.fx", Line: 4, Column: 1}, tokens[3].Location)
}

func TestLexerComments(t *testing.T) {
	tokens := lexAll("a // line\n/* block\ncomment */ b", ParserOptions)
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenIdentifier, TokenEOF}, kinds(tokens))
	assert.Equal(t, 3, tokens[1].Location.Line)
}

func TestLexerLineContinuation(t *testing.T) {
	tokens := lexAll("a \\\n b", ParserOptions)
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenIdentifier, TokenEOF}, kinds(tokens))
	assert.Equal(t, 2, tokens[1].Location.Line)
}

func TestLexerLineDirective(t *testing.T) {
	tokens := lexAll("#line 10 \"foo.fx\"\nx", ParserOptions)
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenEOF}, kinds(tokens))
	assert.Equal(t, Location{Source: "foo.fx", Line: 10, Column: 1}, tokens[0].Location)
}

func TestLexerPreprocessorMode(t *testing.T) {
	tokens := lexAll("#define X 1\n#foo\n", Options{})
	assert.Equal(t, []TokenKind{
		TokenHashDefine, TokenSpace, TokenIdentifier, TokenSpace, TokenIntLiteral, TokenEndOfLine,
		TokenHashUnknown, TokenEndOfLine, TokenEOF,
	}, kinds(tokens))
	assert.Equal(t, "foo", tokens[6].Literal)

	// A '#' that does not start a line is plain punctuation.
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenSpace, TokenHash, TokenIdentifier, TokenEOF},
		kinds(lexAll("a #b", Options{})))
}

func TestLexerIgnorePPDirectives(t *testing.T) {
	tokens := lexAll("#pragma once\nx", ParserOptions)
	assert.Equal(t, []TokenKind{TokenIdentifier, TokenEOF}, kinds(tokens))
}

func TestLexerCursor(t *testing.T) {
	l := New("a b c", ParserOptions, Location{})
	l.Lex()
	saved := l.Cursor()
	first := l.Lex()
	l.Lex()
	l.Reset(saved)
	again := l.Lex()
	assert.Equal(t, first, again)
	assert.Equal(t, "b", again.Literal)
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "end of file", TokenEOF.String())
	assert.Equal(t, "<<=", TokenLessLessEqual.String())
	assert.Equal(t, "identifier", TokenIdentifier.String())
	assert.Equal(t, "unknown", TokenUnknown.String())
}
