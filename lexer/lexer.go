package lexer

import "strconv"

// Options controls which lexical elements the lexer reports.
type Options struct {
	// IgnoreWhitespace drops space and end-of-line tokens.
	IgnoreWhitespace bool
	// IgnorePPDirectives skips whole preprocessor directive lines.
	// #line directives are always applied to the location.
	IgnorePPDirectives bool
	// IgnoreKeywords reports every keyword as a plain identifier.
	IgnoreKeywords bool
	// EscapeStringLiterals decodes backslash escapes in string literals.
	EscapeStringLiterals bool
}

// ParserOptions is the configuration the parser lexes preprocessed text with.
var ParserOptions = Options{
	IgnoreWhitespace:     true,
	IgnorePPDirectives:   true,
	EscapeStringLiterals: true,
}

// Cursor is a snapshot of the scan position.
type Cursor struct {
	pos int
	loc Location
}

// Lexer tokenizes FX source code one token at a time.
type Lexer struct {
	input string
	pos   int
	loc   Location
	opts  Options
}

// New creates a lexer over input starting at the given location.
// A zero start line is treated as line 1.
func New(input string, opts Options, start Location) *Lexer {
	if start.Line == 0 {
		start.Line = 1
	}
	if start.Column == 0 {
		start.Column = 1
	}
	return &Lexer{input: input, loc: start, opts: opts}
}

// Input returns the source buffer the lexer scans.
func (l *Lexer) Input() string {
	return l.input
}

// Cursor returns the current scan position.
func (l *Lexer) Cursor() Cursor {
	return Cursor{pos: l.pos, loc: l.loc}
}

// Reset restores a scan position obtained from Cursor.
func (l *Lexer) Reset(c Cursor) {
	l.pos = c.pos
	l.loc = c.loc
}

// Raw returns the source text a token was produced from.
func (l *Lexer) Raw(tok Token) string {
	end := tok.Offset + tok.Length
	if end > len(l.input) {
		end = len(l.input)
	}
	if tok.Offset >= end {
		return ""
	}
	return l.input[tok.Offset:end]
}

// Lex returns the next token. It never fails: characters that do not start
// a valid token produce TokenUnknown.
func (l *Lexer) Lex() Token {
	atLineBegin := l.loc.Column <= 1

	for {
		tok := Token{Location: l.loc, Offset: l.pos, Length: 1}

		if l.pos >= len(l.input) {
			tok.Kind = TokenEOF
			tok.Length = 0
			return tok
		}

		c := l.input[l.pos]
		switch {
		case c == '\\' && l.lineContinuation():
			continue
		case isSpace(c):
			l.skipSpace()
			if l.opts.IgnoreWhitespace || atLineBegin || l.at(0) == '\n' {
				continue
			}
			tok.Kind = TokenSpace
			tok.Length = l.pos - tok.Offset
			return tok
		case c == '\n':
			l.pos++
			l.loc.Line++
			l.loc.Column = 1
			atLineBegin = true
			if l.opts.IgnoreWhitespace {
				continue
			}
			tok.Kind = TokenEndOfLine
			return tok
		case isDigit(c) || (c == '.' && isDigit(l.at(1))):
			l.numericLiteral(&tok)
		case isIdentStart(c):
			l.identifier(&tok)
		case c == '"':
			l.stringLiteral(&tok, l.opts.EscapeStringLiterals)
		case c == '#' && atLineBegin:
			if !l.directive(&tok) || l.opts.IgnorePPDirectives {
				l.skipToNextLine()
				continue
			}
		case c == '/' && l.at(1) == '/':
			l.skipToNextLine()
			continue
		case c == '/' && l.at(1) == '*':
			l.blockComment()
			continue
		default:
			l.punctuation(&tok)
		}

		l.skip(tok.Length)
		return tok
	}
}

func (l *Lexer) punctuation(tok *Token) {
	c0, c1, c2 := l.at(0), l.at(1), l.at(2)

	two := func(kind TokenKind) {
		tok.Kind = kind
		tok.Length = 2
	}

	switch c0 {
	case '!':
		if c1 == '=' {
			two(TokenExclaimEqual)
		} else {
			tok.Kind = TokenExclaim
		}
	case '#':
		tok.Kind = TokenHash
	case '$':
		tok.Kind = TokenDollar
	case '%':
		if c1 == '=' {
			two(TokenPercentEqual)
		} else {
			tok.Kind = TokenPercent
		}
	case '&':
		switch c1 {
		case '&':
			two(TokenAmpersandAmpersand)
		case '=':
			two(TokenAmpersandEqual)
		default:
			tok.Kind = TokenAmpersand
		}
	case '(':
		tok.Kind = TokenParenOpen
	case ')':
		tok.Kind = TokenParenClose
	case '*':
		if c1 == '=' {
			two(TokenStarEqual)
		} else {
			tok.Kind = TokenStar
		}
	case '+':
		switch c1 {
		case '+':
			two(TokenPlusPlus)
		case '=':
			two(TokenPlusEqual)
		default:
			tok.Kind = TokenPlus
		}
	case ',':
		tok.Kind = TokenComma
	case '-':
		switch c1 {
		case '-':
			two(TokenMinusMinus)
		case '=':
			two(TokenMinusEqual)
		case '>':
			two(TokenArrow)
		default:
			tok.Kind = TokenMinus
		}
	case '.':
		if c1 == '.' && c2 == '.' {
			tok.Kind = TokenEllipsis
			tok.Length = 3
		} else {
			tok.Kind = TokenDot
		}
	case '/':
		if c1 == '=' {
			two(TokenSlashEqual)
		} else {
			tok.Kind = TokenSlash
		}
	case ':':
		if c1 == ':' {
			two(TokenColonColon)
		} else {
			tok.Kind = TokenColon
		}
	case ';':
		tok.Kind = TokenSemicolon
	case '<':
		switch {
		case c1 == '<' && c2 == '=':
			tok.Kind = TokenLessLessEqual
			tok.Length = 3
		case c1 == '<':
			two(TokenLessLess)
		case c1 == '=':
			two(TokenLessEqual)
		default:
			tok.Kind = TokenLess
		}
	case '=':
		if c1 == '=' {
			two(TokenEqualEqual)
		} else {
			tok.Kind = TokenEqual
		}
	case '>':
		switch {
		case c1 == '>' && c2 == '=':
			tok.Kind = TokenGreaterGreaterEqual
			tok.Length = 3
		case c1 == '>':
			two(TokenGreaterGreater)
		case c1 == '=':
			two(TokenGreaterEqual)
		default:
			tok.Kind = TokenGreater
		}
	case '?':
		tok.Kind = TokenQuestion
	case '@':
		tok.Kind = TokenAt
	case '[':
		tok.Kind = TokenBracketOpen
	case '\\':
		tok.Kind = TokenBackslash
	case ']':
		tok.Kind = TokenBracketClose
	case '^':
		if c1 == '=' {
			two(TokenCaretEqual)
		} else {
			tok.Kind = TokenCaret
		}
	case '{':
		tok.Kind = TokenBraceOpen
	case '|':
		switch c1 {
		case '=':
			two(TokenPipeEqual)
		case '|':
			two(TokenPipePipe)
		default:
			tok.Kind = TokenPipe
		}
	case '}':
		tok.Kind = TokenBraceClose
	case '~':
		tok.Kind = TokenTilde
	default:
		tok.Kind = TokenUnknown
	}
}

// lineContinuation consumes a backslash that ends the line.
func (l *Lexer) lineContinuation() bool {
	n := 1
	if l.at(n) == '\r' {
		n++
	}
	if l.at(n) != '\n' {
		return false
	}
	l.pos += n + 1
	l.loc.Line++
	l.loc.Column = 1
	return true
}

func (l *Lexer) blockComment() {
	l.skip(2)
	for l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.pos++
			l.loc.Line++
			l.loc.Column = 1
			continue
		}
		if l.input[l.pos] == '*' && l.at(1) == '/' {
			l.skip(2)
			return
		}
		l.skip(1)
	}
}

func (l *Lexer) identifier(tok *Token) {
	end := l.pos + 1
	for end < len(l.input) && (isIdentStart(l.input[end]) || isDigit(l.input[end])) {
		end++
	}

	tok.Kind = TokenIdentifier
	tok.Length = end - l.pos
	tok.Literal = l.input[l.pos:end]

	if l.opts.IgnoreKeywords {
		return
	}
	if kind, ok := keywords[tok.Literal]; ok {
		tok.Kind = kind
	}
}

// directive parses the name after a line-leading '#'. It returns false for
// #line, which only updates the location and is never reported.
func (l *Lexer) directive(tok *Token) bool {
	l.skip(1)
	l.skipSpace()

	tok.Offset = l.pos
	if !isIdentStart(l.at(0)) {
		tok.Kind = TokenHashUnknown
		tok.Length = 0
		return true
	}
	l.identifier(tok)

	if kind, ok := directives[tok.Literal]; ok {
		tok.Kind = kind
		return true
	}
	if tok.Literal != "line" {
		tok.Kind = TokenHashUnknown
		return true
	}

	l.skip(tok.Length)
	l.skipSpace()

	var num Token
	num.Offset = l.pos
	if isDigit(l.at(0)) {
		l.numericLiteral(&num)
		l.skip(num.Length)
	}

	// The newline closing the directive increments the line again.
	l.loc.Line = int(num.Uint)
	if l.loc.Line != 0 {
		l.loc.Line--
	}

	l.skipSpace()
	if l.at(0) == '"' {
		var file Token
		file.Offset = l.pos
		l.stringLiteral(&file, false)
		l.loc.Source = file.Literal
	}
	return false
}

func (l *Lexer) stringLiteral(tok *Token, escape bool) {
	begin := l.pos
	end := begin + 1
	var buf []byte

	for ; ; end++ {
		if end >= len(l.input) || l.input[end] == '\n' {
			end--
			break
		}
		c := l.input[end]
		if c == '"' {
			break
		}
		if c == '\\' && l.atAbs(end+1) == '\n' {
			end++
			continue
		}
		if c == '\\' && escape {
			end++
			c, end = decodeEscape(l.input, end)
		}
		buf = append(buf, c)
	}

	tok.Kind = TokenStringLiteral
	tok.Literal = string(buf)
	tok.Length = end - begin + 1
}

// decodeEscape decodes the escape sequence whose first character is at i.
// It returns the decoded byte and the index of the last consumed character.
func decodeEscape(s string, i int) (byte, int) {
	if i >= len(s) {
		return '\\', i - 1
	}
	c := s[i]
	switch c {
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := 0
		j := i
		for ; j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7'; j++ {
			n = n<<3 | int(s[j]-'0')
		}
		return byte(n), j - 1
	case 'a':
		return '\a', i
	case 'b':
		return '\b', i
	case 'f':
		return '\f', i
	case 'n':
		return '\n', i
	case 'r':
		return '\r', i
	case 't':
		return '\t', i
	case 'v':
		return '\v', i
	case 'x':
		j := i + 1
		if j >= len(s) || !isHexDigit(s[j]) {
			return 'x', i
		}
		n := 0
		for ; j < len(s) && isHexDigit(s[j]); j++ {
			n = n<<4 | hexValue(s[j])
		}
		return byte(n), j - 1
	}
	return c, i
}

// numericLiteral scans an integer or floating point literal. A leading zero
// selects octal, "0x" hexadecimal; a decimal point switches octal back to
// decimal.
func (l *Lexer) numericLiteral(tok *Token) {
	begin := l.pos
	end := begin
	radix := uint64(10)

	if l.at(0) == '0' {
		if l.at(1) == 'x' || l.at(1) == 'X' {
			end += 2
			radix = 16
		} else {
			radix = 8
		}
	}

	digits := end
	isFloat := false
	for ; end < len(l.input); end++ {
		c := l.input[end]
		if isDigit(c) {
			if uint64(c-'0') >= radix {
				break
			}
		} else if radix == 16 && isHexDigit(c) {
			continue
		} else if c == '.' && !isFloat && radix != 16 {
			isFloat = true
			radix = 10
		} else {
			break
		}
	}
	mantissa := l.input[digits:end]

	tok.Kind = TokenIntLiteral
	if isFloat {
		tok.Kind = TokenFloatLiteral
	}

	exponent := ""
	if c := l.atAbs(end); (c == 'e' || c == 'E') && radix == 10 {
		j := end + 1
		if s := l.atAbs(j); s == '-' || s == '+' {
			j++
		}
		if isDigit(l.atAbs(j)) {
			for j < len(l.input) && isDigit(l.input[j]) {
				j++
			}
			exponent = l.input[end+1 : j]
			end = j
			tok.Kind = TokenFloatLiteral
		}
	}

	switch c := l.atAbs(end); {
	case c == 'f' || c == 'F':
		end++
		tok.Kind = TokenFloatLiteral
	case c == 'l' || c == 'L':
		end++
		tok.Kind = TokenDoubleLiteral
	case (c == 'u' || c == 'U') && tok.Kind == TokenIntLiteral:
		end++
		tok.Kind = TokenUintLiteral
	}

	if tok.Kind == TokenFloatLiteral || tok.Kind == TokenDoubleLiteral {
		text := mantissa
		if text == "" || text == "." {
			text = "0"
		}
		if exponent != "" {
			text += "e" + exponent
		}
		v, _ := strconv.ParseFloat(text, 64)
		tok.Double = v
		tok.Float = float32(v)
	} else {
		var v uint64
		for i := 0; i < len(mantissa); i++ {
			v = v*radix + uint64(hexValue(mantissa[i]))
		}
		tok.Uint = uint32(v)
		tok.Int = int32(tok.Uint)
	}

	tok.Length = end - begin
}

func (l *Lexer) skip(n int) {
	l.pos += n
	l.loc.Column += n
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.skip(1)
	}
}

func (l *Lexer) skipToNextLine() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.skip(1)
	}
}

// at returns the byte at offset i from the scan position, or 0 past the end.
func (l *Lexer) at(i int) byte {
	return l.atAbs(l.pos + i)
}

func (l *Lexer) atAbs(i int) byte {
	if i < 0 || i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
