package preprocessor

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/lexer"
)

// MacroTokenKind identifies an element of a macro replacement list.
type MacroTokenKind uint8

const (
	MacroText      MacroTokenKind = iota // literal text
	MacroArgument                        // macro-expanded argument
	MacroStringize                       // #param
	MacroConcat                          // ##
)

// MacroToken is one element of a replacement list. Index is the parameter
// position for MacroArgument and MacroStringize.
type MacroToken struct {
	Kind  MacroTokenKind
	Text  string
	Index int
}

// Macro is a #define or a predefined macro.
type Macro struct {
	Replacement  []MacroToken
	Parameters   []string
	Predefined   bool
	FunctionLike bool
}

// Text reconstructs the replacement list as source text.
func (m *Macro) Text() string {
	var sb strings.Builder
	for _, t := range m.Replacement {
		switch t.Kind {
		case MacroText:
			sb.WriteString(t.Text)
		case MacroArgument:
			sb.WriteString(m.Parameters[t.Index])
		case MacroStringize:
			sb.WriteByte('#')
			sb.WriteString(m.Parameters[t.Index])
		case MacroConcat:
			sb.WriteString("##")
		}
	}
	return sb.String()
}

func (m *Macro) appendText(text string) {
	if n := len(m.Replacement); n > 0 && m.Replacement[n-1].Kind == MacroText {
		m.Replacement[n-1].Text += text
		return
	}
	m.Replacement = append(m.Replacement, MacroToken{Kind: MacroText, Text: text})
}

func (m *Macro) parameterIndex(name string) int {
	for i, param := range m.Parameters {
		if param == name {
			return i
		}
	}
	return -1
}

// readReplacementList reads the rest of a #define line into m.
func (p *Preprocessor) readReplacementList(m *Macro) bool {
	for !p.peek(lexer.TokenEOF) && !p.peek(lexer.TokenEndOfLine) {
		p.consume()

		switch p.tok.Kind {
		case lexer.TokenHash:
			if p.accept(lexer.TokenHash) {
				if p.peek(lexer.TokenEndOfLine) {
					p.error(p.tok.Location, "## cannot appear at end of macro text")
					return false
				}
				m.Replacement = append(m.Replacement, MacroToken{Kind: MacroConcat})
				continue
			}
			if m.FunctionLike {
				if !p.expect(lexer.TokenIdentifier) {
					return false
				}
				index := m.parameterIndex(p.tok.Literal)
				if index < 0 {
					p.error(p.tok.Location, "# must be followed by parameter name")
					return false
				}
				m.Replacement = append(m.Replacement, MacroToken{Kind: MacroStringize, Index: index})
				continue
			}
		case lexer.TokenBackslash:
			if p.peek(lexer.TokenEndOfLine) {
				p.consume()
				continue
			}
		case lexer.TokenIdentifier:
			if index := m.parameterIndex(p.tok.Literal); index >= 0 {
				m.Replacement = append(m.Replacement, MacroToken{Kind: MacroArgument, Index: index})
				continue
			}
		}

		m.appendText(p.raw)
	}

	if n := len(m.Replacement); n > 0 {
		if first := &m.Replacement[0]; first.Kind == MacroText {
			first.Text = strings.TrimLeft(first.Text, " \t")
		}
		if last := &m.Replacement[n-1]; last.Kind == MacroText {
			last.Text = strings.TrimRight(last.Text, " \t")
		}
	}
	return true
}

func quoteString(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

// expandIdentifier replaces the current identifier token if it names a
// macro. It returns false if the token is to be output unchanged.
func (p *Preprocessor) expandIdentifier() bool {
	name := p.tok.Literal
	loc := p.tok.Location

	switch name {
	case "__LINE__":
		p.push(strconv.Itoa(loc.Line), "", false)
		return true
	case "__FILE__":
		p.push(quoteString(loc.Source), "", false)
		return true
	case "__FILE_NAME__":
		p.push(quoteString(filepath.Base(loc.Source)), "", false)
		return true
	case "__FILE_STEM__":
		base := filepath.Base(loc.Source)
		p.push(quoteString(strings.TrimSuffix(base, filepath.Ext(base))), "", false)
		return true
	}

	m, ok := p.macros[name]
	if !ok || p.currentIndex >= len(p.stack) || p.stack[p.currentIndex].hidden[name] {
		return false
	}

	// Locations inside expanded text drift from the source, so overflow
	// is reported once at the outermost invocation.
	if p.stack[p.currentIndex].name != "" {
		p.invocation = loc
		p.overflow = false
	}
	if p.overflow {
		return false
	}
	if p.recursion >= maxRecursion {
		p.error(p.invocation, "macro recursion too high")
		p.overflow = true
		return false
	}
	p.recursion++

	var args []string
	if m.FunctionLike {
		if !p.accept(lexer.TokenParenOpen) {
			return false
		}
		var complete bool
		if args, complete = p.collectArguments(); !complete {
			p.error(loc, "unexpected end of input in invocation of macro '"+name+"'")
			return true
		}
	}

	text := p.expandMacro(name, m, args)
	if text != "" {
		p.push(text, "", false)
		p.stack[p.currentIndex].hidden[name] = true
	}
	return true
}

// collectArguments reads the comma separated arguments of a function-like
// macro call up to the closing parenthesis. Whitespace collapses to a single
// space and each argument is trimmed.
func (p *Preprocessor) collectArguments() ([]string, bool) {
	var args []string
	for {
		depth := 0
		var arg strings.Builder

		for {
			if !p.consume() || p.tok.Kind == lexer.TokenEOF {
				return args, false
			}
			if p.tok.Kind == lexer.TokenComma && depth == 0 {
				break
			}
			if p.tok.Kind == lexer.TokenParenOpen {
				depth++
			}
			if p.tok.Kind == lexer.TokenParenClose {
				if depth--; depth < 0 {
					break
				}
			}
			if p.tok.Kind == lexer.TokenSpace {
				arg.WriteByte(' ')
			} else {
				arg.WriteString(p.raw)
			}
		}

		args = append(args, strings.Trim(arg.String(), " \t"))
		if depth < 0 {
			return args, true
		}
	}
}

func (p *Preprocessor) expandMacro(name string, m *Macro, args []string) string {
	var out strings.Builder
	trimNext := false

	for _, t := range m.Replacement {
		switch t.Kind {
		case MacroText:
			text := t.Text
			if trimNext {
				text = strings.TrimLeft(text, " \t")
			}
			out.WriteString(text)
		case MacroConcat:
			// "a ## b" becomes "ab"
			trimmed := strings.TrimRight(out.String(), " \t")
			out.Reset()
			out.WriteString(trimmed)
			trimNext = true
			continue
		case MacroStringize, MacroArgument:
			if t.Index >= len(args) {
				p.warning(p.tok.Location, "not enough arguments for function-like macro invocation '"+name+"'")
				break
			}
			if t.Kind == MacroStringize {
				out.WriteByte('"')
				out.WriteString(strings.ReplaceAll(args[t.Index], `"`, `\"`))
				out.WriteByte('"')
			} else {
				out.WriteString(p.expandArgument(args[t.Index]))
			}
		}
		trimNext = false
	}

	return out.String()
}

// expandArgument macro-expands a single argument before substitution.
func (p *Preprocessor) expandArgument(arg string) string {
	if arg == "" {
		return ""
	}

	p.push(arg, "", true)
	index := len(p.stack) - 1
	level := p.stack[index]

	var out strings.Builder
	for {
		if level.exhausted && p.nextIndex < index {
			break
		}
		if !p.consume() {
			break
		}
		if p.tok.Kind == lexer.TokenEOF {
			if p.currentIndex == index {
				break
			}
			continue
		}
		if p.tok.Kind == lexer.TokenIdentifier && p.expandIdentifier() {
			continue
		}
		out.WriteString(p.raw)
	}
	return out.String()
}
