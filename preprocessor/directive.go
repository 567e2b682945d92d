package preprocessor

import (
	"strings"

	"github.com/gogpu/reshadefx/lexer"
)

func isBuiltinMacro(name string) bool {
	switch name {
	case "__LINE__", "__FILE__", "__FILE_NAME__", "__FILE_STEM__":
		return true
	}
	return false
}

func (p *Preprocessor) parseDefine() {
	if !p.expect(lexer.TokenIdentifier) {
		return
	}
	if p.tok.Literal == "defined" {
		p.warning(p.tok.Location, "macro name 'defined' is reserved")
		p.skipLine()
		return
	}

	loc := p.tok.Location
	name := p.tok.Literal
	var m Macro

	// A parameter list must follow the name without any whitespace.
	src := p.stack[p.currentIndex].lex.Input()
	if end := p.tok.Offset + p.tok.Length; end < len(src) && src[end] == '(' {
		p.accept(lexer.TokenParenOpen)
		m.FunctionLike = true

		for p.accept(lexer.TokenIdentifier) {
			m.Parameters = append(m.Parameters, p.tok.Literal)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}

		if p.accept(lexer.TokenEllipsis) {
			p.error(p.tok.Location, "variadic macros are not supported")
			return
		}
		if !p.expect(lexer.TokenParenClose) {
			return
		}
	}

	if !p.readReplacementList(&m) {
		return
	}
	if !p.DefineMacro(name, m) {
		p.error(loc, "redefinition of '"+name+"'")
	}
}

func (p *Preprocessor) parseUndef() {
	if !p.expect(lexer.TokenIdentifier) {
		return
	}
	if p.tok.Literal == "defined" {
		p.warning(p.tok.Location, "macro name 'defined' is reserved")
		p.skipLine()
		return
	}
	delete(p.macros, p.tok.Literal)
}

func (p *Preprocessor) parseIf() {
	level := ifLevel{directive: p.tok, inputIndex: p.currentIndex}
	level.value = p.evaluateExpression()
	level.skipping = p.skipping() || !level.value
	p.ifStack = append(p.ifStack, level)
}

// parseIfdef handles #ifdef when defined is true and #ifndef otherwise.
func (p *Preprocessor) parseIfdef(defined bool) {
	level := ifLevel{directive: p.tok, inputIndex: p.currentIndex}
	if !p.expect(lexer.TokenIdentifier) {
		return
	}

	name := p.tok.Literal
	_, exists := p.macros[name]
	exists = exists || isBuiltinMacro(name)
	level.value = exists == defined

	parentSkipping := p.skipping()
	level.skipping = parentSkipping || !level.value
	p.ifStack = append(p.ifStack, level)

	if !parentSkipping {
		p.usedMacros[name] = true
	}
}

func (p *Preprocessor) parentSkipping() bool {
	n := len(p.ifStack)
	return n > 1 && p.ifStack[n-2].skipping
}

func (p *Preprocessor) parseElif() {
	if len(p.ifStack) == 0 {
		p.error(p.tok.Location, "missing #if for #elif")
		return
	}
	level := &p.ifStack[len(p.ifStack)-1]
	if level.directive.Kind == lexer.TokenHashElse {
		p.error(p.tok.Location, "#elif is not allowed after #else")
		return
	}

	level.directive = p.tok
	level.inputIndex = p.currentIndex

	parent := p.parentSkipping()
	cond := p.evaluateExpression()
	level.skipping = parent || level.value || !cond
	if !level.value {
		level.value = cond
	}
}

func (p *Preprocessor) parseElse() {
	if len(p.ifStack) == 0 {
		p.error(p.tok.Location, "missing #if for #else")
		return
	}
	level := &p.ifStack[len(p.ifStack)-1]
	if level.directive.Kind == lexer.TokenHashElse {
		p.error(p.tok.Location, "#else is not allowed after #else")
		return
	}

	level.directive = p.tok
	level.inputIndex = p.currentIndex
	level.skipping = p.parentSkipping() || level.value
	level.value = true
}

func (p *Preprocessor) parseEndif() {
	if len(p.ifStack) == 0 {
		p.error(p.tok.Location, "missing #if for #endif")
		return
	}
	p.ifStack = p.ifStack[:len(p.ifStack)-1]
}

// parseMessage handles #error when isError is set and #warning otherwise.
func (p *Preprocessor) parseMessage(isError bool) {
	loc := p.tok.Location
	if !p.expect(lexer.TokenStringLiteral) {
		return
	}
	if isError {
		p.error(loc, p.tok.Literal)
	} else {
		p.warning(loc, p.tok.Literal)
	}
}

func (p *Preprocessor) parsePragma() {
	loc := p.tok.Location
	if !p.expect(lexer.TokenIdentifier) {
		return
	}

	name := p.tok.Literal
	var args strings.Builder
	for !p.peek(lexer.TokenEndOfLine) && !p.peek(lexer.TokenEOF) {
		p.consume()
		if p.tok.Kind == lexer.TokenIdentifier && p.expandIdentifier() {
			continue
		}
		args.WriteString(p.raw)
	}

	switch name {
	case "once":
		if _, ok := p.fileCache[p.outputLoc.Source]; ok {
			p.fileCache[p.outputLoc.Source] = ""
		}
	case "reshade":
		key, value, _ := strings.Cut(strings.TrimSpace(args.String()), " ")
		p.pragmas = append(p.pragmas, Pragma{Name: key, Value: strings.TrimSpace(value)})
	default:
		p.warning(loc, "unknown pragma ignored")
	}
}

func (p *Preprocessor) parseInclude() {
	loc := p.tok.Location

	for p.accept(lexer.TokenIdentifier) {
		if p.expandIdentifier() {
			continue
		}
		p.error(p.tok.Location, "syntax error: unexpected identifier in #include")
		p.consumeUntil(lexer.TokenEndOfLine)
		return
	}

	if !p.expect(lexer.TokenStringLiteral) {
		p.consumeUntil(lexer.TokenEndOfLine)
		return
	}

	path := p.resolveInclude(p.tok.Literal)
	for _, in := range p.stack {
		if in.name == path {
			p.error(p.tok.Location, "recursive #include")
			return
		}
	}

	data, ok := p.fileCache[path]
	if !ok {
		var err error
		if data, err = readFile(path); err != nil {
			p.error(loc, "could not open included file '"+path+"'")
			p.consumeUntil(lexer.TokenEndOfLine)
			return
		}
		p.fileCache[path] = data
	}

	// Drop finished levels so their hidden macros do not leak into the file.
	if len(p.stack) > 0 {
		p.stack = p.stack[:p.nextIndex+1]
	}
	if data != "" {
		p.push(data, path, false)
	}
}
