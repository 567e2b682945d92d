package parser

import (
	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// Attribute bits read in front of a statement.
const (
	attrUnroll uint32 = 1 << iota
	attrDontUnroll
	attrFlatten
	attrDontFlatten
)

func (p *Parser) pushLoopTargets(breakTarget, continueTarget fx.ID) {
	p.breakTargets = append(p.breakTargets, breakTarget)
	p.continueTargets = append(p.continueTargets, continueTarget)
}

func (p *Parser) popLoopTargets() {
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]
}

// parseAttributes reads [unroll], [loop], [fastopt], [flatten] and [branch]
// and returns the loop and selection control flags.
func (p *Parser) parseAttributes() (loopControl, selectionControl uint32, ok bool) {
	for p.accept(lexer.TokenBracketOpen) {
		attribute := p.next.Literal
		if !p.expect(lexer.TokenIdentifier) || !p.expect(lexer.TokenBracketClose) {
			return 0, 0, false
		}

		switch attribute {
		case "unroll":
			loopControl |= attrUnroll
		case "loop", "fastopt":
			loopControl |= attrDontUnroll
		case "flatten":
			selectionControl |= attrFlatten
		case "branch":
			selectionControl |= attrDontFlatten
		default:
			p.warning(p.tok.Location, 0, "unknown attribute")
		}

		if loopControl == attrUnroll|attrDontUnroll {
			p.error(p.tok.Location, 3524, "can't use loop and unroll attributes together")
			return 0, 0, false
		}
		if selectionControl == attrFlatten|attrDontFlatten {
			p.error(p.tok.Location, 3524, "can't use branch and flatten attributes together")
			return 0, 0, false
		}
	}

	// Both sets share the fx.ControlFlatten and fx.ControlDontFlatten bits.
	return loopControl, selectionControl >> 2, true
}

func (p *Parser) parseStatement(scoped bool) bool {
	if !p.cg.IsInBlock() {
		p.error(p.next.Location, 0, "unreachable code")
		return false
	}

	loopControl, selectionControl, ok := p.parseAttributes()
	if !ok {
		return false
	}

	if p.peek(lexer.TokenBraceOpen) {
		return p.parseStatementBlock(scoped)
	}
	if p.accept(lexer.TokenSemicolon) {
		return true
	}

	if p.cg.IsInFunction() {
		loc := p.next.Location

		switch {
		case p.accept(lexer.TokenIf):
			return p.parseIf(loc, selectionControl)
		case p.accept(lexer.TokenSwitch):
			return p.parseSwitch(loc, selectionControl)
		case p.accept(lexer.TokenFor):
			p.symbols.EnterScope()
			defer p.symbols.LeaveScope()
			return p.parseFor(loc, loopControl)
		case p.accept(lexer.TokenWhile):
			p.symbols.EnterScope()
			defer p.symbols.LeaveScope()
			return p.parseWhile(loc, loopControl)
		case p.accept(lexer.TokenDo):
			return p.parseDoWhile(loc, loopControl)

		case p.accept(lexer.TokenBreak):
			if len(p.breakTargets) == 0 {
				p.error(loc, 3518, "break must be inside loop")
				return false
			}
			p.cg.LeaveBlockAndBranch(p.breakTargets[len(p.breakTargets)-1], fx.FlowBreak)
			return p.expect(lexer.TokenSemicolon)

		case p.accept(lexer.TokenContinue):
			if len(p.continueTargets) == 0 {
				p.error(loc, 3519, "continue must be inside loop")
				return false
			}
			p.cg.LeaveBlockAndBranch(p.continueTargets[len(p.continueTargets)-1], fx.FlowContinue)
			return p.expect(lexer.TokenSemicolon)

		case p.accept(lexer.TokenReturn):
			return p.parseReturn(loc)

		case p.accept(lexer.TokenDiscard):
			p.cg.LeaveBlockAndKill()
			return p.expect(lexer.TokenSemicolon)
		}
	}

	var t fx.Type
	if p.parseType(&t) {
		for count := 0; count == 0 || !p.peek(lexer.TokenSemicolon); count++ {
			if count > 0 && !p.expect(lexer.TokenComma) {
				p.consumeUntil(lexer.TokenSemicolon)
				return false
			}
			if !p.expect(lexer.TokenIdentifier) || !p.parseVariable(t, p.tok.Literal, false) {
				p.consumeUntil(lexer.TokenSemicolon)
				return false
			}
		}
		return p.expect(lexer.TokenSemicolon)
	}

	var exp fx.Expression
	if p.parseExpression(&exp) {
		return p.expect(lexer.TokenSemicolon)
	}

	p.consumeUntil(lexer.TokenSemicolon)
	return false
}

// parseStatementBlock reads { ... }. After an error the rest of the block
// is skipped so that parsing can continue behind it.
func (p *Parser) parseStatementBlock(scoped bool) bool {
	if !p.expect(lexer.TokenBraceOpen) {
		return false
	}
	if scoped {
		p.symbols.EnterScope()
	}

	for !p.peek(lexer.TokenBraceClose) && !p.peek(lexer.TokenEOF) {
		if p.parseStatement(true) {
			continue
		}
		if scoped {
			p.symbols.LeaveScope()
		}

		level := 0
		for !p.peek(lexer.TokenEOF) {
			if p.accept(lexer.TokenBraceOpen) {
				level++
			} else if p.accept(lexer.TokenBraceClose) {
				if level == 0 {
					break
				}
				level--
			} else {
				p.consume()
			}
		}
		return false
	}

	if scoped {
		p.symbols.LeaveScope()
	}
	return p.expect(lexer.TokenBraceClose)
}

// parseCondition reads a parenthesized scalar condition and loads it as a
// boolean.
func (p *Parser) parseCondition(message string) (fx.ID, bool) {
	var cond fx.Expression
	if !p.expect(lexer.TokenParenOpen) || !p.parseExpression(&cond) || !p.expect(lexer.TokenParenClose) {
		return 0, false
	}
	if !cond.Type.IsScalar() {
		p.error(cond.Location, 3019, "%s", message)
		return 0, false
	}
	cond.AddCast(fx.Scalar(fx.TypeBool))
	return p.cg.EmitLoad(&cond, false), true
}

func (p *Parser) parseIf(loc lexer.Location, control uint32) bool {
	trueBlock := p.cg.CreateBlock()
	falseBlock := p.cg.CreateBlock()
	mergeBlock := p.cg.CreateBlock()

	condValue, ok := p.parseCondition("if statement conditional expressions must evaluate to a scalar")
	if !ok {
		return false
	}
	condBlock := p.cg.LeaveBlockAndBranchConditional(condValue, trueBlock, falseBlock)

	p.cg.EnterBlock(trueBlock)
	if !p.parseStatement(true) {
		return false
	}
	trueBlock = p.cg.LeaveBlockAndBranch(mergeBlock, fx.FlowNone)

	p.cg.EnterBlock(falseBlock)
	if p.accept(lexer.TokenElse) && !p.parseStatement(true) {
		return false
	}
	falseBlock = p.cg.LeaveBlockAndBranch(mergeBlock, fx.FlowNone)

	p.cg.EnterBlock(mergeBlock)
	p.cg.EmitIf(loc, condValue, condBlock, trueBlock, falseBlock, control)
	return true
}

func (p *Parser) parseSwitch(loc lexer.Location, control uint32) bool {
	mergeBlock := p.cg.CreateBlock()

	var selector fx.Expression
	if !p.expect(lexer.TokenParenOpen) || !p.parseExpression(&selector) || !p.expect(lexer.TokenParenClose) {
		return false
	}
	if !selector.Type.IsScalar() {
		p.error(selector.Location, 3019, "switch statement expression must evaluate to a scalar")
		return false
	}
	selector.AddCast(fx.Scalar(fx.TypeInt))
	selectorValue := p.cg.EmitLoad(&selector, false)
	selectorBlock := p.cg.LeaveBlockAndSwitch(selectorValue, mergeBlock)

	if !p.expect(lexer.TokenBraceOpen) {
		return false
	}

	p.breakTargets = append(p.breakTargets, mergeBlock)
	defer func() { p.breakTargets = p.breakTargets[:len(p.breakTargets)-1] }()

	success := true
	defaultLabel := mergeBlock
	var labels []fx.ID
	pending := 0

	p.cg.EnterBlock(p.cg.CreateBlock())

	for !p.peek(lexer.TokenEOF) {
		for p.accept(lexer.TokenCase) || p.accept(lexer.TokenDefault) {
			if p.tok.Kind == lexer.TokenCase {
				var label fx.Expression
				if !p.parseExpression(&label) {
					p.consumeUntil(lexer.TokenBraceClose)
					return false
				}
				if !label.Type.IsScalar() || !label.Type.IsIntegral() || !label.IsConstant {
					p.error(label.Location, 3020, "invalid type for case expression - value must be an integer scalar")
					p.consumeUntil(lexer.TokenBraceClose)
					return false
				}
				value := label.Constant.Uint(0)
				for i := 0; i < len(labels); i += 2 {
					if labels[i] == value {
						success = false
						p.error(label.Location, 3532, "duplicate case %d", value)
						break
					}
				}
				labels = append(labels, value, 0)
			} else {
				if defaultLabel != mergeBlock {
					success = false
					p.error(p.tok.Location, 3532, "duplicate default in switch statement")
				}
				defaultLabel = 0
			}

			if !p.expect(lexer.TokenColon) {
				p.consumeUntil(lexer.TokenBraceClose)
				return false
			}
		}

		// The last label may be followed directly by the closing brace.
		end := p.peek(lexer.TokenBraceClose)
		if !end && !p.parseStatement(true) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}

		if p.peek(lexer.TokenCase) || p.peek(lexer.TokenDefault) || end {
			if p.cg.IsInBlock() {
				success = false
				p.error(p.next.Location, 3533, "non-empty case statements must have break or return")
			}

			next := mergeBlock
			if !end {
				next = p.cg.CreateBlock()
			}
			current := p.cg.LeaveBlockAndBranch(next, fx.FlowNone)

			if defaultLabel == 0 {
				defaultLabel = current
			}
			for i := pending; i < len(labels); i += 2 {
				labels[i+1] = current
			}

			p.cg.EnterBlock(next)
			if end {
				break
			}
			pending = len(labels)
		}
	}

	if len(labels) == 0 && defaultLabel == mergeBlock {
		p.warning(loc, 5002, "switch statement contains no 'case' or 'default' labels")
	}

	p.cg.EmitSwitch(loc, selectorValue, selectorBlock, defaultLabel, labels, control)

	return p.expect(lexer.TokenBraceClose) && success
}

func (p *Parser) parseFor(loc lexer.Location, control uint32) bool {
	if !p.expect(lexer.TokenParenOpen) {
		return false
	}

	var t fx.Type
	if p.parseType(&t) {
		for count := 0; count == 0 || !p.peek(lexer.TokenSemicolon); count++ {
			if count > 0 && !p.expect(lexer.TokenComma) {
				return false
			}
			if !p.expect(lexer.TokenIdentifier) || !p.parseVariable(t, p.tok.Literal, false) {
				return false
			}
		}
	} else if !p.peek(lexer.TokenSemicolon) {
		var init fx.Expression
		if !p.parseExpression(&init) {
			return false
		}
	}
	if !p.expect(lexer.TokenSemicolon) {
		return false
	}

	mergeBlock := p.cg.CreateBlock()
	headerBlock := p.cg.CreateBlock()
	continueBlock := p.cg.CreateBlock()
	loopBlock := p.cg.CreateBlock()
	condBlock := p.cg.CreateBlock()
	var condValue fx.ID

	prevBlock := p.cg.LeaveBlockAndBranch(headerBlock, fx.FlowNone)

	p.cg.EnterBlock(headerBlock)
	p.cg.LeaveBlockAndBranch(condBlock, fx.FlowNone)

	p.cg.EnterBlock(condBlock)
	if !p.peek(lexer.TokenSemicolon) {
		var cond fx.Expression
		if !p.parseExpression(&cond) {
			return false
		}
		if !cond.Type.IsScalar() {
			p.error(cond.Location, 3019, "scalar value expected")
			return false
		}
		cond.AddCast(fx.Scalar(fx.TypeBool))
		condValue = p.cg.EmitLoad(&cond, false)
		condBlock = p.cg.LeaveBlockAndBranchConditional(condValue, loopBlock, mergeBlock)
	} else {
		condBlock = p.cg.LeaveBlockAndBranch(loopBlock, fx.FlowNone)
	}
	if !p.expect(lexer.TokenSemicolon) {
		return false
	}

	// The increment is parsed now but runs after the body.
	p.cg.EnterBlock(continueBlock)
	if !p.peek(lexer.TokenParenClose) {
		var next fx.Expression
		if !p.parseExpression(&next) {
			return false
		}
	}
	if !p.expect(lexer.TokenParenClose) {
		return false
	}
	p.cg.LeaveBlockAndBranch(headerBlock, fx.FlowNone)

	p.cg.EnterBlock(loopBlock)
	p.pushLoopTargets(mergeBlock, continueBlock)
	ok := p.parseStatement(false)
	p.popLoopTargets()
	if !ok {
		return false
	}
	loopBlock = p.cg.LeaveBlockAndBranch(continueBlock, fx.FlowNone)

	p.cg.EnterBlock(mergeBlock)
	p.cg.EmitLoop(loc, condValue, prevBlock, headerBlock, condBlock, loopBlock, continueBlock, control)
	return true
}

func (p *Parser) parseWhile(loc lexer.Location, control uint32) bool {
	mergeBlock := p.cg.CreateBlock()
	headerBlock := p.cg.CreateBlock()
	continueBlock := p.cg.CreateBlock()
	loopBlock := p.cg.CreateBlock()
	condBlock := p.cg.CreateBlock()

	prevBlock := p.cg.LeaveBlockAndBranch(headerBlock, fx.FlowNone)

	p.cg.EnterBlock(headerBlock)
	p.cg.LeaveBlockAndBranch(condBlock, fx.FlowNone)

	p.cg.EnterBlock(condBlock)
	condValue, ok := p.parseCondition("scalar value expected")
	if !ok {
		return false
	}
	condBlock = p.cg.LeaveBlockAndBranchConditional(condValue, loopBlock, mergeBlock)

	p.cg.EnterBlock(loopBlock)
	p.pushLoopTargets(mergeBlock, continueBlock)
	ok = p.parseStatement(false)
	p.popLoopTargets()
	if !ok {
		return false
	}
	loopBlock = p.cg.LeaveBlockAndBranch(continueBlock, fx.FlowNone)

	p.cg.EnterBlock(continueBlock)
	p.cg.LeaveBlockAndBranch(headerBlock, fx.FlowNone)

	p.cg.EnterBlock(mergeBlock)
	p.cg.EmitLoop(loc, condValue, prevBlock, headerBlock, condBlock, loopBlock, continueBlock, control)
	return true
}

func (p *Parser) parseDoWhile(loc lexer.Location, control uint32) bool {
	mergeBlock := p.cg.CreateBlock()
	headerBlock := p.cg.CreateBlock()
	continueBlock := p.cg.CreateBlock()
	loopBlock := p.cg.CreateBlock()

	prevBlock := p.cg.LeaveBlockAndBranch(headerBlock, fx.FlowNone)

	p.cg.EnterBlock(headerBlock)
	p.cg.LeaveBlockAndBranch(loopBlock, fx.FlowNone)

	p.cg.EnterBlock(loopBlock)
	p.pushLoopTargets(mergeBlock, continueBlock)
	ok := p.parseStatement(true)
	p.popLoopTargets()
	if !ok {
		return false
	}
	loopBlock = p.cg.LeaveBlockAndBranch(continueBlock, fx.FlowNone)

	// The condition is evaluated in the continue block.
	p.cg.EnterBlock(continueBlock)
	if !p.expect(lexer.TokenWhile) {
		return false
	}
	condValue, ok := p.parseCondition("scalar value expected")
	if !ok || !p.expect(lexer.TokenSemicolon) {
		return false
	}
	p.cg.LeaveBlockAndBranchConditional(condValue, headerBlock, mergeBlock)

	p.cg.EnterBlock(mergeBlock)
	p.cg.EmitLoop(loc, condValue, prevBlock, headerBlock, 0, loopBlock, continueBlock, control)
	return true
}

func (p *Parser) parseReturn(loc lexer.Location) bool {
	ret := p.returnType

	switch {
	case !p.peek(lexer.TokenSemicolon):
		var exp fx.Expression
		if !p.parseExpression(&exp) {
			p.consumeUntil(lexer.TokenSemicolon)
			return false
		}
		if ret.IsVoid() {
			p.error(loc, 3079, "void functions cannot return a value")
			p.accept(lexer.TokenSemicolon)
			return false
		}
		if exp.Type.IsArray() || fx.Rank(exp.Type, ret) == 0 {
			p.error(loc, 3017, "expression does not match function return type")
			p.accept(lexer.TokenSemicolon)
			return false
		}
		p.warnTruncation(&exp, ret)
		exp.AddCast(ret)
		p.cg.LeaveBlockAndReturn(p.cg.EmitLoad(&exp, false))

	case !ret.IsVoid():
		p.error(loc, 3080, "function must return a value")
		p.accept(lexer.TokenSemicolon)
		return false

	default:
		p.cg.LeaveBlockAndReturn(0)
	}

	return p.expect(lexer.TokenSemicolon)
}
