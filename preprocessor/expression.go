package preprocessor

import "github.com/gogpu/reshadefx/lexer"

type operator uint8

const (
	opNone operator = iota
	opOr
	opAnd
	opBitOr
	opBitXor
	opBitAnd
	opNotEqual
	opEqual
	opLess
	opGreater
	opLessEqual
	opGreaterEqual
	opLeftShift
	opRightShift
	opAdd
	opSubtract
	opModulo
	opDivide
	opMultiply
	opPlus
	opNegate
	opNot
	opBitNot
	opParentheses
)

var precedence = [...]int{
	opOr:           0,
	opAnd:          1,
	opBitOr:        2,
	opBitXor:       3,
	opBitAnd:       4,
	opNotEqual:     5,
	opEqual:        5,
	opLess:         6,
	opGreater:      6,
	opLessEqual:    6,
	opGreaterEqual: 6,
	opLeftShift:    7,
	opRightShift:   7,
	opAdd:          8,
	opSubtract:     8,
	opModulo:       9,
	opDivide:       9,
	opMultiply:     9,
	opPlus:         10,
	opNegate:       10,
	opNot:          10,
	opBitNot:       10,
}

var binaryOperators = map[lexer.TokenKind]operator{
	lexer.TokenPercent:            opModulo,
	lexer.TokenAmpersand:          opBitAnd,
	lexer.TokenStar:               opMultiply,
	lexer.TokenSlash:              opDivide,
	lexer.TokenLess:               opLess,
	lexer.TokenGreater:            opGreater,
	lexer.TokenCaret:              opBitXor,
	lexer.TokenPipe:               opBitOr,
	lexer.TokenExclaimEqual:       opNotEqual,
	lexer.TokenAmpersandAmpersand: opAnd,
	lexer.TokenLessLess:           opLeftShift,
	lexer.TokenLessEqual:          opLessEqual,
	lexer.TokenEqualEqual:         opEqual,
	lexer.TokenGreaterGreater:     opRightShift,
	lexer.TokenGreaterEqual:       opGreaterEqual,
	lexer.TokenPipePipe:           opOr,
}

// rpnToken is either an operand value or an operator.
type rpnToken struct {
	value int32
	op    operator
}

const maxExpressionStack = 128

func endsOperand(kind lexer.TokenKind) bool {
	switch kind {
	case lexer.TokenIntLiteral, lexer.TokenUintLiteral, lexer.TokenIdentifier, lexer.TokenParenClose:
		return true
	}
	return false
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// evaluateExpression evaluates the rest of an #if or #elif line with the
// shunting yard algorithm. Identifiers that are not macros evaluate to zero.
func (p *Preprocessor) evaluateExpression() bool {
	var rpn []rpnToken
	var stack []operator
	previous := p.tok.Kind

	for !p.peek(lexer.TokenEndOfLine) && !p.peek(lexer.TokenEOF) {
		if len(stack) >= maxExpressionStack || len(rpn) >= maxExpressionStack {
			p.error(p.tok.Location, "expression evaluator ran out of stack space")
			return false
		}

		p.consume()

		op := opNone
		leftAssociative := true
		switch kind := p.tok.Kind; kind {
		case lexer.TokenSpace:
			continue
		case lexer.TokenBackslash:
			if p.accept(lexer.TokenEndOfLine) {
				continue
			}
		case lexer.TokenExclaim:
			op, leftAssociative = opNot, false
		case lexer.TokenTilde:
			op, leftAssociative = opBitNot, false
		case lexer.TokenPlus:
			leftAssociative = endsOperand(previous)
			op = opPlus
			if leftAssociative {
				op = opAdd
			}
		case lexer.TokenMinus:
			leftAssociative = endsOperand(previous)
			op = opNegate
			if leftAssociative {
				op = opSubtract
			}
		default:
			if binary, ok := binaryOperators[kind]; ok {
				op = binary
			}
		}

		switch p.tok.Kind {
		case lexer.TokenParenOpen:
			stack = append(stack, opParentheses)
		case lexer.TokenParenClose:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == opParentheses {
					matched = true
					break
				}
				rpn = append(rpn, rpnToken{op: top})
			}
			if !matched {
				p.error(p.tok.Location, "unmatched ')'")
				return false
			}
		case lexer.TokenIdentifier:
			if p.expandIdentifier() {
				continue
			}
			switch p.tok.Literal {
			case "defined":
				value, ok := p.evaluateDefined()
				if !ok {
					return false
				}
				rpn = append(rpn, rpnToken{value: value})
				previous = lexer.TokenIntLiteral
				continue
			case "exists":
				value, ok := p.evaluateExists()
				if !ok {
					return false
				}
				rpn = append(rpn, rpnToken{value: value})
				previous = lexer.TokenIntLiteral
				continue
			}
			rpn = append(rpn, rpnToken{value: 0})
		case lexer.TokenIntLiteral, lexer.TokenUintLiteral:
			rpn = append(rpn, rpnToken{value: p.tok.Int})
		default:
			if op == opNone {
				p.error(p.tok.Location, "invalid expression")
				return false
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top == opParentheses {
					break
				}
				if leftAssociative && precedence[op] > precedence[top] || !leftAssociative && precedence[op] >= precedence[top] {
					break
				}
				stack = stack[:len(stack)-1]
				rpn = append(rpn, rpnToken{op: top})
			}
			stack = append(stack, op)
		}

		previous = p.tok.Kind
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == opParentheses {
			p.error(p.tok.Location, "unmatched '('")
			return false
		}
		rpn = append(rpn, rpnToken{op: top})
	}

	value, ok := evaluateRPN(rpn)
	if !ok {
		p.error(p.tok.Location, value.message)
		return false
	}
	return value.result != 0
}

func (p *Preprocessor) evaluateDefined() (int32, bool) {
	parens := p.accept(lexer.TokenParenOpen)
	if !p.expect(lexer.TokenIdentifier) {
		return 0, false
	}
	_, defined := p.macros[p.tok.Literal]
	if parens && !p.expect(lexer.TokenParenClose) {
		return 0, false
	}
	return boolValue(defined), true
}

func (p *Preprocessor) evaluateExists() (int32, bool) {
	parens := p.accept(lexer.TokenParenOpen)
	for p.accept(lexer.TokenIdentifier) {
		if !p.expandIdentifier() {
			p.error(p.tok.Location, "syntax error: unexpected identifier after 'exists'")
			return 0, false
		}
	}
	if !p.expect(lexer.TokenStringLiteral) {
		return 0, false
	}
	name := p.tok.Literal
	if parens && !p.expect(lexer.TokenParenClose) {
		return 0, false
	}
	return boolValue(fileExists(p.resolveInclude(name))), true
}

type evalResult struct {
	result  int32
	message string
}

func evaluateRPN(rpn []rpnToken) (evalResult, bool) {
	invalid := evalResult{message: "invalid expression"}
	var stack []int32

	for _, tok := range rpn {
		if tok.op == opNone {
			stack = append(stack, tok.value)
			continue
		}

		if tok.op >= opPlus {
			if len(stack) < 1 {
				return invalid, false
			}
			v := &stack[len(stack)-1]
			switch tok.op {
			case opNegate:
				*v = -*v
			case opNot:
				*v = boolValue(*v == 0)
			case opBitNot:
				*v = ^*v
			}
			continue
		}

		if len(stack) < 2 {
			return invalid, false
		}
		a, b := stack[len(stack)-2], stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var r int32
		switch tok.op {
		case opOr:
			r = boolValue(a != 0 || b != 0)
		case opAnd:
			r = boolValue(a != 0 && b != 0)
		case opBitOr:
			r = a | b
		case opBitXor:
			r = a ^ b
		case opBitAnd:
			r = a & b
		case opNotEqual:
			r = boolValue(a != b)
		case opEqual:
			r = boolValue(a == b)
		case opLess:
			r = boolValue(a < b)
		case opGreater:
			r = boolValue(a > b)
		case opLessEqual:
			r = boolValue(a <= b)
		case opGreaterEqual:
			r = boolValue(a >= b)
		case opLeftShift:
			r = a << (uint32(b) & 31)
		case opRightShift:
			r = a >> (uint32(b) & 31)
		case opAdd:
			r = a + b
		case opSubtract:
			r = a - b
		case opModulo, opDivide:
			if b == 0 {
				return evalResult{message: "division by zero in preprocessor expression"}, false
			}
			if tok.op == opModulo {
				r = a % b
			} else {
				r = a / b
			}
		case opMultiply:
			r = a * b
		}
		stack[len(stack)-1] = r
	}

	if len(stack) != 1 {
		return invalid, false
	}
	return evalResult{result: stack[0]}, true
}
