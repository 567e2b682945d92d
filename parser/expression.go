package parser

import (
	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// precedences of the binary and ternary operators, lowest first.
var precedences = map[lexer.TokenKind]int{
	lexer.TokenQuestion:           1,
	lexer.TokenPipePipe:           2,
	lexer.TokenAmpersandAmpersand: 3,
	lexer.TokenPipe:               4,
	lexer.TokenCaret:              5,
	lexer.TokenAmpersand:          6,
	lexer.TokenEqualEqual:         7,
	lexer.TokenExclaimEqual:       7,
	lexer.TokenLess:               8,
	lexer.TokenGreater:            8,
	lexer.TokenLessEqual:          8,
	lexer.TokenGreaterEqual:       8,
	lexer.TokenLessLess:           9,
	lexer.TokenGreaterGreater:     9,
	lexer.TokenPlus:               10,
	lexer.TokenMinus:              10,
	lexer.TokenStar:               11,
	lexer.TokenSlash:              11,
	lexer.TokenPercent:            11,
}

// assignmentOps maps each assignment token to the binary operator it
// applies, or TokenEqual for plain assignment.
var assignmentOps = map[lexer.TokenKind]lexer.TokenKind{
	lexer.TokenEqual:               lexer.TokenEqual,
	lexer.TokenPercentEqual:        lexer.TokenPercent,
	lexer.TokenAmpersandEqual:      lexer.TokenAmpersand,
	lexer.TokenStarEqual:           lexer.TokenStar,
	lexer.TokenPlusEqual:           lexer.TokenPlus,
	lexer.TokenMinusEqual:          lexer.TokenMinus,
	lexer.TokenSlashEqual:          lexer.TokenSlash,
	lexer.TokenLessLessEqual:       lexer.TokenLessLess,
	lexer.TokenGreaterGreaterEqual: lexer.TokenGreaterGreater,
	lexer.TokenCaretEqual:          lexer.TokenCaret,
	lexer.TokenPipeEqual:           lexer.TokenPipe,
}

func (p *Parser) acceptUnaryOp() bool {
	switch p.next.Kind {
	case lexer.TokenExclaim, lexer.TokenPlus, lexer.TokenMinus, lexer.TokenTilde, lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		p.consume()
		return true
	}
	return false
}

func (p *Parser) acceptPostfixOp() bool {
	switch p.next.Kind {
	case lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		p.consume()
		return true
	}
	return false
}

// incrementOp maps ++ and -- to the arithmetic operator they apply.
func incrementOp(op lexer.TokenKind) lexer.TokenKind {
	if op == lexer.TokenPlusPlus {
		return lexer.TokenPlus
	}
	return lexer.TokenMinus
}

// one returns a constant with every component of t set to one.
func one(t fx.Type) fx.Constant {
	var c fx.Constant
	for i := 0; i < int(t.Components()); i++ {
		if t.IsFloatingPoint() {
			c.SetFloat(i, 1)
		} else {
			c.SetUint(i, 1)
		}
	}
	return c
}

func isBasic(t fx.Type) bool {
	return t.IsScalar() || t.IsVector() || t.IsMatrix()
}

func (p *Parser) warnTruncation(exp *fx.Expression, t fx.Type) {
	if exp.Type.Components() > t.Components() {
		p.warning(exp.Location, 3206, "implicit truncation of vector type")
	}
}

// parseExpression reads a comma separated sequence and keeps the last value.
func (p *Parser) parseExpression(exp *fx.Expression) bool {
	if !p.parseExpressionAssignment(exp) {
		return false
	}
	for p.accept(lexer.TokenComma) {
		if !p.parseExpressionAssignment(exp) {
			return false
		}
	}
	return true
}

func (p *Parser) parseExpressionUnary(exp *fx.Expression) bool {
	loc := p.next.Location

	switch {
	case p.acceptUnaryOp():
		if !p.parsePrefix(exp, p.tok.Kind, loc) {
			return false
		}

	case p.accept(lexer.TokenParenOpen):
		// This backup may be replaced by acceptTypeClass, but both point at
		// the token after the parenthesis.
		p.backup()

		var cast fx.Type
		if p.acceptTypeClass(&cast) {
			if !p.peek(lexer.TokenParenOpen) {
				if !p.expect(lexer.TokenParenClose) || !p.parseExpressionUnary(exp) {
					return false
				}
				if exp.Type.Equal(cast) {
					return true
				}
				if fx.Rank(exp.Type, cast) == 0 {
					p.error(loc, 3017, "cannot convert these types (from %s to %s)", exp.Type.Description(), cast.Description())
					return false
				}
				exp.AddCast(cast)
				return true
			}
			// A constructor call such as (float2(1, 2)).
			p.restore()
		}

		if !p.parseExpression(exp) || !p.expect(lexer.TokenParenClose) {
			return false
		}

	case p.accept(lexer.TokenBraceOpen):
		return p.parseInitializerList(exp, loc)

	case p.accept(lexer.TokenTrueLiteral):
		exp.ResetToBool(loc, true)
	case p.accept(lexer.TokenFalseLiteral):
		exp.ResetToBool(loc, false)
	case p.accept(lexer.TokenIntLiteral):
		exp.ResetToInt(loc, p.tok.Int)
	case p.accept(lexer.TokenUintLiteral):
		exp.ResetToUint(loc, p.tok.Uint)
	case p.accept(lexer.TokenFloatLiteral):
		exp.ResetToFloat(loc, p.tok.Float)
	case p.accept(lexer.TokenDoubleLiteral):
		p.warning(loc, 5000, "double literal truncated to float literal")
		exp.ResetToFloat(loc, float32(p.tok.Double))
	case p.accept(lexer.TokenStringLiteral):
		value := p.tok.Literal
		for p.accept(lexer.TokenStringLiteral) {
			value += p.tok.Literal
		}
		exp.ResetToString(loc, value)

	default:
		var t fx.Type
		if p.acceptTypeClass(&t) {
			if !p.parseConstructor(exp, t, loc) {
				return false
			}
		} else if !p.parseIdentifier(exp, loc) {
			return false
		}
	}

	return p.parsePostfix(exp)
}

func (p *Parser) parsePrefix(exp *fx.Expression, op lexer.TokenKind, loc lexer.Location) bool {
	if !p.parseExpressionUnary(exp) {
		return false
	}
	if !isBasic(exp.Type) {
		p.error(exp.Location, 3022, "scalar, vector, or matrix expected")
		return false
	}

	switch op {
	case lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		if exp.Type.Has(fx.QualifierConst) || exp.Type.Has(fx.QualifierUniform) || !exp.IsLvalue {
			p.error(loc, 3025, "l-value specifies const object")
			return false
		}
		value := p.cg.EmitLoad(exp, false)
		result := p.cg.EmitBinaryOp(loc, incrementOp(op), exp.Type, exp.Type, value, p.cg.EmitConstant(exp.Type, one(exp.Type)))
		p.cg.EmitStore(exp, result)
		// The incremented value stays reachable through the variable.
		return true

	case lexer.TokenPlus:
		return true

	case lexer.TokenTilde:
		if !exp.Type.IsIntegral() {
			p.error(exp.Location, 3082, "int or unsigned int type required")
			return false
		}
	case lexer.TokenExclaim:
		if !exp.Type.IsBoolean() {
			exp.AddCast(fx.Matrix(fx.TypeBool, exp.Type.Rows, exp.Type.Cols))
		}
	}

	if !exp.FoldUnary(op) {
		value := p.cg.EmitLoad(exp, false)
		result := p.cg.EmitUnaryOp(loc, op, exp.Type, value)
		exp.ResetToRvalue(loc, result, exp.Type)
	}
	return true
}

func (p *Parser) parseInitializerList(exp *fx.Expression, loc lexer.Location) bool {
	constant := true
	var elements []fx.Expression
	composite := fx.Scalar(fx.TypeVoid)

	for !p.peek(lexer.TokenBraceClose) {
		if len(elements) > 0 && !p.expect(lexer.TokenComma) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
		// A trailing comma is allowed.
		if p.peek(lexer.TokenBraceClose) {
			break
		}

		var element fx.Expression
		if !p.parseExpressionAssignment(&element) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
		if element.Type.IsArray() {
			p.error(element.Location, 3119, "arrays cannot be multi-dimensional")
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
		if composite.Base != fx.TypeVoid && element.Type.Definition != composite.Definition {
			p.error(element.Location, 3017, "cannot convert these types (from %s to %s)", element.Type.Description(), composite.Description())
			return false
		}

		constant = constant && element.IsConstant
		if composite.Base == fx.TypeVoid {
			composite = element.Type
			composite.Qualifiers = 0
		} else {
			composite = mergeElement(composite, element.Type)
		}
		elements = append(elements, element)
	}

	if constant {
		var data fx.Constant
		for i := range elements {
			elements[i].AddCast(composite)
			data.Array = append(data.Array, elements[i].Constant)
		}
		composite.ArrayLength = len(elements)
		exp.ResetToConstant(loc, data, composite)
	} else {
		composite.ArrayLength = len(elements)
		for i := range elements {
			e := &elements[i]
			e.ResetToRvalue(e.Location, p.cg.EmitLoad(e, false), e.Type)
		}
		result := p.cg.EmitConstruct(loc, composite, elements)
		exp.ResetToRvalue(loc, result, composite)
	}

	return p.expect(lexer.TokenBraceClose)
}

// mergeElement combines the types of two initializer list elements. Struct
// elements keep their definition.
func mergeElement(a, b fx.Type) fx.Type {
	if a.IsStruct() {
		return a
	}
	return fx.Merge(a, b)
}

func (p *Parser) parseConstructor(exp *fx.Expression, t fx.Type, loc lexer.Location) bool {
	if !p.expect(lexer.TokenParenOpen) {
		return false
	}
	if !t.IsNumeric() {
		p.error(loc, 3037, "constructors only defined for numeric base types")
		return false
	}
	if p.accept(lexer.TokenParenClose) {
		p.error(loc, 3014, "incorrect number of arguments to numeric-type constructor")
		return false
	}

	constant := true
	components := uint32(0)
	var args []fx.Expression

	for !p.peek(lexer.TokenParenClose) {
		if len(args) > 0 && !p.expect(lexer.TokenComma) {
			return false
		}
		var arg fx.Expression
		if !p.parseExpressionAssignment(&arg) {
			return false
		}
		if !arg.Type.IsNumeric() {
			p.error(arg.Location, 3017, "cannot convert non-numeric types")
			return false
		}
		constant = constant && arg.IsConstant
		components += arg.Type.Components()
		args = append(args, arg)
	}

	if !p.expect(lexer.TokenParenClose) {
		return false
	}
	if components != t.Components() {
		p.error(loc, 3014, "incorrect number of arguments to numeric-type constructor")
		return false
	}

	switch {
	case constant:
		var data fx.Constant
		i := 0
		for k := range args {
			arg := &args[k]
			arg.AddCast(fx.Matrix(t.Base, arg.Type.Rows, arg.Type.Cols))
			for c := 0; c < int(arg.Type.Components()); c++ {
				data.Lanes[i] = arg.Constant.Lanes[c]
				i++
			}
		}
		exp.ResetToConstant(loc, data, t)

	case len(args) > 1:
		// Flatten every argument to scalars of the target base type.
		var scalars []fx.Expression
		for _, arg := range args {
			rows, cols := max(arg.Type.Rows, 1), max(arg.Type.Cols, 1)
			for r := uint32(0); r < rows; r++ {
				for c := uint32(0); c < cols; c++ {
					scalar := arg
					scalar.Chain = append([]fx.Operation(nil), arg.Chain...)
					switch {
					case arg.Type.IsMatrix():
						scalar.AddConstantIndex(r)
						scalar.AddConstantIndex(c)
					case arg.Type.IsVector():
						scalar.AddConstantIndex(r)
					}
					st := scalar.Type
					st.Base = t.Base
					scalar.AddCast(st)
					scalar.ResetToRvalue(scalar.Location, p.cg.EmitLoad(&scalar, false), st)
					scalars = append(scalars, scalar)
				}
			}
		}
		result := p.cg.EmitConstruct(loc, t, scalars)
		exp.ResetToRvalue(loc, result, t)

	default:
		*exp = args[0]
		exp.AddCast(t)
	}
	return true
}

func (p *Parser) parseIdentifier(exp *fx.Expression, loc lexer.Location) bool {
	identifier, scope, sym, ok := p.acceptSymbol()
	if !ok {
		return false
	}

	if p.accept(lexer.TokenParenOpen) {
		return p.parseCall(exp, identifier, scope, sym, loc)
	}

	switch sym.Kind {
	case SymbolInvalid:
		p.error(loc, 3004, "undeclared identifier '%s'", identifier)
		return false
	case SymbolVariable:
		exp.ResetToLvalue(loc, sym.ID, sym.Type)
	case SymbolConstant:
		exp.ResetToConstant(loc, sym.Constant, sym.Type)
	default:
		p.error(loc, 3005, "identifier '%s' represents a function, not a variable", identifier)
		return false
	}
	return true
}

func (p *Parser) parseCall(exp *fx.Expression, identifier string, scope Scope, sym Symbol, loc lexer.Location) bool {
	if sym.Kind != SymbolInvalid && sym.Kind != SymbolFunction {
		p.error(loc, 3005, "identifier '%s' represents a variable, not a function", identifier)
		return false
	}

	var args []fx.Expression
	for !p.peek(lexer.TokenParenClose) {
		if len(args) > 0 && !p.expect(lexer.TokenComma) {
			return false
		}
		var arg fx.Expression
		if !p.parseExpressionAssignment(&arg) {
			return false
		}
		args = append(args, arg)
	}
	if !p.expect(lexer.TokenParenClose) {
		return false
	}

	if !p.cg.IsInFunction() {
		p.error(loc, 3005, "invalid function call outside of a function")
		return false
	}

	// A placeholder from error recovery already produced a diagnostic.
	if sym.Kind == SymbolFunction && sym.ID == fx.InvalidID {
		return false
	}

	undeclared := sym.Kind == SymbolInvalid
	resolved, ok, ambiguous := p.symbols.ResolveCall(identifier, args, scope)
	if !ok {
		switch {
		case undeclared:
			p.error(loc, 3004, "undeclared identifier or no matching intrinsic overload for '%s'", identifier)
		case ambiguous:
			p.error(loc, 3067, "ambiguous function call to '%s'", identifier)
		default:
			p.error(loc, 3013, "no matching function overload for '%s'", identifier)
		}
		return false
	}

	params := make([]fx.Expression, len(args))
	for i := range args {
		arg := &args[i]
		paramType := resolved.Function.Parameters[i].Type

		if paramType.Has(fx.QualifierOut) && (arg.Type.Has(fx.QualifierConst) || arg.Type.Has(fx.QualifierUniform) || !arg.IsLvalue) {
			p.error(arg.Location, 3025, "l-value specifies const object for an 'out' parameter")
			return false
		}
		p.warnTruncation(arg, paramType)
		arg.AddCast(paramType)

		switch {
		case paramType.IsSampler():
			// Samplers are passed through unchanged.
			params[i] = *arg
		case resolved.Kind == SymbolFunction || paramType.Has(fx.QualifierOut):
			// User functions take every parameter by reference, intrinsics
			// only their out parameters.
			temp := p.cg.DefineVariable(arg.Location, paramType, "", false, 0)
			params[i].ResetToLvalue(arg.Location, temp, paramType)
		default:
			params[i].ResetToRvalue(arg.Location, p.cg.EmitLoad(arg, false), paramType)
			// Back ends may fold constant arguments into the instruction.
			params[i].IsConstant = arg.IsConstant
		}
	}

	for i := range args {
		if params[i].IsLvalue && params[i].Type.Has(fx.QualifierIn) && !params[i].Type.IsSampler() {
			p.cg.EmitStore(&params[i], p.cg.EmitLoad(&args[i], false))
		}
	}

	var result fx.ID
	if resolved.Kind == SymbolFunction {
		result = p.cg.EmitCall(loc, resolved.ID, resolved.Type, params)
	} else {
		result = p.cg.EmitCallIntrinsic(loc, resolved.Intrinsic, resolved.Type, params)
	}
	exp.ResetToRvalue(loc, result, resolved.Type)

	for i := range args {
		if params[i].IsLvalue && params[i].Type.Has(fx.QualifierOut) && !params[i].Type.IsSampler() {
			p.cg.EmitStore(&args[i], p.cg.EmitLoad(&params[i], false))
		}
	}
	return true
}

func (p *Parser) parsePostfix(exp *fx.Expression) bool {
	for !p.peek(lexer.TokenEOF) {
		loc := p.next.Location

		switch {
		case p.acceptPostfixOp():
			op := p.tok.Kind
			if !isBasic(exp.Type) {
				p.error(exp.Location, 3022, "scalar, vector, or matrix expected")
				return false
			}
			if exp.Type.Has(fx.QualifierConst) || exp.Type.Has(fx.QualifierUniform) || !exp.IsLvalue {
				p.error(exp.Location, 3025, "l-value specifies const object")
				return false
			}
			value := p.cg.EmitLoad(exp, true)
			result := p.cg.EmitBinaryOp(loc, incrementOp(op), exp.Type, exp.Type, value, p.cg.EmitConstant(exp.Type, one(exp.Type)))
			p.cg.EmitStore(exp, result)
			exp.ResetToRvalue(loc, value, exp.Type)

		case p.accept(lexer.TokenDot):
			if !p.parseMember(exp) {
				return false
			}

		case p.accept(lexer.TokenBracketOpen):
			if !p.parseIndex(exp) {
				return false
			}

		default:
			return true
		}
	}
	return true
}

var swizzleLanes = map[byte]struct {
	lane int8
	set  int
}{
	'x': {0, 0}, 'y': {1, 0}, 'z': {2, 0}, 'w': {3, 0},
	'r': {0, 1}, 'g': {1, 1}, 'b': {2, 1}, 'a': {3, 1},
	's': {0, 2}, 't': {1, 2}, 'p': {2, 2}, 'q': {3, 2},
}

// makeReadOnly marks a derived expression as not assignable. Members of
// uniforms lose the uniform qualifier so they load like plain values.
func makeReadOnly(exp *fx.Expression, duplicated bool) {
	if duplicated || exp.Type.Has(fx.QualifierUniform) {
		exp.Type.Qualifiers = (exp.Type.Qualifiers | fx.QualifierConst) &^ fx.QualifierUniform
	}
}

func hasDuplicate(offsets []int8, n int) bool {
	for k := 0; k < n; k++ {
		if offsets[k] == offsets[n] {
			return true
		}
	}
	return false
}

func (p *Parser) parseMember(exp *fx.Expression) bool {
	if !p.expect(lexer.TokenIdentifier) {
		return false
	}
	loc := p.tok.Location
	subscript := p.tok.Literal

	if p.accept(lexer.TokenParenOpen) {
		if !exp.Type.IsStruct() || exp.Type.IsArray() {
			p.error(loc, 3087, "object does not have methods")
		} else {
			p.error(loc, 3088, "structures do not have methods")
		}
		return false
	}

	switch t := exp.Type; {
	case t.IsArray():
		p.error(loc, 3018, "invalid subscript on array")
		return false

	case t.IsVector():
		if len(subscript) > 4 {
			p.error(loc, 3018, "invalid subscript '%s', swizzle too long", subscript)
			return false
		}
		offsets := [4]int8{-1, -1, -1, -1}
		duplicated := false
		set := -1
		for i := 0; i < len(subscript); i++ {
			lane, ok := swizzleLanes[subscript[i]]
			if !ok {
				p.error(loc, 3018, "invalid subscript '%s'", subscript)
				return false
			}
			if set >= 0 && lane.set != set {
				p.error(loc, 3018, "invalid subscript '%s', mixed swizzle sets", subscript)
				return false
			}
			if uint32(lane.lane) >= t.Rows {
				p.error(loc, 3018, "invalid subscript '%s', swizzle out of range", subscript)
				return false
			}
			set = lane.set
			offsets[i] = lane.lane
			duplicated = duplicated || hasDuplicate(offsets[:], i)
		}
		exp.AddSwizzle(offsets, uint32(len(subscript)))
		makeReadOnly(exp, duplicated)

	case t.IsMatrix():
		if len(subscript) < 3 {
			p.error(loc, 3018, "invalid subscript '%s'", subscript)
			return false
		}
		// _m00 is zero based, _11 is one based.
		set := 0
		if subscript[1] == 'm' {
			set = 1
		}
		base := byte(1 - set)
		step := 3 + set
		if len(subscript)%step != 0 {
			p.error(loc, 3018, "invalid subscript '%s'", subscript)
			return false
		}

		offsets := [4]int8{-1, -1, -1, -1}
		duplicated := false
		j := 0
		for i := 0; i < len(subscript); i, j = i+step, j+1 {
			r, c := subscript[i+set+1], subscript[i+set+2]
			if subscript[i] != '_' || r < '0'+base || r > '3'+base || c < '0'+base || c > '3'+base {
				p.error(loc, 3018, "invalid subscript '%s'", subscript)
				return false
			}
			if set == 1 && subscript[i+1] != 'm' {
				p.error(loc, 3018, "invalid subscript '%s', mixed swizzle sets", subscript)
				return false
			}
			row, col := uint32(r-'0'-base), uint32(c-'0'-base)
			if row >= t.Rows || col >= t.Cols || j > 3 {
				p.error(loc, 3018, "invalid subscript '%s', swizzle out of range", subscript)
				return false
			}
			offsets[j] = int8(row*4 + col)
			duplicated = duplicated || hasDuplicate(offsets[:], j)
		}
		exp.AddSwizzle(offsets, uint32(j))
		makeReadOnly(exp, duplicated)

	case t.IsStruct():
		info := p.cg.FindStruct(t.Definition)
		index := -1
		if info != nil {
			for i := range info.Members {
				if info.Members[i].Name == subscript {
					index = i
					break
				}
			}
		}
		if index < 0 {
			p.error(loc, 3018, "invalid subscript '%s'", subscript)
			return false
		}
		exp.AddMember(uint32(index), info.Members[index].Type)
		makeReadOnly(exp, false)

	case t.IsScalar():
		if len(subscript) > 4 {
			p.error(loc, 3018, "invalid subscript '%s', swizzle too long", subscript)
			return false
		}
		for i := 0; i < len(subscript); i++ {
			if c := subscript[i]; c != 'x' && c != 'r' && c != 's' {
				p.error(loc, 3018, "invalid subscript '%s'", subscript)
				return false
			}
		}
		target := t
		target.Rows = uint32(len(subscript))
		exp.AddCast(target)

	default:
		p.error(loc, 3018, "invalid subscript '%s'", subscript)
		return false
	}
	return true
}

func (p *Parser) parseIndex(exp *fx.Expression) bool {
	if !exp.Type.IsArray() && !exp.Type.IsVector() && !exp.Type.IsMatrix() {
		p.error(p.tok.Location, 3121, "array, matrix, vector, or indexable object type expected in index expression")
		return false
	}

	var index fx.Expression
	if !p.parseExpression(&index) || !p.expect(lexer.TokenBracketClose) {
		return false
	}
	if !index.Type.IsScalar() || !index.Type.IsIntegral() {
		p.error(index.Location, 3120, "invalid type for index - index must be an integer scalar")
		return false
	}

	if index.IsConstant {
		i := index.Constant.Uint(0)
		if exp.Type.ArrayLength > 0 && i >= uint32(exp.Type.ArrayLength) {
			p.error(index.Location, 3504, "array index out of bounds")
			return false
		}
		exp.AddConstantIndex(i)
		return true
	}

	if exp.IsConstant {
		// Dynamic indexing needs addressable storage.
		temp := p.cg.DefineVariable(exp.Location, exp.Type, "", false, p.cg.EmitConstant(exp.Type, exp.Constant))
		exp.ResetToLvalue(exp.Location, temp, exp.Type)
	}
	exp.AddDynamicIndex(p.cg.EmitLoad(&index, false))
	return true
}

// parseExpressionMultary reads binary and ternary operators whose
// precedence is higher than left.
func (p *Parser) parseExpressionMultary(lhs *fx.Expression, left int) bool {
	if !p.parseExpressionUnary(lhs) {
		return false
	}

	for {
		right, ok := precedences[p.next.Kind]
		if !ok || right <= left {
			return true
		}
		p.consume()
		op := p.tok.Kind

		var success bool
		if op == lexer.TokenQuestion {
			success = p.parseTernary(lhs)
		} else {
			success = p.parseBinary(lhs, op, right)
		}
		if !success {
			return false
		}
	}
}

func isLogical(op lexer.TokenKind) bool {
	return op == lexer.TokenAmpersandAmpersand || op == lexer.TokenPipePipe
}

func (p *Parser) parseBinary(lhs *fx.Expression, op lexer.TokenKind, right int) bool {
	// Short circuit the right operand of a scalar && or || by parsing it
	// into its own block that is only entered when needed.
	shortCircuit := isLogical(op) && !p.opts.NoShortCircuit && lhs.Type.IsScalar() && p.cg.IsInFunction()
	var lhsBlock, rhsBlock, mergeBlock fx.ID
	if shortCircuit {
		lhsBlock = p.cg.SetBlock(0)
		rhsBlock = p.cg.CreateBlock()
		mergeBlock = p.cg.CreateBlock()
		p.cg.EnterBlock(rhsBlock)
	}

	var rhs fx.Expression
	if !p.parseExpressionMultary(&rhs, right) {
		return false
	}

	t := fx.Merge(lhs.Type, rhs.Type)
	boolResult := false

	switch op {
	case lexer.TokenEqualEqual, lexer.TokenExclaimEqual:
		boolResult = true
		if lhs.Type.IsArray() || rhs.Type.IsArray() || lhs.Type.Definition != rhs.Type.Definition {
			p.error(rhs.Location, 3020, "type mismatch")
			return false
		}
	case lexer.TokenAmpersand, lexer.TokenPipe, lexer.TokenCaret:
		if !lhs.Type.IsIntegral() {
			p.error(lhs.Location, 3082, "int or unsigned int type required")
			return false
		}
		if !rhs.Type.IsIntegral() {
			p.error(rhs.Location, 3082, "int or unsigned int type required")
			return false
		}
	default:
		if isLogical(op) {
			t.Base = fx.TypeBool
		}
		switch op {
		case lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater, lexer.TokenGreaterEqual:
			boolResult = true
		}
		if !isBasic(lhs.Type) {
			p.error(lhs.Location, 3022, "scalar, vector, or matrix expected")
			return false
		}
		if !isBasic(rhs.Type) {
			p.error(rhs.Location, 3022, "scalar, vector, or matrix expected")
			return false
		}
	}

	p.warnTruncation(lhs, t)
	p.warnTruncation(&rhs, t)

	condition := *lhs
	condition.Chain = append([]fx.Operation(nil), lhs.Chain...)
	lhs.AddCast(t)
	rhs.AddCast(t)

	if shortCircuit {
		p.cg.SetBlock(lhsBlock)
	}

	if rhs.IsConstant && lhs.FoldBinary(op, &rhs.Constant) {
		return true
	}

	lhsValue := p.cg.EmitLoad(lhs, false)

	if shortCircuit {
		// The right operand only runs when lhs is true for && and false
		// for ||; otherwise the result is lhs itself.
		condition.AddCast(fx.Scalar(fx.TypeBool))
		condValue := p.cg.EmitLoad(&condition, false)
		if op == lexer.TokenPipePipe {
			condValue = p.cg.EmitUnaryOp(lhs.Location, lexer.TokenExclaim, fx.Scalar(fx.TypeBool), condValue)
		}
		p.cg.LeaveBlockAndBranchConditional(condValue, rhsBlock, mergeBlock)

		p.cg.SetBlock(rhsBlock)
		rhsValue := p.cg.EmitLoad(&rhs, false)
		rhsEnd := p.cg.LeaveBlockAndBranch(mergeBlock, fx.FlowNone)

		p.cg.EnterBlock(mergeBlock)
		result := p.cg.EmitPhi(lhs.Location, condValue, lhsBlock, rhsValue, rhsEnd, lhsValue, lhsBlock, t)
		lhs.ResetToRvalue(lhs.Location, result, t)
		return true
	}

	rhsValue := p.cg.EmitLoad(&rhs, false)
	resultType := t
	if boolResult {
		resultType = fx.Matrix(fx.TypeBool, t.Rows, t.Cols)
	}
	result := p.cg.EmitBinaryOp(lhs.Location, op, resultType, lhs.Type, lhsValue, rhsValue)
	lhs.ResetToRvalue(lhs.Location, result, resultType)
	return true
}

func (p *Parser) parseTernary(cond *fx.Expression) bool {
	if !cond.Type.IsScalar() && !cond.Type.IsVector() {
		p.error(cond.Location, 3022, "boolean or vector expression expected")
		return false
	}

	shortCircuit := !p.opts.NoShortCircuit && cond.Type.IsScalar() && p.cg.IsInFunction()
	var mergeBlock, condBlock, trueBlock, falseBlock fx.ID
	if shortCircuit {
		mergeBlock = p.cg.CreateBlock()
		condBlock = p.cg.SetBlock(0)
		trueBlock = p.cg.CreateBlock()
		falseBlock = p.cg.CreateBlock()
		p.cg.EnterBlock(trueBlock)
	}

	var trueExp fx.Expression
	if !p.parseExpression(&trueExp) || !p.expect(lexer.TokenColon) {
		return false
	}

	if shortCircuit {
		p.cg.SetBlock(0)
		p.cg.EnterBlock(falseBlock)
	}

	var falseExp fx.Expression
	if !p.parseExpressionAssignment(&falseExp) {
		return false
	}

	if cond.Type.Rows != trueExp.Type.Rows && cond.Type.Cols != trueExp.Type.Cols {
		p.error(cond.Location, 3020, "dimension of conditional does not match value")
		return false
	}
	if trueExp.Type.ArrayLength != falseExp.Type.ArrayLength || trueExp.Type.Definition != falseExp.Type.Definition {
		p.error(falseExp.Location, 3020, "type mismatch between conditional values")
		return false
	}

	t := fx.Merge(trueExp.Type, falseExp.Type)
	p.warnTruncation(&trueExp, t)
	p.warnTruncation(&falseExp, t)
	trueExp.AddCast(t)
	falseExp.AddCast(t)

	if !shortCircuit {
		cond.AddCast(fx.Vector(fx.TypeBool, t.Rows))
		condValue := p.cg.EmitLoad(cond, false)
		trueValue := p.cg.EmitLoad(&trueExp, false)
		falseValue := p.cg.EmitLoad(&falseExp, false)
		result := p.cg.EmitTernaryOp(cond.Location, lexer.TokenQuestion, t, condValue, trueValue, falseValue)
		cond.ResetToRvalue(cond.Location, result, t)
		return true
	}

	p.cg.SetBlock(condBlock)
	cond.AddCast(fx.Scalar(fx.TypeBool))
	condValue := p.cg.EmitLoad(cond, false)
	p.cg.LeaveBlockAndBranchConditional(condValue, trueBlock, falseBlock)

	p.cg.SetBlock(trueBlock)
	trueValue := p.cg.EmitLoad(&trueExp, false)
	trueEnd := p.cg.LeaveBlockAndBranch(mergeBlock, fx.FlowNone)

	p.cg.SetBlock(falseBlock)
	falseValue := p.cg.EmitLoad(&falseExp, false)
	falseEnd := p.cg.LeaveBlockAndBranch(mergeBlock, fx.FlowNone)

	p.cg.EnterBlock(mergeBlock)
	result := p.cg.EmitPhi(cond.Location, condValue, condBlock, trueValue, trueEnd, falseValue, falseEnd, t)
	cond.ResetToRvalue(cond.Location, result, t)
	return true
}

func (p *Parser) parseExpressionAssignment(lhs *fx.Expression) bool {
	if !p.parseExpressionMultary(lhs, 0) {
		return false
	}

	op, ok := assignmentOps[p.next.Kind]
	if !ok {
		return true
	}
	p.consume()

	// Assignments chain to the right, as in a = b = 0.
	var rhs fx.Expression
	if !p.parseExpressionAssignment(&rhs) {
		return false
	}

	if lhs.Type.Has(fx.QualifierConst) || lhs.Type.Has(fx.QualifierUniform) || !lhs.IsLvalue {
		p.error(lhs.Location, 3025, "l-value specifies const object")
		return false
	}
	if fx.Rank(lhs.Type, rhs.Type) == 0 {
		p.error(rhs.Location, 3020, "cannot convert these types (from %s to %s)", rhs.Type.Description(), lhs.Type.Description())
		return false
	}
	if !lhs.Type.IsIntegral() && (op == lexer.TokenAmpersand || op == lexer.TokenPipe || op == lexer.TokenCaret) {
		p.error(lhs.Location, 3082, "int or unsigned int type required")
		return false
	}

	p.warnTruncation(&rhs, lhs.Type)
	rhs.AddCast(lhs.Type)

	result := p.cg.EmitLoad(&rhs, false)
	if op != lexer.TokenEqual {
		value := p.cg.EmitLoad(lhs, false)
		result = p.cg.EmitBinaryOp(lhs.Location, op, lhs.Type, lhs.Type, value, result)
	}
	p.cg.EmitStore(lhs, result)

	lhs.ResetToRvalue(lhs.Location, result, lhs.Type)
	return true
}
