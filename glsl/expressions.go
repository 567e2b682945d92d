// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// declare starts a statement that initializes a new SSA value and returns
// its id.
func (c *Codegen) declare(loc lexer.Location, t fx.Type) (*strings.Builder, fx.ID) {
	id := c.MakeID()
	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "\t%s %s%s = ", c.typeName(t, typePlain), c.name(id), arraySuffix(t))
	c.declared[id] = true
	return code, id
}

func (c *Codegen) EmitUnaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, value fx.ID) fx.ID {
	code, id := c.declare(loc, t)

	switch op {
	case lexer.TokenMinus:
		code.WriteString("-")
	case lexer.TokenTilde:
		code.WriteString("~")
	case lexer.TokenExclaim:
		if t.IsVector() {
			code.WriteString("not")
		} else {
			code.WriteString("!bool")
		}
	default:
		panic("glsl: unexpected unary operator " + op.String())
	}

	fmt.Fprintf(code, "(%s);\n", c.name(value))
	return id
}

// binaryOperators maps operators, including their compound assignment
// forms, to GLSL infix syntax.
var binaryOperators = map[lexer.TokenKind]string{
	lexer.TokenPlus:                "+",
	lexer.TokenPlusPlus:            "+",
	lexer.TokenPlusEqual:           "+",
	lexer.TokenMinus:               "-",
	lexer.TokenMinusMinus:          "-",
	lexer.TokenMinusEqual:          "-",
	lexer.TokenStar:                "*",
	lexer.TokenStarEqual:           "*",
	lexer.TokenSlash:               "/",
	lexer.TokenSlashEqual:          "/",
	lexer.TokenPercent:             "%",
	lexer.TokenPercentEqual:        "%",
	lexer.TokenCaret:               "^",
	lexer.TokenCaretEqual:          "^",
	lexer.TokenPipe:                "|",
	lexer.TokenPipeEqual:           "|",
	lexer.TokenAmpersand:           "&",
	lexer.TokenAmpersandEqual:      "&",
	lexer.TokenLessLess:            "<<",
	lexer.TokenLessLessEqual:       "<<",
	lexer.TokenGreaterGreater:      ">>",
	lexer.TokenGreaterGreaterEqual: ">>",
	lexer.TokenPipePipe:            "||",
	lexer.TokenAmpersandAmpersand:  "&&",
	lexer.TokenLess:                "<",
	lexer.TokenLessEqual:           "<=",
	lexer.TokenGreater:             ">",
	lexer.TokenGreaterEqual:        ">=",
	lexer.TokenEqualEqual:          "==",
	lexer.TokenExclaimEqual:        "!=",
}

// vectorRelations are the built-ins GLSL uses for component-wise
// comparisons, since its relational operators only take scalars.
var vectorRelations = map[string]string{
	"<":  "lessThan",
	"<=": "lessThanEqual",
	">":  "greaterThan",
	">=": "greaterThanEqual",
	"==": "equal",
	"!=": "notEqual",
}

func (c *Codegen) EmitBinaryOp(loc lexer.Location, op lexer.TokenKind, resultType, t fx.Type, lhs, rhs fx.ID) fx.ID {
	operator, ok := binaryOperators[op]
	if !ok {
		panic("glsl: unexpected binary operator " + op.String())
	}

	var function string
	switch {
	case operator == "*" && t.IsMatrix():
		function = "matrixCompMult"
	case operator == "%" && t.IsFloatingPoint():
		function = "fmodHLSL"
		c.usesFmod = true
	case operator == "||" && t.IsVector():
		function = "compOr"
		c.usesCompOr = true
	case operator == "&&" && t.IsVector():
		function = "compAnd"
		c.usesCompAnd = true
	case t.IsVector():
		function = vectorRelations[operator]
	}

	code, id := c.declare(loc, resultType)
	if function != "" {
		fmt.Fprintf(code, "%s(%s, %s);\n", function, c.name(lhs), c.name(rhs))
	} else {
		fmt.Fprintf(code, "%s %s %s;\n", c.name(lhs), operator, c.name(rhs))
	}
	return id
}

func (c *Codegen) EmitTernaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, cond, trueValue, falseValue fx.ID) fx.ID {
	if op != lexer.TokenQuestion {
		panic("glsl: unexpected ternary operator " + op.String())
	}

	code, id := c.declare(loc, t)
	if t.IsVector() {
		// The conditional operator needs a scalar condition.
		fmt.Fprintf(code, "compCond(%s, %s, %s);\n", c.name(cond), c.name(trueValue), c.name(falseValue))
		c.usesCompCond = true
	} else {
		fmt.Fprintf(code, "%s ? %s : %s;\n", c.name(cond), c.name(trueValue), c.name(falseValue))
	}
	return id
}

func (c *Codegen) argumentList(args []fx.Expression) string {
	names := make([]string, len(args))
	for i := range args {
		names[i] = c.name(args[i].Base)
	}
	return strings.Join(names, ", ")
}

func (c *Codegen) EmitCall(loc lexer.Location, fn fx.ID, resultType fx.Type, args []fx.Expression) fx.ID {
	if resultType.IsVoid() {
		code := c.code()
		c.writeLocation(code, loc)
		fmt.Fprintf(code, "\t%s(%s);\n", c.name(fn), c.argumentList(args))
		return c.MakeID()
	}

	code, id := c.declare(loc, resultType)
	fmt.Fprintf(code, "%s(%s);\n", c.name(fn), c.argumentList(args))
	return id
}

func (c *Codegen) EmitConstruct(loc lexer.Location, t fx.Type, args []fx.Expression) fx.ID {
	code, id := c.declare(loc, t)
	fmt.Fprintf(code, "%s(%s);\n", c.constructorName(t), c.argumentList(args))
	return id
}

func (c *Codegen) EmitCallIntrinsic(loc lexer.Location, intrinsic fx.Intrinsic, resultType fx.Type, args []fx.Expression) fx.ID {
	names := make([]string, len(args))
	for i := range args {
		names[i] = c.name(args[i].Base)
	}

	if intrinsic == fx.IntrinsicFrexp {
		return c.emitFrexp(loc, resultType, args, names)
	}

	expr := c.intrinsic(intrinsic, resultType, args, names)
	if resultType.IsVoid() {
		code := c.code()
		c.writeLocation(code, loc)
		fmt.Fprintf(code, "\t%s;\n", expr)
		return c.MakeID()
	}

	code, id := c.declare(loc, resultType)
	code.WriteString(expr)
	code.WriteString(";\n")
	return id
}

// emitFrexp goes through an integer exponent, since the effect's exponent
// is a float.
func (c *Codegen) emitFrexp(loc lexer.Location, resultType fx.Type, args []fx.Expression, names []string) fx.ID {
	exponent := c.MakeID()
	code := c.code()
	fmt.Fprintf(code, "\t%s %s;\n", vectorName(fx.TypeInt, resultType.Rows), c.name(exponent))

	code, id := c.declare(loc, resultType)
	fmt.Fprintf(code, "frexp(%s, %s);\n", names[0], c.name(exponent))

	t := args[1].Type
	t.Qualifiers = 0
	fmt.Fprintf(code, "\t%s = %s(%s);\n", names[1], c.typeName(t, typePlain), c.name(exponent))
	return id
}

// simpleIntrinsics are a single GLSL built-in call with the arguments in
// order.
var simpleIntrinsics = map[fx.Intrinsic]string{
	fx.IntrinsicAbsInt:       "abs",
	fx.IntrinsicAbsFloat:     "abs",
	fx.IntrinsicAsin:         "asin",
	fx.IntrinsicAcos:         "acos",
	fx.IntrinsicAtan:         "atan",
	fx.IntrinsicAtan2:        "atan",
	fx.IntrinsicSin:          "sin",
	fx.IntrinsicSinh:         "sinh",
	fx.IntrinsicCos:          "cos",
	fx.IntrinsicCosh:         "cosh",
	fx.IntrinsicTan:          "tan",
	fx.IntrinsicTanh:         "tanh",
	fx.IntrinsicAsint:        "floatBitsToInt",
	fx.IntrinsicAsuint:       "floatBitsToUint",
	fx.IntrinsicAsfloatInt:   "intBitsToFloat",
	fx.IntrinsicAsfloatUint:  "uintBitsToFloat",
	fx.IntrinsicCeil:         "ceil",
	fx.IntrinsicFloor:        "floor",
	fx.IntrinsicClampInt:     "clamp",
	fx.IntrinsicClampUint:    "clamp",
	fx.IntrinsicClampFloat:   "clamp",
	fx.IntrinsicMad:          "fma",
	fx.IntrinsicPow:          "pow",
	fx.IntrinsicExp:          "exp",
	fx.IntrinsicExp2:         "exp2",
	fx.IntrinsicLog:          "log",
	fx.IntrinsicLog2:         "log2",
	fx.IntrinsicSignInt:      "sign",
	fx.IntrinsicSignFloat:    "sign",
	fx.IntrinsicSqrt:         "sqrt",
	fx.IntrinsicRsqrt:        "inversesqrt",
	fx.IntrinsicLerp:         "mix",
	fx.IntrinsicStep:         "step",
	fx.IntrinsicSmoothstep:   "smoothstep",
	fx.IntrinsicFrac:         "fract",
	fx.IntrinsicModf:         "modf",
	fx.IntrinsicTrunc:        "trunc",
	fx.IntrinsicRound:        "round",
	fx.IntrinsicMinInt:       "min",
	fx.IntrinsicMinFloat:     "min",
	fx.IntrinsicMaxInt:       "max",
	fx.IntrinsicMaxFloat:     "max",
	fx.IntrinsicDegrees:      "degrees",
	fx.IntrinsicRadians:      "radians",
	fx.IntrinsicDdx:          "dFdx",
	fx.IntrinsicDdy:          "dFdy",
	fx.IntrinsicFwidth:       "fwidth",
	fx.IntrinsicDot:          "dot",
	fx.IntrinsicCross:        "cross",
	fx.IntrinsicLength:       "length",
	fx.IntrinsicDistance:     "distance",
	fx.IntrinsicNormalize:    "normalize",
	fx.IntrinsicTranspose:    "transpose",
	fx.IntrinsicDeterminant:  "determinant",
	fx.IntrinsicReflect:      "reflect",
	fx.IntrinsicRefract:      "refract",
	fx.IntrinsicFaceforward:  "faceforward",
	fx.IntrinsicIsinf:        "isinf",
	fx.IntrinsicIsnan:        "isnan",
	fx.IntrinsicTex2D:        "texture",
	fx.IntrinsicTex2DOffset:  "textureOffset",
	fx.IntrinsicTex2DSizeLod: "textureSize",
}

// intrinsic returns the GLSL expression computing an intrinsic call.
func (c *Codegen) intrinsic(intrinsic fx.Intrinsic, resultType fx.Type, args []fx.Expression, a []string) string {
	if function, ok := simpleIntrinsics[intrinsic]; ok {
		return function + "(" + strings.Join(a, ", ") + ")"
	}

	if component, offset, ok := intrinsic.Gather(); ok {
		if offset {
			return fmt.Sprintf("textureGatherOffset(%s, %s, %s, %d)", a[0], a[1], a[2], component)
		}
		return fmt.Sprintf("textureGather(%s, %s, %d)", a[0], a[1], component)
	}

	switch intrinsic {
	case fx.IntrinsicAllScalar, fx.IntrinsicAnyScalar:
		return "bool(" + a[0] + ")"
	case fx.IntrinsicAllVector, fx.IntrinsicAnyVector:
		function := "all"
		if intrinsic == fx.IntrinsicAnyVector {
			function = "any"
		}
		if args[0].Type.IsBoolean() {
			return function + "(" + a[0] + ")"
		}
		return fmt.Sprintf("%s(%s(%s))", function, vectorName(fx.TypeBool, args[0].Type.Rows), a[0])
	case fx.IntrinsicSincos:
		return fmt.Sprintf("%[2]s = sin(%[1]s), %[3]s = cos(%[1]s)", a[0], a[1], a[2])
	case fx.IntrinsicSaturate:
		return "clamp(" + a[0] + ", 0.0, 1.0)"
	case fx.IntrinsicRcp:
		return "(1.0 / " + a[0] + ")"
	case fx.IntrinsicLog10:
		return "(log2(" + a[0] + ") / log2(10.0))"
	case fx.IntrinsicLdexp:
		return fmt.Sprintf("ldexp(%s, %s(%s))", a[0], vectorName(fx.TypeInt, resultType.Rows), a[1])

	case fx.IntrinsicMulScalarVector, fx.IntrinsicMulVectorScalar, fx.IntrinsicMulScalarMatrix, fx.IntrinsicMulMatrixScalar:
		return "(" + a[0] + " * " + a[1] + ")"
	case fx.IntrinsicMulVectorMatrix, fx.IntrinsicMulMatrixVector, fx.IntrinsicMulMatrixMatrix:
		// Matrices are stored transposed, which swaps the operands.
		return "(" + a[1] + " * " + a[0] + ")"

	case fx.IntrinsicTex2DLod:
		return fmt.Sprintf("textureLod(%[1]s, %[2]s.xy, %[2]s.w)", a[0], a[1])
	case fx.IntrinsicTex2DLodOffset:
		return fmt.Sprintf("textureLodOffset(%[1]s, %[2]s.xy, %[2]s.w, %[3]s)", a[0], a[1], a[2])
	case fx.IntrinsicTex2DFetch:
		return fmt.Sprintf("texelFetch(%s, %s, 0)", a[0], a[1])
	case fx.IntrinsicTex2DFetchLod:
		return fmt.Sprintf("texelFetch(%s, %s, %s)", a[0], a[1], a[2])
	case fx.IntrinsicTex2DSize:
		return fmt.Sprintf("textureSize(%s, 0)", a[0])
	}

	panic(fmt.Sprintf("glsl: unknown intrinsic %d", intrinsic))
}
