// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// declare starts a statement that initializes a new SSA value and returns
// its id.
func (c *Codegen) declare(loc lexer.Location, t fx.Type) (*strings.Builder, fx.ID) {
	t.Qualifiers = 0
	id := c.MakeID()
	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "\t%s %s%s = ", c.typeName(t, typePlain), c.name(id), arraySuffix(t))
	c.declared[id] = true
	return code, id
}

func (c *Codegen) EmitUnaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, value fx.ID) fx.ID {
	var operator string
	switch op {
	case lexer.TokenMinus:
		operator = "-"
	case lexer.TokenTilde:
		operator = "~"
	case lexer.TokenExclaim:
		operator = "!"
	default:
		panic("hlsl: unexpected unary operator " + op.String())
	}

	code, id := c.declare(loc, t)
	fmt.Fprintf(code, "%s%s;\n", operator, c.name(value))
	return id
}

// binaryOperators maps operators, including their compound assignment
// forms, to HLSL infix syntax. Every operator works component-wise.
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

func (c *Codegen) EmitBinaryOp(loc lexer.Location, op lexer.TokenKind, resultType, _ fx.Type, lhs, rhs fx.ID) fx.ID {
	operator, ok := binaryOperators[op]
	if !ok {
		panic("hlsl: unexpected binary operator " + op.String())
	}

	code, id := c.declare(loc, resultType)
	fmt.Fprintf(code, "%s %s %s;\n", c.name(lhs), operator, c.name(rhs))
	return id
}

func (c *Codegen) EmitTernaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, cond, trueValue, falseValue fx.ID) fx.ID {
	if op != lexer.TokenQuestion {
		panic("hlsl: unexpected ternary operator " + op.String())
	}

	code, id := c.declare(loc, t)
	fmt.Fprintf(code, "%s ? %s : %s;\n", c.name(cond), c.name(trueValue), c.name(falseValue))
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

// EmitConstruct writes a constructor. Arrays and structs use an
// initializer list.
func (c *Codegen) EmitConstruct(loc lexer.Location, t fx.Type, args []fx.Expression) fx.ID {
	code, id := c.declare(loc, t)
	if t.IsArray() || t.IsStruct() {
		fmt.Fprintf(code, "{ %s };\n", c.argumentList(args))
	} else {
		fmt.Fprintf(code, "%s(%s);\n", c.typeName(t, typePlain), c.argumentList(args))
	}
	return id
}

func (c *Codegen) EmitCallIntrinsic(loc lexer.Location, intrinsic fx.Intrinsic, resultType fx.Type, args []fx.Expression) fx.ID {
	a := make([]string, len(args))
	for i := range args {
		a[i] = c.name(args[i].Base)
	}

	switch intrinsic {
	case fx.IntrinsicTex2DSize:
		return c.emitTextureSize(loc, resultType, a[0], "")
	case fx.IntrinsicTex2DSizeLod:
		return c.emitTextureSize(loc, resultType, a[0], a[1])
	}

	expr := c.intrinsic(intrinsic, a)
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

// emitTextureSize queries the dimensions through out parameters.
func (c *Codegen) emitTextureSize(loc lexer.Location, resultType fx.Type, sampler, lod string) fx.ID {
	id := c.MakeID()
	resultType.Qualifiers = 0
	result := c.name(id)

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "\t%s %s; ", c.typeName(resultType, typePlain), result)
	if lod == "" {
		fmt.Fprintf(code, "%s.t.GetDimensions(%s.x, %s.y);\n", sampler, result, result)
	} else {
		levels := "_levels" + result
		fmt.Fprintf(code, "uint %s; %s.t.GetDimensions(%s, %s.x, %s.y, %s);\n", levels, sampler, lod, result, result, levels)
	}
	c.declared[id] = true
	return id
}

// simpleIntrinsics are a single HLSL intrinsic call with the arguments in
// order.
var simpleIntrinsics = map[fx.Intrinsic]string{
	fx.IntrinsicAbsInt:      "abs",
	fx.IntrinsicAbsFloat:    "abs",
	fx.IntrinsicAsin:        "asin",
	fx.IntrinsicAcos:        "acos",
	fx.IntrinsicAtan:        "atan",
	fx.IntrinsicAtan2:       "atan2",
	fx.IntrinsicSin:         "sin",
	fx.IntrinsicSinh:        "sinh",
	fx.IntrinsicCos:         "cos",
	fx.IntrinsicCosh:        "cosh",
	fx.IntrinsicTan:         "tan",
	fx.IntrinsicTanh:        "tanh",
	fx.IntrinsicAsint:       "asint",
	fx.IntrinsicAsuint:      "asuint",
	fx.IntrinsicAsfloatInt:  "asfloat",
	fx.IntrinsicAsfloatUint: "asfloat",
	fx.IntrinsicCeil:        "ceil",
	fx.IntrinsicFloor:       "floor",
	fx.IntrinsicClampInt:    "clamp",
	fx.IntrinsicClampUint:   "clamp",
	fx.IntrinsicClampFloat:  "clamp",
	fx.IntrinsicSaturate:    "saturate",
	fx.IntrinsicPow:         "pow",
	fx.IntrinsicExp:         "exp",
	fx.IntrinsicExp2:        "exp2",
	fx.IntrinsicLog:         "log",
	fx.IntrinsicLog2:        "log2",
	fx.IntrinsicLog10:       "log10",
	fx.IntrinsicSignInt:     "sign",
	fx.IntrinsicSignFloat:   "sign",
	fx.IntrinsicSqrt:        "sqrt",
	fx.IntrinsicRsqrt:       "rsqrt",
	fx.IntrinsicLerp:        "lerp",
	fx.IntrinsicStep:        "step",
	fx.IntrinsicSmoothstep:  "smoothstep",
	fx.IntrinsicFrac:        "frac",
	fx.IntrinsicLdexp:       "ldexp",
	fx.IntrinsicModf:        "modf",
	fx.IntrinsicFrexp:       "frexp",
	fx.IntrinsicTrunc:       "trunc",
	fx.IntrinsicRound:       "round",
	fx.IntrinsicMinInt:      "min",
	fx.IntrinsicMinFloat:    "min",
	fx.IntrinsicMaxInt:      "max",
	fx.IntrinsicMaxFloat:    "max",
	fx.IntrinsicDegrees:     "degrees",
	fx.IntrinsicRadians:     "radians",
	fx.IntrinsicDdx:         "ddx",
	fx.IntrinsicDdy:         "ddy",
	fx.IntrinsicFwidth:      "fwidth",
	fx.IntrinsicDot:         "dot",
	fx.IntrinsicCross:       "cross",
	fx.IntrinsicLength:      "length",
	fx.IntrinsicDistance:    "distance",
	fx.IntrinsicNormalize:   "normalize",
	fx.IntrinsicTranspose:   "transpose",
	fx.IntrinsicDeterminant: "determinant",
	fx.IntrinsicReflect:     "reflect",
	fx.IntrinsicRefract:     "refract",
	fx.IntrinsicFaceforward: "faceforward",
	fx.IntrinsicIsinf:       "isinf",
	fx.IntrinsicIsnan:       "isnan",
	fx.IntrinsicAllVector:   "all",
	fx.IntrinsicAnyVector:   "any",

	fx.IntrinsicMulVectorMatrix: "mul",
	fx.IntrinsicMulMatrixVector: "mul",
	fx.IntrinsicMulMatrixMatrix: "mul",
}

// gatherChannels are the Gather methods by component.
var gatherChannels = [4]string{"GatherRed", "GatherGreen", "GatherBlue", "GatherAlpha"}

// intrinsic returns the HLSL expression computing an intrinsic call.
func (c *Codegen) intrinsic(intrinsic fx.Intrinsic, a []string) string {
	if function, ok := simpleIntrinsics[intrinsic]; ok {
		return function + "(" + strings.Join(a, ", ") + ")"
	}

	if component, offset, ok := intrinsic.Gather(); ok {
		return c.gather(component, offset, a)
	}

	switch intrinsic {
	case fx.IntrinsicAllScalar, fx.IntrinsicAnyScalar:
		return "(bool)" + a[0]
	case fx.IntrinsicSincos:
		return fmt.Sprintf("%[2]s = sin(%[1]s), %[3]s = cos(%[1]s)", a[0], a[1], a[2])
	case fx.IntrinsicMad:
		if c.opts.ShaderModel.SupportsMad() {
			return fmt.Sprintf("mad(%s, %s, %s)", a[0], a[1], a[2])
		}
		return fmt.Sprintf("(%s * %s + %s)", a[0], a[1], a[2])
	case fx.IntrinsicRcp:
		if c.opts.ShaderModel.SupportsMad() {
			return "rcp(" + a[0] + ")"
		}
		return "(1.0 / " + a[0] + ")"

	case fx.IntrinsicMulScalarVector, fx.IntrinsicMulVectorScalar, fx.IntrinsicMulScalarMatrix, fx.IntrinsicMulMatrixScalar:
		return "(" + a[0] + " * " + a[1] + ")"

	case fx.IntrinsicTex2D:
		return fmt.Sprintf("%[1]s.t.Sample(%[1]s.s, %[2]s)", a[0], a[1])
	case fx.IntrinsicTex2DOffset:
		return fmt.Sprintf("%[1]s.t.Sample(%[1]s.s, %[2]s, %[3]s)", a[0], a[1], a[2])
	case fx.IntrinsicTex2DLod:
		return fmt.Sprintf("%[1]s.t.SampleLevel(%[1]s.s, %[2]s.xy, %[2]s.w)", a[0], a[1])
	case fx.IntrinsicTex2DLodOffset:
		return fmt.Sprintf("%[1]s.t.SampleLevel(%[1]s.s, %[2]s.xy, %[2]s.w, %[3]s)", a[0], a[1], a[2])
	case fx.IntrinsicTex2DFetch:
		return fmt.Sprintf("%s.t.Load(int3(%s, 0))", a[0], a[1])
	case fx.IntrinsicTex2DFetchLod:
		return fmt.Sprintf("%s.t.Load(int3(%s, %s))", a[0], a[1], a[2])
	}

	panic(fmt.Sprintf("hlsl: unknown intrinsic %d", intrinsic))
}

// gather reads one channel of the four texels around a coordinate. Before
// shader model 5 only single channel gathers exist, so the texels are
// sampled one by one in Gather order.
func (c *Codegen) gather(component uint32, offset bool, a []string) string {
	if c.opts.ShaderModel.SupportsGather() {
		if offset {
			return fmt.Sprintf("%[1]s.t.%[4]s(%[1]s.s, %[2]s, %[3]s)", a[0], a[1], a[2], gatherChannels[component])
		}
		return fmt.Sprintf("%[1]s.t.%[3]s(%[1]s.s, %[2]s)", a[0], a[1], gatherChannels[component])
	}

	base := ""
	if offset {
		base = a[2] + " + "
	}
	texels := make([]string, 4)
	for i, o := range []string{"int2(0, 1)", "int2(1, 1)", "int2(1, 0)", "int2(0, 0)"} {
		texels[i] = fmt.Sprintf("%[1]s.t.SampleLevel(%[1]s.s, %[2]s, 0, %[3]s%[4]s).%[5]c", a[0], a[1], base, o, "rgba"[component])
	}
	return "float4(" + strings.Join(texels, ", ") + ")"
}
