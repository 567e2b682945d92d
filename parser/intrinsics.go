package parser

import "github.com/gogpu/reshadefx/fx"

type intrinsic struct {
	id   fx.Intrinsic
	info fx.FunctionInfo
}

// intrinsics lists every built-in overload. Overloads of one name are tried
// in order during call resolution.
var intrinsics = buildIntrinsics()

type intrinsicTable []intrinsic

func (t *intrinsicTable) add(name string, id fx.Intrinsic, ret fx.Type, params ...fx.Type) {
	info := fx.FunctionInfo{Name: name, UniqueName: name, ReturnType: ret}
	for _, p := range params {
		if !p.Has(fx.QualifierOut) {
			p.Qualifiers |= fx.QualifierIn
		}
		info.Parameters = append(info.Parameters, fx.StructMemberInfo{Type: p})
	}
	*t = append(*t, intrinsic{id: id, info: info})
}

// widths adds one overload per vector width 1 to 4. shape maps the width to
// the return type and parameter types.
func (t *intrinsicTable) widths(name string, id fx.Intrinsic, from, to uint32, shape func(n uint32) []fx.Type) {
	for n := from; n <= to; n++ {
		types := shape(n)
		t.add(name, id, types[0], types[1:]...)
	}
}

func vec(base fx.BaseType, n uint32) fx.Type { return fx.Vector(base, n) }

func out(t fx.Type) fx.Type {
	t.Qualifiers |= fx.QualifierOut
	return t
}

// same returns a shape whose return type and count parameters all have the
// given base and width.
func same(base fx.BaseType, count int) func(n uint32) []fx.Type {
	return func(n uint32) []fx.Type {
		types := make([]fx.Type, count+1)
		for i := range types {
			types[i] = vec(base, n)
		}
		return types
	}
}

func buildIntrinsics() []intrinsic {
	t := &intrinsicTable{}
	float := fx.Scalar(fx.TypeFloat)
	sampler := fx.Type{Base: fx.TypeSampler}

	t.widths("abs", fx.IntrinsicAbsInt, 1, 4, same(fx.TypeInt, 1))
	t.widths("abs", fx.IntrinsicAbsFloat, 1, 4, same(fx.TypeFloat, 1))
	t.add("all", fx.IntrinsicAllScalar, fx.Scalar(fx.TypeBool), fx.Scalar(fx.TypeBool))
	t.widths("all", fx.IntrinsicAllVector, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Scalar(fx.TypeBool), vec(fx.TypeBool, n)}
	})
	t.add("any", fx.IntrinsicAnyScalar, fx.Scalar(fx.TypeBool), fx.Scalar(fx.TypeBool))
	t.widths("any", fx.IntrinsicAnyVector, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Scalar(fx.TypeBool), vec(fx.TypeBool, n)}
	})

	unary := []struct {
		name string
		id   fx.Intrinsic
	}{
		{"asin", fx.IntrinsicAsin},
		{"acos", fx.IntrinsicAcos},
		{"atan", fx.IntrinsicAtan},
		{"sin", fx.IntrinsicSin},
		{"sinh", fx.IntrinsicSinh},
		{"cos", fx.IntrinsicCos},
		{"cosh", fx.IntrinsicCosh},
		{"tan", fx.IntrinsicTan},
		{"tanh", fx.IntrinsicTanh},
		{"ceil", fx.IntrinsicCeil},
		{"floor", fx.IntrinsicFloor},
		{"saturate", fx.IntrinsicSaturate},
		{"rcp", fx.IntrinsicRcp},
		{"exp", fx.IntrinsicExp},
		{"exp2", fx.IntrinsicExp2},
		{"log", fx.IntrinsicLog},
		{"log2", fx.IntrinsicLog2},
		{"log10", fx.IntrinsicLog10},
		{"sqrt", fx.IntrinsicSqrt},
		{"rsqrt", fx.IntrinsicRsqrt},
		{"frac", fx.IntrinsicFrac},
		{"trunc", fx.IntrinsicTrunc},
		{"round", fx.IntrinsicRound},
		{"degrees", fx.IntrinsicDegrees},
		{"radians", fx.IntrinsicRadians},
		{"ddx", fx.IntrinsicDdx},
		{"ddy", fx.IntrinsicDdy},
		{"fwidth", fx.IntrinsicFwidth},
	}
	for _, u := range unary {
		t.widths(u.name, u.id, 1, 4, same(fx.TypeFloat, 1))
	}

	t.widths("atan2", fx.IntrinsicAtan2, 1, 4, same(fx.TypeFloat, 2))
	t.widths("sincos", fx.IntrinsicSincos, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{{Base: fx.TypeVoid}, vec(fx.TypeFloat, n), out(vec(fx.TypeFloat, n)), out(vec(fx.TypeFloat, n))}
	})
	t.widths("asint", fx.IntrinsicAsint, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeInt, n), vec(fx.TypeFloat, n)}
	})
	t.widths("asuint", fx.IntrinsicAsuint, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeUint, n), vec(fx.TypeFloat, n)}
	})
	t.widths("asfloat", fx.IntrinsicAsfloatInt, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeInt, n)}
	})
	t.widths("asfloat", fx.IntrinsicAsfloatUint, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeUint, n)}
	})
	t.widths("clamp", fx.IntrinsicClampInt, 1, 4, same(fx.TypeInt, 3))
	t.widths("clamp", fx.IntrinsicClampUint, 1, 4, same(fx.TypeUint, 3))
	t.widths("clamp", fx.IntrinsicClampFloat, 1, 4, same(fx.TypeFloat, 3))
	t.widths("mad", fx.IntrinsicMad, 1, 4, same(fx.TypeFloat, 3))
	t.widths("pow", fx.IntrinsicPow, 1, 4, same(fx.TypeFloat, 2))
	t.widths("sign", fx.IntrinsicSignInt, 1, 4, same(fx.TypeInt, 1))
	t.widths("sign", fx.IntrinsicSignFloat, 1, 4, same(fx.TypeFloat, 1))
	t.widths("lerp", fx.IntrinsicLerp, 1, 4, same(fx.TypeFloat, 3))
	t.widths("step", fx.IntrinsicStep, 1, 4, same(fx.TypeFloat, 2))
	t.widths("smoothstep", fx.IntrinsicSmoothstep, 1, 4, same(fx.TypeFloat, 3))
	t.widths("ldexp", fx.IntrinsicLdexp, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), vec(fx.TypeInt, n)}
	})
	t.widths("modf", fx.IntrinsicModf, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), out(vec(fx.TypeFloat, n))}
	})
	t.widths("frexp", fx.IntrinsicFrexp, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), out(vec(fx.TypeFloat, n))}
	})
	t.widths("min", fx.IntrinsicMinInt, 1, 4, same(fx.TypeInt, 2))
	t.widths("min", fx.IntrinsicMinFloat, 1, 4, same(fx.TypeFloat, 2))
	t.widths("max", fx.IntrinsicMaxInt, 1, 4, same(fx.TypeInt, 2))
	t.widths("max", fx.IntrinsicMaxFloat, 1, 4, same(fx.TypeFloat, 2))

	t.widths("dot", fx.IntrinsicDot, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{float, vec(fx.TypeFloat, n), vec(fx.TypeFloat, n)}
	})
	t.add("cross", fx.IntrinsicCross, vec(fx.TypeFloat, 3), vec(fx.TypeFloat, 3), vec(fx.TypeFloat, 3))
	t.widths("length", fx.IntrinsicLength, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{float, vec(fx.TypeFloat, n)}
	})
	t.widths("distance", fx.IntrinsicDistance, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{float, vec(fx.TypeFloat, n), vec(fx.TypeFloat, n)}
	})
	t.widths("normalize", fx.IntrinsicNormalize, 2, 4, same(fx.TypeFloat, 1))
	t.widths("transpose", fx.IntrinsicTranspose, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Matrix(fx.TypeFloat, n, n), fx.Matrix(fx.TypeFloat, n, n)}
	})
	t.widths("determinant", fx.IntrinsicDeterminant, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{float, fx.Matrix(fx.TypeFloat, n, n)}
	})
	t.widths("reflect", fx.IntrinsicReflect, 2, 4, same(fx.TypeFloat, 2))
	t.widths("refract", fx.IntrinsicRefract, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), float}
	})
	t.widths("faceforward", fx.IntrinsicFaceforward, 1, 4, same(fx.TypeFloat, 3))

	t.widths("mul", fx.IntrinsicMulScalarVector, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), float, vec(fx.TypeFloat, n)}
	})
	t.widths("mul", fx.IntrinsicMulVectorScalar, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), float}
	})
	t.widths("mul", fx.IntrinsicMulScalarMatrix, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Matrix(fx.TypeFloat, n, n), float, fx.Matrix(fx.TypeFloat, n, n)}
	})
	t.widths("mul", fx.IntrinsicMulMatrixScalar, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Matrix(fx.TypeFloat, n, n), fx.Matrix(fx.TypeFloat, n, n), float}
	})
	t.widths("mul", fx.IntrinsicMulVectorMatrix, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), vec(fx.TypeFloat, n), fx.Matrix(fx.TypeFloat, n, n)}
	})
	t.widths("mul", fx.IntrinsicMulMatrixVector, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeFloat, n), fx.Matrix(fx.TypeFloat, n, n), vec(fx.TypeFloat, n)}
	})
	t.widths("mul", fx.IntrinsicMulMatrixMatrix, 2, 4, func(n uint32) []fx.Type {
		return []fx.Type{fx.Matrix(fx.TypeFloat, n, n), fx.Matrix(fx.TypeFloat, n, n), fx.Matrix(fx.TypeFloat, n, n)}
	})

	t.widths("isinf", fx.IntrinsicIsinf, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeBool, n), vec(fx.TypeFloat, n)}
	})
	t.widths("isnan", fx.IntrinsicIsnan, 1, 4, func(n uint32) []fx.Type {
		return []fx.Type{vec(fx.TypeBool, n), vec(fx.TypeFloat, n)}
	})

	float2, float4 := vec(fx.TypeFloat, 2), vec(fx.TypeFloat, 4)
	int2 := vec(fx.TypeInt, 2)
	t.add("tex2D", fx.IntrinsicTex2D, float4, sampler, float2)
	t.add("tex2D", fx.IntrinsicTex2DOffset, float4, sampler, float2, int2)
	t.add("tex2Dlod", fx.IntrinsicTex2DLod, float4, sampler, float4)
	t.add("tex2Dlod", fx.IntrinsicTex2DLodOffset, float4, sampler, float4, int2)
	t.add("tex2Dfetch", fx.IntrinsicTex2DFetch, float4, sampler, int2)
	t.add("tex2Dfetch", fx.IntrinsicTex2DFetchLod, float4, sampler, int2, fx.Scalar(fx.TypeInt))
	for i, name := range []string{"tex2DgatherR", "tex2DgatherG", "tex2DgatherB", "tex2DgatherA"} {
		id := fx.IntrinsicTex2DGatherR + fx.Intrinsic(2*i)
		t.add(name, id, float4, sampler, float2)
		t.add(name, id+1, float4, sampler, float2, int2)
	}
	t.add("tex2Dsize", fx.IntrinsicTex2DSize, int2, sampler)
	t.add("tex2Dsize", fx.IntrinsicTex2DSizeLod, int2, sampler, fx.Scalar(fx.TypeInt))

	return *t
}
