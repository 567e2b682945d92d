package spirv

import (
	"fmt"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// extInstructions maps intrinsics that are a single GLSL.std.450 call with
// the arguments in order.
var extInstructions = map[fx.Intrinsic]GLSLstd450{
	fx.IntrinsicAbsFloat:    GLSLstd450FAbs,
	fx.IntrinsicAbsInt:      GLSLstd450SAbs,
	fx.IntrinsicAsin:        GLSLstd450Asin,
	fx.IntrinsicAcos:        GLSLstd450Acos,
	fx.IntrinsicAtan:        GLSLstd450Atan,
	fx.IntrinsicAtan2:       GLSLstd450Atan2,
	fx.IntrinsicSin:         GLSLstd450Sin,
	fx.IntrinsicSinh:        GLSLstd450Sinh,
	fx.IntrinsicCos:         GLSLstd450Cos,
	fx.IntrinsicCosh:        GLSLstd450Cosh,
	fx.IntrinsicTan:         GLSLstd450Tan,
	fx.IntrinsicTanh:        GLSLstd450Tanh,
	fx.IntrinsicCeil:        GLSLstd450Ceil,
	fx.IntrinsicFloor:       GLSLstd450Floor,
	fx.IntrinsicFrac:        GLSLstd450Fract,
	fx.IntrinsicTrunc:       GLSLstd450Trunc,
	fx.IntrinsicRound:       GLSLstd450Round,
	fx.IntrinsicClampInt:    GLSLstd450SClamp,
	fx.IntrinsicClampUint:   GLSLstd450UClamp,
	fx.IntrinsicClampFloat:  GLSLstd450FClamp,
	fx.IntrinsicSignInt:     GLSLstd450SSign,
	fx.IntrinsicSignFloat:   GLSLstd450FSign,
	fx.IntrinsicMinFloat:    GLSLstd450FMin,
	fx.IntrinsicMaxFloat:    GLSLstd450FMax,
	fx.IntrinsicPow:         GLSLstd450Pow,
	fx.IntrinsicExp:         GLSLstd450Exp,
	fx.IntrinsicExp2:        GLSLstd450Exp2,
	fx.IntrinsicLog:         GLSLstd450Log,
	fx.IntrinsicLog2:        GLSLstd450Log2,
	fx.IntrinsicSqrt:        GLSLstd450Sqrt,
	fx.IntrinsicRsqrt:       GLSLstd450InverseSqrt,
	fx.IntrinsicLerp:        GLSLstd450FMix,
	fx.IntrinsicStep:        GLSLstd450Step,
	fx.IntrinsicSmoothstep:  GLSLstd450SmoothStep,
	fx.IntrinsicMad:         GLSLstd450Fma,
	fx.IntrinsicLdexp:       GLSLstd450Ldexp,
	fx.IntrinsicDegrees:     GLSLstd450Degrees,
	fx.IntrinsicRadians:     GLSLstd450Radians,
	fx.IntrinsicCross:       GLSLstd450Cross,
	fx.IntrinsicLength:      GLSLstd450Length,
	fx.IntrinsicDistance:    GLSLstd450Distance,
	fx.IntrinsicNormalize:   GLSLstd450Normalize,
	fx.IntrinsicDeterminant: GLSLstd450Determinant,
	fx.IntrinsicReflect:     GLSLstd450Reflect,
	fx.IntrinsicRefract:     GLSLstd450Refract,
	fx.IntrinsicFaceforward: GLSLstd450FaceForward,
}

// coreInstructions maps intrinsics that are a single core instruction with
// the arguments in order.
var coreInstructions = map[fx.Intrinsic]OpCode{
	fx.IntrinsicDdx:             OpDPdx,
	fx.IntrinsicDdy:             OpDPdy,
	fx.IntrinsicFwidth:          OpFwidth,
	fx.IntrinsicDot:             OpDot,
	fx.IntrinsicTranspose:       OpTranspose,
	fx.IntrinsicIsinf:           OpIsInf,
	fx.IntrinsicIsnan:           OpIsNan,
	fx.IntrinsicAsint:           OpBitcast,
	fx.IntrinsicAsuint:          OpBitcast,
	fx.IntrinsicAsfloatInt:      OpBitcast,
	fx.IntrinsicAsfloatUint:     OpBitcast,
	fx.IntrinsicAllVector:       OpAll,
	fx.IntrinsicAnyVector:       OpAny,
	fx.IntrinsicMulVectorScalar: OpVectorTimesScalar,
	fx.IntrinsicMulMatrixScalar: OpMatrixTimesScalar,
}

func bases(args []fx.Expression) []fx.ID {
	ids := make([]fx.ID, len(args))
	for i := range args {
		ids[i] = args[i].Base
	}
	return ids
}

// EmitCallIntrinsic lowers a built-in function. Value arguments arrive
// loaded, out arguments and samplers as pointers.
func (c *Codegen) EmitCallIntrinsic(loc lexer.Location, intrinsic fx.Intrinsic, resultType fx.Type, args []fx.Expression) fx.ID {
	c.addBlockLocation(loc)

	res := c.convertType(resultType)

	if inst, ok := extInstructions[intrinsic]; ok {
		return c.emitExt(res, inst, bases(args)...)
	}
	if op, ok := coreInstructions[intrinsic]; ok {
		return c.emit(op, res, bases(args)...)
	}
	if component, offset, ok := intrinsic.Gather(); ok {
		return c.emitGather(res, component, offset, args)
	}

	switch intrinsic {
	case fx.IntrinsicMinInt:
		if resultType.IsSigned() {
			return c.emitExt(res, GLSLstd450SMin, bases(args)...)
		}
		return c.emitExt(res, GLSLstd450UMin, bases(args)...)
	case fx.IntrinsicMaxInt:
		if resultType.IsSigned() {
			return c.emitExt(res, GLSLstd450SMax, bases(args)...)
		}
		return c.emitExt(res, GLSLstd450UMax, bases(args)...)

	case fx.IntrinsicAllScalar, fx.IntrinsicAnyScalar:
		return args[0].Base

	case fx.IntrinsicSaturate:
		return c.emitExt(res, GLSLstd450FClamp, args[0].Base, c.constantFloat(resultType, 0), c.constantFloat(resultType, 1))

	case fx.IntrinsicRcp:
		return c.emit(OpFDiv, res, c.constantFloat(resultType, 1), args[0].Base)

	case fx.IntrinsicLog10:
		log2 := c.emitExt(res, GLSLstd450Log2, args[0].Base)
		return c.emit(OpFDiv, res, log2, c.constantFloat(resultType, 3.321928))

	case fx.IntrinsicSincos:
		t := args[0].Type
		t.Qualifiers = 0
		typ := c.convertType(t)
		sin := c.emitExt(typ, GLSLstd450Sin, args[0].Base)
		cos := c.emitExt(typ, GLSLstd450Cos, args[0].Base)
		c.add(Instruction{Op: OpStore, Operands: []uint32{args[1].Base, sin}})
		c.add(Instruction{Op: OpStore, Operands: []uint32{args[2].Base, cos}})
		return 0

	case fx.IntrinsicModf:
		return c.emitExt(res, GLSLstd450Modf, args[0].Base, args[1].Base)

	case fx.IntrinsicFrexp:
		// The exponent is an integer in SPIR-V and a float in the effect.
		exponent := fx.Vector(fx.TypeInt, resultType.Rows)
		temp := c.MakeID()
		c.defineVariable(temp, loc, exponent, "", StorageClassFunction, 0)
		result := c.emitExt(res, GLSLstd450Frexp, args[0].Base, temp)
		value := c.emit(OpLoad, c.convertType(exponent), temp)
		c.add(Instruction{Op: OpStore, Operands: []uint32{args[1].Base, c.emit(OpConvertSToF, res, value)}})
		return result

	case fx.IntrinsicMulScalarVector:
		return c.emit(OpVectorTimesScalar, res, args[1].Base, args[0].Base)
	case fx.IntrinsicMulScalarMatrix:
		return c.emit(OpMatrixTimesScalar, res, args[1].Base, args[0].Base)
	// Effect matrices are stored transposed, so the operands swap.
	case fx.IntrinsicMulVectorMatrix:
		return c.emit(OpMatrixTimesVector, res, args[1].Base, args[0].Base)
	case fx.IntrinsicMulMatrixVector:
		return c.emit(OpVectorTimesMatrix, res, args[1].Base, args[0].Base)
	case fx.IntrinsicMulMatrixMatrix:
		return c.emit(OpMatrixTimesMatrix, res, args[1].Base, args[0].Base)

	case fx.IntrinsicTex2D:
		return c.emit(OpImageSampleImplicitLod, res, c.EmitLoad(&args[0], false), args[1].Base)

	case fx.IntrinsicTex2DOffset:
		operands := []fx.ID{c.EmitLoad(&args[0], false), args[1].Base}
		return c.emit(OpImageSampleImplicitLod, res, append(operands, c.offsetOperands(&args[2], 0)...)...)

	case fx.IntrinsicTex2DLod, fx.IntrinsicTex2DLodOffset:
		sampler := c.EmitLoad(&args[0], false)
		float2 := c.convertType(fx.Vector(fx.TypeFloat, 2))
		coord := c.emit(OpVectorShuffle, float2, args[1].Base, args[1].Base, 0, 1)
		lod := c.emit(OpCompositeExtract, c.convertType(fx.Scalar(fx.TypeFloat)), args[1].Base, 3)

		operands := []fx.ID{sampler, coord}
		if intrinsic == fx.IntrinsicTex2DLodOffset {
			offset := c.offsetOperands(&args[2], ImageOperandsLod)
			// The Lod operand comes before the offset.
			operands = append(operands, offset[0], lod, offset[1])
		} else {
			operands = append(operands, ImageOperandsLod, lod)
		}
		return c.emit(OpImageSampleExplicitLod, res, operands...)

	case fx.IntrinsicTex2DFetch, fx.IntrinsicTex2DFetchLod:
		image := c.emit(OpImage, c.convertType(fx.Type{Base: fx.TypeTexture}), c.EmitLoad(&args[0], false))
		operands := []fx.ID{image, args[1].Base}
		if intrinsic == fx.IntrinsicTex2DFetchLod {
			operands = append(operands, ImageOperandsLod, args[2].Base)
		}
		return c.emit(OpImageFetch, res, operands...)

	case fx.IntrinsicTex2DSize, fx.IntrinsicTex2DSizeLod:
		c.mod.addCapability(CapabilityImageQuery)
		image := c.emit(OpImage, c.convertType(fx.Type{Base: fx.TypeTexture}), c.EmitLoad(&args[0], false))
		lod := c.EmitConstant(fx.Scalar(fx.TypeInt), fx.Constant{})
		if intrinsic == fx.IntrinsicTex2DSizeLod {
			lod = args[1].Base
		}
		return c.emit(OpImageQuerySizeLod, res, image, lod)
	}

	panic(fmt.Sprintf("spirv: unsupported intrinsic %d", intrinsic))
}

// offsetOperands returns the image operand mask and offset id for a texel
// offset argument. Constant offsets use ConstOffset.
func (c *Codegen) offsetOperands(arg *fx.Expression, mask uint32) []fx.ID {
	if arg.IsConstant {
		return []fx.ID{mask | ImageOperandsConstOffset, arg.Base}
	}
	c.mod.addCapability(CapabilityImageGatherExtended)
	return []fx.ID{mask | ImageOperandsOffset, arg.Base}
}

func (c *Codegen) emitGather(res fx.ID, component uint32, offset bool, args []fx.Expression) fx.ID {
	operands := []fx.ID{c.EmitLoad(&args[0], false), args[1].Base, c.constantUint(component)}
	if offset {
		operands = append(operands, c.offsetOperands(&args[2], 0)...)
	}
	return c.emit(OpImageGather, res, operands...)
}
