package fx

// Intrinsic identifies one variant of a built-in function. Overloads that
// differ only in vector width share a variant; the argument types tell the
// back end which width to emit.
type Intrinsic uint16

const (
	IntrinsicNone Intrinsic = iota
	IntrinsicAbsInt
	IntrinsicAbsFloat
	IntrinsicAllScalar
	IntrinsicAllVector
	IntrinsicAnyScalar
	IntrinsicAnyVector
	IntrinsicAsin
	IntrinsicAcos
	IntrinsicAtan
	IntrinsicAtan2
	IntrinsicSin
	IntrinsicSinh
	IntrinsicCos
	IntrinsicCosh
	IntrinsicTan
	IntrinsicTanh
	IntrinsicSincos
	IntrinsicAsint
	IntrinsicAsuint
	IntrinsicAsfloatInt
	IntrinsicAsfloatUint
	IntrinsicCeil
	IntrinsicFloor
	IntrinsicClampInt
	IntrinsicClampUint
	IntrinsicClampFloat
	IntrinsicSaturate
	IntrinsicMad
	IntrinsicRcp
	IntrinsicPow
	IntrinsicExp
	IntrinsicExp2
	IntrinsicLog
	IntrinsicLog2
	IntrinsicLog10
	IntrinsicSignInt
	IntrinsicSignFloat
	IntrinsicSqrt
	IntrinsicRsqrt
	IntrinsicLerp
	IntrinsicStep
	IntrinsicSmoothstep
	IntrinsicFrac
	IntrinsicLdexp
	IntrinsicModf
	IntrinsicFrexp
	IntrinsicTrunc
	IntrinsicRound
	IntrinsicMinInt
	IntrinsicMinFloat
	IntrinsicMaxInt
	IntrinsicMaxFloat
	IntrinsicDegrees
	IntrinsicRadians
	IntrinsicDdx
	IntrinsicDdy
	IntrinsicFwidth
	IntrinsicDot
	IntrinsicCross
	IntrinsicLength
	IntrinsicDistance
	IntrinsicNormalize
	IntrinsicTranspose
	IntrinsicDeterminant
	IntrinsicReflect
	IntrinsicRefract
	IntrinsicFaceforward
	IntrinsicMulScalarVector
	IntrinsicMulVectorScalar
	IntrinsicMulScalarMatrix
	IntrinsicMulMatrixScalar
	IntrinsicMulVectorMatrix
	IntrinsicMulMatrixVector
	IntrinsicMulMatrixMatrix
	IntrinsicIsinf
	IntrinsicIsnan
	IntrinsicTex2D
	IntrinsicTex2DOffset
	IntrinsicTex2DLod
	IntrinsicTex2DLodOffset
	IntrinsicTex2DFetch
	IntrinsicTex2DFetchLod
	IntrinsicTex2DGatherR
	IntrinsicTex2DGatherROffset
	IntrinsicTex2DGatherG
	IntrinsicTex2DGatherGOffset
	IntrinsicTex2DGatherB
	IntrinsicTex2DGatherBOffset
	IntrinsicTex2DGatherA
	IntrinsicTex2DGatherAOffset
	IntrinsicTex2DSize
	IntrinsicTex2DSizeLod
)

// Gather returns the component a tex2Dgather variant reads and whether it
// takes an offset. ok is false for other intrinsics.
func (i Intrinsic) Gather() (component uint32, offset, ok bool) {
	if i < IntrinsicTex2DGatherR || i > IntrinsicTex2DGatherAOffset {
		return 0, false, false
	}
	n := uint32(i - IntrinsicTex2DGatherR)
	return n / 2, n%2 == 1, true
}
