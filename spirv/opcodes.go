package spirv

import "strconv"

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes emitted by the code generator.
const (
	OpNop                    OpCode = 0
	OpUndef                  OpCode = 1
	OpSource                 OpCode = 3
	OpName                   OpCode = 5
	OpMemberName             OpCode = 6
	OpString                 OpCode = 7
	OpLine                   OpCode = 8
	OpExtension              OpCode = 10
	OpExtInstImport          OpCode = 11
	OpExtInst                OpCode = 12
	OpMemoryModel            OpCode = 14
	OpEntryPoint             OpCode = 15
	OpExecutionMode          OpCode = 16
	OpCapability             OpCode = 17
	OpTypeVoid               OpCode = 19
	OpTypeBool               OpCode = 20
	OpTypeInt                OpCode = 21
	OpTypeFloat              OpCode = 22
	OpTypeVector             OpCode = 23
	OpTypeMatrix             OpCode = 24
	OpTypeImage              OpCode = 25
	OpTypeSampler            OpCode = 26
	OpTypeSampledImage       OpCode = 27
	OpTypeArray              OpCode = 28
	OpTypeRuntimeArray       OpCode = 29
	OpTypeStruct             OpCode = 30
	OpTypePointer            OpCode = 32
	OpTypeFunction           OpCode = 33
	OpConstantTrue           OpCode = 41
	OpConstantFalse          OpCode = 42
	OpConstant               OpCode = 43
	OpConstantComposite      OpCode = 44
	OpConstantNull           OpCode = 46
	OpSpecConstantTrue       OpCode = 48
	OpSpecConstantFalse      OpCode = 49
	OpSpecConstant           OpCode = 50
	OpSpecConstantComposite  OpCode = 51
	OpFunction               OpCode = 54
	OpFunctionParameter      OpCode = 55
	OpFunctionEnd            OpCode = 56
	OpFunctionCall           OpCode = 57
	OpVariable               OpCode = 59
	OpLoad                   OpCode = 61
	OpStore                  OpCode = 62
	OpAccessChain            OpCode = 65
	OpDecorate               OpCode = 71
	OpMemberDecorate         OpCode = 72
	OpVectorExtractDynamic   OpCode = 77
	OpVectorInsertDynamic    OpCode = 78
	OpVectorShuffle          OpCode = 79
	OpCompositeConstruct     OpCode = 80
	OpCompositeExtract       OpCode = 81
	OpCompositeInsert        OpCode = 82
	OpCopyObject             OpCode = 83
	OpTranspose              OpCode = 84
	OpSampledImage           OpCode = 86
	OpImageSampleImplicitLod OpCode = 87
	OpImageSampleExplicitLod OpCode = 88
	OpImageFetch             OpCode = 95
	OpImageGather            OpCode = 96
	OpImage                  OpCode = 100
	OpImageQuerySizeLod      OpCode = 103
	OpImageQuerySize         OpCode = 104
	OpImageQueryLevels       OpCode = 106
	OpConvertFToU            OpCode = 109
	OpConvertFToS            OpCode = 110
	OpConvertSToF            OpCode = 111
	OpConvertUToF            OpCode = 112
	OpBitcast                OpCode = 124
	OpSNegate                OpCode = 126
	OpFNegate                OpCode = 127
	OpIAdd                   OpCode = 128
	OpFAdd                   OpCode = 129
	OpISub                   OpCode = 130
	OpFSub                   OpCode = 131
	OpIMul                   OpCode = 132
	OpFMul                   OpCode = 133
	OpUDiv                   OpCode = 134
	OpSDiv                   OpCode = 135
	OpFDiv                   OpCode = 136
	OpUMod                   OpCode = 137
	OpSRem                   OpCode = 138
	OpSMod                   OpCode = 139
	OpFRem                   OpCode = 140
	OpFMod                   OpCode = 141
	OpVectorTimesScalar      OpCode = 142
	OpMatrixTimesScalar      OpCode = 143
	OpVectorTimesMatrix      OpCode = 144
	OpMatrixTimesVector      OpCode = 145
	OpMatrixTimesMatrix      OpCode = 146
	OpDot                    OpCode = 148
	OpAny                    OpCode = 154
	OpAll                    OpCode = 155
	OpIsNan                  OpCode = 156
	OpIsInf                  OpCode = 157
	OpLogicalEqual           OpCode = 164
	OpLogicalNotEqual        OpCode = 165
	OpLogicalOr              OpCode = 166
	OpLogicalAnd             OpCode = 167
	OpLogicalNot             OpCode = 168
	OpSelect                 OpCode = 169
	OpIEqual                 OpCode = 170
	OpINotEqual              OpCode = 171
	OpUGreaterThan           OpCode = 172
	OpSGreaterThan           OpCode = 173
	OpUGreaterThanEqual      OpCode = 174
	OpSGreaterThanEqual      OpCode = 175
	OpULessThan              OpCode = 176
	OpSLessThan              OpCode = 177
	OpULessThanEqual         OpCode = 178
	OpSLessThanEqual         OpCode = 179
	OpFOrdEqual              OpCode = 180
	OpFOrdNotEqual           OpCode = 182
	OpFOrdLessThan           OpCode = 184
	OpFOrdGreaterThan        OpCode = 186
	OpFOrdLessThanEqual      OpCode = 188
	OpFOrdGreaterThanEqual   OpCode = 190
	OpShiftRightLogical      OpCode = 194
	OpShiftRightArithmetic   OpCode = 195
	OpShiftLeftLogical       OpCode = 196
	OpBitwiseOr              OpCode = 197
	OpBitwiseXor             OpCode = 198
	OpBitwiseAnd             OpCode = 199
	OpNot                    OpCode = 200
	OpDPdx                   OpCode = 207
	OpDPdy                   OpCode = 208
	OpFwidth                 OpCode = 209
	OpPhi                    OpCode = 245
	OpLoopMerge              OpCode = 246
	OpSelectionMerge         OpCode = 247
	OpLabel                  OpCode = 248
	OpBranch                 OpCode = 249
	OpBranchConditional      OpCode = 250
	OpSwitch                 OpCode = 251
	OpKill                   OpCode = 252
	OpReturn                 OpCode = 253
	OpReturnValue            OpCode = 254
	OpUnreachable            OpCode = 255
	OpNoLine                 OpCode = 317
	OpModuleProcessed        OpCode = 330
	OpDecorateString         OpCode = 5632
	OpMemberDecorateString   OpCode = 5633
)

// opInfo describes the fixed leading operands of an opcode.
type opInfo struct {
	name      string
	hasType   bool
	hasResult bool
}

var opInfos = map[OpCode]opInfo{
	OpNop:                    {"OpNop", false, false},
	OpUndef:                  {"OpUndef", true, true},
	OpSource:                 {"OpSource", false, false},
	OpName:                   {"OpName", false, false},
	OpMemberName:             {"OpMemberName", false, false},
	OpString:                 {"OpString", false, true},
	OpLine:                   {"OpLine", false, false},
	OpExtension:              {"OpExtension", false, false},
	OpExtInstImport:          {"OpExtInstImport", false, true},
	OpExtInst:                {"OpExtInst", true, true},
	OpMemoryModel:            {"OpMemoryModel", false, false},
	OpEntryPoint:             {"OpEntryPoint", false, false},
	OpExecutionMode:          {"OpExecutionMode", false, false},
	OpCapability:             {"OpCapability", false, false},
	OpTypeVoid:               {"OpTypeVoid", false, true},
	OpTypeBool:               {"OpTypeBool", false, true},
	OpTypeInt:                {"OpTypeInt", false, true},
	OpTypeFloat:              {"OpTypeFloat", false, true},
	OpTypeVector:             {"OpTypeVector", false, true},
	OpTypeMatrix:             {"OpTypeMatrix", false, true},
	OpTypeImage:              {"OpTypeImage", false, true},
	OpTypeSampler:            {"OpTypeSampler", false, true},
	OpTypeSampledImage:       {"OpTypeSampledImage", false, true},
	OpTypeArray:              {"OpTypeArray", false, true},
	OpTypeRuntimeArray:       {"OpTypeRuntimeArray", false, true},
	OpTypeStruct:             {"OpTypeStruct", false, true},
	OpTypePointer:            {"OpTypePointer", false, true},
	OpTypeFunction:           {"OpTypeFunction", false, true},
	OpConstantTrue:           {"OpConstantTrue", true, true},
	OpConstantFalse:          {"OpConstantFalse", true, true},
	OpConstant:               {"OpConstant", true, true},
	OpConstantComposite:      {"OpConstantComposite", true, true},
	OpConstantNull:           {"OpConstantNull", true, true},
	OpSpecConstantTrue:       {"OpSpecConstantTrue", true, true},
	OpSpecConstantFalse:      {"OpSpecConstantFalse", true, true},
	OpSpecConstant:           {"OpSpecConstant", true, true},
	OpSpecConstantComposite:  {"OpSpecConstantComposite", true, true},
	OpFunction:               {"OpFunction", true, true},
	OpFunctionParameter:      {"OpFunctionParameter", true, true},
	OpFunctionEnd:            {"OpFunctionEnd", false, false},
	OpFunctionCall:           {"OpFunctionCall", true, true},
	OpVariable:               {"OpVariable", true, true},
	OpLoad:                   {"OpLoad", true, true},
	OpStore:                  {"OpStore", false, false},
	OpAccessChain:            {"OpAccessChain", true, true},
	OpDecorate:               {"OpDecorate", false, false},
	OpMemberDecorate:         {"OpMemberDecorate", false, false},
	OpVectorExtractDynamic:   {"OpVectorExtractDynamic", true, true},
	OpVectorInsertDynamic:    {"OpVectorInsertDynamic", true, true},
	OpVectorShuffle:          {"OpVectorShuffle", true, true},
	OpCompositeConstruct:     {"OpCompositeConstruct", true, true},
	OpCompositeExtract:       {"OpCompositeExtract", true, true},
	OpCompositeInsert:        {"OpCompositeInsert", true, true},
	OpCopyObject:             {"OpCopyObject", true, true},
	OpTranspose:              {"OpTranspose", true, true},
	OpSampledImage:           {"OpSampledImage", true, true},
	OpImageSampleImplicitLod: {"OpImageSampleImplicitLod", true, true},
	OpImageSampleExplicitLod: {"OpImageSampleExplicitLod", true, true},
	OpImageFetch:             {"OpImageFetch", true, true},
	OpImageGather:            {"OpImageGather", true, true},
	OpImage:                  {"OpImage", true, true},
	OpImageQuerySizeLod:      {"OpImageQuerySizeLod", true, true},
	OpImageQuerySize:         {"OpImageQuerySize", true, true},
	OpImageQueryLevels:       {"OpImageQueryLevels", true, true},
	OpConvertFToU:            {"OpConvertFToU", true, true},
	OpConvertFToS:            {"OpConvertFToS", true, true},
	OpConvertSToF:            {"OpConvertSToF", true, true},
	OpConvertUToF:            {"OpConvertUToF", true, true},
	OpBitcast:                {"OpBitcast", true, true},
	OpSNegate:                {"OpSNegate", true, true},
	OpFNegate:                {"OpFNegate", true, true},
	OpIAdd:                   {"OpIAdd", true, true},
	OpFAdd:                   {"OpFAdd", true, true},
	OpISub:                   {"OpISub", true, true},
	OpFSub:                   {"OpFSub", true, true},
	OpIMul:                   {"OpIMul", true, true},
	OpFMul:                   {"OpFMul", true, true},
	OpUDiv:                   {"OpUDiv", true, true},
	OpSDiv:                   {"OpSDiv", true, true},
	OpFDiv:                   {"OpFDiv", true, true},
	OpUMod:                   {"OpUMod", true, true},
	OpSRem:                   {"OpSRem", true, true},
	OpSMod:                   {"OpSMod", true, true},
	OpFRem:                   {"OpFRem", true, true},
	OpFMod:                   {"OpFMod", true, true},
	OpVectorTimesScalar:      {"OpVectorTimesScalar", true, true},
	OpMatrixTimesScalar:      {"OpMatrixTimesScalar", true, true},
	OpVectorTimesMatrix:      {"OpVectorTimesMatrix", true, true},
	OpMatrixTimesVector:      {"OpMatrixTimesVector", true, true},
	OpMatrixTimesMatrix:      {"OpMatrixTimesMatrix", true, true},
	OpDot:                    {"OpDot", true, true},
	OpAny:                    {"OpAny", true, true},
	OpAll:                    {"OpAll", true, true},
	OpIsNan:                  {"OpIsNan", true, true},
	OpIsInf:                  {"OpIsInf", true, true},
	OpLogicalEqual:           {"OpLogicalEqual", true, true},
	OpLogicalNotEqual:        {"OpLogicalNotEqual", true, true},
	OpLogicalOr:              {"OpLogicalOr", true, true},
	OpLogicalAnd:             {"OpLogicalAnd", true, true},
	OpLogicalNot:             {"OpLogicalNot", true, true},
	OpSelect:                 {"OpSelect", true, true},
	OpIEqual:                 {"OpIEqual", true, true},
	OpINotEqual:              {"OpINotEqual", true, true},
	OpUGreaterThan:           {"OpUGreaterThan", true, true},
	OpSGreaterThan:           {"OpSGreaterThan", true, true},
	OpUGreaterThanEqual:      {"OpUGreaterThanEqual", true, true},
	OpSGreaterThanEqual:      {"OpSGreaterThanEqual", true, true},
	OpULessThan:              {"OpULessThan", true, true},
	OpSLessThan:              {"OpSLessThan", true, true},
	OpULessThanEqual:         {"OpULessThanEqual", true, true},
	OpSLessThanEqual:         {"OpSLessThanEqual", true, true},
	OpFOrdEqual:              {"OpFOrdEqual", true, true},
	OpFOrdNotEqual:           {"OpFOrdNotEqual", true, true},
	OpFOrdLessThan:           {"OpFOrdLessThan", true, true},
	OpFOrdGreaterThan:        {"OpFOrdGreaterThan", true, true},
	OpFOrdLessThanEqual:      {"OpFOrdLessThanEqual", true, true},
	OpFOrdGreaterThanEqual:   {"OpFOrdGreaterThanEqual", true, true},
	OpShiftRightLogical:      {"OpShiftRightLogical", true, true},
	OpShiftRightArithmetic:   {"OpShiftRightArithmetic", true, true},
	OpShiftLeftLogical:       {"OpShiftLeftLogical", true, true},
	OpBitwiseOr:              {"OpBitwiseOr", true, true},
	OpBitwiseXor:             {"OpBitwiseXor", true, true},
	OpBitwiseAnd:             {"OpBitwiseAnd", true, true},
	OpNot:                    {"OpNot", true, true},
	OpDPdx:                   {"OpDPdx", true, true},
	OpDPdy:                   {"OpDPdy", true, true},
	OpFwidth:                 {"OpFwidth", true, true},
	OpPhi:                    {"OpPhi", true, true},
	OpLoopMerge:              {"OpLoopMerge", false, false},
	OpSelectionMerge:         {"OpSelectionMerge", false, false},
	OpLabel:                  {"OpLabel", false, true},
	OpBranch:                 {"OpBranch", false, false},
	OpBranchConditional:      {"OpBranchConditional", false, false},
	OpSwitch:                 {"OpSwitch", false, false},
	OpKill:                   {"OpKill", false, false},
	OpReturn:                 {"OpReturn", false, false},
	OpReturnValue:            {"OpReturnValue", false, false},
	OpUnreachable:            {"OpUnreachable", false, false},
	OpNoLine:                 {"OpNoLine", false, false},
	OpModuleProcessed:        {"OpModuleProcessed", false, false},
	OpDecorateString:         {"OpDecorateString", false, false},
	OpMemberDecorateString:   {"OpMemberDecorateString", false, false},
}

// String returns the opcode name, or "Op<n>" for opcodes outside the table.
func (op OpCode) String() string {
	if info, ok := opInfos[op]; ok {
		return info.name
	}
	return "Op" + strconv.FormatUint(uint64(op), 10)
}

// HasResultType reports whether the first operand word is a result type id.
func (op OpCode) HasResultType() bool { return opInfos[op].hasType }

// HasResult reports whether the instruction defines a result id.
func (op OpCode) HasResult() bool { return opInfos[op].hasResult }

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassImage           StorageClass = 11
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationSpecID        Decoration = 1
	DecorationBlock         Decoration = 2
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationCentroid      Decoration = 16
	DecorationNonWritable   Decoration = 24
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
	DecorationNoContraction Decoration = 42

	DecorationHlslSemanticGOOGLE Decoration = 5635
)

// BuiltIn represents a SPIR-V built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition    BuiltIn = 0
	BuiltInPointSize   BuiltIn = 1
	BuiltInVertexID    BuiltIn = 5
	BuiltInInstanceID  BuiltIn = 6
	BuiltInFragCoord   BuiltIn = 15
	BuiltInFrontFacing BuiltIn = 17
	BuiltInFragDepth   BuiltIn = 22
	BuiltInVertexIndex BuiltIn = 42
)

// ExecutionModel represents a shader stage.
type ExecutionModel uint32

const (
	ExecutionModelVertex   ExecutionModel = 0
	ExecutionModelFragment ExecutionModel = 4
)

// ExecutionMode represents a per entry point execution mode.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft ExecutionMode = 7
	ExecutionModeOriginLowerLeft ExecutionMode = 8
	ExecutionModeDepthReplacing  ExecutionMode = 12
)

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix              Capability = 0
	CapabilityShader              Capability = 1
	CapabilityImageGatherExtended Capability = 25
	CapabilityImageQuery          Capability = 50
	CapabilityDerivativeControl   Capability = 51
)

// AddressingModel represents the addressing model of a module.
type AddressingModel uint32

const AddressingModelLogical AddressingModel = 0

// MemoryModel represents the memory model of a module.
type MemoryModel uint32

const MemoryModelGLSL450 MemoryModel = 1

// SourceLanguage is the language recorded by OpSource.
type SourceLanguage uint32

const SourceLanguageUnknown SourceLanguage = 0

// Image dimensionality, format and operand masks.
const (
	Dim2D uint32 = 1

	ImageFormatUnknown uint32 = 0

	ImageOperandsNone        uint32 = 0
	ImageOperandsBias        uint32 = 0x1
	ImageOperandsLod         uint32 = 0x2
	ImageOperandsGrad        uint32 = 0x4
	ImageOperandsConstOffset uint32 = 0x8
	ImageOperandsOffset      uint32 = 0x10
)

// Control masks. The parser's control flags map onto the selection and loop
// masks unchanged.
const (
	FunctionControlNone uint32 = 0

	SelectionControlNone        uint32 = 0
	SelectionControlFlatten     uint32 = 1
	SelectionControlDontFlatten uint32 = 2

	LoopControlNone       uint32 = 0
	LoopControlUnroll     uint32 = 1
	LoopControlDontUnroll uint32 = 2
)

// GLSLstd450 is an instruction number of the GLSL.std.450 extended set.
type GLSLstd450 uint32

const (
	GLSLstd450Round       GLSLstd450 = 1
	GLSLstd450Trunc       GLSLstd450 = 3
	GLSLstd450FAbs        GLSLstd450 = 4
	GLSLstd450SAbs        GLSLstd450 = 5
	GLSLstd450FSign       GLSLstd450 = 6
	GLSLstd450SSign       GLSLstd450 = 7
	GLSLstd450Floor       GLSLstd450 = 8
	GLSLstd450Ceil        GLSLstd450 = 9
	GLSLstd450Fract       GLSLstd450 = 10
	GLSLstd450Radians     GLSLstd450 = 11
	GLSLstd450Degrees     GLSLstd450 = 12
	GLSLstd450Sin         GLSLstd450 = 13
	GLSLstd450Cos         GLSLstd450 = 14
	GLSLstd450Tan         GLSLstd450 = 15
	GLSLstd450Asin        GLSLstd450 = 16
	GLSLstd450Acos        GLSLstd450 = 17
	GLSLstd450Atan        GLSLstd450 = 18
	GLSLstd450Sinh        GLSLstd450 = 19
	GLSLstd450Cosh        GLSLstd450 = 20
	GLSLstd450Tanh        GLSLstd450 = 21
	GLSLstd450Atan2       GLSLstd450 = 25
	GLSLstd450Pow         GLSLstd450 = 26
	GLSLstd450Exp         GLSLstd450 = 27
	GLSLstd450Log         GLSLstd450 = 28
	GLSLstd450Exp2        GLSLstd450 = 29
	GLSLstd450Log2        GLSLstd450 = 30
	GLSLstd450Sqrt        GLSLstd450 = 31
	GLSLstd450InverseSqrt GLSLstd450 = 32
	GLSLstd450Determinant GLSLstd450 = 33
	GLSLstd450Modf        GLSLstd450 = 35
	GLSLstd450FMin        GLSLstd450 = 37
	GLSLstd450UMin        GLSLstd450 = 38
	GLSLstd450SMin        GLSLstd450 = 39
	GLSLstd450FMax        GLSLstd450 = 40
	GLSLstd450UMax        GLSLstd450 = 41
	GLSLstd450SMax        GLSLstd450 = 42
	GLSLstd450FClamp      GLSLstd450 = 43
	GLSLstd450UClamp      GLSLstd450 = 44
	GLSLstd450SClamp      GLSLstd450 = 45
	GLSLstd450FMix        GLSLstd450 = 46
	GLSLstd450Step        GLSLstd450 = 48
	GLSLstd450SmoothStep  GLSLstd450 = 49
	GLSLstd450Fma         GLSLstd450 = 50
	GLSLstd450Frexp       GLSLstd450 = 51
	GLSLstd450Ldexp       GLSLstd450 = 53
	GLSLstd450Length      GLSLstd450 = 66
	GLSLstd450Distance    GLSLstd450 = 67
	GLSLstd450Cross       GLSLstd450 = 68
	GLSLstd450Normalize   GLSLstd450 = 69
	GLSLstd450FaceForward GLSLstd450 = 70
	GLSLstd450Reflect     GLSLstd450 = 71
	GLSLstd450Refract     GLSLstd450 = 72
)
