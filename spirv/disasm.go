package spirv

import (
	"fmt"
	"io"
	"strings"
)

var capabilityNames = map[uint32]string{
	0: "Matrix", 1: "Shader", 25: "ImageGatherExtended", 50: "ImageQuery", 51: "DerivativeControl",
}

var storageClassNames = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 6: "Private", 7: "Function", 9: "PushConstant", 11: "Image",
}

var decorationNames = map[uint32]string{
	1: "SpecId", 2: "Block", 4: "RowMajor", 5: "ColMajor", 6: "ArrayStride",
	7: "MatrixStride", 11: "BuiltIn", 13: "NoPerspective", 14: "Flat",
	16: "Centroid", 24: "NonWritable", 30: "Location", 33: "Binding",
	34: "DescriptorSet", 35: "Offset", 42: "NoContraction",
	5635: "HlslSemanticGOOGLE",
}

var builtInNames = map[uint32]string{
	0: "Position", 1: "PointSize", 5: "VertexId", 6: "InstanceId",
	15: "FragCoord", 17: "FrontFacing", 22: "FragDepth", 42: "VertexIndex",
}

var executionModelNames = map[uint32]string{0: "Vertex", 4: "Fragment", 5: "GLCompute"}

var executionModeNames = map[uint32]string{7: "OriginUpperLeft", 8: "OriginLowerLeft", 12: "DepthReplacing"}

// minOperands is the operand count the formatter indexes into directly.
var minOperands = map[OpCode]int{
	OpCapability: 1, OpEntryPoint: 2, OpExecutionMode: 2, OpName: 1,
	OpMemberName: 2, OpDecorate: 2, OpDecorateString: 2, OpMemberDecorate: 3, OpTypeVector: 1,
	OpTypeMatrix: 1, OpTypeImage: 1, OpTypePointer: 1, OpVariable: 1,
	OpCompositeExtract: 1, OpCompositeInsert: 2, OpVectorShuffle: 2,
	OpExtInst: 2, OpLine: 1, OpSelectionMerge: 1, OpLoopMerge: 2,
	OpSwitch: 2, OpImageSampleImplicitLod: 2, OpImageSampleExplicitLod: 2,
	OpImageFetch: 2,
}

func lookup(names map[uint32]string, v uint32) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprint(v)
}

func ref(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

// Disassemble writes a text listing of a SPIR-V module to w, one
// instruction per line.
func Disassemble(w io.Writer, words []uint32) error {
	h, instructions, err := Decode(words)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "; SPIR-V\n")
	fmt.Fprintf(w, "; Version: %d.%d\n", h.Version.Major, h.Version.Minor)
	fmt.Fprintf(w, "; Generator: 0x%08X\n", h.Generator)
	fmt.Fprintf(w, "; Bound: %d\n", h.Bound)
	fmt.Fprintf(w, "; Schema: %d\n", h.Schema)

	for i := range instructions {
		if _, err := fmt.Fprintln(w, FormatInstruction(&instructions[i])); err != nil {
			return err
		}
	}
	return nil
}

// FormatInstruction returns the text form of one instruction.
func FormatInstruction(inst *Instruction) string {
	var sb strings.Builder
	if inst.Result != 0 {
		fmt.Fprintf(&sb, "%12s = ", ref(inst.Result))
	} else {
		sb.WriteString(strings.Repeat(" ", 15))
	}
	sb.WriteString(inst.Op.String())
	if inst.Type != 0 {
		sb.WriteString(" " + ref(inst.Type))
	}

	ops := inst.Operands
	if len(ops) < minOperands[inst.Op] {
		for _, op := range ops {
			sb.WriteString(" " + ref(op))
		}
		return sb.String()
	}
	write := func(s string) { sb.WriteString(" " + s) }
	ids := func(from int) {
		for _, op := range ops[min(from, len(ops)):] {
			write(ref(op))
		}
	}
	literals := func(from int) {
		for _, op := range ops[min(from, len(ops)):] {
			write(fmt.Sprint(op))
		}
	}
	str := func(from int) int {
		s, n := DecodeString(ops[min(from, len(ops)):])
		write(fmt.Sprintf("%q", s))
		return from + n
	}

	switch inst.Op {
	case OpCapability:
		write(lookup(capabilityNames, ops[0]))
	case OpExtension, OpExtInstImport, OpString:
		str(0)
	case OpMemoryModel:
		write("Logical")
		write("GLSL450")
	case OpSource:
		write("Unknown")
		literals(1)
	case OpEntryPoint:
		write(lookup(executionModelNames, ops[0]))
		write(ref(ops[1]))
		ids(str(2))
	case OpExecutionMode:
		write(ref(ops[0]))
		write(lookup(executionModeNames, ops[1]))
		literals(2)
	case OpName:
		write(ref(ops[0]))
		str(1)
	case OpMemberName:
		write(ref(ops[0]))
		write(fmt.Sprint(ops[1]))
		str(2)
	case OpDecorate:
		write(ref(ops[0]))
		write(lookup(decorationNames, ops[1]))
		if Decoration(ops[1]) == DecorationBuiltIn && len(ops) > 2 {
			write(lookup(builtInNames, ops[2]))
		} else {
			literals(2)
		}
	case OpDecorateString:
		write(ref(ops[0]))
		write(lookup(decorationNames, ops[1]))
		str(2)
	case OpMemberDecorate:
		write(ref(ops[0]))
		write(fmt.Sprint(ops[1]))
		write(lookup(decorationNames, ops[2]))
		literals(3)
	case OpTypeInt, OpTypeFloat, OpConstant, OpSpecConstant:
		literals(0)
	case OpTypeVector, OpTypeMatrix:
		write(ref(ops[0]))
		literals(1)
	case OpTypeImage:
		write(ref(ops[0]))
		write("2D")
		literals(2)
	case OpTypePointer:
		write(lookup(storageClassNames, ops[0]))
		ids(1)
	case OpVariable:
		write(lookup(storageClassNames, ops[0]))
		ids(1)
	case OpFunction:
		write("None")
		ids(1)
	case OpCompositeExtract:
		write(ref(ops[0]))
		literals(1)
	case OpCompositeInsert:
		write(ref(ops[0]))
		write(ref(ops[1]))
		literals(2)
	case OpVectorShuffle:
		write(ref(ops[0]))
		write(ref(ops[1]))
		literals(2)
	case OpExtInst:
		write(ref(ops[0]))
		write(fmt.Sprint(ops[1]))
		ids(2)
	case OpLine:
		write(ref(ops[0]))
		literals(1)
	case OpSelectionMerge:
		write(ref(ops[0]))
		literals(1)
	case OpLoopMerge:
		write(ref(ops[0]))
		write(ref(ops[1]))
		literals(2)
	case OpSwitch:
		write(ref(ops[0]))
		write(ref(ops[1]))
		for i := 2; i+1 < len(ops); i += 2 {
			write(fmt.Sprint(ops[i]))
			write(ref(ops[i+1]))
		}
	case OpImageSampleImplicitLod, OpImageSampleExplicitLod, OpImageFetch:
		write(ref(ops[0]))
		write(ref(ops[1]))
		imageOperands(&sb, ops[2:])
	case OpImageGather:
		for _, op := range ops[:min(3, len(ops))] {
			write(ref(op))
		}
		if len(ops) > 3 {
			imageOperands(&sb, ops[3:])
		}
	default:
		ids(0)
	}
	return sb.String()
}

func imageOperands(sb *strings.Builder, ops []uint32) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(sb, " 0x%x", ops[0])
	for _, op := range ops[1:] {
		sb.WriteString(" " + ref(op))
	}
}
