package spirv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionEncode(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want []uint32
	}{
		{
			name: "no result",
			inst: Instruction{Op: OpCapability, Operands: []uint32{uint32(CapabilityShader)}},
			want: []uint32{2<<16 | uint32(OpCapability), 1},
		},
		{
			name: "result only",
			inst: Instruction{Op: OpTypeVoid, Result: 4},
			want: []uint32{2<<16 | uint32(OpTypeVoid), 4},
		},
		{
			name: "type and result",
			inst: Instruction{Op: OpFAdd, Type: 2, Result: 7, Operands: []uint32{5, 6}},
			want: []uint32{5<<16 | uint32(OpFAdd), 2, 7, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, len(tt.want), tt.inst.WordCount())
			assert.Equal(t, tt.want, tt.inst.Encode(nil))
		})
	}
}

func TestAddString(t *testing.T) {
	tests := []struct {
		s     string
		words int
	}{
		{"", 1},
		{"abc", 1},
		{"main", 2},
		{"GLSL.std.450", 4},
	}

	for _, tt := range tests {
		var inst Instruction
		inst.AddString(tt.s)
		require.Len(t, inst.Operands, tt.words, "%q", tt.s)

		s, n := DecodeString(inst.Operands)
		assert.Equal(t, tt.s, s)
		assert.Equal(t, tt.words, n)
	}
}

func TestDecodeStringFollowedByOperands(t *testing.T) {
	var inst Instruction
	inst.Add(4).AddString("main").Add(9, 10)

	s, n := DecodeString(inst.Operands[1:])
	assert.Equal(t, "main", s)
	assert.Equal(t, []uint32{9, 10}, inst.Operands[1+n:])
}

func TestAssembleDecode(t *testing.T) {
	h := Header{Version: Version1_3, Generator: GeneratorID, Bound: 8}
	words := Assemble(h,
		[]Instruction{{Op: OpCapability, Operands: []uint32{uint32(CapabilityShader)}}},
		[]Instruction{
			{Op: OpTypeFloat, Result: 1, Operands: []uint32{32}},
			{Op: OpConstant, Type: 1, Result: 2, Operands: []uint32{0x3f800000}},
		},
	)

	assert.Equal(t, uint32(MagicNumber), words[0])
	assert.Equal(t, uint32(0x00010300), words[1])

	got, instructions, err := Decode(words)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	require.Len(t, instructions, 3)
	assert.Equal(t, OpConstant, instructions[2].Op)
	assert.Equal(t, uint32(1), instructions[2].Type)
	assert.Equal(t, uint32(2), instructions[2].Result)
	assert.Equal(t, []uint32{0x3f800000}, instructions[2].Operands)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode([]uint32{MagicNumber, 0})
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = Decode([]uint32{0xdeadbeef, 0, 0, 0, 0})
	require.ErrorIs(t, err, ErrInvalidMagic)

	// Word count runs past the end.
	_, _, err = Decode([]uint32{MagicNumber, 0, 0, 1, 0, 4<<16 | uint32(OpTypeVoid), 1})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestBytesWords(t *testing.T) {
	words := []uint32{MagicNumber, 0x00010300}
	data := Bytes(words)
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x03, 0x01, 0x00}, data)

	back, err := Words(data)
	require.NoError(t, err)
	assert.Equal(t, words, back)

	_, err = Words(data[:3])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestModuleBuilderLayout(t *testing.T) {
	var b moduleBuilder
	b.addCapability(CapabilityMatrix)
	b.addCapability(CapabilityMatrix)
	b.addExtension("SPV_GOOGLE_hlsl_functionality1")
	b.types = append(b.types, Instruction{Op: OpTypeVoid, Result: 2})
	b.debugNames = append(b.debugNames, *(&Instruction{Op: OpName}).Add(2).AddString("void"))

	words := b.build(3, 1, false, nil)
	h, instructions, err := Decode(words)
	require.NoError(t, err)
	assert.Equal(t, Version1_3, h.Version)
	assert.Equal(t, uint32(3), h.Bound)

	ops := make([]OpCode, len(instructions))
	for i := range instructions {
		ops[i] = instructions[i].Op
	}
	assert.Equal(t, []OpCode{
		OpCapability, OpCapability, OpExtension, OpExtInstImport,
		OpMemoryModel, OpSource, OpTypeVoid,
	}, ops)

	// Debug names are only written on request.
	_, instructions, err = Decode(b.build(3, 1, true, nil))
	require.NoError(t, err)
	assert.Equal(t, OpName, instructions[6].Op)
}
