package spirv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/parser"
)

func compile(t *testing.T, source string, opts Options) (fx.Module, []Instruction) {
	t.Helper()
	p := parser.New(parser.Options{})
	cg := New(opts)
	require.True(t, p.Parse(source, cg), p.Diagnostics().String())

	var m fx.Module
	cg.WriteResult(&m)

	h, instructions, err := Decode(m.SPIRV)
	require.NoError(t, err)
	assert.Equal(t, Version1_3, h.Version)
	for i := range instructions {
		require.Less(t, instructions[i].Result, h.Bound, "%s", FormatInstruction(&instructions[i]))
	}
	return m, instructions
}

func count(instructions []Instruction, op OpCode) int {
	n := 0
	for i := range instructions {
		if instructions[i].Op == op {
			n++
		}
	}
	return n
}

func find(instructions []Instruction, op OpCode) []Instruction {
	var out []Instruction
	for i := range instructions {
		if instructions[i].Op == op {
			out = append(out, instructions[i])
		}
	}
	return out
}

func isTerminator(op OpCode) bool {
	switch op {
	case OpBranch, OpBranchConditional, OpSwitch, OpReturn, OpReturnValue, OpKill, OpUnreachable:
		return true
	}
	return false
}

// requireBlocks checks that every block in every function is closed by
// exactly one terminator and that labels are unique.
func requireBlocks(t *testing.T, instructions []Instruction) {
	t.Helper()
	labels := map[uint32]bool{}
	inBlock := false
	for i := range instructions {
		inst := &instructions[i]
		switch {
		case inst.Op == OpLabel:
			require.False(t, inBlock, "label %%%d opened inside a block", inst.Result)
			require.False(t, labels[inst.Result], "label %%%d defined twice", inst.Result)
			labels[inst.Result] = true
			inBlock = true
		case isTerminator(inst.Op):
			require.True(t, inBlock, "%s outside a block", FormatInstruction(inst))
			inBlock = false
		case inst.Op == OpFunctionEnd:
			require.False(t, inBlock, "function ends inside an open block")
		}
	}
}

const fullscreen = `
uniform float Strength = 0.5;

texture BackBufferTex : COLOR;
sampler BackBuffer { Texture = BackBufferTex; };

void VS(in uint id : SV_VertexID, out float4 pos : SV_Position, out float2 uv : TEXCOORD)
{
	uv.x = (id == 2) ? 2.0 : 0.0;
	uv.y = (id == 1) ? 2.0 : 0.0;
	pos = float4(uv * float2(2.0, -2.0) + float2(-1.0, 1.0), 0.0, 1.0);
}

float4 PS(float4 pos : SV_Position, float2 uv : TEXCOORD) : SV_Target
{
	return tex2D(BackBuffer, uv) * Strength;
}

technique Example { pass { VertexShader = VS; PixelShader = PS; } }
`

func TestCompileFullscreenPass(t *testing.T) {
	m, instructions := compile(t, fullscreen, DefaultOptions())
	requireBlocks(t, instructions)

	require.Len(t, m.EntryPoints, 2)
	assert.Equal(t, fx.EntryPoint{Name: "F__VS"}, m.EntryPoints[0])
	assert.Equal(t, fx.EntryPoint{Name: "F__PS", IsPixelShader: true}, m.EntryPoints[1])

	entries := find(instructions, OpEntryPoint)
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(ExecutionModelVertex), entries[0].Operands[0])
	name, _ := DecodeString(entries[0].Operands[2:])
	assert.Equal(t, "F__VS", name)
	assert.Equal(t, uint32(ExecutionModelFragment), entries[1].Operands[0])

	modes := find(instructions, OpExecutionMode)
	require.Len(t, modes, 1)
	assert.Equal(t, entries[1].Operands[1], modes[0].Operands[0])
	assert.Equal(t, uint32(ExecutionModeOriginUpperLeft), modes[0].Operands[1])

	require.Len(t, m.Samplers, 1)
	assert.Equal(t, uint32(1), m.NumSamplerBindings)
	assert.Equal(t, 1, count(instructions, OpImageSampleImplicitLod))
	assert.Equal(t, 1, count(instructions, OpTypeSampledImage))

	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, uint32(4), m.TotalUniformSize)
	assert.Empty(t, m.SpecConstants)
}

func TestInvertY(t *testing.T) {
	const source = `
float4 VS(uint id : SV_VertexID) : SV_Position { return float4(id, 0.0, 0.0, 1.0); }
float4 PS() : SV_Target { return 1.0; }
technique T { pass { VertexShader = VS; PixelShader = PS; } }
`
	opts := DefaultOptions()
	_, instructions := compile(t, source, opts)
	assert.Equal(t, 1, count(instructions, OpFNegate))

	opts.InvertY = false
	_, instructions = compile(t, source, opts)
	assert.Zero(t, count(instructions, OpFNegate))
}

func TestUniformBlockLayout(t *testing.T) {
	const source = `
uniform float A;
uniform float3 B;
uniform float4x4 C;
uniform bool D;
float4 PS() : SV_Target { return D ? mul(float4(B, A), C) : 0.0; }
technique T { pass { PixelShader = PS; } }
`
	m, instructions := compile(t, source, Options{VulkanSemantics: true})
	requireBlocks(t, instructions)

	require.Len(t, m.Uniforms, 4)
	offsets := make([]uint32, len(m.Uniforms))
	for i, u := range m.Uniforms {
		offsets[i] = u.Offset
	}
	assert.Equal(t, []uint32{0, 16, 32, 96}, offsets)
	assert.Equal(t, uint32(100), m.TotalUniformSize)

	var decorated []uint32
	for _, inst := range find(instructions, OpMemberDecorate) {
		if Decoration(inst.Operands[2]) == DecorationOffset {
			decorated = append(decorated, inst.Operands[3])
		}
	}
	assert.Equal(t, offsets, decorated)

	// Booleans are stored as integers and converted on load.
	assert.Equal(t, 1, count(instructions, OpINotEqual))
}

func TestUniformsToSpecConstants(t *testing.T) {
	const source = `
uniform int Steps = 4;
uniform float2 Offset = float2(1.0, 2.0);
float4 PS() : SV_Target { return float4(Offset, Steps, 1.0); }
technique T { pass { PixelShader = PS; } }
`
	m, instructions := compile(t, source, Options{UniformsToSpecConstants: true})

	require.Len(t, m.SpecConstants, 1)
	assert.Equal(t, "Steps", m.SpecConstants[0].Name)
	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, "Offset", m.Uniforms[0].Name)

	specs := find(instructions, OpSpecConstant)
	require.Len(t, specs, 1)
	assert.Equal(t, []uint32{4}, specs[0].Operands)

	var specID []uint32
	for _, inst := range find(instructions, OpDecorate) {
		if inst.Operands[0] == specs[0].Result && Decoration(inst.Operands[1]) == DecorationSpecID {
			specID = inst.Operands[2:]
		}
	}
	assert.Equal(t, []uint32{0}, specID)
}

func TestStructuredControlFlow(t *testing.T) {
	const source = `
uniform int Count;
float4 PS(float2 uv : TEXCOORD) : SV_Target
{
	float sum = 0.0;
	for (int i = 0; i < Count; i++)
	{
		if (i == 3)
			continue;
		sum += uv.x;
	}
	int j = 0;
	while (j < 4)
		j++;
	switch (Count)
	{
	case 0:
		sum = 1.0;
		break;
	case 1:
	case 2:
		sum *= 2.0;
		break;
	default:
		sum = 0.5;
		break;
	}
	if (sum > 10.0)
		discard;
	return sum;
}
technique T { pass { PixelShader = PS; } }
`
	_, instructions := compile(t, source, DefaultOptions())
	requireBlocks(t, instructions)

	assert.Equal(t, 2, count(instructions, OpLoopMerge))
	assert.GreaterOrEqual(t, count(instructions, OpSelectionMerge), 3)
	assert.Equal(t, 1, count(instructions, OpKill))

	switches := find(instructions, OpSwitch)
	require.Len(t, switches, 1)
	// Selector, default and three literal/label pairs.
	assert.Len(t, switches[0].Operands, 8)

	// Every merge is directly followed by the branch it annotates.
	for i := range instructions {
		switch instructions[i].Op {
		case OpSelectionMerge:
			next := instructions[i+1].Op
			assert.True(t, next == OpBranchConditional || next == OpSwitch, next.String())
		case OpLoopMerge:
			next := instructions[i+1].Op
			assert.True(t, next == OpBranch || next == OpBranchConditional, next.String())
		}
	}
}

func TestShortCircuitPhi(t *testing.T) {
	const source = `
uniform bool A;
uniform bool B;
float4 PS() : SV_Target
{
	if (A && B)
		return 1.0;
	return 0.0;
}
technique T { pass { PixelShader = PS; } }
`
	_, instructions := compile(t, source, DefaultOptions())
	requireBlocks(t, instructions)
	assert.Equal(t, 1, count(instructions, OpPhi))
}

func TestIntrinsics(t *testing.T) {
	const source = `
texture Tex { Width = 64; Height = 64; };
sampler Smp { Texture = Tex; };
float gamma(float x) { return pow(x, 2.2); }
float4 PS(float2 uv : TEXCOORD) : SV_Target
{
	float4 c = tex2Dlod(Smp, float4(uv, 0, 2));
	c += tex2Dfetch(Smp, int2(1, 2));
	c += tex2DgatherR(Smp, uv);
	int2 size = tex2Dsize(Smp);
	float e;
	float m = frexp(c.x, e);
	return saturate(c) * m * e + float(size.x) + gamma(c.y);
}
technique T { pass { PixelShader = PS; } }
`
	_, instructions := compile(t, source, DefaultOptions())
	requireBlocks(t, instructions)

	assert.Equal(t, 1, count(instructions, OpImageSampleExplicitLod))
	assert.Equal(t, 1, count(instructions, OpImageFetch))
	assert.Equal(t, 1, count(instructions, OpImageGather))
	assert.Equal(t, 1, count(instructions, OpImageQuerySizeLod))
	// The entry point wrapper calls PS, which calls gamma.
	assert.Equal(t, 2, count(instructions, OpFunctionCall))

	capabilities := map[uint32]bool{}
	for _, inst := range find(instructions, OpCapability) {
		capabilities[inst.Operands[0]] = true
	}
	assert.True(t, capabilities[uint32(CapabilityImageQuery)])

	var ext []uint32
	for _, inst := range find(instructions, OpExtInst) {
		ext = append(ext, inst.Operands[1])
	}
	assert.Contains(t, ext, uint32(GLSLstd450Frexp))
	assert.Contains(t, ext, uint32(GLSLstd450FClamp))
	assert.Contains(t, ext, uint32(GLSLstd450Pow))
}

func TestDebugInfo(t *testing.T) {
	_, instructions := compile(t, fullscreen, Options{DebugInfo: true})

	var names []string
	for _, inst := range find(instructions, OpName) {
		s, _ := DecodeString(inst.Operands[1:])
		names = append(names, s)
	}
	assert.Contains(t, names, "$Globals")
	assert.Contains(t, names, "F__PS")

	var semantics []string
	for _, inst := range find(instructions, OpDecorateString) {
		require.Equal(t, DecorationHlslSemanticGOOGLE, Decoration(inst.Operands[1]))
		s, _ := DecodeString(inst.Operands[2:])
		semantics = append(semantics, s)
	}
	assert.Contains(t, semantics, "TEXCOORD")
	exts := find(instructions, OpExtension)
	require.Len(t, exts, 1)
	ext, _ := DecodeString(exts[0].Operands)
	assert.Equal(t, "SPV_GOOGLE_hlsl_functionality1", ext)

	_, instructions = compile(t, fullscreen, Options{})
	assert.Zero(t, count(instructions, OpName))
	assert.Zero(t, count(instructions, OpDecorateString))
	assert.Zero(t, count(instructions, OpExtension))
}

func TestDisassemble(t *testing.T) {
	m, _ := compile(t, fullscreen, DefaultOptions())

	var sb strings.Builder
	require.NoError(t, Disassemble(&sb, m.SPIRV))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "; SPIR-V\n; Version: 1.3\n"))
	assert.Contains(t, out, "OpCapability Shader")
	assert.Contains(t, out, `OpExtInstImport "GLSL.std.450"`)
	assert.Contains(t, out, `OpEntryPoint Fragment`)
	assert.Contains(t, out, `"F__PS"`)
	assert.Contains(t, out, "OpExecutionMode")
	assert.Contains(t, out, "OriginUpperLeft")
	assert.Contains(t, out, "OpDecorate")
	assert.Contains(t, out, "DescriptorSet 1")

	require.ErrorIs(t, Disassemble(&sb, []uint32{1, 2, 3, 4, 5}), ErrInvalidMagic)
}
