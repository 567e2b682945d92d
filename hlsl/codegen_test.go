// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/parser"
)

func compile(t *testing.T, source string, opts Options) fx.Module {
	t.Helper()
	p := parser.New(parser.Options{})
	cg, err := New(opts)
	require.NoError(t, err)
	require.True(t, p.Parse(source, cg), p.Diagnostics().String())

	var m fx.Module
	cg.WriteResult(&m)
	require.NotEmpty(t, m.Code)
	assert.Empty(t, m.SPIRV)
	assert.NotContains(t, m.Code, continueMarker)
	assert.Equal(t, strings.Count(m.Code, "{"), strings.Count(m.Code, "}"))
	return m
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

func TestNewRejectsShaderModel3(t *testing.T) {
	_, err := New(Options{ShaderModel: 30})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedShaderModel))

	_, err = New(Options{})
	assert.ErrorIs(t, err, ErrUnsupportedShaderModel)
}

func TestCompileFullscreenPass(t *testing.T) {
	m := compile(t, fullscreen, DefaultOptions())

	require.Len(t, m.EntryPoints, 2)
	assert.Equal(t, fx.EntryPoint{Name: "F__VS"}, m.EntryPoints[0])
	assert.Equal(t, fx.EntryPoint{Name: "F__PS", IsPixelShader: true}, m.EntryPoints[1])

	assert.True(t, strings.HasPrefix(m.Code, "struct __sampler2D { Texture2D t; SamplerState s; };\n"))
	assert.Contains(t, m.Code, "cbuffer _Globals : register(b0)\n{\n\tfloat Strength : packoffset(c0);\n};\n")
	assert.Contains(t, m.Code, "Texture2D V__BackBufferTex : register(t0);\nTexture2D __srgbV__BackBufferTex : register(t1);\n")
	assert.Contains(t, m.Code, "SamplerState __s0 : register(s0);\n")
	assert.Contains(t, m.Code, "static const __sampler2D V__BackBuffer = { V__BackBufferTex, __s0 };\n")

	// Stages are plain functions with their semantics.
	assert.Contains(t, m.Code, "void F__VS(in uint id : SV_VERTEXID, out float4 pos : SV_POSITION, out float2 uv : TEXCOORD)\n")
	assert.Regexp(t, `float4 F__PS\(in float4 pos_\d+ : SV_POSITION, in float2 uv_\d+ : TEXCOORD\) : SV_TARGET\n`, m.Code)
	assert.Regexp(t, `V__BackBuffer\.t\.Sample\(V__BackBuffer\.s, uv_\d+\)`, m.Code)
	assert.NotContains(t, m.Code, "ENTRY_POINT_")

	require.Len(t, m.Textures, 1)
	assert.Equal(t, uint32(0), m.Textures[0].Binding)
	assert.Equal(t, uint32(2), m.NumTextureBindings)
	require.Len(t, m.Samplers, 1)
	assert.Equal(t, uint32(0), m.Samplers[0].Binding)
	assert.Equal(t, uint32(0), m.Samplers[0].TextureBinding)
	assert.Equal(t, uint32(1), m.NumSamplerBindings)
	assert.Equal(t, uint32(4), m.TotalUniformSize)
}

func TestSamplerStatesAreShared(t *testing.T) {
	const source = `
texture Tex { Width = 4; Height = 4; };
sampler A { Texture = Tex; };
sampler B { Texture = Tex; SRGBTexture = true; };
sampler C { Texture = Tex; AddressU = WRAP; };
float4 PS(float2 uv : TEXCOORD) : SV_Target { return tex2D(A, uv) + tex2D(B, uv) + tex2D(C, uv); }
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Equal(t, uint32(2), m.NumSamplerBindings)
	assert.Equal(t, uint32(2), m.NumTextureBindings)
	require.Len(t, m.Samplers, 3)

	assert.Equal(t, uint32(0), m.Samplers[0].Binding)
	assert.Equal(t, uint32(0), m.Samplers[1].Binding)
	assert.Equal(t, uint32(1), m.Samplers[2].Binding)
	assert.Equal(t, uint32(0), m.Samplers[0].TextureBinding)
	assert.Equal(t, uint32(1), m.Samplers[1].TextureBinding)

	assert.Equal(t, 2, strings.Count(m.Code, "SamplerState __s"))
	assert.Contains(t, m.Code, "static const __sampler2D V__B = { __srgbV__Tex, __s0 };\n")
	assert.Contains(t, m.Code, "static const __sampler2D V__C = { V__Tex, __s1 };\n")
}

func TestUniformPacking(t *testing.T) {
	const source = `
uniform float A;
uniform float2 B;
uniform float4x4 C;
uniform bool D;
float4 PS() : SV_Target { return D ? mul(float4(B, A, 1.0), C) : 0.0; }
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "\tfloat A : packoffset(c0);\n"+
		"\tfloat2 B : packoffset(c0.z);\n"+
		"\trow_major float4x4 C : packoffset(c1);\n"+
		"\tbool D : packoffset(c5);\n")
	assert.Equal(t, uint32(84), m.TotalUniformSize)
	assert.Regexp(t, `mul\(_\d+, C\)`, m.Code)
}

func TestUniformsToSpecConstants(t *testing.T) {
	const source = `
uniform int Steps = 4;
uniform float2 Offset = float2(1.0, 2.0);
float4 PS() : SV_Target { return float4(Offset, Steps, 1.0); }
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, Options{ShaderModel: ShaderModel5_0, UniformsToSpecConstants: true})

	require.Len(t, m.SpecConstants, 1)
	assert.Equal(t, "Steps", m.SpecConstants[0].Name)
	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, "Offset", m.Uniforms[0].Name)

	assert.Contains(t, m.Code, "#ifndef SPEC_CONSTANT_Steps\n#define SPEC_CONSTANT_Steps 4\n#endif\n")
	assert.Contains(t, m.Code, "static const int Steps = SPEC_CONSTANT_Steps;\n")
	assert.Contains(t, m.Code, "\tfloat2 Offset : packoffset(c0);\n")
}

func TestStructuredControlFlow(t *testing.T) {
	const source = `
uniform int Count;
float4 PS(float2 uv : TEXCOORD) : SV_Target
{
	float sum = 0.0;
	[unroll] for (int i = 0; i < 4; i++)
	{
		if (i == Count)
			continue;
		sum += uv.x;
	}
	int j = 0;
	[loop] while (j < Count)
		j++;
	[branch] switch (Count)
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
	[flatten] if (sum > 10.0)
		discard;
	return sum;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "\t[unroll]\n\twhile (i < 4)")
	assert.Contains(t, m.Code, "\t[loop]\n\twhile (j < Count)")
	assert.Contains(t, m.Code, "continue;")
	assert.Contains(t, m.Code, "\t[branch]\n\tswitch (Count)")
	assert.Contains(t, m.Code, "case 0: {")
	assert.Contains(t, m.Code, "case 1: case 2: {")
	assert.Contains(t, m.Code, "default: {")
	assert.Contains(t, m.Code, "\t[flatten]\n\tif (")
	// Discard may end a function with a result.
	assert.Contains(t, m.Code, "discard;\n\t\treturn float4(0.0, 0.0, 0.0, 0.0);\n")
}

func TestDoWhile(t *testing.T) {
	const source = `
uniform int N;
float4 PS() : SV_Target
{
	int i = 0;
	do { i++; } while (i < N);
	return i;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "\tdo\n")
	cond := regexp.MustCompile(`while \((_\d+)\);`).FindStringSubmatch(m.Code)
	require.NotNil(t, cond, m.Code)
	assert.Contains(t, m.Code, "\tbool "+cond[1]+";\n")
	assert.Contains(t, m.Code, cond[1]+" = i < N;")
}

func TestOperators(t *testing.T) {
	const source = `
uniform float4 A;
uniform float4 B;
uniform float3x3 M;
float4 PS() : SV_Target
{
	float4 r = A % B;
	bool4 lt = A < B;
	if (any(lt))
		r = -r;
	r.xy += M._m00_m11;
	return lt ? r : A;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "A % B;")
	assert.Contains(t, m.Code, "A < B;")
	assert.Contains(t, m.Code, "any(lt)")
	assert.Contains(t, m.Code, "M._m00_m11")
	assert.Regexp(t, `lt \? r(_\d+)? : A;`, m.Code)
	assert.NotContains(t, m.Code, "fmodHLSL")
}

func TestIntrinsics(t *testing.T) {
	const source = `
texture Tex { Width = 64; Height = 64; };
sampler Smp { Texture = Tex; };
float4 PS(float2 uv : TEXCOORD) : SV_Target
{
	float4 c = tex2Dlod(Smp, float4(uv, 0, 2));
	c += tex2Dfetch(Smp, int2(1, 2));
	c += tex2DgatherG(Smp, uv);
	int2 size = tex2Dsize(Smp);
	int2 mip = tex2Dsize(Smp, 1);
	return saturate(c) * rcp(c.y) + mad(c.x, c.y, c.z) + size.x + mip.y + log10(c.w);
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "V__Smp.t.SampleLevel(V__Smp.s, ")
	assert.Contains(t, m.Code, "V__Smp.t.Load(int3(")
	assert.Regexp(t, `V__Smp\.t\.GatherGreen\(V__Smp\.s, uv(_\d+)?\)`, m.Code)
	assert.Regexp(t, `int2 (_\d+); V__Smp\.t\.GetDimensions\(_\d+\.x, _\d+\.y\);`, m.Code)
	assert.Regexp(t, `uint _levels_\d+; V__Smp\.t\.GetDimensions\(1, `, m.Code)
	assert.Contains(t, m.Code, "saturate(c)")
	assert.Contains(t, m.Code, "rcp(")
	assert.Contains(t, m.Code, "mad(")
	assert.Contains(t, m.Code, "log10(")

	m = compile(t, source, Options{ShaderModel: ShaderModel4_1})
	assert.NotContains(t, m.Code, "GatherGreen")
	assert.Contains(t, m.Code, "int2(0, 1)).g")
	assert.Contains(t, m.Code, "(1.0 / ")
	assert.NotContains(t, m.Code, "mad(")
}

func TestNames(t *testing.T) {
	const source = `
uniform float cbuffer;
uniform float Pass;
float4 PS() : SV_Target
{
	float r = 0.0;
	{ float x = cbuffer; r += x; }
	{ float x = Pass; r += x; }
	return r;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "\tfloat _cbuffer : packoffset(c0);\n")
	assert.Contains(t, m.Code, "\tfloat Pass_RESERVED : packoffset(c0.y);\n")
	assert.Contains(t, m.Code, "\tfloat x = _cbuffer;\n")
	assert.Regexp(t, `\tfloat x_\d+ = Pass_RESERVED;\n`, m.Code)
}

func TestGlobalsAreStatic(t *testing.T) {
	const source = `
static float Counter = 1.0;
static float Other;
float4 PS() : SV_Target { Other = Counter; return Other; }
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())
	assert.Contains(t, m.Code, "static float V__Counter = 1.0;\n")
	assert.Contains(t, m.Code, "static float V__Other = 0.0;\n")
	assert.Contains(t, m.Code, "\tV__Other = V__Counter;\n")
}

func TestDebugInfo(t *testing.T) {
	source := "#line 1 \"effect.fx\"\n" + fullscreen

	m := compile(t, source, Options{ShaderModel: ShaderModel5_0, DebugInfo: true})
	assert.Regexp(t, `#line \d+ "effect.fx"\n`, m.Code)
	assert.Equal(t, 1, strings.Count(m.Code, "\"effect.fx\""))

	m = compile(t, source, DefaultOptions())
	assert.NotContains(t, m.Code, "#line ")
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{1, "1.0"},
		{0.25, "0.25"},
		{-3, "-3.0"},
		{float32(math.Inf(1)), "asfloat(0x7F800000)"},
		{float32(math.Inf(-1)), "asfloat(0xFF800000)"},
		{float32(math.NaN()), "asfloat(0x7FC00000)"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertSemantic(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"POSITION", "SV_POSITION"},
		{"VPOS", "SV_POSITION"},
		{"DEPTH", "SV_DEPTH"},
		{"COLOR", "SV_TARGET"},
		{"COLOR1", "SV_TARGET1"},
		{"COLORS", "COLORS"},
		{"TEXCOORD0", "TEXCOORD0"},
		{"SV_TARGET", "SV_TARGET"},
	}
	for _, tt := range tests {
		if got := convertSemantic(tt.in); got != tt.want {
			t.Errorf("convertSemantic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPackOffset(t *testing.T) {
	tests := []struct {
		offset uint32
		want   string
	}{
		{0, "c0"},
		{4, "c0.y"},
		{8, "c0.z"},
		{12, "c0.w"},
		{96, "c6"},
	}
	for _, tt := range tests {
		if got := packOffset(tt.offset); got != tt.want {
			t.Errorf("packOffset(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}
