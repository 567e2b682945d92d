// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
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
	cg := New(opts)
	require.True(t, p.Parse(source, cg), p.Diagnostics().String())

	var m fx.Module
	cg.WriteResult(&m)
	require.NotEmpty(t, m.Code)
	assert.Empty(t, m.SPIRV)
	assert.NotContains(t, m.Code, continueMarker)
	return m
}

// stage returns the text between #ifdef ENTRY_POINT_<name> and its #endif.
func stage(t *testing.T, code, name string) string {
	t.Helper()
	_, rest, ok := strings.Cut(code, "#ifdef ENTRY_POINT_"+name+"\n")
	require.True(t, ok, "no entry point %s in\n%s", name, code)
	body, _, ok := strings.Cut(rest, "#endif\n")
	require.True(t, ok)
	return body
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
	m := compile(t, fullscreen, DefaultOptions())

	require.Len(t, m.EntryPoints, 2)
	assert.Equal(t, fx.EntryPoint{Name: "F__VS"}, m.EntryPoints[0])
	assert.Equal(t, fx.EntryPoint{Name: "F__PS", IsPixelShader: true}, m.EntryPoints[1])

	assert.True(t, strings.HasPrefix(m.Code, "#version 450 core\n"))
	assert.Contains(t, m.Code, "layout(std140, column_major, binding = 0) uniform _Globals {\n\tlayout(offset = 0) float Strength;\n};\n")
	assert.Contains(t, m.Code, "layout(binding = 0) uniform sampler2D V_BackBuffer;\n")
	// Both stages have a parameter called uv, the second one gets renamed.
	assert.Regexp(t, `texture\(V_BackBuffer, uv_\d+\)`, m.Code)

	vs := stage(t, m.Code, "F__VS")
	assert.Contains(t, vs, "void main()\n{\n")
	assert.Contains(t, vs, "\t_param0 = uint(gl_VertexID);\n")
	assert.Contains(t, vs, "\tgl_Position = vec4(_param1);\n")
	assert.Contains(t, vs, "layout(location = 0) out vec2 _out_param2;\n")
	assert.Contains(t, vs, "\tF_VS(_param0, _param1, _param2);\n")
	assert.NotContains(t, vs, "gl_Position.y = -gl_Position.y")

	ps := stage(t, m.Code, "F__PS")
	assert.Contains(t, ps, "layout(origin_upper_left) in vec4 gl_FragCoord;\n")
	assert.Contains(t, ps, "layout(location = 0) in vec2 _in_param1;\n")
	assert.Contains(t, ps, "layout(location = 0) out vec4 _return;\n")
	assert.Contains(t, ps, "\tvec4 _ret = F_PS(_param0, _param1);\n")
	assert.Contains(t, ps, "\t_return = vec4(_ret);\n")
	assert.NotContains(t, ps, "vec4 _return =")

	require.Len(t, m.Samplers, 1)
	assert.Equal(t, uint32(0), m.Samplers[0].Binding)
	assert.Equal(t, uint32(1), m.NumSamplerBindings)
	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, uint32(4), m.TotalUniformSize)
}

func TestVulkanSemantics(t *testing.T) {
	m := compile(t, fullscreen, Options{Version: Version450, VulkanSemantics: true, InvertY: true})

	assert.Contains(t, m.Code, "layout(std140, column_major, set = 0, binding = 0) uniform _Globals {")
	assert.Contains(t, m.Code, "layout(set = 1, binding = 0) uniform sampler2D V_BackBuffer;")
	assert.Contains(t, stage(t, m.Code, "F__VS"), "uint(gl_VertexIndex)")
	assert.Contains(t, stage(t, m.Code, "F__VS"), "\tgl_Position.y = -gl_Position.y;\n")
	assert.NotContains(t, m.Code, "origin_upper_left")
}

func TestVersions(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		prefix  string
		offsets bool
	}{
		{"core 450", Version450, "#version 450 core\n", true},
		{"core 430", Version430, "#version 430 core\n", false},
		{"es 310", VersionES310, "#version 310 es\nprecision highp float;\n", false},
		{"none", Version{}, "layout(std140", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compile(t, fullscreen, Options{Version: tt.version})
			assert.True(t, strings.HasPrefix(m.Code, tt.prefix), m.Code)
			assert.Equal(t, tt.offsets, strings.Contains(m.Code, "layout(offset = "))
		})
	}
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
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "\tlayout(offset = 0) float A;\n"+
		"\tlayout(offset = 16) vec3 B;\n"+
		"\tlayout(offset = 32) mat4x4 C;\n"+
		"\tlayout(offset = 96) bool D;\n")
	assert.Equal(t, uint32(100), m.TotalUniformSize)

	// Matrices are transposed, so the operands of mul swap.
	assert.Contains(t, m.Code, "(C * _")
}

func TestUniformsToSpecConstants(t *testing.T) {
	const source = `
uniform int Steps = 4;
uniform float2 Offset = float2(1.0, 2.0);
float4 PS() : SV_Target { return float4(Offset, Steps, 1.0); }
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, Options{Version: Version450, UniformsToSpecConstants: true})

	require.Len(t, m.SpecConstants, 1)
	assert.Equal(t, "Steps", m.SpecConstants[0].Name)
	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, "Offset", m.Uniforms[0].Name)

	assert.Contains(t, m.Code, "#ifndef SPEC_CONSTANT_Steps\n#define SPEC_CONSTANT_Steps 4\n#endif\n")
	assert.Contains(t, m.Code, "const int Steps = int(SPEC_CONSTANT_Steps);\n")
	assert.Contains(t, m.Code, "layout(offset = 0) vec2 Offset;")

	m = compile(t, source, Options{Version: Version450, UniformsToSpecConstants: true, VulkanSemantics: true})
	assert.Contains(t, m.Code, "layout(constant_id = 0) const int Steps = 4;\n")
	assert.NotContains(t, m.Code, "SPEC_CONSTANT_")
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
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "while (i < Count)")
	assert.Contains(t, m.Code, "while (j < 4)")
	assert.Contains(t, m.Code, "continue;")
	assert.Contains(t, m.Code, "switch (Count)")
	assert.Contains(t, m.Code, "case 0: {")
	assert.Contains(t, m.Code, "case 1: case 2: {")
	assert.Contains(t, m.Code, "default: {")
	assert.Contains(t, m.Code, "discard;")
	assert.Equal(t, strings.Count(m.Code, "{"), strings.Count(m.Code, "}"))
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

func TestControlFlowAttributes(t *testing.T) {
	const source = `
uniform int Count;
float4 PS() : SV_Target
{
	float sum = 0.0;
	[unroll] for (int i = 0; i < 4; i++)
		sum += 1.0;
	[branch] if (Count > 2)
		sum = 0.0;
	return sum;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())
	assert.Contains(t, m.Code, "#extension GL_EXT_control_flow_attributes : enable\n")
	assert.Contains(t, m.Code, "[[unroll]]")
	assert.Contains(t, m.Code, "[[dont_flatten]]")

	m = compile(t, fullscreen, DefaultOptions())
	assert.NotContains(t, m.Code, "GL_EXT_control_flow_attributes")
}

func TestVectorOperations(t *testing.T) {
	const source = `
uniform float4 A;
uniform float4 B;
float4 PS() : SV_Target
{
	float4 r = A % B;
	bool4 lt = A < B;
	if (any(lt))
		r = 0;
	return lt ? r : A;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "vec4 fmodHLSL(vec4 x, vec4 y)")
	assert.Contains(t, m.Code, "fmodHLSL(A, B)")
	assert.Contains(t, m.Code, "lessThan(A, B)")
	assert.Contains(t, m.Code, "any(lt)")
	assert.Contains(t, m.Code, "vec4 compCond(bvec4 cond, vec4 a, vec4 b)")
	assert.NotContains(t, m.Code, "compOr(")

	// Helpers are only written when used.
	m = compile(t, fullscreen, DefaultOptions())
	assert.NotContains(t, m.Code, "fmodHLSL")
	assert.NotContains(t, m.Code, "compCond")
}

func TestIntrinsics(t *testing.T) {
	const source = `
texture Tex { Width = 64; Height = 64; };
sampler Smp { Texture = Tex; };
float4 PS(float2 uv : TEXCOORD) : SV_Target
{
	float4 c = tex2Dlod(Smp, float4(uv, 0, 2));
	c += tex2Dfetch(Smp, int2(1, 2));
	c += tex2DgatherR(Smp, uv);
	int2 size = tex2Dsize(Smp);
	float e;
	float m = frexp(c.x, e);
	return saturate(c) * m * e + float(size.x) + rcp(c.y);
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, "textureLod(V_Smp, ")
	assert.Contains(t, m.Code, "texelFetch(V_Smp, ")
	assert.Contains(t, m.Code, "textureGather(V_Smp, uv, 0)")
	assert.Contains(t, m.Code, "textureSize(V_Smp, 0)")
	assert.Contains(t, m.Code, "clamp(c, 0.0, 1.0)")
	assert.Contains(t, m.Code, "frexp(")
	assert.Contains(t, m.Code, "(1.0 / ")
}

func TestNames(t *testing.T) {
	const source = `
uniform float mix;
uniform float gl_Scale;
float4 PS() : SV_Target
{
	float r = 0.0;
	{ float x = mix; r += x; }
	{ float x = gl_Scale; r += x; }
	return r;
}
technique T { pass { PixelShader = PS; } }
`
	m := compile(t, source, DefaultOptions())

	assert.Contains(t, m.Code, " float _mix;\n")
	assert.Contains(t, m.Code, " float _gl_Scale;\n")
	assert.Contains(t, m.Code, "\tfloat x = _mix;\n")
	assert.Regexp(t, `\tfloat x_\d+ = _gl_Scale;\n`, m.Code)
}

func TestDebugInfo(t *testing.T) {
	source := "#line 1 \"effect.fx\"\n" + fullscreen

	m := compile(t, source, Options{Version: Version450, DebugInfo: true})
	assert.Contains(t, m.Code, "#line ")

	m = compile(t, source, DefaultOptions())
	assert.NotContains(t, m.Code, "#line ")
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"color", "color"},
		{"main", "_main"},
		{"texture", "_texture"},
		{"gl_Position", "_gl_Position"},
		{"V__Tex", "V_Tex"},
		{"F__Outer__f", "F_Outer_f"},
	}
	for _, tt := range tests {
		if got := escapeName(tt.in); got != tt.want {
			t.Errorf("escapeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-2, "-2.0"},
		{1e20, "1e+20"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"450", Version450, false},
		{"430 core", Version430, false},
		{"310 es", VersionES310, false},
		{"", Version{}, false},
		{"45", Version{}, true},
		{"450 compatibility", Version{}, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, %v; want %v, error %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
