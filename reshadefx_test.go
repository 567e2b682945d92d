package reshadefx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/hlsl"
	"github.com/gogpu/reshadefx/spirv"
)

const passThrough = `
void PostProcessVS(in uint id : SV_VertexID, out float4 pos : SV_Position, out float2 uv : TEXCOORD)
{
	uv = float2((id == 2) ? 2.0 : 0.0, (id == 1) ? 2.0 : 0.0);
	pos = float4(uv * float2(2.0, -2.0) + float2(-1.0, 1.0), 0.0, 1.0);
}
`

func compile(t *testing.T, source string, opts Options) *Result {
	t.Helper()
	r, err := Compile("effect.fx", source, opts)
	require.NoError(t, err)
	return r
}

func TestCompileTechniqueAndUniform(t *testing.T) {
	source := "uniform float a : SOURCE; float4 main() : SV_TARGET { return 0; }\ntechnique T { pass P { PixelShader = main; } }"
	r := compile(t, source, DefaultOptions())
	require.True(t, r.Success, r.Diagnostics.String())
	require.NoError(t, r.Err())

	require.Len(t, r.Module.Techniques, 1)
	tech := r.Module.Techniques[0]
	assert.Equal(t, "T", tech.Name)
	require.Len(t, tech.Passes, 1)

	assert.Empty(t, tech.Passes[0].VSEntryPoint)
	ps := tech.Passes[0].PSEntryPoint
	ep, err := r.FindEntryPoint(ps)
	require.NoError(t, err)
	assert.True(t, ep.IsPixelShader)

	require.Len(t, r.Module.Uniforms, 1)
	assert.Equal(t, "a", r.Module.Uniforms[0].Name)
	assert.Equal(t, uint32(4), r.Module.Uniforms[0].Size)

	words := r.Module.SPIRV
	require.Greater(t, len(words), 5)
	assert.Equal(t, uint32(spirv.MagicNumber), words[0])
}

func TestCompilePixelShaderOnlyPass(t *testing.T) {
	source := "float4 main() : SV_TARGET { return 1; }\ntechnique T { pass { PixelShader = main; } }"
	for _, target := range []Target{TargetSPIRV, TargetGLSL, TargetHLSL} {
		t.Run(target.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Target = target
			r := compile(t, source, opts)
			require.True(t, r.Success, r.Diagnostics.String())
			require.Len(t, r.Module.EntryPoints, 1)
			assert.True(t, r.Module.EntryPoints[0].IsPixelShader)
		})
	}
}

func TestCompileFunctionMacroFolds(t *testing.T) {
	source := "#define SQ(x) ((x)*(x))\nint y = SQ(3);\n"
	r := compile(t, source, DefaultOptions())
	require.True(t, r.Success, r.Diagnostics.String())

	u := r.Module.FindUniform("y")
	require.NotNil(t, u)
	assert.True(t, u.HasInitializerValue)
	assert.Equal(t, int32(9), u.InitializerValue.Int(0))
}

func TestCompileTextureAndSampler(t *testing.T) {
	source := "texture2D Tex { Width = 256; Height = 256; };\nsampler2D Samp { Texture = Tex; };\n"
	r := compile(t, source, DefaultOptions())
	require.True(t, r.Success, r.Diagnostics.String())

	require.Len(t, r.Module.Textures, 1)
	tex := r.Module.Textures[0]
	assert.Equal(t, uint32(256), tex.Width)
	assert.Equal(t, uint32(256), tex.Height)

	require.Len(t, r.Module.Samplers, 1)
	assert.Equal(t, tex.UniqueName, r.Module.Samplers[0].TextureName)
}

func TestCompileRejectsCaseFallThrough(t *testing.T) {
	source := `float f(int i)
{
	float r = 0;
	switch (i)
	{
	case 0:
	case 1:
		r = 1;
	default:
		return 2;
	}
	return r;
}
`
	r := compile(t, source, DefaultOptions())
	assert.False(t, r.Success)
	assert.Contains(t, r.Diagnostics.String(), "must have break or return")
	assert.Error(t, r.Err())
}

func TestCompileSelectsElseBranch(t *testing.T) {
	source := "#if 1 == 2\nfloat first;\n#else\nfloat second;\n#endif\n"
	r := compile(t, source, DefaultOptions())
	require.True(t, r.Success, r.Diagnostics.String())

	assert.Contains(t, r.Preprocessed, "float second;")
	assert.NotContains(t, r.Preprocessed, "float first;")
}

func TestCompileReportsEveryOverloadError(t *testing.T) {
	source := `float f(float a) { return a; }
float g() { return f(1, 2); }
float h() { return undefinedThing; }
`
	r := compile(t, source, DefaultOptions())
	assert.False(t, r.Success)

	msg := r.Diagnostics.String()
	assert.Contains(t, msg, "no matching function overload")
	assert.Contains(t, msg, "undefinedThing")
	assert.GreaterOrEqual(t, len(r.Diagnostics.Errors()), 2)
}

func TestCompileUniformOffsetsAgree(t *testing.T) {
	source := "uniform float a;\nuniform float3 x;\nuniform float b;\n"

	var offsets [][]uint32
	for _, target := range []Target{TargetSPIRV, TargetGLSL, TargetHLSL} {
		opts := DefaultOptions()
		opts.Target = target
		r := compile(t, source, opts)
		require.True(t, r.Success, r.Diagnostics.String())

		var got []uint32
		for _, u := range r.Module.Uniforms {
			got = append(got, u.Offset)
		}
		offsets = append(offsets, got)
	}

	assert.Equal(t, []uint32{0, 16, 28}, offsets[0])
	assert.Equal(t, offsets[0], offsets[1])
	assert.Equal(t, offsets[0], offsets[2])
}

func TestCompileTargets(t *testing.T) {
	source := `float4 PS(float4 pos : SV_Position, float2 uv : TEXCOORD) : SV_Target { return float4(uv, 0, 1); }
` + passThrough + `
technique T { pass { VertexShader = PostProcessVS; PixelShader = PS; } }
`
	t.Run("glsl", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Target = TargetGLSL
		r := compile(t, source, opts)
		require.True(t, r.Success, r.Diagnostics.String())
		assert.Nil(t, r.Module.SPIRV)
		assert.True(t, strings.HasPrefix(r.Module.Code, "#version 450"))

		code, err := r.StageSource("F__PS")
		require.NoError(t, err)
		lines := strings.SplitN(code, "\n", 3)
		assert.Equal(t, "#define ENTRY_POINT_F__PS", lines[1])

		_, err = r.StageSource("F__Missing")
		assert.ErrorIs(t, err, ErrNoEntryPoints)
	})

	t.Run("hlsl", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Target = TargetHLSL
		opts.ShaderModel = hlsl.ShaderModel4_1
		r := compile(t, source, opts)
		require.True(t, r.Success, r.Diagnostics.String())
		assert.Contains(t, r.Module.Code, "struct __sampler2D")

		code, err := r.StageSource("F__PostProcessVS")
		require.NoError(t, err)
		assert.Equal(t, r.Module.Code, code)
	})

	t.Run("spirv has no source", func(t *testing.T) {
		r := compile(t, source, DefaultOptions())
		require.True(t, r.Success, r.Diagnostics.String())
		_, err := r.StageSource("F__PS")
		assert.Error(t, err)
	})
}

func TestCompileRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = Target(9)
	_, err := Compile("effect.fx", "", opts)
	assert.ErrorIs(t, err, ErrUnknownTarget)

	opts = DefaultOptions()
	opts.Target = TargetHLSL
	opts.ShaderModel = 30
	_, err = Compile("effect.fx", "", opts)
	assert.ErrorIs(t, err, hlsl.ErrUnsupportedShaderModel)
}

func TestCompileDefines(t *testing.T) {
	opts := DefaultOptions()
	opts.Defines = map[string]string{"QUALITY": "3"}
	r := compile(t, "#if QUALITY > 2\nuniform float High;\n#endif\n", opts)
	require.True(t, r.Success, r.Diagnostics.String())
	assert.NotNil(t, r.Module.FindUniform("High"))
}

func TestCompileFileIncludes(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shaders")
	require.NoError(t, os.Mkdir(shared, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "Common.fxh"), []byte("uniform float Shared;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Local.fxh"), []byte("uniform float Local;\n"), 0o644))

	path := filepath.Join(dir, "Effect.fx")
	source := "#include \"Local.fxh\"\n#include \"Common.fxh\"\n#pragma reshade showfps\n"
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	opts := DefaultOptions()
	opts.IncludePaths = []string{shared}
	r, err := CompileFile(path, opts)
	require.NoError(t, err)
	require.True(t, r.Success, r.Diagnostics.String())

	assert.NotNil(t, r.Module.FindUniform("Shared"))
	assert.NotNil(t, r.Module.FindUniform("Local"))
	assert.Len(t, r.IncludedFiles, 2)
	require.Len(t, r.Pragmas, 1)
	assert.Equal(t, "showfps", r.Pragmas[0].Name)
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "missing.fx"), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPreprocessorFailureSkipsParser(t *testing.T) {
	r := compile(t, "#error \"stop\"\nthis is not valid\n", DefaultOptions())
	assert.False(t, r.Success)
	for _, d := range r.Diagnostics {
		assert.Equal(t, fx.StagePreprocessor, d.Stage)
	}
	assert.Empty(t, r.Module.SPIRV)
}

func TestSPIRVBoundExceedsIDs(t *testing.T) {
	source := `float4 PS(float4 pos : SV_Position, float2 uv : TEXCOORD) : SV_Target { return float4(uv, 0, 1); }
` + passThrough + `
technique T { pass { VertexShader = PostProcessVS; PixelShader = PS; } }
`
	r := compile(t, source, DefaultOptions())
	require.True(t, r.Success, r.Diagnostics.String())

	header, insts, err := spirv.Decode(r.Module.SPIRV)
	require.NoError(t, err)
	assert.Equal(t, r.Module.SPIRV[3], header.Bound)

	for _, inst := range insts {
		if inst.Result != 0 {
			assert.Less(t, inst.Result, header.Bound)
		}
		if inst.Type != 0 {
			assert.Less(t, inst.Type, header.Bound)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"spirv", TargetSPIRV, false},
		{"SPV", TargetSPIRV, false},
		{"glsl", TargetGLSL, false},
		{" HLSL ", TargetHLSL, false},
		{"wgsl", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownTarget, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, ".spv", TargetSPIRV.Extension())
	assert.Equal(t, ".glsl", TargetGLSL.Extension())
	assert.Equal(t, ".hlsl", TargetHLSL.Extension())
}
