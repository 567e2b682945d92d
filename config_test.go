package reshadefx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/glsl"
	"github.com/gogpu/reshadefx/hlsl"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defines.env", "QUALITY=2\nBUFFER_WIDTH=1920\n")
	path := writeFile(t, dir, "fxc.yaml", `target: hlsl
include_paths:
  - shaders
  - /opt/reshade/shaders
defines:
  QUALITY: "3"
defines_file: defines.env
debug_info: true
invert_y: false
shader_model: "4.1"
glsl_version: 330 core
output_dir: out
parallel: 4
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "shaders"), "/opt/reshade/shaders"}, cfg.IncludePaths)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, map[string]string{"QUALITY": "3", "BUFFER_WIDTH": "1920"}, cfg.Defines)
	assert.Equal(t, 4, cfg.Parallel)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, TargetHLSL, opts.Target)
	assert.Equal(t, hlsl.ShaderModel4_1, opts.ShaderModel)
	assert.Equal(t, glsl.Version{Major: 3, Minor: 30}, opts.GLSLVersion)
	assert.True(t, opts.DebugInfo)
	assert.False(t, opts.InvertY)
	assert.True(t, opts.VulkanSemantics, "unset booleans keep their defaults")
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fxc.yaml", "debug_info: false\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fxc.yaml", "target: spirv\noptimize: true\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"target", "target: wgsl\n"},
		{"shader model", "shader_model: \"3.0\"\n"},
		{"glsl version", "glsl_version: 450 compatibility\n"},
		{"parallel", "parallel: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "fxc.yaml", tt.content)
			_, err := LoadConfig(path)
			assert.ErrorIs(t, err, ErrConfigValidation)
		})
	}
}

func TestLoadConfigMissingDefinesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fxc.yaml", "defines_file: nowhere.env\n")

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
