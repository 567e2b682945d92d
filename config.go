package reshadefx

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/gogpu/reshadefx/glsl"
	"github.com/gogpu/reshadefx/hlsl"
)

// ErrConfigValidation is returned when a configuration file holds values
// that cannot be turned into Options.
var ErrConfigValidation = errors.New("reshadefx: invalid configuration")

// Config is the on-disk form of compilation settings, usually fxc.yaml.
// Unset booleans take the DefaultOptions value.
type Config struct {
	Target                  string            `yaml:"target"`
	IncludePaths            []string          `yaml:"include_paths"`
	Defines                 map[string]string `yaml:"defines"`
	DefinesFile             string            `yaml:"defines_file"`
	DebugInfo               bool              `yaml:"debug_info"`
	UniformsToSpecConstants bool              `yaml:"uniforms_to_spec_constants"`
	VulkanSemantics         *bool             `yaml:"vulkan_semantics"`
	InvertY                 *bool             `yaml:"invert_y"`
	ShaderModel             string            `yaml:"shader_model"`
	GLSLVersion             string            `yaml:"glsl_version"`
	OutputDir               string            `yaml:"output_dir"`
	Parallel                int               `yaml:"parallel"`
}

// LoadConfig reads and validates a YAML configuration. Unknown keys are
// rejected. Relative include paths and the defines file are resolved
// against the directory of path, and macros from the defines file are
// added below the ones listed under defines.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reshadefx: reading config: %w", err)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("reshadefx: parsing config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, inc := range cfg.IncludePaths {
		cfg.IncludePaths[i] = resolvePath(dir, inc)
	}
	if cfg.OutputDir != "" {
		cfg.OutputDir = resolvePath(dir, cfg.OutputDir)
	}

	if cfg.DefinesFile != "" {
		cfg.DefinesFile = resolvePath(dir, cfg.DefinesFile)
		env, err := godotenv.Read(cfg.DefinesFile)
		if err != nil {
			return nil, fmt.Errorf("reshadefx: reading defines file: %w", err)
		}
		maps.Copy(env, cfg.Defines)
		cfg.Defines = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks every field that Options would reject.
func (c *Config) Validate() error {
	if c.Target != "" {
		if _, err := ParseTarget(c.Target); err != nil {
			return fmt.Errorf("%w: target: %w", ErrConfigValidation, err)
		}
	}
	if c.ShaderModel != "" {
		if _, err := hlsl.ParseShaderModel(c.ShaderModel); err != nil {
			return fmt.Errorf("%w: shader_model: %w", ErrConfigValidation, err)
		}
	}
	if _, err := glsl.ParseVersion(c.GLSLVersion); err != nil {
		return fmt.Errorf("%w: glsl_version: %w", ErrConfigValidation, err)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel must not be negative, got %d", ErrConfigValidation, c.Parallel)
	}
	for name := range c.Defines {
		if name == "" {
			return fmt.Errorf("%w: defines: empty macro name", ErrConfigValidation)
		}
	}
	return nil
}

// Options converts the configuration to compiler options, starting from
// DefaultOptions.
func (c *Config) Options() (Options, error) {
	if err := c.Validate(); err != nil {
		return Options{}, err
	}

	opts := DefaultOptions()
	if c.Target != "" {
		opts.Target, _ = ParseTarget(c.Target)
	}
	if c.ShaderModel != "" {
		opts.ShaderModel, _ = hlsl.ParseShaderModel(c.ShaderModel)
	}
	if c.GLSLVersion != "" {
		opts.GLSLVersion, _ = glsl.ParseVersion(c.GLSLVersion)
	}
	if c.VulkanSemantics != nil {
		opts.VulkanSemantics = *c.VulkanSemantics
	}
	if c.InvertY != nil {
		opts.InvertY = *c.InvertY
	}
	opts.IncludePaths = append([]string(nil), c.IncludePaths...)
	opts.Defines = maps.Clone(c.Defines)
	opts.DebugInfo = c.DebugInfo
	opts.UniformsToSpecConstants = c.UniformsToSpecConstants
	return opts, nil
}
