package main

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/gogpu/reshadefx"
	"github.com/gogpu/reshadefx/glsl"
	"github.com/gogpu/reshadefx/hlsl"
)

// CompileFlags are shared by every command that runs the compiler.
type CompileFlags struct {
	Target         string   `short:"t" help:"Output target: spirv, glsl or hlsl."`
	Defines        []string `short:"D" name:"define" sep:"none" placeholder:"NAME[=VALUE]" help:"Predefine a macro."`
	Includes       []string `short:"I" name:"include" sep:"none" type:"path" help:"Add an include search path."`
	DebugInfo      bool     `help:"Emit debug names and line directives."`
	SpecConstants  bool     `help:"Turn initialized scalar uniforms into specialization constants."`
	ShaderModel    string   `help:"HLSL shader model: 4.0, 4.1 or 5.0."`
	GLSLVersion    string   `name:"glsl-version" help:"GLSL #version value such as 450 or 310 es."`
	OpenGL         bool     `name:"opengl" help:"Use OpenGL instead of Vulkan semantics."`
	NoInvertY      bool     `help:"Keep the vertex shader Y axis as written."`
	NoShortCircuit bool     `help:"Evaluate both operands of &&, || and ?:."`
}

// loadConfig reads the configuration named by --config, or fxc.yaml when it
// exists. Without either the zero Config is returned.
func loadConfig(ctx *Context) (*reshadefx.Config, error) {
	path := ctx.Config
	if path == "" {
		if _, err := os.Stat(defaultConfig); errors.Is(err, fs.ErrNotExist) {
			return &reshadefx.Config{}, nil
		}
		path = defaultConfig
	}
	cfg, err := reshadefx.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// options merges the configuration file with the flags.
func (f *CompileFlags) options(ctx *Context) (reshadefx.Options, *reshadefx.Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return reshadefx.Options{}, nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return reshadefx.Options{}, nil, err
	}

	if f.Target != "" {
		if opts.Target, err = reshadefx.ParseTarget(f.Target); err != nil {
			return reshadefx.Options{}, nil, err
		}
	}
	if f.ShaderModel != "" {
		if opts.ShaderModel, err = hlsl.ParseShaderModel(f.ShaderModel); err != nil {
			return reshadefx.Options{}, nil, err
		}
	}
	if f.GLSLVersion != "" {
		if opts.GLSLVersion, err = glsl.ParseVersion(f.GLSLVersion); err != nil {
			return reshadefx.Options{}, nil, err
		}
	}

	opts.IncludePaths = append(opts.IncludePaths, f.Includes...)
	defines, err := parseDefines(f.Defines)
	if err != nil {
		return reshadefx.Options{}, nil, err
	}
	if opts.Defines == nil {
		opts.Defines = defines
	} else {
		maps.Copy(opts.Defines, defines)
	}

	opts.DebugInfo = opts.DebugInfo || f.DebugInfo
	opts.UniformsToSpecConstants = opts.UniformsToSpecConstants || f.SpecConstants
	opts.NoShortCircuit = f.NoShortCircuit
	if f.OpenGL {
		opts.VulkanSemantics = false
	}
	if f.NoInvertY {
		opts.InvertY = false
	}
	return opts, cfg, nil
}

// parseDefines splits NAME[=VALUE] arguments. A bare name is defined as 1.
func parseDefines(args []string) (map[string]string, error) {
	defines := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid define %q: missing name", arg)
		}
		if !ok {
			value = "1"
		}
		defines[name] = value
	}
	return defines, nil
}
