// Package reshadefx compiles ReShade FX effects to SPIR-V, GLSL or HLSL.
//
// The pipeline runs the preprocessor, then the parser, which drives the
// code generator of the selected target directly:
//
//	result, err := reshadefx.CompileFile("Bloom.fx", reshadefx.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err) // invalid options or unreadable file
//	}
//	if !result.Success {
//	    fmt.Print(result.Diagnostics)
//	}
//	words := result.Module.SPIRV
//
// Problems in the effect source are never returned as errors. They are
// collected in Result.Diagnostics and clear Result.Success.
//
// For finer control use the preprocessor, parser, spirv, glsl and hlsl
// packages directly.
package reshadefx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/glsl"
	"github.com/gogpu/reshadefx/hlsl"
	"github.com/gogpu/reshadefx/parser"
	"github.com/gogpu/reshadefx/preprocessor"
	"github.com/gogpu/reshadefx/spirv"
)

// Sentinel errors.
var (
	// ErrUnknownTarget is returned for a target name or value that has no
	// code generator.
	ErrUnknownTarget = errors.New("reshadefx: unknown target")

	// ErrNoEntryPoints is returned when a requested shader stage does not
	// exist in the compiled module.
	ErrNoEntryPoints = errors.New("reshadefx: no such entry point")
)

// Target selects the code generator.
type Target uint8

const (
	// TargetSPIRV produces a SPIR-V module with every entry point.
	TargetSPIRV Target = iota
	// TargetGLSL produces GLSL source with one guarded main per stage.
	TargetGLSL
	// TargetHLSL produces HLSL source for shader model 4 and 5.
	TargetHLSL
)

var targetNames = [...]string{
	TargetSPIRV: "spirv",
	TargetGLSL:  "glsl",
	TargetHLSL:  "hlsl",
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// Extension returns the file extension conventionally used for output of t.
func (t Target) Extension() string {
	switch t {
	case TargetGLSL:
		return ".glsl"
	case TargetHLSL:
		return ".hlsl"
	}
	return ".spv"
}

// ParseTarget parses "spirv", "spv", "glsl" or "hlsl", ignoring case.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spirv", "spir-v", "spv":
		return TargetSPIRV, nil
	case "glsl":
		return TargetGLSL, nil
	case "hlsl":
		return TargetHLSL, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Options configures a compilation.
type Options struct {
	Target Target

	// IncludePaths are searched by #include after the including file's
	// directory.
	IncludePaths []string

	// Defines are predefined object-like macros.
	Defines map[string]string

	DebugInfo               bool
	UniformsToSpecConstants bool

	// VulkanSemantics and InvertY apply to SPIR-V and GLSL.
	VulkanSemantics bool
	InvertY         bool

	// NoShortCircuit evaluates both operands of &&, || and ?:.
	NoShortCircuit bool

	// GLSLVersion is the #version written for TargetGLSL.
	GLSLVersion glsl.Version

	// ShaderModel is the feature set for TargetHLSL.
	ShaderModel hlsl.ShaderModel
}

// DefaultOptions returns options for Vulkan SPIR-V with GLSL 4.50 and
// shader model 5.0 preselected for the other targets.
func DefaultOptions() Options {
	return Options{
		Target:          TargetSPIRV,
		VulkanSemantics: true,
		InvertY:         true,
		GLSLVersion:     glsl.Version450,
		ShaderModel:     hlsl.ShaderModel5_0,
	}
}

// Result is the outcome of one compilation.
type Result struct {
	Target Target
	Module fx.Module

	// Preprocessed is the text the parser read.
	Preprocessed string

	// Diagnostics holds preprocessor and parser messages in that order.
	Diagnostics fx.Diagnostics

	// Success is false if any error was reported.
	Success bool

	IncludedFiles []string
	Pragmas       []preprocessor.Pragma
}

// Err returns the error diagnostics, or nil when the compilation succeeded.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	errs := r.Diagnostics.Errors()
	if len(errs) == 0 {
		return fmt.Errorf("reshadefx: compilation failed")
	}
	return errs
}

// FindEntryPoint returns the stage called name.
func (r *Result) FindEntryPoint(name string) (fx.EntryPoint, error) {
	for _, ep := range r.Module.EntryPoints {
		if ep.Name == name {
			return ep, nil
		}
	}
	return fx.EntryPoint{}, fmt.Errorf("%w: %q", ErrNoEntryPoints, name)
}

// StageSource returns GLSL or HLSL source that compiles the stage called
// name on its own. GLSL gets ENTRY_POINT_<name> defined behind its #version
// line; HLSL source is returned as is.
func (r *Result) StageSource(name string) (string, error) {
	if _, err := r.FindEntryPoint(name); err != nil {
		return "", err
	}
	switch r.Target {
	case TargetHLSL:
		return r.Module.Code, nil
	case TargetGLSL:
		define := "#define ENTRY_POINT_" + name + "\n"
		version, rest, ok := strings.Cut(r.Module.Code, "\n")
		if !ok || !strings.HasPrefix(version, "#version") {
			return define + r.Module.Code, nil
		}
		return version + "\n" + define + rest, nil
	}
	return "", fmt.Errorf("reshadefx: %s modules have no source text", r.Target)
}

// newCodegen returns the code generator selected by opts.
func newCodegen(opts Options) (fx.Codegen, error) {
	switch opts.Target {
	case TargetSPIRV:
		return spirv.New(spirv.Options{
			VulkanSemantics:         opts.VulkanSemantics,
			DebugInfo:               opts.DebugInfo,
			UniformsToSpecConstants: opts.UniformsToSpecConstants,
			InvertY:                 opts.InvertY,
		}), nil
	case TargetGLSL:
		return glsl.New(glsl.Options{
			Version:                 opts.GLSLVersion,
			VulkanSemantics:         opts.VulkanSemantics,
			DebugInfo:               opts.DebugInfo,
			UniformsToSpecConstants: opts.UniformsToSpecConstants,
			InvertY:                 opts.InvertY,
		}), nil
	case TargetHLSL:
		cg, err := hlsl.New(hlsl.Options{
			ShaderModel:             opts.ShaderModel,
			DebugInfo:               opts.DebugInfo,
			UniformsToSpecConstants: opts.UniformsToSpecConstants,
		})
		if err != nil {
			return nil, fmt.Errorf("reshadefx: %w", err)
		}
		return cg, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, opts.Target)
}

// NewPreprocessor returns a preprocessor with the include paths and macros
// of opts.
func NewPreprocessor(opts Options) *preprocessor.Preprocessor {
	pp := preprocessor.New()
	for _, path := range opts.IncludePaths {
		pp.AddIncludePath(path)
	}
	for name, value := range opts.Defines {
		pp.AddMacroDefinition(name, value)
	}
	return pp
}

// Compile compiles effect source. name is used in diagnostics and
// __FILE__, and its directory is searched first by #include.
func Compile(name, source string, opts Options) (*Result, error) {
	cg, err := newCodegen(opts)
	if err != nil {
		return nil, err
	}

	pp := NewPreprocessor(opts)
	ok := pp.AppendString(source, name)
	return finish(pp, cg, ok, opts), nil
}

// CompileFile reads and compiles the effect at path.
func CompileFile(path string, opts Options) (*Result, error) {
	cg, err := newCodegen(opts)
	if err != nil {
		return nil, err
	}

	pp := NewPreprocessor(opts)
	ok, err := pp.AppendFile(path)
	if err != nil {
		return nil, fmt.Errorf("reshadefx: %w", err)
	}
	return finish(pp, cg, ok, opts), nil
}

// finish parses the preprocessor output. A failed preprocessing run stops
// before the parser, whose errors would only repeat the cause.
func finish(pp *preprocessor.Preprocessor, cg fx.Codegen, ok bool, opts Options) *Result {
	r := &Result{
		Target:        opts.Target,
		Preprocessed:  pp.Output(),
		Diagnostics:   append(fx.Diagnostics(nil), pp.Diagnostics()...),
		IncludedFiles: pp.IncludedFiles(),
		Pragmas:       pp.UsedPragmas(),
	}
	if !ok {
		return r
	}

	p := parser.New(parser.Options{NoShortCircuit: opts.NoShortCircuit})
	r.Success = p.Parse(r.Preprocessed, cg)
	r.Diagnostics = append(r.Diagnostics, p.Diagnostics()...)
	cg.WriteResult(&r.Module)
	return r
}
