// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// Options configures HLSL generation.
type Options struct {
	// ShaderModel selects the target feature set.
	ShaderModel ShaderModel

	// DebugInfo writes #line directives.
	DebugInfo bool

	// UniformsToSpecConstants turns scalar uniforms with an initializer
	// into constants the host can override with SPEC_CONSTANT_<name>.
	UniformsToSpecConstants bool
}

// DefaultOptions returns the options used for Direct3D 11 targets.
func DefaultOptions() Options {
	return Options{ShaderModel: ShaderModel5_0}
}
