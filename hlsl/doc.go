// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL source for Direct3D 10 and 11 from an effect
// while it is parsed.
//
// The code generator implements fx.Codegen for shader models 4.0, 4.1 and
// 5.0. Shader model 3 is not supported.
//
// # Basic Usage
//
//	cg, err := hlsl.New(hlsl.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if parser.New(parser.Options{}).Parse(source, cg) {
//	    var m fx.Module
//	    cg.WriteResult(&m)
//	    // m.Code holds the shader source
//	}
//
// # Entry Points
//
// Functions keep their semantics, so every entry point recorded in
// Module.EntryPoints is compiled directly with Profile as the target:
//
//	fxc /T ps_5_0 /E F__PS effect.hlsl
//
// # Register Binding
//
// Uniforms live in cbuffer _Globals at register b0, placed with packoffset
// at the same offsets the other code generators use. Every texture takes
// two t registers, the second one for its sRGB view. Samplers with equal
// state share one s register and are combined with their texture in a
// __sampler2D struct.
package hlsl
