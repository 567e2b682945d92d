// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates GLSL source from an effect while it is parsed.
//
// The code generator implements fx.Codegen. Statements are written as text
// into one buffer per block; if, loop and switch constructs splice the
// buffers of their blocks together once the parser has finished them.
//
// # Basic Usage
//
//	cg := glsl.New(glsl.DefaultOptions())
//	if parser.New(parser.Options{}).Parse(source, cg) {
//	    var m fx.Module
//	    cg.WriteResult(&m)
//	    // m.Code holds the shader source
//	}
//
// # Entry Points
//
// Every shader referenced by a pass becomes a main function wrapped in
// #ifdef ENTRY_POINT_<name>. Define the macro in front of the source to
// compile one stage.
//
// # Uniforms and Samplers
//
// Uniform variables are members of the std140 block _Globals at binding 0.
// Matrices are stored with the effect's rows as GLSL columns, so mul()
// swaps its operands. Samplers are sampler2D uniforms bound in declaration
// order.
//
// # Reserved Words
//
// Identifiers that are GLSL keywords or built-in functions get a leading
// underscore, and consecutive underscores are collapsed.
package glsl
