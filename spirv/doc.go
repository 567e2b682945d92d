// Package spirv generates SPIR-V 1.3 modules from ReShade FX effects.
//
// The Codegen type implements fx.Codegen. A parser drives it with
// declarations and SSA values and it assembles the binary in layout order
// once WriteResult is called:
//
//	cg := spirv.New(spirv.Options{VulkanSemantics: true, InvertY: true})
//	p := parser.New(parser.Options{})
//	if !p.Parse(source, cg) {
//		return p.Diagnostics()
//	}
//	var m fx.Module
//	cg.WriteResult(&m)
//
// Every entry point found in a technique gets a void wrapper that loads the
// stage inputs from Input variables, calls the user's function and stores
// its results to Output variables.
//
// Uniforms are members of one uniform block named $Globals in descriptor
// set 0, binding 0. Samplers are combined image samplers in descriptor set 1.
//
// # Binary Layer
//
// Instruction, Assemble and Decode encode and split raw word streams. The
// Disassemble function prints a module one instruction per line, which the
// spvdis command exposes.
package spirv
