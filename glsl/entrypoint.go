// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/reshadefx/fx"
)

// builtin returns the built-in variable a system value semantic maps to.
func (c *Codegen) builtin(semantic string, isPixelShader bool) (string, bool) {
	switch semantic {
	case "SV_POSITION", "POSITION", "VPOS":
		if isPixelShader {
			return "gl_FragCoord", true
		}
		return "gl_Position", true
	case "SV_DEPTH", "DEPTH":
		return "gl_FragDepth", true
	case "SV_VERTEXID":
		if c.opts.VulkanSemantics {
			return "gl_VertexIndex", true
		}
		return "gl_VertexID", true
	}
	return "", false
}

// varyingType is the type of a stage interface variable. Booleans cannot
// cross stages and travel as floats.
func varyingType(t fx.Type) fx.Type {
	t.Qualifiers &= fx.InterpolationMask
	if t.IsBoolean() {
		t.Base = fx.TypeFloat
	}
	return t
}

// entryPoint collects the interface and body of a generated main function.
type entryPoint struct {
	c             *Codegen
	isPixelShader bool
	interfaces    strings.Builder
	body          strings.Builder
	readsFragPos  bool
}

// varying declares an interface variable for one semantic and returns the
// name the wrapper uses for it.
func (ep *entryPoint) varying(t fx.Type, semantic, name string, out bool) string {
	c := ep.c
	if builtin, ok := c.builtin(semantic, ep.isPixelShader); ok {
		if builtin == "gl_FragCoord" {
			ep.readsFragPos = true
		}
		return builtin
	}

	vt := varyingType(t)
	direction := "in"
	if out {
		direction = "out"
	}
	// Only vertex outputs and pixel inputs are interpolated. Integers
	// cannot be.
	var interp string
	if ep.isPixelShader != out {
		interp = interpolation(vt)
		if vt.IsIntegral() && !vt.Has(fx.QualifierNointerpolation) {
			interp += "flat "
		}
	}
	vt.Qualifiers = 0

	fmt.Fprintf(&ep.interfaces, "layout(location = %d) %s%s %s %s%s;\n", c.locations.Of(semantic), interp, direction, c.typeName(vt, typePlain), name, arraySuffix(vt))
	return name
}

// convert returns expr converted to t unless t is an array.
func (ep *entryPoint) convert(t fx.Type, expr string) string {
	if t.IsArray() || t.IsStruct() {
		return expr
	}
	t.Qualifiers = 0
	return ep.c.typeName(t, typePlain) + "(" + expr + ")"
}

// DefineEntryPoint writes a main function calling fn, guarded by
// ENTRY_POINT_<name> so one source holds every stage.
func (c *Codegen) DefineEntryPoint(fn *fx.FunctionInfo, isPixelShader bool) {
	if slices.ContainsFunc(c.Module.EntryPoints, func(e fx.EntryPoint) bool { return e.Name == fn.UniqueName }) {
		return
	}
	c.Module.EntryPoints = append(c.Module.EntryPoints, fx.EntryPoint{Name: fn.UniqueName, IsPixelShader: isPixelShader})

	ep := &entryPoint{c: c, isPixelShader: isPixelShader}
	body := &ep.body

	// Every parameter becomes a local passed to the call.
	args := make([]string, len(fn.Parameters))
	for i, param := range fn.Parameters {
		t := param.Type
		t.Qualifiers = 0
		local := fmt.Sprintf("_param%d", i)
		args[i] = local
		fmt.Fprintf(body, "\t%s %s%s;\n", c.typeName(t, typePlain), local, arraySuffix(t))

		if param.Type.Has(fx.QualifierIn) || !param.Type.Has(fx.QualifierOut) {
			prefix := fmt.Sprintf("_in_param%d", i)
			if s := c.FindStruct(t.Definition); t.IsStruct() && s != nil {
				for _, member := range s.Members {
					input := ep.varying(member.Type, member.Semantic, prefix+"_"+escapeName(member.Name), false)
					fmt.Fprintf(body, "\t%s.%s = %s;\n", local, escapeName(member.Name), ep.convert(member.Type, input))
				}
			} else {
				input := ep.varying(param.Type, param.Semantic, prefix, false)
				fmt.Fprintf(body, "\t%s = %s;\n", local, ep.convert(t, input))
			}
		}
	}

	call := fmt.Sprintf("%s(%s)", c.name(fn.Definition), strings.Join(args, ", "))
	if fn.ReturnType.IsVoid() {
		fmt.Fprintf(body, "\t%s;\n", call)
	} else {
		t := fn.ReturnType
		t.Qualifiers = 0
		fmt.Fprintf(body, "\t%s _ret = %s;\n", c.typeName(t, typePlain), call)
	}

	for i, param := range fn.Parameters {
		if !param.Type.Has(fx.QualifierOut) {
			continue
		}
		ep.scatter(param.Type, param.Semantic, fmt.Sprintf("_param%d", i), fmt.Sprintf("_out_param%d", i))
	}
	if !fn.ReturnType.IsVoid() {
		ep.scatter(fn.ReturnType, fn.ReturnSemantic, "_ret", "_return")
	}

	if c.opts.InvertY && !isPixelShader {
		body.WriteString("\tgl_Position.y = -gl_Position.y;\n")
	}

	code := &c.global
	fmt.Fprintf(code, "#ifdef ENTRY_POINT_%s\n", fn.UniqueName)
	if ep.readsFragPos && !c.opts.VulkanSemantics && !c.opts.Version.ES {
		code.WriteString("layout(origin_upper_left) in vec4 gl_FragCoord;\n")
	}
	code.WriteString(ep.interfaces.String())
	code.WriteString("void main()\n{\n")
	code.WriteString(body.String())
	code.WriteString("}\n#endif\n")
}

// scatter writes a value to its output variables, one per struct member or
// a single one otherwise.
func (ep *entryPoint) scatter(t fx.Type, semantic, value, prefix string) {
	c := ep.c
	if s := c.FindStruct(t.Definition); t.IsStruct() && s != nil {
		for _, member := range s.Members {
			output := ep.varying(member.Type, member.Semantic, prefix+"_"+escapeName(member.Name), true)
			fmt.Fprintf(&ep.body, "\t%s = %s;\n", output, ep.convert(varyingType(member.Type), value+"."+escapeName(member.Name)))
		}
		return
	}
	output := ep.varying(t, semantic, prefix, true)
	fmt.Fprintf(&ep.body, "\t%s = %s;\n", output, ep.convert(varyingType(t), value))
}
