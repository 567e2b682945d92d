// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// samplerState is the part of a sampler that lives in a SamplerState
// object. Samplers with equal state share one register.
type samplerState struct {
	filter  fx.TextureFilter
	u, v, w fx.AddressMode
	minLOD  float32
	maxLOD  float32
	lodBias float32
}

// Codegen emits HLSL source text. It implements fx.Codegen and is used for
// a single compilation.
type Codegen struct {
	fx.Context

	opts  Options
	names *namer

	global  strings.Builder
	cbuffer strings.Builder
	discard strings.Builder
	blocks  map[fx.ID]*strings.Builder

	// declared holds ids written as "T name = ...;" so loops can turn the
	// declaration into an assignment.
	declared map[fx.ID]bool

	samplerStates map[samplerState]uint32

	inFunction bool
	returnType fx.Type
	lastSource string
}

// New returns a code generator writing HLSL with the given options.
func New(opts Options) (*Codegen, error) {
	if !opts.ShaderModel.IsSupported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShaderModel, opts.ShaderModel)
	}
	return &Codegen{
		Context:       fx.NewContext(),
		opts:          opts,
		names:         newNamer(),
		blocks:        make(map[fx.ID]*strings.Builder),
		declared:      make(map[fx.ID]bool),
		samplerStates: make(map[samplerState]uint32),
	}, nil
}

var _ fx.Codegen = (*Codegen)(nil)

// WriteResult stores the complete shader source in m.Code and copies every
// descriptor collected during parsing.
func (c *Codegen) WriteResult(m *fx.Module) {
	var sb strings.Builder
	sb.WriteString("struct __sampler2D { Texture2D t; SamplerState s; };\n")

	if c.cbuffer.Len() != 0 {
		sb.WriteString("cbuffer _Globals : register(b0)\n{\n")
		sb.WriteString(c.cbuffer.String())
		sb.WriteString("};\n")
	}

	sb.WriteString(c.global.String())

	c.Module.Code = sb.String()
	*m = c.Module
}

// IsInFunction reports whether a function body is being generated.
func (c *Codegen) IsInFunction() bool { return c.inFunction }

// code returns the text buffer of the current block. Statements after a
// return or discard land in a buffer that is thrown away.
func (c *Codegen) code() *strings.Builder {
	if c.CurrentBlock == 0 {
		if c.inFunction {
			return &c.discard
		}
		return &c.global
	}
	return c.block(c.CurrentBlock)
}

func (c *Codegen) block(id fx.ID) *strings.Builder {
	b, ok := c.blocks[id]
	if !ok {
		b = &strings.Builder{}
		c.blocks[id] = b
	}
	return b
}

// take returns the text of a block and forgets it.
func (c *Codegen) take(id fx.ID) string {
	b, ok := c.blocks[id]
	if !ok {
		return ""
	}
	delete(c.blocks, id)
	return b.String()
}

func (c *Codegen) name(id fx.ID) string { return c.names.name(id) }

// writeLocation writes a #line directive. The file name is repeated only
// when it changes.
func (c *Codegen) writeLocation(sb *strings.Builder, loc lexer.Location) {
	if !c.opts.DebugInfo || loc.Source == "" {
		return
	}
	if loc.Source == c.lastSource {
		fmt.Fprintf(sb, "#line %d\n", loc.Line)
		return
	}
	fmt.Fprintf(sb, "#line %d \"%s\"\n", loc.Line, strings.ReplaceAll(loc.Source, "\\", "/"))
	c.lastSource = loc.Source
}

// typeMode selects the qualifiers typeName emits.
type typeMode uint8

const (
	typePlain typeMode = iota
	// typeParam writes interpolation and in/out qualifiers.
	typeParam
	// typeDecl writes precise.
	typeDecl
)

func (c *Codegen) typeName(t fx.Type, mode typeMode) string {
	var sb strings.Builder

	switch mode {
	case typeDecl:
		if t.Has(fx.QualifierPrecise) {
			sb.WriteString("precise ")
		}
	case typeParam:
		sb.WriteString(interpolation(t))
		switch {
		case t.Has(fx.QualifierInout):
			sb.WriteString("inout ")
		case t.Has(fx.QualifierIn):
			sb.WriteString("in ")
		case t.Has(fx.QualifierOut):
			sb.WriteString("out ")
		}
	}

	switch t.Base {
	case fx.TypeVoid:
		sb.WriteString("void")
	case fx.TypeBool, fx.TypeInt, fx.TypeUint, fx.TypeFloat:
		sb.WriteString(numericTypeName(t))
	case fx.TypeStruct:
		sb.WriteString(c.name(t.Definition))
	case fx.TypeSampler:
		sb.WriteString("__sampler2D")
	case fx.TypeTexture:
		sb.WriteString("Texture2D")
	default:
		panic("hlsl: cannot write type " + t.Description())
	}
	return sb.String()
}

func interpolation(t fx.Type) string {
	var sb strings.Builder
	if t.Has(fx.QualifierLinear) {
		sb.WriteString("linear ")
	}
	if t.Has(fx.QualifierNoperspective) {
		sb.WriteString("noperspective ")
	}
	if t.Has(fx.QualifierCentroid) {
		sb.WriteString("centroid ")
	}
	if t.Has(fx.QualifierNointerpolation) {
		sb.WriteString("nointerpolation ")
	}
	return sb.String()
}

func scalarName(base fx.BaseType) string {
	switch base {
	case fx.TypeBool:
		return "bool"
	case fx.TypeInt:
		return "int"
	case fx.TypeUint:
		return "uint"
	}
	return "float"
}

// numericTypeName names a scalar, vector or matrix type. Matrices are
// written rows by columns like in the effect.
func numericTypeName(t fx.Type) string {
	switch {
	case t.IsMatrix():
		return fmt.Sprintf("%s%dx%d", scalarName(t.Base), t.Rows, t.Cols)
	case t.Rows > 1:
		return scalarName(t.Base) + strconv.FormatUint(uint64(t.Rows), 10)
	default:
		return scalarName(t.Base)
	}
}

func arraySuffix(t fx.Type) string {
	if !t.IsArray() {
		return ""
	}
	return "[" + strconv.Itoa(t.ArrayLength) + "]"
}

// convertSemantic maps Direct3D 9 semantics to their system value
// equivalents.
func convertSemantic(semantic string) string {
	switch semantic {
	case "POSITION", "VPOS":
		return "SV_POSITION"
	case "DEPTH":
		return "SV_DEPTH"
	}
	if rest, ok := strings.CutPrefix(semantic, "COLOR"); ok {
		if _, err := strconv.Atoi(rest); err == nil || rest == "" {
			return "SV_TARGET" + rest
		}
	}
	return semantic
}

func semanticSuffix(semantic string) string {
	if semantic == "" {
		return ""
	}
	return " : " + convertSemantic(semantic)
}

func (c *Codegen) constant(t fx.Type, data fx.Constant) string {
	if t.IsArray() {
		elem := t.Element()
		values := make([]string, t.ArrayLength)
		for i := range values {
			var value fx.Constant
			if i < len(data.Array) {
				value = data.Array[i]
			}
			values[i] = c.constant(elem, value)
		}
		return "{ " + strings.Join(values, ", ") + " }"
	}

	if t.IsStruct() {
		return "(" + c.name(t.Definition) + ")0"
	}

	n := int(t.Components())
	lanes := make([]string, n)
	for i := range lanes {
		switch t.Base {
		case fx.TypeBool:
			lanes[i] = strconv.FormatBool(data.Lanes[i] != 0)
		case fx.TypeInt:
			lanes[i] = strconv.FormatInt(int64(data.Int(i)), 10)
		case fx.TypeUint:
			lanes[i] = strconv.FormatUint(uint64(data.Uint(i)), 10) + "u"
		default:
			lanes[i] = formatFloat(data.Float(i))
		}
	}
	if n == 1 {
		return lanes[0]
	}
	return numericTypeName(t) + "(" + strings.Join(lanes, ", ") + ")"
}

// formatFloat writes a float literal. Values without a literal go through
// their bit pattern.
func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "asfloat(0x7FC00000)"
	case math.IsInf(float64(f), 1):
		return "asfloat(0x7F800000)"
	case math.IsInf(float64(f), -1):
		return "asfloat(0xFF800000)"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// EmitConstant returns an id whose name is the constant's literal. Array
// literals are only valid as initializers and are declared as constants.
func (c *Codegen) EmitConstant(t fx.Type, data fx.Constant) fx.ID {
	id := c.MakeID()

	if t.IsArray() {
		code := c.code()
		if c.CurrentBlock != 0 {
			code.WriteString("\tconst ")
		} else {
			code.WriteString("static const ")
		}
		fmt.Fprintf(code, "%s %s%s = %s;\n", c.typeName(t, typePlain), c.name(id), arraySuffix(t), c.constant(t, data))
		return id
	}

	c.names.define(id, c.constant(t, data), namingExpression)
	return id
}

func (c *Codegen) DefineStruct(loc lexer.Location, info *fx.StructInfo) fx.ID {
	info.Definition = c.MakeID()
	c.names.define(info.Definition, info.UniqueName, namingUnique)

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "struct %s\n{\n", c.name(info.Definition))
	for _, member := range info.Members {
		fmt.Fprintf(code, "\t%s%s %s%s%s;\n", interpolation(member.Type), c.typeName(member.Type, typeDecl), escapeName(member.Name), arraySuffix(member.Type), semanticSuffix(member.Semantic))
	}
	if len(info.Members) == 0 {
		code.WriteString("\tfloat _dummy;\n")
	}
	code.WriteString("};\n")

	c.Structs = append(c.Structs, *info)
	return info.Definition
}

// DefineTexture declares the texture and its sRGB view in consecutive t
// registers.
func (c *Codegen) DefineTexture(loc lexer.Location, info *fx.TextureInfo) fx.ID {
	info.ID = c.MakeID()
	info.Binding = c.Module.NumTextureBindings
	c.Module.NumTextureBindings += 2

	c.names.define(info.ID, info.UniqueName, namingUnique)
	name := c.name(info.ID)

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "Texture2D %s : register(t%d);\n", name, info.Binding)
	fmt.Fprintf(code, "Texture2D __srgb%s : register(t%d);\n", name, info.Binding+1)

	c.Module.Textures = append(c.Module.Textures, *info)
	return info.ID
}

// DefineSampler combines the texture view and a shared SamplerState.
func (c *Codegen) DefineSampler(loc lexer.Location, info *fx.SamplerInfo) fx.ID {
	info.ID = c.MakeID()
	c.names.define(info.ID, info.UniqueName, namingUnique)

	texture := c.Module.FindTexture(info.TextureName)
	if texture == nil {
		panic("hlsl: sampler " + info.UniqueName + " refers to unknown texture " + info.TextureName)
	}

	code := c.code()
	c.writeLocation(code, loc)

	state := samplerState{
		filter:  info.Filter,
		u:       info.AddressU,
		v:       info.AddressV,
		w:       info.AddressW,
		minLOD:  info.MinLOD,
		maxLOD:  info.MaxLOD,
		lodBias: info.LODBias,
	}
	binding, ok := c.samplerStates[state]
	if !ok {
		binding = c.Module.NumSamplerBindings
		c.Module.NumSamplerBindings++
		c.samplerStates[state] = binding
		fmt.Fprintf(code, "SamplerState __s%d : register(s%d);\n", binding, binding)
	}
	info.Binding = binding

	view := c.name(texture.ID)
	info.TextureBinding = texture.Binding
	if info.SRGB {
		view = "__srgb" + view
		info.TextureBinding++
	}
	fmt.Fprintf(code, "static const __sampler2D %s = { %s, __s%d };\n", c.name(info.ID), view, binding)

	c.Module.Samplers = append(c.Module.Samplers, *info)
	return info.ID
}

// DefineUniform adds a member to the _Globals constant buffer, or a
// specialization constant when enabled and the uniform is an initialized
// scalar.
func (c *Codegen) DefineUniform(loc lexer.Location, info *fx.UniformInfo) fx.ID {
	id := c.MakeID()
	c.names.define(id, info.Name, namingUnique)

	if c.opts.UniformsToSpecConstants && info.HasInitializerValue && info.Type.IsScalar() {
		c.defineSpecConstant(loc, id, info)
		return id
	}

	c.Module.TotalUniformSize = fx.PlaceUniform(info, c.Module.TotalUniformSize)
	c.Module.Uniforms = append(c.Module.Uniforms, *info)

	c.cbuffer.WriteByte('\t')
	if info.Type.IsMatrix() {
		c.cbuffer.WriteString("row_major ")
	}
	t := info.Type
	t.Qualifiers = 0
	fmt.Fprintf(&c.cbuffer, "%s %s%s : packoffset(%s);\n", c.typeName(t, typePlain), c.name(id), arraySuffix(t), packOffset(info.Offset))
	return id
}

// packOffset converts a byte offset into a constant register and component.
func packOffset(offset uint32) string {
	register := fmt.Sprintf("c%d", offset/16)
	if component := offset % 16 / 4; component != 0 {
		register += "." + string("xyzw"[component])
	}
	return register
}

// defineSpecConstant writes a constant the host overrides by defining
// SPEC_CONSTANT_<name> in front of the source.
func (c *Codegen) defineSpecConstant(loc lexer.Location, id fx.ID, info *fx.UniformInfo) {
	t := info.Type
	t.Qualifiers = 0
	name := c.name(id)
	macro := "SPEC_CONSTANT_" + name

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "#ifndef %[1]s\n#define %[1]s %[2]s\n#endif\n", macro, c.constant(t, info.InitializerValue))
	fmt.Fprintf(code, "static const %s %s = %s;\n", c.typeName(t, typePlain), name, macro)

	spec := *info
	spec.Size = 4
	spec.Offset = 0
	c.Module.SpecConstants = append(c.Module.SpecConstants, spec)
}

func (c *Codegen) DefineVariable(loc lexer.Location, t fx.Type, name string, global bool, init fx.ID) fx.ID {
	id := c.MakeID()
	if global {
		c.names.define(id, name, namingUnique)
	} else {
		c.names.define(id, name, namingGeneral)
	}

	code := c.code()
	c.writeLocation(code, loc)
	if global {
		// Globals without static are uniforms.
		code.WriteString("static ")
	} else {
		code.WriteByte('\t')
	}
	if init != 0 && t.Has(fx.QualifierConst) {
		code.WriteString("const ")
	}
	fmt.Fprintf(code, "%s %s%s", c.typeName(t, typeDecl), c.name(id), arraySuffix(t))
	if init != 0 {
		code.WriteString(" = ")
		code.WriteString(c.name(init))
	}
	code.WriteString(";\n")
	return id
}

func (c *Codegen) DefineFunction(loc lexer.Location, info *fx.FunctionInfo) fx.ID {
	info.Definition = c.MakeID()
	if info.UniqueName != "" {
		c.names.define(info.Definition, info.UniqueName, namingUnique)
	} else {
		c.names.define(info.Definition, info.Name, namingUnique)
	}

	params := make([]string, len(info.Parameters))
	for i := range info.Parameters {
		p := &info.Parameters[i]
		p.Definition = c.MakeID()
		c.names.define(p.Definition, p.Name, namingGeneral)
		params[i] = c.typeName(p.Type, typeParam) + " " + c.name(p.Definition) + arraySuffix(p.Type) + semanticSuffix(p.Semantic)
	}

	c.writeLocation(&c.global, loc)
	fmt.Fprintf(&c.global, "%s %s(%s)%s\n", c.typeName(info.ReturnType, typePlain), c.name(info.Definition), strings.Join(params, ", "), semanticSuffix(info.ReturnSemantic))

	c.inFunction = true
	c.returnType = info.ReturnType

	fn := *info
	c.Functions = append(c.Functions, &fn)
	return info.Definition
}

// DefineEntryPoint records fn as a stage. The function itself carries its
// semantics, so no wrapper is written.
func (c *Codegen) DefineEntryPoint(fn *fx.FunctionInfo, isPixelShader bool) {
	name := c.name(fn.Definition)
	if slices.ContainsFunc(c.Module.EntryPoints, func(e fx.EntryPoint) bool { return e.Name == name }) {
		return
	}
	c.Module.EntryPoints = append(c.Module.EntryPoints, fx.EntryPoint{Name: name, IsPixelShader: isPixelShader})
}

func (c *Codegen) LeaveFunction() {
	if !c.inFunction {
		return
	}
	c.global.WriteString("{\n")
	c.global.WriteString(c.take(c.LastBlock))
	c.global.WriteString("}\n")

	c.inFunction = false
	c.discard.Reset()
	clear(c.blocks)
}
