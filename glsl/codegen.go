// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// naming selects how defineName treats a name.
type naming uint8

const (
	// namingGeneral escapes the name and appends the id when it is taken.
	namingGeneral naming = iota
	// namingUnique escapes the name. The parser guarantees uniqueness.
	namingUnique
	// namingExpression stores inline code that is substituted on every use.
	namingExpression
)

// Codegen emits GLSL source text. It implements fx.Codegen and is used for
// a single compilation.
type Codegen struct {
	fx.Context

	opts Options

	names map[fx.ID]string
	taken map[string]struct{}

	global  strings.Builder
	ubo     strings.Builder
	discard strings.Builder
	blocks  map[fx.ID]*strings.Builder

	// declared holds ids written as "T name = ...;" so loops can turn the
	// declaration into an assignment.
	declared map[fx.ID]bool

	locations fx.Locations

	inFunction bool
	returnType fx.Type

	usesFmod        bool
	usesCompOr      bool
	usesCompAnd     bool
	usesCompCond    bool
	usesControlFlow bool
}

// New returns a code generator writing GLSL with the given options.
func New(opts Options) *Codegen {
	return &Codegen{
		Context:   fx.NewContext(),
		opts:      opts,
		names:     make(map[fx.ID]string),
		taken:     make(map[string]struct{}),
		blocks:    make(map[fx.ID]*strings.Builder),
		declared:  make(map[fx.ID]bool),
		locations: make(fx.Locations),
	}
}

var _ fx.Codegen = (*Codegen)(nil)

// WriteResult stores the complete shader source in m.Code and copies every
// descriptor collected during parsing.
func (c *Codegen) WriteResult(m *fx.Module) {
	var sb strings.Builder
	c.writePreamble(&sb)

	if c.ubo.Len() != 0 {
		sb.WriteString("layout(std140, column_major, ")
		sb.WriteString(c.binding(0, 0))
		sb.WriteString(") uniform _Globals {\n")
		sb.WriteString(c.ubo.String())
		sb.WriteString("};\n")
	}

	sb.WriteString(c.global.String())

	c.Module.Code = sb.String()
	*m = c.Module
}

func (c *Codegen) writePreamble(sb *strings.Builder) {
	if !c.opts.Version.IsZero() {
		fmt.Fprintf(sb, "#version %s\n", c.opts.Version)
	}
	if c.usesControlFlow {
		sb.WriteString("#extension GL_EXT_control_flow_attributes : enable\n")
	}
	if c.opts.Version.ES {
		sb.WriteString("precision highp float;\nprecision highp int;\nprecision highp sampler2D;\n")
	}

	if c.usesFmod {
		sb.WriteString("float fmodHLSL(float x, float y) { return x - y * trunc(x / y); }\n")
		for n := 2; n <= 4; n++ {
			fmt.Fprintf(sb, "vec%[1]d fmodHLSL(vec%[1]d x, vec%[1]d y) { return x - y * trunc(x / y); }\n", n)
		}
		for n := 2; n <= 4; n++ {
			columns := make([]string, n)
			for i := range columns {
				columns[i] = fmt.Sprintf("trunc(x[%[1]d] / y[%[1]d])", i)
			}
			fmt.Fprintf(sb, "mat%[1]d fmodHLSL(mat%[1]d x, mat%[1]d y) { return x - matrixCompMult(y, mat%[1]d(%[2]s)); }\n", n, strings.Join(columns, ", "))
		}
	}
	if c.usesCompOr {
		writeComponentwise(sb, "compOr", "||")
	}
	if c.usesCompAnd {
		writeComponentwise(sb, "compAnd", "&&")
	}
	if c.usesCompCond {
		for _, prefix := range []string{"b", "i", "u", ""} {
			for n := 2; n <= 4; n++ {
				lanes := make([]string, n)
				for i := range lanes {
					lanes[i] = fmt.Sprintf("cond.%[1]c ? a.%[1]c : b.%[1]c", "xyzw"[i])
				}
				fmt.Fprintf(sb, "%[1]svec%[2]d compCond(bvec%[2]d cond, %[1]svec%[2]d a, %[1]svec%[2]d b) { return %[1]svec%[2]d(%[3]s); }\n", prefix, n, strings.Join(lanes, ", "))
			}
		}
	}
}

func writeComponentwise(sb *strings.Builder, name, op string) {
	for n := 2; n <= 4; n++ {
		lanes := make([]string, n)
		for i := range lanes {
			lanes[i] = fmt.Sprintf("a.%[1]c %[2]s b.%[1]c", "xyzw"[i], op)
		}
		fmt.Fprintf(sb, "bvec%[1]d %[2]s(bvec%[1]d a, bvec%[1]d b) { return bvec%[1]d(%[3]s); }\n", n, name, strings.Join(lanes, ", "))
	}
}

// binding returns the layout qualifiers placing a resource. Vulkan GLSL
// puts the uniform block in set 0 and samplers in set 1.
func (c *Codegen) binding(set, binding uint32) string {
	if c.opts.VulkanSemantics {
		return fmt.Sprintf("set = %d, binding = %d", set, binding)
	}
	return fmt.Sprintf("binding = %d", binding)
}

// supportsMemberOffsets reports whether layout(offset = N) is accepted on
// block members.
func (c *Codegen) supportsMemberOffsets() bool {
	v := c.opts.Version
	return c.opts.VulkanSemantics || (!v.ES && (v.Major > 4 || (v.Major == 4 && v.Minor >= 40)))
}

// IsInFunction reports whether a function body is being generated.
func (c *Codegen) IsInFunction() bool { return c.inFunction }

// code returns the text buffer of the current block. Global declarations
// are written while no block is current; statements after a return or
// discard land in a buffer that is thrown away.
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

func (c *Codegen) name(id fx.ID) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return "_" + strconv.FormatUint(uint64(id), 10)
}

func (c *Codegen) defineName(id fx.ID, name string, mode naming) {
	if name == "" {
		return
	}
	if mode != namingExpression {
		// Leading underscores are reserved for generated names.
		if name[0] == '_' {
			return
		}
		name = escapeName(name)
		if _, ok := c.taken[name]; ok && mode == namingGeneral {
			name += "_" + strconv.FormatUint(uint64(id), 10)
		}
		c.taken[name] = struct{}{}
	}
	c.names[id] = name
}

func (c *Codegen) writeLocation(sb *strings.Builder, loc lexer.Location) {
	if !c.opts.DebugInfo || loc.Source == "" {
		return
	}
	fmt.Fprintf(sb, "#line %d\n", loc.Line)
}

// typeMode selects the qualifiers writeType emits.
type typeMode uint8

const (
	typePlain typeMode = iota
	// typeParam writes in/out qualifiers.
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
		sb.WriteString("sampler2D")
	case fx.TypeTexture:
		sb.WriteString("texture2D")
	default:
		panic("glsl: cannot write type " + t.Description())
	}
	return sb.String()
}

func interpolation(t fx.Type) string {
	var sb strings.Builder
	if t.Has(fx.QualifierLinear) {
		sb.WriteString("smooth ")
	}
	if t.Has(fx.QualifierNoperspective) {
		sb.WriteString("noperspective ")
	}
	if t.Has(fx.QualifierCentroid) {
		sb.WriteString("centroid ")
	}
	if t.Has(fx.QualifierNointerpolation) {
		sb.WriteString("flat ")
	}
	return sb.String()
}

// numericTypeName names a scalar, vector or matrix type. GLSL matrices are
// always floating point and hold the rows of the effect's matrices as
// columns; a single row matrix is a vector.
func numericTypeName(t fx.Type) string {
	switch {
	case t.IsMatrix() && t.Rows > 1:
		return fmt.Sprintf("mat%dx%d", t.Rows, t.Cols)
	case t.IsMatrix():
		return vectorName(t.Base, t.Cols)
	default:
		return vectorName(t.Base, t.Rows)
	}
}

func vectorName(base fx.BaseType, n uint32) string {
	if n == 1 {
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
	prefix := ""
	switch base {
	case fx.TypeBool:
		prefix = "b"
	case fx.TypeInt:
		prefix = "i"
	case fx.TypeUint:
		prefix = "u"
	}
	return prefix + "vec" + strconv.FormatUint(uint64(n), 10)
}

func arraySuffix(t fx.Type) string {
	if !t.IsArray() {
		return ""
	}
	return "[" + strconv.Itoa(t.ArrayLength) + "]"
}

// constructorName is the type written in front of a constructor argument
// list, including the array size.
func (c *Codegen) constructorName(t fx.Type) string {
	return c.typeName(t, typePlain) + arraySuffix(t)
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
		return c.constructorName(t) + "(" + strings.Join(values, ", ") + ")"
	}

	if t.IsStruct() {
		var members []string
		if s := c.FindStruct(t.Definition); s != nil {
			for _, member := range s.Members {
				members = append(members, c.constant(member.Type, fx.Constant{}))
			}
		}
		if len(members) == 0 {
			members = append(members, "0.0")
		}
		return c.name(t.Definition) + "(" + strings.Join(members, ", ") + ")"
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

func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "(0.0 / 0.0)"
	case math.IsInf(float64(f), 1):
		return "(1.0 / 0.0)"
	case math.IsInf(float64(f), -1):
		return "(-1.0 / 0.0)"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// EmitConstant returns an id whose name is the constant's literal. Arrays
// cannot be used in place and are declared as a const local.
func (c *Codegen) EmitConstant(t fx.Type, data fx.Constant) fx.ID {
	id := c.MakeID()

	if t.IsArray() {
		code := c.code()
		if c.CurrentBlock != 0 {
			code.WriteByte('\t')
		}
		fmt.Fprintf(code, "const %s %s%s = %s;\n", c.typeName(t, typePlain), c.name(id), arraySuffix(t), c.constant(t, data))
		return id
	}

	c.defineName(id, c.constant(t, data), namingExpression)
	return id
}

func (c *Codegen) DefineStruct(loc lexer.Location, info *fx.StructInfo) fx.ID {
	info.Definition = c.MakeID()
	c.defineName(info.Definition, info.UniqueName, namingUnique)

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "struct %s\n{\n", c.name(info.Definition))
	for _, member := range info.Members {
		fmt.Fprintf(code, "\t%s %s%s;\n", c.typeName(member.Type, typeDecl), escapeName(member.Name), arraySuffix(member.Type))
	}
	if len(info.Members) == 0 {
		code.WriteString("\tfloat _dummy;\n")
	}
	code.WriteString("};\n")

	c.Structs = append(c.Structs, *info)
	return info.Definition
}

// DefineTexture records the texture. GLSL only sees the samplers.
func (c *Codegen) DefineTexture(_ lexer.Location, info *fx.TextureInfo) fx.ID {
	info.ID = c.MakeID()
	c.Module.Textures = append(c.Module.Textures, *info)
	return info.ID
}

func (c *Codegen) DefineSampler(loc lexer.Location, info *fx.SamplerInfo) fx.ID {
	info.ID = c.MakeID()
	info.Binding = c.Module.NumSamplerBindings
	c.Module.NumSamplerBindings++

	c.defineName(info.ID, info.UniqueName, namingUnique)

	code := c.code()
	c.writeLocation(code, loc)
	fmt.Fprintf(code, "layout(%s) uniform sampler2D %s;\n", c.binding(1, info.Binding), c.name(info.ID))

	c.Module.Samplers = append(c.Module.Samplers, *info)
	return info.ID
}

// DefineUniform adds a member to the _Globals block, or a specialization
// constant when enabled and the uniform is an initialized scalar.
func (c *Codegen) DefineUniform(loc lexer.Location, info *fx.UniformInfo) fx.ID {
	id := c.MakeID()
	c.defineName(id, info.Name, namingUnique)

	if c.opts.UniformsToSpecConstants && info.HasInitializerValue && info.Type.IsScalar() {
		c.defineSpecConstant(loc, id, info)
		return id
	}

	c.Module.TotalUniformSize = fx.PlaceUniform(info, c.Module.TotalUniformSize)
	c.Module.Uniforms = append(c.Module.Uniforms, *info)

	c.ubo.WriteByte('\t')
	if c.supportsMemberOffsets() {
		fmt.Fprintf(&c.ubo, "layout(offset = %d) ", info.Offset)
	}
	fmt.Fprintf(&c.ubo, "%s %s%s;\n", c.typeName(info.Type, typePlain), c.name(id), arraySuffix(info.Type))
	return id
}

// defineSpecConstant writes a constant the host overrides either through
// constant_id (Vulkan) or by defining SPEC_CONSTANT_<name> in front of the
// source.
func (c *Codegen) defineSpecConstant(loc lexer.Location, id fx.ID, info *fx.UniformInfo) {
	t := info.Type
	t.Qualifiers = 0
	value := c.constant(t, info.InitializerValue)
	name := c.name(id)

	code := c.code()
	c.writeLocation(code, loc)
	if c.opts.VulkanSemantics {
		fmt.Fprintf(code, "layout(constant_id = %d) const %s %s = %s;\n", len(c.Module.SpecConstants), c.typeName(t, typePlain), name, value)
	} else {
		macro := "SPEC_CONSTANT_" + name
		fmt.Fprintf(code, "#ifndef %[1]s\n#define %[1]s %[2]s\n#endif\n", macro, value)
		fmt.Fprintf(code, "const %[1]s %[2]s = %[1]s(%[3]s);\n", c.typeName(t, typePlain), name, macro)
	}

	spec := *info
	spec.Size = 4
	spec.Offset = 0
	c.Module.SpecConstants = append(c.Module.SpecConstants, spec)
}

func (c *Codegen) DefineVariable(loc lexer.Location, t fx.Type, name string, global bool, init fx.ID) fx.ID {
	id := c.MakeID()
	if global {
		c.defineName(id, name, namingUnique)
	} else {
		c.defineName(id, name, namingGeneral)
	}

	code := c.code()
	c.writeLocation(code, loc)
	if !global {
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
		c.defineName(info.Definition, info.UniqueName, namingUnique)
	} else {
		c.defineName(info.Definition, info.Name, namingUnique)
	}

	params := make([]string, len(info.Parameters))
	for i := range info.Parameters {
		p := &info.Parameters[i]
		p.Definition = c.MakeID()
		c.defineName(p.Definition, p.Name, namingGeneral)
		params[i] = c.typeName(p.Type, typeParam) + " " + c.name(p.Definition) + arraySuffix(p.Type)
	}

	c.writeLocation(&c.global, loc)
	fmt.Fprintf(&c.global, "%s %s(%s)\n", c.typeName(info.ReturnType, typePlain), c.name(info.Definition), strings.Join(params, ", "))

	c.inFunction = true
	c.returnType = info.ReturnType

	fn := *info
	c.Functions = append(c.Functions, &fn)
	return info.Definition
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
