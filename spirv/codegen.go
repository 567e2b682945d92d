package spirv

import (
	"math"
	"slices"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// basicBlock is one block of the arena. The terminator is kept apart from
// the body so a structured merge instruction can be placed in front of it
// when the enclosing construct is emitted.
type basicBlock struct {
	body       []Instruction
	terminator *Instruction
}

func (b *basicBlock) flatten() []Instruction {
	if b == nil {
		return nil
	}
	if b.terminator == nil {
		return slices.Clone(b.body)
	}
	return append(slices.Clone(b.body), *b.terminator)
}

type function struct {
	returnType  fx.Type
	declaration []Instruction
	variables   []Instruction
	definition  []Instruction
}

// typeKey identifies a converted type. Qualifiers never take part.
type typeKey struct {
	base        fx.BaseType
	rows, cols  uint32
	arrayLength int
	definition  fx.ID
	pointer     bool
	stride      uint32
	storage     StorageClass
}

type constantKey struct {
	t     typeKey
	lanes [16]uint32
}

type functionType struct {
	returnType fx.ID
	params     []fx.ID
	id         fx.ID
}

// Codegen emits SPIR-V. It implements fx.Codegen and is used for a single
// compilation.
type Codegen struct {
	fx.Context

	opts Options
	mod  moduleBuilder

	glslExt fx.ID

	uboType     fx.ID
	uboVariable fx.ID
	uboMembers  []fx.ID

	uniformMembers map[fx.ID]uint32
	specConstants  map[fx.ID]bool
	storage        map[fx.ID]StorageClass

	types         map[typeKey]fx.ID
	constants     map[constantKey]fx.ID
	functionTypes []functionType
	sourceFiles   map[string]fx.ID
	locations     fx.Locations

	functions []*function
	current   *function
	blocks    map[fx.ID]*basicBlock
	spliced   map[fx.ID]fx.ID
}

// New returns a code generator writing SPIR-V with the given options.
func New(opts Options) *Codegen {
	c := &Codegen{
		Context:        fx.NewContext(),
		opts:           opts,
		uniformMembers: make(map[fx.ID]uint32),
		specConstants:  make(map[fx.ID]bool),
		storage:        make(map[fx.ID]StorageClass),
		types:          make(map[typeKey]fx.ID),
		constants:      make(map[constantKey]fx.ID),
		sourceFiles:    make(map[string]fx.ID),
		locations:      make(fx.Locations),
		blocks:         make(map[fx.ID]*basicBlock),
		spliced:        make(map[fx.ID]fx.ID),
	}
	c.glslExt = c.MakeID()
	c.mod.addCapability(CapabilityMatrix)
	return c
}

var _ fx.Codegen = (*Codegen)(nil)

// WriteResult assembles the module binary into m.SPIRV and copies every
// descriptor collected during parsing.
func (c *Codegen) WriteResult(m *fx.Module) {
	if c.uboType != 0 {
		c.mod.types = append(c.mod.types, Instruction{Op: OpTypeStruct, Result: c.uboType, Operands: slices.Clone(c.uboMembers)})
		c.addName(c.uboType, "$Globals")

		t := fx.Type{Base: fx.TypeStruct, Definition: c.uboType, Qualifiers: fx.QualifierUniform}
		c.defineVariable(c.uboVariable, lexer.Location{}, t, "$Globals", StorageClassUniform, 0)
	}

	var code []Instruction
	for _, fn := range c.functions {
		if len(fn.definition) == 0 {
			continue
		}
		code = append(code, fn.declaration...)
		code = append(code, fn.definition[0])
		code = append(code, fn.variables...)
		code = append(code, fn.definition[1:]...)
	}

	c.Module.SPIRV = c.mod.build(c.NextID, c.glslExt, c.opts.DebugInfo, code)
	*m = c.Module
}

// IsInFunction reports whether a function body is being generated. Blocks
// are left between statements, so this differs from IsInBlock.
func (c *Codegen) IsInFunction() bool { return c.current != nil }

// block returns the current block, creating its arena entry on first use.
// Code emitted while no block is current lands in the unreachable block 0.
func (c *Codegen) block() *basicBlock {
	b, ok := c.blocks[c.CurrentBlock]
	if !ok {
		b = &basicBlock{}
		c.blocks[c.CurrentBlock] = b
	}
	return b
}

func (c *Codegen) add(inst Instruction) {
	b := c.block()
	b.body = append(b.body, inst)
}

// emit adds an instruction with a fresh result id to the current block.
func (c *Codegen) emit(op OpCode, t fx.ID, operands ...fx.ID) fx.ID {
	id := c.MakeID()
	c.add(Instruction{Op: op, Type: t, Result: id, Operands: operands})
	return id
}

func (c *Codegen) emitExt(t fx.ID, inst GLSLstd450, operands ...fx.ID) fx.ID {
	return c.emit(OpExtInst, t, append([]fx.ID{c.glslExt, uint32(inst)}, operands...)...)
}

func (c *Codegen) addType(op OpCode, operands ...fx.ID) fx.ID {
	id := c.MakeID()
	c.mod.types = append(c.mod.types, Instruction{Op: op, Result: id, Operands: operands})
	return id
}

func (c *Codegen) addLocation(loc lexer.Location, dst *[]Instruction) {
	if !c.opts.DebugInfo || loc.Source == "" {
		return
	}

	file, ok := c.sourceFiles[loc.Source]
	if !ok {
		file = c.MakeID()
		str := Instruction{Op: OpString, Result: file}
		c.mod.debugStrings = append(c.mod.debugStrings, *str.AddString(loc.Source))
		c.sourceFiles[loc.Source] = file
	}
	*dst = append(*dst, Instruction{Op: OpLine, Operands: []uint32{file, uint32(loc.Line), uint32(loc.Column)}})
}

func (c *Codegen) addBlockLocation(loc lexer.Location) {
	b := c.block()
	c.addLocation(loc, &b.body)
}

func (c *Codegen) addName(id fx.ID, name string) {
	if !c.opts.DebugInfo || name == "" {
		return
	}
	inst := Instruction{Op: OpName}
	inst.Add(id).AddString(name)
	c.mod.debugNames = append(c.mod.debugNames, inst)
}

func (c *Codegen) addMemberName(id fx.ID, member uint32, name string) {
	if !c.opts.DebugInfo || name == "" {
		return
	}
	inst := Instruction{Op: OpMemberName}
	inst.Add(id, member).AddString(name)
	c.mod.debugNames = append(c.mod.debugNames, inst)
}

func (c *Codegen) decorate(id fx.ID, decoration Decoration, values ...uint32) {
	inst := Instruction{Op: OpDecorate}
	inst.Add(id, uint32(decoration)).Add(values...)
	c.mod.annotations = append(c.mod.annotations, inst)
}

// decorateSemantic attaches the source semantic to an interface variable
// when debug info is enabled.
func (c *Codegen) decorateSemantic(id fx.ID, semantic string) {
	if !c.opts.DebugInfo || semantic == "" {
		return
	}
	c.mod.addExtension("SPV_GOOGLE_hlsl_functionality1")
	inst := Instruction{Op: OpDecorateString}
	inst.Add(id, uint32(DecorationHlslSemanticGOOGLE)).AddString(semantic)
	c.mod.annotations = append(c.mod.annotations, inst)
}

func (c *Codegen) decorateMember(id fx.ID, member uint32, decoration Decoration, values ...uint32) {
	inst := Instruction{Op: OpMemberDecorate}
	inst.Add(id, member, uint32(decoration)).Add(values...)
	c.mod.annotations = append(c.mod.annotations, inst)
}

func (c *Codegen) storageOf(id fx.ID) StorageClass {
	if storage, ok := c.storage[id]; ok {
		return storage
	}
	return StorageClassFunction
}

func keyOf(t fx.Type, pointer bool, storage StorageClass, stride uint32) typeKey {
	key := typeKey{
		base:        t.Base,
		rows:        t.Rows,
		cols:        t.Cols,
		arrayLength: t.ArrayLength,
		definition:  t.Definition,
		pointer:     pointer,
		stride:      stride,
		storage:     storage,
	}
	if !t.IsNumeric() {
		key.rows, key.cols = 0, 0
	}
	return key
}

func (c *Codegen) convertType(t fx.Type) fx.ID {
	return c.typeID(t, false, StorageClassFunction, 0)
}

func (c *Codegen) pointerType(t fx.Type, storage StorageClass) fx.ID {
	return c.typeID(t, true, storage, 0)
}

func (c *Codegen) typeID(t fx.Type, pointer bool, storage StorageClass, stride uint32) fx.ID {
	if !pointer {
		storage = StorageClassFunction
	}
	if t.IsTexture() || t.IsSampler() {
		storage = StorageClassUniformConstant
	}

	key := keyOf(t, pointer, storage, stride)
	if id, ok := c.types[key]; ok {
		return id
	}

	var id fx.ID
	switch {
	case pointer:
		elem := c.typeID(t, false, storage, stride)
		id = c.addType(OpTypePointer, uint32(storage), elem)
	case t.IsArray():
		elem := c.typeID(t.Element(), false, storage, 0)
		length := c.constantUint(uint32(t.ArrayLength))
		id = c.addType(OpTypeArray, elem, length)
		if stride != 0 {
			c.decorate(id, DecorationArrayStride, stride)
		}
	case t.IsMatrix():
		column := c.convertType(fx.Vector(t.Base, t.Cols))
		if t.Rows == 1 {
			id = column
		} else {
			id = c.addType(OpTypeMatrix, column, t.Rows)
		}
	case t.IsVector():
		id = c.addType(OpTypeVector, c.convertType(fx.Scalar(t.Base)), t.Rows)
	default:
		switch t.Base {
		case fx.TypeVoid:
			id = c.addType(OpTypeVoid)
		case fx.TypeBool:
			id = c.addType(OpTypeBool)
		case fx.TypeInt:
			id = c.addType(OpTypeInt, 32, 1)
		case fx.TypeUint:
			id = c.addType(OpTypeInt, 32, 0)
		case fx.TypeFloat:
			id = c.addType(OpTypeFloat, 32)
		case fx.TypeStruct:
			id = t.Definition
		case fx.TypeTexture:
			float := c.convertType(fx.Scalar(fx.TypeFloat))
			id = c.addType(OpTypeImage, float, Dim2D, 0, 0, 0, 1, ImageFormatUnknown)
		case fx.TypeSampler:
			texture := c.convertType(fx.Type{Base: fx.TypeTexture})
			id = c.addType(OpTypeSampledImage, texture)
		default:
			panic("spirv: cannot convert type " + t.Description())
		}
	}

	c.types[key] = id
	return id
}

func (c *Codegen) functionTypeID(returnType fx.Type, params []fx.Type) fx.ID {
	ret := c.convertType(returnType)
	ids := make([]fx.ID, len(params))
	for i, t := range params {
		ids[i] = c.pointerType(t, StorageClassFunction)
	}

	for _, ft := range c.functionTypes {
		if ft.returnType == ret && slices.Equal(ft.params, ids) {
			return ft.id
		}
	}

	id := c.addType(OpTypeFunction, append([]fx.ID{ret}, ids...)...)
	c.functionTypes = append(c.functionTypes, functionType{returnType: ret, params: ids, id: id})
	return id
}

// EmitConstant returns the id of a constant of type t. Equal constants share
// an id.
func (c *Codegen) EmitConstant(t fx.Type, data fx.Constant) fx.ID {
	cacheable := !t.IsArray()

	var key constantKey
	if cacheable {
		key.t = keyOf(t, false, StorageClassFunction, 0)
		n := min(int(t.Components()), len(data.Lanes))
		copy(key.lanes[:n], data.Lanes[:n])
		if id, ok := c.constants[key]; ok {
			return id
		}
	}

	var id fx.ID
	switch {
	case t.IsArray():
		elem := t.Element()
		ids := make([]fx.ID, t.ArrayLength)
		for i := range ids {
			var value fx.Constant
			if i < len(data.Array) {
				value = data.Array[i]
			}
			ids[i] = c.EmitConstant(elem, value)
		}
		id = c.addConstant(OpConstantComposite, t, ids...)
	case t.IsStruct():
		id = c.addConstant(OpConstantNull, t)
	case t.IsVector() || t.IsMatrix():
		row := fx.Vector(t.Base, t.Cols)
		rows := make([]fx.ID, t.Rows)
		for i := range rows {
			var value fx.Constant
			copy(value.Lanes[:t.Cols], data.Lanes[uint32(i)*t.Cols:])
			rows[i] = c.EmitConstant(row, value)
		}
		if t.Rows == 1 {
			id = rows[0]
		} else {
			id = c.addConstant(OpConstantComposite, t, rows...)
		}
	case t.IsBoolean():
		if data.Lanes[0] != 0 {
			id = c.addConstant(OpConstantTrue, t)
		} else {
			id = c.addConstant(OpConstantFalse, t)
		}
	default:
		id = c.addConstant(OpConstant, t, data.Lanes[0])
	}

	if cacheable {
		c.constants[key] = id
	}
	return id
}

func (c *Codegen) addConstant(op OpCode, t fx.Type, operands ...uint32) fx.ID {
	id := c.MakeID()
	c.mod.types = append(c.mod.types, Instruction{Op: op, Type: c.convertType(t), Result: id, Operands: operands})
	return id
}

func (c *Codegen) constantUint(v uint32) fx.ID {
	var data fx.Constant
	data.Lanes[0] = v
	return c.EmitConstant(fx.Scalar(fx.TypeUint), data)
}

// constantOf returns a constant of type t with every component set to v.
func (c *Codegen) constantOf(t fx.Type, v uint32) fx.ID {
	var data fx.Constant
	for i, n := uint32(0), t.Components(); i < n; i++ {
		if t.IsFloatingPoint() {
			data.SetFloat(int(i), float32(v))
		} else {
			data.SetUint(int(i), v)
		}
	}
	return c.EmitConstant(t.Element(), data)
}

func (c *Codegen) constantFloat(t fx.Type, f float32) fx.ID {
	var data fx.Constant
	for i, n := uint32(0), t.Components(); i < n; i++ {
		data.Lanes[i] = math.Float32bits(f)
	}
	return c.EmitConstant(t.Element(), data)
}

func (c *Codegen) DefineStruct(loc lexer.Location, info *fx.StructInfo) fx.ID {
	members := make([]fx.ID, len(info.Members))
	for i, member := range info.Members {
		members[i] = c.convertType(member.Type)
	}

	c.addLocation(loc, &c.mod.types)
	info.Definition = c.addType(OpTypeStruct, members...)

	c.addName(info.Definition, info.UniqueName)
	for i, member := range info.Members {
		c.addMemberName(info.Definition, uint32(i), member.Name)
	}

	c.Structs = append(c.Structs, *info)
	return info.Definition
}

// DefineTexture records the texture. Textures are only reachable through
// the combined image samplers that reference them.
func (c *Codegen) DefineTexture(_ lexer.Location, info *fx.TextureInfo) fx.ID {
	info.ID = c.MakeID()
	c.Module.Textures = append(c.Module.Textures, *info)
	return info.ID
}

func (c *Codegen) DefineSampler(loc lexer.Location, info *fx.SamplerInfo) fx.ID {
	info.ID = c.MakeID()
	info.Binding = c.Module.NumSamplerBindings
	c.Module.NumSamplerBindings++

	t := fx.Type{Base: fx.TypeSampler, Qualifiers: fx.QualifierUniform}
	c.defineVariable(info.ID, loc, t, info.UniqueName, StorageClassUniformConstant, 0)
	c.decorate(info.ID, DecorationDescriptorSet, 1)
	c.decorate(info.ID, DecorationBinding, info.Binding)

	c.Module.Samplers = append(c.Module.Samplers, *info)
	return info.ID
}

// DefineUniform adds a member to the $Globals block, or a specialization
// constant when enabled and the uniform is an initialized scalar. The
// returned id stands for the member; loads resolve it to an access chain.
func (c *Codegen) DefineUniform(loc lexer.Location, info *fx.UniformInfo) fx.ID {
	if c.opts.UniformsToSpecConstants && info.HasInitializerValue && info.Type.IsScalar() {
		return c.defineSpecConstant(info)
	}

	if c.uboType == 0 {
		c.uboType = c.MakeID()
		c.uboVariable = c.MakeID()
		c.decorate(c.uboType, DecorationBlock)
		c.decorate(c.uboVariable, DecorationDescriptorSet, 0)
		c.decorate(c.uboVariable, DecorationBinding, 0)
	}

	c.Module.TotalUniformSize = fx.PlaceUniform(info, c.Module.TotalUniformSize)
	c.Module.Uniforms = append(c.Module.Uniforms, *info)

	member := uint32(len(c.uboMembers))

	t := info.Type
	if t.IsBoolean() {
		t.Base = fx.TypeUint
	}
	var stride uint32
	if t.IsArray() {
		size, _ := fx.UniformLayout(t.Element())
		stride = fx.AlignUp(size, 16)
	}
	c.uboMembers = append(c.uboMembers, c.typeID(t, false, StorageClassUniform, stride))

	c.addMemberName(c.uboType, member, info.Name)
	c.decorateMember(c.uboType, member, DecorationOffset, info.Offset)
	if t.IsMatrix() {
		// Rows of the effect's matrices are stored as columns.
		c.decorateMember(c.uboType, member, DecorationColMajor)
		c.decorateMember(c.uboType, member, DecorationMatrixStride, 16)
	}

	id := c.MakeID()
	c.uniformMembers[id] = member
	return id
}

func (c *Codegen) defineSpecConstant(info *fx.UniformInfo) fx.ID {
	value := info.InitializerValue.Lanes[0]

	t := info.Type
	var id fx.ID
	switch {
	case t.IsBoolean() && value != 0:
		id = c.addConstant(OpSpecConstantTrue, t)
	case t.IsBoolean():
		id = c.addConstant(OpSpecConstantFalse, t)
	default:
		id = c.addConstant(OpSpecConstant, t, value)
	}

	c.decorate(id, DecorationSpecID, uint32(len(c.Module.SpecConstants)))
	c.addName(id, info.Name)

	spec := *info
	spec.Size = 4
	spec.Offset = 0
	c.Module.SpecConstants = append(c.Module.SpecConstants, spec)

	c.specConstants[id] = true
	return id
}

func (c *Codegen) DefineVariable(loc lexer.Location, t fx.Type, name string, global bool, init fx.ID) fx.ID {
	id := c.MakeID()
	storage := StorageClassFunction
	if global {
		storage = StorageClassPrivate
	}
	c.defineVariable(id, loc, t, name, storage, init)
	return id
}

func (c *Codegen) defineVariable(id fx.ID, loc lexer.Location, t fx.Type, name string, storage StorageClass, init fx.ID) {
	dst := &c.mod.globals
	if storage == StorageClassFunction {
		dst = &c.current.variables
	}

	c.addLocation(loc, dst)
	inst := Instruction{Op: OpVariable, Type: c.pointerType(t, storage), Result: id, Operands: []uint32{uint32(storage)}}
	if init != 0 && storage != StorageClassFunction {
		inst.Add(init)
	}
	*dst = append(*dst, inst)

	c.addName(id, name)
	c.storage[id] = storage

	if init != 0 && storage == StorageClassFunction {
		var exp fx.Expression
		exp.ResetToLvalue(loc, id, t)
		c.EmitStore(&exp, init)
	}
}

func (c *Codegen) DefineFunction(loc lexer.Location, info *fx.FunctionInfo) fx.ID {
	c.defineFunction(loc, info)

	fn := *info
	c.Functions = append(c.Functions, &fn)
	return info.Definition
}

func (c *Codegen) defineFunction(loc lexer.Location, info *fx.FunctionInfo) {
	fn := &function{returnType: info.ReturnType}
	c.functions = append(c.functions, fn)
	c.current = fn

	params := make([]fx.Type, len(info.Parameters))
	for i, p := range info.Parameters {
		params[i] = p.Type
	}

	c.addLocation(loc, &fn.declaration)
	info.Definition = c.MakeID()
	fn.declaration = append(fn.declaration, Instruction{
		Op:       OpFunction,
		Type:     c.convertType(info.ReturnType),
		Result:   info.Definition,
		Operands: []uint32{FunctionControlNone, c.functionTypeID(info.ReturnType, params)},
	})
	if info.UniqueName != "" {
		c.addName(info.Definition, info.UniqueName)
	} else {
		c.addName(info.Definition, info.Name)
	}

	for i := range info.Parameters {
		p := &info.Parameters[i]
		c.addLocation(p.Location, &fn.declaration)

		p.Definition = c.MakeID()
		fn.declaration = append(fn.declaration, Instruction{
			Op:     OpFunctionParameter,
			Type:   c.pointerType(p.Type, StorageClassFunction),
			Result: p.Definition,
		})
		c.addName(p.Definition, p.Name)
		if p.Type.IsSampler() {
			c.storage[p.Definition] = StorageClassUniformConstant
		}
	}
}

func (c *Codegen) LeaveFunction() {
	fn := c.current
	if fn == nil {
		return
	}

	fn.definition = c.blocks[c.LastBlock].flatten()
	fn.definition = append(fn.definition, Instruction{Op: OpFunctionEnd})
	if fn.definition[0].Op != OpLabel {
		// A function whose body never entered a block.
		fn.definition = nil
	}

	c.current = nil
	clear(c.blocks)
	clear(c.spliced)
}
