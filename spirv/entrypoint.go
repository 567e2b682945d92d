package spirv

import (
	"slices"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// builtin returns the built-in variable a system value semantic maps to.
func (c *Codegen) builtin(semantic string, isPixelShader bool) (BuiltIn, bool) {
	switch semantic {
	case "SV_POSITION", "POSITION", "VPOS":
		if isPixelShader {
			return BuiltInFragCoord, true
		}
		return BuiltInPosition, true
	case "SV_DEPTH", "DEPTH":
		return BuiltInFragDepth, true
	case "SV_VERTEXID":
		if c.opts.VulkanSemantics {
			return BuiltInVertexIndex, true
		}
		return BuiltInVertexID, true
	}
	return 0, false
}

type entryPoint struct {
	isPixelShader bool
	interfaces    []fx.ID
	position      fx.ID
	writesDepth   bool
}

// varying declares an Input or Output variable for one interface element.
func (c *Codegen) varying(ep *entryPoint, t fx.Type, semantic string, storage StorageClass) fx.ID {
	id := c.MakeID()
	c.defineVariable(id, lexer.Location{}, t, "", storage, 0)

	if builtin, ok := c.builtin(semantic, ep.isPixelShader); ok {
		c.decorate(id, DecorationBuiltIn, uint32(builtin))
		switch {
		case builtin == BuiltInPosition && storage == StorageClassOutput:
			ep.position = id
		case builtin == BuiltInFragDepth:
			ep.writesDepth = true
		}
	} else {
		c.decorate(id, DecorationLocation, c.locations.Of(semantic))
		c.decorateSemantic(id, semantic)
	}

	if t.Has(fx.QualifierNoperspective) {
		c.decorate(id, DecorationNoPerspective)
	}
	if t.Has(fx.QualifierCentroid) {
		c.decorate(id, DecorationCentroid)
	}
	// Integer fragment inputs cannot be interpolated.
	if t.Has(fx.QualifierNointerpolation) || (ep.isPixelShader && storage == StorageClassInput && t.IsIntegral()) {
		c.decorate(id, DecorationFlat)
	}

	ep.interfaces = append(ep.interfaces, id)
	return id
}

func varyingType(t fx.Type) fx.Type {
	t.Qualifiers &= fx.InterpolationMask
	return t
}

func (c *Codegen) DefineEntryPoint(fn *fx.FunctionInfo, isPixelShader bool) {
	if slices.ContainsFunc(c.Module.EntryPoints, func(e fx.EntryPoint) bool { return e.Name == fn.UniqueName }) {
		return
	}
	c.Module.EntryPoints = append(c.Module.EntryPoints, fx.EntryPoint{Name: fn.UniqueName, IsPixelShader: isPixelShader})

	ep := &entryPoint{isPixelShader: isPixelShader}

	wrapper := fx.FunctionInfo{ReturnType: fx.Type{Base: fx.TypeVoid}}
	c.defineFunction(lexer.Location{}, &wrapper)
	c.EnterBlock(c.CreateBlock())

	// Every parameter becomes a local the call receives by reference.
	args := make([]fx.Expression, len(fn.Parameters))
	outputs := make([][]fx.ID, len(fn.Parameters))
	for i, param := range fn.Parameters {
		t := param.Type
		t.Qualifiers = 0
		local := c.MakeID()
		c.defineVariable(local, lexer.Location{}, t, "", StorageClassFunction, 0)
		args[i].ResetToLvalue(param.Location, local, param.Type)

		if param.Type.Has(fx.QualifierOut) {
			if s := c.FindStruct(t.Definition); t.IsStruct() && s != nil {
				for _, member := range s.Members {
					outputs[i] = append(outputs[i], c.varying(ep, varyingType(member.Type), member.Semantic, StorageClassOutput))
				}
			} else {
				outputs[i] = append(outputs[i], c.varying(ep, varyingType(param.Type), param.Semantic, StorageClassOutput))
			}
			continue
		}

		// Inputs are loaded once and stored to the local.
		var value fx.ID
		if s := c.FindStruct(t.Definition); t.IsStruct() && s != nil {
			members := make([]fx.ID, len(s.Members))
			for k, member := range s.Members {
				mt := varyingType(member.Type)
				input := c.varying(ep, mt, member.Semantic, StorageClassInput)
				members[k] = c.emit(OpLoad, c.convertType(mt), input)
			}
			value = c.emit(OpCompositeConstruct, c.convertType(t), members...)
		} else {
			input := c.varying(ep, varyingType(param.Type), param.Semantic, StorageClassInput)
			value = c.emit(OpLoad, c.convertType(t), input)
		}
		c.add(Instruction{Op: OpStore, Operands: []uint32{local, value}})
	}

	result := c.EmitCall(lexer.Location{}, fn.Definition, fn.ReturnType, args)

	for i, param := range fn.Parameters {
		if !param.Type.Has(fx.QualifierOut) {
			continue
		}
		t := param.Type
		t.Qualifiers = 0
		value := c.emit(OpLoad, c.convertType(t), args[i].Base)
		c.storeOutputs(t, value, outputs[i])
	}

	if !fn.ReturnType.IsVoid() {
		t := fn.ReturnType
		t.Qualifiers = 0
		var targets []fx.ID
		if s := c.FindStruct(t.Definition); t.IsStruct() && s != nil {
			for _, member := range s.Members {
				targets = append(targets, c.varying(ep, varyingType(member.Type), member.Semantic, StorageClassOutput))
			}
		} else {
			targets = append(targets, c.varying(ep, varyingType(fn.ReturnType), fn.ReturnSemantic, StorageClassOutput))
		}
		c.storeOutputs(t, result, targets)
	}

	if c.opts.InvertY && !isPixelShader && ep.position != 0 {
		var pos fx.Expression
		pos.ResetToLvalue(lexer.Location{}, ep.position, fx.Vector(fx.TypeFloat, 4))
		pos.AddConstantIndex(1)
		y := c.EmitLoad(&pos, false)
		c.EmitStore(&pos, c.EmitUnaryOp(lexer.Location{}, lexer.TokenMinus, fx.Scalar(fx.TypeFloat), y))
	}

	c.LeaveBlockAndReturn(0)
	c.LeaveFunction()

	model := ExecutionModelVertex
	if isPixelShader {
		model = ExecutionModelFragment
	}
	entry := Instruction{Op: OpEntryPoint}
	entry.Add(uint32(model), wrapper.Definition).AddString(fn.UniqueName).Add(ep.interfaces...)
	c.mod.entryPoints = append(c.mod.entryPoints, entry)

	if isPixelShader {
		c.mod.executionModes = append(c.mod.executionModes, Instruction{Op: OpExecutionMode, Operands: []uint32{wrapper.Definition, uint32(ExecutionModeOriginUpperLeft)}})
		if ep.writesDepth {
			c.mod.executionModes = append(c.mod.executionModes, Instruction{Op: OpExecutionMode, Operands: []uint32{wrapper.Definition, uint32(ExecutionModeDepthReplacing)}})
		}
	}
}

// storeOutputs writes value to its output variables, one per struct member
// or a single one otherwise.
func (c *Codegen) storeOutputs(t fx.Type, value fx.ID, targets []fx.ID) {
	s := c.FindStruct(t.Definition)
	if !t.IsStruct() || s == nil {
		c.add(Instruction{Op: OpStore, Operands: []uint32{targets[0], value}})
		return
	}
	for k, member := range s.Members {
		mt := member.Type
		mt.Qualifiers = 0
		extracted := c.emit(OpCompositeExtract, c.convertType(mt), value, uint32(k))
		c.add(Instruction{Op: OpStore, Operands: []uint32{targets[k], extracted}})
	}
}
