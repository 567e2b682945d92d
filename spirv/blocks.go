package spirv

import (
	"slices"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

func (c *Codegen) SetBlock(id fx.ID) fx.ID {
	c.LastBlock = c.CurrentBlock
	c.CurrentBlock = id
	return c.LastBlock
}

func (c *Codegen) EnterBlock(id fx.ID) {
	c.SetBlock(id)
	c.add(Instruction{Op: OpLabel, Result: id})
}

func (c *Codegen) terminate(inst Instruction) fx.ID {
	c.block().terminator = &inst
	return c.SetBlock(0)
}

func (c *Codegen) LeaveBlockAndKill() fx.ID {
	if !c.IsInBlock() {
		return 0
	}
	return c.terminate(Instruction{Op: OpKill})
}

func (c *Codegen) LeaveBlockAndReturn(value fx.ID) fx.ID {
	if !c.IsInBlock() {
		return 0
	}
	if c.current == nil || c.current.returnType.IsVoid() {
		return c.terminate(Instruction{Op: OpReturn})
	}

	if value == 0 {
		value = c.MakeID()
		c.mod.types = append(c.mod.types, Instruction{Op: OpUndef, Type: c.convertType(c.current.returnType), Result: value})
	}
	return c.terminate(Instruction{Op: OpReturnValue, Operands: []uint32{value}})
}

func (c *Codegen) LeaveBlockAndSwitch(value, defaultTarget fx.ID) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	return c.terminate(Instruction{Op: OpSwitch, Operands: []uint32{value, defaultTarget}})
}

func (c *Codegen) LeaveBlockAndBranch(target fx.ID, _ uint32) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	return c.terminate(Instruction{Op: OpBranch, Operands: []uint32{target}})
}

func (c *Codegen) LeaveBlockAndBranchConditional(cond, trueTarget, falseTarget fx.ID) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	return c.terminate(Instruction{Op: OpBranchConditional, Operands: []uint32{cond, trueTarget, falseTarget}})
}

// splice puts the code of a construct entered from block from in front of
// the current block's body. The current block then holds all of it.
func (c *Codegen) splice(from fx.ID, code []Instruction) {
	b := c.block()
	b.body = append(code, b.body...)
	c.spliced[from] = c.CurrentBlock
}

// structured returns the flattened block with a merge instruction placed
// right in front of its terminator.
func (c *Codegen) structured(id fx.ID, merge Instruction) []Instruction {
	b := c.blocks[id]
	if b == nil {
		return nil
	}
	code := append(slices.Clone(b.body), merge)
	if b.terminator != nil {
		code = append(code, *b.terminator)
	}
	return code
}

// entryLabel returns the label that starts the code collected in block id.
// A block that ends a nested construct starts with the label of the block
// the construct was entered from.
func (c *Codegen) entryLabel(id fx.ID) fx.ID {
	if b := c.blocks[id]; b != nil && len(b.body) > 0 && b.body[0].Op == OpLabel {
		return b.body[0].Result
	}
	return id
}

// final follows the blocks the code entered with label id was spliced into.
func (c *Codegen) final(id fx.ID) fx.ID {
	for {
		next, ok := c.spliced[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (c *Codegen) EmitIf(_ lexer.Location, _, condBlock, trueBlock, falseBlock fx.ID, flags uint32) {
	merge := Instruction{Op: OpSelectionMerge, Operands: []uint32{c.CurrentBlock, flags}}

	var code []Instruction
	code = append(code, c.structured(condBlock, merge)...)
	code = append(code, c.blocks[trueBlock].flatten()...)
	code = append(code, c.blocks[falseBlock].flatten()...)
	c.splice(condBlock, code)
}

func (c *Codegen) EmitPhi(_ lexer.Location, _, condBlock, trueValue, trueBlock, falseValue, falseBlock fx.ID, t fx.Type) fx.ID {
	merge := Instruction{Op: OpSelectionMerge, Operands: []uint32{c.CurrentBlock, SelectionControlNone}}

	var code []Instruction
	code = append(code, c.structured(condBlock, merge)...)
	if trueBlock != condBlock {
		code = append(code, c.blocks[trueBlock].flatten()...)
	}
	if falseBlock != condBlock {
		code = append(code, c.blocks[falseBlock].flatten()...)
	}
	c.splice(condBlock, code)

	return c.emit(OpPhi, c.convertType(t), trueValue, trueBlock, falseValue, falseBlock)
}

func (c *Codegen) EmitLoop(_ lexer.Location, _, prevBlock, headerBlock, condBlock, loopBlock, continueBlock fx.ID, flags uint32) {
	merge := Instruction{Op: OpLoopMerge, Operands: []uint32{c.CurrentBlock, continueBlock, flags}}

	var code []Instruction
	code = append(code, c.blocks[prevBlock].flatten()...)
	code = append(code, c.structured(headerBlock, merge)...)
	if condBlock != 0 {
		code = append(code, c.blocks[condBlock].flatten()...)
	}
	code = append(code, c.blocks[loopBlock].flatten()...)
	code = append(code, c.blocks[c.final(continueBlock)].flatten()...)
	c.splice(prevBlock, code)
}

func (c *Codegen) EmitSwitch(_ lexer.Location, _, selectorBlock, defaultLabel fx.ID, caseLiteralAndLabels []fx.ID, flags uint32) {
	b := c.blocks[selectorBlock]
	if b == nil || b.terminator == nil || b.terminator.Op != OpSwitch {
		return
	}

	sw := *b.terminator
	sw.Operands = []uint32{sw.Operands[0], c.entryLabel(defaultLabel)}
	for i := 0; i+1 < len(caseLiteralAndLabels); i += 2 {
		sw.Operands = append(sw.Operands, caseLiteralAndLabels[i], c.entryLabel(caseLiteralAndLabels[i+1]))
	}
	b.terminator = &sw

	merge := Instruction{Op: OpSelectionMerge, Operands: []uint32{c.CurrentBlock, flags}}

	var code []Instruction
	code = append(code, c.structured(selectorBlock, merge)...)

	var emitted []fx.ID
	for i := 1; i < len(caseLiteralAndLabels); i += 2 {
		label := caseLiteralAndLabels[i]
		if slices.Contains(emitted, label) {
			continue
		}
		emitted = append(emitted, label)
		code = append(code, c.blocks[label].flatten()...)
	}
	if defaultLabel != c.CurrentBlock && !slices.Contains(emitted, defaultLabel) {
		code = append(code, c.blocks[defaultLabel].flatten()...)
	}
	c.splice(selectorBlock, code)
}
