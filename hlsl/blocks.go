// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// continueMarker stands in for the continue block of a loop until the loop
// is emitted.
const continueMarker = "__CONTINUE__"

func (c *Codegen) SetBlock(id fx.ID) fx.ID {
	c.LastBlock = c.CurrentBlock
	c.CurrentBlock = id
	return c.LastBlock
}

func (c *Codegen) EnterBlock(id fx.ID) {
	c.SetBlock(id)
	c.block(id)
}

func (c *Codegen) LeaveBlockAndKill() fx.ID {
	if !c.IsInBlock() {
		return 0
	}
	code := c.code()
	code.WriteString("\tdiscard;\n")
	if !c.returnType.IsVoid() {
		t := c.returnType
		t.Qualifiers = 0
		fmt.Fprintf(code, "\treturn %s;\n", c.constant(t, fx.Constant{}))
	}
	return c.SetBlock(0)
}

func (c *Codegen) LeaveBlockAndReturn(value fx.ID) fx.ID {
	if !c.IsInBlock() {
		return 0
	}
	// The implicit return at the end of a function with a result.
	if !c.returnType.IsVoid() && value == 0 {
		return c.SetBlock(0)
	}

	code := c.code()
	if value != 0 {
		fmt.Fprintf(code, "\treturn %s;\n", c.name(value))
	} else {
		code.WriteString("\treturn;\n")
	}
	return c.SetBlock(0)
}

func (c *Codegen) LeaveBlockAndSwitch(_, _ fx.ID) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	return c.SetBlock(0)
}

func (c *Codegen) LeaveBlockAndBranch(target fx.ID, loopFlow uint32) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	code := c.code()
	switch loopFlow {
	case fx.FlowBreak:
		code.WriteString("\tbreak;\n")
	case fx.FlowContinue:
		fmt.Fprintf(code, "%s%d\n\tcontinue;\n", continueMarker, target)
	}
	return c.SetBlock(0)
}

func (c *Codegen) LeaveBlockAndBranchConditional(_, _, _ fx.ID) fx.ID {
	if !c.IsInBlock() {
		return c.LastBlock
	}
	return c.SetBlock(0)
}

// indent shifts every line of a block one level to the right. Directives
// stay in the first column.
func indent(code string) string {
	if code == "" {
		return ""
	}
	var sb strings.Builder
	for _, line := range strings.SplitAfter(code, "\n") {
		if line != "" && line != "\n" && line[0] != '#' {
			sb.WriteByte('\t')
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// replaceContinue substitutes the continue marker lines of block with the
// given code, indented like the marker.
func replaceContinue(code string, block fx.ID, with string) string {
	marker := continueMarker + strconv.FormatUint(uint64(block), 10)
	if !strings.Contains(code, marker) {
		return code
	}
	var sb strings.Builder
	for _, line := range strings.SplitAfter(code, "\n") {
		trimmed := strings.TrimLeft(line, "\t")
		if strings.TrimSpace(trimmed) != marker {
			sb.WriteString(line)
			continue
		}
		depth := len(line) - len(trimmed)
		for _, w := range strings.SplitAfter(with, "\n") {
			if w == "" {
				continue
			}
			if w[0] == '\t' {
				w = strings.Repeat("\t", depth) + w
			}
			sb.WriteString(w)
		}
	}
	return sb.String()
}

// declarationToAssignment rewrites the last declaration of name in code
// into an assignment.
func declarationToAssignment(code, name string) (string, bool) {
	lines := strings.SplitAfter(code, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		trimmed := strings.TrimLeft(line, "\t")
		depth := len(line) - len(trimmed)

		_, rest, ok := strings.Cut(trimmed, " ")
		if !ok || !strings.HasPrefix(rest, name+" = ") {
			continue
		}
		lines[i] = line[:depth] + rest
		return strings.Join(lines, ""), true
	}
	return code, false
}

// attributes returns the control flow attributes for flags.
func attributes(flags uint32, on, off string) string {
	var sb strings.Builder
	if flags&fx.ControlFlatten != 0 {
		fmt.Fprintf(&sb, "\t[%s]\n", on)
	}
	if flags&fx.ControlDontFlatten != 0 {
		fmt.Fprintf(&sb, "\t[%s]\n", off)
	}
	return sb.String()
}

func (c *Codegen) EmitIf(loc lexer.Location, condValue, condBlock, trueBlock, falseBlock fx.ID, flags uint32) {
	trueCode := indent(c.take(trueBlock))
	falseCode := indent(c.take(falseBlock))

	code := c.code()
	code.WriteString(c.take(condBlock))
	c.writeLocation(code, loc)
	code.WriteString(attributes(flags, "flatten", "branch"))

	fmt.Fprintf(code, "\tif (%s)\n\t{\n%s\t}\n", c.name(condValue), trueCode)
	if falseCode != "" {
		fmt.Fprintf(code, "\telse\n\t{\n%s\t}\n", falseCode)
	}
}

func (c *Codegen) EmitPhi(loc lexer.Location, condValue, condBlock, trueValue, trueBlock, falseValue, falseBlock fx.ID, t fx.Type) fx.ID {
	var trueCode, falseCode string
	if trueBlock != condBlock {
		trueCode = indent(c.take(trueBlock))
	}
	if falseBlock != condBlock {
		falseCode = indent(c.take(falseBlock))
	}

	t.Qualifiers = 0
	id := c.MakeID()
	code := c.code()
	code.WriteString(c.take(condBlock))
	fmt.Fprintf(code, "\t%s %s%s;\n", c.typeName(t, typePlain), c.name(id), arraySuffix(t))
	c.declared[id] = true

	c.writeLocation(code, loc)
	fmt.Fprintf(code, "\tif (%s)\n\t{\n%s\t\t%s = %s;\n\t}\n", c.name(condValue), trueCode, c.name(id), c.name(trueValue))
	fmt.Fprintf(code, "\telse\n\t{\n%s\t\t%s = %s;\n\t}\n", falseCode, c.name(id), c.name(falseValue))
	return id
}

// EmitLoop writes a loop. The body gets its own scope so it cannot shadow
// names the continue block uses. A condBlock of 0 means a do-while loop
// whose condition is computed in the continue block.
func (c *Codegen) EmitLoop(loc lexer.Location, condValue, prevBlock, headerBlock, condBlock, loopBlock, continueBlock fx.ID, flags uint32) {
	loopCode := c.take(loopBlock)
	continueCode := c.take(continueBlock)
	c.take(headerBlock)

	code := c.code()
	code.WriteString(c.take(prevBlock))
	attrs := attributes(flags, "unroll", "loop")

	if condBlock == 0 {
		cond := c.name(condValue)
		if c.declared[condValue] {
			var ok bool
			if continueCode, ok = declarationToAssignment(continueCode, cond); ok {
				fmt.Fprintf(code, "\tbool %s;\n", cond)
			}
		}

		loopCode = replaceContinue(loopCode, continueBlock, continueCode)

		c.writeLocation(code, loc)
		code.WriteString(attrs)
		fmt.Fprintf(code, "\tdo\n\t{\n\t\t{\n%s\t\t}\n%s\t}\n\twhile (%s);\n", indent(indent(loopCode)), indent(continueCode), cond)
		return
	}

	condCode := c.take(condBlock)
	cond := "true"
	if condValue != 0 {
		cond = c.name(condValue)
	}

	if strings.Count(condCode, "\n") == 1 && c.declared[condValue] {
		// A single statement computing the condition moves into the
		// loop header.
		if _, expr, ok := strings.Cut(condCode, " "+cond+" = "); ok {
			cond = strings.TrimSuffix(expr, ";\n")
			condCode = ""
		}
	}

	loopCode = replaceContinue(loopCode, continueBlock, continueCode)

	c.writeLocation(code, loc)
	code.WriteString(attrs)
	if condCode == "" {
		fmt.Fprintf(code, "\twhile (%s)\n\t{\n\t\t{\n%s\t\t}\n%s\t}\n", cond, indent(indent(loopCode)), indent(continueCode))
		return
	}

	// The condition needs several statements, which run at the top of
	// every iteration.
	fmt.Fprintf(code, "\twhile (true)\n\t{\n%s\t\tif (!%s)\n\t\t\tbreak;\n\t\t{\n%s\t\t}\n%s\t}\n",
		indent(condCode), cond, indent(indent(loopCode)), indent(continueCode))
}

func (c *Codegen) EmitSwitch(loc lexer.Location, selector, selectorBlock, defaultLabel fx.ID, caseLiteralAndLabels []fx.ID, flags uint32) {
	code := c.code()
	code.WriteString(c.take(selectorBlock))
	c.writeLocation(code, loc)
	code.WriteString(attributes(flags, "flatten", "branch"))

	fmt.Fprintf(code, "\tswitch (%s)\n\t{\n", c.name(selector))

	labels := append([]fx.ID(nil), caseLiteralAndLabels...)
	for i := 0; i+1 < len(labels); i += 2 {
		block := labels[i+1]
		if block == 0 {
			continue
		}

		// Cases sharing a block are written as one group.
		fmt.Fprintf(code, "\tcase %d: ", int32(labels[i]))
		for k := i + 2; k+1 < len(labels); k += 2 {
			if labels[k+1] == block {
				fmt.Fprintf(code, "case %d: ", int32(labels[k]))
				labels[k+1] = 0
			}
		}
		if block == defaultLabel {
			code.WriteString("default: ")
			defaultLabel = 0
		}
		fmt.Fprintf(code, "{\n%s\t}\n", indent(c.take(block)))
	}

	if defaultLabel != 0 && defaultLabel != c.CurrentBlock {
		fmt.Fprintf(code, "\tdefault: {\n%s\t}\n", indent(c.take(defaultLabel)))
	}

	code.WriteString("\t}\n")
}
