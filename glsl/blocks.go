// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// continueMarker is written in place of the continue block of a loop, which
// is only known once the loop is emitted.
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
		// Discard may be the last statement of a function returning a value.
		fmt.Fprintf(code, "\treturn %s;\n", c.constant(c.returnType, fx.Constant{}))
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

// indent shifts every line of a block one level to the right.
func indent(code string) string {
	if code == "" {
		return ""
	}
	lines := strings.SplitAfter(code, "\n")
	var sb strings.Builder
	for _, line := range lines {
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
	lines := strings.SplitAfter(code, "\n")
	var sb strings.Builder
	for _, line := range lines {
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

// declarationToAssignment rewrites the declaration of name in code into an
// assignment. A declaration without initializer is removed.
func declarationToAssignment(code, name string) (string, bool) {
	lines := strings.SplitAfter(code, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		trimmed := strings.TrimLeft(line, "\t")
		depth := len(line) - len(trimmed)

		space := strings.IndexByte(trimmed, ' ')
		if space < 0 {
			continue
		}
		rest := trimmed[space+1:]
		switch {
		case strings.HasPrefix(rest, name+" = "):
			lines[i] = line[:depth] + rest
		case rest == name+";\n":
			lines[i] = ""
		default:
			continue
		}
		return strings.Join(lines, ""), true
	}
	return code, false
}

func (c *Codegen) writeAttributes(code *strings.Builder, flags uint32, on, off string) {
	if flags == 0 {
		return
	}
	c.usesControlFlow = true

	var names []string
	if flags&fx.ControlFlatten != 0 {
		names = append(names, on)
	}
	if flags&fx.ControlDontFlatten != 0 {
		names = append(names, off)
	}
	fmt.Fprintf(code, "#if GL_EXT_control_flow_attributes\n\t[[%s]]\n#endif\n", strings.Join(names, ", "))
}

func (c *Codegen) EmitIf(loc lexer.Location, condValue, condBlock, trueBlock, falseBlock fx.ID, flags uint32) {
	trueCode := indent(c.take(trueBlock))
	falseCode := indent(c.take(falseBlock))

	code := c.code()
	code.WriteString(c.take(condBlock))
	c.writeLocation(code, loc)
	c.writeAttributes(code, flags, "flatten", "dont_flatten")

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

// EmitLoop writes a loop. Statements in the body are wrapped in their own
// scope so they cannot shadow what the continue block refers to. A
// condBlock of 0 means a do-while loop whose condition is computed in the
// continue block.
func (c *Codegen) EmitLoop(loc lexer.Location, condValue, prevBlock, headerBlock, condBlock, loopBlock, continueBlock fx.ID, flags uint32) {
	loopCode := c.take(loopBlock)
	continueCode := c.take(continueBlock)
	c.take(headerBlock)

	code := c.code()
	code.WriteString(c.take(prevBlock))

	var attributes strings.Builder
	c.writeAttributes(&attributes, flags, "unroll", "dont_unroll")

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
		code.WriteString(attributes.String())
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

	if condCode == "" {
		loopCode = replaceContinue(loopCode, continueBlock, continueCode)

		c.writeLocation(code, loc)
		code.WriteString(attributes.String())
		fmt.Fprintf(code, "\twhile (%s)\n\t{\n\t\t{\n%s\t\t}\n%s\t}\n", cond, indent(indent(loopCode)), indent(continueCode))
		return
	}

	// The condition needs several statements, which run at the top of
	// every iteration.
	loopCode = replaceContinue(loopCode, continueBlock, continueCode)

	c.writeLocation(code, loc)
	code.WriteString(attributes.String())
	fmt.Fprintf(code, "\twhile (true)\n\t{\n%s\t\tif (!%s)\n\t\t\tbreak;\n\t\t{\n%s\t\t}\n%s\t}\n",
		indent(condCode), cond, indent(indent(loopCode)), indent(continueCode))
}

func (c *Codegen) EmitSwitch(loc lexer.Location, selector, selectorBlock, defaultLabel fx.ID, caseLiteralAndLabels []fx.ID, flags uint32) {
	code := c.code()
	code.WriteString(c.take(selectorBlock))
	c.writeLocation(code, loc)
	c.writeAttributes(code, flags, "flatten", "dont_flatten")

	fmt.Fprintf(code, "\tswitch (%s)\n\t{\n", c.name(selector))

	labels := append([]fx.ID(nil), caseLiteralAndLabels...)
	for i := 0; i+1 < len(labels); i += 2 {
		block := labels[i+1]
		if block == 0 {
			continue
		}

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
