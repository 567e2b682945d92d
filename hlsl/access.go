// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
)

// access renders the access chain of exp as an HLSL expression.
func (c *Codegen) access(exp *fx.Expression) string {
	expr := c.name(exp.Base)

	for _, op := range exp.Chain {
		switch op.Op {
		case fx.OpCast:
			to := op.To
			to.Qualifiers = 0
			expr = "((" + c.typeName(to, typePlain) + ")" + expr + ")"

		case fx.OpMember:
			s := c.FindStruct(op.From.Definition)
			expr += "." + escapeName(s.Members[op.Index].Name)

		case fx.OpDynamicIndex:
			expr += "[" + c.name(op.Index) + "]"

		case fx.OpConstantIndex:
			if op.From.IsVector() && !op.From.IsArray() {
				expr += "." + string("xyzw"[op.Index%4])
			} else {
				expr += "[" + strconv.FormatUint(uint64(op.Index), 10) + "]"
			}

		case fx.OpSwizzle:
			switch {
			case op.From.IsMatrix():
				var sb strings.Builder
				for i := 0; i < 4 && op.Swizzle[i] >= 0; i++ {
					fmt.Fprintf(&sb, "_m%d%d", op.Swizzle[i]/4, op.Swizzle[i]%4)
				}
				expr += "." + sb.String()
			case op.From.Rows == 1 && op.From.Cols == 1 && !op.From.IsArray():
				// Literals cannot be swizzled.
				to := op.To
				to.Qualifiers = 0
				expr = "((" + c.typeName(to, typePlain) + ")" + expr + ")"
			default:
				var sb strings.Builder
				for i := 0; i < 4 && op.Swizzle[i] >= 0; i++ {
					sb.WriteByte("xyzw"[op.Swizzle[i]])
				}
				expr += "." + sb.String()
			}
		}
	}
	return expr
}

// EmitLoad returns an id for the value of exp. Unless forceNew is set the
// id names the access expression itself, so it is evaluated where it is
// used.
func (c *Codegen) EmitLoad(exp *fx.Expression, forceNew bool) fx.ID {
	if exp.IsConstant {
		return c.EmitConstant(exp.Type, exp.Constant)
	}
	if len(exp.Chain) == 0 && !forceNew {
		return exp.Base
	}

	expr := c.access(exp)
	id := c.MakeID()
	if forceNew {
		t := exp.Type
		t.Qualifiers = 0
		code := c.code()
		c.writeLocation(code, exp.Location)
		fmt.Fprintf(code, "\t%s %s%s = %s;\n", c.typeName(t, typePlain), c.name(id), arraySuffix(t), expr)
		c.declared[id] = true
	} else {
		c.names.define(id, expr, namingExpression)
	}
	return id
}

func (c *Codegen) EmitStore(exp *fx.Expression, value fx.ID) {
	code := c.code()
	c.writeLocation(code, exp.Location)
	fmt.Fprintf(code, "\t%s = %s;\n", c.access(exp), c.name(value))
}
