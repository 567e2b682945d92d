// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/reshadefx/fx"
)

func isRowMatrix(t fx.Type) bool { return t.Rows == 1 && t.Cols > 1 }

// accessPath renders an access chain as GLSL. Matrix element selections are
// collected in lanes and only materialized when the next operation needs a
// value, so stores can assign the elements one by one.
type accessPath struct {
	c     *Codegen
	expr  string
	lanes []int // pending matrix elements, row*4+col
	from  fx.Type
	to    fx.Type
}

func (a *accessPath) element(lane int) string {
	if isRowMatrix(a.from) {
		return a.expr + "." + string("xyzw"[lane%4])
	}
	return fmt.Sprintf("%s[%d][%d]", a.expr, lane/4, lane%4)
}

// flush turns pending matrix elements into a value.
func (a *accessPath) flush() {
	if a.lanes == nil {
		return
	}
	if len(a.lanes) == 1 {
		a.expr = a.element(a.lanes[0])
	} else {
		elements := make([]string, len(a.lanes))
		for i, lane := range a.lanes {
			elements[i] = a.element(lane)
		}
		a.expr = vectorName(a.to.Base, uint32(len(a.lanes))) + "(" + strings.Join(elements, ", ") + ")"
	}
	a.lanes = nil
}

func (a *accessPath) apply(op fx.Operation) {
	switch op.Op {
	case fx.OpSwizzle, fx.OpConstantIndex:
		if a.lanes != nil {
			// Select from the pending matrix elements.
			if op.Op == fx.OpConstantIndex {
				a.lanes = []int{a.lanes[op.Index]}
			} else {
				var lanes []int
				for i := 0; i < 4 && op.Swizzle[i] >= 0; i++ {
					lanes = append(lanes, a.lanes[op.Swizzle[i]])
				}
				a.lanes = lanes
			}
			a.to = op.To
			return
		}
	default:
		a.flush()
	}

	switch op.Op {
	case fx.OpCast:
		a.expr = a.c.constructorName(op.To) + "(" + a.expr + ")"

	case fx.OpMember:
		s := a.c.FindStruct(op.From.Definition)
		a.expr += "." + escapeName(s.Members[op.Index].Name)

	case fx.OpDynamicIndex:
		if !isRowMatrix(op.From) {
			a.expr += "[int(" + a.c.name(op.Index) + ")]"
		}

	case fx.OpConstantIndex:
		switch {
		case isRowMatrix(op.From):
		case op.From.IsVector() && !op.From.IsArray():
			a.expr += "." + string("xyzw"[op.Index%4])
		default:
			a.expr += "[" + strconv.FormatUint(uint64(op.Index), 10) + "]"
		}

	case fx.OpSwizzle:
		switch {
		case op.From.IsMatrix():
			a.from = op.From
			for i := 0; i < 4 && op.Swizzle[i] >= 0; i++ {
				a.lanes = append(a.lanes, int(op.Swizzle[i]))
			}
		case op.From.Rows == 1 && op.From.Cols == 1 && !op.From.IsArray():
			// Scalars have no swizzles.
			a.expr = a.c.constructorName(op.To) + "(" + a.expr + ")"
		default:
			var sb strings.Builder
			for i := 0; i < 4 && op.Swizzle[i] >= 0; i++ {
				sb.WriteByte("xyzw"[op.Swizzle[i]])
			}
			a.expr += "." + sb.String()
		}
	}
	a.to = op.To
}

func (c *Codegen) access(exp *fx.Expression) *accessPath {
	a := &accessPath{c: c, expr: c.name(exp.Base), to: exp.Type}
	for _, op := range exp.Chain {
		a.apply(op)
	}
	return a
}

// integerMatrixAccess reports whether the chain starts at a non floating
// point matrix, which GLSL stores as a float matrix.
func integerMatrixAccess(exp *fx.Expression) bool {
	return len(exp.Chain) > 0 && exp.Chain[0].From.IsMatrix() && !exp.Chain[0].From.IsFloatingPoint()
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

	a := c.access(exp)
	a.flush()
	expr := a.expr
	if integerMatrixAccess(exp) && !exp.Type.IsFloatingPoint() {
		expr = c.typeName(exp.Type, typePlain) + "(" + expr + ")"
	}

	id := c.MakeID()
	if forceNew {
		code := c.code()
		c.writeLocation(code, exp.Location)
		fmt.Fprintf(code, "\t%s %s%s = %s;\n", c.typeName(exp.Type, typePlain), c.name(id), arraySuffix(exp.Type), expr)
		c.declared[id] = true
	} else {
		c.defineName(id, expr, namingExpression)
	}
	return id
}

func (c *Codegen) EmitStore(exp *fx.Expression, value fx.ID) {
	code := c.code()
	c.writeLocation(code, exp.Location)

	a := c.access(exp)
	rhs := c.name(value)
	if integerMatrixAccess(exp) && !exp.Type.IsFloatingPoint() {
		t := exp.Type
		t.Base = fx.TypeFloat
		rhs = numericTypeName(t) + "(" + rhs + ")"
	}

	if a.lanes == nil {
		fmt.Fprintf(code, "\t%s = %s;\n", a.expr, rhs)
		return
	}
	if len(a.lanes) == 1 {
		fmt.Fprintf(code, "\t%s = %s;\n", a.element(a.lanes[0]), rhs)
		return
	}
	for i, lane := range a.lanes {
		fmt.Fprintf(code, "\t%s = %s.%c;\n", a.element(lane), rhs, "xyzw"[i])
	}
}
