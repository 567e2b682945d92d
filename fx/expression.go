package fx

import (
	"math"

	"github.com/gogpu/reshadefx/lexer"
)

// OpKind identifies one step of an access chain.
type OpKind uint8

const (
	OpCast OpKind = iota
	OpMember
	OpDynamicIndex
	OpConstantIndex
	OpSwizzle
)

// Operation is one step of an access chain. Index holds the member index,
// the constant index or the SSA id of a dynamic index. Swizzle lanes of -1
// are unused; matrix swizzles encode row*4+column.
type Operation struct {
	Op      OpKind
	From    Type
	To      Type
	Index   uint32
	Swizzle [4]int8
}

// Expression is a lazily resolved value: a base id plus the chain of
// operations applied to it, or a folded Constant when IsConstant is set.
type Expression struct {
	Base       ID
	Type       Type
	Constant   Constant
	IsLvalue   bool
	IsConstant bool
	Location   lexer.Location
	Chain      []Operation
}

// ResetToLvalue points the expression at a variable.
func (e *Expression) ResetToLvalue(loc lexer.Location, base ID, t Type) {
	e.Base = base
	e.Type = t
	e.Location = loc
	e.IsLvalue = true
	e.IsConstant = false
	e.Chain = nil

	// Uniforms are externally owned and cannot be assigned
	if t.Has(QualifierUniform) {
		e.Type.Qualifiers |= QualifierConst
	}
}

// ResetToRvalue points the expression at a computed value.
func (e *Expression) ResetToRvalue(loc lexer.Location, base ID, t Type) {
	e.Base = base
	e.Type = t
	e.Type.Qualifiers |= QualifierConst
	e.Location = loc
	e.IsLvalue = false
	e.IsConstant = false
	e.Chain = nil
}

// ResetToConstant turns the expression into a folded constant of type t.
func (e *Expression) ResetToConstant(loc lexer.Location, data Constant, t Type) {
	e.Base = 0
	e.Type = t
	e.Type.Qualifiers |= QualifierConst
	e.Constant = data.Clone()
	e.Location = loc
	e.IsLvalue = false
	e.IsConstant = true
	e.Chain = nil
}

func (e *Expression) ResetToBool(loc lexer.Location, v bool) {
	var c Constant
	c.Lanes[0] = boolLane(v)
	e.ResetToConstant(loc, c, Scalar(TypeBool))
}

func (e *Expression) ResetToInt(loc lexer.Location, v int32) {
	var c Constant
	c.SetInt(0, v)
	e.ResetToConstant(loc, c, Scalar(TypeInt))
}

func (e *Expression) ResetToUint(loc lexer.Location, v uint32) {
	var c Constant
	c.Lanes[0] = v
	e.ResetToConstant(loc, c, Scalar(TypeUint))
}

func (e *Expression) ResetToFloat(loc lexer.Location, v float32) {
	var c Constant
	c.SetFloat(0, v)
	e.ResetToConstant(loc, c, Scalar(TypeFloat))
}

func (e *Expression) ResetToString(loc lexer.Location, v string) {
	e.ResetToConstant(loc, Constant{String: v}, Type{Base: TypeString})
}

// AddCast converts the expression to t. Component count changes between
// scalars and vectors become swizzles; constants are converted in place.
func (e *Expression) AddCast(t Type) {
	if e.Type.Cols == 1 && t.Cols == 1 && e.Type.Rows != t.Rows && e.Type.IsNumeric() && !e.Type.IsArray() {
		swizzle := [4]int8{0, 1, 2, 3}
		for i := t.Rows; i < 4; i++ {
			swizzle[i] = -1
		}
		for i := e.Type.Rows; i < t.Rows; i++ {
			swizzle[i] = swizzle[e.Type.Rows-1]
		}
		e.AddSwizzle(swizzle, t.Rows)
	}

	if e.Type.Equal(t) {
		return
	}

	if e.IsConstant {
		for i := range e.Constant.Array {
			convertConstant(&e.Constant.Array[i], e.Type.Element(), t.Element())
		}
		convertConstant(&e.Constant, e.Type, t)
	} else {
		e.Chain = append(e.Chain, Operation{Op: OpCast, From: e.Type, To: t})
	}

	e.Type = t
	e.Type.Qualifiers |= QualifierConst
}

// AddMember selects field index of a struct value.
func (e *Expression) AddMember(index uint32, t Type) {
	e.Chain = append(e.Chain, Operation{Op: OpMember, From: e.Type, To: t, Index: index})
	e.Type = t
	e.IsConstant = false
}

func indexedType(t Type) Type {
	switch {
	case t.IsArray():
		t.ArrayLength = 0
	case t.IsMatrix():
		t.Rows, t.Cols = t.Cols, 1
	case t.IsVector():
		t.Rows = 1
	}
	return t
}

// AddConstantIndex selects an array element, matrix row or vector lane.
func (e *Expression) AddConstantIndex(index uint32) {
	prev := e.Type
	e.Type = indexedType(prev)

	if !e.IsConstant {
		e.Chain = append(e.Chain, Operation{Op: OpConstantIndex, From: prev, To: e.Type, Index: index})
		return
	}

	switch {
	case prev.IsArray():
		if int(index) < len(e.Constant.Array) {
			e.Constant = e.Constant.Array[index].Clone()
		} else {
			e.Constant = Constant{}
		}
	case prev.IsMatrix():
		var row Constant
		for i := uint32(0); i < prev.Cols; i++ {
			row.Lanes[i] = e.Constant.Lanes[index*prev.Cols+i]
		}
		e.Constant = row
	default:
		var lane Constant
		lane.Lanes[0] = e.Constant.Lanes[index&15]
		e.Constant = lane
	}
}

// AddDynamicIndex indexes with a runtime value. The expression must not be
// constant; callers materialize constants into a variable first.
func (e *Expression) AddDynamicIndex(index ID) {
	prev := e.Type
	e.Type = indexedType(prev)
	e.Chain = append(e.Chain, Operation{Op: OpDynamicIndex, From: prev, To: e.Type, Index: index})
	e.IsConstant = false
}

// AddSwizzle reorders the first length lanes of a vector or matrix.
func (e *Expression) AddSwizzle(swizzle [4]int8, length uint32) {
	prev := e.Type
	e.Type.Rows = length
	e.Type.Cols = 1

	switch {
	case e.IsConstant:
		data := e.Constant.Lanes
		var c Constant
		for i := uint32(0); i < length; i++ {
			lane := int(swizzle[i])
			if prev.IsMatrix() {
				lane = (lane/4)*int(prev.Cols) + lane%4
			}
			c.Lanes[i] = data[lane]
		}
		e.Constant = c
	case length == 1 && prev.IsVector():
		e.Chain = append(e.Chain, Operation{Op: OpConstantIndex, From: prev, To: e.Type, Index: uint32(swizzle[0])})
	default:
		e.Chain = append(e.Chain, Operation{Op: OpSwizzle, From: prev, To: e.Type, Swizzle: swizzle})
	}
}

// FoldUnary applies op to a constant expression. It returns false when the
// expression is not constant or the operator cannot be folded.
func (e *Expression) FoldUnary(op lexer.TokenKind) bool {
	if !e.IsConstant {
		return false
	}

	c := &e.Constant
	n := int(e.Type.Components())
	switch op {
	case lexer.TokenExclaim:
		for i := 0; i < n; i++ {
			c.Lanes[i] = boolLane(c.Lanes[i] == 0)
		}
	case lexer.TokenMinus:
		for i := 0; i < n; i++ {
			if e.Type.IsFloatingPoint() {
				c.SetFloat(i, -c.Float(i))
			} else {
				c.SetInt(i, -c.Int(i))
			}
		}
	case lexer.TokenTilde:
		for i := 0; i < n; i++ {
			c.Lanes[i] = ^c.Lanes[i]
		}
	default:
		return false
	}
	return true
}

// FoldBinary combines a constant expression with the constant rhs of the
// same type. Comparisons turn the expression into a boolean. Integer
// division or modulo by zero is left for run time and reports false.
func (e *Expression) FoldBinary(op lexer.TokenKind, rhs *Constant) bool {
	if !e.IsConstant {
		return false
	}

	c := &e.Constant
	n := int(e.Type.Components())
	isFloat := e.Type.IsFloatingPoint()
	isSigned := e.Type.IsSigned()

	if (op == lexer.TokenSlash || op == lexer.TokenPercent) && !isFloat {
		for i := 0; i < n; i++ {
			if rhs.Lanes[i] == 0 {
				return false
			}
		}
	}

	compare := func(f func(a, b float32) bool, s func(a, b int32) bool, u func(a, b uint32) bool) {
		for i := 0; i < n; i++ {
			switch {
			case isFloat:
				c.Lanes[i] = boolLane(f(c.Float(i), rhs.Float(i)))
			case isSigned:
				c.Lanes[i] = boolLane(s(c.Int(i), rhs.Int(i)))
			default:
				c.Lanes[i] = boolLane(u(c.Lanes[i], rhs.Lanes[i]))
			}
		}
		e.Type.Base = TypeBool
	}

	switch op {
	case lexer.TokenPercent:
		for i := 0; i < n; i++ {
			switch {
			case isFloat:
				c.SetFloat(i, float32(math.Mod(float64(c.Float(i)), float64(rhs.Float(i)))))
			case isSigned:
				c.SetInt(i, c.Int(i)%rhs.Int(i))
			default:
				c.Lanes[i] %= rhs.Lanes[i]
			}
		}
	case lexer.TokenStar:
		for i := 0; i < n; i++ {
			if isFloat {
				c.SetFloat(i, c.Float(i)*rhs.Float(i))
			} else {
				c.Lanes[i] *= rhs.Lanes[i]
			}
		}
	case lexer.TokenPlus:
		for i := 0; i < n; i++ {
			if isFloat {
				c.SetFloat(i, c.Float(i)+rhs.Float(i))
			} else {
				c.Lanes[i] += rhs.Lanes[i]
			}
		}
	case lexer.TokenMinus:
		for i := 0; i < n; i++ {
			if isFloat {
				c.SetFloat(i, c.Float(i)-rhs.Float(i))
			} else {
				c.Lanes[i] -= rhs.Lanes[i]
			}
		}
	case lexer.TokenSlash:
		for i := 0; i < n; i++ {
			switch {
			case isFloat:
				c.SetFloat(i, c.Float(i)/rhs.Float(i))
			case isSigned:
				c.SetInt(i, c.Int(i)/rhs.Int(i))
			default:
				c.Lanes[i] /= rhs.Lanes[i]
			}
		}
	case lexer.TokenAmpersand, lexer.TokenAmpersandAmpersand:
		for i := 0; i < n; i++ {
			c.Lanes[i] &= rhs.Lanes[i]
		}
	case lexer.TokenPipe, lexer.TokenPipePipe:
		for i := 0; i < n; i++ {
			c.Lanes[i] |= rhs.Lanes[i]
		}
	case lexer.TokenCaret:
		for i := 0; i < n; i++ {
			c.Lanes[i] ^= rhs.Lanes[i]
		}
	case lexer.TokenLessLess:
		for i := 0; i < n; i++ {
			c.Lanes[i] <<= rhs.Lanes[i] & 31
		}
	case lexer.TokenGreaterGreater:
		for i := 0; i < n; i++ {
			if isSigned {
				c.SetInt(i, c.Int(i)>>(rhs.Lanes[i]&31))
			} else {
				c.Lanes[i] >>= rhs.Lanes[i] & 31
			}
		}
	case lexer.TokenLess:
		compare(func(a, b float32) bool { return a < b }, func(a, b int32) bool { return a < b }, func(a, b uint32) bool { return a < b })
	case lexer.TokenLessEqual:
		compare(func(a, b float32) bool { return a <= b }, func(a, b int32) bool { return a <= b }, func(a, b uint32) bool { return a <= b })
	case lexer.TokenGreater:
		compare(func(a, b float32) bool { return a > b }, func(a, b int32) bool { return a > b }, func(a, b uint32) bool { return a > b })
	case lexer.TokenGreaterEqual:
		compare(func(a, b float32) bool { return a >= b }, func(a, b int32) bool { return a >= b }, func(a, b uint32) bool { return a >= b })
	case lexer.TokenEqualEqual:
		compare(func(a, b float32) bool { return a == b }, func(a, b int32) bool { return a == b }, func(a, b uint32) bool { return a == b })
	case lexer.TokenExclaimEqual:
		compare(func(a, b float32) bool { return a != b }, func(a, b int32) bool { return a != b }, func(a, b uint32) bool { return a != b })
	default:
		return false
	}
	return true
}
