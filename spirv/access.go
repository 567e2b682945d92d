package spirv

import (
	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

func isIndexOp(op fx.OpKind) bool {
	return op == fx.OpMember || op == fx.OpDynamicIndex || op == fx.OpConstantIndex
}

func isRowMatrix(t fx.Type) bool { return t.Rows == 1 && t.Cols > 1 }

// accessChain resolves the leading member and index operations of an lvalue
// into an OpAccessChain. It returns the pointer, the pointee type, the
// storage class and the number of chain operations it consumed.
func (c *Codegen) accessChain(exp *fx.Expression) (ptr fx.ID, t fx.Type, storage StorageClass, n int, uniformBool bool) {
	ptr = exp.Base
	t = exp.Type
	if len(exp.Chain) > 0 {
		t = exp.Chain[0].From
	}
	storage = c.storageOf(exp.Base)

	var indices []fx.ID
	if member, ok := c.uniformMembers[exp.Base]; ok {
		storage = StorageClassUniform
		uniformBool = t.IsBoolean()
		ptr = c.uboVariable
		indices = append(indices, c.constantUint(member))
	}

	if len(exp.Chain) > 0 && isRowMatrix(exp.Chain[0].From) && exp.Chain[0].Op != fx.OpMember && isIndexOp(exp.Chain[0].Op) {
		// A 1xN matrix is stored as its only row.
		t = exp.Chain[0].To
		n = 1
	}
	for ; n < len(exp.Chain) && isIndexOp(exp.Chain[n].Op); n++ {
		op := exp.Chain[n]
		if op.Op == fx.OpDynamicIndex {
			indices = append(indices, op.Index)
		} else {
			indices = append(indices, c.constantUint(op.Index))
		}
		t = op.To
	}
	if uniformBool {
		t.Base = fx.TypeUint
	}

	if len(indices) > 0 {
		var stride uint32
		if t.IsArray() && storage == StorageClassUniform {
			stride = 16
		}
		ptrType := c.typeID(t, true, storage, stride)
		ptr = c.emit(OpAccessChain, ptrType, append([]fx.ID{ptr}, indices...)...)
	}
	return ptr, t, storage, n, uniformBool
}

func (c *Codegen) EmitLoad(exp *fx.Expression, _ bool) fx.ID {
	if exp.IsConstant {
		return c.EmitConstant(exp.Type, exp.Constant)
	}

	result := exp.Base
	i := 0
	if exp.IsLvalue || len(exp.Chain) > 0 {
		c.addBlockLocation(exp.Location)
	}

	if exp.IsLvalue && !c.specConstants[exp.Base] {
		ptr, t, storage, n, uniformBool := c.accessChain(exp)
		i = n

		valueType := c.convertType(t)
		if t.IsArray() && storage == StorageClassUniform {
			valueType = c.typeID(t, false, storage, 16)
		}
		result = c.emit(OpLoad, valueType, ptr)

		if uniformBool {
			t.Base = fx.TypeUint
			zero := c.constantOf(t, 0)
			t.Base = fx.TypeBool
			result = c.emit(OpINotEqual, c.convertType(t), result, zero)
		}
	}

	for ; i < len(exp.Chain); i++ {
		result = c.applyOperation(exp.Location, exp.Chain[i], result)
	}
	return result
}

// applyOperation applies one chain operation to an already loaded value.
func (c *Codegen) applyOperation(loc lexer.Location, op fx.Operation, value fx.ID) fx.ID {
	switch op.Op {
	case fx.OpCast:
		return c.emitCast(op.From, op.To, value)

	case fx.OpMember:
		return c.emit(OpCompositeExtract, c.convertType(op.To), value, op.Index)

	case fx.OpDynamicIndex:
		if isRowMatrix(op.From) {
			return value
		}
		if op.From.IsVector() {
			return c.emit(OpVectorExtractDynamic, c.convertType(op.To), value, op.Index)
		}
		// Arrays and matrices are only indexable through a pointer.
		temp := c.MakeID()
		c.defineVariable(temp, loc, op.From, "", StorageClassFunction, 0)
		c.add(Instruction{Op: OpStore, Operands: []uint32{temp, value}})
		ptr := c.emit(OpAccessChain, c.pointerType(op.To, StorageClassFunction), temp, op.Index)
		return c.emit(OpLoad, c.convertType(op.To), ptr)

	case fx.OpConstantIndex:
		if isRowMatrix(op.From) {
			return value
		}
		return c.emit(OpCompositeExtract, c.convertType(op.To), value, op.Index)

	case fx.OpSwizzle:
		return c.emitSwizzle(op, value)
	}
	return value
}

func (c *Codegen) emitSwizzle(op fx.Operation, value fx.ID) fx.ID {
	resultType := c.convertType(op.To)

	switch {
	case op.From.IsMatrix():
		scalar := c.convertType(fx.Scalar(op.From.Base))
		extract := func(lane int8) fx.ID {
			row, col := uint32(lane)/4, uint32(lane)%4
			if op.From.Rows == 1 {
				return c.emit(OpCompositeExtract, scalar, value, col)
			}
			return c.emit(OpCompositeExtract, scalar, value, row, col)
		}
		if op.To.IsScalar() {
			return extract(op.Swizzle[0])
		}
		var components []fx.ID
		for _, lane := range op.Swizzle[:op.To.Rows] {
			components = append(components, extract(lane))
		}
		return c.emit(OpCompositeConstruct, resultType, components...)

	case op.From.IsVector():
		operands := []fx.ID{value, value}
		for _, lane := range op.Swizzle[:op.To.Rows] {
			operands = append(operands, uint32(lane))
		}
		return c.emit(OpVectorShuffle, resultType, operands...)

	default:
		components := make([]fx.ID, op.To.Rows)
		for i := range components {
			components[i] = value
		}
		return c.emit(OpCompositeConstruct, resultType, components...)
	}
}

func (c *Codegen) emitCast(from, to fx.Type, value fx.ID) fx.ID {
	if from.Base == to.Base {
		if from.IsMatrix() && to.IsMatrix() && (from.Rows != to.Rows || from.Cols != to.Cols) {
			return c.truncateMatrix(from, to, value)
		}
		return value
	}

	resultType := c.convertType(to)
	if from.IsBoolean() {
		return c.emit(OpSelect, resultType, value, c.constantOf(to, 1), c.constantOf(to, 0))
	}

	switch to.Base {
	case fx.TypeBool:
		if from.IsFloatingPoint() {
			return c.emit(OpFOrdNotEqual, resultType, value, c.constantOf(from, 0))
		}
		return c.emit(OpINotEqual, resultType, value, c.constantOf(from, 0))
	case fx.TypeInt:
		if from.IsFloatingPoint() {
			return c.emit(OpConvertFToS, resultType, value)
		}
		return c.emit(OpBitcast, resultType, value)
	case fx.TypeUint:
		if from.IsFloatingPoint() {
			return c.emit(OpConvertFToU, resultType, value)
		}
		return c.emit(OpBitcast, resultType, value)
	case fx.TypeFloat:
		if from.Base == fx.TypeInt {
			return c.emit(OpConvertSToF, resultType, value)
		}
		return c.emit(OpConvertUToF, resultType, value)
	}
	return value
}

func (c *Codegen) truncateMatrix(from, to fx.Type, value fx.ID) fx.ID {
	scalar := c.convertType(fx.Scalar(to.Base))
	row := c.convertType(fx.Vector(to.Base, to.Cols))

	rows := make([]fx.ID, to.Rows)
	for r := range rows {
		cols := make([]fx.ID, to.Cols)
		for k := range cols {
			if from.Rows == 1 {
				cols[k] = c.emit(OpCompositeExtract, scalar, value, uint32(k))
			} else {
				cols[k] = c.emit(OpCompositeExtract, scalar, value, uint32(r), uint32(k))
			}
		}
		rows[r] = c.emit(OpCompositeConstruct, row, cols...)
	}
	if to.Rows == 1 {
		return rows[0]
	}
	return c.emit(OpCompositeConstruct, c.convertType(to), rows...)
}

func (c *Codegen) EmitStore(exp *fx.Expression, value fx.ID) {
	c.addBlockLocation(exp.Location)

	ptr, t, _, i, _ := c.accessChain(exp)

	for ; i < len(exp.Chain); i++ {
		if op := exp.Chain[i]; op.Op == fx.OpSwizzle {
			value = c.storeSwizzle(ptr, t, op, value)
			break
		}
	}

	c.add(Instruction{Op: OpStore, Operands: []uint32{ptr, value}})
}

// storeSwizzle merges value into the lanes op selects of the value at ptr.
func (c *Codegen) storeSwizzle(ptr fx.ID, t fx.Type, op fx.Operation, value fx.ID) fx.ID {
	typ := c.convertType(t)
	base := c.emit(OpLoad, typ, ptr)

	if t.IsVector() {
		// Lanes not written keep the loaded value.
		shuffle := []uint32{0, 1, 2, 3}[:t.Rows]
		for k := uint32(0); k < op.To.Rows; k++ {
			shuffle[op.Swizzle[k]] = t.Rows + k
		}
		return c.emit(OpVectorShuffle, typ, append([]fx.ID{base, value}, shuffle...)...)
	}

	scalar := c.convertType(fx.Scalar(t.Base))
	result := base
	for k := uint32(0); k < op.To.Components(); k++ {
		component := value
		if !op.To.IsScalar() {
			component = c.emit(OpCompositeExtract, scalar, value, k)
		}
		row, col := uint32(op.Swizzle[k])/4, uint32(op.Swizzle[k])%4
		if t.Rows == 1 {
			result = c.emit(OpCompositeInsert, typ, component, result, col)
		} else {
			result = c.emit(OpCompositeInsert, typ, component, result, row, col)
		}
	}
	return result
}

func (c *Codegen) EmitUnaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, value fx.ID) fx.ID {
	c.addBlockLocation(loc)

	var spv OpCode
	switch op {
	case lexer.TokenMinus:
		spv = OpSNegate
		if t.IsFloatingPoint() {
			spv = OpFNegate
		}
	case lexer.TokenTilde:
		spv = OpNot
	case lexer.TokenExclaim:
		spv = OpLogicalNot
	default:
		panic("spirv: invalid unary operator " + op.String())
	}
	return c.emit(spv, c.convertType(t), value)
}

func binaryOpCode(op lexer.TokenKind, t fx.Type) OpCode {
	float, signed, boolean := t.IsFloatingPoint(), t.IsSigned(), t.IsBoolean()
	pick := func(f, s, u OpCode) OpCode {
		switch {
		case float:
			return f
		case signed:
			return s
		default:
			return u
		}
	}

	switch op {
	case lexer.TokenPlus:
		return pick(OpFAdd, OpIAdd, OpIAdd)
	case lexer.TokenMinus:
		return pick(OpFSub, OpISub, OpISub)
	case lexer.TokenStar:
		return pick(OpFMul, OpIMul, OpIMul)
	case lexer.TokenSlash:
		return pick(OpFDiv, OpSDiv, OpUDiv)
	case lexer.TokenPercent:
		return pick(OpFRem, OpSRem, OpUMod)
	case lexer.TokenCaret:
		return OpBitwiseXor
	case lexer.TokenPipe:
		return OpBitwiseOr
	case lexer.TokenAmpersand:
		return OpBitwiseAnd
	case lexer.TokenLessLess:
		return OpShiftLeftLogical
	case lexer.TokenGreaterGreater:
		return pick(OpShiftRightArithmetic, OpShiftRightArithmetic, OpShiftRightLogical)
	case lexer.TokenPipePipe:
		return OpLogicalOr
	case lexer.TokenAmpersandAmpersand:
		return OpLogicalAnd
	case lexer.TokenLess:
		return pick(OpFOrdLessThan, OpSLessThan, OpULessThan)
	case lexer.TokenLessEqual:
		return pick(OpFOrdLessThanEqual, OpSLessThanEqual, OpULessThanEqual)
	case lexer.TokenGreater:
		return pick(OpFOrdGreaterThan, OpSGreaterThan, OpUGreaterThan)
	case lexer.TokenGreaterEqual:
		return pick(OpFOrdGreaterThanEqual, OpSGreaterThanEqual, OpUGreaterThanEqual)
	case lexer.TokenEqualEqual:
		if boolean {
			return OpLogicalEqual
		}
		return pick(OpFOrdEqual, OpIEqual, OpIEqual)
	case lexer.TokenExclaimEqual:
		if boolean {
			return OpLogicalNotEqual
		}
		return pick(OpFOrdNotEqual, OpINotEqual, OpINotEqual)
	}
	panic("spirv: invalid binary operator " + op.String())
}

func (c *Codegen) EmitBinaryOp(loc lexer.Location, op lexer.TokenKind, resultType, t fx.Type, lhs, rhs fx.ID) fx.ID {
	c.addBlockLocation(loc)

	result := c.emit(binaryOpCode(op, t), c.convertType(resultType), lhs, rhs)
	if resultType.Has(fx.QualifierPrecise) {
		c.decorate(result, DecorationNoContraction)
	}
	return result
}

func (c *Codegen) EmitTernaryOp(loc lexer.Location, op lexer.TokenKind, t fx.Type, cond, trueValue, falseValue fx.ID) fx.ID {
	if op != lexer.TokenQuestion {
		panic("spirv: invalid ternary operator " + op.String())
	}
	c.addBlockLocation(loc)

	return c.emit(OpSelect, c.convertType(t), cond, trueValue, falseValue)
}

func (c *Codegen) EmitCall(loc lexer.Location, fn fx.ID, resultType fx.Type, args []fx.Expression) fx.ID {
	c.addBlockLocation(loc)

	operands := []fx.ID{fn}
	for _, arg := range args {
		operands = append(operands, arg.Base)
	}
	return c.emit(OpFunctionCall, c.convertType(resultType), operands...)
}

// EmitConstruct builds a composite. Matrix arguments arrive as scalars and
// are grouped into rows first.
func (c *Codegen) EmitConstruct(loc lexer.Location, t fx.Type, args []fx.Expression) fx.ID {
	c.addBlockLocation(loc)

	var ids []fx.ID
	if t.IsMatrix() && len(args) == int(t.Components()) {
		row := c.convertType(fx.Vector(t.Base, t.Cols))
		for r := uint32(0); r < t.Rows; r++ {
			components := make([]fx.ID, t.Cols)
			for k := range components {
				components[k] = args[r*t.Cols+uint32(k)].Base
			}
			ids = append(ids, c.emit(OpCompositeConstruct, row, components...))
		}
		if t.Rows == 1 {
			return ids[0]
		}
	} else {
		for _, arg := range args {
			ids = append(ids, arg.Base)
		}
	}
	return c.emit(OpCompositeConstruct, c.convertType(t), ids...)
}
