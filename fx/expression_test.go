package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/reshadefx/lexer"
)

var testLoc = lexer.Location{Source: "test.fx", Line: 1, Column: 1}

func TestAddCastConstant(t *testing.T) {
	t.Run("int to float3", func(t *testing.T) {
		var e Expression
		e.ResetToInt(testLoc, 5)
		e.AddCast(Vector(TypeFloat, 3))

		require.True(t, e.IsConstant)
		assert.True(t, e.Type.Equal(Vector(TypeFloat, 3)))
		assert.True(t, e.Type.Has(QualifierConst))
		for i := 0; i < 3; i++ {
			assert.Equal(t, float32(5), e.Constant.Float(i))
		}
	})

	t.Run("float to int truncates", func(t *testing.T) {
		var e Expression
		e.ResetToFloat(testLoc, -2.7)
		e.AddCast(Scalar(TypeInt))
		assert.Equal(t, int32(-2), e.Constant.Int(0))
	})

	t.Run("float to bool", func(t *testing.T) {
		var e Expression
		e.ResetToFloat(testLoc, 0.5)
		e.AddCast(Scalar(TypeBool))
		assert.Equal(t, uint32(1), e.Constant.Uint(0))
	})

	t.Run("float4 to float2 drops lanes", func(t *testing.T) {
		var c Constant
		for i := 0; i < 4; i++ {
			c.SetFloat(i, float32(i+1))
		}
		var e Expression
		e.ResetToConstant(testLoc, c, Vector(TypeFloat, 4))
		e.AddCast(Vector(TypeFloat, 2))
		assert.True(t, e.Type.Equal(Vector(TypeFloat, 2)))
		assert.Equal(t, float32(1), e.Constant.Float(0))
		assert.Equal(t, float32(2), e.Constant.Float(1))
		assert.Equal(t, uint32(0), e.Constant.Uint(2))
	})

	t.Run("huge float saturates", func(t *testing.T) {
		var e Expression
		e.ResetToFloat(testLoc, 1e20)
		e.AddCast(Scalar(TypeInt))
		assert.Equal(t, int32(2147483647), e.Constant.Int(0))
	})
}

func TestAddCastChain(t *testing.T) {
	var e Expression
	e.ResetToLvalue(testLoc, 7, Vector(TypeFloat, 4))
	e.AddSwizzle([4]int8{2, 1, -1, -1}, 2)
	e.AddCast(Scalar(TypeFloat))

	require.Len(t, e.Chain, 2)
	assert.Equal(t, OpSwizzle, e.Chain[0].Op)
	assert.Equal(t, OpConstantIndex, e.Chain[1].Op)
	assert.Equal(t, uint32(0), e.Chain[1].Index)
	assert.True(t, e.Type.IsScalar())

	e.AddCast(Scalar(TypeInt))
	require.Len(t, e.Chain, 3)
	assert.Equal(t, OpCast, e.Chain[2].Op)
	assert.Equal(t, TypeFloat, e.Chain[2].From.Base)
	assert.Equal(t, TypeInt, e.Chain[2].To.Base)
}

func TestResetToLvalueUniformIsConst(t *testing.T) {
	var e Expression
	e.ResetToLvalue(testLoc, 3, Type{Base: TypeFloat, Rows: 1, Cols: 1, Qualifiers: QualifierUniform})
	assert.True(t, e.IsLvalue)
	assert.True(t, e.Type.Has(QualifierConst))
}

func TestConstantIndexing(t *testing.T) {
	t.Run("matrix row and element", func(t *testing.T) {
		var c Constant
		for i := 0; i < 4; i++ {
			c.SetFloat(i, float32(i+1))
		}
		var e Expression
		e.ResetToConstant(testLoc, c, Matrix(TypeFloat, 2, 2))

		row := e
		row.AddConstantIndex(1)
		assert.True(t, row.Type.Equal(Vector(TypeFloat, 2)))
		assert.Equal(t, float32(3), row.Constant.Float(0))
		assert.Equal(t, float32(4), row.Constant.Float(1))

		elem := e
		elem.AddSwizzle([4]int8{1*4 + 1, -1, -1, -1}, 1)
		assert.Equal(t, float32(4), elem.Constant.Float(0))
	})

	t.Run("array element", func(t *testing.T) {
		elements := make([]Constant, 3)
		for i := range elements {
			elements[i].SetInt(0, int32(10*i))
		}
		var e Expression
		e.ResetToConstant(testLoc, Constant{Array: elements}, Type{Base: TypeInt, Rows: 1, Cols: 1, ArrayLength: 3})
		e.AddConstantIndex(2)
		assert.False(t, e.Type.IsArray())
		assert.Equal(t, int32(20), e.Constant.Int(0))
		assert.Equal(t, int32(20), elements[2].Int(0))
	})

	t.Run("dynamic index", func(t *testing.T) {
		var e Expression
		e.ResetToLvalue(testLoc, 4, Type{Base: TypeFloat, Rows: 4, Cols: 1, ArrayLength: 8})
		e.AddDynamicIndex(9)
		e.AddConstantIndex(3)
		require.Len(t, e.Chain, 2)
		assert.Equal(t, OpDynamicIndex, e.Chain[0].Op)
		assert.Equal(t, uint32(9), e.Chain[0].Index)
		assert.True(t, e.Type.IsScalar())
	})
}

func TestFoldUnary(t *testing.T) {
	var e Expression
	e.ResetToInt(testLoc, 5)
	require.True(t, e.FoldUnary(lexer.TokenMinus))
	assert.Equal(t, int32(-5), e.Constant.Int(0))

	require.True(t, e.FoldUnary(lexer.TokenExclaim))
	assert.Equal(t, uint32(0), e.Constant.Uint(0))

	e.ResetToUint(testLoc, 0)
	require.True(t, e.FoldUnary(lexer.TokenTilde))
	assert.Equal(t, uint32(0xFFFFFFFF), e.Constant.Uint(0))

	e.ResetToRvalue(testLoc, 1, Scalar(TypeInt))
	assert.False(t, e.FoldUnary(lexer.TokenMinus))
}

func TestFoldBinary(t *testing.T) {
	intConst := func(v int32) *Constant {
		var c Constant
		c.SetInt(0, v)
		return &c
	}

	tests := []struct {
		name string
		lhs  int32
		op   lexer.TokenKind
		rhs  int32
		want int32
	}{
		{"add", 2, lexer.TokenPlus, 3, 5},
		{"sub", 2, lexer.TokenMinus, 3, -1},
		{"mul", 4, lexer.TokenStar, -3, -12},
		{"div", 7, lexer.TokenSlash, 2, 3},
		{"mod", 7, lexer.TokenPercent, 3, 1},
		{"shl masks count", 1, lexer.TokenLessLess, 33, 2},
		{"sar", -8, lexer.TokenGreaterGreater, 1, -4},
		{"and", 6, lexer.TokenAmpersand, 3, 2},
		{"or", 6, lexer.TokenPipe, 3, 7},
		{"xor", 6, lexer.TokenCaret, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Expression
			e.ResetToInt(testLoc, tt.lhs)
			require.True(t, e.FoldBinary(tt.op, intConst(tt.rhs)))
			assert.Equal(t, tt.want, e.Constant.Int(0))
		})
	}

	t.Run("division by zero is not folded", func(t *testing.T) {
		var e Expression
		e.ResetToInt(testLoc, 7)
		assert.False(t, e.FoldBinary(lexer.TokenSlash, intConst(0)))
		assert.Equal(t, int32(7), e.Constant.Int(0))
	})

	t.Run("comparison yields bool", func(t *testing.T) {
		var e Expression
		e.ResetToFloat(testLoc, 1)
		var rhs Constant
		rhs.SetFloat(0, 2)
		require.True(t, e.FoldBinary(lexer.TokenLess, &rhs))
		assert.Equal(t, TypeBool, e.Type.Base)
		assert.Equal(t, uint32(1), e.Constant.Uint(0))
	})

	t.Run("float arithmetic", func(t *testing.T) {
		var e Expression
		e.ResetToFloat(testLoc, 1.5)
		var rhs Constant
		rhs.SetFloat(0, 0.25)
		require.True(t, e.FoldBinary(lexer.TokenStar, &rhs))
		assert.Equal(t, float32(0.375), e.Constant.Float(0))
	})
}

func TestConstantClone(t *testing.T) {
	c := Constant{Array: []Constant{{String: "a"}}}
	d := c.Clone()
	d.Array[0].String = "b"
	assert.Equal(t, "a", c.Array[0].String)
	assert.False(t, c.IsZero())
	assert.True(t, (&Constant{}).IsZero())
}
