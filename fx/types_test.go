package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDescription(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Scalar(TypeFloat), "float"},
		{Vector(TypeInt, 3), "int3"},
		{Matrix(TypeFloat, 4, 4), "float4x4"},
		{Type{Base: TypeInt, Rows: 1, Cols: 1, ArrayLength: 4}, "int[4]"},
		{Type{Base: TypeFloat, Rows: 2, Cols: 1, ArrayLength: -1}, "float2[]"},
		{Type{Base: TypeTexture}, "texture2D"},
		{Type{Base: TypeVoid}, "void"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Description())
		})
	}
}

func TestTypePredicates(t *testing.T) {
	f3 := Vector(TypeFloat, 3)
	assert.True(t, f3.IsVector())
	assert.False(t, f3.IsScalar())
	assert.False(t, f3.IsMatrix())
	assert.Equal(t, uint32(3), f3.Components())

	m := Matrix(TypeFloat, 3, 2)
	assert.True(t, m.IsMatrix())
	assert.False(t, m.IsVector())
	assert.Equal(t, uint32(6), m.Components())

	arr := Type{Base: TypeInt, Rows: 1, Cols: 1, ArrayLength: 2}
	assert.False(t, arr.IsScalar())
	assert.True(t, arr.Element().IsScalar())

	b := Scalar(TypeBool)
	assert.True(t, b.IsIntegral())
	assert.False(t, b.IsSigned())

	q := Type{Base: TypeFloat, Rows: 1, Cols: 1, Qualifiers: QualifierConst | QualifierUniform}
	assert.True(t, q.Has(QualifierConst))
	assert.False(t, q.Has(QualifierConst|QualifierStatic))
	assert.True(t, q.Equal(Scalar(TypeFloat)))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs Type
		want     Type
	}{
		{"scalar promotes", Scalar(TypeFloat), Vector(TypeInt, 3), Vector(TypeFloat, 3)},
		{"vector truncates", Vector(TypeFloat, 4), Vector(TypeFloat, 3), Vector(TypeFloat, 3)},
		{"int uint", Scalar(TypeInt), Scalar(TypeUint), Scalar(TypeUint)},
		{"bool int", Vector(TypeBool, 2), Scalar(TypeInt), Vector(TypeInt, 2)},
		{"matrix scalar", Matrix(TypeFloat, 3, 3), Scalar(TypeFloat), Matrix(TypeFloat, 3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.lhs, tt.rhs)
			assert.True(t, tt.want.Equal(got), "Merge = %s, want %s", got.Description(), tt.want.Description())
		})
	}

	precise := Merge(Type{Base: TypeFloat, Rows: 1, Cols: 1, Qualifiers: QualifierPrecise | QualifierConst}, Scalar(TypeFloat))
	assert.Equal(t, QualifierPrecise, precise.Qualifiers)
}

func TestRank(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Type
		want     uint32
	}{
		{"int to int", Scalar(TypeInt), Scalar(TypeInt), 20},
		{"int to float", Scalar(TypeInt), Scalar(TypeFloat), 16},
		{"float to int", Scalar(TypeFloat), Scalar(TypeInt), 12},
		{"uint to int", Scalar(TypeUint), Scalar(TypeInt), 4},
		{"float3 exact", Vector(TypeFloat, 3), Vector(TypeFloat, 3), 72},
		{"scalar to vector", Scalar(TypeFloat), Vector(TypeFloat, 3), 12},
		{"vector to scalar", Vector(TypeFloat, 3), Scalar(TypeFloat), 6},
		{"truncation", Vector(TypeFloat, 4), Vector(TypeFloat, 3), 6},
		{"widening vectors", Vector(TypeFloat, 3), Vector(TypeFloat, 4), 0},
		{"array to scalar", Type{Base: TypeInt, Rows: 1, Cols: 1, ArrayLength: 2}, Scalar(TypeInt), 0},
		{"same struct", Type{Base: TypeStruct, Definition: 5}, Type{Base: TypeStruct, Definition: 5}, 32},
		{"other struct", Type{Base: TypeStruct, Definition: 5}, Type{Base: TypeStruct, Definition: 6}, 0},
		{"texture", Type{Base: TypeTexture}, Type{Base: TypeTexture}, 32},
		{"sampler to texture", Type{Base: TypeSampler}, Type{Base: TypeTexture}, 0},
		{"scalar to matrix", Scalar(TypeFloat), Matrix(TypeFloat, 2, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.src, tt.dst))
		})
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint32(8), AlignUp(5, 4))
	assert.Equal(t, uint32(8), AlignUp(8, 4))
	assert.Equal(t, uint32(16), AlignUp(12, 16))
	assert.Equal(t, uint32(44), AlignUpArray(12, 16, 3))
	assert.Equal(t, uint32(4), AlignUpArray(4, 16, 1))
}
