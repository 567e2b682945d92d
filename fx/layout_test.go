package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceUniform(t *testing.T) {
	array := Scalar(TypeFloat)
	array.ArrayLength = 3

	tests := []struct {
		name   string
		typ    Type
		offset uint32
		size   uint32
	}{
		{"float", Scalar(TypeFloat), 0, 4},
		{"float3 starts a new row", Vector(TypeFloat, 3), 16, 12},
		{"float2 aligns to 8", Vector(TypeFloat, 2), 32, 8},
		{"float4x4", Matrix(TypeFloat, 4, 4), 48, 64},
		{"float[3] pads elements", array, 112, 48},
		{"bool", Scalar(TypeBool), 160, 4},
	}

	var total uint32
	for _, tt := range tests {
		info := UniformInfo{Name: tt.name, Type: tt.typ}
		total = PlaceUniform(&info, total)
		assert.Equal(t, tt.offset, info.Offset, tt.name)
		assert.Equal(t, tt.size, info.Size, tt.name)
		assert.Equal(t, info.Offset+info.Size, total, tt.name)
	}
}

func TestUniformLayoutMatrix(t *testing.T) {
	size, alignment := UniformLayout(Matrix(TypeFloat, 3, 2))
	assert.Equal(t, uint32(48), size)
	assert.Equal(t, uint32(16), alignment)
}
