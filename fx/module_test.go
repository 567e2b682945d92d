package fx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorDefaults(t *testing.T) {
	tex := NewTextureInfo()
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, uint32(1), tex.Levels)
	assert.Equal(t, FormatRGBA8, tex.Format)
	assert.Equal(t, "rgba8", tex.Format.String())

	s := NewSamplerInfo()
	assert.Equal(t, FilterMinMagMipLinear, s.Filter)
	assert.True(t, s.Filter.MinLinear())
	assert.True(t, s.Filter.MagLinear())
	assert.True(t, s.Filter.MipLinear())
	assert.Equal(t, AddressClamp, s.AddressU)
	assert.Equal(t, float32(-math.MaxFloat32), s.MinLOD)

	p := NewPassInfo()
	assert.Equal(t, uint8(0xF), p.ColorWriteMask)
	assert.Equal(t, BlendOne, p.SrcBlend)
	assert.Equal(t, BlendZero, p.DestBlend)
	assert.Equal(t, StencilAlways, p.StencilComparisonFunc)
	assert.Equal(t, uint32(3), p.NumVertices)
	assert.Equal(t, TopologyTriangleList, p.Topology)
}

func TestFilterBits(t *testing.T) {
	f := FilterMinLinearMagPointMipLinear
	assert.True(t, f.MinLinear())
	assert.False(t, f.MagLinear())
	assert.True(t, f.MipLinear())
	assert.False(t, FilterMinMagMipPoint.MinLinear())
}

func TestModuleLookup(t *testing.T) {
	m := Module{
		Textures:      []TextureInfo{{UniqueName: "V__Tex"}},
		Uniforms:      []UniformInfo{{Name: "a"}},
		SpecConstants: []UniformInfo{{Name: "b"}},
		Techniques:    []TechniqueInfo{{Name: "T"}},
	}
	require.NotNil(t, m.FindTexture("V__Tex"))
	assert.Nil(t, m.FindTexture("Tex"))
	require.NotNil(t, m.FindUniform("b"))
	assert.Equal(t, "b", m.FindUniform("b").Name)
	assert.NotNil(t, m.FindTechnique("T"))
	assert.Nil(t, m.FindTechnique("U"))

	assert.True(t, (&TextureInfo{Semantic: "COLOR"}).IsBackBuffer())
	assert.False(t, (&TextureInfo{}).IsBackBuffer())
}

func TestContext(t *testing.T) {
	c := NewContext()
	assert.Equal(t, ID(1), c.MakeID())
	assert.Equal(t, ID(2), c.CreateBlock())
	assert.False(t, c.IsInBlock())
	c.CurrentBlock = 2
	assert.True(t, c.IsInFunction())

	c.Structs = append(c.Structs, StructInfo{Name: "S", Definition: 7})
	require.NotNil(t, c.FindStruct(7))
	assert.Equal(t, "S", c.FindStruct(7).Name)
	assert.Nil(t, c.FindStruct(8))

	fn := &FunctionInfo{Name: "main", Definition: 9}
	c.Functions = append(c.Functions, fn)
	assert.Same(t, fn, c.FindFunction(9))

	c.Module.Textures = append(c.Module.Textures, TextureInfo{ID: 3, UniqueName: "V__Tex"})
	assert.Equal(t, "V__Tex", c.FindTexture(3).UniqueName)

	c.DefineTechnique(TechniqueInfo{Name: "T"})
	assert.Len(t, c.Module.Techniques, 1)
}

func TestIntrinsicGather(t *testing.T) {
	comp, offset, ok := IntrinsicTex2DGatherBOffset.Gather()
	require.True(t, ok)
	assert.Equal(t, uint32(2), comp)
	assert.True(t, offset)

	comp, offset, ok = IntrinsicTex2DGatherR.Gather()
	require.True(t, ok)
	assert.Equal(t, uint32(0), comp)
	assert.False(t, offset)

	_, _, ok = IntrinsicTex2D.Gather()
	assert.False(t, ok)
}
