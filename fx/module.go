package fx

import (
	"math"

	"github.com/gogpu/reshadefx/lexer"
)

// TextureFormat is the storage format of a texture.
type TextureFormat uint8

const (
	FormatUnknown TextureFormat = iota
	FormatR8
	FormatR16F
	FormatR32F
	FormatRG8
	FormatRG16
	FormatRG16F
	FormatRG32F
	FormatRGBA8
	FormatRGBA16
	FormatRGBA16F
	FormatRGBA32F
	FormatRGB10A2
)

var formatNames = [...]string{
	FormatUnknown: "unknown",
	FormatR8:      "r8",
	FormatR16F:    "r16f",
	FormatR32F:    "r32f",
	FormatRG8:     "rg8",
	FormatRG16:    "rg16",
	FormatRG16F:   "rg16f",
	FormatRG32F:   "rg32f",
	FormatRGBA8:   "rgba8",
	FormatRGBA16:  "rgba16",
	FormatRGBA16F: "rgba16f",
	FormatRGBA32F: "rgba32f",
	FormatRGB10A2: "rgb10a2",
}

func (f TextureFormat) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// TextureFilter packs min, mag and mip filter bits (0 point, 1 linear) as
// 0x10, 0x04 and 0x01.
type TextureFilter uint8

const (
	FilterMinMagMipPoint             TextureFilter = 0x00
	FilterMinMagPointMipLinear       TextureFilter = 0x01
	FilterMinPointMagLinearMipPoint  TextureFilter = 0x04
	FilterMinPointMagMipLinear       TextureFilter = 0x05
	FilterMinLinearMagMipPoint       TextureFilter = 0x10
	FilterMinLinearMagPointMipLinear TextureFilter = 0x11
	FilterMinMagLinearMipPoint       TextureFilter = 0x14
	FilterMinMagMipLinear            TextureFilter = 0x15
)

func (f TextureFilter) MinLinear() bool { return f&0x30 != 0 }
func (f TextureFilter) MagLinear() bool { return f&0x0C != 0 }
func (f TextureFilter) MipLinear() bool { return f&0x03 != 0 }

// AddressMode selects how coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	AddressWrap AddressMode = iota + 1
	AddressMirror
	AddressClamp
	AddressBorder
)

type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota + 1
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendSrcAlpha
	BlendInvSrcColor
	BlendInvSrcAlpha
	BlendDstColor
	BlendDstAlpha
	BlendInvDstColor
	BlendInvDstAlpha
)

type StencilOp uint8

const (
	StencilZero StencilOp = iota
	StencilKeep
	StencilInvert
	StencilReplace
	StencilIncr
	StencilIncrSat
	StencilDecr
	StencilDecrSat
)

type StencilFunc uint8

const (
	StencilNever StencilFunc = iota
	StencilEqual
	StencilNotEqual
	StencilLess
	StencilLessEqual
	StencilGreater
	StencilGreaterEqual
	StencilAlways
)

type PrimitiveTopology uint8

const (
	TopologyPointList PrimitiveTopology = iota + 1
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
	TopologyTriangleStrip
)

// StructMemberInfo is a struct field or a function parameter.
type StructMemberInfo struct {
	Type       Type
	Name       string
	Semantic   string
	Location   lexer.Location
	Definition ID
}

type StructInfo struct {
	Name       string
	UniqueName string
	Members    []StructMemberInfo
	Definition ID
}

// Annotation is a constant attached to a declaration with <name = value;>.
type Annotation struct {
	Type  Type
	Name  string
	Value Constant
}

type TextureInfo struct {
	ID           ID
	Binding      uint32
	Semantic     string
	UniqueName   string
	Annotations  []Annotation
	Width        uint32
	Height       uint32
	Levels       uint32
	Format       TextureFormat
	RenderTarget bool
}

// NewTextureInfo returns a 1x1 RGBA8 texture with one mip level.
func NewTextureInfo() TextureInfo {
	return TextureInfo{Width: 1, Height: 1, Levels: 1, Format: FormatRGBA8}
}

// IsBackBuffer reports whether the texture refers to a runtime provided
// color or depth buffer.
func (t *TextureInfo) IsBackBuffer() bool {
	return t.Semantic == "COLOR" || t.Semantic == "SV_TARGET" || t.Semantic == "DEPTH" || t.Semantic == "SV_DEPTH"
}

type SamplerInfo struct {
	ID             ID
	Binding        uint32
	TextureBinding uint32
	UniqueName     string
	TextureName    string
	Annotations    []Annotation
	Filter         TextureFilter
	AddressU       AddressMode
	AddressV       AddressMode
	AddressW       AddressMode
	MinLOD         float32
	MaxLOD         float32
	LODBias        float32
	SRGB           bool
}

// NewSamplerInfo returns a trilinear clamping sampler over the full mip chain.
func NewSamplerInfo() SamplerInfo {
	return SamplerInfo{
		Filter:   FilterMinMagMipLinear,
		AddressU: AddressClamp,
		AddressV: AddressClamp,
		AddressW: AddressClamp,
		MinLOD:   -math.MaxFloat32,
		MaxLOD:   math.MaxFloat32,
	}
}

type UniformInfo struct {
	Name                string
	Type                Type
	Size                uint32
	Offset              uint32
	Annotations         []Annotation
	HasInitializerValue bool
	InitializerValue    Constant
}

// EntryPoint names a generated shader stage wrapper.
type EntryPoint struct {
	Name          string
	IsPixelShader bool
}

type FunctionInfo struct {
	Definition     ID
	Name           string
	UniqueName     string
	ReturnType     Type
	ReturnSemantic string
	Parameters     []StructMemberInfo
}

type PassInfo struct {
	RenderTargetNames     [8]string
	VSEntryPoint          string
	PSEntryPoint          string
	ClearRenderTargets    bool
	SRGBWriteEnable       bool
	BlendEnable           bool
	StencilEnable         bool
	ColorWriteMask        uint8
	StencilReadMask       uint8
	StencilWriteMask      uint8
	BlendOp               BlendOp
	BlendOpAlpha          BlendOp
	SrcBlend              BlendFactor
	DestBlend             BlendFactor
	SrcBlendAlpha         BlendFactor
	DestBlendAlpha        BlendFactor
	StencilComparisonFunc StencilFunc
	StencilReferenceValue uint32
	StencilOpPass         StencilOp
	StencilOpFail         StencilOp
	StencilOpDepthFail    StencilOp
	NumVertices           uint32
	Topology              PrimitiveTopology
	ViewportWidth         uint32
	ViewportHeight        uint32
}

// NewPassInfo returns a pass with blending and stencil disabled that draws
// one full screen triangle.
func NewPassInfo() PassInfo {
	return PassInfo{
		ColorWriteMask:        0xF,
		StencilReadMask:       0xFF,
		StencilWriteMask:      0xFF,
		BlendOp:               BlendOpAdd,
		BlendOpAlpha:          BlendOpAdd,
		SrcBlend:              BlendOne,
		DestBlend:             BlendZero,
		SrcBlendAlpha:         BlendOne,
		DestBlendAlpha:        BlendZero,
		StencilComparisonFunc: StencilAlways,
		StencilOpPass:         StencilKeep,
		StencilOpFail:         StencilKeep,
		StencilOpDepthFail:    StencilKeep,
		NumVertices:           3,
		Topology:              TopologyTriangleList,
	}
}

type TechniqueInfo struct {
	Name        string
	Passes      []PassInfo
	Annotations []Annotation
}

// Module is the result of one compilation. Exactly one of SPIRV and Code
// is filled, depending on the code generator.
type Module struct {
	SPIRV []uint32
	Code  string

	EntryPoints   []EntryPoint
	Textures      []TextureInfo
	Samplers      []SamplerInfo
	Uniforms      []UniformInfo
	SpecConstants []UniformInfo
	Techniques    []TechniqueInfo

	TotalUniformSize   uint32
	NumTextureBindings uint32
	NumSamplerBindings uint32
}

// FindTexture returns the texture with the given unique name.
func (m *Module) FindTexture(uniqueName string) *TextureInfo {
	for i := range m.Textures {
		if m.Textures[i].UniqueName == uniqueName {
			return &m.Textures[i]
		}
	}
	return nil
}

// FindTechnique returns the technique with the given name.
func (m *Module) FindTechnique(name string) *TechniqueInfo {
	for i := range m.Techniques {
		if m.Techniques[i].Name == name {
			return &m.Techniques[i]
		}
	}
	return nil
}

// FindUniform returns the uniform or specialization constant with the given name.
func (m *Module) FindUniform(name string) *UniformInfo {
	for i := range m.Uniforms {
		if m.Uniforms[i].Name == name {
			return &m.Uniforms[i]
		}
	}
	for i := range m.SpecConstants {
		if m.SpecConstants[i].Name == name {
			return &m.SpecConstants[i]
		}
	}
	return nil
}
