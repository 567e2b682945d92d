package main

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/gogpu/reshadefx/fx"
)

// The view types give the module descriptors stable YAML names for tools
// that bind textures, samplers and uniforms at runtime.

type moduleView struct {
	EntryPoints        []entryPointView `yaml:"entry_points"`
	Textures           []textureView    `yaml:"textures,omitempty"`
	Samplers           []samplerView    `yaml:"samplers,omitempty"`
	Uniforms           []uniformView    `yaml:"uniforms,omitempty"`
	SpecConstants      []uniformView    `yaml:"spec_constants,omitempty"`
	Techniques         []techniqueView  `yaml:"techniques,omitempty"`
	TotalUniformSize   uint32           `yaml:"total_uniform_size"`
	NumTextureBindings uint32           `yaml:"num_texture_bindings"`
	NumSamplerBindings uint32           `yaml:"num_sampler_bindings"`
}

type entryPointView struct {
	Name  string `yaml:"name"`
	Stage string `yaml:"stage"`
}

type annotationView struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

type textureView struct {
	Name         string           `yaml:"name"`
	Semantic     string           `yaml:"semantic,omitempty"`
	Binding      uint32           `yaml:"binding"`
	Width        uint32           `yaml:"width"`
	Height       uint32           `yaml:"height"`
	Levels       uint32           `yaml:"levels"`
	Format       string           `yaml:"format"`
	RenderTarget bool             `yaml:"render_target,omitempty"`
	Annotations  []annotationView `yaml:"annotations,omitempty"`
}

type samplerView struct {
	Name           string           `yaml:"name"`
	Texture        string           `yaml:"texture"`
	Binding        uint32           `yaml:"binding"`
	TextureBinding uint32           `yaml:"texture_binding"`
	Filter         string           `yaml:"filter"`
	Address        [3]string        `yaml:"address,flow"`
	MinLOD         float32          `yaml:"min_lod"`
	MaxLOD         float32          `yaml:"max_lod"`
	LODBias        float32          `yaml:"lod_bias"`
	SRGB           bool             `yaml:"srgb,omitempty"`
	Annotations    []annotationView `yaml:"annotations,omitempty"`
}

type uniformView struct {
	Name        string           `yaml:"name"`
	Type        string           `yaml:"type"`
	Offset      uint32           `yaml:"offset"`
	Size        uint32           `yaml:"size"`
	Initializer any              `yaml:"initializer,omitempty"`
	Annotations []annotationView `yaml:"annotations,omitempty"`
}

type passView struct {
	VertexShader  string   `yaml:"vertex_shader"`
	PixelShader   string   `yaml:"pixel_shader"`
	RenderTargets []string `yaml:"render_targets,omitempty"`
	BlendEnable   bool     `yaml:"blend_enable,omitempty"`
	StencilEnable bool     `yaml:"stencil_enable,omitempty"`
	SRGBWrite     bool     `yaml:"srgb_write,omitempty"`
	ClearTargets  bool     `yaml:"clear_render_targets,omitempty"`
	WriteMask     uint8    `yaml:"color_write_mask"`
	VertexCount   uint32   `yaml:"vertex_count"`
}

type techniqueView struct {
	Name        string           `yaml:"name"`
	Passes      []passView       `yaml:"passes"`
	Annotations []annotationView `yaml:"annotations,omitempty"`
}

var addressNames = map[fx.AddressMode]string{
	fx.AddressWrap:   "wrap",
	fx.AddressMirror: "mirror",
	fx.AddressClamp:  "clamp",
	fx.AddressBorder: "border",
}

func filterName(f fx.TextureFilter) string {
	mode := func(linear bool) string {
		if linear {
			return "linear"
		}
		return "point"
	}
	return fmt.Sprintf("min_%s_mag_%s_mip_%s", mode(f.MinLinear()), mode(f.MagLinear()), mode(f.MipLinear()))
}

// constantValue returns the lanes of c as Go values of t's base type: a
// single value for scalars, a list for vectors and matrices, and a list of
// those for arrays.
func constantValue(t fx.Type, c fx.Constant) any {
	if t.Base == fx.TypeString {
		return c.String
	}
	if t.IsArray() {
		elements := make([]any, 0, len(c.Array))
		for _, e := range c.Array {
			elements = append(elements, constantValue(t.Element(), e))
		}
		return elements
	}

	n := min(int(t.Components()), len(c.Lanes))
	if n == 1 {
		return laneValue(t.Base, &c, 0)
	}
	values := make([]any, n)
	for i := range values {
		values[i] = laneValue(t.Base, &c, i)
	}
	return values
}

func laneValue(base fx.BaseType, c *fx.Constant, i int) any {
	switch base {
	case fx.TypeBool:
		return c.Uint(i) != 0
	case fx.TypeInt:
		return c.Int(i)
	case fx.TypeUint:
		return c.Uint(i)
	}
	return c.Float(i)
}

func annotations(list []fx.Annotation) []annotationView {
	var out []annotationView
	for _, a := range list {
		out = append(out, annotationView{Name: a.Name, Type: a.Type.Description(), Value: constantValue(a.Type, a.Value)})
	}
	return out
}

func newModuleView(m *fx.Module) moduleView {
	v := moduleView{
		TotalUniformSize:   m.TotalUniformSize,
		NumTextureBindings: m.NumTextureBindings,
		NumSamplerBindings: m.NumSamplerBindings,
	}
	for _, ep := range m.EntryPoints {
		stage := "vertex"
		if ep.IsPixelShader {
			stage = "pixel"
		}
		v.EntryPoints = append(v.EntryPoints, entryPointView{Name: ep.Name, Stage: stage})
	}
	for _, t := range m.Textures {
		v.Textures = append(v.Textures, textureView{
			Name:         t.UniqueName,
			Semantic:     t.Semantic,
			Binding:      t.Binding,
			Width:        t.Width,
			Height:       t.Height,
			Levels:       t.Levels,
			Format:       t.Format.String(),
			RenderTarget: t.RenderTarget,
			Annotations:  annotations(t.Annotations),
		})
	}
	for _, s := range m.Samplers {
		v.Samplers = append(v.Samplers, samplerView{
			Name:           s.UniqueName,
			Texture:        s.TextureName,
			Binding:        s.Binding,
			TextureBinding: s.TextureBinding,
			Filter:         filterName(s.Filter),
			Address:        [3]string{addressNames[s.AddressU], addressNames[s.AddressV], addressNames[s.AddressW]},
			MinLOD:         s.MinLOD,
			MaxLOD:         s.MaxLOD,
			LODBias:        s.LODBias,
			SRGB:           s.SRGB,
			Annotations:    annotations(s.Annotations),
		})
	}
	v.Uniforms = uniformViews(m.Uniforms)
	v.SpecConstants = uniformViews(m.SpecConstants)
	for _, tech := range m.Techniques {
		tv := techniqueView{Name: tech.Name, Annotations: annotations(tech.Annotations)}
		for _, p := range tech.Passes {
			pv := passView{
				VertexShader:  p.VSEntryPoint,
				PixelShader:   p.PSEntryPoint,
				BlendEnable:   p.BlendEnable,
				StencilEnable: p.StencilEnable,
				SRGBWrite:     p.SRGBWriteEnable,
				ClearTargets:  p.ClearRenderTargets,
				WriteMask:     p.ColorWriteMask,
				VertexCount:   p.NumVertices,
			}
			for _, rt := range p.RenderTargetNames {
				if rt != "" {
					pv.RenderTargets = append(pv.RenderTargets, rt)
				}
			}
			tv.Passes = append(tv.Passes, pv)
		}
		v.Techniques = append(v.Techniques, tv)
	}
	return v
}

func uniformViews(list []fx.UniformInfo) []uniformView {
	var out []uniformView
	for _, u := range list {
		uv := uniformView{
			Name:        u.Name,
			Type:        u.Type.Description(),
			Offset:      u.Offset,
			Size:        u.Size,
			Annotations: annotations(u.Annotations),
		}
		if u.HasInitializerValue {
			uv.Initializer = constantValue(u.Type, u.InitializerValue)
		}
		out = append(out, uv)
	}
	return out
}

// marshalDescriptors renders the descriptors of m as YAML.
func marshalDescriptors(m *fx.Module) ([]byte, error) {
	data, err := yaml.Marshal(newModuleView(m))
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptors: %w", err)
	}
	return data, nil
}
