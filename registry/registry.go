// Package registry compiles several effects concurrently and merges their
// textures, uniforms and techniques into one name-keyed view.
//
// Every effect gets its own preprocessor, parser and code generator, so
// compilations share nothing while they run. Each finished module is then
// merged under a lock. Two effects may declare the same texture or uniform
// by name; when their descriptions disagree the registry keeps the first
// one and reports a warning.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// Texture is a shared texture together with the effects that declare it.
type Texture struct {
	Info    fx.TextureInfo
	Effects []string
}

// Uniform is a shared uniform together with the effects that declare it.
type Uniform struct {
	Info    fx.UniformInfo
	Effects []string
}

// Technique is a technique and the effect it was declared in.
type Technique struct {
	Effect string
	Info   fx.TechniqueInfo
}

// Registry accumulates the descriptors of compiled effects. It is safe for
// concurrent use.
type Registry struct {
	mu sync.Mutex

	textures      map[string]*Texture
	textureOrder  []string
	uniforms      map[string]*Uniform
	uniformOrder  []string
	techniques    []Technique
	techniqueSeen map[string]string
	diags         fx.Diagnostics
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		textures:      make(map[string]*Texture),
		uniforms:      make(map[string]*Uniform),
		techniqueSeen: make(map[string]string),
	}
}

// Merge adds the descriptors of the module compiled from effect. Textures
// that refer to runtime buffers (COLOR, DEPTH) are not tracked.
func (r *Registry) Merge(effect string, m *fx.Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc := lexer.Location{Source: effect}

	for i := range m.Textures {
		tex := &m.Textures[i]
		if tex.IsBackBuffer() {
			continue
		}
		existing, ok := r.textures[tex.UniqueName]
		if !ok {
			r.textures[tex.UniqueName] = &Texture{Info: *tex, Effects: []string{effect}}
			r.textureOrder = append(r.textureOrder, tex.UniqueName)
			continue
		}
		existing.Effects = append(existing.Effects, effect)
		if msg := textureConflict(&existing.Info, tex); msg != "" {
			r.diags.Warningf(fx.StageRegistry, loc, 0, "texture '%s' %s in '%s'",
				tex.UniqueName, msg, existing.Effects[0])
		}
	}

	for _, list := range [][]fx.UniformInfo{m.Uniforms, m.SpecConstants} {
		for i := range list {
			u := &list[i]
			existing, ok := r.uniforms[u.Name]
			if !ok {
				r.uniforms[u.Name] = &Uniform{Info: *u, Effects: []string{effect}}
				r.uniformOrder = append(r.uniformOrder, u.Name)
				continue
			}
			existing.Effects = append(existing.Effects, effect)
			if !uniformTypesMatch(existing.Info.Type, u.Type) {
				r.diags.Warningf(fx.StageRegistry, loc, 0, "uniform '%s' is declared as %s but as %s in '%s'",
					u.Name, u.Type.Description(), existing.Info.Type.Description(), existing.Effects[0])
			}
		}
	}

	for _, tech := range m.Techniques {
		if first, ok := r.techniqueSeen[tech.Name]; ok {
			r.diags.Warningf(fx.StageRegistry, loc, 0, "technique '%s' is also declared in '%s'", tech.Name, first)
		} else {
			r.techniqueSeen[tech.Name] = effect
		}
		r.techniques = append(r.techniques, Technique{Effect: effect, Info: tech})
	}
}

func textureConflict(a, b *fx.TextureInfo) string {
	switch {
	case a.Width != b.Width || a.Height != b.Height:
		return fmt.Sprintf("is %dx%d but %dx%d", b.Width, b.Height, a.Width, a.Height)
	case a.Levels != b.Levels:
		return fmt.Sprintf("has %d mip levels but %d", b.Levels, a.Levels)
	case a.Format != b.Format:
		return fmt.Sprintf("has format %s but %s", b.Format, a.Format)
	}
	return ""
}

// uniformTypesMatch ignores qualifiers and struct definition ids, which are
// local to one compilation.
func uniformTypesMatch(a, b fx.Type) bool {
	return a.Base == b.Base && a.Rows == b.Rows && a.Cols == b.Cols && a.ArrayLength == b.ArrayLength
}

// Textures returns the shared textures in first declaration order.
func (r *Registry) Textures() []Texture {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Texture, 0, len(r.textureOrder))
	for _, name := range r.textureOrder {
		t := *r.textures[name]
		t.Effects = slices.Clone(t.Effects)
		out = append(out, t)
	}
	return out
}

// Texture returns the texture with the given unique name.
func (r *Registry) Texture(uniqueName string) (Texture, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.textures[uniqueName]
	if !ok {
		return Texture{}, false
	}
	out := *t
	out.Effects = slices.Clone(t.Effects)
	return out, true
}

// Uniforms returns the uniforms and specialization constants in first
// declaration order.
func (r *Registry) Uniforms() []Uniform {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Uniform, 0, len(r.uniformOrder))
	for _, name := range r.uniformOrder {
		u := *r.uniforms[name]
		u.Effects = slices.Clone(u.Effects)
		out = append(out, u)
	}
	return out
}

// Techniques returns every technique in merge order.
func (r *Registry) Techniques() []Technique {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.techniques)
}

// Diagnostics returns the merge warnings reported so far.
func (r *Registry) Diagnostics() fx.Diagnostics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.diags)
}
