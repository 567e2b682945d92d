package parser

import (
	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// passEnums are the identifiers accepted as pass state values.
var passEnums = map[string]uint32{
	"NONE": 0,
	"ZERO": 0,
	"ONE":  1,

	"ADD":         uint32(fx.BlendOpAdd),
	"SUBTRACT":    uint32(fx.BlendOpSubtract),
	"REVSUBTRACT": uint32(fx.BlendOpRevSubtract),
	"MIN":         uint32(fx.BlendOpMin),
	"MAX":         uint32(fx.BlendOpMax),

	"SRCCOLOR":     uint32(fx.BlendSrcColor),
	"SRCALPHA":     uint32(fx.BlendSrcAlpha),
	"INVSRCCOLOR":  uint32(fx.BlendInvSrcColor),
	"INVSRCALPHA":  uint32(fx.BlendInvSrcAlpha),
	"DESTCOLOR":    uint32(fx.BlendDstColor),
	"DESTALPHA":    uint32(fx.BlendDstAlpha),
	"INVDESTCOLOR": uint32(fx.BlendInvDstColor),
	"INVDESTALPHA": uint32(fx.BlendInvDstAlpha),

	"KEEP":    uint32(fx.StencilKeep),
	"REPLACE": uint32(fx.StencilReplace),
	"INVERT":  uint32(fx.StencilInvert),
	"INCR":    uint32(fx.StencilIncr),
	"INCRSAT": uint32(fx.StencilIncrSat),
	"DECR":    uint32(fx.StencilDecr),
	"DECRSAT": uint32(fx.StencilDecrSat),

	"NEVER":        uint32(fx.StencilNever),
	"EQUAL":        uint32(fx.StencilEqual),
	"NEQUAL":       uint32(fx.StencilNotEqual),
	"NOTEQUAL":     uint32(fx.StencilNotEqual),
	"LESS":         uint32(fx.StencilLess),
	"GREATER":      uint32(fx.StencilGreater),
	"LEQUAL":       uint32(fx.StencilLessEqual),
	"LESSEQUAL":    uint32(fx.StencilLessEqual),
	"GEQUAL":       uint32(fx.StencilGreaterEqual),
	"GREATEREQUAL": uint32(fx.StencilGreaterEqual),
	"ALWAYS":       uint32(fx.StencilAlways),

	"POINTS":        uint32(fx.TopologyPointList),
	"POINTLIST":     uint32(fx.TopologyPointList),
	"LINES":         uint32(fx.TopologyLineList),
	"LINELIST":      uint32(fx.TopologyLineList),
	"LINESTRIP":     uint32(fx.TopologyLineStrip),
	"TRIANGLES":     uint32(fx.TopologyTriangleList),
	"TRIANGLELIST":  uint32(fx.TopologyTriangleList),
	"TRIANGLESTRIP": uint32(fx.TopologyTriangleStrip),
}

// passState applies one numeric pass state. It returns false for unknown
// names. name is case folded.
func passState(info *fx.PassInfo, name string, value uint32) bool {
	switch name {
	case "srgbwriteenable":
		info.SRGBWriteEnable = value != 0
	case "blendenable":
		info.BlendEnable = value != 0
	case "stencilenable":
		info.StencilEnable = value != 0
	case "clearrendertargets":
		info.ClearRenderTargets = value != 0
	case "rendertargetwritemask", "colorwritemask":
		info.ColorWriteMask = uint8(value)
	case "stencilreadmask", "stencilmask":
		info.StencilReadMask = uint8(value)
	case "stencilwritemask":
		info.StencilWriteMask = uint8(value)
	case "blendop":
		info.BlendOp = fx.BlendOp(value)
	case "blendopalpha":
		info.BlendOpAlpha = fx.BlendOp(value)
	case "srcblend":
		info.SrcBlend = fx.BlendFactor(value)
	case "srcblendalpha":
		info.SrcBlendAlpha = fx.BlendFactor(value)
	case "destblend":
		info.DestBlend = fx.BlendFactor(value)
	case "destblendalpha":
		info.DestBlendAlpha = fx.BlendFactor(value)
	case "stencilfunc":
		info.StencilComparisonFunc = fx.StencilFunc(value)
	case "stencilref":
		info.StencilReferenceValue = value
	case "stencilpass", "stencilpassop":
		info.StencilOpPass = fx.StencilOp(value)
	case "stencilfail", "stencilfailop":
		info.StencilOpFail = fx.StencilOp(value)
	case "stencilzfail", "stencildepthfail", "stencildepthfailop":
		info.StencilOpDepthFail = fx.StencilOp(value)
	case "vertexcount":
		info.NumVertices = value
	case "primitivetype", "primitivetopology":
		info.Topology = fx.PrimitiveTopology(value)
	default:
		return false
	}
	return true
}

// renderTargetIndex returns the slot selected by RenderTarget or
// RenderTarget0 to RenderTarget7.
func renderTargetIndex(name string) (int, bool) {
	const prefix = "rendertarget"
	if len(name) < len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	switch rest := name[len(prefix):]; {
	case rest == "":
		return 0, true
	case len(rest) == 1 && rest[0] >= '0' && rest[0] < '8':
		return int(rest[0] - '0'), true
	}
	return 0, false
}

func (p *Parser) parseTechnique() bool {
	if !p.expect(lexer.TokenIdentifier) {
		return false
	}

	info := fx.TechniqueInfo{Name: p.tok.Literal}
	success := p.parseAnnotations(&info.Annotations)

	if !p.expect(lexer.TokenBraceOpen) {
		return false
	}

	for !p.peek(lexer.TokenBraceClose) {
		pass := fx.NewPassInfo()
		if p.parseTechniquePass(&pass) {
			info.Passes = append(info.Passes, pass)
			continue
		}
		success = false
		// Keep going if another pass follows.
		if !p.peek(lexer.TokenPass) && !p.peek(lexer.TokenBraceClose) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
	}

	p.cg.DefineTechnique(info)

	return p.expect(lexer.TokenBraceClose) && success
}

// passShaders tracks the state a pass needs for its final checks.
type passShaders struct {
	vs, ps             *fx.FunctionInfo
	targetsSupportSRGB bool
}

func (p *Parser) parseTechniquePass(info *fx.PassInfo) bool {
	if !p.expect(lexer.TokenPass) {
		return false
	}
	passLoc := p.tok.Location

	// The pass name is optional and unused.
	p.accept(lexer.TokenIdentifier)

	if !p.expect(lexer.TokenBraceOpen) {
		return false
	}

	success := true
	shaders := passShaders{targetsSupportSRGB: true}

	for !p.peek(lexer.TokenBraceClose) {
		if !p.expect(lexer.TokenIdentifier) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
		loc := p.tok.Location
		state := p.tok.Literal
		key := p.fold.String(state)

		if !p.expect(lexer.TokenEqual) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}

		target, isTarget := renderTargetIndex(key)
		isShader := key == "vertexshader" || key == "pixelshader"

		if isShader || isTarget {
			identifier, _, sym, ok := p.acceptSymbol()
			if !ok {
				p.consumeUntil(lexer.TokenBraceClose)
				return false
			}
			loc = p.tok.Location

			switch {
			case sym.ID == fx.InvalidID:
				// Reported during error recovery already.
				success = false
			case isShader:
				success = p.assignShader(info, &shaders, key == "pixelshader", identifier, sym, loc) && success
			default:
				success = p.assignRenderTarget(info, &shaders, target, identifier, sym, loc) && success
			}
		} else {
			var exp fx.Expression
			if !p.parseStateValue(&exp, passEnums) {
				p.consumeUntil(lexer.TokenBraceClose)
				return false
			}
			if !exp.IsConstant || !exp.Type.IsScalar() {
				success = false
				p.error(exp.Location, 3011, "pass state value must be a literal scalar expression")
			}
			exp.AddCast(fx.Scalar(fx.TypeUint))

			if !passState(info, key, exp.Constant.Uint(0)) {
				success = false
				p.error(loc, 3004, "unrecognized pass state '%s'", state)
			}
		}

		if !p.expect(lexer.TokenSemicolon) {
			p.consumeUntil(lexer.TokenBraceClose)
			return false
		}
	}

	if success {
		success = p.checkPass(info, &shaders, passLoc)
	}

	return p.expect(lexer.TokenBraceClose) && success
}

func (p *Parser) assignShader(info *fx.PassInfo, shaders *passShaders, isPixel bool, identifier string, sym Symbol, loc lexer.Location) bool {
	if sym.Kind == SymbolInvalid {
		p.error(loc, 3501, "undeclared identifier '%s', expected function name", identifier)
		return false
	}
	if !sym.Type.IsFunction() {
		p.error(loc, 3020, "type mismatch, expected function name")
		return false
	}

	fn := p.cg.FindFunction(sym.ID)
	if fn == nil {
		return false
	}
	entry := *fn
	p.cg.DefineEntryPoint(&entry, isPixel)

	if isPixel {
		shaders.ps = &entry
		info.PSEntryPoint = entry.UniqueName
	} else {
		shaders.vs = &entry
		info.VSEntryPoint = entry.UniqueName
	}
	return true
}

func (p *Parser) assignRenderTarget(info *fx.PassInfo, shaders *passShaders, index int, identifier string, sym Symbol, loc lexer.Location) bool {
	if sym.Kind == SymbolInvalid {
		p.error(loc, 3004, "undeclared identifier '%s', expected texture name", identifier)
		return false
	}
	if !sym.Type.IsTexture() {
		p.error(loc, 3020, "type mismatch, expected texture name")
		return false
	}

	target := p.cg.FindTexture(sym.ID)
	if target == nil {
		return false
	}
	target.RenderTarget = true

	success := true
	if info.ViewportWidth != 0 && info.ViewportHeight != 0 && (target.Width != info.ViewportWidth || target.Height != info.ViewportHeight) {
		success = false
		p.error(loc, 4545, "cannot use multiple render targets with different texture dimensions (is %dx%d, but expected %dx%d)",
			target.Width, target.Height, info.ViewportWidth, info.ViewportHeight)
	}

	info.ViewportWidth = target.Width
	info.ViewportHeight = target.Height
	info.RenderTargetNames[index] = target.UniqueName

	// Only RGBA8 supports sRGB writes on every API.
	if target.Format != fx.FormatRGBA8 {
		shaders.targetsSupportSRGB = false
	}
	return success
}

// checkPass verifies that a pixel shader is set and, when the pass also has
// a vertex shader, that the pixel shader inputs line up with its outputs.
func (p *Parser) checkPass(info *fx.PassInfo, shaders *passShaders, loc lexer.Location) bool {
	if shaders.ps == nil {
		p.error(loc, 3012, "pass is missing 'PixelShader' property")
		return false
	}

	success := true
	vs, ps := shaders.vs, shaders.ps

	checkSignature := func(fn *fx.FunctionInfo, outputs map[string]fx.Type) {
		if fn.ReturnSemantic == "" {
			if !fn.ReturnType.IsVoid() && !fn.ReturnType.IsStruct() {
				success = false
				p.error(loc, 3503, "'%s': function return value is missing semantics", fn.Name)
			}
		} else if outputs != nil {
			outputs[fn.ReturnSemantic] = fn.ReturnType
		}

		for _, param := range fn.Parameters {
			switch {
			case param.Semantic == "":
				if param.Type.IsStruct() {
					continue
				}
				success = false
				if param.Type.Has(fx.QualifierIn) {
					p.error(loc, 3502, "'%s': input parameter '%s' is missing semantics", fn.Name, param.Name)
				} else {
					p.error(loc, 3503, "'%s': output parameter '%s' is missing semantics", fn.Name, param.Name)
				}
			case outputs != nil && param.Type.Has(fx.QualifierOut):
				outputs[param.Semantic] = param.Type
			}
		}
	}

	checkSignature(ps, nil)
	if vs != nil {
		vsOutputs := make(map[string]fx.Type)
		checkSignature(vs, vsOutputs)

		for _, param := range ps.Parameters {
			if param.Semantic == "" || !param.Type.Has(fx.QualifierIn) {
				continue
			}
			out, ok := vsOutputs[param.Semantic]
			switch {
			case !ok || !out.Equal(param.Type):
				p.warning(loc, 4576, "'%s': input parameter '%s' semantic does not match vertex shader one", ps.Name, param.Name)
			case (out.Qualifiers^param.Type.Qualifiers)&fx.InterpolationMask != 0:
				success = false
				p.error(loc, 4568, "'%s': input parameter '%s' interpolation qualifiers do not match vertex shader ones", ps.Name, param.Name)
			}
		}
	}

	if info.SRGBWriteEnable && !shaders.targetsSupportSRGB {
		success = false
		p.error(loc, 4582, "one or more render target(s) do not support sRGB writes (only textures with RGBA8 format do)")
	}
	return success
}
