package parser

import (
	"fmt"
	"strings"

	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

func (p *Parser) parseStruct() bool {
	loc := p.tok.Location

	var info fx.StructInfo
	if p.accept(lexer.TokenIdentifier) {
		info.Name = p.tok.Literal
	} else {
		info.Name = fmt.Sprintf("_anonymous_struct_%d_%d", loc.Line, loc.Column)
	}
	info.UniqueName = p.uniqueName('S', info.Name)

	if !p.expect(lexer.TokenBraceOpen) {
		return false
	}

	fail := func() bool {
		p.consumeUntil(lexer.TokenBraceClose)
		p.accept(lexer.TokenSemicolon)
		return false
	}

	success := true
	for !p.peek(lexer.TokenBraceClose) {
		var member fx.StructMemberInfo
		if !p.parseType(&member.Type) {
			p.error(p.next.Location, 3000, "syntax error: unexpected '%s', expected struct member type", p.next.Kind)
			return fail()
		}
		memberType := member.Type

		for count := 0; count == 0 || !p.peek(lexer.TokenSemicolon); count++ {
			if count > 0 && !p.expect(lexer.TokenComma) {
				return fail()
			}
			if !p.expect(lexer.TokenIdentifier) {
				return fail()
			}

			member.Type = memberType
			member.Name = p.tok.Literal
			member.Location = p.tok.Location
			member.Semantic = ""

			checks := []struct {
				bad     bool
				code    int
				message string
			}{
				{member.Type.IsVoid(), 3038, "struct members cannot be void"},
				{member.Type.IsStruct(), 3090, "nested struct members are not supported"},
				{member.Type.Has(fx.QualifierIn) || member.Type.Has(fx.QualifierOut), 3055, "struct members cannot be declared 'in' or 'out'"},
				{member.Type.Has(fx.QualifierConst), 3035, "struct members cannot be declared 'const'"},
				{member.Type.Has(fx.QualifierExtern), 3006, "struct members cannot be declared 'extern'"},
				{member.Type.Has(fx.QualifierUniform), 3047, "struct members cannot be declared 'uniform'"},
			}
			for _, c := range checks {
				if c.bad {
					success = false
					p.error(member.Location, c.code, "'%s': %s", member.Name, c.message)
				}
			}

			if !p.parseArraySize(&member.Type) {
				return fail()
			}
			if member.Type.ArrayLength < 0 {
				success = false
				p.error(member.Location, 3072, "'%s': array dimensions of struct members must be explicit", member.Name)
			}

			if p.accept(lexer.TokenColon) {
				if !p.expect(lexer.TokenIdentifier) {
					return fail()
				}
				member.Semantic = p.upper.String(p.tok.Literal)
			}

			info.Members = append(info.Members, member)
		}

		if !p.expect(lexer.TokenSemicolon) {
			return fail()
		}
	}

	if len(info.Members) == 0 {
		p.warning(loc, 5001, "struct has no members")
	}

	id := p.cg.DefineStruct(loc, &info)
	if !p.symbols.Insert(info.Name, Symbol{Kind: SymbolStructure, ID: id}, true) {
		p.error(loc, 3003, "redefinition of '%s'", info.Name)
		return false
	}

	return p.expect(lexer.TokenBraceClose) && success
}

func (p *Parser) parseFunction(t fx.Type, name string) bool {
	loc := p.tok.Location

	if !p.expect(lexer.TokenParenOpen) {
		return false
	}
	if t.Qualifiers != 0 {
		p.error(loc, 3047, "'%s': function return type cannot have any qualifiers", name)
		return false
	}

	info := &fx.FunctionInfo{
		Name:       name,
		UniqueName: p.uniqueName('F', name),
		ReturnType: t,
	}
	p.returnType = t

	p.symbols.EnterScope()
	defined := false
	defer func() {
		p.symbols.LeaveScope()
		if defined {
			p.cg.LeaveFunction()
		}
	}()

	success, ok := p.parseParameters(info)
	if ok && !p.expect(lexer.TokenParenClose) {
		return false
	}
	success = success && ok

	if p.accept(lexer.TokenColon) {
		if !p.expect(lexer.TokenIdentifier) {
			return false
		}
		if t.IsVoid() {
			p.error(p.tok.Location, 3076, "'%s': void function cannot have a semantic", name)
			return false
		}
		info.ReturnSemantic = p.upper.String(p.tok.Literal)
	}

	if p.accept(lexer.TokenSemicolon) {
		p.error(loc, 3510, "'%s': function is missing an implementation", name)
		return false
	}

	id := p.cg.DefineFunction(loc, info)
	defined = true

	sym := Symbol{Kind: SymbolFunction, ID: id, Type: fx.Type{Base: fx.TypeFunction}, Function: p.cg.FindFunction(id)}
	if !p.symbols.Insert(name, sym, true) {
		p.error(loc, 3003, "redefinition of '%s'", name)
		return false
	}
	for _, param := range info.Parameters {
		if !p.symbols.Insert(param.Name, Symbol{Kind: SymbolVariable, ID: param.Definition, Type: param.Type}, false) {
			p.error(param.Location, 3003, "redefinition of '%s'", param.Name)
			return false
		}
	}

	p.cg.EnterBlock(p.cg.CreateBlock())
	if !p.parseStatementBlock(false) {
		success = false
	}

	// Falling off the end returns.
	if p.cg.IsInBlock() {
		p.cg.LeaveBlockAndReturn(0)
	}
	return success
}

// parseParameters reads a parameter list up to the closing parenthesis.
// ok is false if the list was skipped after a syntax error, in which case
// the parenthesis has already been consumed.
func (p *Parser) parseParameters(info *fx.FunctionInfo) (success, ok bool) {
	success = true

	skip := func() (bool, bool) {
		p.consumeUntil(lexer.TokenParenClose)
		return false, false
	}

	for !p.peek(lexer.TokenParenClose) {
		if len(info.Parameters) > 0 && !p.expect(lexer.TokenComma) {
			return skip()
		}

		var param fx.StructMemberInfo
		if !p.parseType(&param.Type) {
			p.error(p.next.Location, 3000, "syntax error: unexpected '%s', expected parameter type", p.next.Kind)
			return skip()
		}
		if !p.expect(lexer.TokenIdentifier) {
			return skip()
		}
		param.Name = p.tok.Literal
		param.Location = p.tok.Location

		fail := func(code int, format string) {
			success = false
			p.error(param.Location, code, "'%s': "+format, param.Name)
		}
		if param.Type.IsVoid() {
			fail(3038, "function parameters cannot be void")
		}
		if param.Type.Has(fx.QualifierExtern) {
			fail(3006, "function parameters cannot be declared 'extern'")
		}
		if param.Type.Has(fx.QualifierStatic) {
			fail(3007, "function parameters cannot be declared 'static'")
		}
		if param.Type.Has(fx.QualifierUniform) {
			fail(3047, "function parameters cannot be declared 'uniform', consider placing in global scope instead")
		}
		if param.Type.Has(fx.QualifierOut) && param.Type.Has(fx.QualifierConst) {
			fail(3046, "output parameters cannot be declared 'const'")
		} else if !param.Type.Has(fx.QualifierOut) {
			param.Type.Qualifiers |= fx.QualifierIn
		}

		if !p.parseArraySize(&param.Type) {
			return skip()
		}
		if param.Type.ArrayLength < 0 {
			fail(3072, "array dimensions of function parameters must be explicit")
		}

		if p.accept(lexer.TokenColon) {
			if !p.expect(lexer.TokenIdentifier) {
				return skip()
			}
			param.Semantic = p.upper.String(p.tok.Literal)

			// Integers do not interpolate; making that explicit keeps the
			// GLSL output valid.
			if param.Type.IsIntegral() && !param.Type.Has(fx.QualifierNointerpolation) && !strings.HasPrefix(param.Semantic, "SV_") {
				param.Type.Qualifiers |= fx.QualifierNointerpolation
				p.warning(param.Location, 4568, "'%s': integer parameters have the 'nointerpolation' qualifier by default", param.Name)
			}
		}

		info.Parameters = append(info.Parameters, param)
	}
	return success, true
}

// textureEnums are the identifiers accepted as texture and sampler
// property values.
var textureEnums = map[string]uint32{
	"NONE":   0,
	"POINT":  0,
	"LINEAR": 1,
	"WRAP":   uint32(fx.AddressWrap),
	"REPEAT": uint32(fx.AddressWrap),
	"MIRROR": uint32(fx.AddressMirror),
	"CLAMP":  uint32(fx.AddressClamp),
	"BORDER": uint32(fx.AddressBorder),

	"R8":            uint32(fx.FormatR8),
	"R16F":          uint32(fx.FormatR16F),
	"R32F":          uint32(fx.FormatR32F),
	"RG8":           uint32(fx.FormatRG8),
	"R8G8":          uint32(fx.FormatRG8),
	"RG16":          uint32(fx.FormatRG16),
	"R16G16":        uint32(fx.FormatRG16),
	"RG16F":         uint32(fx.FormatRG16F),
	"R16G16F":       uint32(fx.FormatRG16F),
	"RG32F":         uint32(fx.FormatRG32F),
	"R32G32F":       uint32(fx.FormatRG32F),
	"RGBA8":         uint32(fx.FormatRGBA8),
	"R8G8B8A8":      uint32(fx.FormatRGBA8),
	"RGBA16":        uint32(fx.FormatRGBA16),
	"R16G16B16A16":  uint32(fx.FormatRGBA16),
	"RGBA16F":       uint32(fx.FormatRGBA16F),
	"R16G16B16A16F": uint32(fx.FormatRGBA16F),
	"RGBA32F":       uint32(fx.FormatRGBA32F),
	"R32G32B32A32F": uint32(fx.FormatRGBA32F),
	"RGB10A2":       uint32(fx.FormatRGB10A2),
	"R10G10B10A2":   uint32(fx.FormatRGB10A2),
}

// parseStateValue reads the value of a property or pass state. Identifiers
// found in enums become unsigned constants; anything else is parsed as an
// expression.
func (p *Parser) parseStateValue(exp *fx.Expression, enums map[string]uint32) bool {
	p.backup()
	if p.accept(lexer.TokenIdentifier) {
		if value, ok := enums[p.upper.String(p.tok.Literal)]; ok {
			exp.ResetToUint(p.tok.Location, value)
			return true
		}
		p.restore()
	}
	return p.parseExpressionMultary(exp, 0)
}

// samplerProperty applies one numeric property of a texture or sampler
// block. It returns false for unknown names.
func samplerProperty(name string, value uint32, tex *fx.TextureInfo, smp *fx.SamplerInfo) bool {
	switch name {
	case "width":
		tex.Width = max(value, 1)
	case "height":
		tex.Height = max(value, 1)
	case "miplevels":
		tex.Levels = max(value, 1)
	case "format":
		tex.Format = fx.TextureFormat(value)
	case "srgbtexture", "srgbreadenable":
		smp.SRGB = value != 0
	case "addressu":
		smp.AddressU = fx.AddressMode(value)
	case "addressv":
		smp.AddressV = fx.AddressMode(value)
	case "addressw":
		smp.AddressW = fx.AddressMode(value)
	case "minfilter":
		smp.Filter = smp.Filter&0x0F | fx.TextureFilter(value<<4)&0x30
	case "magfilter":
		smp.Filter = smp.Filter&0x33 | fx.TextureFilter(value<<2)&0x0C
	case "mipfilter":
		smp.Filter = smp.Filter&0x3C | fx.TextureFilter(value)&0x03
	case "minlod", "maxmiplevel":
		smp.MinLOD = float32(value)
	case "maxlod":
		smp.MaxLOD = float32(value)
	case "miplodbias", "mipmaplodbias":
		smp.LODBias = float32(value)
	default:
		return false
	}
	return true
}

// parseProperties reads the { Name = value; ... } block of a texture or
// sampler declaration.
func (p *Parser) parseProperties(tex *fx.TextureInfo, smp *fx.SamplerInfo) bool {
	fail := func() bool {
		p.consumeUntil(lexer.TokenBraceClose)
		return false
	}

	for !p.peek(lexer.TokenBraceClose) {
		if !p.expect(lexer.TokenIdentifier) {
			return fail()
		}
		name := p.tok.Literal
		nameLoc := p.tok.Location

		if !p.expect(lexer.TokenEqual) {
			return fail()
		}

		var exp fx.Expression
		if !p.parseStateValue(&exp, textureEnums) {
			return fail()
		}

		key := p.fold.String(name)
		if key == "texture" {
			// Placeholders from error recovery were already reported.
			if exp.Base == fx.InvalidID {
				return fail()
			}
			if !exp.Type.IsTexture() {
				p.error(exp.Location, 3020, "type mismatch, expected texture name")
				return fail()
			}
			if target := p.cg.FindTexture(exp.Base); target != nil {
				*tex = *target
				smp.TextureName = target.UniqueName
			}
		} else {
			if !exp.IsConstant || !exp.Type.IsScalar() {
				p.error(exp.Location, 3538, "value must be a literal scalar expression")
				return fail()
			}
			exp.AddCast(fx.Scalar(fx.TypeUint))
			if !samplerProperty(key, exp.Constant.Uint(0), tex, smp) {
				p.error(nameLoc, 3004, "unrecognized property '%s'", name)
				return fail()
			}
		}

		if !p.expect(lexer.TokenSemicolon) {
			return fail()
		}
	}
	return p.expect(lexer.TokenBraceClose)
}

func (p *Parser) parseVariable(t fx.Type, name string, global bool) bool {
	loc := p.tok.Location

	if t.IsVoid() {
		p.error(loc, 3038, "'%s': variables cannot be void", name)
		return false
	}
	if t.Has(fx.QualifierIn) || t.Has(fx.QualifierOut) {
		p.error(loc, 3055, "'%s': variables cannot be declared 'in' or 'out'", name)
		return false
	}

	if global {
		if t.Has(fx.QualifierStatic) {
			if t.Has(fx.QualifierUniform) {
				p.error(loc, 3007, "'%s': uniform global variables cannot be declared 'static'", name)
				return false
			}
			if t.Has(fx.QualifierVolatile) {
				p.error(loc, 3008, "'%s': global variables cannot be declared 'volatile'", name)
				return false
			}
		} else {
			if !t.Has(fx.QualifierUniform) && !t.IsTexture() && !t.IsSampler() {
				p.warning(loc, 5000, "'%s': global variables are considered 'uniform' by default", name)
			}
			// Non-static globals are set by the runtime.
			t.Qualifiers |= fx.QualifierExtern | fx.QualifierUniform
			if t.Has(fx.QualifierConst) {
				p.error(loc, 3035, "'%s': variables which are 'uniform' cannot be declared 'const'", name)
				return false
			}
		}
	} else {
		switch {
		case t.Has(fx.QualifierExtern):
			p.error(loc, 3006, "'%s': local variables cannot be declared 'extern'", name)
			return false
		case t.Has(fx.QualifierUniform):
			p.error(loc, 3047, "'%s': local variables cannot be declared 'uniform'", name)
			return false
		case t.IsTexture() || t.IsSampler():
			p.error(loc, 3038, "'%s': local variables cannot be textures or samplers", name)
			return false
		}
	}

	if !p.parseArraySize(&t) {
		return false
	}

	success := true
	var init fx.Expression
	hasInit := false
	tex := fx.NewTextureInfo()
	smp := fx.NewSamplerInfo()
	var annotations []fx.Annotation

	if p.accept(lexer.TokenColon) {
		if !p.expect(lexer.TokenIdentifier) {
			return false
		}
		if !global {
			p.error(p.tok.Location, 3043, "'%s': local variables cannot have semantics", name)
			return false
		}
		tex.Semantic = p.upper.String(p.tok.Literal)
	} else {
		if global && !p.parseAnnotations(&annotations) {
			success = false
		}

		switch {
		case p.accept(lexer.TokenEqual):
			if !p.parseExpressionAssignment(&init) {
				return false
			}
			if global && !init.IsConstant {
				p.error(init.Location, 3011, "'%s': initial value must be a literal expression", name)
				return false
			}
			if (t.ArrayLength >= 0 && init.Type.ArrayLength != t.ArrayLength) || fx.Rank(init.Type, t) == 0 {
				p.error(init.Location, 3017, "'%s': initial value (%s) does not match variable type (%s)", name, init.Type.Description(), t.Description())
				return false
			}
			if (init.Type.Rows < t.Rows || init.Type.Cols < t.Cols) && !init.Type.IsScalar() {
				p.error(init.Location, 3017, "'%s': cannot implicitly convert these vector types (from %s to %s)", name, init.Type.Description(), t.Description())
				return false
			}
			if init.Type.IsArray() {
				t.ArrayLength = init.Type.ArrayLength
			}
			p.warnTruncation(&init, t)
			init.AddCast(t)
			hasInit = true

		case t.IsNumeric() || t.IsStruct():
			if t.Has(fx.QualifierConst) {
				p.error(loc, 3012, "'%s': missing initial value", name)
				return false
			}
			if !t.Has(fx.QualifierUniform) {
				init.ResetToConstant(loc, fx.Constant{}, t)
				hasInit = true
			}

		case global && p.accept(lexer.TokenBraceOpen):
			if t.Has(fx.QualifierConst) {
				p.error(loc, 3035, "'%s': this variable type cannot be declared 'const'", name)
				return false
			}
			if !p.parseProperties(&tex, &smp) {
				return false
			}
		}
	}

	if t.ArrayLength < 0 {
		p.error(loc, 3074, "'%s': implicit array missing initial value", name)
		return false
	}

	sym := Symbol{Kind: SymbolVariable, Type: t}

	switch {
	case t.IsNumeric() && t.Has(fx.QualifierConst) && init.IsConstant:
		sym = Symbol{Kind: SymbolConstant, Type: t, Constant: init.Constant}

	case t.IsTexture():
		tex.UniqueName = p.uniqueName('V', name)
		tex.Annotations = annotations
		sym.ID = p.cg.DefineTexture(loc, &tex)

	case t.IsSampler():
		if smp.TextureName == "" {
			p.error(loc, 3012, "'%s': missing 'Texture' property", name)
			return false
		}
		if smp.SRGB && tex.Format != fx.FormatRGBA8 {
			p.error(loc, 4582, "'%s': texture does not support sRGB sampling (only textures with RGBA8 format do)", name)
			return false
		}
		smp.UniqueName = p.uniqueName('V', name)
		smp.Annotations = annotations
		sym.ID = p.cg.DefineSampler(loc, &smp)

	case t.Has(fx.QualifierUniform):
		info := fx.UniformInfo{
			Name:                name,
			Type:                t,
			Annotations:         annotations,
			HasInitializerValue: init.IsConstant,
			InitializerValue:    init.Constant,
		}
		sym.ID = p.cg.DefineUniform(loc, &info)

	default:
		unique := name
		if global {
			unique = p.uniqueName('V', name)
		}
		var value fx.ID
		if hasInit {
			value = p.cg.EmitLoad(&init, false)
		}
		sym.ID = p.cg.DefineVariable(loc, t, unique, global, value)
	}

	if !p.symbols.Insert(name, sym, global) {
		p.error(loc, 3003, "redefinition of '%s'", name)
		return false
	}
	return success
}
