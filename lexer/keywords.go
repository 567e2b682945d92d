package lexer

// keywords maps reserved identifiers to their token kind. Words reserved for
// future use map to TokenReserved so the parser can reject them by name.
var keywords = map[string]TokenKind{
	"asm":                  TokenReserved,
	"asm_fragment":         TokenReserved,
	"auto":                 TokenReserved,
	"bool":                 TokenBool,
	"bool2":                TokenBool2,
	"bool2x2":              TokenBool2x2,
	"bool3":                TokenBool3,
	"bool3x3":              TokenBool3x3,
	"bool4":                TokenBool4,
	"bool4x4":              TokenBool4x4,
	"break":                TokenBreak,
	"case":                 TokenCase,
	"cast":                 TokenReserved,
	"catch":                TokenReserved,
	"centroid":             TokenCentroid,
	"char":                 TokenReserved,
	"class":                TokenReserved,
	"column_major":         TokenReserved,
	"compile":              TokenReserved,
	"const":                TokenConst,
	"const_cast":           TokenReserved,
	"continue":             TokenContinue,
	"default":              TokenDefault,
	"delete":               TokenReserved,
	"discard":              TokenDiscard,
	"do":                   TokenDo,
	"double":               TokenReserved,
	"dword":                TokenUint,
	"dword2":               TokenUint2,
	"dword2x2":             TokenUint2x2,
	"dword3":               TokenUint3,
	"dword3x3":             TokenUint3x3,
	"dword4":               TokenUint4,
	"dword4x4":             TokenUint4x4,
	"dynamic_cast":         TokenReserved,
	"else":                 TokenElse,
	"enum":                 TokenReserved,
	"explicit":             TokenReserved,
	"extern":               TokenExtern,
	"external":             TokenReserved,
	"false":                TokenFalseLiteral,
	"FALSE":                TokenFalseLiteral,
	"float":                TokenFloat,
	"float2":               TokenFloat2,
	"float2x2":             TokenFloat2x2,
	"float3":               TokenFloat3,
	"float3x3":             TokenFloat3x3,
	"float4":               TokenFloat4,
	"float4x4":             TokenFloat4x4,
	"for":                  TokenFor,
	"foreach":              TokenReserved,
	"friend":               TokenReserved,
	"globallycoherent":     TokenReserved,
	"goto":                 TokenReserved,
	"groupshared":          TokenReserved,
	"half":                 TokenReserved,
	"half2":                TokenReserved,
	"half2x2":              TokenReserved,
	"half3":                TokenReserved,
	"half3x3":              TokenReserved,
	"half4":                TokenReserved,
	"half4x4":              TokenReserved,
	"if":                   TokenIf,
	"in":                   TokenIn,
	"inline":               TokenReserved,
	"inout":                TokenInout,
	"int":                  TokenInt,
	"int2":                 TokenInt2,
	"int2x2":               TokenInt2x2,
	"int3":                 TokenInt3,
	"int3x3":               TokenInt3x3,
	"int4":                 TokenInt4,
	"int4x4":               TokenInt4x4,
	"interface":            TokenReserved,
	"linear":               TokenLinear,
	"long":                 TokenReserved,
	"matrix":               TokenMatrix,
	"mutable":              TokenReserved,
	"namespace":            TokenNamespace,
	"new":                  TokenReserved,
	"noinline":             TokenReserved,
	"nointerpolation":      TokenNointerpolation,
	"noperspective":        TokenNoperspective,
	"operator":             TokenReserved,
	"out":                  TokenOut,
	"packed":               TokenReserved,
	"packoffset":           TokenReserved,
	"pass":                 TokenPass,
	"precise":              TokenPrecise,
	"private":              TokenReserved,
	"protected":            TokenReserved,
	"public":               TokenReserved,
	"register":             TokenReserved,
	"reinterpret_cast":     TokenReserved,
	"return":               TokenReturn,
	"row_major":            TokenReserved,
	"sample":               TokenReserved,
	"sampler":              TokenSampler,
	"sampler1D":            TokenSampler,
	"sampler1DArray":       TokenReserved,
	"sampler1DArrayShadow": TokenReserved,
	"sampler1DShadow":      TokenReserved,
	"sampler2D":            TokenSampler,
	"sampler2DArray":       TokenReserved,
	"sampler2DArrayShadow": TokenReserved,
	"sampler2DMS":          TokenReserved,
	"sampler2DMSArray":     TokenReserved,
	"sampler2DShadow":      TokenReserved,
	"sampler3D":            TokenSampler,
	"sampler_state":        TokenReserved,
	"samplerCUBE":          TokenReserved,
	"samplerRECT":          TokenReserved,
	"SamplerState":         TokenReserved,
	"shared":               TokenReserved,
	"short":                TokenReserved,
	"signed":               TokenReserved,
	"sizeof":               TokenReserved,
	"snorm":                TokenReserved,
	"static":               TokenStatic,
	"static_cast":          TokenReserved,
	"string":               TokenString,
	"struct":               TokenStruct,
	"switch":               TokenSwitch,
	"technique":            TokenTechnique,
	"template":             TokenReserved,
	"texture":              TokenTexture,
	"Texture1D":            TokenReserved,
	"texture1D":            TokenTexture,
	"Texture1DArray":       TokenReserved,
	"Texture2D":            TokenReserved,
	"texture2D":            TokenTexture,
	"Texture2DArray":       TokenReserved,
	"Texture2DMS":          TokenReserved,
	"Texture2DMSArray":     TokenReserved,
	"Texture3D":            TokenReserved,
	"texture3D":            TokenTexture,
	"textureCUBE":          TokenReserved,
	"TextureCube":          TokenReserved,
	"TextureCubeArray":     TokenReserved,
	"textureRECT":          TokenReserved,
	"this":                 TokenReserved,
	"true":                 TokenTrueLiteral,
	"TRUE":                 TokenTrueLiteral,
	"try":                  TokenReserved,
	"typedef":              TokenReserved,
	"uint":                 TokenUint,
	"uint2":                TokenUint2,
	"uint2x2":              TokenUint2x2,
	"uint3":                TokenUint3,
	"uint3x3":              TokenUint3x3,
	"uint4":                TokenUint4,
	"uint4x4":              TokenUint4x4,
	"uniform":              TokenUniform,
	"union":                TokenReserved,
	"unorm":                TokenReserved,
	"unsigned":             TokenReserved,
	"vector":               TokenVector,
	"virtual":              TokenReserved,
	"void":                 TokenVoid,
	"volatile":             TokenVolatile,
	"while":                TokenWhile,
}

var directives = map[string]TokenKind{
	"define":  TokenHashDefine,
	"undef":   TokenHashUndef,
	"if":      TokenHashIf,
	"ifdef":   TokenHashIfdef,
	"ifndef":  TokenHashIfndef,
	"else":    TokenHashElse,
	"elif":    TokenHashElif,
	"endif":   TokenHashEndif,
	"error":   TokenHashError,
	"warning": TokenHashWarning,
	"pragma":  TokenHashPragma,
	"include": TokenHashInclude,
}
