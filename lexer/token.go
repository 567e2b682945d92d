// Package lexer turns FX effect source text into located tokens.
//
// The lexer is independent of macros: the preprocessor drives it with
// whitespace and directives preserved, the parser drives it over the
// preprocessed output with whitespace skipped.
package lexer

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenEndOfLine
	TokenSpace
	TokenUnknown

	// Punctuation
	TokenExclaim      // !
	TokenHash         // #
	TokenDollar       // $
	TokenPercent      // %
	TokenAmpersand    // &
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenStar         // *
	TokenPlus         // +
	TokenComma        // ,
	TokenMinus        // -
	TokenDot          // .
	TokenSlash        // /
	TokenColon        // :
	TokenSemicolon    // ;
	TokenLess         // <
	TokenEqual        // =
	TokenGreater      // >
	TokenQuestion     // ?
	TokenAt           // @
	TokenBracketOpen  // [
	TokenBackslash    // \
	TokenBracketClose // ]
	TokenCaret        // ^
	TokenBraceOpen    // {
	TokenPipe         // |
	TokenBraceClose   // }
	TokenTilde        // ~

	// Operators
	TokenExclaimEqual        // !=
	TokenPercentEqual        // %=
	TokenAmpersandAmpersand  // &&
	TokenAmpersandEqual      // &=
	TokenStarEqual           // *=
	TokenPlusPlus            // ++
	TokenPlusEqual           // +=
	TokenMinusMinus          // --
	TokenMinusEqual          // -=
	TokenArrow               // ->
	TokenEllipsis            // ...
	TokenSlashEqual          // /=
	TokenColonColon          // ::
	TokenLessLessEqual       // <<=
	TokenLessLess            // <<
	TokenLessEqual           // <=
	TokenEqualEqual          // ==
	TokenGreaterGreaterEqual // >>=
	TokenGreaterGreater      // >>
	TokenGreaterEqual        // >=
	TokenCaretEqual          // ^=
	TokenPipeEqual           // |=
	TokenPipePipe            // ||

	// Literals
	TokenIdentifier
	TokenReserved
	TokenTrueLiteral
	TokenFalseLiteral
	TokenIntLiteral
	TokenUintLiteral
	TokenFloatLiteral
	TokenDoubleLiteral
	TokenStringLiteral

	// Keywords
	TokenNamespace
	TokenStruct
	TokenTechnique
	TokenPass
	TokenFor
	TokenWhile
	TokenDo
	TokenIf
	TokenElse
	TokenSwitch
	TokenCase
	TokenDefault
	TokenBreak
	TokenContinue
	TokenReturn
	TokenDiscard
	TokenExtern
	TokenStatic
	TokenUniform
	TokenVolatile
	TokenPrecise
	TokenIn
	TokenOut
	TokenInout
	TokenConst
	TokenLinear
	TokenNoperspective
	TokenCentroid
	TokenNointerpolation

	// Type keywords
	TokenVoid
	TokenBool
	TokenBool2
	TokenBool3
	TokenBool4
	TokenBool2x2
	TokenBool3x3
	TokenBool4x4
	TokenInt
	TokenInt2
	TokenInt3
	TokenInt4
	TokenInt2x2
	TokenInt3x3
	TokenInt4x4
	TokenUint
	TokenUint2
	TokenUint3
	TokenUint4
	TokenUint2x2
	TokenUint3x3
	TokenUint4x4
	TokenFloat
	TokenFloat2
	TokenFloat3
	TokenFloat4
	TokenFloat2x2
	TokenFloat3x3
	TokenFloat4x4
	TokenVector
	TokenMatrix
	TokenString
	TokenTexture
	TokenSampler

	// Preprocessor directives
	TokenHashDefine
	TokenHashUndef
	TokenHashIf
	TokenHashIfdef
	TokenHashIfndef
	TokenHashElse
	TokenHashElif
	TokenHashEndif
	TokenHashError
	TokenHashWarning
	TokenHashPragma
	TokenHashInclude
	TokenHashUnknown
)

var tokenNames = map[TokenKind]string{
	TokenEOF:                 "end of file",
	TokenEndOfLine:           "end of line",
	TokenSpace:               "space",
	TokenExclaim:             "!",
	TokenHash:                "#",
	TokenDollar:              "$",
	TokenPercent:             "%",
	TokenAmpersand:           "&",
	TokenParenOpen:           "(",
	TokenParenClose:          ")",
	TokenStar:                "*",
	TokenPlus:                "+",
	TokenComma:               ",",
	TokenMinus:               "-",
	TokenDot:                 ".",
	TokenSlash:               "/",
	TokenColon:               ":",
	TokenSemicolon:           ";",
	TokenLess:                "<",
	TokenEqual:               "=",
	TokenGreater:             ">",
	TokenQuestion:            "?",
	TokenAt:                  "@",
	TokenBracketOpen:         "[",
	TokenBackslash:           "\\",
	TokenBracketClose:        "]",
	TokenCaret:               "^",
	TokenBraceOpen:           "{",
	TokenPipe:                "|",
	TokenBraceClose:          "}",
	TokenTilde:               "~",
	TokenExclaimEqual:        "!=",
	TokenPercentEqual:        "%=",
	TokenAmpersandAmpersand:  "&&",
	TokenAmpersandEqual:      "&=",
	TokenStarEqual:           "*=",
	TokenPlusPlus:            "++",
	TokenPlusEqual:           "+=",
	TokenMinusMinus:          "--",
	TokenMinusEqual:          "-=",
	TokenArrow:               "->",
	TokenEllipsis:            "...",
	TokenSlashEqual:          "/=",
	TokenColonColon:          "::",
	TokenLessLessEqual:       "<<=",
	TokenLessLess:            "<<",
	TokenLessEqual:           "<=",
	TokenEqualEqual:          "==",
	TokenGreaterGreaterEqual: ">>=",
	TokenGreaterGreater:      ">>",
	TokenGreaterEqual:        ">=",
	TokenCaretEqual:          "^=",
	TokenPipeEqual:           "|=",
	TokenPipePipe:            "||",
	TokenIdentifier:          "identifier",
	TokenReserved:            "reserved word",
	TokenTrueLiteral:         "true",
	TokenFalseLiteral:        "false",
	TokenIntLiteral:          "integral literal",
	TokenUintLiteral:         "integral literal",
	TokenFloatLiteral:        "floating point literal",
	TokenDoubleLiteral:       "floating point literal",
	TokenStringLiteral:       "string literal",
	TokenNamespace:           "namespace",
	TokenStruct:              "struct",
	TokenTechnique:           "technique",
	TokenPass:                "pass",
	TokenFor:                 "for",
	TokenWhile:               "while",
	TokenDo:                  "do",
	TokenIf:                  "if",
	TokenElse:                "else",
	TokenSwitch:              "switch",
	TokenCase:                "case",
	TokenDefault:             "default",
	TokenBreak:               "break",
	TokenContinue:            "continue",
	TokenReturn:              "return",
	TokenDiscard:             "discard",
	TokenExtern:              "extern",
	TokenStatic:              "static",
	TokenUniform:             "uniform",
	TokenVolatile:            "volatile",
	TokenPrecise:             "precise",
	TokenIn:                  "in",
	TokenOut:                 "out",
	TokenInout:               "inout",
	TokenConst:               "const",
	TokenLinear:              "linear",
	TokenNoperspective:       "noperspective",
	TokenCentroid:            "centroid",
	TokenNointerpolation:     "nointerpolation",
	TokenVoid:                "void",
	TokenBool:                "bool",
	TokenBool2:               "bool2",
	TokenBool3:               "bool3",
	TokenBool4:               "bool4",
	TokenBool2x2:             "bool2x2",
	TokenBool3x3:             "bool3x3",
	TokenBool4x4:             "bool4x4",
	TokenInt:                 "int",
	TokenInt2:                "int2",
	TokenInt3:                "int3",
	TokenInt4:                "int4",
	TokenInt2x2:              "int2x2",
	TokenInt3x3:              "int3x3",
	TokenInt4x4:              "int4x4",
	TokenUint:                "uint",
	TokenUint2:               "uint2",
	TokenUint3:               "uint3",
	TokenUint4:               "uint4",
	TokenUint2x2:             "uint2x2",
	TokenUint3x3:             "uint3x3",
	TokenUint4x4:             "uint4x4",
	TokenFloat:               "float",
	TokenFloat2:              "float2",
	TokenFloat3:              "float3",
	TokenFloat4:              "float4",
	TokenFloat2x2:            "float2x2",
	TokenFloat3x3:            "float3x3",
	TokenFloat4x4:            "float4x4",
	TokenVector:              "vector",
	TokenMatrix:              "matrix",
	TokenString:              "string",
	TokenTexture:             "texture",
	TokenSampler:             "sampler",
}

// String returns the human readable name used in diagnostics.
func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsLiteral reports whether the kind is a numeric or boolean literal.
func (k TokenKind) IsLiteral() bool {
	return k >= TokenTrueLiteral && k <= TokenDoubleLiteral
}

// Location identifies a position in a named source.
type Location struct {
	Source string
	Line   int
	Column int
}

// String formats the location the way diagnostics print it.
func (l Location) String() string {
	return fmt.Sprintf("%s(%d, %d)", l.Source, l.Line, l.Column)
}

// Token represents a lexical token.
type Token struct {
	Kind     TokenKind
	Location Location
	Offset   int
	Length   int

	// Literal payload. Integer literals fill both Int and Uint.
	Int     int32
	Uint    uint32
	Float   float32
	Double  float64
	Literal string
}
