// Package fx holds the semantic core shared by the parser and every code
// generator: types, constants, access chains, module descriptors and the
// Codegen contract.
package fx

import (
	"strconv"
	"strings"
)

// ID is an SSA identifier handed out by a code generator.
type ID = uint32

// InvalidID marks symbols inserted during error recovery.
const InvalidID ID = 0xFFFFFFFF

// BaseType is the underlying scalar or object kind of a Type.
type BaseType uint8

const (
	TypeVoid BaseType = iota
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeString
	TypeStruct
	TypeSampler
	TypeTexture
	TypeFunction
)

var baseTypeNames = [...]string{
	TypeVoid:     "void",
	TypeBool:     "bool",
	TypeInt:      "int",
	TypeUint:     "uint",
	TypeFloat:    "float",
	TypeString:   "string",
	TypeStruct:   "struct",
	TypeSampler:  "sampler2D",
	TypeTexture:  "texture2D",
	TypeFunction: "function",
}

func (b BaseType) String() string {
	if int(b) < len(baseTypeNames) {
		return baseTypeNames[b]
	}
	return "unknown"
}

// Qualifier is a bit set of storage, parameter and interpolation modifiers.
type Qualifier uint32

const (
	QualifierExtern   Qualifier = 1 << 0
	QualifierStatic   Qualifier = 1 << 1
	QualifierUniform  Qualifier = 1 << 2
	QualifierVolatile Qualifier = 1 << 3
	QualifierPrecise  Qualifier = 1 << 4
	QualifierIn       Qualifier = 1 << 5
	QualifierOut      Qualifier = 1 << 6
	QualifierInout              = QualifierIn | QualifierOut
	QualifierConst    Qualifier = 1 << 8

	QualifierLinear          Qualifier = 1 << 10
	QualifierNoperspective   Qualifier = 1 << 11
	QualifierCentroid        Qualifier = 1 << 12
	QualifierNointerpolation Qualifier = 1 << 13
)

// InterpolationMask covers the qualifiers that affect varying interpolation.
const InterpolationMask = QualifierLinear | QualifierNoperspective | QualifierCentroid | QualifierNointerpolation

// Type describes a value type. Scalars are 1x1, vectors Nx1 and matrices NxM.
// ArrayLength is 0 for non-arrays and -1 for arrays whose size is not known yet.
type Type struct {
	Base        BaseType
	Rows        uint32
	Cols        uint32
	Qualifiers  Qualifier
	ArrayLength int
	Definition  ID
}

// Scalar returns a 1x1 type of the given base.
func Scalar(base BaseType) Type { return Type{Base: base, Rows: 1, Cols: 1} }

// Vector returns an Nx1 type of the given base.
func Vector(base BaseType, n uint32) Type { return Type{Base: base, Rows: n, Cols: 1} }

// Matrix returns a rows x cols type of the given base.
func Matrix(base BaseType, rows, cols uint32) Type { return Type{Base: base, Rows: rows, Cols: cols} }

func (t Type) Has(q Qualifier) bool  { return t.Qualifiers&q == q }
func (t Type) IsArray() bool         { return t.ArrayLength != 0 }
func (t Type) IsScalar() bool        { return !t.IsArray() && !t.IsMatrix() && !t.IsVector() && t.IsNumeric() }
func (t Type) IsVector() bool        { return t.Rows > 1 && t.Cols == 1 }
func (t Type) IsMatrix() bool        { return t.Rows >= 1 && t.Cols > 1 }
func (t Type) IsSigned() bool        { return t.Base == TypeInt || t.Base == TypeFloat }
func (t Type) IsNumeric() bool       { return t.Base >= TypeBool && t.Base <= TypeFloat }
func (t Type) IsVoid() bool          { return t.Base == TypeVoid }
func (t Type) IsBoolean() bool       { return t.Base == TypeBool }
func (t Type) IsIntegral() bool      { return t.Base >= TypeBool && t.Base <= TypeUint }
func (t Type) IsFloatingPoint() bool { return t.Base == TypeFloat }
func (t Type) IsStruct() bool        { return t.Base == TypeStruct }
func (t Type) IsTexture() bool       { return t.Base == TypeTexture }
func (t Type) IsSampler() bool       { return t.Base == TypeSampler }
func (t Type) IsFunction() bool      { return t.Base == TypeFunction }
func (t Type) Components() uint32    { return t.Rows * t.Cols }

// Equal compares two types ignoring qualifiers.
func (t Type) Equal(o Type) bool {
	return t.Base == o.Base && t.Rows == o.Rows && t.Cols == o.Cols &&
		t.ArrayLength == o.ArrayLength && t.Definition == o.Definition
}

// Element returns the type with any array dimension removed.
func (t Type) Element() Type {
	t.ArrayLength = 0
	return t
}

// Description returns a human readable spelling of the type.
func (t Type) Description() string {
	var b strings.Builder
	b.WriteString(t.Base.String())
	if t.IsNumeric() {
		if t.Rows > 1 || t.Cols > 1 {
			b.WriteString(strconv.FormatUint(uint64(t.Rows), 10))
		}
		if t.Cols > 1 {
			b.WriteByte('x')
			b.WriteString(strconv.FormatUint(uint64(t.Cols), 10))
		}
	}
	if t.IsArray() {
		b.WriteByte('[')
		if t.ArrayLength > 0 {
			b.WriteString(strconv.Itoa(t.ArrayLength))
		}
		b.WriteByte(']')
	}
	return b.String()
}

// Merge returns the result type of a binary operation on lhs and rhs.
// A scalar operand is promoted to the shape of the other side, otherwise the
// larger side is truncated to the smaller one.
func Merge(lhs, rhs Type) Type {
	result := Type{Base: max(lhs.Base, rhs.Base)}

	if (lhs.Rows == 1 && lhs.Cols == 1) || (rhs.Rows == 1 && rhs.Cols == 1) {
		result.Rows = max(lhs.Rows, rhs.Rows)
		result.Cols = max(lhs.Cols, rhs.Cols)
	} else {
		result.Rows = min(lhs.Rows, rhs.Rows)
		result.Cols = min(lhs.Cols, rhs.Cols)
	}

	result.Qualifiers = (lhs.Qualifiers | rhs.Qualifiers) & QualifierPrecise

	return result
}

// Conversion ranks between numeric base types, indexed [src-1][dst-1] over
// bool, int, uint and float. Integer to float promotion ranks higher than
// float to integer, signed to unsigned higher than unsigned to signed.
var conversionRanks = [4][4]uint32{
	{5, 4, 4, 4},
	{3, 5, 2, 4},
	{3, 1, 5, 4},
	{3, 3, 3, 6},
}

// Rank scores an implicit conversion from src to dst for overload
// resolution. Higher is better; zero means the types are incompatible.
func Rank(src, dst Type) uint32 {
	if src.IsArray() != dst.IsArray() || (src.ArrayLength != dst.ArrayLength && src.ArrayLength > 0 && dst.ArrayLength > 0) {
		return 0
	}
	if src.IsStruct() || dst.IsStruct() {
		if src.Definition == dst.Definition {
			return 32
		}
		return 0
	}
	if !src.IsNumeric() || !dst.IsNumeric() {
		if src.Base == dst.Base {
			return 32
		}
		return 0
	}

	rank := conversionRanks[src.Base-1][dst.Base-1] << 2

	if src.IsScalar() && dst.IsVector() {
		return rank >> 1
	}
	if (src.IsVector() && dst.IsScalar()) || (src.IsVector() == dst.IsVector() && src.Rows > dst.Rows && src.Cols >= dst.Cols) {
		return rank >> 2
	}
	if src.IsVector() != dst.IsVector() || src.IsMatrix() != dst.IsMatrix() || src.Components() != dst.Components() {
		return 0
	}

	return rank * src.Components()
}
