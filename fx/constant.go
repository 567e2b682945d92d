package fx

import "math"

// Constant is a compile-time value of up to sixteen 32-bit lanes. Lanes are
// reinterpreted as int, uint or float depending on the owning Type. Matrix
// lanes are stored row by row without padding. Array constants keep one
// Constant per element in Array.
type Constant struct {
	Lanes  [16]uint32
	String string
	Array  []Constant
}

func (c *Constant) Uint(i int) uint32         { return c.Lanes[i] }
func (c *Constant) Int(i int) int32           { return int32(c.Lanes[i]) }
func (c *Constant) Float(i int) float32       { return math.Float32frombits(c.Lanes[i]) }
func (c *Constant) SetUint(i int, v uint32)   { c.Lanes[i] = v }
func (c *Constant) SetInt(i int, v int32)     { c.Lanes[i] = uint32(v) }
func (c *Constant) SetFloat(i int, v float32) { c.Lanes[i] = math.Float32bits(v) }

// Clone returns a deep copy so array elements can be modified independently.
func (c Constant) Clone() Constant {
	if c.Array != nil {
		elements := make([]Constant, len(c.Array))
		for i := range c.Array {
			elements[i] = c.Array[i].Clone()
		}
		c.Array = elements
	}
	return c
}

// IsZero reports whether every lane and every array element is zero.
func (c *Constant) IsZero() bool {
	for _, lane := range c.Lanes {
		if lane != 0 {
			return false
		}
	}
	for i := range c.Array {
		if !c.Array[i].IsZero() {
			return false
		}
	}
	return c.String == ""
}

func boolLane(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// convertConstant rewrites the lanes of c from one numeric type to another.
func convertConstant(c *Constant, from, to Type) {
	if from.IsScalar() && !to.IsScalar() {
		for i := 1; i < int(to.Components()); i++ {
			c.Lanes[i] = c.Lanes[0]
		}
	}

	n := int(to.Components())
	switch {
	case to.IsBoolean():
		for i := 0; i < n; i++ {
			if from.IsFloatingPoint() {
				c.Lanes[i] = boolLane(c.Float(i) != 0)
			} else {
				c.Lanes[i] = boolLane(c.Lanes[i] != 0)
			}
		}
	case from.IsFloatingPoint() == to.IsFloatingPoint():
		// int and uint share a bit pattern
	case to.IsFloatingPoint():
		for i := 0; i < n; i++ {
			if from.Base == TypeUint {
				c.SetFloat(i, float32(c.Lanes[i]))
			} else {
				c.SetFloat(i, float32(c.Int(i)))
			}
		}
	default:
		for i := 0; i < n; i++ {
			if to.Base == TypeUint {
				c.Lanes[i] = floatToUint(c.Float(i))
			} else {
				c.SetInt(i, floatToInt(c.Float(i)))
			}
		}
	}
}

func floatToInt(f float32) int32 {
	switch {
	case math.IsNaN(float64(f)):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func floatToUint(f float32) uint32 {
	switch {
	case math.IsNaN(float64(f)) || f <= 0:
		return uint32(floatToInt(f))
	case f >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(f)
}
