package fx

// UniformLayout returns the std140 size and alignment of a uniform.
// Scalars align to 4 bytes, two component vectors to 8 and wider vectors to
// 16. Matrices are stored as one 16 byte aligned row per element row, and
// every array element takes a multiple of 16 bytes.
func UniformLayout(t Type) (size, alignment uint32) {
	switch {
	case t.IsMatrix():
		size, alignment = t.Rows*16, 16
	case t.Rows == 2:
		size, alignment = 8, 8
	case t.Rows > 2:
		size, alignment = t.Rows*4, 16
	default:
		size, alignment = 4, 4
	}

	if t.IsArray() && t.ArrayLength > 0 {
		size, alignment = AlignUp(size, 16)*uint32(t.ArrayLength), 16
	}
	return size, alignment
}

// PlaceUniform assigns the offset and size of info after total bytes of
// already placed uniforms and returns the new total.
func PlaceUniform(info *UniformInfo, total uint32) uint32 {
	size, alignment := UniformLayout(info.Type)
	info.Size = size
	info.Offset = AlignUp(total, alignment)
	return info.Offset + size
}
