package spirv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// SPIR-V magic number and generator constants.
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// Errors returned when decoding a word stream.
var (
	ErrInvalidMagic = errors.New("spirv: invalid magic number")
	ErrTruncated    = errors.New("spirv: truncated module")
)

// Instruction is a single SPIR-V instruction. Type and Result are zero for
// instructions that have no result type or result id.
type Instruction struct {
	Op       OpCode
	Type     uint32
	Result   uint32
	Operands []uint32
}

// Add appends operand words.
func (i *Instruction) Add(words ...uint32) *Instruction {
	i.Operands = append(i.Operands, words...)
	return i
}

// AddString appends a null-terminated UTF-8 string padded to a word boundary.
func (i *Instruction) AddString(s string) *Instruction {
	i.Operands = appendString(i.Operands, s)
	return i
}

func appendString(words []uint32, s string) []uint32 {
	bytes := append([]byte(s), 0)

	// Pad to word boundary
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	for i := 0; i < len(bytes); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(bytes[i:]))
	}
	return words
}

// DecodeString reads a null-terminated string from words and returns it with
// the number of words it occupied.
func DecodeString(words []uint32) (string, int) {
	var b []byte
	for n, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b), n + 1
			}
			b = append(b, c)
		}
	}
	return string(b), len(words)
}

// WordCount returns the encoded length of the instruction in words.
func (i *Instruction) WordCount() int {
	n := 1 + len(i.Operands)
	if i.Type != 0 {
		n++
	}
	if i.Result != 0 {
		n++
	}
	return n
}

// Encode appends the binary form of the instruction to dst.
func (i *Instruction) Encode(dst []uint32) []uint32 {
	dst = append(dst, uint32(i.WordCount())<<16|uint32(i.Op))
	if i.Type != 0 {
		dst = append(dst, i.Type)
	}
	if i.Result != 0 {
		dst = append(dst, i.Result)
	}
	return append(dst, i.Operands...)
}

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_5 = Version{1, 5}
)

// Word returns the version in header format.
func (v Version) Word() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8
}

// VersionFromWord is the inverse of Version.Word.
func VersionFromWord(w uint32) Version {
	return Version{Major: uint8(w >> 16), Minor: uint8(w >> 8)}
}

// Header is the five word module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Assemble writes the header followed by every section in order.
func Assemble(h Header, sections ...[]Instruction) []uint32 {
	total := 5
	for _, section := range sections {
		for i := range section {
			total += section[i].WordCount()
		}
	}

	words := make([]uint32, 0, total)
	words = append(words, MagicNumber, h.Version.Word(), h.Generator, h.Bound, h.Schema)
	for _, section := range sections {
		for i := range section {
			words = section[i].Encode(words)
		}
	}
	return words
}

// Decode splits a word stream into its header and instructions. Result type
// and result ids are separated for opcodes the package knows; other opcodes
// keep every word as an operand.
func Decode(words []uint32) (Header, []Instruction, error) {
	if len(words) < 5 {
		return Header{}, nil, ErrTruncated
	}
	if words[0] != MagicNumber {
		return Header{}, nil, fmt.Errorf("%w: %#08x", ErrInvalidMagic, words[0])
	}

	h := Header{
		Version:   VersionFromWord(words[1]),
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}

	var instructions []Instruction
	for offset := 5; offset < len(words); {
		count := int(words[offset] >> 16)
		if count == 0 || offset+count > len(words) {
			return h, instructions, fmt.Errorf("%w: instruction at word %d", ErrTruncated, offset)
		}

		inst := Instruction{Op: OpCode(words[offset] & 0xFFFF)}
		operands := words[offset+1 : offset+count]
		if inst.Op.HasResultType() && len(operands) > 0 {
			inst.Type, operands = operands[0], operands[1:]
		}
		if inst.Op.HasResult() && len(operands) > 0 {
			inst.Result, operands = operands[0], operands[1:]
		}
		inst.Operands = slices.Clone(operands)

		instructions = append(instructions, inst)
		offset += count
	}
	return h, instructions, nil
}

// Bytes serializes words in little-endian byte order.
func Bytes(words []uint32) []byte {
	buffer := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buffer[i*4:], w)
	}
	return buffer
}

// Words parses a little-endian byte stream into words.
func Words(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of 4", ErrTruncated, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// moduleBuilder keeps the persistent module sections in layout order.
type moduleBuilder struct {
	capabilities   []Capability
	extensions     []string
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction // OpString
	debugNames     []Instruction // OpName, OpMemberName
	annotations    []Instruction // OpDecorate, OpMemberDecorate
	types          []Instruction // OpType*, OpConstant*
	globals        []Instruction // OpVariable (global)
}

// addCapability records a capability once.
func (b *moduleBuilder) addCapability(capability Capability) {
	if !slices.Contains(b.capabilities, capability) {
		b.capabilities = append(b.capabilities, capability)
	}
}

func (b *moduleBuilder) addExtension(name string) {
	if !slices.Contains(b.extensions, name) {
		b.extensions = append(b.extensions, name)
	}
}

// build returns the module words. glslExt is the id of the GLSL.std.450
// import; functions holds the already flattened function code.
func (b *moduleBuilder) build(bound, glslExt uint32, debug bool, functions []Instruction) []uint32 {
	var preamble []Instruction

	preamble = append(preamble, Instruction{Op: OpCapability, Operands: []uint32{uint32(CapabilityShader)}})
	for _, capability := range b.capabilities {
		preamble = append(preamble, Instruction{Op: OpCapability, Operands: []uint32{uint32(capability)}})
	}
	for _, name := range b.extensions {
		ext := Instruction{Op: OpExtension}
		preamble = append(preamble, *ext.AddString(name))
	}

	ext := Instruction{Op: OpExtInstImport, Result: glslExt}
	preamble = append(preamble, *ext.AddString("GLSL.std.450"))
	preamble = append(preamble, Instruction{Op: OpMemoryModel, Operands: []uint32{uint32(AddressingModelLogical), uint32(MemoryModelGLSL450)}})

	source := []Instruction{{Op: OpSource, Operands: []uint32{uint32(SourceLanguageUnknown), 0}}}

	sections := [][]Instruction{preamble, b.entryPoints, b.executionModes, source}
	if debug {
		sections = append(sections, b.debugStrings, b.debugNames)
	}
	sections = append(sections, b.annotations, b.types, b.globals, functions)

	return Assemble(Header{Version: Version1_3, Generator: GeneratorID, Bound: bound}, sections...)
}
