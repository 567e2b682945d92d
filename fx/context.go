package fx

// Context holds the state every code generator shares: the module being
// filled, struct and function tables, the id counter and the current block.
// Back ends embed it and override IsInFunction where blocks outlive
// functions.
type Context struct {
	Module    Module
	Structs   []StructInfo
	Functions []*FunctionInfo

	NextID       ID
	LastBlock    ID
	CurrentBlock ID
}

// NewContext returns a context whose first id is 1.
func NewContext() Context {
	return Context{NextID: 1}
}

// MakeID returns a fresh SSA id.
func (c *Context) MakeID() ID {
	id := c.NextID
	c.NextID++
	return id
}

func (c *Context) IsInBlock() bool    { return c.CurrentBlock != 0 }
func (c *Context) IsInFunction() bool { return c.IsInBlock() }
func (c *Context) CreateBlock() ID    { return c.MakeID() }

// DefineTechnique appends a technique in declaration order.
func (c *Context) DefineTechnique(info TechniqueInfo) {
	c.Module.Techniques = append(c.Module.Techniques, info)
}

// FindStruct returns the struct defined with id, or nil.
func (c *Context) FindStruct(id ID) *StructInfo {
	for i := range c.Structs {
		if c.Structs[i].Definition == id {
			return &c.Structs[i]
		}
	}
	return nil
}

// FindTexture returns the texture bound to id, or nil.
func (c *Context) FindTexture(id ID) *TextureInfo {
	for i := range c.Module.Textures {
		if c.Module.Textures[i].ID == id {
			return &c.Module.Textures[i]
		}
	}
	return nil
}

// FindFunction returns the function defined with id, or nil.
func (c *Context) FindFunction(id ID) *FunctionInfo {
	for _, fn := range c.Functions {
		if fn.Definition == id {
			return fn
		}
	}
	return nil
}

// AlignUp rounds size up to a power of two alignment.
func AlignUp(size, alignment uint32) uint32 {
	alignment--
	return (size + alignment) &^ alignment
}

// AlignUpArray returns the size of n elements of size bytes where every
// element but the last is padded to alignment.
func AlignUpArray(size, alignment, n uint32) uint32 {
	return AlignUp(size, alignment)*(n-1) + size
}
