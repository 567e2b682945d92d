package spirv

// Options configures SPIR-V generation.
type Options struct {
	// VulkanSemantics maps SV_VERTEXID to VertexIndex instead of VertexId.
	VulkanSemantics bool

	// DebugInfo emits OpString, OpLine and OpName instructions.
	DebugInfo bool

	// UniformsToSpecConstants turns scalar uniforms with an initializer
	// into specialization constants.
	UniformsToSpecConstants bool

	// InvertY negates the y component of vertex shader position outputs.
	InvertY bool
}

// DefaultOptions returns the options used for Vulkan targets.
func DefaultOptions() Options {
	return Options{
		VulkanSemantics: true,
		InvertY:         true,
	}
}
