// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a GLSL language version. The zero value writes no #version
// directive so the host can prepend its own.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	Version430 = Version{Major: 4, Minor: 30}
	Version450 = Version{Major: 4, Minor: 50}
	Version460 = Version{Major: 4, Minor: 60}

	VersionES310 = Version{Major: 3, Minor: 10, ES: true}
	VersionES320 = Version{Major: 3, Minor: 20, ES: true}
)

// String returns the version as a #version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// IsZero reports whether no version was chosen.
func (v Version) IsZero() bool { return v.Major == 0 }

// Options configures GLSL generation.
type Options struct {
	// Version selects the #version directive. Explicit sampler and
	// uniform block bindings need 4.20 or ES 3.10.
	Version Version

	// VulkanSemantics targets GL_KHR_vulkan_glsl: SV_VERTEXID maps to
	// gl_VertexIndex and specialization constants use constant_id.
	VulkanSemantics bool

	// DebugInfo writes #line directives.
	DebugInfo bool

	// UniformsToSpecConstants turns scalar uniforms with an initializer
	// into specialization constants.
	UniformsToSpecConstants bool

	// InvertY negates gl_Position.y at the end of every vertex shader.
	InvertY bool
}

// DefaultOptions returns the options used for OpenGL targets.
func DefaultOptions() Options {
	return Options{Version: Version450}
}

// ParseVersion parses a #version value such as "450", "450 core" or
// "310 es". An empty string selects no version.
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Version{}, nil
	}
	if len(fields) > 2 {
		return Version{}, fmt.Errorf("glsl: invalid version %q", s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 100 || n > 999 {
		return Version{}, fmt.Errorf("glsl: invalid version %q", s)
	}
	v := Version{Major: uint8(n / 100), Minor: uint8(n % 100)}

	if len(fields) == 2 {
		switch fields[1] {
		case "es":
			v.ES = true
		case "core":
		default:
			return Version{}, fmt.Errorf("glsl: invalid version profile %q", fields[1])
		}
	}
	return v, nil
}
