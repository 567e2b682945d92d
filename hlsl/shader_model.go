// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedShaderModel is returned for shader models the code
// generator cannot target.
var ErrUnsupportedShaderModel = errors.New("hlsl: unsupported shader model")

// ShaderModel is a Direct3D shader model, stored as major*10+minor.
type ShaderModel uint8

// Supported shader models.
const (
	// ShaderModel4_0 is the Direct3D 10 feature set.
	ShaderModel4_0 ShaderModel = 40

	// ShaderModel4_1 is the Direct3D 10.1 feature set.
	ShaderModel4_1 ShaderModel = 41

	// ShaderModel5_0 is the Direct3D 11 feature set and adds texture
	// gather for every channel.
	ShaderModel5_0 ShaderModel = 50
)

// ParseShaderModel parses "5.0", "5_0", "50" and the same forms with an
// "sm" prefix.
func ParseShaderModel(s string) (ShaderModel, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "sm")
	v = strings.NewReplacer(".", "", "_", "", " ", "").Replace(v)
	switch v {
	case "40", "4":
		return ShaderModel4_0, nil
	case "41":
		return ShaderModel4_1, nil
	case "50", "5":
		return ShaderModel5_0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedShaderModel, s)
}

// String returns a human-readable representation, e.g. "SM 5.0".
func (sm ShaderModel) String() string {
	return fmt.Sprintf("SM %d.%d", sm.Major(), sm.Minor())
}

// ProfileSuffix returns the suffix of compiler profiles, e.g. "5_0".
func (sm ShaderModel) ProfileSuffix() string {
	return fmt.Sprintf("%d_%d", sm.Major(), sm.Minor())
}

// Profile returns the compiler profile of a stage, e.g. "ps_5_0".
func (sm ShaderModel) Profile(isPixelShader bool) string {
	if isPixelShader {
		return "ps_" + sm.ProfileSuffix()
	}
	return "vs_" + sm.ProfileSuffix()
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 { return uint8(sm) / 10 }

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 { return uint8(sm) % 10 }

// IsSupported reports whether the code generator can target sm.
func (sm ShaderModel) IsSupported() bool {
	switch sm {
	case ShaderModel4_0, ShaderModel4_1, ShaderModel5_0:
		return true
	}
	return false
}

// SupportsGather reports whether GatherRed and its siblings are available.
// Shader model 4.1 only gathers single channel formats.
func (sm ShaderModel) SupportsGather() bool { return sm >= ShaderModel5_0 }

// SupportsMad reports whether mad and rcp are intrinsics.
func (sm ShaderModel) SupportsMad() bool { return sm >= ShaderModel5_0 }
