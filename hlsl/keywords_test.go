// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestEscapeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "color", "color"},
		{"double underscore kept", "V__Tex", "V__Tex"},
		{"object type", "Buffer", "_Buffer"},
		{"constant buffer", "cbuffer", "_cbuffer"},
		{"primitive type", "triangle", "_triangle"},
		{"pass any case", "PASS", "PASS_RESERVED"},
		{"technique any case", "Technique", "Technique_RESERVED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeName(tt.input); got != tt.want {
				t.Errorf("escapeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsReserved(t *testing.T) {
	for _, word := range []string{"cbuffer", "PixelShader", "min16float", "numthreads"} {
		if !isReserved(word) {
			t.Errorf("isReserved(%q) = false, want true", word)
		}
	}
	for _, word := range []string{"color", "Cbuffer", "position"} {
		if isReserved(word) {
			t.Errorf("isReserved(%q) = true, want false", word)
		}
	}
}
