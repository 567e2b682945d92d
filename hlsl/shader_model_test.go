// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"testing"
)

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		name string
		sm   ShaderModel
		want string
	}{
		{"SM 4.0", ShaderModel4_0, "SM 4.0"},
		{"SM 4.1", ShaderModel4_1, "SM 4.1"},
		{"SM 5.0", ShaderModel5_0, "SM 5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sm.String()
			if got != tt.want {
				t.Errorf("ShaderModel.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShaderModel_Profile(t *testing.T) {
	tests := []struct {
		name  string
		sm    ShaderModel
		pixel bool
		want  string
	}{
		{"vs 4.0", ShaderModel4_0, false, "vs_4_0"},
		{"ps 4.1", ShaderModel4_1, true, "ps_4_1"},
		{"ps 5.0", ShaderModel5_0, true, "ps_5_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sm.Profile(tt.pixel)
			if got != tt.want {
				t.Errorf("ShaderModel.Profile(%v) = %q, want %q", tt.pixel, got, tt.want)
			}
		})
	}
}

func TestShaderModel_Features(t *testing.T) {
	tests := []struct {
		sm        ShaderModel
		supported bool
		gather    bool
	}{
		{30, false, false},
		{ShaderModel4_0, true, false},
		{ShaderModel4_1, true, false},
		{ShaderModel5_0, true, true},
		{51, false, true},
	}

	for _, tt := range tests {
		if got := tt.sm.IsSupported(); got != tt.supported {
			t.Errorf("%s.IsSupported() = %v, want %v", tt.sm, got, tt.supported)
		}
		if got := tt.sm.SupportsGather(); got != tt.gather {
			t.Errorf("%s.SupportsGather() = %v, want %v", tt.sm, got, tt.gather)
		}
	}
}

func TestParseShaderModel(t *testing.T) {
	tests := []struct {
		in      string
		want    ShaderModel
		wantErr bool
	}{
		{"5.0", ShaderModel5_0, false},
		{"5_0", ShaderModel5_0, false},
		{"sm50", ShaderModel5_0, false},
		{"SM 4.1", ShaderModel4_1, false},
		{"4", ShaderModel4_0, false},
		{"3.0", 0, true},
		{"6.0", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShaderModel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedShaderModel) {
					t.Errorf("ParseShaderModel(%q) error = %v, want ErrUnsupportedShaderModel", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseShaderModel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}
