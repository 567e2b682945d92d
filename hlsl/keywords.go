// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// reserved lists HLSL keywords and object types that an effect may use as
// identifiers, since the effect language does not reserve them.
var reserved = func() map[string]struct{} {
	words := `AppendStructuredBuffer BlendState Buffer ByteAddressBuffer
	ComputeShader ConsumeStructuredBuffer DepthStencilState DepthStencilView
	DomainShader GeometryShader Hullshader InputPatch LineStream OutputPatch
	PixelShader PointStream RasterizerState RenderTargetView RWBuffer
	RWByteAddressBuffer RWStructuredBuffer RWTexture1D RWTexture1DArray
	RWTexture2D RWTexture2DArray RWTexture3D SamplerComparisonState
	StructuredBuffer TriangleStream VertexShader
	cbuffer tbuffer export lineadj line point triangle triangleadj uniform
	min16float min10float min16int min12int min16uint
	globallycoherent numthreads maxvertexcount unroll loop flatten branch
	fastopt allow_uav_condition forcecase call`

	set := make(map[string]struct{})
	for _, word := range strings.Fields(words) {
		set[word] = struct{}{}
	}
	return set
}()

// isReserved reports whether name cannot be used as an HLSL identifier.
func isReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// escapeName returns an identifier the HLSL compiler accepts for name.
// The compiler rejects "pass" and "technique" in any casing, so those get
// a suffix. Other reserved words get a leading underscore.
func escapeName(name string) string {
	if strings.EqualFold(name, "pass") || strings.EqualFold(name, "technique") {
		return name + "_RESERVED"
	}
	if isReserved(name) {
		return "_" + name
	}
	return name
}
