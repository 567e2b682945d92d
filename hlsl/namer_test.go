// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestNamer_Define(t *testing.T) {
	n := newNamer()

	n.define(1, "position", namingGeneral)
	if got := n.name(1); got != "position" {
		t.Errorf("name(1) = %q, want \"position\"", got)
	}

	// A second general name gets the id appended.
	n.define(2, "position", namingGeneral)
	if got := n.name(2); got != "position_2" {
		t.Errorf("name(2) = %q, want \"position_2\"", got)
	}

	// Unique names are trusted.
	n.define(3, "F__main", namingUnique)
	if got := n.name(3); got != "F__main" {
		t.Errorf("name(3) = %q, want \"F__main\"", got)
	}
	if !n.isUsed("F__main") {
		t.Error("isUsed(\"F__main\") = false, want true")
	}
}

func TestNamer_Generated(t *testing.T) {
	n := newNamer()

	if got := n.name(7); got != "_7" {
		t.Errorf("name(7) = %q, want \"_7\"", got)
	}

	// Leading underscores are reserved for generated names.
	n.define(8, "_hidden", namingGeneral)
	if got := n.name(8); got != "_8" {
		t.Errorf("name(8) = %q, want \"_8\"", got)
	}
}

func TestNamer_Expression(t *testing.T) {
	n := newNamer()

	n.define(4, "float2(1.0, 2.0)", namingExpression)
	if got := n.name(4); got != "float2(1.0, 2.0)" {
		t.Errorf("name(4) = %q, want the expression", got)
	}
	if n.isUsed("float2(1.0, 2.0)") {
		t.Error("expressions must not reserve identifiers")
	}

	n.define(5, "pass", namingGeneral)
	if got := n.name(5); got != "pass_RESERVED" {
		t.Errorf("name(5) = %q, want \"pass_RESERVED\"", got)
	}
}
