// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"

	"github.com/gogpu/reshadefx/fx"
)

// naming selects how namer.define treats a name.
type naming uint8

const (
	// namingGeneral escapes the name and appends the id when it is taken.
	namingGeneral naming = iota
	// namingUnique escapes the name. The parser guarantees uniqueness.
	namingUnique
	// namingExpression stores inline code that is substituted on every use.
	namingExpression
)

// namer maps ids to the identifiers or inline expressions written for them.
type namer struct {
	names map[fx.ID]string
	used  map[string]struct{}
}

func newNamer() *namer {
	return &namer{
		names: make(map[fx.ID]string),
		used:  make(map[string]struct{}),
	}
}

// name returns the text written for id. Ids without a name use "_<id>".
func (n *namer) name(id fx.ID) string {
	if name, ok := n.names[id]; ok {
		return name
	}
	return "_" + strconv.FormatUint(uint64(id), 10)
}

// define assigns name to id. Names with a leading underscore are ignored
// so they cannot clash with generated ones.
func (n *namer) define(id fx.ID, name string, mode naming) {
	if name == "" {
		return
	}
	if mode != namingExpression {
		if name[0] == '_' {
			return
		}
		name = escapeName(name)
		if _, ok := n.used[name]; ok && mode == namingGeneral {
			name += "_" + strconv.FormatUint(uint64(id), 10)
		}
		n.used[name] = struct{}{}
	}
	n.names[id] = name
}

// isUsed reports whether an identifier was handed out.
func (n *namer) isUsed(name string) bool {
	_, ok := n.used[name]
	return ok
}
