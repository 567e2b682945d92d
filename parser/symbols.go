package parser

import (
	"slices"
	"strings"

	"github.com/gogpu/reshadefx/fx"
)

// SymbolKind classifies an entry of the symbol table.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolConstant
	SymbolFunction
	SymbolIntrinsic
	SymbolStructure
)

// Symbol is a named entity visible to expressions.
type Symbol struct {
	Kind     SymbolKind
	ID       fx.ID
	Type     fx.Type
	Constant fx.Constant
	Function *fx.FunctionInfo

	// Intrinsic is set for SymbolIntrinsic results of ResolveCall.
	Intrinsic fx.Intrinsic
}

// Scope is a position in the namespace and block hierarchy. Name is the
// "::" separated namespace path and always ends in "::".
type Scope struct {
	Name           string
	Level          uint32
	NamespaceLevel uint32
}

var globalScope = Scope{Name: "::"}

type scopedSymbol struct {
	Symbol
	scope Scope
}

// SymbolTable resolves names through nested block scopes and namespaces.
type SymbolTable struct {
	current Scope
	symbols map[string][]scopedSymbol
}

// NewSymbolTable returns a table positioned at the global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{current: globalScope, symbols: make(map[string][]scopedSymbol)}
}

// Current returns the active scope.
func (st *SymbolTable) Current() Scope { return st.current }

// EnterScope opens a block scope.
func (st *SymbolTable) EnterScope() {
	st.current.Level++
}

// EnterNamespace opens a named namespace below the current one.
func (st *SymbolTable) EnterNamespace(name string) {
	st.current.Name += name + "::"
	st.current.Level++
	st.current.NamespaceLevel++
}

// LeaveScope closes a block scope and forgets every local declared in it.
// Namespace members survive.
func (st *SymbolTable) LeaveScope() {
	for name, list := range st.symbols {
		st.symbols[name] = slices.DeleteFunc(list, func(s scopedSymbol) bool {
			return s.scope.Level > s.scope.NamespaceLevel && s.scope.Level >= st.current.Level
		})
	}
	st.current.Level--
}

// LeaveNamespace closes the innermost namespace.
func (st *SymbolTable) LeaveNamespace() {
	name := strings.TrimSuffix(st.current.Name, "::")
	st.current.Name = name[:strings.LastIndex(name, "::")+2]
	st.current.Level--
	st.current.NamespaceLevel--
}

// Insert adds a symbol to the current scope. Global symbols are reachable
// from every enclosing namespace under their qualified name. Insert fails if
// a non-function symbol with the same name already exists in this scope.
func (st *SymbolTable) Insert(name string, sym Symbol, global bool) bool {
	if sym.Kind != SymbolFunction {
		if existing := st.Find(name, st.current, true); existing.Kind != SymbolInvalid {
			return false
		}
	}

	if !global {
		st.insertSorted(name, scopedSymbol{Symbol: sym, scope: st.current})
		return true
	}

	// Walk from the global namespace down to the current one. In each
	// namespace the symbol is known by the remaining qualified path.
	scope := Scope{}
	full := st.current.Name
	for pos := 0; pos >= 0; {
		pos += 2
		scope.Name = full[:pos]
		st.insertSorted(full[pos:]+name, scopedSymbol{Symbol: sym, scope: scope})
		scope.NamespaceLevel++
		scope.Level = scope.NamespaceLevel

		next := strings.Index(full[pos:], "::")
		if next < 0 {
			break
		}
		pos += next
	}
	return true
}

func (st *SymbolTable) insertSorted(key string, s scopedSymbol) {
	list := st.symbols[key]
	i, _ := slices.BinarySearchFunc(list, s, func(a, b scopedSymbol) int {
		if a.scope.NamespaceLevel <= b.scope.NamespaceLevel {
			return -1
		}
		return 1
	})
	st.symbols[key] = slices.Insert(list, i, s)
}

// Find looks name up starting at scope and walking outwards. With exclusive
// set only symbols declared exactly in scope match. Variables, constants and
// structures take precedence over functions of the same name.
func (st *SymbolTable) Find(name string, scope Scope, exclusive bool) Symbol {
	list := st.symbols[name]
	var result Symbol
	for i := len(list) - 1; i >= 0; i-- {
		s := &list[i]
		if s.scope.Level > scope.Level || s.scope.NamespaceLevel > scope.NamespaceLevel ||
			(s.scope.NamespaceLevel == scope.NamespaceLevel && s.scope.Name != scope.Name) {
			continue
		}
		if exclusive && s.scope.Level < scope.Level {
			continue
		}

		switch s.Kind {
		case SymbolVariable, SymbolConstant, SymbolStructure:
			return s.Symbol
		}
		if result.Kind == SymbolInvalid {
			result = s.Symbol
		}
	}
	return result
}

// compareOverloads ranks the argument conversions to two candidates. It
// returns a negative value if a is the better match, positive if b is and
// zero if both are equally good. b may be nil.
func compareOverloads(args []fx.Expression, a, b []fx.StructMemberInfo) int {
	ranksA, viableA := conversionRanks(args, a)
	if b == nil {
		if viableA {
			return -1
		}
		return 1
	}
	ranksB, viableB := conversionRanks(args, b)
	if !viableA || !viableB {
		return boolInt(viableB) - boolInt(viableA)
	}

	for i := range ranksA {
		if ranksA[i] > ranksB[i] {
			return -1
		}
		if ranksB[i] > ranksA[i] {
			return 1
		}
	}
	return 0
}

// conversionRanks returns the rank of every argument conversion sorted from
// best to worst, and false if any argument cannot be converted.
func conversionRanks(args []fx.Expression, params []fx.StructMemberInfo) ([]uint32, bool) {
	ranks := make([]uint32, len(args))
	for i := range args {
		if ranks[i] = fx.Rank(args[i].Type, params[i].Type); ranks[i] == 0 {
			return nil, false
		}
	}
	slices.SortFunc(ranks, func(x, y uint32) int { return int(y) - int(x) })
	return ranks, true
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ResolveCall picks the best overload of name for args, first among user
// functions visible from scope and then among intrinsics. ambiguous is set
// when several candidates match equally well.
func (st *SymbolTable) ResolveCall(name string, args []fx.Expression, scope Scope) (sym Symbol, ok, ambiguous bool) {
	sym.Kind = SymbolFunction

	var best []fx.StructMemberInfo
	found := false
	overloads := 0
	overloadNamespace := scope.NamespaceLevel

	list := st.symbols[name]
	for i := len(list) - 1; i >= 0; i-- {
		s := &list[i]
		if s.scope.Level > scope.Level || s.scope.NamespaceLevel > scope.NamespaceLevel || s.Kind != SymbolFunction || s.Function == nil {
			continue
		}
		fn := s.Function

		if len(fn.Parameters) == 0 {
			if len(args) != 0 {
				continue
			}
			sym.ID, sym.Type, sym.Function = s.ID, fn.ReturnType, fn
			found, overloads = true, 1
			break
		}
		if len(args) != len(fn.Parameters) {
			continue
		}

		var current []fx.StructMemberInfo
		if found {
			current = best
		}
		switch cmp := compareOverloads(args, fn.Parameters, current); {
		case cmp < 0:
			sym.ID, sym.Type, sym.Function = s.ID, fn.ReturnType, fn
			best, found, overloads = fn.Parameters, true, 1
			overloadNamespace = s.scope.NamespaceLevel
		case cmp == 0 && overloadNamespace == s.scope.NamespaceLevel:
			overloads++
		}
	}

	if overloads == 0 {
		for i := range intrinsics {
			in := &intrinsics[i]
			if in.info.Name != name || len(in.info.Parameters) != len(args) {
				continue
			}

			var current []fx.StructMemberInfo
			if found {
				current = best
			}
			switch cmp := compareOverloads(args, in.info.Parameters, current); {
			case cmp < 0:
				sym = Symbol{Kind: SymbolIntrinsic, Intrinsic: in.id, Type: in.info.ReturnType, Function: &in.info}
				best, found, overloads = in.info.Parameters, true, 1
			case cmp == 0 && overloadNamespace == 0:
				overloads++
			}
		}
	}

	return sym, overloads == 1, overloads > 1
}
