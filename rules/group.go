package rules

import "github.com/expr-lang/expr/vm"

// Group is a named parameter set that applies while its condition holds.
// The selector evaluates groups by priority; the first match wins.
type Group struct {
	Name     string      // human-readable identifier
	Priority int         // higher = evaluated first
	When     string      // expr source over Situation
	Params   Params      // full parameter set, defaults filled in
	program  *vm.Program // compiled bytecode
}
