// Package env holds the flat name-to-value bindings visible during
// parsing, resolution, and evaluation. Bindings are a single flat map:
// the language has no lexical scoping or user-defined function
// closures, so there is nothing for a scope stack to model.
package env

import (
	"os/exec"

	"github.com/arrshell/arrsh/internal/tree"
)

// Env is the mutable binding table threaded through parsing,
// resolution, and evaluation.
type Env struct {
	vars map[string]*tree.Node
}

// New returns an empty environment.
func New() *Env {
	return &Env{vars: make(map[string]*tree.Node)}
}

// Get returns the bound value for name, if any.
func (e *Env) Get(name string) (*tree.Node, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set binds name to value, overwriting any prior binding.
func (e *Env) Set(name string, value *tree.Node) {
	e.vars[name] = value
}

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Wipe discards every binding, restoring a fresh environment. Backs
// the REPL's `)wipe` command.
func (e *Env) Wipe() {
	e.vars = make(map[string]*tree.Node)
}

// IsPathCommand reports whether name resolves to an executable on the
// host PATH. Every call does a fresh lookup (nothing is cached); the
// parser, the resolver and the fill/function predicates in
// internal/semantics each call it when classifying a bare identifier.
func IsPathCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
