package infer

import (
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/traits"
)

// Driver runs inference for an entire module graph in dependency order
// (spec §5: module loading and inference are both strict, depth-first,
// single-threaded walks), keeping one Engine alive per module so a later
// cross-module call site can create and type a specialization inside the
// callee module's own Context rather than the caller's (spec §4.F #2,
// §4.G).
type Driver struct {
	Traits *traits.Registry
	Sink   *diag.Sink

	engines map[*loader.Module]*Engine
}

// NewDriver creates a Driver sharing one trait registry and diagnostic
// sink across every module it runs.
func NewDriver(sink *diag.Sink) *Driver {
	return &Driver{
		Traits:  traits.NewRegistry(),
		Sink:    sink,
		engines: make(map[*loader.Module]*Engine),
	}
}

// RunModule infers mod, whose dependencies the caller must already have
// run (loader.Registry.LoadOrder lists modules leaf-first is NOT
// guaranteed; callers should run a module only after every entry in
// mod.Dependencies has been run — RunAll does this via a dependency-first
// walk).
func (d *Driver) RunModule(mod *loader.Module) *Result {
	e := New(mod, d.Traits, d.Sink)
	e.driver = d
	d.engines[mod] = e
	return e.Run(mod.AST)
}

// RunAll infers every module reachable from entry, dependencies before
// dependents (spec §5: "module loading is sequential and depth-first").
func (d *Driver) RunAll(entry *loader.Module) map[*loader.Module]*Result {
	results := make(map[*loader.Module]*Result)
	visited := make(map[*loader.Module]bool)

	var visit func(m *loader.Module)
	visit = func(m *loader.Module) {
		if visited[m] || m.IsBuiltin() {
			return
		}
		visited[m] = true
		for _, dep := range m.Dependencies {
			visit(dep)
		}
		results[m] = d.RunModule(m)
	}
	visit(entry)
	return results
}

// engineFor returns the Engine that ran mod, or nil if it hasn't run yet.
func (d *Driver) engineFor(mod *loader.Module) *Engine {
	if d == nil {
		return nil
	}
	return d.engines[mod]
}
