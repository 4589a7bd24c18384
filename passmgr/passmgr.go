//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

// Package passmgr is a minimal ordered pass registry: register named
// module passes once, then run them in registration order over a
// module.
package passmgr

import (
	"fmt"

	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/checkpoint"
	"github.com/markkurossi/ckptc/ir"
)

// PassFunc is a single module pass.
type PassFunc func(module *ir.Module) (bool, []checkpoint.Diagnostic)

type registered struct {
	name string
	run  PassFunc
}

// Registry is an ordered set of named module passes.
type Registry struct {
	passes []registered
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a pass under name. Registering the same name
// twice is a caller error and panics: pass wiring is fixed at init
// time, not data-driven.
func (r *Registry) Register(name string, run PassFunc) {
	for _, p := range r.passes {
		if p.name == name {
			panic(fmt.Sprintf("passmgr: pass %q already registered", name))
		}
	}
	r.passes = append(r.passes, registered{name: name, run: run})
}

// Run executes every registered pass over module, in registration
// order, concatenating their diagnostics.
func (r *Registry) Run(module *ir.Module) []checkpoint.Diagnostic {
	var diags []checkpoint.Diagnostic
	for _, p := range r.passes {
		_, passDiags := p.run(module)
		diags = append(diags, passDiags...)
	}
	return diags
}

// RegisterCheckpointPass wires pass under its own name so it can be
// driven through a Registry alongside other hypothetical module
// passes.
func RegisterCheckpointPass(r *Registry, pass *checkpoint.Pass, tracked analysis.FuncTrackedValues, liveness analysis.FuncLiveness) {
	r.Register(pass.Name(), func(module *ir.Module) (bool, []checkpoint.Diagnostic) {
		return pass.Run(module, tracked, liveness)
	})
}
