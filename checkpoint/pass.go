//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"fmt"

	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/config"
	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/utils"
)

// Pass is the checkpoint subroutine-injection transformation.
type Pass struct {
	opts *config.Options
}

// NewPass creates a Pass with the given options. A nil opts uses
// config.NewOptions()'s defaults.
func NewPass(opts *config.Options) *Pass {
	if opts == nil {
		opts = config.NewOptions()
	}
	return &Pass{opts: opts}
}

// Name satisfies the passmgr.Pass interface.
func (p *Pass) Name() string {
	return "checkpoint-injection"
}

// Run transforms module in place, consuming tracked and liveness
// results already bound to the module's own values and blocks (see
// package analysis). It returns whether anything changed and the
// full list of diagnostics collected along the way; only
// AmbiguousName is fatal, and then only for the function it names --
// the rest of the module is still processed.
func (p *Pass) Run(module *ir.Module, tracked analysis.FuncTrackedValues, liveness analysis.FuncLiveness) (bool, []Diagnostic) {
	var diags []Diagnostic
	modified := false

	for _, fn := range module.Functions {
		if p.opts.Trace {
			utils.Tracef("checkpoint: processing function %s", fn.Name)
		}
		changed, fnDiags := p.runFunction(fn, tracked[fn], liveness[fn])
		diags = append(diags, fnDiags...)
		if changed {
			modified = true
		}
	}

	return modified, diags
}

func (p *Pass) runFunction(fn *ir.Function, tv analysis.TrackedValues, lv analysis.Liveness) (bool, []Diagnostic) {
	var diags []Diagnostic

	if tv == nil || lv == nil {
		diags = append(diags, newDiagnostic(&Error{
			Kind:     MissingAnalysis,
			Function: fn.Name,
			Message:  "no tracked-values or liveness data bound for this function",
		}))
		return false, diags
	}

	sites := selectSites(fn, tv, p.opts.KeepSentinelAsNoop)
	if len(sites) == 0 {
		return false, diags
	}

	memseg, err := memoryParam(fn, p.opts.MemorySegmentParam)
	if err != nil {
		diags = append(diags, newDiagnostic(err))
		return false, diags
	}
	elemType := segmentElementType(memseg)

	var topos []*Topo
	for i, site := range sites {
		t, err := buildSiteTopology(fn, site, i)
		if err != nil {
			diags = append(diags, newDiagnostic(err))
			continue
		}
		topos = append(topos, t)
	}
	if len(topos) == 0 {
		return false, diags
	}

	rc, err := buildRestoreController(fn)
	if err != nil {
		diags = append(diags, newDiagnostic(err))
		return false, diags
	}

	assignIDs(topos, 1)

	for _, t := range topos {
		t.SlotStart = p.opts.Layout.Slot(0)
		t.SlotEnd = p.opts.Layout.Slot(len(t.Values) - 1)
		emitSave(fn, t, memseg, p.opts.Layout, elemType, t.ID)
		restored := emitRestore(fn, t, memseg, p.opts.Layout, elemType)
		emitJunctionPhis(fn, t, restored)
	}

	for _, t := range topos {
		for _, v := range t.Values {
			propagateValue(fn, t, v, lv)
		}
	}

	buildDispatch(fn, rc, memseg, p.opts.Layout, elemType, topos)

	for _, t := range topos {
		diags = append(diags, Diagnostic{
			Injected: true,
			Function: fn.Name,
			Site:     t.CheckpointBlock.ID,
			Message:  injectedMessage(t, p.opts.Verbose),
			Topo:     t,
		})
	}

	return true, diags
}

// injectedMessage builds the Diagnostic.Message for a successful
// injection. Verbose mode spells out the assigned id, slot range and
// tracked value names; terse mode matches the original.
func injectedMessage(t *Topo, verbose bool) string {
	if !verbose {
		return "checkpoint injected"
	}
	names := make([]string, len(t.Values))
	for i, v := range t.Values {
		names[i] = v.Name
	}
	return fmt.Sprintf("checkpoint injected: id=%d slots=%d-%d values=%v",
		t.ID, t.SlotStart, t.SlotEnd, names)
}
