//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/ir"
)

// workItem is one pending visit of the propagation BFS. versions
// accumulates every version of the tracked value seen so far on this
// particular traversal path, including old and new.
type workItem struct {
	start    *ir.Block
	current  *ir.Block
	previous *ir.Block
	old      *ir.Value
	new      *ir.Value
	versions map[*ir.Value]bool
}

func cloneVersions(in map[*ir.Value]bool) map[*ir.Value]bool {
	out := make(map[*ir.Value]bool, len(in)+1)
	for v := range in {
		out[v] = true
	}
	return out
}

// liveOutForMerge reports whether v is in block's live-out set, for
// the purposes of the merge decision. Synthetic blocks (save,
// junction, restore, restore-controller) are never present in the
// liveness map computed by the upstream analysis; the override for
// them is that the original tracked value is always considered
// live-out, keeping the reasoning uniform with the precomputed
// analysis.
func liveOutForMerge(block *ir.Block, v *ir.Value, liveness analysis.Liveness) bool {
	if block.Kind.Synthetic() {
		return true
	}
	set, ok := liveness[block]
	if !ok {
		return false
	}
	return set.Out[v]
}

// needsMerge implements the three-part merge decision of spec
// section 4.6.2.
func needsMerge(block *ir.Block, orig *ir.Value, liveness analysis.Liveness) bool {
	if block.Kind.Synthetic() {
		return false
	}
	if len(block.Preds) < 2 {
		return false
	}
	count := 0
	for _, pred := range block.Preds {
		if liveOutForMerge(pred, orig, liveness) {
			count++
		}
	}
	return count >= 2
}

// findUpdatablePhi returns a phi in block with an incoming edge from
// previous whose value is one of versions, if any. This matches both
// a phi this traversal previously inserted and a phi that already
// existed in the original program.
func findUpdatablePhi(block *ir.Block, previous *ir.Block, versions map[*ir.Value]bool) *ir.Phi {
	for _, phi := range block.Phis {
		if val, ok := phi.IncomingFor(previous); ok && versions[val] {
			return phi
		}
	}
	return nil
}

// insertMergePhi creates a new phi at block's head with new as the
// incoming value from previous and old for every other predecessor.
func insertMergePhi(fn *ir.Function, block *ir.Block, old, new *ir.Value, previous *ir.Block) *ir.Phi {
	result := fn.NewValue(old.Name+".ckpt", ir.ValPhi, old.Type)
	phi := ir.NewPhi(block, result)
	for _, pred := range block.Preds {
		if pred == previous {
			phi.AddIncoming(pred, new)
		} else {
			phi.AddIncoming(pred, old)
		}
	}
	block.AddPhi(phi)
	return phi
}

// propagateValue runs the BFS SSA repair for one tracked value of
// one checkpoint site, starting at topo.ResumeBlock with the
// junction phi as the initial substitution for orig.
func propagateValue(fn *ir.Function, topo *Topo, orig *ir.Value, liveness analysis.Liveness) {
	phi := topo.PhiOf[orig]
	start := topo.ResumeBlock

	blockVersions := make(map[*ir.Block]map[*ir.Value]bool)
	visitedStart := false

	queue := []workItem{{
		start:    start,
		current:  start,
		previous: topo.JunctionBlock,
		old:      orig,
		new:      phi.Result,
		versions: map[*ir.Value]bool{orig: true, phi.Result: true},
	}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		// Loop-closure termination: a second visit to start_block.
		if item.current == start {
			if visitedStart {
				continue
			}
			visitedStart = true
		}

		// Block-version fixed point: stop once the incoming version
		// set brings nothing new to this block's history.
		hist := blockVersions[item.current]
		if hist == nil {
			hist = make(map[*ir.Value]bool)
			blockVersions[item.current] = hist
		}
		hasNew := false
		for v := range item.versions {
			if !hist[v] {
				hasNew = true
				break
			}
		}
		if !hasNew && len(hist) > 0 {
			continue
		}
		for v := range item.versions {
			hist[v] = true
		}

		nextOld, nextNew, nextVersions, stop := visitBlock(fn, item, orig, liveness)
		if stop {
			continue
		}

		succs := ir.Successors(item.current)
		for _, s := range succs {
			queue = append(queue, workItem{
				start:    start,
				current:  s,
				previous: item.current,
				old:      nextOld,
				new:      nextNew,
				versions: nextVersions,
			})
		}
	}
}

// visitBlock applies the merge/non-merge action to one block and
// reports the (old, new, versions) triple to carry to its
// successors, plus whether propagation should stop here.
func visitBlock(fn *ir.Function, item workItem, orig *ir.Value, liveness analysis.Liveness) (*ir.Value, *ir.Value, map[*ir.Value]bool, bool) {
	current := item.current

	var nextOld, nextNew *ir.Value
	var nextVersions map[*ir.Value]bool
	stop := false

	if needsMerge(current, orig, liveness) {
		if existing := findUpdatablePhi(current, item.previous, item.versions); existing != nil {
			ir.SetIncomingValue(existing, item.previous, item.new)
			return nil, nil, nil, true
		}

		newPhi := insertMergePhi(fn, current, item.old, item.new, item.previous)
		for _, inst := range current.Instrs {
			ir.ReplaceOperands(inst, item.old, newPhi.Result)
		}
		nextOld = item.old
		nextNew = newPhi.Result
		nextVersions = cloneVersions(item.versions)
		nextVersions[newPhi.Result] = true
	} else {
		for _, inst := range current.Instrs {
			ir.ReplaceOperands(inst, item.old, item.new)
		}
		nextOld = item.old
		nextNew = item.new
		nextVersions = item.versions
	}

	// Definition-shadowing stop: a non-phi instruction in this block
	// defines a value already known on this path, so downstream uses
	// are bound to that newer definition instead.
	for _, inst := range current.Instrs {
		if inst.Result != nil && inst.Result != nextNew && nextVersions[inst.Result] {
			stop = true
			break
		}
	}

	return nextOld, nextNew, nextVersions, stop
}
