//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"fmt"

	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/types"
)

// assignIDs gives each topo a dense id starting at nextID, in slice
// order, and renames its save/junction/restore blocks to carry the
// id. Returns the next available id, so ids stay dense and
// increasing across every site of a function (the resolved "multi
// site" design: this never stops after the first site).
func assignIDs(topos []*Topo, nextID int) int {
	for _, t := range topos {
		t.ID = nextID
		suffix := fmt.Sprintf(".id%d", nextID)
		t.SaveBlock.ID += suffix
		t.JunctionBlock.ID += suffix
		t.RestoreBlock.ID += suffix
		nextID++
	}
	return nextID
}

// buildDispatch rewrites the restore controller's terminator into a
// multi-way branch: default is the original sole successor (ckpt_id
// == 0 or unmatched), and one case per topo maps its id to its
// restore block. Emits the CKPT_ID load before the switch.
func buildDispatch(fn *ir.Function, rc *ir.Block, memseg *ir.Value, layout MemoryLayout, elemType types.Info, topos []*Topo) {
	term := rc.Terminator()
	fallthroughTarget := term.Target

	p := gep(fn, rc, memseg, layout.CkptID, elemType)
	id := load(fn, rc, p)

	var cases []ir.SwitchCase
	for _, t := range topos {
		cases = append(cases, ir.SwitchCase{Value: int64(t.ID), Target: t.RestoreBlock})
	}

	// Rewrite rc's terminator in place: same instruction slot, new
	// opcode and operands. The implicit fallthrough edge already
	// exists in rc.Succs (from the original jump); the new case
	// edges must be added explicitly.
	term.Op = ir.OpSwitch
	term.Args = []*ir.Value{id}
	term.Target = fallthroughTarget
	term.Cases = cases
	term.Callee = ""

	for _, t := range topos {
		addRestoreEdge(rc, t.RestoreBlock)
	}
}

// addRestoreEdge wires the controller -> restore-block edge that the
// switch's new case introduces. Restore blocks are otherwise
// unreachable from the original CFG, so this is the only predecessor
// they gain.
func addRestoreEdge(rc, restore *ir.Block) {
	rc.Succs = append(rc.Succs, restore)
	restore.Preds = append(restore.Preds, rc)
}
