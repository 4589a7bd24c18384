//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package sample

import (
	"testing"

	"github.com/markkurossi/ckptc/ir"
)

func TestNewLudModuleHasOneCheckpointCall(t *testing.T) {
	module, tracked, liveness := NewLudModule()

	fn, ok := module.FuncByName("lud")
	if !ok {
		t.Fatal("module has no function named lud")
	}

	calls := 0
	for _, b := range fn.Blocks {
		for _, inst := range b.Instrs {
			if inst.Op == ir.OpCall && inst.Callee == "checkpoint" {
				calls++
			}
		}
	}
	if calls != 1 {
		t.Fatalf("found %d checkpoint calls, want 1", calls)
	}

	tv, ok := tracked[fn]
	if !ok {
		t.Fatal("no tracked values for lud")
	}
	total := 0
	for _, vs := range tv {
		total += len(vs)
	}
	if total != 2 {
		t.Fatalf("%d tracked values, want 2 (i and result)", total)
	}

	lv, ok := liveness[fn]
	if !ok {
		t.Fatal("no liveness for lud")
	}
	if len(lv) != len(fn.Blocks) {
		t.Fatalf("liveness covers %d blocks, want %d (one per block)", len(lv), len(fn.Blocks))
	}
}

func TestNewLudModuleHasLoopStructure(t *testing.T) {
	module, _, _ := NewLudModule()
	fn, _ := module.FuncByName("lud")

	header, ok := fn.BlockByName("H")
	if !ok {
		t.Fatal("no block named H")
	}
	body, ok := fn.BlockByName("body")
	if !ok {
		t.Fatal("no block named body")
	}

	succs := ir.Successors(header)
	if len(succs) != 2 {
		t.Fatalf("header has %d successors, want 2", len(succs))
	}

	bodySuccs := ir.Successors(body)
	if len(bodySuccs) != 1 || bodySuccs[0] != header {
		t.Fatalf("body's successor = %v, want [%v] (the back edge)", bodySuccs, header)
	}

	if len(header.Phis) != 1 {
		t.Fatalf("header has %d phis, want 1", len(header.Phis))
	}
}
