//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"strings"

	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/ir"
)

// sentinelSubstring is the marker the selector looks for in a call's
// callee name. Matching is directive-driven: no least-live fallback.
const sentinelSubstring = "checkpoint"

// SiteCandidate is one surviving checkpoint block together with its
// eligible tracked-value set, in the order the selector encountered
// it (the function's block order), which is also the order the
// topology builder and dispatcher assign ids in.
type SiteCandidate struct {
	Block  *ir.Block
	Values []*ir.Value
}

// CheckpointBBMap is a function's selected checkpoint blocks, in
// deterministic order.
type CheckpointBBMap []SiteCandidate

// selectSites applies the four ordered filters of the checkpoint
// site selector to one function's tracked values, returning the
// surviving sites in function block order. Each surviving block has
// its sentinel call erased, or replaced with a no-op marker if
// keepAsNoop is set.
func selectSites(fn *ir.Function, tracked analysis.TrackedValues, keepAsNoop bool) CheckpointBBMap {
	var result CheckpointBBMap

	for _, block := range fn.Blocks {
		values, ok := tracked[block]
		if !ok {
			continue
		}

		// Filter 1: exactly one successor.
		if ir.NumSuccessors(block) != 1 {
			continue
		}

		// Filter 2: drop nested-pointer tracked values.
		var eligible []*ir.Value
		for _, v := range values {
			if v.IsNestedPointer() {
				continue
			}
			eligible = append(eligible, v)
		}

		// Filter 3: remaining set must be non-empty.
		if len(eligible) == 0 {
			continue
		}

		// Filter 4: block must contain the sentinel call; erase it.
		if !eraseSentinelCall(block, keepAsNoop) {
			continue
		}

		result = append(result, SiteCandidate{Block: block, Values: eligible})
	}

	return result
}

// eraseSentinelCall removes the first OpCall instruction in block
// whose callee name contains the sentinel substring, or, if
// keepAsNoop is set, rewrites it in place into a bare OpMov marker so
// a textual dump still shows where the call used to be. Returns
// whether one was found.
func eraseSentinelCall(block *ir.Block, keepAsNoop bool) bool {
	for i, inst := range block.Instrs {
		if inst.Op == ir.OpCall && strings.Contains(inst.Callee, sentinelSubstring) {
			if keepAsNoop {
				*inst = ir.Instr{Block: block, Op: ir.OpMov}
				return true
			}
			block.Instrs = append(block.Instrs[:i], block.Instrs[i+1:]...)
			return true
		}
	}
	return false
}
