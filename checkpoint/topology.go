//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"fmt"

	"github.com/markkurossi/ckptc/ir"
)

// Topo is the five-block tuple produced for one checkpoint site.
// CheckpointBlock and ResumeBlock existed before the pass ran;
// SaveBlock, JunctionBlock and RestoreBlock are synthetic.
type Topo struct {
	CheckpointBlock *ir.Block
	SaveBlock       *ir.Block
	JunctionBlock   *ir.Block
	RestoreBlock    *ir.Block
	ResumeBlock     *ir.Block
	Values          []*ir.Value
	PhiOf           map[*ir.Value]*ir.Phi // tracked value -> junction phi

	// ID is assigned later, by the dispatcher; zero until then.
	ID int

	// SlotStart/SlotEnd record the memory-segment cell range this
	// site's tracked values occupy, for the diagnostics report.
	SlotStart int
	SlotEnd   int
}

// buildRestoreController inserts the per-function restore-controller
// block on the edge from entry to its unique successor. Fails
// InvalidEntry if entry has no successor or the split fails.
func buildRestoreController(fn *ir.Function) (*ir.Block, *Error) {
	if ir.NumSuccessors(fn.Entry) != 1 {
		return nil, &Error{
			Kind:     InvalidEntry,
			Function: fn.Name,
			Message:  "entry block has no unique successor",
		}
	}
	succ := ir.Successors(fn.Entry)[0]
	rc, err := ir.SplitEdge(fn.Entry, succ, fn.Name+".rc")
	if err != nil {
		return nil, &Error{
			Kind:     InvalidEntry,
			Function: fn.Name,
			Message:  fmt.Sprintf("splitting entry edge: %v", err),
		}
	}
	rc.Kind = ir.BlockRestoreController
	return rc, nil
}

// buildSiteTopology splits the site's outgoing edges to produce the
// save/junction blocks and creates a fresh, unattached restore block.
// Fails EdgeSplitFailure if either split is refused.
func buildSiteTopology(fn *ir.Function, site SiteCandidate, index int) (*Topo, *Error) {
	block := site.Block
	if ir.NumSuccessors(block) != 1 {
		return nil, &Error{
			Kind:     UnsupportedSite,
			Function: fn.Name,
			Site:     block.ID,
			Message:  "checkpoint block does not have exactly one successor",
		}
	}
	resume := ir.Successors(block)[0]

	save, err := ir.SplitEdge(block, resume, fmt.Sprintf("%s.save.%d", block.ID, index))
	if err != nil {
		return nil, &Error{Kind: EdgeSplitFailure, Function: fn.Name, Site: block.ID,
			Message: fmt.Sprintf("splitting save edge: %v", err)}
	}
	save.Kind = ir.BlockSave

	junction, err := ir.SplitEdge(save, resume, fmt.Sprintf("%s.junction.%d", block.ID, index))
	if err != nil {
		return nil, &Error{Kind: EdgeSplitFailure, Function: fn.Name, Site: block.ID,
			Message: fmt.Sprintf("splitting junction edge: %v", err)}
	}
	junction.Kind = ir.BlockJunction

	restore := fn.NewBlock(fmt.Sprintf("%s.restore.%d", block.ID, index))
	restore.Kind = ir.BlockRestore
	ir.NewBuilder(fn, restore).Jump(junction)

	return &Topo{
		CheckpointBlock: block,
		SaveBlock:       save,
		JunctionBlock:   junction,
		RestoreBlock:    restore,
		ResumeBlock:     resume,
		Values:          site.Values,
		PhiOf:           make(map[*ir.Value]*ir.Phi),
	}, nil
}
