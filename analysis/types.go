//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package analysis

import "github.com/markkurossi/ckptc/ir"

// TrackedValues is the pointer-keyed mirror of TrackedValuesJSON for
// one function: block -> tracked values, in the order they appeared
// in the JSON list (insertion order, kept stable for deterministic
// slot assignment).
type TrackedValues map[*ir.Block][]*ir.Value

// LiveSet is a block's live-in/live-out sets.
type LiveSet struct {
	In  map[*ir.Value]bool
	Out map[*ir.Value]bool
}

// Liveness is the pointer-keyed mirror of LivenessJSON for one
// function.
type Liveness map[*ir.Block]LiveSet

// FuncTrackedValues maps every function in a module to its tracked
// values, as bound by Bind.
type FuncTrackedValues map[*ir.Function]TrackedValues

// FuncLiveness maps every function in a module to its liveness, as
// bound by Bind.
type FuncLiveness map[*ir.Function]Liveness
