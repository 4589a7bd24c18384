//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"github.com/markkurossi/ckptc/config"
	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/types"
)

// MemoryLayout is an alias for config.MemoryLayout, kept local to
// this package so callers of the emitter and dispatcher don't need
// to import config just to name the type.
type MemoryLayout = config.MemoryLayout

// segmentElementType returns the element type of a memory-segment
// pointer parameter, defaulting to a 32 bit unsigned counter type
// for the reserved control cells when the segment itself has no
// element type recorded (should not happen for a well-formed
// parameter, but keeps Gep/Load/Store callers total).
func segmentElementType(memseg *ir.Value) types.Info {
	if memseg.PtrInfo != nil {
		return memseg.PtrInfo.ElementType
	}
	return types.Uint32
}
