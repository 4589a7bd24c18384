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

// memoryParam locates fn's memory-segment parameter by name. Fails
// NoMemorySegment if absent or not a pointer.
func memoryParam(fn *ir.Function, paramName string) (*ir.Value, *Error) {
	p, ok := fn.ParamByName(paramName)
	if !ok || !p.IsPointer() {
		return nil, &Error{
			Kind:     NoMemorySegment,
			Function: fn.Name,
			Message:  fmt.Sprintf("no pointer parameter named %q", paramName),
		}
	}
	return p, nil
}

// insertBefore appends inst immediately before block's terminator
// and returns its result (nil if it has none).
func insertBefore(block *ir.Block, inst *ir.Instr) *ir.Value {
	block.InsertInstrBefore(inst)
	return inst.Result
}

// controlConst builds a constant of the memory segment's element
// type holding the integer value n. Reserved control cells
// (heartbeat, ckpt id, is_complete) are always addressed as the
// segment's native element type, never as payload, so a float
// segment still gets float-typed control writes.
func controlConst(fn *ir.Function, elemType types.Info, n int64) *ir.Value {
	v := fn.NewValue("", ir.ValConst, elemType)
	if elemType.Type == types.TFloat {
		v.ConstValue = float64(n)
	} else {
		v.ConstValue = n
	}
	return v
}

// gep emits a gep(memseg, slot) into block and returns the resulting
// pointer value, typed as a pointer to elemType.
func gep(fn *ir.Function, block *ir.Block, memseg *ir.Value, slot int, elemType types.Info) *ir.Value {
	res := fn.NewValue("", ir.ValInstr, types.Info{Type: types.TPtr, ElementType: &elemType})
	res.PtrInfo = &ir.PtrInfo{ElementType: elemType}
	inst := &ir.Instr{Op: ir.OpGep, Args: []*ir.Value{memseg}, Offset: slot, Result: res}
	res.Def = inst
	return insertBefore(block, inst)
}

func load(fn *ir.Function, block *ir.Block, ptr *ir.Value) *ir.Value {
	res := fn.NewValue("", ir.ValInstr, ptr.ElementType())
	inst := &ir.Instr{Op: ir.OpLoad, Args: []*ir.Value{ptr}, Result: res}
	res.Def = inst
	return insertBefore(block, inst)
}

func store(block *ir.Block, val, ptr *ir.Value) {
	insertBefore(block, &ir.Instr{Op: ir.OpStore, Args: []*ir.Value{val, ptr}})
}

func binOp(fn *ir.Function, block *ir.Block, op ir.Op, t types.Info, l, r *ir.Value) *ir.Value {
	res := fn.NewValue("", ir.ValInstr, t)
	inst := &ir.Instr{Op: op, Args: []*ir.Value{l, r}, Result: res}
	res.Def = inst
	return insertBefore(block, inst)
}

// emitHeartbeat emits the load/increment/store sequence shared by
// save and restore blocks.
func emitHeartbeat(fn *ir.Function, block *ir.Block, memseg *ir.Value, layout MemoryLayout, elemType types.Info) {
	p := gep(fn, block, memseg, layout.Heartbeat, elemType)
	h := load(fn, block, p)
	one := controlConst(fn, elemType, 1)
	hNext := binOp(fn, block, ir.OpAdd, elemType, h, one)
	store(block, hNext, gep(fn, block, memseg, layout.Heartbeat, elemType))
}

// emitSave populates topo.SaveBlock: one store per tracked value,
// the is_complete flag, the checkpoint id, and the heartbeat bump.
func emitSave(fn *ir.Function, topo *Topo, memseg *ir.Value, layout MemoryLayout, elemType types.Info, ckptID int) {
	block := topo.SaveBlock
	for k, v := range topo.Values {
		slot := layout.Slot(k)
		var d *ir.Value
		if v.IsPointer() {
			d = load(fn, block, v)
		} else {
			d = v
		}
		p := gep(fn, block, memseg, slot, elemType)
		store(block, d, p)
	}

	store(block, controlConst(fn, elemType, 1), gep(fn, block, memseg, layout.IsComplete, elemType))
	store(block, controlConst(fn, elemType, int64(ckptID)), gep(fn, block, memseg, layout.CkptID, elemType))
	emitHeartbeat(fn, block, memseg, layout, elemType)
}

// emitRestore populates topo.RestoreBlock, returning the restored
// value for each tracked value in topo.Values order. Pointer tracked
// values are rematerialized into a fresh cell; scalars are used
// directly.
func emitRestore(fn *ir.Function, topo *Topo, memseg *ir.Value, layout MemoryLayout, elemType types.Info) []*ir.Value {
	block := topo.RestoreBlock
	restored := make([]*ir.Value, len(topo.Values))

	for k, v := range topo.Values {
		slot := layout.Slot(k)
		p := gep(fn, block, memseg, slot, elemType)
		loaded := load(fn, block, p)

		if v.IsPointer() {
			cellType := v.ElementType()
			alloc := allocaInto(fn, block, cellType)
			store(block, loaded, alloc)
			restored[k] = alloc
		} else {
			restored[k] = loaded
		}
	}

	emitHeartbeat(fn, block, memseg, layout, elemType)
	return restored
}

// allocaInto emits an alloca before block's terminator, mirroring
// ir.Builder.Alloca but inserting rather than appending.
func allocaInto(fn *ir.Function, block *ir.Block, t types.Info) *ir.Value {
	ptrType := types.Info{Type: types.TPtr, ElementType: &t}
	res := fn.NewValue("", ir.ValInstr, ptrType)
	res.PtrInfo = &ir.PtrInfo{ElementType: t}
	inst := &ir.Instr{Op: ir.OpAlloca, Result: res}
	res.Def = inst
	return insertBefore(block, inst)
}

// emitJunctionPhis inserts, for each tracked value, a two-incoming
// phi at topo.JunctionBlock merging the save path's original value
// with the restore path's restored value, recording the mapping in
// topo.PhiOf for the propagation stage.
func emitJunctionPhis(fn *ir.Function, topo *Topo, restored []*ir.Value) {
	for k, v := range topo.Values {
		result := fn.NewValue(v.Name+".ckpt", ir.ValPhi, v.Type)
		phi := ir.NewPhi(topo.JunctionBlock, result)
		phi.AddIncoming(topo.SaveBlock, v)
		phi.AddIncoming(topo.RestoreBlock, restored[k])
		topo.JunctionBlock.AddPhi(phi)
		topo.PhiOf[v] = phi
	}
}
