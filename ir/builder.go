//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

import (
	"github.com/markkurossi/ckptc/types"
)

// Builder incrementally appends instructions to a "current block",
// tracking the latest SSA version of each named variable the way the
// teacher's ssa.Generator tracks variable versions during code
// generation. It exists so the sample kernel (and tests) can
// construct IR directly, without a real frontend.
type Builder struct {
	Func     *Function
	block    *Block
	versions map[string]*Value
}

// NewBuilder creates a builder appending to fn, starting at block.
func NewBuilder(fn *Function, block *Block) *Builder {
	return &Builder{
		Func:     fn,
		block:    block,
		versions: make(map[string]*Value),
	}
}

// SetBlock switches the block instructions are appended to.
func (b *Builder) SetBlock(block *Block) {
	b.block = block
}

// Block returns the builder's current block.
func (b *Builder) Block() *Block {
	return b.block
}

// Define records v as the current SSA version of name.
func (b *Builder) Define(name string, v *Value) {
	b.versions[name] = v
}

// Use returns the current SSA version of name.
func (b *Builder) Use(name string) *Value {
	return b.versions[name]
}

// Const creates a new constant value.
func (b *Builder) Const(name string, t types.Info, val interface{}) *Value {
	v := b.Func.NewValue(name, ValConst, t)
	v.ConstValue = val
	return v
}

// emit appends inst to the current block and returns its result (nil
// if the instruction has none).
func (b *Builder) emit(inst *Instr) *Value {
	b.block.AddInstr(inst)
	return inst.Result
}

// BinOp emits a binary instruction and returns its result.
func (b *Builder) BinOp(op Op, name string, t types.Info, l, r *Value) *Value {
	res := b.Func.NewValue(name, ValInstr, t)
	inst := &Instr{Op: op, Args: []*Value{l, r}, Result: res}
	res.Def = inst
	return b.emit(inst)
}

// Load emits a dereferencing load of a pointer value.
func (b *Builder) Load(name string, ptr *Value) *Value {
	res := b.Func.NewValue(name, ValInstr, ptr.ElementType())
	inst := &Instr{Op: OpLoad, Args: []*Value{ptr}, Result: res}
	res.Def = inst
	return b.emit(inst)
}

// Store emits a store of val through ptr.
func (b *Builder) Store(ptr, val *Value) {
	b.emit(&Instr{Op: OpStore, Args: []*Value{val, ptr}})
}

// Gep emits pointer arithmetic: base + offset cells, returning a
// pointer to base's element type.
func (b *Builder) Gep(name string, base *Value, offset int) *Value {
	res := b.Func.NewValue(name, ValInstr, base.Type)
	res.PtrInfo = base.PtrInfo
	inst := &Instr{Op: OpGep, Args: []*Value{base}, Offset: offset, Result: res}
	res.Def = inst
	return b.emit(inst)
}

// Alloca emits a fresh stack cell of type t, returning a pointer to
// it. Used by the restore block to materialize a fresh pointer-typed
// tracked value.
func (b *Builder) Alloca(name string, t types.Info) *Value {
	ptrType := types.Info{Type: types.TPtr, ElementType: &t}
	res := b.Func.NewValue(name, ValInstr, ptrType)
	res.PtrInfo = &PtrInfo{ElementType: t}
	inst := &Instr{Op: OpAlloca, Result: res}
	res.Def = inst
	return b.emit(inst)
}

// Call emits a call instruction.
func (b *Builder) Call(name, callee string, args []*Value, resultType types.Info) *Value {
	var res *Value
	if name != "" {
		res = b.Func.NewValue(name, ValInstr, resultType)
	}
	inst := &Instr{Op: OpCall, Args: args, Callee: callee, Result: res}
	if res != nil {
		res.Def = inst
	}
	return b.emit(inst)
}

// Jump emits an unconditional branch and wires the CFG edge.
func (b *Builder) Jump(target *Block) {
	addEdge(b.block, target)
	b.emit(&Instr{Op: OpJump, Target: target})
}

// If emits a conditional branch and wires both CFG edges.
func (b *Builder) If(cond *Value, then, els *Block) {
	addEdge(b.block, then)
	addEdge(b.block, els)
	b.emit(&Instr{Op: OpIf, Args: []*Value{cond}, Target: then})
}

// Ret emits a return.
func (b *Builder) Ret(args ...*Value) {
	b.emit(&Instr{Op: OpRet, Args: args})
}
