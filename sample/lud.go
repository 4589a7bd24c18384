//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

// Package sample hand-assembles a small numeric kernel as an ir.Module,
// mirroring the pivot-row loop of the original LU-decomposition
// workload this pass was built against. There is no front end in
// scope, so the kernel is built directly with the ir package's
// builders instead of parsed from source text.
package sample

import (
	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/types"
)

var floatType = types.Info{Type: types.TFloat, Bits: 32, MinBits: 32}
var intType = types.Int32
var boolType = types.BoolType()

// NewLudModule builds a module containing one function, "lud": a
// loop over pivot rows with a single checkpoint call per iteration
// tracking the induction variable and the result buffer pointer.
// It returns the module together with the already-bound tracked
// values and liveness the checkpoint pass needs -- there is no JSON
// round trip for an in-process fixture like this one.
func NewLudModule() (*ir.Module, analysis.FuncTrackedValues, analysis.FuncLiveness) {
	fn := ir.NewFunction("lud")

	result := newParam(fn, "result", types.Info{Type: types.TPtr, ElementType: &floatType}, &floatType)
	newParam(fn, "size", intType, nil)
	ckptMem := newParam(fn, "ckpt_mem", types.Info{Type: types.TPtr, ElementType: &floatType}, &floatType)

	entry := fn.NewBlock("entry")
	header := fn.NewBlock("H")
	body := fn.NewBlock("body")
	exit := fn.NewBlock("exit")
	fn.Entry = entry

	// H: i = phi(0 from entry, i.next from body); cmp = i < size; if cmp body else exit
	iPhiResult := fn.NewValue("i", ir.ValPhi, intType)
	iPhi := ir.NewPhi(header, iPhiResult)
	header.AddPhi(iPhi)

	entryBuilder := ir.NewBuilder(fn, entry)
	zero := entryBuilder.Const("", intType, int64(0))
	entryBuilder.Jump(header)
	iPhi.AddIncoming(entry, zero)

	sizeParam, _ := fn.ParamByName("size")
	headerBuilder := ir.NewBuilder(fn, header)
	cmp := headerBuilder.BinOp(ir.OpLt, "cmp", boolType, iPhiResult, sizeParam)
	headerBuilder.If(cmp, body, exit)

	bodyBuilder := ir.NewBuilder(fn, body)
	bodyBuilder.Call("", "checkpoint", []*ir.Value{ckptMem, iPhiResult, result}, types.Undefined)
	one := bodyBuilder.Const("", intType, int64(1))
	iNext := bodyBuilder.BinOp(ir.OpAdd, "i.next", intType, iPhiResult, one)
	bodyBuilder.Jump(header)
	iPhi.AddIncoming(body, iNext)

	exitBuilder := ir.NewBuilder(fn, exit)
	exitBuilder.Ret()

	module := ir.NewModule()
	module.AddFunction(fn)

	tracked := analysis.FuncTrackedValues{
		fn: analysis.TrackedValues{
			body: {iPhiResult, result},
		},
	}

	liveness := analysis.FuncLiveness{
		fn: analysis.Liveness{
			entry: {In: set(), Out: set(iPhiResult)},
			header: {In: set(iPhiResult), Out: set(iPhiResult)},
			body: {In: set(iPhiResult, result), Out: set(iPhiResult, result)},
			exit: {In: set(), Out: set()},
		},
	}

	return module, tracked, liveness
}

func newParam(fn *ir.Function, name string, t types.Info, elemType *types.Info) *ir.Value {
	v := fn.NewValue(name, ir.ValArg, t)
	if elemType != nil {
		v.PtrInfo = &ir.PtrInfo{ElementType: *elemType}
	}
	fn.Params = append(fn.Params, v)
	return v
}

func set(values ...*ir.Value) map[*ir.Value]bool {
	out := make(map[*ir.Value]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}
