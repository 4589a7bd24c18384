//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/config"
	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/types"
)

func TestPassInjectsLinearFunction(t *testing.T) {
	fn, ckpt, tv := linearSite(t)
	resume, _ := fn.BlockByName("resume")
	result, _ := fn.ParamByName("result")

	liveness := analysis.Liveness{
		ckpt:   {In: set(result), Out: set(result)},
		resume: {In: set(result), Out: set(result)},
	}
	module := ir.NewModule()
	module.AddFunction(fn)

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: analysis.TrackedValues(tv)},
		analysis.FuncLiveness{fn: liveness})

	if !changed {
		t.Fatal("Run reported no change for a function with one eligible site")
	}
	injected := 0
	for _, d := range diags {
		if d.Injected {
			injected++
		}
	}
	if injected != 1 {
		t.Fatalf("%d injected diagnostics, want 1", injected)
	}
	if ir.NumSuccessors(fn.Entry) != 1 {
		t.Fatalf("entry has %d successors after injection, want 1 (the restore controller)", ir.NumSuccessors(fn.Entry))
	}
}

func TestPassVerboseMessageNamesValues(t *testing.T) {
	fn, ckpt, tv := linearSite(t)
	resume, _ := fn.BlockByName("resume")
	result, _ := fn.ParamByName("result")

	liveness := analysis.Liveness{
		ckpt:   {In: set(result), Out: set(result)},
		resume: {In: set(result), Out: set(result)},
	}
	module := ir.NewModule()
	module.AddFunction(fn)

	opts := config.NewOptions()
	opts.Verbose = true
	p := NewPass(opts)
	_, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: analysis.TrackedValues(tv)},
		analysis.FuncLiveness{fn: liveness})

	found := false
	for _, d := range diags {
		if d.Injected {
			found = true
			if !strings.Contains(d.Message, "result") {
				t.Fatalf("verbose message = %q, want it to name the tracked value", d.Message)
			}
		}
	}
	if !found {
		t.Fatal("no injected diagnostic produced")
	}
}

func TestPassTraceWritesFunctionName(t *testing.T) {
	fn, ckpt, tv := linearSite(t)
	resume, _ := fn.BlockByName("resume")
	result, _ := fn.ParamByName("result")

	liveness := analysis.Liveness{
		ckpt:   {In: set(result), Out: set(result)},
		resume: {In: set(result), Out: set(result)},
	}
	module := ir.NewModule()
	module.AddFunction(fn)

	opts := config.NewOptions()
	opts.Trace = true
	p := NewPass(opts)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	saved := os.Stdout
	os.Stdout = w
	_, _ = p.Run(module,
		analysis.FuncTrackedValues{fn: analysis.TrackedValues(tv)},
		analysis.FuncLiveness{fn: liveness})
	w.Close()
	os.Stdout = saved

	out, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	if !strings.Contains(string(out), fn.Name) {
		t.Fatalf("trace output = %q, want it to name the function %q", out, fn.Name)
	}
}

func TestPassInjectsLoopFunction(t *testing.T) {
	fn := ir.NewFunction("lud")
	mem := newParam(fn, "ckpt_mem", types.Info{Type: types.TPtr})
	mem.PtrInfo = &ir.PtrInfo{ElementType: types.Int32}
	size := newParam(fn, "size", types.Int32)

	entry := fn.NewBlock("entry")
	header := fn.NewBlock("H")
	body := fn.NewBlock("body")
	exit := fn.NewBlock("exit")
	fn.Entry = entry

	iResult := fn.NewValue("i", ir.ValPhi, types.Int32)
	iPhi := ir.NewPhi(header, iResult)
	header.AddPhi(iPhi)

	eb := ir.NewBuilder(fn, entry)
	zero := eb.Const("zero", types.Int32, int64(0))
	eb.Jump(header)
	iPhi.AddIncoming(entry, zero)

	hb := ir.NewBuilder(fn, header)
	cmp := hb.BinOp(ir.OpLt, "cmp", types.BoolType(), iResult, size)
	hb.If(cmp, body, exit)

	bb := ir.NewBuilder(fn, body)
	bb.Call("", "checkpoint", []*ir.Value{mem, iResult}, types.Undefined)
	one := bb.Const("one", types.Int32, int64(1))
	iNext := bb.BinOp(ir.OpAdd, "i.next", types.Int32, iResult, one)
	bb.Jump(header)
	iPhi.AddIncoming(body, iNext)

	ir.NewBuilder(fn, exit).Ret()

	liveness := analysis.Liveness{
		entry:  {In: set(), Out: set(iResult)},
		header: {In: set(iResult), Out: set(iResult)},
		body:   {In: set(iResult), Out: set(iResult)},
		exit:   {In: set(), Out: set()},
	}

	module := ir.NewModule()
	module.AddFunction(fn)

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: analysis.TrackedValues{body: {iResult}}},
		analysis.FuncLiveness{fn: liveness})

	if !changed {
		t.Fatal("Run reported no change for a loop function with one eligible site")
	}
	injectedCount := 0
	for _, d := range diags {
		if d.Injected {
			injectedCount++
		}
	}
	if injectedCount != 1 {
		t.Fatalf("%d injected diagnostics, want 1", injectedCount)
	}
}

func TestPassSkipsMissingAnalysis(t *testing.T) {
	fn, _, _ := linearSite(t)
	module := ir.NewModule()
	module.AddFunction(fn)

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module, analysis.FuncTrackedValues{}, analysis.FuncLiveness{})
	if changed {
		t.Fatal("Run reported a change for a function with no bound analysis")
	}
	if len(diags) != 1 || diags[0].ErrKind != MissingAnalysis {
		t.Fatalf("diags = %v, want one MissingAnalysis diagnostic", diags)
	}
}

func TestPassSkipsMissingMemorySegment(t *testing.T) {
	fn := ir.NewFunction("nomemseg")
	result := newParam(fn, "result", types.Int32)
	entry := fn.NewBlock("entry")
	exit := fn.NewBlock("exit")
	fn.Entry = entry
	b := ir.NewBuilder(fn, entry)
	b.Call("", "checkpoint", []*ir.Value{result}, types.Undefined)
	b.Jump(exit)
	ir.NewBuilder(fn, exit).Ret()

	module := ir.NewModule()
	module.AddFunction(fn)

	tv := analysis.TrackedValues{entry: {result}}
	liveness := analysis.Liveness{entry: {In: set(), Out: set(result)}}

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: tv},
		analysis.FuncLiveness{fn: liveness})
	if changed {
		t.Fatal("Run reported a change for a function with no memory-segment parameter")
	}
	if len(diags) != 1 || diags[0].ErrKind != NoMemorySegment {
		t.Fatalf("diags = %v, want one NoMemorySegment diagnostic", diags)
	}
}

func TestPassSkipsUnsupportedTerminator(t *testing.T) {
	fn := ir.NewFunction("unsupported")
	mem := newParam(fn, "ckpt_mem", types.Info{Type: types.TPtr})
	mem.PtrInfo = &ir.PtrInfo{ElementType: types.Int32}
	result := newParam(fn, "result", types.Int32)

	entry := fn.NewBlock("entry")
	then := fn.NewBlock("then")
	els := fn.NewBlock("else")
	fn.Entry = entry

	b := ir.NewBuilder(fn, entry)
	b.Call("", "checkpoint", []*ir.Value{mem, result}, types.Undefined)
	cond := b.Const("cond", types.BoolType(), true)
	b.If(cond, then, els)
	ir.NewBuilder(fn, then).Ret()
	ir.NewBuilder(fn, els).Ret()

	module := ir.NewModule()
	module.AddFunction(fn)

	tv := analysis.TrackedValues{entry: {result}}
	liveness := analysis.Liveness{entry: {In: set(), Out: set(result)}}

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: tv},
		analysis.FuncLiveness{fn: liveness})
	if changed {
		t.Fatal("Run reported a change for a block with two successors (no sentinel erased, so selectSites drops it)")
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none (selectSites filters the site out silently)", diags)
	}
}

func TestPassHandlesDiamond(t *testing.T) {
	fn := ir.NewFunction("diamond")
	mem := newParam(fn, "ckpt_mem", types.Info{Type: types.TPtr})
	mem.PtrInfo = &ir.PtrInfo{ElementType: types.Int32}
	result := newParam(fn, "result", types.Int32)

	entry := fn.NewBlock("entry")
	ckpt := fn.NewBlock("ckpt")
	left := fn.NewBlock("left")
	right := fn.NewBlock("right")
	join := fn.NewBlock("join")
	fn.Entry = entry

	eb := ir.NewBuilder(fn, entry)
	cond := eb.Const("cond", types.BoolType(), true)
	eb.Jump(ckpt)

	cb := ir.NewBuilder(fn, ckpt)
	cb.Call("", "checkpoint", []*ir.Value{mem, result}, types.Undefined)
	cb.If(cond, left, right)

	ir.NewBuilder(fn, left).Jump(join)
	ir.NewBuilder(fn, right).Jump(join)

	joinResult := fn.NewValue("result.join", ir.ValPhi, types.Int32)
	joinPhi := ir.NewPhi(join, joinResult)
	joinPhi.AddIncoming(left, result)
	joinPhi.AddIncoming(right, result)
	join.AddPhi(joinPhi)
	ir.NewBuilder(fn, join).Ret(joinResult)

	module := ir.NewModule()
	module.AddFunction(fn)

	tv := analysis.TrackedValues{ckpt: {result}}
	liveness := analysis.Liveness{
		entry: {In: set(result), Out: set(result)},
		ckpt:  {In: set(result), Out: set(result)},
		left:  {In: set(result), Out: set(result)},
		right: {In: set(result), Out: set(result)},
		join:  {In: set(result), Out: set()},
	}

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: tv},
		analysis.FuncLiveness{fn: liveness})
	if changed {
		t.Fatal("Run reported a change for a checkpoint block with two successors, want no change (filter 1 rejects it)")
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
}

func TestPassHandlesPointerTrackedValue(t *testing.T) {
	fn, ckpt, _ := linearSite(t)
	result, _ := fn.ParamByName("result")
	resume, _ := fn.BlockByName("resume")

	liveness := analysis.Liveness{
		ckpt:   {In: set(result), Out: set(result)},
		resume: {In: set(result), Out: set(result)},
	}
	module := ir.NewModule()
	module.AddFunction(fn)

	p := NewPass(config.NewOptions())
	_, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: analysis.TrackedValues{ckpt: {result}}},
		analysis.FuncLiveness{fn: liveness})

	var topo *Topo
	for _, d := range diags {
		if d.Injected {
			topo = d.Topo
		}
	}
	if topo == nil {
		t.Fatal("no injection diagnostic produced")
	}
	for _, inst := range topo.RestoreBlock.Instrs {
		if inst.Op == ir.OpAlloca {
			return
		}
	}
	t.Fatal("restore block has no alloca for the pointer tracked value")
}

func TestPassHandlesTwoSitesInOneFunction(t *testing.T) {
	fn, site1, site2, a, b := twoSiteFunction(t)
	mid, _ := fn.BlockByName("mid")
	exit, _ := fn.BlockByName("exit")

	liveness := analysis.Liveness{
		site1: {In: set(a, b), Out: set(a, b)},
		mid:   {In: set(a, b), Out: set(a, b)},
		site2: {In: set(a, b), Out: set(b)},
		exit:  {In: set(b), Out: set()},
	}
	module := ir.NewModule()
	module.AddFunction(fn)

	tv := analysis.TrackedValues{site1: {a}, site2: {b}}

	p := NewPass(config.NewOptions())
	changed, diags := p.Run(module,
		analysis.FuncTrackedValues{fn: tv},
		analysis.FuncLiveness{fn: liveness})

	if !changed {
		t.Fatal("Run reported no change for a function with two eligible sites")
	}
	injected := 0
	ids := map[int]bool{}
	for _, d := range diags {
		if d.Injected {
			injected++
			ids[d.Topo.ID] = true
		}
	}
	if injected != 2 {
		t.Fatalf("%d injected diagnostics, want 2", injected)
	}
	if !ids[1] || !ids[2] {
		t.Fatalf("injected ids = %v, want {1, 2}", ids)
	}
}
