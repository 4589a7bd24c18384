//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

import (
	"fmt"
	"io"

	"github.com/markkurossi/ckptc/types"
)

// Function is a single function in a Module: an ordered list of
// parameters and a CFG of blocks rooted at Entry.
type Function struct {
	Name     string
	Params   []*Value
	Blocks   []*Block
	Entry    *Block
	nextID   ValueID
	blockSeq int
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// NewValue allocates a fresh, uniquely-IDed value owned by f.
func (f *Function) NewValue(name string, kind ValueKind, t types.Info) *Value {
	v := &Value{
		ID:   f.nextID,
		Name: name,
		Kind: kind,
		Type: t,
	}
	f.nextID++
	return v
}

// NewBlock creates a new block, appends it to f.Blocks, and returns
// it. The caller is responsible for wiring its edges.
func (f *Function) NewBlock(id string) *Block {
	if id == "" {
		id = fmt.Sprintf("l%d", f.blockSeq)
	}
	f.blockSeq++
	b := &Block{ID: id, Func: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// BlockByName returns the block with the given name.
func (f *Function) BlockByName(name string) (*Block, bool) {
	for _, b := range f.Blocks {
		if b.ID == name {
			return b, true
		}
	}
	return nil, false
}

// ParamByName returns the formal parameter with the given name.
func (f *Function) ParamByName(name string) (*Value, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ValuesByName returns, grouped by name, every named non-constant SSA
// value of f: its parameters, its phi results, and the results and
// operands of its instructions. Each value is listed once, however
// often it is used. A function may legally have more than one value
// with the same name across unrelated scopes produced by a real
// frontend; this pass's binder requires names to be unique within a
// function and reports AmbiguousName otherwise (see package analysis).
func (f *Function) ValuesByName() map[string][]*Value {
	out := make(map[string][]*Value)
	seen := make(map[*Value]bool)
	add := func(v *Value) {
		if v == nil || len(v.Name) == 0 || v.Kind == ValConst || seen[v] {
			return
		}
		seen[v] = true
		out[v.Name] = append(out[v.Name], v)
	}
	for _, p := range f.Params {
		add(p)
	}
	for _, b := range f.Blocks {
		for _, phi := range b.Phis {
			add(phi.Result)
		}
		for _, inst := range b.Instrs {
			add(inst.Result)
			for _, a := range inst.Args {
				add(a)
			}
		}
	}
	return out
}

// PP pretty-prints the function.
func (f *Function) PP(out io.Writer) {
	fmt.Fprintf(out, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			fmt.Fprintf(out, ", ")
		}
		fmt.Fprintf(out, "%s %s", p.Name, p.Type.ShortString())
	}
	fmt.Fprintf(out, ") {\n")
	if f.Entry != nil {
		f.Entry.PP(out, make(map[string]bool))
	}
	fmt.Fprintf(out, "}\n")
}
