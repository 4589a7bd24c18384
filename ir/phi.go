//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

import (
	"fmt"
	"io"
)

// PhiIncoming is one (predecessor, value) pair of a Phi node.
type PhiIncoming struct {
	Pred  *Block
	Value *Value
}

// Phi is a classic predecessor-indexed SSA phi node: it selects one
// of its Incoming values depending on which predecessor transferred
// control into Block.
type Phi struct {
	Block    *Block
	Result   *Value
	Incoming []PhiIncoming
}

// NewPhi creates a phi node for block and registers it as the
// definition of result.
func NewPhi(block *Block, result *Value) *Phi {
	phi := &Phi{
		Block:  block,
		Result: result,
	}
	result.Kind = ValPhi
	result.DefPhi = phi
	return phi
}

// AddIncoming adds one incoming edge to the phi.
func (phi *Phi) AddIncoming(pred *Block, value *Value) {
	phi.Incoming = append(phi.Incoming, PhiIncoming{Pred: pred, Value: value})
}

// IncomingFor returns the incoming value for pred, and whether one
// was found.
func (phi *Phi) IncomingFor(pred *Block) (*Value, bool) {
	for _, in := range phi.Incoming {
		if in.Pred == pred {
			return in.Value, true
		}
	}
	return nil, false
}

// SetIncomingValue updates every incoming slot of phi whose
// predecessor is pred to value. It panics if no such slot exists,
// per the IR Helpers contract ("asserts >= 1 match").
func SetIncomingValue(phi *Phi, pred *Block, value *Value) {
	matched := 0
	for i, in := range phi.Incoming {
		if in.Pred == pred {
			phi.Incoming[i].Value = value
			matched++
		}
	}
	if matched == 0 {
		panic(fmt.Sprintf("ir: SetIncomingValue: phi %s has no incoming edge from block %s",
			phi.Result, pred.ID))
	}
}

// Arity reports the number of incoming edges.
func (phi *Phi) Arity() int {
	return len(phi.Incoming)
}

// PP pretty-prints the phi node.
func (phi *Phi) PP(out io.Writer) {
	fmt.Fprintf(out, "\t%s = phi", phi.Result)
	for _, in := range phi.Incoming {
		fmt.Fprintf(out, " [%s, %s]", in.Value, in.Pred.ID)
	}
	fmt.Fprintf(out, "\n")
}
