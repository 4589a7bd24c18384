//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

// Successors returns the CFG successors of a block, reading them off
// its terminator rather than trusting Succs to be in a canonical
// order (OpIf's "then" edge always comes first).
func Successors(b *Block) []*Block {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch term.Op {
	case OpJump:
		return []*Block{term.Target}
	case OpIf:
		elseBlock := otherSuccessor(b, term.Target)
		return []*Block{term.Target, elseBlock}
	case OpSwitch:
		succs := make([]*Block, 0, len(term.Cases)+1)
		succs = append(succs, term.Target)
		for _, c := range term.Cases {
			succs = append(succs, c.Target)
		}
		return succs
	default: // OpRet
		return nil
	}
}

func otherSuccessor(b *Block, not *Block) *Block {
	for _, s := range b.Succs {
		if s != not {
			return s
		}
	}
	return nil
}

// NumSuccessors is a convenience wrapper used by the selector to
// apply its "exactly one successor" filter without allocating a
// slice.
func NumSuccessors(b *Block) int {
	term := b.Terminator()
	if term == nil {
		return 0
	}
	switch term.Op {
	case OpJump:
		return 1
	case OpIf:
		return 2
	case OpSwitch:
		return 1 + len(term.Cases)
	default:
		return 0
	}
}

// SplitEdge inserts a new, empty block on the edge from "from" to
// "to", rewriting from's terminator to target the new block and the
// new block's sole instruction to jump to "to". It fails with
// ErrInvalidEdge if "to" is a landing pad or "from" has no edge to
// "to", and with ErrInvalidIRState if "from" has no terminator.
func SplitEdge(from, to *Block, name string) (*Block, error) {
	if to.LandingPad {
		return nil, ErrInvalidEdge
	}
	term := from.Terminator()
	if term == nil {
		return nil, ErrInvalidIRState
	}
	if idx := indexOfSucc(from, to); idx < 0 {
		return nil, ErrInvalidEdge
	}

	mid := from.Func.NewBlock(name)
	mid.AddInstr(&Instr{Op: OpJump, Target: to})

	// Rewrite from's terminator to target mid instead of to.
	switch term.Op {
	case OpJump:
		term.Target = mid
	case OpIf:
		if term.Target == to {
			term.Target = mid
		}
		// else: the implicit "else" edge now goes to mid; nothing
		// to rewrite on the instruction itself since that edge is
		// derived purely from Succs.
	case OpSwitch:
		if term.Target == to {
			term.Target = mid
		}
		for i := range term.Cases {
			if term.Cases[i].Target == to {
				term.Cases[i].Target = mid
			}
		}
	default:
		return nil, ErrInvalidIRState
	}

	removeEdge(from, to)
	addEdge(from, mid)
	addEdge(mid, to)

	// Any phi in "to" that had an incoming edge from "from" must now
	// receive it from "mid" instead, since "from" is no longer a
	// direct predecessor.
	for _, phi := range to.Phis {
		for i := range phi.Incoming {
			if phi.Incoming[i].Pred == from {
				phi.Incoming[i].Pred = mid
			}
		}
	}

	return mid, nil
}

func indexOfSucc(b *Block, succ *Block) int {
	for i, s := range b.Succs {
		if s == succ {
			return i
		}
	}
	return -1
}
