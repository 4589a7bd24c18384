//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

import (
	"fmt"

	"github.com/markkurossi/ckptc/types"
)

// ValueID identifies a value within a function. IDs are assigned in
// creation order and never reused; they give values a stable identity
// independent of their (possibly rewritten) Name.
type ValueID uint32

// ValueKind classifies how a Value came to exist.
type ValueKind uint8

// Value kinds.
const (
	// ValConst is a literal constant.
	ValConst ValueKind = iota
	// ValArg is a formal parameter of the enclosing function.
	ValArg
	// ValInstr is the result of an instruction.
	ValInstr
	// ValPhi is the result of a Phi node.
	ValPhi
)

// Value is an SSA value: a constant, a function argument, or the
// result of an instruction or phi node. Values are always referred to
// by pointer; two values are the same value iff they are the same
// pointer.
type Value struct {
	ID      ValueID
	Name    string
	Kind    ValueKind
	Type    types.Info
	PtrInfo *PtrInfo

	// ConstValue holds the literal value when Kind == ValConst.
	ConstValue interface{}

	// Def is the instruction that defines this value (nil for
	// ValConst and ValArg).
	Def *Instr

	// DefPhi is the phi node that defines this value (nil unless
	// Kind == ValPhi).
	DefPhi *Phi
}

// PtrInfo carries the contained-type attribute for pointer-typed
// values, per the data model's "pointer-typed values carry a
// contained-type attribute" invariant.
type PtrInfo struct {
	ElementType types.Info
}

// IsPointer reports whether v has pointer type.
func (v *Value) IsPointer() bool {
	return v.Type.Type == types.TPtr
}

// IsNestedPointer reports whether v is a pointer whose element type
// is itself a pointer or an aggregate (struct/array). The emitter
// only reifies single-indirection loads/stores, so such values are
// ineligible for tracking.
func (v *Value) IsNestedPointer() bool {
	if !v.IsPointer() || v.PtrInfo == nil {
		return false
	}
	switch v.PtrInfo.ElementType.Type {
	case types.TPtr, types.TStruct, types.TArray:
		return true
	default:
		return false
	}
}

// ElementType returns the pointee type of a pointer value, or the
// value's own type if it is not a pointer.
func (v *Value) ElementType() types.Info {
	if v.IsPointer() && v.PtrInfo != nil {
		return v.PtrInfo.ElementType
	}
	return v.Type
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.Kind == ValConst {
		return fmt.Sprintf("%v", v.ConstValue)
	}
	return v.Name
}

// Equal reports whether v and o refer to the same SSA value.
func (v *Value) Equal(o *Value) bool {
	return v == o
}
