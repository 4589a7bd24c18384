//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

// Package config holds the checkpoint pass's tunable parameters: a
// plain struct with a constructor that fills in defaults, no coupling
// to flag parsing.
package config

// Options are the checkpoint pass's tunables.
type Options struct {
	// MemorySegmentParam is the formal parameter name the emitter
	// looks for when locating a function's memory segment.
	MemorySegmentParam string

	// Layout fixes the reserved memory-segment cell indices.
	Layout MemoryLayout

	// KeepSentinelAsNoop replaces the erased checkpoint sentinel
	// call with a no-op marker instruction instead of deleting it
	// outright, so a textual dump still shows where the original
	// call was. Useful when debugging site selection.
	KeepSentinelAsNoop bool

	// Verbose makes each injected-checkpoint diagnostic spell out its
	// assigned id, slot range and tracked value names.
	Verbose bool

	// Trace turns on per-function progress tracing, printed with the
	// caller's source file and line via utils.Tracef.
	Trace bool
}

// NewOptions returns Options with every field set to its default.
func NewOptions() *Options {
	return &Options{
		MemorySegmentParam: "ckpt_mem",
		Layout:             DefaultLayout,
	}
}
