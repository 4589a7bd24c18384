//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import "fmt"

// ErrorKind classifies why a function or site could not be
// transformed. None of these are fatal for the module as a whole;
// Pass.Run collects one Diagnostic per occurrence and continues.
type ErrorKind uint8

// Error kinds.
const (
	// MissingAnalysis means no tracked-values or liveness data was
	// bound for the function.
	MissingAnalysis ErrorKind = iota
	// NoMemorySegment means the function lacks a parameter named by
	// config.Options.MemorySegmentParam.
	NoMemorySegment
	// InvalidEntry means the function's entry block has no
	// successor, or splitting the restore-controller edge failed.
	InvalidEntry
	// UnsupportedSite means a checkpoint block's terminator does not
	// have exactly one successor.
	UnsupportedSite
	// EdgeSplitFailure means a site's successor is a landing pad.
	EdgeSplitFailure
	// AmbiguousName means two operands of the function share a name;
	// fatal for (only) that function.
	AmbiguousName
)

var errorKindNames = map[ErrorKind]string{
	MissingAnalysis:  "missing analysis",
	NoMemorySegment:  "no memory segment",
	InvalidEntry:     "invalid entry",
	UnsupportedSite:  "unsupported site",
	EdgeSplitFailure: "edge split failure",
	AmbiguousName:    "ambiguous name",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is the error type every component in this package returns.
type Error struct {
	Kind     ErrorKind
	Function string
	Site     string
	Message  string
}

func (e *Error) Error() string {
	if len(e.Site) > 0 {
		return fmt.Sprintf("%s: %s: %s: %s", e.Kind, e.Function, e.Site, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Function, e.Message)
}
