//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package ir

import "errors"

// ErrInvalidIRState is returned by helpers given a malformed block,
// e.g. one without a terminator.
var ErrInvalidIRState = errors.New("ir: invalid IR state")

// ErrInvalidEdge is returned by SplitEdge when the requested edge
// does not exist, or its target is a landing-pad-like block (one
// this IR does not support splitting edges into).
var ErrInvalidEdge = errors.New("ir: invalid edge")
