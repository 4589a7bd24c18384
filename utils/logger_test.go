//
// Copyright (c) 2020 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarningfUndefinedPointUsesSource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Warningf(Point{Source: "fn:site"}, "no memory segment")

	got := buf.String()
	if !strings.HasPrefix(got, "fn:site: warning: ") {
		t.Fatalf("Warningf output = %q, want prefix %q", got, "fn:site: warning: ")
	}
	if !strings.Contains(got, "no memory segment") {
		t.Fatalf("Warningf output = %q, missing message", got)
	}
}

func TestWarningfDefinedPointUsesLineCol(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Warningf(Point{Source: "f.go", Line: 4, Col: 1}, "unused value")

	got := buf.String()
	if !strings.HasPrefix(got, "f.go:4:1: warning: ") {
		t.Fatalf("Warningf output = %q, want prefix %q", got, "f.go:4:1: warning: ")
	}
}

func TestWarningfAppendsNewlineOnce(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Warningf(Point{Source: "f"}, "already has newline\n")

	got := buf.String()
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("Warningf output = %q, want exactly one trailing newline", got)
	}
}

func TestErrorfReturnsFirstLineAsError(t *testing.T) {
	var buf bytes.Buffer
	err := NewLogger(&buf).Errorf(Point{Source: "f.go", Line: 2}, "bad op: %s", "add")

	if err == nil {
		t.Fatal("Errorf returned nil error")
	}
	if got, want := err.Error(), "bad op: add"; got != want {
		t.Fatalf("Errorf error = %q, want %q", got, want)
	}
	if !strings.HasPrefix(buf.String(), "f.go:2:0: bad op: add") {
		t.Fatalf("Errorf output = %q, want prefix with location", buf.String())
	}
}
