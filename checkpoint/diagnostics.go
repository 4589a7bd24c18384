//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package checkpoint

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"

	"github.com/markkurossi/ckptc/utils"
)

// Diagnostic is one outcome of Pass.Run: either a successful
// checkpoint injection (Injected == true, Topo set) or a skipped
// function/site (ErrKind set). Never fatal for the module.
type Diagnostic struct {
	Injected bool
	ErrKind  ErrorKind
	Function string
	Site     string
	Message  string

	// Topo is set for a successful injection; the report table reads
	// the assigned id, slot range and tracked-value count off it.
	Topo *Topo
}

func newDiagnostic(err *Error) Diagnostic {
	return Diagnostic{
		ErrKind:  err.Kind,
		Function: err.Function,
		Site:     err.Site,
		Message:  err.Message,
	}
}

func (d Diagnostic) String() string {
	if d.Injected {
		// Annotate the function name with its assigned checkpoint id in
		// superscript.
		name := d.Function
		if d.Topo != nil {
			name += superscript.Itoa(d.Topo.ID)
		}
		return fmt.Sprintf("%s: %s: %s", name, d.Site, d.Message)
	}
	if len(d.Site) > 0 {
		return fmt.Sprintf("%s: %s: %s: %s", d.ErrKind, d.Function, d.Site, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.ErrKind, d.Function, d.Message)
}

// PrintDiagnostics writes one line per diagnostic to out, in the
// order Pass.Run produced them. A skipped function or site is logged
// as a warning through utils.Logger, keyed by a Point naming the
// function and site in place of a source position; a successful
// injection is just a plain line, since it is not an anomaly worth
// flagging.
func PrintDiagnostics(out io.Writer, diags []Diagnostic) {
	logger := utils.NewLogger(out)
	for _, d := range diags {
		if d.Injected {
			fmt.Fprintln(out, d.String())
			continue
		}
		logger.Warningf(utils.Point{Source: d.Function + ":" + d.Site}, "%s", d.String())
	}
}

// PrintReport renders a table of every successful injection:
// function, site, assigned id, tracked-value count, slot range.
func PrintReport(out io.Writer, diags []Diagnostic) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Function").SetAlign(tabulate.ML)
	tab.Header("Site").SetAlign(tabulate.ML)
	tab.Header("Id").SetAlign(tabulate.MR)
	tab.Header("Values").SetAlign(tabulate.MR)
	tab.Header("Slots").SetAlign(tabulate.MR)

	for _, d := range diags {
		if !d.Injected || d.Topo == nil {
			continue
		}
		t := d.Topo
		row := tab.Row()
		row.Column(d.Function)
		row.Column(d.Site)
		row.Column(fmt.Sprintf("%d", t.ID))
		row.Column(fmt.Sprintf("%d", len(t.Values)))
		row.Column(fmt.Sprintf("%d-%d", t.SlotStart, t.SlotEnd))
	}

	tab.Print(out)
}
