//
// main.go
//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/markkurossi/ckptc/analysis"
	"github.com/markkurossi/ckptc/checkpoint"
	"github.com/markkurossi/ckptc/config"
	"github.com/markkurossi/ckptc/ir"
	"github.com/markkurossi/ckptc/passmgr"
	"github.com/markkurossi/ckptc/sample"
)

func main() {
	trackedPath := flag.String("tracked", "", "tracked-values JSON file (overrides the bundled sample's own analysis)")
	livePath := flag.String("live", "", "liveness JSON file (overrides the bundled sample's own analysis)")
	inPath := flag.String("in", "", "input module (unused without a real front end; omit to run the bundled sample)")
	outPath := flag.String("out", "", "write the transformed module's textual dump here (default stdout)")
	report := flag.Bool("report", false, "print a tabulated summary of injected checkpoints")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	trace := flag.Bool("trace", false, "trace each function as the pass visits it")
	flag.Parse()

	log.SetFlags(0)

	if len(*inPath) > 0 {
		log.Fatal("ckptc: -in is not supported without a front end; omit it to run the bundled sample")
	}

	opts := config.NewOptions()
	opts.Verbose = *verbose
	opts.Trace = *trace

	module, tracked, liveness, err := loadAnalyses(*trackedPath, *livePath)
	if err != nil {
		log.Fatal(err)
	}

	pass := checkpoint.NewPass(opts)
	registry := passmgr.NewRegistry()
	passmgr.RegisterCheckpointPass(registry, pass, tracked, liveness)
	diags := registry.Run(module)

	checkpoint.PrintDiagnostics(os.Stderr, diags)

	out := os.Stdout
	if len(*outPath) > 0 {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	module.PP(out)

	if *report {
		checkpoint.PrintReport(os.Stdout, diags)
	}
}

// loadAnalyses builds the bundled sample module, then, for whichever
// of -tracked/-live was given, loads the JSON file and binds it
// against the sample's own names via analysis.Bind, overriding that
// half of the sample's built-in analysis.
func loadAnalyses(trackedPath, livePath string) (*ir.Module, analysis.FuncTrackedValues, analysis.FuncLiveness, error) {
	module, tracked, liveness := sample.NewLudModule()

	if len(trackedPath) == 0 && len(livePath) == 0 {
		return module, tracked, liveness, nil
	}

	var trackedJSON analysis.TrackedValuesJSON
	var liveJSON analysis.LivenessJSON

	if len(trackedPath) > 0 {
		var err error
		trackedJSON, err = analysis.LoadTrackedValues(trackedPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if len(livePath) > 0 {
		var err error
		liveJSON, err = analysis.LoadLiveness(livePath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	boundTracked, boundLiveness, bindErrs := analysis.Bind(module, trackedJSON, liveJSON)
	for _, e := range bindErrs {
		fmt.Fprintln(os.Stderr, e)
	}

	if len(trackedPath) > 0 {
		tracked = boundTracked
	}
	if len(livePath) > 0 {
		liveness = boundLiveness
	}

	return module, tracked, liveness, nil
}
