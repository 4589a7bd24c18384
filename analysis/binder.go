//
// Copyright (c) 2020-2025 Markku Rossi
//
// All rights reserved.
//

package analysis

import (
	"fmt"

	"github.com/markkurossi/ckptc/ir"
)

// ErrAmbiguousName is returned for a function in which two distinct
// operand values share a name -- the binder cannot resolve a JSON
// name to a unique value. This is fatal for the offending function
// only; the rest of the module is still processed.
type ErrAmbiguousName struct {
	Function string
	Name     string
}

func (e *ErrAmbiguousName) Error() string {
	return fmt.Sprintf("analysis: function %q: ambiguous value name %q", e.Function, e.Name)
}

// Bind resolves the by-name JSON maps against module, returning
// pointer-keyed tracked-values and liveness maps. Each map gets an
// entry for every function it has data for and whose names all
// resolve unambiguously; the two maps are bound independently, so a
// function may appear in one and not the other.
// Functions named in the JSON but absent from the module, or vice
// versa, are simply skipped -- the caller (the checkpoint pass)
// reports MissingAnalysis for those separately.
func Bind(module *ir.Module, trackedJSON TrackedValuesJSON, liveJSON LivenessJSON) (FuncTrackedValues, FuncLiveness, []error) {
	tracked := make(FuncTrackedValues)
	live := make(FuncLiveness)
	var errs []error

	for _, fn := range module.Functions {
		names, err := uniqueNames(fn)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if bbMap, ok := trackedJSON[fn.Name]; ok {
			tv, err := bindTrackedValues(fn, names, bbMap)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			tracked[fn] = tv
		}

		if bbMap, ok := liveJSON[fn.Name]; ok {
			lv, err := bindLiveness(fn, names, bbMap)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			live[fn] = lv
		}
	}

	return tracked, live, errs
}

// uniqueNames returns a name -> value lookup table for fn, or
// ErrAmbiguousName if two distinct operand values share a name.
func uniqueNames(fn *ir.Function) (map[string]*ir.Value, *ErrAmbiguousName) {
	byName := fn.ValuesByName()
	out := make(map[string]*ir.Value, len(byName))
	for name, values := range byName {
		first := values[0]
		for _, v := range values[1:] {
			if v != first {
				return nil, &ErrAmbiguousName{Function: fn.Name, Name: name}
			}
		}
		out[name] = first
	}
	return out, nil
}

func bindTrackedValues(fn *ir.Function, names map[string]*ir.Value, bbMap map[string][]string) (TrackedValues, error) {
	tv := make(TrackedValues)
	for blockName, valueNames := range bbMap {
		block, ok := fn.BlockByName(blockName)
		if !ok {
			continue
		}
		var values []*ir.Value
		for _, vn := range valueNames {
			v, ok := names[vn]
			if !ok {
				continue
			}
			values = append(values, v)
		}
		tv[block] = values
	}
	return tv, nil
}

func bindLiveness(fn *ir.Function, names map[string]*ir.Value, bbMap map[string]LivenessEntryJSON) (Liveness, error) {
	lv := make(Liveness)
	for blockName, entry := range bbMap {
		block, ok := fn.BlockByName(blockName)
		if !ok {
			continue
		}
		set := LiveSet{In: make(map[*ir.Value]bool), Out: make(map[*ir.Value]bool)}
		for _, vn := range entry.In {
			if v, ok := names[vn]; ok {
				set.In[v] = true
			}
		}
		for _, vn := range entry.Out {
			if v, ok := names[vn]; ok {
				set.Out[v] = true
			}
		}
		lv[block] = set
	}
	return lv, nil
}
