// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ssaprog

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// CallgraphAnalysisMode selects the algorithm used to build the initial
// call graph a Resolver resolves call sites against.
type CallgraphAnalysisMode uint64

const (
	// PointerAnalysis builds the call graph as a side effect of Andersen's
	// pointer analysis: over-approximating, and the slowest of the modes.
	PointerAnalysis CallgraphAnalysisMode = iota
	// StaticAnalysis only follows statically resolvable calls: fast, but
	// misses every call through an interface or function value.
	StaticAnalysis
	// ClassHierarchyAnalysis resolves interface calls against every method
	// in the program with a matching signature, regardless of whether the
	// receiver type is ever constructed.
	ClassHierarchyAnalysis
	// RapidTypeAnalysis restricts ClassHierarchyAnalysis's targets to types
	// that are actually instantiated somewhere reachable from main/init.
	RapidTypeAnalysis
	// VariableTypeAnalysis further restricts RapidTypeAnalysis using
	// variable-level type information.
	VariableTypeAnalysis
)

// ParseCallgraphAnalysisMode parses the config.Config.CallgraphMode string
// into a CallgraphAnalysisMode. The empty string is treated as "pointer".
func ParseCallgraphAnalysisMode(s string) (CallgraphAnalysisMode, error) {
	switch s {
	case "", "pointer":
		return PointerAnalysis, nil
	case "static":
		return StaticAnalysis, nil
	case "cha":
		return ClassHierarchyAnalysis, nil
	case "rta":
		return RapidTypeAnalysis, nil
	case "vta":
		return VariableTypeAnalysis, nil
	default:
		return 0, fmt.Errorf("unknown callgraph mode %q", s)
	}
}

func (mode CallgraphAnalysisMode) String() string {
	switch mode {
	case PointerAnalysis:
		return "pointer"
	case StaticAnalysis:
		return "static"
	case ClassHierarchyAnalysis:
		return "cha"
	case RapidTypeAnalysis:
		return "rta"
	case VariableTypeAnalysis:
		return "vta"
	default:
		return "unknown"
	}
}

// ComputeCallgraph computes the call graph of prog using the mode's
// algorithm.
func (mode CallgraphAnalysisMode) ComputeCallgraph(prog *ssa.Program) (*callgraph.Graph, error) {
	switch mode {
	case PointerAnalysis:
		pCfg := &pointer.Config{
			Mains:          ssautil.MainPackages(prog.AllPackages()),
			Reflection:     false,
			BuildCallGraph: true,
		}
		result, err := pointer.Analyze(pCfg)
		if err != nil {
			return nil, errors.Wrap(err, "pointer analysis failed")
		}
		return result.CallGraph, nil
	case StaticAnalysis:
		return static.CallGraph(prog), nil
	case ClassHierarchyAnalysis:
		return cha.CallGraph(prog), nil
	case VariableTypeAnalysis:
		roots := make(map[*ssa.Function]bool)
		for _, m := range ssautil.MainPackages(prog.AllPackages()) {
			roots[m.Func("init")] = true
			roots[m.Func("main")] = true
		}
		return vta.CallGraph(roots, static.CallGraph(prog)), nil
	case RapidTypeAnalysis:
		var roots []*ssa.Function
		for _, m := range ssautil.MainPackages(prog.AllPackages()) {
			roots = append(roots, m.Func("init"), m.Func("main"))
		}
		return rta.Analyze(roots, true).CallGraph, nil
	default:
		return nil, fmt.Errorf("unsupported callgraph analysis mode %v", mode)
	}
}

// Resolver answers ctxflow's ResolveTargets queries from a pre-built call
// graph, and names the program's entry points.
type Resolver struct {
	cg      *callgraph.Graph
	targets map[*ssa.Function]map[ssa.CallInstruction][]*ssa.Function
	entries []*ssa.Function
}

// NewResolver indexes cg's edges by (caller, call site) and treats the main
// and init functions of every main package in prog as the entry points.
// Functions of non-main packages are never entry points.
func NewResolver(prog *ssa.Program, cg *callgraph.Graph) *Resolver {
	r := &Resolver{cg: cg, targets: map[*ssa.Function]map[ssa.CallInstruction][]*ssa.Function{}}

	for fn, node := range cg.Nodes {
		if fn == nil {
			continue
		}
		for _, edge := range node.Out {
			if edge.Callee == nil || edge.Callee.Func == nil || edge.Site == nil {
				continue
			}
			byCall := r.targets[fn]
			if byCall == nil {
				byCall = map[ssa.CallInstruction][]*ssa.Function{}
				r.targets[fn] = byCall
			}
			byCall[edge.Site] = append(byCall[edge.Site], edge.Callee.Func)
		}
	}

	for _, main := range ssautil.MainPackages(prog.AllPackages()) {
		if f := main.Func("main"); f != nil {
			r.entries = append(r.entries, f)
		}
		if f := main.Func("init"); f != nil {
			r.entries = append(r.entries, f)
		}
	}

	return r
}

// EntryPoints returns the resolver's configured entry points.
func (r *Resolver) EntryPoints() []*ssa.Function { return r.entries }

// Callees returns the targets edge.Site resolves to from within caller.
func (r *Resolver) Callees(caller *ssa.Function, site ssa.CallInstruction) []*ssa.Function {
	return r.targets[caller][site]
}
