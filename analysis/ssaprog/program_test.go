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

package ssaprog_test

import (
	"path"
	"runtime"
	"testing"

	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"golang.org/x/tools/go/ssa"
)

func loadBasic(t *testing.T) (*ssa.Program, *ssaprog.Resolver) {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	src := path.Join(path.Dir(filename), "testdata/src/basic/main.go")

	prog, resolver, err := ssaprog.Load([]string{src}, ssaprog.StaticAnalysis)
	if err != nil {
		t.Fatalf("ssaprog.Load() failed: %v", err)
	}
	return prog, resolver
}

func findFunc(prog *ssa.Program, name string) *ssa.Function {
	for fn := range ssaFunctions(prog) {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

// ssaFunctions mirrors ssautil.AllFunctions without importing it twice for
// a one-off lookup in tests.
func ssaFunctions(prog *ssa.Program) map[*ssa.Function]bool {
	out := map[*ssa.Function]bool{}
	for _, pkg := range prog.AllPackages() {
		for _, mem := range pkg.Members {
			if fn, ok := mem.(*ssa.Function); ok {
				out[fn] = true
			}
		}
	}
	return out
}

func TestParseCallgraphAnalysisMode(t *testing.T) {
	cases := map[string]ssaprog.CallgraphAnalysisMode{
		"":        ssaprog.PointerAnalysis,
		"pointer": ssaprog.PointerAnalysis,
		"static":  ssaprog.StaticAnalysis,
		"cha":     ssaprog.ClassHierarchyAnalysis,
		"rta":     ssaprog.RapidTypeAnalysis,
		"vta":     ssaprog.VariableTypeAnalysis,
	}
	for in, want := range cases {
		got, err := ssaprog.ParseCallgraphAnalysisMode(in)
		if err != nil {
			t.Errorf("ParseCallgraphAnalysisMode(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCallgraphAnalysisMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ssaprog.ParseCallgraphAnalysisMode("bogus"); err == nil {
		t.Error("ParseCallgraphAnalysisMode(\"bogus\") succeeded, want error")
	}
}

func TestAdapterResolvesCallToTarget(t *testing.T) {
	prog, resolver := loadBasic(t)
	mainFn := findFunc(prog, "main")
	addFn := findFunc(prog, "add")
	if mainFn == nil || addFn == nil {
		t.Fatalf("could not find main/add in loaded program (main=%v add=%v)", mainFn, addFn)
	}

	a := ssaprog.NewAdapter(prog, resolver)

	found := false
	graph := a.ControlFlowGraph(mainFn)
	for _, n := range graph.Nodes() {
		if !a.IsCall(n) {
			continue
		}
		targets := a.ResolveTargets(mainFn, n)
		for _, target := range targets {
			if target == addFn {
				found = true
			}
		}
	}
	if !found {
		t.Error("no call node in main resolved to add")
	}
}

func TestAdapterHeadsAndTailsAreNonEmpty(t *testing.T) {
	prog, resolver := loadBasic(t)
	addFn := findFunc(prog, "add")
	if addFn == nil {
		t.Fatal("could not find add in loaded program")
	}

	a := ssaprog.NewAdapter(prog, resolver)
	graph := a.ControlFlowGraph(addFn)

	if len(graph.Heads()) == 0 {
		t.Error("Heads() is empty for a non-empty function")
	}
	if len(graph.Tails()) == 0 {
		t.Error("Tails() is empty for a non-empty function")
	}
	if graph.Size() != len(graph.Nodes()) {
		t.Errorf("Size() = %d, want %d (len(Nodes()))", graph.Size(), len(graph.Nodes()))
	}
}

func TestIsPhantomMethodForNilAndExternalFunctions(t *testing.T) {
	prog, resolver := loadBasic(t)
	a := ssaprog.NewAdapter(prog, resolver)

	if !a.IsPhantomMethod(nil) {
		t.Error("IsPhantomMethod(nil) = false, want true")
	}

	printlnFn := findFunc(prog, "println")
	if printlnFn != nil && !a.IsPhantomMethod(printlnFn) {
		t.Error("IsPhantomMethod(println) = false, want true (builtin has no SSA body)")
	}
}
