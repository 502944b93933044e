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

package nilness_test

import (
	"context"
	"path"
	"runtime"
	"testing"

	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/nilness"
	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"golang.org/x/tools/go/ssa"
)

func loadNilExample(t *testing.T) (*ssa.Program, *ssaprog.Resolver) {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	src := path.Join(path.Dir(filename), "testdata/src/nilexample/main.go")

	prog, resolver, err := ssaprog.Load([]string{src}, ssaprog.StaticAnalysis)
	if err != nil {
		t.Fatalf("ssaprog.Load() failed: %v", err)
	}
	return prog, resolver
}

func findFunc(prog *ssa.Program, name string) *ssa.Function {
	for _, pkg := range prog.AllPackages() {
		for _, mem := range pkg.Members {
			if fn, ok := mem.(*ssa.Function); ok && fn.Name() == name {
				return fn
			}
		}
	}
	return nil
}

func runEngine(t *testing.T, prog *ssa.Program, resolver *ssaprog.Resolver) *ctxflow.Engine[*ssa.Function, ssaprog.Node, nilness.Env] {
	t.Helper()
	a := nilness.New(prog)
	adapter := ssaprog.NewAdapter(prog, resolver)
	engine := ctxflow.New[*ssa.Function, ssaprog.Node, nilness.Env](adapter, a, a, ctxflow.Options{})
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if warnings := engine.Warnings(); len(warnings) != 0 {
		t.Fatalf("Run() produced warnings: %v", warnings)
	}
	return engine
}

// returnState finds the single *ssa.Return instruction in fn and reports the
// nilness recorded for its Index-th result after the engine has run in ctx.
func returnState(t *testing.T, ctx *ctxflow.Context[*ssa.Function, ssaprog.Node, nilness.Env], fn *ssa.Function, index int) nilness.State {
	t.Helper()
	for _, block := range fn.Blocks {
		for i, instr := range block.Instrs {
			if _, ok := instr.(*ssa.Return); ok {
				n := ssaprog.Node{Block: block, Index: i}
				return ctx.ValueAfter(n).Get(nilness.RetLoc{Index: index})
			}
		}
	}
	t.Fatalf("no return instruction found in %s", fn.Name())
	return nilness.Unknown
}

func TestAllocIsAlwaysNonNil(t *testing.T) {
	prog, resolver := loadNilExample(t)
	fn := findFunc(prog, "makeNonNil")
	if fn == nil {
		t.Fatal("could not find makeNonNil in loaded program")
	}
	engine := runEngine(t, prog, resolver)

	contexts := engine.Contexts(fn)
	if len(contexts) == 0 {
		t.Fatal("expected at least one context for makeNonNil")
	}
	for _, ctx := range contexts {
		if got := returnState(t, ctx, fn, 0); got != nilness.NonNil {
			t.Errorf("makeNonNil's return = %v, want NonNil", got)
		}
	}
}

func TestPhiMergesNilAndNonNilIntoConflict(t *testing.T) {
	prog, resolver := loadNilExample(t)
	fn := findFunc(prog, "pick")
	if fn == nil {
		t.Fatal("could not find pick in loaded program")
	}
	engine := runEngine(t, prog, resolver)

	contexts := engine.Contexts(fn)
	if len(contexts) == 0 {
		t.Fatal("expected at least one context for pick")
	}
	for _, ctx := range contexts {
		if got := returnState(t, ctx, fn, 0); got != nilness.Conflict {
			t.Errorf("pick's return = %v, want Conflict (merges a nil branch and a non-nil branch)", got)
		}
	}
}

func TestInterproceduralCallEntryAndExit(t *testing.T) {
	prog, resolver := loadNilExample(t)
	mainFn := findFunc(prog, "main")
	pickFn := findFunc(prog, "pick")
	if mainFn == nil || pickFn == nil {
		t.Fatal("could not find main/pick in loaded program")
	}
	engine := runEngine(t, prog, resolver)

	// main calls pick(true), a boolean constant; the call must reach pick
	// through CallEntry, so pick must have at least one context.
	if len(engine.Contexts(pickFn)) == 0 {
		t.Error("expected pick to have at least one context reached from main")
	}
}
