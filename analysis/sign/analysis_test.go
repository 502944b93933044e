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

package sign_test

import (
	"context"
	"testing"

	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/sign"
	"github.com/valuectx/ctxflow/analysis/toyir"
)

// straightLineProgram builds:
//
//	func main():
//	    x := 5
//	    y := -3
//	    z := x + y   // ambiguous: positive + negative
//	    w := x * x   // positive
//	    return w
func straightLineProgram() *toyir.Program {
	prog := toyir.NewProgram()
	main := prog.AddFunc("main")
	b0 := main.NewBlock(
		toyir.Assign{Lhs: "x", Rhs: toyir.Const(5)},
		toyir.Assign{Lhs: "y", Rhs: toyir.Const(-3)},
		toyir.Assign{Lhs: "z", Rhs: toyir.BinOp{Op: "+", X: toyir.Ref("x"), Y: toyir.Ref("y")}},
		toyir.Assign{Lhs: "w", Rhs: toyir.BinOp{Op: "*", X: toyir.Ref("x"), Y: toyir.Ref("x")}},
		toyir.Return{Value: toyir.Ref("w")},
	)
	_ = b0
	prog.AddEntry("main")
	return prog
}

func runEngine(t *testing.T, prog *toyir.Program, opts ctxflow.Options) *ctxflow.Engine[toyir.Method, *toyir.Block, sign.Env] {
	t.Helper()
	a := sign.New(prog)
	engine := ctxflow.New[toyir.Method, *toyir.Block, sign.Env](toyir.NewAdapter(prog), a, a, opts)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if warnings := engine.Warnings(); len(warnings) != 0 {
		t.Fatalf("Run() produced warnings: %v", warnings)
	}
	return engine
}

func TestStraightLineSignPropagation(t *testing.T) {
	prog := straightLineProgram()
	engine := runEngine(t, prog, ctxflow.Options{})

	sol, err := engine.MeetOverValidPathsSolution()
	if err != nil {
		t.Fatalf("MeetOverValidPathsSolution() failed: %v", err)
	}

	contexts := engine.Contexts("main")
	if len(contexts) != 1 {
		t.Fatalf("expected exactly 1 context for main, got %d", len(contexts))
	}
	block := contexts[0].CFG().Nodes()[0]

	out := sol.ValueAfter[block]
	want := map[toyir.Var]sign.Sign{
		"x":           sign.Positive,
		"y":           sign.Negative,
		"z":           sign.Bottom, // positive + negative: ambiguous
		"w":           sign.Positive,
		sign.ReturnVar: sign.Positive,
	}
	for v, s := range want {
		if got := out.Get(v); got != s {
			t.Errorf("out.Get(%q) = %v, want %v", v, got, s)
		}
	}
}

func TestReclamationFreesUnreachableContextAndDisablesSolution(t *testing.T) {
	prog := straightLineProgram()
	engine := runEngine(t, prog, ctxflow.Options{FreeResultsOnTheFly: true})

	contexts := engine.Contexts("main")
	if len(contexts) != 1 {
		t.Fatalf("expected exactly 1 context for main, got %d", len(contexts))
	}
	if !contexts[0].Freed() {
		t.Errorf("expected main's only context to be freed once nothing depends on it")
	}
	if contexts[0].CFG() != nil {
		t.Errorf("Freed context should report a nil CFG")
	}

	if _, err := engine.MeetOverValidPathsSolution(); err != ctxflow.ErrSolutionUnavailable {
		t.Errorf("MeetOverValidPathsSolution() error = %v, want ErrSolutionUnavailable", err)
	}
}

// callingProgram builds:
//
//	func square(n): return n * n
//	func main():
//	    x := square(5)
//	    y := square(-3)
//	    return x + y
func callingProgram() *toyir.Program {
	prog := toyir.NewProgram()

	square := prog.AddFunc("square", "n")
	square.NewBlock(toyir.Return{Value: toyir.BinOp{Op: "*", X: toyir.Ref("n"), Y: toyir.Ref("n")}})

	main := prog.AddFunc("main")
	b0 := main.NewBlock(toyir.Call{Lhs: "x", Callee: "square", Args: []toyir.Expr{toyir.Const(5)}})
	b1 := main.NewBlock(toyir.Call{Lhs: "y", Callee: "square", Args: []toyir.Expr{toyir.Const(-3)}})
	b2 := main.NewBlock(toyir.Return{Value: toyir.BinOp{Op: "+", X: toyir.Ref("x"), Y: toyir.Ref("y")}})
	toyir.Connect(b0, b1)
	toyir.Connect(b1, b2)

	prog.AddEntry("main")
	return prog
}

func TestCallCreatesDistinctContextsPerArgumentSign(t *testing.T) {
	prog := callingProgram()
	engine := runEngine(t, prog, ctxflow.Options{})

	squareContexts := engine.Contexts("square")
	if len(squareContexts) != 2 {
		t.Fatalf("expected 2 contexts for square (one per argument sign), got %d", len(squareContexts))
	}
	for _, c := range squareContexts {
		if !c.Analysed() {
			t.Errorf("context %v was never analysed", c)
		}
		if got := c.ExitValue().Get(sign.ReturnVar); got != sign.Positive {
			t.Errorf("square context %v: $ret = %v, want positive (n*n is always positive)", c, got)
		}
	}

	sol, err := engine.MeetOverValidPathsSolution()
	if err != nil {
		t.Fatalf("MeetOverValidPathsSolution() failed: %v", err)
	}

	mainContexts := engine.Contexts("main")
	if len(mainContexts) != 1 {
		t.Fatalf("expected exactly 1 context for main, got %d", len(mainContexts))
	}
	tail := mainContexts[0].CFG().Tails()[0]
	if got := sol.ValueAfter[tail].Get(sign.ReturnVar); got != sign.Positive {
		t.Errorf("main's $ret = %v, want positive", got)
	}
}

// mutualRecursionProgram builds the mutually recursive pair:
//
//	func f(a, b):
//	    if <unmodeled condition>:
//	        return a * b
//	    else:
//	        return g(10)
//	func g(u):
//	    return f(-u, u)
//
// f is itself an entry point with no callers, so its boundary is fully
// unconstrained; this forces the engine to create a second, more precise
// context for f once g calls back into it with concrete argument signs,
// exercising context proliferation through a genuine call cycle.
func mutualRecursionProgram() *toyir.Program {
	prog := toyir.NewProgram()

	f := prog.AddFunc("f", "a", "b")
	f0 := f.NewBlock()
	f1 := f.NewBlock(toyir.Return{Value: toyir.BinOp{Op: "*", X: toyir.Ref("a"), Y: toyir.Ref("b")}})
	f2 := f.NewBlock(toyir.Call{Lhs: "r", Callee: "g", Args: []toyir.Expr{toyir.Const(10)}})
	f3 := f.NewBlock(toyir.Return{Value: toyir.Ref("r")})
	toyir.Connect(f0, f1)
	toyir.Connect(f0, f2)
	toyir.Connect(f2, f3)

	g := prog.AddFunc("g", "u")
	g0 := g.NewBlock(toyir.Call{
		Lhs: "r", Callee: "f",
		Args: []toyir.Expr{toyir.BinOp{Op: "-", X: toyir.Const(0), Y: toyir.Ref("u")}, toyir.Ref("u")},
	})
	g1 := g.NewBlock(toyir.Return{Value: toyir.Ref("r")})
	toyir.Connect(g0, g1)

	prog.AddEntry("f")
	return prog
}

// selfRecursiveProgram builds a niladic self-recursive function:
//
//	func loop():
//	    r := loop()
//	    return r
//
// loop's boundary is Top() on every dispatch (it takes no arguments), so
// the first recursive call resolves back to loop's own, still-pending
// context: a direct self-loop in the transition table, the smallest case
// that exercises reclamation racing against wakeCallers re-queuing the
// context that is about to be freed.
func selfRecursiveProgram() *toyir.Program {
	prog := toyir.NewProgram()

	loop := prog.AddFunc("loop")
	b0 := loop.NewBlock(toyir.Call{Lhs: "r", Callee: "loop", Args: []toyir.Expr{}})
	b1 := loop.NewBlock(toyir.Return{Value: toyir.Ref("r")})
	toyir.Connect(b0, b1)

	prog.AddEntry("loop")
	return prog
}

func TestReclamationWithSelfRecursionDoesNotPanic(t *testing.T) {
	prog := selfRecursiveProgram()
	engine := runEngine(t, prog, ctxflow.Options{FreeResultsOnTheFly: true})

	contexts := engine.Contexts("loop")
	if len(contexts) == 0 {
		t.Fatalf("expected at least 1 context for loop")
	}
	for _, c := range contexts {
		if c.Freed() && !c.Analysed() {
			t.Errorf("context %v was freed before ever reaching a fixpoint: it must still have been on the worklist", c)
		}
	}
}

func TestReclamationWithMutualRecursionDoesNotPanic(t *testing.T) {
	prog := mutualRecursionProgram()
	engine := runEngine(t, prog, ctxflow.Options{FreeResultsOnTheFly: true})

	for _, method := range []toyir.Method{"f", "g"} {
		for _, c := range engine.Contexts(method) {
			if c.Freed() && !c.Analysed() {
				t.Errorf("context %v was freed before ever reaching a fixpoint: it must still have been on the worklist", c)
			}
		}
	}
}

// phantomCallProgram builds:
//
//	func main():
//	    x := missing(5)   // missing has no registered body
//	    y := 1
//
// missing is never registered with prog, so it resolves to no context at
// all: the call degrades to CallLocal alone and is recorded as a default
// call site.
func phantomCallProgram() *toyir.Program {
	prog := toyir.NewProgram()
	main := prog.AddFunc("main")
	b0 := main.NewBlock(toyir.Call{Lhs: "x", Callee: "missing", Args: []toyir.Expr{toyir.Const(5)}})
	b1 := main.NewBlock(toyir.Assign{Lhs: "y", Rhs: toyir.Const(1)})
	toyir.Connect(b0, b1)
	prog.AddEntry("main")
	return prog
}

func TestCallToUnresolvedTargetDegradesToCallLocal(t *testing.T) {
	prog := phantomCallProgram()
	a := sign.New(prog)
	engine := ctxflow.New[toyir.Method, *toyir.Block, sign.Env](toyir.NewAdapter(prog), a, a, ctxflow.Options{})
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	mainContexts := engine.Contexts("main")
	if len(mainContexts) != 1 {
		t.Fatalf("expected exactly 1 context for main, got %d", len(mainContexts))
	}
	cur := mainContexts[0]
	b0 := cur.CFG().Nodes()[0]

	site := ctxflow.CallSite[toyir.Method, *toyir.Block, sign.Env]{Context: cur, Node: b0}
	if !engine.TransitionTable().IsDefaultCallSite(site) {
		t.Errorf("expected the call to \"missing\" to be recorded as a default call site")
	}
	if targets := engine.Targets(site); len(targets) != 0 {
		t.Errorf("Targets(site) = %v, want none: \"missing\" has no registered body", targets)
	}

	want := a.CallLocal(cur, b0, cur.ValueBefore(b0))
	got := cur.ValueAfter(b0)
	if !got.Equal(want) {
		t.Errorf("ValueAfter(b0) = %v, want CallLocal(in) alone = %v", got, want)
	}
	if got.Get("x") != sign.Top {
		t.Errorf("x = %v, want Top: an unresolved call binds nothing to its result variable", got.Get("x"))
	}
}

func TestMutualRecursionConverges(t *testing.T) {
	prog := mutualRecursionProgram()
	engine := runEngine(t, prog, ctxflow.Options{})

	fContexts := engine.Contexts("f")
	gContexts := engine.Contexts("g")
	if len(fContexts) < 2 {
		t.Errorf("expected at least 2 contexts for f (unconstrained entry, plus (negative,positive) via g), got %d", len(fContexts))
	}
	if len(gContexts) < 1 {
		t.Errorf("expected at least 1 context for g, got %d", len(gContexts))
	}
	for _, c := range fContexts {
		if !c.Analysed() {
			t.Errorf("f context %v never reached a fixpoint", c)
		}
	}
	for _, c := range gContexts {
		if !c.Analysed() {
			t.Errorf("g context %v never reached a fixpoint", c)
		}
	}
}
