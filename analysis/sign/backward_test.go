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
	"github.com/valuectx/ctxflow/analysis/toyir"
)

// liveReturnVar stands in, within a callee's own liveSet, for "this
// function's return value is demanded by at least one caller" -- the
// backward-analysis analogue of sign.ReturnVar.
const liveReturnVar toyir.Var = "$ret"

// liveSet is a backward liveness domain: the set of variables that may be
// read before being overwritten from a given program point onward. It is
// a "may" analysis, so combining two values is a union, and Top -- the
// identity value threaded through a fresh context -- is the empty set.
type liveSet map[toyir.Var]bool

func (s liveSet) has(v toyir.Var) bool { return s != nil && s[v] }

func (s liveSet) copy() liveSet {
	out := make(liveSet, len(s))
	for v, ok := range s {
		if ok {
			out[v] = true
		}
	}
	return out
}

func (s liveSet) equal(o liveSet) bool {
	for v := range s {
		if s[v] && !o[v] {
			return false
		}
	}
	for v := range o {
		if o[v] && !s[v] {
			return false
		}
	}
	return true
}

func unionLive(x, y liveSet) liveSet {
	out := x.copy()
	for v, ok := range y {
		if ok {
			out[v] = true
		}
	}
	return out
}

// addUses adds every variable e reads to out.
func addUses(out liveSet, e toyir.Expr) {
	switch x := e.(type) {
	case toyir.Ref:
		out[toyir.Var(x)] = true
	case toyir.BinOp:
		addUses(out, x.X)
		addUses(out, x.Y)
	}
}

// livenessAnalysis is a minimal backward, context-sensitive liveness
// analysis over toyir. It exists only to exercise
// ctxflow.Options{Direction: Backward} end-to-end: neither the teacher
// nor the rest of the retrieval pack ships a concrete backward VASCO
// client, only the abstract BackwardInterProceduralAnalysis base class,
// so this is grounded directly on the classic backward liveness dataflow
// problem instead of a ported example. Its interprocedural shape mirrors
// sign's CallEntry/CallExit/CallLocal split, reversed: a callee's context
// is keyed on whether its result is demanded at all by the call that
// reaches it (computed in CallExit, which for a backward analysis is
// where a callee's boundary is discovered), and a parameter found live at
// the callee's entry marks the corresponding argument expression's
// variables live before the call (computed in CallEntry, which for a
// backward analysis reports a stabilised callee's contribution back to
// its callers).
type livenessAnalysis struct {
	prog *toyir.Program
}

// Top implements ctxflow.Lattice.
func (a *livenessAnalysis) Top() liveSet { return liveSet{} }

// Copy implements ctxflow.Lattice.
func (a *livenessAnalysis) Copy(s liveSet) liveSet { return s.copy() }

// Meet implements ctxflow.Lattice.
func (a *livenessAnalysis) Meet(x, y liveSet) liveSet { return unionLive(x, y) }

// Equal implements ctxflow.Lattice.
func (a *livenessAnalysis) Equal(x, y liveSet) bool { return x.equal(y) }

// BoundaryValue implements ctxflow.FlowFunctions: nothing beyond an entry
// point's own exit is ever live, since nothing outside the program reads
// its result.
func (a *livenessAnalysis) BoundaryValue(_ toyir.Method) liveSet { return liveSet{} }

// NormalFlow implements ctxflow.FlowFunctions by interpreting a non-call
// block's instructions in reverse: in is the value flowing in from later
// in execution order, so the block's own contribution must be applied
// back-to-front.
func (a *livenessAnalysis) NormalFlow(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, liveSet], n *toyir.Block, in liveSet,
) liveSet {
	out := in.copy()
	for i := len(n.Instrs) - 1; i >= 0; i-- {
		switch ins := n.Instrs[i].(type) {
		case toyir.Assign:
			delete(out, ins.Lhs)
			addUses(out, ins.Rhs)
		case toyir.Return:
			addUses(out, ins.Value)
		}
	}
	return out
}

// CallEntry implements ctxflow.FlowFunctions. Under Direction: Backward
// this is called once target has stabilised, with in set to target's own
// entry value (which of its parameters are live on entry): it projects a
// live parameter back onto the variables its actual argument expression
// reads in the caller.
func (a *livenessAnalysis) CallEntry(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, liveSet], target toyir.Method, n *toyir.Block, in liveSet,
) liveSet {
	call, ok := n.Call()
	if !ok {
		return liveSet{}
	}
	fn, ok := a.prog.Funcs[target]
	if !ok {
		return liveSet{}
	}
	out := liveSet{}
	for i, param := range fn.Params {
		if i < len(call.Args) && in.has(param) {
			addUses(out, call.Args[i])
		}
	}
	return out
}

// CallExit implements ctxflow.FlowFunctions. Under Direction: Backward
// this computes the boundary value used to find or create target's
// context: whether the call's own result variable is live in what flows
// in from later (in), i.e. whether any caller actually demands target's
// return value.
func (a *livenessAnalysis) CallExit(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, liveSet], _ toyir.Method, n *toyir.Block, in liveSet,
) liveSet {
	call, ok := n.Call()
	if !ok || call.Lhs == "" || !in.has(call.Lhs) {
		return liveSet{}
	}
	return liveSet{liveReturnVar: true}
}

// CallLocal implements ctxflow.FlowFunctions: whatever was live after the
// call stays live before it, except for the call's own result variable,
// which the call itself defines and so cannot have been live before it.
func (a *livenessAnalysis) CallLocal(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, liveSet], n *toyir.Block, in liveSet,
) liveSet {
	out := in.copy()
	if call, ok := n.Call(); ok && call.Lhs != "" {
		delete(out, call.Lhs)
	}
	return out
}

// squareCallingProgramWithADeadResult builds:
//
//	func square(n): return n * n
//	func main():
//	    x := square(5)
//	    y := square(3)   // y is never used: its result is dead
//	    return x
//
// square is called twice with results of differing liveness (x demanded,
// y dead), which under Direction: Backward must key two distinct
// contexts for square off CallExit's differing boundary.
func squareCallingProgramWithADeadResult() *toyir.Program {
	prog := toyir.NewProgram()

	square := prog.AddFunc("square", "n")
	square.NewBlock(toyir.Return{Value: toyir.BinOp{Op: "*", X: toyir.Ref("n"), Y: toyir.Ref("n")}})

	main := prog.AddFunc("main")
	b0 := main.NewBlock(toyir.Call{Lhs: "x", Callee: "square", Args: []toyir.Expr{toyir.Const(5)}})
	b1 := main.NewBlock(toyir.Call{Lhs: "y", Callee: "square", Args: []toyir.Expr{toyir.Const(3)}})
	b2 := main.NewBlock(toyir.Return{Value: toyir.Ref("x")})
	toyir.Connect(b0, b1)
	toyir.Connect(b1, b2)

	prog.AddEntry("main")
	return prog
}

func TestBackwardLivenessKeysContextsOnResultDemand(t *testing.T) {
	prog := squareCallingProgramWithADeadResult()
	a := &livenessAnalysis{prog: prog}
	engine := ctxflow.New[toyir.Method, *toyir.Block, liveSet](
		toyir.NewAdapter(prog), a, a, ctxflow.Options{Direction: ctxflow.Backward},
	)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if warnings := engine.Warnings(); len(warnings) != 0 {
		t.Fatalf("Run() produced warnings: %v", warnings)
	}

	squareContexts := engine.Contexts("square")
	if len(squareContexts) != 2 {
		t.Fatalf("expected 2 contexts for square (demanded vs. dead result), got %d", len(squareContexts))
	}

	var sawDemanded, sawDead bool
	for _, c := range squareContexts {
		if !c.Analysed() {
			t.Errorf("context %v was never analysed", c)
		}
		if got := c.EntryValue().has("n"); !got {
			t.Errorf("square context %v: n should be live at entry, it is read by the body regardless of demand", c)
		}
		switch {
		case c.ExitValue().has(liveReturnVar):
			sawDemanded = true
		case len(c.ExitValue()) == 0:
			sawDead = true
		default:
			t.Errorf("unexpected exit boundary for square context %v: %v", c, c.ExitValue())
		}
	}
	if !sawDemanded {
		t.Errorf("expected one square context keyed on a demanded result (called from x := square(5))")
	}
	if !sawDead {
		t.Errorf("expected one square context keyed on a dead result (called from the unused y := square(3))")
	}

	mainContexts := engine.Contexts("main")
	if len(mainContexts) != 1 {
		t.Fatalf("expected exactly 1 context for main, got %d", len(mainContexts))
	}
	if !mainContexts[0].Analysed() {
		t.Errorf("main's context was never analysed")
	}
}
