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

package nilness

import (
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"golang.org/x/tools/go/ssa"
)

// Analysis implements ctxflow.Lattice[Env] and
// ctxflow.FlowFunctions[*ssa.Function, ssaprog.Node, Env] for a forward,
// context-sensitive nilness analysis over a real Go program loaded through
// ssaprog.
type Analysis struct {
	Prog *ssa.Program
}

// New returns a nilness analysis over prog.
func New(prog *ssa.Program) *Analysis {
	return &Analysis{Prog: prog}
}

// Top implements ctxflow.Lattice.
func (a *Analysis) Top() Env { return Env{} }

// Copy implements ctxflow.Lattice.
func (a *Analysis) Copy(e Env) Env { return e.Copy() }

// Meet implements ctxflow.Lattice.
func (a *Analysis) Meet(x, y Env) Env { return Meet(x, y) }

// Equal implements ctxflow.Lattice.
func (a *Analysis) Equal(x, y Env) bool { return x.Equal(y) }

// BoundaryValue implements ctxflow.FlowFunctions: entry points start with
// every location unconstrained.
func (a *Analysis) BoundaryValue(_ *ssa.Function) Env { return Env{} }

// NormalFlow implements ctxflow.FlowFunctions by interpreting the single
// instruction at n, since ssaprog.Node is instruction-granular rather than
// block-granular.
func (a *Analysis) NormalFlow(_ *ctxflow.Context[*ssa.Function, ssaprog.Node, Env], n ssaprog.Node, in Env) Env {
	out := in.Copy()
	switch ins := n.Instr().(type) {
	case *ssa.Alloc, *ssa.MakeClosure, *ssa.MakeMap, *ssa.MakeChan, *ssa.MakeSlice, *ssa.MakeInterface:
		out.set(ins.(ssa.Value), NonNil)
	case *ssa.Phi:
		s := Unknown
		for _, edge := range ins.Edges {
			s = meet(s, eval(edge, in))
		}
		out.set(ins, s)
	case *ssa.Return:
		for i, r := range ins.Results {
			out.set(RetLoc{Index: i}, eval(r, in))
		}
	}
	return out
}

// CallEntry implements ctxflow.FlowFunctions: it evaluates the call's
// arguments in the caller's environment and binds them to target's
// parameters, discarding everything else the caller knows. Interface
// (invoke-mode) calls pass their receiver outside call.Call.Args, so the
// receiver parameter, if any, is left Unknown.
func (a *Analysis) CallEntry(
	_ *ctxflow.Context[*ssa.Function, ssaprog.Node, Env], target *ssa.Function, n ssaprog.Node, in Env,
) Env {
	call, ok := n.Instr().(*ssa.Call)
	if !ok {
		return Env{}
	}
	entry := Env{}
	args := call.Call.Args
	params := target.Params
	for i := 0; i < len(params) && i < len(args); i++ {
		entry.set(params[i], eval(args[i], in))
	}
	return entry
}

// CallExit implements ctxflow.FlowFunctions: it projects the callee's first
// return value onto the call's own result. Calls with more than one return
// value, accessed through a following *ssa.Extract, are not modeled: only
// index 0 is projected.
func (a *Analysis) CallExit(
	_ *ctxflow.Context[*ssa.Function, ssaprog.Node, Env], _ *ssa.Function, n ssaprog.Node, calleeBoundary Env,
) Env {
	call, ok := n.Instr().(*ssa.Call)
	if !ok {
		return Env{}
	}
	out := Env{}
	out.set(call, calleeBoundary.Get(RetLoc{Index: 0}))
	return out
}

// CallLocal implements ctxflow.FlowFunctions: everything the caller knew
// before the call is still true after it, except for the call's own result,
// whose old value (if any) must not survive to be meet-ed against the fresh
// value CallExit computes.
func (a *Analysis) CallLocal(
	_ *ctxflow.Context[*ssa.Function, ssaprog.Node, Env], n ssaprog.Node, in Env,
) Env {
	out := in.Copy()
	if call, ok := n.Instr().(*ssa.Call); ok {
		delete(out, Loc(call))
	}
	return out
}
