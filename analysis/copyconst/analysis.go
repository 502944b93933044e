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

package copyconst

import (
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/toyir"
)

// Analysis implements ctxflow.Lattice[Env] and
// ctxflow.FlowFunctions[toyir.Method, *toyir.Block, Env] for a forward,
// context-sensitive copy-constant propagation over a toyir program.
type Analysis struct {
	Prog *toyir.Program
}

// New returns a copy-constant analysis over prog.
func New(prog *toyir.Program) *Analysis {
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

// BoundaryValue implements ctxflow.FlowFunctions: entry points start with no
// facts at all.
func (a *Analysis) BoundaryValue(_ toyir.Method) Env { return Env{} }

// NormalFlow implements ctxflow.FlowFunctions. Only assignments to a
// variable and return statements produce or kill a fact; everything else
// leaves the incoming facts untouched.
func (a *Analysis) NormalFlow(_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], n *toyir.Block, in Env) Env {
	out := in.Copy()
	for _, instr := range n.Instrs {
		switch ins := instr.(type) {
		case toyir.Assign:
			assign(ins.Lhs, ins.Rhs, in, out)
		case toyir.Return:
			assign(ReturnVar, ins.Value, in, out)
		}
	}
	return out
}

// CallEntry implements ctxflow.FlowFunctions: the callee's context starts
// with only the facts its actual arguments carry, bound to its formal
// parameters.
func (a *Analysis) CallEntry(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], target toyir.Method, n *toyir.Block, in Env,
) Env {
	call, ok := n.Call()
	if !ok {
		return Env{}
	}
	fn, ok := a.Prog.Funcs[target]
	if !ok {
		return Env{}
	}
	entry := Env{}
	for i, param := range fn.Params {
		if i < len(call.Args) {
			assign(param, call.Args[i], in, entry)
		}
	}
	return entry
}

// CallExit implements ctxflow.FlowFunctions: only the callee's returned
// fact, if any, survives back into the caller, bound to the call's result
// variable.
func (a *Analysis) CallExit(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], _ toyir.Method, n *toyir.Block, calleeBoundary Env,
) Env {
	call, ok := n.Call()
	if !ok || call.Lhs == "" {
		return Env{}
	}
	out := Env{}
	if c, ok := calleeBoundary.Get(ReturnVar); ok {
		out.set(call.Lhs, c)
	}
	return out
}

// CallLocal implements ctxflow.FlowFunctions: everything the caller knew
// survives the call except the call's own result variable, whose prior fact
// (if any) must not survive to be meet-ed against CallExit's fresh fact.
func (a *Analysis) CallLocal(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], n *toyir.Block, in Env,
) Env {
	out := in.Copy()
	if call, ok := n.Call(); ok && call.Lhs != "" {
		delete(out, call.Lhs)
	}
	return out
}
