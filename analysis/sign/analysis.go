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

package sign

import (
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/toyir"
)

// Analysis implements ctxflow.Lattice[Env] and
// ctxflow.FlowFunctions[toyir.Method, *toyir.Block, Env] for a forward,
// context-sensitive sign analysis over a toyir program.
type Analysis struct {
	Prog *toyir.Program
}

// New returns a sign analysis over prog.
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

// BoundaryValue implements ctxflow.FlowFunctions: entry points start with
// every variable unconstrained.
func (a *Analysis) BoundaryValue(_ toyir.Method) Env { return Env{} }

// NormalFlow implements ctxflow.FlowFunctions by interpreting every
// instruction in the block in order.
func (a *Analysis) NormalFlow(_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], n *toyir.Block, in Env) Env {
	out := in.Copy()
	for _, instr := range n.Instrs {
		switch ins := instr.(type) {
		case toyir.Assign:
			out.set(ins.Lhs, eval(ins.Rhs, out))
		case toyir.Return:
			out.set(ReturnVar, eval(ins.Value, out))
		}
	}
	return out
}

// CallEntry implements ctxflow.FlowFunctions: it evaluates the call's
// arguments in the caller's environment and binds them to target's
// parameters, discarding everything else the caller knows (target's
// context is keyed purely on its own parameters' signs).
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
			entry.set(param, eval(call.Args[i], in))
		}
	}
	return entry
}

// CallExit implements ctxflow.FlowFunctions: it projects the callee's
// return-value sign onto the call's result variable, and nothing else.
func (a *Analysis) CallExit(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], _ toyir.Method, n *toyir.Block, calleeBoundary Env,
) Env {
	call, ok := n.Call()
	if !ok || call.Lhs == "" {
		return Env{}
	}
	out := Env{}
	out.set(call.Lhs, calleeBoundary.Get(ReturnVar))
	return out
}

// CallLocal implements ctxflow.FlowFunctions: everything the caller knew
// before the call is still true after it, except for the call's own result
// variable, whose old value (if any) must not survive to be meet-ed
// against the fresh value CallExit computes.
func (a *Analysis) CallLocal(
	_ *ctxflow.Context[toyir.Method, *toyir.Block, Env], n *toyir.Block, in Env,
) Env {
	out := in.Copy()
	if call, ok := n.Call(); ok && call.Lhs != "" {
		delete(out, call.Lhs)
	}
	return out
}
