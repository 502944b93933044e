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

package toyir

import "github.com/valuectx/ctxflow/analysis/ctxflow"

// Adapter implements ctxflow.Program[Method, *Block] over a toyir Program.
type Adapter struct {
	Prog *Program
}

// NewAdapter returns a ctxflow.Program view of prog.
func NewAdapter(prog *Program) Adapter { return Adapter{Prog: prog} }

// EntryPoints implements ctxflow.Program.
func (a Adapter) EntryPoints() []Method { return a.Prog.Entries }

// ControlFlowGraph implements ctxflow.Program.
func (a Adapter) ControlFlowGraph(m Method) ctxflow.CFG[*Block] {
	return cfg{fn: a.Prog.Funcs[m]}
}

// IsCall implements ctxflow.Program.
func (a Adapter) IsCall(n *Block) bool {
	_, ok := n.Call()
	return ok
}

// ResolveTargets implements ctxflow.Program.
func (a Adapter) ResolveTargets(_ Method, n *Block) []Method {
	if c, ok := n.Call(); ok {
		return []Method{c.Callee}
	}
	return nil
}

// IsPhantomMethod implements ctxflow.Program: a method is phantom if it has
// no registered function body.
func (a Adapter) IsPhantomMethod(m Method) bool {
	_, ok := a.Prog.Funcs[m]
	return !ok
}

type cfg struct {
	fn *Function
}

func (c cfg) Nodes() []*Block { return c.fn.Blocks }
func (c cfg) Preds(n *Block) []*Block { return n.preds }
func (c cfg) Succs(n *Block) []*Block { return n.succs }
func (c cfg) Heads() []*Block {
	if len(c.fn.Blocks) == 0 {
		return nil
	}
	return []*Block{c.fn.Blocks[0]}
}
func (c cfg) Tails() []*Block {
	var out []*Block
	for _, b := range c.fn.Blocks {
		if len(b.succs) == 0 {
			out = append(out, b)
		}
	}
	return out
}
func (c cfg) Size() int { return len(c.fn.Blocks) }
