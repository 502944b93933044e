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

// Package ssaprog adapts a real Go program, loaded and built by go/ssa,
// into ctxflow's Program/CFG contract. Its node granularity is a single
// go/ssa instruction (Block, Index) rather than a whole basic block, so
// that a block with more than one call instruction still gives each call
// its own node, matching toyir's "a call site is its own node" convention.
package ssaprog

import (
	"fmt"

	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"golang.org/x/tools/go/ssa"
)

// Node identifies a single instruction within a function: the block it
// belongs to and its position within that block.
type Node struct {
	Block *ssa.BasicBlock
	Index int
}

// Instr returns the instruction n refers to.
func (n Node) Instr() ssa.Instruction { return n.Block.Instrs[n.Index] }

func (n Node) String() string {
	return fmt.Sprintf("%s.%d@%d", n.Block.Parent().Name(), n.Block.Index, n.Index)
}

// Adapter implements ctxflow.Program[*ssa.Function, Node] over a built SSA
// program, resolving calls through a Resolver built from some call graph.
type Adapter struct {
	Prog     *ssa.Program
	Resolver *Resolver
}

// NewAdapter returns a ctxflow.Program view of prog, resolving calls via
// resolver.
func NewAdapter(prog *ssa.Program, resolver *Resolver) Adapter {
	return Adapter{Prog: prog, Resolver: resolver}
}

// EntryPoints implements ctxflow.Program.
func (a Adapter) EntryPoints() []*ssa.Function { return a.Resolver.EntryPoints() }

// ControlFlowGraph implements ctxflow.Program.
func (a Adapter) ControlFlowGraph(fn *ssa.Function) ctxflow.CFG[Node] { return cfg{fn: fn} }

// IsCall implements ctxflow.Program: only *ssa.Call counts, not Go or Defer,
// which spawn or postpone execution rather than transferring control
// synchronously into a callee this engine can model context-sensitively.
func (a Adapter) IsCall(n Node) bool {
	_, ok := n.Instr().(*ssa.Call)
	return ok
}

// ResolveTargets implements ctxflow.Program.
func (a Adapter) ResolveTargets(caller *ssa.Function, n Node) []*ssa.Function {
	call, ok := n.Instr().(*ssa.Call)
	if !ok {
		return nil
	}
	return a.Resolver.Callees(caller, call)
}

// IsPhantomMethod implements ctxflow.Program: a function with no blocks has
// no body available to analyse (an external declaration, an intrinsic, or a
// function excluded from the loaded program's scope).
func (a Adapter) IsPhantomMethod(fn *ssa.Function) bool {
	return fn == nil || fn.Blocks == nil
}

type cfg struct{ fn *ssa.Function }

func (c cfg) Nodes() []Node {
	var out []Node
	for _, b := range c.fn.Blocks {
		for i := range b.Instrs {
			out = append(out, Node{Block: b, Index: i})
		}
	}
	return out
}

func (c cfg) Preds(n Node) []Node {
	if n.Index > 0 {
		return []Node{{Block: n.Block, Index: n.Index - 1}}
	}
	var out []Node
	for _, p := range n.Block.Preds {
		if len(p.Instrs) > 0 {
			out = append(out, Node{Block: p, Index: len(p.Instrs) - 1})
		}
	}
	return out
}

func (c cfg) Succs(n Node) []Node {
	if n.Index < len(n.Block.Instrs)-1 {
		return []Node{{Block: n.Block, Index: n.Index + 1}}
	}
	var out []Node
	for _, s := range n.Block.Succs {
		if len(s.Instrs) > 0 {
			out = append(out, Node{Block: s, Index: 0})
		}
	}
	return out
}

func (c cfg) Heads() []Node {
	if len(c.fn.Blocks) == 0 || len(c.fn.Blocks[0].Instrs) == 0 {
		return nil
	}
	return []Node{{Block: c.fn.Blocks[0], Index: 0}}
}

func (c cfg) Tails() []Node {
	var out []Node
	for _, b := range c.fn.Blocks {
		if len(b.Succs) == 0 && len(b.Instrs) > 0 {
			out = append(out, Node{Block: b, Index: len(b.Instrs) - 1})
		}
	}
	return out
}

func (c cfg) Size() int {
	n := 0
	for _, b := range c.fn.Blocks {
		n += len(b.Instrs)
	}
	return n
}
