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

package ctxflow

import (
	"fmt"
	"math"

	"github.com/valuectx/ctxflow/internal/pq"
)

// nodeItem is an element of a context's node worklist. end is the
// distinguished sentinel that stands in for VASCO's "null unit": once it is
// popped, every node in the context has propagated its OUT value at least
// once along every currently-known edge, so the context's exit value can be
// (re)computed from its tails. It is ordered after every real node so that
// intra-procedural propagation always finishes before the exit value is
// recomputed.
type nodeItem[N comparable] struct {
	node N
	end  bool
}

// Context is a single value-context: one method analysed with one
// particular boundary (entry, for a forward analysis; exit, for a backward
// one) value.
//
// A Context's per-node tables (ValueBefore/ValueAfter and its internal node
// worklist) are populated while the context is active, and are cleared by
// the engine's on-the-fly reclamation once nothing reachable from the
// context can still add work to them; EntryValue, ExitValue, Method and ID
// remain available regardless.
type Context[M comparable, N comparable, A any] struct {
	id     int
	method M
	cfg    CFG[N] // nil once freed

	entryValue A
	exitValue  A

	valueBefore map[N]A // nil once freed
	valueAfter  map[N]A // nil once freed

	worklist *pq.Queue[nodeItem[N]] // nil once freed
	order    map[N]int              // nil once freed; rpo/reverse-rpo priority per node

	// sentinel marks the nodes whose processing should enqueue the end
	// sentinel: Tails for a forward analysis, Heads for a backward one.
	sentinel map[N]bool // nil once freed

	analysed bool
	freed    bool
}

// ID returns the context's unique, creation-order identifier. The outer
// worklist orders contexts by decreasing ID: the newest context is always
// analysed first.
func (c *Context[M, N, A]) ID() int { return c.id }

// Method returns the method this context analyses.
func (c *Context[M, N, A]) Method() M { return c.method }

// EntryValue returns the context's boundary value at method entry. For a
// backward analysis this is the value propagated back out of the method's
// heads, not the boundary value the context was created with.
func (c *Context[M, N, A]) EntryValue() A { return c.entryValue }

// ExitValue returns the context's boundary value at method exit. For a
// forward analysis this is the value the context has computed by merging
// its tails; for a backward analysis it is the boundary value the context
// was created with.
func (c *Context[M, N, A]) ExitValue() A { return c.exitValue }

// ValueBefore returns the IN value most recently computed for node n.
// Reports the zero value if the context has been freed.
func (c *Context[M, N, A]) ValueBefore(n N) A { return c.valueBefore[n] }

// ValueAfter returns the OUT value most recently computed for node n.
// Reports the zero value if the context has been freed.
func (c *Context[M, N, A]) ValueAfter(n N) A { return c.valueAfter[n] }

// Analysed reports whether the context has reached a fixpoint at least
// once (its exit value has been computed at least once).
func (c *Context[M, N, A]) Analysed() bool { return c.analysed }

// Freed reports whether the context's per-node tables have been reclaimed.
func (c *Context[M, N, A]) Freed() bool { return c.freed }

// CFG returns the context's control-flow graph, or nil if the context has
// been freed.
func (c *Context[M, N, A]) CFG() CFG[N] { return c.cfg }

func (c *Context[M, N, A]) String() string {
	return fmt.Sprintf("X%d(%v)", c.id, c.method)
}

// free discards the context's per-node state, retaining only what callers
// outside the freed subgraph might still need: its identity, its method,
// and its entry/exit values.
func (c *Context[M, N, A]) free() {
	c.cfg = nil
	c.valueBefore = nil
	c.valueAfter = nil
	c.worklist = nil
	c.order = nil
	c.sentinel = nil
	c.freed = true
}

// nodePriority returns the priority used to order n in the node worklist:
// the end sentinel always sorts last.
func (c *Context[M, N, A]) nodePriority(item nodeItem[N]) int {
	if item.end {
		return math.MaxInt
	}
	return c.order[item.node]
}
