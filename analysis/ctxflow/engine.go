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
	"context"
	"fmt"

	"github.com/valuectx/ctxflow/internal/pq"
)

// Engine drives a single context-sensitive inter-procedural data-flow
// analysis to a fixpoint.
//
// M, N and A must match across Program, Lattice and FlowFunctions: M is the
// method identifier type, N is the CFG node type, and A is the data-flow
// value type.
type Engine[M comparable, N comparable, A any] struct {
	program Program[M, N]
	lattice Lattice[A]
	flow    FlowFunctions[M, N, A]
	opts    Options

	contexts map[M][]*Context[M, N, A]
	byID     map[int]*Context[M, N, A]
	nextID   int

	worklist    *pq.Queue[*Context[M, N, A]]
	transitions *TransitionTable[M, N, A]

	warnings []string
	ran      bool
}

// New constructs an Engine for the given program, lattice and flow
// functions. Run must be called exactly once before any results are
// queried.
func New[M comparable, N comparable, A any](
	program Program[M, N],
	lattice Lattice[A],
	flow FlowFunctions[M, N, A],
	opts Options,
) *Engine[M, N, A] {
	return &Engine[M, N, A]{
		program:     program,
		lattice:     lattice,
		flow:        flow,
		opts:        opts,
		contexts:    map[M][]*Context[M, N, A]{},
		byID:        map[int]*Context[M, N, A]{},
		worklist:    pq.New(func(a, b *Context[M, N, A]) bool { return a.id > b.id }),
		transitions: newTransitionTable[M, N, A](),
	}
}

// Contexts returns every context created for method, in creation order.
func (e *Engine[M, N, A]) Contexts(method M) []*Context[M, N, A] {
	list := e.contexts[method]
	out := make([]*Context[M, N, A], len(list))
	copy(out, list)
	return out
}

// Context looks up the context of method whose boundary value equals
// value, if one has been created.
func (e *Engine[M, N, A]) Context(method M, value A) (*Context[M, N, A], bool) {
	for _, c := range e.contexts[method] {
		if e.lattice.Equal(e.boundaryOf(c), value) {
			return c, true
		}
	}
	return nil, false
}

// boundaryOf returns the value a context was created with: the entry value
// for a forward analysis, the exit value for a backward one.
func (e *Engine[M, N, A]) boundaryOf(c *Context[M, N, A]) A {
	if e.opts.Direction == Backward {
		return c.exitValue
	}
	return c.entryValue
}

// Methods returns every method for which at least one context was created.
func (e *Engine[M, N, A]) Methods() []M {
	out := make([]M, 0, len(e.contexts))
	for m := range e.contexts {
		out = append(out, m)
	}
	return out
}

// Callers returns the call sites known to call target.
func (e *Engine[M, N, A]) Callers(target *Context[M, N, A]) []CallSite[M, N, A] {
	return e.transitions.Callers(target)
}

// Targets returns the contexts that site resolves to, keyed by method.
func (e *Engine[M, N, A]) Targets(site CallSite[M, N, A]) map[M]*Context[M, N, A] {
	out := map[M]*Context[M, N, A]{}
	for _, c := range e.transitions.Targets(site) {
		out[c.method] = c
	}
	return out
}

// TransitionTable returns the engine's context-transition table.
func (e *Engine[M, N, A]) TransitionTable() *TransitionTable[M, N, A] {
	return e.transitions
}

// Warnings returns non-fatal diagnostics accumulated during Run, such as
// contexts that never reached a fixpoint.
func (e *Engine[M, N, A]) Warnings() []string {
	return e.warnings
}

// Run performs the analysis to a fixpoint. It returns an error only if the
// program is unusable (no entry points) or ctx is cancelled; partial
// analysis due to non-monotone client behaviour is reported via Warnings,
// not as an error, since the engine's defensive meet guarantees
// termination regardless.
func (e *Engine[M, N, A]) Run(ctx context.Context) error {
	if e.ran {
		return ErrAlreadyRun
	}
	e.ran = true

	entryPoints := e.program.EntryPoints()
	if len(entryPoints) == 0 {
		return ErrNoEntryPoints
	}

	for _, m := range entryPoints {
		boundary := e.lattice.Copy(e.flow.BoundaryValue(m))
		e.initContext(m, boundary)
	}

	var err error
	if e.opts.Direction == Backward {
		err = e.runBackward(ctx)
	} else {
		err = e.runForward(ctx)
	}
	if err != nil {
		return err
	}

	for _, list := range e.contexts {
		for _, c := range list {
			if !c.analysed {
				e.warnings = append(e.warnings,
					fmt.Sprintf("context %s for method %v was never fully analysed", c, c.method))
			}
		}
	}
	return nil
}

// initContext creates a new context for method with the given boundary
// value, seeds its per-node tables, registers it with the engine and adds
// it to the outer worklist.
func (e *Engine[M, N, A]) initContext(method M, boundary A) *Context[M, N, A] {
	cfg := e.program.ControlFlowGraph(method)

	c := &Context[M, N, A]{
		id:          e.nextID,
		method:      method,
		cfg:         cfg,
		valueBefore: map[N]A{},
		valueAfter:  map[N]A{},
	}
	e.nextID++
	c.order = e.priorityOrder(cfg)
	c.worklist = pq.New(func(a, b nodeItem[N]) bool { return c.nodePriority(a) < c.nodePriority(b) })

	top := e.lattice.Top()
	for _, n := range cfg.Nodes() {
		c.valueBefore[n] = top
		c.valueAfter[n] = top
		c.worklist.Add(nodeItem[N]{node: n})
	}

	c.sentinel = map[N]bool{}
	if e.opts.Direction == Backward {
		c.exitValue = e.lattice.Copy(boundary)
		c.entryValue = top
		for _, n := range cfg.Tails() {
			c.valueAfter[n] = e.lattice.Copy(boundary)
		}
		for _, n := range cfg.Heads() {
			c.sentinel[n] = true
		}
	} else {
		c.entryValue = e.lattice.Copy(boundary)
		c.exitValue = top
		for _, n := range cfg.Heads() {
			c.valueBefore[n] = e.lattice.Copy(boundary)
		}
		for _, n := range cfg.Tails() {
			c.sentinel[n] = true
		}
	}

	e.contexts[method] = append(e.contexts[method], c)
	e.byID[c.id] = c
	e.worklist.Add(c)

	return c
}
