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

// processCall computes the OUT (forward) or IN (backward) value of a call
// node n given the value flowing into it, in.
//
// Every resolved, non-phantom target gets its own context, keyed on the
// value the current context computes for it: CallEntry for a forward
// analysis (a callee context is keyed on its entry value), CallExit for a
// backward one (a callee context is keyed on its exit value, since a
// backward analysis discovers a callee's boundary at its exit, not its
// entry). If that context has already reached a fixpoint at least once,
// its result contributes to out: via CallExit for forward (the callee's
// exit value flows back through CallExit), via CallEntry for backward (the
// callee's entry value flows back through CallEntry). Otherwise the call
// contributes nothing yet: out will be recomputed once the target notifies
// its callers (see wakeCallers).
//
// A call with no resolvable, non-phantom target is recorded as a default
// call site and degrades to CallLocal only: this covers calls through an
// unresolved function value as well as calls that only reach phantom
// methods.
func (e *Engine[M, N, A]) processCall(cur *Context[M, N, A], n N, in A) A {
	site := CallSite[M, N, A]{Context: cur, Node: n}

	targets := e.program.ResolveTargets(cur.method, n)
	concrete := make([]M, 0, len(targets))
	for _, target := range targets {
		if !e.program.IsPhantomMethod(target) {
			concrete = append(concrete, target)
		}
	}
	if len(concrete) == 0 {
		e.transitions.AddDefaultCallSite(site)
		return e.flow.CallLocal(cur, n, in)
	}

	backward := e.opts.Direction == Backward

	out := e.lattice.Top()
	hit := false
	for _, target := range concrete {
		var keyValue A
		if backward {
			keyValue = e.lattice.Copy(e.flow.CallExit(cur, target, n, in))
		} else {
			keyValue = e.lattice.Copy(e.flow.CallEntry(cur, target, n, in))
		}

		targetCtx, ok := e.Context(target, keyValue)
		if !ok {
			targetCtx = e.initContext(target, keyValue)
			if e.opts.Verbose {
				e.opts.logger().Printf("[new] %s -> %s %v", cur, targetCtx, target)
			}
		}
		e.transitions.AddTransition(site, targetCtx)

		if targetCtx.analysed {
			hit = true
			var returned A
			if backward {
				returned = e.flow.CallEntry(cur, target, n, e.calleeResultValue(targetCtx))
			} else {
				returned = e.flow.CallExit(cur, target, n, e.calleeResultValue(targetCtx))
			}
			out = e.lattice.Meet(out, returned)
		}
	}

	if hit {
		out = e.lattice.Meet(out, e.flow.CallLocal(cur, n, in))
	} else {
		out = e.flow.CallLocal(cur, n, in)
	}
	return out
}

// calleeResultValue returns the value a callee context contributes back to
// its callers: the exit value for a forward analysis, the entry value for
// a backward one.
func (e *Engine[M, N, A]) calleeResultValue(c *Context[M, N, A]) A {
	if e.opts.Direction == Backward {
		return c.entryValue
	}
	return c.exitValue
}

// wakeCallers re-adds every known caller of a newly-stabilised context to
// both worklists, so they recompute their call node with the fresh result.
func (e *Engine[M, N, A]) wakeCallers(target *Context[M, N, A]) {
	for _, site := range e.transitions.Callers(target) {
		site.Context.worklist.Add(nodeItem[N]{node: site.Node})
		e.worklist.Add(site.Context)
	}
}
