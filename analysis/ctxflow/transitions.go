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

// TransitionTable records, for every call site the engine has processed,
// which context(s) it resolves to (one per distinct target method whose
// call-entry value produced a distinct context), plus the reverse mapping
// from a context to the call sites that call it. Call sites whose targets
// could not be resolved to any context (an unresolved call, or a call that
// only reaches phantom methods) are recorded separately as default call
// sites: they participate in CallLocal-only propagation and are never
// traversed when computing reachability for on-the-fly reclamation.
type TransitionTable[M comparable, N comparable, A any] struct {
	targets     map[CallSite[M, N, A]]map[*Context[M, N, A]]bool
	callers     map[*Context[M, N, A]]map[CallSite[M, N, A]]bool
	callSitesOf map[*Context[M, N, A]]map[CallSite[M, N, A]]bool
	defaults    map[CallSite[M, N, A]]bool
}

func newTransitionTable[M comparable, N comparable, A any]() *TransitionTable[M, N, A] {
	return &TransitionTable[M, N, A]{
		targets:     map[CallSite[M, N, A]]map[*Context[M, N, A]]bool{},
		callers:     map[*Context[M, N, A]]map[CallSite[M, N, A]]bool{},
		callSitesOf: map[*Context[M, N, A]]map[CallSite[M, N, A]]bool{},
		defaults:    map[CallSite[M, N, A]]bool{},
	}
}

// AddTransition records that site resolves (among possibly others) to
// target.
func (t *TransitionTable[M, N, A]) AddTransition(site CallSite[M, N, A], target *Context[M, N, A]) {
	if t.targets[site] == nil {
		t.targets[site] = map[*Context[M, N, A]]bool{}
	}
	t.targets[site][target] = true

	if t.callers[target] == nil {
		t.callers[target] = map[CallSite[M, N, A]]bool{}
	}
	t.callers[target][site] = true

	if t.callSitesOf[site.Context] == nil {
		t.callSitesOf[site.Context] = map[CallSite[M, N, A]]bool{}
	}
	t.callSitesOf[site.Context][site] = true
}

// AddDefaultCallSite records site as one whose targets could not be
// resolved to any context.
func (t *TransitionTable[M, N, A]) AddDefaultCallSite(site CallSite[M, N, A]) {
	t.defaults[site] = true
	if t.callSitesOf[site.Context] == nil {
		t.callSitesOf[site.Context] = map[CallSite[M, N, A]]bool{}
	}
	t.callSitesOf[site.Context][site] = true
}

// IsDefaultCallSite reports whether site has been recorded as unresolved.
func (t *TransitionTable[M, N, A]) IsDefaultCallSite(site CallSite[M, N, A]) bool {
	return t.defaults[site]
}

// Targets returns the contexts that site resolves to, in no particular
// order.
func (t *TransitionTable[M, N, A]) Targets(site CallSite[M, N, A]) []*Context[M, N, A] {
	set := t.targets[site]
	out := make([]*Context[M, N, A], 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Callers returns the call sites known to resolve to target, in no
// particular order.
func (t *TransitionTable[M, N, A]) Callers(target *Context[M, N, A]) []CallSite[M, N, A] {
	set := t.callers[target]
	out := make([]CallSite[M, N, A], 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// DefaultCallSites returns every call site recorded as unresolved.
func (t *TransitionTable[M, N, A]) DefaultCallSites() []CallSite[M, N, A] {
	out := make([]CallSite[M, N, A], 0, len(t.defaults))
	for s := range t.defaults {
		out = append(out, s)
	}
	return out
}

// reachableSet computes the set of contexts transitively reachable from
// source by following its own call sites to their targets, skipping
// default call sites (which have no target context to follow). source
// itself is included in the result when a call site cycles back to it
// (direct or mutual self-recursion): the caller needs that case visible
// to decide whether reclaiming source is safe, not hidden by treating
// source as its own boundary.
//
// If ignoreFreed is true, contexts that have already been freed are
// excluded from the result: they contribute nothing to whether it is safe
// to free source's own subgraph, since their state is already reclaimed.
// Traversal still passes through them (the call-site index survives
// Context.free), so cycles through an already-freed context are still
// explored.
func (t *TransitionTable[M, N, A]) reachableSet(source *Context[M, N, A], ignoreFreed bool) map[*Context[M, N, A]]bool {
	visited := map[*Context[M, N, A]]bool{}
	result := map[*Context[M, N, A]]bool{}
	queue := []*Context[M, N, A]{source}
	visited[source] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for site := range t.callSitesOf[cur] {
			if t.defaults[site] {
				continue
			}
			for target := range t.targets[site] {
				if !ignoreFreed || !target.freed {
					result[target] = true
				}
				if !visited[target] {
					visited[target] = true
					queue = append(queue, target)
				}
			}
		}
	}
	return result
}
