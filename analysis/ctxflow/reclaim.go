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

// reclaim frees stable's per-node tables, and those of every context
// transitively reachable from it through its own call sites, if doing so is
// safe: none of the reachable contexts may still be pending on the outer
// worklist, and stable itself must have no pending node work.
//
// stable has just been marked analysed but is still on the outer worklist
// (the driver drops a context only once it observes its node worklist
// empty). When stable's node worklist is empty and stable is the context the
// driver would pop next, reclaim pops it itself and adds it to the
// candidates, since a freed context has no node worklist left to observe.
// If a newer context was queued ahead of stable, nothing is freed.
//
// stable is not exempt from the pending check: wakeCallers re-adds stable to
// the worklist whenever one of stable's own call sites resolves back to
// stable itself (direct or mutual self-recursion), and reachableSet reports
// that cycle back to stable rather than hiding it, so the check below sees
// it and nothing is freed.
func (e *Engine[M, N, A]) reclaim(stable *Context[M, N, A]) {
	if !e.opts.FreeResultsOnTheFly {
		return
	}

	candidates := e.transitions.reachableSet(stable, true)

	for c := range candidates {
		if e.worklist.Contains(c) {
			return
		}
	}

	if !stable.worklist.IsEmpty() {
		return
	}
	if top, ok := e.worklist.Peek(); ok && top == stable {
		e.worklist.GetNext()
	} else if e.worklist.Contains(stable) {
		return
	}
	candidates[stable] = true

	for c := range candidates {
		c.free()
	}
}
