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

import "context"

// runBackward drains the outer worklist under backward semantics: it
// mirrors runForward with Preds/Succs and valueBefore/valueAfter swapped.
// The value merged over a node's successors (using valueBefore, since that
// is where a successor's already-computed backward result lives) feeds the
// flow functions, and the result is stored as valueAfter -- despite the
// field name, for a backward analysis valueAfter(n) is the value flowing
// into n from later in execution order, and valueBefore(n) is what the
// flow functions computed from it. A change to valueBefore(n) wakes
// Preds(n).
func (e *Engine[M, N, A]) runBackward(ctx context.Context) error {
	for !e.worklist.IsEmpty() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cur, _ := e.worklist.Peek()

		if cur.worklist.IsEmpty() {
			cur.analysed = true
			e.worklist.GetNext()
			continue
		}

		item := cur.worklist.GetNext()
		if item.end {
			e.finishBackward(cur)
			continue
		}

		n := item.node
		if succs := cur.cfg.Succs(n); len(succs) != 0 {
			merged := e.lattice.Top()
			for _, s := range succs {
				merged = e.lattice.Meet(merged, cur.valueBefore[s])
			}
			cur.valueAfter[n] = merged
		}

		prevIn := cur.valueBefore[n]
		fromLater := cur.valueAfter[n]

		if e.opts.Verbose {
			e.opts.logger().Printf("%s: OUT(%v) = %v", cur, n, fromLater)
		}

		var in A
		if e.program.IsCall(n) {
			in = e.processCall(cur, n, fromLater)
		} else {
			in = e.flow.NormalFlow(cur, n, fromLater)
		}

		in = e.lattice.Meet(in, prevIn)

		if e.opts.Verbose {
			e.opts.logger().Printf("%s: IN(%v) = %v", cur, n, in)
		}

		cur.valueBefore[n] = in
		if !e.lattice.Equal(in, prevIn) {
			for _, p := range cur.cfg.Preds(n) {
				cur.worklist.Add(nodeItem[N]{node: p})
			}
		}
		if cur.sentinel[n] {
			cur.worklist.Add(nodeItem[N]{end: true})
		}
	}
	return nil
}

// finishBackward computes cur's entry value from its heads, marks it
// analysed, wakes its callers and attempts on-the-fly reclamation.
func (e *Engine[M, N, A]) finishBackward(cur *Context[M, N, A]) {
	entryValue := e.lattice.Top()
	for _, head := range cur.cfg.Heads() {
		entryValue = e.lattice.Meet(entryValue, cur.valueBefore[head])
	}
	cur.entryValue = entryValue
	cur.analysed = true

	e.wakeCallers(cur)
	e.reclaim(cur)
}
