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

// runForward drains the outer worklist under forward semantics: IN(n) is
// the meet of OUT over Preds(n), and a change to OUT(n) wakes Succs(n).
func (e *Engine[M, N, A]) runForward(ctx context.Context) error {
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
			e.finishForward(cur)
			continue
		}

		n := item.node
		if preds := cur.cfg.Preds(n); len(preds) != 0 {
			in := e.lattice.Top()
			for _, p := range preds {
				in = e.lattice.Meet(in, cur.valueAfter[p])
			}
			cur.valueBefore[n] = in
		}

		prevOut := cur.valueAfter[n]
		in := cur.valueBefore[n]

		if e.opts.Verbose {
			e.opts.logger().Printf("%s: IN(%v) = %v", cur, n, in)
		}

		var out A
		if e.program.IsCall(n) {
			out = e.processCall(cur, n, in)
		} else {
			out = e.flow.NormalFlow(cur, n, in)
		}

		// Merge with the previous OUT to force monotonicity: harmless if
		// the client's flow functions are already monotone, and it keeps a
		// stray non-monotone step from causing the worklist to oscillate.
		out = e.lattice.Meet(out, prevOut)

		if e.opts.Verbose {
			e.opts.logger().Printf("%s: OUT(%v) = %v", cur, n, out)
		}

		cur.valueAfter[n] = out
		if !e.lattice.Equal(out, prevOut) {
			for _, s := range cur.cfg.Succs(n) {
				cur.worklist.Add(nodeItem[N]{node: s})
			}
		}
		if cur.sentinel[n] {
			cur.worklist.Add(nodeItem[N]{end: true})
		}
	}
	return nil
}

// finishForward computes cur's exit value from its tails, marks it
// analysed, wakes its callers and attempts on-the-fly reclamation.
func (e *Engine[M, N, A]) finishForward(cur *Context[M, N, A]) {
	exitValue := e.lattice.Top()
	for _, tail := range cur.cfg.Tails() {
		exitValue = e.lattice.Meet(exitValue, cur.valueAfter[tail])
	}
	cur.exitValue = exitValue
	cur.analysed = true

	e.wakeCallers(cur)
	e.reclaim(cur)
}
