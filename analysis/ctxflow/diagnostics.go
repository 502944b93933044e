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

	"github.com/valuectx/ctxflow/internal/graphutil"
)

// ContextGraph builds a graphutil.CGraph view of the engine's
// context-transition table, with one node per context (keyed by its ID)
// and one edge per recorded call-site resolution. It is meant for
// diagnostics only: FindMutuallyRecursiveContexts and any other
// graphutil algorithm consumes it read-only after Run has completed.
func (e *Engine[M, N, A]) ContextGraph() graphutil.CGraph {
	var all []*Context[M, N, A]
	for _, m := range e.Methods() {
		all = append(all, e.Contexts(m)...)
	}

	ids := make([]int64, len(all))
	byID := make(map[int64]*Context[M, N, A], len(all))
	for i, c := range all {
		ids[i] = int64(c.id)
		byID[int64(c.id)] = c
	}

	label := func(id int64) string { return byID[id].String() }
	out := func(id int64) []int64 {
		c := byID[id]
		var succs []int64
		for site := range e.transitions.callSitesOf[c] {
			for target := range e.transitions.targets[site] {
				succs = append(succs, int64(target.id))
			}
		}
		return succs
	}

	return graphutil.NewCGraph(ids, label, out)
}

// FindMutuallyRecursiveContexts reports every group of two or more contexts
// that call each other, directly or transitively, via
// graphutil.FindAllElementaryCycles over ContextGraph. It is purely
// informational: the engine's fixpoint algorithm handles such cycles
// correctly regardless (see forward.go/backward.go and wakeCallers), this
// is only useful for a human inspecting why a particular method has more
// contexts than expected.
func (e *Engine[M, N, A]) FindMutuallyRecursiveContexts() [][]string {
	cg := e.ContextGraph()
	cycles := graphutil.FindAllElementaryCycles(cg)

	out := make([][]string, 0, len(cycles))
	for _, cycle := range cycles {
		labels := make([]string, len(cycle))
		for i, id := range cycle {
			labels[i] = fmt.Sprint(cg.IDMap[id])
		}
		out = append(out, labels)
	}
	return out
}
