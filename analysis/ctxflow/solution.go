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

// Solution is the meet-over-valid-paths projection of every context's
// per-node values onto the underlying (method-independent) node space: for
// a node type N shared by several methods this would conflate them, so in
// practice N should be scoped so that each concrete node belongs to
// exactly one method (as is the case for both ssaprog and toyir).
type Solution[N comparable, A any] struct {
	ValueBefore map[N]A
	ValueAfter  map[N]A
}

// MeetOverValidPathsSolution merges, for every node of every context of
// every method, the values computed across all contexts. It requires that
// FreeResultsOnTheFly was not used, or that reclamation never actually
// freed anything: once a context's per-node tables are gone there is no
// way to recover its contribution to the merge.
func (e *Engine[M, N, A]) MeetOverValidPathsSolution() (Solution[N, A], error) {
	for _, list := range e.contexts {
		for _, c := range list {
			if c.freed {
				return Solution[N, A]{}, ErrSolutionUnavailable
			}
		}
	}

	before := map[N]A{}
	after := map[N]A{}
	seen := map[N]bool{}

	for _, list := range e.contexts {
		for _, c := range list {
			for _, n := range c.cfg.Nodes() {
				if !seen[n] {
					seen[n] = true
					before[n] = c.valueBefore[n]
					after[n] = c.valueAfter[n]
					continue
				}
				before[n] = e.lattice.Meet(before[n], c.valueBefore[n])
				after[n] = e.lattice.Meet(after[n], c.valueAfter[n])
			}
		}
	}

	return Solution[N, A]{ValueBefore: before, ValueAfter: after}, nil
}
