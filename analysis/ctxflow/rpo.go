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

// priorityOrder assigns each node of cfg a position in (approximate)
// reverse-postorder, used to prioritise the context's node worklist so that
// a value only needs to cross a back-edge once per pass around a loop.
//
// A forward analysis orders nodes by reverse postorder of a DFS over Succs
// starting at Heads: a node's predecessors are numbered before it whenever
// the edge to it is not a back-edge. A backward analysis mirrors this over
// Preds starting at Tails.
func (e *Engine[M, N, A]) priorityOrder(cfg CFG[N]) map[N]int {
	var starts []N
	var next func(N) []N
	if e.opts.Direction == Backward {
		starts = cfg.Tails()
		next = cfg.Preds
	} else {
		starts = cfg.Heads()
		next = cfg.Succs
	}

	order := postorder(starts, next)

	visited := make(map[N]bool, len(order))
	for _, n := range order {
		visited[n] = true
	}
	// Nodes unreachable from the declared heads/tails (e.g. dead code, or a
	// disconnected component) still need a priority so they are not
	// dropped from the worklist ordering; append them in arbitrary order.
	for _, n := range cfg.Nodes() {
		if !visited[n] {
			order = append(order, n)
			visited[n] = true
		}
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	result := make(map[N]int, len(order))
	for i, n := range order {
		result[n] = i + 1
	}
	return result
}

// postorder returns the nodes reachable from starts, in postorder, using an
// explicit stack so that a deeply-nested control-flow graph does not risk a
// stack overflow from recursion.
func postorder[N comparable](starts []N, next func(N) []N) []N {
	visited := map[N]bool{}
	var order []N

	type frame struct {
		node N
		i    int
		succ []N
	}

	for _, s := range starts {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack := []frame{{node: s, succ: next(s)}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.i < len(top.succ) {
				child := top.succ[top.i]
				top.i++
				if !visited[child] {
					visited[child] = true
					stack = append(stack, frame{node: child, succ: next(child)})
				}
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}
