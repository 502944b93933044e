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

// A Program is the client's view of the program being analysed: a set of
// methods, each with a control-flow graph, and the means to resolve the
// target(s) of a call node.
//
// M is the type used to identify a method (e.g. *ssa.Function, or a string
// name in a toy IR) and N is the type used to identify a node in a method's
// control-flow graph. Both must be comparable so that the engine can use
// them as map keys.
type Program[M comparable, N comparable] interface {
	// EntryPoints returns the methods for which the engine should seed an
	// initial context using BoundaryValue.
	EntryPoints() []M

	// ControlFlowGraph returns the control-flow graph of method.
	ControlFlowGraph(method M) CFG[N]

	// IsCall reports whether node contains a method call.
	IsCall(node N) bool

	// ResolveTargets returns the methods that a call node inside caller may
	// invoke. An empty result means the call has no statically known
	// target (e.g. a call through a nil or unresolved function value); such
	// a node is still handled as a call, but its call-site is recorded in
	// the transition table's default call-sites rather than against any
	// target context.
	ResolveTargets(caller M, node N) []M

	// IsPhantomMethod reports whether method has no available body (for
	// example, standard library code excluded from the analysis scope). A
	// call resolving only to phantom methods is treated as a local
	// statement: propagation degrades to CallLocal for that call node.
	IsPhantomMethod(method M) bool
}

// A CFG is a single method's control-flow graph, viewed as it is needed by
// the engine.
type CFG[N comparable] interface {
	// Nodes returns every node in the graph, in no particular order.
	Nodes() []N

	// Preds returns the direct predecessors of node.
	Preds(node N) []N

	// Succs returns the direct successors of node.
	Succs(node N) []N

	// Heads returns the entry nodes of the graph: nodes with no
	// predecessors, or more generally the nodes at which a forward
	// analysis should seed the boundary value.
	Heads() []N

	// Tails returns the exit nodes of the graph: nodes with no successors,
	// or more generally the nodes at which a forward analysis' exit value
	// is computed (and a backward analysis seeds its boundary value).
	Tails() []N

	// Size returns the number of nodes in the graph.
	Size() int
}
