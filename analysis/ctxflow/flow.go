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

// FlowFunctions is the client's transfer-function contract for a single
// data-flow analysis. All four call-related functions take the *calling*
// context: the callee's own context (and hence its own boundary value) is
// derived by the engine from CallEntry's result (forward) or CallExit's
// result (backward), not supplied by the client.
//
// This is the "modern" four-function shape. It deliberately does not offer
// the single combined flowFunction/processCall entry point of older
// context-sensitive frameworks, which forced every client to re-implement
// the call/return bookkeeping that CallEntry/CallExit/CallLocal now do
// uniformly inside the engine.
type FlowFunctions[M comparable, N comparable, A any] interface {
	// BoundaryValue returns the abstract value to use at the boundary of a
	// freshly created context for entryPoint. For a forward analysis this
	// seeds the entry value of an EntryPoints() method; for a backward
	// analysis it seeds the exit value of an EntryPoints() method. It is not
	// called for callees: their contexts are keyed by CallEntry (forward)
	// or CallExit (backward).
	BoundaryValue(entryPoint M) A

	// NormalFlow computes the OUT value of a non-call node n given its IN
	// value, within the context ctx.
	NormalFlow(ctx *Context[M, N, A], n N, in A) A

	// CallEntry computes the value flowing into target as a result of the
	// call at node n in ctx, given the value in immediately before the
	// call. The result becomes (after Copy) the boundary value used to find
	// or create target's context.
	CallEntry(ctx *Context[M, N, A], target M, n N, in A) A

	// CallExit computes the component of n's OUT value contributed by
	// target's exit value calleeBoundary, once target's context has
	// stabilised at least once.
	CallExit(ctx *Context[M, N, A], target M, n N, calleeBoundary A) A

	// CallLocal computes the component of n's OUT value that does not flow
	// through any callee: values local to the caller that a call statement
	// does not touch. It is also used, on its own, for calls that resolve
	// to no context (phantom methods, or calls with no resolved target at
	// all).
	CallLocal(ctx *Context[M, N, A], n N, in A) A
}
