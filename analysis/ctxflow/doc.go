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

// Package ctxflow implements a value-contexts inter-procedural data-flow
// analysis engine.
//
// A context is identified by a (method, boundary value) pair: two calls to
// the same method with different abstract argument values are analysed in
// separate contexts, and a call with a value already associated with an
// existing context reuses that context's result instead of re-analysing the
// method. This gives full call-string precision without the exponential
// blowup of enumerating call strings, at the cost of client-supplied lattice
// values needing to be hashable/comparable enough to distinguish contexts.
//
// Clients supply a Lattice describing the abstract domain and a
// FlowFunctions implementation describing the analysis' transfer semantics;
// ctxflow drives the two-level worklist fixpoint computation, tracks the
// context-transition table, and (optionally) reclaims per-node state for
// contexts that can no longer be reached from a pending piece of work.
package ctxflow
