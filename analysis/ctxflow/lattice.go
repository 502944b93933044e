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

// A Lattice describes the abstract domain of a data-flow analysis.
//
// Meet must be commutative, associative and idempotent, and must be
// monotone with respect to the partial order it induces (meet(a, Top()) ==
// a for every a). The engine relies on these properties to make the
// analysis converge; it does not police them, but every value it produces
// is re-merged with the value it replaces (see the "defensive meet" applied
// after every flow function call) so that a client whose Meet or flow
// functions are occasionally non-monotone still reaches some fixpoint
// rather than oscillating.
type Lattice[A any] interface {
	// Top returns the identity element of Meet: meet(a, Top()) equals a for
	// all a. It is used to initialise data-flow values before any
	// information has reached a program point.
	Top() A

	// Copy returns an independent copy of a value. Flow functions must not
	// alias the value they were handed; the engine calls Copy whenever it
	// needs to seed a new context's entry or exit value from a value that
	// may still be mutated elsewhere.
	Copy(a A) A

	// Meet computes the greatest lower bound of a and b in the lattice's
	// partial order.
	Meet(a, b A) A

	// Equal reports whether a and b represent the same abstract value. It
	// is used to detect when a node's OUT value has stopped changing, and
	// to look up an existing context by its boundary value.
	Equal(a, b A) bool
}
