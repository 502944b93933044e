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

package nilness

import "golang.org/x/tools/go/ssa"

// Loc is anything an Env can hold a State for: an ssa.Value (a register-level
// SSA value) or a RetLoc (one of a function's return slots, since go/ssa has
// no single reserved return variable the way a call's Lhs is a single
// variable).
type Loc interface{}

// RetLoc identifies a function's Index-th return value. go/ssa functions can
// return more than one value, each produced independently by a *ssa.Return
// instruction's Results slice, so an Env's key space needs one slot per
// return position rather than a single sentinel.
type RetLoc struct{ Index int }

// Env is a data-flow value for the nilness analysis: a partial map from
// location to nilness state. A location absent from the map is implicitly
// Unknown; the map never stores an explicit Unknown entry, so two Envs with
// the same effective meaning always compare equal as maps.
type Env map[Loc]State

// Get returns the state recorded for loc, or Unknown if loc is unconstrained.
func (e Env) Get(loc Loc) State {
	if s, ok := e[loc]; ok {
		return s
	}
	return Unknown
}

// set records s for loc, preserving the invariant that Unknown is never
// stored explicitly.
func (e Env) set(loc Loc, s State) {
	if s == Unknown {
		delete(e, loc)
	} else {
		e[loc] = s
	}
}

// Copy returns an independent copy of e.
func (e Env) Copy() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Equal reports whether e and other assign the same state to every location.
func (e Env) Equal(other Env) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		if other[k] != v {
			return false
		}
	}
	return true
}

// Meet computes the pointwise meet of a and b over the union of their
// domains.
func Meet(a, b Env) Env {
	out := make(Env, len(a)+len(b))
	for k, v := range a {
		out.set(k, meet(v, b.Get(k)))
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			out.set(k, meet(Unknown, v))
		}
	}
	return out
}

// eval returns the nilness of v as known by env. Constants are decided
// directly from their literal value rather than looked up, since a constant
// is never itself a key in an Env.
func eval(v ssa.Value, env Env) State {
	if c, ok := v.(*ssa.Const); ok {
		if c.IsNil() {
			return IsNil
		}
		return NonNil
	}
	return env.Get(v)
}
