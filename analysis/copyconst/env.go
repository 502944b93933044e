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

package copyconst

import "github.com/valuectx/ctxflow/analysis/toyir"

// ReturnVar is the reserved pseudo-variable a function's returned value's
// fact is recorded under in its exit environment, standing in for VASCO's
// artificial "@return" local.
const ReturnVar = toyir.Var("@return")

// Env is a data-flow value: a partial map from variable to its
// copy-constant fact. A variable absent from the map is unconstrained (Top);
// the map never stores an unconstrained entry explicitly.
type Env map[toyir.Var]Constant

// Get returns v's fact and whether it is present at all (false means Top).
func (e Env) Get(v toyir.Var) (Constant, bool) {
	c, ok := e[v]
	return c, ok
}

// Value returns v's known constant value and true, or (0, false) if v is
// unconstrained or known non-constant.
func (e Env) Value(v toyir.Var) (int, bool) {
	c, ok := e[v]
	if !ok || c.NonConstant {
		return 0, false
	}
	return c.Value, true
}

func (e Env) Copy() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e Env) Equal(other Env) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Meet computes the pointwise meet of a and b over the union of their
// domains: a variable known to only one operand keeps that operand's fact,
// since the other operand has no information to contradict it with.
func Meet(a, b Env) Env {
	out := make(Env, len(a)+len(b))
	for k, v := range a {
		if ov, ok := b[k]; ok {
			out[k] = meet(v, ov)
		} else {
			out[k] = v
		}
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// assign evaluates rhs against in and, if it resolves to a fact, records it
// for lhs in out. A compound expression or a still-unconstrained variable
// copy kills lhs outright rather than leaving out's initial copy of in's
// stale entry in place.
func assign(lhs toyir.Var, rhs toyir.Expr, in, out Env) {
	switch v := rhs.(type) {
	case toyir.Const:
		out.set(lhs, known(int(v)))
	case toyir.Ref:
		if c, ok := in.Get(toyir.Var(v)); ok {
			out.set(lhs, c)
		} else {
			out.set(lhs, nonConstant())
		}
	default:
		out.set(lhs, nonConstant())
	}
}

func (e Env) set(v toyir.Var, c Constant) { e[v] = c }
