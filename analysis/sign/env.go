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

package sign

import "github.com/valuectx/ctxflow/analysis/toyir"

// ReturnVar is the reserved pseudo-variable under which a function's return
// value's sign is recorded in its exit environment.
const ReturnVar = toyir.Var("$ret")

// Env is a data-flow value for the sign analysis: a partial map from
// variable to sign. A variable absent from the map is implicitly Top; the
// map never stores an explicit Top entry, so two Envs with the same
// effective meaning always compare equal as maps.
type Env map[toyir.Var]Sign

// Get returns the sign recorded for v, or Top if v is unconstrained.
func (e Env) Get(v toyir.Var) Sign {
	if s, ok := e[v]; ok {
		return s
	}
	return Top
}

// set records s for v, preserving the invariant that Top is never stored
// explicitly.
func (e Env) set(v toyir.Var, s Sign) {
	if s == Top {
		delete(e, v)
	} else {
		e[v] = s
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

// Equal reports whether e and other assign the same sign to every
// variable.
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
			out.set(k, meet(Top, v))
		}
	}
	return out
}

func eval(e Expr, env Env) Sign {
	switch v := e.(type) {
	case toyir.Const:
		return signOfConst(int(v))
	case toyir.Ref:
		return env.Get(toyir.Var(v))
	case toyir.BinOp:
		return evalBinOp(v.Op, eval(v.X, env), eval(v.Y, env))
	default:
		return Top
	}
}

// Expr is an alias for toyir.Expr, kept local so eval's type switch reads
// naturally.
type Expr = toyir.Expr
