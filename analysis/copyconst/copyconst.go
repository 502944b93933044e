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

// Package copyconst implements an inter-procedural copy-constant
// propagation client for ctxflow: a variable's fact is either unconstrained
// (nothing known yet), a specific known integer value, or known to not have
// a single value across the paths that reach a program point. Only direct
// constant assignments and variable-to-variable copies propagate a value;
// any compound expression kills its target's fact rather than attempting to
// fold it, matching copy-constant propagation's usual scope as a cheap,
// syntactic complement to a real constant-folding pass.
package copyconst

// Constant is a single variable's copy-constant fact. The zero value is not
// meaningful on its own: whether a fact is present at all is tracked by Env,
// which never stores an entry for a variable that is still unconstrained.
type Constant struct {
	// NonConstant is true once the variable is known to disagree with
	// itself across some pair of paths, or to have been assigned something
	// other than a literal or a copy of another variable.
	NonConstant bool
	Value       int
}

func known(v int) Constant       { return Constant{Value: v} }
func nonConstant() Constant      { return Constant{NonConstant: true} }
func (c Constant) isKnown() bool { return !c.NonConstant }

// meet combines two facts for the same variable observed along different
// paths: identical known values agree, anything else disagrees and the
// variable is no longer constant.
func meet(a, b Constant) Constant {
	if a.isKnown() && b.isKnown() && a.Value == b.Value {
		return a
	}
	return nonConstant()
}
