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

package run

import "github.com/valuectx/ctxflow/analysis/toyir"

// builtinSignProgram builds a small two-function toyir program for the sign
// client: main calls square(x) with a positive and a negative argument, so
// square gets analysed under two distinct contexts.
//
//	func square(n):
//	    r := n * n
//	    return r
//	func main():
//	    a := square(3)
//	    b := square(-3)
//	    return a
func builtinSignProgram() *toyir.Program {
	prog := toyir.NewProgram()

	square := prog.AddFunc("square", "n")
	square.NewBlock(
		toyir.Assign{Lhs: "r", Rhs: toyir.BinOp{Op: "*", X: toyir.Ref("n"), Y: toyir.Ref("n")}},
		toyir.Return{Value: toyir.Ref("r")},
	)

	main := prog.AddFunc("main")
	main.NewBlock(
		toyir.Assign{Lhs: "x1", Rhs: toyir.Const(3)},
		toyir.Assign{Lhs: "x2", Rhs: toyir.Const(-3)},
	)
	call1 := main.NewBlock(toyir.Call{Lhs: "a", Callee: "square", Args: []toyir.Expr{toyir.Ref("x1")}})
	call2 := main.NewBlock(toyir.Call{Lhs: "b", Callee: "square", Args: []toyir.Expr{toyir.Ref("x2")}})
	tail := main.NewBlock(toyir.Return{Value: toyir.Ref("a")})
	toyir.Connect(main.Blocks[0], call1)
	toyir.Connect(call1, call2)
	toyir.Connect(call2, tail)

	prog.AddEntry("main")
	return prog
}

// builtinCopyConstProgram builds a small two-function toyir program for the
// copyconst client: identity forwards its argument's constant-ness
// unchanged across the call boundary.
//
//	func identity(n):
//	    return n
//	func main():
//	    x := 7
//	    y := identity(x)
//	    return y
func builtinCopyConstProgram() *toyir.Program {
	prog := toyir.NewProgram()

	identity := prog.AddFunc("identity", "n")
	identity.NewBlock(toyir.Return{Value: toyir.Ref("n")})

	main := prog.AddFunc("main")
	main.NewBlock(toyir.Assign{Lhs: "x", Rhs: toyir.Const(7)})
	call := main.NewBlock(toyir.Call{Lhs: "y", Callee: "identity", Args: []toyir.Expr{toyir.Ref("x")}})
	tail := main.NewBlock(toyir.Return{Value: toyir.Ref("y")})
	toyir.Connect(main.Blocks[0], call)
	toyir.Connect(call, tail)

	prog.AddEntry("main")
	return prog
}
