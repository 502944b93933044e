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

// Package toyir is a minimal, hand-built intermediate representation used
// to write small, deterministic fixtures for ctxflow clients, without
// pulling in a full go/ssa build for a two-function test program.
//
// Its Function/Block shape loosely mirrors go/ssa's Function/BasicBlock: a
// function is a list of basic blocks, each block a straight-line list of
// instructions ending implicitly at the block boundary, with Preds/Succs
// wired directly on the block. A ctxflow.Program adapter over toyir
// (adapter.go) satisfies the same contract as one over ssaprog, but a
// client's flow functions are not portable between the two IRs unchanged:
// toyir.Block is whole-block-granular while ssaprog.Node is a single
// instruction, and their expression/instruction shapes differ (toyir.Var/
// toyir.Const/toyir.Ref vs. ssa.Value). sign and copyconst are written
// directly against toyir; nilness is the ssaprog equivalent, built
// separately against the same four-function contract.
package toyir

// Method identifies a function by name.
type Method string

// Var identifies a local variable by name.
type Var string

// Expr is a side-effect-free expression: a constant, a variable reference,
// or a binary operation over two sub-expressions.
type Expr interface{ isExpr() }

// Const is a constant integer expression.
type Const int

// Ref is a variable-reference expression.
type Ref Var

// BinOp is a binary operation. Op is one of "+", "-", "*", "<".
type BinOp struct {
	Op   string
	X, Y Expr
}

func (Const) isExpr() {}
func (Ref) isExpr()   {}
func (BinOp) isExpr() {}

// Instr is a single instruction within a block.
type Instr interface{ isInstr() }

// Assign evaluates Rhs and stores the result in Lhs.
type Assign struct {
	Lhs Var
	Rhs Expr
}

// Call invokes Callee with Args, storing the result in Lhs (ignored if
// empty). A block containing a Call must contain no other instructions:
// call sites are always split into their own block.
type Call struct {
	Lhs    Var
	Callee Method
	Args   []Expr
}

// Return evaluates Value and makes it the function's result at this path.
type Return struct {
	Value Expr
}

func (Assign) isInstr() {}
func (Call) isInstr()   {}
func (Return) isInstr() {}

// Block is a basic block: a straight-line sequence of instructions, with
// explicit control-flow edges to other blocks in the same function.
type Block struct {
	Fn     Method
	Index  int
	Instrs []Instr

	succs []*Block
	preds []*Block
}

// Succs returns the block's successors.
func (b *Block) Succs() []*Block { return b.succs }

// Preds returns the block's predecessors.
func (b *Block) Preds() []*Block { return b.preds }

func (b *Block) String() string {
	return string(b.Fn) + "#" + itoa(b.Index)
}

// Call returns the block's Call instruction and true, if it has one.
func (b *Block) Call() (Call, bool) {
	if len(b.Instrs) == 1 {
		if c, ok := b.Instrs[0].(Call); ok {
			return c, true
		}
	}
	return Call{}, false
}

// Function is a single function: parameters plus a list of basic blocks,
// the first of which is the entry block.
type Function struct {
	Name   Method
	Params []Var
	Blocks []*Block
}

// NewBlock appends a new block with the given instructions to f and
// returns it, unconnected to any other block.
func (f *Function) NewBlock(instrs ...Instr) *Block {
	b := &Block{Fn: f.Name, Index: len(f.Blocks), Instrs: instrs}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Connect adds a control-flow edge from -> to.
func Connect(from, to *Block) {
	from.succs = append(from.succs, to)
	to.preds = append(to.preds, from)
}

// Program is a collection of functions plus a designated set of entry
// points.
type Program struct {
	Funcs   map[Method]*Function
	Entries []Method
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Funcs: map[Method]*Function{}}
}

// AddFunc registers a new, empty function named name with the given
// parameters and returns it.
func (p *Program) AddFunc(name Method, params ...Var) *Function {
	f := &Function{Name: name, Params: params}
	p.Funcs[name] = f
	return f
}

// AddEntry marks name as an entry point.
func (p *Program) AddEntry(name Method) {
	p.Entries = append(p.Entries, name)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
