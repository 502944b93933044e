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

// Package explain implements ctxflow's "explain" sub-command: it prints,
// for a single named function, every context the engine created for it and
// that context's entry and exit values.
package explain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/valuectx/ctxflow/analysis/config"
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/nilness"
	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"github.com/valuectx/ctxflow/cmd/ctxflow/tools"
	"golang.org/x/tools/go/ssa"
)

// Usage is the "explain" sub-command's help text.
const Usage = `Explain every context ctxflow created for a single function.

Usage:
  ctxflow explain -function=main package...

Use the -help flag to display the options.`

// Flags holds "explain"'s parsed flags.
type Flags struct {
	tools.CommonFlags
	CallgraphMode string
	Function      string
}

// NewFlags parses args for the "explain" sub-command.
func NewFlags(args []string) (Flags, error) {
	unparsed := tools.NewUnparsedCommonFlags("explain")
	callgraphMode := unparsed.FlagSet.String("callgraph-mode", "", "callgraph construction mode: pointer, static, cha, rta, vta")
	function := unparsed.FlagSet.String("function", "", "name of the function to explain")
	tools.SetUsage(unparsed.FlagSet, Usage)
	if err := unparsed.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command explain with args %v: %w", args, err)
	}

	common, err := tools.Finish(unparsed)
	if err != nil {
		return Flags{}, err
	}
	if *function == "" {
		return Flags{}, fmt.Errorf("-function is required")
	}
	mode := *callgraphMode
	if mode == "" {
		mode = common.Config.CallgraphMode
	}
	return Flags{CommonFlags: common, CallgraphMode: mode, Function: *function}, nil
}

// Run loads and analyses the program named by flags' positional arguments
// and prints every context created for flags.Function.
func Run(flags Flags) error {
	if flags.Client != "nilness" {
		return fmt.Errorf("explain only supports -client=nilness, got %q", flags.Client)
	}
	patterns := flags.FlagSet.Args()
	if len(patterns) == 0 {
		return fmt.Errorf("explain requires at least one Go package pattern or source file")
	}
	mode, err := ssaprog.ParseCallgraphAnalysisMode(flags.CallgraphMode)
	if err != nil {
		return errors.Wrap(err, "invalid callgraph mode")
	}

	prog, resolver, err := ssaprog.Load(patterns, mode)
	if err != nil {
		return errors.Wrap(err, "failed to load program")
	}

	lg := config.NewLogGroup(flags.Config)
	a := nilness.New(prog)
	adapter := ssaprog.NewAdapter(prog, resolver)
	opts := ctxflow.Options{Verbose: flags.Verbose, Log: lg.GetTrace()}
	engine := ctxflow.New[*ssa.Function, ssaprog.Node, nilness.Env](adapter, a, a, opts)
	if err := engine.Run(context.Background()); err != nil {
		return errors.Wrap(err, "nilness analysis failed")
	}
	for _, w := range engine.Warnings() {
		lg.Warnf("%s", w)
	}

	var fn *ssa.Function
	for _, m := range engine.Methods() {
		if m.Name() == flags.Function {
			fn = m
			break
		}
	}
	if fn == nil {
		return fmt.Errorf("function %q was never analysed (not reachable from an entry point?)", flags.Function)
	}

	contexts := engine.Contexts(fn)
	if len(contexts) == 0 {
		fmt.Printf("%s has no contexts\n", flags.Function)
		return nil
	}
	for _, ctx := range contexts {
		fmt.Printf("%s: analysed=%v freed=%v\n", ctx.String(), ctx.Analysed(), ctx.Freed())
		fmt.Printf("  entry: %v\n  exit:  %v\n", ctx.EntryValue(), ctx.ExitValue())
	}
	return nil
}
