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

// Package run implements ctxflow's "run" sub-command: it executes the
// engine on a chosen client and prints, for every context reached, its
// entry and exit values.
package run

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/valuectx/ctxflow/analysis/config"
	"github.com/valuectx/ctxflow/analysis/copyconst"
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/format"
	"github.com/valuectx/ctxflow/analysis/nilness"
	"github.com/valuectx/ctxflow/analysis/sign"
	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"github.com/valuectx/ctxflow/analysis/toyir"
	"github.com/valuectx/ctxflow/cmd/ctxflow/tools"
	"github.com/valuectx/ctxflow/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// orderedMethods returns methods with a stable, sorted iteration order:
// Engine.Methods() walks a map internally, so printing results in that
// order would make "run"'s output nondeterministic between runs.
func orderedMethods(methods []toyir.Method) []toyir.Method {
	set := make(map[toyir.Method]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return funcutil.SetToOrderedSlice(set)
}

// Usage is the "run" sub-command's help text.
const Usage = `Run a ctxflow client analysis and print its per-context solution.

Usage:
  ctxflow run -client=sign
  ctxflow run -client=copyconst
  ctxflow run -client=nilness package...
  ctxflow run -client=nilness source.go

The sign and copyconst clients run against a small built-in toyir program
(they have no textual source format of their own); nilness runs against
the real Go program named by the positional arguments, loaded through
go/packages the same way "go build" would resolve them.

Use the -help flag to display the options.`

// Flags holds "run"'s parsed flags.
type Flags struct {
	tools.CommonFlags
	CallgraphMode string
}

// NewFlags parses args for the "run" sub-command.
func NewFlags(args []string) (Flags, error) {
	unparsed := tools.NewUnparsedCommonFlags("run")
	callgraphMode := unparsed.FlagSet.String("callgraph-mode", "", "callgraph construction mode for -client=nilness: pointer, static, cha, rta, vta")
	tools.SetUsage(unparsed.FlagSet, Usage)
	if err := unparsed.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command run with args %v: %w", args, err)
	}

	common, err := tools.Finish(unparsed)
	if err != nil {
		return Flags{}, err
	}
	mode := *callgraphMode
	if mode == "" {
		mode = common.Config.CallgraphMode
	}
	return Flags{CommonFlags: common, CallgraphMode: mode}, nil
}

// Run executes the client analysis named by flags.Client and prints its
// solution to stdout.
func Run(flags Flags) error {
	lg := config.NewLogGroup(flags.Config)
	switch flags.Client {
	case "sign":
		return runSign(flags, lg)
	case "copyconst":
		return runCopyConst(flags, lg)
	case "nilness":
		return runNilness(flags, lg)
	default:
		return fmt.Errorf("unknown client %q: expected sign, copyconst, or nilness", flags.Client)
	}
}

func runSign(flags Flags, lg *config.LogGroup) error {
	prog := builtinSignProgram()
	a := sign.New(prog)
	opts := ctxflow.Options{Verbose: flags.Verbose, Log: lg.GetTrace()}
	engine := ctxflow.New[toyir.Method, *toyir.Block, sign.Env](toyir.NewAdapter(prog), a, a, opts)
	if err := engine.Run(context.Background()); err != nil {
		return errors.Wrap(err, "sign analysis failed")
	}
	for _, method := range orderedMethods(engine.Methods()) {
		for _, ctx := range engine.Contexts(method) {
			printStatus(ctx.String(), ctx.Analysed())
			fmt.Printf("  entry: %v\n  exit:  %v\n", ctx.EntryValue(), ctx.ExitValue())
		}
	}
	reportWarnings(engine.Warnings(), lg)
	return nil
}

func runCopyConst(flags Flags, lg *config.LogGroup) error {
	prog := builtinCopyConstProgram()
	a := copyconst.New(prog)
	opts := ctxflow.Options{Verbose: flags.Verbose, Log: lg.GetTrace()}
	engine := ctxflow.New[toyir.Method, *toyir.Block, copyconst.Env](toyir.NewAdapter(prog), a, a, opts)
	if err := engine.Run(context.Background()); err != nil {
		return errors.Wrap(err, "copyconst analysis failed")
	}
	for _, method := range orderedMethods(engine.Methods()) {
		for _, ctx := range engine.Contexts(method) {
			printStatus(ctx.String(), ctx.Analysed())
			fmt.Printf("  entry: %v\n  exit:  %v\n", ctx.EntryValue(), ctx.ExitValue())
		}
	}
	reportWarnings(engine.Warnings(), lg)
	return nil
}

func runNilness(flags Flags, lg *config.LogGroup) error {
	patterns := flags.FlagSet.Args()
	if len(patterns) == 0 {
		return fmt.Errorf("nilness requires at least one Go package pattern or source file")
	}
	mode, err := ssaprog.ParseCallgraphAnalysisMode(flags.CallgraphMode)
	if err != nil {
		return errors.Wrap(err, "invalid callgraph mode")
	}

	fmt.Fprintln(os.Stderr, format.Faint("loading program..."))
	prog, resolver, err := ssaprog.Load(patterns, mode)
	if err != nil {
		return errors.Wrap(err, "failed to load program")
	}

	a := nilness.New(prog)
	adapter := ssaprog.NewAdapter(prog, resolver)
	opts := ctxflow.Options{Verbose: flags.Verbose, Log: lg.GetTrace()}
	engine := ctxflow.New[*ssa.Function, ssaprog.Node, nilness.Env](adapter, a, a, opts)
	if err := engine.Run(context.Background()); err != nil {
		return errors.Wrap(err, "nilness analysis failed")
	}

	for _, method := range engine.Methods() {
		for _, ctx := range engine.Contexts(method) {
			printStatus(ctx.String(), ctx.Analysed())
		}
	}
	reportWarnings(engine.Warnings(), lg)
	return nil
}

// reportWarnings logs an engine's partial-context diagnostics through lg's
// Warn logger, one line per context that never reached a fixpoint.
func reportWarnings(warnings []string, lg *config.LogGroup) {
	for _, w := range warnings {
		lg.Warnf("%s", w)
	}
}

func printStatus(label string, analysed bool) {
	if analysed {
		fmt.Println(format.Green(label))
	} else {
		fmt.Println(format.Red(label))
	}
}
