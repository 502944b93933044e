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

// Package render implements ctxflow's "render" sub-command: it writes a
// graphviz rendering of the engine's context-transition table to a file,
// optionally opening it afterwards.
package render

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/pkg/errors"
	"github.com/valuectx/ctxflow/analysis/config"
	"github.com/valuectx/ctxflow/analysis/ctxflow"
	"github.com/valuectx/ctxflow/analysis/nilness"
	"github.com/valuectx/ctxflow/analysis/render"
	"github.com/valuectx/ctxflow/analysis/ssaprog"
	"github.com/valuectx/ctxflow/cmd/ctxflow/tools"
	"golang.org/x/tools/go/ssa"
)

// Usage is the "render" sub-command's help text.
const Usage = `Render the context-transition table of a ctxflow run as a graphviz image.

Usage:
  ctxflow render -client=nilness -out=graph.svg package...

Only -client=nilness is supported, since it is the only client that runs
against a real program worth visualizing at scale.

Use the -help flag to display the options.`

// Flags holds "render"'s parsed flags.
type Flags struct {
	tools.CommonFlags
	CallgraphMode string
	Out           string
	Format        string
	Open          bool
}

// NewFlags parses args for the "render" sub-command.
func NewFlags(args []string) (Flags, error) {
	unparsed := tools.NewUnparsedCommonFlags("render")
	callgraphMode := unparsed.FlagSet.String("callgraph-mode", "", "callgraph construction mode: pointer, static, cha, rta, vta")
	out := unparsed.FlagSet.String("out", "ctxflow.svg", "output image path")
	format := unparsed.FlagSet.String("format", "svg", "graphviz output format (svg, png, ...)")
	open := unparsed.FlagSet.Bool("open", false, "open the rendered image after writing it")
	tools.SetUsage(unparsed.FlagSet, Usage)
	if err := unparsed.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command render with args %v: %w", args, err)
	}

	common, err := tools.Finish(unparsed)
	if err != nil {
		return Flags{}, err
	}
	mode := *callgraphMode
	if mode == "" {
		mode = common.Config.CallgraphMode
	}
	return Flags{CommonFlags: common, CallgraphMode: mode, Out: *out, Format: *format, Open: *open}, nil
}

// Run loads and analyses the program named by flags' positional arguments
// and renders its context-transition table to flags.Out.
func Run(flags Flags) error {
	if flags.Client != "nilness" {
		return fmt.Errorf("render only supports -client=nilness, got %q", flags.Client)
	}
	patterns := flags.FlagSet.Args()
	if len(patterns) == 0 {
		return fmt.Errorf("render requires at least one Go package pattern or source file")
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

	dot := render.TransitionTableDOT[*ssa.Function, ssaprog.Node, nilness.Env](engine, "ctxflow")
	if flags.Open {
		return render.ToFileAndOpen(dot, graphviz.Format(flags.Format), flags.Out)
	}
	return render.ToFile(dot, graphviz.Format(flags.Format), flags.Out)
}
