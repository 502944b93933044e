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

// Package render builds a graphviz rendering of a ctxflow engine's
// context-transition table, or of a single context's control-flow graph,
// and writes it to an image file, optionally opening it in the system's
// default browser.
package render

import (
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/pkg/browser"
	"github.com/valuectx/ctxflow/analysis/ctxflow"
)

// contextColor picks a fill color for a context node reflecting its
// fixpoint status: unanalysed contexts (still on the worklist, or never
// reached a fixpoint) are pink, analysed ones green, and freed ones gray
// since their per-node tables are gone and there is nothing left to show.
func contextColor[M comparable, N comparable, A any](c *ctxflow.Context[M, N, A]) string {
	switch {
	case c.Freed():
		return "gray"
	case c.Analysed():
		return "palegreen"
	default:
		return "lightpink"
	}
}

// TransitionTableDOT renders the engine's context-transition table as a
// graphviz DOT source: one node per context, colored by contextColor, and
// one edge per recorded call-site resolution, labeled with the call node
// that produced it.
func TransitionTableDOT[M comparable, N comparable, A any](e *ctxflow.Engine[M, N, A], title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n  rankdir=LR;\n  node [shape=box fontname=\"Helvetica\" style=filled];\n", title)

	table := e.TransitionTable()
	for _, m := range e.Methods() {
		for _, ctx := range e.Contexts(m) {
			label := ctx.String()
			fmt.Fprintf(&b, "  %q [label=%q fillcolor=%q];\n", label, label, contextColor(ctx))
			for _, site := range table.Callers(ctx) {
				fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", site.Context.String(), label, fmt.Sprint(site.Node))
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// ContextCFGDOT renders a single context's control-flow graph: one node per
// program node, labeled with its string form, and one edge per Succs
// relation.
func ContextCFGDOT[M comparable, N comparable, A any](ctx *ctxflow.Context[M, N, A]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n  node [shape=box fontname=\"Helvetica\"];\n", ctx.String())

	cfg := ctx.CFG()
	if cfg != nil {
		for _, n := range cfg.Nodes() {
			label := fmt.Sprint(n)
			fmt.Fprintf(&b, "  %q [label=%q];\n", label, label)
			for _, s := range cfg.Succs(n) {
				fmt.Fprintf(&b, "  %q -> %q;\n", label, fmt.Sprint(s))
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// ToFile parses dot and writes it to path in the given graphviz format
// (e.g. graphviz.SVG, graphviz.PNG).
func ToFile(dot string, format graphviz.Format, path string) error {
	g := graphviz.New()
	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("could not parse dot source: %w", err)
	}
	defer func() {
		graph.Close()
		g.Close()
	}()
	if err := g.RenderFilename(graph, format, path); err != nil {
		return fmt.Errorf("could not render graph to %s: %w", path, err)
	}
	return nil
}

// ToFileAndOpen renders dot to path and opens it with the system's default
// application for the resulting file type.
func ToFileAndOpen(dot string, format graphviz.Format, path string) error {
	if err := ToFile(dot, format, path); err != nil {
		return err
	}
	return browser.OpenFile(path)
}
