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

package main

import (
	"fmt"
	"os"

	"github.com/valuectx/ctxflow/cmd/ctxflow/explain"
	"github.com/valuectx/ctxflow/cmd/ctxflow/render"
	"github.com/valuectx/ctxflow/cmd/ctxflow/run"
)

const version = "0.1.0"

const usage = `ctxflow: value-contexts inter-procedural data-flow analysis engine
Usage:
  ctxflow [tool] [options] <args>
Tools:
  - run: executes a client analysis (sign, copyconst, nilness) and prints its per-context solution
  - render: writes a graphviz rendering of the context-transition table
  - explain: prints every context ctxflow created for one function
Examples:
  Run the built-in sign demo: ctxflow run -client=sign
  Analyse a real program: ctxflow run -client=nilness ./...
  Render the result: ctxflow render -client=nilness -out=graph.svg ./...`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "run":
		flags, err := run.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := run.Run(flags); err != nil {
			errExit(err)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
	case "explain":
		flags, err := explain.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := explain.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(2)
}
