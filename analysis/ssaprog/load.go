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

package ssaprog

import (
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadMode is the packages.Load mode used to load a program for ssaprog: it
// asks for everything the SSA builder needs and nothing that only the
// original teacher's summary/report machinery consumed.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// Load loads and type-checks the packages named by patterns, builds their
// SSA form, and resolves an initial call graph for it using mode. The
// resulting *ssa.Program is ready to drive an Adapter.
func Load(patterns []string, mode CallgraphAnalysisMode) (*ssa.Program, *Resolver, error) {
	cfg := &packages.Config{Mode: LoadMode, Tests: false}

	initial, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load packages")
	}
	if len(initial) == 0 {
		return nil, nil, errors.New("no packages matched the given patterns")
	}
	if packages.PrintErrors(initial) > 0 {
		return nil, nil, errors.New("errors while loading packages")
	}

	prog, ssaPkgs := ssautil.AllPackages(initial, ssa.InstantiateGenerics)
	for i, p := range ssaPkgs {
		if p == nil {
			return nil, nil, errors.Errorf("cannot build SSA for package %s", initial[i])
		}
	}
	prog.Build()

	cg, err := mode.ComputeCallgraph(prog)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to build call graph with mode %s", mode)
	}

	return prog, NewResolver(prog, cg), nil
}
