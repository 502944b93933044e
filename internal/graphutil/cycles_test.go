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

package graphutil_test

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/valuectx/ctxflow/internal/graphutil"
)

// Two disjoint cycles: 0<->1, and 2->3->4->2.
func TestFindAllElementaryCycles(t *testing.T) {
	edges := map[int64][]int64{
		0: {1},
		1: {0},
		2: {3},
		3: {4},
		4: {2},
	}
	ids := []int64{0, 1, 2, 3, 4}
	cg := graphutil.NewCGraph(ids, func(id int64) string { return strconv.FormatInt(id, 10) }, func(id int64) []int64 {
		return edges[id]
	})

	cycles := graphutil.FindAllElementaryCycles(cg)
	expected := []string{"010", "2342"}

	if n := len(cycles); n != len(expected) {
		t.Fatalf("expected %d elementary cycles, found %d: %v", len(expected), n, cycles)
	}

	results := make([]string, len(cycles))
	for i, cycle := range cycles {
		var b strings.Builder
		for _, n := range cycle {
			b.WriteString(strconv.FormatInt(n, 10))
		}
		results[i] = b.String()
	}
	sort.Strings(results)
	sort.Strings(expected)
	for i := range expected {
		if results[i] != expected[i] {
			t.Fatalf("cycles not as expected: got %v, want %v", results, expected)
		}
	}
}
