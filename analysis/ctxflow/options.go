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

package ctxflow

import "log"

// Direction selects whether an analysis propagates values from callers to
// callees along control-flow edges (Forward) or from callees to callers
// against them (Backward).
type Direction int

const (
	// Forward analyses key contexts on the value flowing into a method's
	// entry, propagate along Succs, and merge OUT values at Tails to form
	// the context's exit value.
	Forward Direction = iota

	// Backward analyses key contexts on the value flowing out of a
	// method's exit, propagate along Preds, and merge IN values at Heads
	// to form the context's entry value.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Options configures an Engine.
type Options struct {
	// Direction selects forward or backward propagation. The zero value is
	// Forward.
	Direction Direction

	// FreeResultsOnTheFly enables on-the-fly reclamation of per-node state
	// for contexts that have stabilised and are no longer reachable from
	// any context still pending on the outer worklist. This trades the
	// ability to compute a MeetOverValidPathsSolution afterwards for lower
	// peak memory use on large programs.
	FreeResultsOnTheFly bool

	// Verbose, when true, logs each node's IN/OUT values as they are
	// computed to Log. It is intended for debugging small toy programs;
	// enabling it on a large program produces an impractical amount of
	// output.
	Verbose bool

	// Log receives diagnostic and verbose output. If nil, log.Default() is
	// used.
	Log *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Log != nil {
		return o.Log
	}
	return log.Default()
}
