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

import "github.com/pkg/errors"

// ErrSolutionUnavailable is returned by (*Engine).MeetOverValidPathsSolution
// when at least one context has had its per-node state reclaimed, making a
// full meet-over-valid-paths projection impossible to reconstruct.
var ErrSolutionUnavailable = errors.New("meet-over-valid-paths solution unavailable: one or more contexts were freed during analysis")

// ErrNoEntryPoints is returned by Run when the program reports no entry
// points at all: there is nothing to seed the analysis with.
var ErrNoEntryPoints = errors.New("program has no entry points")

// ErrAlreadyRun is returned by Run if it is called more than once on the
// same engine. An Engine's worklist and transition table are single-use.
var ErrAlreadyRun = errors.New("engine has already been run")
