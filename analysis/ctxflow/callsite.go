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

import "fmt"

// CallSite identifies a specific call node analysed within a specific
// calling context. It is the key the transition table uses to record which
// context(s) a call may resolve to.
type CallSite[M comparable, N comparable, A any] struct {
	// Context is the calling context: the context that contains Node.
	Context *Context[M, N, A]

	// Node is the call node within Context's method.
	Node N
}

func (cs CallSite[M, N, A]) String() string {
	return fmt.Sprintf("%v@%v", cs.Context, cs.Node)
}
