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

// Package pq implements a small generic priority queue on top of
// container/heap, with set semantics on Add (adding an element already
// present is a no-op) so that callers can use it directly as a de-duplicated
// worklist.
package pq

import "container/heap"

// lessFunc orders two elements of type T: less(a, b) is true when a should
// be popped before b.
type lessFunc[T any] func(a, b T) bool

type innerHeap[T any] struct {
	list []T
	less lessFunc[T]
}

func (h innerHeap[T]) Len() int      { return len(h.list) }
func (h innerHeap[T]) Swap(i, j int) { h.list[i], h.list[j] = h.list[j], h.list[i] }
func (h innerHeap[T]) Less(i, j int) bool {
	return h.less(h.list[i], h.list[j])
}

func (h *innerHeap[T]) Push(x any) {
	h.list = append(h.list, x.(T))
}

func (h *innerHeap[T]) Pop() any {
	old := h.list
	n := len(old)
	x := old[n-1]
	h.list = old[0 : n-1]
	return x
}

var _ heap.Interface = (*innerHeap[int])(nil)

// Queue is a priority queue with de-duplicated membership: Add is a no-op if
// an equal element (per Go's == operator) is already queued.
type Queue[T comparable] struct {
	heap innerHeap[T]
	// elements tracks queue membership so Add can reject duplicates and
	// Contains can answer membership queries in O(1).
	elements map[T]struct{}
}

// New returns an empty queue that pops elements in the order given by less:
// less(a, b) == true means a is popped before b.
func New[T comparable](less lessFunc[T]) *Queue[T] {
	return &Queue[T]{
		heap:     innerHeap[T]{less: less},
		elements: make(map[T]struct{}),
	}
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.heap.list) == 0
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	return len(q.heap.list)
}

// Peek returns the next element that GetNext would return, without removing
// it. The second result is false if the queue is empty.
func (q *Queue[T]) Peek() (T, bool) {
	if q.IsEmpty() {
		var zero T
		return zero, false
	}
	return q.heap.list[0], true
}

// GetNext removes and returns the highest-priority element.
func (q *Queue[T]) GetNext() T {
	el := heap.Pop(&q.heap).(T)
	delete(q.elements, el)
	return el
}

// Add inserts x into the queue if it is not already present.
func (q *Queue[T]) Add(x T) {
	if _, found := q.elements[x]; found {
		return
	}
	q.elements[x] = struct{}{}
	heap.Push(&q.heap, x)
}

// Contains reports whether x is currently queued.
func (q *Queue[T]) Contains(x T) bool {
	_, found := q.elements[x]
	return found
}
