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

package absint

import (
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"golang.org/x/tools/container/intsets"
)

// Worklist is a FIFO queue of nodes of a single function. A node is present at most once.
type Worklist struct {
	queue   []*lang.Node
	members intsets.Sparse
}

// NewWorklist returns a worklist containing the nodes, in order
func NewWorklist(nodes []*lang.Node) *Worklist {
	w := &Worklist{}
	for _, n := range nodes {
		w.Add(n)
	}
	return w
}

// Add adds the node at the end of the queue if it is not already present. Returns true if the node was added.
func (w *Worklist) Add(n *lang.Node) bool {
	if !w.members.Insert(n.ID) {
		return false
	}
	w.queue = append(w.queue, n)
	return true
}

// Pop removes and returns the first node of the queue. It returns nil if the worklist is empty.
func (w *Worklist) Pop() *lang.Node {
	if len(w.queue) == 0 {
		return nil
	}
	n := w.queue[0]
	w.queue = w.queue[1:]
	w.members.Remove(n.ID)
	return n
}

// Remove removes the node from the worklist, if present
func (w *Worklist) Remove(n *lang.Node) {
	if !w.members.Remove(n.ID) {
		return
	}
	for i, m := range w.queue {
		if m == n {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}
}

// Contains returns true if the node is in the worklist
func (w *Worklist) Contains(n *lang.Node) bool {
	return w.members.Has(n.ID)
}

// Len returns the number of nodes in the worklist
func (w *Worklist) Len() int {
	return len(w.queue)
}
