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

package lang

import "github.com/awslabs/ar-sol-tools/internal/graphutil"

// CFGraph returns the control-flow graph of the function as a graph over node ids
func CFGraph(function *Function) graphutil.CGraph {
	return graphutil.NewGraph(len(function.Nodes), func(i int) []int {
		sons := function.Nodes[i].Sons
		ids := make([]int, len(sons))
		for j, s := range sons {
			ids[j] = s.ID
		}
		return ids
	})
}

// ComputeDominators populates the Dominators field of every node of the function. Nodes unreachable from the
// entry point get an empty dominator set.
func ComputeDominators(function *Function) {
	entry := function.Entry()
	if entry == nil {
		return
	}
	doms := graphutil.Dominators(CFGraph(function), int64(entry.ID))
	for _, node := range function.Nodes {
		node.Dominators = map[*Node]bool{}
		for _, id := range doms[int64(node.ID)] {
			node.Dominators[function.Nodes[id]] = true
		}
	}
}

// Dominates returns true if a dominates b. ComputeDominators must have been called on the function.
func Dominates(a, b *Node) bool {
	return b.Dominators[a]
}
