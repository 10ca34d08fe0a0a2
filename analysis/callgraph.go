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
package analysis

import (
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"github.com/awslabs/ar-sol-tools/internal/graphutil"
)

// CallGraph is the graph of the internal and library calls between the functions of a program. Calls to functions
// without a body have no edge.
type CallGraph struct {
	// Functions are the nodes of the graph, in the order of the program
	Functions []*lang.Function

	index     map[*lang.Function]int
	graph     graphutil.CGraph
	recursive map[int64]bool
}

// BuildCallGraph computes the call graph of the program
func BuildCallGraph(program *lang.Program) *CallGraph {
	functions := program.Functions()
	index := make(map[*lang.Function]int, len(functions))
	for i, f := range functions {
		index[f] = i
	}
	g := graphutil.NewGraph(len(functions), func(i int) []int {
		var succs []int
		for _, callee := range lang.Callees(functions[i]) {
			if j, ok := index[callee]; ok {
				succs = append(succs, j)
			}
		}
		return succs
	})
	return &CallGraph{
		Functions: functions,
		index:     index,
		graph:     g,
		recursive: graphutil.RecursiveNodes(g),
	}
}

// Callees returns the functions called by f, in increasing order of declaration
func (cg *CallGraph) Callees(f *lang.Function) []*lang.Function {
	i, ok := cg.index[f]
	if !ok {
		return nil
	}
	var res []*lang.Function
	for _, j := range cg.graph.Successors(i) {
		res = append(res, cg.Functions[j])
	}
	return res
}

// IsRecursive returns true if f can call itself, directly or through other functions
func (cg *CallGraph) IsRecursive(f *lang.Function) bool {
	i, ok := cg.index[f]
	return ok && cg.recursive[int64(i)]
}

// BottomUp returns the functions such that, outside of recursive cycles, callees appear before their callers
func (cg *CallGraph) BottomUp() []*lang.Function {
	var res []*lang.Function
	for _, i := range graphutil.BottomUpOrder(cg.graph) {
		res = append(res, cg.Functions[i])
	}
	return res
}

// Cycles returns the elementary cycles of the call graph. Each cycle starts and ends with the same function.
func (cg *CallGraph) Cycles() [][]*lang.Function {
	var res [][]*lang.Function
	for _, cycle := range graphutil.FindAllElementaryCycles(cg.graph) {
		fs := make([]*lang.Function, len(cycle))
		for i, id := range cycle {
			fs[i] = cg.Functions[id]
		}
		res = append(res, fs)
	}
	return res
}
