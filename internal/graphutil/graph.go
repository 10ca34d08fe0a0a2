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

// Package graphutil contains graph algorithms used by the analyses: strongly connected components and elementary
// cycles of call graphs, and dominators of control-flow graphs.
package graphutil

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
)

// CGraph is a directed graph over integer node ids 0..order-1. It implements the iterator interface of
// github.com/yourbasic/graph and can be converted to a gonum graph.
type CGraph struct {
	// The order of the graph
	order int

	// Keys are all the node IDs, in increasing order
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between x and y
	Edges map[int64]map[int64]bool
}

// NewGraph returns a graph with n nodes where the successors of node i are successors(i). Successors outside of
// [0, n) are ignored.
func NewGraph(n int, successors func(int) []int) CGraph {
	keys := make([]int64, n)
	edges := make(map[int64]map[int64]bool, n)
	for i := 0; i < n; i++ {
		keys[i] = int64(i)
		edges[int64(i)] = map[int64]bool{}
		for _, s := range successors(i) {
			if s >= 0 && s < n {
				edges[int64(i)][int64(s)] = true
			}
		}
	}
	return CGraph{order: n, Keys: keys, Edges: edges}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order is the same as in origin, meaning that node indices will stay consistent across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	in := make(map[int64]bool, len(include))
	keys := make([]int64, len(include))
	for j, i := range include {
		keys[j] = i
		in[i] = true
	}

	edges := make(map[int64]map[int64]bool, len(include))
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if in[e] {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order: original.Order(),
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph. Successors are visited in increasing order.
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	out, ok := c.Edges[int64(v)]
	if !ok {
		return false
	}
	succs := make([]int64, 0, len(out))
	for w := range out {
		succs = append(succs, w)
	}
	slices.Sort(succs)
	for _, w := range succs {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Successors returns the successors of v in increasing order
func (c CGraph) Successors(v int) []int {
	var res []int
	c.Visit(v, func(w int, _ int64) bool {
		res = append(res, w)
		return false
	})
	return res
}

// Directed returns the gonum representation of the graph. Self-loops are dropped.
func (c CGraph) Directed() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, k := range c.Keys {
		g.AddNode(simple.Node(k))
	}
	for _, k := range c.Keys {
		for w := range c.Edges[k] {
			if w != k {
				g.SetEdge(g.NewEdge(simple.Node(k), simple.Node(w)))
			}
		}
	}
	return g
}

// Dominators returns, for every node reachable from root, the set of nodes that dominate it (including the node
// itself). Unreachable nodes are absent from the result.
func Dominators(c CGraph, root int64) map[int64][]int64 {
	if _, ok := c.Edges[root]; !ok {
		return map[int64][]int64{}
	}
	tree := flow.Dominators(simple.Node(root), c.Directed())
	res := make(map[int64][]int64, len(c.Keys))
	for _, k := range c.Keys {
		if k != root && tree.DominatorOf(k) == nil {
			continue
		}
		doms := []int64{k}
		for cur := tree.DominatorOf(k); cur != nil; cur = tree.DominatorOf(cur.ID()) {
			doms = append(doms, cur.ID())
		}
		res[k] = doms
	}
	return res
}
