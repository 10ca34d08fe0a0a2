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

package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// RecursiveNodes returns the nodes that belong to a cycle of the graph: either a strongly connected component of
// size at least two, or a node with a self-loop.
func RecursiveNodes(cg CGraph) map[int64]bool {
	res := map[int64]bool{}
	for _, component := range graph.StrongComponents(cg) {
		if len(component) >= 2 {
			for _, v := range component {
				res[int64(v)] = true
			}
		} else if len(component) == 1 && cg.Edges[int64(component[0])][int64(component[0])] {
			res[int64(component[0])] = true
		}
	}
	return res
}

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph. Each cycle starts and ends with the
// same node.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
//	cg : the graph with cycles
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	s := &state{
		blocked: map[int64]bool{},
		blist:   map[int64]map[int64]bool{},
		stack:   []int64{},
		cycles:  [][]int64{},
	}
	// self-loops are elementary cycles that the strongly connected components below do not report
	for _, k := range cg.Keys {
		if cg.Edges[k][k] {
			s.cycles = append(s.cycles, []int64{k, k})
		}
	}
	start := 0
	for start < len(cg.Keys) {
		fg := Subgraph(cg, cg.Keys[start:])
		components := graph.StrongComponents(fg)
		least := int64(-1)
		for _, component := range components {
			if len(component) < 2 {
				continue
			}
			slices.Sort(component)
			if least < 0 || int64(component[0]) < least {
				least = int64(component[0])
			}
		}
		if least < 0 {
			return s.cycles
		}
		comp := componentOf(fg, least)
		s.stack = []int64{}
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least, Subgraph(cg, comp))
		start = slices.Index(cg.Keys, least) + 1
	}
	return s.cycles
}

// componentOf returns the nodes of the strongly connected component of g containing v
func componentOf(g CGraph, v int64) []int64 {
	for _, component := range graph.StrongComponents(g) {
		for _, w := range component {
			if int64(w) == v {
				res := make([]int64, len(component))
				for i, x := range component {
					res[i] = int64(x)
				}
				slices.Sort(res)
				return res
			}
		}
	}
	return []int64{v}
}

type state struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *state) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int64, i int64, g CGraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Successors(int(v)) {
		w := int64(w)
		if w == v {
			continue
		}
		if w == i {
			stackCopy := make([]int64, len(s.stack))
			copy(stackCopy, s.stack)
			stackCopy = append(stackCopy, w)
			s.cycles = append(s.cycles, stackCopy)
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, i, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for w := range g.Edges[v] {
			m := s.blist[w]
			if m != nil {
				s.blist[w][v] = true
			} else {
				s.blist[w] = map[int64]bool{v: true}
			}
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
