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
	"testing"

	"golang.org/x/exp/slices"
)

func TestDominators(t *testing.T) {
	// diamond 0 -> {1, 2} -> 3, with 4 unreachable and a back edge 3 -> 0
	g := NewGraph(5, func(i int) []int {
		return map[int][]int{0: {1, 2}, 1: {3}, 2: {3}, 3: {0}, 4: {3}}[i]
	})
	doms := Dominators(g, 0)
	want := map[int64][]int64{
		0: {0},
		1: {1, 0},
		2: {2, 0},
		3: {3, 0},
	}
	if len(doms) != len(want) {
		t.Fatalf("Dominators() returned %d nodes, want %d: %v", len(doms), len(want), doms)
	}
	for k, w := range want {
		if !slices.Equal(doms[k], w) {
			t.Errorf("dominators of %d = %v, want %v", k, doms[k], w)
		}
	}
	if _, ok := doms[4]; ok {
		t.Errorf("unreachable node 4 should have no dominators")
	}
}

func TestBottomUpOrder(t *testing.T) {
	g := NewGraph(4, func(i int) []int {
		return map[int][]int{0: {1}, 1: {2}, 3: {0}}[i]
	})
	order := BottomUpOrder(g)
	pos := map[int64]int{}
	for i, v := range order {
		pos[v] = i
	}
	if len(order) != 4 {
		t.Fatalf("BottomUpOrder() = %v", order)
	}
	if !(pos[2] < pos[1] && pos[1] < pos[0] && pos[0] < pos[3]) {
		t.Errorf("BottomUpOrder() = %v, callees should come first", order)
	}
}

func TestVisitIsSorted(t *testing.T) {
	g := NewGraph(4, func(i int) []int {
		if i == 0 {
			return []int{3, 1, 2, 7}
		}
		return nil
	})
	if got := g.Successors(0); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Successors(0) = %v, want [1 2 3]", got)
	}
}
