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

package graphutil_test

import (
	"testing"

	"github.com/awslabs/ar-sol-tools/internal/graphutil"
	"golang.org/x/exp/slices"
)

func fromMap(n int, m map[int][]int) graphutil.CGraph {
	return graphutil.NewGraph(n, func(i int) []int { return m[i] })
}

func TestFindAllElementaryCycles(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges map[int][]int
		want  [][]int64
	}{
		{
			name:  "no cycle",
			n:     3,
			edges: map[int][]int{0: {1}, 1: {2}},
			want:  [][]int64{},
		},
		{
			name:  "triangle and self-loop",
			n:     4,
			edges: map[int][]int{0: {1}, 1: {2}, 2: {0, 3}, 3: {3}},
			want:  [][]int64{{3, 3}, {0, 1, 2, 0}},
		},
		{
			name:  "two cycles sharing a node",
			n:     3,
			edges: map[int][]int{0: {1}, 1: {0, 2}, 2: {1}},
			want:  [][]int64{{0, 1, 0}, {1, 2, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graphutil.FindAllElementaryCycles(fromMap(tt.n, tt.edges))
			if len(got) != len(tt.want) {
				t.Fatalf("FindAllElementaryCycles() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !slices.Equal(got[i], tt.want[i]) {
					t.Errorf("cycle %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRecursiveNodes(t *testing.T) {
	g := fromMap(5, map[int][]int{0: {1}, 1: {0, 2}, 2: {3}, 3: {3}})
	got := graphutil.RecursiveNodes(g)
	for _, v := range []int64{0, 1, 3} {
		if !got[v] {
			t.Errorf("node %d should be recursive", v)
		}
	}
	for _, v := range []int64{2, 4} {
		if got[v] {
			t.Errorf("node %d should not be recursive", v)
		}
	}
}
