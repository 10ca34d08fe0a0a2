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

import "testing"

func TestDominators(t *testing.T) {
	prog := mustLoad(t)
	mint := prog.Contract("Token").Function("mint")
	n := mint.Nodes
	tests := []struct {
		a, b     *Node
		expected bool
	}{
		{n[0], n[5], true},
		{n[2], n[5], true},
		{n[3], n[5], true},
		{n[3], n[4], false},
		{n[4], n[5], false},
		{n[5], n[5], true},
		{n[5], n[0], false},
	}
	for _, test := range tests {
		if Dominates(test.a, test.b) != test.expected {
			t.Errorf("Dominates(%s, %s) != %v", test.a, test.b, test.expected)
		}
	}
}

func TestReachableNodesAndCallees(t *testing.T) {
	prog := mustLoad(t)
	token := prog.Contract("Token")
	mint := token.Function("mint")
	order := ReachableNodes(mint)
	expected := []int{0, 1, 2, 3, 5, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i, id := range expected {
		if order[i].ID != id {
			t.Errorf("expected %v, got %v", expected, order)
			break
		}
	}
	callees := Callees(mint)
	if len(callees) != 1 || callees[0] != token.Function("add") {
		t.Errorf("unexpected callees of mint: %v", callees)
	}
	if callees := Callees(token.Function("misc")); len(callees) != 0 {
		t.Errorf("library calls without body are not callees, got %v", callees)
	}
	if ReachableNodes(token.Function("external")) != nil {
		t.Errorf("a function without body has no node")
	}
}

func TestWrites(t *testing.T) {
	prog := mustLoad(t)
	token := prog.Contract("Token")
	mint, misc := token.Function("mint"), token.Function("misc")
	tests := []struct {
		function *Function
		variable *Variable
		written  bool
	}{
		{mint, token.StateVariable("total"), true},
		{mint, mint.Lookup("next"), true},
		{mint, mint.Lookup("amount"), false},
		{misc, misc.Lookup("z"), true},
		{misc, misc.Lookup("x"), false},
	}
	for _, test := range tests {
		if w := Writes(test.function, test.variable); w != test.written {
			t.Errorf("%s writes %s: got %v, expected %v", test.function, test.variable, w, test.written)
		}
	}
}
