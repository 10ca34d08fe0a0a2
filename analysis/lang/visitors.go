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

// IterateInstructions calls f on every instruction of the function, in node order.
func IterateInstructions(function *Function, f func(node *Node, instr Instruction)) {
	for _, node := range function.Nodes {
		for _, instr := range node.Instructions {
			f(node, instr)
		}
	}
}

// IterateValues calls f on every value read or written by an instruction of the function. Values may be visited
// more than once.
func IterateValues(function *Function, f func(v Value)) {
	IterateInstructions(function, func(_ *Node, instr Instruction) {
		for _, v := range instr.Reads() {
			if v != nil {
				f(v)
			}
		}
		if lv := instr.LValue(); lv != nil {
			f(lv)
		}
	})
}

// Writes returns true if an instruction of the function writes v
func Writes(function *Function, v *Variable) bool {
	for _, node := range function.Nodes {
		for _, instr := range node.Instructions {
			if instr.LValue() == v {
				return true
			}
		}
	}
	return false
}

// ReachableNodes returns the nodes reachable from the entry of the function, in depth-first order.
func ReachableNodes(function *Function) []*Node {
	entry := function.Entry()
	if entry == nil {
		return nil
	}
	visited := map[*Node]bool{}
	var order []*Node
	// Stack is at most as long as there are edges in the function
	stack := []*Node{entry}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1] // LIFO
		if visited[node] {
			continue
		}
		visited[node] = true
		order = append(order, node)
		for i := len(node.Sons) - 1; i >= 0; i-- {
			if !visited[node.Sons[i]] {
				stack = append(stack, node.Sons[i])
			}
		}
	}
	return order
}

// Callees returns the functions with a body called by function through internal or library calls.
func Callees(function *Function) []*Function {
	seen := map[*Function]bool{}
	var callees []*Function
	IterateInstructions(function, func(_ *Node, instr Instruction) {
		var callee *Function
		switch call := instr.(type) {
		case *InternalCall:
			callee = call.Function
		case *LibraryCall:
			callee = call.Function
		}
		if callee != nil && callee.HasBody() && !seen[callee] {
			seen[callee] = true
			callees = append(callees, callee)
		}
	})
	return callees
}
