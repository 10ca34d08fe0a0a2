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

import (
	"errors"
	"fmt"
)

// ErrUnknownFunction is returned when a function cannot be found in a program
var ErrUnknownFunction = errors.New("unknown function")

// NodeType is the type of a node in the control-flow graph of a function
type NodeType int

const (
	// EntryPoint is the first node of a function
	EntryPoint NodeType = iota
	// Expression is a plain node
	Expression
	// VariableDecl declares (and possibly initializes) a local variable
	VariableDecl
	// ReturnNode returns from the function
	ReturnNode
	// If tests a condition; Sons[0] is the true branch, Sons[1] the false branch
	If
	// EndIf merges the branches of an If
	EndIf
	// StartLoop precedes the loop test
	StartLoop
	// IfLoop is the loop test; Sons[0] is the loop body, Sons[1] the loop exit
	IfLoop
	// EndLoop is the loop exit merge point
	EndLoop
	// Throw reverts
	Throw
	// Placeholder is the _ of a modifier
	Placeholder
	// OtherNode is any other statement
	OtherNode
)

var nodeTypeNames = map[NodeType]string{
	EntryPoint:   "ENTRY_POINT",
	Expression:   "EXPRESSION",
	VariableDecl: "NEW VARIABLE",
	ReturnNode:   "RETURN",
	If:           "IF",
	EndIf:        "END_IF",
	StartLoop:    "BEGIN_LOOP",
	IfLoop:       "IF_LOOP",
	EndLoop:      "END_LOOP",
	Throw:        "THROW",
	Placeholder:  "_",
	OtherNode:    "OTHER",
}

func (t NodeType) String() string {
	if s, ok := nodeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// ParseNodeType returns the node type named s (as printed by NodeType.String, case-sensitive)
func ParseNodeType(s string) (NodeType, bool) {
	for t, name := range nodeTypeNames {
		if name == s {
			return t, true
		}
	}
	return OtherNode, false
}

// IsMerge returns true for node types where several branches join (end of an if, loop test and loop exit)
func (t NodeType) IsMerge() bool {
	return t == EndIf || t == EndLoop || t == IfLoop || t == StartLoop
}

// Node is a node of the control-flow graph of a function
type Node struct {
	// ID is the index of the node in its function
	ID           int
	Type         NodeType
	Instructions []Instruction
	Sons         []*Node
	Fathers      []*Node
	Function     *Function

	// Dominators is the set of nodes that dominate this node (including itself). Populated by ComputeDominators.
	Dominators map[*Node]bool
}

// AddSon adds an edge from n to son
func (n *Node) AddSon(son *Node) {
	n.Sons = append(n.Sons, son)
	son.Fathers = append(son.Fathers, n)
}

// AddInstruction appends the instruction to the node
func (n *Node) AddInstruction(instr Instruction) {
	n.Instructions = append(n.Instructions, instr)
}

// LastInstruction returns the last instruction of the node, or nil if the node has none
func (n *Node) LastInstruction() Instruction {
	if len(n.Instructions) == 0 {
		return nil
	}
	return n.Instructions[len(n.Instructions)-1]
}

// IsConditional returns true if the node has a true and a false successor
func (n *Node) IsConditional() bool {
	return (n.Type == If || n.Type == IfLoop) && len(n.Sons) == 2
}

func (n *Node) String() string {
	if n.Function != nil {
		return fmt.Sprintf("%s#%d(%s)", n.Function.Name, n.ID, n.Type)
	}
	return fmt.Sprintf("#%d(%s)", n.ID, n.Type)
}
