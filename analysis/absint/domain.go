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

// Package absint implements a generic abstract interpretation framework over the control-flow graphs of
// functions. An Analysis supplies the lattice (its Domain), a transfer function per instruction and optional
// hooks to filter states on branch conditions. The Engine drives a worklist until the state of every node
// reaches a fixpoint.
//
// Termination of loops is ensured without a widening operator: the Forward direction forces the exit of a loop
// after a number of iterations that is the number of distinct numeric literals of the function.
package absint

import "github.com/awslabs/ar-sol-tools/analysis/lang"

// Variant is the tag of a domain element
type Variant int

const (
	// Bottom means the program point has not been proven reachable
	Bottom Variant = iota
	// Top means no information is retained, and none will be recovered by later joins
	Top
	// State means the domain carries a concrete fact map
	State
)

func (v Variant) String() string {
	switch v {
	case Bottom:
		return "BOTTOM"
	case Top:
		return "TOP"
	case State:
		return "STATE"
	default:
		return "?"
	}
}

// A Domain is an element of the lattice of an analysis. D is the concrete type implementing the interface.
type Domain[D any] interface {
	// Variant returns whether the domain is bottom, top or a concrete state
	Variant() Variant

	// Join merges other into the receiver, in place. It returns true if the receiver changed.
	// Join must be idempotent: d.Join(d) returns false.
	Join(other D) bool

	// Clone returns a deep copy of the domain
	Clone() D
}

// AnalysisState is the pair of domains before and after a node. The Engine owns both. Pre is joined in place
// by the predecessors of the node and Post is replaced after each application of the transfer function.
type AnalysisState[D Domain[D]] struct {
	Pre  D
	Post D
}

// An Analysis is the policy of an abstract interpretation.
type Analysis[D Domain[D]] interface {
	// Bottom returns a new bottom element
	Bottom() D

	// Direction returns the traversal strategy. The direction returned must be fresh: it may keep per-function
	// state such as loop counters.
	Direction() Direction[D]

	// Transfer updates d in place to reflect the execution of instr at node. instr is nil for nodes without
	// instructions. Transfer may be called many times on the same instruction.
	Transfer(node *lang.Node, d D, instr lang.Instruction) error

	// ApplyCondition filters d on the branch of cond that is taken. It may modify and return d.
	ApplyCondition(d D, cond lang.Instruction, taken bool) D

	// ReleaseCondition is called once both branches of cond have been filtered
	ReleaseCondition(cond lang.Instruction)

	// ApplyWidening is called on the state of a loop test whose exit is forced before the loop is stable.
	// previous is the state of the loop test when the loop was entered. literals are the numeric literals of the
	// function.
	ApplyWidening(current D, previous D, literals lang.LiteralSet) D
}

// Hooks implements the optional methods of Analysis with the identity. Analyses embed it and override what they
// need.
type Hooks[D any] struct{}

// ApplyCondition returns d unchanged
func (Hooks[D]) ApplyCondition(d D, _ lang.Instruction, _ bool) D { return d }

// ReleaseCondition does nothing
func (Hooks[D]) ReleaseCondition(_ lang.Instruction) {}

// ApplyWidening returns current unchanged
func (Hooks[D]) ApplyWidening(current D, _ D, _ lang.LiteralSet) D { return current }

// A Direction applies the transfer function of the analysis at a node and propagates the result to the nodes
// that follow it in the direction of the analysis.
type Direction[D Domain[D]] interface {
	ApplyTransferFunction(fp *Fixpoint[D], node *lang.Node) error
}

// Fixpoint is the mutable state of a fixpoint computation, shared by the Engine and its Direction.
type Fixpoint[D Domain[D]] struct {
	Analysis Analysis[D]
	Function *lang.Function
	States   map[*lang.Node]*AnalysisState[D]
	Worklist *Worklist

	// Visits counts the applications of the transfer function per node
	Visits map[*lang.Node]int
}

// Join joins d into the pre-state of node and schedules node if it changed
func (fp *Fixpoint[D]) Join(node *lang.Node, d D) bool {
	if fp.States[node].Pre.Join(d) {
		fp.Worklist.Add(node)
		return true
	}
	return false
}

// Prune marks node as unreachable from its father from: it is removed from the worklist and its pre-state is
// reset to bottom. Merge nodes are left untouched since other branches may reach them, and so are nodes with
// another father that they do not dominate.
func (fp *Fixpoint[D]) Prune(from, node *lang.Node) {
	if node.Type.IsMerge() {
		return
	}
	for _, father := range node.Fathers {
		if father != from && !lang.Dominates(node, father) {
			return
		}
	}
	fp.Worklist.Remove(node)
	fp.States[node].Pre = fp.Analysis.Bottom()
}
