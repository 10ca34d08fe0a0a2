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

package interval

import (
	"fmt"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"golang.org/x/exp/slices"
)

// FindingKind is the kind of a finding
type FindingKind string

const (
	// DivisionByZero is reported when the divisor of a division or a modulo may be zero
	DivisionByZero FindingKind = "division-by-zero"
	// UnreachableNode is reported for nodes whose state stays bottom after the fixpoint
	UnreachableNode FindingKind = "unreachable-node"
)

// A Finding is a fact reported by the analysis. Findings are analysis results, not errors.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	Function    string      `json:"function"`
	Node        int         `json:"node"`
	NodeType    string      `json:"node-type"`
	Instruction string      `json:"instruction,omitempty"`
	Divisor     string      `json:"divisor,omitempty"`
}

func (f Finding) String() string {
	switch f.Kind {
	case DivisionByZero:
		return fmt.Sprintf("%s: possible division by zero at node %d: %s (divisor in %s)",
			f.Function, f.Node, f.Instruction, f.Divisor)
	case UnreachableNode:
		return fmt.Sprintf("%s: node %d (%s) is unreachable", f.Function, f.Node, f.NodeType)
	}
	return fmt.Sprintf("%s: %s at node %d", f.Function, f.Kind, f.Node)
}

// Findings collects findings without duplicates. Transfer functions run many times on the same instruction.
type Findings struct {
	seen map[string]bool
	list []Finding
}

// NewFindings returns an empty set of findings
func NewFindings() *Findings {
	return &Findings{seen: map[string]bool{}}
}

// Add adds a finding if an equivalent one has not been reported yet
func (fs *Findings) Add(f Finding) {
	key := fmt.Sprintf("%s|%s|%d|%s", f.Kind, f.Function, f.Node, f.Instruction)
	if fs.seen[key] {
		return
	}
	fs.seen[key] = true
	fs.list = append(fs.list, f)
}

// AddDivisionByZero reports a division by zero of instr at node
func (fs *Findings) AddDivisionByZero(node *lang.Node, instr lang.Instruction, divisor *Info) {
	fs.Add(Finding{
		Kind:        DivisionByZero,
		Function:    node.Function.CanonicalName(),
		Node:        node.ID,
		NodeType:    node.Type.String(),
		Instruction: instr.String(),
		Divisor:     divisor.String(),
	})
}

// AddUnreachable reports that node is unreachable
func (fs *Findings) AddUnreachable(node *lang.Node) {
	fs.Add(Finding{
		Kind:     UnreachableNode,
		Function: node.Function.CanonicalName(),
		Node:     node.ID,
		NodeType: node.Type.String(),
	})
}

// List returns the findings sorted by function, node and kind
func (fs *Findings) List() []Finding {
	res := slices.Clone(fs.list)
	slices.SortStableFunc(res, func(a, b Finding) bool {
		if a.Function != b.Function {
			return a.Function < b.Function
		}
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		return a.Kind < b.Kind
	})
	return res
}

// Len returns the number of findings
func (fs *Findings) Len() int {
	return len(fs.list)
}
