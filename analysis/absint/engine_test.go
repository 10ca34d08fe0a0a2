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

package absint

import (
	"errors"
	"math/big"
	"testing"

	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// countDomain counts the arithmetic instructions executed along the longest path to a program point
type countDomain struct {
	variant Variant
	n       int
}

func (d *countDomain) Variant() Variant { return d.variant }

func (d *countDomain) Clone() *countDomain { return &countDomain{variant: d.variant, n: d.n} }

func (d *countDomain) Join(other *countDomain) bool {
	switch {
	case other.variant == Bottom || d.variant == Top:
		return false
	case other.variant == Top:
		d.variant = Top
		return true
	case d.variant == Bottom:
		d.variant, d.n = State, other.n
		return true
	case other.n > d.n:
		d.n = other.n
		return true
	}
	return false
}

type countAnalysis struct {
	Hooks[*countDomain]
}

func (a countAnalysis) Bottom() *countDomain { return &countDomain{variant: Bottom} }

func (a countAnalysis) Direction() Direction[*countDomain] { return NewForward[*countDomain]() }

func (a countAnalysis) Transfer(node *lang.Node, d *countDomain, instr lang.Instruction) error {
	if d.variant == Bottom {
		if node.Type != lang.EntryPoint {
			return nil
		}
		d.variant = State
	}
	if _, ok := instr.(*lang.Binary); ok {
		d.n++
	}
	return nil
}

// ApplyCondition only understands constant conditions
func (a countAnalysis) ApplyCondition(d *countDomain, cond lang.Instruction, taken bool) *countDomain {
	if c, ok := cond.(*lang.Condition); ok {
		if k, ok := c.Value.(*lang.Constant); ok && k.Bool != nil && *k.Bool != taken {
			return a.Bottom()
		}
	}
	return d
}

type backwardAnalysis struct {
	countAnalysis
}

func (a backwardAnalysis) Direction() Direction[*countDomain] { return Backward[*countDomain]{} }

var uint256 = lang.NewType("uint256")

func constant(x int64) *lang.Constant { return lang.NewIntConstant(big.NewInt(x), uint256) }

func newLogger() *config.LogGroup { return config.NewLogGroup(config.NewDefault()) }

// loopFunction is i := 0; while (?) { i = i + 1 }; return
func loopFunction() (*lang.Function, map[string]*lang.Node) {
	fn := lang.NewFunction(lang.NewContract("C"), "loop")
	i := fn.AddVariable("i", lang.LocalVariable, uint256)
	nodes := map[string]*lang.Node{
		"entry": fn.AddNode(lang.EntryPoint),
		"start": fn.AddNode(lang.StartLoop),
		"test":  fn.AddNode(lang.IfLoop),
		"body":  fn.AddNode(lang.Expression),
		"end":   fn.AddNode(lang.EndLoop),
		"ret":   fn.AddNode(lang.ReturnNode),
	}
	nodes["entry"].AddInstruction(&lang.Assignment{LV: i, RV: constant(0)})
	nodes["body"].AddInstruction(&lang.Binary{LV: i, Op: lang.Add, Left: i, Right: constant(1)})
	nodes["entry"].AddSon(nodes["start"])
	nodes["start"].AddSon(nodes["test"])
	nodes["test"].AddSon(nodes["body"])
	nodes["test"].AddSon(nodes["end"])
	nodes["body"].AddSon(nodes["test"])
	nodes["end"].AddSon(nodes["ret"])
	return fn, nodes
}

// idleLoopFunction is i := 0; while (?) { }; return, with depth nested loops
func idleLoopFunction(depth int) (*lang.Function, map[string]*lang.Node) {
	fn := lang.NewFunction(lang.NewContract("C"), "idle")
	i := fn.AddVariable("i", lang.LocalVariable, uint256)
	nodes := map[string]*lang.Node{"entry": fn.AddNode(lang.EntryPoint)}
	nodes["entry"].AddInstruction(&lang.Assignment{LV: i, RV: constant(0)})
	tests := make([]*lang.Node, depth)
	for k := range tests {
		tests[k] = fn.AddNode(lang.IfLoop)
	}
	body := fn.AddNode(lang.Expression)
	ends := make([]*lang.Node, depth)
	for k := range ends {
		ends[k] = fn.AddNode(lang.EndLoop)
	}
	nodes["ret"] = fn.AddNode(lang.ReturnNode)

	nodes["entry"].AddSon(tests[0])
	for k, test := range tests {
		if k+1 < depth {
			test.AddSon(tests[k+1])
		} else {
			test.AddSon(body)
		}
		test.AddSon(ends[depth-1-k])
	}
	body.AddSon(tests[depth-1])
	for k, end := range ends {
		if k+1 < depth {
			// the exit of an inner loop goes back to the test of the enclosing loop
			end.AddSon(tests[depth-2-k])
		} else {
			end.AddSon(nodes["ret"])
		}
	}
	nodes["inner"], nodes["outer"], nodes["body"] = tests[depth-1], tests[0], body
	lang.ComputeDominators(fn)
	return fn, nodes
}

// branchFunction is if (cond) { a } else { b }; return
func branchFunction(cond bool) (*lang.Function, map[string]*lang.Node) {
	fn := lang.NewFunction(lang.NewContract("C"), "branch")
	x := fn.AddVariable("x", lang.LocalVariable, uint256)
	nodes := map[string]*lang.Node{
		"entry": fn.AddNode(lang.EntryPoint),
		"if":    fn.AddNode(lang.If),
		"then":  fn.AddNode(lang.Expression),
		"else":  fn.AddNode(lang.Expression),
		"endif": fn.AddNode(lang.EndIf),
		"ret":   fn.AddNode(lang.ReturnNode),
	}
	nodes["if"].AddInstruction(&lang.Condition{Value: lang.NewBoolConstant(cond)})
	nodes["then"].AddInstruction(&lang.Binary{LV: x, Op: lang.Add, Left: x, Right: constant(1)})
	nodes["else"].AddInstruction(&lang.Binary{LV: x, Op: lang.Sub, Left: x, Right: constant(1)})
	nodes["entry"].AddSon(nodes["if"])
	nodes["if"].AddSon(nodes["then"])
	nodes["if"].AddSon(nodes["else"])
	nodes["then"].AddSon(nodes["endif"])
	nodes["else"].AddSon(nodes["endif"])
	nodes["endif"].AddSon(nodes["ret"])
	return fn, nodes
}

func TestWorklist(t *testing.T) {
	fn, nodes := branchFunction(true)
	w := NewWorklist(fn.Nodes[:3])
	if w.Add(nodes["entry"]) {
		t.Errorf("entry should already be in the worklist")
	}
	w.Remove(nodes["if"])
	if w.Contains(nodes["if"]) || w.Len() != 2 {
		t.Errorf("if should have been removed, worklist has %d nodes", w.Len())
	}
	w.Add(nodes["ret"])
	var order []int
	for n := w.Pop(); n != nil; n = w.Pop() {
		order = append(order, n.ID)
	}
	expected := []int{nodes["entry"].ID, nodes["then"].ID, nodes["ret"].ID}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i := range order {
		if order[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, order)
		}
	}
}

func TestLoopTerminates(t *testing.T) {
	fn, nodes := loopFunction()
	e := NewEngine[*countDomain](countAnalysis{}, fn, newLogger())
	if err := e.RunAnalysis(); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	bound := lang.Literals(fn).Len()
	if bound != 2 {
		t.Fatalf("expected 2 literals, got %d", bound)
	}
	if v := e.Visits(nodes["test"]); v > bound+1 {
		t.Errorf("loop test visited %d times, expected at most %d", v, bound+1)
	}
	for _, name := range []string{"end", "ret"} {
		if e.Post(nodes[name]).Variant() != State {
			t.Errorf("node %s should be reachable after the loop", name)
		}
	}
	if n := e.Post(nodes["ret"]).n; n != bound {
		t.Errorf("expected %d iterations of the body to reach the exit, got %d", bound, n)
	}
}

func TestLoopWithoutEffectReachesExit(t *testing.T) {
	for _, depth := range []int{1, 2, 3} {
		fn, nodes := idleLoopFunction(depth)
		e := NewEngine[*countDomain](countAnalysis{}, fn, newLogger())
		if err := e.RunAnalysis(); err != nil {
			t.Fatalf("depth %d: analysis failed: %v", depth, err)
		}
		if e.Post(nodes["ret"]).Variant() != State {
			t.Errorf("depth %d: the exit of the loops is unreachable", depth)
		}
		bound := lang.Literals(fn).Len()
		for _, name := range []string{"inner", "outer"} {
			if v := e.Visits(nodes[name]); v == 0 || v > (bound+1)*depth {
				t.Errorf("depth %d: %s loop test visited %d times", depth, name, v)
			}
		}
	}
}

func TestBranchPruning(t *testing.T) {
	tests := []struct {
		cond      bool
		reachable string
		pruned    string
	}{
		{true, "then", "else"},
		{false, "else", "then"},
	}
	for _, test := range tests {
		fn, nodes := branchFunction(test.cond)
		e := NewEngine[*countDomain](countAnalysis{}, fn, newLogger())
		if err := e.RunAnalysis(); err != nil {
			t.Fatalf("analysis failed: %v", err)
		}
		if e.Post(nodes[test.reachable]).Variant() != State {
			t.Errorf("cond=%v: %s should be reachable", test.cond, test.reachable)
		}
		if e.Post(nodes[test.pruned]).Variant() != Bottom || e.Visits(nodes[test.pruned]) != 0 {
			t.Errorf("cond=%v: %s should be pruned", test.cond, test.pruned)
		}
		if e.Post(nodes["ret"]).Variant() != State {
			t.Errorf("cond=%v: the merge point should stay reachable", test.cond)
		}
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	d := &countDomain{variant: State, n: 3}
	if d.Join(d.Clone()) {
		t.Errorf("joining a domain with itself should not change it")
	}
}

func TestEmptyFunction(t *testing.T) {
	fn := lang.NewFunction(lang.NewContract("C"), "empty")
	e := NewEngine[*countDomain](countAnalysis{}, fn, newLogger())
	if err := e.RunAnalysis(); err != nil {
		t.Errorf("analysis of a function without body should succeed, got %v", err)
	}
	if len(e.Result()) != 0 {
		t.Errorf("function without body should have no state")
	}
}

func TestBackwardNotSupported(t *testing.T) {
	fn, _ := branchFunction(true)
	e := NewEngine[*countDomain](backwardAnalysis{}, fn, newLogger())
	if err := e.RunAnalysis(); !errors.Is(err, ErrBackwardNotSupported) {
		t.Errorf("expected ErrBackwardNotSupported, got %v", err)
	}
}

func TestPruneKeepsNodesReachedFromElsewhere(t *testing.T) {
	// if (false) { then } else { else }; then is also the successor of else
	fn := lang.NewFunction(lang.NewContract("C"), "shared")
	entry := fn.AddNode(lang.EntryPoint)
	cond := fn.AddNode(lang.If)
	then := fn.AddNode(lang.Expression)
	other := fn.AddNode(lang.Expression)
	ret := fn.AddNode(lang.ReturnNode)
	cond.AddInstruction(&lang.Condition{Value: lang.NewBoolConstant(false)})
	entry.AddSon(cond)
	cond.AddSon(then)
	cond.AddSon(other)
	other.AddSon(then)
	then.AddSon(ret)
	lang.ComputeDominators(fn)

	tests := []struct {
		name string
		node *lang.Node
		keep bool
	}{
		{"son reached from another father", then, true},
		{"son only reached from the condition", other, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fp := &Fixpoint[*countDomain]{
				Analysis: countAnalysis{},
				Function: fn,
				States:   map[*lang.Node]*AnalysisState[*countDomain]{},
				Worklist: NewWorklist(nil),
				Visits:   map[*lang.Node]int{},
			}
			for _, n := range fn.Nodes {
				fp.States[n] = &AnalysisState[*countDomain]{Pre: &countDomain{variant: State, n: 1}}
			}
			fp.Worklist.Add(test.node)
			fp.Prune(cond, test.node)
			if kept := fp.States[test.node].Pre.Variant() != Bottom; kept != test.keep {
				t.Errorf("%s: pre-state kept = %v, expected %v", test.node, kept, test.keep)
			}
			if scheduled := fp.Worklist.Contains(test.node); scheduled != test.keep {
				t.Errorf("%s: scheduled = %v, expected %v", test.node, scheduled, test.keep)
			}
		})
	}

	e := NewEngine[*countDomain](countAnalysis{}, fn, newLogger())
	if err := e.RunAnalysis(); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if e.Post(then).Variant() != State || e.Post(ret).Variant() != State {
		t.Errorf("then is reachable through else")
	}
}
