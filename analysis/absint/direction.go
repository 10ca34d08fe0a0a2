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
	"fmt"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// ErrBackwardNotSupported is returned by the Backward direction
var ErrBackwardNotSupported = errors.New("backward analysis is not supported")

// Forward propagates states from a node to its sons.
//
// At a loop test (IF_LOOP), control is forced into the loop body as long as the loop counter of the node is
// lower than the number of distinct literals of the function, and forced to the exit afterwards. When entering
// the body does not change its state, the loop is stable and control goes to the exit as well. When the exit is
// forced before the loop is stable, the state leaving the loop is widened by the analysis against the state the
// loop was entered with, first to the literals of the function and then, if the loop still cannot exit, without
// them.
//
// A loop whose body was entered but whose exit was not reached yet is open. When the worklist runs out while a
// loop is open, its test is scheduled again so that the exit is always reached.
type Forward[D Domain[D]] struct {
	initialized bool
	literals    lang.LiteralSet
	bound       int
	counters    map[*lang.Node]int
	// entry is the post-state of each loop test when its counter was last zero
	entry map[*lang.Node]D
	open  map[*lang.Node]bool
}

// NewForward returns a forward direction with no loop counter set
func NewForward[D Domain[D]]() *Forward[D] {
	return &Forward[D]{counters: map[*lang.Node]int{}, entry: map[*lang.Node]D{}, open: map[*lang.Node]bool{}}
}

// Bound returns the maximum number of iterations of a loop. It is only meaningful after the first call to
// ApplyTransferFunction.
func (f *Forward[D]) Bound() int {
	return f.bound
}

func (f *Forward[D]) init(function *lang.Function) {
	if f.initialized {
		return
	}
	f.initialized = true
	f.literals = lang.Literals(function)
	f.bound = f.literals.Len()
	// a loop without literals still has its body visited once
	if f.bound < 1 {
		f.bound = 1
	}
}

// ApplyTransferFunction runs the transfer function over the instructions of node, stores the result as the
// post-state of the node and propagates it to the sons.
func (f *Forward[D]) ApplyTransferFunction(fp *Fixpoint[D], node *lang.Node) error {
	f.init(fp.Function)
	if err := f.apply(fp, node); err != nil {
		return err
	}
	if fp.Worklist.Len() == 0 {
		f.resume(fp)
	}
	return nil
}

func (f *Forward[D]) apply(fp *Fixpoint[D], node *lang.Node) error {
	state := fp.States[node]
	if node != fp.Function.Entry() && state.Pre.Variant() == Bottom {
		return nil
	}
	fp.Visits[node]++

	d := state.Pre.Clone()
	if len(node.Instructions) == 0 {
		if err := fp.Analysis.Transfer(node, d, nil); err != nil {
			return fmt.Errorf("at %s: %w", node, err)
		}
	}
	for _, instr := range node.Instructions {
		if err := fp.Analysis.Transfer(node, d, instr); err != nil {
			return fmt.Errorf("at %s, instruction %q: %w", node, instr, err)
		}
	}
	state.Post = d

	last := node.LastInstruction()
	switch {
	case node.Type == lang.IfLoop && len(node.Sons) == 2:
		f.loop(fp, node, d, last)
	case node.IsConditional() && last != nil && lang.IsRecognizedCondition(last):
		f.split(fp, node, d, last)
	default:
		for _, son := range node.Sons {
			fp.Join(son, d)
		}
	}
	return nil
}

// split propagates the state filtered by the condition to each branch. Infeasible branches are pruned.
func (f *Forward[D]) split(fp *Fixpoint[D], node *lang.Node, d D, cond lang.Instruction) {
	for i, taken := range []bool{true, false} {
		son := node.Sons[i]
		cd := fp.Analysis.ApplyCondition(d.Clone(), cond, taken)
		if cd.Variant() == Bottom {
			fp.Prune(node, son)
			continue
		}
		fp.Join(son, cd)
	}
	fp.Analysis.ReleaseCondition(cond)
}

func (f *Forward[D]) loop(fp *Fixpoint[D], node *lang.Node, d D, cond lang.Instruction) {
	if f.counters[node] == 0 {
		f.entry[node] = d.Clone()
	}
	body, exit := node.Sons[0], node.Sons[1]
	conditional := cond != nil && lang.IsRecognizedCondition(cond)
	filter := func(d D, taken bool) D {
		if conditional {
			return fp.Analysis.ApplyCondition(d.Clone(), cond, taken)
		}
		return d
	}
	if conditional {
		defer fp.Analysis.ReleaseCondition(cond)
	}

	bodyD := filter(d, true)
	exitState := d
	switch {
	case bodyD.Variant() == Bottom:
		fp.Prune(node, body)
	case f.counters[node] < f.bound:
		f.counters[node]++
		if f.enterBody(fp, body, bodyD) {
			f.open[node] = true
			return
		}
	default:
		// the loop did not stabilise within the bound
		exitState = fp.Analysis.ApplyWidening(d.Clone(), f.entry[node], f.literals)
		if filter(exitState, false).Variant() == Bottom {
			// no literal is large enough for the loop to exit
			exitState = fp.Analysis.ApplyWidening(d.Clone(), f.entry[node], lang.LiteralSet{})
		}
	}

	f.counters[node] = 0
	delete(f.open, node)
	exitD := filter(exitState, false)
	if exitD.Variant() == Bottom {
		if fp.States[exit].Pre.Variant() == Bottom {
			fp.Prune(node, exit)
		}
		return
	}
	fp.Join(exit, exitD)
}

func (f *Forward[D]) enterBody(fp *Fixpoint[D], body *lang.Node, d D) bool {
	if !fp.States[body].Pre.Join(d) {
		return false
	}
	fp.Worklist.Add(body)
	return true
}

// resume schedules the test of the innermost open loop. Loop tests are only scheduled when their state changes,
// which does not happen anymore once the worklist is empty.
func (f *Forward[D]) resume(fp *Fixpoint[D]) {
	var next *lang.Node
	for test := range f.open {
		if f.containsOpenLoop(test) {
			continue
		}
		if next == nil || test.ID > next.ID {
			next = test
		}
	}
	if next != nil {
		fp.Worklist.Add(next)
	}
}

// containsOpenLoop returns true if the body of the loop of test contains the test of another open loop
func (f *Forward[D]) containsOpenLoop(test *lang.Node) bool {
	body := test.Sons[0]
	for other := range f.open {
		if other != test && lang.Dominates(body, other) {
			return true
		}
	}
	return false
}

// Backward is declared for completeness. No analysis requires it.
type Backward[D Domain[D]] struct{}

// ApplyTransferFunction always returns ErrBackwardNotSupported
func (Backward[D]) ApplyTransferFunction(_ *Fixpoint[D], _ *lang.Node) error {
	return ErrBackwardNotSupported
}
