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

// Package interval implements an interval analysis of contract functions on top of the absint framework. The
// analysis tracks, for each numeric variable, a closed interval of arbitrary precision bounds containing all the
// values the variable may hold. Comparisons narrow intervals when they are used as conditions of require, assert
// or branches, and calls to internal functions are analyzed in the context of their call site.
package interval

import (
	"fmt"
	"time"

	"github.com/awslabs/ar-sol-tools/analysis/absint"
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// Options of the interval analysis
type Options struct {
	// Interprocedural enables the analysis of callees at their call sites. When false, call results are bounded
	// by their types.
	Interprocedural bool
	// MaxCallDepth is the maximum number of nested calls analyzed
	MaxCallDepth int
}

// OptionsFromConfig returns the options set in the config
func OptionsFromConfig(cfg *config.Config) Options {
	depth := cfg.MaxCallDepth
	if depth <= 0 {
		depth = config.DefaultMaxCallDepth
	}
	return Options{Interprocedural: cfg.Interprocedural, MaxCallDepth: depth}
}

// IntervalAnalysis implements absint.Analysis for the interval domain. An IntervalAnalysis holds the pending
// constraints and the findings of the functions it analyzes; it must not be shared between goroutines.
type IntervalAnalysis struct {
	absint.Hooks[*Domain]

	options Options
	logger  *config.LogGroup

	types       TypeSystem
	variables   *VariableManager
	constraints *ConstraintManager
	operations  *OperationHandler
	calls       *FunctionCallAnalyzer
	findings    *Findings
}

// New returns a new interval analysis
func New(options Options, logger *config.LogGroup) *IntervalAnalysis {
	if options.MaxCallDepth <= 0 {
		options.MaxCallDepth = config.DefaultMaxCallDepth
	}
	a := &IntervalAnalysis{
		options:  options,
		logger:   logger,
		findings: NewFindings(),
	}
	a.variables = NewVariableManager(a.types)
	a.constraints = NewConstraintManager(a.variables, logger)
	a.operations = NewOperationHandler(a.types, a.variables, a.constraints, a.findings, logger)
	a.calls = NewFunctionCallAnalyzer(a, options.MaxCallDepth)
	return a
}

// Bottom implements absint.Analysis
func (a *IntervalAnalysis) Bottom() *Domain {
	return NewBottom()
}

// Direction implements absint.Analysis
func (a *IntervalAnalysis) Direction() absint.Direction[*Domain] {
	return absint.NewForward[*Domain]()
}

// Transfer implements absint.Analysis. At the entry of the function, the bottom state becomes a state where the
// parameters are bounded by their types.
func (a *IntervalAnalysis) Transfer(node *lang.Node, d *Domain, instr lang.Instruction) error {
	if d.IsBottom() && node.Function != nil && node == node.Function.Entry() {
		if err := a.initialize(d, node.Function); err != nil {
			return err
		}
	}
	return a.transfer(node, d, instr)
}

func (a *IntervalAnalysis) initialize(d *Domain, fn *lang.Function) error {
	s := NewState()
	for _, p := range fn.Parameters {
		if !a.types.IsNumeric(p.Type) {
			continue
		}
		name, err := a.variables.CanonicalName(p)
		if err != nil {
			return err
		}
		s.Set(name, a.types.Bounds(p.Type))
	}
	d.Replace(NewDomain(s))
	return nil
}

// transfer applies instr to d. Unreachable and top states are left unchanged.
func (a *IntervalAnalysis) transfer(node *lang.Node, d *Domain, instr lang.Instruction) error {
	if !d.IsState() || instr == nil {
		return nil
	}
	return lang.InstrSwitch(&instructionOp{a: a, node: node, d: d}, instr)
}

// ApplyCondition implements absint.Analysis by narrowing d on the branch taken
func (a *IntervalAnalysis) ApplyCondition(d *Domain, cond lang.Instruction, taken bool) *Domain {
	if !d.IsState() {
		return d
	}
	return a.constraints.ApplyBranch(cond, d, taken)
}

// ReleaseCondition implements absint.Analysis by consuming the pending constraints of a branch condition
func (a *IntervalAnalysis) ReleaseCondition(cond lang.Instruction) {
	a.constraints.Release(cond)
}

// ApplyWidening implements absint.Analysis. The bounds that moved since the loop test was entered are
// pushed to the next literal of the function in the direction they moved, or to the bounds of the type of the
// variable when there is no such literal.
func (a *IntervalAnalysis) ApplyWidening(current *Domain, previous *Domain, literals lang.LiteralSet) *Domain {
	if !current.IsState() || !previous.IsState() {
		return current
	}
	jumps := literals.Sorted()
	s := current.State()
	for _, name := range s.Names() {
		cur, prev := s.Get(name), previous.Get(name)
		if prev == nil {
			continue
		}
		bounds := a.types.Bounds(cur.Type)
		w := cur.Clone()
		if cur.Lower.Cmp(prev.Lower) < 0 {
			w.Lower = bounds.Lower
			for i := len(jumps) - 1; i >= 0; i-- {
				if b := NewBigBound(jumps[i]); b.Cmp(cur.Lower) <= 0 {
					w.Lower = MaxBound(b, bounds.Lower)
					break
				}
			}
		}
		if cur.Upper.Cmp(prev.Upper) > 0 {
			w.Upper = bounds.Upper
			for _, j := range jumps {
				if b := NewBigBound(j); b.Cmp(cur.Upper) >= 0 {
					w.Upper = MinBound(b, bounds.Upper)
					break
				}
			}
		}
		w.Lower, w.Upper = MinBound(w.Lower, cur.Lower), MaxBound(w.Upper, cur.Upper)
		if !w.Equal(cur) {
			a.logger.Tracef("widening %s from %s to %s\n", name, cur, w)
			s.Set(name, w)
		}
	}
	return current
}

// Findings returns the findings reported so far
func (a *IntervalAnalysis) Findings() []Finding {
	return a.findings.List()
}

// Inlined returns the number of calls that have been inlined by the analysis
func (a *IntervalAnalysis) Inlined() int {
	return a.calls.Inlined()
}

// VariableManager returns the variable manager of the analysis, to compute canonical names of variables
func (a *IntervalAnalysis) VariableManager() *VariableManager {
	return a.variables
}

// Run computes the fixpoint of the analysis on fn and reports the nodes that are unreachable. Calls from fn to
// itself are not inlined.
func (a *IntervalAnalysis) Run(fn *lang.Function) (*absint.Engine[*Domain], error) {
	start := time.Now()
	a.calls.inProgress[fn] = true
	defer delete(a.calls.inProgress, fn)

	engine := absint.NewEngine[*Domain](a, fn, a.logger)
	if err := engine.RunAnalysis(); err != nil {
		return nil, fmt.Errorf("interval analysis of %s: %w", fn.CanonicalName(), err)
	}
	for _, node := range fn.Nodes {
		if engine.Post(node).IsBottom() {
			a.findings.AddUnreachable(node)
		}
	}
	a.logger.Debugf("interval analysis of %s done in %.3f s, %d calls inlined\n",
		fn.CanonicalName(), time.Since(start).Seconds(), a.calls.Inlined())
	return engine, nil
}

// instructionOp implements lang.InstrOp for one instruction at node
type instructionOp struct {
	a    *IntervalAnalysis
	node *lang.Node
	d    *Domain
}

func (op *instructionOp) DoAssignment(x *lang.Assignment) error {
	return op.a.operations.HandleAssignment(op.d, x)
}

func (op *instructionOp) DoBinary(x *lang.Binary) error {
	return op.a.operations.HandleBinary(op.d, op.node, x)
}

func (op *instructionOp) DoTypeConversion(x *lang.TypeConversion) error {
	return op.a.operations.HandleTypeConversion(op.d, x)
}

func (op *instructionOp) DoInternalCall(x *lang.InternalCall) error {
	return op.call(x.Function, x.Args, x.LV, lang.Type{})
}

func (op *instructionOp) DoLibraryCall(x *lang.LibraryCall) error {
	return op.call(x.Function, x.Args, x.LV, lang.Type{})
}

// DoHighLevelCall bounds the result of external calls by their type: the callee may be any contract
func (op *instructionOp) DoHighLevelCall(x *lang.HighLevelCall) error {
	return op.a.calls.unconstrained(op.d, x.LV, nil, x.ReturnType)
}

func (op *instructionOp) DoSolidityCall(x *lang.SolidityCall) error {
	switch {
	case x.IsRequireOrAssert():
		if len(x.Args) == 0 {
			return nil
		}
		return op.a.constraints.ApplyConstraintFromCondition(x.Args[0], op.d)
	case x.IsRevert():
		op.d.SetBottom()
		return nil
	}
	return op.a.calls.unconstrained(op.d, x.LV, nil, x.ReturnType)
}

func (op *instructionOp) DoReturn(x *lang.Return) error {
	return op.a.operations.HandleReturn(op.d, op.node.Function, x)
}

func (op *instructionOp) DoUnpack(x *lang.Unpack) error {
	return op.a.operations.HandleUnpack(op.d, x)
}

// DoCondition does nothing: conditions are applied by ApplyCondition on the branches
func (op *instructionOp) DoCondition(*lang.Condition) error {
	return nil
}

func (op *instructionOp) call(callee *lang.Function, args []lang.Value, lv *lang.Variable, t lang.Type) error {
	if !op.a.options.Interprocedural {
		return op.a.calls.unconstrained(op.d, lv, callee, t)
	}
	return op.a.calls.AnalyzeCall(op.d, callee, args, lv, t)
}
