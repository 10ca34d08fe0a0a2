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
	"github.com/awslabs/ar-sol-tools/analysis/absint"
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// FunctionCallAnalyzer propagates intervals through calls. The callee is analyzed with the same analysis, starting
// from the state of the caller where the parameters are bound to the intervals of the arguments. The state at the
// exit of the callee is then returned to the caller, with the returned values and the refined arguments.
//
// A call to a function that is already being analyzed, or that exceeds the maximum call depth, is not
// inlined: its result is bounded by its return type.
type FunctionCallAnalyzer struct {
	analysis *IntervalAnalysis
	types    TypeSystem
	vars     *VariableManager
	logger   *config.LogGroup

	maxDepth   int
	inProgress map[*lang.Function]bool
	depth      int

	// inlined counts the calls inlined since the creation of the analyzer
	inlined int
}

// NewFunctionCallAnalyzer returns a call analyzer that inlines at most maxDepth nested calls
func NewFunctionCallAnalyzer(analysis *IntervalAnalysis, maxDepth int) *FunctionCallAnalyzer {
	return &FunctionCallAnalyzer{
		analysis:   analysis,
		types:      analysis.types,
		vars:       analysis.variables,
		logger:     analysis.logger,
		maxDepth:   maxDepth,
		inProgress: map[*lang.Function]bool{},
	}
}

// Inlined returns the number of calls inlined so far
func (fca *FunctionCallAnalyzer) Inlined() int {
	return fca.inlined
}

// enter marks f as being analyzed. It returns false if f is already being analyzed or the call depth is
// exceeded.
func (fca *FunctionCallAnalyzer) enter(f *lang.Function) bool {
	if fca.inProgress[f] || fca.depth >= fca.maxDepth {
		return false
	}
	fca.inProgress[f] = true
	fca.depth++
	return true
}

func (fca *FunctionCallAnalyzer) exit(f *lang.Function) {
	delete(fca.inProgress, f)
	fca.depth--
}

// AnalyzeCall handles the call lv = callee(args) in the domain d of the caller. callee is nil when the target is
// unknown. returnType bounds the result when the callee cannot be analyzed.
func (fca *FunctionCallAnalyzer) AnalyzeCall(d *Domain, callee *lang.Function, args []lang.Value,
	lv *lang.Variable, returnType lang.Type) error {
	if callee == nil || !callee.HasBody() {
		fca.logger.Debugf("call target of %v not resolved, result bounded by its type\n", lv)
		return fca.unconstrained(d, lv, callee, returnType)
	}
	if !fca.enter(callee) {
		fca.logger.Debugf("call to %s not inlined (recursive or depth %d)\n", callee.CanonicalName(), fca.depth)
		return fca.unconstrained(d, lv, callee, returnType)
	}
	defer fca.exit(callee)
	fca.inlined++
	fca.logger.Tracef("inlining %s (call #%d, depth %d)\n", callee.CanonicalName(), fca.inlined, fca.depth)

	entry, err := fca.bindArguments(d, callee, args)
	if err != nil {
		return err
	}
	result, err := fca.runCallee(callee, entry)
	if err != nil {
		return err
	}
	if result.IsBottom() {
		fca.logger.Tracef("%s never returns normally from this call site\n", callee.CanonicalName())
		d.SetBottom()
		return nil
	}

	returns := make([]*Info, len(callee.Returns))
	for i, r := range callee.Returns {
		if info := result.Get(fca.vars.ReturnKey(callee, i)); info != nil {
			returns[i] = info
		} else {
			returns[i] = fca.types.Bounds(r.Type)
		}
	}
	refinements, err := fca.refinements(d, result, callee, args)
	if err != nil {
		return err
	}

	result.State().DeletePrefix(fca.vars.Scope(callee))
	d.Replace(result)

	for name, info := range refinements {
		if !d.Narrow(name, info) {
			fca.logger.Tracef("argument %s refined to an empty interval by %s\n", name, callee.CanonicalName())
			return nil
		}
	}
	return fca.assignReturns(d, lv, returns)
}

// bindArguments returns a copy of the caller state where the parameters of callee are bound to the intervals of
// the arguments. Arguments without interval bind the parameter to its type bounds.
func (fca *FunctionCallAnalyzer) bindArguments(d *Domain, callee *lang.Function, args []lang.Value) (*Domain, error) {
	entry := d.Clone()
	entry.State().DeletePrefix(fca.vars.Scope(callee))
	for i, p := range callee.Parameters {
		if !fca.types.IsNumeric(p.Type) {
			continue
		}
		name, err := fca.vars.CanonicalName(p)
		if err != nil {
			return nil, err
		}
		info := fca.types.Bounds(p.Type)
		if i < len(args) {
			argInfo, err := fca.vars.Interval(d, args[i])
			if err != nil {
				return nil, err
			}
			if argInfo != nil {
				info = argInfo
			}
		}
		entry.State().Set(name, info.WithType(p.Type))
	}
	return entry, nil
}

// runCallee computes the fixpoint of the callee from entry and returns the join of the states at its exits
func (fca *FunctionCallAnalyzer) runCallee(callee *lang.Function, entry *Domain) (*Domain, error) {
	ca := &calleeAnalysis{IntervalAnalysis: fca.analysis, callee: callee, entry: entry}
	engine := absint.NewEngine[*Domain](ca, callee, fca.logger)
	if err := engine.RunAnalysis(); err != nil {
		return nil, err
	}
	result := NewBottom()
	for _, node := range callee.Nodes {
		if len(node.Sons) == 0 {
			result.Join(engine.Post(node))
		}
	}
	return result, nil
}

// refinements intersects the interval of each variable passed as argument with the interval of the corresponding
// parameter at the exit of the callee. State variables are not refined since the callee may write them, and
// neither are arguments bound to a parameter the callee writes.
func (fca *FunctionCallAnalyzer) refinements(d *Domain, result *Domain, callee *lang.Function,
	args []lang.Value) (map[string]*Info, error) {
	res := map[string]*Info{}
	for i, p := range callee.Parameters {
		if i >= len(args) {
			break
		}
		arg, ok := args[i].(*lang.Variable)
		if !ok || !fca.vars.IsTracked(arg) || fca.vars.Resolve(arg).Kind == lang.StateVariable {
			continue
		}
		if lang.Writes(callee, p) {
			fca.logger.Tracef("%s writes %s, %s is not refined\n", callee.CanonicalName(), p.Name, arg)
			continue
		}
		paramName, err := fca.vars.CanonicalName(p)
		if err != nil {
			return nil, err
		}
		post := result.Get(paramName)
		if post == nil {
			continue
		}
		argName, err := fca.vars.CanonicalName(arg)
		if err != nil {
			return nil, err
		}
		prior, err := fca.vars.Interval(d, arg)
		if err != nil {
			return nil, err
		}
		res[argName] = prior.Intersect(post)
	}
	return res, nil
}

// assignReturns writes the returned intervals to lv: directly for a single value, or element by element for a
// tuple, to be read by the Unpack instructions of the caller.
func (fca *FunctionCallAnalyzer) assignReturns(d *Domain, lv *lang.Variable, returns []*Info) error {
	if lv == nil || len(returns) == 0 {
		return nil
	}
	name, err := fca.vars.CanonicalName(lv)
	if err != nil {
		return err
	}
	if lv.Kind == lang.TupleVariable || len(returns) > 1 {
		for i, info := range returns {
			d.State().Set(fca.vars.TupleKey(name, i), info)
		}
		return nil
	}
	return fca.analysis.operations.set(d, lv, returns[0])
}

// unconstrained bounds the result of a call that is not analyzed by the return types of the callee, or by
// returnType (or the type of lv) when the callee is unknown
func (fca *FunctionCallAnalyzer) unconstrained(d *Domain, lv *lang.Variable, callee *lang.Function,
	returnType lang.Type) error {
	if lv == nil {
		return nil
	}
	var returns []*Info
	if callee != nil && len(callee.Returns) > 0 {
		for _, r := range callee.Returns {
			returns = append(returns, fca.types.Bounds(r.Type))
		}
	} else {
		t := returnType
		if !fca.types.IsNumeric(t) {
			t = fca.vars.Resolve(lv).Type
		}
		returns = append(returns, fca.types.Bounds(t))
	}
	return fca.assignReturns(d, lv, returns)
}

// calleeAnalysis is the interval analysis of an inlined callee: its entry state is the state of the caller with
// the parameters bound.
type calleeAnalysis struct {
	*IntervalAnalysis
	callee *lang.Function
	entry  *Domain
}

// Transfer starts the callee from the entry state instead of the bounds of its parameters
func (ca *calleeAnalysis) Transfer(node *lang.Node, d *Domain, instr lang.Instruction) error {
	if d.IsBottom() && node == ca.callee.Entry() {
		d.Replace(ca.entry)
	}
	return ca.IntervalAnalysis.transfer(node, d, instr)
}
