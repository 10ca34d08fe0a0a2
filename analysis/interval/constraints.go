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
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// ConstraintManager narrows intervals on conditions. Comparisons and logical operators are not evaluated when they
// are computed: they are kept as pending constraints, keyed by the canonical name of the variable receiving their
// result, until that variable is used as the condition of a require, an assert or a branch.
type ConstraintManager struct {
	vars    *VariableManager
	logger  *config.LogGroup
	pending map[string]*lang.Binary
}

// NewConstraintManager returns a constraint manager with no pending constraint
func NewConstraintManager(vars *VariableManager, logger *config.LogGroup) *ConstraintManager {
	return &ConstraintManager{vars: vars, logger: logger, pending: map[string]*lang.Binary{}}
}

// AddPending records that the variable name holds the result of b
func (cm *ConstraintManager) AddPending(name string, b *lang.Binary) {
	cm.pending[name] = b
}

// Pending returns the pending constraint held by name, if any
func (cm *ConstraintManager) Pending(name string) (*lang.Binary, bool) {
	b, ok := cm.pending[name]
	return b, ok
}

// Rekey moves the pending constraint of from to the variable to. Returns false if from has no pending constraint.
func (cm *ConstraintManager) Rekey(from, to string) bool {
	b, ok := cm.pending[from]
	if !ok {
		return false
	}
	delete(cm.pending, from)
	cm.pending[to] = b
	return true
}

// Drop removes the pending constraint of name
func (cm *ConstraintManager) Drop(name string) {
	delete(cm.pending, name)
}

// Invalidate drops the pending constraints that read the variable name. It is called when name is written.
func (cm *ConstraintManager) Invalidate(name string) {
	for key, b := range cm.pending {
		if cm.reads(b.Left, name) || cm.reads(b.Right, name) {
			cm.logger.Tracef("constraint of %s dropped, %s was written\n", key, name)
			delete(cm.pending, key)
		}
	}
}

func (cm *ConstraintManager) reads(v lang.Value, name string) bool {
	x, ok := v.(*lang.Variable)
	if !ok {
		return false
	}
	n, err := cm.vars.CanonicalName(x)
	return err == nil && n == name
}

// Release consumes the pending constraints read by the branch condition cond, without narrowing
func (cm *ConstraintManager) Release(cond lang.Instruction) {
	r := resolution{cm: cm, consume: true, visiting: map[string]bool{}}
	switch cond := cond.(type) {
	case *lang.Binary:
		r.releaseAll(cond)
	case *lang.Condition:
		r.releaseValue(cond.Value)
	}
}

// ApplyConstraintFromCondition narrows d with cond, which must hold. It is used for the arguments of require
// and assert: the pending constraints resolved are consumed.
func (cm *ConstraintManager) ApplyConstraintFromCondition(cond lang.Value, d *Domain) error {
	r := resolution{cm: cm, consume: true, visiting: map[string]bool{}}
	return r.value(d, cond, true)
}

// ApplyBranch narrows d on the branch of cond that is taken. Pending constraints are left in place until Release
// is called for cond. Unresolvable variables leave d unchanged.
func (cm *ConstraintManager) ApplyBranch(cond lang.Instruction, d *Domain, taken bool) *Domain {
	r := resolution{cm: cm, consume: false, visiting: map[string]bool{}}
	var err error
	switch cond := cond.(type) {
	case *lang.Binary:
		err = r.binary(d, cond, taken)
	case *lang.Condition:
		err = r.value(d, cond.Value, taken)
	}
	if err != nil {
		cm.logger.Debugf("condition %s not applied: %v\n", cond, err)
	}
	return d
}

// resolution is the resolution of one condition
type resolution struct {
	cm      *ConstraintManager
	consume bool
	// visiting guards against pending constraints that refer to themselves, e.g. x = x && y in a loop
	visiting map[string]bool
}

// value narrows d with the condition v == taken
func (r resolution) value(d *Domain, v lang.Value, taken bool) error {
	if !d.IsState() {
		return nil
	}
	switch v := v.(type) {
	case *lang.Constant:
		if v.Bool != nil && *v.Bool != taken {
			r.cm.logger.Tracef("constant condition %v is never %v\n", *v.Bool, taken)
			d.SetBottom()
		}
		return nil
	case *lang.Variable:
		name, err := r.cm.vars.CanonicalName(v)
		if err != nil {
			return err
		}
		b, ok := r.cm.pending[name]
		if !ok || r.visiting[name] {
			return nil
		}
		if r.consume {
			delete(r.cm.pending, name)
		}
		r.visiting[name] = true
		defer delete(r.visiting, name)
		return r.binary(d, b, taken)
	}
	return nil
}

// binary narrows d with the condition (b.Left b.Op b.Right) == taken
func (r resolution) binary(d *Domain, b *lang.Binary, taken bool) error {
	switch {
	case b.Op.IsComparison():
		op := b.Op
		if !taken {
			op = op.Negate()
		}
		return r.comparison(d, op, b.Left, b.Right)
	case b.Op == lang.AndAnd && taken, b.Op == lang.OrOr && !taken:
		// a && b holds, or a || b does not: both operands are narrowed
		if err := r.value(d, b.Left, taken); err != nil {
			return err
		}
		return r.value(d, b.Right, taken)
	case b.Op.IsLogical():
		// disjunctions are not split
		r.release(b.Left)
		r.release(b.Right)
	}
	return nil
}

// release consumes the pending constraint of v without narrowing
func (r resolution) release(v lang.Value) {
	if !r.consume {
		return
	}
	if x, ok := v.(*lang.Variable); ok {
		if name, err := r.cm.vars.CanonicalName(x); err == nil {
			delete(r.cm.pending, name)
		}
	}
}

// releaseValue consumes the pending constraint of v and the ones it reads
func (r resolution) releaseValue(v lang.Value) {
	x, ok := v.(*lang.Variable)
	if !ok {
		return
	}
	name, err := r.cm.vars.CanonicalName(x)
	if err != nil || r.visiting[name] {
		return
	}
	b, ok := r.cm.pending[name]
	if !ok {
		return
	}
	delete(r.cm.pending, name)
	r.visiting[name] = true
	r.releaseAll(b)
}

func (r resolution) releaseAll(b *lang.Binary) {
	r.releaseValue(b.Left)
	r.releaseValue(b.Right)
}

// comparison narrows d with left op right
func (r resolution) comparison(d *Domain, op lang.BinaryOp, left, right lang.Value) error {
	lc, leftIsConst := left.(*lang.Constant)
	rc, rightIsConst := right.(*lang.Constant)
	switch {
	case leftIsConst && rightIsConst:
		return r.constants(d, op, lc, rc)
	case rightIsConst && rc.Bool != nil:
		// x == true, x != false
		return r.value(d, left, *rc.Bool == (op == lang.Eql))
	case leftIsConst && lc.Bool != nil:
		return r.value(d, right, *lc.Bool == (op == lang.Eql))
	case rightIsConst:
		return r.variableConstant(d, left.(*lang.Variable), op, rc)
	case leftIsConst:
		return r.variableConstant(d, right.(*lang.Variable), op.Flip(), lc)
	}
	return r.variables(d, left.(*lang.Variable), op, right.(*lang.Variable))
}

func (r resolution) constants(d *Domain, op lang.BinaryOp, lc, rc *lang.Constant) error {
	if !lc.IsNumeric() || !rc.IsNumeric() {
		return nil
	}
	if !compare(lc.Value.Cmp(rc.Value), op) {
		r.cm.logger.Tracef("comparison %s %s %s is always false\n", lc, op, rc)
		d.SetBottom()
	}
	return nil
}

// variableConstant narrows x with x op c
func (r resolution) variableConstant(d *Domain, x *lang.Variable, op lang.BinaryOp, c *lang.Constant) error {
	if !c.IsNumeric() || !r.cm.vars.IsTracked(x) {
		return nil
	}
	name, err := r.cm.vars.CanonicalName(x)
	if err != nil {
		return err
	}
	cur, err := r.cm.vars.Interval(d, x)
	if err != nil || cur == nil {
		return err
	}
	k := NewBigBound(c.Value)
	res := narrowWithBound(cur, op, k)
	if !d.Narrow(name, res) {
		r.cm.logger.Tracef("contradiction: %s %s %s with %s = %s\n", x, op, c, x, cur)
	}
	return nil
}

func narrowWithBound(cur *Info, op lang.BinaryOp, k Bound) *Info {
	res := cur.Clone()
	switch op {
	case lang.GtrEq:
		res.Lower = MaxBound(res.Lower, k)
	case lang.Gtr:
		res.Lower = MaxBound(res.Lower, k.Inc())
	case lang.LessEq:
		res.Upper = MinBound(res.Upper, k)
	case lang.Less:
		res.Upper = MinBound(res.Upper, k.Dec())
	case lang.Eql:
		if cur.Contains(k) {
			res.Lower, res.Upper = k, k
		} else {
			res.Lower, res.Upper = PosInf, NegInf
		}
	case lang.NotEq:
		if res.Lower.Cmp(k) == 0 {
			res.Lower = res.Lower.Inc()
		}
		if res.Upper.Cmp(k) == 0 {
			res.Upper = res.Upper.Dec()
		}
	}
	return res
}

// variables narrows both x and y with x op y
func (r resolution) variables(d *Domain, x *lang.Variable, op lang.BinaryOp, y *lang.Variable) error {
	if !r.cm.vars.IsTracked(x) || !r.cm.vars.IsTracked(y) {
		return nil
	}
	switch op {
	case lang.Gtr, lang.GtrEq:
		x, y, op = y, x, op.Flip()
	}
	xName, err := r.cm.vars.CanonicalName(x)
	if err != nil {
		return err
	}
	yName, err := r.cm.vars.CanonicalName(y)
	if err != nil {
		return err
	}
	xi, err := r.cm.vars.Interval(d, x)
	if err != nil {
		return err
	}
	yi, err := r.cm.vars.Interval(d, y)
	if err != nil {
		return err
	}
	nx, ny := xi.Clone(), yi.Clone()
	switch op {
	case lang.Less:
		if !xi.Lower.IsInf() {
			ny.Lower = MaxBound(ny.Lower, xi.Lower.Inc())
		}
		if !yi.Upper.IsInf() {
			nx.Upper = MinBound(nx.Upper, yi.Upper.Dec())
		}
	case lang.LessEq:
		ny.Lower = MaxBound(ny.Lower, xi.Lower)
		nx.Upper = MinBound(nx.Upper, yi.Upper)
	case lang.Eql:
		nx = xi.Intersect(yi)
		ny = yi.Intersect(xi)
	case lang.NotEq:
		if yi.IsPoint() {
			nx = narrowWithBound(xi, lang.NotEq, yi.Lower)
		}
		if xi.IsPoint() {
			ny = narrowWithBound(yi, lang.NotEq, xi.Lower)
		}
	}
	if !d.Narrow(xName, nx) || !d.Narrow(yName, ny) {
		r.cm.logger.Tracef("contradiction: %s %s %s with %s and %s\n", x, op, y, xi, yi)
	}
	return nil
}

// compare returns true if a comparison result c (as returned by Cmp) satisfies op
func compare(c int, op lang.BinaryOp) bool {
	switch op {
	case lang.Less:
		return c < 0
	case lang.LessEq:
		return c <= 0
	case lang.Gtr:
		return c > 0
	case lang.GtrEq:
		return c >= 0
	case lang.Eql:
		return c == 0
	case lang.NotEq:
		return c != 0
	}
	return true
}
