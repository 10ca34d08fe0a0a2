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

// OperationHandler computes the intervals written by assignments, arithmetic, type conversions, returns and
// tuple projections.
type OperationHandler struct {
	types       TypeSystem
	vars        *VariableManager
	constraints *ConstraintManager
	findings    *Findings
	logger      *config.LogGroup
}

// NewOperationHandler returns an operation handler
func NewOperationHandler(types TypeSystem, vars *VariableManager, constraints *ConstraintManager,
	findings *Findings, logger *config.LogGroup) *OperationHandler {
	return &OperationHandler{
		types:       types,
		vars:        vars,
		constraints: constraints,
		findings:    findings,
		logger:      logger,
	}
}

// set overwrites the interval of lv and drops any pending constraint it held or that reads it. Non-numeric
// variables are not tracked.
func (h *OperationHandler) set(d *Domain, lv *lang.Variable, info *Info) error {
	name, err := h.vars.CanonicalName(lv)
	if err != nil {
		return err
	}
	h.constraints.Drop(name)
	h.constraints.Invalidate(name)
	t := h.vars.Resolve(lv).Type
	if info == nil || !h.types.IsNumeric(t) {
		d.State().Delete(name)
		return nil
	}
	d.State().Set(name, info.WithType(t))
	return nil
}

// HandleAssignment handles lv := rv
func (h *OperationHandler) HandleAssignment(d *Domain, a *lang.Assignment) error {
	lvName, err := h.vars.CanonicalName(a.LV)
	if err != nil {
		return err
	}
	if rv, ok := a.RV.(*lang.Variable); ok {
		rvName, err := h.vars.CanonicalName(rv)
		if err != nil {
			return err
		}
		h.constraints.Invalidate(lvName)
		if h.constraints.Rekey(rvName, lvName) {
			return nil
		}
	}
	src, err := h.vars.Interval(d, a.RV)
	if err != nil {
		return err
	}
	lvType := h.vars.Resolve(a.LV).Type
	if src != nil && src.IsFinite() && h.types.IsNarrower(lvType, src) {
		bounds := h.types.Bounds(lvType)
		narrowed := src.Intersect(bounds)
		if narrowed.IsEmpty() {
			narrowed = bounds
		}
		h.logger.Tracef("%s narrowed from %s to %s\n", a, src, narrowed)
		src = narrowed
	}
	return h.set(d, a.LV, src)
}

// HandleBinary handles lv = left op right. Comparisons and logical operators become pending constraints.
func (h *OperationHandler) HandleBinary(d *Domain, node *lang.Node, b *lang.Binary) error {
	name, err := h.vars.CanonicalName(b.LV)
	if err != nil {
		return err
	}
	if b.Op.IsBoolean() {
		d.State().Delete(name)
		h.constraints.Invalidate(name)
		h.constraints.AddPending(name, b)
		return nil
	}
	left, err := h.vars.Interval(d, b.Left)
	if err != nil {
		return err
	}
	right, err := h.vars.Interval(d, b.Right)
	if err != nil {
		return err
	}
	resultType := h.resultType(b)
	if left == nil || right == nil {
		return h.set(d, b.LV, h.types.Bounds(resultType))
	}

	var res *Info
	switch b.Op {
	case lang.Add:
		res = Add(left, right)
	case lang.Sub:
		res = Sub(left, right)
	case lang.Mul:
		res = Mul(left, right)
	case lang.Div:
		var mayDivideByZero bool
		res, mayDivideByZero = Div(left, right)
		if mayDivideByZero {
			h.reportDivisionByZero(node, b, right)
		}
	case lang.Mod:
		r, mayDivideByZero, ok := Mod(left, right)
		if mayDivideByZero {
			h.reportDivisionByZero(node, b, right)
		}
		if ok {
			res = r
		} else {
			res = h.types.Bounds(resultType)
		}
	default:
		h.logger.Debugf("operator %s not supported, %s is bounded by its type\n", b.Op, b.LV)
		res = h.types.Bounds(resultType)
	}
	return h.set(d, b.LV, res)
}

func (h *OperationHandler) reportDivisionByZero(node *lang.Node, b *lang.Binary, divisor *Info) {
	h.logger.Warnf("%s: divisor of %q may be zero (%s)\n", node.Function.CanonicalName(), b, divisor)
	h.findings.AddDivisionByZero(node, b, divisor)
}

// resultType is the declared type of the left-hand side, or the promotion of the operand types for temporaries
// without a numeric type
func (h *OperationHandler) resultType(b *lang.Binary) lang.Type {
	if t := h.vars.Resolve(b.LV).Type; h.types.IsNumeric(t) {
		return t
	}
	return h.types.Promote(b.Left.ValueType(), b.Right.ValueType())
}

// HandleTypeConversion handles lv = T(v): the interval of v is kept if it fits in T, otherwise lv is bounded by T
func (h *OperationHandler) HandleTypeConversion(d *Domain, c *lang.TypeConversion) error {
	if !h.types.IsNumeric(c.Type) {
		return h.set(d, c.LV, nil)
	}
	src, err := h.vars.Interval(d, c.Value)
	if err != nil {
		return err
	}
	bounds := h.types.Bounds(c.Type)
	if src == nil || !bounds.ContainsInterval(src) {
		return h.set(d, c.LV, bounds)
	}
	return h.set(d, c.LV, src.WithType(c.Type))
}

// HandleReturn captures the returned values of fn under their return keys. Values returned at different nodes
// are joined.
func (h *OperationHandler) HandleReturn(d *Domain, fn *lang.Function, r *lang.Return) error {
	for i, v := range r.Values {
		info, err := h.vars.Interval(d, v)
		if err != nil {
			return err
		}
		if info == nil {
			continue
		}
		key := h.vars.ReturnKey(fn, i)
		if prev := d.Get(key); prev != nil {
			info = prev.Union(info)
		}
		d.State().Set(key, info)
	}
	return nil
}

// HandleUnpack handles lv = tuple[index]
func (h *OperationHandler) HandleUnpack(d *Domain, u *lang.Unpack) error {
	tuple, err := h.vars.CanonicalName(u.Tuple)
	if err != nil {
		return err
	}
	if info := d.Get(h.vars.TupleKey(tuple, u.Index)); info != nil {
		return h.set(d, u.LV, info)
	}
	return h.set(d, u.LV, h.types.Bounds(h.vars.Resolve(u.LV).Type))
}
