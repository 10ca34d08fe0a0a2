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
	"errors"
	"fmt"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// ErrUnresolvableVariable is returned when a variable has no canonical name. It aborts the analysis of the
// function being analyzed.
var ErrUnresolvableVariable = errors.New("unresolvable variable")

// maxReferenceChain bounds the resolution of references pointing to references
const maxReferenceChain = 32

// VariableManager computes the canonical names of variables: state variables are qualified by their contract
// (C.x) and every other variable by the canonical name of its function (C.f(uint256).x).
type VariableManager struct {
	types TypeSystem
}

// NewVariableManager returns a variable manager
func NewVariableManager(types TypeSystem) *VariableManager {
	return &VariableManager{types: types}
}

// Resolve returns the variable a reference points to, following chains of references. Variables that are not
// references, and references with no known target, are returned unchanged.
func (vm *VariableManager) Resolve(v *lang.Variable) *lang.Variable {
	for i := 0; i < maxReferenceChain && v.Kind == lang.ReferenceVariable && v.PointsTo != nil; i++ {
		v = v.PointsTo
	}
	return v
}

// CanonicalName returns the canonical name of v
func (vm *VariableManager) CanonicalName(v *lang.Variable) (string, error) {
	if v == nil || v.Name == "" {
		return "", fmt.Errorf("%w: missing variable", ErrUnresolvableVariable)
	}
	v = vm.Resolve(v)
	if v.Kind == lang.StateVariable {
		if v.Contract == nil {
			return "", fmt.Errorf("%w: state variable %s has no contract", ErrUnresolvableVariable, v.Name)
		}
		return v.Contract.Name + "." + v.Name, nil
	}
	if v.Function == nil {
		return "", fmt.Errorf("%w: %s %s has no function", ErrUnresolvableVariable, v.Kind, v.Name)
	}
	return v.Function.CanonicalName() + "." + v.Name, nil
}

// IsTracked returns true if the interval of v is tracked by the analysis
func (vm *VariableManager) IsTracked(v *lang.Variable) bool {
	return vm.types.IsNumeric(vm.Resolve(v).Type)
}

// Scope returns the prefix of the canonical names of the variables of f
func (vm *VariableManager) Scope(f *lang.Function) string {
	return f.CanonicalName() + "."
}

// ReturnKey is the name under which the i-th value returned by f is captured
func (vm *VariableManager) ReturnKey(f *lang.Function, i int) string {
	return fmt.Sprintf("%sreturn[%d]", vm.Scope(f), i)
}

// TupleKey is the name of the i-th element of the tuple whose canonical name is tuple
func (vm *VariableManager) TupleKey(tuple string, i int) string {
	return fmt.Sprintf("%s[%d]", tuple, i)
}

// Interval returns the interval of v in d: a point for numeric constants, the tracked interval of a variable, or
// the bounds of its type if the variable is not tracked yet. It returns nil for non-numeric values.
func (vm *VariableManager) Interval(d *Domain, v lang.Value) (*Info, error) {
	switch v := v.(type) {
	case *lang.Constant:
		if !v.IsNumeric() {
			return nil, nil
		}
		t := v.Type
		if !vm.types.IsNumeric(t) {
			t = lang.NewType("uint256")
		}
		return Point(v.Value, t), nil
	case *lang.Variable:
		name, err := vm.CanonicalName(v)
		if err != nil {
			return nil, err
		}
		if info := d.Get(name); info != nil {
			return info.Clone(), nil
		}
		t := vm.Resolve(v).Type
		if !vm.types.IsNumeric(t) {
			return nil, nil
		}
		return vm.types.Bounds(t), nil
	}
	return nil, nil
}
