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
	"fmt"
	"math/big"
	"strings"
)

// A Type is the declared type of a variable or constant. Only the name is kept; the type system of the interval
// analysis interprets elementary type names such as uint8, int256 or ufixed128x18.
type Type struct {
	Name string
}

// NewType returns a Type with the given name. The aliases uint, int, fixed and ufixed are expanded to their
// canonical Solidity widths.
func NewType(name string) Type {
	switch name {
	case "uint":
		return Type{Name: "uint256"}
	case "int":
		return Type{Name: "int256"}
	case "fixed":
		return Type{Name: "fixed128x18"}
	case "ufixed":
		return Type{Name: "ufixed128x18"}
	}
	return Type{Name: name}
}

func (t Type) String() string { return t.Name }

// IsZero returns true if the type is unknown
func (t Type) IsZero() bool { return t.Name == "" }

// BoolType is the type of conditions and comparison results
var BoolType = Type{Name: "bool"}

// VariableKind distinguishes where a variable is declared
type VariableKind int

const (
	// LocalVariable is a variable declared in a function body
	LocalVariable VariableKind = iota
	// ParameterVariable is a function parameter
	ParameterVariable
	// ReturnVariable is a named return variable
	ReturnVariable
	// StateVariable is a contract storage variable
	StateVariable
	// TemporaryVariable is introduced by the IR builder (TMP_n)
	TemporaryVariable
	// ReferenceVariable is a reference into storage or memory (REF_n). It points to a base variable.
	ReferenceVariable
	// TupleVariable holds the result of a call returning several values (TUPLE_n)
	TupleVariable
)

func (k VariableKind) String() string {
	switch k {
	case LocalVariable:
		return "local"
	case ParameterVariable:
		return "parameter"
	case ReturnVariable:
		return "return"
	case StateVariable:
		return "state"
	case TemporaryVariable:
		return "temporary"
	case ReferenceVariable:
		return "reference"
	case TupleVariable:
		return "tuple"
	default:
		return "unknown"
	}
}

// A Value is an operand of an instruction: either a *Variable or a *Constant.
type Value interface {
	fmt.Stringer
	ValueType() Type
	isValue()
}

// Variable is a named storage location of the IR.
type Variable struct {
	Name string
	Kind VariableKind
	Type Type

	// Function is the declaring function for locals, parameters, returns, temporaries, references and tuples.
	Function *Function

	// Contract is the declaring contract for state variables.
	Contract *Contract

	// PointsTo is the best-effort base variable of a reference variable. nil if unknown.
	PointsTo *Variable

	// Initial is the initial value of a state variable, if declared with a literal.
	Initial *Constant
}

func (v *Variable) String() string { return v.Name }

// ValueType returns the declared type of the variable
func (v *Variable) ValueType() Type { return v.Type }

func (v *Variable) isValue() {}

// Constant is a literal operand. Integer literals are kept with arbitrary precision.
type Constant struct {
	Value *big.Int
	Bool  *bool
	Type  Type
}

// NewIntConstant returns an integer constant of type typ
func NewIntConstant(x *big.Int, typ Type) *Constant {
	return &Constant{Value: new(big.Int).Set(x), Type: typ}
}

// NewBoolConstant returns a boolean constant
func NewBoolConstant(b bool) *Constant {
	return &Constant{Bool: &b, Type: BoolType}
}

// IsNumeric returns true if the constant is an integer literal
func (c *Constant) IsNumeric() bool { return c.Value != nil }

func (c *Constant) String() string {
	if c.Bool != nil {
		return fmt.Sprintf("%t", *c.Bool)
	}
	if c.Value != nil {
		return c.Value.String()
	}
	return "<nil>"
}

// ValueType returns the type of the literal
func (c *Constant) ValueType() Type { return c.Type }

func (c *Constant) isValue() {}

// Visibility of a function
type Visibility string

const (
	// Public functions can be called internally and externally
	Public Visibility = "public"
	// External functions can only be called externally
	External Visibility = "external"
	// Internal functions can be called from the contract and derived contracts
	Internal Visibility = "internal"
	// Private functions can only be called from the contract
	Private Visibility = "private"
)

// Function is a contract function with its control-flow graph. Nodes[0] is the entry point.
type Function struct {
	Name       string
	Contract   *Contract
	Visibility Visibility
	Parameters []*Variable
	Returns    []*Variable
	Nodes      []*Node

	// locals maps the names of every variable declared in the function (including temporaries) to the variable
	locals map[string]*Variable
}

// NewFunction returns an empty function attached to contract c. The function is added to the contract.
func NewFunction(c *Contract, name string) *Function {
	f := &Function{Name: name, Contract: c, Visibility: Public, locals: map[string]*Variable{}}
	if c != nil {
		c.Functions = append(c.Functions, f)
	}
	return f
}

// CanonicalName returns the contract-qualified signature of the function, e.g. C.f(uint256,bool)
func (f *Function) CanonicalName() string {
	types := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		types[i] = p.Type.Name
	}
	sig := fmt.Sprintf("%s(%s)", f.Name, strings.Join(types, ","))
	if f.Contract != nil {
		return f.Contract.Name + "." + sig
	}
	return sig
}

func (f *Function) String() string { return f.CanonicalName() }

// Entry returns the entry point of the function, or nil if the function has no body
func (f *Function) Entry() *Node {
	if len(f.Nodes) == 0 {
		return nil
	}
	return f.Nodes[0]
}

// HasBody returns true if the function has a control-flow graph
func (f *Function) HasBody() bool { return len(f.Nodes) > 0 }

// Variable returns the variable local to the function with the given name, or nil
func (f *Function) Variable(name string) *Variable {
	return f.locals[name]
}

// AddVariable declares a variable local to the function. Parameters and returns are also appended to their list.
func (f *Function) AddVariable(name string, kind VariableKind, typ Type) *Variable {
	v := &Variable{Name: name, Kind: kind, Type: typ, Function: f}
	f.locals[name] = v
	switch kind {
	case ParameterVariable:
		f.Parameters = append(f.Parameters, v)
	case ReturnVariable:
		f.Returns = append(f.Returns, v)
	}
	return v
}

// Lookup resolves a name first in the function scope, then in the contract state
func (f *Function) Lookup(name string) *Variable {
	if v := f.locals[name]; v != nil {
		return v
	}
	if f.Contract != nil {
		return f.Contract.StateVariable(name)
	}
	return nil
}

// AddNode appends a new node of type t to the function and returns it
func (f *Function) AddNode(t NodeType) *Node {
	n := &Node{ID: len(f.Nodes), Type: t, Function: f}
	f.Nodes = append(f.Nodes, n)
	return n
}

// Contract groups state variables and functions
type Contract struct {
	Name           string
	StateVariables []*Variable
	Functions      []*Function
}

// NewContract returns an empty contract
func NewContract(name string) *Contract {
	return &Contract{Name: name}
}

// AddStateVariable declares a state variable in the contract
func (c *Contract) AddStateVariable(name string, typ Type, initial *Constant) *Variable {
	v := &Variable{Name: name, Kind: StateVariable, Type: typ, Contract: c, Initial: initial}
	c.StateVariables = append(c.StateVariables, v)
	return v
}

// StateVariable returns the state variable with the given name, or nil
func (c *Contract) StateVariable(name string) *Variable {
	for _, v := range c.StateVariables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Function returns the first function of the contract with the given name, or nil
func (c *Contract) Function(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Program is the set of contracts under analysis
type Program struct {
	Contracts []*Contract
}

// Contract returns the contract with the given name, or nil
func (p *Program) Contract(name string) *Contract {
	for _, c := range p.Contracts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Functions returns all the functions of the program, in declaration order
func (p *Program) Functions() []*Function {
	var fns []*Function
	for _, c := range p.Contracts {
		fns = append(fns, c.Functions...)
	}
	return fns
}

// FindFunction returns the function whose canonical name is name
func (p *Program) FindFunction(name string) (*Function, error) {
	for _, f := range p.Functions() {
		if f.CanonicalName() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
}
