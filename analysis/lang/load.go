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
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformedProgram is returned when a program description cannot be turned into IR
var ErrMalformedProgram = errors.New("malformed program")

// ProgramSpec is the YAML description of a program. It mirrors the output of a CFG/IR builder:
//
//	contracts:
//	  - name: C
//	    state:
//	      - {name: total, type: uint256, value: "100"}
//	    functions:
//	      - name: f
//	        params: [{name: x, type: uint8}]
//	        returns: [{type: uint8}]
//	        nodes:
//	          - {id: 0, type: ENTRY_POINT, sons: [1]}
//	          - id: 1
//	            type: EXPRESSION
//	            ir: ["TMP_0 = x > 10", "SOLIDITY_CALL require(bool)(TMP_0)"]
//	            sons: [2]
//	          - {id: 2, type: RETURN, ir: ["RETURN x"]}
type ProgramSpec struct {
	Contracts []ContractSpec `yaml:"contracts"`
}

// ContractSpec describes a contract
type ContractSpec struct {
	Name      string         `yaml:"name"`
	State     []VariableSpec `yaml:"state"`
	Functions []FunctionSpec `yaml:"functions"`
}

// VariableSpec describes a variable declaration
type VariableSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Value    string `yaml:"value"`
	PointsTo string `yaml:"points-to"`
}

// FunctionSpec describes a function and its control-flow graph
type FunctionSpec struct {
	Name       string         `yaml:"name"`
	Visibility string         `yaml:"visibility"`
	Params     []VariableSpec `yaml:"params"`
	Returns    []VariableSpec `yaml:"returns"`
	Vars       []VariableSpec `yaml:"vars"`
	Nodes      []NodeSpec     `yaml:"nodes"`
}

// NodeSpec describes a node of a control-flow graph
type NodeSpec struct {
	ID   int      `yaml:"id"`
	Type string   `yaml:"type"`
	IR   []string `yaml:"ir"`
	Sons []int    `yaml:"sons"`
}

// LoadProgram reads and parses the YAML program description in filename
func LoadProgram(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	return ParseProgram(b)
}

// ParseProgram parses a YAML program description
func ParseProgram(b []byte) (*Program, error) {
	var spec ProgramSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal program: %w", err)
	}
	return BuildProgram(spec)
}

// BuildProgram resolves a program description into IR. Contracts, variables and function signatures are declared
// first so that calls can refer to functions declared later in the description.
func BuildProgram(spec ProgramSpec) (*Program, error) {
	prog := &Program{}
	bodies := map[*Function]FunctionSpec{}
	for _, cs := range spec.Contracts {
		c := NewContract(cs.Name)
		for _, vs := range cs.State {
			init, err := parseInitial(vs)
			if err != nil {
				return nil, fmt.Errorf("state variable %s.%s: %w", cs.Name, vs.Name, err)
			}
			c.AddStateVariable(vs.Name, NewType(vs.Type), init)
		}
		for _, fs := range cs.Functions {
			f := NewFunction(c, fs.Name)
			if fs.Visibility != "" {
				f.Visibility = Visibility(fs.Visibility)
			}
			for _, p := range fs.Params {
				f.AddVariable(p.Name, ParameterVariable, NewType(p.Type))
			}
			for i, r := range fs.Returns {
				name := r.Name
				if name == "" {
					name = fmt.Sprintf("__ret%d", i)
				}
				f.AddVariable(name, ReturnVariable, NewType(r.Type))
			}
			bodies[f] = fs
		}
		prog.Contracts = append(prog.Contracts, c)
	}

	for _, f := range prog.Functions() {
		if err := buildBody(prog, f, bodies[f]); err != nil {
			return nil, fmt.Errorf("function %s: %w", f.CanonicalName(), err)
		}
		ComputeDominators(f)
	}
	return prog, nil
}

func parseInitial(vs VariableSpec) (*Constant, error) {
	if vs.Value == "" {
		return nil, nil
	}
	c, ok := parseConstant(vs.Value)
	if !ok {
		return nil, fmt.Errorf("%w: invalid literal %q", ErrMalformedProgram, vs.Value)
	}
	c.Type = NewType(vs.Type)
	return c, nil
}

func buildBody(prog *Program, f *Function, fs FunctionSpec) error {
	// locals first so that references can point to them
	for _, vs := range fs.Vars {
		kind := LocalVariable
		switch {
		case strings.HasPrefix(vs.Name, "TMP_"):
			kind = TemporaryVariable
		case strings.HasPrefix(vs.Name, "REF_"):
			kind = ReferenceVariable
		case strings.HasPrefix(vs.Name, "TUPLE_"):
			kind = TupleVariable
		}
		f.AddVariable(vs.Name, kind, NewType(vs.Type))
	}
	for _, vs := range fs.Vars {
		if vs.PointsTo == "" {
			continue
		}
		base := f.Lookup(vs.PointsTo)
		if base == nil {
			return fmt.Errorf("%w: %s points to unknown variable %s", ErrMalformedProgram, vs.Name, vs.PointsTo)
		}
		f.Variable(vs.Name).PointsTo = base
	}

	for i, ns := range fs.Nodes {
		if ns.ID != i {
			return fmt.Errorf("%w: node ids must be 0..n-1 in order, got %d at position %d",
				ErrMalformedProgram, ns.ID, i)
		}
		t, ok := ParseNodeType(ns.Type)
		if !ok {
			return fmt.Errorf("%w: unknown node type %q", ErrMalformedProgram, ns.Type)
		}
		f.AddNode(t)
	}
	for i, ns := range fs.Nodes {
		node := f.Nodes[i]
		for _, s := range ns.Sons {
			if s < 0 || s >= len(f.Nodes) {
				return fmt.Errorf("%w: node %d has unknown son %d", ErrMalformedProgram, i, s)
			}
			node.AddSon(f.Nodes[s])
		}
		if (node.Type == If || node.Type == IfLoop) && len(node.Sons) != 2 {
			return fmt.Errorf("%w: %s node %d must have two sons", ErrMalformedProgram, node.Type, i)
		}
		p := &instrParser{prog: prog, fn: f}
		for _, text := range ns.IR {
			instr, err := p.parse(strings.TrimSpace(text))
			if err != nil {
				return fmt.Errorf("node %d: %q: %w", i, text, err)
			}
			node.AddInstruction(instr)
		}
	}
	return nil
}

// instrParser parses the textual form of instructions, as printed by their String methods
type instrParser struct {
	prog *Program
	fn   *Function
}

func (p *instrParser) parse(text string) (Instruction, error) {
	switch {
	case text == "RETURN":
		return &Return{}, nil
	case strings.HasPrefix(text, "RETURN "):
		vals, err := p.values(strings.TrimPrefix(text, "RETURN "))
		if err != nil {
			return nil, err
		}
		return &Return{Values: vals}, nil
	case strings.HasPrefix(text, "CONDITION "):
		v, err := p.value(strings.TrimPrefix(text, "CONDITION "), Type{})
		if err != nil {
			return nil, err
		}
		return &Condition{Value: v}, nil
	}

	if lhs, rhs, ok := strings.Cut(text, ":="); ok {
		lv, err := p.lvalue(strings.TrimSpace(lhs), nil)
		if err != nil {
			return nil, err
		}
		rv, err := p.value(strings.TrimSpace(rhs), lv.Type)
		if err != nil {
			return nil, err
		}
		return &Assignment{LV: lv, RV: rv}, nil
	}

	lhsName := ""
	rhs := text
	if lhs, r, ok := strings.Cut(text, " = "); ok && !strings.ContainsAny(lhs, "( ") {
		lhsName = strings.TrimSpace(lhs)
		rhs = strings.TrimSpace(r)
	}

	keyword, rest, _ := strings.Cut(rhs, " ")
	switch keyword {
	case "INTERNAL_CALL", "LIBRARY_CALL", "HIGH_LEVEL_CALL", "SOLIDITY_CALL":
		return p.call(keyword, lhsName, rest)
	case "UNPACK":
		return p.unpack(lhsName, rest)
	case "CONVERT":
		return p.convert(lhsName, rest)
	}
	if lhsName == "" {
		return nil, fmt.Errorf("%w: cannot parse instruction", ErrMalformedProgram)
	}

	for _, op := range binaryOps {
		if l, r, ok := strings.Cut(rhs, " "+string(op)+" "); ok {
			return p.binary(lhsName, op, strings.TrimSpace(l), strings.TrimSpace(r))
		}
	}
	lv, err := p.lvalue(lhsName, nil)
	if err != nil {
		return nil, err
	}
	rv, err := p.value(rhs, lv.Type)
	if err != nil {
		return nil, err
	}
	return &Assignment{LV: lv, RV: rv}, nil
}

func (p *instrParser) binary(lhs string, op BinaryOp, l, r string) (Instruction, error) {
	left, err := p.value(l, Type{})
	if err != nil {
		return nil, err
	}
	right, err := p.value(r, left.ValueType())
	if err != nil {
		return nil, err
	}
	if c, ok := left.(*Constant); ok && c.IsNumeric() {
		c.Type = right.ValueType()
	}
	inferred := left.ValueType()
	if op.IsBoolean() {
		inferred = BoolType
	}
	lv, err := p.lvalue(lhs, &inferred)
	if err != nil {
		return nil, err
	}
	return &Binary{LV: lv, Op: op, Left: left, Right: right}, nil
}

func (p *instrParser) unpack(lhs, rest string) (Instruction, error) {
	tupleName, idx, ok := strings.Cut(rest, " index: ")
	if !ok {
		return nil, fmt.Errorf("%w: expected UNPACK <tuple> index: <i>", ErrMalformedProgram)
	}
	tuple := p.fn.Lookup(strings.TrimSpace(tupleName))
	if tuple == nil {
		return nil, fmt.Errorf("%w: unknown tuple %s", ErrMalformedProgram, tupleName)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return nil, fmt.Errorf("%w: bad index %q", ErrMalformedProgram, idx)
	}
	lv, err := p.lvalue(lhs, nil)
	if err != nil {
		return nil, err
	}
	return &Unpack{LV: lv, Tuple: tuple, Index: i}, nil
}

func (p *instrParser) convert(lhs, rest string) (Instruction, error) {
	val, typ, ok := strings.Cut(rest, " to ")
	if !ok {
		return nil, fmt.Errorf("%w: expected CONVERT <value> to <type>", ErrMalformedProgram)
	}
	t := NewType(strings.TrimSpace(typ))
	v, err := p.value(strings.TrimSpace(val), Type{})
	if err != nil {
		return nil, err
	}
	lv, err := p.lvalue(lhs, &t)
	if err != nil {
		return nil, err
	}
	return &TypeConversion{LV: lv, Value: v, Type: t}, nil
}

// call parses the part after the call keyword: target(args), where target is f, Lib.f, dest.f or require(bool)
func (p *instrParser) call(keyword, lhs, rest string) (Instruction, error) {
	rest = strings.TrimSpace(rest)
	if !strings.HasSuffix(rest, ")") {
		return nil, fmt.Errorf("%w: expected call arguments", ErrMalformedProgram)
	}
	open := strings.LastIndex(rest, "(")
	if keyword == "SOLIDITY_CALL" {
		// the built-in name contains its signature: require(bool)(TMP_0)
		if i := strings.Index(rest, ")("); i >= 0 {
			open = i + 1
		}
	}
	target := rest[:open]
	args, err := p.values(rest[open+1 : len(rest)-1])
	if err != nil {
		return nil, err
	}
	call := Call{Args: args}

	switch keyword {
	case "SOLIDITY_CALL":
		var lv *Variable
		if lhs != "" {
			t := NewType("uint256")
			if lv, err = p.lvalue(lhs, &t); err != nil {
				return nil, err
			}
		}
		call.LV = lv
		ret := Type{}
		if lv != nil {
			ret = lv.Type
		}
		return &SolidityCall{Call: call, Name: target, ReturnType: ret}, nil
	case "INTERNAL_CALL":
		callee := p.resolveInternal(target)
		if callee == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, target)
		}
		if call.LV, err = p.callResult(lhs, callee); err != nil {
			return nil, err
		}
		return &InternalCall{Call: call, Function: callee}, nil
	case "LIBRARY_CALL":
		lib, name, ok := strings.Cut(target, ".")
		if !ok {
			return nil, fmt.Errorf("%w: expected Library.function", ErrMalformedProgram)
		}
		var callee *Function
		if c := p.prog.Contract(lib); c != nil {
			callee = c.Function(name)
		}
		if call.LV, err = p.callResult(lhs, callee); err != nil {
			return nil, err
		}
		return &LibraryCall{Call: call, Library: lib, FunctionName: name, Function: callee}, nil
	default:
		dest, name, ok := strings.Cut(target, ".")
		if !ok {
			return nil, fmt.Errorf("%w: expected destination.function", ErrMalformedProgram)
		}
		d, err := p.value(dest, Type{})
		if err != nil {
			return nil, err
		}
		if call.LV, err = p.callResult(lhs, nil); err != nil {
			return nil, err
		}
		ret := Type{}
		if call.LV != nil {
			ret = call.LV.Type
		}
		return &HighLevelCall{Call: call, Destination: d, FunctionName: name, ReturnType: ret}, nil
	}
}

func (p *instrParser) resolveInternal(target string) *Function {
	if strings.Contains(target, "(") {
		if f, err := p.prog.FindFunction(target); err == nil {
			return f
		}
		if p.fn.Contract != nil {
			if f, err := p.prog.FindFunction(p.fn.Contract.Name + "." + target); err == nil {
				return f
			}
		}
		return nil
	}
	if p.fn.Contract != nil {
		return p.fn.Contract.Function(target)
	}
	return nil
}

func (p *instrParser) callResult(lhs string, callee *Function) (*Variable, error) {
	if lhs == "" {
		return nil, nil
	}
	var inferred *Type
	if callee != nil && len(callee.Returns) == 1 {
		inferred = &callee.Returns[0].Type
	}
	return p.lvalue(lhs, inferred)
}

// lvalue resolves a written variable. Unknown temporaries (TMP_, REF_, TUPLE_) are declared on first write with the
// inferred type, if any.
func (p *instrParser) lvalue(name string, inferred *Type) (*Variable, error) {
	if v := p.fn.Lookup(name); v != nil {
		return v, nil
	}
	kind := LocalVariable
	switch {
	case strings.HasPrefix(name, "TMP_"):
		kind = TemporaryVariable
	case strings.HasPrefix(name, "TUPLE_"):
		kind = TupleVariable
	case strings.HasPrefix(name, "REF_"):
		kind = ReferenceVariable
	default:
		return nil, fmt.Errorf("%w: unknown variable %s", ErrMalformedProgram, name)
	}
	t := Type{}
	if inferred != nil {
		t = *inferred
	}
	return p.fn.AddVariable(name, kind, t), nil
}

func (p *instrParser) values(text string) ([]Value, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var vals []Value
	for _, part := range strings.Split(text, ",") {
		v, err := p.value(strings.TrimSpace(part), Type{})
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// value resolves an operand: a literal or a variable visible from the function. Integer literals get the type hint
// if it is given, otherwise uint256 (int256 for negative literals).
func (p *instrParser) value(text string, hint Type) (Value, error) {
	if c, ok := parseConstant(text); ok {
		if c.IsNumeric() {
			switch {
			case !hint.IsZero() && hint != BoolType:
				c.Type = hint
			case c.Value.Sign() < 0:
				c.Type = NewType("int256")
			default:
				c.Type = NewType("uint256")
			}
		}
		return c, nil
	}
	if v := p.fn.Lookup(text); v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: unknown variable %s", ErrMalformedProgram, text)
}

func parseConstant(text string) (*Constant, bool) {
	switch text {
	case "true":
		return NewBoolConstant(true), true
	case "false":
		return NewBoolConstant(false), true
	}
	x, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return nil, false
	}
	return &Constant{Value: x}, true
}
