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

// Package lang provides the intermediate representation of contracts consumed by the analyses: contracts,
// functions, their control-flow graphs and the closed set of IR instructions. It provides an interface to
// implement visitors for the IR instructions.
package lang

import (
	"fmt"
	"strings"
)

// BinaryOp is the operator of a Binary instruction
type BinaryOp string

// Binary operators
const (
	Add    BinaryOp = "+"
	Sub    BinaryOp = "-"
	Mul    BinaryOp = "*"
	Div    BinaryOp = "/"
	Mod    BinaryOp = "%"
	Pow    BinaryOp = "**"
	Shl    BinaryOp = "<<"
	Shr    BinaryOp = ">>"
	And    BinaryOp = "&"
	Or     BinaryOp = "|"
	Xor    BinaryOp = "^"
	Less   BinaryOp = "<"
	LessEq BinaryOp = "<="
	Gtr    BinaryOp = ">"
	GtrEq  BinaryOp = ">="
	Eql    BinaryOp = "=="
	NotEq  BinaryOp = "!="
	AndAnd BinaryOp = "&&"
	OrOr   BinaryOp = "||"
)

// binaryOps lists operators by decreasing length so that parsing picks the longest match first
var binaryOps = []BinaryOp{Pow, Shl, Shr, LessEq, GtrEq, Eql, NotEq, AndAnd, OrOr,
	Add, Sub, Mul, Div, Mod, And, Or, Xor, Less, Gtr}

// IsComparison returns true for <, <=, >, >=, == and !=
func (op BinaryOp) IsComparison() bool {
	switch op {
	case Less, LessEq, Gtr, GtrEq, Eql, NotEq:
		return true
	}
	return false
}

// IsLogical returns true for && and ||
func (op BinaryOp) IsLogical() bool {
	return op == AndAnd || op == OrOr
}

// IsBoolean returns true if the operator produces a boolean
func (op BinaryOp) IsBoolean() bool {
	return op.IsComparison() || op.IsLogical()
}

// Flip flips a comparison operator so that the operands can be swapped. For example, '<' becomes '>'.
func (op BinaryOp) Flip() BinaryOp {
	switch op {
	case Less:
		return Gtr
	case Gtr:
		return Less
	case LessEq:
		return GtrEq
	case GtrEq:
		return LessEq
	default:
		return op
	}
}

// Negate negates a comparison operator. For example, '<' becomes '>='. Logical operators are returned unchanged.
func (op BinaryOp) Negate() BinaryOp {
	switch op {
	case Less:
		return GtrEq
	case GtrEq:
		return Less
	case Gtr:
		return LessEq
	case LessEq:
		return Gtr
	case Eql:
		return NotEq
	case NotEq:
		return Eql
	default:
		return op
	}
}

// InstrKind is the kind tag of an instruction
type InstrKind int

// Instruction kinds
const (
	KindAssignment InstrKind = iota
	KindBinary
	KindTypeConversion
	KindInternalCall
	KindLibraryCall
	KindHighLevelCall
	KindSolidityCall
	KindReturn
	KindUnpack
	KindCondition
)

// An Instruction is an IR operation. The set of instructions is closed: every implementation is declared in this
// package and handled by InstrSwitch.
type Instruction interface {
	fmt.Stringer
	// Kind returns the kind tag of the instruction
	Kind() InstrKind
	// Reads returns the operands read by the instruction
	Reads() []Value
	// LValue returns the variable written by the instruction, or nil
	LValue() *Variable
	isInstruction()
}

// Assignment is LValue := RValue
type Assignment struct {
	LV *Variable
	RV Value
}

func (a *Assignment) Kind() InstrKind   { return KindAssignment }
func (a *Assignment) Reads() []Value    { return []Value{a.RV} }
func (a *Assignment) LValue() *Variable { return a.LV }
func (a *Assignment) String() string    { return fmt.Sprintf("%s := %s", a.LV, a.RV) }
func (a *Assignment) isInstruction()    {}

// Binary is LValue = Left Op Right. It covers arithmetic, comparisons and logical operators.
type Binary struct {
	LV    *Variable
	Op    BinaryOp
	Left  Value
	Right Value
}

func (b *Binary) Kind() InstrKind   { return KindBinary }
func (b *Binary) Reads() []Value    { return []Value{b.Left, b.Right} }
func (b *Binary) LValue() *Variable { return b.LV }
func (b *Binary) String() string    { return fmt.Sprintf("%s = %s %s %s", b.LV, b.Left, b.Op, b.Right) }
func (b *Binary) isInstruction()    {}

// TypeConversion is LValue = Type(Value)
type TypeConversion struct {
	LV    *Variable
	Value Value
	Type  Type
}

func (c *TypeConversion) Kind() InstrKind   { return KindTypeConversion }
func (c *TypeConversion) Reads() []Value    { return []Value{c.Value} }
func (c *TypeConversion) LValue() *Variable { return c.LV }
func (c *TypeConversion) String() string    { return fmt.Sprintf("%s = %s(%s)", c.LV, c.Type, c.Value) }
func (c *TypeConversion) isInstruction()    {}

// Call contains the fields shared by all call instructions. LV is nil when the result is discarded.
type Call struct {
	LV   *Variable
	Args []Value
}

// Reads returns the arguments of the call
func (c *Call) Reads() []Value { return c.Args }

// LValue returns the variable receiving the result of the call
func (c *Call) LValue() *Variable { return c.LV }

func (c *Call) argString() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return strings.Join(args, ", ")
}

func (c *Call) lhsString() string {
	if c.LV == nil {
		return ""
	}
	return c.LV.Name + " = "
}

// InternalCall calls a function of the same contract (or an inherited one)
type InternalCall struct {
	Call
	Function *Function
}

func (c *InternalCall) Kind() InstrKind { return KindInternalCall }
func (c *InternalCall) String() string {
	return fmt.Sprintf("%sINTERNAL_CALL %s(%s)", c.lhsString(), c.Function.Name, c.argString())
}
func (c *InternalCall) isInstruction() {}

// LibraryCall calls a library function. Function is nil if the library body is not available.
type LibraryCall struct {
	Call
	Library      string
	FunctionName string
	Function     *Function
}

func (c *LibraryCall) Kind() InstrKind { return KindLibraryCall }
func (c *LibraryCall) String() string {
	return fmt.Sprintf("%sLIBRARY_CALL %s.%s(%s)", c.lhsString(), c.Library, c.FunctionName, c.argString())
}
func (c *LibraryCall) isInstruction() {}

// HighLevelCall is an external call to Destination.FunctionName. Function is the resolved target, if known.
type HighLevelCall struct {
	Call
	Destination  Value
	FunctionName string
	Function     *Function
	ReturnType   Type
}

func (c *HighLevelCall) Kind() InstrKind { return KindHighLevelCall }
func (c *HighLevelCall) Reads() []Value  { return append([]Value{c.Destination}, c.Args...) }
func (c *HighLevelCall) String() string {
	return fmt.Sprintf("%sHIGH_LEVEL_CALL %s.%s(%s)", c.lhsString(), c.Destination, c.FunctionName, c.argString())
}
func (c *HighLevelCall) isInstruction() {}

// SolidityCall calls a built-in function such as require(bool), assert(bool) or keccak256(bytes)
type SolidityCall struct {
	Call
	Name       string
	ReturnType Type
}

// IsRequireOrAssert returns true if the call is require or assert, with or without a message
func (c *SolidityCall) IsRequireOrAssert() bool {
	return strings.HasPrefix(c.Name, "require(") || strings.HasPrefix(c.Name, "assert(") ||
		c.Name == "require" || c.Name == "assert"
}

// IsRevert returns true for revert() and revert(string)
func (c *SolidityCall) IsRevert() bool {
	return strings.HasPrefix(c.Name, "revert")
}

func (c *SolidityCall) Kind() InstrKind { return KindSolidityCall }
func (c *SolidityCall) String() string {
	return fmt.Sprintf("%sSOLIDITY_CALL %s(%s)", c.lhsString(), c.Name, c.argString())
}
func (c *SolidityCall) isInstruction() {}

// Return returns Values from the function
type Return struct {
	Values []Value
}

func (r *Return) Kind() InstrKind   { return KindReturn }
func (r *Return) Reads() []Value    { return r.Values }
func (r *Return) LValue() *Variable { return nil }
func (r *Return) String() string {
	vals := make([]string, len(r.Values))
	for i, v := range r.Values {
		vals[i] = v.String()
	}
	return "RETURN " + strings.Join(vals, ", ")
}
func (r *Return) isInstruction() {}

// Unpack is LValue = Tuple[Index]
type Unpack struct {
	LV    *Variable
	Tuple *Variable
	Index int
}

func (u *Unpack) Kind() InstrKind   { return KindUnpack }
func (u *Unpack) Reads() []Value    { return []Value{u.Tuple} }
func (u *Unpack) LValue() *Variable { return u.LV }
func (u *Unpack) String() string    { return fmt.Sprintf("%s = UNPACK %s index: %d", u.LV, u.Tuple, u.Index) }
func (u *Unpack) isInstruction()    {}

// Condition is the test of an If or IfLoop node
type Condition struct {
	Value Value
}

func (c *Condition) Kind() InstrKind   { return KindCondition }
func (c *Condition) Reads() []Value    { return []Value{c.Value} }
func (c *Condition) LValue() *Variable { return nil }
func (c *Condition) String() string    { return fmt.Sprintf("CONDITION %s", c.Value) }
func (c *Condition) isInstruction()    {}

// An InstrOp must implement methods for ALL possible IR instructions
type InstrOp interface {
	DoAssignment(*Assignment) error
	DoBinary(*Binary) error
	DoTypeConversion(*TypeConversion) error
	DoInternalCall(*InternalCall) error
	DoLibraryCall(*LibraryCall) error
	DoHighLevelCall(*HighLevelCall) error
	DoSolidityCall(*SolidityCall) error
	DoReturn(*Return) error
	DoUnpack(*Unpack) error
	DoCondition(*Condition) error
}

// InstrSwitch is mainly a map from the different instructions to the methods of the visitor.
func InstrSwitch(visitor InstrOp, instr Instruction) error {
	switch instr := instr.(type) {
	case *Assignment:
		return visitor.DoAssignment(instr)
	case *Binary:
		return visitor.DoBinary(instr)
	case *TypeConversion:
		return visitor.DoTypeConversion(instr)
	case *InternalCall:
		return visitor.DoInternalCall(instr)
	case *LibraryCall:
		return visitor.DoLibraryCall(instr)
	case *HighLevelCall:
		return visitor.DoHighLevelCall(instr)
	case *SolidityCall:
		return visitor.DoSolidityCall(instr)
	case *Return:
		return visitor.DoReturn(instr)
	case *Unpack:
		return visitor.DoUnpack(instr)
	case *Condition:
		return visitor.DoCondition(instr)
	default:
		panic(instr)
	}
}

// IsRecognizedCondition returns true if the instruction can be used to split the state at a conditional node: a
// comparison, a logical operator or a Condition.
func IsRecognizedCondition(instr Instruction) bool {
	switch instr := instr.(type) {
	case *Binary:
		return instr.Op.IsBoolean()
	case *Condition:
		return true
	}
	return false
}
