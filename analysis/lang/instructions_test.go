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

import "testing"

type kindCounter struct {
	counts map[InstrKind]int
}

func (c *kindCounter) count(i Instruction) error {
	c.counts[i.Kind()]++
	return nil
}

func (c *kindCounter) DoAssignment(x *Assignment) error         { return c.count(x) }
func (c *kindCounter) DoBinary(x *Binary) error                 { return c.count(x) }
func (c *kindCounter) DoTypeConversion(x *TypeConversion) error { return c.count(x) }
func (c *kindCounter) DoInternalCall(x *InternalCall) error     { return c.count(x) }
func (c *kindCounter) DoLibraryCall(x *LibraryCall) error       { return c.count(x) }
func (c *kindCounter) DoHighLevelCall(x *HighLevelCall) error   { return c.count(x) }
func (c *kindCounter) DoSolidityCall(x *SolidityCall) error     { return c.count(x) }
func (c *kindCounter) DoReturn(x *Return) error                 { return c.count(x) }
func (c *kindCounter) DoUnpack(x *Unpack) error                 { return c.count(x) }
func (c *kindCounter) DoCondition(x *Condition) error           { return c.count(x) }

func TestInstrSwitch(t *testing.T) {
	prog := mustLoad(t)
	c := &kindCounter{counts: map[InstrKind]int{}}
	for _, name := range []string{"mint", "misc"} {
		IterateInstructions(prog.Contract("Token").Function(name), func(_ *Node, instr Instruction) {
			if err := InstrSwitch(c, instr); err != nil {
				t.Fatal(err)
			}
		})
	}
	expected := map[InstrKind]int{
		KindAssignment:     2,
		KindBinary:         3,
		KindTypeConversion: 1,
		KindInternalCall:   1,
		KindLibraryCall:    1,
		KindHighLevelCall:  1,
		KindSolidityCall:   2,
		KindReturn:         2,
		KindUnpack:         1,
		KindCondition:      1,
	}
	for kind, n := range expected {
		if c.counts[kind] != n {
			t.Errorf("expected %d instructions of kind %d, got %d", n, kind, c.counts[kind])
		}
	}
}

// TestPrintedInstructionsParse checks that the instructions of mint print in the syntax they are loaded from
func TestPrintedInstructionsParse(t *testing.T) {
	prog := mustLoad(t)
	mint := prog.Contract("Token").Function("mint")
	p := &instrParser{prog: prog, fn: mint}
	IterateInstructions(mint, func(node *Node, instr Instruction) {
		parsed, err := p.parse(instr.String())
		if err != nil {
			t.Errorf("%s: could not parse %q: %v", node, instr, err)
			return
		}
		if parsed.Kind() != instr.Kind() || parsed.String() != instr.String() {
			t.Errorf("%q parsed as %q", instr, parsed)
		}
	})
}

func TestOperators(t *testing.T) {
	tests := []struct {
		op, flipped, negated BinaryOp
	}{
		{Less, Gtr, GtrEq},
		{LessEq, GtrEq, Gtr},
		{Gtr, Less, LessEq},
		{GtrEq, LessEq, Less},
		{Eql, Eql, NotEq},
		{NotEq, NotEq, Eql},
		{AndAnd, AndAnd, AndAnd},
	}
	for _, test := range tests {
		if test.op.Flip() != test.flipped {
			t.Errorf("%s flipped is %s, expected %s", test.op, test.op.Flip(), test.flipped)
		}
		if test.op.Negate() != test.negated {
			t.Errorf("%s negated is %s, expected %s", test.op, test.op.Negate(), test.negated)
		}
		if test.op.Negate().Negate() != test.op {
			t.Errorf("negating %s twice does not give it back", test.op)
		}
	}
	if !Less.IsBoolean() || !OrOr.IsBoolean() || Add.IsBoolean() || Pow.IsComparison() {
		t.Errorf("unexpected operator classes")
	}
}

func TestIsRecognizedCondition(t *testing.T) {
	tests := []struct {
		instr    Instruction
		expected bool
	}{
		{&Binary{Op: Less}, true},
		{&Binary{Op: AndAnd}, true},
		{&Binary{Op: Add}, false},
		{&Condition{Value: NewBoolConstant(true)}, true},
		{&SolidityCall{Name: "require(bool)"}, false},
	}
	for _, test := range tests {
		if IsRecognizedCondition(test.instr) != test.expected {
			t.Errorf("IsRecognizedCondition(%T %v) != %v", test.instr, test.instr.Kind(), test.expected)
		}
	}
	if !(&SolidityCall{Name: "assert(bool)"}).IsRequireOrAssert() || !(&SolidityCall{Name: "revert(string)"}).IsRevert() {
		t.Errorf("unexpected classification of built-in calls")
	}
}
