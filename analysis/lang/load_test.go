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
	"embed"
	"errors"
	"testing"
)

//go:embed testdata/*.yaml
var testdata embed.FS

func loadTestProgram(t *testing.T, name string) (*Program, error) {
	t.Helper()
	b, err := testdata.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("could not read %s: %v", name, err)
	}
	return ParseProgram(b)
}

func mustLoad(t *testing.T) *Program {
	t.Helper()
	prog, err := loadTestProgram(t, "program.yaml")
	if err != nil {
		t.Fatalf("could not load program: %v", err)
	}
	return prog
}

func TestLoadProgram(t *testing.T) {
	prog := mustLoad(t)
	token := prog.Contract("Token")
	if token == nil {
		t.Fatalf("contract Token not found")
	}
	if len(token.StateVariables) != 3 || token.StateVariable("total").Initial.Value.Int64() != 1000 {
		t.Errorf("unexpected state variables %v", token.StateVariables)
	}
	if n := len(prog.Functions()); n != 4 {
		t.Errorf("expected 4 functions, got %d", n)
	}

	for _, name := range []string{"Token.mint(uint256)", "Token.add(uint256,uint256)", "Token.misc(int16)",
		"Token.external(address)"} {
		if _, err := prog.FindFunction(name); err != nil {
			t.Errorf("could not find %s: %v", name, err)
		}
	}
	if _, err := prog.FindFunction("Token.mint(uint8)"); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("expected ErrUnknownFunction, got %v", err)
	}

	mint := token.Function("mint")
	if len(mint.Nodes) != 6 || mint.Entry().Type != EntryPoint {
		t.Fatalf("unexpected nodes in mint: %v", mint.Nodes)
	}
	if !mint.Nodes[2].IsConditional() || mint.Nodes[2].Sons[0] != mint.Nodes[3] || mint.Nodes[4].Type != Throw {
		t.Errorf("unexpected branches at %s", mint.Nodes[2])
	}
	if len(mint.Nodes[5].Fathers) != 1 || mint.Nodes[5].Fathers[0] != mint.Nodes[3] {
		t.Errorf("unexpected fathers of %s: %v", mint.Nodes[5], mint.Nodes[5].Fathers)
	}
	if len(mint.Returns) != 1 || mint.Returns[0].Name != "ok" || mint.Returns[0].Type != BoolType {
		t.Errorf("unexpected returns %v", mint.Returns)
	}
	ref := mint.Variable("REF_0")
	if ref == nil || ref.Kind != ReferenceVariable || ref.PointsTo != token.StateVariable("balances") {
		t.Errorf("REF_0 should point to balances, got %+v", ref)
	}
	if tmp := mint.Variable("TMP_0"); tmp == nil || tmp.Kind != TemporaryVariable || tmp.Type != BoolType {
		t.Errorf("TMP_0 should be a boolean temporary, got %+v", tmp)
	}

	add := token.Function("add")
	if add.Visibility != Private || add.Returns[0].Name != "__ret0" {
		t.Errorf("unexpected declaration of %s", add)
	}
	if token.Function("external").HasBody() {
		t.Errorf("external has no body")
	}
}

func TestLoadInstructions(t *testing.T) {
	prog := mustLoad(t)
	misc := prog.Contract("Token").Function("misc")
	instrs := misc.Nodes[1].Instructions
	if len(instrs) != 5 {
		t.Fatalf("expected 5 instructions, got %v", instrs)
	}
	conv, ok := instrs[0].(*TypeConversion)
	if !ok || conv.Type.Name != "uint8" || conv.LV.Name != "y" {
		t.Errorf("unexpected conversion %v", instrs[0])
	}
	lib, ok := instrs[1].(*LibraryCall)
	if !ok || lib.Library != "SafeMath" || lib.FunctionName != "divmod" || lib.Function != nil || len(lib.Args) != 2 {
		t.Errorf("unexpected library call %v", instrs[1])
	} else if lib.LV.Kind != TupleVariable {
		t.Errorf("the result of divmod should be a tuple, got %s", lib.LV.Kind)
	}
	if u, ok := instrs[2].(*Unpack); !ok || u.Index != 1 || u.Tuple.Name != "TUPLE_0" {
		t.Errorf("unexpected unpack %v", instrs[2])
	}
	hl, ok := instrs[3].(*HighLevelCall)
	if !ok || hl.FunctionName != "balanceOf" || hl.Destination.(*Variable).Kind != StateVariable {
		t.Errorf("unexpected external call %v", instrs[3])
	}
	b, ok := instrs[4].(*Binary)
	if !ok || b.Op != Pow || b.Left.(*Constant).Value.Int64() != -3 || b.Left.ValueType().Name != "int256" {
		t.Errorf("unexpected binary %v", instrs[4])
	}
}

func TestLoadMalformedPrograms(t *testing.T) {
	for _, name := range []string{"bad_son.yaml", "bad_instruction.yaml", "bad_if.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := loadTestProgram(t, name)
			if !errors.Is(err, ErrMalformedProgram) {
				t.Errorf("expected ErrMalformedProgram, got %v", err)
			}
		})
	}
	if _, err := ParseProgram([]byte("contracts: {")); err == nil {
		t.Errorf("expected a yaml error")
	}
	if _, err := LoadProgram("testdata/does-not-exist.yaml"); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
