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
	"math/big"
	"testing"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

var int256 = lang.NewType("int256")

func iv(lo, hi int64) *Info {
	return NewInfo(NewBound(lo), NewBound(hi), int256)
}

func TestIntervalOperations(t *testing.T) {
	tests := []struct {
		name     string
		res      *Info
		expected *Info
	}{
		{"add", Add(iv(1, 2), iv(10, 20)), iv(11, 22)},
		{"add inf", Add(NewInfo(NewBound(0), PosInf, int256), iv(-1, 1)), NewInfo(NewBound(-1), PosInf, int256)},
		{"add unbounded", Add(Unbounded(int256), iv(0, 0)), Unbounded(int256)},
		{"sub", Sub(iv(5, 10), iv(1, 3)), iv(2, 9)},
		{"sub unbounded", Sub(NewInfo(NewBound(0), PosInf, int256), NewInfo(NewBound(0), PosInf, int256)),
			Unbounded(int256)},
		{"mul", Mul(iv(-2, 3), iv(4, 5)), iv(-10, 15)},
		{"mul signs", Mul(iv(-3, -2), iv(-5, 4)), iv(-12, 15)},
		{"mul zero inf", Mul(iv(0, 0), Unbounded(int256)), iv(0, 0)},
	}
	for _, test := range tests {
		if !test.res.Equal(test.expected) {
			t.Errorf("%s: expected %s, got %s", test.name, test.expected, test.res)
		}
	}
}

func TestDiv(t *testing.T) {
	tests := []struct {
		name            string
		x, y            *Info
		expected        *Info
		mayDivideByZero bool
	}{
		{"positive", iv(10, 20), iv(2, 5), iv(2, 10), false},
		{"negative divisor", iv(10, 20), iv(-5, -2), iv(-10, -2), false},
		{"truncation", iv(-7, 7), iv(2, 2), iv(-3, 3), false},
		{"divisor across zero", iv(10, 20), iv(-2, 2), NewInfo(NewBound(-20), PosInf, int256), true},
		{"zero divisor", iv(5, 5), iv(0, 0), NewInfo(NewBound(0), PosInf, int256), true},
		{"negative by zero", iv(-5, -1), iv(0, 0), NewInfo(NegInf, NewBound(0), int256), true},
		{"divisor from zero", iv(-4, 8), iv(0, 4), Unbounded(int256), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, mayDivideByZero := Div(test.x, test.y)
			if mayDivideByZero != test.mayDivideByZero {
				t.Errorf("mayDivideByZero = %v", mayDivideByZero)
			}
			if !res.Equal(test.expected) {
				t.Errorf("%s / %s: expected %s, got %s", test.x, test.y, test.expected, res)
			}
		})
	}
}

func TestMod(t *testing.T) {
	res, mayDivideByZero, ok := Mod(iv(0, 100), iv(1, 10))
	if !ok || mayDivideByZero || !res.Equal(iv(0, 9)) {
		t.Errorf("[0, 100] %% [1, 10] = %s (ok=%v, zero=%v)", res, ok, mayDivideByZero)
	}
	res, _, ok = Mod(iv(0, 3), iv(5, 10))
	if !ok || !res.Equal(iv(0, 3)) {
		t.Errorf("[0, 3] %% [5, 10] = %s", res)
	}
	if _, mayDivideByZero, ok = Mod(iv(0, 3), iv(0, 10)); !ok || !mayDivideByZero {
		t.Errorf("expected a possible division by zero")
	}
	if _, _, ok = Mod(iv(-3, 3), iv(1, 10)); ok {
		t.Errorf("negative operands are not supported")
	}
}

// TestArithmeticIsSound checks that the result of each operation contains the result of the operation on every
// pair of concrete values of the operands
func TestArithmeticIsSound(t *testing.T) {
	operands := []*Info{iv(-3, -1), iv(-2, 2), iv(0, 0), iv(0, 5), iv(1, 4), iv(3, 7)}
	ops := []struct {
		name     string
		abstract func(x, y *Info) *Info
		concrete func(a, b int64) (int64, bool)
	}{
		{"+", Add, func(a, b int64) (int64, bool) { return a + b, true }},
		{"-", Sub, func(a, b int64) (int64, bool) { return a - b, true }},
		{"*", Mul, func(a, b int64) (int64, bool) { return a * b, true }},
		{"/", func(x, y *Info) *Info { r, _ := Div(x, y); return r },
			func(a, b int64) (int64, bool) {
				if b == 0 {
					return 0, false
				}
				return a / b, true
			}},
		{"%", func(x, y *Info) *Info {
			if r, _, ok := Mod(x, y); ok {
				return r
			}
			return Unbounded(int256)
		}, func(a, b int64) (int64, bool) {
			if b == 0 {
				return 0, false
			}
			return a % b, true
		}},
	}
	for _, op := range ops {
		for _, x := range operands {
			for _, y := range operands {
				res := op.abstract(x, y)
				for a := x.Lower.Int().Int64(); a <= x.Upper.Int().Int64(); a++ {
					for b := y.Lower.Int().Int64(); b <= y.Upper.Int().Int64(); b++ {
						c, ok := op.concrete(a, b)
						if ok && !res.Contains(NewBigBound(big.NewInt(c))) {
							t.Errorf("%s %s %s = %s does not contain %d %s %d = %d", x, op.name, y, res, a, op.name, b, c)
						}
					}
				}
			}
		}
	}
}
