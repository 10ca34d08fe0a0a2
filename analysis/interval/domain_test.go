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
	"testing"

	"github.com/awslabs/ar-sol-tools/analysis/absint"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

func stateOf(vars map[string]*Info) *Domain {
	s := NewState()
	for name, info := range vars {
		s.Set(name, info)
	}
	return NewDomain(s)
}

func TestDomainJoin(t *testing.T) {
	x := stateOf(map[string]*Info{"x": iv(0, 5), "y": iv(1, 1)})
	y := stateOf(map[string]*Info{"x": iv(3, 10), "z": iv(-1, 2)})

	d := NewBottom()
	if !d.Join(x) || d.Variant() != absint.State {
		t.Fatalf("joining a state into bottom must change it, got %s", d)
	}
	if !d.Join(y) {
		t.Fatalf("joining %s into %s must change it", y, x)
	}
	checkInfo(t, d.Get("x"), "x", NewBound(0), NewBound(10))
	checkInfo(t, d.Get("y"), "y", NewBound(1), NewBound(1))
	checkInfo(t, d.Get("z"), "z", NewBound(-1), NewBound(2))
	// the operands are not modified
	checkInfo(t, x.Get("x"), "x", NewBound(0), NewBound(5))
	checkInfo(t, y.Get("x"), "x", NewBound(3), NewBound(10))

	if d.Join(x) || d.Join(y) || d.Join(d.Clone()) || d.Join(NewBottom()) {
		t.Errorf("join is not idempotent")
	}
	if !d.Join(NewTop()) || d.Variant() != absint.Top {
		t.Errorf("top must absorb %s", d)
	}
	if d.Join(x) {
		t.Errorf("joining into top must not change it")
	}
}

func TestJoinIsSound(t *testing.T) {
	operands := []*Info{iv(-3, -1), iv(-2, 2), iv(0, 0), iv(1, 4), Unbounded(int256)}
	for _, a := range operands {
		for _, b := range operands {
			d := stateOf(map[string]*Info{"v": a})
			d.Join(stateOf(map[string]*Info{"v": b}))
			res := d.Get("v")
			if !res.ContainsInterval(a) || !res.ContainsInterval(b) || !res.Equal(a.Union(b)) {
				t.Errorf("%s ⊔ %s = %s", a, b, res)
			}
		}
	}
}

func TestDomainCloneIsDeep(t *testing.T) {
	d := stateOf(map[string]*Info{"x": iv(0, 5)})
	c := d.Clone()
	c.Join(stateOf(map[string]*Info{"x": iv(0, 50)}))
	c.State().Delete("x")
	checkInfo(t, d.Get("x"), "x", NewBound(0), NewBound(5))
}

func TestNarrow(t *testing.T) {
	d := stateOf(map[string]*Info{"x": iv(0, 5)})
	if !d.Narrow("x", iv(2, 3)) {
		t.Fatalf("narrowing to [2, 3] failed")
	}
	checkInfo(t, d.Get("x"), "x", NewBound(2), NewBound(3))
	if d.Narrow("x", iv(2, 3).Intersect(iv(4, 5))) || !d.IsBottom() {
		t.Errorf("an empty interval must make the domain bottom, got %s", d)
	}
	if d.Get("x") != nil {
		t.Errorf("bottom has no interval")
	}
}

func TestStateDeletePrefix(t *testing.T) {
	s := NewState()
	for _, name := range []string{"C.f(uint256).x", "C.f(uint256).return[0]", "C.g().x", "C.total"} {
		s.Set(name, iv(0, 1))
	}
	s.DeletePrefix("C.f(uint256).")
	names := s.Names()
	if len(names) != 2 || names[0] != "C.g().x" || names[1] != "C.total" {
		t.Errorf("unexpected variables left: %v", names)
	}
}

func TestApplyWidening(t *testing.T) {
	prog := loadProgram(t, "branches.yaml")
	literals := lang.Literals(prog.Contract("C").Function("count")) // 0, 1 and 10
	uint8Type, uint256Type, int8Type := lang.NewType("uint8"), lang.NewType("uint256"), lang.NewType("int8")
	u := func(lo, hi int64) *Info { return NewInfo(NewBound(lo), NewBound(hi), uint256Type) }

	tests := []struct {
		name          string
		current, prev *Info
		lo, hi        Bound
	}{
		{"to next literal", u(0, 3), u(0, 2), NewBound(0), NewBound(10)},
		{"on a literal", u(0, 10), u(0, 9), NewBound(0), NewBound(10)},
		{"past the literals", u(0, 11), u(0, 10), NewBound(0), TypeSystem{}.Bounds(uint256Type).Upper},
		{"stable", u(2, 3), u(2, 3), NewBound(2), NewBound(3)},
		{"decreasing", NewInfo(NewBound(-1), NewBound(5), int8Type), NewInfo(NewBound(0), NewBound(5), int8Type),
			NewBound(-128), NewBound(5)},
		{"decreasing to literal", u(5, 20), u(7, 20), NewBound(1), NewBound(20)},
		{"beyond the type", NewInfo(NewBound(0), NewBound(300), uint8Type), NewInfo(NewBound(0), NewBound(3), uint8Type),
			NewBound(0), NewBound(300)},
	}
	a := newTestAnalysis(true)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			current := stateOf(map[string]*Info{"v": test.current, "w": iv(1, 2)})
			prev := stateOf(map[string]*Info{"v": test.prev})
			res := a.ApplyWidening(current, prev, literals)
			checkInfo(t, res.Get("v"), "v", test.lo, test.hi)
			checkInfo(t, res.Get("w"), "w", NewBound(1), NewBound(2))
		})
	}
	if res := a.ApplyWidening(NewBottom(), stateOf(nil), literals); !res.IsBottom() {
		t.Errorf("widening bottom gives %s", res)
	}
}
