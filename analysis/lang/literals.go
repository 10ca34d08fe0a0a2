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
	"math/big"

	"golang.org/x/exp/slices"
)

// LiteralSet is the set of distinct numeric literals visible from a function
type LiteralSet struct {
	values map[string]*big.Int
}

// Len returns the number of distinct literals
func (s LiteralSet) Len() int { return len(s.values) }

// Contains returns true if x is in the set
func (s LiteralSet) Contains(x *big.Int) bool {
	_, ok := s.values[x.String()]
	return ok
}

// Sorted returns the literals in increasing order
func (s LiteralSet) Sorted() []*big.Int {
	res := make([]*big.Int, 0, len(s.values))
	for _, v := range s.values {
		res = append(res, v)
	}
	slices.SortFunc(res, func(a, b *big.Int) bool { return a.Cmp(b) < 0 })
	return res
}

func (s LiteralSet) add(c *Constant) {
	if c == nil || !c.IsNumeric() {
		return
	}
	if _, ok := s.values[c.Value.String()]; !ok {
		s.values[c.Value.String()] = new(big.Int).Set(c.Value)
	}
}

// Literals extracts the distinct numeric literals of a function: the constants read by the instructions of its
// body, and the initial values of the state variables of its contract. The extraction is static and
// flow-insensitive.
func Literals(function *Function) LiteralSet {
	set := LiteralSet{values: map[string]*big.Int{}}
	IterateValues(function, func(v Value) {
		if c, ok := v.(*Constant); ok {
			set.add(c)
		}
	})
	for _, p := range function.Parameters {
		set.add(p.Initial)
	}
	if function.Contract != nil {
		for _, sv := range function.Contract.StateVariables {
			set.add(sv.Initial)
		}
	}
	return set
}
