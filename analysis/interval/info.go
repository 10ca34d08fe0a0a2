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
	"fmt"
	"math/big"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// Info is the closed interval [Lower, Upper] of values a variable may hold. Type is the declared type of the
// variable, when known. An Info with Lower > Upper is empty: it signals a contradiction and is never stored in a
// State.
type Info struct {
	Lower Bound     `json:"lower"`
	Upper Bound     `json:"upper"`
	Type  lang.Type `json:"-"`
}

// NewInfo returns the interval [lower, upper]
func NewInfo(lower, upper Bound, t lang.Type) *Info {
	return &Info{Lower: lower, Upper: upper, Type: t}
}

// Point returns the interval [x, x]
func Point(x *big.Int, t lang.Type) *Info {
	return &Info{Lower: NewBigBound(x), Upper: NewBigBound(x), Type: t}
}

// Unbounded returns [-∞, +∞]
func Unbounded(t lang.Type) *Info {
	return &Info{Lower: NegInf, Upper: PosInf, Type: t}
}

// Clone returns a copy of the interval. Bounds are immutable and shared.
func (i *Info) Clone() *Info {
	c := *i
	return &c
}

// WithType returns a copy of the interval with type t
func (i *Info) WithType(t lang.Type) *Info {
	c := i.Clone()
	c.Type = t
	return c
}

// IsEmpty returns true if Lower > Upper
func (i *Info) IsEmpty() bool {
	return i.Lower.Cmp(i.Upper) > 0
}

// IsPoint returns true if the interval contains exactly one finite value
func (i *Info) IsPoint() bool {
	return !i.Lower.IsInf() && i.Lower.Cmp(i.Upper) == 0
}

// IsFinite returns true if both bounds are finite
func (i *Info) IsFinite() bool {
	return !i.Lower.IsInf() && !i.Upper.IsInf()
}

// Contains returns true if x is in the interval
func (i *Info) Contains(x Bound) bool {
	return i.Lower.Cmp(x) <= 0 && x.Cmp(i.Upper) <= 0
}

// ContainsInterval returns true if o is included in i. The empty interval is included in any interval.
func (i *Info) ContainsInterval(o *Info) bool {
	if o.IsEmpty() {
		return true
	}
	return i.Lower.Cmp(o.Lower) <= 0 && o.Upper.Cmp(i.Upper) <= 0
}

// Equal returns true if both intervals have the same bounds
func (i *Info) Equal(o *Info) bool {
	return i.Lower.Cmp(o.Lower) == 0 && i.Upper.Cmp(o.Upper) == 0
}

// Union returns the smallest interval containing i and o
func (i *Info) Union(o *Info) *Info {
	if i.IsEmpty() {
		return o.Clone()
	}
	if o.IsEmpty() {
		return i.Clone()
	}
	return &Info{Lower: MinBound(i.Lower, o.Lower), Upper: MaxBound(i.Upper, o.Upper), Type: i.Type}
}

// Intersect returns the intersection of i and o. The result may be empty.
func (i *Info) Intersect(o *Info) *Info {
	return &Info{Lower: MaxBound(i.Lower, o.Lower), Upper: MinBound(i.Upper, o.Upper), Type: i.Type}
}

func (i *Info) String() string {
	if i.IsEmpty() {
		return "∅"
	}
	return fmt.Sprintf("[%s, %s]", i.Lower, i.Upper)
}
