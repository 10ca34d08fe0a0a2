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
)

// Bound is an arbitrary precision integer extended with positive and negative infinity. Bounds are immutable:
// operations return new bounds.
type Bound struct {
	infinity int8
	integer  *big.Int
}

var (
	// PosInf is +∞
	PosInf = Bound{infinity: 1}
	// NegInf is -∞
	NegInf = Bound{infinity: -1}

	zero = NewBound(0)
	one  = NewBound(1)
)

// NewBound returns the finite bound n
func NewBound(n int64) Bound {
	return Bound{integer: big.NewInt(n)}
}

// NewBigBound returns the finite bound n. n is copied.
func NewBigBound(n *big.Int) Bound {
	return Bound{integer: new(big.Int).Set(n)}
}

// IsInf returns true if the bound is +∞ or -∞
func (b Bound) IsInf() bool {
	return b.infinity != 0
}

// IsPosInf returns true if the bound is +∞
func (b Bound) IsPosInf() bool { return b.infinity > 0 }

// IsNegInf returns true if the bound is -∞
func (b Bound) IsNegInf() bool { return b.infinity < 0 }

// Int returns a copy of the integer value of a finite bound, or nil for infinite bounds
func (b Bound) Int() *big.Int {
	if b.IsInf() {
		return nil
	}
	return new(big.Int).Set(b.val())
}

// Sign returns -1, 0 or 1
func (b Bound) Sign() int {
	if b.infinity != 0 {
		return int(b.infinity)
	}
	return b.val().Sign()
}

// val returns the integer of a finite bound. The zero Bound is 0.
func (b Bound) val() *big.Int {
	if b.integer == nil {
		return new(big.Int)
	}
	return b.integer
}

// Cmp compares two bounds. Infinities of the same sign are equal.
func (b Bound) Cmp(o Bound) int {
	switch {
	case b.infinity == o.infinity && b.infinity != 0:
		return 0
	case b.IsPosInf() || o.IsNegInf():
		return 1
	case b.IsNegInf() || o.IsPosInf():
		return -1
	}
	return b.val().Cmp(o.val())
}

// Neg returns -b
func (b Bound) Neg() Bound {
	if b.IsInf() {
		return Bound{infinity: -b.infinity}
	}
	return Bound{integer: new(big.Int).Neg(b.val())}
}

// Add returns b + o. ok is false when the sum is undefined (∞ + -∞).
func (b Bound) Add(o Bound) (res Bound, ok bool) {
	switch {
	case b.IsInf() && o.IsInf():
		if b.infinity != o.infinity {
			return Bound{}, false
		}
		return b, true
	case b.IsInf():
		return b, true
	case o.IsInf():
		return o, true
	}
	return Bound{integer: new(big.Int).Add(b.val(), o.val())}, true
}

// Sub returns b - o. ok is false when the difference is undefined (∞ - ∞).
func (b Bound) Sub(o Bound) (Bound, bool) {
	return b.Add(o.Neg())
}

// Mul returns b * o. Zero times an infinity is zero.
func (b Bound) Mul(o Bound) Bound {
	if b.Sign() == 0 || o.Sign() == 0 {
		return zero
	}
	if b.IsInf() || o.IsInf() {
		return Bound{infinity: int8(b.Sign() * o.Sign())}
	}
	return Bound{integer: new(big.Int).Mul(b.val(), o.val())}
}

// Quo returns b / o truncated towards zero. ok is false when o is zero or both bounds are infinite.
func (b Bound) Quo(o Bound) (Bound, bool) {
	switch {
	case o.Sign() == 0:
		return Bound{}, false
	case b.IsInf() && o.IsInf():
		return Bound{}, false
	case b.IsInf():
		return Bound{infinity: int8(b.Sign() * o.Sign())}, true
	case o.IsInf():
		return zero, true
	}
	return Bound{integer: new(big.Int).Quo(b.val(), o.val())}, true
}

// Inc returns b + 1
func (b Bound) Inc() Bound {
	r, _ := b.Add(one)
	return r
}

// Dec returns b - 1
func (b Bound) Dec() Bound {
	r, _ := b.Sub(one)
	return r
}

func (b Bound) String() string {
	switch {
	case b.IsPosInf():
		return "+∞"
	case b.IsNegInf():
		return "-∞"
	}
	return b.val().String()
}

// MarshalText encodes infinities as "+inf" and "-inf"
func (b Bound) MarshalText() ([]byte, error) {
	switch {
	case b.IsPosInf():
		return []byte("+inf"), nil
	case b.IsNegInf():
		return []byte("-inf"), nil
	}
	return []byte(b.val().String()), nil
}

// UnmarshalText is the inverse of MarshalText
func (b *Bound) UnmarshalText(text []byte) error {
	switch string(text) {
	case "+inf", "inf":
		*b = PosInf
		return nil
	case "-inf":
		*b = NegInf
		return nil
	}
	n, ok := new(big.Int).SetString(string(text), 10)
	if !ok {
		return fmt.Errorf("invalid bound %q", text)
	}
	*b = Bound{integer: n}
	return nil
}

// MinBound returns the smallest of the bounds. It panics if called without argument.
func MinBound(bs ...Bound) Bound {
	if len(bs) == 0 {
		panic("MinBound called with no arguments")
	}
	res := bs[0]
	for _, b := range bs[1:] {
		if b.Cmp(res) < 0 {
			res = b
		}
	}
	return res
}

// MaxBound returns the largest of the bounds. It panics if called without argument.
func MaxBound(bs ...Bound) Bound {
	if len(bs) == 0 {
		panic("MaxBound called with no arguments")
	}
	res := bs[0]
	for _, b := range bs[1:] {
		if b.Cmp(res) > 0 {
			res = b
		}
	}
	return res
}
