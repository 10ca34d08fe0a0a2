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
	"regexp"
	"strconv"

	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// NumericType describes an elementary numeric type
type NumericType struct {
	Signed bool
	// Bits is the width of the type: N in uintN, M in fixedMxN
	Bits int
	// Decimals is N in fixedMxN. It is zero for integer types.
	Decimals int
	Fixed    bool
}

var (
	intTypeRegex   = regexp.MustCompile(`^(u?)int(\d*)$`)
	fixedTypeRegex = regexp.MustCompile(`^(u?)fixed(?:(\d+)x(\d+))?$`)
)

// TypeSystem classifies the elementary types of the IR and computes their natural bounds. It has no state and is
// safe for concurrent use.
type TypeSystem struct{}

// Parse returns the numeric description of t. ok is false if t is not an elementary numeric type.
func (TypeSystem) Parse(t lang.Type) (nt NumericType, ok bool) {
	if m := intTypeRegex.FindStringSubmatch(t.Name); m != nil {
		bits := 256
		if m[2] != "" {
			bits, _ = strconv.Atoi(m[2])
		}
		if bits < 8 || bits > 256 || bits%8 != 0 {
			return nt, false
		}
		return NumericType{Signed: m[1] == "", Bits: bits}, true
	}
	if m := fixedTypeRegex.FindStringSubmatch(t.Name); m != nil {
		bits, decimals := 128, 18
		if m[2] != "" {
			bits, _ = strconv.Atoi(m[2])
			decimals, _ = strconv.Atoi(m[3])
		}
		if bits < 8 || bits > 256 || bits%8 != 0 || decimals > 80 {
			return nt, false
		}
		return NumericType{Signed: m[1] == "", Bits: bits, Decimals: decimals, Fixed: true}, true
	}
	return nt, false
}

// IsNumeric returns true if t is an integer or fixed-point type
func (ts TypeSystem) IsNumeric(t lang.Type) bool {
	_, ok := ts.Parse(t)
	return ok
}

// Bounds returns the natural range of t. For fixed-point types, the bounds are the integer part of the
// representable range. Non-numeric types are unbounded.
func (ts TypeSystem) Bounds(t lang.Type) *Info {
	nt, ok := ts.Parse(t)
	if !ok {
		return Unbounded(t)
	}
	var lo, hi *big.Int
	if nt.Signed {
		lo = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(nt.Bits-1)))
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(nt.Bits-1)), big.NewInt(1))
	} else {
		lo = new(big.Int)
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(nt.Bits)), big.NewInt(1))
	}
	if nt.Fixed && nt.Decimals > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(nt.Decimals)), nil)
		lo.Quo(lo, scale)
		hi.Quo(hi, scale)
	}
	return &Info{Lower: Bound{integer: lo}, Upper: Bound{integer: hi}, Type: t}
}

// Promote returns the type of the result of an arithmetic operation between a and b: the wider of the two.
// When only one of the types is numeric, it is returned.
func (ts TypeSystem) Promote(a, b lang.Type) lang.Type {
	na, okA := ts.Parse(a)
	nb, okB := ts.Parse(b)
	switch {
	case !okA:
		return b
	case !okB:
		return a
	case nb.Bits > na.Bits:
		return b
	case nb.Bits == na.Bits && nb.Signed && !na.Signed:
		return b
	}
	return a
}

// IsNarrower returns true if the bounds of t do not contain the interval i
func (ts TypeSystem) IsNarrower(t lang.Type, i *Info) bool {
	if !ts.IsNumeric(t) {
		return false
	}
	return !ts.Bounds(t).ContainsInterval(i)
}
