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

// Interval arithmetic over closed intervals. Operations whose result is undefined for some pair of bounds
// (e.g. +∞ + -∞) return the unbounded interval. Results are not clamped to the bounds of any type.

// Add returns [a+c, b+d]
func Add(x, y *Info) *Info {
	lo, ok1 := x.Lower.Add(y.Lower)
	hi, ok2 := x.Upper.Add(y.Upper)
	if !ok1 || !ok2 {
		return Unbounded(x.Type)
	}
	return NewInfo(lo, hi, x.Type)
}

// Sub returns [a-d, b-c]
func Sub(x, y *Info) *Info {
	lo, ok1 := x.Lower.Sub(y.Upper)
	hi, ok2 := x.Upper.Sub(y.Lower)
	if !ok1 || !ok2 {
		return Unbounded(x.Type)
	}
	return NewInfo(lo, hi, x.Type)
}

// Mul returns the hull of the four corner products
func Mul(x, y *Info) *Info {
	c := []Bound{
		x.Lower.Mul(y.Lower),
		x.Lower.Mul(y.Upper),
		x.Upper.Mul(y.Lower),
		x.Upper.Mul(y.Upper),
	}
	return NewInfo(MinBound(c...), MaxBound(c...), x.Type)
}

// Div returns an interval containing the truncated quotients x/y for y != 0. The divisor is split into its
// negative and positive parts, and the quotients of the corners of each part are taken. When y contains zero,
// mayDivideByZero is true and the result is extended with +∞ (and -∞ if x contains negative values).
func Div(x, y *Info) (res *Info, mayDivideByZero bool) {
	mayDivideByZero = y.Contains(zero)
	var parts []*Info
	if y.Lower.Sign() < 0 {
		parts = append(parts, NewInfo(y.Lower, MinBound(y.Upper, NewBound(-1)), y.Type))
	}
	if y.Upper.Sign() > 0 {
		parts = append(parts, NewInfo(MaxBound(y.Lower, one), y.Upper, y.Type))
	}
	for _, part := range parts {
		q, ok := divCorners(x, part)
		if !ok {
			return Unbounded(x.Type), mayDivideByZero
		}
		if res == nil {
			res = q
		} else {
			res = res.Union(q)
		}
	}
	if mayDivideByZero {
		if x.Upper.Sign() >= 0 {
			res = extend(res, NewInfo(zero, PosInf, x.Type))
		}
		if x.Lower.Sign() < 0 {
			res = extend(res, NewInfo(NegInf, zero, x.Type))
		}
	}
	if res == nil {
		return Unbounded(x.Type), mayDivideByZero
	}
	res.Type = x.Type
	return res, mayDivideByZero
}

func divCorners(x, y *Info) (*Info, bool) {
	var c []Bound
	for _, n := range []Bound{x.Lower, x.Upper} {
		for _, d := range []Bound{y.Lower, y.Upper} {
			q, ok := n.Quo(d)
			if !ok {
				return nil, false
			}
			c = append(c, q)
		}
	}
	return NewInfo(MinBound(c...), MaxBound(c...), x.Type), true
}

func extend(i *Info, o *Info) *Info {
	if i == nil {
		return o
	}
	return i.Union(o)
}

// Mod returns an interval containing x % y for non-negative operands: [0, min(b, d-1)]. ok is false when the
// operands may be negative or the divisor is not positive, in which case the caller should use type bounds.
// mayDivideByZero is true if y contains zero.
func Mod(x, y *Info) (res *Info, mayDivideByZero bool, ok bool) {
	mayDivideByZero = y.Contains(zero)
	if x.Lower.Sign() < 0 || y.Lower.Sign() < 0 || y.Upper.Sign() <= 0 {
		return nil, mayDivideByZero, false
	}
	hi := x.Upper
	if !y.Upper.IsInf() {
		hi = MinBound(hi, y.Upper.Dec())
	}
	return NewInfo(zero, hi, x.Type), mayDivideByZero, true
}
