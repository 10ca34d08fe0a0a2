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
// Package funcutil contains generic helpers over slices and maps.
package funcutil

import (
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// MapInPlace iterates over all elements in the slice and call the function on that element to update it.
func MapInPlace[T any](a []T, f func(T) T) {
	for i, x := range a {
		a[i] = f(x)
	}
}

// Map returns a new slice b such for any i <= len(a), b[i] = f(a[i])
func Map[T any, S any](a []T, f func(T) S) []S {
	b := make([]S, 0, len(a))
	for _, x := range a {
		b = append(b, f(x))
	}
	return b
}

// elt is a helper struct to ensure that MapParallel maintains element order.
type elt[T any] struct {
	idx int // index in original slice
	x   T
}

// MapParallel is a parallel version of Map using numRoutines goroutines. The order of the results is the order
// of a.
func MapParallel[T any, S any](a []T, f func(T) S, numRoutines int) []S {
	in := make(chan elt[T])
	go func() {
		defer close(in)
		for i, x := range a {
			in <- elt[T]{i, x}
		}
	}()

	out := make(chan elt[S])
	wg := &sync.WaitGroup{}
	if numRoutines <= 0 {
		numRoutines = 1
	}

	wg.Add(numRoutines)
	for i := 0; i < numRoutines; i++ {
		go func() {
			defer wg.Done()
			for x := range in {
				out <- elt[S]{x.idx, f(x.x)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	res := make([]S, len(a))
	for x := range out {
		res[x.idx] = x.x
	}
	return res
}

// Exists returns true when there exists some x in slice a such that f(x), otherwise false.
func Exists[T any](a []T, f func(T) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}

// SetToOrderedSlice converts a set represented as a map from elements to booleans into a slice.
// Sorts the result in increasing order
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	var s []T
	for r, b := range set {
		if b {
			s = append(s, r)
		}
	}
	slices.Sort(s)
	return s
}
