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
package analysis

import (
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// Result holds general statistics about a program
type Result struct {
	NumberOfContracts         uint
	NumberOfFunctions         uint
	NumberOfNonemptyFunctions uint
	NumberOfNodes             uint
	NumberOfInstructions      uint
	NumberOfLoops             uint
	// MaxLiterals is the largest number of distinct literals of a function, which bounds the number of iterations
	// of its loops
	MaxLiterals uint
}

// ProgramStatistics returns a Result with general statistics about the functions of the program
func ProgramStatistics(program *lang.Program) Result {
	result := Result{NumberOfContracts: uint(len(program.Contracts))}
	for _, f := range program.Functions() {
		result.NumberOfFunctions++
		if !f.HasBody() {
			continue
		}
		result.NumberOfNonemptyFunctions++
		for _, node := range f.Nodes {
			result.NumberOfNodes++
			result.NumberOfInstructions += uint(len(node.Instructions))
			if node.Type == lang.IfLoop {
				result.NumberOfLoops++
			}
		}
		if n := uint(lang.Literals(f).Len()); n > result.MaxLiterals {
			result.MaxLiterals = n
		}
	}
	return result
}
