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
package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of the program file
var flagAfterProgram = regexp.MustCompile("expected exactly one program file, got ([2-9]|\\d\\d+) arguments")

// Captures errors in the IR instructions of the program
var malformedProgram = regexp.MustCompile("malformed program")

// Captures errors of variables that cannot be resolved by the interval analysis
var unresolvableVariable = regexp.MustCompile("unresolvable variable")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if flagAfterProgram.MatchString(errMsg) {
		return "all command line flags should be before the path to the program file"
	}
	if regexCouldNotLoad.MatchString(errMsg) {
		if malformedProgram.MatchString(errMsg) {
			return "check the node types, successors and instructions of the function named in the error"
		}
		return "make sure the path leads to a YAML description of the contracts to analyze"
	}
	if unresolvableVariable.MatchString(errMsg) {
		return "reference variables must point to a variable declared in the function or its contract"
	}
	return ""
}
