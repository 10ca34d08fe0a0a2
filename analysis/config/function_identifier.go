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

package config

import "regexp"

// A FunctionIdentifier identifies functions by the name of their contract and their own name or signature.
// The strings are seen as regexes if they can be compiled to regexes, otherwise they are matched exactly. An empty
// field matches anything.
type FunctionIdentifier struct {
	Contract string `yaml:"contract"`
	Function string `yaml:"function"`
	// This will not be part of the yaml config
	computedRegexs *functionIdentifierRegex
}

type functionIdentifierRegex struct {
	contractRegex *regexp.Regexp
	functionRegex *regexp.Regexp
}

// CompileRegexes compiles the strings in the function identifier into regexes. It compiles all identifiers into
// regexes or none.
func CompileRegexes(fid FunctionIdentifier) FunctionIdentifier {
	contractRegex, err := regexp.Compile(fid.Contract)
	if err != nil {
		return fid
	}
	functionRegex, err := regexp.Compile(fid.Function)
	if err != nil {
		return fid
	}
	fid.computedRegexs = &functionIdentifierRegex{contractRegex, functionRegex}
	return fid
}

// Matches returns true if the contract and function names match the non-empty fields of the identifier.
// function is matched both as a plain name and as a signature such as f(uint256).
func (fid FunctionIdentifier) Matches(contract string, function string, signature string) bool {
	if fid.computedRegexs != nil {
		return (fid.Contract == "" || fid.computedRegexs.contractRegex.MatchString(contract)) &&
			(fid.Function == "" || fid.computedRegexs.functionRegex.MatchString(function) ||
				fid.computedRegexs.functionRegex.MatchString(signature))
	}
	return (fid.Contract == "" || fid.Contract == contract) &&
		(fid.Function == "" || fid.Function == function || fid.Function == signature)
}
