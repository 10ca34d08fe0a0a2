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
	"fmt"
	"strings"

	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// LoadProgram loads the program described in the YAML file filename
func LoadProgram(filename string) (*lang.Program, error) {
	program, err := lang.LoadProgram(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if len(program.Contracts) == 0 {
		return nil, fmt.Errorf("no contracts in %s", filename)
	}
	return program, nil
}

// Signature returns the name of the function with its parameter types, e.g. f(uint256,bool)
func Signature(function *lang.Function) string {
	canonical := function.CanonicalName()
	if function.Contract == nil {
		return canonical
	}
	return strings.TrimPrefix(canonical, function.Contract.Name+".")
}

// SelectFunctions returns the functions with a body that match the function identifiers of the config, in the order
// of the program
func SelectFunctions(program *lang.Program, cfg *config.Config) []*lang.Function {
	var res []*lang.Function
	for _, function := range program.Functions() {
		if !function.HasBody() {
			continue
		}
		contract := ""
		if function.Contract != nil {
			contract = function.Contract.Name
		}
		if cfg.MatchFunction(contract, function.Name, Signature(function)) {
			res = append(res, function)
		}
	}
	return res
}
