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
// Package statistics implements the front-end for the program statistics.
package statistics

import (
	"encoding/json"
	"fmt"

	"github.com/awslabs/ar-sol-tools/analysis"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/tools"
)

const usage = `Compute statistics for a program.

Usage:
  arsol statistics [options] program.yaml

Examples:
% arsol statistics -json program.yaml
`

// Flags represents the flags for the statistics sub-tool.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
}

// NewFlags returns parsed flags for statistics.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("statistics")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	tools.SetUsage(flags.FlagSet, usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command statistics with args %v: %v", args, err)
	}
	return Flags{CommonFlags: flags.Parsed(), outputJSON: *outputJSON}, nil
}

// Run prints the statistics of the program of the flags.
func Run(flags Flags) error {
	program, err := tools.LoadProgram(flags.CommonFlags)
	if err != nil {
		return err
	}
	result := analysis.ProgramStatistics(program)
	if flags.outputJSON {
		buf, _ := json.Marshal(result)
		fmt.Println(string(buf))
	} else {
		fmt.Printf("Number of contracts: %d\n", result.NumberOfContracts)
		fmt.Printf("Number of functions: %d\n", result.NumberOfFunctions)
		fmt.Printf("Number of nonempty functions: %d\n", result.NumberOfNonemptyFunctions)
		fmt.Printf("Number of nodes: %d\n", result.NumberOfNodes)
		fmt.Printf("Number of instructions: %d\n", result.NumberOfInstructions)
		fmt.Printf("Number of loops: %d\n", result.NumberOfLoops)
		fmt.Printf("Maximum number of literals: %d\n", result.MaxLiterals)
	}
	return nil
}
