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
package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-sol-tools/analysis"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/callgraph"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/interval"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/literals"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/statistics"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/tools"
)

const usage = `Arsol: Automated Reasoning Solidity Tools
Usage:
  arsol [tool] [options] <program.yaml>
Tools:
  - interval: computes the range of every integer variable of the functions of a program
  - literals: prints the numeric literals of each function, which bound the iterations of its loops
  - callgraph: prints the call graph of a program, its recursive functions and its cycles
  - statistics: prints statistics about the program
Examples:
  Run the interval analysis: arsol interval -config=config.yaml program.yaml
  Print the findings as JSON: arsol interval -json program.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "interval":
		flags, err := interval.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := interval.Run(flags); err != nil {
			errExit(err)
		}
	case "literals":
		flags, err := literals.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := literals.Run(flags); err != nil {
			errExit(err)
		}
	case "callgraph":
		flags, err := tools.NewCommonFlags("callgraph", args, callgraph.Usage)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.Run(flags); err != nil {
			errExit(err)
		}
	case "statistics":
		flags, err := statistics.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := statistics.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if hint := tools.HintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	os.Exit(1)
}
