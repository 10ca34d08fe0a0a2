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
// Package callgraph implements the front-end printing the call graph of a program.
package callgraph

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-sol-tools/analysis"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/tools"
	"github.com/awslabs/ar-sol-tools/internal/formatutil"
	"github.com/awslabs/ar-sol-tools/internal/funcutil"
)

// Usage of the callgraph sub-tool
const Usage = `Print the call graph of a program.
Functions are printed bottom-up: callees before their callers, except in recursive cycles.

Usage:
  arsol callgraph [options] program.yaml
`

// Run prints the callees of every function, the recursive functions and the cycles of the call graph.
func Run(flags tools.CommonFlags) error {
	program, err := tools.LoadProgram(flags)
	if err != nil {
		return err
	}
	cg := analysis.BuildCallGraph(program)
	for _, f := range cg.BottomUp() {
		name := f.CanonicalName()
		if cg.IsRecursive(f) {
			name = formatutil.Magenta(name) + " (recursive)"
		} else {
			name = formatutil.Bold(name)
		}
		fmt.Printf("%s -> [%s]\n", name, joinNames(cg.Callees(f), ", "))
	}
	cycles := cg.Cycles()
	if len(cycles) > 0 {
		fmt.Printf("%s\n", formatutil.Faint(fmt.Sprintf("%d cycles:", len(cycles))))
	}
	for _, cycle := range cycles {
		fmt.Printf("  %s\n", joinNames(cycle, " -> "))
	}
	return nil
}

func joinNames(functions []*lang.Function, sep string) string {
	return strings.Join(funcutil.Map(functions, (*lang.Function).CanonicalName), sep)
}
