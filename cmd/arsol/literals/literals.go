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
// Package literals implements the front-end printing the numeric literals of the functions of a program.
package literals

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/tools"
	"github.com/awslabs/ar-sol-tools/internal/formatutil"
)

const usage = `Print the numeric literals of the functions of a program.
The number of literals of a function bounds the number of iterations of its loops in the interval analysis.

Usage:
  arsol literals [options] program.yaml

Examples:
% arsol literals -prefix Vault. program.yaml
`

// Flags represents the flags for the literals sub-tool.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
	prefix     string
}

// NewFlags returns parsed flags for literals.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("literals")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	prefix := flags.FlagSet.String("prefix", "", "prefix of the canonical names of the functions to print")
	tools.SetUsage(flags.FlagSet, usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command literals with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags: flags.Parsed(),
		outputJSON:  *outputJSON,
		prefix:      *prefix,
	}, nil
}

// Run prints the literals of the functions whose canonical name starts with the prefix of the flags.
func Run(flags Flags) error {
	program, err := tools.LoadProgram(flags.CommonFlags)
	if err != nil {
		return err
	}
	result := map[string][]string{}
	var names []string
	for _, f := range program.Functions() {
		if !f.HasBody() || !config.MatchFunctionPrefix(f.CanonicalName(), flags.prefix) {
			continue
		}
		var values []string
		for _, x := range lang.Literals(f).Sorted() {
			values = append(values, x.String())
		}
		names = append(names, f.CanonicalName())
		result[f.CanonicalName()] = values
	}

	if flags.outputJSON {
		buf, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
		return nil
	}
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "%s (%d): %v\n", formatutil.Bold(name), len(result[name]), result[name])
	}
	return nil
}
