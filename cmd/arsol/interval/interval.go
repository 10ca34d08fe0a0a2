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
// Package interval implements the front-end of the interval analysis.
package interval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-sol-tools/analysis"
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/interval"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"github.com/awslabs/ar-sol-tools/cmd/arsol/tools"
	"github.com/awslabs/ar-sol-tools/internal/formatutil"
)

const usage = `Compute the range of the integer variables of the functions of a program.

Usage:
  arsol interval [options] program.yaml

Use the -help flag to display the options.

Examples:
% arsol interval -config config.yaml program.yaml
% arsol interval -contract Vault -function 'withdraw' -nodes program.yaml
`

// Flags represents the flags for the interval sub-tool.
type Flags struct {
	tools.CommonFlags
	outputJSON      bool
	allNodes        bool
	contract        string
	function        string
	intraprocedural bool
}

// NewFlags returns parsed flags for interval.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("interval")
	outputJSON := flags.FlagSet.Bool("json", false, "output findings as JSON")
	allNodes := flags.FlagSet.Bool("nodes", false, "print the state after every node instead of the return nodes")
	contract := flags.FlagSet.String("contract", "", "regex of the contracts whose functions are analyzed")
	function := flags.FlagSet.String("function", "", "regex of the names or signatures of the analyzed functions")
	intraprocedural := flags.FlagSet.Bool("intraprocedural", false, "do not inline calls")
	tools.SetUsage(flags.FlagSet, usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command interval with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags:     flags.Parsed(),
		outputJSON:      *outputJSON,
		allNodes:        *allNodes,
		contract:        *contract,
		function:        *function,
		intraprocedural: *intraprocedural,
	}, nil
}

// Run runs the interval analysis on the program of the flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return err
	}
	if flags.contract != "" || flags.function != "" {
		cfg.Functions = append(cfg.Functions, config.CompileRegexes(config.FunctionIdentifier{
			Contract: flags.contract,
			Function: flags.function,
		}))
	}
	if flags.intraprocedural {
		cfg.Interprocedural = false
	}
	logger := config.NewLogGroup(cfg)
	if flags.outputJSON {
		// keep stdout for the findings
		logger.SetAllOutput(os.Stderr)
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading sources")+"\n")
	program, err := tools.LoadProgram(flags.CommonFlags)
	if err != nil {
		return err
	}

	res := analysis.RunIntervalAnalysis(program, cfg, logger)
	if flags.outputJSON {
		findings := res.Findings()
		if findings == nil {
			findings = []interval.Finding{}
		}
		buf, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal findings: %w", err)
		}
		fmt.Println(string(buf))
	} else {
		printResults(os.Stdout, res, flags.allNodes)
	}
	if n := len(res.Skipped()); n > 0 {
		return fmt.Errorf("%d functions could not be analyzed", n)
	}
	return nil
}

func printResults(w io.Writer, res *analysis.IntervalResults, allNodes bool) {
	for _, fr := range res.Functions {
		fmt.Fprintf(w, "%s\n", formatutil.Bold(fr.Function.CanonicalName()))
		if fr.Skipped != nil {
			fmt.Fprintf(w, "  %s %v\n", formatutil.Red("skipped:"), fr.Skipped)
			continue
		}
		scope := fr.Function.CanonicalName() + "."
		for _, node := range fr.Function.Nodes {
			if !allNodes && node.Type != lang.ReturnNode {
				continue
			}
			state, ok := fr.States[node]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", formatutil.Faint(fmt.Sprintf("#%d %s", node.ID, node.Type)),
				formatState(state.Post, scope))
		}
		for _, finding := range fr.Findings {
			fmt.Fprintf(w, "  %s\n", formatutil.Yellow(formatutil.SanitizeRepr(finding)))
		}
	}
	findings := res.Findings()
	if len(findings) == 0 {
		fmt.Fprintf(w, "%s\n", formatutil.Green("No findings"))
	} else {
		fmt.Fprintf(w, "%s\n", formatutil.Red(fmt.Sprintf("%d findings", len(findings))))
	}
}

// formatState prints the intervals of the variables of the domain, without the scope prefix of local variables
func formatState(d *interval.Domain, scope string) string {
	if !d.IsState() {
		return d.String()
	}
	var parts []string
	for _, name := range d.State().Names() {
		parts = append(parts, strings.TrimPrefix(name, scope)+": "+d.Get(name).String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
