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
// Package analysis contains helper functions for running the interval analysis over all the functions of a
// program.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/awslabs/ar-sol-tools/analysis/absint"
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/interval"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
	"github.com/awslabs/ar-sol-tools/internal/funcutil"
)

// FunctionResult is the result of the interval analysis of one function
type FunctionResult struct {
	Function *lang.Function

	// States maps every node of the function to its pre and post states. It is nil if the function was skipped.
	States map[*lang.Node]*absint.AnalysisState[*interval.Domain]

	// Findings are the findings reported while analyzing the function and its inlined callees
	Findings []interval.Finding

	// Recursive is true when the function is part of a cycle of the call graph
	Recursive bool

	// Inlined is the number of calls inlined during the analysis
	Inlined int

	Time time.Duration

	// Skipped is the error that stopped the analysis of the function, if any
	Skipped error
}

// IntervalResults holds the results of RunIntervalAnalysis, in the order of the functions in the program
type IntervalResults struct {
	Functions []FunctionResult

	// ReportFile is the file where the findings have been written, if any
	ReportFile string
}

// Get returns the result of the function with the given canonical name
func (r *IntervalResults) Get(canonical string) (FunctionResult, bool) {
	for _, res := range r.Functions {
		if res.Function.CanonicalName() == canonical {
			return res, true
		}
	}
	return FunctionResult{}, false
}

// Findings returns the findings of all functions
func (r *IntervalResults) Findings() []interval.Finding {
	var all []interval.Finding
	for _, res := range r.Functions {
		all = append(all, res.Findings...)
	}
	return all
}

// Skipped returns the results of the functions that could not be analyzed
func (r *IntervalResults) Skipped() []FunctionResult {
	var skipped []FunctionResult
	for _, res := range r.Functions {
		if res.Skipped != nil {
			skipped = append(skipped, res)
		}
	}
	return skipped
}

// RunIntervalAnalysis runs the interval analysis on every function of the program selected by the config, using
// cfg.NumRoutines goroutines. Functions are analyzed independently: a function that cannot be analyzed is
// reported as skipped and does not stop the analysis of the others.
func RunIntervalAnalysis(program *lang.Program, cfg *config.Config, logger *config.LogGroup) *IntervalResults {
	logger.Infof("Starting interval analysis ...\n")
	start := time.Now()

	cg := BuildCallGraph(program)
	options := interval.OptionsFromConfig(cfg)
	var jobs []singleFunctionJob
	for _, function := range SelectFunctions(program, cfg) {
		jobs = append(jobs, singleFunctionJob{
			function:  function,
			options:   options,
			logger:    logger,
			recursive: cg.IsRecursive(function),
		})
	}

	results := funcutil.MapParallel(jobs, runSingleFunctionJob, cfg.NumRoutines)
	res := collectResults(results, cfg, logger)

	logger.Infof("Interval analysis done (%.2f s): %d functions analyzed, %d skipped, %d findings.\n",
		time.Since(start).Seconds(), len(res.Functions), len(res.Skipped()), len(res.Findings()))
	return res
}

// singleFunctionJob contains all the information necessary to run the interval analysis on function.
type singleFunctionJob struct {
	function  *lang.Function
	options   interval.Options
	logger    *config.LogGroup
	recursive bool
}

// runSingleFunctionJob runs a fresh interval analysis on the function of the job. Analyses are not shared between
// jobs, which can run in parallel.
func runSingleFunctionJob(job singleFunctionJob) FunctionResult {
	name := job.function.CanonicalName()
	job.logger.Debugf("%-10s%-60s ...\n", "Analyzing", name)
	if job.recursive {
		job.logger.Debugf("%s is recursive, recursive calls are bounded by their types\n", name)
	}
	start := time.Now()
	a := interval.New(job.options, job.logger)
	engine, err := a.Run(job.function)
	res := FunctionResult{
		Function:  job.function,
		Findings:  a.Findings(),
		Recursive: job.recursive,
		Inlined:   a.Inlined(),
		Time:      time.Since(start),
	}
	if err != nil {
		job.logger.Errorf("error while analyzing %s:\n\t%v\n", name, err)
		res.Skipped = err
		res.Findings = nil
		return res
	}
	res.States = engine.Result()
	job.logger.Debugf("%-10s%-60s | %-3d findings | %.2f s\n", " ", name, len(res.Findings), res.Time.Seconds())
	return res
}

// collectResults gathers the results of the jobs and writes the findings report if the config requires it
func collectResults(results []FunctionResult, cfg *config.Config, logger *config.LogGroup) *IntervalResults {
	res := &IntervalResults{Functions: results}
	if !cfg.ReportFindings {
		return res
	}
	filename, err := reportFindings(cfg.ReportsDir, res.Findings())
	if err != nil {
		logger.Errorf("Could not write the findings report: %v\n", err)
		return res
	}
	logger.Infof("Saving report of findings in %s\n", filename)
	res.ReportFile = filename
	return res
}

func reportFindings(dir string, findings []interval.Finding) (string, error) {
	if findings == nil {
		findings = []interval.Finding{}
	}
	f, err := os.CreateTemp(dir, "findings-*.json")
	if err != nil {
		return "", fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return "", fmt.Errorf("could not encode findings: %w", err)
	}
	path, err := filepath.Abs(f.Name())
	if err != nil {
		return f.Name(), nil
	}
	return path, nil
}
