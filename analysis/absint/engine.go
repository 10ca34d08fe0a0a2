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

package absint

import (
	"time"

	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// Engine computes the fixpoint of an analysis over the control-flow graph of one function. An Engine is not safe
// for concurrent use, but engines of different functions are independent.
type Engine[D Domain[D]] struct {
	fp        Fixpoint[D]
	direction Direction[D]
	logger    *config.LogGroup
}

// NewEngine returns an engine where the pre and post states of every node of function are bottom
func NewEngine[D Domain[D]](analysis Analysis[D], function *lang.Function, logger *config.LogGroup) *Engine[D] {
	states := make(map[*lang.Node]*AnalysisState[D], len(function.Nodes))
	for _, node := range function.Nodes {
		states[node] = &AnalysisState[D]{Pre: analysis.Bottom(), Post: analysis.Bottom()}
	}
	return &Engine[D]{
		fp: Fixpoint[D]{
			Analysis: analysis,
			Function: function,
			States:   states,
			Visits:   map[*lang.Node]int{},
		},
		direction: analysis.Direction(),
		logger:    logger,
	}
}

// RunAnalysis seeds the worklist with all the nodes of the function and runs the direction of the analysis until
// the worklist is empty. An error returned by the transfer function aborts the analysis of the function.
func (e *Engine[D]) RunAnalysis() error {
	function := e.fp.Function
	if !function.HasBody() {
		return nil
	}
	start := time.Now()
	e.fp.Worklist = NewWorklist(function.Nodes)
	steps := 0
	for node := e.fp.Worklist.Pop(); node != nil; node = e.fp.Worklist.Pop() {
		steps++
		if err := e.direction.ApplyTransferFunction(&e.fp, node); err != nil {
			return err
		}
	}
	e.logger.Debugf("fixpoint of %s reached in %d steps (%.3f s)\n",
		function.CanonicalName(), steps, time.Since(start).Seconds())
	return nil
}

// Result returns the pre and post states of every node
func (e *Engine[D]) Result() map[*lang.Node]*AnalysisState[D] {
	return e.fp.States
}

// Post returns the post-state of node
func (e *Engine[D]) Post(node *lang.Node) D {
	return e.fp.States[node].Post
}

// Visits returns the number of times the transfer function has been applied to node
func (e *Engine[D]) Visits(node *lang.Node) int {
	return e.fp.Visits[node]
}
