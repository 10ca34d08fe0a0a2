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

const (
	// DefaultMaxCallDepth is the default maximum number of nested calls inlined by the interprocedural analysis.
	// Calls deeper than that are treated like recursive calls: their result is bounded by the return type only.
	DefaultMaxCallDepth = 16

	// DefaultNumRoutines is the default number of functions analyzed in parallel
	DefaultNumRoutines = 1
)
