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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  interprocedural: true
	  max-call-depth: 8
	  num-routines: 4
	  report-findings: true
	functions:
	  - contract: Vault
	    function: "withdraw.*"

# Identifying functions

The config uses [FunctionIdentifier] to restrict the analysis to some functions. An identifier matches a function
if its contract and function fields match, where empty fields match anything. The strings are seen as regexes if
they can be compiled to regexes, otherwise they are strings.

# Logging

[NewLogGroup] returns the leveled logger used by every analysis component. The level is the log-level option, from
1 (errors only) to 5 (trace).
*/
package config
