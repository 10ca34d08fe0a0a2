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
// Package tools contains utility types and functions for arsol tool frontends.
package tools

import (
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/ar-sol-tools/analysis"
	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config and -verbose but need other flags in
// addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `arsol interval ...`, "interval" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", name, args, err)
	}
	return flags.Parsed(), nil
}

// Parsed returns the common flags once the flag set has been parsed
func (f UnparsedCommonFlags) Parsed() CommonFlags {
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		Verbose:    *f.Verbose,
	}
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath. If configPath is empty, the default config is returned.
// The verbose flag raises the log level to Debug.
func LoadConfig(configPath string, verbose bool) (*config.Config, error) {
	cfg := config.NewDefault()
	if configPath != "" {
		config.SetGlobalConfig(configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
		}
		cfg = loaded
	}
	if verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, nil
}

// LoadProgram loads the single program file of the positional arguments of the flag set
func LoadProgram(flags CommonFlags) (*lang.Program, error) {
	args := flags.FlagSet.Args()
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one program file, got %d arguments", len(args))
	}
	program, err := analysis.LoadProgram(args[0])
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}
	return program, nil
}
