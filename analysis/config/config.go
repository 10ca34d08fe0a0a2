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

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/awslabs/ar-sol-tools/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the analyses and the functions to analyze.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will have the value set by NewDefault.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// Functions restricts the analyses to the functions matching one of the identifiers. If empty, all functions
	// with a body are analyzed.
	Functions []FunctionIdentifier `yaml:"functions"`
}

// Options holds the settings of the interval analysis and of the tools running it
type Options struct {
	// ReportsDir is the directory where all the reports will be stored. If the yaml config file this config struct has
	// been loaded does not specify a ReportsDir but sets ReportFindings to true, then ReportsDir will be created
	// next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportFindings can be set to true, in which case the findings (divisions by zero, unreachable nodes) are
	// written as JSON in a file named findings-*.json in the reports directory
	ReportFindings bool `yaml:"report-findings"`

	// Interprocedural enables the inlining of internal and library calls. When false, the result of every call is
	// only bounded by its return type.
	Interprocedural bool `yaml:"interprocedural"`

	// MaxCallDepth sets a limit for the number of nested calls inlined by the interprocedural analysis.
	// If provided MaxCallDepth is <= 0, then DefaultMaxCallDepth is used.
	MaxCallDepth int `yaml:"max-call-depth"`

	// NumRoutines is the number of functions analyzed in parallel
	NumRoutines int `yaml:"num-routines"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Functions:  nil,
		Options: Options{
			ReportsDir:      "",
			ReportFindings:  false,
			Interprocedural: true,
			MaxCallDepth:    DefaultMaxCallDepth,
			NumRoutines:     DefaultNumRoutines,
			LogLevel:        int(InfoLevel),
			SilenceWarn:     false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.sourceFile = filename

	if cfg.ReportFindings {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse reads a configuration from the yaml contents b. Defaults are applied to the options not set in b.
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel <= 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	// Set the MaxCallDepth default if it is <= 0
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}

	if cfg.NumRoutines <= 0 {
		cfg.NumRoutines = DefaultNumRoutines
	}

	funcutil.MapInPlace(cfg.Functions, CompileRegexes)
	return cfg, nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchFunction returns true if the function should be analyzed: either no function identifier is specified, or
// one of them matches. signature is the function name with its parameter types, e.g. f(uint256).
func (c Config) MatchFunction(contract string, name string, signature string) bool {
	if len(c.Functions) == 0 {
		return true
	}
	return funcutil.Exists(c.Functions, func(fid FunctionIdentifier) bool {
		return fid.Matches(contract, name, signature)
	})
}

// MatchFunctionPrefix returns true if the canonical name Contract.f(...) starts with prefix. This is used by tools
// that accept a function name on the command line.
func MatchFunctionPrefix(canonical string, prefix string) bool {
	return prefix == "" || strings.HasPrefix(canonical, prefix)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxCallDepth returns true if the input exceeds the maximum call depth parameter of the configuration.
func (c Config) ExceedsMaxCallDepth(d int) bool {
	if c.MaxCallDepth <= 0 {
		return d > DefaultMaxCallDepth
	}
	return d > c.MaxCallDepth
}
