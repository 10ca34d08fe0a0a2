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
	"embed"
	"os"
	"path/filepath"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func parseFromTestDir(t *testing.T, filename string) *Config {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read file %v: %v", filename, err)
	}
	c, err := Parse(b)
	if err != nil {
		t.Fatalf("failed to parse file %v: %v", filename, err)
	}
	return c
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if !c.Interprocedural {
		t.Errorf("default config should be interprocedural")
	}
	if c.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("default max call depth should be %d, got %d", DefaultMaxCallDepth, c.MaxCallDepth)
	}
	if c.Verbose() {
		t.Errorf("default config should not be verbose")
	}
	if !c.MatchFunction("Any", "f", "f(uint256)") {
		t.Errorf("default config should match every function")
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file.")
	}
}

func TestParseBadFormatReturnsError(t *testing.T) {
	b, err := testfsys.ReadFile(filepath.Join("testdata", "bad_format.yaml"))
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	c, err := Parse(b)
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load a badly formatted file.")
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	c := parseFromTestDir(t, "defaults.yaml")
	if c.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("negative max-call-depth should be replaced by default, got %d", c.MaxCallDepth)
	}
	if c.NumRoutines != DefaultNumRoutines {
		t.Errorf("num-routines should be replaced by default, got %d", c.NumRoutines)
	}
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("log level should default to info, got %d", c.LogLevel)
	}
	if !c.Interprocedural {
		t.Errorf("interprocedural should stay true when unspecified")
	}
}

func TestParseFullConfig(t *testing.T) {
	c := parseFromTestDir(t, "full-config.yaml")
	if c.LogLevel != int(TraceLevel) {
		t.Error("full config should have set trace")
	}
	if !c.Verbose() {
		t.Error("trace level should be verbose")
	}
	if c.Interprocedural {
		t.Error("full config should have disabled interprocedural")
	}
	if c.MaxCallDepth != 4 || !c.ExceedsMaxCallDepth(5) || c.ExceedsMaxCallDepth(4) {
		t.Errorf("full config should set max-call-depth to 4, got %d", c.MaxCallDepth)
	}
	if c.NumRoutines != 8 {
		t.Error("full config should set num-routines to 8")
	}
	if !c.SilenceWarn || !c.ReportFindings {
		t.Error("full config should set silence-warn and report-findings")
	}
	if len(c.Functions) != 3 {
		t.Fatalf("full config should have 3 function identifiers, got %d", len(c.Functions))
	}
}

func TestMatchFunction(t *testing.T) {
	c := parseFromTestDir(t, "full-config.yaml")
	tests := []struct {
		contract  string
		name      string
		signature string
		want      bool
	}{
		{"Vault", "withdraw", "withdraw(uint256)", true},
		{"Vault", "deposit", "deposit(uint256)", false},
		{"TokenA", "mint", "mint(uint256)", true},
		{"Bank", "transfer", "transfer(address,uint256)", true},
		{"Bank", "transfer", "transfer(uint256)", false},
	}
	for _, test := range tests {
		if got := c.MatchFunction(test.contract, test.name, test.signature); got != test.want {
			t.Errorf("MatchFunction(%s, %s) = %v, want %v", test.contract, test.signature, got, test.want)
		}
	}
}

func TestFunctionIdentifierWithoutRegex(t *testing.T) {
	fid := FunctionIdentifier{Contract: "C(", Function: "f"}
	fid = CompileRegexes(fid)
	if !fid.Matches("C(", "f", "f()") {
		t.Errorf("identifier with invalid regex should match exactly")
	}
	if fid.Matches("C", "f", "f()") {
		t.Errorf("identifier with invalid regex should not match other names")
	}
}

func TestLoadWithReports(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(filename, []byte("options:\n  report-findings: true\n"), 0600); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	c, err := Load(filename)
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if c.ReportsDir == "" {
		t.Errorf("Expected reports-dir to be non-empty after loading config %q", filename)
	}
	if c.RelPath("x.sol") != filepath.Join(dir, "x.sol") {
		t.Errorf("RelPath should be relative to the config file, got %s", c.RelPath("x.sol"))
	}
}
