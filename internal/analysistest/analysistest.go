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
// Package analysistest contains helpers to load the programs used in the tests of the analyses, and to read the
// expected results annotated in them.
package analysistest

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-sol-tools/analysis/config"
	"github.com/awslabs/ar-sol-tools/analysis/lang"
)

// LoadTest loads the program in the file name of fsys. If a config file named config.yaml is next to it, it is
// loaded as well. Otherwise, the default config is returned.
func LoadTest(t *testing.T, fsys fs.FS, name string) (*lang.Program, *config.Config) {
	t.Helper()
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		t.Fatalf("could not read %s: %v", name, err)
	}
	prog, err := lang.ParseProgram(b)
	if err != nil {
		t.Fatalf("could not load %s: %v", name, err)
	}
	cfg := config.NewDefault()
	configFile := "config.yaml"
	if i := strings.LastIndex(name, "/"); i >= 0 {
		configFile = name[:i+1] + configFile
	}
	if cb, err := fs.ReadFile(fsys, configFile); err == nil {
		cfg, err = config.Parse(cb)
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	}
	return prog, cfg
}

// IntervalRegex matches annotations of the form "@Interval(C.f(uint8).x, 0, 10)"
var IntervalRegex = regexp.MustCompile(`#.*@Interval\(\s*([^\s,]+(?:\([^)]*\))?[^\s,]*)\s*,\s*([^\s,]+)\s*,\s*([^\s,)]+)\s*\)`)

// LPos is a line in a test file
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// An IntervalAnnotation is the interval expected for a variable at the exit of its function. Bounds are decimal
// integers, -inf or +inf.
type IntervalAnnotation struct {
	Pos      LPos
	Variable string
	Lower    string
	Upper    string
}

// Function returns the canonical name of the function of the variable, or the empty string for state variables
func (a IntervalAnnotation) Function() string {
	i := strings.LastIndex(a.Variable, ").")
	if i < 0 {
		return ""
	}
	return a.Variable[:i+1]
}

// GetExpectedIntervals reads the file name of fsys and returns the interval annotations in its comments.
func GetExpectedIntervals(fsys fs.FS, name string) ([]IntervalAnnotation, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var annotations []IntervalAnnotation
	scanner := bufio.NewScanner(bytes.NewReader(b))
	line := 0
	for scanner.Scan() {
		line++
		for _, m := range IntervalRegex.FindAllStringSubmatch(scanner.Text(), -1) {
			annotations = append(annotations, IntervalAnnotation{
				Pos:      LPos{Filename: name, Line: line},
				Variable: m[1],
				Lower:    m[2],
				Upper:    m[3],
			})
		}
	}
	return annotations, scanner.Err()
}
