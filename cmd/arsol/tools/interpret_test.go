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
package tools

import (
	"strings"
	"testing"
)

func TestHintForErrorMessage(t *testing.T) {
	for _, tt := range []struct {
		errorMsg string
		hint     string
	}{
		{
			"expected exactly one program file, got 3 arguments",
			"all command line flags should be before the path",
		},
		{
			"could not load program: failed to load program: function C.f(): malformed program: IF node 2 has 1 sons",
			"check the node types",
		},
		{
			"could not load program: failed to load program: open p.yaml: no such file or directory",
			"YAML description",
		},
		{
			"interval analysis of C.f(): unresolvable variable REF_0",
			"reference variables",
		},
		{"expected exactly one program file, got 0 arguments", ""},
	} {
		hint := HintForErrorMessage(tt.errorMsg)
		if tt.hint == "" && hint != "" || !strings.Contains(hint, tt.hint) {
			t.Errorf("hint for %q should contain %q, got %q", tt.errorMsg, tt.hint, hint)
		}
	}
}
