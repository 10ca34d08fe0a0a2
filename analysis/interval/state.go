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

package interval

import (
	"strings"

	"github.com/awslabs/ar-sol-tools/internal/funcutil"
)

// State maps canonical variable names to their interval
type State struct {
	vars map[string]*Info
}

// NewState returns an empty state
func NewState() *State {
	return &State{vars: map[string]*Info{}}
}

// Get returns the interval of the variable with canonical name name, or nil if the variable is not tracked
func (s *State) Get(name string) *Info {
	return s.vars[name]
}

// Set overwrites the interval of a variable with a copy of info. Empty intervals must not be stored; the caller is
// responsible for turning contradictions into bottom domains.
func (s *State) Set(name string, info *Info) {
	s.vars[name] = info.Clone()
}

// Delete removes a variable from the state
func (s *State) Delete(name string) {
	delete(s.vars, name)
}

// DeletePrefix removes all the variables whose name starts with prefix
func (s *State) DeletePrefix(prefix string) {
	for name := range s.vars {
		if strings.HasPrefix(name, prefix) {
			delete(s.vars, name)
		}
	}
}

// Len returns the number of variables tracked
func (s *State) Len() int {
	return len(s.vars)
}

// Names returns the names of the variables tracked, sorted
func (s *State) Names() []string {
	names := make(map[string]bool, len(s.vars))
	for name := range s.vars {
		names[name] = true
	}
	return funcutil.SetToOrderedSlice(names)
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	c := &State{vars: make(map[string]*Info, len(s.vars))}
	for name, info := range s.vars {
		c.vars[name] = info.Clone()
	}
	return c
}

// join merges o into s and returns true if s changed
func (s *State) join(o *State) bool {
	changed := false
	for name, info := range o.vars {
		cur, ok := s.vars[name]
		if !ok {
			s.vars[name] = info.Clone()
			changed = true
			continue
		}
		if info.Lower.Cmp(cur.Lower) < 0 {
			cur.Lower = info.Lower
			changed = true
		}
		if info.Upper.Cmp(cur.Upper) > 0 {
			cur.Upper = info.Upper
			changed = true
		}
	}
	return changed
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, name := range s.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(s.vars[name].String())
	}
	b.WriteString("}")
	return b.String()
}
