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
	"github.com/awslabs/ar-sol-tools/analysis/absint"
)

// Domain is the element of the interval lattice: bottom, top or a State.
type Domain struct {
	variant absint.Variant
	state   *State
}

// NewBottom returns a bottom domain
func NewBottom() *Domain {
	return &Domain{variant: absint.Bottom}
}

// NewTop returns a top domain
func NewTop() *Domain {
	return &Domain{variant: absint.Top}
}

// NewDomain returns a domain holding state s
func NewDomain(s *State) *Domain {
	return &Domain{variant: absint.State, state: s}
}

// Variant implements absint.Domain
func (d *Domain) Variant() absint.Variant {
	return d.variant
}

// IsBottom returns true if the program point is unreachable
func (d *Domain) IsBottom() bool {
	return d.variant == absint.Bottom
}

// IsState returns true if the domain holds a state
func (d *Domain) IsState() bool {
	return d.variant == absint.State
}

// State returns the state of the domain, or nil if the domain is bottom or top
func (d *Domain) State() *State {
	if d.variant != absint.State {
		return nil
	}
	return d.state
}

// Get returns the interval of a variable, or nil if the domain is not a state or the variable is not tracked
func (d *Domain) Get(name string) *Info {
	if s := d.State(); s != nil {
		return s.Get(name)
	}
	return nil
}

// SetBottom marks the program point as unreachable
func (d *Domain) SetBottom() {
	d.variant = absint.Bottom
	d.state = nil
}

// Replace makes d a copy of o
func (d *Domain) Replace(o *Domain) {
	d.variant = o.variant
	d.state = nil
	if o.state != nil {
		d.state = o.state.Clone()
	}
}

// Narrow sets the interval of name. An empty interval is a contradiction that turns d into bottom; Narrow then
// returns false.
func (d *Domain) Narrow(name string, info *Info) bool {
	if info.IsEmpty() {
		d.SetBottom()
		return false
	}
	if s := d.State(); s != nil {
		s.Set(name, info)
	}
	return true
}

// Clone implements absint.Domain
func (d *Domain) Clone() *Domain {
	c := &Domain{variant: d.variant}
	if d.state != nil {
		c.state = d.state.Clone()
	}
	return c
}

// Join implements absint.Domain. Bottom is the neutral element and top is absorbing. Two states are joined
// pointwise, taking the union of the intervals of each variable.
func (d *Domain) Join(o *Domain) bool {
	switch {
	case o.variant == absint.Bottom || d.variant == absint.Top:
		return false
	case o.variant == absint.Top:
		d.variant = absint.Top
		d.state = nil
		return true
	case d.variant == absint.Bottom:
		d.variant = absint.State
		d.state = o.state.Clone()
		return true
	}
	return d.state.join(o.state)
}

func (d *Domain) String() string {
	switch d.variant {
	case absint.Bottom:
		return "⊥"
	case absint.Top:
		return "⊤"
	}
	return d.state.String()
}
