// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offset is the process-wide additive correction applied to query
// points before lookup (§4.5 of the specification), used to compensate for
// instrument drift between an acquisition's internal timebase and the
// store's timebase.
//
// The register itself is never touched by Clear, and is mutated only by
// Set — it is deliberately a separate component from the exclusion store,
// mirroring the source's free-standing apply_offset function in main.py,
// which is called by the HTTP route handlers rather than by the store
// itself.
package offset

import (
	"sync"

	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
)

// Offset is a snapshot of the four additive corrections.
type Offset struct {
	Mass, RT, OOK0, Intensity float64
}

// Register holds the live, process-wide Offset.
type Register struct {
	mu sync.Mutex
	v  Offset
}

// Get returns the current offset.
func (r *Register) Get() Offset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v
}

// Set replaces the current offset.
func (r *Register) Set(o Offset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.v = o
}

// Apply returns a copy of p with every present numeric field shifted by
// the corresponding component of o; charge and absent fields are
// untouched. The source conflates "absent" with "falsy", which also skips
// an explicit 0.0 (see §9); this distinguishes "absent" from "present,
// zero" via the optional wrapper types, so a present 0.0 is still offset.
func Apply(p model.Point, o Offset) model.Point {
	out := p
	if v, ok := p.Mass.Get(); ok {
		out.Mass.Value = v + o.Mass
	}
	if v, ok := p.RT.Get(); ok {
		out.RT.Value = v + o.RT
	}
	if v, ok := p.OOK0.Get(); ok {
		out.OOK0.Value = v + o.OOK0
	}
	if v, ok := p.Intensity.Get(); ok {
		out.Intensity.Value = v + o.Intensity
	}
	return out
}
