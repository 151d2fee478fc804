// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package idmap is the secondary mapping from interval_id to the multiset
// of slab handles currently stored with that id (§4.2 of the
// specification).
package idmap

import "github.com/pgarrett-scripps/exclusionms-go/internal/massindex"

// Map is a multiset index from interval_id to handle.
type Map struct {
	byID map[string][]massindex.Handle
}

// New returns an empty Map.
func New() *Map {
	return &Map{byID: make(map[string][]massindex.Handle)}
}

// Insert records that h is stored under id.
func (m *Map) Insert(id string, h massindex.Handle) {
	m.byID[id] = append(m.byID[id], h)
}

// Delete removes h from id's set. It reports whether it found and removed
// the handle.
func (m *Map) Delete(id string, h massindex.Handle) bool {
	hs, ok := m.byID[id]
	if !ok {
		return false
	}
	for i, hh := range hs {
		if hh == h {
			hs[i] = hs[len(hs)-1]
			hs = hs[:len(hs)-1]
			if len(hs) == 0 {
				delete(m.byID, id)
			} else {
				m.byID[id] = hs
			}
			return true
		}
	}
	return false
}

// Get returns the handles currently stored under id.
func (m *Map) Get(id string) []massindex.Handle {
	return m.byID[id]
}

// Len reports the number of distinct ids present.
func (m *Map) Len() int { return len(m.byID) }

// Clear empties the map.
func (m *Map) Clear() { m.byID = make(map[string][]massindex.Handle) }
