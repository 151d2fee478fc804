// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store is the exclusion store facade (§4.4 of the
// specification): it composes the mass-interval index and the id map,
// enforces the Add/validity invariants, and implements the five public
// operations plus Clear, Stats, Save and Load, all behind a single
// concurrency gate.
package store

import (
	"sync"

	"github.com/pgarrett-scripps/exclusionms-go/internal/errs"
	"github.com/pgarrett-scripps/exclusionms-go/internal/idmap"
	"github.com/pgarrett-scripps/exclusionms-go/internal/massindex"
	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
	"github.com/pgarrett-scripps/exclusionms-go/internal/persist"
)

const className = "TreapExclusionStore"

// Stats is the result of Store.Stats.
type Stats struct {
	Len        int    `json:"len"`
	IDTableLen int    `json:"id_table_len"`
	Class      string `json:"class"`
}

// Store is the exclusion store. The zero value is not usable; use New.
type Store struct {
	mu sync.Mutex

	records    map[massindex.Handle]model.Interval
	nextHandle massindex.Handle
	mass       *massindex.Tree
	openMass   map[massindex.Handle]struct{} // fully mass-open intervals (§4.1 side list)
	ids        *idmap.Map
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		records:  make(map[massindex.Handle]model.Interval),
		mass:     massindex.New(),
		openMass: make(map[massindex.Handle]struct{}),
		ids:      idmap.New(),
	}
}

// Add inserts iv into the store. iv must have a non-null id and satisfy
// Valid; duplicates are permitted (the store is a multiset).
func (s *Store) Add(iv model.Interval) error {
	if _, ok := iv.ID.Get(); !ok {
		return &errs.InvalidInterval{Reason: "interval_id must not be null for add"}
	}
	if !iv.Valid() {
		return &errs.InvalidInterval{Reason: "a min bound exceeds its max bound"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(iv)
	return nil
}

func (s *Store) insertLocked(iv model.Interval) massindex.Handle {
	h := s.nextHandle
	s.nextHandle++
	s.records[h] = iv

	minMass, minOK := iv.MinMass.Get()
	maxMass, maxOK := iv.MaxMass.Get()
	if !minOK && !maxOK {
		s.openMass[h] = struct{}{}
	} else {
		lo, hi := negInf, posInf
		if minOK {
			lo = minMass
		}
		if maxOK {
			hi = maxMass
		}
		s.mass.Insert(lo, hi, h)
	}

	if id, ok := iv.ID.Get(); ok {
		s.ids.Insert(id, h)
	}
	return h
}

func (s *Store) removeLocked(h massindex.Handle) model.Interval {
	iv := s.records[h]
	delete(s.records, h)
	if _, ok := s.openMass[h]; ok {
		delete(s.openMass, h)
	} else {
		s.mass.Delete(h)
	}
	if id, ok := iv.ID.Get(); ok {
		s.ids.Delete(id, h)
	}
	return iv
}

// massCandidatesLocked returns every handle whose mass range could overlap
// q's mass range, always including the fully mass-open side list, per
// §4.1. Point queries use pointMassCandidatesLocked instead.
func (s *Store) massCandidatesLocked(minMass, maxMass optional.Float) []massindex.Handle {
	lo, hi := negInf, posInf
	if v, ok := minMass.Get(); ok {
		lo = v
	}
	if v, ok := maxMass.Get(); ok {
		hi = v
	}
	out := s.mass.Query(lo, hi)
	for h := range s.openMass {
		out = append(out, h)
	}
	return out
}

// Remove deletes every stored interval matching query-shaped q (§4.4) and
// returns the removed intervals. q need not have an id.
func (s *Store) Remove(q model.Interval) []model.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []massindex.Handle
	if isIDOnlyQuery(q) {
		id, _ := q.ID.Get()
		candidates = append(candidates, s.ids.Get(id)...)
	} else {
		candidates = s.massCandidatesLocked(q.MinMass, q.MaxMass)
	}

	var removed []model.Interval
	for _, h := range candidates {
		iv, ok := s.records[h]
		if !ok {
			continue
		}
		if iv.MatchesQuery(q) {
			removed = append(removed, s.removeLocked(h))
		}
	}
	return removed
}

// isIDOnlyQuery reports whether q specifies only a non-null id and
// nothing else, the short-circuit case in §4.2.
func isIDOnlyQuery(q model.Interval) bool {
	if _, ok := q.ID.Get(); !ok {
		return false
	}
	if _, ok := q.Charge.Get(); ok {
		return false
	}
	bounds := []optional.Float{
		q.MinMass, q.MaxMass, q.MinRT, q.MaxRT,
		q.MinOOK0, q.MaxOOK0, q.MinIntensity, q.MaxIntensity,
	}
	for _, b := range bounds {
		if _, ok := b.Get(); ok {
			return false
		}
	}
	return true
}

// QueryByInterval returns every stored interval overlapping q (§3, §4.4).
// It never fails and does not mutate the store.
func (s *Store) QueryByInterval(q model.Interval) []model.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.massCandidatesLocked(q.MinMass, q.MaxMass)
	var out []model.Interval
	for _, h := range candidates {
		if iv, ok := s.records[h]; ok && iv.Overlaps(q) {
			out = append(out, iv)
		}
	}
	return out
}

// pointMassCandidatesLocked returns the handles that could contain p on
// the mass dimension: a stab query if p's mass is present, every stored
// interval otherwise (an absent point mass is a wildcard matching the
// whole dimension, so every record is a candidate — see §3).
func (s *Store) pointMassCandidatesLocked(p model.Point) []massindex.Handle {
	mass, ok := p.Mass.Get()
	if !ok {
		out := make([]massindex.Handle, 0, len(s.records))
		for h := range s.records {
			out = append(out, h)
		}
		return out
	}
	out := s.mass.Stab(mass)
	for h := range s.openMass {
		out = append(out, h)
	}
	return out
}

// QueryByPoint returns every stored interval containing p (§3, §4.4).
func (s *Store) QueryByPoint(p model.Point) []model.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Interval
	for _, h := range s.pointMassCandidatesLocked(p) {
		if iv, ok := s.records[h]; ok && iv.Contains(p) {
			out = append(out, iv)
		}
	}
	return out
}

// IsExcluded reports whether QueryByPoint(p) would be non-empty, without
// building the full result list.
func (s *Store) IsExcluded(p model.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.pointMassCandidatesLocked(p) {
		if iv, ok := s.records[h]; ok && iv.Contains(p) {
			return true
		}
	}
	return false
}

// Clear empties the store and returns its prior size. It does not touch
// the offset register (that component is process-resident and owned
// separately — see internal/offset).
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	s.records = make(map[massindex.Handle]model.Interval)
	s.mass = massindex.New()
	s.openMass = make(map[massindex.Handle]struct{})
	s.ids.Clear()
	return n
}

// Stats reports the store's current size.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Len: len(s.records), IDTableLen: s.ids.Len(), Class: className}
}

// Save writes the entire store to path (§4.6). It snapshots the store
// under the gate and streams to disk outside it.
func (s *Store) Save(path string) error {
	ivs := s.snapshot()
	return persist.Save(path, ivs)
}

func (s *Store) snapshot() []model.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Interval, 0, len(s.records))
	for _, iv := range s.records {
		out = append(out, iv)
	}
	return out
}

// Load replaces the store's contents with the intervals persisted at
// path. The new index is built entirely before the gate is acquired to
// swap it in, so a failed decode leaves the live store untouched.
func (s *Store) Load(path string) error {
	ivs, err := persist.Load(path)
	if err != nil {
		return err
	}

	next := New()
	for _, iv := range ivs {
		next.insertLocked(iv)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next.records
	s.mass = next.mass
	s.openMass = next.openMass
	s.ids = next.ids
	s.nextHandle = next.nextHandle
	return nil
}
