// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"path/filepath"
	"testing"

	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
)

func peptideInterval() model.Interval {
	return model.Interval{
		ID:           optional.OfString("PEPTIDE"),
		Charge:       optional.OfInt(1),
		MinMass:      optional.OfFloat(1000),
		MaxMass:      optional.OfFloat(1001),
		MinRT:        optional.OfFloat(1000),
		MaxRT:        optional.OfFloat(1001),
		MinOOK0:      optional.OfFloat(1000),
		MaxOOK0:      optional.OfFloat(1001),
		MinIntensity: optional.OfFloat(1000),
		MaxIntensity: optional.OfFloat(1001),
	}
}

func midPoint(charge int) model.Point {
	return model.Point{
		Charge:    optional.OfInt(charge),
		Mass:      optional.OfFloat(1000.5),
		RT:        optional.OfFloat(1000.5),
		OOK0:      optional.OfFloat(1000.5),
		Intensity: optional.OfFloat(1000.5),
	}
}

// S1: empty store.
func TestS1EmptyStore(t *testing.T) {
	s := New()
	if s.IsExcluded(midPoint(2)) {
		t.Fatal("empty store must exclude nothing")
	}
	st := s.Stats()
	if st.Len != 0 || st.IDTableLen != 0 {
		t.Fatalf("expected zeroed stats, got %+v", st)
	}
}

// S2/S3/S4.
func TestS2S3S4(t *testing.T) {
	s := New()
	if err := s.Add(peptideInterval()); err != nil {
		t.Fatal(err)
	}

	if !s.IsExcluded(midPoint(1)) {
		t.Fatal("S2: matching charge should be excluded")
	}
	if s.IsExcluded(midPoint(2)) {
		t.Fatal("S2: mismatched charge should not be excluded")
	}

	got := s.QueryByPoint(model.Point{})
	if len(got) != 1 {
		t.Fatalf("S3: fully-null point query should return 1 interval, got %d", len(got))
	}

	if err := s.Add(peptideInterval()); err != nil {
		t.Fatal(err)
	}
	overlap := s.QueryByInterval(peptideInterval())
	if len(overlap) != 2 {
		t.Fatalf("S4: expected 2 overlapping intervals, got %d", len(overlap))
	}
	removed := s.Remove(peptideInterval())
	if len(removed) != 2 {
		t.Fatalf("S4: expected to remove 2, got %d", len(removed))
	}
	if s.Stats().Len != 0 {
		t.Fatalf("S4: expected empty store after removing both duplicates")
	}
}

func TestS5OffsetAppliedSeparately(t *testing.T) {
	// The store itself is offset-agnostic (§4.5's offset lives above the
	// store); this test exercises the same effect the HTTP adapter would
	// produce by pre-shifting the point before calling IsExcluded.
	s := New()
	if err := s.Add(peptideInterval()); err != nil {
		t.Fatal(err)
	}
	p := model.Point{
		Charge:    optional.OfInt(1),
		Mass:      optional.OfFloat(1000.0 + 0.5),
		RT:        optional.OfFloat(1000.5),
		OOK0:      optional.OfFloat(1000.5),
		Intensity: optional.OfFloat(1000.5),
	}
	if !s.IsExcluded(p) {
		t.Fatal("S5: offset-shifted point should be excluded")
	}
}

func TestS6SaveClearLoad(t *testing.T) {
	s := New()
	if err := s.Add(peptideInterval()); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "list.db")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if s.Stats().Len != 1 {
		t.Fatalf("expected 1 interval after load, got %d", s.Stats().Len)
	}
	if !s.IsExcluded(midPoint(1)) {
		t.Fatal("expected S2 query to still be excluded after save/clear/load")
	}
}

func TestAddRejectsNullID(t *testing.T) {
	s := New()
	iv := peptideInterval()
	iv.ID = optional.NoString
	if err := s.Add(iv); err == nil {
		t.Fatal("expected error adding interval with null id")
	}
}

func TestAddRejectsInvalidBounds(t *testing.T) {
	s := New()
	iv := peptideInterval()
	iv.MinMass, iv.MaxMass = optional.OfFloat(2000), optional.OfFloat(1000)
	if err := s.Add(iv); err == nil {
		t.Fatal("expected error adding interval with min > max")
	}
}

func TestRemoveInvertsAdd(t *testing.T) {
	s := New()
	iv := peptideInterval()
	if err := s.Add(iv); err != nil {
		t.Fatal(err)
	}
	n := s.Stats().Len
	removed := s.Remove(iv)
	if len(removed) != 1 || !removed[0].Equal(iv) {
		t.Fatalf("expected exactly one removed interval equal to iv, got %+v", removed)
	}
	if s.Stats().Len != n-1 {
		t.Fatalf("expected len to drop by 1")
	}
}

func TestClearIdempotent(t *testing.T) {
	s := New()
	_ = s.Add(peptideInterval())
	s.Clear()
	s.Clear()
	if s.Stats().Len != 0 || s.Stats().IDTableLen != 0 {
		t.Fatal("expected zeroed stats after repeated clear")
	}
}

func TestRemoveByIDOnlyDeletesAllMatching(t *testing.T) {
	s := New()
	_ = s.Add(peptideInterval())
	_ = s.Add(peptideInterval())
	other := peptideInterval()
	other.ID = optional.OfString("OTHER")
	_ = s.Add(other)

	removed := s.Remove(model.Interval{ID: optional.OfString("PEPTIDE")})
	if len(removed) != 2 {
		t.Fatalf("expected id-only remove to delete both PEPTIDE entries, got %d", len(removed))
	}
	if s.Stats().Len != 1 {
		t.Fatalf("expected 1 remaining interval, got %d", s.Stats().Len)
	}
}

func TestRemoveNaturalChargeRule(t *testing.T) {
	s := New()
	anonymousCharge := peptideInterval()
	anonymousCharge.Charge = optional.NoInt
	if err := s.Add(anonymousCharge); err != nil {
		t.Fatal(err)
	}
	q := model.Interval{ID: optional.OfString("PEPTIDE"), Charge: optional.OfInt(1)}
	if removed := s.Remove(q); len(removed) != 0 {
		t.Fatal("a query with a non-null charge must not remove a stored null-charge interval")
	}
}

func TestOpenMassIntervalMatchesEveryMass(t *testing.T) {
	s := New()
	open := model.Interval{ID: optional.OfString("ANY")}
	if err := s.Add(open); err != nil {
		t.Fatal(err)
	}
	if !s.IsExcluded(model.Point{Mass: optional.OfFloat(1e9)}) {
		t.Fatal("a fully mass-open interval should match any mass")
	}
}

func TestFullyNullPointExcludedIffStoreNonEmpty(t *testing.T) {
	s := New()
	if s.IsExcluded(model.Point{}) {
		t.Fatal("empty store: fully-null point must not be excluded")
	}
	_ = s.Add(peptideInterval())
	if !s.IsExcluded(model.Point{}) {
		t.Fatal("non-empty store: fully-null point must be excluded")
	}
}
