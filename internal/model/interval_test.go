// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"testing"

	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
)

func peptideInterval() Interval {
	return Interval{
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

func TestValid(t *testing.T) {
	iv := peptideInterval()
	if !iv.Valid() {
		t.Fatal("expected valid interval")
	}
	iv.MinMass, iv.MaxMass = optional.OfFloat(1002), optional.OfFloat(1001)
	if iv.Valid() {
		t.Fatal("expected invalid interval (min > max)")
	}
}

func TestContainsS2(t *testing.T) {
	iv := peptideInterval()
	in := Point{
		Charge:    optional.OfInt(1),
		Mass:      optional.OfFloat(1000.5),
		RT:        optional.OfFloat(1000.5),
		OOK0:      optional.OfFloat(1000.5),
		Intensity: optional.OfFloat(1000.5),
	}
	if !iv.Contains(in) {
		t.Fatal("expected point to be contained")
	}
	out := in
	out.Charge = optional.OfInt(2)
	if iv.Contains(out) {
		t.Fatal("expected mismatched charge to be excluded")
	}
}

func TestContainsFullyNullPoint(t *testing.T) {
	iv := peptideInterval()
	if !iv.Contains(Point{}) {
		t.Fatal("fully-null point must be contained by any interval (wildcard)")
	}
}

func TestOverlapsCommutative(t *testing.T) {
	a := peptideInterval()
	b := Interval{MinMass: optional.OfFloat(1000.5), MaxMass: optional.OfFloat(2000)}
	if a.Overlaps(b) != b.Overlaps(a) {
		t.Fatal("overlap must be symmetric")
	}
	if !a.Overlaps(b) {
		t.Fatal("expected overlap")
	}
}

func TestMatchesQueryNaturalChargeRule(t *testing.T) {
	stored := Interval{ID: optional.OfString("X")} // null charge
	query := Interval{ID: optional.OfString("X"), Charge: optional.OfInt(2)}
	if stored.MatchesQuery(query) {
		t.Fatal("query with non-null charge must not match a stored null charge")
	}
}

func TestMatchesQueryIDOnly(t *testing.T) {
	stored := peptideInterval()
	q := Interval{ID: optional.OfString("PEPTIDE")}
	if !stored.MatchesQuery(q) {
		t.Fatal("id-only query with no numeric bounds should match by id alone")
	}
}

func TestQueryMonotonicity(t *testing.T) {
	stored := peptideInterval()
	narrow := Interval{MinMass: optional.OfFloat(1000), MaxMass: optional.OfFloat(1001)}
	wide := Interval{MinMass: optional.OfFloat(0), MaxMass: optional.OfFloat(2000)}
	wider := Interval{}
	if !stored.Overlaps(narrow) {
		t.Fatal("expected overlap with narrow query")
	}
	if !stored.Overlaps(wide) {
		t.Fatal("widening must not lose overlap")
	}
	if !stored.Overlaps(wider) {
		t.Fatal("fully open query must overlap everything")
	}
}
