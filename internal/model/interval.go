// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the exclusion data model: intervals, query points
// and the containment/overlap predicates that bind them together.
package model

import "github.com/pgarrett-scripps/exclusionms-go/internal/optional"

// Interval is a rectangle in up to five dimensions: charge, mass, retention
// time, ion mobility (ook0) and intensity, identified by an optional id.
//
// Any bound pair may be partially or fully absent; an absent bound is
// treated as unbounded in that direction (§3 of the specification this
// package implements).
type Interval struct {
	ID optional.String `json:"interval_id"`

	Charge optional.Int `json:"charge"`

	MinMass optional.Float `json:"min_mass"`
	MaxMass optional.Float `json:"max_mass"`

	MinRT optional.Float `json:"min_rt"`
	MaxRT optional.Float `json:"max_rt"`

	MinOOK0 optional.Float `json:"min_ook0"`
	MaxOOK0 optional.Float `json:"max_ook0"`

	MinIntensity optional.Float `json:"min_intensity"`
	MaxIntensity optional.Float `json:"max_intensity"`
}

// Point is a candidate precursor ion to test against the store.
type Point struct {
	Charge    optional.Int   `json:"charge"`
	Mass      optional.Float `json:"mass"`
	RT        optional.Float `json:"rt"`
	OOK0      optional.Float `json:"ook0"`
	Intensity optional.Float `json:"intensity"`
}

// boundsValid reports whether min <= max for any pair where both are
// present; an absent bound never violates validity.
func boundsValid(min, max optional.Float) bool {
	minV, minOK := min.Get()
	maxV, maxOK := max.Get()
	if minOK && maxOK {
		return minV <= maxV
	}
	return true
}

// Valid reports whether every present (min, max) pair on i satisfies
// min <= max. It does not check that i.ID is present; callers that require
// a non-null id (e.g. Add) must check that separately.
func (i Interval) Valid() bool {
	return boundsValid(i.MinMass, i.MaxMass) &&
		boundsValid(i.MinRT, i.MaxRT) &&
		boundsValid(i.MinOOK0, i.MaxOOK0) &&
		boundsValid(i.MinIntensity, i.MaxIntensity)
}

// dimContains reports whether value v is contained in [min, max], with an
// absent bound extending to the corresponding infinity, and an absent v
// treated as a wildcard matching the whole dimension.
func dimContains(min, max, v optional.Float) bool {
	val, ok := v.Get()
	if !ok {
		return true
	}
	if minV, minOK := min.Get(); minOK && val < minV {
		return false
	}
	if maxV, maxOK := max.Get(); maxOK && val > maxV {
		return false
	}
	return true
}

// chargeContains implements the charge special case: contained iff either
// side is absent, or they are equal.
func chargeContains(ivCharge, ptCharge optional.Int) bool {
	iv, ivOK := ivCharge.Get()
	pt, ptOK := ptCharge.Get()
	if !ivOK || !ptOK {
		return true
	}
	return iv == pt
}

// Contains reports whether p lies inside i under the null-as-wildcard rule
// of §3: every dimension must be contained, where a dimension is contained
// if the bound pair is fully open, the point value is absent, or the point
// value lies within the (possibly half-open) bound.
func (i Interval) Contains(p Point) bool {
	return chargeContains(i.Charge, p.Charge) &&
		dimContains(i.MinMass, i.MaxMass, p.Mass) &&
		dimContains(i.MinRT, i.MaxRT, p.RT) &&
		dimContains(i.MinOOK0, i.MaxOOK0, p.OOK0) &&
		dimContains(i.MinIntensity, i.MaxIntensity, p.Intensity)
}

// rangesOverlap reports whether [aMin, aMax] and [bMin, bMax] overlap, with
// absent bounds extending to the corresponding infinity.
func rangesOverlap(aMin, aMax, bMin, bMax optional.Float) bool {
	if aMinV, ok := aMin.Get(); ok {
		if bMaxV, ok := bMax.Get(); ok && aMinV > bMaxV {
			return false
		}
	}
	if bMinV, ok := bMin.Get(); ok {
		if aMaxV, ok := aMax.Get(); ok && bMinV > aMaxV {
			return false
		}
	}
	return true
}

// chargesOverlap reports whether two interval charges can coexist: equal,
// or at least one absent.
func chargesOverlap(a, b optional.Int) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return true
	}
	return av == bv
}

// Overlaps reports whether i and q overlap under the rule used by
// QueryByInterval: every dimension's projected range overlaps, and charges
// are equal or at least one is absent. This relation is symmetric.
func (i Interval) Overlaps(q Interval) bool {
	return chargesOverlap(i.Charge, q.Charge) &&
		rangesOverlap(i.MinMass, i.MaxMass, q.MinMass, q.MaxMass) &&
		rangesOverlap(i.MinRT, i.MaxRT, q.MinRT, q.MaxRT) &&
		rangesOverlap(i.MinOOK0, i.MaxOOK0, q.MinOOK0, q.MaxOOK0) &&
		rangesOverlap(i.MinIntensity, i.MaxIntensity, q.MinIntensity, q.MaxIntensity)
}

// rangeContainedIn reports whether inner is contained in outer on one
// dimension, where an absent outer bound is unbounded and an absent inner
// bound is only contained by an equally absent (i.e. also unbounded) outer
// bound.
func rangeContainedIn(innerMin, innerMax, outerMin, outerMax optional.Float) bool {
	if outerMinV, ok := outerMin.Get(); ok {
		innerMinV, innerOK := innerMin.Get()
		if !innerOK || innerMinV < outerMinV {
			return false
		}
	}
	if outerMaxV, ok := outerMax.Get(); ok {
		innerMaxV, innerOK := innerMax.Get()
		if !innerOK || innerMaxV > outerMaxV {
			return false
		}
	}
	return true
}

// MatchesQuery reports whether i matches the removal/selection query q, as
// used by Remove (§4.4): q's non-null id must equal i's id, q's non-null
// charge must equal a non-null i.Charge (the "natural rule" resolution of
// the open question in §9 — a query charge never matches an anonymous
// stored charge), and every numeric dimension of i must be contained in
// q's corresponding bound.
func (i Interval) MatchesQuery(q Interval) bool {
	if qid, ok := q.ID.Get(); ok {
		if iid, iok := i.ID.Get(); !iok || iid != qid {
			return false
		}
	}
	if qc, ok := q.Charge.Get(); ok {
		if ic, iok := i.Charge.Get(); !iok || ic != qc {
			return false
		}
	}
	return rangeContainedIn(i.MinMass, i.MaxMass, q.MinMass, q.MaxMass) &&
		rangeContainedIn(i.MinRT, i.MaxRT, q.MinRT, q.MaxRT) &&
		rangeContainedIn(i.MinOOK0, i.MaxOOK0, q.MinOOK0, q.MaxOOK0) &&
		rangeContainedIn(i.MinIntensity, i.MaxIntensity, q.MinIntensity, q.MaxIntensity)
}

// Equal reports whether i and o are logically identical records. The
// store and mass index do not use it: they remove entries by handle.
func (i Interval) Equal(o Interval) bool {
	return i.ID == o.ID &&
		i.Charge == o.Charge &&
		i.MinMass == o.MinMass && i.MaxMass == o.MaxMass &&
		i.MinRT == o.MinRT && i.MaxRT == o.MaxRT &&
		i.MinOOK0 == o.MinOOK0 && i.MaxOOK0 == o.MaxOOK0 &&
		i.MinIntensity == o.MinIntensity && i.MaxIntensity == o.MaxIntensity
}
