// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tolerance

import (
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
)

func TestBuildPPMWidth(t *testing.T) {
	p := model.Point{Charge: optional.OfInt(2), Mass: optional.OfFloat(1000)}
	cfg := Config{ExactCharge: true, MassTolerancePPM: optional.OfFloat(50)}

	iv, err := Build("PSM1", p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := iv.Charge.Get()
	if c != 2 {
		t.Fatalf("expected charge 2, got %d", c)
	}
	minMass, _ := iv.MinMass.Get()
	maxMass, _ := iv.MaxMass.Get()
	wantWidth := 1000 * 50 / 1e6
	if !floats.EqualWithinAbs(minMass, 1000-wantWidth, 1e-9) {
		t.Fatalf("min mass = %v, want %v", minMass, 1000-wantWidth)
	}
	if !floats.EqualWithinAbs(maxMass, 1000+wantWidth, 1e-9) {
		t.Fatalf("max mass = %v, want %v", maxMass, 1000+wantWidth)
	}
}

func TestBuildNoExactChargeLeavesChargeNull(t *testing.T) {
	p := model.Point{Charge: optional.OfInt(2), Mass: optional.OfFloat(1000)}
	cfg := Config{MassTolerancePPM: optional.OfFloat(50)}
	iv, err := Build("PSM1", p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := iv.Charge.Get(); ok {
		t.Fatal("expected charge to remain null when ExactCharge is false")
	}
}

func TestBuildAbsentToleranceLeavesDimensionUnbounded(t *testing.T) {
	p := model.Point{Mass: optional.OfFloat(1000), RT: optional.OfFloat(10)}
	cfg := Config{}
	iv, err := Build("X", p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := iv.MinMass.Get(); ok {
		t.Fatal("expected unbounded mass with no tolerance configured")
	}
	if _, ok := iv.MinRT.Get(); ok {
		t.Fatal("expected unbounded rt with no tolerance configured")
	}
}

func TestBuildNegativeToleranceFails(t *testing.T) {
	p := model.Point{Mass: optional.OfFloat(1000)}
	cfg := Config{MassTolerancePPM: optional.OfFloat(-5)}
	_, err := Build("X", p, cfg)
	if err == nil {
		t.Fatal("expected InvalidTolerance error for negative tolerance")
	}
}

func TestMassFromMZ(t *testing.T) {
	mz := 501.0036
	charge := 2
	mass := MassFromMZ(mz, charge)
	want := mz*float64(charge) - float64(charge)*protonMass
	if !floats.EqualWithinAbs(mass, want, 1e-9) {
		t.Fatalf("got %v, want %v", mass, want)
	}
}
