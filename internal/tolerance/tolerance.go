// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tolerance builds an ExclusionInterval centered on a point, given
// a tolerance configuration (§4.3 of the specification).
package tolerance

import (
	"github.com/pgarrett-scripps/exclusionms-go/internal/errs"
	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
)

// protonMass is the mass of a proton in daltons, used to derive a neutral
// mass from an observed m/z and charge: mass = mz*charge - charge*protonMass.
// Matches the constant used by the source's feedback consumer.
const protonMass = 1.00727646688

// Config is a tolerance configuration: each tolerance is optional (absent
// leaves the corresponding dimension unbounded) and must be non-negative.
type Config struct {
	ExactCharge bool

	MassTolerancePPM   optional.Float
	RTTolerance        optional.Float
	OOK0Tolerance      optional.Float
	IntensityTolerance optional.Float
}

// Validate reports InvalidTolerance if any present tolerance is negative.
func (c Config) Validate() error {
	for name, v := range map[string]optional.Float{
		"mass_tolerance":      c.MassTolerancePPM,
		"rt_tolerance":        c.RTTolerance,
		"ook0_tolerance":      c.OOK0Tolerance,
		"intensity_tolerance": c.IntensityTolerance,
	} {
		if val, ok := v.Get(); ok && val < 0 {
			return &errs.InvalidTolerance{Field: name, Value: val}
		}
	}
	return nil
}

// symmetric returns (center-width, center+width) as present bounds, or
// (absent, absent) if width is absent.
func symmetric(center float64, width optional.Float) (optional.Float, optional.Float) {
	w, ok := width.Get()
	if !ok {
		return optional.NoFloat, optional.NoFloat
	}
	return optional.OfFloat(center - w), optional.OfFloat(center + w)
}

// relativeWidth returns width = magnitude * fraction as a present optional,
// or absent if fraction is absent.
func relativeWidth(magnitude float64, fraction optional.Float) optional.Float {
	f, ok := fraction.Get()
	if !ok {
		return optional.NoFloat
	}
	return optional.OfFloat(magnitude * f)
}

// Build derives an ExclusionInterval centered on p using c. id becomes the
// resulting interval's id. It returns InvalidTolerance if c has a negative
// tolerance.
func Build(id string, p model.Point, c Config) (model.Interval, error) {
	if err := c.Validate(); err != nil {
		return model.Interval{}, err
	}

	iv := model.Interval{ID: optional.OfString(id)}

	if c.ExactCharge {
		iv.Charge = p.Charge
	}

	if mass, ok := p.Mass.Get(); ok {
		ppmWidth := relativeWidth(mass, scalePPM(c.MassTolerancePPM))
		iv.MinMass, iv.MaxMass = symmetric(mass, ppmWidth)
	}
	if rt, ok := p.RT.Get(); ok {
		iv.MinRT, iv.MaxRT = symmetric(rt, c.RTTolerance)
	}
	if ook0, ok := p.OOK0.Get(); ok {
		iv.MinOOK0, iv.MaxOOK0 = symmetric(ook0, relativeWidth(ook0, c.OOK0Tolerance))
	}
	if intensity, ok := p.Intensity.Get(); ok {
		iv.MinIntensity, iv.MaxIntensity = symmetric(intensity, relativeWidth(intensity, c.IntensityTolerance))
	}

	return iv, nil
}

// scalePPM converts a ppm tolerance into the fraction relativeWidth
// expects (ppm / 1e6).
func scalePPM(ppm optional.Float) optional.Float {
	v, ok := ppm.Get()
	if !ok {
		return optional.NoFloat
	}
	return optional.OfFloat(v / 1e6)
}

// MassFromMZ derives the neutral monoisotopic mass from an observed m/z
// and charge, as the feedback consumer does: mass = mz*charge -
// charge*protonMass.
func MassFromMZ(mz float64, charge int) float64 {
	return mz*float64(charge) - float64(charge)*protonMass
}
