// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optional provides explicit presence-or-absence wrapper types for
// the exclusion data model. The source this package is derived from uses
// null as a single sentinel for "no bound" and "no value known"; rather
// than reproduce that with magic floats (NaN, ±Inf), each optional field
// here is a small struct carrying its own presence flag.
package optional

import "encoding/json"

// Float is a float64 that may be absent.
type Float struct {
	Value   float64
	Present bool
}

// NoFloat is the absent Float value.
var NoFloat = Float{}

// OfFloat returns a present Float wrapping v.
func OfFloat(v float64) Float { return Float{Value: v, Present: true} }

// Get returns the wrapped value and whether it is present.
func (f Float) Get() (float64, bool) { return f.Value, f.Present }

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float{Value: v, Present: true}
	return nil
}

// Int is an int that may be absent.
type Int struct {
	Value   int
	Present bool
}

var NoInt = Int{}

func OfInt(v int) Int { return Int{Value: v, Present: true} }

func (i Int) Get() (int, bool) { return i.Value, i.Present }

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Present {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

func (i *Int) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Int{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = Int{Value: v, Present: true}
	return nil
}

// String is a string that may be absent (as opposed to present-and-empty).
type String struct {
	Value   string
	Present bool
}

var NoString = String{}

func OfString(v string) String { return String{Value: v, Present: true} }

func (s String) Get() (string, bool) { return s.Value, s.Present }

func (s String) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *String) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = String{}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = String{Value: v, Present: true}
	return nil
}
