// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the error kinds that cross the exclusion store's
// boundary (§7 of the specification). These are kinds, not a single
// sentinel type, so the HTTP adapter can map each to a status class with
// errors.As.
package errs

import "fmt"

// InvalidInterval reports a min > max bound somewhere, or Add called with
// a null id.
type InvalidInterval struct {
	Reason string
}

func (e *InvalidInterval) Error() string { return fmt.Sprintf("invalid interval: %s", e.Reason) }

// NotFound reports that a persisted store name does not exist.
type NotFound struct {
	Name string
}

func (e *NotFound) Error() string { return fmt.Sprintf("not found: %s", e.Name) }

// PersistenceError reports an I/O or decode failure during Save/Load. The
// live store is guaranteed unchanged when this is returned from Load.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InvalidTolerance reports a negative tolerance passed to the tolerance
// builder.
type InvalidTolerance struct {
	Field string
	Value float64
}

func (e *InvalidTolerance) Error() string {
	return fmt.Sprintf("invalid tolerance: %s = %v must be >= 0", e.Field, e.Value)
}
