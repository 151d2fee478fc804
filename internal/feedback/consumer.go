// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feedback is the validate-then-derive-then-add pipeline driven
// by the search-feedback stream (SPEC_FULL.md's "additional supplemented
// features": mirrors original_source/exclusionms/consumer.py's
// ExclusionListWorker). The message-broker wiring itself (Kafka, schema
// registry) is out of scope per spec.md §1; this package only consumes
// already-decoded records off a Go channel and calls Store.Add through
// the same entry point the HTTP adapter uses, per spec.md §9's
// concurrency re-architecture note — there is no separate, lock-free path
// into the store.
package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
	"github.com/pgarrett-scripps/exclusionms-go/internal/store"
	"github.com/pgarrett-scripps/exclusionms-go/internal/tolerance"
)

// PSM is one decoded peptide-spectrum-match record as the feedback
// stream would deliver it (message.value in consumer.py), minus the
// broker envelope. Field tags match the source's wire keys
// (mono_mz/charge/rt/ooK0/ms2_id) so a PSM can be decoded directly from
// an NDJSON feedback stream.
type PSM struct {
	MS2ID  string         `json:"ms2_id"`
	MonoMZ optional.Float `json:"mono_mz"`
	Charge optional.Int   `json:"charge"`
	RT     optional.Float `json:"rt"`
	OOK0   optional.Float `json:"ooK0"`
}

// valid reports whether psm carries every field the exclusion interval
// needs, matching consumer.py's four "is None or == 0" guards exactly
// (zero is treated as missing here too, unlike the rest of this module,
// because that is what the source being mirrored does for this one
// path).
func valid(psm PSM) bool {
	if mz, ok := psm.MonoMZ.Get(); !ok || mz == 0 {
		return false
	}
	if c, ok := psm.Charge.Get(); !ok || c == 0 {
		return false
	}
	if rt, ok := psm.RT.Get(); !ok || rt == 0 {
		return false
	}
	if k0, ok := psm.OOK0.Get(); !ok || k0 == 0 {
		return false
	}
	return true
}

// Consumer derives an ExclusionInterval from each valid PSM and adds it
// to Store under UID-scoped ids ("<uid>_<ms2_id>", as consumer.py does).
type Consumer struct {
	Store     *store.Store
	UID       string
	Tolerance tolerance.Config
	Log       *slog.Logger
}

// Process validates psm and, if valid, derives and adds its exclusion
// interval. An invalid psm is silently skipped, matching the source's
// `continue` guards; it is not an error.
func (c *Consumer) Process(psm PSM) error {
	if !valid(psm) {
		return nil
	}

	mz, _ := psm.MonoMZ.Get()
	charge, _ := psm.Charge.Get()
	mass := tolerance.MassFromMZ(mz, charge)

	point := model.Point{
		Charge: psm.Charge,
		Mass:   optional.OfFloat(mass),
		RT:     psm.RT,
		OOK0:   psm.OOK0,
	}
	id := fmt.Sprintf("%s_%s", c.UID, psm.MS2ID)
	iv, err := tolerance.Build(id, point, c.Tolerance)
	if err != nil {
		return err
	}
	return c.Store.Add(iv)
}

// Run drains messages until ctx is cancelled or the channel closes,
// logging and continuing past any per-message error rather than
// terminating the whole consumer, matching consumer.py's outer
// try/except around the entire for-loop.
func (c *Consumer) Run(ctx context.Context, messages <-chan PSM) {
	logger := c.Log
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case psm, ok := <-messages:
			if !ok {
				return
			}
			if err := c.Process(psm); err != nil {
				logger.Error("feedback: failed to add interval", "ms2_id", psm.MS2ID, "err", err)
			}
		}
	}
}
