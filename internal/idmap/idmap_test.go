// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idmap

import (
	"testing"

	"github.com/pgarrett-scripps/exclusionms-go/internal/massindex"
)

func TestInsertGetDelete(t *testing.T) {
	m := New()
	m.Insert("A", massindex.Handle(1))
	m.Insert("A", massindex.Handle(2))
	m.Insert("B", massindex.Handle(3))

	if got := m.Get("A"); len(got) != 2 {
		t.Fatalf("expected 2 handles for A, got %v", got)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 distinct ids, got %d", m.Len())
	}

	if !m.Delete("A", massindex.Handle(1)) {
		t.Fatal("expected delete to report found")
	}
	if got := m.Get("A"); len(got) != 1 || got[0] != massindex.Handle(2) {
		t.Fatalf("expected only handle 2 left for A, got %v", got)
	}

	if m.Delete("A", massindex.Handle(1)) {
		t.Fatal("expected second delete of same handle to report not found")
	}
}

func TestDeleteLastHandleRemovesID(t *testing.T) {
	m := New()
	m.Insert("A", massindex.Handle(1))
	m.Delete("A", massindex.Handle(1))
	if m.Len() != 0 {
		t.Fatal("expected id to be pruned once its handle set is empty")
	}
	if got := m.Get("A"); got != nil {
		t.Fatalf("expected nil for absent id, got %v", got)
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.Insert("A", massindex.Handle(1))
	m.Clear()
	if m.Len() != 0 {
		t.Fatal("expected empty map after Clear")
	}
}
