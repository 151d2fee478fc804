// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package massindex implements the mass-interval index: an augmented
// balanced BST keyed on min_mass, each node carrying the maximum max_mass
// of its subtree, so point-stab and range-overlap queries run in
// O(log n + k). It is the idiomatic-Go analogue of the teacher's use of
// github.com/biogo/store/interval's IntTree (an augmented BST with an
// Insert/Get/Delete/AdjustRanges, ID/Range/Overlap vocabulary seen in
// cmd/ins/main.go's cullContained and cmd/cull/main.go): that type is
// keyed on int genomic coordinates, so this package reimplements the same
// augmented-BST contract over float64 mass instead of importing it.
//
// Balance comes from treap priorities rather than red-black/AVL rotations,
// which keeps deletion of one specific multiset entry (as opposed to every
// entry with a given key) a matter of an ordinary treap merge.
package massindex

import "math/rand"

// Handle identifies one inserted range. It is opaque to the tree; the
// caller (the exclusion store) uses it as a slab index into its own
// interval records.
type Handle int

type node struct {
	min, max    float64
	subtreeMax  float64
	handle      Handle
	priority    uint64
	left, right *node
}

// Tree is a mass-interval index. The zero value is an empty tree.
type Tree struct {
	root *node
	locs map[Handle]float64 // handle -> min, for O(1)-routed deletes
	rng  *rand.Rand
	size int
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{
		locs: make(map[Handle]float64),
		rng:  rand.New(rand.NewSource(1)),
	}
}

// Len reports the number of ranges currently stored.
func (t *Tree) Len() int { return t.size }

func (t *Tree) nextPriority() uint64 {
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(1))
	}
	return t.rng.Uint64()
}

// Insert adds the range [min, max] under handle. min and max may be
// math.Inf(-1)/math.Inf(1) to represent an unbounded side; duplicate
// ranges (including duplicate handles, though callers should not do that)
// are permitted.
func (t *Tree) Insert(min, max float64, h Handle) {
	if t.locs == nil {
		t.locs = make(map[Handle]float64)
	}
	n := &node{min: min, max: max, subtreeMax: max, handle: h, priority: t.nextPriority()}
	t.root = insert(t.root, n)
	t.locs[h] = min
	t.size++
}

func insert(root, n *node) *node {
	if root == nil {
		return n
	}
	if n.min <= root.min {
		root.left = insert(root.left, n)
		if root.left.priority > root.priority {
			root = rotateRight(root)
		}
	} else {
		root.right = insert(root.right, n)
		if root.right.priority > root.priority {
			root = rotateLeft(root)
		}
	}
	update(root)
	return root
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	update(y)
	update(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	update(x)
	update(y)
	return y
}

func update(n *node) {
	m := n.max
	if n.left != nil && n.left.subtreeMax > m {
		m = n.left.subtreeMax
	}
	if n.right != nil && n.right.subtreeMax > m {
		m = n.right.subtreeMax
	}
	n.subtreeMax = m
}

// Delete removes the single entry previously inserted under h. It reports
// whether an entry was found and removed.
func (t *Tree) Delete(h Handle) bool {
	min, ok := t.locs[h]
	if !ok {
		return false
	}
	var removed bool
	t.root, removed = deleteHandle(t.root, min, h)
	if removed {
		delete(t.locs, h)
		t.size--
	}
	return removed
}

func deleteHandle(n *node, min float64, h Handle) (*node, bool) {
	if n == nil {
		return nil, false
	}
	if n.handle == h && n.min == min {
		return merge(n.left, n.right), true
	}
	var removed bool
	switch {
	case min < n.min:
		n.left, removed = deleteHandle(n.left, min, h)
	case min > n.min:
		n.right, removed = deleteHandle(n.right, min, h)
	default:
		// Rotations can leave equal keys on either side.
		n.left, removed = deleteHandle(n.left, min, h)
		if !removed {
			n.right, removed = deleteHandle(n.right, min, h)
		}
	}
	if removed {
		update(n)
	}
	return n, removed
}

func merge(left, right *node) *node {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	case left.priority > right.priority:
		left.right = merge(left.right, right)
		update(left)
		return left
	default:
		right.left = merge(left, right.left)
		update(right)
		return right
	}
}

// Query returns the handles of every stored range that overlaps [a, b].
// A stabbing query at point m is Query(m, m).
func (t *Tree) Query(a, b float64) []Handle {
	var out []Handle
	query(t.root, a, b, &out)
	return out
}

func query(n *node, a, b float64, out *[]Handle) {
	if n == nil {
		return
	}
	if n.left != nil && n.left.subtreeMax >= a {
		query(n.left, a, b, out)
	}
	if n.min <= b && n.max >= a {
		*out = append(*out, n.handle)
	}
	if n.min <= b {
		query(n.right, a, b, out)
	}
}

// Stab returns the handles of every stored range containing m.
func (t *Tree) Stab(m float64) []Handle {
	return t.Query(m, m)
}
