// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package predicate

// SelectionVector is a bitmap with one bit per row of a block,
// recording which rows pass the predicates evaluated so far.
type SelectionVector struct {
	n    int
	bits []byte
}

// NewSelectionVector returns a selection vector of length n with every
// row selected.
func NewSelectionVector(n int) *SelectionVector {
	sv := &SelectionVector{n: n, bits: make([]byte, (n+7)/8)}
	sv.SetAll()
	return sv
}

// Len returns the number of rows covered by the vector.
func (sv *SelectionVector) Len() int { return sv.n }

// IsSet reports whether row i is selected.
func (sv *SelectionVector) IsSet(i int) bool {
	return sv.bits[i>>3]&(1<<(uint(i)&7)) != 0
}

// Set marks row i as selected.
func (sv *SelectionVector) Set(i int) {
	sv.bits[i>>3] |= 1 << (uint(i) & 7)
}

// Clear marks row i as not selected.
func (sv *SelectionVector) Clear(i int) {
	sv.bits[i>>3] &^= 1 << (uint(i) & 7)
}

// SetAll selects every row.
func (sv *SelectionVector) SetAll() {
	for i := range sv.bits {
		sv.bits[i] = 0xff
	}
	sv.clearTail()
}

// ClearAll deselects every row.
func (sv *SelectionVector) ClearAll() {
	for i := range sv.bits {
		sv.bits[i] = 0
	}
}

// CountSelected returns the number of selected rows.
func (sv *SelectionVector) CountSelected() int {
	count := 0
	for i := 0; i < sv.n; i++ {
		if sv.IsSet(i) {
			count++
		}
	}
	return count
}

// AnySelected reports whether at least one row is selected.
func (sv *SelectionVector) AnySelected() bool {
	for _, b := range sv.bits {
		if b != 0 {
			return true
		}
	}
	return false
}

// clearTail zeroes the bits past n in the final byte so that
// AnySelected never reports phantom rows.
func (sv *SelectionVector) clearTail() {
	if rem := sv.n & 7; rem != 0 {
		sv.bits[len(sv.bits)-1] &= 1<<uint(rem) - 1
	}
}
