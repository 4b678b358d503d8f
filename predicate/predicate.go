// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package predicate evaluates range predicates over column data read
// through the metadata layer's blocks.
package predicate

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Compare returns -1, 0, or +1 depending on whether a is less than,
// equal to, or greater than b. Cells are compared in their encoded
// form.
type Compare func(a, b []byte) int

// ValueRange is a range of cell values, inclusive on both ends. A nil
// bound leaves the range open on that end; a range must be bounded on
// at least one end.
type ValueRange struct {
	cmp   Compare
	lower []byte
	upper []byte
}

// NewValueRange constructs a value range over cells ordered by cmp.
func NewValueRange(cmp Compare, lower, upper []byte) (ValueRange, error) {
	if lower == nil && upper == nil {
		return ValueRange{}, errors.AssertionFailedf("predicate: value range must be bounded on at least one end")
	}
	return ValueRange{cmp: cmp, lower: lower, upper: upper}, nil
}

// HasLowerBound reports whether the range is bounded below.
func (r ValueRange) HasLowerBound() bool { return r.lower != nil }

// HasUpperBound reports whether the range is bounded above.
func (r ValueRange) HasUpperBound() bool { return r.upper != nil }

// LowerBound returns the inclusive lower bound, or nil.
func (r ValueRange) LowerBound() []byte { return r.lower }

// UpperBound returns the inclusive upper bound, or nil.
func (r ValueRange) UpperBound() []byte { return r.upper }

// ContainsCell reports whether the encoded cell is within the range.
func (r ValueRange) ContainsCell(cell []byte) bool {
	if r.lower != nil && r.cmp(cell, r.lower) < 0 {
		return false
	}
	if r.upper != nil && r.cmp(cell, r.upper) > 0 {
		return false
	}
	return true
}

// EncodedKeyRange specifies bounds over encoded primary keys,
// inclusive on both ends. A nil bound leaves the range open on that
// end.
type EncodedKeyRange struct {
	cmp   Compare
	lower []byte
	upper []byte
}

// NewEncodedKeyRange constructs a key range over keys ordered by cmp.
func NewEncodedKeyRange(cmp Compare, lower, upper []byte) EncodedKeyRange {
	return EncodedKeyRange{cmp: cmp, lower: lower, upper: upper}
}

// ContainsKey reports whether the encoded key is within the range.
func (r EncodedKeyRange) ContainsKey(key []byte) bool {
	if r.lower != nil && r.cmp(key, r.lower) < 0 {
		return false
	}
	if r.upper != nil && r.cmp(key, r.upper) > 0 {
		return false
	}
	return true
}

// ColumnRangePredicate passes rows whose value for a given column is
// within a value range.
type ColumnRangePredicate struct {
	colIdx int
	rng    ValueRange
}

// NewColumnRangePredicate constructs a predicate over the column at
// colIdx.
func NewColumnRangePredicate(colIdx int, rng ValueRange) ColumnRangePredicate {
	return ColumnRangePredicate{colIdx: colIdx, rng: rng}
}

// ColumnIndex returns the schema index of the predicated column.
func (p ColumnRangePredicate) ColumnIndex() int { return p.colIdx }

// Range returns the value range for which this predicate passes.
func (p ColumnRangePredicate) Range() ValueRange { return p.rng }

// Evaluate applies the predicate to a column of encoded cells,
// AND-ing the result into sel: wherever the predicate evaluates false
// the corresponding bit is cleared, and bits that are already clear
// are skipped without evaluating.
func (p ColumnRangePredicate) Evaluate(cells [][]byte, sel *SelectionVector) error {
	if len(cells) != sel.Len() {
		return errors.AssertionFailedf("predicate: %d cells against selection vector of length %d",
			len(cells), sel.Len())
	}
	for i, cell := range cells {
		if !sel.IsSet(i) {
			continue
		}
		if !p.rng.ContainsCell(cell) {
			sel.Clear(i)
		}
	}
	return nil
}

// String returns a human-readable description of the predicate.
func (p ColumnRangePredicate) String() string {
	return fmt.Sprintf("column %d in [%q, %q]", p.colIdx, p.rng.LowerBound(), p.rng.UpperBound())
}
