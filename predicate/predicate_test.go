// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package predicate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueRangeBounds(t *testing.T) {
	_, err := NewValueRange(bytes.Compare, nil, nil)
	require.Error(t, err)

	r, err := NewValueRange(bytes.Compare, []byte("b"), nil)
	require.NoError(t, err)
	require.True(t, r.HasLowerBound())
	require.False(t, r.HasUpperBound())
	require.False(t, r.ContainsCell([]byte("a")))
	require.True(t, r.ContainsCell([]byte("b")))
	require.True(t, r.ContainsCell([]byte("zzz")))

	r, err = NewValueRange(bytes.Compare, nil, []byte("m"))
	require.NoError(t, err)
	require.True(t, r.ContainsCell([]byte("a")))
	require.True(t, r.ContainsCell([]byte("m")))
	require.False(t, r.ContainsCell([]byte("n")))

	r, err = NewValueRange(bytes.Compare, []byte("b"), []byte("d"))
	require.NoError(t, err)
	for _, tc := range []struct {
		cell []byte
		want bool
	}{
		{[]byte("a"), false},
		{[]byte("b"), true},
		{[]byte("c"), true},
		{[]byte("d"), true},
		{[]byte("e"), false},
	} {
		require.Equal(t, tc.want, r.ContainsCell(tc.cell), "cell %q", tc.cell)
	}
}

func TestEncodedKeyRange(t *testing.T) {
	r := NewEncodedKeyRange(bytes.Compare, nil, nil)
	require.True(t, r.ContainsKey([]byte("anything")))

	r = NewEncodedKeyRange(bytes.Compare, []byte("k2"), []byte("k5"))
	require.False(t, r.ContainsKey([]byte("k1")))
	require.True(t, r.ContainsKey([]byte("k2")))
	require.True(t, r.ContainsKey([]byte("k5")))
	require.False(t, r.ContainsKey([]byte("k6")))
}

func TestColumnRangePredicateEvaluate(t *testing.T) {
	rng, err := NewValueRange(bytes.Compare, []byte("b"), []byte("d"))
	require.NoError(t, err)
	p := NewColumnRangePredicate(1, rng)
	require.Equal(t, 1, p.ColumnIndex())

	cells := [][]byte{
		[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e"),
	}
	sel := NewSelectionVector(len(cells))
	require.NoError(t, p.Evaluate(cells, sel))
	require.Equal(t, 3, sel.CountSelected())
	require.False(t, sel.IsSet(0))
	require.True(t, sel.IsSet(1))
	require.True(t, sel.IsSet(3))
	require.False(t, sel.IsSet(4))
}

func TestColumnRangePredicateEvaluateANDs(t *testing.T) {
	cells := [][]byte{
		[]byte("a"), []byte("b"), []byte("c"), []byte("d"),
	}
	sel := NewSelectionVector(len(cells))

	rng, err := NewValueRange(bytes.Compare, []byte("b"), nil)
	require.NoError(t, err)
	require.NoError(t, NewColumnRangePredicate(0, rng).Evaluate(cells, sel))
	require.Equal(t, 3, sel.CountSelected())

	rng, err = NewValueRange(bytes.Compare, nil, []byte("c"))
	require.NoError(t, err)
	require.NoError(t, NewColumnRangePredicate(0, rng).Evaluate(cells, sel))
	require.Equal(t, 2, sel.CountSelected())
	require.True(t, sel.IsSet(1))
	require.True(t, sel.IsSet(2))

	// A cleared row stays cleared even if a later predicate would pass it.
	require.NoError(t, NewColumnRangePredicate(0, rng).Evaluate(cells, sel))
	require.False(t, sel.IsSet(0))
}

func TestColumnRangePredicateLengthMismatch(t *testing.T) {
	rng, err := NewValueRange(bytes.Compare, []byte("a"), nil)
	require.NoError(t, err)
	p := NewColumnRangePredicate(0, rng)
	err = p.Evaluate(make([][]byte, 3), NewSelectionVector(4))
	require.Error(t, err)
}

func TestSelectionVector(t *testing.T) {
	sv := NewSelectionVector(10)
	require.Equal(t, 10, sv.Len())
	require.Equal(t, 10, sv.CountSelected())
	require.True(t, sv.AnySelected())

	sv.Clear(3)
	require.False(t, sv.IsSet(3))
	require.Equal(t, 9, sv.CountSelected())
	sv.Set(3)
	require.Equal(t, 10, sv.CountSelected())

	sv.ClearAll()
	require.False(t, sv.AnySelected())
	require.Equal(t, 0, sv.CountSelected())

	// Setting the last row only must not leak into the tail bits.
	sv.Set(9)
	require.True(t, sv.AnySelected())
	require.Equal(t, 1, sv.CountSelected())

	sv.ClearAll()
	sv.SetAll()
	require.Equal(t, 10, sv.CountSelected())
}

func TestSelectionVectorTailBits(t *testing.T) {
	for _, n := range []int{1, 7, 8, 9, 63, 64, 65} {
		sv := NewSelectionVector(n)
		require.Equal(t, n, sv.CountSelected(), "n=%d", n)
		for i := 0; i < n; i++ {
			sv.Clear(i)
		}
		require.False(t, sv.AnySelected(), "n=%d", n)
	}
}
