// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blockstore

import (
	"io"
	"testing"

	"github.com/ctabledb/ctable/internal/base"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	return map[string]Store{
		"mem": NewMem(),
		"file": func() Store {
			s, err := OpenFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		}(),
	}
}

func TestStoreBasic(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			w, id, err := store.CreateBlock()
			require.NoError(t, err)
			require.False(t, id.IsNull())
			_, err = io.WriteString(w, "hello")
			require.NoError(t, err)
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			ok, err := store.BlockExists(id)
			require.NoError(t, err)
			require.True(t, ok)

			b, err := ReadBlock(store, id)
			require.NoError(t, err)
			require.Equal(t, "hello", string(b))

			require.NoError(t, store.RemoveBlock(id))
			ok, err = store.BlockExists(id)
			require.NoError(t, err)
			require.False(t, ok)

			_, err = store.OpenBlock(id)
			require.ErrorIs(t, err, base.ErrNotFound)
			err = store.RemoveBlock(id)
			require.ErrorIs(t, err, base.ErrNotFound)
		})
	}
}

func TestStoreIDsDistinct(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			seen := make(map[base.BlockID]struct{})
			for i := 0; i < 10; i++ {
				w, id, err := store.CreateBlock()
				require.NoError(t, err)
				require.NoError(t, w.Close())
				_, ok := seen[id]
				require.False(t, ok)
				seen[id] = struct{}{}
			}
		})
	}
}

func TestStoreWriteBlockReserves(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := store.WriteBlock(10)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			// Fresh ids are allocated above any id written explicitly.
			_, id, err := store.CreateBlock()
			require.NoError(t, err)
			require.Greater(t, id, base.BlockID(10))
		})
	}
}

func TestStoreWriteBlockTruncates(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := store.WriteBlock(3)
			require.NoError(t, err)
			_, err = io.WriteString(w, "first contents")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			w, err = store.WriteBlock(3)
			require.NoError(t, err)
			_, err = io.WriteString(w, "second")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			b, err := ReadBlock(store, 3)
			require.NoError(t, err)
			require.Equal(t, "second", string(b))
		})
	}
}

func TestFileStoreReopenResumesIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)
	w, id, err := store.CreateBlock()
	require.NoError(t, err)
	_, err = io.WriteString(w, "persisted")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	b, err := ReadBlock(reopened, id)
	require.NoError(t, err)
	require.Equal(t, "persisted", string(b))

	_, id2, err := reopened.CreateBlock()
	require.NoError(t, err)
	require.Greater(t, id2, id)
}

func TestErrorStoreInjection(t *testing.T) {
	inj := OnIndex(0)
	store := Wrap(NewMem(), inj)

	_, _, err := store.CreateBlock()
	require.Error(t, err)

	// The injector fires once; subsequent operations pass through.
	w, id, err := store.CreateBlock()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	inj.SetIndex(1)
	w, err = store.WriteBlock(id)
	require.NoError(t, err)
	_, err = io.WriteString(w, "x")
	require.Error(t, err)
}
