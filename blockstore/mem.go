// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blockstore

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/internal/base"
)

// MemStore is an in-memory block store, primarily for tests.
type MemStore struct {
	mu     sync.Mutex
	blocks map[base.BlockID][]byte
	nextID base.BlockID
}

var _ Store = (*MemStore)(nil)

// NewMem returns a new empty MemStore.
func NewMem() *MemStore {
	return &MemStore{
		blocks: make(map[base.BlockID][]byte),
		nextID: 1,
	}
}

// CreateBlock implements Store.CreateBlock.
func (s *MemStore) CreateBlock() (Writable, base.BlockID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.blocks[id] = nil
	return &memWritable{store: s, id: id}, id, nil
}

// WriteBlock implements Store.WriteBlock.
func (s *MemStore) WriteBlock(id base.BlockID) (Writable, error) {
	if id.IsNull() {
		return nil, errors.AssertionFailedf("blockstore: write of null block id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.blocks[id] = nil
	return &memWritable{store: s, id: id}, nil
}

// OpenBlock implements Store.OpenBlock.
func (s *MemStore) OpenBlock(id base.BlockID) (Readable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, errors.Mark(errors.Newf("blockstore: block %s", id), base.ErrNotFound)
	}
	return &memReadable{data: b}, nil
}

// BlockExists implements Store.BlockExists.
func (s *MemStore) BlockExists(id base.BlockID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocks[id]
	return ok, nil
}

// RemoveBlock implements Store.RemoveBlock.
func (s *MemStore) RemoveBlock(id base.BlockID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[id]; !ok {
		return errors.Mark(errors.Newf("blockstore: block %s", id), base.ErrNotFound)
	}
	delete(s.blocks, id)
	return nil
}

type memWritable struct {
	store *MemStore
	id    base.BlockID
	buf   []byte
}

func (w *memWritable) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *memWritable) Sync() error {
	w.install()
	return nil
}

func (w *memWritable) Close() error {
	w.install()
	return nil
}

func (w *memWritable) install() {
	data := make([]byte, len(w.buf))
	copy(data, w.buf)
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.blocks[w.id] = data
}

type memReadable struct {
	data []byte
}

func (r *memReadable) ReadAt(p []byte, off int64) (int, error) {
	if off > int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *memReadable) Size() int64 { return int64(len(r.data)) }

func (r *memReadable) Close() error { return nil }
