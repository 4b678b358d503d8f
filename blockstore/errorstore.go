// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blockstore

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/internal/base"
)

// Injector injects errors into block store operations.
type Injector interface {
	MaybeError() error
}

// OnIndex constructs an injector that returns an error on the (n+1)-th
// invocation of its MaybeError function. It may be passed to Wrap to
// inject an error into a Store.
func OnIndex(index int32) *InjectIndex {
	ii := &InjectIndex{}
	ii.index.Store(index)
	return ii
}

// InjectIndex implements Injector, injecting an error at a specific
// index.
type InjectIndex struct {
	index atomic.Int32
}

// Index returns the index at which the error will be injected.
func (ii *InjectIndex) Index() int32 { return ii.index.Load() }

// SetIndex sets the index at which the error will be injected.
func (ii *InjectIndex) SetIndex(v int32) { ii.index.Store(v) }

// MaybeError implements the Injector interface.
func (ii *InjectIndex) MaybeError() error {
	if ii.index.Add(-1) == -1 {
		return errors.New("injected error")
	}
	return nil
}

// ErrorStore implements Store, injecting errors into its operations.
type ErrorStore struct {
	store Store
	inj   Injector
}

var _ Store = (*ErrorStore)(nil)

// Wrap wraps an existing Store implementation, returning a Store that
// shadows operations to the provided store. It uses the provided
// Injector for deciding when to inject errors. If an error is
// injected, the store propagates the error instead of shadowing the
// operation.
func Wrap(store Store, inj Injector) *ErrorStore {
	return &ErrorStore{store: store, inj: inj}
}

// CreateBlock implements Store.CreateBlock.
func (s *ErrorStore) CreateBlock() (Writable, base.BlockID, error) {
	if err := s.inj.MaybeError(); err != nil {
		return nil, 0, err
	}
	w, id, err := s.store.CreateBlock()
	if err != nil {
		return nil, 0, err
	}
	return errorWritable{w, s}, id, nil
}

// WriteBlock implements Store.WriteBlock.
func (s *ErrorStore) WriteBlock(id base.BlockID) (Writable, error) {
	if err := s.inj.MaybeError(); err != nil {
		return nil, err
	}
	w, err := s.store.WriteBlock(id)
	if err != nil {
		return nil, err
	}
	return errorWritable{w, s}, nil
}

// OpenBlock implements Store.OpenBlock.
func (s *ErrorStore) OpenBlock(id base.BlockID) (Readable, error) {
	if err := s.inj.MaybeError(); err != nil {
		return nil, err
	}
	r, err := s.store.OpenBlock(id)
	if err != nil {
		return nil, err
	}
	return errorReadable{r, s}, nil
}

// BlockExists implements Store.BlockExists.
func (s *ErrorStore) BlockExists(id base.BlockID) (bool, error) {
	if err := s.inj.MaybeError(); err != nil {
		return false, err
	}
	return s.store.BlockExists(id)
}

// RemoveBlock implements Store.RemoveBlock.
func (s *ErrorStore) RemoveBlock(id base.BlockID) error {
	if err := s.inj.MaybeError(); err != nil {
		return err
	}
	return s.store.RemoveBlock(id)
}

type errorWritable struct {
	w     Writable
	store *ErrorStore
}

func (w errorWritable) Write(p []byte) (int, error) {
	if err := w.store.inj.MaybeError(); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

func (w errorWritable) Sync() error {
	if err := w.store.inj.MaybeError(); err != nil {
		return err
	}
	return w.w.Sync()
}

func (w errorWritable) Close() error {
	// Errors are not injected during close as those calls should never
	// fail in practice.
	return w.w.Close()
}

type errorReadable struct {
	r     Readable
	store *ErrorStore
}

func (r errorReadable) ReadAt(p []byte, off int64) (int, error) {
	if err := r.store.inj.MaybeError(); err != nil {
		return 0, err
	}
	return r.r.ReadAt(p, off)
}

func (r errorReadable) Size() int64 { return r.r.Size() }

func (r errorReadable) Close() error { return r.r.Close() }
