// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package blockstore provides durable, uniquely-identified units of
// byte storage. The metadata layer records which blocks compose each
// row-set; the stores here create, open and delete the bytes behind
// those ids.
package blockstore

import (
	"io"

	"github.com/ctabledb/ctable/internal/base"
)

// Readable is the handle for a block that is open for reading.
type Readable interface {
	io.ReaderAt
	io.Closer

	// Size returns the size of the block.
	Size() int64
}

// Writable is the handle for a block that is open for writing. A block
// is readable by other handles only after the Writable has been
// closed.
type Writable interface {
	io.Writer
	io.Closer

	Sync() error
}

// Store creates, opens and deletes blocks by id. Implementations must
// be safe for concurrent use; ids are never reused.
type Store interface {
	// CreateBlock allocates a fresh block id and opens the block for
	// writing.
	CreateBlock() (Writable, base.BlockID, error)

	// WriteBlock opens the block with the given id for writing,
	// creating it if necessary and truncating any previous contents.
	// Used for the fixed superblock slots named by a tablet's
	// bootstrap descriptor, whose ids are chosen by the bootstrapper
	// rather than allocated here.
	WriteBlock(id base.BlockID) (Writable, error)

	// OpenBlock opens an existing block for reading. Returns an error
	// matched by base.ErrNotFound if no such block exists.
	OpenBlock(id base.BlockID) (Readable, error)

	// BlockExists reports whether a block with the given id exists.
	BlockExists(id base.BlockID) (bool, error)

	// RemoveBlock deletes the block with the given id. Returns an
	// error matched by base.ErrNotFound if no such block exists.
	RemoveBlock(id base.BlockID) error
}

// ReadBlock reads the entire contents of a block.
func ReadBlock(s Store, id base.BlockID) ([]byte, error) {
	r, err := s.OpenBlock(id)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b := make([]byte, r.Size())
	if _, err := r.ReadAt(b, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return b, nil
}
