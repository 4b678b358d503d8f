// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blockstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
	"github.com/ctabledb/ctable/internal/base"
)

const blockFileSuffix = ".blk"

// makeBlockFilename builds the filename for a block id.
func makeBlockFilename(id base.BlockID) string {
	return fmt.Sprintf("%06d%s", uint64(id), blockFileSuffix)
}

// parseBlockFilename parses the block id out of a filename produced by
// makeBlockFilename.
func parseBlockFilename(name string) (id base.BlockID, ok bool) {
	if !strings.HasSuffix(name, blockFileSuffix) {
		return 0, false
	}
	return base.ParseBlockID(strings.TrimSuffix(name, blockFileSuffix))
}

// FileStore is a block store backed by one file per block under a
// single directory.
type FileStore struct {
	dirname string

	mu     sync.Mutex
	nextID base.BlockID
}

var _ Store = (*FileStore)(nil)

// OpenFileStore opens (creating if necessary) a file-backed block
// store rooted at dirname. Fresh ids resume above the largest id found
// in the directory.
func OpenFileStore(dirname string) (*FileStore, error) {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	s := &FileStore{dirname: dirname, nextID: 1}
	for _, e := range entries {
		if id, ok := parseBlockFilename(e.Name()); ok && id >= s.nextID {
			s.nextID = id + 1
		}
	}
	return s, nil
}

func (s *FileStore) path(id base.BlockID) string {
	return filepath.Join(s.dirname, makeBlockFilename(id))
}

// CreateBlock implements Store.CreateBlock.
func (s *FileStore) CreateBlock() (Writable, base.BlockID, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()
	f, err := os.OpenFile(s.path(id), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, 0, err
	}
	return (*fileWritable)(f), id, nil
}

// WriteBlock implements Store.WriteBlock.
func (s *FileStore) WriteBlock(id base.BlockID) (Writable, error) {
	if id.IsNull() {
		return nil, errors.AssertionFailedf("blockstore: write of null block id")
	}
	s.mu.Lock()
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.mu.Unlock()
	f, err := os.OpenFile(s.path(id), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return (*fileWritable)(f), nil
}

// OpenBlock implements Store.OpenBlock.
func (s *FileStore) OpenBlock(id base.BlockID) (Readable, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if oserror.IsNotExist(err) {
			return nil, errors.Mark(err, base.ErrNotFound)
		}
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileReadable{f: f, size: stat.Size()}, nil
}

// BlockExists implements Store.BlockExists.
func (s *FileStore) BlockExists(id base.BlockID) (bool, error) {
	_, err := os.Stat(s.path(id))
	if err != nil {
		if oserror.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveBlock implements Store.RemoveBlock.
func (s *FileStore) RemoveBlock(id base.BlockID) error {
	err := os.Remove(s.path(id))
	if oserror.IsNotExist(err) {
		return errors.Mark(err, base.ErrNotFound)
	}
	return err
}

type fileWritable os.File

func (w *fileWritable) Write(p []byte) (int, error) { return (*os.File)(w).Write(p) }
func (w *fileWritable) Sync() error                 { return (*os.File)(w).Sync() }
func (w *fileWritable) Close() error                { return (*os.File)(w).Close() }

type fileReadable struct {
	f    *os.File
	size int64
}

func (r *fileReadable) ReadAt(p []byte, off int64) (int, error) { return r.f.ReadAt(p, off) }
func (r *fileReadable) Size() int64                             { return r.size }
func (r *fileReadable) Close() error                            { return r.f.Close() }
