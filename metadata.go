// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package ctable implements the persistent metadata layer of a
// tablet-oriented columnar storage engine. A TabletMetadata tracks the
// set of row-sets composing a tablet and the on-disk blocks composing
// each row-set, and keeps that mapping durable through a tablet-wide
// superblock rewritten atomically on every structural change.
package ctable

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/blockstore"
	"github.com/ctabledb/ctable/internal/base"
)

// BootstrapDescriptor names the two fixed block-store slots a tablet's
// superblock alternates between. Generation g lands in BlockA when g
// is even and BlockB when g is odd, so a failed write can never
// clobber the last durable superblock. The descriptor is assigned by
// whatever bootstraps the tablet and never changes afterwards.
type BootstrapDescriptor struct {
	BlockA base.BlockID
	BlockB base.BlockID
}

func (bd BootstrapDescriptor) validate() error {
	if bd.BlockA.IsNull() || bd.BlockB.IsNull() {
		return base.InvariantErrorf("ctable: bootstrap descriptor has null superblock slot")
	}
	if bd.BlockA == bd.BlockB {
		return base.InvariantErrorf("ctable: bootstrap descriptor slots must be distinct (both %s)", bd.BlockA)
	}
	return nil
}

// slot returns the block id the superblock of the given generation is
// written to.
func (bd BootstrapDescriptor) slot(generation uint64) base.BlockID {
	if generation%2 == 0 {
		return bd.BlockA
	}
	return bd.BlockB
}

// TabletMetadata tracks the row-sets of a single tablet and is the
// sole durability gate for structural changes to it.
//
// Writers build row-set content outside any lock: CreateRowSet hands
// out a fresh id without registering anything, the writer fills in the
// row-set's blocks at its leisure, and a final UpdateAndFlush commits
// the row-set under the tablet mutex. The mutex is therefore held only
// across the in-memory update plus the synchronous superblock write,
// never across block content I/O.
type TabletMetadata struct {
	store blockstore.Store
	opts  *Options

	tabletID   string
	startKey   []byte
	endKey     []byte
	numColumns int
	bootstrap  BootstrapDescriptor

	// nextRowSetID is decoupled from mu so that id allocation for
	// concurrent writers never serializes on metadata commit.
	nextRowSetID atomic.Int64

	mu struct {
		sync.Mutex
		// generation is the generation of the last durably written
		// superblock.
		generation uint64
		// rowsets is the committed row-set list, in commit order. The
		// slice is copy-on-write: mutating calls install a fresh slice,
		// so snapshots returned by RowSets remain stable.
		rowsets []*RowSetMetadata
	}
}

// NewTabletMetadata returns the metadata handle for a tablet. The
// returned handle has no in-memory row-set state until Create or Load
// is called. Empty start/end keys denote a key range unbounded on that
// end.
func NewTabletMetadata(
	store blockstore.Store,
	tabletID string,
	bootstrap BootstrapDescriptor,
	startKey, endKey []byte,
	numColumns int,
	opts *Options,
) *TabletMetadata {
	return &TabletMetadata{
		store:      store,
		opts:       opts.EnsureDefaults(),
		tabletID:   tabletID,
		startKey:   startKey,
		endKey:     endKey,
		numColumns: numColumns,
		bootstrap:  bootstrap,
	}
}

// TabletID returns the tablet identifier.
func (tm *TabletMetadata) TabletID() string { return tm.tabletID }

// StartKey returns the inclusive lower bound of the tablet's key
// range; empty means unbounded.
func (tm *TabletMetadata) StartKey() []byte { return tm.startKey }

// EndKey returns the exclusive upper bound of the tablet's key range;
// empty means unbounded.
func (tm *TabletMetadata) EndKey() []byte { return tm.endKey }

// NumColumns returns the schema column count of the tablet.
func (tm *TabletMetadata) NumColumns() int { return tm.numColumns }

// Store returns the block store the tablet's blocks live in.
func (tm *TabletMetadata) Store() blockstore.Store { return tm.store }

// Generation returns the generation of the last durably written
// superblock.
func (tm *TabletMetadata) Generation() uint64 {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.mu.generation
}

// Create initializes fresh tablet state and persists an initial
// superblock with an empty row-set list at generation zero. It must be
// called at most once per fresh tablet.
func (tm *TabletMetadata) Create() error {
	if err := tm.bootstrap.validate(); err != nil {
		return err
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	// Reserve the odd-generation slot up front so the store never hands
	// its id out as a data block. The even slot is reserved by the
	// initial superblock write itself.
	w, err := tm.store.WriteBlock(tm.bootstrap.BlockB)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	sb := tm.buildSuperblockLocked(nil, 0)
	if err := tm.writeSuperblock(sb); err != nil {
		return err
	}
	tm.mu.generation = 0
	tm.mu.rowsets = nil
	return nil
}

// Load reads the durable superblock and reconstructs the row-set
// collection, replacing in-memory state atomically. It fails with an
// error matched by base.ErrCorruption on a malformed superblock, or
// with the underlying I/O error if neither superblock slot can be
// read.
func (tm *TabletMetadata) Load() error {
	if err := tm.bootstrap.validate(); err != nil {
		return err
	}
	sb, err := tm.readSuperblock()
	if err != nil {
		return err
	}
	if sb.TabletID != tm.tabletID {
		return base.CorruptionErrorf("ctable: superblock names tablet %q, expected %q",
			errors.Safe(sb.TabletID), errors.Safe(tm.tabletID))
	}
	if sb.Bootstrap != (BootstrapDescriptor{}) && sb.Bootstrap != tm.bootstrap {
		return base.CorruptionErrorf("ctable: superblock names bootstrap slots (%s, %s), expected (%s, %s)",
			sb.Bootstrap.BlockA, sb.Bootstrap.BlockB, tm.bootstrap.BlockA, tm.bootstrap.BlockB)
	}
	rowsets := make([]*RowSetMetadata, 0, len(sb.RowSets))
	for i := range sb.RowSets {
		rs, err := loadRowSetMetadata(tm, &sb.RowSets[i])
		if err != nil {
			return err
		}
		rowsets = append(rowsets, rs)
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.nextRowSetID.Store(int64(sb.NextRowSetID))
	tm.mu.generation = sb.Generation
	tm.mu.rowsets = rowsets
	return nil
}

// readSuperblock reads both superblock slots and returns the decodable
// copy with the highest generation. A slot that is unreadable or
// undecodable is tolerated as long as the other slot yields a
// superblock; losing one copy is logged, losing both is fatal to the
// load.
func (tm *TabletMetadata) readSuperblock() (*Superblock, error) {
	var best *Superblock
	var firstErr error
	for _, id := range []base.BlockID{tm.bootstrap.BlockA, tm.bootstrap.BlockB} {
		b, err := blockstore.ReadBlock(tm.store, id)
		if err == nil && len(b) == 0 {
			// A reserved-but-unwritten slot; normal until the generation
			// alternation has touched both.
			err = errors.Mark(errors.Newf("ctable: superblock slot %s empty", id), base.ErrNotFound)
		}
		if err == nil {
			var sb *Superblock
			if sb, err = DecodeSuperblock(b); err == nil {
				if best == nil || sb.Generation > best.Generation {
					best = sb
				}
				continue
			}
		}
		if firstErr == nil {
			firstErr = err
		} else {
			firstErr = errors.CombineErrors(firstErr, err)
		}
		if !errors.Is(err, base.ErrNotFound) {
			tm.opts.Logger.Infof("ctable: tablet %s: superblock slot %s unusable: %v", tm.tabletID, id, err)
		}
	}
	if best == nil {
		return nil, errors.Wrapf(firstErr, "ctable: tablet %s has no readable superblock", tm.tabletID)
	}
	return best, nil
}

// Flush re-persists the current state unchanged. It is used after an
// in-place row-set mutation such as a delta-chain append.
func (tm *TabletMetadata) Flush() error {
	return tm.UpdateAndFlush(nil, nil)
}

// UpdateAndFlush removes every row-set whose id is in toRemove,
// appends every row-set in toAdd, and durably writes the resulting
// superblock, all under the tablet's exclusive lock. Either the new
// superblock and the in-memory state both reflect the post-update set,
// or the call fails and in-memory state is exactly as before the call.
// Concurrent calls on the same tablet are fully serialized.
//
// Ids appearing in both toRemove and the ids of toAdd are rejected;
// ids in toRemove that are not in the current set are ignored.
func (tm *TabletMetadata) UpdateAndFlush(toRemove []base.RowSetID, toAdd []*RowSetMetadata) error {
	removeSet := make(map[base.RowSetID]struct{}, len(toRemove))
	for _, id := range toRemove {
		removeSet[id] = struct{}{}
	}
	addSet := make(map[base.RowSetID]struct{}, len(toAdd))
	for _, rs := range toAdd {
		if rs.tabletMeta != tm {
			return base.InvariantErrorf("ctable: row-set %s belongs to a different tablet", rs.id)
		}
		if _, ok := removeSet[rs.id]; ok {
			return base.InvariantErrorf("ctable: row-set %s in both remove and add sets", rs.id)
		}
		if _, ok := addSet[rs.id]; ok {
			return base.InvariantErrorf("ctable: row-set %s added twice", rs.id)
		}
		addSet[rs.id] = struct{}{}
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	newRowsets := make([]*RowSetMetadata, 0, len(tm.mu.rowsets)+len(toAdd))
	for _, rs := range tm.mu.rowsets {
		if _, ok := addSet[rs.id]; ok {
			return base.InvariantErrorf("ctable: row-set %s already registered", rs.id)
		}
		if _, ok := removeSet[rs.id]; ok {
			continue
		}
		newRowsets = append(newRowsets, rs)
	}
	newRowsets = append(newRowsets, toAdd...)

	sb := tm.buildSuperblockLocked(newRowsets, tm.mu.generation+1)
	if err := tm.writeSuperblock(sb); err != nil {
		return err
	}
	tm.mu.generation = sb.Generation
	tm.mu.rowsets = newRowsets
	return nil
}

// buildSuperblockLocked snapshots the given row-set list into a
// superblock at the given generation.
//
// tm.mu must be held: the superblock is the durable image of the state
// being installed, and each row-set descriptor snapshot takes that
// row-set's delta mutex (lock order: tablet, then row-set).
func (tm *TabletMetadata) buildSuperblockLocked(rowsets []*RowSetMetadata, generation uint64) *Superblock {
	sb := &Superblock{
		TabletID:     tm.tabletID,
		StartKey:     tm.startKey,
		EndKey:       tm.endKey,
		Bootstrap:    tm.bootstrap,
		Generation:   generation,
		NumColumns:   tm.numColumns,
		NextRowSetID: base.RowSetID(tm.nextRowSetID.Load()),
		RowSets:      make([]RowSetDescriptor, 0, len(rowsets)),
	}
	for _, rs := range rowsets {
		sb.RowSets = append(sb.RowSets, rs.toDescriptor())
	}
	return sb
}

// writeSuperblock encodes the superblock and durably writes it to the
// slot its generation maps to.
func (tm *TabletMetadata) writeSuperblock(sb *Superblock) error {
	b, err := sb.Encode(tm.opts.Compression)
	if err != nil {
		return err
	}
	w, err := tm.store.WriteBlock(tm.bootstrap.slot(sb.Generation))
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// CreateRowSet allocates a fresh, never-reused row-set id and returns
// a new row-set bound to this tablet. The row-set is not yet
// registered or persisted; registration is a separate
// UpdateAndFlush(nil, ...) call once the caller has finished building
// the row-set's blocks.
func (tm *TabletMetadata) CreateRowSet() *RowSetMetadata {
	id := base.RowSetID(tm.nextRowSetID.Add(1) - 1)
	return newRowSetMetadata(tm, id)
}

// RowSets returns a snapshot of the committed row-set list, valid
// until the next mutating call.
func (tm *TabletMetadata) RowSets() []*RowSetMetadata {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	rowsets := make([]*RowSetMetadata, len(tm.mu.rowsets))
	copy(rowsets, tm.mu.rowsets)
	return rowsets
}

// RowSet returns the committed row-set with the given id, or nil if no
// such row-set is registered.
func (tm *TabletMetadata) RowSet(id base.RowSetID) *RowSetMetadata {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, rs := range tm.mu.rowsets {
		if rs.id == id {
			return rs
		}
	}
	return nil
}
