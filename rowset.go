// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ctable

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/blockstore"
	"github.com/ctabledb/ctable/internal/base"
)

// RowSetMetadata tracks the data blocks of a single row-set.
//
// A row-set is built by one writer: the writer creates the immutable
// base (one block per schema column, appended strictly in schema
// order, plus an optional bloom filter block and an optional ad-hoc
// index block) and then registers the row-set with its tablet. From
// that point the base is frozen; the only mutation a row-set undergoes
// is growth of its delta chain, which is guarded by a row-set-local
// mutex so that delta flushes on one row-set never contend with
// unrelated row-sets or with whole-tablet restructuring.
//
// A RowSetMetadata never persists independently. The tablet superblock
// is the single durability unit; Flush delegates to the owning
// TabletMetadata.
type RowSetMetadata struct {
	// tabletMeta is a non-owning back-reference, valid only while the
	// tablet metadata is alive.
	tabletMeta *TabletMetadata
	id         base.RowSetID

	// The immutable base. Written by the single builder before the
	// row-set is registered; never reassigned afterwards.
	bloomBlock      base.BlockID
	adhocIndexBlock base.BlockID
	columnBlocks    []base.BlockID

	deltaMu struct {
		sync.Mutex
		deltaBlocks []DeltaBlockEntry
	}
}

func newRowSetMetadata(tm *TabletMetadata, id base.RowSetID) *RowSetMetadata {
	return &RowSetMetadata{tabletMeta: tm, id: id}
}

// loadRowSetMetadata reconstructs a row-set from a decoded descriptor,
// validating it against the tablet's schema.
func loadRowSetMetadata(tm *TabletMetadata, desc *RowSetDescriptor) (*RowSetMetadata, error) {
	if desc.ID < 0 {
		return nil, base.CorruptionErrorf("ctable: row-set descriptor has negative id %s", desc.ID)
	}
	if len(desc.ColumnBlocks) > tm.numColumns {
		return nil, base.CorruptionErrorf("ctable: row-set %s has %d column blocks, schema has %d columns",
			desc.ID, errors.Safe(len(desc.ColumnBlocks)), errors.Safe(tm.numColumns))
	}
	rs := newRowSetMetadata(tm, desc.ID)
	rs.bloomBlock = desc.BloomBlock
	rs.adhocIndexBlock = desc.AdHocIndexBlock
	rs.columnBlocks = append([]base.BlockID(nil), desc.ColumnBlocks...)
	rs.deltaMu.deltaBlocks = append([]DeltaBlockEntry(nil), desc.DeltaBlocks...)
	return rs, nil
}

// ID returns the row-set's id, assigned at creation and never reused.
func (rs *RowSetMetadata) ID() base.RowSetID { return rs.id }

// TabletMetadata returns the owning tablet's metadata.
func (rs *RowSetMetadata) TabletMetadata() *TabletMetadata { return rs.tabletMeta }

func (rs *RowSetMetadata) store() blockstore.Store { return rs.tabletMeta.store }

// Flush persists the row-set's current state. The tablet superblock is
// the single durability unit, so this flushes the owning tablet.
func (rs *RowSetMetadata) Flush() error { return rs.tabletMeta.Flush() }

// NewBloomDataBlock allocates the row-set's bloom filter block and
// returns it open for writing. A row-set has at most one bloom block;
// a second call is an invariant violation.
func (rs *RowSetMetadata) NewBloomDataBlock() (blockstore.Writable, error) {
	if !rs.bloomBlock.IsNull() {
		return nil, base.InvariantErrorf("ctable: row-set %s already has bloom block %s", rs.id, rs.bloomBlock)
	}
	w, id, err := rs.store().CreateBlock()
	if err != nil {
		return nil, err
	}
	rs.bloomBlock = id
	return w, nil
}

// OpenBloomDataBlock opens the row-set's bloom filter block for
// reading.
func (rs *RowSetMetadata) OpenBloomDataBlock() (blockstore.Readable, error) {
	return rs.openDataBlock(rs.bloomBlock)
}

// NewAdHocIndexDataBlock allocates the row-set's ad-hoc index block
// and returns it open for writing. A row-set has at most one ad-hoc
// index block; a second call is an invariant violation.
func (rs *RowSetMetadata) NewAdHocIndexDataBlock() (blockstore.Writable, error) {
	if !rs.adhocIndexBlock.IsNull() {
		return nil, base.InvariantErrorf("ctable: row-set %s already has ad-hoc index block %s",
			rs.id, rs.adhocIndexBlock)
	}
	w, id, err := rs.store().CreateBlock()
	if err != nil {
		return nil, err
	}
	rs.adhocIndexBlock = id
	return w, nil
}

// OpenAdHocIndexDataBlock opens the row-set's ad-hoc index block for
// reading.
func (rs *RowSetMetadata) OpenAdHocIndexDataBlock() (blockstore.Readable, error) {
	return rs.openDataBlock(rs.adhocIndexBlock)
}

// NewColumnDataBlock allocates the data block for the column at
// colIdx and returns it open for writing. Column blocks are appended
// strictly in schema order: colIdx must equal the number of column
// blocks assigned so far and must not exceed the schema column count.
func (rs *RowSetMetadata) NewColumnDataBlock(colIdx int) (blockstore.Writable, error) {
	if colIdx != len(rs.columnBlocks) {
		return nil, base.InvariantErrorf("ctable: row-set %s column block %d assigned out of order (have %d)",
			rs.id, colIdx, len(rs.columnBlocks))
	}
	if colIdx >= rs.tabletMeta.numColumns {
		return nil, base.InvariantErrorf("ctable: row-set %s column block %d beyond schema column count %d",
			rs.id, colIdx, rs.tabletMeta.numColumns)
	}
	w, id, err := rs.store().CreateBlock()
	if err != nil {
		return nil, err
	}
	rs.columnBlocks = append(rs.columnBlocks, id)
	return w, nil
}

// OpenColumnDataBlock opens the data block of the column at colIdx for
// reading.
func (rs *RowSetMetadata) OpenColumnDataBlock(colIdx int) (blockstore.Readable, error) {
	if colIdx < 0 || colIdx >= len(rs.columnBlocks) {
		return nil, base.InvariantErrorf("ctable: row-set %s has no column block %d", rs.id, colIdx)
	}
	return rs.openDataBlock(rs.columnBlocks[colIdx])
}

// NewDeltaDataBlock allocates a block for a delta layer and returns it
// open for writing. The block is not part of the delta chain until the
// caller commits it with CommitDeltaDataBlock.
func (rs *RowSetMetadata) NewDeltaDataBlock() (blockstore.Writable, base.BlockID, error) {
	return rs.store().CreateBlock()
}

// CommitDeltaDataBlock appends (deltaID, blockID) to the row-set's
// delta chain. DeltaIDs must be strictly increasing; the chain order
// is the update replay order.
func (rs *RowSetMetadata) CommitDeltaDataBlock(deltaID base.DeltaID, blockID base.BlockID) error {
	if blockID.IsNull() {
		return base.InvariantErrorf("ctable: row-set %s delta %s commits null block id", rs.id, deltaID)
	}
	rs.deltaMu.Lock()
	defer rs.deltaMu.Unlock()
	if n := len(rs.deltaMu.deltaBlocks); n > 0 && deltaID <= rs.deltaMu.deltaBlocks[n-1].DeltaID {
		return base.InvariantErrorf("ctable: row-set %s delta %s not above last delta %s",
			rs.id, deltaID, rs.deltaMu.deltaBlocks[n-1].DeltaID)
	}
	rs.deltaMu.deltaBlocks = append(rs.deltaMu.deltaBlocks, DeltaBlockEntry{DeltaID: deltaID, Block: blockID})
	return nil
}

// OpenDeltaDataBlock opens the index-th block of the delta chain for
// reading.
func (rs *RowSetMetadata) OpenDeltaDataBlock(index int) (blockstore.Readable, error) {
	rs.deltaMu.Lock()
	if index < 0 || index >= len(rs.deltaMu.deltaBlocks) {
		rs.deltaMu.Unlock()
		return nil, base.InvariantErrorf("ctable: row-set %s has no delta block %d", rs.id, index)
	}
	id := rs.deltaMu.deltaBlocks[index].Block
	rs.deltaMu.Unlock()
	return rs.openDataBlock(id)
}

// DeltaBlockCount returns the length of the delta chain.
func (rs *RowSetMetadata) DeltaBlockCount() int {
	rs.deltaMu.Lock()
	defer rs.deltaMu.Unlock()
	return len(rs.deltaMu.deltaBlocks)
}

// BloomBlockID returns the id of the bloom filter block, or the null
// sentinel if none has been assigned.
func (rs *RowSetMetadata) BloomBlockID() base.BlockID { return rs.bloomBlock }

// AdHocIndexBlockID returns the id of the ad-hoc index block, or the
// null sentinel if none has been assigned.
func (rs *RowSetMetadata) AdHocIndexBlockID() base.BlockID { return rs.adhocIndexBlock }

// ColumnBlockIDs returns the ids of the assigned column blocks, in
// schema order.
func (rs *RowSetMetadata) ColumnBlockIDs() []base.BlockID {
	return append([]base.BlockID(nil), rs.columnBlocks...)
}

// DeltaBlocks returns a snapshot of the delta chain in replay order.
func (rs *RowSetMetadata) DeltaBlocks() []DeltaBlockEntry {
	rs.deltaMu.Lock()
	defer rs.deltaMu.Unlock()
	return append([]DeltaBlockEntry(nil), rs.deltaMu.deltaBlocks...)
}

func (rs *RowSetMetadata) openDataBlock(id base.BlockID) (blockstore.Readable, error) {
	if id.IsNull() {
		return nil, errors.Mark(errors.Newf("ctable: row-set %s block unassigned", rs.id), base.ErrNotFound)
	}
	return rs.store().OpenBlock(id)
}

// toDescriptor produces the row-set's serialized form for inclusion in
// the tablet superblock. Invoked with the tablet mutex held by the
// flush path.
func (rs *RowSetMetadata) toDescriptor() RowSetDescriptor {
	rs.deltaMu.Lock()
	deltas := append([]DeltaBlockEntry(nil), rs.deltaMu.deltaBlocks...)
	rs.deltaMu.Unlock()
	return RowSetDescriptor{
		ID:              rs.id,
		BloomBlock:      rs.bloomBlock,
		AdHocIndexBlock: rs.adhocIndexBlock,
		ColumnBlocks:    append([]base.BlockID(nil), rs.columnBlocks...),
		DeltaBlocks:     deltas,
	}
}

// String returns a human-readable description of the row-set.
func (rs *RowSetMetadata) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rowset %s: bloom=%s adhoc-index=%s columns=[", rs.id, rs.bloomBlock, rs.adhocIndexBlock)
	for i, id := range rs.columnBlocks {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(id.String())
	}
	sb.WriteString("] deltas=[")
	for i, entry := range rs.DeltaBlocks() {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s:%s", entry.DeltaID, entry.Block)
	}
	sb.WriteString("]")
	return sb.String()
}
