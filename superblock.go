// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ctable

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/compression"
	"github.com/ctabledb/ctable/internal/base"
)

// Superblock is the serialized snapshot of a tablet's metadata: its
// identity, key range, and the full ordered set of row-set
// descriptors. It is the unit of durability; a tablet's in-memory
// state is reconstructed from it on load.
type Superblock struct {
	TabletID     string
	StartKey     []byte
	EndKey       []byte
	Bootstrap    BootstrapDescriptor
	Generation   uint64
	NumColumns   int
	NextRowSetID base.RowSetID
	RowSets      []RowSetDescriptor
}

// RowSetDescriptor is the serialized form of a single row-set: its id
// and the ids of every block composing it.
type RowSetDescriptor struct {
	ID              base.RowSetID
	BloomBlock      base.BlockID
	AdHocIndexBlock base.BlockID
	ColumnBlocks    []base.BlockID
	DeltaBlocks     []DeltaBlockEntry
}

// DeltaBlockEntry is one link of a row-set's delta chain. Entries are
// ordered by strictly increasing DeltaID; that order is the update
// replay order.
type DeltaBlockEntry struct {
	DeltaID base.DeltaID
	Block   base.BlockID
}

// Wire framing: an 8-byte magic, a format version, the compression
// algorithm, the decompressed payload length, an xxhash64 checksum of
// the stored payload, then the payload itself.
var superblockMagic = []byte("ctblsupr")

const superblockFormatVersion = 1

// Tags for the superblock payload. Scalar tags are followed by a
// uvarint; all other tags, including any added in the future, are
// followed by length-prefixed bytes so that older readers can skip
// fields they do not understand.
const (
	tagTabletID     = 1
	tagStartKey     = 2
	tagEndKey       = 3
	tagGeneration   = 4
	tagNumColumns   = 5
	tagNextRowSetID = 6
	tagRowSet       = 7
	tagBootstrap    = 8
)

func isScalarTag(tag uint64) bool {
	switch tag {
	case tagGeneration, tagNumColumns, tagNextRowSetID:
		return true
	}
	return false
}

// Encode serializes the superblock, compressing the payload with the
// given algorithm.
func (sb *Superblock) Encode(algorithm compression.Algorithm) ([]byte, error) {
	payload := encodeSuperblockPayload(sb)

	codec, err := compression.GetCodec(algorithm)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(superblockMagic)+16+codec.MaxCompressedLen(len(payload)))
	buf = append(buf, superblockMagic...)
	buf = binary.AppendUvarint(buf, superblockFormatVersion)
	buf = append(buf, byte(algorithm))
	buf = binary.AppendUvarint(buf, uint64(len(payload)))
	stored := codec.Compress(nil, payload)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(stored))
	buf = append(buf, stored...)
	return buf, nil
}

func encodeSuperblockPayload(sb *Superblock) []byte {
	e := superblockEncoder{new(bytes.Buffer)}
	e.writeUvarint(tagTabletID)
	e.writeBytes([]byte(sb.TabletID))
	if len(sb.StartKey) > 0 {
		e.writeUvarint(tagStartKey)
		e.writeBytes(sb.StartKey)
	}
	if len(sb.EndKey) > 0 {
		e.writeUvarint(tagEndKey)
		e.writeBytes(sb.EndKey)
	}
	if !sb.Bootstrap.BlockA.IsNull() || !sb.Bootstrap.BlockB.IsNull() {
		be := superblockEncoder{new(bytes.Buffer)}
		be.writeUvarint(uint64(sb.Bootstrap.BlockA))
		be.writeUvarint(uint64(sb.Bootstrap.BlockB))
		e.writeUvarint(tagBootstrap)
		e.writeBytes(be.Bytes())
	}
	e.writeUvarint(tagGeneration)
	e.writeUvarint(sb.Generation)
	e.writeUvarint(tagNumColumns)
	e.writeUvarint(uint64(sb.NumColumns))
	e.writeUvarint(tagNextRowSetID)
	e.writeUvarint(uint64(sb.NextRowSetID))
	for i := range sb.RowSets {
		e.writeUvarint(tagRowSet)
		e.writeBytes(encodeRowSetDescriptor(&sb.RowSets[i]))
	}
	return e.Bytes()
}

// DecodeSuperblock deserializes a superblock previously produced by
// Encode. Malformed input yields an error matched by
// base.ErrCorruption.
func DecodeSuperblock(b []byte) (*Superblock, error) {
	if len(b) < len(superblockMagic) || !bytes.Equal(b[:len(superblockMagic)], superblockMagic) {
		return nil, base.CorruptionErrorf("ctable: superblock missing magic")
	}
	b = b[len(superblockMagic):]
	version, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, base.CorruptionErrorf("ctable: superblock truncated")
	}
	b = b[n:]
	if version != superblockFormatVersion {
		return nil, base.CorruptionErrorf("ctable: unsupported superblock format version %d",
			errors.Safe(version))
	}
	if len(b) < 1 {
		return nil, base.CorruptionErrorf("ctable: superblock truncated")
	}
	algorithm := compression.Algorithm(b[0])
	b = b[1:]
	decompressedLen, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, base.CorruptionErrorf("ctable: superblock truncated")
	}
	b = b[n:]
	if len(b) < 8 {
		return nil, base.CorruptionErrorf("ctable: superblock truncated")
	}
	checksum := binary.LittleEndian.Uint64(b[:8])
	stored := b[8:]
	if actual := xxhash.Sum64(stored); actual != checksum {
		return nil, base.CorruptionErrorf("ctable: superblock checksum mismatch %x != %x",
			errors.Safe(actual), errors.Safe(checksum))
	}
	codec, err := compression.GetCodec(algorithm)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, decompressedLen)
	if err := codec.DecompressInto(payload, stored); err != nil {
		return nil, err
	}
	return decodeSuperblockPayload(payload)
}

func decodeSuperblockPayload(payload []byte) (*Superblock, error) {
	sb := &Superblock{}
	d := superblockDecoder{bytes.NewReader(payload)}
	for {
		tag, err := binary.ReadUvarint(d)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errSuperblockCorrupt
		}
		switch tag {
		case tagTabletID:
			s, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			sb.TabletID = string(s)

		case tagStartKey:
			s, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			sb.StartKey = s

		case tagEndKey:
			s, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			sb.EndKey = s

		case tagBootstrap:
			s, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			bd := superblockDecoder{bytes.NewReader(s)}
			a, err := bd.readUvarint()
			if err != nil {
				return nil, err
			}
			b, err := bd.readUvarint()
			if err != nil {
				return nil, err
			}
			sb.Bootstrap = BootstrapDescriptor{BlockA: base.BlockID(a), BlockB: base.BlockID(b)}

		case tagGeneration:
			v, err := d.readUvarint()
			if err != nil {
				return nil, err
			}
			sb.Generation = v

		case tagNumColumns:
			v, err := d.readUvarint()
			if err != nil {
				return nil, err
			}
			sb.NumColumns = int(v)

		case tagNextRowSetID:
			v, err := d.readUvarint()
			if err != nil {
				return nil, err
			}
			sb.NextRowSetID = base.RowSetID(v)

		case tagRowSet:
			s, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			desc, err := decodeRowSetDescriptor(s)
			if err != nil {
				return nil, err
			}
			sb.RowSets = append(sb.RowSets, desc)

		default:
			// Unknown future field. Scalar tags are fixed; anything new
			// is length-prefixed and skippable.
			if isScalarTag(tag) {
				return nil, errSuperblockCorrupt
			}
			if _, err := d.readBytes(); err != nil {
				return nil, err
			}
		}
	}
	if err := validateSuperblock(sb); err != nil {
		return nil, err
	}
	return sb, nil
}

func validateSuperblock(sb *Superblock) error {
	if sb.TabletID == "" {
		return base.CorruptionErrorf("ctable: superblock missing tablet id")
	}
	if bd := sb.Bootstrap; !bd.BlockA.IsNull() || !bd.BlockB.IsNull() {
		if bd.BlockA.IsNull() || bd.BlockB.IsNull() || bd.BlockA == bd.BlockB {
			return base.CorruptionErrorf("ctable: superblock has malformed bootstrap descriptor (%s, %s)",
				bd.BlockA, bd.BlockB)
		}
	}
	maxID := base.RowSetID(-1)
	seen := make(map[base.RowSetID]struct{}, len(sb.RowSets))
	for i := range sb.RowSets {
		id := sb.RowSets[i].ID
		if _, ok := seen[id]; ok {
			return base.CorruptionErrorf("ctable: superblock contains duplicate row-set id %s", id)
		}
		seen[id] = struct{}{}
		if id > maxID {
			maxID = id
		}
	}
	if sb.NextRowSetID <= maxID {
		return base.CorruptionErrorf("ctable: superblock next row-set id %s not above max row-set id %s",
			sb.NextRowSetID, maxID)
	}
	return nil
}

func encodeRowSetDescriptor(desc *RowSetDescriptor) []byte {
	e := superblockEncoder{new(bytes.Buffer)}
	e.writeUvarint(uint64(desc.ID))
	e.writeUvarint(uint64(desc.BloomBlock))
	e.writeUvarint(uint64(desc.AdHocIndexBlock))
	e.writeUvarint(uint64(len(desc.ColumnBlocks)))
	for _, id := range desc.ColumnBlocks {
		e.writeUvarint(uint64(id))
	}
	e.writeUvarint(uint64(len(desc.DeltaBlocks)))
	for _, entry := range desc.DeltaBlocks {
		e.writeUvarint(uint64(entry.DeltaID))
		e.writeUvarint(uint64(entry.Block))
	}
	return e.Bytes()
}

func decodeRowSetDescriptor(b []byte) (RowSetDescriptor, error) {
	var desc RowSetDescriptor
	d := superblockDecoder{bytes.NewReader(b)}
	id, err := d.readUvarint()
	if err != nil {
		return desc, err
	}
	desc.ID = base.RowSetID(id)
	bloom, err := d.readUvarint()
	if err != nil {
		return desc, err
	}
	desc.BloomBlock = base.BlockID(bloom)
	adhoc, err := d.readUvarint()
	if err != nil {
		return desc, err
	}
	desc.AdHocIndexBlock = base.BlockID(adhoc)

	numColumns, err := d.readUvarint()
	if err != nil {
		return desc, err
	}
	if numColumns > uint64(len(b)) {
		return desc, errSuperblockCorrupt
	}
	if numColumns > 0 {
		desc.ColumnBlocks = make([]base.BlockID, numColumns)
	}
	for i := range desc.ColumnBlocks {
		v, err := d.readUvarint()
		if err != nil {
			return desc, err
		}
		if base.BlockID(v).IsNull() {
			return desc, base.CorruptionErrorf("ctable: row-set %s column %d has null block id", desc.ID, errors.Safe(i))
		}
		desc.ColumnBlocks[i] = base.BlockID(v)
	}

	numDeltas, err := d.readUvarint()
	if err != nil {
		return desc, err
	}
	if numDeltas > uint64(len(b)) {
		return desc, errSuperblockCorrupt
	}
	if numDeltas > 0 {
		desc.DeltaBlocks = make([]DeltaBlockEntry, numDeltas)
	}
	for i := range desc.DeltaBlocks {
		deltaID, err := d.readUvarint()
		if err != nil {
			return desc, err
		}
		blockID, err := d.readUvarint()
		if err != nil {
			return desc, err
		}
		if i > 0 && base.DeltaID(deltaID) <= desc.DeltaBlocks[i-1].DeltaID {
			return desc, base.CorruptionErrorf("ctable: row-set %s delta chain out of order at index %d",
				desc.ID, errors.Safe(i))
		}
		if base.BlockID(blockID).IsNull() {
			return desc, base.CorruptionErrorf("ctable: row-set %s delta %d has null block id",
				desc.ID, errors.Safe(deltaID))
		}
		desc.DeltaBlocks[i] = DeltaBlockEntry{
			DeltaID: base.DeltaID(deltaID),
			Block:   base.BlockID(blockID),
		}
	}
	return desc, nil
}

var errSuperblockCorrupt = base.CorruptionErrorf("ctable: corrupt superblock")

type byteReader interface {
	io.ByteReader
	io.Reader
}

type superblockEncoder struct {
	*bytes.Buffer
}

func (e superblockEncoder) writeUvarint(u uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], u)
	e.Write(buf[:n])
}

func (e superblockEncoder) writeBytes(b []byte) {
	e.writeUvarint(uint64(len(b)))
	e.Write(b)
}

type superblockDecoder struct {
	byteReader
}

func (d superblockDecoder) readUvarint() (uint64, error) {
	u, err := binary.ReadUvarint(d)
	if err != nil {
		return 0, errSuperblockCorrupt
	}
	return u, nil
}

func (d superblockDecoder) readBytes() ([]byte, error) {
	n, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	s := make([]byte, n)
	if _, err := io.ReadFull(d, s); err != nil {
		return nil, errSuperblockCorrupt
	}
	return s, nil
}
