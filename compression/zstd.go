// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compression

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/internal/base"
	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (zstdCodec) Algorithm() Algorithm { return Zstd }

// Compress prefixes the payload with a varint encoding the length of
// the decompressed block.
func (zstdCodec) Compress(dst, src []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(src)))
	dst = append(dst, lenBuf[:n]...)
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(src, dst)
}

func (zstdCodec) DecompressInto(dst, src []byte) error {
	_, prefixLen := binary.Uvarint(src)
	if prefixLen <= 0 {
		return base.CorruptionErrorf("compression: compressed payload has invalid length prefix")
	}
	src = src[prefixLen:]
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	defer decoder.Close()
	result, err := decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return base.MarkCorruptionError(err)
	}
	if len(result) != len(dst) || (len(result) > 0 && &result[0] != &dst[0]) {
		return base.CorruptionErrorf("compression: decompressed into unexpected buffer: %p != %p",
			errors.Safe(result), errors.Safe(dst))
	}
	return nil
}

func (zstdCodec) DecompressedLen(src []byte) (int, error) {
	decodedLen, prefixLen := binary.Uvarint(src)
	if prefixLen <= 0 {
		return 0, base.CorruptionErrorf("compression: compressed payload has invalid length prefix")
	}
	return int(decodedLen), nil
}

func (zstdCodec) MaxCompressedLen(n int) int {
	// Varint length prefix plus the worst-case zstd frame expansion of
	// a header per 128KB block.
	return binary.MaxVarintLen64 + n + n>>8 + 32
}
