// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package compression provides the block payload codecs used by block
// writers and readers. The metadata layer itself only names a codec;
// encoding and decoding of block contents happens in the collaborators
// that produce and consume blocks.
package compression

import (
	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/internal/base"
)

// Algorithm identifies a compression codec. The numeric values are
// persisted in the superblock header and must not be changed.
type Algorithm uint8

// The Algorithm enumeration.
const (
	None Algorithm = iota
	Snappy
	Zstd
)

var algorithmStrings = [...]string{
	None:   "none",
	Snappy: "snappy",
	Zstd:   "zstd",
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if int(a) >= len(algorithmStrings) {
		return "unknown"
	}
	return algorithmStrings[a]
}

// AlgorithmFromString returns the algorithm with the given name.
func AlgorithmFromString(name string) (Algorithm, error) {
	for i, s := range algorithmStrings {
		if s == name {
			return Algorithm(i), nil
		}
	}
	return None, errors.Newf("compression: unknown algorithm %q", errors.Safe(name))
}

// Codec compresses and decompresses byte payloads.
type Codec interface {
	// Algorithm returns the algorithm this codec implements.
	Algorithm() Algorithm

	// Compress appends the compressed representation of src to dst and
	// returns the resulting slice.
	Compress(dst, src []byte) []byte

	// DecompressInto decompresses src into dst, which must be exactly
	// DecompressedLen(src) bytes long.
	DecompressInto(dst, src []byte) error

	// DecompressedLen returns the length of the decompressed
	// representation of src.
	DecompressedLen(src []byte) (int, error)

	// MaxCompressedLen returns the maximal size of the compressed
	// representation of an input of length n.
	MaxCompressedLen(n int) int
}

// GetCodec returns the codec for the given algorithm.
func GetCodec(a Algorithm) (Codec, error) {
	switch a {
	case None:
		return noopCodec{}, nil
	case Snappy:
		return snappyCodec{}, nil
	case Zstd:
		return zstdCodec{}, nil
	default:
		return nil, base.CorruptionErrorf("compression: unknown algorithm %d", errors.Safe(uint8(a)))
	}
}
