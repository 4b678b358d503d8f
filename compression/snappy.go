// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compression

import (
	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable/internal/base"
	"github.com/golang/snappy"
)

type snappyCodec struct{}

var _ Codec = snappyCodec{}

func (snappyCodec) Algorithm() Algorithm { return Snappy }

func (snappyCodec) Compress(dst, src []byte) []byte {
	compressed := snappy.Encode(nil, src)
	return append(dst, compressed...)
}

func (snappyCodec) DecompressInto(dst, src []byte) error {
	result, err := snappy.Decode(dst, src)
	if err != nil {
		return base.MarkCorruptionError(err)
	}
	if len(result) != len(dst) || (len(result) > 0 && &result[0] != &dst[0]) {
		return base.CorruptionErrorf("compression: decompressed into unexpected buffer: %p != %p",
			errors.Safe(result), errors.Safe(dst))
	}
	return nil
}

func (snappyCodec) DecompressedLen(src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, base.MarkCorruptionError(err)
	}
	return n, nil
}

func (snappyCodec) MaxCompressedLen(n int) int {
	return snappy.MaxEncodedLen(n)
}
