// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compression

type noopCodec struct{}

var _ Codec = noopCodec{}

func (noopCodec) Algorithm() Algorithm { return None }

func (noopCodec) Compress(dst, src []byte) []byte {
	return append(dst, src...)
}

func (noopCodec) DecompressInto(dst, src []byte) error {
	copy(dst, src)
	return nil
}

func (noopCodec) DecompressedLen(src []byte) (int, error) {
	return len(src), nil
}

func (noopCodec) MaxCompressedLen(n int) int { return n }
