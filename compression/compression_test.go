// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compression

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ctabledb/ctable/internal/base"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("hello world"),
		bytes.Repeat([]byte("abcdefgh"), 4096),
		func() []byte {
			rng := rand.New(rand.NewSource(0))
			b := make([]byte, 32<<10)
			rng.Read(b)
			return b
		}(),
	}
	for _, algorithm := range []Algorithm{None, Snappy, Zstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			codec, err := GetCodec(algorithm)
			require.NoError(t, err)
			require.Equal(t, algorithm, codec.Algorithm())
			for _, input := range inputs {
				compressed := codec.Compress(nil, input)
				require.LessOrEqual(t, len(compressed), codec.MaxCompressedLen(len(input)))

				n, err := codec.DecompressedLen(compressed)
				require.NoError(t, err)
				require.Equal(t, len(input), n)

				out := make([]byte, n)
				require.NoError(t, codec.DecompressInto(out, compressed))
				require.Equal(t, append([]byte(nil), input...), append([]byte(nil), out...))
			}
		})
	}
}

func TestCodecCorruptInput(t *testing.T) {
	for _, algorithm := range []Algorithm{Snappy, Zstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			codec, err := GetCodec(algorithm)
			require.NoError(t, err)
			compressed := codec.Compress(nil, bytes.Repeat([]byte("payload"), 100))
			n, err := codec.DecompressedLen(compressed)
			require.NoError(t, err)

			corrupted := append([]byte(nil), compressed...)
			for i := len(corrupted) / 2; i < len(corrupted); i++ {
				corrupted[i] ^= 0xff
			}
			out := make([]byte, n)
			err = codec.DecompressInto(out, corrupted)
			require.Error(t, err)
			require.True(t, base.IsCorruptionError(err))
		})
	}
}

func TestAlgorithmFromString(t *testing.T) {
	for _, algorithm := range []Algorithm{None, Snappy, Zstd} {
		got, err := AlgorithmFromString(algorithm.String())
		require.NoError(t, err)
		require.Equal(t, algorithm, got)
	}
	_, err := AlgorithmFromString("lzma")
	require.Error(t, err)
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec(Algorithm(250))
	require.Error(t, err)
	require.True(t, base.IsCorruptionError(err))
}
