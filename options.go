// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ctable

import (
	"github.com/ctabledb/ctable/compression"
	"github.com/ctabledb/ctable/internal/base"
)

// Options holds the tunable knobs of the metadata layer.
type Options struct {
	// Logger receives informational messages, e.g. when one of the two
	// superblock slots is unreadable on load.
	Logger base.Logger

	// Compression selects the codec applied to the superblock payload.
	// Defaults to snappy.
	Compression compression.Algorithm
}

// EnsureDefaults ensures that the default values for all options are
// set if a valid value was not already specified, returning the
// receiver for convenience.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.Logger == nil {
		o.Logger = base.DefaultLogger
	}
	if o.Compression == compression.None {
		o.Compression = compression.Snappy
	}
	return o
}
