// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable"
	"github.com/ctabledb/ctable/blockstore"
	"github.com/spf13/cobra"
)

// The tool reserves the first two block ids of a fresh store for the
// superblock slots.
var toolBootstrap = ctable.BootstrapDescriptor{BlockA: 1, BlockB: 2}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "initialize a fresh tablet metadata directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dirname == "" || tabletID == "" {
			return errors.New("both --dir and --tablet are required")
		}
		store, err := blockstore.OpenFileStore(dirname)
		if err != nil {
			return err
		}
		tm := ctable.NewTabletMetadata(store, tabletID, toolBootstrap, nil, nil, numColumns, nil)
		if err := tm.Create(); err != nil {
			return err
		}
		fmt.Printf("created tablet %s in %s (%d columns)\n", tabletID, dirname, numColumns)
		return nil
	},
}
