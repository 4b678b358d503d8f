// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ctabledb/ctable"
	"github.com/ctabledb/ctable/blockstore"
	"github.com/ctabledb/ctable/internal/base"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "print the contents of a tablet's superblock",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dirname == "" {
			return errors.New("--dir is required")
		}
		store, err := blockstore.OpenFileStore(dirname)
		if err != nil {
			return err
		}
		var best *ctable.Superblock
		for _, id := range []base.BlockID{toolBootstrap.BlockA, toolBootstrap.BlockB} {
			b, err := blockstore.ReadBlock(store, id)
			if err != nil {
				if errors.Is(err, base.ErrNotFound) {
					continue
				}
				return err
			}
			if len(b) == 0 {
				// Reserved but not yet written.
				continue
			}
			sb, err := ctable.DecodeSuperblock(b)
			if err != nil {
				fmt.Printf("superblock slot %s: %v\n", id, err)
				continue
			}
			if best == nil || sb.Generation > best.Generation {
				best = sb
			}
		}
		if best == nil {
			return errors.Newf("no readable superblock in %s", dirname)
		}
		if tabletID != "" && best.TabletID != tabletID {
			return errors.Newf("superblock names tablet %q, expected %q", best.TabletID, tabletID)
		}
		fmt.Printf("tablet %s generation %d columns %d next-row-set-id %s\n",
			best.TabletID, best.Generation, best.NumColumns, best.NextRowSetID)
		fmt.Printf("key range [%q, %q)\n", best.StartKey, best.EndKey)
		for i := range best.RowSets {
			desc := &best.RowSets[i]
			fmt.Printf("rowset %s: bloom=%s adhoc-index=%s columns=%v deltas=%v\n",
				desc.ID, desc.BloomBlock, desc.AdHocIndexBlock, desc.ColumnBlocks, desc.DeltaBlocks)
		}
		return nil
	},
}
