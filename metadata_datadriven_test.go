// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ctable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/ctabledb/ctable/blockstore"
	"github.com/ctabledb/ctable/internal/base"
)

func TestMetadataDataDriven(t *testing.T) {
	var store *blockstore.MemStore
	var tm *TabletMetadata
	var tabletID string
	var numColumns int
	pending := make(map[base.RowSetID]*RowSetMetadata)

	formatErr := func(err error) string {
		switch {
		case base.IsInvariantViolation(err):
			return "invariant violation\n"
		case base.IsCorruptionError(err):
			return "corruption\n"
		default:
			return fmt.Sprintf("error: %v\n", err)
		}
	}

	lookupRowSet := func(t *testing.T, td *datadriven.TestData) *RowSetMetadata {
		t.Helper()
		var arg int
		td.ScanArgs(t, "rowset", &arg)
		id := base.RowSetID(arg)
		if rs, ok := pending[id]; ok {
			return rs
		}
		rs := tm.RowSet(id)
		if rs == nil {
			t.Fatalf("unknown row-set %s", id)
		}
		return rs
	}

	datadriven.RunTest(t, "testdata/metadata", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "create":
			td.ScanArgs(t, "tablet", &tabletID)
			td.ScanArgs(t, "columns", &numColumns)
			store = blockstore.NewMem()
			pending = make(map[base.RowSetID]*RowSetMetadata)
			tm = NewTabletMetadata(store, tabletID, testBootstrap(), nil, nil, numColumns, nil)
			if err := tm.Create(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("created %s\n", tabletID)

		case "create-rowset":
			rs := tm.CreateRowSet()
			pending[rs.ID()] = rs
			return fmt.Sprintf("rowset %s\n", rs.ID())

		case "new-column-block":
			rs := lookupRowSet(t, td)
			var col int
			td.ScanArgs(t, "col", &col)
			w, err := rs.NewColumnDataBlock(col)
			if err != nil {
				return formatErr(err)
			}
			if err := w.Close(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("block %s\n", rs.ColumnBlockIDs()[col])

		case "new-bloom-block":
			rs := lookupRowSet(t, td)
			w, err := rs.NewBloomDataBlock()
			if err != nil {
				return formatErr(err)
			}
			if err := w.Close(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("block %s\n", rs.BloomBlockID())

		case "new-delta-block":
			rs := lookupRowSet(t, td)
			w, blockID, err := rs.NewDeltaDataBlock()
			if err != nil {
				return formatErr(err)
			}
			if err := w.Close(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("block %s\n", blockID)

		case "commit-delta":
			rs := lookupRowSet(t, td)
			var deltaID, blockID int
			td.ScanArgs(t, "delta", &deltaID)
			td.ScanArgs(t, "block", &blockID)
			if err := rs.CommitDeltaDataBlock(base.DeltaID(deltaID), base.BlockID(blockID)); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("count %d\n", rs.DeltaBlockCount())

		case "commit":
			var toRemove []base.RowSetID
			var toAdd []*RowSetMetadata
			if td.HasArg("remove") {
				var arg string
				td.ScanArgs(t, "remove", &arg)
				for _, s := range strings.Split(arg, ",") {
					var id int
					fmt.Sscanf(s, "%d", &id)
					toRemove = append(toRemove, base.RowSetID(id))
				}
			}
			if td.HasArg("add") {
				var arg string
				td.ScanArgs(t, "add", &arg)
				for _, s := range strings.Split(arg, ",") {
					var id int
					fmt.Sscanf(s, "%d", &id)
					rs, ok := pending[base.RowSetID(id)]
					if !ok {
						t.Fatalf("no pending row-set %d", id)
					}
					toAdd = append(toAdd, rs)
				}
			}
			if err := tm.UpdateAndFlush(toRemove, toAdd); err != nil {
				return formatErr(err)
			}
			for _, rs := range toAdd {
				delete(pending, rs.ID())
			}
			return fmt.Sprintf("generation %d\n", tm.Generation())

		case "flush":
			if err := tm.Flush(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("generation %d\n", tm.Generation())

		case "reload":
			pending = make(map[base.RowSetID]*RowSetMetadata)
			tm = NewTabletMetadata(store, tabletID, testBootstrap(), nil, nil, numColumns, nil)
			if err := tm.Load(); err != nil {
				return formatErr(err)
			}
			return fmt.Sprintf("generation %d\n", tm.Generation())

		case "rowsets":
			rowsets := tm.RowSets()
			if len(rowsets) == 0 {
				return "empty\n"
			}
			var sb strings.Builder
			for _, rs := range rowsets {
				sb.WriteString(rs.String())
				sb.WriteString("\n")
			}
			return sb.String()

		default:
			t.Fatalf("unknown command %q", td.Cmd)
			return ""
		}
	})
}
