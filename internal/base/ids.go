// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/redact"
)

// BlockID identifies a block within the block store. The zero value is
// the null sentinel, denoting a block that has not been assigned.
type BlockID uint64

// NullBlockID is the "unassigned" sentinel. The block store never
// allocates it.
const NullBlockID BlockID = 0

// IsNull reports whether the id is the unassigned sentinel.
func (id BlockID) IsNull() bool { return id == NullBlockID }

// String returns a string representation of the block id.
func (id BlockID) String() string {
	if id.IsNull() {
		return "(null)"
	}
	return fmt.Sprintf("%06d", uint64(id))
}

// SafeFormat implements redact.SafeFormatter.
func (id BlockID) SafeFormat(w redact.SafePrinter, _ rune) {
	if id.IsNull() {
		w.Print(redact.SafeString("(null)"))
		return
	}
	w.Printf("%06d", redact.SafeUint(id))
}

// ParseBlockID parses the provided string as a block id.
func ParseBlockID(s string) (id BlockID, ok bool) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return id, false
	}
	return BlockID(u), true
}

// RowSetID identifies a row-set within a tablet. Ids are assigned from
// a per-tablet monotonic counter, starting at zero, and are never
// reused.
type RowSetID int64

// String returns a string representation of the row-set id.
func (id RowSetID) String() string { return strconv.FormatInt(int64(id), 10) }

// SafeFormat implements redact.SafeFormatter.
func (id RowSetID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%d", redact.SafeInt(id))
}

// DeltaID orders the delta blocks layered atop a row-set's immutable
// base. Replay order is strictly increasing DeltaID.
type DeltaID uint64

// String returns a string representation of the delta id.
func (id DeltaID) String() string { return strconv.FormatUint(uint64(id), 10) }

// SafeFormat implements redact.SafeFormatter.
func (id DeltaID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%d", redact.SafeUint(id))
}
