// Copyright 2026 The Levelidx Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package base

import (
	"github.com/cockroachdb/redact"
)

// TableNum is an identifier for a table, unique across the lifetime of the
// owning store. It appears here for diagnostics only; the index never keys
// anything off it.
type TableNum uint64

// String implements fmt.Stringer.
func (tn TableNum) String() string {
	return redact.StringWithoutMarkers(tn)
}

// SafeFormat implements redact.SafeFormatter.
func (tn TableNum) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%06d", redact.SafeUint(uint64(tn)))
}

// TableMetadata is the slice of a table's metadata that next-level indexing
// consumes. The version layer owns the authoritative metadata; instances are
// borrowed for the duration of a rebuild and the index retains only
// positional offsets into each level's table sequence, never the metadata
// itself.
type TableMetadata struct {
	// TableNum identifies the table. Diagnostics only.
	TableNum TableNum

	// Smallest and Largest bound the user keys present in the table,
	// inclusive on both ends.
	Smallest []byte
	Largest  []byte
}

// ContainsUserKey returns true if key falls within the table's bounds.
func (m *TableMetadata) ContainsUserKey(cmp Compare, key []byte) bool {
	return cmp(m.Smallest, key) <= 0 && cmp(key, m.Largest) <= 0
}

// String implements fmt.Stringer.
func (m *TableMetadata) String() string {
	return redact.StringWithoutMarkers(m)
}

// SafeFormat implements redact.SafeFormatter.
func (m *TableMetadata) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s:[%s-%s]", m.TableNum, FormatBytes(m.Smallest), FormatBytes(m.Largest))
}
