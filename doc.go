// Copyright 2026 The Levelidx Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package levelidx accelerates multi-level lookups in a leveled LSM by
// precomputing, for every table in a level, the contiguous range of tables in
// the next level whose key ranges could overlap it. A lookup binary searches
// the first indexed level once; at each subsequent level it narrows the
// candidate range in O(1) from the hint of the table it just visited, instead
// of binary searching the whole level again.
//
// The index is positional: it stores integer offsets into each level's table
// sequence as it existed at the last rebuild, never the table metadata
// itself. The version layer rebuilds the index wholesale whenever a level's
// table set changes (flush, compaction, ingest) while holding its own
// version-installation exclusivity. Between rebuilds the structure is an
// immutable snapshot: any number of concurrent lookups may resolve against it
// without synchronization. The intended pattern is copy-on-rebuild — readers
// keep the instance they acquired while a replacement is built and only ever
// observe fully built structures.
//
// Level 0 is never indexed; its tables overlap, so no per-table hint can
// bound a search below it.
package levelidx
