// Copyright 2026 The Levelidx Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package levelidx

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lsmtools/levelidx/internal/base"
	"github.com/lsmtools/levelidx/internal/invariants"
)

// An indexUnit is the hint attached to one table, locating the tables in the
// next level whose key ranges its bounds could overlap.
type indexUnit struct {
	// smallestLB is the position of the leftmost next-level table whose
	// largest key is >= this table's smallest key, or the next level's length
	// if no such table exists (past the end).
	smallestLB int32
	// largestLB is the position of the leftmost next-level table whose
	// largest key is >= this table's largest key, or the next level's length.
	largestLB int32
	// smallestRB is the position of the rightmost next-level table whose
	// smallest key is <= this table's smallest key, or -1 if no such table
	// exists (before the start).
	smallestRB int32
	// largestRB is the position of the rightmost next-level table whose
	// smallest key is <= this table's largest key, or -1.
	largestRB int32
}

// FileIndexer maintains the per-table next-level hints for every indexed
// level. UpdateIndex is single-writer and must not overlap with itself or
// with readers of the same instance; GetNextLevelIndex is read-only and safe
// for any number of concurrent callers between rebuilds.
type FileIndexer struct {
	numLevels int
	cmp       base.Compare
	logger    base.Logger

	// nextLevelIndex[l] holds one indexUnit per table in level l, for levels
	// 1..numLevels-2. Level 0 is never indexed because its tables overlap.
	// The last level has no next level to point into.
	nextLevelIndex [][]indexUnit
	// levelRB[l] is the position of the last table in level l as of the last
	// UpdateIndex, or -1 if the level was empty. It clamps the right edge of
	// resolved ranges.
	levelRB []int32
}

// NewFileIndexer constructs an indexer for numLevels levels ordered by cmp.
// A nil logger falls back to base.DefaultLogger; the logger only fires on
// contract violations detected in invariant builds.
func NewFileIndexer(numLevels int, cmp base.Compare, logger base.Logger) *FileIndexer {
	if logger == nil {
		logger = base.DefaultLogger{}
	}
	f := &FileIndexer{
		numLevels:      numLevels,
		cmp:            cmp,
		logger:         logger,
		nextLevelIndex: make([][]indexUnit, numLevels),
		levelRB:        make([]int32, numLevels),
	}
	for i := range f.levelRB {
		f.levelRB[i] = -1
	}
	return f
}

// NumLevels returns the level count the indexer was constructed with.
func (f *FileIndexer) NumLevels() int {
	return f.numLevels
}

// NumLevelIndex returns the number of per-level hint sequences, which always
// equals the level count.
func (f *FileIndexer) NumLevelIndex() int {
	return len(f.nextLevelIndex)
}

// LevelIndexSize returns the number of hints held for level. Diagnostics and
// tests only.
func (f *FileIndexer) LevelIndexSize(level int) int {
	return len(f.nextLevelIndex[level])
}

// ClearIndex drops every level's hints ahead of a rebuild. The per-level
// bound caches are left in place; UpdateIndex overwrites them. Level 0 never
// has hints to drop.
func (f *FileIndexer) ClearIndex() {
	for level := 1; level < f.numLevels; level++ {
		f.nextLevelIndex[level] = nil
	}
}

// UpdateIndex rebuilds all hints from the given per-level table lists,
// discarding whatever was computed before. files must hold one slice per
// level; files[l] must be sorted ascending by key range and non-overlapping
// for every l >= 1. That ordering is the version layer's contract and is only
// verified under the invariants build tag. A nil files is a no-op.
//
// The version layer calls UpdateIndex while installing a new version, before
// the version becomes visible to lookups, so no reader can observe a
// partially built index.
func (f *FileIndexer) UpdateIndex(files [][]*base.TableMetadata) {
	if files == nil {
		return
	}
	if invariants.Enabled {
		f.checkLevelsOrdered(files)
	}

	for level := 1; level < f.numLevels-1; level++ {
		upper := files[level]
		lower := files[level+1]
		f.levelRB[level] = int32(len(upper)) - 1
		if len(upper) == 0 {
			// Nothing to index; drop any hints from a previous build.
			f.nextLevelIndex[level] = nil
			continue
		}
		index := make([]indexUnit, len(upper))
		f.nextLevelIndex[level] = index

		// Four single-pass merges over the two sorted levels, one per hint
		// field, O(len(upper)+len(lower)) for the level in total.
		calculateLB(f.cmp, upper, lower, index,
			func(m *base.TableMetadata) []byte { return m.Smallest },
			func(u *indexUnit, pos int32) { u.smallestLB = pos })
		calculateLB(f.cmp, upper, lower, index,
			func(m *base.TableMetadata) []byte { return m.Largest },
			func(u *indexUnit, pos int32) { u.largestLB = pos })
		calculateRB(f.cmp, upper, lower, index,
			func(m *base.TableMetadata) []byte { return m.Smallest },
			func(u *indexUnit, pos int32) { u.smallestRB = pos })
		calculateRB(f.cmp, upper, lower, index,
			func(m *base.TableMetadata) []byte { return m.Largest },
			func(u *indexUnit, pos int32) { u.largestRB = pos })
	}
	f.levelRB[f.numLevels-1] = int32(len(files[f.numLevels-1])) - 1

	if invariants.Enabled {
		f.validate()
	}
}

// GetNextLevelIndex returns the inclusive range of table positions
// [leftBound, rightBound] to search in level+1 for a key whose lookup reached
// the table at (level, fileIndex). cmpSmallest and cmpLargest are the signs
// of comparing the sought key against that table's smallest and largest
// bounds; the caller already computed both while positioning within level.
// rightBound < leftBound means no next-level table can contain the key.
//
// At the last level the range is (0, -1): there is no next level to narrow.
//
// GetNextLevelIndex performs no mutation and may be called from any number of
// goroutines concurrently, provided no UpdateIndex runs against the same
// instance.
func (f *FileIndexer) GetNextLevelIndex(
	level, fileIndex, cmpSmallest, cmpLargest int,
) (leftBound, rightBound int) {
	if invariants.Enabled && level <= 0 {
		panic(errors.AssertionFailedf("levelidx: level %d has no index", level))
	}

	// Last level, no hint.
	if level == f.numLevels-1 {
		return 0, -1
	}

	if invariants.Enabled {
		invariants.CheckBounds(fileIndex, int(f.levelRB[level])+1)
	}

	u := &f.nextLevelIndex[level][fileIndex]
	switch {
	case cmpSmallest < 0:
		// The key precedes this table. It can only land in a next-level table
		// ending at or after the previous table's largest key; with no
		// previous table, level coverage starts the range at 0.
		leftBound = 0
		if fileIndex > 0 {
			leftBound = int(f.nextLevelIndex[level][fileIndex-1].largestLB)
		}
		rightBound = int(u.smallestRB)
	case cmpSmallest == 0:
		leftBound, rightBound = int(u.smallestLB), int(u.smallestRB)
	case cmpLargest < 0:
		// cmpSmallest > 0: the key is strictly inside this table's bounds.
		leftBound, rightBound = int(u.smallestLB), int(u.largestRB)
	case cmpLargest == 0:
		leftBound, rightBound = int(u.largestLB), int(u.largestRB)
	case cmpLargest > 0:
		leftBound, rightBound = int(u.largestLB), int(f.levelRB[level+1])
	default:
		panic(errors.AssertionFailedf(
			"levelidx: inconsistent comparison signs cmpSmallest=%d cmpLargest=%d",
			cmpSmallest, cmpLargest))
	}

	if invariants.Enabled {
		if leftBound < 0 || leftBound > rightBound+1 || rightBound > int(f.levelRB[level+1]) {
			panic(errors.AssertionFailedf(
				"levelidx: L%d table %d resolved to invalid range [%d, %d], next level ends at %d",
				level, fileIndex, leftBound, rightBound, f.levelRB[level+1]))
		}
	}
	return leftBound, rightBound
}

// calculateLB runs the forward merge producing a left-bound field: for each
// upper table it records the position of the first lower table whose largest
// key is >= the selected upper key, or len(lower) when every lower table ends
// before it.
func calculateLB(
	cmp base.Compare,
	upper, lower []*base.TableMetadata,
	index []indexUnit,
	upperKey func(*base.TableMetadata) []byte,
	setIndex func(*indexUnit, int32),
) {
	upperIdx, lowerIdx := 0, 0
	for upperIdx < len(upper) && lowerIdx < len(lower) {
		c := cmp(upperKey(upper[upperIdx]), lower[lowerIdx].Largest)
		switch {
		case c == 0:
			setIndex(&index[upperIdx], int32(lowerIdx))
			upperIdx++
			lowerIdx++
		case c > 0:
			// The lower table ends before the upper key; no key at or past
			// the upper key can land in it. Move to the next lower table.
			lowerIdx++
		default:
			// The lower table ends at or after the upper key. It is the
			// leftmost candidate for this upper table and may still be the
			// candidate for the next one.
			setIndex(&index[upperIdx], int32(lowerIdx))
			upperIdx++
		}
	}
	// Lower level exhausted: the remaining upper keys sort after every lower
	// table. len(lower) is the past-the-end sentinel.
	for ; upperIdx < len(upper); upperIdx++ {
		setIndex(&index[upperIdx], int32(len(lower)))
	}
}

// calculateRB runs the backward merge producing a right-bound field: for each
// upper table it records the position of the last lower table whose smallest
// key is <= the selected upper key, or -1 when every lower table starts after
// it.
func calculateRB(
	cmp base.Compare,
	upper, lower []*base.TableMetadata,
	index []indexUnit,
	upperKey func(*base.TableMetadata) []byte,
	setIndex func(*indexUnit, int32),
) {
	upperIdx, lowerIdx := len(upper)-1, len(lower)-1
	for upperIdx >= 0 && lowerIdx >= 0 {
		c := cmp(upperKey(upper[upperIdx]), lower[lowerIdx].Smallest)
		switch {
		case c == 0:
			setIndex(&index[upperIdx], int32(lowerIdx))
			upperIdx--
			lowerIdx--
		case c < 0:
			// The lower table starts after the upper key; skip it.
			lowerIdx--
		default:
			setIndex(&index[upperIdx], int32(lowerIdx))
			upperIdx--
		}
	}
	// Lower level exhausted: the remaining upper keys sort before every lower
	// table. -1 is the before-the-start sentinel.
	for ; upperIdx >= 0; upperIdx-- {
		setIndex(&index[upperIdx], -1)
	}
}

// checkLevelsOrdered verifies the version layer's ordering contract: every
// level at or above 1 is sorted ascending by key range with non-overlapping
// tables. Mis-sorted input would make the merge passes produce ranges that
// silently exclude live tables, the one failure mode a lookup cannot detect,
// so a violation is fatal. Invariant builds only.
func (f *FileIndexer) checkLevelsOrdered(files [][]*base.TableMetadata) {
	for level := 1; level < f.numLevels && level < len(files); level++ {
		tables := files[level]
		for i := range tables {
			if f.cmp(tables[i].Smallest, tables[i].Largest) > 0 {
				f.logger.Fatalf("levelidx: L%d table %s has inverted bounds", level, tables[i])
			}
			if i > 0 && f.cmp(tables[i-1].Largest, tables[i].Smallest) >= 0 {
				f.logger.Fatalf("levelidx: L%d tables %s, %s out of order or overlapping",
					level, tables[i-1], tables[i])
			}
		}
	}
}

// validate checks the structural guarantees the resolver relies on: within a
// level the four hint fields never decrease from one table to the next, left
// bounds never exceed the matching right bound by more than one, and no field
// points past the next level's extent. Invariant builds only.
func (f *FileIndexer) validate() {
	for level := 1; level < f.numLevels-1; level++ {
		index := f.nextLevelIndex[level]
		lowerLen := f.levelRB[level+1] + 1
		for i := range index {
			u := &index[i]
			ok := 0 <= u.smallestLB && u.smallestLB <= u.smallestRB+1 &&
				u.smallestLB <= u.largestLB &&
				u.smallestRB <= u.largestRB &&
				u.largestLB <= lowerLen && u.largestRB < lowerLen
			if ok && i > 0 {
				prev := &index[i-1]
				ok = prev.smallestLB <= u.smallestLB && prev.largestLB <= u.largestLB &&
					prev.smallestRB <= u.smallestRB && prev.largestRB <= u.largestRB
			}
			if !ok {
				panic(errors.AssertionFailedf(
					"levelidx: L%d table %d hint violates index invariants: %v", level, i, u))
			}
		}
	}
}

// DebugString returns a human-readable dump of the index, one stanza per
// level. Intended for tests and diagnostics.
func (f *FileIndexer) DebugString() string {
	var buf strings.Builder
	for level := 1; level < f.numLevels; level++ {
		fmt.Fprintf(&buf, "L%d: last=%d\n", level, f.levelRB[level])
		for i := range f.nextLevelIndex[level] {
			u := &f.nextLevelIndex[level][i]
			fmt.Fprintf(&buf, "  %d: smallest=[%d,%d] largest=[%d,%d]\n",
				i, u.smallestLB, u.smallestRB, u.largestLB, u.largestRB)
		}
	}
	return buf.String()
}
