// Copyright (C) 2024 FeatherDB Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package fdbstore

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/featherdb/fdb/internal/fdblog"
	"github.com/featherdb/fdb/internal/fdbstore/skiplist"
)

// Segment is one shard of one table partition's in-memory data: a map from
// key to KeyEntry, plus the row count and write mutex needed to keep Put
// safe under concurrent writers.
//
// The key map is read lock-free and written under writeMu by swapping in a
// new copy-on-write snapshot, mirroring the teacher's unlocked-read,
// locked-write cache discipline rather than a true lock-free skiplist.
type Segment struct {
	// Logger receives informational GC messages. A nil Logger drops them.
	Logger fdblog.Logger

	// Name is the table this segment holds, used only as the label on the
	// metrics this package's KeyEntry/Ticket pinning feeds. Segments
	// created without setting Name still work; they just report under an
	// empty table label.
	Name string

	keys     atomic.Pointer[map[string]*KeyEntry]
	writeMu  sync.Mutex
	rowCount atomic.Int64
}

// NewSegment returns an empty segment.
func NewSegment() *Segment {
	s := &Segment{}
	empty := make(map[string]*KeyEntry)
	s.keys.Store(&empty)
	return s
}

func (s *Segment) snapshot() map[string]*KeyEntry {
	return *s.keys.Load()
}

// RowCount returns the segment's row count using a relaxed load: it is
// advisory telemetry, not a synchronization point.
func (s *Segment) RowCount() int64 {
	return s.rowCount.Load()
}

// Put inserts (time, block) under key, creating the key's entry on first
// write. It implements the double-checked pattern required because the
// lock-free fast-path read can race a concurrent insert of the same key:
// a lock-free read that misses re-checks under writeMu before creating a
// new entry.
func (s *Segment) Put(key []byte, t int64, block *DataBlock) {
	k := string(key)

	if e, ok := s.snapshot()[k]; ok {
		e.put(t, block)
		s.rowCount.Add(1)
		return
	}

	s.writeMu.Lock()
	cur := s.snapshot()
	e, ok := cur[k]
	if !ok {
		e = newKeyEntry(key, s.Name)
		next := make(map[string]*KeyEntry, len(cur)+1)
		for kk, vv := range cur {
			next[kk] = vv
		}
		next[k] = e
		s.keys.Store(&next)
	}
	s.writeMu.Unlock()

	e.put(t, block)
	s.rowCount.Add(1)
}

// Get performs a lock-free lookup of the row stored for (key, time).
func (s *Segment) Get(key []byte, t int64) (*DataBlock, bool) {
	e, ok := s.snapshot()[string(key)]
	if !ok {
		return nil, false
	}
	return e.get(t)
}

// NewIterator returns a time-list iterator over key, pinning the entry
// onto ticket. The returned iterator is only safe to use while ticket
// remains unreleased; dropping the iterator itself releases nothing.
func (s *Segment) NewIterator(key []byte, ticket *Ticket) (*skiplist.Iterator[*DataBlock], bool) {
	e, ok := s.snapshot()[string(key)]
	if !ok {
		return nil, false
	}
	return e.newIterator(ticket), true
}

// GCResult summarizes one GC pass: how many row versions and how many
// underlying data blocks it freed. NodesFreed can exceed BlocksFreed since
// a block may be shared across index dimensions and only releases once
// every dimension's node referencing it is gone.
type GCResult struct {
	NodesFreed  int
	BlocksFreed int
}

func (s *Segment) freeDetached(detached *skiplist.Node[*DataBlock]) GCResult {
	var r GCResult
	skiplist.DetachedNodes(detached, func(n *skiplist.Node[*DataBlock]) {
		r.NodesFreed++
		if n.Value.release() {
			r.BlocksFreed++
		}
	})
	return r
}

// Gc4TTL expires every row version older than cutTime across all keys. An
// entry currently pinned by a live Ticket is skipped this pass and retried
// on the next call. Segment row count is decremented by the number of
// nodes freed.
func (s *Segment) Gc4TTL(cutTime int64) GCResult {
	start := time.Now()
	var total GCResult
	for _, e := range s.snapshot() {
		detached, attempted := e.splitIfUnread(cutTime)
		if !attempted || detached == nil {
			continue
		}
		r := s.freeDetached(detached)
		total.NodesFreed += r.NodesFreed
		total.BlocksFreed += r.BlocksFreed
	}
	if total.NodesFreed > 0 {
		s.rowCount.Add(-int64(total.NodesFreed))
	}
	s.logf("fdbstore: Gc4TTL(%d) freed %d nodes, %d blocks in %s",
		cutTime, total.NodesFreed, total.BlocksFreed, time.Since(start))
	return total
}

// Gc4Head retains only the keepN most recent row versions per key,
// discarding everything older. Keys with at most keepN versions are
// skipped outright; every key is still visited so the outer walk always
// advances, which fixes the original head-GC loop's "continue without
// advancing" defect.
func (s *Segment) Gc4Head(keepN int) GCResult {
	start := time.Now()
	var total GCResult
	for _, e := range s.snapshot() {
		cutTime, ok := e.cutTimeAfter(keepN)
		if !ok {
			continue
		}
		// cutTime is the time of the (keepN+1)-th entry itself, which must
		// also be discarded, so split on the next instant to include it.
		detached, attempted := e.splitIfUnread(cutTime + 1)
		if !attempted || detached == nil {
			continue
		}
		r := s.freeDetached(detached)
		total.NodesFreed += r.NodesFreed
		total.BlocksFreed += r.BlocksFreed
	}
	if total.NodesFreed > 0 {
		s.rowCount.Add(-int64(total.NodesFreed))
	}
	s.logf("fdbstore: Gc4Head(%d) freed %d nodes, %d blocks in %s",
		keepN, total.NodesFreed, total.BlocksFreed, time.Since(start))
	return total
}

// Release walks every entry, releases every block it still references,
// and clears the key map. It reports the total number of blocks released
// and is meant for tablet-unload teardown, not normal operation.
func (s *Segment) Release() int {
	var blocksFreed int
	for _, e := range s.snapshot() {
		it := e.timeList.NewIterator()
		for n := it.Next(); n != nil; n = it.Next() {
			if n.Value.release() {
				blocksFreed++
			}
		}
	}
	empty := make(map[string]*KeyEntry)
	s.keys.Store(&empty)
	return blocksFreed
}

func (s *Segment) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
