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
	"fmt"
	"strconv"
	"testing"

	"golang.org/x/sync/errgroup"
)

func block(body string) *DataBlock {
	return NewDataBlock([]byte(body), 1)
}

// invariant 6: at most one entry per key.
func TestPutAtMostOneEntryPerKey(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("k"), 1, block("a"))
	s.Put([]byte("k"), 2, block("b"))
	s.Put([]byte("k"), 3, block("c"))

	snap := s.snapshot()
	if len(snap) != 1 {
		t.Fatalf("got %d entries, want 1", len(snap))
	}
	if snap["k"].Len() != 3 {
		t.Fatalf("entry has %d versions, want 3", snap["k"].Len())
	}
}

// invariant 7: iteration yields times in non-increasing order.
func TestIteratorNonIncreasing(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("k"), 100, block("a"))
	s.Put([]byte("k"), 300, block("c"))
	s.Put([]byte("k"), 200, block("b"))

	ticket := NewTicket()
	defer ticket.Release()
	it, ok := s.NewIterator([]byte("k"), ticket)
	if !ok {
		t.Fatal("expected entry for key k")
	}
	prev := int64(1 << 62)
	count := 0
	for n := it.Next(); n != nil; n = it.Next() {
		if n.Time > prev {
			t.Fatalf("time %d follows %d, not non-increasing", n.Time, prev)
		}
		prev = n.Time
		count++
	}
	if count != 3 {
		t.Fatalf("got %d entries, want 3", count)
	}
}

// S3 — concurrent put/iterate: 2 writers x 1000 puts each on interleaved
// keys, one reader takes a ticket for key K and iterates concurrently.
func TestConcurrentPutIterate(t *testing.T) {
	s := NewSegment()
	const perWriter = 1000
	const key = "K"

	var g errgroup.Group
	for w := 0; w < 2; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				k := key
				if i%2 == int(w%2) {
					k = fmt.Sprintf("other-%d-%d", w, i)
				}
				s.Put([]byte(k), int64(w*perWriter+i+1), block(strconv.Itoa(i)))
			}
			return nil
		})
	}

	g.Go(func() error {
		for i := 0; i < 50; i++ {
			ticket := NewTicket()
			it, ok := s.NewIterator([]byte(key), ticket)
			if ok {
				prev := int64(1 << 62)
				for n := it.Next(); n != nil; n = it.Next() {
					if n.Time > prev {
						return fmt.Errorf("torn read: time %d after %d", n.Time, prev)
					}
					prev = n.Time
				}
			}
			ticket.Release()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := s.RowCount(); got != 2000 {
		t.Fatalf("row count = %d, want 2000", got)
	}
}

// S4 (reconciled with invariant 8, "no entry contains a time < t" after
// Gc4TTL(t)) — a pinned entry is skipped, then freed once unpinned.
func TestGc4TTLPinnedSkip(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("K"), 100, block("a"))
	s.Put([]byte("K"), 200, block("b"))
	s.Put([]byte("K"), 300, block("c"))

	ticket := NewTicket()
	if _, ok := s.NewIterator([]byte("K"), ticket); !ok {
		t.Fatal("expected entry")
	}

	s.Gc4TTL(250)
	if s.snapshot()["K"].Len() != 3 {
		t.Fatal("pinned entry should not have been split")
	}

	ticket.Release()
	s.Gc4TTL(250)
	if got := s.snapshot()["K"].Len(); got != 1 {
		t.Fatalf("after unpinned Gc4TTL(250), len = %d, want 1", got)
	}
	if _, ok := s.Get([]byte("K"), 300); !ok {
		t.Fatal("time 300 should remain")
	}
	if _, ok := s.Get([]byte("K"), 100); ok {
		t.Fatal("time 100 should be gone")
	}
	if _, ok := s.Get([]byte("K"), 200); ok {
		t.Fatal("time 200 should be gone")
	}
	if got := s.RowCount(); got != 1 {
		t.Fatalf("row count = %d, want 1", got)
	}
}

// S5 — Gc4Head keep-1 retains only the newest entry.
func TestGc4HeadKeepOne(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("K"), 100, block("a"))
	s.Put([]byte("K"), 200, block("b"))
	s.Put([]byte("K"), 300, block("c"))

	s.Gc4Head(1)

	if got := s.snapshot()["K"].Len(); got != 1 {
		t.Fatalf("len = %d, want 1", got)
	}
	if _, ok := s.Get([]byte("K"), 300); !ok {
		t.Fatal("time 300 should remain")
	}
}

// Gc4Head must advance past every key even when a key's list has <= keepN
// entries, fixing the original "continue without advancing" defect.
func TestGc4HeadAdvancesPastShortLists(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("short"), 1, block("a"))
	s.Put([]byte("long"), 1, block("a"))
	s.Put([]byte("long"), 2, block("b"))
	s.Put([]byte("long"), 3, block("c"))

	s.Gc4Head(1)

	if got := s.snapshot()["short"].Len(); got != 1 {
		t.Fatalf("short list should be untouched, len = %d", got)
	}
	if got := s.snapshot()["long"].Len(); got != 1 {
		t.Fatalf("long list should be trimmed to 1, len = %d", got)
	}
}

// invariant 9: pin safety — while pinned, no reachable block is freed.
func TestPinSafety(t *testing.T) {
	s := NewSegment()
	b := block("a")
	s.Put([]byte("K"), 100, b)

	ticket := NewTicket()
	if _, ok := s.NewIterator([]byte("K"), ticket); !ok {
		t.Fatal("expected entry")
	}
	s.Gc4TTL(200) // would normally free time=100

	if b.dimCount.Load() == 0 {
		t.Fatal("block was freed while pinned")
	}
	ticket.Release()
}

// invariant 10: row_count equals puts so far minus nodes freed by GC.
func TestRowCountConservation(t *testing.T) {
	s := NewSegment()
	for i := int64(1); i <= 10; i++ {
		s.Put([]byte("K"), i, block(strconv.FormatInt(i, 10)))
	}
	if s.RowCount() != 10 {
		t.Fatalf("row count = %d, want 10", s.RowCount())
	}
	s.Gc4Head(3)
	if s.RowCount() != 3 {
		t.Fatalf("row count after Gc4Head(3) = %d, want 3", s.RowCount())
	}
}

func TestRelease(t *testing.T) {
	s := NewSegment()
	s.Put([]byte("a"), 1, block("x"))
	s.Put([]byte("b"), 1, block("y"))
	s.Put([]byte("b"), 2, block("z"))

	freed := s.Release()
	if freed != 3 {
		t.Fatalf("Release() freed %d blocks, want 3", freed)
	}
	if len(s.snapshot()) != 0 {
		t.Fatal("key map should be empty after Release")
	}
}
