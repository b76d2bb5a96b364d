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

package skiplist

import "testing"

func collect(l *List[string]) []int64 {
	var got []int64
	it := l.NewIterator()
	for n := it.Next(); n != nil; n = it.Next() {
		got = append(got, n.Time)
	}
	return got
}

func TestInsertDescending(t *testing.T) {
	l := New[string]()
	l.Insert(100, "a")
	l.Insert(300, "c")
	l.Insert(200, "b")

	want := []int64{300, 200, 100}
	got := collect(l)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
}

func TestGet(t *testing.T) {
	l := New[string]()
	l.Insert(100, "a")
	l.Insert(300, "c")
	l.Insert(200, "b")

	v, ok := l.Get(200)
	if !ok || v != "b" {
		t.Fatalf("Get(200) = (%q, %v)", v, ok)
	}
	if _, ok := l.Get(150); ok {
		t.Fatal("Get(150) should miss")
	}
}

// S5 from spec.md section 8: Gc4Head keep-1 retains only the newest entry.
// Exercised here at the list level: Split keeps times >= cutTime, so, as
// Segment.Gc4Head does, the split is made one instant past the
// (keep_n+1)-th entry's time to detach that entry and everything older.
func TestSplitKeepOne(t *testing.T) {
	l := New[string]()
	l.Insert(100, "a")
	l.Insert(200, "b")
	l.Insert(300, "c")

	it := l.NewIterator()
	it.Next() // 300, the kept head
	second := it.Next()
	if second == nil || second.Time != 200 {
		t.Fatalf("expected second entry at time 200, got %v", second)
	}
	cutTime := second.Time + 1

	detached := l.Split(cutTime)
	var freed []int64
	DetachedNodes(detached, func(n *Node[string]) { freed = append(freed, n.Time) })

	if len(freed) != 2 || freed[0] != 200 || freed[1] != 100 {
		t.Fatalf("freed = %v, want [200 100]", freed)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	remaining := collect(l)
	if len(remaining) != 1 || remaining[0] != 300 {
		t.Fatalf("remaining = %v, want [300]", remaining)
	}
}

// S4 from spec.md section 8, reconciled with invariant 8 ("no entry
// contains a time < t" after Gc4TTL(t)): Split(250) over {100,200,300}
// detaches both 100 and 200, leaving only 300.
func TestSplitTTL(t *testing.T) {
	l := New[string]()
	l.Insert(100, "a")
	l.Insert(200, "b")
	l.Insert(300, "c")

	detached := l.Split(250)
	var freed []int64
	DetachedNodes(detached, func(n *Node[string]) { freed = append(freed, n.Time) })
	if len(freed) != 2 {
		t.Fatalf("freed = %v, want 2 entries", freed)
	}
	remaining := collect(l)
	if len(remaining) != 1 || remaining[0] != 300 {
		t.Fatalf("remaining = %v, want [300]", remaining)
	}
}

func TestSplitNoOp(t *testing.T) {
	l := New[string]()
	l.Insert(100, "a")
	l.Insert(200, "b")

	detached := l.Split(50)
	if detached != nil {
		t.Fatal("expected no detachment below the lowest time")
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}
