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

	"github.com/featherdb/fdb/internal/fdbstore/skiplist"
)

// KeyEntry holds every version of one key's row, newest first. It is
// created on first Put for a key and is never removed from its Segment
// during normal operation — an empty time list is cheap to keep around and
// avoids repeated map churn for keys with bursty writes.
type KeyEntry struct {
	Key   []byte
	table string

	timeList *skiplist.List[*DataBlock]
	readers  atomic.Int32
	writeMu  sync.Mutex
}

func newKeyEntry(key []byte, table string) *KeyEntry {
	return &KeyEntry{
		Key:      key,
		table:    table,
		timeList: skiplist.New[*DataBlock](),
	}
}

// put inserts (time, block) into the entry's time list under the entry's
// write mutex. Serializing here is what gives "within one KeyEntry,
// inserts are serialized" its meaning.
func (e *KeyEntry) put(time int64, block *DataBlock) {
	e.writeMu.Lock()
	e.timeList.Insert(time, block)
	e.writeMu.Unlock()
}

// get performs a lock-free lookup of the exact time.
func (e *KeyEntry) get(time int64) (*DataBlock, bool) {
	return e.timeList.Get(time)
}

// newIterator pins e onto ticket and returns a fresh iterator over e's
// time list. Dropping the returned iterator does not unpin e: the ticket's
// lifetime, not the iterator's, controls when the pin is released.
func (e *KeyEntry) newIterator(ticket *Ticket) *skiplist.Iterator[*DataBlock] {
	ticket.push(e)
	return e.timeList.NewIterator()
}

// Len reports how many row versions the entry currently holds. Intended
// for tests and metrics, not on any hot path.
func (e *KeyEntry) Len() int {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.timeList.Len()
}

// splitIfUnread performs a pinned split at cutTime, but only if no reader
// currently has this entry pinned. It returns the detached chain (nil if
// skipped or nothing qualified) and whether the split was attempted.
func (e *KeyEntry) splitIfUnread(cutTime int64) (detached *skiplist.Node[*DataBlock], attempted bool) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if e.readers.Load() != 0 {
		return nil, false
	}
	return e.timeList.Split(cutTime), true
}

// cutTimeAfter walks to the (keepN+1)-th entry (1-indexed, newest first)
// and returns its time, or false if the list has keepN or fewer entries
// and there is nothing to trim. Lock-free: a concurrent insert at the head
// can only shift which entries occupy these positions, never corrupt the
// walk, since forward pointers are only ever published, not mutated.
func (e *KeyEntry) cutTimeAfter(keepN int) (int64, bool) {
	it := e.timeList.NewIterator()
	var node *skiplist.Node[*DataBlock]
	for i := 0; i <= keepN; i++ {
		node = it.Next()
		if node == nil {
			return 0, false
		}
	}
	return node.Time, true
}
