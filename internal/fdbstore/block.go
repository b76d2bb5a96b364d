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

// Package fdbstore implements the in-memory, time-ordered key/value segment
// that backs one table partition's working set: a copy-on-write map of keys to
// per-key descending-time lists of encoded rows, with reference-counted
// blocks shared across secondary-index dimensions and two garbage
// collection strategies (time cutoff and keep-N-by-count).
package fdbstore

import "sync/atomic"

// DataBlock is one encoded row, shared by reference count across every
// segment (one per index dimension) that points at it. dimCount is a
// downward-counted fan-in rather than a general refcount: each segment
// that references the block owns exactly one decrement obligation, fixed
// at construction time, so a plain counter suffices where a richer
// shared-ownership type would be needed in a language without a GC.
type DataBlock struct {
	dimCount atomic.Int32
	Bytes    []byte
}

// NewDataBlock returns a block referenced from dims distinct segments.
// dims must be >= 1.
func NewDataBlock(bytes []byte, dims int32) *DataBlock {
	b := &DataBlock{Bytes: bytes}
	b.dimCount.Store(dims)
	return b
}

// release drops one dimension's reference and reports whether this was the
// last one, i.e. whether the block is now free to discard.
func (b *DataBlock) release() bool {
	return b.dimCount.Add(-1) == 0
}
