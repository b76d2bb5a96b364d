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

// Package plancache holds one bounded, strict-LRU cache of compiled SQL
// plans per database. Lookup and insert are both O(1) expected; eviction
// order is exactly least-recently-used.
package plancache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the per-database plan cache size used when a Cache is
// constructed without an explicit override.
const DefaultCapacity = 50

// Cache is a database -> bounded LRU<sql, *Entry> map. It is guarded by a
// single spinlock-style mutex rather than a lock per database, since plan
// lookups are expected to be cheap enough that lock contention here is
// never the bottleneck (ground: tenant/evict.go's single evictHeap mutex
// serving the whole tenant cache rather than one per tenant).
type Cache[T any] struct {
	capacity int
	onEvict  func(database string)

	mu sync.Mutex
	db map[string]*lru.Cache[string, T]
}

// New returns a Cache whose per-database LRUs hold up to capacity entries.
// capacity <= 0 selects DefaultCapacity.
func New[T any](capacity int) *Cache[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[T]{
		capacity: capacity,
		db:       make(map[string]*lru.Cache[string, T]),
	}
}

// OnEvict registers fn to be called, with the owning database name, every
// time the LRU policy evicts an entry. Only one callback is supported;
// calling it again replaces the previous one. Must be called before any
// Get/Put establishes a database's LRU, since the callback is bound at LRU
// construction time.
func (c *Cache[T]) OnEvict(fn func(database string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

func (c *Cache[T]) lruFor(database string) *lru.Cache[string, T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.db[database]
	if !ok {
		onEvict := c.onEvict
		var evictCb func(string, T)
		if onEvict != nil {
			evictCb = func(string, T) { onEvict(database) }
		}
		// capacity is always > 0 by construction, so the error case of
		// lru.NewWithEvict can never trigger here.
		l, _ = lru.NewWithEvict[string, T](c.capacity, evictCb)
		c.db[database] = l
	}
	return l
}

// Get returns the cached entry for (database, sql), if present.
func (c *Cache[T]) Get(database, sql string) (T, bool) {
	return c.lruFor(database).Get(sql)
}

// Put inserts or refreshes the cached entry for (database, sql). Entries
// are never proactively invalidated: schema evolution is expected to bump
// a plan version that the caller uses to decide whether to call Purge.
func (c *Cache[T]) Put(database, sql string, entry T) {
	c.lruFor(database).Add(sql, entry)
}

// Purge discards every cached plan for database, forcing the next lookup
// to recompile. Used after schema changes invalidate the whole database's
// plans at once.
func (c *Cache[T]) Purge(database string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.db, database)
}

// Len reports how many entries are cached for database, for tests and
// metrics.
func (c *Cache[T]) Len(database string) int {
	return c.lruFor(database).Len()
}
