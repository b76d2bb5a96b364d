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

// Package fdbmetrics exposes the process-wide Prometheus collectors for a
// tablet server: row puts, GC activity, and plan cache behavior. cmd/fdbd
// registers these once at startup and serves them over its debug HTTP
// endpoint.
package fdbmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RowPuts counts successful Segment.Put calls, labeled by table.
	RowPuts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "row_puts_total",
		Help:      "Number of rows written to a segment.",
	}, []string{"table"})

	// BytesWritten counts encoded row bytes written, labeled by table.
	BytesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "bytes_written_total",
		Help:      "Bytes of encoded row data written to a segment.",
	}, []string{"table"})

	// GCPasses counts completed Gc4TTL/Gc4Head passes, labeled by table and
	// strategy.
	GCPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "gc_passes_total",
		Help:      "Number of completed garbage collection passes.",
	}, []string{"table", "strategy"})

	// GCNodesFreed counts row versions freed by GC, labeled by table and
	// strategy.
	GCNodesFreed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "gc_nodes_freed_total",
		Help:      "Number of row versions freed by garbage collection.",
	}, []string{"table", "strategy"})

	// GCBlocksFreed counts data blocks freed by GC, labeled by table and
	// strategy. Can be lower than GCNodesFreed since a block may be shared
	// across index dimensions.
	GCBlocksFreed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "gc_blocks_freed_total",
		Help:      "Number of data blocks freed by garbage collection.",
	}, []string{"table", "strategy"})

	// PlanCacheHits counts plan cache lookups that found a cached plan,
	// labeled by database.
	PlanCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "router",
		Name:      "plan_cache_hits_total",
		Help:      "Number of plan cache lookups that hit.",
	}, []string{"database"})

	// PlanCacheMisses counts plan cache lookups that missed, labeled by
	// database.
	PlanCacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "router",
		Name:      "plan_cache_misses_total",
		Help:      "Number of plan cache lookups that missed.",
	}, []string{"database"})

	// PlanCacheEvictions counts entries evicted from a database's plan
	// cache by the LRU policy.
	PlanCacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fdb",
		Subsystem: "router",
		Name:      "plan_cache_evictions_total",
		Help:      "Number of plan cache entries evicted by LRU.",
	}, []string{"database"})

	// ActiveTickets gauges the number of entry pins currently held by
	// reader Tickets, labeled by table: a Ticket pinning two entries
	// counts twice.
	ActiveTickets = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fdb",
		Subsystem: "store",
		Name:      "active_tickets",
		Help:      "Number of segment entry pins currently held by reader tickets.",
	}, []string{"table"})
)

// MustRegister registers every collector in this package against reg. It
// is named to mirror prometheus.MustRegister's panic-on-duplicate
// semantics: call it exactly once per process, typically from cmd/fdbd's
// main.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RowPuts,
		BytesWritten,
		GCPasses,
		GCNodesFreed,
		GCBlocksFreed,
		PlanCacheHits,
		PlanCacheMisses,
		PlanCacheEvictions,
		ActiveTickets,
	)
}
