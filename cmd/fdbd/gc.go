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

package main

import (
	"context"
	"time"

	"github.com/featherdb/fdb/internal/fdbmetrics"
)

// runGCLoop sweeps every owned segment on cfg.GC.Interval until ctx is
// canceled. A zero Interval disables the loop entirely: a tablet that
// never wants automatic GC just omits it from its config.
func (t *tabletServer) runGCLoop(ctx context.Context) {
	interval := t.cfg.GC.Interval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweepOnce()
		}
	}
}

func (t *tabletServer) sweepOnce() {
	cutTime := time.Now().Add(-t.cfg.GC.TTL).UnixMilli()
	for _, table := range t.tables() {
		seg := t.segment(table)
		if seg == nil {
			continue
		}
		if t.cfg.GC.TTL > 0 {
			r := seg.Gc4TTL(cutTime)
			fdbmetrics.GCPasses.WithLabelValues(table, "ttl").Inc()
			fdbmetrics.GCNodesFreed.WithLabelValues(table, "ttl").Add(float64(r.NodesFreed))
			fdbmetrics.GCBlocksFreed.WithLabelValues(table, "ttl").Add(float64(r.BlocksFreed))
		}
		if t.cfg.GC.KeepN > 0 {
			r := seg.Gc4Head(t.cfg.GC.KeepN)
			fdbmetrics.GCPasses.WithLabelValues(table, "head").Inc()
			fdbmetrics.GCNodesFreed.WithLabelValues(table, "head").Add(float64(r.NodesFreed))
			fdbmetrics.GCBlocksFreed.WithLabelValues(table, "head").Add(float64(r.BlocksFreed))
		}
	}
}
