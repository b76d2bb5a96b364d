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
	"sync"

	"github.com/featherdb/fdb/internal/fdbconfig"
	"github.com/featherdb/fdb/internal/fdblog"
	"github.com/featherdb/fdb/internal/fdbstore"
)

// tabletServer owns every segment this process is responsible for, keyed
// by table name. A real deployment shards further by partition; this
// process keeps one segment per table for the set of tables its config
// entry lists, which is enough to exercise Put/Get/Gc end to end.
type tabletServer struct {
	cfg    *fdbconfig.Config
	self   fdbconfig.Tablet
	logger fdblog.Logger

	mu       sync.RWMutex
	segments map[string]*fdbstore.Segment
}

func newTabletServer(cfg *fdbconfig.Config, self fdbconfig.Tablet, logger fdblog.Logger) *tabletServer {
	t := &tabletServer{
		cfg:      cfg,
		self:     self,
		logger:   logger,
		segments: make(map[string]*fdbstore.Segment, len(self.Tables)),
	}
	for _, table := range self.Tables {
		seg := fdbstore.NewSegment()
		seg.Name = table
		seg.Logger = fdblog.Safe(logger)
		t.segments[table] = seg
	}
	return t
}

// segment returns the segment for table, or nil if this tablet does not
// own it.
func (t *tabletServer) segment(table string) *fdbstore.Segment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.segments[table]
}

// tables returns a snapshot of the owned table names, for the GC sweep
// loop and the health probe handler.
func (t *tabletServer) tables() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.segments))
	for name := range t.segments {
		out = append(out, name)
	}
	return out
}

func (t *tabletServer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}
