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

import "github.com/featherdb/fdb/internal/fdbmetrics"

// Ticket is a scoped reader pin: every KeyEntry a caller touches while
// reading must be pushed onto a Ticket, and the Ticket must be released
// when the caller is done. While an entry is pinned, GC skips splitting it
// rather than risk freeing a block a live iterator can still reach.
//
// A Ticket is not safe for concurrent use by multiple goroutines; each
// reader should own its own Ticket.
type Ticket struct {
	entries []*KeyEntry
}

// NewTicket returns an empty ticket.
func NewTicket() *Ticket {
	return &Ticket{}
}

// push pins entry for the lifetime of the ticket. Called by
// Segment.NewIterator; not exported because pinning without also handing
// back an iterator over the same entry would be a footgun.
func (t *Ticket) push(e *KeyEntry) {
	e.readers.Add(1)
	t.entries = append(t.entries, e)
	fdbmetrics.ActiveTickets.WithLabelValues(e.table).Inc()
}

// Release unpins every entry the ticket touched. It is safe to call once;
// calling it again is a no-op since the entry list is cleared.
func (t *Ticket) Release() {
	for _, e := range t.entries {
		e.readers.Add(-1)
		fdbmetrics.ActiveTickets.WithLabelValues(e.table).Dec()
	}
	t.entries = nil
}
