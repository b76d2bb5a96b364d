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

// Package fdbnsclient is the router's view of the cluster name server: a
// minimal lookup interface, plus an in-memory implementation for tests and
// single-process deployments. The real name server (replication,
// failover, membership) is out of scope; fdbrouter only needs something
// concrete to depend on to be testable end-to-end.
package fdbnsclient

import (
	"fmt"
	"sync"

	"github.com/featherdb/fdb/internal/fdberr"
)

// Client resolves which tablet owns a table's partition.
type Client interface {
	// Lookup returns the address of the tablet owning (table, partition).
	Lookup(table string, partition int64) (tabletAddr string, err error)

	// RegisterProcedure records a stored procedure's owning database and
	// main table so future lookups can route calls to it. It fails with
	// fdberr.ErrDuplicateProcedure if name is already registered.
	RegisterProcedure(database, name, mainTable string) error
}

// Static is an in-memory Client backed by a fixed partition->address table,
// useful for tests and single-binary deployments where the name server is
// just a map kept in the same process as the router.
type Static struct {
	mu         sync.Mutex
	owners     map[string]string // "table/partition" -> address
	procedures map[string]string // "database/name" -> mainTable
}

// NewStatic returns an empty Static client.
func NewStatic() *Static {
	return &Static{
		owners:     make(map[string]string),
		procedures: make(map[string]string),
	}
}

// SetOwner records that table's partition is owned by addr. Intended for
// test setup, not for production name-server traffic.
func (s *Static) SetOwner(table string, partition int64, addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[ownerKey(table, partition)] = addr
}

func ownerKey(table string, partition int64) string {
	return fmt.Sprintf("%s/%d", table, partition)
}

func (s *Static) Lookup(table string, partition int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.owners[ownerKey(table, partition)]
	if !ok {
		return "", fmt.Errorf("%w: no owner for %s partition %d", fdberr.ErrNoTablet, table, partition)
	}
	return addr, nil
}

func (s *Static) RegisterProcedure(database, name, mainTable string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := database + "/" + name
	if _, exists := s.procedures[key]; exists {
		return fmt.Errorf("%w: %s.%s", fdberr.ErrDuplicateProcedure, database, name)
	}
	s.procedures[key] = mainTable
	return nil
}
