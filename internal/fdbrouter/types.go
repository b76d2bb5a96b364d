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

// Package fdbrouter translates SQL-shaped calls into segment operations or
// RPC to the tablet owning a partition. The SQL parser/planner, the
// catalog/schema registry, and the RPC transport are all external
// collaborators referenced by interface only; this package orchestrates
// them but implements none of them.
package fdbrouter

import (
	"time"

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdbproto"
)

// RequestPlan is what the (external) planner returns for a non-insert SQL
// statement: the schema the caller must supply an input row in, and the
// set of tables the query depends on.
type RequestPlan struct {
	Schema       *fdbcodec.Schema
	Dependencies []string
	MainTable    string
}

// Planner compiles SQL text into a plan. It is the router's sole interface
// to query planning; the planner itself (parsing, optimization) is out of
// scope here.
type Planner interface {
	// PlanRequest compiles sql in "request mode": a parameterized
	// statement whose parameters are supplied later as an encoded row
	// matching the returned schema.
	PlanRequest(database, sql string) (*RequestPlan, error)

	// InferInputSchema returns the schema create_procedure should check
	// its declared input parameters against.
	InferInputSchema(database, sql string) (*fdbcodec.Schema, error)
}

// Catalog answers schema and default-value questions about a table.
// Defaults are expressed as already-typed fdbcodec.Values; GetInsertRow
// widens them to the declared column type if needed.
type Catalog interface {
	TableSchema(database, table string) (*fdbcodec.Schema, error)
	// Defaults returns, for each column that has a DEFAULT clause, the
	// literal default value and its natural (possibly narrower) type.
	Defaults(database, table string) (map[int]fdbcodec.Value, error)
}

// PartitionAssignment is one row's destination after a partition function
// has been applied: which partition it belongs to, and the secondary
// index keys (dimensions) it must also be written under.
type PartitionAssignment struct {
	Table      string
	PartitionID int64
	IndexKeys   [][]byte
}

// Partitioner computes where an encoded insert row should be written.
type Partitioner interface {
	Assign(table string, row []byte) (PartitionAssignment, error)
}

// Transport is the router's sole interface to RPC. It is deliberately
// thin: spec.md places "a stable wire protocol spec for RPC" out of
// scope, so this only needs to be concrete enough to exercise the router
// end to end against a fake in tests.
type Transport interface {
	Query(tabletAddr string, req *fdbproto.QueryRequest) (*fdbproto.QueryResponse, error)
	Put(tabletAddr string, table string, partitionID int64, row []byte) error
	CallProcedure(tabletAddr, database, name string, row []byte, timeout time.Duration) (*fdbproto.QueryResponse, error)
}
