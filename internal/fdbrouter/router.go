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

package fdbrouter

import (
	"fmt"
	"time"

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdberr"
	"github.com/featherdb/fdb/internal/fdblog"
	"github.com/featherdb/fdb/internal/fdbmetrics"
	"github.com/featherdb/fdb/internal/fdbproto"
	"github.com/featherdb/fdb/internal/fdbrouter/plancache"
)

// ClusterRouter is the client-facing entry point: it plans SQL (via an
// injected Planner/Catalog), caches the resulting plans per database, and
// issues RPCs to the tablet(s) that own the data (via an injected
// Transport and Partitioner), resolved through an injected name-server
// Client.
type ClusterRouter struct {
	Planner     Planner
	Catalog     Catalog
	NameServer  nsLookup
	Transport   Transport
	Partitioner Partitioner
	Logger      fdblog.Logger

	plans *plancache.Cache[*CachedPlan]
}

// nsLookup is the subset of fdbnsclient.Client the router depends on,
// declared locally so this package does not need to import fdbnsclient
// just to name a method set.
type nsLookup interface {
	Lookup(table string, partition int64) (string, error)
	RegisterProcedure(database, name, mainTable string) error
}

// New returns a router with a plan cache of the given per-database
// capacity (plancache.DefaultCapacity if capacity <= 0).
func New(planner Planner, catalog Catalog, ns nsLookup, transport Transport, partitioner Partitioner, capacity int) *ClusterRouter {
	plans := plancache.New[*CachedPlan](capacity)
	plans.OnEvict(func(database string) {
		fdbmetrics.PlanCacheEvictions.WithLabelValues(database).Inc()
	})
	return &ClusterRouter{
		Planner:     planner,
		Catalog:     catalog,
		NameServer:  ns,
		Transport:   transport,
		Partitioner: partitioner,
		plans:       plans,
	}
}

func (r *ClusterRouter) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// GetRequestRow plans sql in request mode and returns a builder for the
// input row the plan expects, caching the plan under (database, sql).
func (r *ClusterRouter) GetRequestRow(database, sql string) (*RowBuilder, error) {
	if cached, ok := r.plans.Get(database, sql); ok {
		fdbmetrics.PlanCacheHits.WithLabelValues(database).Inc()
		return newRowBuilder(cached.Schema), nil
	}
	fdbmetrics.PlanCacheMisses.WithLabelValues(database).Inc()

	rp, err := r.Planner.PlanRequest(database, sql)
	if err != nil {
		r.logf("fdbrouter: plan request failed for %q: %v", sql, err)
		return nil, fmt.Errorf("%w: %v", fdberr.ErrPlan, err)
	}

	cached := &CachedPlan{Schema: rp.Schema, Dependencies: rp.Dependencies, MainTable: rp.MainTable}
	r.plans.Put(database, sql, cached)
	return newRowBuilder(cached.Schema), nil
}

// GetInsertRow parses sql as a literal INSERT statement and returns a
// builder pre-populated with defaults for every omitted column. It fails
// with fdberr.ErrInsertShape if the explicit column list has duplicates,
// references unknown columns, or disagrees in length with the value list.
func (r *ClusterRouter) GetInsertRow(database, sql string) (*RowBuilder, error) {
	parsed, err := parseInsert(sql)
	if err != nil {
		return nil, err
	}

	cached, ok := r.plans.Get(database, sql)
	if !ok {
		fdbmetrics.PlanCacheMisses.WithLabelValues(database).Inc()
		schema, err := r.Catalog.TableSchema(database, parsed.table)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", fdberr.ErrPlan, err)
		}
		defaults, err := r.Catalog.Defaults(database, parsed.table)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", fdberr.ErrPlan, err)
		}
		cached = newInsertPlan(schema, parsed.table, defaults)
		r.plans.Put(database, sql, cached)
	} else {
		fdbmetrics.PlanCacheHits.WithLabelValues(database).Inc()
	}

	return buildInsertPlan(cached.Schema, cached.Defaults, parsed)
}

// ExecuteSQL routes an already-planned statement to the correct tablet and
// returns the wrapped response. Tablet selection follows the plan's table
// dependency set: a const query (no dependencies) can go to any tablet
// that knows the database; a single-dependency query goes to that table's
// owner; a multi-dependency query goes to the main table's owner.
func (r *ClusterRouter) ExecuteSQL(database, sql string, inputRow []byte) (*fdbproto.QueryResponse, error) {
	cached, ok := r.plans.Get(database, sql)
	if !ok {
		var err error
		if _, err = r.GetRequestRow(database, sql); err != nil {
			return nil, err
		}
		cached, _ = r.plans.Get(database, sql)
	}

	target := cached.MainTable
	switch len(cached.Dependencies) {
	case 0:
		// const query: any tablet suffices; fall through to main table
		// (set by the planner) or an empty target, which Lookup rejects.
	case 1:
		target = cached.Dependencies[0]
	default:
		target = cached.MainTable
	}

	addr, err := r.NameServer.Lookup(target, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fdberr.ErrNoTablet, err)
	}

	resp, err := r.Transport.Query(addr, &fdbproto.QueryRequest{Database: database, SQL: sql, InputRow: inputRow})
	if err != nil {
		r.logf("fdbrouter: query %q failed: %v", sql, err)
		return nil, fmt.Errorf("%w: %v", fdberr.ErrRPC, err)
	}
	return resp, nil
}

// ExecuteInsert writes each encoded row to the tablet owning its
// partition, consulting the configured Partitioner for the
// (partition, index keys) assignment. Failures are fail-fast: the first
// partition that fails aborts the remaining batch.
func (r *ClusterRouter) ExecuteInsert(database, table string, rows [][]byte) error {
	for i, row := range rows {
		assignment, err := r.Partitioner.Assign(table, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		addr, err := r.NameServer.Lookup(assignment.Table, assignment.PartitionID)
		if err != nil {
			return fmt.Errorf("row %d: %w: %v", i, fdberr.ErrNoTablet, err)
		}
		if err := r.Transport.Put(addr, assignment.Table, assignment.PartitionID, row); err != nil {
			r.logf("fdbrouter: insert row %d to partition %d failed: %v", i, assignment.PartitionID, err)
			return fmt.Errorf("row %d: %w: %v", i, fdberr.ErrRPC, err)
		}
	}
	return nil
}

// CallProcedure invokes a registered procedure synchronously.
func (r *ClusterRouter) CallProcedure(database, name string, row []byte, timeout time.Duration) (*fdbproto.QueryResponse, error) {
	addr, err := r.NameServer.Lookup(name, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fdberr.ErrNoTablet, err)
	}
	resp, err := r.Transport.CallProcedure(addr, database, name, row, timeout)
	if err != nil {
		r.logf("fdbrouter: procedure %s.%s failed: %v", database, name, err)
		return nil, fmt.Errorf("%w: %v", fdberr.ErrRPC, err)
	}
	return resp, nil
}

// Future is the handle returned by CallProcedureAsync.
type Future struct {
	done   chan struct{}
	result *fdbproto.QueryResponse
	err    error
}

// IsDone reports whether the underlying RPC has completed.
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// GetResultSet blocks until the RPC completes, returning its response and
// reporting fdberr.ErrRPC on transport failure via status.
func (f *Future) GetResultSet(status *error) *fdbproto.QueryResponse {
	<-f.done
	*status = f.err
	return f.result
}

// CallProcedureAsync invokes a registered procedure without blocking the
// caller; use the returned Future to retrieve the result later.
func (r *ClusterRouter) CallProcedureAsync(database, name string, row []byte, timeout time.Duration) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result, f.err = r.CallProcedure(database, name, row, timeout)
	}()
	return f
}

// CreateProcedure plans sql, asserts every declared input parameter
// matches the planner-inferred input schema by both name and type, and
// registers the procedure with the name server.
func (r *ClusterRouter) CreateProcedure(database, name, sql string, inputParams []fdbcodec.Column, mainTable string) error {
	inferred, err := r.Planner.InferInputSchema(database, sql)
	if err != nil {
		return fmt.Errorf("%w: %v", fdberr.ErrPlan, err)
	}
	if len(inferred.Columns) != len(inputParams) {
		return fmt.Errorf("%w: declared %d input params, planner inferred %d", fdberr.ErrTypeMismatch, len(inputParams), len(inferred.Columns))
	}
	for i, want := range inputParams {
		got := inferred.Columns[i]
		if want.Name != got.Name || want.Type != got.Type {
			return fmt.Errorf("%w: input param %d: declared (%s %s), planner inferred (%s %s)",
				fdberr.ErrTypeMismatch, i, want.Name, want.Type, got.Name, got.Type)
		}
	}
	return r.NameServer.RegisterProcedure(database, name, mainTable)
}
