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
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/featherdb/fdb/internal/fdbmetrics"
	"github.com/featherdb/fdb/internal/fdbproto"
	"github.com/featherdb/fdb/internal/fdbstore"
)

// handler builds the tablet's HTTP surface: Prometheus metrics, a health
// probe, and the minimal put/get RPC endpoints a Transport implementation
// can speak to this tablet with. A stable wire protocol is explicitly out
// of scope; this is one concrete encoding the bundled fdbctl client uses.
func (t *tabletServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", t.healthzHandler)
	mux.HandleFunc("/v1/put", t.putHandler)
	mux.HandleFunc("/v1/get", t.getHandler)
	return mux
}

func (t *tabletServer) healthzHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok tables=%v\n", t.tables())
}

// putHandler accepts a raw encoded row in the body, along with "table",
// "key", and "t" (millisecond time) query parameters, and stores it in the
// owning segment as a single-dimension data block.
func (t *tabletServer) putHandler(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()
	table := r.URL.Query().Get("table")
	key := r.URL.Query().Get("key")
	ts, err := strconv.ParseInt(r.URL.Query().Get("t"), 10, 64)
	if err != nil {
		http.Error(w, "bad or missing t param", http.StatusBadRequest)
		return
	}
	seg := t.segment(table)
	if seg == nil {
		http.Error(w, fmt.Sprintf("tablet does not own table %q", table), http.StatusNotFound)
		return
	}
	row, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	seg.Put([]byte(key), ts, fdbstore.NewDataBlock(row, 1))
	fdbmetrics.RowPuts.WithLabelValues(table).Inc()
	fdbmetrics.BytesWritten.WithLabelValues(table).Add(float64(len(row)))
	t.logf("put req=%s table=%s key=%s t=%d bytes=%d", reqID, table, key, ts, len(row))
	w.Header().Set("X-Request-Id", reqID)
	w.WriteHeader(http.StatusNoContent)
}

// getHandler looks up the row stored at exactly (table, key, t) and
// returns it wrapped in a fdbproto.QueryResponse (Count 0 if none).
func (t *tabletServer) getHandler(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	key := r.URL.Query().Get("key")
	ts, err := strconv.ParseInt(r.URL.Query().Get("t"), 10, 64)
	if err != nil {
		http.Error(w, "bad or missing t param", http.StatusBadRequest)
		return
	}
	seg := t.segment(table)
	if seg == nil {
		http.Error(w, fmt.Sprintf("tablet does not own table %q", table), http.StatusNotFound)
		return
	}
	block, ok := seg.Get([]byte(key), ts)
	resp := &fdbproto.QueryResponse{Code: fdbproto.StatusOK}
	if ok {
		resp.Attachment = block.Bytes
		resp.Count = 1
		resp.ByteSize = uint32(len(block.Bytes))
	}
	buf := resp.Encode()
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.Write(buf)
}
