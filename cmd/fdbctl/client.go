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
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/featherdb/fdb/internal/fdbconfig"
	"github.com/featherdb/fdb/internal/fdbproto"
)

// tabletOwner resolves a table name to the tablet address that owns it,
// using the static config assignment rather than a real name server.
func tabletOwner(cfg *fdbconfig.Config, table string) (string, error) {
	for _, t := range cfg.Tablets {
		for _, owned := range t.Tables {
			if owned == table {
				return t.Addr, nil
			}
		}
	}
	return "", fmt.Errorf("no tablet owns table %q", table)
}

func httpPut(addr, table, key string, t int64, row []byte) error {
	u := fmt.Sprintf("http://%s/v1/put?table=%s&key=%s&t=%d", addr, url.QueryEscape(table), url.QueryEscape(key), t)
	resp, err := http.Post(u, "application/octet-stream", bytes.NewReader(row))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("put failed: %s: %s", resp.Status, body)
	}
	return nil
}

func httpGet(addr, table, key string, t int64) (*fdbproto.QueryResponse, error) {
	u := fmt.Sprintf("http://%s/v1/get?table=%s&key=%s&t=%d", addr, url.QueryEscape(table), url.QueryEscape(key), t)
	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get failed: %s: %s", resp.Status, body)
	}
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return fdbproto.DecodeQueryResponse(buf)
}
