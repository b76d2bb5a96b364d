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
	"os"
	"strconv"

	"github.com/featherdb/fdb/internal/fdbconfig"
)

func cmdPut(cfg *fdbconfig.Config, table, key, timeArg, path string) {
	t, err := strconv.ParseInt(timeArg, 10, 64)
	if err != nil {
		exitf("bad time %q: %s\n", timeArg, err)
	}
	addr, err := tabletOwner(cfg, table)
	if err != nil {
		exitf("%s\n", err)
	}
	row, err := os.ReadFile(path)
	if err != nil {
		exitf("%s\n", err)
	}
	logf("putting %d bytes to %s at %s (table=%s key=%s t=%d)", len(row), addr, path, table, key, t)
	if err := httpPut(addr, table, key, t, row); err != nil {
		exitf("%s\n", err)
	}
}

func cmdGet(cfg *fdbconfig.Config, table, key, timeArg string) {
	t, err := strconv.ParseInt(timeArg, 10, 64)
	if err != nil {
		exitf("bad time %q: %s\n", timeArg, err)
	}
	addr, err := tabletOwner(cfg, table)
	if err != nil {
		exitf("%s\n", err)
	}
	resp, err := httpGet(addr, table, key, t)
	if err != nil {
		exitf("%s\n", err)
	}
	if resp.Count == 0 {
		fmt.Fprintf(os.Stderr, "no row found for (table=%s key=%s t=%d)\n", table, key, t)
		os.Exit(1)
	}
	os.Stdout.Write(resp.Attachment)
}

func cmdStatus(cfg *fdbconfig.Config) {
	fmt.Printf("name server: %s\n", cfg.NameServerAddr)
	for _, t := range cfg.Tablets {
		fmt.Printf("tablet %-16s %-22s tables=%v\n", t.Name, t.Addr, t.Tables)
	}
}
