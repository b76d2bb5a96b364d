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

import "github.com/featherdb/fdb/internal/fdbcodec"

// CachedPlan is the unit stored in the router's per-database plan cache:
// everything needed to build a row and route a request without
// re-planning the SQL text.
type CachedPlan struct {
	Schema       *fdbcodec.Schema
	Table        string
	Dependencies []string
	MainTable    string

	// Defaults maps column index -> default value for an insert plan.
	Defaults map[int]fdbcodec.Value

	// DefaultStringTotalLen is the pre-computed total byte length of every
	// literal string default. Neither RowBuilder nor fdbcodec.Encode reads
	// it; Encode sizes its buffer from the row values itself.
	DefaultStringTotalLen int
}

func newInsertPlan(schema *fdbcodec.Schema, table string, defaults map[int]fdbcodec.Value) *CachedPlan {
	total := 0
	for _, v := range defaults {
		if v.Type() == fdbcodec.Varchar || v.Type() == fdbcodec.String {
			total += len(v.Bytes())
		}
	}
	return &CachedPlan{
		Schema:                schema,
		Table:                 table,
		Defaults:              defaults,
		DefaultStringTotalLen: total,
	}
}
