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

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdberr"
)

// RowBuilder accumulates column values for a single row against a fixed
// schema, deferring encoding until Build is called.
type RowBuilder struct {
	Schema *fdbcodec.Schema
	values []fdbcodec.Value
	set    []bool
}

func newRowBuilder(schema *fdbcodec.Schema) *RowBuilder {
	return &RowBuilder{
		Schema: schema,
		values: make([]fdbcodec.Value, len(schema.Columns)),
		set:    make([]bool, len(schema.Columns)),
	}
}

// Set assigns col's value, coercing it to the column's declared type via
// the default-value widening table if the dynamic types differ.
func (b *RowBuilder) Set(col int, v fdbcodec.Value) error {
	if col < 0 || col >= len(b.Schema.Columns) {
		return fmt.Errorf("%w: column index %d out of range", fdberr.ErrSchemaMismatch, col)
	}
	want := b.Schema.Columns[col].Type
	coerced, err := coerceValue(v, want)
	if err != nil {
		return err
	}
	b.values[col] = coerced
	b.set[col] = true
	return nil
}

// Build encodes the accumulated values. Every column must have been set
// (by Set or a default) or the build fails with fdberr.ErrSchemaMismatch.
func (b *RowBuilder) Build() ([]byte, error) {
	for i, ok := range b.set {
		if !ok {
			return nil, fmt.Errorf("%w: column %q has no value", fdberr.ErrSchemaMismatch, b.Schema.Columns[i].Name)
		}
	}
	return fdbcodec.Encode(b.Schema, fdbcodec.Row(b.values))
}
