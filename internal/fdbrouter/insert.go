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
	"regexp"
	"strconv"
	"strings"

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdberr"
)

// parsedInsert is the result of recognizing a literal-only
// "INSERT INTO table(col, ...) VALUES (lit, ...)" statement. Full SQL
// parsing is an external collaborator per spec.md; this pattern is the
// one concrete shape the router needs to recognize on its own to build
// an insert row deterministically (ground: plan/exec_test.go builds fake
// plans by hand rather than invoking a real parser for test fixtures).
type parsedInsert struct {
	table   string
	columns []string
	values  []fdbcodec.Value
}

var insertRE = regexp.MustCompile(`(?is)^\s*insert\s+into\s+(\w+)\s*\(([^)]*)\)\s*values\s*\(([^)]*)\)\s*;?\s*$`)

func parseInsert(sql string) (*parsedInsert, error) {
	m := insertRE.FindStringSubmatch(sql)
	if m == nil {
		return nil, fmt.Errorf("%w: does not match INSERT INTO t(cols) VALUES (lits)", fdberr.ErrInsertShape)
	}
	cols := splitCSV(m[2])
	rawValues := splitCSV(m[3])
	if len(cols) != len(rawValues) {
		return nil, fmt.Errorf("%w: %d columns but %d values", fdberr.ErrInsertShape, len(cols), len(rawValues))
	}
	values := make([]fdbcodec.Value, len(rawValues))
	for i, raw := range rawValues {
		v, err := parseLiteral(raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &parsedInsert{table: m[1], columns: cols, values: values}, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLiteral recognizes a quoted string, NULL, an integer, or a float
// literal and returns it as a loosely-typed fdbcodec.Value (Varchar for
// strings, the narrowest of I16/I32/I64 that holds an integer, F32 for
// floats); coerceValue widens it to the destination column's declared type.
func parseLiteral(raw string) (fdbcodec.Value, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return fdbcodec.VarcharValue([]byte(raw[1 : len(raw)-1])), nil
	}
	if strings.EqualFold(raw, "null") {
		return fdbcodec.Null(fdbcodec.Varchar), nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		// infer the narrowest integer type the widening table can start
		// from, so coerceValue's upward-only widening can reach any wider
		// destination column type.
		switch {
		case i >= -1<<15 && i < 1<<15:
			return fdbcodec.I16Value(int16(i)), nil
		case i >= -1<<31 && i < 1<<31:
			return fdbcodec.I32Value(int32(i)), nil
		default:
			return fdbcodec.I64Value(i), nil
		}
	}
	if f, err := strconv.ParseFloat(raw, 32); err == nil {
		return fdbcodec.F32Value(float32(f)), nil
	}
	return fdbcodec.Value{}, fmt.Errorf("%w: cannot parse literal %q", fdberr.ErrInsertShape, raw)
}

// buildInsertPlan validates the parsed column list against schema and
// fills in defaults for every omitted column, matching get_insert_row's
// contract: fails with InsertShape for duplicate columns, unknown
// columns, or fewer explicit columns than values (impossible here since
// parseInsert already required equal counts, but a duplicate or unknown
// name is still checked).
func buildInsertPlan(schema *fdbcodec.Schema, defaults map[int]fdbcodec.Value, parsed *parsedInsert) (*RowBuilder, error) {
	colIndex := make(map[string]int, len(schema.Columns))
	for i, c := range schema.Columns {
		colIndex[c.Name] = i
	}

	b := newRowBuilder(schema)
	seen := make(map[int]bool, len(parsed.columns))
	for i, name := range parsed.columns {
		idx, ok := colIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", fdberr.ErrInsertShape, name)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate column %q", fdberr.ErrInsertShape, name)
		}
		seen[idx] = true
		if err := b.Set(idx, parsed.values[i]); err != nil {
			return nil, err
		}
	}

	for i, col := range schema.Columns {
		if seen[i] {
			continue
		}
		def, ok := defaults[i]
		if !ok {
			return nil, fmt.Errorf("%w: column %q omitted and has no default", fdberr.ErrInsertShape, col.Name)
		}
		if err := b.Set(i, def); err != nil {
			return nil, err
		}
	}
	return b, nil
}
