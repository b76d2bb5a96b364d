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

package fdbcodec

// RowList is the minimal surface StringColumnIterator needs: random access
// to the encoded rows it walks. A storage-layer iterator (or a plain
// []byte slice) can implement this without copying anything.
type RowList interface {
	Len() int
	RowAt(i int) []byte
}

// Rows is a RowList backed by a plain slice, useful for tests and for
// callers that already materialized a batch.
type Rows [][]byte

func (r Rows) Len() int          { return len(r) }
func (r Rows) RowAt(i int) []byte { return r[i] }

// StringColumnIterator lazily walks the values of one string-typed column
// (Varchar or String) across a RowList. It does not own rows and can be
// restarted at an arbitrary row index with Seek.
type StringColumnIterator struct {
	schema *Schema
	rows   RowList
	col    int
	idx    int
}

// NewStringColumnIterator returns an iterator over column col of rows,
// starting at row index 0. col must name a Varchar or String column.
func NewStringColumnIterator(schema *Schema, rows RowList, col int) *StringColumnIterator {
	return &StringColumnIterator{schema: schema, rows: rows, col: col}
}

// Seek restarts the iterator at row index i without validating bounds;
// the next Next() call will report exhaustion if i is out of range.
func (it *StringColumnIterator) Seek(i int) {
	it.idx = i
}

// Next returns the next (rowIndex, value) pair, where value is nil if the
// column is null at that row. ok is false once the row list is exhausted.
func (it *StringColumnIterator) Next() (rowIndex int, value []byte, ok bool) {
	if it.idx < 0 || it.idx >= it.rows.Len() {
		return 0, nil, false
	}
	row := it.rows.RowAt(it.idx)
	rowIndex = it.idx
	it.idx++

	isNull, err := IsNull(it.schema, row, it.col)
	if err != nil || isNull {
		return rowIndex, nil, true
	}
	v, err := DecodeField(it.schema, row, it.col)
	if err != nil {
		return rowIndex, nil, true
	}
	return rowIndex, v.Bytes(), true
}
