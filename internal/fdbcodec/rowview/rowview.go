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

// Package rowview is a typed, non-owning façade over an encoded row. It
// never copies the backing buffer; the caller is responsible for keeping
// it alive for as long as the view is used.
package rowview

import (
	"fmt"

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdberr"
)

// RowView reads typed fields out of a single encoded row by column index.
type RowView struct {
	schema *fdbcodec.Schema
	buf    []byte
}

// New returns a RowView bound to buf. buf is not copied.
func New(schema *fdbcodec.Schema, buf []byte) *RowView {
	return &RowView{schema: schema, buf: buf}
}

// Reset rebinds the view to a new buffer without allocating.
func (v *RowView) Reset(buf []byte) {
	v.buf = buf
}

func (v *RowView) checkType(col int, want fdbcodec.Type) error {
	got := v.schema.Columns[col].Type
	if got != want {
		return fmt.Errorf("%w: column %d is %s, not %s", fdberr.ErrTypeMismatch, col, got, want)
	}
	return nil
}

// IsNull reports whether column col is null in the bound row.
func (v *RowView) IsNull(col int) (bool, error) {
	return fdbcodec.IsNull(v.schema, v.buf, col)
}

func decodeTyped(v *RowView, col int, want fdbcodec.Type) (fdbcodec.Value, error) {
	if err := v.checkType(col, want); err != nil {
		return fdbcodec.Value{}, err
	}
	return fdbcodec.DecodeField(v.schema, v.buf, col)
}

func (v *RowView) GetBool(col int) (bool, error) {
	val, err := decodeTyped(v, col, fdbcodec.Bool)
	if err != nil {
		return false, err
	}
	return val.Bool(), nil
}

func (v *RowView) GetI16(col int) (int16, error) {
	val, err := decodeTyped(v, col, fdbcodec.I16)
	if err != nil {
		return 0, err
	}
	return val.I16(), nil
}

func (v *RowView) GetI32(col int) (int32, error) {
	val, err := decodeTyped(v, col, fdbcodec.I32)
	if err != nil {
		return 0, err
	}
	return val.I32(), nil
}

func (v *RowView) GetI64(col int) (int64, error) {
	val, err := decodeTyped(v, col, fdbcodec.I64)
	if err != nil {
		return 0, err
	}
	return val.I64(), nil
}

func (v *RowView) GetF32(col int) (float32, error) {
	val, err := decodeTyped(v, col, fdbcodec.F32)
	if err != nil {
		return 0, err
	}
	return val.F32(), nil
}

func (v *RowView) GetF64(col int) (float64, error) {
	val, err := decodeTyped(v, col, fdbcodec.F64)
	if err != nil {
		return 0, err
	}
	return val.F64(), nil
}

// GetTimestamp returns the column's value as millis since the Unix epoch.
func (v *RowView) GetTimestamp(col int) (int64, error) {
	val, err := decodeTyped(v, col, fdbcodec.Timestamp)
	if err != nil {
		return 0, err
	}
	return val.Timestamp(), nil
}

// GetDate unpacks the column's value into (year, month, day).
func (v *RowView) GetDate(col int) (year, month, day int, err error) {
	val, err := decodeTyped(v, col, fdbcodec.Date)
	if err != nil {
		return 0, 0, 0, err
	}
	packed := val.Date()
	year = int(packed>>16) + 1900
	month = int((packed>>8)&0xff) + 1
	day = int(packed & 0xff)
	return year, month, day, nil
}

// GetString returns a non-owning view over the backing buffer's var-body
// area for a Varchar or String column.
func (v *RowView) GetString(col int) ([]byte, error) {
	t := v.schema.Columns[col].Type
	if t != fdbcodec.Varchar && t != fdbcodec.String {
		return nil, fmt.Errorf("%w: column %d is %s, not a string type", fdberr.ErrTypeMismatch, col, t)
	}
	val, err := fdbcodec.DecodeField(v.schema, v.buf, col)
	if err != nil {
		return nil, err
	}
	return val.Bytes(), nil
}
