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
	"strconv"
	"strings"

	"github.com/featherdb/fdb/internal/fdbcodec"
	"github.com/featherdb/fdb/internal/fdberr"
)

// coerceValue widens v to want's type following the fixed table: i16 ->
// i32,i64,f32,f64; i32 -> i64,f32,f64; f32 -> f64; any integer or float
// literal -> timestamp; a 'YYYY-MM-DD' string -> date. Any other
// cross-type coercion fails with fdberr.ErrTypeMismatch. A value already
// matching want's type is returned unchanged.
func coerceValue(v fdbcodec.Value, want fdbcodec.Type) (fdbcodec.Value, error) {
	if v.IsNull() || v.Type() == want {
		return v, nil
	}

	switch v.Type() {
	case fdbcodec.I16:
		switch want {
		case fdbcodec.I32:
			return fdbcodec.I32Value(int32(v.I16())), nil
		case fdbcodec.I64:
			return fdbcodec.I64Value(int64(v.I16())), nil
		case fdbcodec.F32:
			return fdbcodec.F32Value(float32(v.I16())), nil
		case fdbcodec.F64:
			return fdbcodec.F64Value(float64(v.I16())), nil
		case fdbcodec.Timestamp:
			return fdbcodec.TimestampValue(int64(v.I16())), nil
		}
	case fdbcodec.I32:
		switch want {
		case fdbcodec.I64:
			return fdbcodec.I64Value(int64(v.I32())), nil
		case fdbcodec.F32:
			return fdbcodec.F32Value(float32(v.I32())), nil
		case fdbcodec.F64:
			return fdbcodec.F64Value(float64(v.I32())), nil
		case fdbcodec.Timestamp:
			return fdbcodec.TimestampValue(int64(v.I32())), nil
		}
	case fdbcodec.I64:
		if want == fdbcodec.Timestamp {
			return fdbcodec.TimestampValue(v.I64()), nil
		}
	case fdbcodec.F32:
		switch want {
		case fdbcodec.F64:
			return fdbcodec.F64Value(float64(v.F32())), nil
		case fdbcodec.Timestamp:
			return fdbcodec.TimestampValue(int64(v.F32())), nil
		}
	case fdbcodec.F64:
		if want == fdbcodec.Timestamp {
			return fdbcodec.TimestampValue(int64(v.F64())), nil
		}
	case fdbcodec.Varchar, fdbcodec.String:
		if want == fdbcodec.Date {
			return parseDateLiteral(string(v.Bytes()))
		}
	}

	return fdbcodec.Value{}, fmt.Errorf("%w: cannot widen %s to %s", fdberr.ErrTypeMismatch, v.Type(), want)
}

// parseDateLiteral parses a 'YYYY-MM-DD' literal into a packed date value,
// bounded 1900<=y<=9999, 1<=m<=12, 1<=d<=31 (ground:
// original_source/src/sdk/sql_cluster_router.cc's date-literal parsing).
func parseDateLiteral(s string) (fdbcodec.Value, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return fdbcodec.Value{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date literal", fdberr.ErrTypeMismatch, s)
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return fdbcodec.Value{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date literal", fdberr.ErrTypeMismatch, s)
	}
	if y < 1900 || y > 9999 || m < 1 || m > 12 || d < 1 || d > 31 {
		return fdbcodec.Value{}, fmt.Errorf("%w: date literal %q out of range", fdberr.ErrTypeMismatch, s)
	}
	packed := int32(y-1900)<<16 | int32(m-1)<<8 | int32(d)
	return fdbcodec.DateValue(packed), nil
}
