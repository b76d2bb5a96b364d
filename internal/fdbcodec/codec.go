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

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/featherdb/fdb/internal/fdberr"
)

const (
	versionSize = 1
	sizeSize    = 4
)

// addrWidth returns the smallest A in {1,2,3,4} such that size fits in A
// bytes, mirroring the original codec's GetAddrLength.
func addrWidth(size uint32) int {
	switch {
	case size <= 0xff:
		return 1
	case size <= 0xffff:
		return 2
	case size <= 0xffffff:
		return 3
	default:
		return 4
	}
}

// Encode serializes row against schema into a freshly allocated buffer
// conforming to the format described in spec.md section 3. Encode refuses
// with fdberr.ErrSchemaMismatch if row's arity or any value's dynamic type
// disagrees with schema, and fdberr.ErrNotNull if a null is supplied for a
// non-nullable column.
func Encode(schema *Schema, row Row) ([]byte, error) {
	if len(row) != len(schema.Columns) {
		return nil, fmt.Errorf("%w: row has %d values, schema has %d columns", fdberr.ErrSchemaMismatch, len(row), len(schema.Columns))
	}

	varLens := make([]int, schema.numVar)
	for i, col := range schema.Columns {
		v := row[i]
		if v.null {
			if !col.Nullable {
				return nil, fmt.Errorf("%w: column %q", fdberr.ErrNotNull, col.Name)
			}
			continue
		}
		if v.typ != col.Type {
			return nil, fmt.Errorf("%w: column %q wants %s, got %s", fdberr.ErrSchemaMismatch, col.Name, col.Type, v.typ)
		}
		if col.Type.IsVariable() {
			varLens[schema.varIndex[i]] = len(v.Bytes())
		}
	}

	bitmapSize := schema.nullBitmapSize()
	headerSize := versionSize + sizeSize + bitmapSize + schema.fixedSize

	// total var-body length, needed before we know `size` and hence `A`.
	varBodyTotal := 0
	for _, n := range varLens {
		varBodyTotal += n
	}

	// Two-pass size computation: guess A=1, then grow until the resulting
	// total size still fits in the chosen A. Since growing A only adds a
	// few bytes to the var-offset area, at most two iterations are needed
	// in practice; we loop defensively to stay correct at every boundary.
	a := 1
	var total int
	for {
		varOffsetSize := a * schema.numVar
		total = headerSize + varOffsetSize + varBodyTotal
		if addrWidth(uint32(total)) <= a {
			break
		}
		a = addrWidth(uint32(total))
	}

	buf := make([]byte, total)
	buf[0] = schema.Version
	binary.LittleEndian.PutUint32(buf[versionSize:], uint32(total))

	bitmapOff := versionSize + sizeSize
	fixedOff := bitmapOff + bitmapSize
	varOffsetAreaOff := fixedOff + schema.fixedSize
	varOffsetSize := a * schema.numVar
	bodyOff := varOffsetAreaOff + varOffsetSize

	curBody := bodyOff
	for i, col := range schema.Columns {
		v := row[i]
		if v.null {
			setBit(buf[bitmapOff:], i)
			if col.Type.IsVariable() {
				writeVarOffset(buf[varOffsetAreaOff:], schema.varIndex[i], a, curBody)
			}
			continue
		}
		if col.Type.IsVariable() {
			writeVarOffset(buf[varOffsetAreaOff:], schema.varIndex[i], a, curBody)
			n := copy(buf[curBody:], v.Bytes())
			curBody += n
			continue
		}
		writeFixed(buf[fixedOff+schema.fixedOffset[i]:], col.Type, v)
	}

	return buf, nil
}

func setBit(bitmap []byte, col int) {
	bitmap[col/8] |= 1 << uint(col%8)
}

func testBit(bitmap []byte, col int) bool {
	return bitmap[col/8]&(1<<uint(col%8)) != 0
}

func writeFixed(dst []byte, t Type, v Value) {
	switch t {
	case Bool:
		if v.Bool() {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case I16:
		binary.LittleEndian.PutUint16(dst, uint16(v.I16()))
	case I32:
		binary.LittleEndian.PutUint32(dst, uint32(v.I32()))
	case I64:
		binary.LittleEndian.PutUint64(dst, uint64(v.I64()))
	case F32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v.F32()))
	case F64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v.F64()))
	case Timestamp:
		binary.LittleEndian.PutUint64(dst, uint64(v.Timestamp()))
	case Date:
		binary.LittleEndian.PutUint32(dst, uint32(v.Date()))
	}
}

// writeVarOffset writes the var-offset slot for variable column varIdx.
// For a in {1,2,4} the slot is little-endian; for a == 3 it is big-endian
// across the three bytes — this asymmetry is part of the wire format and
// must be preserved exactly, see spec.md section 3.
func writeVarOffset(area []byte, varIdx, a, offset int) {
	slot := area[varIdx*a : varIdx*a+a]
	switch a {
	case 1:
		slot[0] = byte(offset)
	case 2:
		binary.LittleEndian.PutUint16(slot, uint16(offset))
	case 3:
		slot[0] = byte(offset >> 16)
		slot[1] = byte(offset >> 8)
		slot[2] = byte(offset)
	case 4:
		binary.LittleEndian.PutUint32(slot, uint32(offset))
	}
}

func readVarOffset(area []byte, varIdx, a int) int {
	slot := area[varIdx*a : varIdx*a+a]
	switch a {
	case 1:
		return int(slot[0])
	case 2:
		return int(binary.LittleEndian.Uint16(slot))
	case 3:
		return int(slot[0])<<16 | int(slot[1])<<8 | int(slot[2])
	case 4:
		return int(binary.LittleEndian.Uint32(slot))
	}
	return 0
}

// rowSize reads the size field of an encoded row without validating
// anything else about it.
func rowSize(buf []byte) (uint32, error) {
	if len(buf) < versionSize+sizeSize {
		return 0, fdberr.ErrTruncated
	}
	return binary.LittleEndian.Uint32(buf[versionSize:]), nil
}

// checkBuffer validates the version and size prefix of buf against schema
// and returns the declared size.
func checkBuffer(schema *Schema, buf []byte) (int, error) {
	size, err := rowSize(buf)
	if err != nil {
		return 0, err
	}
	if len(buf) < int(size) {
		return 0, fdberr.ErrTruncated
	}
	if buf[0] != schema.Version {
		return 0, fmt.Errorf("%w: row version %d, schema version %d", fdberr.ErrUnsupportedVersion, buf[0], schema.Version)
	}
	return int(size), nil
}

// IsNull reads one bit from the null bitmap. It never touches field data.
func IsNull(schema *Schema, buf []byte, col int) (bool, error) {
	if _, err := checkBuffer(schema, buf); err != nil {
		return false, err
	}
	bitmapOff := versionSize + sizeSize
	return testBit(buf[bitmapOff:], col), nil
}

// DecodeField reads a single column's value out of buf in O(1) for
// fixed-width columns. For variable-length columns it returns a
// non-owning slice over buf's var-body area.
func DecodeField(schema *Schema, buf []byte, col int) (Value, error) {
	size, err := checkBuffer(schema, buf)
	if err != nil {
		return Value{}, err
	}
	c := schema.Columns[col]
	bitmapOff := versionSize + sizeSize
	if testBit(buf[bitmapOff:], col) {
		return Null(c.Type), nil
	}

	fixedOff := bitmapOff + schema.nullBitmapSize()
	if !c.Type.IsVariable() {
		return readFixed(c.Type, buf[fixedOff+schema.fixedOffset[col]:])
	}

	a := addrWidth(uint32(size))
	varOffsetAreaOff := fixedOff + schema.fixedSize
	varIdx := schema.varIndex[col]
	start := readVarOffset(buf[varOffsetAreaOff:], varIdx, a)
	var end int
	if varIdx == schema.numVar-1 {
		end = size
	} else {
		end = readVarOffset(buf[varOffsetAreaOff:], varIdx+1, a)
	}
	body := buf[start:end]
	if c.Type == Varchar {
		return VarcharValue(body), nil
	}
	return StringValue(body), nil
}

func readFixed(t Type, src []byte) (Value, error) {
	switch t {
	case Bool:
		return BoolValue(src[0] != 0), nil
	case I16:
		return I16Value(int16(binary.LittleEndian.Uint16(src))), nil
	case I32:
		return I32Value(int32(binary.LittleEndian.Uint32(src))), nil
	case I64:
		return I64Value(int64(binary.LittleEndian.Uint64(src))), nil
	case F32:
		return Value{typ: F32, u64: uint64(binary.LittleEndian.Uint32(src))}, nil
	case F64:
		return Value{typ: F64, u64: binary.LittleEndian.Uint64(src)}, nil
	case Timestamp:
		return TimestampValue(int64(binary.LittleEndian.Uint64(src))), nil
	case Date:
		return DateValue(int32(binary.LittleEndian.Uint32(src))), nil
	default:
		return Value{}, fmt.Errorf("%w: unhandled fixed type %s", fdberr.ErrSchemaMismatch, t)
	}
}

// Decode reads every column of buf into a Row, in schema order.
func Decode(schema *Schema, buf []byte) (Row, error) {
	row := make(Row, schema.NumColumns())
	for i := range row {
		v, err := DecodeField(schema, buf, i)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}
