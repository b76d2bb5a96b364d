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

import "math"

// Value is one column's value for Encode. It carries its own dynamic type
// so Encode can detect a value/column type mismatch rather than silently
// reinterpreting bytes; construct one with the typed helpers below rather
// than the zero value.
type Value struct {
	null bool
	typ  Type
	u64  uint64 // backs Bool, I16, I32, I64, F32, F64 (as bit patterns), Timestamp, Date
	str  []byte // backs Varchar, String
}

// Null returns a null value. kind records which column type it stands in
// for, since the encoder still needs to know whether a null occupies a
// fixed or variable slot.
func Null(kind Type) Value { return Value{null: true, typ: kind} }

func BoolValue(v bool) Value {
	var u uint64
	if v {
		u = 1
	}
	return Value{typ: Bool, u64: u}
}

func I16Value(v int16) Value { return Value{typ: I16, u64: uint64(uint16(v))} }
func I32Value(v int32) Value { return Value{typ: I32, u64: uint64(uint32(v))} }
func I64Value(v int64) Value { return Value{typ: I64, u64: uint64(v)} }

func F32Value(v float32) Value {
	return Value{typ: F32, u64: uint64(math.Float32bits(v))}
}

func F64Value(v float64) Value {
	return Value{typ: F64, u64: math.Float64bits(v)}
}

// TimestampValue holds millis since the Unix epoch.
func TimestampValue(millis int64) Value { return Value{typ: Timestamp, u64: uint64(millis)} }

// DateValue holds a packed (year-1900)<<16 | (month-1)<<8 | day value.
func DateValue(packed int32) Value { return Value{typ: Date, u64: uint64(uint32(packed))} }

func VarcharValue(s []byte) Value { return Value{typ: Varchar, str: s} }
func StringValue(s []byte) Value  { return Value{typ: String, str: s} }

// Type reports the dynamic type the value was constructed with.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v represents SQL NULL.
func (v Value) IsNull() bool { return v.null }

// Bool returns the value as a bool. It is only meaningful when Type() == Bool.
func (v Value) Bool() bool { return v.u64 != 0 }

// I16 returns the value as an int16. It is only meaningful when Type() == I16.
func (v Value) I16() int16 { return int16(uint16(v.u64)) }

// I32 returns the value as an int32. It is only meaningful when Type() == I32.
func (v Value) I32() int32 { return int32(uint32(v.u64)) }

// I64 returns the value as an int64. It is only meaningful when Type() == I64.
func (v Value) I64() int64 { return int64(v.u64) }

// F32 returns the value as a float32. It is only meaningful when Type() == F32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.u64)) }

// F64 returns the value as a float64. It is only meaningful when Type() == F64.
func (v Value) F64() float64 { return math.Float64frombits(v.u64) }

// Timestamp returns the value as millis since the Unix epoch. It is only
// meaningful when Type() == Timestamp.
func (v Value) Timestamp() int64 { return int64(v.u64) }

// Date returns the value as a packed (year-1900)<<16|(month-1)<<8|day
// triple. It is only meaningful when Type() == Date.
func (v Value) Date() int32 { return int32(uint32(v.u64)) }

// Bytes returns the value's backing bytes. It is only meaningful when
// Type() is Varchar or String.
func (v Value) Bytes() []byte { return v.str }

// Row is a schema-ordered tuple of values, the input to Encode.
type Row []Value
