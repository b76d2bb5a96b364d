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
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/featherdb/fdb/internal/fdberr"
)

func twoColSchema() *Schema {
	return NewSchema(1, 0,
		Column{Name: "a", Type: I32, Nullable: false},
		Column{Name: "b", Type: Varchar, Nullable: true},
	)
}

// S1 from spec.md section 8: encode/decode a two-column row. spec.md's
// worked example writes size=0x0E and the var-offset slot as 0x0E, but
// that is off by one against the buffer's own structural description
// (1+4+1+4+1+2 = 13 bytes total, body starting at offset 11) and against
// property 3 (len(B) == read_u32_le(B,1)); this test asserts the
// structurally consistent encoding instead.
func TestEncodeS1(t *testing.T) {
	s := twoColSchema()
	buf, err := Encode(s, Row{I32Value(7), VarcharValue([]byte("hi"))})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x01,                   // version
		0x0d, 0x00, 0x00, 0x00, // size = 13
		0x00,                   // null bitmap
		0x07, 0x00, 0x00, 0x00, // a = 7, i32 LE
		0x0b,                   // var-offset slot, A=1, body starts at byte 11
		'h', 'i',
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encode mismatch:\n got %x\nwant %x", buf, want)
	}

	row, err := Decode(s, buf)
	if err != nil {
		t.Fatal(err)
	}
	if row[0].I32() != 7 {
		t.Fatalf("a = %d, want 7", row[0].I32())
	}
	if !bytes.Equal(row[1].Bytes(), []byte("hi")) {
		t.Fatalf("b = %q, want %q", row[1].Bytes(), "hi")
	}
}

// S2 from spec.md section 8: null varchar.
func TestEncodeS2(t *testing.T) {
	s := twoColSchema()
	buf, err := Encode(s, Row{I32Value(7), Null(Varchar)})
	if err != nil {
		t.Fatal(err)
	}
	if buf[5] != 0b00000010 {
		t.Fatalf("null bitmap = %08b, want 00000010", buf[5])
	}
	size, err := rowSize(buf)
	if err != nil {
		t.Fatal(err)
	}
	isNull, err := IsNull(s, buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !isNull {
		t.Fatal("column 1 should be null")
	}
	// the var-offset slot still points at "size" since there is no body.
	a := addrWidth(size)
	varOffsetAreaOff := versionSize + sizeSize + s.nullBitmapSize() + s.fixedSize
	got := readVarOffset(buf[varOffsetAreaOff:], s.varIndex[1], a)
	if uint32(got) != size {
		t.Fatalf("null var offset = %d, want size %d", got, size)
	}
}

func TestRoundTripVariedSchema(t *testing.T) {
	s := NewSchema(1, 2,
		Column{Name: "id", Type: I64, Nullable: false},
		Column{Name: "flag", Type: Bool, Nullable: true},
		Column{Name: "ts", Type: Timestamp, Nullable: false},
		Column{Name: "price", Type: F64, Nullable: true},
		Column{Name: "tag", Type: Varchar, Nullable: true},
		Column{Name: "note", Type: String, Nullable: false},
		Column{Name: "born", Type: Date, Nullable: true},
	)
	row := Row{
		I64Value(42),
		Null(Bool),
		TimestampValue(1_700_000_000_000),
		F64Value(3.25),
		VarcharValue([]byte("")), // empty but non-null
		StringValue([]byte("hello, world")),
		DateValue(int32(124)<<16 | int32(5)<<8 | 17), // 2024-06-17
	}
	buf, err := Encode(s, row)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(s, buf)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].I64() != 42 {
		t.Errorf("id = %d", got[0].I64())
	}
	if !got[1].IsNull() {
		t.Errorf("flag should be null")
	}
	if got[2].Timestamp() != 1_700_000_000_000 {
		t.Errorf("ts = %d", got[2].Timestamp())
	}
	if got[3].F64() != 3.25 {
		t.Errorf("price = %v", got[3].F64())
	}
	if len(got[4].Bytes()) != 0 || got[4].IsNull() {
		t.Errorf("tag should be empty, non-null, got %q null=%v", got[4].Bytes(), got[4].IsNull())
	}
	if !bytes.Equal(got[5].Bytes(), []byte("hello, world")) {
		t.Errorf("note = %q", got[5].Bytes())
	}
	if got[6].Date() != int32(124)<<16|int32(5)<<8|17 {
		t.Errorf("born = %d", got[6].Date())
	}
}

// Deterministic encoding: property 2.
func TestEncodeDeterministic(t *testing.T) {
	s := twoColSchema()
	row := Row{I32Value(100), VarcharValue([]byte("same"))}
	a, err := Encode(s, row)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(s, row)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("encode is not deterministic")
	}
}

// Size consistency: property 3.
func TestSizeConsistency(t *testing.T) {
	s := twoColSchema()
	buf, err := Encode(s, Row{I32Value(1), VarcharValue([]byte("abcdef"))})
	if err != nil {
		t.Fatal(err)
	}
	size, err := rowSize(buf)
	if err != nil {
		t.Fatal(err)
	}
	if int(size) != len(buf) {
		t.Fatalf("size field %d != buffer length %d", size, len(buf))
	}
}

// Offset monotonicity across several variable columns: property 4.
func TestOffsetMonotonicity(t *testing.T) {
	s := NewSchema(1, 0,
		Column{Name: "k", Type: I32},
		Column{Name: "v0", Type: Varchar, Nullable: true},
		Column{Name: "v1", Type: Varchar, Nullable: true},
		Column{Name: "v2", Type: String, Nullable: true},
	)
	row := Row{
		I32Value(1),
		VarcharValue([]byte("aa")),
		Null(Varchar),
		StringValue([]byte("bbbbb")),
	}
	buf, err := Encode(s, row)
	if err != nil {
		t.Fatal(err)
	}
	size, _ := rowSize(buf)
	a := addrWidth(size)
	off := versionSize + sizeSize + s.nullBitmapSize() + s.fixedSize
	prev := 0
	for i := 0; i < s.numVar; i++ {
		cur := readVarOffset(buf[off:], i, a)
		if cur < prev || uint32(cur) > size {
			t.Fatalf("offset[%d] = %d breaks monotonicity (prev=%d, size=%d)", i, cur, prev, size)
		}
		prev = cur
	}
}

// Address-width minimality: property 5.
func TestAddrWidthMinimal(t *testing.T) {
	cases := []struct {
		size uint32
		want int
	}{
		{10, 1}, {255, 1}, {256, 2}, {65535, 2}, {65536, 3}, {16777215, 3}, {16777216, 4},
	}
	for _, c := range cases {
		if got := addrWidth(c.size); got != c.want {
			t.Errorf("addrWidth(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestSchemaMismatchArity(t *testing.T) {
	s := twoColSchema()
	_, err := Encode(s, Row{I32Value(1)})
	if !errors.Is(err, fdberr.ErrSchemaMismatch) {
		t.Fatalf("want ErrSchemaMismatch, got %v", err)
	}
}

func TestSchemaMismatchType(t *testing.T) {
	s := twoColSchema()
	_, err := Encode(s, Row{I64Value(1), VarcharValue(nil)})
	if !errors.Is(err, fdberr.ErrSchemaMismatch) {
		t.Fatalf("want ErrSchemaMismatch, got %v", err)
	}
}

func TestNotNullViolation(t *testing.T) {
	s := twoColSchema()
	_, err := Encode(s, Row{Null(I32), VarcharValue(nil)})
	if !errors.Is(err, fdberr.ErrNotNull) {
		t.Fatalf("want ErrNotNull, got %v", err)
	}
}

func TestTruncatedBuffer(t *testing.T) {
	s := twoColSchema()
	buf, err := Encode(s, Row{I32Value(1), VarcharValue([]byte("xy"))})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(s, buf[:len(buf)-3])
	if !errors.Is(err, fdberr.ErrTruncated) {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	s := twoColSchema()
	buf, err := Encode(s, Row{I32Value(1), VarcharValue([]byte("xy"))})
	if err != nil {
		t.Fatal(err)
	}
	buf[0] = 9
	_, err = Decode(s, buf)
	if !errors.Is(err, fdberr.ErrUnsupportedVersion) {
		t.Fatalf("want ErrUnsupportedVersion, got %v", err)
	}
}

func TestStringColumnIterator(t *testing.T) {
	s := twoColSchema()
	r1, _ := Encode(s, Row{I32Value(1), VarcharValue([]byte("one"))})
	r2, _ := Encode(s, Row{I32Value(2), Null(Varchar)})
	r3, _ := Encode(s, Row{I32Value(3), VarcharValue([]byte("three"))})
	rows := Rows{r1, r2, r3}

	it := NewStringColumnIterator(s, rows, 1)
	var got []string
	for {
		idx, v, ok := it.Next()
		if !ok {
			break
		}
		if v == nil {
			got = append(got, "idx"+strconv.Itoa(idx)+":<null>")
			continue
		}
		got = append(got, string(v))
	}
	want := []string{"one", "idx1:<null>", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// restart from row index 2
	it.Seek(2)
	idx, v, ok := it.Next()
	if !ok || idx != 2 || string(v) != "three" {
		t.Fatalf("seek(2) produced (%d, %q, %v)", idx, v, ok)
	}
}
