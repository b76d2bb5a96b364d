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

package fdbproto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/featherdb/fdb/internal/fdberr"
)

func TestQueryRequestRoundTrip(t *testing.T) {
	want := &QueryRequest{
		Database: "orders",
		SQL:      "SELECT total FROM orders WHERE id = ?",
		InputRow: []byte{0x01, 0x02, 0x03},
		Debug:    true,
	}
	got, err := DecodeQueryRequest(want.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Database != want.Database {
		t.Errorf("Database = %q, want %q", got.Database, want.Database)
	}
	if got.SQL != want.SQL {
		t.Errorf("SQL = %q, want %q", got.SQL, want.SQL)
	}
	if !bytes.Equal(got.InputRow, want.InputRow) {
		t.Errorf("InputRow = %x, want %x", got.InputRow, want.InputRow)
	}
	if got.Debug != want.Debug {
		t.Errorf("Debug = %v, want %v", got.Debug, want.Debug)
	}
}

func TestQueryRequestRoundTripEmptyFields(t *testing.T) {
	want := &QueryRequest{Database: "", SQL: "", InputRow: nil, Debug: false}
	got, err := DecodeQueryRequest(want.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Database != "" || got.SQL != "" || len(got.InputRow) != 0 || got.Debug {
		t.Errorf("got %+v, want all-zero QueryRequest", got)
	}
}

func TestDecodeQueryRequestTruncated(t *testing.T) {
	want := &QueryRequest{Database: "db", SQL: "SELECT 1", InputRow: []byte{9}, Debug: true}
	buf := want.Encode()
	if _, err := DecodeQueryRequest(buf[:len(buf)-1]); !errors.Is(err, fdberr.ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestRowOffsets(t *testing.T) {
	row1 := encodedRow(t, 1, []byte{0xaa})
	row2 := encodedRow(t, 2, []byte{0xbb, 0xcc})
	row3 := encodedRow(t, 3, nil)
	attachment := append(append(append([]byte{}, row1...), row2...), row3...)

	rows, err := RowOffsets(attachment)
	if err != nil {
		t.Fatalf("RowOffsets: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !bytes.Equal(rows[0], row1) {
		t.Errorf("rows[0] = %x, want %x", rows[0], row1)
	}
	if !bytes.Equal(rows[1], row2) {
		t.Errorf("rows[1] = %x, want %x", rows[1], row2)
	}
	if !bytes.Equal(rows[2], row3) {
		t.Errorf("rows[2] = %x, want %x", rows[2], row3)
	}
}

func TestRowOffsetsTruncated(t *testing.T) {
	row1 := encodedRow(t, 1, []byte{0xaa})
	attachment := append(row1, 0x01, 0x02) // a partial, too-short trailing row
	if _, err := RowOffsets(attachment); !errors.Is(err, fdberr.ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

// encodedRow builds a minimal buffer matching the row codec's "size at
// offset +1" framing that RowOffsets relies on, without importing
// fdbcodec: byte 0 is a version tag, bytes 1..4 are the little-endian
// total size, the rest is opaque body.
func encodedRow(t *testing.T, version byte, body []byte) []byte {
	t.Helper()
	size := 5 + len(body)
	buf := make([]byte, size)
	buf[0] = version
	buf[1] = byte(size)
	buf[2] = byte(size >> 8)
	buf[3] = byte(size >> 16)
	buf[4] = byte(size >> 24)
	copy(buf[5:], body)
	return buf
}
