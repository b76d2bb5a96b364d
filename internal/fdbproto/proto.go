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

// Package fdbproto defines the request/response shapes that cross the
// tablet RPC boundary, independent of any concrete transport. No
// stable wire protocol is specified here: these are plain Go structs with
// length-prefixed encoding helpers in the same style as the row codec,
// meant for an injected transport (see internal/fdbrouter) to marshal
// however it sees fit.
package fdbproto

import (
	"encoding/binary"
	"fmt"

	"github.com/featherdb/fdb/internal/fdberr"
)

// StatusOK is the client-visible "no error" code.
const StatusOK int32 = 0

// QueryRequest is sent to a tablet to run a single SQL statement,
// optionally carrying an encoded input row for a prepared "request mode"
// plan.
type QueryRequest struct {
	Database string
	SQL      string
	InputRow []byte // encoded row, or nil
	Debug    bool
}

// QueryResponse carries a tablet's reply. Attachment is the concatenation
// of encoded rows matching Schema; each row carries its own size field at
// offset +1 from its start (after the version byte), which doubles as the
// parsing cursor for splitting the attachment back into rows.
type QueryResponse struct {
	Code       int32
	Msg        string
	Schema     []byte
	Count      uint32
	ByteSize   uint32
	Attachment []byte
}

// BatchRequest is a QueryRequest shape extended for a batch of input rows
// sharing one SQL statement: CommonRows are shared across every call,
// PerCallRows are selected per call via Offsets (one past-the-end offset
// per call into PerCallRows).
type BatchRequest struct {
	Database    string
	SQL         string
	CommonRows  []byte
	PerCallRows []byte
	Offsets     []uint32
}

// ProcedureRegistration describes a stored procedure at creation time.
type ProcedureRegistration struct {
	Database        string
	Name            string
	SQL             string
	InputSchema     []byte
	OutputSchema    []byte
	DependentTables []string
	MainTable       string
}

func putString(dst []byte, s string) int {
	binary.LittleEndian.PutUint32(dst, uint32(len(s)))
	n := copy(dst[4:], s)
	return 4 + n
}

func putBytes(dst []byte, b []byte) int {
	binary.LittleEndian.PutUint32(dst, uint32(len(b)))
	n := copy(dst[4:], b)
	return 4 + n
}

func stringSize(s string) int { return 4 + len(s) }
func bytesSize(b []byte) int  { return 4 + len(b) }

func readString(src []byte) (string, int, error) {
	if len(src) < 4 {
		return "", 0, fdberr.ErrTruncated
	}
	n := int(binary.LittleEndian.Uint32(src))
	if len(src) < 4+n {
		return "", 0, fdberr.ErrTruncated
	}
	return string(src[4 : 4+n]), 4 + n, nil
}

func readBytes(src []byte) ([]byte, int, error) {
	if len(src) < 4 {
		return nil, 0, fdberr.ErrTruncated
	}
	n := int(binary.LittleEndian.Uint32(src))
	if len(src) < 4+n {
		return nil, 0, fdberr.ErrTruncated
	}
	return src[4 : 4+n], 4 + n, nil
}

// Encode serializes r as: database, sql, inputRow, debug(1 byte).
func (r *QueryRequest) Encode() []byte {
	size := stringSize(r.Database) + stringSize(r.SQL) + bytesSize(r.InputRow) + 1
	buf := make([]byte, size)
	off := putString(buf, r.Database)
	off += putString(buf[off:], r.SQL)
	off += putBytes(buf[off:], r.InputRow)
	if r.Debug {
		buf[off] = 1
	}
	return buf
}

// DecodeQueryRequest is the inverse of (*QueryRequest).Encode.
func DecodeQueryRequest(buf []byte) (*QueryRequest, error) {
	r := &QueryRequest{}
	var off, n int
	var err error
	if r.Database, n, err = readString(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryRequest.Database: %w", err)
	}
	off += n
	if r.SQL, n, err = readString(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryRequest.SQL: %w", err)
	}
	off += n
	if r.InputRow, n, err = readBytes(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryRequest.InputRow: %w", err)
	}
	off += n
	if off >= len(buf) {
		return nil, fmt.Errorf("fdbproto: decode QueryRequest.Debug: %w", fdberr.ErrTruncated)
	}
	r.Debug = buf[off] != 0
	return r, nil
}

// Encode serializes r as: code(4), msg, schema, count(4), byteSize(4),
// attachment.
func (r *QueryResponse) Encode() []byte {
	size := 4 + stringSize(r.Msg) + bytesSize(r.Schema) + 4 + 4 + bytesSize(r.Attachment)
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(r.Code))
	off += 4
	off += putString(buf[off:], r.Msg)
	off += putBytes(buf[off:], r.Schema)
	binary.LittleEndian.PutUint32(buf[off:], r.Count)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], r.ByteSize)
	off += 4
	putBytes(buf[off:], r.Attachment)
	return buf
}

// DecodeQueryResponse is the inverse of (*QueryResponse).Encode.
func DecodeQueryResponse(buf []byte) (*QueryResponse, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("fdbproto: decode QueryResponse.Code: %w", fdberr.ErrTruncated)
	}
	r := &QueryResponse{Code: int32(binary.LittleEndian.Uint32(buf))}
	off := 4
	var n int
	var err error
	if r.Msg, n, err = readString(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryResponse.Msg: %w", err)
	}
	off += n
	if r.Schema, n, err = readBytes(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryResponse.Schema: %w", err)
	}
	off += n
	if len(buf) < off+8 {
		return nil, fmt.Errorf("fdbproto: decode QueryResponse counts: %w", fdberr.ErrTruncated)
	}
	r.Count = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	r.ByteSize = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if r.Attachment, _, err = readBytes(buf[off:]); err != nil {
		return nil, fmt.Errorf("fdbproto: decode QueryResponse.Attachment: %w", err)
	}
	return r, nil
}

// RowOffsets splits attachment into individual encoded rows by reading
// each row's own size field, matching the row codec's "size at offset +1"
// self-describing layout used as the attachment's implicit framing.
func RowOffsets(attachment []byte) ([][]byte, error) {
	var rows [][]byte
	off := 0
	for off < len(attachment) {
		if len(attachment)-off < 5 {
			return nil, fmt.Errorf("fdbproto: row framing: %w", fdberr.ErrTruncated)
		}
		size := binary.LittleEndian.Uint32(attachment[off+1:])
		end := off + int(size)
		if end > len(attachment) || end <= off {
			return nil, fmt.Errorf("fdbproto: row framing: %w", fdberr.ErrTruncated)
		}
		rows = append(rows, attachment[off:end])
		off = end
	}
	return rows, nil
}
