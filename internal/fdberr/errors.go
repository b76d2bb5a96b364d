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

// Package fdberr defines the sentinel error kinds surfaced by the codec,
// storage, and router packages. Call sites wrap these with fmt.Errorf's
// %w verb rather than defining their own ad-hoc error strings, so callers
// can match failure classes with errors.Is.
package fdberr

import "errors"

var (
	// ErrTruncated means a buffer was shorter than its declared size.
	ErrTruncated = errors.New("fdb: buffer truncated")
	// ErrUnsupportedVersion means the encoded row carries an unknown version byte.
	ErrUnsupportedVersion = errors.New("fdb: unsupported row version")
	// ErrSchemaMismatch means a value tuple's arity or types disagree with a schema.
	ErrSchemaMismatch = errors.New("fdb: schema mismatch")
	// ErrTypeMismatch means a field was accessed as the wrong type, or a
	// default value could not be coerced to its column's declared type.
	ErrTypeMismatch = errors.New("fdb: type mismatch")
	// ErrNotNull means a null value was supplied for a non-nullable column.
	ErrNotNull = errors.New("fdb: null value for non-nullable column")
	// ErrInsertShape means an INSERT's explicit column list was malformed.
	ErrInsertShape = errors.New("fdb: invalid insert shape")
	// ErrNoTablet means no tablet owns the requested partition.
	ErrNoTablet = errors.New("fdb: no tablet for partition")
	// ErrRPC means the RPC transport failed.
	ErrRPC = errors.New("fdb: rpc error")
	// ErrPlan means the planner rejected a SQL statement.
	ErrPlan = errors.New("fdb: plan error")
	// ErrDuplicateProcedure means a procedure name collided at registration.
	ErrDuplicateProcedure = errors.New("fdb: duplicate procedure")
)
