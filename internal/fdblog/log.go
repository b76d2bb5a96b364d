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

// Package fdblog is the printf-style logging seam shared by the storage
// and router packages. It deliberately does not wire a specific logging
// backend so that embedders can plug in whatever they already use.
package fdblog

import (
	"fmt"
	"log"
	"os"
)

// Logger is implemented by anything that can accept a printf-style line.
// A nil Logger is valid everywhere it is accepted and silently drops
// messages.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger adapts the standard library's *log.Logger to Logger.
type StdLogger struct {
	*log.Logger
}

// NewStdLogger returns a StdLogger that writes to os.Stderr with the
// standard date/time prefix.
func NewStdLogger(prefix string) StdLogger {
	return StdLogger{log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (s StdLogger) Printf(format string, args ...any) {
	s.Logger.Printf(format, args...)
}

// Safe wraps l and returns a Logger that tolerates a nil receiver.
func Safe(l Logger) Logger {
	return safeLogger{l}
}

type safeLogger struct{ l Logger }

func (s safeLogger) Printf(format string, args ...any) {
	if false {
		// let `go vet` check the printf-style arguments
		_ = fmt.Sprintf(format, args...)
	}
	if s.l != nil {
		s.l.Printf(format, args...)
	}
}
