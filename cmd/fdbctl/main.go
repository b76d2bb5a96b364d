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

// Command fdbctl is an operator CLI for a featherdb cluster: it loads the
// same topology file cmd/fdbd serves from and issues put/get calls
// directly against the tablet that owns a key, without going through a
// SQL planner.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/featherdb/fdb/internal/fdbconfig"
)

var (
	configPath string
	dashv      bool
)

func init() {
	flag.StringVar(&configPath, "c", "fdbd.yaml", "cluster topology config file")
	flag.BoolVar(&dashv, "v", false, "verbose")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if !dashv {
		return
	}
	if len(f) == 0 || f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func loadConfig() *fdbconfig.Config {
	cfg, err := fdbconfig.Load(configPath)
	if err != nil {
		exitf("%s\n", err)
	}
	return cfg
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage:\n")
		fmt.Fprintf(os.Stderr, "    %s [-c config.yaml] put <table> <key> <time> <file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        write the encoded row in <file> under (table, key, time)\n")
		fmt.Fprintf(os.Stderr, "    %s [-c config.yaml] get <table> <key> <time>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        fetch the row at (table, key, time) and print its attachment\n")
		fmt.Fprintf(os.Stderr, "    %s [-c config.yaml] status\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        print every tablet's configured tables\n")
		fmt.Fprintf(os.Stderr, "flag usage:\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	switch args[0] {
	case "put":
		if len(args) != 5 {
			exitf("usage: put <table> <key> <time> <file>\n")
		}
		cmdPut(cfg, args[1], args[2], args[3], args[4])
	case "get":
		if len(args) != 4 {
			exitf("usage: get <table> <key> <time>\n")
		}
		cmdGet(cfg, args[1], args[2], args[3])
	case "status":
		cmdStatus(cfg)
	default:
		exitf("unknown sub-command %q\n", args[0])
	}
}
