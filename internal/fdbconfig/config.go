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

// Package fdbconfig parses the cluster topology file shared by cmd/fdbd
// and cmd/fdbctl: name-server address, per-tablet listen addresses, and
// segment GC defaults.
package fdbconfig

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// Tablet describes one tablet process's identity and listen address.
type Tablet struct {
	Name   string   `json:"name"`
	Addr   string   `json:"addr"`
	Tables []string `json:"tables"`
}

// GC holds the settings applied to every segment's garbage collection;
// there is no per-table override.
type GC struct {
	// Interval is how often a tablet sweeps its segments.
	Interval time.Duration `json:"interval"`
	// TTL is the default cutoff age passed to Gc4TTL; zero disables
	// TTL-based collection.
	TTL time.Duration `json:"ttl"`
	// KeepN is the default row-count retention passed to Gc4Head; zero
	// disables count-based collection.
	KeepN int `json:"keepN"`
}

// Config is the top-level cluster topology document.
type Config struct {
	NameServerAddr string   `json:"nameServerAddr"`
	Tablets        []Tablet `json:"tablets"`
	PlanCacheSize  int      `json:"planCacheSize"`
	GC             GC       `json:"gc"`
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fdbconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("fdbconfig: parsing %s: %w", path, err)
	}
	if cfg.PlanCacheSize <= 0 {
		cfg.PlanCacheSize = 50
	}
	return &cfg, nil
}

// TabletByName returns the tablet entry named name, if any.
func (c *Config) TabletByName(name string) (Tablet, bool) {
	for _, t := range c.Tablets {
		if t.Name == name {
			return t, true
		}
	}
	return Tablet{}, false
}
