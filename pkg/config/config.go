// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads the process-level settings every node needs at
// startup: ring size, block capacity, proof-of-work difficulty, the
// bootstrap node's address, and the simulation/scalable toggles.
// cmd/nbcnode reads a config file at startup (path supplied by
// urfave/cli's -config flag) and layers per-process flags (-port,
// -bootstrap-ip) on top of it.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nbc-chain/nbc/pkg/node"
)

// Config is the full set of values every node in the ring needs to agree
// on (Nodes, Capacity, Difficulty, Scalable) plus the bootstrap address
// each one dials to register.
type Config struct {
	Nodes         int    `json:"nodes"`
	Capacity      int    `json:"capacity"`
	Difficulty    int    `json:"difficulty"`
	BootstrapIP   string `json:"bootstrap_ip"`
	BootstrapPort int    `json:"bootstrap_port"`
	Simulation    bool   `json:"simulation"`
	Scalable      bool   `json:"scalable"`
}

// Load reads and validates a JSON config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks that the values required for a sane ring are present.
func (c *Config) Validate() error {
	if c.Nodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", c.Nodes)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.Difficulty <= 0 {
		return fmt.Errorf("difficulty must be positive, got %d", c.Difficulty)
	}
	if c.BootstrapIP == "" {
		return fmt.Errorf("bootstrap_ip must be set")
	}
	if c.BootstrapPort <= 0 {
		return fmt.Errorf("bootstrap_port must be positive, got %d", c.BootstrapPort)
	}
	return nil
}

// NodeConfig projects the process-wide settings down to the subset
// pkg/node.Node itself needs.
func (c *Config) NodeConfig() node.Config {
	return node.Config{Capacity: c.Capacity, Difficulty: c.Difficulty, Scalable: c.Scalable}
}
