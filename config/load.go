// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadNodeConfig reads a YAML configuration file at path, starting from
// DefaultNodeConfig so that fields the file omits keep their defaults,
// and validates the result before returning it.
func LoadNodeConfig(path string) (NodeConfig, error) {
	cfg := DefaultNodeConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return NodeConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return NodeConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Valid(); err != nil {
		return NodeConfig{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}
