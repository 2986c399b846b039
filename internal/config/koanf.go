// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/touriscope/config.yaml",
	"/etc/touriscope/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "TOURISCOPE_CONFIG"

// envPrefix namespaces Touriscope's environment variables.
const envPrefix = "TOURISCOPE_"

// sections are the top-level koanf keys environment variables map into.
var sections = []string{"server", "database", "collector", "analysis", "scheduler", "logging"}

// Load builds the configuration from three layers, later layers winning:
//
//  1. built-in defaults
//  2. optional YAML config file
//  3. TOURISCOPE_* environment variables
//
// Example: TOURISCOPE_ANALYSIS_MIN_SAMPLE_SIZE=150 sets analysis.min_sample_size.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// envTransform maps TOURISCOPE_SECTION_SOME_KEY to section.some_key. The
// section name is matched against the known top-level keys so that multi-word
// leaf keys keep their underscores.
func envTransform(key string) string {
	rest := strings.ToLower(strings.TrimPrefix(key, envPrefix))
	for _, s := range sections {
		if strings.HasPrefix(rest, s+"_") {
			return s + "." + strings.TrimPrefix(rest, s+"_")
		}
	}
	// Unknown section: ignore by returning a key nothing unmarshals.
	return ""
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
