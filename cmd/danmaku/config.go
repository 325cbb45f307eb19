// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/maristie/ass-danmaku/body"
)

// Auto is the format name that selects a parser by inspecting the input.
const Auto = "auto"

// Outputs lists the supported output encodings.
var Outputs = []string{"json", "ndjson", "yaml"}

// Config holds the settings shared by the subcommands. Values are read from
// an optional TOML file and overridden by flags.
type Config struct {
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	Encoding string `toml:"encoding"`
	Database string `toml:"database"`
	Workers  int    `toml:"workers"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Format:   Auto,
		Output:   "json",
		Encoding: body.Auto,
		Workers:  runtime.NumCPU(),
	}
}

// LoadConfig reads a TOML config file from path and merges it over the
// defaults. An empty path returns the defaults. Keys not defined by Config
// are reported as errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if extra := md.Undecoded(); len(extra) != 0 {
		keys := make([]string, len(extra))
		for i, k := range extra {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config: unknown keys %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate reports an error if cfg names an unknown format, output, or
// encoding. The formats are the names accepted in addition to [Auto].
func (cfg Config) Validate(formats []string) error {
	if cfg.Format != Auto && !slices.Contains(formats, cfg.Format) {
		return fmt.Errorf("unknown format %q (want %s or one of %s)",
			cfg.Format, Auto, strings.Join(formats, ", "))
	}
	if !slices.Contains(Outputs, cfg.Output) {
		return fmt.Errorf("unknown output %q (want one of %s)", cfg.Output, strings.Join(Outputs, ", "))
	}
	for _, enc := range strings.Split(cfg.Encoding, ",") {
		enc = strings.ToLower(strings.TrimSpace(enc))
		if enc != "" && enc != body.Auto && !slices.Contains(body.Encodings, enc) {
			return fmt.Errorf("unknown encoding %q", enc)
		}
	}
	if cfg.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	return nil
}

// merge returns a copy of cfg with each non-zero field of over replacing
// the corresponding field of cfg.
func (cfg Config) merge(over Config) Config {
	if over.Format != "" {
		cfg.Format = over.Format
	}
	if over.Output != "" {
		cfg.Output = over.Output
	}
	if over.Encoding != "" {
		cfg.Encoding = over.Encoding
	}
	if over.Database != "" {
		cfg.Database = over.Database
	}
	if over.Workers != 0 {
		cfg.Workers = over.Workers
	}
	return cfg
}
