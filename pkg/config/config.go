// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/codec"
	"github.com/walteh/repgrep/pkg/rg"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// DefaultFiles are looked up, in order, when no config path is given.
var DefaultFiles = []string{".repgrep.yaml", ".repgrep.yml", ".repgrep.json", ".repgrep.hcl"}

// 📚 Config holds the settings that are not per-search.
type Config struct {
	// Ripgrep is the binary to run.
	Ripgrep string `json:"ripgrep,omitempty" yaml:"ripgrep,omitempty" hcl:"ripgrep,optional"`
	// Encoding is the default patch-time encoding override.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" hcl:"encoding,optional"`
	// Concurrency bounds how many files are patched at once. Zero means one per CPU.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	// Protect lists doublestar globs of paths that are never written.
	Protect []string `json:"protect,omitempty" yaml:"protect,omitempty" hcl:"protect,optional"`
	DryRun  bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Ripgrep: rg.DefaultBinary}
}

// Discover returns the first of DefaultFiles present in dir, or "".
func Discover(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// 🎯 Load loads the configuration from a file. When explicit is false a
// missing file yields the defaults instead of an error.
func Load(ctx context.Context, path string, explicit bool) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Bool("explicit", explicit).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logger.Debug().Str("path", path).Msg("no config file, using defaults")
			return Default(), nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}

	for _, pattern := range cfg.Protect {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid protect pattern %q", pattern)
		}
	}

	if !codec.IsAuto(cfg.Encoding) {
		if _, err := codec.Lookup(cfg.Encoding); err != nil {
			return errors.Errorf("checking encoding: %w", err)
		}
	}

	// Set defaults
	cfg.Ripgrep = strings.TrimSpace(cfg.Ripgrep)
	if cfg.Ripgrep == "" {
		cfg.Ripgrep = rg.DefaultBinary
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	encoding := cfg.Encoding
	if codec.IsAuto(encoding) {
		encoding = "auto"
	}
	return fmt.Sprintf("rg=%s encoding=%s concurrency=%d protect=%d dry_run=%t",
		cfg.Ripgrep, encoding, cfg.Concurrency, len(cfg.Protect), cfg.DryRun)
}
