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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	t.Setenv("REPGREP_TEST_BIN", "/opt/rg")

	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: ".repgrep.yaml",
			config: `
ripgrep: /usr/local/bin/rg
encoding: latin1
concurrency: 4
protect:
  - "vendor/**"
  - "**/*.lock"
dry_run: true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/usr/local/bin/rg", cfg.Ripgrep, "ripgrep should match")
				assert.Equal(t, "latin1", cfg.Encoding, "encoding should match")
				assert.Equal(t, 4, cfg.Concurrency, "concurrency should match")
				assert.Equal(t, []string{"vendor/**", "**/*.lock"}, cfg.Protect, "protect should match")
				assert.True(t, cfg.DryRun, "dry_run should be set")
			},
		},
		{
			name:     "empty_yaml_gets_defaults",
			filename: ".repgrep.yml",
			config:   "\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "rg", cfg.Ripgrep, "ripgrep should default")
				assert.Zero(t, cfg.Concurrency)
			},
		},
		{
			name:     "valid_json",
			filename: "repgrep.json",
			config:   `{"ripgrep": "rg-13", "protect": ["*.min.js"]}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "rg-13", cfg.Ripgrep)
				assert.Equal(t, []string{"*.min.js"}, cfg.Protect)
			},
		},
		{
			name:     "valid_hcl",
			filename: ".repgrep.hcl",
			config: `
ripgrep     = "${env.REPGREP_TEST_BIN}"
concurrency = 2
protect     = ["go.sum"]
dry_run     = true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/opt/rg", cfg.Ripgrep, "env should be interpolated")
				assert.Equal(t, 2, cfg.Concurrency)
				assert.Equal(t, []string{"go.sum"}, cfg.Protect)
				assert.True(t, cfg.DryRun)
			},
		},
		{
			name:        "unknown_yaml_field",
			filename:    ".repgrep.yaml",
			config:      "rg: foo\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			filename:    "c.json",
			config:      `{"threads": 2}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "bad_hcl",
			filename:    "c.hcl",
			config:      `ripgrep = `,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "negative_concurrency",
			filename:    "c.yaml",
			config:      "concurrency: -1\n",
			wantErr:     true,
			errContains: "concurrency must not be negative",
		},
		{
			name:        "invalid_protect_glob",
			filename:    "c.yaml",
			config:      "protect: ['[unclosed']\n",
			wantErr:     true,
			errContains: "invalid protect pattern",
		},
		{
			name:        "unknown_encoding",
			filename:    "c.yaml",
			config:      "encoding: klingon\n",
			wantErr:     true,
			errContains: "unknown encoding",
		},
		{
			name:        "unsupported_extension",
			filename:    "c.toml",
			config:      "ripgrep = 'rg'\n",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))

			cfg, err := Load(ctx, path, true)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), ".repgrep.yaml")

	cfg, err := Load(ctx, path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(ctx, path, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", Discover(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repgrep.hcl"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, ".repgrep.hcl"), Discover(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repgrep.yaml"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, ".repgrep.yaml"), Discover(dir), "yaml comes first")
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{Ripgrep: "rg", Protect: []string{"a", "b"}, DryRun: true}
	assert.Equal(t, "rg=rg encoding=auto concurrency=0 protect=2 dry_run=true", cfg.String())
}
