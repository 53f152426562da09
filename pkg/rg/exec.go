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

package rg

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultBinary is the ripgrep executable looked up on PATH.
const DefaultBinary = "rg"

// 🔧 RunOptions configures a ripgrep invocation.
type RunOptions struct {
	Binary string   // defaults to DefaultBinary
	Args   []string // forwarded after --json
	Dir    string   // working directory, empty for the current one
}

// 🏃 Run executes ripgrep with --json and decodes its output while it runs.
// Exit status 1 (no matches) is not an error. Exit status 2 with output is
// logged and the partial result returned, since ripgrep uses it for
// unreadable files alongside real matches.
func Run(ctx context.Context, opts RunOptions) ([]Message, error) {
	logger := zerolog.Ctx(ctx)

	bin := opts.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	args := append([]string{"--json"}, opts.Args...)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = opts.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Errorf("opening %s stdout: %w", bin, err)
	}

	logger.Debug().Str("binary", bin).Strs("args", args).Msg("running ripgrep")
	if err := cmd.Start(); err != nil {
		return nil, errors.Errorf("starting %s: %w", bin, err)
	}

	msgs, readErr := ReadMessages(ctx, stdout)
	if readErr != nil {
		// drain so the child is not blocked on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if readErr != nil {
		return nil, readErr
	}
	if waitErr == nil {
		return msgs, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		switch {
		case exitErr.ExitCode() == 1:
			logger.Debug().Msg("ripgrep found no matches")
			return msgs, nil
		case exitErr.ExitCode() == 2 && len(msgs) > 0:
			logger.Warn().Str("stderr", strings.TrimSpace(stderr.String())).Msg("ripgrep reported errors")
			return msgs, nil
		}
	}

	return nil, errors.Errorf("running %s: %w: %s", bin, waitErr, strings.TrimSpace(stderr.String()))
}
