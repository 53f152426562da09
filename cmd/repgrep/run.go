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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/codec"
	"github.com/walteh/repgrep/pkg/config"
	"github.com/walteh/repgrep/pkg/log"
	"github.com/walteh/repgrep/pkg/model"
	"github.com/walteh/repgrep/pkg/replace"
	"github.com/walteh/repgrep/pkg/rg"
	"github.com/walteh/repgrep/pkg/session"
	"github.com/walteh/repgrep/pkg/ui"
)

var (
	ErrStdinTerminal = errors.Base("no pattern given and stdin is a terminal")
	ErrPatchFailed   = errors.Base("some files could not be patched")
)

// app wires one invocation. review is swapped out in tests.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
	dir    string
	review func(ctx context.Context, s *session.Session, title string) error
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		review: reviewOnTTY,
	}
}

func reviewOnTTY(ctx context.Context, s *session.Session, title string) error {
	tty, err := ui.OpenTTY()
	if err != nil {
		return err
	}
	defer tty.Close()
	return ui.Run(ctx, s, tty, title)
}

func (a *app) loadConfig(ctx context.Context, args *Args) (*config.Config, error) {
	if args.ConfigFile != "" {
		return config.Load(ctx, args.ConfigFile, true)
	}
	dir := a.dir
	if dir == "" {
		dir = "."
	}
	path := config.Discover(dir)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(ctx, path, false)
}

func (a *app) collect(ctx context.Context, args *Args, cfg *config.Config) ([]rg.Message, error) {
	if args.Stdin {
		if isatty.IsTerminal(a.stdin.Fd()) || isatty.IsCygwinTerminal(a.stdin.Fd()) {
			return nil, ErrStdinTerminal
		}
		msgs, err := rg.ReadMessages(ctx, a.stdin)
		if err != nil {
			return nil, errors.Errorf("reading stdin: %w", err)
		}
		return msgs, nil
	}

	msgs, err := rg.Run(ctx, rg.RunOptions{
		Binary: cfg.Ripgrep,
		Args:   args.RipgrepArgs(),
		Dir:    a.dir,
	})
	if err != nil {
		return nil, errors.Errorf("searching: %w", err)
	}
	return msgs, nil
}

// title names the search under review: the ripgrep command line, or stdin.
func title(args *Args, cfg *config.Config) string {
	if args.Stdin {
		return "stdin"
	}
	return strings.Join(append([]string{filepath.Base(cfg.Ripgrep), "--json"}, args.RipgrepArgs()...), " ")
}

// run searches, reviews and patches. Cancelling the review is not an error.
func (a *app) run(ctx context.Context, args *Args) error {
	ctx = zerolog.Ctx(ctx).With().Str("run", uuid.NewString()).Logger().WithContext(ctx)
	logger := zerolog.Ctx(ctx)
	user := log.NewUserLogger(ctx).WithWriter(a.stderr)

	cfg, err := a.loadConfig(ctx, args)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if args.Ripgrep != "" {
		cfg.Ripgrep = args.Ripgrep
	}
	encoding := cfg.Encoding
	if args.Encoding != "" {
		encoding = args.Encoding
	}
	if !codec.IsAuto(encoding) {
		if _, err := codec.Lookup(encoding); err != nil {
			return errors.Errorf("checking encoding: %w", err)
		}
	}
	logger.Debug().Str("config", cfg.String()).Msg("configuration resolved")

	if args.ClampUnrestricted() {
		user.LogValidation(false, "binary files cannot be reviewed, searching with -uu instead", nil)
	}

	msgs, err := a.collect(ctx, args, cfg)
	if err != nil {
		return err
	}

	items := model.NewItems(msgs)
	s := session.New(items, session.WithEncoding(encoding))
	if s.Selected() == 0 {
		user.LogStateChange("No replaceable matches found")
		return nil
	}

	if err := a.review(ctx, s, title(args, cfg)); err != nil {
		return errors.Errorf("reviewing matches: %w", err)
	}
	if s.Outcome() != session.OutcomeAccepted {
		user.LogStateChange("Cancelled")
		return nil
	}

	req := s.Request()
	patcher := replace.NewPatcher(replace.Options{
		Store:       replace.NewOSFileStore(a.dir),
		Concurrency: cfg.Concurrency,
		Protect:     cfg.Protect,
		DryRun:      args.DryRun || cfg.DryRun,
	})
	report := patcher.Apply(ctx, req)

	out := log.New(a.stdout, *logger)
	out.Header(fmt.Sprintf("%d matches in %d files", req.Count(), len(report.Results)))
	out.LogReport(ctx, report)

	if err := report.Err(); err != nil {
		logger.Debug().Err(err).Msg("patch failures")
		return errors.Errorf("%w: %d of %d", ErrPatchFailed, len(report.Failed()), len(report.Results))
	}
	return nil
}
