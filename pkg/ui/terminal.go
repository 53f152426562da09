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

// Package ui runs the interactive review loop on a terminal: raw keys in,
// a redrawn screen out, until the session finishes.
package ui

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"

	"github.com/walteh/repgrep/pkg/session"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l"
	clearScreen    = "\x1b[H\x1b[2J"
	defaultHeight  = 24
)

// Terminal is the device the review loop reads keys from and draws on.
type Terminal interface {
	io.ReadWriter
	Fd() uintptr
}

// OpenTTY opens the controlling terminal. Keys must come from here when
// stdin carries the ripgrep stream.
func OpenTTY() (*os.File, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Errorf("opening terminal: %w", err)
	}
	return tty, nil
}

// ▶️ Run puts t into raw mode and feeds keys to s until it finishes. title
// names what is being reviewed in the status line. The terminal is restored
// before returning.
func Run(ctx context.Context, s *session.Session, t Terminal, title string) error {
	logger := zerolog.Ctx(ctx)
	fd := int(t.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Errorf("entering raw mode: %w", err)
	}
	defer func() {
		_, _ = io.WriteString(t, leaveAltScreen)
		if rerr := term.Restore(fd, state); rerr != nil {
			logger.Warn().Err(rerr).Msg("restoring terminal")
		}
	}()

	if _, err := io.WriteString(t, enterAltScreen); err != nil {
		return errors.Errorf("drawing: %w", err)
	}

	return loop(ctx, s, t, title, func() int {
		if _, h, err := term.GetSize(fd); err == nil && h > 0 {
			return h
		}
		return defaultHeight
	})
}

func loop(ctx context.Context, s *session.Session, rw io.ReadWriter, title string, height func() int) error {
	logger := zerolog.Ctx(ctx)
	buf := make([]byte, 256)
	notice := ""

	for s.State() != session.StateFinished {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("reviewing: %w", err)
		}

		frame := clearScreen + strings.Join(Render(s, title, height(), notice), "\r\n")
		if _, err := io.WriteString(rw, frame); err != nil {
			return errors.Errorf("drawing: %w", err)
		}
		notice = ""

		n, err := rw.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug().Msg("terminal closed, cancelling")
				return s.Handle(session.EventQuit)
			}
			return errors.Errorf("reading keys: %w", err)
		}

		for _, k := range ParseKeys(buf[:n]) {
			if s.State() == session.StateFinished {
				break
			}
			err := Dispatch(s, k)
			switch {
			case errors.Is(err, session.ErrNothingSelected):
				notice = "nothing selected"
			case err != nil:
				return errors.Errorf("handling key: %w", err)
			}
		}
	}

	logger.Debug().Str("outcome", s.Outcome().String()).Msg("review finished")
	return nil
}
