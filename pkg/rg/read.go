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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ❌ ProtocolError reports the first input line that is not a valid ripgrep record.
type ProtocolError struct {
	Line int // 1-based
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("invalid ripgrep message on line %d: %v", e.Line, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// 📥 ReadMessages decodes one record per line. Decoding is all or nothing:
// the first invalid line aborts with a *ProtocolError and no messages.
func ReadMessages(ctx context.Context, r io.Reader) ([]Message, error) {
	logger := zerolog.Ctx(ctx)

	br := bufio.NewReader(r)
	var msgs []Message
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("reading messages: %w", err)
		}

		raw, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, &ProtocolError{Line: line, Err: errors.Errorf("reading line: %w", readErr)}
		}
		if len(raw) == 0 && readErr != nil {
			break
		}

		raw = bytes.TrimSuffix(raw, []byte("\n"))
		raw = bytes.TrimSuffix(raw, []byte("\r"))

		msg, err := ParseMessage(raw)
		if err != nil {
			logger.Debug().Int("line", line).Err(err).Msg("rejecting ripgrep output")
			return nil, &ProtocolError{Line: line, Err: err}
		}
		msgs = append(msgs, msg)

		if readErr != nil {
			break
		}
	}

	logger.Debug().Int("messages", len(msgs)).Msg("read ripgrep messages")
	return msgs, nil
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wireBegin struct {
	Path *Data `json:"path"`
}

type wireSubMatch struct {
	Match *Data   `json:"match"`
	Start *uint64 `json:"start"`
	End   *uint64 `json:"end"`
}

type wireLines struct {
	Path           *Data          `json:"path"`
	Lines          *Data          `json:"lines"`
	LineNumber     *uint64        `json:"line_number"`
	AbsoluteOffset *uint64        `json:"absolute_offset"`
	SubMatches     []wireSubMatch `json:"submatches"`
}

type wireEnd struct {
	Path         *Data   `json:"path"`
	BinaryOffset *uint64 `json:"binary_offset"`
	Stats        *Stats  `json:"stats"`
}

type wireSummary struct {
	ElapsedTotal *Duration `json:"elapsed_total"`
	Stats        *Stats    `json:"stats"`
}

// 🔍 ParseMessage decodes a single JSON record.
func ParseMessage(line []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, errors.Errorf("decoding record: %w", err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, errors.Errorf("record of type %q has no data", env.Type)
	}

	switch env.Type {
	case "begin":
		var w wireBegin
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, errors.Errorf("decoding begin: %w", err)
		}
		path, err := requirePath(w.Path)
		if err != nil {
			return nil, err
		}
		return Begin{Path: path}, nil
	case "match":
		var w wireLines
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, errors.Errorf("decoding match: %w", err)
		}
		return parseMatch(w)
	case "context":
		var w wireLines
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, errors.Errorf("decoding context: %w", err)
		}
		path, err := requirePath(w.Path)
		if err != nil {
			return nil, err
		}
		if w.Lines == nil {
			return nil, errors.New("context has no lines")
		}
		c := Context{Path: path, Lines: *w.Lines, LineNumber: w.LineNumber}
		if w.AbsoluteOffset != nil {
			c.AbsoluteOffset = *w.AbsoluteOffset
		}
		return c, nil
	case "end":
		var w wireEnd
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, errors.Errorf("decoding end: %w", err)
		}
		path, err := requirePath(w.Path)
		if err != nil {
			return nil, err
		}
		if w.Stats == nil {
			return nil, errors.New("end has no stats")
		}
		return End{Path: path, BinaryOffset: w.BinaryOffset, Stats: *w.Stats}, nil
	case "summary":
		var w wireSummary
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, errors.Errorf("decoding summary: %w", err)
		}
		if w.ElapsedTotal == nil {
			return nil, errors.New("summary has no elapsed_total")
		}
		if w.Stats == nil {
			return nil, errors.New("summary has no stats")
		}
		return Summary{ElapsedTotal: *w.ElapsedTotal, Stats: *w.Stats}, nil
	default:
		return nil, errors.Errorf("unknown record type %q", env.Type)
	}
}

func parseMatch(w wireLines) (Message, error) {
	path, err := requirePath(w.Path)
	if err != nil {
		return nil, err
	}
	if w.Lines == nil {
		return nil, errors.New("match has no lines")
	}
	if w.AbsoluteOffset == nil {
		return nil, errors.New("match has no absolute_offset")
	}
	if w.SubMatches == nil {
		return nil, errors.New("match has no submatches")
	}

	size := uint64(w.Lines.Len())
	subs := make([]SubMatch, 0, len(w.SubMatches))
	var prevEnd uint64
	for i, s := range w.SubMatches {
		if s.Match == nil || s.Start == nil || s.End == nil {
			return nil, errors.Errorf("submatch %d is incomplete", i)
		}
		if *s.Start > *s.End || *s.End > size {
			return nil, errors.Errorf("submatch %d range [%d, %d) is outside a %d byte line", i, *s.Start, *s.End, size)
		}
		if *s.Start < prevEnd {
			return nil, errors.Errorf("submatch %d starts at %d before the previous end %d", i, *s.Start, prevEnd)
		}
		prevEnd = *s.End
		subs = append(subs, SubMatch{Text: *s.Match, Start: int(*s.Start), End: int(*s.End)})
	}

	return Match{
		Path:           path,
		Lines:          *w.Lines,
		LineNumber:     w.LineNumber,
		AbsoluteOffset: *w.AbsoluteOffset,
		SubMatches:     subs,
	}, nil
}

func requirePath(p *Data) (Data, error) {
	if p == nil {
		return Data{}, errors.New("record has no path")
	}
	if _, err := p.Path(); err != nil {
		return Data{}, errors.Errorf("resolving path: %w", err)
	}
	return *p, nil
}
