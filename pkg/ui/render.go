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

package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/color"

	"github.com/walteh/repgrep/pkg/model"
	"github.com/walteh/repgrep/pkg/rg"
	"github.com/walteh/repgrep/pkg/session"
)

var (
	pathStyle     = color.New(color.FgMagenta, color.Bold)
	cursorStyle   = color.New(color.FgCyan, color.Bold)
	headerStyle   = color.New(color.Bold, color.FgCyan)
	faintStyle    = color.New(color.Faint)
	lineNumStyle  = color.New(color.FgYellow)
	keptStyle     = color.New(color.FgRed, color.Bold)
	replacedStyle = color.New(color.FgRed, color.CrossedOut)
	droppedStyle  = color.New(color.Faint)
	previewStyle  = color.New(color.FgGreen, color.Bold)
)

const (
	browseHelp  = "j/k move  h/l submatch  space toggle  a toggle all  enter replace  esc/q quit"
	confirmHelp = "type replacement  enter accept  esc back  ctrl-c quit"
)

func segmentStyle(seg model.Segment, previewing bool) *color.Color {
	var c *color.Color
	switch seg.Role {
	case model.RoleMatchedKept:
		c = keptStyle
		if previewing {
			c = replacedStyle
		}
	case model.RoleMatchedDropped:
		c = droppedStyle
	case model.RoleReplacementPreview:
		c = previewStyle
	case model.RoleLineNumber:
		c = lineNumStyle
	}
	if seg.Focused {
		c = color.New().Add(color.Underline)
		if seg.Role == model.RoleMatchedDropped {
			c.Add(color.Faint)
		} else {
			c.Add(color.FgRed)
		}
	}
	return c
}

// printable escapes control characters other than tab as \xNN, so file
// content cannot move the cursor or retitle the terminal.
func printable(s string) string {
	if !strings.ContainsFunc(s, isEscaped) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isEscaped(r) {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEscaped(r rune) bool {
	return r != '\t' && unicode.IsControl(r)
}

// itemLines turns an item into display lines without the cursor column.
func itemLines(it *model.Item, replacement *string, focus int) []string {
	segs := it.Segments(replacement, focus)
	if len(segs) == 0 {
		return nil
	}

	lines := []string{""}
	for _, seg := range segs {
		style := segmentStyle(seg, replacement != nil)
		for i, part := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				lines = append(lines, "")
			}
			part = printable(strings.TrimSuffix(part, "\r"))
			if part == "" {
				continue
			}
			if seg.Role == model.RoleLineNumber {
				part += " "
			}
			if style != nil {
				part = style.Sprint(part)
			}
			lines[len(lines)-1] += part
		}
	}
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	switch it.Kind {
	case rg.KindBegin:
		for i := range lines {
			lines[i] = pathStyle.Sprint(lines[i])
		}
	case rg.KindSummary:
		for i := range lines {
			lines[i] = faintStyle.Sprint(lines[i])
		}
	case rg.KindMatch, rg.KindContext:
		for i := range lines {
			lines[i] = "  " + lines[i]
		}
	case rg.KindEnd:
	}
	return lines
}

// 🖼️ Render draws the session into height terminal rows: a status line
// naming title, the item list scrolled to keep the cursor visible, and a
// help line. notice replaces the help line when set.
func Render(s *session.Session, title string, height int, notice string) []string {
	if height < 3 {
		height = 3
	}

	var replacement *string
	if s.State() == session.StateConfirming {
		r := s.Replacement()
		replacement = &r
	}

	var body []string
	cursorLine := 0
	for i, it := range s.Items() {
		focus := model.NoFocus
		if i == s.Cursor() {
			focus = s.Focus()
		}
		lines := itemLines(it, replacement, focus)
		for j, line := range lines {
			prefix := "  "
			if i == s.Cursor() && j == 0 {
				prefix = cursorStyle.Sprint("> ")
				cursorLine = len(body)
			}
			body = append(body, prefix+line)
		}
	}

	rows := height - 2
	start := 0
	if cursorLine >= rows {
		start = cursorLine - rows/2
	}
	end := min(start+rows, len(body))
	if end-start < rows && end == len(body) {
		start = max(0, end-rows)
	}

	out := make([]string, 0, height)
	out = append(out, header(s, title))
	out = append(out, body[start:end]...)
	for len(out) < height-1 {
		out = append(out, "")
	}

	footer := browseHelp
	if s.State() == session.StateConfirming {
		footer = confirmHelp
	}
	if notice != "" {
		out = append(out, color.New(color.FgYellow).Sprint(notice))
	} else {
		out = append(out, faintStyle.Sprint(footer))
	}
	return out
}

func header(s *session.Session, title string) string {
	name := headerStyle.Sprint("repgrep")
	if title != "" {
		name += " " + faintStyle.Sprint("• "+printable(title))
	}
	if s.State() == session.StateConfirming {
		return fmt.Sprintf("%s %s %s", name, faintStyle.Sprint("• replace with:"), printable(s.Replacement())+"▏")
	}
	return fmt.Sprintf("%s %s", name, faintStyle.Sprintf("• %d selected", s.Selected()))
}
