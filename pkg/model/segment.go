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

package model

import (
	"strconv"

	"github.com/walteh/repgrep/pkg/rg"
)

// NoFocus is passed to Segments when no submatch has focus.
const NoFocus = -1

// 🎨 Role tells the presentation layer what a Segment is.
type Role int

const (
	RolePlain Role = iota
	RoleMatchedKept
	RoleMatchedDropped
	RoleReplacementPreview
	RoleLineNumber
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RoleMatchedKept:
		return "matched-kept"
	case RoleMatchedDropped:
		return "matched-dropped"
	case RoleReplacementPreview:
		return "replacement-preview"
	case RoleLineNumber:
		return "line-number"
	default:
		return "unknown"
	}
}

// Segment is a run of display text with a single role.
type Segment struct {
	Text    string
	Role    Role
	Focused bool // the submatch under the cursor
}

// 🧩 Segments splits the item into display segments. For a Match the line
// bytes are cut into leading, matched and trailing runs in ascending range
// order, and when replacement is non-nil a preview segment follows every
// kept submatch. Slicing happens on raw bytes before any lossy conversion,
// so ranges stay aligned for content that is not valid UTF-8.
func (it *Item) Segments(replacement *string, focus int) []Segment {
	switch m := it.message.(type) {
	case rg.Begin:
		return []Segment{{Text: m.Path.LossyText(), Role: RolePlain}}
	case rg.Context:
		segs := it.lineNumberSegment()
		return append(segs, Segment{Text: m.Lines.LossyText(), Role: RolePlain})
	case rg.Match:
		return it.matchSegments(m, replacement, focus)
	case rg.End:
		return nil
	case rg.Summary:
		return []Segment{{Text: "Search duration: " + m.ElapsedTotal.Human, Role: RolePlain}}
	}
	return nil
}

func (it *Item) lineNumberSegment() []Segment {
	n, ok := it.LineNumber()
	if !ok {
		return nil
	}
	return []Segment{{Text: strconv.FormatUint(n, 10) + ":", Role: RoleLineNumber}}
}

func (it *Item) matchSegments(m rg.Match, replacement *string, focus int) []Segment {
	lines := m.Lines.Bytes()
	segs := it.lineNumberSegment()

	offset := 0
	for idx, sub := range it.subItems {
		start, end := sub.SubMatch.Start, sub.SubMatch.End
		if start > offset {
			segs = append(segs, Segment{Text: rg.Lossy(lines[offset:start]), Role: RolePlain})
		}

		role := RoleMatchedDropped
		if sub.ShouldReplace {
			role = RoleMatchedKept
		}
		segs = append(segs, Segment{Text: rg.Lossy(lines[start:end]), Role: role, Focused: idx == focus})

		if sub.ShouldReplace && replacement != nil {
			segs = append(segs, Segment{Text: *replacement, Role: RoleReplacementPreview})
		}
		offset = end
	}

	if offset < len(lines) {
		segs = append(segs, Segment{Text: rg.Lossy(lines[offset:]), Role: RolePlain})
	}
	return segs
}
