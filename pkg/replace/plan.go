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

package replace

import (
	"bytes"
	"cmp"
	"slices"
)

// 📐 Plan orders the spans of a file's matches ascending and rejects any
// pair that overlaps. Two empty spans at the same offset count as overlapping
// since both would insert at the same point.
func Plan(matches []Match) ([]Span, error) {
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m.Span())
	}

	slices.SortStableFunc(spans, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.Start < prev.End || cur == prev {
			return nil, &OverlapError{First: prev, Second: cur}
		}
	}
	return spans, nil
}

// ✂️ Splice copies original, substituting encoded for every span. Spans must
// come from Plan. Bytes outside the spans are copied untouched.
func Splice(original []byte, spans []Span, encoded []byte) ([]byte, error) {
	size := len(original)

	var buf bytes.Buffer
	buf.Grow(size + len(spans)*len(encoded))

	cursor := 0
	for i, s := range spans {
		if s.Start < 0 || s.End < s.Start || s.End > size {
			return nil, &RangeError{Span: s, Size: size}
		}
		if s.Start < cursor {
			return nil, &OverlapError{First: spans[i-1], Second: s}
		}
		buf.Write(original[cursor:s.Start])
		buf.Write(encoded)
		cursor = s.End
	}
	buf.Write(original[cursor:])

	return buf.Bytes(), nil
}
