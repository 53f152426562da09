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
	"path/filepath"

	"github.com/walteh/repgrep/pkg/rg"
)

// Span is a half-open byte range [Start, End) in a file.
type Span struct {
	Start int
	End   int
}

// Len is the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// Match is one selected submatch, positioned by the absolute offset of the
// line it was found on.
type Match struct {
	AbsoluteOffset uint64
	SubMatch       rg.SubMatch
}

// Span returns the file range the submatch covers.
func (m Match) Span() Span {
	return Span{
		Start: int(m.AbsoluteOffset) + m.SubMatch.Start,
		End:   int(m.AbsoluteOffset) + m.SubMatch.End,
	}
}

// FileRequest holds every selected match for one file.
type FileRequest struct {
	Path    string
	Matches []Match
}

// 📋 Request is the accepted selection: one replacement for all matches,
// grouped by file in the order files were first seen.
type Request struct {
	Replacement string
	// Encoding overrides the codec used for every file; empty means detect.
	Encoding string
	Files    []FileRequest

	index map[string]int
}

// NewRequest returns an empty request for replacement.
func NewRequest(replacement string) *Request {
	return &Request{Replacement: replacement}
}

// Add records a match for path. Paths are cleaned so that two spellings of
// the same file land in the same group.
func (r *Request) Add(path string, m Match) {
	path = filepath.Clean(path)
	if r.index == nil {
		r.index = make(map[string]int)
		for i, f := range r.Files {
			r.index[f.Path] = i
		}
	}
	i, ok := r.index[path]
	if !ok {
		i = len(r.Files)
		r.index[path] = i
		r.Files = append(r.Files, FileRequest{Path: path})
	}
	r.Files[i].Matches = append(r.Files[i].Matches, m)
}

// File returns the group for path.
func (r *Request) File(path string) (FileRequest, bool) {
	path = filepath.Clean(path)
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileRequest{}, false
}

// Count is the total number of matches across all files.
func (r *Request) Count() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Matches)
	}
	return n
}
