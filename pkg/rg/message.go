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
	"time"
)

// 🏷️ Kind tags the variant of a Message.
type Kind int

const (
	KindBegin Kind = iota
	KindMatch
	KindContext
	KindEnd
	KindSummary
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindMatch:
		return "match"
	case KindContext:
		return "context"
	case KindEnd:
		return "end"
	case KindSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// 📨 Message is one record of ripgrep's JSON output. The set of
// implementations is closed: Begin, Match, Context, End and Summary.
type Message interface {
	Kind() Kind
	isMessage()
}

// Begin marks the start of results for one file.
type Begin struct {
	Path Data
}

// Match is a line (or lines) containing at least one submatch.
type Match struct {
	Path           Data
	Lines          Data
	LineNumber     *uint64
	AbsoluteOffset uint64 // file offset of the first byte of Lines
	SubMatches     []SubMatch
}

// Context is a non-matching line printed around a match.
type Context struct {
	Path           Data
	Lines          Data
	LineNumber     *uint64
	AbsoluteOffset uint64
}

// End marks the end of results for one file.
type End struct {
	Path         Data
	BinaryOffset *uint64
	Stats        Stats
}

// Summary closes a ripgrep run.
type Summary struct {
	ElapsedTotal Duration
	Stats        Stats
}

func (Begin) Kind() Kind   { return KindBegin }
func (Match) Kind() Kind   { return KindMatch }
func (Context) Kind() Kind { return KindContext }
func (End) Kind() Kind     { return KindEnd }
func (Summary) Kind() Kind { return KindSummary }

func (Begin) isMessage()   {}
func (Match) isMessage()   {}
func (Context) isMessage() {}
func (End) isMessage()     {}
func (Summary) isMessage() {}

// 🎯 SubMatch is one matched span. Start and End index the bytes of the
// owning line (Match.Lines), not the file.
type SubMatch struct {
	Text  Data
	Start int
	End   int
}

// NewSubMatch builds a text submatch for the range [start, end).
func NewSubMatch(text string, start, end int) SubMatch {
	return SubMatch{Text: FromText(text), Start: start, End: end}
}

// Len returns the length of the matched range in bytes.
func (s SubMatch) Len() int {
	return s.End - s.Start
}

// ⏱️ Duration is ripgrep's elapsed time object.
type Duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
	Human string `json:"human"`
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

// 📊 Stats is ripgrep's per-file or per-run statistics object.
type Stats struct {
	Elapsed           Duration `json:"elapsed"`
	Searches          uint64   `json:"searches"`
	SearchesWithMatch uint64   `json:"searches_with_match"`
	BytesSearched     uint64   `json:"bytes_searched"`
	BytesPrinted      uint64   `json:"bytes_printed"`
	MatchedLines      uint64   `json:"matched_lines"`
	Matches           uint64   `json:"matches"`
}
