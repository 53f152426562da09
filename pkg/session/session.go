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

// Package session drives navigation and selection over a result list and
// turns the final selection into a replace.Request.
//
// A Session is single threaded: callers feed it one event at a time and read
// its state between events. Nothing here touches the filesystem, so leaving
// a session by cancelling can never modify a file.
package session

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/model"
	"github.com/walteh/repgrep/pkg/replace"
	"github.com/walteh/repgrep/pkg/rg"
)

var (
	// ErrNothingSelected is returned by EventConfirm when no submatch is
	// marked for replacement.
	ErrNothingSelected = errors.Base("nothing selected")
	// ErrFinished is returned for any event after the session finished.
	ErrFinished = errors.Base("session finished")
)

// 🚦 State is where the session is in its lifecycle.
type State int

const (
	StateBrowsing State = iota
	StateConfirming
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateConfirming:
		return "confirming"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Outcome is how a finished session ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAccepted
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// 🎮 Event is one user intent fed to Handle.
type Event int

const (
	EventNext Event = iota
	EventPrev
	EventNextSub
	EventPrevSub
	EventToggle
	EventToggleAll
	EventConfirm
	EventAccept
	EventBack
	EventCancel
	EventQuit
)

var eventNames = map[Event]string{
	EventNext:      "next",
	EventPrev:      "prev",
	EventNextSub:   "next-sub",
	EventPrevSub:   "prev-sub",
	EventToggle:    "toggle",
	EventToggleAll: "toggle-all",
	EventConfirm:   "confirm",
	EventAccept:    "accept",
	EventBack:      "back",
	EventCancel:    "cancel",
	EventQuit:      "quit",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

// Option configures a new Session.
type Option func(*Session)

// WithEncoding sets the encoding override carried into the request.
func WithEncoding(label string) Option {
	return func(s *Session) {
		s.encoding = label
	}
}

// WithReplacement pre-fills the replacement text.
func WithReplacement(text string) Option {
	return func(s *Session) {
		s.replacement = []rune(text)
	}
}

// 🧭 Session owns the items and every selection flag on them.
type Session struct {
	items       []*model.Item
	state       State
	outcome     Outcome
	cursor      int
	focus       int
	replacement []rune
	encoding    string
	request     *replace.Request
}

// New starts browsing on the first selectable item. With no selectable
// items the cursor is -1.
func New(items []*model.Item, opts ...Option) *Session {
	s := &Session{
		items:  items,
		state:  StateBrowsing,
		cursor: -1,
		focus:  model.NoFocus,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i, it := range items {
		if it.IsSelectable() {
			s.moveTo(i)
			break
		}
	}
	return s
}

// Items returns the result list in display order.
func (s *Session) Items() []*model.Item { return s.items }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Outcome is OutcomeNone until the session finishes.
func (s *Session) Outcome() Outcome { return s.outcome }

// Cursor is the index of the item under the cursor, or -1.
func (s *Session) Cursor() int { return s.cursor }

// Focus is the submatch index under the cursor, or model.NoFocus.
func (s *Session) Focus() int { return s.focus }

// Replacement is the text typed so far.
func (s *Session) Replacement() string { return string(s.replacement) }

// Encoding is the override label passed with WithEncoding.
func (s *Session) Encoding() string { return s.encoding }

// Request is the accepted request, or nil unless the outcome is accepted.
func (s *Session) Request() *replace.Request { return s.request }

// Current is the item under the cursor, or nil.
func (s *Session) Current() *model.Item {
	if s.cursor < 0 {
		return nil
	}
	return s.items[s.cursor]
}

// Selected counts submatches marked for replacement across all items.
func (s *Session) Selected() int {
	n := 0
	for _, it := range s.items {
		n += it.ReplaceCount()
	}
	return n
}

// Handle applies one event. Events that do not apply to the current state
// are ignored.
func (s *Session) Handle(ev Event) error {
	if s.state == StateFinished {
		return ErrFinished
	}

	if ev == EventQuit {
		s.finish(OutcomeCancelled)
		return nil
	}

	switch s.state {
	case StateBrowsing:
		return s.browse(ev)
	case StateConfirming:
		return s.confirm(ev)
	}
	return nil
}

func (s *Session) browse(ev Event) error {
	switch ev {
	case EventNext:
		s.step(1)
	case EventPrev:
		s.step(-1)
	case EventNextSub:
		s.stepSub(1)
	case EventPrevSub:
		s.stepSub(-1)
	case EventToggle:
		s.toggle()
	case EventToggleAll:
		s.toggleAll()
	case EventConfirm:
		if s.Selected() == 0 {
			return ErrNothingSelected
		}
		s.state = StateConfirming
	case EventCancel:
		s.finish(OutcomeCancelled)
	}
	return nil
}

func (s *Session) confirm(ev Event) error {
	switch ev {
	case EventAccept:
		req, err := s.buildRequest()
		if err != nil {
			return err
		}
		s.request = req
		s.finish(OutcomeAccepted)
	case EventBack, EventCancel:
		s.state = StateBrowsing
	}
	return nil
}

// InputRune appends to the replacement while confirming.
func (s *Session) InputRune(r rune) error {
	if s.state == StateFinished {
		return ErrFinished
	}
	if s.state == StateConfirming {
		s.replacement = append(s.replacement, r)
	}
	return nil
}

// Backspace removes the last rune of the replacement while confirming.
func (s *Session) Backspace() error {
	if s.state == StateFinished {
		return ErrFinished
	}
	if s.state == StateConfirming && len(s.replacement) > 0 {
		s.replacement = s.replacement[:len(s.replacement)-1]
	}
	return nil
}

func (s *Session) finish(o Outcome) {
	s.state = StateFinished
	s.outcome = o
}

func (s *Session) moveTo(i int) {
	s.cursor = i
	s.focus = model.NoFocus
	if s.items[i].Len() > 0 {
		s.focus = 0
	}
}

func (s *Session) step(dir int) {
	if s.cursor < 0 {
		return
	}
	for i := s.cursor + dir; i >= 0 && i < len(s.items); i += dir {
		if s.items[i].IsSelectable() {
			s.moveTo(i)
			return
		}
	}
}

func (s *Session) stepSub(dir int) {
	it := s.Current()
	if it == nil || s.focus == model.NoFocus {
		return
	}
	next := s.focus + dir
	if next >= 0 && next < it.Len() {
		s.focus = next
	}
}

// fileMatches returns the Match items belonging to the Begin item at i.
func (s *Session) fileMatches(i int) []*model.Item {
	var out []*model.Item
	for _, it := range s.items[i+1:] {
		if it.Kind == rg.KindBegin || it.Kind == rg.KindEnd {
			break
		}
		if it.Kind == rg.KindMatch {
			out = append(out, it)
		}
	}
	return out
}

func (s *Session) toggle() {
	it := s.Current()
	if it == nil {
		return
	}
	if it.Kind == rg.KindBegin {
		s.toggleFile()
		return
	}
	if s.focus != model.NoFocus {
		it.Toggle(s.focus)
	}
}

func (s *Session) toggleAll() {
	it := s.Current()
	if it == nil {
		return
	}
	if it.Kind == rg.KindBegin {
		s.toggleFile()
		return
	}
	it.ToggleAll(!it.AllSelected())
}

// toggleFile selects every match of the file, or clears them all when they
// are already all selected.
func (s *Session) toggleFile() {
	matches := s.fileMatches(s.cursor)
	all := true
	for _, m := range matches {
		if !m.AllSelected() {
			all = false
			break
		}
	}
	for _, m := range matches {
		m.ToggleAll(!all)
	}
}

func (s *Session) buildRequest() (*replace.Request, error) {
	req := replace.NewRequest(string(s.replacement))
	req.Encoding = s.encoding

	for _, it := range s.items {
		m, ok := it.Message().(rg.Match)
		if !ok || it.ReplaceCount() == 0 {
			continue
		}
		path, err := m.Path.Path()
		if err != nil {
			return nil, errors.Errorf("building request: %w", err)
		}
		for _, sub := range it.SubItems() {
			if !sub.ShouldReplace {
				continue
			}
			req.Add(path, replace.Match{AbsoluteOffset: m.AbsoluteOffset, SubMatch: sub.SubMatch})
		}
	}
	return req, nil
}
