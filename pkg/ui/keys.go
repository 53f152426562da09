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
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/session"
)

// ⌨️ KeyKind classifies a decoded key press.
type KeyKind int

const (
	KeyUnknown KeyKind = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyCtrlC
)

// Key is one decoded keypress.
type Key struct {
	Kind KeyKind
	Rune rune
}

// ParseKeys decodes raw terminal input. A lone ESC at the end of the buffer
// is the escape key; ESC [ A..D are the arrow keys.
func ParseKeys(b []byte) []Key {
	var keys []Key
	for len(b) > 0 {
		switch c := b[0]; {
		case c == 0x1b:
			if len(b) >= 3 && (b[1] == '[' || b[1] == 'O') {
				keys = append(keys, Key{Kind: arrow(b[2])})
				b = b[3:]
				continue
			}
			keys = append(keys, Key{Kind: KeyEsc})
			b = b[1:]
		case c == '\r' || c == '\n':
			keys = append(keys, Key{Kind: KeyEnter})
			b = b[1:]
		case c == 0x7f || c == 0x08:
			keys = append(keys, Key{Kind: KeyBackspace})
			b = b[1:]
		case c == 0x03:
			keys = append(keys, Key{Kind: KeyCtrlC})
			b = b[1:]
		default:
			r, size := utf8.DecodeRune(b)
			if r == utf8.RuneError || unicode.IsControl(r) {
				keys = append(keys, Key{Kind: KeyUnknown})
			} else {
				keys = append(keys, Key{Kind: KeyRune, Rune: r})
			}
			b = b[size:]
		}
	}
	return keys
}

func arrow(c byte) KeyKind {
	switch c {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	default:
		return KeyUnknown
	}
}

var browseRunes = map[rune]session.Event{
	'j': session.EventNext,
	'k': session.EventPrev,
	'l': session.EventNextSub,
	'h': session.EventPrevSub,
	' ': session.EventToggle,
	'a': session.EventToggleAll,
	'q': session.EventQuit,
}

var browseKeys = map[KeyKind]session.Event{
	KeyDown:  session.EventNext,
	KeyUp:    session.EventPrev,
	KeyRight: session.EventNextSub,
	KeyLeft:  session.EventPrevSub,
	KeyEnter: session.EventConfirm,
	KeyEsc:   session.EventCancel,
	KeyCtrlC: session.EventQuit,
}

// ⌨️ Dispatch feeds one key to the session. While browsing keys map to
// navigation events; while confirming they edit the replacement text.
// Unbound keys are ignored.
func Dispatch(s *session.Session, k Key) error {
	switch s.State() {
	case session.StateBrowsing:
		if k.Kind == KeyRune {
			if ev, ok := browseRunes[k.Rune]; ok {
				return s.Handle(ev)
			}
			return nil
		}
		if ev, ok := browseKeys[k.Kind]; ok {
			return s.Handle(ev)
		}
	case session.StateConfirming:
		switch k.Kind {
		case KeyRune:
			return s.InputRune(k.Rune)
		case KeyBackspace:
			return s.Backspace()
		case KeyEnter:
			return s.Handle(session.EventAccept)
		case KeyEsc:
			return s.Handle(session.EventBack)
		case KeyCtrlC:
			return s.Handle(session.EventQuit)
		}
	case session.StateFinished:
		return errors.Errorf("dispatching key: %w", session.ErrFinished)
	}
	return nil
}
