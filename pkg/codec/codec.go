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

// Package codec resolves encoding labels and detects a file's encoding from
// its byte order mark. Codecs other than UTF-8 decode a whole file into the
// UTF-8 text ripgrep searched and encode it back.
package codec

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrUnrepresentable is returned when text has no encoding in a codec.
	ErrUnrepresentable = errors.Base("text not representable in encoding")
	// ErrUnknown is returned for labels that name no known encoding.
	ErrUnknown = errors.Base("unknown encoding")
	// ErrIrreversible is returned when content does not survive a decode
	// and re-encode unchanged.
	ErrIrreversible = errors.Base("content does not round-trip through encoding")
)

// 🔤 Codec converts between UTF-8 text and a file's bytes.
type Codec interface {
	Name() string
	Encode(s string) ([]byte, error)
	Decode(b []byte) (string, error)
}

// UTF8 is the codec used when nothing else is known.
var UTF8 Codec = utf8Codec{}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.Errorf("%w: utf-8: invalid UTF-8 sequence", ErrUnrepresentable)
	}
	return []byte(s), nil
}

func (utf8Codec) Decode(b []byte) (string, error) { return string(b), nil }

type textCodec struct {
	name string
	enc  encoding.Encoding
}

func (c textCodec) Name() string { return c.name }

func (c textCodec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.Errorf("%w: %s: invalid UTF-8 sequence", ErrUnrepresentable, c.name)
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrUnrepresentable, c.name, err)
	}
	return out, nil
}

// Decode transcodes b to UTF-8 and fails unless encoding the result gives
// back exactly b.
func (c textCodec) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Errorf("%w: %s: %s", ErrIrreversible, c.name, err)
	}
	back, err := c.enc.NewEncoder().Bytes(out)
	if err != nil || !bytes.Equal(back, b) {
		return "", errors.Errorf("%w: %s", ErrIrreversible, c.name)
	}
	return string(out), nil
}

var (
	utf16LE = textCodec{name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}
	utf16BE = textCodec{name: "utf-16be", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
)

// IsAuto reports whether label asks for no override. ripgrep accepts
// "auto" and "none" for its --encoding flag.
func IsAuto(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "auto", "none":
		return true
	}
	return false
}

// 🔍 Lookup resolves a WHATWG encoding label such as "latin1" or "sjis".
func Lookup(label string) (Codec, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, errors.Errorf("%w: %q", ErrUnknown, label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, errors.Errorf("%w: %q", ErrUnknown, label)
	}
	if name == "utf-8" {
		return UTF8, nil
	}
	return textCodec{name: name, enc: enc}, nil
}

// IsUTF8 reports whether c is the UTF-8 codec.
func IsUTF8(c Codec) bool {
	_, ok := c.(utf8Codec)
	return ok
}

// Detect picks a codec from the byte order mark and returns the mark's
// length. Without a mark it returns UTF-8 and 0. ripgrep strips the mark
// before searching, so match offsets start after it.
func Detect(content []byte) (Codec, int) {
	switch {
	case bytes.HasPrefix(content, []byte{0xef, 0xbb, 0xbf}):
		return UTF8, 3
	case bytes.HasPrefix(content, []byte{0xff, 0xfe}):
		return utf16LE, 2
	case bytes.HasPrefix(content, []byte{0xfe, 0xff}):
		return utf16BE, 2
	default:
		return UTF8, 0
	}
}

// Registry exposes Lookup and Detect as a value, for callers that accept
// the codec capability as an interface.
type Registry struct{}

func (Registry) Lookup(label string) (Codec, error) { return Lookup(label) }
func (Registry) Detect(content []byte) (Codec, int) { return Detect(content) }
