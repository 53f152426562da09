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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"runtime"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDecode is returned when a base64 payload is malformed.
	ErrDecode = errors.Base("invalid base64 payload")
	// ErrInvalidPath is returned when payload bytes cannot name a file on this platform.
	ErrInvalidPath = errors.Base("invalid path")
)

type dataKind uint8

const (
	dataText dataKind = iota
	dataBytes
)

// 📦 Data is a value ripgrep sends either as verified text or as an opaque,
// base64 encoded byte blob. The raw bytes are always recoverable with Bytes.
// LossyText exists for display only and must never be written back to a file.
type Data struct {
	kind dataKind
	raw  []byte
}

// FromText builds Data from text ripgrep already verified as UTF-8.
func FromText(s string) Data {
	return Data{kind: dataText, raw: []byte(s)}
}

// FromBase64 builds Data from a base64 blob. The decoded bytes need not be text.
func FromBase64(s string) (Data, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Data{}, errors.Errorf("%w: %s", ErrDecode, err)
	}
	return Data{kind: dataBytes, raw: raw}, nil
}

// FromBytes builds opaque Data from raw bytes.
func FromBytes(b []byte) Data {
	return Data{kind: dataBytes, raw: bytes.Clone(b)}
}

// IsText reports whether the value arrived as text.
func (d Data) IsText() bool {
	return d.kind == dataText
}

// Len returns the number of raw bytes.
func (d Data) Len() int {
	return len(d.raw)
}

// Bytes returns a copy of the exact raw bytes.
func (d Data) Bytes() []byte {
	return bytes.Clone(d.raw)
}

// LossyText returns a display string with invalid sequences replaced by U+FFFD.
func (d Data) LossyText() string {
	return Lossy(d.raw)
}

// Path returns the raw bytes as a platform path.
func (d Data) Path() (string, error) {
	if len(d.raw) == 0 {
		return "", errors.Errorf("%w: empty", ErrInvalidPath)
	}
	if bytes.IndexByte(d.raw, 0) >= 0 {
		return "", errors.Errorf("%w: contains NUL byte", ErrInvalidPath)
	}
	if runtime.GOOS == "windows" && !utf8.Valid(d.raw) {
		return "", errors.Errorf("%w: not valid UTF-8", ErrInvalidPath)
	}
	return string(d.raw), nil
}

// Equal compares raw bytes.
func (d Data) Equal(other Data) bool {
	return bytes.Equal(d.raw, other.raw)
}

// Compare orders by raw bytes.
func (d Data) Compare(other Data) int {
	return bytes.Compare(d.raw, other.raw)
}

type dataJSON struct {
	Text   *string `json:"text,omitempty"`
	Base64 *string `json:"base64,omitempty"`
}

// UnmarshalJSON decodes {"text": ...} or {"base64": ...}; exactly one key is allowed.
func (d *Data) UnmarshalJSON(b []byte) error {
	var wire dataJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return errors.Errorf("decoding arbitrary data: %w", err)
	}

	switch {
	case wire.Text != nil && wire.Base64 != nil:
		return errors.New("arbitrary data has both text and base64")
	case wire.Text != nil:
		*d = FromText(*wire.Text)
	case wire.Base64 != nil:
		v, err := FromBase64(*wire.Base64)
		if err != nil {
			return err
		}
		*d = v
	default:
		return errors.New("arbitrary data has neither text nor base64")
	}
	return nil
}

// MarshalJSON writes text when the bytes are valid UTF-8 and base64 otherwise.
func (d Data) MarshalJSON() ([]byte, error) {
	if d.kind == dataText && utf8.Valid(d.raw) {
		s := string(d.raw)
		return json.Marshal(dataJSON{Text: &s})
	}
	s := base64.StdEncoding.EncodeToString(d.raw)
	return json.Marshal(dataJSON{Base64: &s})
}

// Lossy converts bytes to a display string, replacing invalid UTF-8 with U+FFFD.
func Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
