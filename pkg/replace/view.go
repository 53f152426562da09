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
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/codec"
)

// view is the byte sequence ripgrep reported offsets against: the file
// without its byte order mark, transcoded to UTF-8 unless the file already
// is UTF-8. Splicing happens on the view and render turns it back into file
// bytes.
type view struct {
	codec codec.Codec
	bom   []byte
	text  []byte
}

func newView(content []byte, c codec.Codec, bomLen int) (*view, error) {
	v := &view{codec: c, bom: content[:bomLen]}
	body := content[bomLen:]
	if codec.IsUTF8(c) {
		v.text = body
		return v, nil
	}
	text, err := c.Decode(body)
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	v.text = []byte(text)
	return v, nil
}

// replacement returns the bytes spliced into the view for s.
func (v *view) replacement(s string) ([]byte, error) {
	if codec.IsUTF8(v.codec) {
		out, err := v.codec.Encode(s)
		if err != nil {
			return nil, &EncodeError{Codec: v.codec.Name(), Err: err}
		}
		return out, nil
	}
	if !utf8.ValidString(s) {
		return nil, &EncodeError{Codec: v.codec.Name(), Err: errors.Errorf("%w: invalid UTF-8 sequence", codec.ErrUnrepresentable)}
	}
	return []byte(s), nil
}

// render encodes a patched view back into file bytes, mark included.
func (v *view) render(patched []byte) ([]byte, error) {
	body := patched
	if !codec.IsUTF8(v.codec) {
		var err error
		body, err = v.codec.Encode(string(patched))
		if err != nil {
			return nil, &EncodeError{Codec: v.codec.Name(), Err: err}
		}
	}
	out := make([]byte, 0, len(v.bom)+len(body))
	out = append(out, v.bom...)
	return append(out, body...), nil
}
