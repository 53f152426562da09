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
	"fmt"
	"io/fs"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// AccessError is returned when a file cannot be read or written.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// NotExist reports whether the file was missing.
func (e *AccessError) NotExist() bool { return errors.Is(e.Err, fs.ErrNotExist) }

// EncodeError is returned when the replacement cannot be encoded for a file.
type EncodeError struct {
	Codec string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode replacement as %s: %v", e.Codec, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned when a file's content cannot be transcoded to the
// text ripgrep searched and back without loss.
type DecodeError struct {
	Codec string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode file as %s: %v", e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// OverlapError is returned when two selected spans in one file intersect.
type OverlapError struct {
	First  Span
	Second Span
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping matches at [%d,%d) and [%d,%d)",
		e.First.Start, e.First.End, e.Second.Start, e.Second.End)
}

// RangeError is returned when a span reaches past the end of the file,
// usually because the file changed after it was searched.
type RangeError struct {
	Span Span
	Size int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("match [%d,%d) is outside file of %d bytes", e.Span.Start, e.Span.End, e.Size)
}

// ProtectedError marks a file skipped because it matched a protect glob.
type ProtectedError struct {
	Pattern string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("protected by %s", strings.TrimSpace(e.Pattern))
}
