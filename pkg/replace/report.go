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

	"gitlab.com/tozd/go/errors"
)

// FileStatus is the outcome for one file of a batch.
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusCommitted            // Replacements written to disk
	StatusPreviewed            // Dry run, nothing written
	StatusSkipped              // Matched a protect glob
	StatusFailed               // File left untouched because of an error
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusPreviewed:
		return "previewed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult reports what happened to one file.
type FileResult struct {
	Path         string
	Status       FileStatus
	Replacements int
	Err          error
	// Preview holds a line diff of the change in dry-run mode.
	Preview string
}

// 📊 Report collects one FileResult per file, in request order.
type Report struct {
	Results []FileResult
	DryRun  bool
}

func (r *Report) filter(status FileStatus) []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}

// Committed, Failed and Skipped filter the results by status.
func (r *Report) Committed() []FileResult { return r.filter(StatusCommitted) }
func (r *Report) Failed() []FileResult    { return r.filter(StatusFailed) }
func (r *Report) Skipped() []FileResult   { return r.filter(StatusSkipped) }

// Replacements counts replacements in committed or previewed files.
func (r *Report) Replacements() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusCommitted || res.Status == StatusPreviewed {
			n += res.Replacements
		}
	}
	return n
}

// Err joins the errors of every failed file, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, errors.Errorf("%s: %w", res.Path, res.Err))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	return fmt.Sprintf("%d replacements, %d committed, %d failed, %d skipped",
		r.Replacements(), len(r.Committed()), len(r.Failed()), len(r.Skipped()))
}
