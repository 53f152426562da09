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

// Package replace commits accepted selections to disk. Each file is read,
// turned into the same view ripgrep searched (byte order mark stripped,
// transcoded to UTF-8 when the file is not UTF-8), every selected span of
// that view is swapped for the replacement, and the re-encoded result is
// renamed into place. Files fail independently.
package replace

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/repgrep/pkg/codec"
)

// Codecs resolves the codec for a file.
type Codecs interface {
	Lookup(label string) (codec.Codec, error)
	Detect(content []byte) (codec.Codec, int)
}

// Resolver is implemented by stores that can tell when two paths name the
// same file.
type Resolver interface {
	Resolve(path string) string
}

// ⚙️ Options configures a Patcher. Zero values pick the defaults.
type Options struct {
	Store  FileStore
	Codecs Codecs
	// Concurrency bounds how many files are patched at once. Zero means
	// one per CPU.
	Concurrency int
	// Protect lists doublestar globs for paths that are never written.
	Protect []string
	DryRun  bool
}

// 🔧 Patcher applies a Request.
type Patcher struct {
	store       FileStore
	codecs      Codecs
	concurrency int
	protect     []string
	dryRun      bool
}

// NewPatcher builds a Patcher on the local filesystem unless opts names a
// store.
func NewPatcher(opts Options) *Patcher {
	p := &Patcher{
		store:       opts.Store,
		codecs:      opts.Codecs,
		concurrency: opts.Concurrency,
		protect:     opts.Protect,
		dryRun:      opts.DryRun,
	}
	if p.store == nil {
		p.store = NewOSFileStore("")
	}
	if p.codecs == nil {
		p.codecs = codec.Registry{}
	}
	if p.concurrency <= 0 {
		p.concurrency = runtime.NumCPU()
	}
	return p
}

// Apply patches every file of req and reports each outcome. It never stops
// early: a failing file is recorded and the rest still run.
func (p *Patcher) Apply(ctx context.Context, req *Request) *Report {
	logger := zerolog.Ctx(ctx)

	var override codec.Codec
	var overrideErr error
	if !codec.IsAuto(req.Encoding) {
		override, overrideErr = p.codecs.Lookup(req.Encoding)
	}

	files := p.merge(ctx, req.Files)

	logger.Debug().
		Int("files", len(files)).
		Int("matches", req.Count()).
		Bool("dry_run", p.dryRun).
		Msg("applying replacements")

	results := make([]FileResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, file := range files {
		g.Go(func() error {
			res := FileResult{Path: file.Path, Replacements: len(file.Matches)}
			if overrideErr != nil {
				res.Status = StatusFailed
				res.Err = &EncodeError{Codec: req.Encoding, Err: overrideErr}
			} else {
				p.patchFile(ctx, &res, file, req.Replacement, override)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Results: results, DryRun: p.dryRun}
}

func (p *Patcher) patchFile(ctx context.Context, res *FileResult, file FileRequest, replacement string, override codec.Codec) {
	logger := zerolog.Ctx(ctx).With().Str("path", file.Path).Logger()

	fail := func(err error) {
		res.Status = StatusFailed
		res.Err = err
		logger.Debug().Err(err).Msg("file not patched")
	}

	if err := ctx.Err(); err != nil {
		fail(errors.Errorf("patching cancelled: %w", err))
		return
	}

	if pattern, ok := p.protected(file.Path); ok {
		res.Status = StatusSkipped
		res.Err = &ProtectedError{Pattern: pattern}
		logger.Debug().Str("pattern", pattern).Msg("skipping protected file")
		return
	}

	original, err := p.store.ReadFile(ctx, file.Path)
	if err != nil {
		fail(&AccessError{Op: "read", Path: file.Path, Err: err})
		return
	}

	// A byte order mark wins over the override, as it does for ripgrep.
	c, bomLen := p.codecs.Detect(original)
	if bomLen == 0 && override != nil {
		c = override
	}

	v, err := newView(original, c, bomLen)
	if err != nil {
		fail(err)
		return
	}

	encoded, err := v.replacement(replacement)
	if err != nil {
		fail(err)
		return
	}

	spans, err := Plan(file.Matches)
	if err != nil {
		fail(err)
		return
	}

	spliced, err := Splice(v.text, spans, encoded)
	if err != nil {
		fail(err)
		return
	}

	patched, err := v.render(spliced)
	if err != nil {
		fail(err)
		return
	}

	if p.dryRun {
		res.Status = StatusPreviewed
		res.Preview = Preview(file.Path, v.text, spliced)
		return
	}

	if err := p.store.WriteFileAtomic(ctx, file.Path, patched); err != nil {
		fail(&AccessError{Op: "write", Path: file.Path, Err: err})
		return
	}

	res.Status = StatusCommitted
	logger.Debug().Int("replacements", len(spans)).Str("codec", c.Name()).Msg("file patched")
}

// merge folds groups whose paths resolve to the same file into the group
// seen first, so that no file is patched twice. A span already present in
// the surviving group is the same occurrence reported under another name and
// is dropped.
func (p *Patcher) merge(ctx context.Context, files []FileRequest) []FileRequest {
	r, ok := p.store.(Resolver)
	if !ok {
		return files
	}

	merged := make([]FileRequest, 0, len(files))
	index := make(map[string]int, len(files))
	for _, f := range files {
		key := r.Resolve(f.Path)
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, FileRequest{Path: f.Path, Matches: slices.Clone(f.Matches)})
			continue
		}

		zerolog.Ctx(ctx).Debug().Str("path", f.Path).Str("same_as", merged[i].Path).Msg("merging file spellings")
		have := make(map[Span]bool, len(merged[i].Matches))
		for _, m := range merged[i].Matches {
			have[m.Span()] = true
		}
		for _, m := range f.Matches {
			if !have[m.Span()] {
				merged[i].Matches = append(merged[i].Matches, m)
			}
		}
	}
	return merged
}

func (p *Patcher) protected(path string) (string, bool) {
	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range p.protect {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return pattern, true
		}
	}
	return "", false
}
