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

package main

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"
)

// ErrNoPattern is returned when ripgrep flags are given without a pattern.
var ErrNoPattern = errors.Base("no pattern given")

// maxUnrestricted is the highest -u level passed on. -uuu also searches
// binary files, whose matches cannot be reviewed as text.
const maxUnrestricted = 2

// ripgrepAnnotation marks flags that are passed through to ripgrep.
const ripgrepAnnotation = "ripgrep"

// Args holds the command line. Fields above the local block are forwarded
// to ripgrep.
type Args struct {
	Regexps                   []string
	AfterContext              int
	BeforeContext             int
	Context                   int
	CRLF                      bool
	Encoding                  string
	Follow                    bool
	IgnoreCase                bool
	InvertMatch               bool
	Passthru                  bool
	SmartCase                 bool
	CaseSensitive             bool
	Sort                      string
	SortR                     string
	Threads                   int
	Trim                      bool
	Types                     []string
	TypesNot                  []string
	Unrestricted              int
	WordRegexp                bool
	Globs                     []string
	IGlobs                    []string
	Hidden                    bool
	IgnoreFiles               []string
	IgnoreFileCaseInsensitive bool
	OneFileSystem             bool

	Pattern string
	Paths   []string
	// Stdin is set when there is nothing to search and a JSON stream is
	// expected on stdin instead.
	Stdin bool

	ConfigFile string
	Debug      bool
	DryRun     bool
	Ripgrep    string
}

// addFlags registers every flag on fs. Forwarded flags carry the ripgrep
// annotation so Resolve can tell them apart from local ones.
func (a *Args) addFlags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&a.Regexps, "regexp", "e", nil, "a pattern to search for, may be repeated")
	fs.IntVarP(&a.AfterContext, "after-context", "A", 0, "show NUM lines after each match")
	fs.IntVarP(&a.BeforeContext, "before-context", "B", 0, "show NUM lines before each match")
	fs.IntVarP(&a.Context, "context", "C", 0, "show NUM lines before and after each match")
	fs.BoolVar(&a.CRLF, "crlf", false, "treat CRLF as a line terminator")
	fs.StringVarP(&a.Encoding, "encoding", "E", "", "text encoding for searching and for writing replacements")
	fs.BoolVarP(&a.Follow, "follow", "L", false, "follow symbolic links")
	fs.BoolVarP(&a.IgnoreCase, "ignore-case", "i", false, "search case insensitively")
	fs.BoolVarP(&a.InvertMatch, "invert-match", "v", false, "invert matching")
	fs.BoolVar(&a.Passthru, "passthru", false, "print both matching and non-matching lines")
	fs.BoolVarP(&a.SmartCase, "smart-case", "S", false, "search case insensitively if the pattern is all lowercase")
	fs.BoolVarP(&a.CaseSensitive, "case-sensitive", "s", false, "search case sensitively")
	fs.StringVar(&a.Sort, "sort", "", "sort results in ascending order")
	fs.StringVar(&a.SortR, "sortr", "", "sort results in descending order")
	fs.IntVarP(&a.Threads, "threads", "j", 0, "number of ripgrep threads")
	fs.BoolVar(&a.Trim, "trim", false, "trim leading whitespace from matches")
	fs.StringArrayVarP(&a.Types, "type", "t", nil, "only search files matching TYPE")
	fs.StringArrayVarP(&a.TypesNot, "type-not", "T", nil, "do not search files matching TYPE")
	fs.CountVarP(&a.Unrestricted, "unrestricted", "u", "reduce the level of smart searching, at most -uu")
	fs.BoolVarP(&a.WordRegexp, "word-regexp", "w", false, "only show matches surrounded by word boundaries")
	fs.StringArrayVarP(&a.Globs, "glob", "g", nil, "include or exclude files matching GLOB")
	fs.StringArrayVar(&a.IGlobs, "iglob", nil, "include or exclude files matching GLOB, case insensitively")
	fs.BoolVar(&a.Hidden, "hidden", false, "search hidden files and directories")
	fs.StringArrayVar(&a.IgnoreFiles, "ignore-file", nil, "additional ignore file")
	fs.BoolVar(&a.IgnoreFileCaseInsensitive, "ignore-file-case-insensitive", false, "process ignore files case insensitively")
	fs.BoolVar(&a.OneFileSystem, "one-file-system", false, "do not descend into other file systems")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = fs.SetAnnotation(f.Name, ripgrepAnnotation, []string{"true"})
	})

	fs.StringVar(&a.ConfigFile, "config", "", "config file path (default: .repgrep.{yaml,yml,json,hcl} if present)")
	fs.BoolVarP(&a.Debug, "debug", "d", false, "enable debug logging")
	fs.BoolVar(&a.DryRun, "dry-run", false, "show the changes without writing them")
	fs.StringVar(&a.Ripgrep, "rg", "", "path to the ripgrep binary")
}

// Resolve assigns the positional arguments. With -e patterns every
// positional is a path; otherwise the first one is the pattern. No pattern
// and no ripgrep flags selects stdin mode.
func (a *Args) Resolve(fs *pflag.FlagSet, positional []string) error {
	forwarded := false
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := f.Annotations[ripgrepAnnotation]; ok {
			forwarded = true
		}
	})

	switch {
	case len(a.Regexps) > 0:
		a.Paths = positional
	case len(positional) > 0:
		a.Pattern = positional[0]
		a.Paths = positional[1:]
	case forwarded:
		return ErrNoPattern
	default:
		a.Stdin = true
	}
	return nil
}

// ClampUnrestricted lowers -u to the supported maximum and reports whether
// it had to.
func (a *Args) ClampUnrestricted() bool {
	if a.Unrestricted > maxUnrestricted {
		a.Unrestricted = maxUnrestricted
		return true
	}
	return false
}

// RipgrepArgs builds the ripgrep argument list, without --json.
func (a *Args) RipgrepArgs() []string {
	var out []string
	num := func(flag string, v int) {
		if v > 0 {
			out = append(out, flag, strconv.Itoa(v))
		}
	}
	str := func(flag string, v string) {
		if v != "" {
			out = append(out, flag, v)
		}
	}
	on := func(flag string, v bool) {
		if v {
			out = append(out, flag)
		}
	}
	list := func(flag string, vs []string) {
		for _, v := range vs {
			out = append(out, flag, v)
		}
	}

	num("--after-context", a.AfterContext)
	num("--before-context", a.BeforeContext)
	num("--context", a.Context)
	on("--crlf", a.CRLF)
	str("--encoding", a.Encoding)
	on("--follow", a.Follow)
	on("--ignore-case", a.IgnoreCase)
	on("--invert-match", a.InvertMatch)
	on("--passthru", a.Passthru)
	on("--smart-case", a.SmartCase)
	on("--case-sensitive", a.CaseSensitive)
	str("--sort", a.Sort)
	str("--sortr", a.SortR)
	num("--threads", a.Threads)
	on("--trim", a.Trim)
	list("--type", a.Types)
	list("--type-not", a.TypesNot)
	if a.Unrestricted > 0 {
		out = append(out, "-"+strings.Repeat("u", a.Unrestricted))
	}
	on("--word-regexp", a.WordRegexp)
	list("--glob", a.Globs)
	list("--iglob", a.IGlobs)
	on("--hidden", a.Hidden)
	list("--ignore-file", a.IgnoreFiles)
	on("--ignore-file-case-insensitive", a.IgnoreFileCaseInsensitive)
	on("--one-file-system", a.OneFileSystem)
	list("--regexp", a.Regexps)

	out = append(out, "--")
	if len(a.Regexps) == 0 {
		out = append(out, a.Pattern)
	}
	return append(out, a.Paths...)
}
