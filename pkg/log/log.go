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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/repgrep/pkg/replace"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	nameWidth     = 35 // Base width for filename
	statusWidth   = 10 // Width for status text
	previewIndent = 6  // spaces to indent dry-run diff lines
)

// 🎯 Logger prints patch results to the console and mirrors them to zerolog.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// 📝 formatFileResult formats one file outcome for display
func (l *Logger) formatFileResult(res replace.FileResult) string {
	var symbol rune
	var symbolColor color.Attribute
	var detail string
	switch res.Status {
	case replace.StatusCommitted:
		symbol = '✓'
		symbolColor = color.FgGreen
		detail = plural(res.Replacements, "replacement")
	case replace.StatusPreviewed:
		symbol = '⟳'
		symbolColor = color.FgBlue
		detail = plural(res.Replacements, "replacement")
	case replace.StatusSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
		if res.Err != nil {
			detail = res.Err.Error()
		}
	default:
		symbol = '✗'
		symbolColor = color.FgRed
		if res.Err != nil {
			detail = color.New(color.FgRed).Sprint(res.Err.Error())
		}
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, res.Path),
		fmt.Sprintf("%-*s", statusWidth, res.Status),
		detail), " ")
}

func (l *Logger) formatPreview(preview string) string {
	var sb strings.Builder
	indent := strings.Repeat(" ", previewIndent)
	for _, line := range strings.SplitAfter(preview, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "+++"):
			text = color.New(color.Faint).Sprint(text)
		case strings.HasPrefix(text, "-"):
			text = color.New(color.FgRed).Sprint(text)
		case strings.HasPrefix(text, "+"):
			text = color.New(color.FgGreen).Sprint(text)
		}
		sb.WriteString(indent + text + "\n")
	}
	return sb.String()
}

// 📝 LogFileResult logs the outcome for one file
func (l *Logger) LogFileResult(ctx context.Context, res replace.FileResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileResult(res))
	if res.Preview != "" {
		fmt.Fprint(l.console, l.formatPreview(res.Preview))
	}

	ev := l.zlog.Info()
	if res.Status == replace.StatusFailed {
		ev = l.zlog.Error().Err(res.Err)
	}
	ev.Str("file", res.Path).
		Str("status", res.Status.String()).
		Int("replacements", res.Replacements).
		Msg("file result")
}

// 📊 LogReport logs every file result followed by a summary line.
func (l *Logger) LogReport(ctx context.Context, report *replace.Report) {
	for _, res := range report.Results {
		l.LogFileResult(ctx, res)
	}
	l.LogNewline()

	committed := len(report.Committed())
	failed := len(report.Failed())

	switch {
	case report.DryRun:
		l.Infof("dry run: %s in %s, nothing written",
			plural(report.Replacements(), "replacement"), plural(len(report.Results)-failed, "file"))
	case committed > 0:
		l.Successf("replaced %s in %s", plural(report.Replacements(), "occurrence"), plural(committed, "file"))
	}
	if skipped := len(report.Skipped()); skipped > 0 {
		l.Warningf("skipped %s matching protect patterns", plural(skipped, "file"))
	}
	if failed > 0 {
		l.Errorf("%s could not be patched", plural(failed, "file"))
	}
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("repgrep")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
