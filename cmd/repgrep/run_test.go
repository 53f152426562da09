package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repgrep/pkg/session"
)

const fooStream = `{"type":"begin","data":{"path":{"text":"a.txt"}}}
{"type":"match","data":{"path":{"text":"a.txt"},"lines":{"text":"foo bar foo\n"},"line_number":1,"absolute_offset":0,"submatches":[{"match":{"text":"foo"},"start":0,"end":3},{"match":{"text":"foo"},"start":8,"end":11}]}}
{"type":"end","data":{"path":{"text":"a.txt"},"binary_offset":null,"stats":{"elapsed":{"secs":0,"nanos":1,"human":"0s"},"searches":1,"searches_with_match":1,"bytes_searched":12,"bytes_printed":1,"matched_lines":1,"matches":2}}}
`

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func pipeStdin(t *testing.T, content string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		_, _ = w.WriteString(content)
		w.Close()
	}()
	t.Cleanup(func() { r.Close() })
	return r
}

type harness struct {
	app    *app
	stdout bytes.Buffer
	stderr bytes.Buffer
	dir    string
}

func newHarness(t *testing.T, stdin string, review func(ctx context.Context, s *session.Session, title string) error) *harness {
	h := &harness{dir: t.TempDir()}
	h.app = &app{
		stdin:  pipeStdin(t, stdin),
		stdout: &h.stdout,
		stderr: &h.stderr,
		dir:    h.dir,
		review: review,
	}
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "a.txt"), []byte("foo bar foo\n"), 0o644))
	return h
}

func (h *harness) file(t *testing.T) string {
	b, err := os.ReadFile(filepath.Join(h.dir, "a.txt"))
	require.NoError(t, err)
	return string(b)
}

// acceptWith deselects the second submatch and replaces the rest.
func acceptWith(replacement string) func(ctx context.Context, s *session.Session, title string) error {
	return func(ctx context.Context, s *session.Session, title string) error {
		for _, ev := range []session.Event{session.EventNext, session.EventNextSub, session.EventToggle, session.EventConfirm} {
			if err := s.Handle(ev); err != nil {
				return err
			}
		}
		for _, r := range replacement {
			if err := s.InputRune(r); err != nil {
				return err
			}
		}
		return s.Handle(session.EventAccept)
	}
}

func TestRun_StdinAccept(t *testing.T) {
	var title string
	accept := acceptWith("baz")
	h := newHarness(t, fooStream, func(ctx context.Context, s *session.Session, got string) error {
		title = got
		return accept(ctx, s, got)
	})

	require.NoError(t, execute(testContext(t), h.app, nil))

	assert.Equal(t, "stdin", title)

	assert.Equal(t, "baz bar foo\n", h.file(t))
	assert.Contains(t, h.stdout.String(), "a.txt")
	assert.Contains(t, h.stdout.String(), "committed")
}

func TestRun_DryRun(t *testing.T) {
	h := newHarness(t, fooStream, acceptWith("baz"))

	require.NoError(t, execute(testContext(t), h.app, []string{"--dry-run"}))

	assert.Equal(t, "foo bar foo\n", h.file(t))
	assert.Contains(t, h.stdout.String(), "+baz bar foo")
}

func TestRun_Cancel(t *testing.T) {
	h := newHarness(t, fooStream, func(ctx context.Context, s *session.Session, title string) error {
		return s.Handle(session.EventQuit)
	})

	require.NoError(t, execute(testContext(t), h.app, nil))

	assert.Equal(t, "foo bar foo\n", h.file(t))
	assert.Contains(t, h.stderr.String(), "Cancelled")
	assert.Empty(t, h.stdout.String())
}

func TestRun_NoMatches(t *testing.T) {
	reviewed := false
	h := newHarness(t, "", func(ctx context.Context, s *session.Session, title string) error {
		reviewed = true
		return nil
	})

	require.NoError(t, execute(testContext(t), h.app, nil))
	assert.False(t, reviewed)
	assert.Contains(t, h.stderr.String(), "No replaceable matches found")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stdin  string
		argv   []string
		target error
		text   string
	}{
		{name: "no_pattern", argv: []string{"-w"}, target: ErrNoPattern},
		{name: "bad_stream", stdin: "{\"type\":\"begin\"}\n", text: "line 1"},
		{name: "bad_encoding", argv: []string{"-E", "klingon", "foo"}, text: "unknown encoding"},
		{name: "missing_config", argv: []string{"--config", "nope.yaml"}, target: os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.stdin, acceptWith("x"))
			err := execute(testContext(t), h.app, tt.argv)
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "got %v", err)
			}
			if tt.text != "" {
				assert.Contains(t, err.Error(), tt.text)
			}
			assert.Equal(t, "foo bar foo\n", h.file(t))
		})
	}
}

func TestRun_PatchFailure(t *testing.T) {
	h := newHarness(t, fooStream, acceptWith("baz"))
	require.NoError(t, os.Remove(filepath.Join(h.dir, "a.txt")))

	err := execute(testContext(t), h.app, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPatchFailed))
	assert.Contains(t, h.stdout.String(), "failed")
}

func TestRun_ConfigProtect(t *testing.T) {
	h := newHarness(t, fooStream, acceptWith("baz"))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".repgrep.yaml"), []byte("protect: ['*.txt']\n"), 0o644))

	require.NoError(t, execute(testContext(t), h.app, nil))
	assert.Equal(t, "foo bar foo\n", h.file(t))
	assert.Contains(t, h.stdout.String(), "skipped")
}

func TestRun_Ripgrep(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	var title string
	accept := acceptWith("baz")
	h := newHarness(t, "", func(ctx context.Context, s *session.Session, got string) error {
		title = got
		return accept(ctx, s, got)
	})

	fixture := filepath.Join(h.dir, "out.json")
	require.NoError(t, os.WriteFile(fixture, []byte(fooStream), 0o644))
	argsFile := filepath.Join(h.dir, "args.txt")
	script := filepath.Join(h.dir, "fake-rg")
	body := "#!/bin/sh\necho \"$*\" > '" + argsFile + "'\ncat '" + fixture + "'\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	require.NoError(t, execute(testContext(t), h.app, []string{"--rg", script, "-w", "foo", "a.txt"}))

	assert.Equal(t, "baz bar foo\n", h.file(t))
	got, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--json --word-regexp -- foo a.txt", strings.TrimSpace(string(got)))
	assert.Equal(t, "fake-rg --json --word-regexp -- foo a.txt", title)
}
