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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// FileStore reads whole files and replaces them atomically.
type FileStore interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
}

// OSFileStore is a FileStore on the local filesystem. Relative paths are
// resolved against baseDir.
type OSFileStore struct {
	baseDir string
}

// NewOSFileStore returns a store rooted at baseDir. An empty baseDir uses
// the process working directory.
func NewOSFileStore(baseDir string) *OSFileStore {
	return &OSFileStore{baseDir: baseDir}
}

func (s *OSFileStore) getAbsPath(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

// Resolve returns the absolute, symlink-free path that path names. Paths
// that cannot be resolved are returned absolute and cleaned.
func (s *OSFileStore) Resolve(path string) string {
	abs, err := filepath.Abs(s.getAbsPath(path))
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// ReadFile returns the whole content of path.
func (s *OSFileStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(s.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic writes content to a temp file next to the target and
// renames it into place, so readers see either the old file or the new one.
// The target must exist: its mode is carried over and symlinks are followed.
func (s *OSFileStore) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath, err := filepath.EvalSymlinks(s.getAbsPath(path))
	if err != nil {
		return errors.Errorf("resolving file: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return errors.Errorf("stat file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".repgrep-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		if rerr := os.Remove(tempPath); rerr != nil && !os.IsNotExist(rerr) {
			zerolog.Ctx(ctx).Debug().Err(rerr).Str("temp", tempPath).Msg("removing temp file")
		}
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		cleanup()
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
