package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrBadPath rejects relative paths that would escape the storage root.
var ErrBadPath = errors.New("storage: path escapes base directory")

// LocalStorage keeps generated exports on the local filesystem, bucketed by
// day so sweeping old files stays cheap. All methods take paths relative to
// the base directory; anything absolute or dot-dotted is refused.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the base directory if needed and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &LocalStorage{baseDir: abs}, nil
}

// Save writes data under today's bucket and returns the relative path the
// file ended up at. The write goes through a temp file and a rename so a
// concurrent download can never observe a half-written export.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	rel := filepath.ToSlash(filepath.Join(time.Now().UTC().Format("2006-01-02"), filename))
	dest, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("storage: create bucket dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck
		os.Remove(tmpName)   //nolint:errcheck
		return "", fmt.Errorf("storage: write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("storage: close export: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("storage: chmod export: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("storage: publish export: %w", err)
	}
	return rel, nil
}

// Open returns a read-only handle for a stored export.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open export: %w", err)
	}
	return file, nil
}

// Delete removes a stored export. Missing files are not an error.
func (s *LocalStorage) Delete(rel string) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete export: %w", err)
	}
	return nil
}

// CleanupOlderThan deletes files whose mtime is past the TTL, prunes day
// buckets left empty, and reports the relative paths it removed.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	var removed []string
	var dirs []string

	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != s.baseDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		if rel, err := filepath.Rel(s.baseDir, path); err == nil {
			removed = append(removed, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cleanup: %w", err)
	}

	// Deepest first so nested empties collapse; non-empty dirs just refuse.
	for i := len(dirs) - 1; i >= 0; i-- {
		os.Remove(dirs[i]) //nolint:errcheck
	}
	return removed, nil
}

// Path maps a relative path to its absolute location, or "" when the path is
// not inside the base directory.
func (s *LocalStorage) Path(rel string) string {
	path, err := s.resolve(rel)
	if err != nil {
		return ""
	}
	return path
}

func (s *LocalStorage) resolve(rel string) (string, error) {
	if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", ErrBadPath
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(rel)), nil
}
