// Package backup keeps zstd-compressed copies of the Dock file taken before
// each write, named by UUID v7 so lexical order is creation order.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	dirName = "backups"
	fileExt = ".plist.zst"
)

// ErrBackupNotFound is returned when no backup has the requested ID.
var ErrBackupNotFound = errors.New("backup not found")

// Backup describes one stored copy.
type Backup struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages backups under <dataDir>/backups.
type Store struct {
	dir string
}

// NewStore returns a Store rooted in dataDir. Nothing is created until Save.
func NewStore(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, dirName)}
}

// Dir returns the directory holding the backups.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Save compresses data into a new backup.
func (s *Store) Save(data []byte) (Backup, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Backup{}, fmt.Errorf("generating backup id: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Backup{}, fmt.Errorf("creating backup directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return Backup{}, fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return Backup{}, fmt.Errorf("compressing backup: %w", err)
	}
	if err := w.Close(); err != nil {
		return Backup{}, fmt.Errorf("closing zstd writer: %w", err)
	}

	p := s.path(id.String())
	if err := os.WriteFile(p, buf.Bytes(), 0o600); err != nil {
		return Backup{}, fmt.Errorf("writing backup file: %w", err)
	}
	return s.stat(id.String())
}

// Read returns the uncompressed contents of backup id.
func (s *Store) Read(id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBackupNotFound, id)
	}
	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return nil, fmt.Errorf("reading backup %s: %w", id, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing backup %s: %w", id, err)
	}
	return data, nil
}

// List returns all backups, newest first. A missing backup directory is not
// an error.
func (s *Store) List() ([]Backup, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(name, fileExt)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	slices.Reverse(ids)

	backups := make([]Backup, 0, len(ids))
	for _, id := range ids {
		b, err := s.stat(id)
		if err != nil {
			return nil, err
		}
		backups = append(backups, b)
	}
	return backups, nil
}

// Prune deletes all but the newest keep backups and returns how many were
// removed. keep == 0 removes everything.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune: keep must not be negative, got %d", keep)
	}
	backups, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}
	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("removing backup %s: %w", b.ID, err)
		}
		removed++
	}
	return removed, nil
}

// stat describes backup id. CreatedAt comes from the UUID v7 timestamp, so
// copying or touching the file does not change it.
func (s *Store) stat(id string) (Backup, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return Backup{}, fmt.Errorf("%w: %q", ErrBackupNotFound, id)
	}
	p := s.path(id)
	info, err := os.Stat(p)
	if err != nil {
		return Backup{}, fmt.Errorf("stat backup %s: %w", id, err)
	}
	sec, nsec := u.Time().UnixTime()
	return Backup{
		ID:        id,
		Path:      p,
		Size:      info.Size(),
		CreatedAt: time.Unix(sec, nsec),
	}, nil
}
