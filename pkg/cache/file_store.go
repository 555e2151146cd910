package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps one <dir>/<companyID>/<stage>.json file per document.
// Directories are created on demand. Writes replace whole files through a
// rename, so concurrent writers never leave a half-written document.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(companyID, stage string) string {
	return filepath.Join(s.dir, companyID, stage+".json")
}

func (s *FileStore) Get(companyID, stage string) ([]byte, error) {
	if err := checkKey(companyID, stage); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(companyID, stage))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", companyID, stage, err)
	}
	return data, nil
}

func (s *FileStore) Put(companyID, stage string, data []byte) error {
	if err := checkKey(companyID, stage); err != nil {
		return err
	}
	dir := filepath.Join(s.dir, companyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, stage+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", companyID, stage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", companyID, stage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", companyID, stage, err)
	}
	if err := os.Rename(tmp.Name(), s.path(companyID, stage)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", companyID, stage, err)
	}
	return nil
}

func (s *FileStore) Entries(companyID string) ([]Entry, error) {
	if err := checkKey(companyID, "x"); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(filepath.Join(s.dir, companyID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", companyID, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *FileStore) Clear(companyID string) error {
	if err := checkKey(companyID, "x"); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.dir, companyID)); err != nil {
		return fmt.Errorf("clear %s: %w", companyID, err)
	}
	return nil
}

func (s *FileStore) Location(companyID string) string {
	return filepath.Join(s.dir, companyID)
}

func (s *FileStore) Close() error { return nil }
