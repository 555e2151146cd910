package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createEntriesSQL = `
CREATE TABLE IF NOT EXISTS cache_entries (
	company_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	data BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (company_id, stage)
);
`

// SQLiteStore keeps every document in one SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createEntriesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(companyID, stage string) ([]byte, error) {
	if err := checkKey(companyID, stage); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM cache_entries WHERE company_id = ? AND stage = ?`, companyID, stage).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", companyID, stage, err)
	}
	return data, nil
}

func (s *SQLiteStore) Put(companyID, stage string, data []byte) error {
	if err := checkKey(companyID, stage); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO cache_entries (company_id, stage, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company_id, stage) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		companyID, stage, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", companyID, stage, err)
	}
	return nil
}

func (s *SQLiteStore) Entries(companyID string) ([]Entry, error) {
	rows, err := s.db.Query(`SELECT stage, length(data), updated_at FROM cache_entries WHERE company_id = ? ORDER BY stage`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", companyID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			stage   string
			size    int64
			updated string
		)
		if err := rows.Scan(&stage, &size, &updated); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		modified, _ := time.Parse(time.RFC3339Nano, updated)
		entries = append(entries, Entry{Name: stage + ".json", Size: size, Modified: modified})
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clear(companyID string) error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE company_id = ?`, companyID); err != nil {
		return fmt.Errorf("clear %s: %w", companyID, err)
	}
	return nil
}

func (s *SQLiteStore) Location(companyID string) string {
	return s.path + "#" + companyID
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
