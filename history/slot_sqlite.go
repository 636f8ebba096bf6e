package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"
)

type SQLiteSlot struct {
	db *sql.DB
}

func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, goerr.New("missing sqlite path", goerr.T(apperr.TagConfig))
	}
	p = filepath.Clean(p)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create sqlite dir", goerr.V("path", p))
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", p))
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv_slots (
  slot_key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at_unix_ms INTEGER NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to init sqlite schema", goerr.V("path", p))
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE slot_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query slot", goerr.V("key", key))
	}
	return v, nil
}

func (s *SQLiteSlot) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_slots(slot_key, value, updated_at_unix_ms) VALUES(?, ?, ?)
ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value, updated_at_unix_ms = excluded.updated_at_unix_ms`,
		key, data, time.Now().UnixMilli())
	if err != nil {
		return goerr.Wrap(err, "failed to upsert slot", goerr.V("key", key))
	}
	return nil
}

func (s *SQLiteSlot) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE slot_key = ?`, key); err != nil {
		return goerr.Wrap(err, "failed to delete slot", goerr.V("key", key))
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
