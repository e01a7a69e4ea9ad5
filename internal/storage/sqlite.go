package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteHistory implements History using SQLite.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		type TEXT NOT NULL,
		file_type TEXT,
		chunks INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ingests_created_at ON ingests(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordIngest inserts a record and fills in its ID and timestamp.
func (s *SQLiteHistory) RecordIngest(ctx context.Context, rec *IngestRecord) error {
	rec.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ingests (source, type, file_type, chunks, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Source, rec.Type, rec.FileType, rec.Chunks, rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

// ListRecent returns the most recent records, newest first.
func (s *SQLiteHistory) ListRecent(ctx context.Context, limit int) ([]*IngestRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, type, file_type, chunks, created_at FROM ingests ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*IngestRecord
	for rows.Next() {
		var rec IngestRecord
		var fileType sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Type, &fileType, &rec.Chunks, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.FileType = fileType.String
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountIngests returns the total number of ingest records.
func (s *SQLiteHistory) CountIngests(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingests`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks across all ingests.
func (s *SQLiteHistory) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(chunks), 0) FROM ingests`).Scan(&count)
	return count, err
}

// Close closes the database.
func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
