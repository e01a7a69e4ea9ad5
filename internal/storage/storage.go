// Package storage records ingest history for the status endpoint.
package storage

import (
	"context"
	"time"
)

// IngestRecord is one completed ingestion: a file upload or a CMS import.
type IngestRecord struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Type      string    `json:"type"`
	FileType  string    `json:"file_type,omitempty"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

// History persists ingest records. Recording is best-effort: callers log and
// continue when it fails, since the vector store write already succeeded.
type History interface {
	RecordIngest(ctx context.Context, rec *IngestRecord) error
	ListRecent(ctx context.Context, limit int) ([]*IngestRecord, error)
	CountIngests(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	Close() error
}
