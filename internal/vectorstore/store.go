// Package vectorstore persists embeddings and serves similarity search.
package vectorstore

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrLengthMismatch is returned when an upsert's vectors and payloads differ in length.
var ErrLengthMismatch = errors.New("vectors and payloads must have the same length")

// Store is the similarity-search backend. Qdrant implements it against an
// external service; Memory implements it in-process for tests and development.
//
// Search degrades store-side failures to an empty hit list; Clear reports
// success as a bool. Upsert returns true only when the store acknowledged the
// write; the error is reserved for caller mistakes such as a length mismatch.
type Store interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, vectors [][]float32, payloads []models.Payload) (bool, error)
	Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) []models.SearchHit
	Clear(ctx context.Context) bool
	Info(ctx context.Context) (models.CollectionInfo, error)
}
