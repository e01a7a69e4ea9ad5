package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Memory is an in-process Store using brute-force cosine search. It mirrors
// the adapter semantics of the Qdrant client (lazy collection, dimension
// filtering, whole-collection clear) for tests and store-free development.
type Memory struct {
	dimensions int
	logger     *zap.Logger

	mu       sync.RWMutex
	created  bool
	vectors  [][]float32
	payloads []models.Payload
}

// NewMemory creates an in-memory store with the given dimensionality.
func NewMemory(dimensions int, logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{dimensions: dimensions, logger: logger}
}

// EnsureCollection marks the collection as created.
func (m *Memory) EnsureCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	return nil
}

// Upsert appends vector/payload pairs, dropping wrong-dimension vectors.
// Returns false when nothing survives filtering.
func (m *Memory) Upsert(ctx context.Context, vectors [][]float32, payloads []models.Payload) (bool, error) {
	if len(vectors) != len(payloads) {
		return false, ErrLengthMismatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	stored := 0
	for i, vec := range vectors {
		if len(vec) != m.dimensions {
			m.logger.Warn("dropping vector with wrong dimension",
				zap.Int("index", i), zap.Int("got", len(vec)), zap.Int("want", m.dimensions))
			continue
		}
		cp := make([]float32, m.dimensions)
		copy(cp, vec)
		m.vectors = append(m.vectors, cp)
		m.payloads = append(m.payloads, payloads[i])
		stored++
	}
	return stored > 0, nil
}

// Search returns the top hits by dot product (cosine similarity for
// normalized vectors) at or above scoreThreshold.
func (m *Memory) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) []models.SearchHit {
	if len(vector) != m.dimensions || limit <= 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]models.SearchHit, 0, len(m.vectors))
	for i, vec := range m.vectors {
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(vector[j] * vec[j])
		}
		if dot >= scoreThreshold {
			hits = append(hits, models.SearchHit{Payload: m.payloads[i], Score: dot})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Clear drops the collection and all points.
func (m *Memory) Clear(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = false
	m.vectors = nil
	m.payloads = nil
	return true
}

// Info reports point count, or a "not_created" placeholder before first use.
func (m *Memory) Info(ctx context.Context) (models.CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return models.CollectionInfo{Name: "memory", Status: "not_created"}, nil
	}
	return models.CollectionInfo{
		Name:         "memory",
		Status:       "green",
		VectorsCount: int64(len(m.vectors)),
	}, nil
}
