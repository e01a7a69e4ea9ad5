package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Qdrant is a REST client for a Qdrant collection with fixed dimensionality
// and cosine distance. The collection is provisioned lazily on first use;
// the existence-check-then-create sequence is serialized on a mutex so
// concurrent first requests cannot race to create it twice.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewQdrant creates a Qdrant store client. Dimensions is the fixed vector
// size enforced on upsert and used when creating the collection.
func NewQdrant(cfg config.QdrantConfig, dimensions int, logger *zap.Logger) *Qdrant {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Qdrant{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// EnsureCollection creates the collection if it does not exist. Idempotent
// and safe under concurrent invocation.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	status, err := q.do(ctx, http.MethodGet, q.collectionURL(), nil, nil)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("check collection: unexpected status %d", status)
	}

	q.logger.Info("creating collection", zap.String("collection", q.collection), zap.Int("dimensions", q.dimensions))
	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.dimensions,
			"distance": "Cosine",
		},
	}
	status, err = q.do(ctx, http.MethodPut, q.collectionURL(), body, nil)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("create collection: unexpected status %d", status)
	}
	return nil
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload models.Payload `json:"payload"`
}

// Upsert stores vector/payload pairs as new points with fresh UUIDs. Vectors
// of the wrong dimensionality are dropped with a warning; the batch fails only
// when nothing survives or the store rejects the write. Returns true when the
// store acknowledged the write.
func (q *Qdrant) Upsert(ctx context.Context, vectors [][]float32, payloads []models.Payload) (bool, error) {
	if len(vectors) != len(payloads) {
		return false, ErrLengthMismatch
	}
	if err := q.EnsureCollection(ctx); err != nil {
		q.logger.Error("ensure collection failed", zap.Error(err))
		return false, nil
	}

	points := make([]qdrantPoint, 0, len(vectors))
	for i, vec := range vectors {
		if len(vec) != q.dimensions {
			q.logger.Warn("dropping vector with wrong dimension",
				zap.Int("index", i), zap.Int("got", len(vec)), zap.Int("want", q.dimensions))
			continue
		}
		points = append(points, qdrantPoint{
			ID:      uuid.New().String(),
			Vector:  vec,
			Payload: payloads[i],
		})
	}
	if len(points) == 0 {
		q.logger.Error("no valid points to store")
		return false, nil
	}

	q.logger.Info("storing points", zap.Int("count", len(points)), zap.String("collection", q.collection))
	var resp struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	status, err := q.do(ctx, http.MethodPut, q.collectionURL()+"/points?wait=true",
		map[string]interface{}{"points": points}, &resp)
	if err != nil || status >= 300 {
		q.logger.Error("failed to store points", zap.Int("status", status), zap.Error(err))
		return false, nil
	}
	if resp.Result.Status != "acknowledged" && resp.Result.Status != "completed" {
		q.logger.Error("store did not acknowledge write", zap.String("status", resp.Result.Status))
		return false, nil
	}
	return true, nil
}

// Search returns up to limit nearest neighbors by cosine similarity, with a
// minimum-score cutoff. The collection is ensured first so a query against an
// uninitialized store returns no results; store-side failures also degrade to
// an empty list.
func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float64) []models.SearchHit {
	if err := q.EnsureCollection(ctx); err != nil {
		q.logger.Error("ensure collection failed", zap.Error(err))
		return nil
	}

	req := map[string]interface{}{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": scoreThreshold,
		"with_payload":    true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload models.Payload `json:"payload"`
		} `json:"result"`
	}
	status, err := q.do(ctx, http.MethodPost, q.collectionURL()+"/points/search", req, &resp)
	if err != nil || status >= 300 {
		q.logger.Error("search failed", zap.Int("status", status), zap.Error(err))
		return nil
	}
	hits := make([]models.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, models.SearchHit{Payload: r.Payload, Score: r.Score})
	}
	q.logger.Debug("search returned hits", zap.Int("count", len(hits)))
	return hits
}

// Clear deletes the entire collection; the next write recreates it.
func (q *Qdrant) Clear(ctx context.Context) bool {
	status, err := q.do(ctx, http.MethodDelete, q.collectionURL(), nil, nil)
	if err != nil || status >= 300 {
		q.logger.Error("failed to clear collection", zap.Int("status", status), zap.Error(err))
		return false
	}
	q.logger.Info("collection deleted", zap.String("collection", q.collection))
	return true
}

// Info reports the collection's point count and status. A collection that has
// never been created yields a placeholder "not_created" info, not an error.
func (q *Qdrant) Info(ctx context.Context) (models.CollectionInfo, error) {
	var resp struct {
		Result struct {
			Status      string `json:"status"`
			PointsCount int64  `json:"points_count"`
		} `json:"result"`
	}
	status, err := q.do(ctx, http.MethodGet, q.collectionURL(), nil, &resp)
	if err != nil {
		return models.CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}
	if status == http.StatusNotFound {
		return models.CollectionInfo{Name: q.collection, Status: "not_created"}, nil
	}
	if status >= 300 {
		return models.CollectionInfo{}, fmt.Errorf("collection info: unexpected status %d", status)
	}
	return models.CollectionInfo{
		Name:         q.collection,
		Status:       resp.Result.Status,
		VectorsCount: resp.Result.PointsCount,
	}, nil
}

func (q *Qdrant) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", q.baseURL, q.collection)
}

// do sends a JSON request and decodes the response into out when non-nil.
// The HTTP status is returned for the caller to interpret; only transport
// and encoding failures are errors.
func (q *Qdrant) do(ctx context.Context, method, url string, body, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
