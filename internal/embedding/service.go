package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

// ErrEmptyInput is returned when the text to embed is empty or whitespace-only.
var ErrEmptyInput = errors.New("text cannot be empty for embedding")

// Service wraps a lazily-loaded Model with input validation, truncation,
// dimension checking, unit normalization, and an LRU cache. It is shared by
// all requests; the underlying model is loaded once and reused until Close.
type Service struct {
	factory    ModelFactory
	dimensions int
	maxChars   int
	cache      *Cache
	logger     *zap.Logger

	mu    sync.Mutex
	model Model
}

// NewService creates an embedding service. The model is not loaded until the
// first Embed call. maxChars bounds input length before inference.
func NewService(factory ModelFactory, dimensions, maxChars, cacheSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		factory:    factory,
		dimensions: dimensions,
		maxChars:   maxChars,
		cache:      NewCache(cacheSize),
		logger:     logger,
	}
}

// Embed returns the unit-normalized embedding for text. Empty or
// whitespace-only text fails with ErrEmptyInput; over-long text is truncated
// to maxChars before inference.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if runes := []rune(text); len(runes) > s.maxChars {
		s.logger.Warn("truncating over-long embedding input",
			zap.Int("chars", len(runes)), zap.Int("max_chars", s.maxChars))
		text = string(runes[:s.maxChars])
	}
	if cached, ok := s.cache.Get(text); ok {
		return cached, nil
	}

	model, err := s.load()
	if err != nil {
		return nil, err
	}
	vec, err := model.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding inference: %w", err)
	}
	if len(vec) != s.dimensions {
		return nil, fmt.Errorf("model produced %d dimensions, want %d", len(vec), s.dimensions)
	}
	utils.NormalizeL2(vec)
	s.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds each text, silently dropping empty or whitespace-only
// entries first. Returns nil when nothing remains.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	valid := texts[:0:0]
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, len(valid))
	for i, t := range valid {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the fixed embedding dimensionality.
func (s *Service) Dimensions() int {
	return s.dimensions
}

// Close releases the model and any accelerator memory it holds. A later
// Embed call loads the model again.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil
	}
	err := s.model.Close()
	s.model = nil
	s.logger.Info("embedding model released")
	return err
}

// load returns the model, constructing it on first use.
func (s *Service) load() (Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}
	s.logger.Info("loading embedding model")
	model, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding model: %w", err)
	}
	s.model = model
	return model, nil
}
