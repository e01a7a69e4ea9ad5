package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/pkg/utils"
)

func mockFactory(dimensions int) ModelFactory {
	return func() (Model, error) {
		return NewMockModel(dimensions), nil
	}
}

func TestEmbedDimensionsAndNorm(t *testing.T) {
	s := NewService(mockFactory(384), 384, 10000, 100, nil)
	vec, err := s.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 384 {
		t.Fatalf("len(vec) = %d, want 384", len(vec))
	}
	if norm := utils.L2Norm(vec); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("L2 norm = %f, want 1.0", norm)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	s := NewService(mockFactory(384), 384, 10000, 100, nil)
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := s.Embed(context.Background(), input); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Embed(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestEmbedDeterministic(t *testing.T) {
	s := NewService(mockFactory(8), 8, 10000, 100, nil)
	a, err := s.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	s := NewService(mockFactory(8), 8, 10, 100, nil)
	long := strings.Repeat("a", 50)
	got, err := s.Embed(context.Background(), long)
	if err != nil {
		t.Fatal(err)
	}
	want, err := s.Embed(context.Background(), long[:10])
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatal("truncated input should embed the same as its prefix")
		}
	}
}

func TestEmbedBatchDropsBlanks(t *testing.T) {
	s := NewService(mockFactory(8), 8, 10000, 100, nil)
	vectors, err := s.EmbedBatch(context.Background(), []string{"alpha", "   ", "beta", ""})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Errorf("len(vectors) = %d, want 2", len(vectors))
	}

	vectors, err = s.EmbedBatch(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("EmbedBatch(all blank): %v", err)
	}
	if vectors != nil {
		t.Errorf("EmbedBatch(all blank) = %v, want nil", vectors)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	// Model produces 5 dims but the service is configured for 8.
	s := NewService(mockFactory(5), 8, 10000, 100, nil)
	if _, err := s.Embed(context.Background(), "text"); err == nil {
		t.Fatal("Embed should fail on dimension mismatch")
	}
}

func TestCloseReloadsModel(t *testing.T) {
	loads := 0
	factory := func() (Model, error) {
		loads++
		return NewMockModel(8), nil
	}
	s := NewService(factory, 8, 10000, 0, nil)
	if _, err := s.Embed(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Embed(context.Background(), "two"); err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Errorf("model loaded %d times, want 2", loads)
	}
}

func TestEmbedUsesCache(t *testing.T) {
	loads := 0
	factory := func() (Model, error) {
		loads++
		return NewMockModel(8), nil
	}
	s := NewService(factory, 8, 10000, 100, nil)
	if _, err := s.Embed(context.Background(), "cached"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	// Cache hit: no reload needed.
	if _, err := s.Embed(context.Background(), "cached"); err != nil {
		t.Fatal(err)
	}
	if loads != 1 {
		t.Errorf("model loaded %d times, want 1 (second call should hit the cache)", loads)
	}
}
