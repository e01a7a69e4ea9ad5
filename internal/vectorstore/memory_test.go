package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestMemoryUpsertLengthMismatch(t *testing.T) {
	m := NewMemory(3, nil)
	_, err := m.Upsert(context.Background(), [][]float32{{1, 0, 0}}, nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Upsert error = %v, want ErrLengthMismatch", err)
	}
}

func TestMemoryUpsertDropsWrongDimensions(t *testing.T) {
	m := NewMemory(3, nil)
	ok, err := m.Upsert(context.Background(),
		[][]float32{{1, 0, 0}, {1, 0}},
		[]models.Payload{{Text: "good"}, {Text: "bad"}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !ok {
		t.Fatal("Upsert = false, want true when at least one vector survives")
	}

	ok, err = m.Upsert(context.Background(),
		[][]float32{{1, 0}},
		[]models.Payload{{Text: "bad"}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if ok {
		t.Fatal("Upsert = true, want false when nothing survives")
	}
}

func TestMemorySearch(t *testing.T) {
	m := NewMemory(3, nil)
	ctx := context.Background()
	_, err := m.Upsert(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]models.Payload{{Text: "x"}, {Text: "y"}, {Text: "z"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	hits := m.Search(ctx, []float32{1, 0, 0}, 5, 0.3)
	if len(hits) != 1 {
		t.Fatalf("Search returned %d hits, want 1", len(hits))
	}
	if hits[0].Payload.Text != "x" || hits[0].Score < 0.999 {
		t.Errorf("hit = %+v, want x with score 1.0", hits[0])
	}

	// Threshold zero matches everything; limit caps the result.
	hits = m.Search(ctx, []float32{1, 0, 0}, 2, 0)
	if len(hits) != 2 {
		t.Errorf("Search with limit 2 returned %d hits", len(hits))
	}

	// Wrong query dimensionality degrades to no hits.
	if hits := m.Search(ctx, []float32{1, 0}, 5, 0); hits != nil {
		t.Errorf("Search with wrong dims = %v, want nil", hits)
	}
}

func TestMemoryClearAndInfo(t *testing.T) {
	m := NewMemory(3, nil)
	ctx := context.Background()

	info, err := m.Info(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "not_created" {
		t.Errorf("fresh store status = %q, want not_created", info.Status)
	}

	if _, err := m.Upsert(ctx, [][]float32{{1, 0, 0}}, []models.Payload{{Text: "x"}}); err != nil {
		t.Fatal(err)
	}
	info, err = m.Info(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.VectorsCount != 1 || info.Status != "green" {
		t.Errorf("info = %+v, want 1 vector green", info)
	}

	if !m.Clear(ctx) {
		t.Fatal("Clear = false")
	}
	info, _ = m.Info(ctx)
	if info.Status != "not_created" {
		t.Errorf("cleared store status = %q, want not_created", info.Status)
	}
}
