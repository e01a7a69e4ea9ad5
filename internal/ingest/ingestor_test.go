package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

// fakeExtractor returns canned chunks or a canned error.
type fakeExtractor struct {
	chunks []string
	err    error
}

func (f *fakeExtractor) Extract(content []byte, filename string) ([]string, error) {
	return f.chunks, f.err
}

// rejectingStore wraps Memory but never acknowledges writes.
type rejectingStore struct {
	*vectorstore.Memory
}

func (r *rejectingStore) Upsert(ctx context.Context, vectors [][]float32, payloads []models.Payload) (bool, error) {
	return false, nil
}

func newTestEmbedder() *embedding.Service {
	return embedding.NewService(func() (embedding.Model, error) {
		return embedding.NewMockModel(8), nil
	}, 8, 10000, 100, nil)
}

func TestIngestFile(t *testing.T) {
	embedder := newTestEmbedder()
	store := vectorstore.NewMemory(8, nil)
	ing := NewIngestor(&fakeExtractor{chunks: []string{"first chunk", "second chunk"}}, embedder, store, nil, 10, nil)

	ctx := context.Background()
	count, err := ing.IngestFile(ctx, []byte("raw"), "report.txt")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// The stored payload carries provenance.
	vec, _ := embedder.Embed(ctx, "first chunk")
	hits := store.Search(ctx, vec, 5, 0.99)
	if len(hits) != 1 {
		t.Fatalf("stored chunk not retrievable: %v", hits)
	}
	p := hits[0].Payload
	if p.Source != "report.txt" || p.Type != models.SourceTypeFile || p.FileType != ".txt" {
		t.Errorf("payload = %+v", p)
	}
	if p.ChunkID == nil || *p.ChunkID != 0 {
		t.Errorf("chunk id = %v, want 0", p.ChunkID)
	}
}

func TestIngestFileNoContent(t *testing.T) {
	ing := NewIngestor(&fakeExtractor{}, newTestEmbedder(), vectorstore.NewMemory(8, nil), nil, 10, nil)
	_, err := ing.IngestFile(context.Background(), []byte("raw"), "empty.txt")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("error = %v, want ErrNoContent", err)
	}
}

func TestIngestFilePropagatesExtractorError(t *testing.T) {
	ing := NewIngestor(&fakeExtractor{err: extract.ErrUnsupportedFormat}, newTestEmbedder(), vectorstore.NewMemory(8, nil), nil, 10, nil)
	_, err := ing.IngestFile(context.Background(), []byte("raw"), "bad.exe")
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestIngestFileStoreRejected(t *testing.T) {
	store := &rejectingStore{vectorstore.NewMemory(8, nil)}
	ing := NewIngestor(&fakeExtractor{chunks: []string{"chunk"}}, newTestEmbedder(), store, nil, 10, nil)
	_, err := ing.IngestFile(context.Background(), []byte("raw"), "doc.txt")
	if !errors.Is(err, ErrStoreRejected) {
		t.Fatalf("error = %v, want ErrStoreRejected", err)
	}
}

func TestImportCMS(t *testing.T) {
	embedder := newTestEmbedder()
	store := vectorstore.NewMemory(8, nil)
	ing := NewIngestor(&fakeExtractor{}, embedder, store, nil, 10, nil)

	ctx := context.Background()
	content := "This is the first sentence of the page. Short. Here comes another long sentence."
	meta := map[string]interface{}{"page_id": "42"}
	count, err := ing.ImportCMS(ctx, content, "docs-page", meta)
	if err != nil {
		t.Fatalf("ImportCMS: %v", err)
	}
	// "Short." is at most ten characters and is dropped.
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	vec, _ := embedder.Embed(ctx, "This is the first sentence of the page.")
	hits := store.Search(ctx, vec, 5, 0.99)
	if len(hits) != 1 {
		t.Fatalf("stored sentence not retrievable: %v", hits)
	}
	p := hits[0].Payload
	if p.Source != "docs-page" || p.Type != models.SourceTypeCMS {
		t.Errorf("payload = %+v", p)
	}
	if p.Metadata["page_id"] != "42" {
		t.Errorf("metadata = %v", p.Metadata)
	}
}

func TestImportCMSNoChunks(t *testing.T) {
	ing := NewIngestor(&fakeExtractor{}, newTestEmbedder(), vectorstore.NewMemory(8, nil), nil, 10, nil)
	_, err := ing.ImportCMS(context.Background(), "Tiny.", "cms", nil)
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("error = %v, want ErrNoChunks", err)
	}
}
