// Package ingest orchestrates writes into the vector store: extract or split,
// embed, upsert, record.
package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"go.uber.org/zap"
)

// Extractor converts file content into text chunks.
type Extractor interface {
	Extract(content []byte, filename string) ([]string, error)
}

var (
	// ErrNoContent means extraction produced nothing embeddable.
	ErrNoContent = errors.New("no content extracted")
	// ErrNoChunks means CMS content yielded no embeddable chunks.
	ErrNoChunks = errors.New("no embeddable chunks in content")
	// ErrNoEmbeddings means every chunk failed to embed.
	ErrNoEmbeddings = errors.New("failed to generate embeddings")
	// ErrStoreRejected means the vector store did not acknowledge the write.
	ErrStoreRejected = errors.New("vector store rejected the points")
)

// Ingestor runs the ingestion pipeline for file uploads and CMS imports.
// Individual chunks that fail to embed are skipped with a warning; the
// ingestion fails only when nothing at all could be embedded or stored.
type Ingestor struct {
	extractor        Extractor
	embedder         *embedding.Service
	store            vectorstore.Store
	history          storage.History
	minSentenceChars int
	logger           *zap.Logger
}

// NewIngestor creates an ingestor. history may be nil; ingests are then not
// recorded. minSentenceChars is the minimum fragment length kept by CMS import.
func NewIngestor(
	extractor Extractor,
	embedder *embedding.Service,
	store vectorstore.Store,
	history storage.History,
	minSentenceChars int,
	logger *zap.Logger,
) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		extractor:        extractor,
		embedder:         embedder,
		store:            store,
		history:          history,
		minSentenceChars: minSentenceChars,
		logger:           logger,
	}
}

// IngestFile extracts, embeds, and stores a document file. Returns the number
// of chunks stored. Fails with extract.ErrUnsupportedFormat, ErrNoContent,
// ErrNoEmbeddings, or ErrStoreRejected.
func (ing *Ingestor) IngestFile(ctx context.Context, content []byte, filename string) (int, error) {
	chunks, err := ing.extractor.Extract(content, filename)
	if err != nil {
		return 0, err
	}
	ing.logger.Info("extracted chunks", zap.String("filename", filename), zap.Int("chunks", len(chunks)))
	if len(chunks) == 0 {
		return 0, ErrNoContent
	}

	fileType := strings.ToLower(filepath.Ext(filename))
	var vectors [][]float32
	var payloads []models.Payload
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		vec, err := ing.embedder.Embed(ctx, chunk)
		if err != nil {
			ing.logger.Warn("skipping chunk", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}
		chunkID := i
		vectors = append(vectors, vec)
		payloads = append(payloads, models.Payload{
			Text:     chunk,
			Source:   filename,
			Type:     models.SourceTypeFile,
			FileType: fileType,
			ChunkID:  &chunkID,
		})
	}
	if len(vectors) == 0 {
		return 0, ErrNoEmbeddings
	}

	if err := ing.upsert(ctx, vectors, payloads); err != nil {
		return 0, err
	}
	ing.record(ctx, &storage.IngestRecord{
		Source:   filename,
		Type:     models.SourceTypeFile,
		FileType: fileType,
		Chunks:   len(payloads),
	})
	return len(payloads), nil
}

// ImportCMS splits CMS content into sentences, embeds those above the minimum
// length, and stores them with the caller's metadata. Returns the number of
// chunks stored. Fails with ErrNoChunks or ErrStoreRejected.
func (ing *Ingestor) ImportCMS(ctx context.Context, content, source string, metadata map[string]interface{}) (int, error) {
	sentences := chunker.SplitSentences(content)
	kept := sentences[:0:0]
	for _, s := range sentences {
		if len([]rune(s)) > ing.minSentenceChars {
			kept = append(kept, s)
		}
	}
	ing.logger.Info("split cms content", zap.String("source", source), zap.Int("chunks", len(kept)))

	var vectors [][]float32
	var payloads []models.Payload
	for _, chunk := range kept {
		vec, err := ing.embedder.Embed(ctx, chunk)
		if err != nil {
			ing.logger.Warn("skipping chunk", zap.Error(err))
			continue
		}
		vectors = append(vectors, vec)
		payloads = append(payloads, models.Payload{
			Text:     chunk,
			Source:   source,
			Type:     models.SourceTypeCMS,
			Metadata: metadata,
		})
	}
	if len(vectors) == 0 {
		return 0, ErrNoChunks
	}

	if err := ing.upsert(ctx, vectors, payloads); err != nil {
		return 0, err
	}
	ing.record(ctx, &storage.IngestRecord{
		Source: source,
		Type:   models.SourceTypeCMS,
		Chunks: len(payloads),
	})
	return len(payloads), nil
}

func (ing *Ingestor) upsert(ctx context.Context, vectors [][]float32, payloads []models.Payload) error {
	ok, err := ing.store.Upsert(ctx, vectors, payloads)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStoreRejected
	}
	return nil
}

// record persists an ingest record; failures are logged, not surfaced,
// because the vector store write already succeeded.
func (ing *Ingestor) record(ctx context.Context, rec *storage.IngestRecord) {
	if ing.history == nil {
		return
	}
	if err := ing.history.RecordIngest(ctx, rec); err != nil {
		ing.logger.Warn("failed to record ingest", zap.Error(err))
	}
}
