// Package answer orchestrates retrieval-augmented answering:
// embed the query, search the store, build a prompt from the best hits,
// generate, and post-process the result with source citations.
package answer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generate"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"go.uber.org/zap"
)

// ErrEmptyQuery is returned when the chat query is empty or whitespace-only.
var ErrEmptyQuery = errors.New("query cannot be empty")

// NoInformationAnswer is returned verbatim when retrieval finds nothing;
// generation is skipped entirely in that case.
const NoInformationAnswer = "I couldn't find any relevant information in the documents. " +
	"Please try a different question or upload more relevant documents."

// Answerer runs the fixed retrieval-and-answer pipeline. The sequence is
// deliberately straight-line: embed, search, filter, prompt, generate, clean.
type Answerer struct {
	embedder  *embedding.Service
	store     vectorstore.Store
	generator generate.Generator
	cfg       *config.RetrievalConfig
	logger    *zap.Logger
}

// NewAnswerer creates an answerer with the given dependencies.
func NewAnswerer(
	embedder *embedding.Service,
	store vectorstore.Store,
	generator generate.Generator,
	cfg *config.RetrievalConfig,
	logger *zap.Logger,
) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{
		embedder:  embedder,
		store:     store,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer produces a generated answer with source citations for the query.
func (a *Answerer) Answer(ctx context.Context, query string) (*models.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	queryVector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := a.store.Search(ctx, queryVector, a.cfg.SearchLimit, a.cfg.ScoreThreshold)
	if len(hits) == 0 {
		a.logger.Debug("no hits for query", zap.String("query", query))
		return &models.Answer{Text: NoInformationAnswer, Sources: []models.Source{}}, nil
	}

	top := a.selectContext(hits)

	prompt := buildPrompt(buildContext(top), query)
	generated, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Text:    CleanAnswer(generated),
		Sources: buildSources(top),
	}, nil
}

// selectContext sorts hits by score descending and keeps those above the
// context threshold. When that empties the set, the best hits are used anyway
// so generation never runs with zero context while any hit exists. At most
// MaxContextExcerpts hits survive.
func (a *Answerer) selectContext(hits []models.SearchHit) []models.SearchHit {
	sorted := make([]models.SearchHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	filtered := sorted[:0:0]
	for _, hit := range sorted {
		if hit.Score > a.cfg.ContextThreshold {
			filtered = append(filtered, hit)
		}
	}
	if len(filtered) == 0 {
		n := a.cfg.FallbackHits
		if n > len(sorted) {
			n = len(sorted)
		}
		filtered = sorted[:n]
	}
	if len(filtered) > a.cfg.MaxContextExcerpts {
		filtered = filtered[:a.cfg.MaxContextExcerpts]
	}
	return filtered
}

// buildSources turns the context hits into citations: text truncated to 250
// characters (preferring a sentence boundary past character 100), score
// rounded to three decimals, plus provenance.
func buildSources(hits []models.SearchHit) []models.Source {
	sources := make([]models.Source, 0, len(hits))
	for _, hit := range hits {
		source := hit.Payload.Source
		if source == "" {
			source = "Unknown"
		}
		typ := hit.Payload.Type
		if typ == "" {
			typ = "unknown"
		}
		sources = append(sources, models.Source{
			Text:   truncateSource(hit.Payload.Text),
			Score:  math.Round(hit.Score*1000) / 1000,
			Source: source,
			Type:   typ,
		})
	}
	return sources
}

// truncateSource limits text to 250 characters, cutting at the last sentence
// end within the window when it falls past character 100, else hard-cutting.
// Offsets are counted in runes so multi-byte text keeps the same bounds.
func truncateSource(text string) string {
	runes := []rune(text)
	if len(runes) <= 250 {
		return text
	}
	head := runes[:250]
	for i := len(head) - 2; i > 100; i-- {
		if head[i] == '.' && head[i+1] == ' ' {
			return string(head[:i+1]) + "..."
		}
	}
	return string(head[:247]) + "..."
}
