package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generate"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

func testRetrievalConfig() *config.RetrievalConfig {
	return &config.RetrievalConfig{
		SearchLimit:        5,
		ScoreThreshold:     0.3,
		ContextThreshold:   0.4,
		FallbackHits:       2,
		MaxContextExcerpts: 3,
	}
}

func newTestAnswerer(gen generate.Generator) (*Answerer, *embedding.Service, *vectorstore.Memory) {
	embedder := embedding.NewService(func() (embedding.Model, error) {
		return embedding.NewMockModel(8), nil
	}, 8, 10000, 100, nil)
	store := vectorstore.NewMemory(8, nil)
	return NewAnswerer(embedder, store, gen, testRetrievalConfig(), nil), embedder, store
}

func TestAnswerEmptyQuery(t *testing.T) {
	a, _, _ := newTestAnswerer(&generate.Mock{})
	for _, q := range []string{"", "   "} {
		if _, err := a.Answer(context.Background(), q); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Answer(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestAnswerNoHitsSkipsGeneration(t *testing.T) {
	gen := &generate.Mock{Response: "should never appear"}
	a, _, _ := newTestAnswerer(gen)

	result, err := a.Answer(context.Background(), "anything in the empty store?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Text != NoInformationAnswer {
		t.Errorf("answer = %q, want the fixed no-information answer", result.Text)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("sources = %v, want empty non-nil slice", result.Sources)
	}
	if len(gen.Prompts) != 0 {
		t.Errorf("generator was invoked %d times, want 0", len(gen.Prompts))
	}
}

func TestAnswerWithHits(t *testing.T) {
	gen := &generate.Mock{Response: "the facility opened in 1998"}
	a, embedder, store := newTestAnswerer(gen)
	ctx := context.Background()

	doc := "The facility opened in 1998 after two years of construction."
	vec, err := embedder.Embed(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Upsert(ctx, [][]float32{vec}, []models.Payload{
		{Text: doc, Source: "history.txt", Type: "file"},
	}); err != nil {
		t.Fatal(err)
	}

	result, err := a.Answer(ctx, doc)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Text != "the facility opened in 1998." {
		t.Errorf("answer = %q, want cleaned generation with terminal period", result.Text)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("sources = %v, want 1", result.Sources)
	}
	src := result.Sources[0]
	if src.Source != "history.txt" || src.Type != "file" {
		t.Errorf("source = %+v", src)
	}
	if src.Score < 0.999 || src.Score > 1 {
		t.Errorf("score = %v, want ~1.0", src.Score)
	}

	if len(gen.Prompts) != 1 {
		t.Fatalf("generator invoked %d times, want 1", len(gen.Prompts))
	}
	prompt := gen.Prompts[0]
	if !strings.Contains(prompt, "[Excerpt 1]: "+doc) {
		t.Errorf("prompt missing excerpt: %q", prompt)
	}
	if !strings.Contains(prompt, "QUESTION: "+doc) {
		t.Errorf("prompt missing question: %q", prompt)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	genErr := errors.New("model unavailable")
	gen := &generate.Mock{Err: genErr}
	a, embedder, store := newTestAnswerer(gen)
	ctx := context.Background()

	doc := "Some stored content to retrieve."
	vec, _ := embedder.Embed(ctx, doc)
	if _, err := store.Upsert(ctx, [][]float32{vec}, []models.Payload{{Text: doc}}); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Answer(ctx, doc); !errors.Is(err, genErr) {
		t.Fatalf("Answer error = %v, want generation error propagated", err)
	}
}

func TestSelectContextFiltersAndFallsBack(t *testing.T) {
	a, _, _ := newTestAnswerer(&generate.Mock{})
	mk := func(score float64, text string) models.SearchHit {
		return models.SearchHit{Score: score, Payload: models.Payload{Text: text}}
	}

	// Above-threshold hits survive, sorted, capped at three.
	hits := []models.SearchHit{mk(0.45, "c"), mk(0.9, "a"), mk(0.6, "b"), mk(0.41, "d"), mk(0.2, "e")}
	got := a.selectContext(hits)
	if len(got) != 3 {
		t.Fatalf("selectContext kept %d hits, want 3", len(got))
	}
	if got[0].Payload.Text != "a" || got[1].Payload.Text != "b" || got[2].Payload.Text != "c" {
		t.Errorf("selectContext order = %v", got)
	}

	// All at or below the context threshold: best two used anyway.
	hits = []models.SearchHit{mk(0.35, "x"), mk(0.4, "y"), mk(0.31, "z")}
	got = a.selectContext(hits)
	if len(got) != 2 {
		t.Fatalf("fallback kept %d hits, want 2", len(got))
	}
	if got[0].Payload.Text != "y" || got[1].Payload.Text != "x" {
		t.Errorf("fallback order = %v", got)
	}
}

func TestBuildSourcesDefaults(t *testing.T) {
	sources := buildSources([]models.SearchHit{
		{Score: 0.56789, Payload: models.Payload{Text: "some text"}},
	})
	if len(sources) != 1 {
		t.Fatal("want 1 source")
	}
	if sources[0].Source != "Unknown" || sources[0].Type != "unknown" {
		t.Errorf("source defaults = %+v", sources[0])
	}
	if sources[0].Score != 0.568 {
		t.Errorf("score = %v, want rounded to 0.568", sources[0].Score)
	}
}

func TestTruncateSource(t *testing.T) {
	short := "short text"
	if got := truncateSource(short); got != short {
		t.Errorf("short text modified: %q", got)
	}

	// Sentence boundary past character 100 is preferred; the period is kept
	// and the ellipsis follows it.
	sentence := strings.Repeat("a", 120) + ". " + strings.Repeat("b", 200)
	got := truncateSource(sentence)
	if want := strings.Repeat("a", 120) + "...."; got != want {
		t.Errorf("truncateSource = %q, want sentence cut at the boundary", got)
	}

	// No boundary: hard cut to 250 characters total.
	long := strings.Repeat("x", 400)
	got = truncateSource(long)
	if len([]rune(got)) != 250 || !strings.HasSuffix(got, "...") {
		t.Errorf("hard cut = %d chars %q", len([]rune(got)), got[240:])
	}
}

func TestTruncateSourceMultibyte(t *testing.T) {
	// The boundary at character 120 qualifies counted in runes, even though
	// every rune here is multi-byte.
	sentence := strings.Repeat("é", 120) + ". " + strings.Repeat("б", 200)
	got := truncateSource(sentence)
	if want := strings.Repeat("é", 120) + "...."; got != want {
		t.Errorf("truncateSource = %q, want sentence cut at the boundary", got)
	}

	// A boundary at character 60 sits before the 100-character floor; its
	// byte offset (120) must not qualify it. Hard cut to 250 characters.
	early := strings.Repeat("é", 60) + ". " + strings.Repeat("б", 300)
	got = truncateSource(early)
	if want := strings.Repeat("é", 60) + ". " + strings.Repeat("б", 185) + "..."; got != want {
		t.Errorf("truncateSource = %q, want hard 247-rune cut", got)
	}
}
