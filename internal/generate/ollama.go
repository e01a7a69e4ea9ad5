package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// Ollama generates answers through an Ollama-served model. The client is
// constructed lazily on first use and shared by all requests. Output length
// is bounded and sampling runs at low temperature with a repetition penalty
// to keep answers short and non-looping.
type Ollama struct {
	cfg    config.GenerationConfig
	logger *zap.Logger

	mu  sync.Mutex
	llm llms.Model
}

// NewOllama creates a generator from config. No connection is made until the
// first Generate call.
func NewOllama(cfg config.GenerationConfig, logger *zap.Logger) *Ollama {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ollama{cfg: cfg, logger: logger}
}

// Generate produces answer text for the prompt. Generation runs to completion
// once started; there are no retries.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	llm, err := o.load()
	if err != nil {
		return "", err
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt,
		llms.WithMaxTokens(o.cfg.MaxTokens),
		llms.WithTemperature(o.cfg.Temperature),
		llms.WithRepetitionPenalty(o.cfg.RepetitionPenalty),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (o *Ollama) load() (llms.Model, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.llm != nil {
		return o.llm, nil
	}
	o.logger.Info("initializing generation model",
		zap.String("model", o.cfg.Model), zap.String("base_url", o.cfg.BaseURL))
	llm, err := ollama.New(
		ollama.WithModel(o.cfg.Model),
		ollama.WithServerURL(o.cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation model: %w", err)
	}
	o.llm = llm
	return llm, nil
}
