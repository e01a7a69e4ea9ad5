// Package embedding produces fixed-length text embeddings for similarity search.
package embedding

import "context"

// Model is the underlying text-to-vector model. Implementations: ONNXModel
// (MiniLM via ONNX Runtime, requires CGO) and MockModel (deterministic, for
// tests and development without a model file).
type Model interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// ModelFactory constructs a Model on first use, so the service can defer
// loading model weights until an embedding is actually requested.
type ModelFactory func() (Model, error)
