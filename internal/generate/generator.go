// Package generate wraps the answer generation model.
package generate

import "context"

// Generator turns a fully-built prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
