//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errNoCGO = errors.New("ONNX model requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXModel stub type when built without CGO (see onnx.go for the real implementation).
// It satisfies Model so composition code compiles; every method fails.
type ONNXModel struct{}

// NewONNXModel returns an error when built without CGO (ONNX not available).
func NewONNXModel(_ string, _, _ int) (*ONNXModel, error) {
	return nil, errNoCGO
}

func (m *ONNXModel) Embed(context.Context, string) ([]float32, error) { return nil, errNoCGO }

func (m *ONNXModel) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errNoCGO
}

func (m *ONNXModel) Dimensions() int { return 0 }

func (m *ONNXModel) Close() error { return nil }
