// Package extract converts uploaded document formats into embeddable text chunks.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/chunker"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned when a file extension is not in the allow-list.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// AllowedExtensions lists the file extensions the extractor accepts.
var AllowedExtensions = []string{".pdf", ".docx", ".csv", ".txt", ".xlsx"}

// Extractor extracts text chunks from document files. Internal extraction
// failures degrade to an empty chunk list (logged, not fatal); only an
// unsupported extension is reported as an error.
type Extractor struct {
	chunker *chunker.Chunker
	maxRows int
	logger  *zap.Logger
}

// NewExtractor creates an extractor that feeds oversized text through ch.
// maxRows caps how many tabular rows become chunks.
func NewExtractor(ch *chunker.Chunker, maxRows int, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{chunker: ch, maxRows: maxRows, logger: logger}
}

// Extract returns text chunks for the given file content. The extension of
// filename selects the format. Returns ErrUnsupportedFormat before touching
// the content when the extension is not allowed.
func (e *Extractor) Extract(content []byte, filename string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return e.extractPDF(content), nil
	case ".docx":
		return e.extractDOCX(content), nil
	case ".csv":
		return e.extractCSV(content), nil
	case ".xlsx":
		return e.extractXLSX(content), nil
	case ".txt":
		return e.extractTXT(content), nil
	default:
		return nil, fmt.Errorf("%w: %q (use: %s)", ErrUnsupportedFormat, ext, strings.Join(AllowedExtensions, " "))
	}
}

// ExtensionAllowed reports whether ext (with leading dot, any case) is accepted.
func ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
