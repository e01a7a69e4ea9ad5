package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// extractPDF extracts the text layer from a PDF and chunks it. Extraction is
// lossy-but-available: a broken document or page yields whatever text could be
// read, down to an empty chunk list, never an error.
func (e *Extractor) extractPDF(content []byte) (chunks []string) {
	defer func() {
		// The pdf package panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			e.logger.Warn("pdf extraction panicked", zap.Any("cause", r))
			chunks = nil
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		e.logger.Warn("pdf open failed", zap.Error(err))
		return nil
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("pdf page extraction failed", zap.Int("page", i), zap.Error(err))
			continue
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return e.chunker.Chunk(buf.String())
}
