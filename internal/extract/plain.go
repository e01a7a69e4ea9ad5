package extract

import "go.uber.org/zap"

// extractTXT decodes plain text with the ordered encoding fallback and chunks it.
func (e *Extractor) extractTXT(content []byte) []string {
	text, encName, err := DecodeText(content)
	if err != nil {
		e.logger.Warn("text extraction failed", zap.Error(err))
		return nil
	}
	e.logger.Debug("decoded text file", zap.String("encoding", encName))
	return e.chunker.Chunk(text)
}
