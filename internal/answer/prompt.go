package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// promptTemplate instructs the generator to answer in one complete sentence
// from the excerpts only, with a fixed fallback phrase when the answer is not
// in context.
const promptTemplate = `Based on the following document excerpts, answer the user's question.
If the answer cannot be found in the excerpts, say "I don't have enough information to answer that question based on the provided documents."

DOCUMENT EXCERPTS:
%s

QUESTION: %s

INSTRUCTIONS:
- Answer in a clear, complete sentence
- Do not use bullet points or numbered lists
- Reference the excerpts if they contain the answer
- If excerpts conflict, mention any uncertainties

ANSWER:`

var (
	leadingJunk  = regexp.MustCompile(`^[^a-zA-Z0-9"']+`)
	trailingJunk = regexp.MustCompile(`[^a-zA-Z0-9"'.!?]+$`)
)

// buildContext labels each hit's cleaned text as an excerpt and joins them
// with blank lines.
func buildContext(hits []models.SearchHit) string {
	parts := make([]string, 0, len(hits))
	for i, hit := range hits {
		text := leadingJunk.ReplaceAllString(hit.Payload.Text, "")
		text = trailingJunk.ReplaceAllString(text, "")
		parts = append(parts, fmt.Sprintf("[Excerpt %d]: %s", i+1, text))
	}
	return strings.Join(parts, "\n\n")
}

// buildPrompt embeds the context block and the verbatim query in the template.
func buildPrompt(contextBlock, query string) string {
	return fmt.Sprintf(promptTemplate, contextBlock, query)
}
