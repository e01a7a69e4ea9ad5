// Package chunker splits raw text into overlapping chunks sized for embedding.
package chunker

import (
	"regexp"
	"strings"
)

var (
	newlineRuns = regexp.MustCompile(`\n+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
)

// Chunker splits text into sentence-aligned chunks with character overlap.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker with the given size and overlap (in characters).
func New(chunkSize, overlap int) *Chunker {
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Normalize collapses newline runs to a single newline, whitespace runs to a
// single space, strips form feeds (a common PDF artifact), and collapses runs
// of two or more periods to an ellipsis.
func Normalize(text string) string {
	text = newlineRuns.ReplaceAllString(text, "\n")
	text = strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
	text = strings.ReplaceAll(text, "\f", "")
	text = dotRuns.ReplaceAllString(text, "...")
	return text
}

// Chunk normalizes text and splits it into chunks of at most chunkSize
// characters, packing whole sentences greedily. Every chunk after the first is
// prefixed with the last overlap characters of its predecessor's pre-overlap
// content. Empty or whitespace-only input returns nil; text that fits in one
// chunk is returned as-is.
func (c *Chunker) Chunk(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range splitAfterTerminators(text) {
		if len(current)+len(sentence) <= c.chunkSize {
			if current == "" {
				current = sentence
			} else {
				current += " " + sentence
			}
		} else {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if len(chunks) <= 1 {
		return chunks
	}
	// Overlap pass: each chunk carries a tail of its predecessor for context
	// continuity. The tail comes from the original chunk, not the overlapped one,
	// so overlap does not compound across chunks.
	overlapped := make([]string, 0, len(chunks))
	overlapped = append(overlapped, chunks[0])
	for i := 1; i < len(chunks); i++ {
		overlapped = append(overlapped, tailRunes(chunks[i-1], c.overlap)+" "+chunks[i])
	}
	return overlapped
}

// splitAfterTerminators splits text after each '.', '!', or '?' that is
// followed by whitespace. The trailing whitespace is consumed.
func splitAfterTerminators(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if !isTerminator(text[i]) || !isSpaceByte(text[i+1]) {
			continue
		}
		parts = append(parts, text[start:i+1])
		j := i + 1
		for j < len(text) && isSpaceByte(text[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// tailRunes returns the last n runes of s, or s itself when shorter.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
