package chunker

import "unicode"

// SplitSentences splits text into sentences for CMS import. A split happens
// after '.', '!', or '?' followed by whitespace and an uppercase letter, except
// when the terminator ends an abbreviation such as "Dr." or "e.g.". Fragments
// are trimmed; empty ones are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if !unicode.IsSpace(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j >= len(runes) || !unicode.IsUpper(runes[j]) {
			continue
		}
		if isAbbreviation(runes, i) {
			continue
		}
		if s := trimRunes(runes[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if s := trimRunes(runes[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isAbbreviation reports whether the terminator at index i ends a token that
// looks like an abbreviation: a capital-lowercase pair before a period
// ("Dr.", "Mr.") or an interior-period token ("e.g.", "U.S.", decimals aside).
func isAbbreviation(runes []rune, i int) bool {
	if runes[i] == '.' && i >= 2 && unicode.IsUpper(runes[i-2]) && unicode.IsLower(runes[i-1]) {
		return true
	}
	if i >= 3 && isWordRune(runes[i-3]) && runes[i-2] == '.' && isWordRune(runes[i-1]) {
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func trimRunes(runes []rune) string {
	start, end := 0, len(runes)
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return string(runes[start:end])
}
