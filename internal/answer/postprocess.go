package answer

import (
	"strings"
	"unicode"
)

// listPrefixes are enumeration artifacts some models emit at the start of an
// answer despite the no-lists instruction.
var listPrefixes = []string{"i. ", "ii. ", "iii. ", "iv. ", "v. ", "- ", "* "}

// CleanAnswer strips enumeration-style prefixes from the generated text
// (re-capitalizing the remainder) and guarantees terminal punctuation.
func CleanAnswer(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range listPrefixes {
		if strings.HasPrefix(strings.ToLower(text), prefix) {
			text = capitalize(text[len(prefix):])
		}
	}
	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
