package extract

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// textEncoding is one candidate encoding for decoding uploaded text.
type textEncoding struct {
	name   string
	decode func([]byte) (string, error)
}

// decodeCandidates returns the ordered list of encodings tried when decoding
// CSV and TXT uploads. UTF-8 is strict (invalid bytes fail over to the next
// candidate); the single-byte encodings accept any input.
func decodeCandidates() []textEncoding {
	return []textEncoding{
		{"utf-8", decodeUTF8},
		{"latin-1", charmapDecoder(charmap.ISO8859_1)},
		{"cp1252", charmapDecoder(charmap.Windows1252)},
		{"utf-16", decodeUTF16},
	}
}

// DecodeText decodes content with the first encoding that succeeds and returns
// the text plus the encoding name. A UTF-16 byte order mark short-circuits the
// fallback order, since the single-byte decoders would otherwise accept the
// raw UTF-16 bytes and produce garbage.
func DecodeText(content []byte) (string, string, error) {
	if hasUTF16BOM(content) {
		text, err := decodeUTF16(content)
		if err == nil {
			return text, "utf-16", nil
		}
	}
	for _, enc := range decodeCandidates() {
		text, err := enc.decode(content)
		if err != nil {
			continue
		}
		return text, enc.name, nil
	}
	return "", "", fmt.Errorf("unable to decode text with known encodings")
}

func decodeUTF8(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(content), nil
}

func decodeUTF16(content []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(content []byte) (string, error) {
		var enc encoding.Encoding = cm
		out, err := enc.NewDecoder().Bytes(content)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func hasUTF16BOM(content []byte) bool {
	return bytes.HasPrefix(content, []byte{0xFF, 0xFE}) || bytes.HasPrefix(content, []byte{0xFE, 0xFF})
}
