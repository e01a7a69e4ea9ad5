package extract

import (
	"testing"
	"unicode/utf16"
)

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := []byte{0xFF, 0xFE}
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name         string
		content      []byte
		wantText     string
		wantEncoding string
	}{
		{"utf-8", []byte("plain ascii"), "plain ascii", "utf-8"},
		{"utf-8 multibyte", []byte("naïve café"), "naïve café", "utf-8"},
		{"latin-1", append([]byte("caf"), 0xE9), "café", "latin-1"},
		{"utf-16 with bom", utf16LEBytes("hello wörld"), "hello wörld", "utf-16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := DecodeText(tt.content)
			if err != nil {
				t.Fatalf("DecodeText: %v", err)
			}
			if enc != tt.wantEncoding {
				t.Errorf("encoding = %q, want %q", enc, tt.wantEncoding)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}
