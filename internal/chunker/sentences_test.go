package chunker

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "basic split",
			input: "One sentence here. Another one there.",
			want:  []string{"One sentence here.", "Another one there."},
		},
		{
			name:  "mixed terminators",
			input: "One. Two! Three?",
			want:  []string{"One.", "Two!", "Three?"},
		},
		{
			name:  "title abbreviation",
			input: "Dr. Smith arrived. He left soon after.",
			want:  []string{"Dr. Smith arrived.", "He left soon after."},
		},
		{
			name:  "interior period abbreviation",
			input: "He visited the U.S. Then he left.",
			want:  []string{"He visited the U.S. Then he left."},
		},
		{
			name:  "no split before lowercase",
			input: "See ver. 2 for details.",
			want:  []string{"See ver. 2 for details."},
		},
		{
			name:  "no terminator",
			input: "just a fragment",
			want:  []string{"just a fragment"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "  \n ",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
