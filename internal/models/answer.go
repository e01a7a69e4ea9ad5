package models

// Answer is the result of a retrieval-augmented chat query.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Source is a citation attached to an answer: a truncated excerpt of the
// stored text plus its similarity score and provenance.
type Source struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
	Type   string  `json:"type"`
}
