// Package models defines core data structures for stored points, search hits, and answers.
package models

// Source types recorded in point payloads.
const (
	SourceTypeFile = "file"
	SourceTypeCMS  = "cms"
)

// Payload is the metadata stored alongside a vector in the collection.
// Text is the embedded chunk; the remaining fields record provenance.
// FileType and ChunkID are set for file uploads, Metadata for CMS imports.
type Payload struct {
	Text     string                 `json:"text"`
	Source   string                 `json:"source"`
	Type     string                 `json:"type"`
	FileType string                 `json:"file_type,omitempty"`
	ChunkID  *int                   `json:"chunk_id,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SearchHit is one similarity-search result: a stored payload and its
// cosine score in [-1, 1]. Hits live only for the duration of one query.
type SearchHit struct {
	Payload Payload `json:"payload"`
	Score   float64 `json:"score"`
}

// CollectionInfo reports the state of the vector collection.
type CollectionInfo struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	VectorsCount int64  `json:"vectors_count"`
}
