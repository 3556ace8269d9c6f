// Package models defines core data structures for documents, queries, and answers.
package models

import "time"

// Categories is the fixed set of document category labels.
var Categories = []string{"general", "hr", "policies", "sops", "technical"}

// ValidCategory reports whether c is one of the known category labels.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Document represents an ingested document. Documents are immutable once
// ingested; re-ingesting with the same ID supersedes the previous version.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	Content   string    `json:"content" db:"content"`
	Category  string    `json:"category" db:"category"`
	FileType  string    `json:"file_type" db:"file_type"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DocumentChunk is a contiguous slice of a document's text, the unit of
// embedding and retrieval. Chunks are created during ingestion, never mutated,
// and deleted only by deleting the parent document.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Category   string    `json:"category" db:"category"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for ingesting a document.
type DocumentInput struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	FileType string `json:"file_type,omitempty"`
}

// RetrievedChunk is a single retrieval hit: a chunk with its similarity score.
type RetrievedChunk struct {
	Chunk *DocumentChunk `json:"chunk"`
	Score float64        `json:"score"`
}
