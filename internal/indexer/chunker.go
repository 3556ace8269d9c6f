// Package indexer provides document chunking and indexing.
package indexer

import (
	"fmt"
	"strings"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// Chunker splits text into overlapping character-based chunks, cutting at
// paragraph breaks when possible, then line breaks, then whitespace.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// Overlap is clamped below size so every window makes forward progress.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into DocumentChunks with overlapping windows. Empty or
// whitespace-only text yields no chunks; text within the chunk size yields one.
// Chunk IDs are deterministic per document so re-ingestion upserts in place.
func (c *Chunker) Chunk(docID, category, text string) []*models.DocumentChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)

	// Windows are emitted untrimmed: adjacent chunks share exactly the
	// overlap, and concatenating them with overlaps removed reproduces the
	// source text.
	var chunks []*models.DocumentChunk
	emit := func(content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         fmt.Sprintf("%s_%d", docID, len(chunks)),
			DocumentID: docID,
			Content:    content,
			ChunkIndex: len(chunks),
			Category:   category,
		})
	}

	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			emit(string(runes[start:]))
			break
		}
		end = c.splitPoint(runes, start, end)
		emit(string(runes[start:end]))

		next := end - c.chunkOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// splitPoint picks a cut position in (start, limit], preferring a paragraph
// break, then a line break, then any whitespace in the back half of the
// window. With no usable boundary the window is cut hard at limit.
func (c *Chunker) splitPoint(runes []rune, start, limit int) int {
	floor := start + c.chunkSize/2

	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && i > start && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := limit - 1; i > floor; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return limit
}
