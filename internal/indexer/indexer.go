// Package indexer provides document indexing into storage, keyword, and vector indices.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/embedding"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/extract"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/fileid"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/vector"
)

// Indexer ingests documents into storage, the keyword index, and the vector index.
type Indexer struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.Index
	keywordIndex keyword.KeywordIndex
	chunker      *Chunker
	extractor    *extract.Extractor
	logger       *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
// extractor may be nil; when nil, IndexFile treats all files as plain text.
func NewIndexer(
	storage storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.KeywordIndex,
	cfg config.RetrievalConfig,
	extractor *extract.Extractor,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:      storage,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		chunker:      NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor:    extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument ingests a document: store, chunk, embed, index in vector and
// keyword. Re-ingesting with an existing ID replaces the previous version.
// A document whose text yields no chunks is stored but never retrieved.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = "general"
	}
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", input.Category)
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	} else {
		// Replace any previous version indexed under this ID.
		_ = idx.DeleteDocument(ctx, input.ID)
	}

	doc := &models.Document{
		ID:        input.ID,
		Filename:  input.Filename,
		Content:   Preprocess(input.Content),
		Category:  category,
		FileType:  strings.ToLower(input.FileType),
		SizeBytes: int64(len(input.Content)),
	}
	if err := idx.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	chunks := idx.chunker.Chunk(doc.ID, doc.Category, doc.Content)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Content
		}
		embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		entries := make([]*vector.Entry, len(chunks))
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
			entries[i] = &vector.Entry{
				ChunkID:    chunks[i].ID,
				DocumentID: doc.ID,
				ChunkIndex: chunks[i].ChunkIndex,
				Category:   doc.Category,
				Vector:     embeddings[i],
			}
		}
		if err := idx.storage.BatchCreateChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("failed to store chunks: %w", err)
		}
		if err := idx.vectorIndex.Upsert(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to index vectors: %w", err)
		}
	}

	// Underscores as spaces so "expense_policy_2024.pdf" is searchable as
	// "expense policy 2024" (the standard analyzer does not split on underscore).
	docForKeyword := *doc
	docForKeyword.Filename = strings.ReplaceAll(doc.Filename, "_", " ")
	if err := idx.keywordIndex.Index(ctx, doc.ID, &docForKeyword); err != nil {
		return nil, fmt.Errorf("failed to index keywords: %w", err)
	}

	if idx.logger != nil {
		idx.logger.Debug("document indexed",
			zap.String("doc_id", doc.ID),
			zap.String("category", doc.Category),
			zap.Int("chunks", len(chunks)))
	}
	return doc, nil
}

// IndexFile reads a file from path, extracts its text, and ingests it under
// the given category. The document ID is derived from the absolute path so
// re-indexing the same file replaces the same document. If allowedExts is
// non-empty, the file's extension must be in the list (case-insensitive).
func (idx *Indexer) IndexFile(ctx context.Context, path, category string, allowedExts []string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	text, err := idx.extractContent(absPath)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}

	input := &models.DocumentInput{
		ID:       fileid.FileDocID(absPath),
		Filename: filepath.Base(absPath),
		Content:  text,
		Category: category,
		FileType: ext,
	}
	if _, err := idx.IndexDocument(ctx, input); err != nil {
		return err
	}
	if idx.logger != nil {
		idx.logger.Debug("file indexed", zap.String("path", absPath), zap.String("category", category))
	}
	return nil
}

// IndexDirectory walks dir recursively and indexes each regular file whose
// extension is in allowedExts (if non-empty; otherwise all files) under the
// given category. Returns the number of files indexed and the first error.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir, category string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so only regular files are indexed.
		finfo, statErr := os.Stat(path)
		if statErr != nil {
			return nil
		}
		if !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path, category, allowedExts); indexErr != nil {
			return indexErr
		}
		n++
		return nil
	})
	return n, err
}

// DeleteFile removes the document previously indexed from path.
func (idx *Indexer) DeleteFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return idx.DeleteDocument(ctx, fileid.FileDocID(absPath))
}

// DeleteDocument removes a document from all indices and storage.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if err := idx.keywordIndex.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := idx.vectorIndex.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from vector index: %w", err)
	}
	if err := idx.storage.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("document deleted", zap.String("id", id))
	}
	return nil
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
