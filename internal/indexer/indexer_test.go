package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/embedding"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/vector"
)

func newTestIndexer(t *testing.T) (*Indexer, storage.Storage, *vector.MemoryIndex, keyword.KeywordIndex) {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	vecIdx, err := vector.NewMemoryIndex(64)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}

	kwIdx, err := keyword.NewBleveIndex(filepath.Join(dir, "keyword"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { kwIdx.Close() })

	embedder := embedding.NewOfflineEmbedder(64)
	cfg := config.RetrievalConfig{ChunkSize: 120, ChunkOverlap: 20}
	return NewIndexer(store, embedder, vecIdx, kwIdx, cfg, nil), store, vecIdx, kwIdx
}

func TestIndexDocument(t *testing.T) {
	idx, store, vecIdx, kwIdx := newTestIndexer(t)
	ctx := context.Background()

	content := strings.Repeat("All employees receive 15 days of paid time off per year. ", 8)
	doc, err := idx.IndexDocument(ctx, &models.DocumentInput{
		Filename: "pto_policy.md",
		Content:  content,
		Category: "HR",
	})
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if doc.Category != "hr" {
		t.Errorf("category = %q, want hr", doc.Category)
	}

	chunks, err := store.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetChunksByDocumentID: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	if vecIdx.Size() != len(chunks) {
		t.Errorf("vector index has %d entries, want %d", vecIdx.Size(), len(chunks))
	}

	hits, err := kwIdx.Search(ctx, "pto policy", "", 5)
	if err != nil {
		t.Fatalf("keyword Search: %v", err)
	}
	if len(hits) == 0 || hits[0].ID != doc.ID {
		t.Errorf("keyword search hits = %+v", hits)
	}
}

func TestIndexDocumentUnknownCategory(t *testing.T) {
	idx, _, _, _ := newTestIndexer(t)
	_, err := idx.IndexDocument(context.Background(), &models.DocumentInput{
		Filename: "x.md", Content: "text", Category: "finance",
	})
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestIndexDocumentEmptyContent(t *testing.T) {
	idx, store, vecIdx, _ := newTestIndexer(t)
	ctx := context.Background()

	doc, err := idx.IndexDocument(ctx, &models.DocumentInput{Filename: "empty.md", Content: "   "})
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	chunks, err := store.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetChunksByDocumentID: %v", err)
	}
	if len(chunks) != 0 || vecIdx.Size() != 0 {
		t.Errorf("empty document produced %d chunks, %d vectors", len(chunks), vecIdx.Size())
	}
}

func TestReingestReplacesDocument(t *testing.T) {
	idx, store, vecIdx, _ := newTestIndexer(t)
	ctx := context.Background()

	first, err := idx.IndexDocument(ctx, &models.DocumentInput{
		ID: "doc-1", Filename: "v1.md", Content: strings.Repeat("old text ", 40), Category: "general",
	})
	if err != nil {
		t.Fatalf("IndexDocument v1: %v", err)
	}
	firstChunks, _ := store.GetChunksByDocumentID(ctx, first.ID)

	second, err := idx.IndexDocument(ctx, &models.DocumentInput{
		ID: "doc-1", Filename: "v2.md", Content: "new text", Category: "general",
	})
	if err != nil {
		t.Fatalf("IndexDocument v2: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-ingest changed ID: %s vs %s", second.ID, first.ID)
	}

	chunks, _ := store.GetChunksByDocumentID(ctx, "doc-1")
	if len(chunks) != 1 || chunks[0].Content != "new text" {
		t.Errorf("chunks after re-ingest = %+v", chunks)
	}
	if len(firstChunks) > 1 && vecIdx.Size() != 1 {
		t.Errorf("vector index has %d entries after re-ingest, want 1", vecIdx.Size())
	}
	got, err := store.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Filename != "v2.md" {
		t.Errorf("document not replaced: %+v", got)
	}
}

func TestDeleteDocument(t *testing.T) {
	idx, store, vecIdx, kwIdx := newTestIndexer(t)
	ctx := context.Background()

	doc, err := idx.IndexDocument(ctx, &models.DocumentInput{
		Filename: "gone.md", Content: strings.Repeat("disposable content ", 20), Category: "general",
	})
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	if err := idx.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := store.GetDocument(ctx, doc.ID); err == nil {
		t.Error("document still in storage")
	}
	if vecIdx.Size() != 0 {
		t.Errorf("vector index has %d entries after delete", vecIdx.Size())
	}
	hits, _ := kwIdx.Search(ctx, "disposable", "", 5)
	if len(hits) != 0 {
		t.Errorf("keyword index still returns %+v", hits)
	}
}

func TestIndexFile(t *testing.T) {
	idx, store, _, _ := newTestIndexer(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "vpn_setup.txt")
	if err := os.WriteFile(path, []byte("Connect to the VPN before accessing internal systems."), 0644); err != nil {
		t.Fatal(err)
	}

	if err := idx.IndexFile(ctx, path, "technical", []string{".txt", ".md"}); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	doc, err := store.GetDocumentByFilename(ctx, "vpn_setup.txt")
	if err != nil || doc == nil {
		t.Fatalf("GetDocumentByFilename: %v, %v", doc, err)
	}
	if doc.Category != "technical" || doc.FileType != ".txt" {
		t.Errorf("document = %+v", doc)
	}

	// Re-indexing the same path keeps one document.
	if err := idx.IndexFile(ctx, path, "technical", nil); err != nil {
		t.Fatalf("IndexFile again: %v", err)
	}
	n, _ := store.CountDocuments(ctx)
	if n != 1 {
		t.Errorf("CountDocuments = %d after re-index, want 1", n)
	}

	// Disallowed extension is rejected.
	bad := filepath.Join(dir, "binary.bin")
	os.WriteFile(bad, []byte("x"), 0644)
	if err := idx.IndexFile(ctx, bad, "general", []string{".txt"}); err == nil {
		t.Error("expected error for disallowed extension")
	}
}

func TestIndexDirectory(t *testing.T) {
	idx, store, _, _ := newTestIndexer(t)
	ctx := context.Background()

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first document"), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)
	os.WriteFile(filepath.Join(dir, "sub", "b.md"), []byte("second document"), 0644)
	os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("binary"), 0644)

	n, err := idx.IndexDirectory(ctx, dir, "sops", []string{".txt", ".md"})
	if err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d files, want 2", n)
	}
	total, _ := store.CountDocuments(ctx)
	if total != 2 {
		t.Errorf("CountDocuments = %d, want 2", total)
	}
}
