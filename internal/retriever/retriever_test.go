package retriever

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/embedding"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/indexer"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/provider"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/vector"
)

func newTestPipeline(t *testing.T) (*Retriever, *indexer.Indexer) {
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
	idx := indexer.NewIndexer(store, embedder, vecIdx, kwIdx, config.RetrievalConfig{ChunkSize: 200, ChunkOverlap: 40}, nil)
	return NewRetriever(embedder, vecIdx, store), idx
}

func TestRetrieve(t *testing.T) {
	r, idx := newTestPipeline(t)
	ctx := context.Background()

	docs := []*models.DocumentInput{
		{Filename: "pto.md", Content: "Employees receive 15 days of paid time off per year.", Category: "hr"},
		{Filename: "vpn.md", Content: "Connect to the corporate VPN before accessing internal systems.", Category: "technical"},
	}
	for _, d := range docs {
		if _, err := idx.IndexDocument(ctx, d); err != nil {
			t.Fatalf("IndexDocument: %v", err)
		}
	}

	got, err := r.Retrieve(ctx, &models.Query{
		Question: "Employees receive 15 days of paid time off per year.",
		TopK:     2,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no chunks retrieved")
	}
	// Deterministic embeddings make an exact text match the top hit.
	if !strings.Contains(got[0].Chunk.Content, "15 days") {
		t.Errorf("top chunk = %q", got[0].Chunk.Content)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestRetrieveCategoryFilter(t *testing.T) {
	r, idx := newTestPipeline(t)
	ctx := context.Background()

	if _, err := idx.IndexDocument(ctx, &models.DocumentInput{
		Filename: "pto.md", Content: "Vacation policy text.", Category: "hr",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.IndexDocument(ctx, &models.DocumentInput{
		Filename: "vpn.md", Content: "VPN setup text.", Category: "technical",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := r.Retrieve(ctx, &models.Query{Question: "anything", Category: "hr", TopK: 10})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, rc := range got {
		if rc.Chunk.Category != "hr" {
			t.Errorf("category filter leaked %q", rc.Chunk.Category)
		}
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r, _ := newTestPipeline(t)

	_, err := r.Retrieve(context.Background(), &models.Query{Question: "anything"})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want UnavailableError", err)
	}
	if unavailable.Reason == "" {
		t.Error("UnavailableError has empty reason")
	}
}

type failingEmbedder struct{ dims int }

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, provider.ErrUnavailable
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, provider.ErrUnavailable
}

func (f *failingEmbedder) Dimensions() int { return f.dims }
func (f *failingEmbedder) Close() error    { return nil }

func TestRetrieveEmbedderDown(t *testing.T) {
	vecIdx, _ := vector.NewMemoryIndex(64)
	r := NewRetriever(&failingEmbedder{dims: 64}, vecIdx, nil)

	_, err := r.Retrieve(context.Background(), &models.Query{Question: "anything"})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want UnavailableError", err)
	}
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Error("UnavailableError does not wrap the provider error")
	}
}

func TestRetrieveInvalidQuery(t *testing.T) {
	r, _ := newTestPipeline(t)
	if _, err := r.Retrieve(context.Background(), &models.Query{Question: "   "}); err == nil {
		t.Fatal("expected error for empty question")
	}
	var unavailable *UnavailableError
	if _, err := r.Retrieve(context.Background(), &models.Query{Question: "x", Category: "finance"}); err == nil || errors.As(err, &unavailable) {
		t.Fatalf("invalid category should be a validation error, got %v", err)
	}
}
