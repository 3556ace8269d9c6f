package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/provider"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestOfflineEmbedderDeterministic(t *testing.T) {
	e := NewOfflineEmbedder(64)
	ctx := context.Background()

	a1, err := e.Embed(ctx, "vacation policy")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	a2, _ := e.Embed(ctx, "vacation policy")
	b, _ := e.Embed(ctx, "kubernetes deployment")

	if len(a1) != 64 {
		t.Fatalf("dimension = %d, want 64", len(a1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("same text produced different embeddings")
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}

	var norm float64
	for _, v := range a1 {
		norm += float64(v * v)
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("norm^2 = %f, want 1", norm)
	}
}

type countingEmbedder struct {
	*OfflineEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.OfflineEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls += len(texts)
	return c.OfflineEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedderAvoidsRecompute(t *testing.T) {
	inner := &countingEmbedder{OfflineEmbedder: NewOfflineEmbedder(16)}
	e := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	if _, err := e.Embed(ctx, "hello"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := e.Embed(ctx, "hello"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	vecs, err := e.EmbedBatch(ctx, []string{"hello", "world"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 || vecs[0] == nil || vecs[1] == nil {
		t.Fatalf("EmbedBatch returned %v", vecs)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (only the miss forwarded)", inner.calls)
	}
}

func openAITestServer(t *testing.T, status int, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i := range req.Input {
			v := make([]float32, dims)
			v[i%dims] = 1
			resp.Data = append(resp.Data, item{Index: i, Embedding: v})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIEmbedderBatch(t *testing.T) {
	srv := openAITestServer(t, http.StatusOK, 8)
	defer srv.Close()
	t.Setenv("TEST_EMBED_KEY", "secret")

	e, err := NewOpenAIEmbedder(config.EmbeddingConfig{
		BaseURL: srv.URL, APIKeyEnv: "TEST_EMBED_KEY", Model: "text-embedding-3-small", Dimensions: 8,
	})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 8 {
		t.Fatalf("got %d vectors of dim %d", len(vecs), len(vecs[0]))
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("vectors not in input order: %v", vecs)
	}
}

func TestOpenAIEmbedderErrorClassification(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret")

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, provider.ErrRateLimited},
		{http.StatusInternalServerError, provider.ErrUnavailable},
		{http.StatusUnauthorized, provider.ErrUnavailable},
	}
	for _, tc := range cases {
		srv := openAITestServer(t, tc.status, 8)
		e, err := NewOpenAIEmbedder(config.EmbeddingConfig{
			BaseURL: srv.URL, APIKeyEnv: "TEST_EMBED_KEY", Dimensions: 8,
		})
		if err != nil {
			t.Fatalf("NewOpenAIEmbedder: %v", err)
		}
		_, err = e.Embed(context.Background(), "q")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestOpenAIEmbedderMissingKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY_ABSENT", "")
	if _, err := NewOpenAIEmbedder(config.EmbeddingConfig{APIKeyEnv: "TEST_EMBED_KEY_ABSENT"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
