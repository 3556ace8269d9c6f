package indexer

import (
	"strings"
	"testing"
)

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(100, 20)
	if got := c.Chunk("d1", "general", ""); got != nil {
		t.Errorf("empty text: got %d chunks, want 0", len(got))
	}
	if got := c.Chunk("d1", "general", "   \n\t  "); got != nil {
		t.Errorf("whitespace text: got %d chunks, want 0", len(got))
	}
}

func TestChunkShortText(t *testing.T) {
	c := NewChunker(100, 20)
	chunks := c.Chunk("d1", "hr", "Employees receive 15 days of paid time off.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	ch := chunks[0]
	if ch.Content != "Employees receive 15 days of paid time off." {
		t.Errorf("content = %q", ch.Content)
	}
	if ch.ChunkIndex != 0 || ch.DocumentID != "d1" || ch.Category != "hr" {
		t.Errorf("chunk fields = %+v", ch)
	}
}

func TestChunkLongTextCoversAll(t *testing.T) {
	c := NewChunker(200, 40)
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("All expense reports must be submitted within thirty days. ")
	}
	text := strings.TrimSpace(sb.String())

	chunks := c.Chunk("d1", "policies", text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.ChunkIndex)
		}
		if len([]rune(ch.Content)) > 200 {
			t.Errorf("chunk %d exceeds size: %d", i, len([]rune(ch.Content)))
		}
		if !strings.Contains(text, ch.Content) {
			t.Errorf("chunk %d is not a substring of the source", i)
		}
	}
	// Overlapping windows must not lose text: the last words of the source
	// must appear in the final chunk.
	last := chunks[len(chunks)-1].Content
	if !strings.HasSuffix(text, last) {
		t.Error("final chunk does not end the source text")
	}
}

func TestChunkPrefersParagraphBreaks(t *testing.T) {
	c := NewChunker(120, 0)
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60) + "\n\n" + strings.Repeat("c", 60)

	chunks := c.Chunk("d1", "general", text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	// The first cut should land on the paragraph break, not mid-paragraph.
	if strings.Contains(chunks[0].Content, "b") && !strings.HasSuffix(chunks[0].Content, strings.Repeat("b", 60)) {
		t.Errorf("first chunk cut mid-paragraph: %q", chunks[0].Content)
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	c := NewChunker(100, 30)
	words := make([]string, 0, 80)
	for i := 0; i < 80; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	chunks := c.Chunk("d1", "general", text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	// With positive overlap, consecutive chunks share a boundary region.
	first := []rune(chunks[0].Content)
	tail := string(first[len(first)-10:])
	if !strings.Contains(chunks[1].Content, strings.TrimSpace(tail)) {
		t.Errorf("second chunk does not overlap first: tail %q not in %q", tail, chunks[1].Content)
	}
}

func TestChunkExactOverlap(t *testing.T) {
	c := NewChunker(50, 10)
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa"}
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		for _, w := range words {
			sb.WriteString(w)
			sb.WriteString(" ")
		}
	}
	text := strings.TrimSpace(sb.String())

	chunks := c.Chunk("d1", "general", text)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	// Each adjacent pair shares exactly the configured overlap: the last 10
	// runes of one chunk are the first 10 runes of the next.
	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i].Content)
		next := []rune(chunks[i+1].Content)
		tail := string(cur[len(cur)-10:])
		head := string(next[:10])
		if tail != head {
			t.Errorf("chunks %d/%d do not share exactly 10 chars: %q vs %q", i, i+1, tail, head)
		}
	}
}

func TestChunkReconstruction(t *testing.T) {
	c := NewChunker(50, 10)
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString("Expense reports are due within thirty days of purchase.\n")
	}
	text := strings.TrimSpace(sb.String())

	chunks := c.Chunk("d1", "policies", text)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	// Concatenating the chunks with each overlap removed reproduces the
	// source exactly: no character is lost or duplicated.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Content)
	for _, ch := range chunks[1:] {
		r := []rune(ch.Content)
		rebuilt.WriteString(string(r[10:]))
	}
	if rebuilt.String() != text {
		t.Errorf("reconstruction differs from source:\nwant %q\ngot  %q", text, rebuilt.String())
	}
}

func TestChunkHardCutWithoutWhitespace(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("x", 200)

	chunks := c.Chunk("d1", "general", text)
	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Content) > 50 {
			t.Errorf("chunk %d exceeds size: %d", i, len(ch.Content))
		}
	}
}

func TestChunkDeterministicIDs(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("stable text ", 30)

	a := c.Chunk("d1", "general", text)
	b := c.Chunk("d1", "general", text)
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("chunk %d IDs differ: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestPreprocess(t *testing.T) {
	in := "Title\r\n\r\n\r\n\r\nBody line one.   \nBody line two.\t\n"
	want := "Title\n\nBody line one.\nBody line two."
	if got := Preprocess(in); got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
}
