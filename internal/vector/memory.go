package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory vector index using brute-force inner product
// search, persisted to a binary file. Writes serialize per index; reads run
// concurrently and never observe a partially written vector.
type MemoryIndex struct {
	dimensions int
	entries    []*Entry
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Upsert inserts or replaces entries by chunk ID. The whole batch is validated
// before any write, so a dimension mismatch leaves the index unchanged.
// Replacing an existing chunk keeps its original insertion position.
func (m *MemoryIndex) Upsert(ctx context.Context, entries []*Entry) error {
	for _, e := range entries {
		if len(e.Vector) != m.dimensions {
			return &DimensionMismatchError{Got: len(e.Vector), Want: m.dimensions}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		stored := &Entry{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			ChunkIndex: e.ChunkIndex,
			Category:   e.Category,
			Vector:     make([]float32, m.dimensions),
		}
		copy(stored.Vector, e.Vector)
		if pos, ok := m.byID[e.ChunkID]; ok {
			m.entries[pos] = stored
			continue
		}
		m.byID[e.ChunkID] = len(m.entries)
		m.entries = append(m.entries, stored)
	}
	return nil
}

// Query returns the top-k entries by inner product (cosine similarity for
// normalized vectors) among entries matching filter. Stable sort keeps
// insertion order for equal scores, so earlier entries win ties.
func (m *MemoryIndex) Query(ctx context.Context, query []float32, k int, filter Filter) ([]*Hit, error) {
	if len(query) != m.dimensions {
		return nil, &DimensionMismatchError{Got: len(query), Want: m.dimensions}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0, len(m.entries))
	for _, e := range m.entries {
		if !filter.Matches(e) {
			continue
		}
		hits = append(hits, &Hit{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			ChunkIndex: e.ChunkIndex,
			Category:   e.Category,
			Score:      InnerProduct(query, e.Vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteDocument removes all entries belonging to documentID.
func (m *MemoryIndex) DeleteDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(m.entries) {
		return nil
	}
	m.entries = kept
	m.byID = make(map[string]int, len(kept))
	for i, e := range kept {
		m.byID[e.ChunkID] = i
	}
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimension (4), n (4), then per entry: chunk ID, document ID, and
// category as length-prefixed strings, chunk index (4), vector (dimension*4).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		for _, s := range []string{e.ChunkID, e.DocumentID, e.Category} {
			if err := writeString(f, s); err != nil {
				return err
			}
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(e.ChunkIndex)); err != nil {
			return fmt.Errorf("write chunk index: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match. If the file does not exist, no error is returned
// and the index is unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	entries := make([]*Entry, 0, n)
	byID := make(map[string]int, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		e := &Entry{}
		if e.ChunkID, err = readString(f); err != nil {
			return fmt.Errorf("read chunk id: %w", err)
		}
		if e.DocumentID, err = readString(f); err != nil {
			return fmt.Errorf("read document id: %w", err)
		}
		if e.Category, err = readString(f); err != nil {
			return fmt.Errorf("read category: %w", err)
		}
		var idx uint32
		if err := binary.Read(f, binary.LittleEndian, &idx); err != nil {
			return fmt.Errorf("read chunk index: %w", err)
		}
		e.ChunkIndex = int(idx)
		if _, err := io.ReadFull(f, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		e.Vector = bytesToFloat32Slice(buf)
		byID[e.ChunkID] = len(entries)
		entries = append(entries, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	m.byID = byID
	return nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Dimensions returns the fixed vector dimension of the index.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func writeString(w io.Writer, s string) error {
	b := []byte(s)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return fmt.Errorf("write string len: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
