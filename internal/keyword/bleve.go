// Package keyword provides Bleve implementation of KeywordIndex.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

type indexedDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full re-index after a
// mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact words in policy text.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("filename", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a document by id.
func (b *BleveIndex) Index(ctx context.Context, id string, doc *models.Document) error {
	return b.index.Index(id, indexedDocument{
		Filename: doc.Filename,
		Content:  doc.Content,
		Category: doc.Category,
	})
}

// Search runs a match query over filename and content, optionally restricted
// to one category, and returns up to limit results by BM25 score.
func (b *BleveIndex) Search(ctx context.Context, query, category string, limit int) ([]KeywordResult, error) {
	var q blevequery.Query = bleve.NewMatchQuery(query)
	if category != "" {
		cq := bleve.NewTermQuery(category)
		cq.SetField("category")
		q = bleve.NewConjunctionQuery(q, cq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"filename", "category"}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("content")

	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		r := KeywordResult{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["filename"].(string); ok {
			r.Filename = v
		}
		if v, ok := hit.Fields["category"].(string); ok {
			r.Category = v
		}
		if frags, ok := hit.Fragments["content"]; ok && len(frags) > 0 {
			r.Fragment = frags[0]
		}
		out[i] = r
	}
	return out, nil
}

// Delete removes a document from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of indexed documents.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
