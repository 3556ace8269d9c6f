package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputText, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestWriteAnswerText(t *testing.T) {
	a := &models.Answer{
		Answer:    "You get 15 days.",
		Mode:      models.ModeLive,
		Model:     "claude-sonnet-4-20250514",
		Usage:     models.Usage{InputTokens: 100, OutputTokens: 20},
		Citations: []models.Citation{{DocumentID: "doc-1", ChunkIndex: 0}},
		Sources: []models.SourceAnswer{
			{Name: "web_search", Answer: "web digest", Mode: models.ModeLive},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAnswer(&buf, a, OutputText))

	out := buf.String()
	assert.Contains(t, out, "15 days")
	assert.Contains(t, out, "doc-1 chunk 0")
	assert.Contains(t, out, "claude-sonnet")
	assert.Contains(t, out, "web_search")
	assert.Contains(t, out, "web digest")
}

func TestWriteAnswerDegradedOmitsModelLine(t *testing.T) {
	a := &models.Answer{Answer: "passages", Mode: models.ModeDegraded}
	var buf bytes.Buffer
	require.NoError(t, WriteAnswer(&buf, a, OutputText))
	assert.NotContains(t, buf.String(), "[model:")
}

func TestWriteAnswerJSON(t *testing.T) {
	a := &models.Answer{Answer: "text", Mode: models.ModeDegraded}
	var buf bytes.Buffer
	require.NoError(t, WriteAnswer(&buf, a, OutputJSON))

	var decoded models.Answer
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "text", decoded.Answer)
	assert.Equal(t, models.ModeDegraded, decoded.Mode)
}

func TestWriteKeywordResults(t *testing.T) {
	results := []keyword.KeywordResult{
		{ID: "d1", Filename: "pto.md", Category: "hr", Score: 1.5, Fragment: "15 <mark>days</mark>"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteKeywordResults(&buf, results, OutputText))
	assert.Contains(t, buf.String(), "pto.md [hr]")

	buf.Reset()
	require.NoError(t, WriteKeywordResults(&buf, nil, OutputText))
	assert.Contains(t, buf.String(), "No results.")
}
