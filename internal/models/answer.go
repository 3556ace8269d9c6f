package models

// AnswerMode reports how an answer was produced.
type AnswerMode string

const (
	// ModeLive means the text came from the configured model.
	ModeLive AnswerMode = "live"
	// ModeDegraded means the answering backend was unavailable and the text
	// was assembled locally from retrieved passages.
	ModeDegraded AnswerMode = "degraded"
)

// Citation points at a chunk that was part of the answer's prompt context.
type Citation struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
}

// Usage is the token accounting reported by the answering backend.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

// Answer is the response to a Query. Mode is always set; Model and Usage are
// only populated for live answers. Sources carries optional multi-source
// results in registration order.
type Answer struct {
	Answer    string         `json:"answer"`
	Citations []Citation     `json:"citations"`
	Mode      AnswerMode     `json:"mode"`
	Model     string         `json:"model,omitempty"`
	Usage     Usage          `json:"usage,omitempty"`
	Sources   []SourceAnswer `json:"sources,omitempty"`
}

// SourceAnswer is one optional source's contribution in multi-source mode.
type SourceAnswer struct {
	Name   string     `json:"name"`
	Answer string     `json:"answer"`
	Mode   AnswerMode `json:"mode"`
}
