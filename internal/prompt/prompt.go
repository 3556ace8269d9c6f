// Package prompt assembles retrieved chunks and a question into model input.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// SystemPrompt instructs the model to answer strictly from the provided context.
const SystemPrompt = `You are a knowledge base assistant for internal company documents.

When answering questions:
1. Use only the provided context passages; do not invent facts
2. Cite your sources by repeating the [Source: ...] tag of each passage you used
3. If the context does not contain the answer, say so clearly
4. Be concise and accurate
5. Format your responses in clear, readable Markdown`

// DefaultBudget is the character budget for assembled context when none is configured.
const DefaultBudget = 12000

// Prompt is the assembled model input plus the chunks that made it in.
type Prompt struct {
	System   string
	User     string
	Included []*models.RetrievedChunk
}

// Assembler builds prompts within a fixed character budget.
type Assembler struct {
	budget int
}

// NewAssembler creates an assembler with the given context budget in
// characters. Non-positive budgets fall back to DefaultBudget.
func NewAssembler(budget int) *Assembler {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Assembler{budget: budget}
}

// Assemble formats chunks and the question into a prompt. Chunks must arrive
// ordered by descending similarity; when the budget is exceeded the
// lowest-similarity chunks are dropped, never the question. At least one
// chunk is always included so a single oversized chunk still produces context
// (truncated to the budget).
func (a *Assembler) Assemble(question string, chunks []*models.RetrievedChunk) *Prompt {
	var b strings.Builder
	b.WriteString("Context passages:\n\n")

	var included []*models.RetrievedChunk
	used := 0
	for _, rc := range chunks {
		block := formatChunk(rc.Chunk)
		if len(included) > 0 && used+len(block) > a.budget {
			break
		}
		if len(included) == 0 && len(block) > a.budget {
			// Cut on a rune boundary so a multi-byte character is never split.
			cut := a.budget
			for cut > 0 && !utf8.RuneStart(block[cut]) {
				cut--
			}
			block = block[:cut]
		}
		b.WriteString(block)
		used += len(block)
		included = append(included, rc)
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	return &Prompt{
		System:   SystemPrompt,
		User:     b.String(),
		Included: included,
	}
}

func formatChunk(c *models.DocumentChunk) string {
	return fmt.Sprintf("[Source: %s chunk %d]\n%s\n\n", c.DocumentID, c.ChunkIndex, c.Content)
}
